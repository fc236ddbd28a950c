package vesting

import (
	"math/big"
	"testing"
)

const day = int64(24 * 60 * 60)

func testSchedule(cliff, start, end int64, initialPct uint32) *Schedule {
	return &Schedule{
		ID:                   ScheduleTeam,
		CliffStart:           cliff,
		Start:                start,
		End:                  end,
		InitialUnlockPercent: initialPct,
		Capacity:             big.NewInt(1_000_000),
		Remaining:            big.NewInt(0),
		TotalClaimed:         big.NewInt(0),
	}
}

func testBeneficiary(allocation, claimed int64) *Beneficiary {
	return &Beneficiary{
		Address:    [20]byte{0x01},
		Schedule:   ScheduleTeam,
		Allocation: big.NewInt(allocation),
		Claimed:    big.NewInt(claimed),
	}
}

func mustClaimable(t *testing.T, now int64, s *Schedule, b *Beneficiary) *big.Int {
	t.Helper()
	amount, err := Claimable(now, s, b)
	if err != nil {
		t.Fatalf("Claimable returned error: %v", err)
	}
	return amount
}

func TestClaimableCliffGating(t *testing.T) {
	start := int64(1_700_000_000)
	s := testSchedule(start, start, start+365*day, 0)
	b := testBeneficiary(1_000_000, 0)
	for _, now := range []int64{0, start - 365*day, start - 1} {
		if got := mustClaimable(t, now, s, b); got.Sign() != 0 {
			t.Fatalf("claimable before cliff at %d = %s, want 0", now, got)
		}
	}
}

func TestClaimableStepFunction(t *testing.T) {
	start := int64(1_700_000_000)
	s := testSchedule(start, start, start+360*day, 0)
	b := testBeneficiary(1200, 0)
	// 12 intervals, 100 per interval. The value must only move at interval
	// boundaries, never in between.
	cases := []struct {
		offset int64
		want   int64
	}{
		{0, 0},
		{ClaimInterval - 1, 0},
		{ClaimInterval, 100},
		{ClaimInterval + day, 100},
		{2*ClaimInterval - 1, 100},
		{2 * ClaimInterval, 200},
		{7*ClaimInterval + 12345, 700},
	}
	for _, tc := range cases {
		got := mustClaimable(t, start+tc.offset, s, b)
		if got.Int64() != tc.want {
			t.Fatalf("claimable at start+%d = %s, want %d", tc.offset, got, tc.want)
		}
	}
}

func TestClaimableElapsedIntervalsUseParenthesizedDelta(t *testing.T) {
	// Regression guard: the elapsed interval count must divide the delta
	// (now - start), not the bare start timestamp. With a realistic epoch
	// start, dividing the timestamp itself would report hundreds of elapsed
	// intervals immediately.
	start := int64(1_700_000_000)
	s := testSchedule(start, start, start+300*day, 0)
	b := testBeneficiary(1000, 0)
	got := mustClaimable(t, start+ClaimInterval+1, s, b)
	if got.Int64() != 100 {
		t.Fatalf("claimable one interval in = %s, want exactly 100", got)
	}
}

func TestClaimableFullElapseIsExact(t *testing.T) {
	start := int64(1_700_000_000)
	// 365 days is not a whole number of intervals; the per-interval floor
	// discards remainder until the full-elapse branch pays it out.
	s := testSchedule(start, start, start+365*day, 0)
	b := testBeneficiary(250, 0)
	got := mustClaimable(t, start+365*day+1, s, b)
	if got.Int64() != 250 {
		t.Fatalf("claimable after full elapse = %s, want 250", got)
	}

	b.Claimed = big.NewInt(20)
	got = mustClaimable(t, start+365*day+1, s, b)
	if got.Int64() != 230 {
		t.Fatalf("claimable after full elapse with prior claim = %s, want 230", got)
	}
}

func TestClaimableLinearNoInitialUnlockScenario(t *testing.T) {
	start := int64(1_700_000_000)
	s := testSchedule(start, start, start+365*day, 0)
	b := testBeneficiary(250, 0)
	// 12 whole intervals in 365 days, floor(250/12) = 20 per interval.
	got := mustClaimable(t, start+35*day, s, b)
	if got.Int64() != 20 {
		t.Fatalf("claimable at start+35d = %s, want 20", got)
	}
}

func TestClaimableInitialUnlockGatesOnCliff(t *testing.T) {
	cliff := int64(1_700_000_000)
	start := cliff + 60*day
	s := testSchedule(cliff, start, start+300*day, 10)
	b := testBeneficiary(100, 0)

	if got := mustClaimable(t, cliff-1, s, b); got.Sign() != 0 {
		t.Fatalf("claimable before cliff = %s, want 0", got)
	}
	// The 10% tranche unlocks with the cliff, before linear vesting starts.
	if got := mustClaimable(t, cliff, s, b); got.Int64() != 10 {
		t.Fatalf("claimable at cliff = %s, want 10", got)
	}
	// One interval into the linear window: 10 initial + floor(90/10).
	if got := mustClaimable(t, start+35*day, s, b); got.Int64() != 19 {
		t.Fatalf("claimable one interval after start = %s, want 19", got)
	}
}

func TestClaimableMonotonic(t *testing.T) {
	start := int64(1_700_000_000)
	s := testSchedule(start-10*day, start, start+365*day, 5)
	b := testBeneficiary(997, 0)
	prev := big.NewInt(-1)
	for now := start - 20*day; now <= start+400*day; now += day {
		got := mustClaimable(t, now, s, b)
		if got.Cmp(prev) < 0 {
			t.Fatalf("claimable decreased at %d: %s < %s", now, got, prev)
		}
		prev = got
	}
}

func TestClaimableFullyClaimedIsZero(t *testing.T) {
	start := int64(1_700_000_000)
	s := testSchedule(start, start, start+360*day, 0)
	b := testBeneficiary(500, 500)
	if got := mustClaimable(t, start+400*day, s, b); got.Sign() != 0 {
		t.Fatalf("claimable when fully claimed = %s, want 0", got)
	}
}

func TestClaimableAfterProlongNeverNegative(t *testing.T) {
	start := int64(1_700_000_000)
	s := testSchedule(start, start, start+120*day, 0)
	b := testBeneficiary(400, 0)
	// Two intervals in: 4 intervals total, 100 each.
	claimed := mustClaimable(t, start+60*day, s, b)
	if claimed.Int64() != 200 {
		t.Fatalf("claimable two intervals in = %s, want 200", claimed)
	}
	b.Claimed = claimed

	// Doubling the window halves the per-interval amount; the unlocked total
	// dips below what was already settled and nothing new is claimable.
	s.End = start + 240*day
	got := mustClaimable(t, start+60*day, s, b)
	if got.Sign() != 0 {
		t.Fatalf("claimable after prolong = %s, want 0", got)
	}
}
