package vesting

import (
	"fmt"
	"math/big"
)

// ScheduleID identifies a vesting schedule. IDs form an open ordinal keyspace;
// the constants below name the conventional allocation categories but the
// engine accepts any value as long as it is initialised exactly once.
type ScheduleID uint32

const (
	ScheduleTeam ScheduleID = iota
	ScheduleFoundation
	ScheduleSeedRound
	ScheduleAdvisors
	ScheduleMarketing
	ScheduleStakingRewards
	ScheduleEcosystemReserve
	ScheduleAirdrop
)

func (id ScheduleID) String() string {
	switch id {
	case ScheduleTeam:
		return "Team"
	case ScheduleFoundation:
		return "Foundation"
	case ScheduleSeedRound:
		return "SeedRound"
	case ScheduleAdvisors:
		return "Advisors"
	case ScheduleMarketing:
		return "Marketing"
	case ScheduleStakingRewards:
		return "StakingRewards"
	case ScheduleEcosystemReserve:
		return "EcosystemReserve"
	case ScheduleAirdrop:
		return "Airdrop"
	default:
		return fmt.Sprintf("Schedule(%d)", uint32(id))
	}
}

// Schedule captures the unlock policy shared by every beneficiary attached to
// a given ScheduleID. All fields except End and Remaining are immutable after
// initialisation: End may only move forward while the schedule is live, and
// Remaining is decremented as allocations are assigned.
type Schedule struct {
	ID ScheduleID
	// CliffStart is the timestamp before which nothing unlocks at all.
	CliffStart int64
	// Start is the timestamp at which linear unlocking begins. Never before
	// CliffStart.
	Start int64
	// End is the timestamp at which the full allocation is unlocked.
	End int64
	// InitialUnlockPercent (0-100) of each allocation is released as soon as
	// the cliff passes, ahead of the linear curve.
	InitialUnlockPercent uint32
	// Capacity is the token budget fixed at initialisation.
	Capacity *big.Int
	// Remaining tracks the portion of Capacity not yet assigned to any
	// beneficiary. Never negative, never increased.
	Remaining *big.Int
	// TotalClaimed aggregates every claim settled under this schedule. Used
	// for reporting only, never for claim decisions.
	TotalClaimed *big.Int
	// AllowLateAddition permits new beneficiaries after the cliff has passed.
	// Closed categories reject additions once the cliff is reached.
	AllowLateAddition bool
	CreatedAt         int64
}

// Duration returns the span of the linear unlock window in seconds.
func (s *Schedule) Duration() int64 {
	if s == nil {
		return 0
	}
	return s.End - s.Start
}

// Clone returns a deep copy so callers can mutate the result without touching
// the stored instance.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Capacity = cloneBigInt(s.Capacity)
	clone.Remaining = cloneBigInt(s.Remaining)
	clone.TotalClaimed = cloneBigInt(s.TotalClaimed)
	return &clone
}

// Beneficiary records one address's fixed allocation and claim progress under
// a single schedule.
type Beneficiary struct {
	Address  [20]byte
	Schedule ScheduleID
	// Allocation is fixed when the beneficiary is added.
	Allocation *big.Int
	// Claimed is monotonically non-decreasing and never exceeds Allocation.
	Claimed *big.Int
}

// FullyClaimed reports whether the entire allocation has been settled. The
// flag is derived from the counters rather than stored so it can never drift.
func (b *Beneficiary) FullyClaimed() bool {
	if b == nil || b.Allocation == nil || b.Claimed == nil {
		return false
	}
	return b.Claimed.Cmp(b.Allocation) == 0
}

// Clone returns a deep copy of the beneficiary record.
func (b *Beneficiary) Clone() *Beneficiary {
	if b == nil {
		return nil
	}
	clone := *b
	clone.Allocation = cloneBigInt(b.Allocation)
	clone.Claimed = cloneBigInt(b.Claimed)
	return &clone
}

// Overview is the across-all-schedules view for one beneficiary. The slices
// are parallel, aligned by index to the address's append-only schedule list.
type Overview struct {
	Schedules   []ScheduleID
	Durations   []int64
	Allocations []*big.Int
	Claimed     []*big.Int
	Claimable   []*big.Int
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
