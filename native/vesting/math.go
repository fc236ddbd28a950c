package vesting

import (
	"fmt"
	"math/big"
)

// ClaimInterval is the coarse-graining step for linear unlocks: vested
// amounts become claimable in discrete 30-day increments rather than
// continuously. Discretizing avoids rounding dust across many small claims
// and matches the usual monthly-unlock convention.
const ClaimInterval int64 = 30 * 24 * 60 * 60

var percentDivisor = big.NewInt(100)

// initialUnlock returns the tranche released as soon as the cliff passes,
// computed as allocation * percent / 100 with floor division.
func initialUnlock(allocation *big.Int, percent uint32) *big.Int {
	if allocation == nil || allocation.Sign() <= 0 || percent == 0 {
		return big.NewInt(0)
	}
	unlock := new(big.Int).Mul(allocation, new(big.Int).SetUint64(uint64(percent)))
	return unlock.Quo(unlock, percentDivisor)
}

// Claimable computes the amount unlocked but not yet claimed for the given
// beneficiary at the supplied timestamp.
//
// The unlock curve is: nothing before the cliff; the initial-unlock tranche
// once the cliff passes; then a stepwise linear release in ClaimInterval
// increments from Start. Each full interval releases
// floor((allocation-initial)/totalIntervals); once the schedule has fully
// elapsed the remaining allocation is released exactly, so floor-division
// remainders are never lost.
func Claimable(now int64, s *Schedule, b *Beneficiary) (*big.Int, error) {
	if s == nil {
		return nil, ErrScheduleNotFound
	}
	if b == nil || b.Allocation == nil {
		return nil, ErrBeneficiaryNotFound
	}
	allocation := b.Allocation
	claimed := cloneBigInt(b.Claimed)
	if claimed.Cmp(allocation) == 0 {
		return big.NewInt(0), nil
	}
	if now < s.CliffStart {
		return big.NewInt(0), nil
	}

	initial := initialUnlock(allocation, s.InitialUnlockPercent)
	linear := big.NewInt(0)
	if now >= s.Start {
		// The subtraction must happen before the division; dividing the
		// bare timestamp yields nonsense interval counts.
		elapsedIntervals := (now - s.Start) / ClaimInterval
		switch {
		case elapsedIntervals == 0:
			// Inside the first interval nothing linear has unlocked yet.
		case now > s.End:
			linear = new(big.Int).Sub(allocation, initial)
		default:
			intervalsTotal := s.Duration() / ClaimInterval
			if intervalsTotal > 0 {
				perInterval := new(big.Int).Sub(allocation, initial)
				perInterval.Quo(perInterval, big.NewInt(intervalsTotal))
				linear = perInterval.Mul(perInterval, big.NewInt(elapsedIntervals))
			}
		}
	}

	unlocked := new(big.Int).Add(initial, linear)
	amount := new(big.Int).Sub(unlocked, claimed)
	if amount.Sign() < 0 {
		// A prolonged schedule stretches the per-interval amount, which can
		// pull the unlocked total below what was already settled. Settled
		// claims are never clawed back; nothing new is claimable until the
		// curve catches up.
		return big.NewInt(0), nil
	}
	total := new(big.Int).Add(amount, claimed)
	if total.Cmp(allocation) > 0 {
		return nil, fmt.Errorf("%w: schedule %s claimed %s + claim %s > allocation %s",
			ErrClaimExceedsAllocation, s.ID, claimed, amount, allocation)
	}
	return amount, nil
}
