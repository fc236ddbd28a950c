package vesting

import "errors"

var (
	ErrNilState              = errors.New("vesting: state not configured")
	ErrNilLedger             = errors.New("vesting: asset ledger not configured")
	ErrUnauthorized          = errors.New("vesting: unauthorized")
	ErrAssetNotBound         = errors.New("vesting: asset token not bound")
	ErrAssetAlreadyBound     = errors.New("vesting: asset token already bound")
	ErrScheduleExists        = errors.New("vesting: schedule already initialized")
	ErrScheduleNotFound      = errors.New("vesting: schedule not found")
	ErrInvalidScheduleBounds = errors.New("vesting: invalid schedule bounds")
	ErrScheduleEnded         = errors.New("vesting: schedule already ended")
	ErrAdditionsClosed       = errors.New("vesting: beneficiary additions closed after cliff")
	ErrNoBeneficiaries       = errors.New("vesting: no beneficiaries provided")
	ErrLengthMismatch        = errors.New("vesting: beneficiaries and amounts length mismatch")
	ErrZeroAmount            = errors.New("vesting: allocation must be positive")
	ErrZeroAddress           = errors.New("vesting: zero beneficiary address")
	ErrBeneficiaryExists     = errors.New("vesting: beneficiary already registered")
	ErrBeneficiaryNotFound   = errors.New("vesting: beneficiary not found")
	ErrCapacityExceeded      = errors.New("vesting: schedule capacity exceeded")
	ErrNothingToClaim        = errors.New("vesting: nothing to claim")
	ErrFullyClaimed          = errors.New("vesting: allocation fully claimed")
	ErrClaimBeforeStart      = errors.New("vesting: claim before vesting start")
	ErrRescueVestingAsset    = errors.New("vesting: cannot rescue the vesting asset")
	ErrNoRescueBalance       = errors.New("vesting: no foreign balance to rescue")

	// ErrClaimExceedsAllocation indicates an internal-consistency failure:
	// a computed claim would push the claimed total past the allocation.
	// Reaching it means a defect in the unlock arithmetic, so the operation
	// aborts instead of clamping.
	ErrClaimExceedsAllocation = errors.New("vesting: computed claim exceeds allocation")
)
