package events

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"tokenvest/core/types"
	"tokenvest/crypto"
)

const (
	TypeVestingScheduleCreated    = "vesting.schedule.created"
	TypeVestingBeneficiariesAdded = "vesting.beneficiaries.added"
	TypeVestingScheduleProlonged  = "vesting.schedule.prolonged"
	TypeVestingAssetBound         = "vesting.asset.bound"
	TypeVestingClaimed            = "vesting.claimed"
	TypeVestingClaimedAll         = "vesting.claimed_all"
	TypeVestingRescueSwept        = "vesting.rescue.swept"
)

type VestingScheduleCreated struct {
	ScheduleID    uint32
	CliffStart    int64
	Start         int64
	End           int64
	InitialUnlock uint32
	Capacity      *big.Int
	Beneficiaries int
}

func (VestingScheduleCreated) EventType() string { return TypeVestingScheduleCreated }

func (e VestingScheduleCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeVestingScheduleCreated,
		Attributes: map[string]string{
			"scheduleId":    strconv.FormatUint(uint64(e.ScheduleID), 10),
			"cliffStart":    intToString(e.CliffStart),
			"start":         intToString(e.Start),
			"end":           intToString(e.End),
			"initialUnlock": strconv.FormatUint(uint64(e.InitialUnlock), 10),
			"capacity":      formatAmount(e.Capacity),
			"beneficiaries": strconv.Itoa(e.Beneficiaries),
		},
	}
}

type VestingBeneficiariesAdded struct {
	ScheduleID uint32
	Count      int
	Total      *big.Int
	Remaining  *big.Int
}

func (VestingBeneficiariesAdded) EventType() string { return TypeVestingBeneficiariesAdded }

func (e VestingBeneficiariesAdded) Event() *types.Event {
	return &types.Event{
		Type: TypeVestingBeneficiariesAdded,
		Attributes: map[string]string{
			"scheduleId": strconv.FormatUint(uint64(e.ScheduleID), 10),
			"count":      strconv.Itoa(e.Count),
			"total":      formatAmount(e.Total),
			"remaining":  formatAmount(e.Remaining),
		},
	}
}

type VestingScheduleProlonged struct {
	ScheduleID uint32
	OldEnd     int64
	NewEnd     int64
}

func (VestingScheduleProlonged) EventType() string { return TypeVestingScheduleProlonged }

func (e VestingScheduleProlonged) Event() *types.Event {
	return &types.Event{
		Type: TypeVestingScheduleProlonged,
		Attributes: map[string]string{
			"scheduleId": strconv.FormatUint(uint64(e.ScheduleID), 10),
			"oldEnd":     intToString(e.OldEnd),
			"newEnd":     intToString(e.NewEnd),
		},
	}
}

type VestingAssetBound struct {
	Token [20]byte
}

func (VestingAssetBound) EventType() string { return TypeVestingAssetBound }

func (e VestingAssetBound) Event() *types.Event {
	return &types.Event{
		Type: TypeVestingAssetBound,
		Attributes: map[string]string{
			"token": hex.EncodeToString(e.Token[:]),
		},
	}
}

type VestingClaimed struct {
	ScheduleID   uint32
	Beneficiary  [20]byte
	Amount       *big.Int
	Claimed      *big.Int
	FullyClaimed bool
}

func (VestingClaimed) EventType() string { return TypeVestingClaimed }

func (e VestingClaimed) Event() *types.Event {
	return &types.Event{
		Type: TypeVestingClaimed,
		Attributes: map[string]string{
			"scheduleId":   strconv.FormatUint(uint64(e.ScheduleID), 10),
			"beneficiary":  crypto.NewAddress(crypto.TKVPrefix, e.Beneficiary[:]).String(),
			"amount":       formatAmount(e.Amount),
			"claimed":      formatAmount(e.Claimed),
			"fullyClaimed": strconv.FormatBool(e.FullyClaimed),
		},
	}
}

type VestingClaimedAll struct {
	Beneficiary [20]byte
	Total       *big.Int
	Schedules   int
}

func (VestingClaimedAll) EventType() string { return TypeVestingClaimedAll }

func (e VestingClaimedAll) Event() *types.Event {
	return &types.Event{
		Type: TypeVestingClaimedAll,
		Attributes: map[string]string{
			"beneficiary": crypto.NewAddress(crypto.TKVPrefix, e.Beneficiary[:]).String(),
			"total":       formatAmount(e.Total),
			"schedules":   strconv.Itoa(e.Schedules),
		},
	}
}

type VestingRescueSwept struct {
	Token  [20]byte
	To     [20]byte
	Amount *big.Int
}

func (VestingRescueSwept) EventType() string { return TypeVestingRescueSwept }

func (e VestingRescueSwept) Event() *types.Event {
	return &types.Event{
		Type: TypeVestingRescueSwept,
		Attributes: map[string]string{
			"token":  hex.EncodeToString(e.Token[:]),
			"to":     crypto.NewAddress(crypto.TKVPrefix, e.To[:]).String(),
			"amount": formatAmount(e.Amount),
		},
	}
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func intToString(v int64) string {
	return strconv.FormatInt(v, 10)
}
