package vesting

import (
	"encoding/binary"
	"math/big"
)

var (
	schedulePrefix    = []byte("vesting/schedule/")
	beneficiaryPrefix = []byte("vesting/beneficiary/")
	memberListPrefix  = []byte("vesting/schedules-of/")
	assetTokenKey     = []byte("vesting/asset-token")
	globalClaimedKey  = []byte("vesting/total-claimed")
)

func scheduleKey(id ScheduleID) []byte {
	buf := make([]byte, len(schedulePrefix)+4)
	copy(buf, schedulePrefix)
	binary.BigEndian.PutUint32(buf[len(schedulePrefix):], uint32(id))
	return buf
}

func beneficiaryKey(id ScheduleID, addr [20]byte) []byte {
	buf := make([]byte, len(beneficiaryPrefix)+4+len(addr))
	copy(buf, beneficiaryPrefix)
	binary.BigEndian.PutUint32(buf[len(beneficiaryPrefix):], uint32(id))
	copy(buf[len(beneficiaryPrefix)+4:], addr[:])
	return buf
}

func memberListKey(addr [20]byte) []byte {
	buf := make([]byte, len(memberListPrefix)+len(addr))
	copy(buf, memberListPrefix)
	copy(buf[len(memberListPrefix):], addr[:])
	return buf
}

func scheduleIDBytes(id ScheduleID) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(id))
	return buf
}

func scheduleIDFromBytes(b []byte) (ScheduleID, bool) {
	if len(b) != 4 {
		return 0, false
	}
	return ScheduleID(binary.BigEndian.Uint32(b)), true
}

// storedSchedule is the RLP-friendly representation of a Schedule. Timestamps
// are widened to uint64 because RLP has no signed integer encoding.
type storedSchedule struct {
	ID                uint32
	CliffStart        uint64
	Start             uint64
	End               uint64
	InitialUnlockPct  uint32
	Capacity          *big.Int
	Remaining         *big.Int
	TotalClaimed      *big.Int
	AllowLateAddition bool
	CreatedAt         uint64
}

func (s *Schedule) toStored() *storedSchedule {
	return &storedSchedule{
		ID:                uint32(s.ID),
		CliffStart:        uint64(s.CliffStart),
		Start:             uint64(s.Start),
		End:               uint64(s.End),
		InitialUnlockPct:  s.InitialUnlockPercent,
		Capacity:          cloneBigInt(s.Capacity),
		Remaining:         cloneBigInt(s.Remaining),
		TotalClaimed:      cloneBigInt(s.TotalClaimed),
		AllowLateAddition: s.AllowLateAddition,
		CreatedAt:         uint64(s.CreatedAt),
	}
}

func (s *storedSchedule) toSchedule() *Schedule {
	return &Schedule{
		ID:                   ScheduleID(s.ID),
		CliffStart:           int64(s.CliffStart),
		Start:                int64(s.Start),
		End:                  int64(s.End),
		InitialUnlockPercent: s.InitialUnlockPct,
		Capacity:             cloneBigInt(s.Capacity),
		Remaining:            cloneBigInt(s.Remaining),
		TotalClaimed:         cloneBigInt(s.TotalClaimed),
		AllowLateAddition:    s.AllowLateAddition,
		CreatedAt:            int64(s.CreatedAt),
	}
}

type storedBeneficiary struct {
	Address    [20]byte
	Schedule   uint32
	Allocation *big.Int
	Claimed    *big.Int
}

func (b *Beneficiary) toStored() *storedBeneficiary {
	return &storedBeneficiary{
		Address:    b.Address,
		Schedule:   uint32(b.Schedule),
		Allocation: cloneBigInt(b.Allocation),
		Claimed:    cloneBigInt(b.Claimed),
	}
}

func (b *storedBeneficiary) toBeneficiary() *Beneficiary {
	return &Beneficiary{
		Address:    b.Address,
		Schedule:   ScheduleID(b.Schedule),
		Allocation: cloneBigInt(b.Allocation),
		Claimed:    cloneBigInt(b.Claimed),
	}
}
