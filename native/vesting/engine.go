package vesting

import (
	"bytes"
	"fmt"
	"math/big"
	"sync"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"tokenvest/core/events"
	nativecommon "tokenvest/native/common"
)

const (
	// RoleAdmin gates schedule administration and asset binding. The host
	// grants it through the access-control collaborator.
	RoleAdmin = "ROLE_VESTING_ADMIN"

	moduleName = "vesting"
)

// engineState is the narrow slice of ledger state the engine depends on. The
// concrete state manager implements it; tests provide an in-memory fake.
type engineState interface {
	HasRole(role string, addr []byte) bool
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
}

// assetLedger is the fungible-token collaborator used to settle claims and
// rescue sweeps. Transfers may fail; the engine rolls its own state back when
// they do.
type assetLedger interface {
	Transfer(token [20]byte, from, to [20]byte, amount *big.Int) error
	BalanceOf(token [20]byte, addr [20]byte) (*big.Int, error)
}

// VaultAddress returns the module account that custodies the vested asset.
// The address is derived from a fixed label so every deployment agrees on it
// without configuration.
func VaultAddress() [20]byte {
	var addr [20]byte
	copy(addr[:], ethcrypto.Keccak256([]byte("tokenvest/vesting/vault"))[12:])
	return addr
}

// Engine owns all schedule and beneficiary records and implements allocation,
// claim calculation and claim settlement. Every public mutating operation is
// serialized behind a mutex and performs its external transfer last, so a
// reentrant asset ledger can never observe stale claimable state.
type Engine struct {
	mu      sync.Mutex
	state   engineState
	ledger  assetLedger
	emitter events.Emitter
	pauses  nativecommon.PauseView
	nowFn   func() int64
}

// NewEngine creates a vesting engine with a no-op emitter. Callers wire state,
// ledger and emitter via the setters.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the fungible-asset ledger used for payouts.
func (e *Engine) SetLedger(ledger assetLedger) { e.ledger = ledger }

// SetPauses configures the module pause view consulted before mutations.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source. Primarily intended for tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(event)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) requireAdmin(caller [20]byte) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if !e.state.HasRole(RoleAdmin, caller[:]) {
		return ErrUnauthorized
	}
	return nil
}

func (e *Engine) loadSchedule(id ScheduleID) (*Schedule, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	stored := new(storedSchedule)
	ok, err := e.state.KVGet(scheduleKey(id), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScheduleNotFound, id)
	}
	return stored.toSchedule(), nil
}

func (e *Engine) storeSchedule(s *Schedule) error {
	return e.state.KVPut(scheduleKey(s.ID), s.toStored())
}

func (e *Engine) loadBeneficiary(id ScheduleID, addr [20]byte) (*Beneficiary, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	stored := new(storedBeneficiary)
	ok, err := e.state.KVGet(beneficiaryKey(id, addr), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: schedule %s", ErrBeneficiaryNotFound, id)
	}
	return stored.toBeneficiary(), nil
}

func (e *Engine) storeBeneficiary(b *Beneficiary) error {
	return e.state.KVPut(beneficiaryKey(b.Schedule, b.Address), b.toStored())
}

func (e *Engine) loadGlobalClaimed() (*big.Int, error) {
	total := new(big.Int)
	ok, err := e.state.KVGet(globalClaimedKey, total)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return total, nil
}

func (e *Engine) memberSchedules(addr [20]byte) ([]ScheduleID, error) {
	var raw [][]byte
	if err := e.state.KVGetList(memberListKey(addr), &raw); err != nil {
		return nil, err
	}
	ids := make([]ScheduleID, 0, len(raw))
	for _, entry := range raw {
		id, ok := scheduleIDFromBytes(entry)
		if !ok {
			return nil, fmt.Errorf("vesting: corrupt schedule list entry for %x", addr)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// buildBeneficiaries validates the batch and materialises the records without
// committing anything. The returned sum is the total allocation the batch
// would consume.
func (e *Engine) buildBeneficiaries(id ScheduleID, beneficiaries [][20]byte, amounts []*big.Int) ([]*Beneficiary, *big.Int, error) {
	if len(beneficiaries) == 0 {
		return nil, nil, ErrNoBeneficiaries
	}
	if len(beneficiaries) != len(amounts) {
		return nil, nil, fmt.Errorf("%w: %d beneficiaries, %d amounts", ErrLengthMismatch, len(beneficiaries), len(amounts))
	}
	records := make([]*Beneficiary, 0, len(beneficiaries))
	seen := make(map[[20]byte]struct{}, len(beneficiaries))
	sum := big.NewInt(0)
	for i, addr := range beneficiaries {
		if addr == ([20]byte{}) {
			return nil, nil, ErrZeroAddress
		}
		amount := amounts[i]
		if amount == nil || amount.Sign() <= 0 {
			return nil, nil, fmt.Errorf("%w: beneficiary %x", ErrZeroAmount, addr)
		}
		if _, dup := seen[addr]; dup {
			return nil, nil, fmt.Errorf("%w: %x", ErrBeneficiaryExists, addr)
		}
		seen[addr] = struct{}{}
		exists, err := e.state.KVGet(beneficiaryKey(id, addr), new(storedBeneficiary))
		if err != nil {
			return nil, nil, err
		}
		if exists {
			return nil, nil, fmt.Errorf("%w: %x", ErrBeneficiaryExists, addr)
		}
		records = append(records, &Beneficiary{
			Address:    addr,
			Schedule:   id,
			Allocation: new(big.Int).Set(amount),
			Claimed:    big.NewInt(0),
		})
		sum.Add(sum, amount)
	}
	return records, sum, nil
}

// commitBeneficiaries persists the batch. A failure part way through removes
// every record already written, so a failed batch leaves no trace.
func (e *Engine) commitBeneficiaries(records []*Beneficiary) error {
	for i, b := range records {
		if err := e.storeBeneficiary(b); err != nil {
			e.uncommitBeneficiaries(records[:i+1])
			return err
		}
		if err := e.state.KVAppend(memberListKey(b.Address), scheduleIDBytes(b.Schedule)); err != nil {
			e.uncommitBeneficiaries(records[:i+1])
			return err
		}
	}
	return nil
}

func (e *Engine) uncommitBeneficiaries(records []*Beneficiary) {
	for _, b := range records {
		_ = e.state.KVDelete(beneficiaryKey(b.Schedule, b.Address))
		e.removeMemberSchedule(b.Address, b.Schedule)
	}
}

func (e *Engine) removeMemberSchedule(addr [20]byte, id ScheduleID) {
	var raw [][]byte
	if err := e.state.KVGetList(memberListKey(addr), &raw); err != nil {
		return
	}
	target := scheduleIDBytes(id)
	kept := make([][]byte, 0, len(raw))
	for _, entry := range raw {
		if !bytes.Equal(entry, target) {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(raw) {
		return
	}
	if len(kept) == 0 {
		_ = e.state.KVDelete(memberListKey(addr))
		return
	}
	_ = e.state.KVPut(memberListKey(addr), kept)
}

// CreateSchedule initialises the schedule for the given ID exactly once and
// attaches the initial beneficiary batch. The whole operation is
// all-or-nothing: a capacity shortfall or any invalid pair rejects every
// beneficiary in the batch.
func (e *Engine) CreateSchedule(caller [20]byte, id ScheduleID, cliffStart, start, end int64, initialUnlockPercent uint32, capacity *big.Int, allowLateAddition bool, beneficiaries [][20]byte, amounts []*big.Int) (*Schedule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	now := e.now()
	if cliffStart < now {
		return nil, fmt.Errorf("%w: cliffStart %d before now %d", ErrInvalidScheduleBounds, cliffStart, now)
	}
	if cliffStart > start || start > end {
		return nil, fmt.Errorf("%w: cliffStart=%d start=%d end=%d", ErrInvalidScheduleBounds, cliffStart, start, end)
	}
	if initialUnlockPercent > 100 {
		return nil, fmt.Errorf("%w: initial unlock %d%% out of range", ErrInvalidScheduleBounds, initialUnlockPercent)
	}
	if capacity == nil || capacity.Sign() <= 0 {
		return nil, fmt.Errorf("%w: schedule %s", ErrZeroAmount, id)
	}
	exists, err := e.state.KVGet(scheduleKey(id), new(storedSchedule))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrScheduleExists, id)
	}
	records, sum, err := e.buildBeneficiaries(id, beneficiaries, amounts)
	if err != nil {
		return nil, err
	}
	if sum.Cmp(capacity) > 0 {
		return nil, fmt.Errorf("%w: schedule %s needs %s of %s", ErrCapacityExceeded, id, sum, capacity)
	}
	schedule := &Schedule{
		ID:                   id,
		CliffStart:           cliffStart,
		Start:                start,
		End:                  end,
		InitialUnlockPercent: initialUnlockPercent,
		Capacity:             new(big.Int).Set(capacity),
		Remaining:            new(big.Int).Sub(capacity, sum),
		TotalClaimed:         big.NewInt(0),
		AllowLateAddition:    allowLateAddition,
		CreatedAt:            now,
	}
	if err := e.storeSchedule(schedule); err != nil {
		return nil, err
	}
	if err := e.commitBeneficiaries(records); err != nil {
		_ = e.state.KVDelete(scheduleKey(id))
		return nil, err
	}
	e.emit(events.VestingScheduleCreated{
		ScheduleID:    uint32(id),
		CliffStart:    cliffStart,
		Start:         start,
		End:           end,
		InitialUnlock: initialUnlockPercent,
		Capacity:      new(big.Int).Set(capacity),
		Beneficiaries: len(records),
	})
	return schedule.Clone(), nil
}

// AddBeneficiaries attaches a batch of beneficiaries to an existing schedule.
// Validation and the capacity check run against the entire batch before any
// record is written.
func (e *Engine) AddBeneficiaries(caller [20]byte, id ScheduleID, beneficiaries [][20]byte, amounts []*big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	schedule, err := e.loadSchedule(id)
	if err != nil {
		return err
	}
	if !schedule.AllowLateAddition && e.now() >= schedule.CliffStart {
		return fmt.Errorf("%w: schedule %s", ErrAdditionsClosed, id)
	}
	records, sum, err := e.buildBeneficiaries(id, beneficiaries, amounts)
	if err != nil {
		return err
	}
	if sum.Cmp(schedule.Remaining) > 0 {
		return fmt.Errorf("%w: schedule %s needs %s of %s", ErrCapacityExceeded, id, sum, schedule.Remaining)
	}
	prev := schedule.Clone()
	schedule.Remaining = new(big.Int).Sub(schedule.Remaining, sum)
	if err := e.storeSchedule(schedule); err != nil {
		return err
	}
	if err := e.commitBeneficiaries(records); err != nil {
		_ = e.storeSchedule(prev)
		return err
	}
	e.emit(events.VestingBeneficiariesAdded{
		ScheduleID: uint32(id),
		Count:      len(records),
		Total:      sum,
		Remaining:  new(big.Int).Set(schedule.Remaining),
	})
	return nil
}

// ProlongSchedule extends the linear unlock window of a live schedule. The
// end may only move forward, and only before the schedule has ended.
func (e *Engine) ProlongSchedule(caller [20]byte, id ScheduleID, newEnd int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	schedule, err := e.loadSchedule(id)
	if err != nil {
		return err
	}
	if e.now() >= schedule.End {
		return fmt.Errorf("%w: %s", ErrScheduleEnded, id)
	}
	if newEnd < schedule.End {
		return fmt.Errorf("%w: newEnd %d before current end %d", ErrInvalidScheduleBounds, newEnd, schedule.End)
	}
	oldEnd := schedule.End
	schedule.End = newEnd
	if err := e.storeSchedule(schedule); err != nil {
		return err
	}
	e.emit(events.VestingScheduleProlonged{ScheduleID: uint32(id), OldEnd: oldEnd, NewEnd: newEnd})
	return nil
}

// BindAssetToken binds the vested asset exactly once. Rebinding after
// beneficiaries have accrued claims would silently switch the payout asset,
// so the first non-zero value wins for good.
func (e *Engine) BindAssetToken(caller [20]byte, token [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if token == ([20]byte{}) {
		return ErrZeroAddress
	}
	var existing [20]byte
	ok, err := e.state.KVGet(assetTokenKey, &existing)
	if err != nil {
		return err
	}
	if ok && existing != ([20]byte{}) {
		return fmt.Errorf("%w: %x", ErrAssetAlreadyBound, existing)
	}
	if err := e.state.KVPut(assetTokenKey, token); err != nil {
		return err
	}
	e.emit(events.VestingAssetBound{Token: token})
	return nil
}

// AssetToken returns the bound vested asset, if any.
func (e *Engine) AssetToken() ([20]byte, bool, error) {
	if e == nil || e.state == nil {
		return [20]byte{}, false, ErrNilState
	}
	var token [20]byte
	ok, err := e.state.KVGet(assetTokenKey, &token)
	if err != nil {
		return [20]byte{}, false, err
	}
	if !ok || token == ([20]byte{}) {
		return [20]byte{}, false, nil
	}
	return token, true, nil
}

func (e *Engine) boundAsset() ([20]byte, error) {
	token, ok, err := e.AssetToken()
	if err != nil {
		return [20]byte{}, err
	}
	if !ok {
		return [20]byte{}, ErrAssetNotBound
	}
	return token, nil
}

// claimUpdate captures the records touched by one settled claim so a failed
// transfer can restore them.
type claimUpdate struct {
	prevSchedule    *Schedule
	prevBeneficiary *Beneficiary
}

// applyClaim mutates and persists the beneficiary, schedule and global
// counters for one claim, returning the prior record snapshots.
func (e *Engine) applyClaim(s *Schedule, b *Beneficiary, amount, globalClaimed *big.Int) (claimUpdate, error) {
	update := claimUpdate{prevSchedule: s.Clone(), prevBeneficiary: b.Clone()}
	b.Claimed = new(big.Int).Add(b.Claimed, amount)
	if b.Claimed.Cmp(b.Allocation) > 0 {
		return update, fmt.Errorf("%w: schedule %s beneficiary %x", ErrClaimExceedsAllocation, s.ID, b.Address)
	}
	s.TotalClaimed = new(big.Int).Add(s.TotalClaimed, amount)
	globalClaimed.Add(globalClaimed, amount)
	if err := e.storeBeneficiary(b); err != nil {
		return update, err
	}
	if err := e.storeSchedule(s); err != nil {
		return update, err
	}
	return update, nil
}

func (e *Engine) rollbackClaims(updates []claimUpdate, prevGlobal *big.Int) {
	for _, u := range updates {
		if u.prevBeneficiary != nil {
			_ = e.storeBeneficiary(u.prevBeneficiary)
		}
		if u.prevSchedule != nil {
			_ = e.storeSchedule(u.prevSchedule)
		}
	}
	_ = e.state.KVPut(globalClaimedKey, prevGlobal)
}

// Claim settles the currently unlocked amount for the caller under one
// schedule. All internal counters are updated and persisted before the asset
// transfer is issued; a failed transfer restores the prior records.
func (e *Engine) Claim(caller [20]byte, id ScheduleID) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if e.ledger == nil {
		return nil, ErrNilLedger
	}
	asset, err := e.boundAsset()
	if err != nil {
		return nil, err
	}
	schedule, err := e.loadSchedule(id)
	if err != nil {
		return nil, err
	}
	beneficiary, err := e.loadBeneficiary(id, caller)
	if err != nil {
		return nil, err
	}
	if beneficiary.FullyClaimed() {
		return nil, fmt.Errorf("%w: schedule %s", ErrFullyClaimed, id)
	}
	now := e.now()
	amount, err := Claimable(now, schedule, beneficiary)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		if now < schedule.Start {
			return nil, fmt.Errorf("%w: schedule %s starts at %d", ErrClaimBeforeStart, id, schedule.Start)
		}
		return nil, fmt.Errorf("%w: schedule %s", ErrNothingToClaim, id)
	}
	globalClaimed, err := e.loadGlobalClaimed()
	if err != nil {
		return nil, err
	}
	prevGlobal := new(big.Int).Set(globalClaimed)
	update, err := e.applyClaim(schedule, beneficiary, amount, globalClaimed)
	if err != nil {
		e.rollbackClaims([]claimUpdate{update}, prevGlobal)
		return nil, err
	}
	if err := e.state.KVPut(globalClaimedKey, globalClaimed); err != nil {
		e.rollbackClaims([]claimUpdate{update}, prevGlobal)
		return nil, err
	}
	if err := e.ledger.Transfer(asset, VaultAddress(), caller, amount); err != nil {
		e.rollbackClaims([]claimUpdate{update}, prevGlobal)
		return nil, err
	}
	e.emit(events.VestingClaimed{
		ScheduleID:   uint32(id),
		Beneficiary:  caller,
		Amount:       new(big.Int).Set(amount),
		Claimed:      new(big.Int).Set(beneficiary.Claimed),
		FullyClaimed: beneficiary.FullyClaimed(),
	})
	return amount, nil
}

// ClaimAll settles every schedule the caller participates in, skipping those
// with nothing unlocked, and pays the aggregate in a single transfer. A
// failure at any point rolls back every record touched. The returned slice
// lists the schedules that settled.
func (e *Engine) ClaimAll(caller [20]byte) (*big.Int, []ScheduleID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, nil, err
	}
	if e.ledger == nil {
		return nil, nil, ErrNilLedger
	}
	asset, err := e.boundAsset()
	if err != nil {
		return nil, nil, err
	}
	ids, err := e.memberSchedules(caller)
	if err != nil {
		return nil, nil, err
	}
	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("%w: no schedules", ErrBeneficiaryNotFound)
	}
	globalClaimed, err := e.loadGlobalClaimed()
	if err != nil {
		return nil, nil, err
	}
	prevGlobal := new(big.Int).Set(globalClaimed)
	now := e.now()
	total := big.NewInt(0)
	updates := make([]claimUpdate, 0, len(ids))
	settledIDs := make([]ScheduleID, 0, len(ids))
	settled := make([]events.VestingClaimed, 0, len(ids))
	for _, id := range ids {
		schedule, err := e.loadSchedule(id)
		if err != nil {
			e.rollbackClaims(updates, prevGlobal)
			return nil, nil, err
		}
		beneficiary, err := e.loadBeneficiary(id, caller)
		if err != nil {
			e.rollbackClaims(updates, prevGlobal)
			return nil, nil, err
		}
		amount, err := Claimable(now, schedule, beneficiary)
		if err != nil {
			e.rollbackClaims(updates, prevGlobal)
			return nil, nil, err
		}
		if amount.Sign() == 0 {
			continue
		}
		update, err := e.applyClaim(schedule, beneficiary, amount, globalClaimed)
		if err != nil {
			e.rollbackClaims(append(updates, update), prevGlobal)
			return nil, nil, err
		}
		updates = append(updates, update)
		total.Add(total, amount)
		settledIDs = append(settledIDs, id)
		settled = append(settled, events.VestingClaimed{
			ScheduleID:   uint32(id),
			Beneficiary:  caller,
			Amount:       new(big.Int).Set(amount),
			Claimed:      new(big.Int).Set(beneficiary.Claimed),
			FullyClaimed: beneficiary.FullyClaimed(),
		})
	}
	if total.Sign() == 0 {
		return nil, nil, ErrNothingToClaim
	}
	if err := e.state.KVPut(globalClaimedKey, globalClaimed); err != nil {
		e.rollbackClaims(updates, prevGlobal)
		return nil, nil, err
	}
	if err := e.ledger.Transfer(asset, VaultAddress(), caller, total); err != nil {
		e.rollbackClaims(updates, prevGlobal)
		return nil, nil, err
	}
	for _, evt := range settled {
		e.emit(evt)
	}
	e.emit(events.VestingClaimedAll{Beneficiary: caller, Total: new(big.Int).Set(total), Schedules: len(settled)})
	return total, settledIDs, nil
}

// RescueToken sweeps the vault's balance of a foreign token to the given
// address. The bound vesting asset itself can never be swept.
func (e *Engine) RescueToken(caller [20]byte, token, to [20]byte) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if e.ledger == nil {
		return nil, ErrNilLedger
	}
	if token == ([20]byte{}) || to == ([20]byte{}) {
		return nil, ErrZeroAddress
	}
	if asset, ok, err := e.AssetToken(); err != nil {
		return nil, err
	} else if ok && asset == token {
		return nil, fmt.Errorf("%w: %x", ErrRescueVestingAsset, token)
	}
	balance, err := e.ledger.BalanceOf(token, VaultAddress())
	if err != nil {
		return nil, err
	}
	if balance == nil || balance.Sign() == 0 {
		return nil, fmt.Errorf("%w: token %x", ErrNoRescueBalance, token)
	}
	if err := e.ledger.Transfer(token, VaultAddress(), to, balance); err != nil {
		return nil, err
	}
	e.emit(events.VestingRescueSwept{Token: token, To: to, Amount: new(big.Int).Set(balance)})
	return balance, nil
}

// Schedule returns a copy of the stored schedule.
func (e *Engine) Schedule(id ScheduleID) (*Schedule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadSchedule(id)
}

// BeneficiaryInfo returns a copy of the beneficiary record under one schedule.
func (e *Engine) BeneficiaryInfo(addr [20]byte, id ScheduleID) (*Beneficiary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadBeneficiary(id, addr)
}

// ClaimableAmount recomputes, without side effects, what the beneficiary could
// claim under the schedule right now.
func (e *Engine) ClaimableAmount(addr [20]byte, id ScheduleID) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	schedule, err := e.loadSchedule(id)
	if err != nil {
		return nil, err
	}
	beneficiary, err := e.loadBeneficiary(id, addr)
	if err != nil {
		return nil, err
	}
	return Claimable(e.now(), schedule, beneficiary)
}

// BeneficiaryOverview reports every schedule the address participates in as
// parallel arrays aligned to its append-only schedule list.
func (e *Engine) BeneficiaryOverview(addr [20]byte) (*Overview, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids, err := e.memberSchedules(addr)
	if err != nil {
		return nil, err
	}
	now := e.now()
	overview := &Overview{
		Schedules:   make([]ScheduleID, 0, len(ids)),
		Durations:   make([]int64, 0, len(ids)),
		Allocations: make([]*big.Int, 0, len(ids)),
		Claimed:     make([]*big.Int, 0, len(ids)),
		Claimable:   make([]*big.Int, 0, len(ids)),
	}
	for _, id := range ids {
		schedule, err := e.loadSchedule(id)
		if err != nil {
			return nil, err
		}
		beneficiary, err := e.loadBeneficiary(id, addr)
		if err != nil {
			return nil, err
		}
		claimable, err := Claimable(now, schedule, beneficiary)
		if err != nil {
			return nil, err
		}
		overview.Schedules = append(overview.Schedules, id)
		overview.Durations = append(overview.Durations, schedule.Duration())
		overview.Allocations = append(overview.Allocations, beneficiary.Allocation)
		overview.Claimed = append(overview.Claimed, beneficiary.Claimed)
		overview.Claimable = append(overview.Claimable, claimable)
	}
	return overview, nil
}

// TotalClaimed returns the aggregate settled across every schedule.
func (e *Engine) TotalClaimed() (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, ErrNilState
	}
	return e.loadGlobalClaimed()
}
