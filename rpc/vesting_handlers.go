package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"tokenvest/crypto"
	"tokenvest/native/vesting"
	"tokenvest/observability"
)

type createScheduleParams struct {
	Caller            string   `json:"caller"`
	ScheduleID        uint32   `json:"scheduleId"`
	CliffStart        int64    `json:"cliffStart"`
	Start             int64    `json:"start"`
	End               int64    `json:"end"`
	InitialUnlock     uint32   `json:"initialUnlockPercent"`
	Capacity          string   `json:"capacity"`
	AllowLateAddition bool     `json:"allowLateAddition"`
	Beneficiaries     []string `json:"beneficiaries"`
	Amounts           []string `json:"amounts"`
}

type addBeneficiariesParams struct {
	Caller        string   `json:"caller"`
	ScheduleID    uint32   `json:"scheduleId"`
	Beneficiaries []string `json:"beneficiaries"`
	Amounts       []string `json:"amounts"`
}

type prolongScheduleParams struct {
	Caller     string `json:"caller"`
	ScheduleID uint32 `json:"scheduleId"`
	NewEnd     int64  `json:"newEnd"`
}

type bindAssetParams struct {
	Caller string `json:"caller"`
	Token  string `json:"token"`
}

type rescueParams struct {
	Caller string `json:"caller"`
	Token  string `json:"token"`
	To     string `json:"to"`
}

type claimParams struct {
	Caller     string `json:"caller"`
	ScheduleID uint32 `json:"scheduleId"`
}

type claimAllParams struct {
	Caller string `json:"caller"`
}

type scheduleQueryParams struct {
	ScheduleID uint32 `json:"scheduleId"`
}

type beneficiaryQueryParams struct {
	Beneficiary string `json:"beneficiary"`
	ScheduleID  uint32 `json:"scheduleId"`
}

type addressQueryParams struct {
	Beneficiary string `json:"beneficiary"`
}

type scheduleResult struct {
	ScheduleID        uint32 `json:"scheduleId"`
	Name              string `json:"name"`
	CliffStart        int64  `json:"cliffStart"`
	Start             int64  `json:"start"`
	End               int64  `json:"end"`
	Duration          int64  `json:"duration"`
	InitialUnlock     uint32 `json:"initialUnlockPercent"`
	Capacity          string `json:"capacity"`
	Remaining         string `json:"remaining"`
	TotalClaimed      string `json:"totalClaimed"`
	AllowLateAddition bool   `json:"allowLateAddition"`
}

type beneficiaryResult struct {
	Beneficiary  string `json:"beneficiary"`
	ScheduleID   uint32 `json:"scheduleId"`
	Allocation   string `json:"allocation"`
	Claimed      string `json:"claimed"`
	Claimable    string `json:"claimable"`
	FullyClaimed bool   `json:"fullyClaimed"`
}

type overviewResult struct {
	Beneficiary string   `json:"beneficiary"`
	Schedules   []uint32 `json:"schedules"`
	Durations   []int64  `json:"durations"`
	Allocations []string `json:"allocations"`
	Claimed     []string `json:"claimed"`
	Claimable   []string `json:"claimable"`
}

type claimResult struct {
	Beneficiary string `json:"beneficiary"`
	Amount      string `json:"amount"`
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("expected exactly one params object")
	}
	return json.Unmarshal(req.Params[0], out)
}

func decodeAddr(field, value string) ([20]byte, error) {
	var out [20]byte
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return out, fmt.Errorf("%s is required", field)
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return out, fmt.Errorf("invalid %s: %w", field, err)
	}
	copy(out[:], addr.Bytes())
	return out, nil
}

func decodeAddrList(field string, values []string) ([][20]byte, error) {
	out := make([][20]byte, 0, len(values))
	for i, value := range values {
		addr, err := decodeAddr(fmt.Sprintf("%s[%d]", field, i), value)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

func decodeAmountList(field string, values []string) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(values))
	for i, value := range values {
		amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
		if !ok {
			return nil, fmt.Errorf("invalid %s[%d]: %q", field, i, value)
		}
		out = append(out, amount)
	}
	return out, nil
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func encodeAddr(addr [20]byte) string {
	return crypto.NewAddress(crypto.TKVPrefix, addr[:]).String()
}

// engineErrorStatus maps engine failures to HTTP/RPC status pairs so callers
// can distinguish bad input, authorization and state conflicts from genuine
// server faults.
func engineErrorStatus(err error) (int, int) {
	switch {
	case errors.Is(err, vesting.ErrUnauthorized):
		return http.StatusForbidden, codeUnauthorized
	case errors.Is(err, vesting.ErrScheduleNotFound),
		errors.Is(err, vesting.ErrBeneficiaryNotFound):
		return http.StatusNotFound, codeInvalidParams
	case errors.Is(err, vesting.ErrNoBeneficiaries),
		errors.Is(err, vesting.ErrLengthMismatch),
		errors.Is(err, vesting.ErrZeroAmount),
		errors.Is(err, vesting.ErrZeroAddress),
		errors.Is(err, vesting.ErrInvalidScheduleBounds),
		errors.Is(err, vesting.ErrScheduleExists),
		errors.Is(err, vesting.ErrBeneficiaryExists),
		errors.Is(err, vesting.ErrCapacityExceeded),
		errors.Is(err, vesting.ErrAssetAlreadyBound),
		errors.Is(err, vesting.ErrRescueVestingAsset):
		return http.StatusBadRequest, codeInvalidParams
	case errors.Is(err, vesting.ErrNothingToClaim),
		errors.Is(err, vesting.ErrFullyClaimed),
		errors.Is(err, vesting.ErrClaimBeforeStart),
		errors.Is(err, vesting.ErrScheduleEnded),
		errors.Is(err, vesting.ErrAdditionsClosed),
		errors.Is(err, vesting.ErrNoRescueBalance):
		return http.StatusConflict, codeInvalidParams
	default:
		return http.StatusInternalServerError, codeServerError
	}
}

func writeEngineError(w http.ResponseWriter, id interface{}, err error) int {
	status, code := engineErrorStatus(err)
	writeError(w, status, id, code, err.Error(), nil)
	return status
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, req *RPCRequest) int {
	var params createScheduleParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	caller, err := decodeAddr("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	capacity, ok := new(big.Int).SetString(strings.TrimSpace(params.Capacity), 10)
	if !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid capacity", params.Capacity)
		return http.StatusBadRequest
	}
	beneficiaries, err := decodeAddrList("beneficiaries", params.Beneficiaries)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	amounts, err := decodeAmountList("amounts", params.Amounts)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	schedule, err := s.engine.CreateSchedule(caller, vesting.ScheduleID(params.ScheduleID),
		params.CliffStart, params.Start, params.End, params.InitialUnlock,
		capacity, params.AllowLateAddition, beneficiaries, amounts)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, scheduleToResult(schedule))
	return http.StatusOK
}

func (s *Server) handleAddBeneficiaries(w http.ResponseWriter, req *RPCRequest) int {
	var params addBeneficiariesParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	caller, err := decodeAddr("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	beneficiaries, err := decodeAddrList("beneficiaries", params.Beneficiaries)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	amounts, err := decodeAmountList("amounts", params.Amounts)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	if err := s.engine.AddBeneficiaries(caller, vesting.ScheduleID(params.ScheduleID), beneficiaries, amounts); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]interface{}{"added": len(beneficiaries)})
	return http.StatusOK
}

func (s *Server) handleProlongSchedule(w http.ResponseWriter, req *RPCRequest) int {
	var params prolongScheduleParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	caller, err := decodeAddr("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	if err := s.engine.ProlongSchedule(caller, vesting.ScheduleID(params.ScheduleID), params.NewEnd); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]interface{}{"scheduleId": params.ScheduleID, "newEnd": params.NewEnd})
	return http.StatusOK
}

func (s *Server) handleBindAssetToken(w http.ResponseWriter, req *RPCRequest) int {
	var params bindAssetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	caller, err := decodeAddr("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	tokenAddr, err := decodeAddr("token", params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	if err := s.engine.BindAssetToken(caller, tokenAddr); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]interface{}{"token": params.Token})
	return http.StatusOK
}

func (s *Server) handleRescueToken(w http.ResponseWriter, req *RPCRequest) int {
	var params rescueParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	caller, err := decodeAddr("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	tokenAddr, err := decodeAddr("token", params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	to, err := decodeAddr("to", params.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	amount, err := s.engine.RescueToken(caller, tokenAddr, to)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]interface{}{"token": params.Token, "to": params.To, "amount": formatAmount(amount)})
	return http.StatusOK
}

func (s *Server) handleClaim(w http.ResponseWriter, req *RPCRequest) int {
	var params claimParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	caller, err := decodeAddr("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	amount, err := s.engine.Claim(caller, vesting.ScheduleID(params.ScheduleID))
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	observability.ModuleMetrics().ClaimSettled(vesting.ScheduleID(params.ScheduleID).String())
	writeResult(w, req.ID, claimResult{Beneficiary: params.Caller, Amount: formatAmount(amount)})
	return http.StatusOK
}

func (s *Server) handleClaimAll(w http.ResponseWriter, req *RPCRequest) int {
	var params claimAllParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	caller, err := decodeAddr("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	amount, settled, err := s.engine.ClaimAll(caller)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	for _, id := range settled {
		observability.ModuleMetrics().ClaimSettled(id.String())
	}
	writeResult(w, req.ID, claimResult{Beneficiary: params.Caller, Amount: formatAmount(amount)})
	return http.StatusOK
}

func scheduleToResult(s *vesting.Schedule) scheduleResult {
	return scheduleResult{
		ScheduleID:        uint32(s.ID),
		Name:              s.ID.String(),
		CliffStart:        s.CliffStart,
		Start:             s.Start,
		End:               s.End,
		Duration:          s.Duration(),
		InitialUnlock:     s.InitialUnlockPercent,
		Capacity:          formatAmount(s.Capacity),
		Remaining:         formatAmount(s.Remaining),
		TotalClaimed:      formatAmount(s.TotalClaimed),
		AllowLateAddition: s.AllowLateAddition,
	}
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, req *RPCRequest) int {
	var params scheduleQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	schedule, err := s.engine.Schedule(vesting.ScheduleID(params.ScheduleID))
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, scheduleToResult(schedule))
	return http.StatusOK
}

func (s *Server) handleGetClaimable(w http.ResponseWriter, req *RPCRequest) int {
	var params beneficiaryQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	addr, err := decodeAddr("beneficiary", params.Beneficiary)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	claimable, err := s.engine.ClaimableAmount(addr, vesting.ScheduleID(params.ScheduleID))
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]interface{}{
		"beneficiary": params.Beneficiary,
		"scheduleId":  params.ScheduleID,
		"claimable":   formatAmount(claimable),
	})
	return http.StatusOK
}

func (s *Server) handleGetBeneficiary(w http.ResponseWriter, req *RPCRequest) int {
	var params beneficiaryQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	addr, err := decodeAddr("beneficiary", params.Beneficiary)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	id := vesting.ScheduleID(params.ScheduleID)
	record, err := s.engine.BeneficiaryInfo(addr, id)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	claimable, err := s.engine.ClaimableAmount(addr, id)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, beneficiaryResult{
		Beneficiary:  params.Beneficiary,
		ScheduleID:   params.ScheduleID,
		Allocation:   formatAmount(record.Allocation),
		Claimed:      formatAmount(record.Claimed),
		Claimable:    formatAmount(claimable),
		FullyClaimed: record.FullyClaimed(),
	})
	return http.StatusOK
}

func (s *Server) handleGetBeneficiarySchedules(w http.ResponseWriter, req *RPCRequest) int {
	var params addressQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	addr, err := decodeAddr("beneficiary", params.Beneficiary)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	overview, err := s.engine.BeneficiaryOverview(addr)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	result := overviewResult{
		Beneficiary: params.Beneficiary,
		Schedules:   make([]uint32, 0, len(overview.Schedules)),
		Durations:   overview.Durations,
		Allocations: make([]string, 0, len(overview.Allocations)),
		Claimed:     make([]string, 0, len(overview.Claimed)),
		Claimable:   make([]string, 0, len(overview.Claimable)),
	}
	for i := range overview.Schedules {
		result.Schedules = append(result.Schedules, uint32(overview.Schedules[i]))
		result.Allocations = append(result.Allocations, formatAmount(overview.Allocations[i]))
		result.Claimed = append(result.Claimed, formatAmount(overview.Claimed[i]))
		result.Claimable = append(result.Claimable, formatAmount(overview.Claimable[i]))
	}
	writeResult(w, req.ID, result)
	return http.StatusOK
}

func (s *Server) handleTotalClaimed(w http.ResponseWriter, req *RPCRequest) int {
	total, err := s.engine.TotalClaimed()
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]interface{}{"totalClaimed": formatAmount(total)})
	return http.StatusOK
}
