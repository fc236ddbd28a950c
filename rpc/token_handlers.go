package rpc

import (
	"net/http"
)

type tokenBalanceParams struct {
	Token   string `json:"token"`
	Address string `json:"address"`
}

type tokenQueryParams struct {
	Token string `json:"token"`
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, req *RPCRequest) int {
	var params tokenBalanceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	tokenAddr, err := decodeAddr("token", params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	holder, err := decodeAddr("address", params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	balance, err := s.ledger.BalanceOf(tokenAddr, holder)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return http.StatusInternalServerError
	}
	writeResult(w, req.ID, map[string]interface{}{
		"token":   params.Token,
		"address": params.Address,
		"balance": formatAmount(balance),
	})
	return http.StatusOK
}

func (s *Server) handleTokenMetadata(w http.ResponseWriter, req *RPCRequest) int {
	var params tokenQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	tokenAddr, err := decodeAddr("token", params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusBadRequest
	}
	meta, err := s.ledger.Token(tokenAddr)
	if err != nil {
		writeError(w, http.StatusNotFound, req.ID, codeInvalidParams, err.Error(), nil)
		return http.StatusNotFound
	}
	writeResult(w, req.ID, map[string]interface{}{
		"token":       params.Token,
		"symbol":      meta.Symbol,
		"name":        meta.Name,
		"decimals":    meta.Decimals,
		"totalSupply": formatAmount(meta.TotalSupply),
	})
	return http.StatusOK
}
