package token

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
)

var (
	ErrNilState              = errors.New("token: state not configured")
	ErrTokenExists           = errors.New("token: already registered")
	ErrTokenNotFound         = errors.New("token: not registered")
	ErrInvalidAmount         = errors.New("token: amount must be positive")
	ErrInsufficientFunds     = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrUnauthorizedMint      = errors.New("token: mint authority required")
	ErrZeroAddress           = errors.New("token: zero address")
)

type ledgerState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// Metadata describes a registered fungible token.
type Metadata struct {
	Address       [20]byte
	Symbol        string
	Name          string
	Decimals      uint8
	MintAuthority [20]byte
	TotalSupply   *big.Int
}

// Ledger is the fungible-asset collaborator: balances keyed by
// (token address, holder address) persisted in ledger state. The vesting
// engine debits it for claim payouts and rescue sweeps.
type Ledger struct {
	mu    sync.Mutex
	state ledgerState
}

// NewLedger creates a token ledger backed by the provided state.
func NewLedger(state ledgerState) *Ledger {
	return &Ledger{state: state}
}

var (
	metaPrefix      = []byte("token/meta/")
	balancePrefix   = []byte("token/balance/")
	allowancePrefix = []byte("token/allowance/")
)

func metaKey(token [20]byte) []byte {
	buf := make([]byte, len(metaPrefix)+len(token))
	copy(buf, metaPrefix)
	copy(buf[len(metaPrefix):], token[:])
	return buf
}

func allowanceKey(token, owner, spender [20]byte) []byte {
	buf := make([]byte, 0, len(allowancePrefix)+3*len(token)+2)
	buf = append(buf, allowancePrefix...)
	buf = append(buf, token[:]...)
	buf = append(buf, ':')
	buf = append(buf, owner[:]...)
	buf = append(buf, ':')
	buf = append(buf, spender[:]...)
	return buf
}

func balanceKey(token, holder [20]byte) []byte {
	buf := make([]byte, len(balancePrefix)+len(token)+1+len(holder))
	copy(buf, balancePrefix)
	copy(buf[len(balancePrefix):], token[:])
	buf[len(balancePrefix)+len(token)] = ':'
	copy(buf[len(balancePrefix)+len(token)+1:], holder[:])
	return buf
}

type storedMetadata struct {
	Address       [20]byte
	Symbol        string
	Name          string
	Decimals      uint8
	MintAuthority [20]byte
	TotalSupply   *big.Int
}

func (l *Ledger) loadMetadata(token [20]byte) (*Metadata, error) {
	if l == nil || l.state == nil {
		return nil, ErrNilState
	}
	stored := new(storedMetadata)
	ok, err := l.state.KVGet(metaKey(token), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %x", ErrTokenNotFound, token)
	}
	return &Metadata{
		Address:       stored.Address,
		Symbol:        stored.Symbol,
		Name:          stored.Name,
		Decimals:      stored.Decimals,
		MintAuthority: stored.MintAuthority,
		TotalSupply:   cloneAmount(stored.TotalSupply),
	}, nil
}

func (l *Ledger) storeMetadata(meta *Metadata) error {
	return l.state.KVPut(metaKey(meta.Address), &storedMetadata{
		Address:       meta.Address,
		Symbol:        meta.Symbol,
		Name:          meta.Name,
		Decimals:      meta.Decimals,
		MintAuthority: meta.MintAuthority,
		TotalSupply:   cloneAmount(meta.TotalSupply),
	})
}

func (l *Ledger) loadBalance(token, holder [20]byte) (*big.Int, error) {
	balance := new(big.Int)
	ok, err := l.state.KVGet(balanceKey(token, holder), balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return balance, nil
}

func (l *Ledger) loadAllowance(token, owner, spender [20]byte) (*big.Int, error) {
	allowance := new(big.Int)
	ok, err := l.state.KVGet(allowanceKey(token, owner, spender), allowance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return allowance, nil
}

func (l *Ledger) storeBalance(token, holder [20]byte, amount *big.Int) error {
	return l.state.KVPut(balanceKey(token, holder), amount)
}

// Register records the metadata for a new token. The symbol is normalised to
// uppercase; registration is once per token address.
func (l *Ledger) Register(token [20]byte, symbol, name string, decimals uint8, mintAuthority [20]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l == nil || l.state == nil {
		return ErrNilState
	}
	if token == ([20]byte{}) {
		return ErrZeroAddress
	}
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if normalized == "" {
		return fmt.Errorf("token %x: symbol must not be empty", token)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("token %s: name must not be empty", normalized)
	}
	exists, err := l.state.KVGet(metaKey(token), new(storedMetadata))
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %x", ErrTokenExists, token)
	}
	return l.storeMetadata(&Metadata{
		Address:       token,
		Symbol:        normalized,
		Name:          name,
		Decimals:      decimals,
		MintAuthority: mintAuthority,
		TotalSupply:   big.NewInt(0),
	})
}

// Mint credits freshly issued tokens to the recipient. Only the registered
// mint authority may mint.
func (l *Ledger) Mint(caller, token, to [20]byte, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	meta, err := l.loadMetadata(token)
	if err != nil {
		return err
	}
	if caller != meta.MintAuthority {
		return fmt.Errorf("%w: %x", ErrUnauthorizedMint, caller)
	}
	balance, err := l.loadBalance(token, to)
	if err != nil {
		return err
	}
	if err := l.storeBalance(token, to, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	meta.TotalSupply = new(big.Int).Add(meta.TotalSupply, amount)
	return l.storeMetadata(meta)
}

// Transfer moves tokens between holders. A zero amount is a no-op; a shortfall
// fails without touching either balance.
func (l *Ledger) Transfer(token [20]byte, from, to [20]byte, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transferLocked(token, from, to, amount)
}

func (l *Ledger) transferLocked(token [20]byte, from, to [20]byte, amount *big.Int) error {
	if l == nil || l.state == nil {
		return ErrNilState
	}
	amt := cloneAmount(amount)
	if amt.Sign() == 0 {
		return nil
	}
	if amt.Sign() < 0 {
		return ErrInvalidAmount
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	if _, err := l.loadMetadata(token); err != nil {
		return err
	}
	fromBalance, err := l.loadBalance(token, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amt) < 0 {
		return fmt.Errorf("%w: %x holds %s, needs %s", ErrInsufficientFunds, from, fromBalance, amt)
	}
	toBalance, err := l.loadBalance(token, to)
	if err != nil {
		return err
	}
	if err := l.storeBalance(token, from, new(big.Int).Sub(fromBalance, amt)); err != nil {
		return err
	}
	return l.storeBalance(token, to, new(big.Int).Add(toBalance, amt))
}

// Approve sets the spender's standing allowance over the owner's balance for
// the given token. The allowance is overwritten, not accumulated.
func (l *Ledger) Approve(owner, token, spender [20]byte, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l == nil || l.state == nil {
		return ErrNilState
	}
	if spender == ([20]byte{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if _, err := l.loadMetadata(token); err != nil {
		return err
	}
	return l.state.KVPut(allowanceKey(token, owner, spender), cloneAmount(amount))
}

// Allowance returns what the spender may still move out of the owner's
// balance. Unknown pairs report zero.
func (l *Ledger) Allowance(token, owner, spender [20]byte) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l == nil || l.state == nil {
		return nil, ErrNilState
	}
	return l.loadAllowance(token, owner, spender)
}

// TransferFrom moves tokens out of the owner's balance on the caller's
// authority, consuming allowance. The allowance is decremented before the
// balances move and restored if the transfer fails.
func (l *Ledger) TransferFrom(caller, token, from, to [20]byte, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l == nil || l.state == nil {
		return ErrNilState
	}
	amt := cloneAmount(amount)
	if amt.Sign() == 0 {
		return nil
	}
	if amt.Sign() < 0 {
		return ErrInvalidAmount
	}
	allowance, err := l.loadAllowance(token, from, caller)
	if err != nil {
		return err
	}
	if allowance.Cmp(amt) < 0 {
		return fmt.Errorf("%w: %x may spend %s, needs %s", ErrInsufficientAllowance, caller, allowance, amt)
	}
	remaining := new(big.Int).Sub(allowance, amt)
	if err := l.state.KVPut(allowanceKey(token, from, caller), remaining); err != nil {
		return err
	}
	if err := l.transferLocked(token, from, to, amt); err != nil {
		_ = l.state.KVPut(allowanceKey(token, from, caller), allowance)
		return err
	}
	return nil
}

// BalanceOf returns the holder's balance for the given token. Unregistered
// tokens and unknown holders both report zero.
func (l *Ledger) BalanceOf(token [20]byte, holder [20]byte) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l == nil || l.state == nil {
		return nil, ErrNilState
	}
	return l.loadBalance(token, holder)
}

// Token returns the metadata for a registered token.
func (l *Ledger) Token(token [20]byte) (*Metadata, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadMetadata(token)
}

func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
