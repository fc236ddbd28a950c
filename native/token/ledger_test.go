package token

import (
	"errors"
	"math/big"
	"testing"

	"tokenvest/core/state"
	"tokenvest/storage"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(state.NewManager(storage.NewMemDB()))
}

func TestRegisterNormalizesAndRejectsDuplicates(t *testing.T) {
	ledger := newTestLedger(t)
	tok := [20]byte{0x70}
	authority := [20]byte{0xAA}

	if err := ledger.Register(tok, " vest ", "Vested Token", 18, authority); err != nil {
		t.Fatalf("register: %v", err)
	}
	meta, err := ledger.Token(tok)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if meta.Symbol != "VEST" {
		t.Fatalf("symbol = %q, want VEST", meta.Symbol)
	}
	if meta.TotalSupply.Sign() != 0 {
		t.Fatalf("fresh token supply = %s, want 0", meta.TotalSupply)
	}
	if err := ledger.Register(tok, "VEST2", "Again", 18, authority); !errors.Is(err, ErrTokenExists) {
		t.Fatalf("duplicate register: got %v, want %v", err, ErrTokenExists)
	}
	if err := ledger.Register([20]byte{0x71}, "", "No Symbol", 18, authority); err == nil {
		t.Fatalf("empty symbol should be rejected")
	}
}

func TestMintRequiresAuthority(t *testing.T) {
	ledger := newTestLedger(t)
	tok := [20]byte{0x70}
	authority := [20]byte{0xAA}
	holder := [20]byte{0x01}
	if err := ledger.Register(tok, "VEST", "Vested Token", 18, authority); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := ledger.Mint([20]byte{0xBB}, tok, holder, big.NewInt(10)); !errors.Is(err, ErrUnauthorizedMint) {
		t.Fatalf("stranger mint: got %v, want %v", err, ErrUnauthorizedMint)
	}
	if err := ledger.Mint(authority, tok, holder, big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero mint: got %v, want %v", err, ErrInvalidAmount)
	}
	if err := ledger.Mint(authority, tok, holder, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	balance, err := ledger.BalanceOf(tok, holder)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Int64() != 100 {
		t.Fatalf("balance = %s, want 100", balance)
	}
	meta, _ := ledger.Token(tok)
	if meta.TotalSupply.Int64() != 100 {
		t.Fatalf("total supply = %s, want 100", meta.TotalSupply)
	}
}

func TestTransfer(t *testing.T) {
	ledger := newTestLedger(t)
	tok := [20]byte{0x70}
	authority := [20]byte{0xAA}
	alice := [20]byte{0x01}
	bob := [20]byte{0x02}
	if err := ledger.Register(tok, "VEST", "Vested Token", 18, authority); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := ledger.Mint(authority, tok, alice, big.NewInt(50)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := ledger.Transfer(tok, alice, bob, big.NewInt(30)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	aliceBalance, _ := ledger.BalanceOf(tok, alice)
	bobBalance, _ := ledger.BalanceOf(tok, bob)
	if aliceBalance.Int64() != 20 || bobBalance.Int64() != 30 {
		t.Fatalf("balances = %s/%s, want 20/30", aliceBalance, bobBalance)
	}

	// A shortfall leaves both balances untouched.
	if err := ledger.Transfer(tok, alice, bob, big.NewInt(21)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("shortfall: got %v, want %v", err, ErrInsufficientFunds)
	}
	aliceBalance, _ = ledger.BalanceOf(tok, alice)
	bobBalance, _ = ledger.BalanceOf(tok, bob)
	if aliceBalance.Int64() != 20 || bobBalance.Int64() != 30 {
		t.Fatalf("balances after shortfall = %s/%s, want 20/30", aliceBalance, bobBalance)
	}

	// Zero is a no-op, negative is rejected.
	if err := ledger.Transfer(tok, alice, bob, big.NewInt(0)); err != nil {
		t.Fatalf("zero transfer: %v", err)
	}
	if err := ledger.Transfer(tok, alice, bob, big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative transfer: got %v, want %v", err, ErrInvalidAmount)
	}
	if err := ledger.Transfer([20]byte{0x99}, alice, bob, big.NewInt(1)); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("unregistered token: got %v, want %v", err, ErrTokenNotFound)
	}
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	ledger := newTestLedger(t)
	tok := [20]byte{0x70}
	authority := [20]byte{0xAA}
	owner := [20]byte{0x01}
	spender := [20]byte{0x02}
	recipient := [20]byte{0x03}
	if err := ledger.Register(tok, "VEST", "Vested Token", 18, authority); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := ledger.Mint(authority, tok, owner, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	// No allowance yet.
	err := ledger.TransferFrom(spender, tok, owner, recipient, big.NewInt(10))
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("unapproved transfer-from: got %v, want %v", err, ErrInsufficientAllowance)
	}

	if err := ledger.Approve(owner, tok, spender, big.NewInt(30)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	allowance, err := ledger.Allowance(tok, owner, spender)
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if allowance.Int64() != 30 {
		t.Fatalf("allowance = %s, want 30", allowance)
	}

	if err := ledger.TransferFrom(spender, tok, owner, recipient, big.NewInt(10)); err != nil {
		t.Fatalf("transfer-from: %v", err)
	}
	ownerBalance, _ := ledger.BalanceOf(tok, owner)
	recipientBalance, _ := ledger.BalanceOf(tok, recipient)
	if ownerBalance.Int64() != 90 || recipientBalance.Int64() != 10 {
		t.Fatalf("balances = %s/%s, want 90/10", ownerBalance, recipientBalance)
	}
	allowance, _ = ledger.Allowance(tok, owner, spender)
	if allowance.Int64() != 20 {
		t.Fatalf("allowance after spend = %s, want 20", allowance)
	}

	// Spending past the remaining allowance fails even with balance to cover.
	err = ledger.TransferFrom(spender, tok, owner, recipient, big.NewInt(21))
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("overspend: got %v, want %v", err, ErrInsufficientAllowance)
	}
}

func TestTransferFromRestoresAllowanceOnFailedTransfer(t *testing.T) {
	ledger := newTestLedger(t)
	tok := [20]byte{0x70}
	authority := [20]byte{0xAA}
	owner := [20]byte{0x01}
	spender := [20]byte{0x02}
	if err := ledger.Register(tok, "VEST", "Vested Token", 18, authority); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := ledger.Mint(authority, tok, owner, big.NewInt(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	// Allowance exceeds the owner's balance; the balance check fails and the
	// already-consumed allowance is restored.
	if err := ledger.Approve(owner, tok, spender, big.NewInt(50)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	err := ledger.TransferFrom(spender, tok, owner, [20]byte{0x03}, big.NewInt(20))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("shortfall: got %v, want %v", err, ErrInsufficientFunds)
	}
	allowance, _ := ledger.Allowance(tok, owner, spender)
	if allowance.Int64() != 50 {
		t.Fatalf("allowance after failed transfer = %s, want 50", allowance)
	}
	ownerBalance, _ := ledger.BalanceOf(tok, owner)
	if ownerBalance.Int64() != 10 {
		t.Fatalf("owner balance after failed transfer = %s, want 10", ownerBalance)
	}
}

func TestBalanceOfUnknownHolderIsZero(t *testing.T) {
	ledger := newTestLedger(t)
	balance, err := ledger.BalanceOf([20]byte{0x70}, [20]byte{0x01})
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Sign() != 0 {
		t.Fatalf("balance = %s, want 0", balance)
	}
}
