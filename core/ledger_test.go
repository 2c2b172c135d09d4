package core

import (
	"testing"

	"stableswap-network/pkg/fixedmath"
)

func TestAccountLedgerCreditDebit(t *testing.T) {
	l := NewAccountLedger()
	if err := l.Credit("alice", "usdc", fixedmath.FromUint64(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bal := l.BalanceOf("alice", "usdc"); bal.Uint64() != 100 {
		t.Fatalf("got %v want 100", bal)
	}
	if err := l.Debit("alice", "usdc", fixedmath.FromUint64(40)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bal := l.BalanceOf("alice", "usdc"); bal.Uint64() != 60 {
		t.Fatalf("got %v want 60", bal)
	}
}

func TestAccountLedgerDebitInsufficient(t *testing.T) {
	l := NewAccountLedger()
	l.RegisterToken("alice", "usdc")
	if err := l.Debit("alice", "usdc", fixedmath.FromUint64(1)); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestAccountLedgerDebitUnregistered(t *testing.T) {
	l := NewAccountLedger()
	if err := l.Debit("alice", "usdc", fixedmath.FromUint64(1)); err != ErrTokenNotRegistered {
		t.Fatalf("expected ErrTokenNotRegistered, got %v", err)
	}
}

func TestAccountLedgerUnregisterRequiresZeroBalance(t *testing.T) {
	l := NewAccountLedger()
	l.Credit("alice", "usdc", fixedmath.FromUint64(5))
	if err := l.UnregisterToken("alice", "usdc"); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	l.Debit("alice", "usdc", fixedmath.FromUint64(5))
	if err := l.UnregisterToken("alice", "usdc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAccountLedgerRegisteredTokens(t *testing.T) {
	l := NewAccountLedger()
	l.RegisterToken("alice", "usdc")
	l.RegisterToken("alice", "dai")
	tokens := l.RegisteredTokens("alice")
	if len(tokens) != 2 {
		t.Fatalf("got %d tokens want 2", len(tokens))
	}
}
