package core

// AccountLedger tracks, per caller, which tokens they have registered a
// deposit slot for and how much of each they currently have on deposit at
// the exchange, awaiting a swap/add-liquidity call (no Exchange operation
// pays a staged balance back out). It never touches a real token contract;
// Exchange does that and
// only calls into AccountLedger to update bookkeeping.

import (
	"sync"

	"github.com/holiman/uint256"

	"stableswap-network/pkg/fixedmath"
)

// AccountEntry is one account's deposit bookkeeping.
type AccountEntry struct {
	deposits map[TokenID]*uint256.Int
}

func newAccountEntry() *AccountEntry {
	return &AccountEntry{deposits: make(map[TokenID]*uint256.Int)}
}

// AccountLedger is a mutex-guarded map of AccountID to AccountEntry.
type AccountLedger struct {
	mu       sync.RWMutex
	accounts map[AccountID]*AccountEntry
}

// NewAccountLedger returns an empty ledger.
func NewAccountLedger() *AccountLedger {
	return &AccountLedger{accounts: make(map[AccountID]*AccountEntry)}
}

// RegisterToken opens a zero-balance deposit slot for account/token if one
// does not already exist. Idempotent.
func (l *AccountLedger) RegisterToken(account AccountID, token TokenID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := l.entryLocked(account)
	if _, ok := entry.deposits[token]; !ok {
		entry.deposits[token] = fixedmath.Zero()
	}
}

// UnregisterToken removes a token's deposit slot, failing if it still
// holds a nonzero balance.
func (l *AccountLedger) UnregisterToken(account AccountID, token TokenID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.accounts[account]
	if !ok {
		return ErrTokenNotRegistered
	}
	bal, ok := entry.deposits[token]
	if !ok {
		return ErrTokenNotRegistered
	}
	if !bal.IsZero() {
		return ErrInvalidState
	}
	delete(entry.deposits, token)
	return nil
}

// Credit adds amount to account's deposit balance for token, registering
// the slot first if needed.
func (l *AccountLedger) Credit(account AccountID, token TokenID, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := l.entryLocked(account)
	bal, ok := entry.deposits[token]
	if !ok {
		bal = fixedmath.Zero()
	}
	sum, err := fixedmath.Add(bal, amount)
	if err != nil {
		return err
	}
	entry.deposits[token] = sum
	return nil
}

// Debit subtracts amount from account's deposit balance for token, failing
// if the token is not registered or the balance is insufficient.
func (l *AccountLedger) Debit(account AccountID, token TokenID, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.accounts[account]
	if !ok {
		return ErrTokenNotRegistered
	}
	bal, ok := entry.deposits[token]
	if !ok {
		return ErrTokenNotRegistered
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	entry.deposits[token] = fixedmath.SubClamped(bal, amount)
	return nil
}

// BalanceOf returns the deposit balance for account/token, or zero if the
// account or token slot does not exist.
func (l *AccountLedger) BalanceOf(account AccountID, token TokenID) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.accounts[account]
	if !ok {
		return fixedmath.Zero()
	}
	bal, ok := entry.deposits[token]
	if !ok {
		return fixedmath.Zero()
	}
	return new(uint256.Int).Set(bal)
}

// RegisteredTokens returns the tokens account has an open deposit slot
// for, in no particular order.
func (l *AccountLedger) RegisteredTokens(account AccountID) []TokenID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.accounts[account]
	if !ok {
		return nil
	}
	out := make([]TokenID, 0, len(entry.deposits))
	for t := range entry.deposits {
		out = append(out, t)
	}
	return out
}

func (l *AccountLedger) entryLocked(account AccountID) *AccountEntry {
	entry, ok := l.accounts[account]
	if !ok {
		entry = newAccountEntry()
		l.accounts[account] = entry
	}
	return entry
}
