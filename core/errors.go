package core

import "errors"

// Sentinel errors, one per error kind. Pool operations return them before
// any reserve or share mutation is applied. Exchange.OnTokenTransfer credits
// the sender's ledger entry before its swap path runs and keeps that credit
// when the swap fails; a payout error returned after a pool operation has
// committed does not undo that operation.
var (
	ErrBadArgument        = errors.New("bad argument")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPoolNotFound       = errors.New("pool not found")
	ErrTokenNotInPool     = errors.New("token not in pool")
	ErrTokenNotRegistered = errors.New("token not registered")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSlippageExceeded   = errors.New("slippage exceeded")
	ErrMathConverge       = errors.New("newton iteration did not converge")
	ErrOverflow           = errors.New("overflow")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrInvalidState       = errors.New("invalid state")
)
