package core

// Exchange is the top-level coordinator: it owns the pool registry, the
// owner-gated admin surface, the Running/Paused state machine, and the
// receiver-callback entry point external token contracts call after
// moving funds to the exchange's own account. It never moves tokens
// itself — that is delegated to a TokenTransferer, kept as an interface
// so the math core stays independent of any particular token standard.

import (
	"encoding/json"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/holiman/uint256"

	"stableswap-network/pkg/fixedmath"
)

// ExchangeState is the Running/Paused admin state machine.
type ExchangeState int

const (
	StateRunning ExchangeState = iota
	StatePaused
)

func (s ExchangeState) String() string {
	if s == StatePaused {
		return "paused"
	}
	return "running"
}

// TokenTransferer moves already-custodied funds between accounts. Exchange
// calls it only to pay out swap/withdrawal proceeds and admin fee claims;
// inbound transfers are assumed to have already landed in the exchange's
// own account by the time OnTokenTransfer fires, mirroring a receiver
// callback on a token contract.
type TokenTransferer interface {
	Transfer(token TokenID, from, to AccountID, amount *uint256.Int) error
}

// transferMsg is the JSON payload OnTokenTransfer expects for a direct
// swap triggered by a token transfer.
type transferMsg struct {
	Action   string  `json:"action"`
	PoolID   PoolID  `json:"pool_id"`
	TokenOut TokenID `json:"token_out"`
	MinOut   string  `json:"min_out"`
}

// Exchange coordinates every pool under one owner and one admin state.
type Exchange struct {
	mu sync.RWMutex

	owner       AccountID
	selfAccount AccountID
	transferer  TokenTransferer
	ledger      *AccountLedger

	pools  map[PoolID]*Pool
	nextID PoolID

	state ExchangeState

	// defaultFees is applied to a pool fixture entry that doesn't specify
	// its own fee schedule; feeChangeCooldown is handed to every pool this
	// exchange creates.
	defaultFees       Fees
	feeChangeCooldown time.Duration

	logger *log.Logger
}

// NewExchange constructs an Exchange owned by `owner`, using selfAccount as
// the account that custodies funds in transit. defaultFees backstops pool
// fixture entries that omit a fee schedule; feeChangeCooldown is handed to
// every pool this exchange creates and falls back to
// DefaultFeeChangeCooldown when zero.
func NewExchange(owner, selfAccount AccountID, transferer TokenTransferer, logger *log.Logger, defaultFees Fees, feeChangeCooldown time.Duration) *Exchange {
	if feeChangeCooldown <= 0 {
		feeChangeCooldown = DefaultFeeChangeCooldown
	}
	return &Exchange{
		owner:             owner,
		selfAccount:       selfAccount,
		transferer:        transferer,
		ledger:            NewAccountLedger(),
		pools:             make(map[PoolID]*Pool),
		defaultFees:       defaultFees,
		feeChangeCooldown: feeChangeCooldown,
		logger:            logger,
	}
}

func (e *Exchange) requireOwner(caller AccountID) error {
	if caller != e.owner {
		return ErrUnauthorized
	}
	return nil
}

func (e *Exchange) requireRunning() error {
	if e.state != StateRunning {
		return ErrInvalidState
	}
	return nil
}

// State returns the current admin state.
func (e *Exchange) State() ExchangeState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Pause stops all trading and liquidity operations. Owner only.
func (e *Exchange) Pause(caller AccountID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.state = StatePaused
	e.logger.WithField("owner", caller).Info("exchange paused")
	return nil
}

// Resume re-enables trading and liquidity operations. Owner only.
func (e *Exchange) Resume(caller AccountID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.state = StateRunning
	e.logger.WithField("owner", caller).Info("exchange resumed")
	return nil
}

// AddPool registers a new pool with the given tokens and starting
// amplification. Owner only.
func (e *Exchange) AddPool(caller AccountID, tokenIDs []TokenID, decimals []uint8, initialA uint64, fees Fees) (PoolID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return 0, err
	}
	pid := e.nextID
	pool, err := NewPool(pid, tokenIDs, decimals, initialA, fees, e.logger)
	if err != nil {
		return 0, err
	}
	pool.feeChangeCooldown = e.feeChangeCooldown
	e.pools[pid] = pool
	e.nextID++
	e.logger.WithFields(log.Fields{"pool": pid, "tokens": tokenIDs}).Info("pool created")
	return pid, nil
}

// Pool returns the pool with the given id, or ErrPoolNotFound.
func (e *Exchange) Pool(pid PoolID) (*Pool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	pool, ok := e.pools[pid]
	if !ok {
		return nil, ErrPoolNotFound
	}
	return pool, nil
}

// Pools returns every pool, ordered by id.
func (e *Exchange) Pools() []*Pool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Pool, 0, len(e.pools))
	for i := PoolID(0); i < e.nextID; i++ {
		if pool, ok := e.pools[i]; ok {
			out = append(out, pool)
		}
	}
	return out
}

// ChangeFeesSetting schedules new fees for a pool. Owner only.
func (e *Exchange) ChangeFeesSetting(caller AccountID, pid PoolID, newFees Fees, now time.Time) error {
	e.mu.RLock()
	if err := e.requireOwner(caller); err != nil {
		e.mu.RUnlock()
		return err
	}
	pool, ok := e.pools[pid]
	e.mu.RUnlock()
	if !ok {
		return ErrPoolNotFound
	}
	return pool.ScheduleFees(newFees, now)
}

// SetAmpRamp schedules an amplification ramp for a pool. Owner only.
func (e *Exchange) SetAmpRamp(caller AccountID, pid PoolID, targetA uint64, now, rampStop time.Time) error {
	e.mu.RLock()
	if err := e.requireOwner(caller); err != nil {
		e.mu.RUnlock()
		return err
	}
	pool, ok := e.pools[pid]
	e.mu.RUnlock()
	if !ok {
		return ErrPoolNotFound
	}
	return pool.RampAmp(targetA, now, rampStop)
}

// StopAmpRamp freezes a pool's amplification ramp. Owner only.
func (e *Exchange) StopAmpRamp(caller AccountID, pid PoolID, now time.Time) error {
	e.mu.RLock()
	if err := e.requireOwner(caller); err != nil {
		e.mu.RUnlock()
		return err
	}
	pool, ok := e.pools[pid]
	e.mu.RUnlock()
	if !ok {
		return ErrPoolNotFound
	}
	pool.StopRampAmp(now)
	return nil
}

// ClaimAdminFees pays the accrued admin fees of a pool out to the owner.
// Owner only.
func (e *Exchange) ClaimAdminFees(caller AccountID, pid PoolID) error {
	e.mu.RLock()
	if err := e.requireOwner(caller); err != nil {
		e.mu.RUnlock()
		return err
	}
	pool, ok := e.pools[pid]
	e.mu.RUnlock()
	if !ok {
		return ErrPoolNotFound
	}

	amounts := pool.ClaimAdminFees()
	for i, amt := range amounts {
		if amt.IsZero() {
			continue
		}
		if err := e.transferer.Transfer(pool.tokenIDs[i], e.selfAccount, caller, amt); err != nil {
			return err
		}
	}
	return nil
}

// AddLiquidity deposits caller's staged balances (credited earlier via
// OnTokenTransfer) into a pool and mints LP shares.
func (e *Exchange) AddLiquidity(caller AccountID, pid PoolID, rawDeposits []*uint256.Int, minMinted *uint256.Int, now time.Time) (*uint256.Int, error) {
	e.mu.RLock()
	running := e.requireRunning()
	pool, ok := e.pools[pid]
	e.mu.RUnlock()
	if running != nil {
		return nil, running
	}
	if !ok {
		return nil, ErrPoolNotFound
	}

	for i, id := range pool.tokenIDs {
		if e.ledger.BalanceOf(caller, id).Cmp(rawDeposits[i]) < 0 {
			return nil, ErrInsufficientBalance
		}
	}

	minted, err := pool.AddLiquidity(caller, rawDeposits, minMinted, now)
	if err != nil {
		return nil, err
	}
	for i, id := range pool.tokenIDs {
		if err := e.ledger.Debit(caller, id, rawDeposits[i]); err != nil {
			return nil, err
		}
	}
	return minted, nil
}

// RemoveLiquidity withdraws proportionally, paying out directly to caller.
func (e *Exchange) RemoveLiquidity(caller AccountID, pid PoolID, burnShares *uint256.Int, minAmounts []*uint256.Int, now time.Time) ([]*uint256.Int, error) {
	e.mu.RLock()
	running := e.requireRunning()
	pool, ok := e.pools[pid]
	e.mu.RUnlock()
	if running != nil {
		return nil, running
	}
	if !ok {
		return nil, ErrPoolNotFound
	}

	amounts, err := pool.RemoveLiquidity(caller, burnShares, minAmounts, now)
	if err != nil {
		return nil, err
	}
	for i, id := range pool.tokenIDs {
		if amounts[i].IsZero() {
			continue
		}
		if err := e.transferer.Transfer(id, e.selfAccount, caller, amounts[i]); err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

// RemoveLiquidityOneCoin withdraws entirely into one coin, paying out
// directly to caller.
func (e *Exchange) RemoveLiquidityOneCoin(caller AccountID, pid PoolID, burnShares *uint256.Int, tokenOut TokenID, minRawOut *uint256.Int, now time.Time) (*uint256.Int, error) {
	e.mu.RLock()
	running := e.requireRunning()
	pool, ok := e.pools[pid]
	e.mu.RUnlock()
	if running != nil {
		return nil, running
	}
	if !ok {
		return nil, ErrPoolNotFound
	}

	amount, err := pool.RemoveLiquidityOneCoin(caller, burnShares, tokenOut, minRawOut, now)
	if err != nil {
		return nil, err
	}
	if err := e.transferer.Transfer(tokenOut, e.selfAccount, caller, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// RemoveLiquidityImbalance withdraws an exact per-coin vector, paying out
// directly to caller.
func (e *Exchange) RemoveLiquidityImbalance(caller AccountID, pid PoolID, rawRequested []*uint256.Int, maxBurn *uint256.Int, now time.Time) (*uint256.Int, error) {
	e.mu.RLock()
	running := e.requireRunning()
	pool, ok := e.pools[pid]
	e.mu.RUnlock()
	if running != nil {
		return nil, running
	}
	if !ok {
		return nil, ErrPoolNotFound
	}

	burned, err := pool.RemoveLiquidityImbalance(caller, rawRequested, maxBurn, now)
	if err != nil {
		return nil, err
	}
	for i, id := range pool.tokenIDs {
		if rawRequested[i].IsZero() {
			continue
		}
		if err := e.transferer.Transfer(id, e.selfAccount, caller, rawRequested[i]); err != nil {
			return nil, err
		}
	}
	return burned, nil
}

// Swap trades from caller's staged balance and pays out directly.
func (e *Exchange) Swap(caller AccountID, pid PoolID, tokenIn, tokenOut TokenID, rawDx, minRawOut *uint256.Int, now time.Time) (*uint256.Int, error) {
	e.mu.RLock()
	running := e.requireRunning()
	pool, ok := e.pools[pid]
	e.mu.RUnlock()
	if running != nil {
		return nil, running
	}
	if !ok {
		return nil, ErrPoolNotFound
	}

	if e.ledger.BalanceOf(caller, tokenIn).Cmp(rawDx) < 0 {
		return nil, ErrInsufficientBalance
	}

	netOut, err := pool.Swap(tokenIn, tokenOut, rawDx, minRawOut, now)
	if err != nil {
		return nil, err
	}
	if err := e.ledger.Debit(caller, tokenIn, rawDx); err != nil {
		return nil, err
	}
	if err := e.transferer.Transfer(tokenOut, e.selfAccount, caller, netOut); err != nil {
		return nil, err
	}
	return netOut, nil
}

// OnTokenTransfer is called after `amount` of `token` has already moved
// from sender into the exchange's own account. It always stages that
// amount in sender's ledger entry first, the same bookkeeping a plain
// deposit (empty msg) performs, so that any failure further down leaves
// sender's staged balance exactly where it would be after a deposit —
// made whole, usable by AddLiquidity, Swap, or a retry. Exchange has no
// operation that pays a staged balance back out to the sender. A
// nonempty msg is then parsed as a direct-swap instruction: on success
// the staged amount is debited (it has been consumed by the swap) and
// the proceeds paid out; on any failure it is left staged, un-debited.
func (e *Exchange) OnTokenTransfer(sender AccountID, token TokenID, amount *uint256.Int, msg []byte, now time.Time) error {
	e.ledger.RegisterToken(sender, token)
	if err := e.ledger.Credit(sender, token, amount); err != nil {
		return err
	}
	if len(msg) == 0 {
		return nil
	}

	e.mu.RLock()
	running := e.requireRunning()
	e.mu.RUnlock()
	if running != nil {
		return running
	}

	var m transferMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return ErrBadArgument
	}
	if m.Action != "swap" {
		return ErrBadArgument
	}

	pool, err := e.Pool(m.PoolID)
	if err != nil {
		return err
	}
	minOut, err := fixedmath.FromDecimalString(m.MinOut)
	if err != nil {
		return ErrBadArgument
	}

	netOut, err := pool.Swap(token, m.TokenOut, amount, minOut, now)
	if err != nil {
		return err
	}
	if err := e.ledger.Debit(sender, token, amount); err != nil {
		return err
	}
	return e.transferer.Transfer(m.TokenOut, e.selfAccount, sender, netOut)
}

// Ledger exposes the staged-deposit ledger for read-only views.
func (e *Exchange) Ledger() *AccountLedger { return e.ledger }
