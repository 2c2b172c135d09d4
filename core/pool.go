package core

// Pool is a single stableswap liquidity pool: N tokens, their common-
// precision reserves, LP shares, fee settings, and amplification ramp.
// Pool never talks to token contracts directly — the caller (Exchange)
// owns the raw token transfers and only hands Pool already-received or
// about-to-be-sent raw amounts. This mirrors the teacher's AMM/Pool split
// in liquidity_pools.go, generalized from a 2-token constant-product model
// to an N-token stableswap curve.

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/holiman/uint256"

	"stableswap-network/pkg/fixedmath"
)

// Pool holds one stableswap pool's mutable state, guarded by mu.
type Pool struct {
	mu sync.RWMutex

	id       PoolID
	tokenIDs []TokenID
	decimals []uint8

	reserves    []*uint256.Int // common precision
	adminFees   []*uint256.Int // common precision, accrued and unclaimed
	totalVolume []*uint256.Int // common precision, cumulative input volume per coin

	shares      map[AccountID]*uint256.Int
	shareSupply *uint256.Int

	fees        Fees
	pendingFees PendingFees

	initialA, targetA  uint64
	rampStart, rampStop int64

	feeChangeCooldown time.Duration

	logger *log.Logger
}

// NewPool constructs an empty pool for the given tokens. initialA must be
// in [1, MaxA]. fees must validate.
func NewPool(id PoolID, tokenIDs []TokenID, decimals []uint8, initialA uint64, fees Fees, logger *log.Logger) (*Pool, error) {
	n := len(tokenIDs)
	if n < 2 || n > 8 || len(decimals) != n {
		return nil, ErrBadArgument
	}
	if initialA == 0 || initialA > MaxA {
		return nil, ErrBadArgument
	}
	if err := fees.Validate(); err != nil {
		return nil, err
	}

	reserves := make([]*uint256.Int, n)
	adminFees := make([]*uint256.Int, n)
	totalVolume := make([]*uint256.Int, n)
	for i := range reserves {
		reserves[i] = fixedmath.Zero()
		adminFees[i] = fixedmath.Zero()
		totalVolume[i] = fixedmath.Zero()
	}

	return &Pool{
		id:                id,
		tokenIDs:          append([]TokenID(nil), tokenIDs...),
		decimals:          append([]uint8(nil), decimals...),
		reserves:          reserves,
		adminFees:         adminFees,
		totalVolume:       totalVolume,
		shares:            make(map[AccountID]*uint256.Int),
		shareSupply:       fixedmath.Zero(),
		fees:              fees,
		initialA:          initialA,
		targetA:           initialA,
		feeChangeCooldown: DefaultFeeChangeCooldown,
		logger:            logger,
	}, nil
}

// ID returns the pool's stable identifier.
func (p *Pool) ID() PoolID { return p.id }

// N returns the number of coins in the pool.
func (p *Pool) N() int { return len(p.tokenIDs) }

// indexOf returns the pool-local index of a token, or -1.
func (p *Pool) indexOf(t TokenID) int {
	for i, id := range p.tokenIDs {
		if id == t {
			return i
		}
	}
	return -1
}

// ampAt returns the amplification coefficient in effect at `now`, caller
// must hold at least a read lock.
func (p *Pool) ampAt(now time.Time) uint64 {
	return AmpAt(p.initialA, p.targetA, p.rampStart, p.rampStop, now.Unix())
}

// AmpFactor returns the current amplification coefficient.
func (p *Pool) AmpFactor(now time.Time) uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ampAt(now)
}

// activeFees returns the fees in effect at `now`, resolving any pending
// fee-change cooldown.
func (p *Pool) activeFees(now time.Time) Fees {
	return p.pendingFees.Resolve(now, p.fees)
}

// VirtualPrice returns D/share_supply in common precision, the LP share
// price. Returns zero for an empty pool.
func (p *Pool) VirtualPrice(now time.Time) (*uint256.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.shareSupply.IsZero() {
		return fixedmath.Zero(), nil
	}
	D, err := ComputeD(p.reserves, p.ampAt(now))
	if err != nil {
		return nil, err
	}
	num, err := fixedmath.Mul(D, fixedmath.FromUint64(1))
	if err != nil {
		return nil, err
	}
	scaled, err := fixedmath.Mul(num, fixedmath.FromUint64(1e18))
	if err != nil {
		return nil, err
	}
	return fixedmath.Div(scaled, p.shareSupply)
}

// toCommon scales the caller's raw amounts vector for this pool's coins
// into common precision.
func (p *Pool) toCommon(raw []*uint256.Int) ([]*uint256.Int, error) {
	if len(raw) != len(p.tokenIDs) {
		return nil, ErrBadArgument
	}
	out := make([]*uint256.Int, len(raw))
	for i, r := range raw {
		v, err := fixedmath.ToCommon(r, p.decimals[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// AddLiquidity deposits rawDeposits (one amount per coin, raw precision)
// and mints LP shares to provider. Fails without mutation if minted would
// be below minMinted.
func (p *Pool) AddLiquidity(provider AccountID, rawDeposits []*uint256.Int, minMinted *uint256.Int, now time.Time) (*uint256.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	deposits, err := p.toCommon(rawDeposits)
	if err != nil {
		return nil, err
	}
	amp := p.ampAt(now)
	fees := p.activeFees(now)

	result, err := ComputeMintAmount(p.reserves, deposits, p.shareSupply, amp, fees)
	if err != nil {
		return nil, err
	}
	if result.Minted.Cmp(minMinted) < 0 {
		return nil, ErrSlippageExceeded
	}
	if result.Minted.IsZero() {
		return nil, ErrBadArgument
	}

	if err := p.creditAdminFees(result.AdminPortions); err != nil {
		return nil, err
	}
	p.reserves = result.NewReserves
	newSupply, err := fixedmath.Add(p.shareSupply, result.Minted)
	if err != nil {
		return nil, err
	}
	p.shareSupply = newSupply
	if err := p.creditShares(provider, result.Minted); err != nil {
		return nil, err
	}

	p.logger.WithFields(log.Fields{
		"pool": p.id, "provider": provider, "minted": result.Minted.String(),
	}).Info("liquidity added")
	return result.Minted, nil
}

// RemoveLiquidity burns burnShares proportionally across every coin,
// charging no imbalance fee. minAmounts enforces a per-coin floor on the
// raw amounts returned.
func (p *Pool) RemoveLiquidity(provider AccountID, burnShares *uint256.Int, minAmounts []*uint256.Int, now time.Time) ([]*uint256.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.tokenIDs)
	if len(minAmounts) != n {
		return nil, ErrBadArgument
	}
	have, ok := p.shares[provider]
	if !ok || have.Cmp(burnShares) < 0 {
		return nil, ErrInsufficientBalance
	}
	if burnShares.IsZero() || p.shareSupply.IsZero() {
		return nil, ErrBadArgument
	}

	rawOut := make([]*uint256.Int, n)
	newReserves := make([]*uint256.Int, n)
	for i := range p.reserves {
		num, err := fixedmath.Mul(p.reserves[i], burnShares)
		if err != nil {
			return nil, err
		}
		amt, err := fixedmath.Div(num, p.shareSupply)
		if err != nil {
			return nil, err
		}
		raw, err := fixedmath.ToRaw(amt, p.decimals[i])
		if err != nil {
			return nil, err
		}
		if raw.Cmp(minAmounts[i]) < 0 {
			return nil, ErrSlippageExceeded
		}
		rawOut[i] = raw
		newReserves[i] = fixedmath.SubClamped(p.reserves[i], amt)
	}

	p.reserves = newReserves
	p.shareSupply = fixedmath.SubClamped(p.shareSupply, burnShares)
	p.shares[provider] = fixedmath.SubClamped(have, burnShares)

	p.logger.WithFields(log.Fields{"pool": p.id, "provider": provider}).Info("liquidity removed")
	return rawOut, nil
}

// RemoveLiquidityOneCoin burns burnShares and pays out the entire value in
// a single coin, charging the per-coin imbalance fee.
func (p *Pool) RemoveLiquidityOneCoin(provider AccountID, burnShares *uint256.Int, tokenOut TokenID, minRawOut *uint256.Int, now time.Time) (*uint256.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	iOut := p.indexOf(tokenOut)
	if iOut < 0 {
		return nil, ErrTokenNotInPool
	}
	have, ok := p.shares[provider]
	if !ok || have.Cmp(burnShares) < 0 {
		return nil, ErrInsufficientBalance
	}

	amp := p.ampAt(now)
	fees := p.activeFees(now)
	result, err := ComputeWithdrawOne(p.reserves, p.shareSupply, burnShares, iOut, amp, fees)
	if err != nil {
		return nil, err
	}

	rawOut, err := fixedmath.ToRaw(result.NetOut, p.decimals[iOut])
	if err != nil {
		return nil, err
	}
	if rawOut.Cmp(minRawOut) < 0 {
		return nil, ErrSlippageExceeded
	}

	if err := p.creditAdminFee(iOut, result.AdminPortion); err != nil {
		return nil, err
	}
	p.reserves = result.NewReserves
	p.shareSupply = fixedmath.SubClamped(p.shareSupply, burnShares)
	p.shares[provider] = fixedmath.SubClamped(have, burnShares)

	p.logger.WithFields(log.Fields{
		"pool": p.id, "provider": provider, "coin": tokenOut,
	}).Info("single-coin liquidity removed")
	return rawOut, nil
}

// RemoveLiquidityImbalance withdraws exactly rawRequested of each coin,
// burning whatever shares that costs (up to maxBurn).
func (p *Pool) RemoveLiquidityImbalance(provider AccountID, rawRequested []*uint256.Int, maxBurn *uint256.Int, now time.Time) (*uint256.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	requested, err := p.toCommon(rawRequested)
	if err != nil {
		return nil, err
	}
	have, ok := p.shares[provider]
	if !ok {
		return nil, ErrInsufficientBalance
	}

	amp := p.ampAt(now)
	fees := p.activeFees(now)
	result, err := ComputeImbalancedWithdraw(p.reserves, p.shareSupply, requested, amp, fees)
	if err != nil {
		return nil, err
	}
	if result.Burned.Cmp(maxBurn) > 0 {
		return nil, ErrSlippageExceeded
	}
	if have.Cmp(result.Burned) < 0 {
		return nil, ErrInsufficientBalance
	}

	if err := p.creditAdminFees(result.AdminPortions); err != nil {
		return nil, err
	}
	p.reserves = result.NewReserves
	p.shareSupply = fixedmath.SubClamped(p.shareSupply, result.Burned)
	p.shares[provider] = fixedmath.SubClamped(have, result.Burned)

	p.logger.WithFields(log.Fields{"pool": p.id, "provider": provider}).Info("imbalanced liquidity removed")
	return result.Burned, nil
}

// Swap trades rawDx of tokenIn for tokenOut, failing without mutation if
// the net output would fall below minRawOut.
func (p *Pool) Swap(tokenIn, tokenOut TokenID, rawDx *uint256.Int, minRawOut *uint256.Int, now time.Time) (*uint256.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexOf(tokenIn)
	j := p.indexOf(tokenOut)
	if i < 0 || j < 0 {
		return nil, ErrTokenNotInPool
	}
	if rawDx.IsZero() {
		return nil, ErrBadArgument
	}

	dx, err := fixedmath.ToCommon(rawDx, p.decimals[i])
	if err != nil {
		return nil, err
	}
	amp := p.ampAt(now)
	fees := p.activeFees(now)

	result, err := SwapTo(p.reserves, i, j, dx, amp, fees)
	if err != nil {
		return nil, err
	}

	rawOut, err := fixedmath.ToRaw(result.NetOut, p.decimals[j])
	if err != nil {
		return nil, err
	}
	if rawOut.Cmp(minRawOut) < 0 {
		return nil, ErrSlippageExceeded
	}

	if err := p.creditAdminFee(j, result.AdminPortion); err != nil {
		return nil, err
	}
	newVolume, err := fixedmath.Add(p.totalVolume[i], dx)
	if err != nil {
		return nil, err
	}
	p.totalVolume[i] = newVolume
	p.reserves = result.NewReserves

	p.logger.WithFields(log.Fields{
		"pool": p.id, "in": tokenIn, "out": tokenOut, "dx": rawDx.String(),
	}).Info("swap executed")
	return rawOut, nil
}

// ScheduleFees validates newFees and schedules them to take effect after
// the pool's fee-change cooldown has elapsed.
func (p *Pool) ScheduleFees(newFees Fees, now time.Time) error {
	if err := newFees.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fees = p.activeFees(now)
	p.pendingFees = PendingFees{Fees: newFees, ApplyAfter: now.Add(p.feeChangeCooldown), HasSchedule: true}
	p.logger.WithField("pool", p.id).Info("fee change scheduled")
	return nil
}

// RampAmp schedules an amplification ramp from the current A to targetA,
// completing at rampStop.
func (p *Pool) RampAmp(targetA uint64, now time.Time, rampStop time.Time) error {
	if targetA == 0 || targetA > MaxA {
		return ErrBadArgument
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	current := p.ampAt(now)
	if rampStop.Unix() <= now.Unix() {
		return ErrBadArgument
	}
	p.initialA = current
	p.targetA = targetA
	p.rampStart = now.Unix()
	p.rampStop = rampStop.Unix()
	p.logger.WithFields(log.Fields{"pool": p.id, "from": current, "to": targetA}).Info("amp ramp scheduled")
	return nil
}

// StopRampAmp freezes the amplification coefficient at its current value.
func (p *Pool) StopRampAmp(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	current := p.ampAt(now)
	p.initialA = current
	p.targetA = current
	p.rampStart = 0
	p.rampStop = 0
}

// ClaimAdminFees zeroes out and returns the pool's accrued per-coin admin
// fees, in raw precision, for the caller to transfer out.
func (p *Pool) ClaimAdminFees() []*uint256.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*uint256.Int, len(p.adminFees))
	for i, f := range p.adminFees {
		raw, err := fixedmath.ToRaw(f, p.decimals[i])
		if err != nil {
			raw = fixedmath.Zero()
		}
		out[i] = raw
		p.adminFees[i] = fixedmath.Zero()
	}
	return out
}

func (p *Pool) creditShares(account AccountID, amount *uint256.Int) error {
	cur, ok := p.shares[account]
	if !ok {
		cur = fixedmath.Zero()
	}
	sum, err := fixedmath.Add(cur, amount)
	if err != nil {
		return err
	}
	p.shares[account] = sum
	return nil
}

func (p *Pool) creditAdminFee(i int, amount *uint256.Int) error {
	sum, err := fixedmath.Add(p.adminFees[i], amount)
	if err != nil {
		return err
	}
	p.adminFees[i] = sum
	return nil
}

func (p *Pool) creditAdminFees(amounts []*uint256.Int) error {
	for i, amt := range amounts {
		if err := p.creditAdminFee(i, amt); err != nil {
			return err
		}
	}
	return nil
}
