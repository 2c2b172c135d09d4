package core

// curve.go implements the stableswap invariant engine: pure functions over
// a vector of common-precision reserves and an amplification coefficient.
// Nothing here mutates Pool state — Pool (pool.go) owns that, scaling raw
// reserves in and out of common precision and applying the results these
// functions compute.

import (
	"github.com/holiman/uint256"

	"stableswap-network/pkg/fixedmath"
)

// MaxA is the upper bound on the amplification coefficient.
const MaxA = 1_000_000

// maxNewtonIterations bounds the D and y solvers.
const maxNewtonIterations = 256

// convergenceTolerance is the maximum |new-old| delta accepted as converged.
var convergenceTolerance = fixedmath.FromUint64(1)

// AmpAt returns the amplification coefficient in effect at time now, given
// a ramp from initialA at rampStart to targetA at rampStop.
func AmpAt(initialA, targetA uint64, rampStart, rampStop, now int64) uint64 {
	if now <= rampStart || rampStop <= rampStart {
		return initialA
	}
	if now >= rampStop {
		return targetA
	}
	delta := int64(targetA) - int64(initialA)
	elapsed := now - rampStart
	total := rampStop - rampStart
	adj := delta * elapsed / total // truncated division of the signed delta
	return uint64(int64(initialA) + adj)
}

// computeAnn returns A * N^N as a 256-bit integer.
func computeAnn(amp uint64, n int) (*uint256.Int, error) {
	nn, err := fixedmath.Pow(fixedmath.FromUint64(uint64(n)), uint(n))
	if err != nil {
		return nil, err
	}
	return fixedmath.Mul(nn, fixedmath.FromUint64(amp))
}

// ComputeD solves the stableswap invariant for the given common-precision
// reserves and amplification, by Newton iteration seeded at D = sum(c).
// Returns zero if any reserve is zero.
func ComputeD(c []*uint256.Int, amp uint64) (*uint256.Int, error) {
	n := len(c)
	if n < 2 || n > 8 {
		return nil, ErrBadArgument
	}
	for _, ci := range c {
		if ci.IsZero() {
			return fixedmath.Zero(), nil
		}
	}

	nU := fixedmath.FromUint64(uint64(n))
	S := fixedmath.Zero()
	var err error
	for _, ci := range c {
		if S, err = fixedmath.Add(S, ci); err != nil {
			return nil, err
		}
	}

	ann, err := computeAnn(amp, n)
	if err != nil {
		return nil, err
	}

	D := new(uint256.Int).Set(S)
	for iter := 0; iter < maxNewtonIterations; iter++ {
		// D_p = D^(n+1) / (n^n * prod(c)), built incrementally to avoid an
		// intermediate product that would overflow 256 bits for N>2.
		Dp := new(uint256.Int).Set(D)
		for _, ci := range c {
			num, err := fixedmath.Mul(Dp, D)
			if err != nil {
				return nil, err
			}
			denom, err := fixedmath.Mul(nU, ci)
			if err != nil {
				return nil, err
			}
			if Dp, err = fixedmath.Div(num, denom); err != nil {
				return nil, err
			}
		}

		prevD := new(uint256.Int).Set(D)

		annS, err := fixedmath.Mul(ann, S)
		if err != nil {
			return nil, err
		}
		nDp, err := fixedmath.Mul(nU, Dp)
		if err != nil {
			return nil, err
		}
		numerator, err := fixedmath.Add(annS, nDp)
		if err != nil {
			return nil, err
		}
		if numerator, err = fixedmath.Mul(numerator, D); err != nil {
			return nil, err
		}

		annMinus1, err := fixedmath.Sub(ann, fixedmath.FromUint64(1))
		if err != nil {
			return nil, err
		}
		term1, err := fixedmath.Mul(annMinus1, D)
		if err != nil {
			return nil, err
		}
		nPlus1, err := fixedmath.Add(nU, fixedmath.FromUint64(1))
		if err != nil {
			return nil, err
		}
		term2, err := fixedmath.Mul(nPlus1, Dp)
		if err != nil {
			return nil, err
		}
		denominator, err := fixedmath.Add(term1, term2)
		if err != nil {
			return nil, err
		}

		if D, err = fixedmath.Div(numerator, denominator); err != nil {
			return nil, err
		}

		if withinTolerance(D, prevD) {
			return D, nil
		}
	}
	return nil, ErrMathConverge
}

// ComputeY solves for the unknown reserve at index j, holding every other
// coin in c fixed, such that the invariant evaluates to D.
// c[j] itself is ignored (it is the value being solved for).
func ComputeY(c []*uint256.Int, j int, D *uint256.Int, amp uint64) (*uint256.Int, error) {
	n := len(c)
	if j < 0 || j >= n {
		return nil, ErrBadArgument
	}

	ann, err := computeAnn(amp, n)
	if err != nil {
		return nil, err
	}

	nU := fixedmath.FromUint64(uint64(n))
	Sprime := fixedmath.Zero()
	cAcc := new(uint256.Int).Set(D)
	for i, ci := range c {
		if i == j {
			continue
		}
		if Sprime, err = fixedmath.Add(Sprime, ci); err != nil {
			return nil, err
		}
		num, err := fixedmath.Mul(cAcc, D)
		if err != nil {
			return nil, err
		}
		denom, err := fixedmath.Mul(ci, nU)
		if err != nil {
			return nil, err
		}
		if cAcc, err = fixedmath.Div(num, denom); err != nil {
			return nil, err
		}
	}

	// c_ = cAcc * D / (Ann * n)
	num, err := fixedmath.Mul(cAcc, D)
	if err != nil {
		return nil, err
	}
	annN, err := fixedmath.Mul(ann, nU)
	if err != nil {
		return nil, err
	}
	cTerm, err := fixedmath.Div(num, annN)
	if err != nil {
		return nil, err
	}

	// b = S' + D/Ann
	dOverAnn, err := fixedmath.Div(D, ann)
	if err != nil {
		return nil, err
	}
	b, err := fixedmath.Add(Sprime, dOverAnn)
	if err != nil {
		return nil, err
	}

	y := new(uint256.Int).Set(D)
	for iter := 0; iter < maxNewtonIterations; iter++ {
		prevY := new(uint256.Int).Set(y)

		y2, err := fixedmath.Mul(y, y)
		if err != nil {
			return nil, err
		}
		numerator, err := fixedmath.Add(y2, cTerm)
		if err != nil {
			return nil, err
		}

		twoY, err := fixedmath.Mul(y, fixedmath.FromUint64(2))
		if err != nil {
			return nil, err
		}

		var denominator *uint256.Int
		if b.Cmp(D) >= 0 {
			bd, err := fixedmath.Sub(b, D)
			if err != nil {
				return nil, err
			}
			if denominator, err = fixedmath.Add(twoY, bd); err != nil {
				return nil, err
			}
		} else {
			db, err := fixedmath.Sub(D, b)
			if err != nil {
				return nil, err
			}
			if twoY.Cmp(db) < 0 {
				return nil, ErrMathConverge
			}
			if denominator, err = fixedmath.Sub(twoY, db); err != nil {
				return nil, err
			}
		}
		if denominator.IsZero() {
			return nil, ErrMathConverge
		}

		if y, err = fixedmath.Div(numerator, denominator); err != nil {
			return nil, err
		}

		if withinTolerance(y, prevY) {
			return y, nil
		}
	}
	return nil, ErrMathConverge
}

func withinTolerance(a, b *uint256.Int) bool {
	var diff *uint256.Int
	if a.Cmp(b) >= 0 {
		diff = fixedmath.SubClamped(a, b)
	} else {
		diff = fixedmath.SubClamped(b, a)
	}
	return diff.Cmp(convergenceTolerance) <= 0
}

// SwapResult is the pure output of SwapTo: the amounts Pool.Swap applies to
// reserves and admin_fees, and the post-swap common-precision reserve
// vector (provided for callers that want it without recomputing).
type SwapResult struct {
	GrossOut     *uint256.Int
	NetOut       *uint256.Int
	AdminPortion *uint256.Int
	LPPortion    *uint256.Int
	NewReserves  []*uint256.Int
}

// SwapTo computes the output of swapping dx of coin i into coin j, holding
// the invariant D constant across the trade.
func SwapTo(c []*uint256.Int, i, j int, dx *uint256.Int, amp uint64, fees Fees) (*SwapResult, error) {
	n := len(c)
	if i < 0 || i >= n || j < 0 || j >= n {
		return nil, ErrTokenNotInPool
	}
	if i == j {
		return nil, ErrBadArgument
	}

	D, err := ComputeD(c, amp)
	if err != nil {
		return nil, err
	}

	newC := make([]*uint256.Int, n)
	copy(newC, c)
	newCi, err := fixedmath.Add(c[i], dx)
	if err != nil {
		return nil, err
	}
	newC[i] = newCi

	y, err := ComputeY(newC, j, D, amp)
	if err != nil {
		return nil, err
	}

	gross := fixedmath.SubClamped(fixedmath.SubClamped(c[j], y), fixedmath.FromUint64(1))
	net, adminPortion, lpPortion, err := fees.ApplyTradeFee(gross)
	if err != nil {
		return nil, err
	}

	payout, err := fixedmath.Add(net, adminPortion)
	if err != nil {
		return nil, err
	}
	newC[j] = fixedmath.SubClamped(c[j], payout)

	return &SwapResult{
		GrossOut:     gross,
		NetOut:       net,
		AdminPortion: adminPortion,
		LPPortion:    lpPortion,
		NewReserves:  newC,
	}, nil
}

// MintResult is the pure output of ComputeMintAmount.
type MintResult struct {
	Minted        *uint256.Int
	AdminPortions []*uint256.Int
	NewReserves   []*uint256.Int
}

// ComputeMintAmount computes the LP shares minted by depositing `deposits`
// into a pool with the given current reserves and share supply.
// For the first deposit into an empty pool, minted shares equal D exactly.
func ComputeMintAmount(reserves, deposits []*uint256.Int, shareSupply *uint256.Int, amp uint64, fees Fees) (*MintResult, error) {
	n := len(reserves)
	if len(deposits) != n {
		return nil, ErrBadArgument
	}

	newReserves := make([]*uint256.Int, n)
	for i := range reserves {
		v, err := fixedmath.Add(reserves[i], deposits[i])
		if err != nil {
			return nil, err
		}
		newReserves[i] = v
	}

	if shareSupply.IsZero() {
		D1, err := ComputeD(newReserves, amp)
		if err != nil {
			return nil, err
		}
		return &MintResult{Minted: D1, AdminPortions: zeroVector(n), NewReserves: newReserves}, nil
	}

	D0, err := ComputeD(reserves, amp)
	if err != nil {
		return nil, err
	}
	D1, err := ComputeD(newReserves, amp)
	if err != nil {
		return nil, err
	}

	adminPortions := make([]*uint256.Int, n)
	storedReserves := make([]*uint256.Int, n)
	feeAdjusted := make([]*uint256.Int, n)
	for i := range reserves {
		num, err := fixedmath.Mul(reserves[i], D1)
		if err != nil {
			return nil, err
		}
		ideal, err := fixedmath.Div(num, D0)
		if err != nil {
			return nil, err
		}
		delta := signedAbsDiff(newReserves[i], ideal)

		fee, adminPortion, _, err := fees.ApplyImbalanceFee(delta, n)
		if err != nil {
			return nil, err
		}
		adminPortions[i] = adminPortion
		storedReserves[i] = fixedmath.SubClamped(newReserves[i], adminPortion)
		feeAdjusted[i] = fixedmath.SubClamped(newReserves[i], fee)
	}

	D2, err := ComputeD(feeAdjusted, amp)
	if err != nil {
		return nil, err
	}
	if D2.Cmp(D0) < 0 {
		return nil, ErrInvariantViolation
	}
	deltaD := fixedmath.SubClamped(D2, D0)
	num, err := fixedmath.Mul(shareSupply, deltaD)
	if err != nil {
		return nil, err
	}
	minted, err := fixedmath.Div(num, D0)
	if err != nil {
		return nil, err
	}

	return &MintResult{Minted: minted, AdminPortions: adminPortions, NewReserves: storedReserves}, nil
}

// WithdrawOneResult is the pure output of ComputeWithdrawOne.
type WithdrawOneResult struct {
	NetOut       *uint256.Int
	AdminPortion *uint256.Int
	NewReserves  []*uint256.Int
}

// ComputeWithdrawOne computes the single-coin withdrawal amount for burning
// burnShares of shareSupply, paid out entirely in coin iOut.
func ComputeWithdrawOne(reserves []*uint256.Int, shareSupply, burnShares *uint256.Int, iOut int, amp uint64, fees Fees) (*WithdrawOneResult, error) {
	n := len(reserves)
	if iOut < 0 || iOut >= n {
		return nil, ErrBadArgument
	}
	if burnShares.IsZero() || burnShares.Cmp(shareSupply) > 0 {
		return nil, ErrBadArgument
	}

	D0, err := ComputeD(reserves, amp)
	if err != nil {
		return nil, err
	}

	num, err := fixedmath.Mul(burnShares, D0)
	if err != nil {
		return nil, err
	}
	reduction, err := fixedmath.Div(num, shareSupply)
	if err != nil {
		return nil, err
	}
	D1 := fixedmath.SubClamped(D0, reduction)

	y, err := ComputeY(reserves, iOut, D1, amp)
	if err != nil {
		return nil, err
	}
	rawBeforeFee := fixedmath.SubClamped(reserves[iOut], y)

	totalFee := fixedmath.Zero()
	totalAdmin := fixedmath.Zero()
	for i := range reserves {
		if i == iOut {
			continue
		}
		num, err := fixedmath.Mul(reserves[i], D1)
		if err != nil {
			return nil, err
		}
		ideal, err := fixedmath.Div(num, D0)
		if err != nil {
			return nil, err
		}
		component := signedAbsDiff(reserves[i], ideal)

		fee, adminPortion, _, err := fees.ApplyImbalanceFee(component, n)
		if err != nil {
			return nil, err
		}
		if totalFee, err = fixedmath.Add(totalFee, fee); err != nil {
			return nil, err
		}
		if totalAdmin, err = fixedmath.Add(totalAdmin, adminPortion); err != nil {
			return nil, err
		}
	}

	netOut := fixedmath.SubClamped(rawBeforeFee, totalFee)
	newReserves := make([]*uint256.Int, n)
	copy(newReserves, reserves)
	payout, err := fixedmath.Add(netOut, totalAdmin)
	if err != nil {
		return nil, err
	}
	newReserves[iOut] = fixedmath.SubClamped(reserves[iOut], payout)

	return &WithdrawOneResult{NetOut: netOut, AdminPortion: totalAdmin, NewReserves: newReserves}, nil
}

// ImbalancedResult is the pure output of ComputeImbalancedWithdraw.
type ImbalancedResult struct {
	Burned        *uint256.Int
	AdminPortions []*uint256.Int
	NewReserves   []*uint256.Int
}

// ComputeImbalancedWithdraw computes the shares that must be burned to
// withdraw exactly `requested[i]` of each coin.
func ComputeImbalancedWithdraw(reserves []*uint256.Int, shareSupply *uint256.Int, requested []*uint256.Int, amp uint64, fees Fees) (*ImbalancedResult, error) {
	n := len(reserves)
	if len(requested) != n {
		return nil, ErrBadArgument
	}

	newReserves := make([]*uint256.Int, n)
	for i := range reserves {
		v, err := fixedmath.Sub(reserves[i], requested[i])
		if err != nil {
			return nil, ErrInsufficientBalance
		}
		newReserves[i] = v
	}

	D0, err := ComputeD(reserves, amp)
	if err != nil {
		return nil, err
	}
	D1, err := ComputeD(newReserves, amp)
	if err != nil {
		return nil, err
	}

	adminPortions := make([]*uint256.Int, n)
	storedReserves := make([]*uint256.Int, n)
	feeAdjusted := make([]*uint256.Int, n)
	for i := range reserves {
		num, err := fixedmath.Mul(reserves[i], D1)
		if err != nil {
			return nil, err
		}
		target, err := fixedmath.Div(num, D0)
		if err != nil {
			return nil, err
		}
		delta := signedAbsDiff(newReserves[i], target)

		fee, adminPortion, _, err := fees.ApplyImbalanceFee(delta, n)
		if err != nil {
			return nil, err
		}
		adminPortions[i] = adminPortion
		storedReserves[i] = fixedmath.SubClamped(newReserves[i], adminPortion)
		feeAdjusted[i] = fixedmath.SubClamped(newReserves[i], fee)
	}

	D2, err := ComputeD(feeAdjusted, amp)
	if err != nil {
		return nil, err
	}
	if D2.Cmp(D0) > 0 {
		return nil, ErrInvariantViolation
	}
	diff := fixedmath.SubClamped(D0, D2)
	num, err := fixedmath.Mul(shareSupply, diff)
	if err != nil {
		return nil, err
	}
	burn, err := fixedmath.Div(num, D0)
	if err != nil {
		return nil, err
	}
	burn, err = fixedmath.Add(burn, fixedmath.FromUint64(1))
	if err != nil {
		return nil, err
	}

	return &ImbalancedResult{Burned: burn, AdminPortions: adminPortions, NewReserves: storedReserves}, nil
}

func signedAbsDiff(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) >= 0 {
		return fixedmath.SubClamped(a, b)
	}
	return fixedmath.SubClamped(b, a)
}

func zeroVector(n int) []*uint256.Int {
	out := make([]*uint256.Int, n)
	for i := range out {
		out[i] = fixedmath.Zero()
	}
	return out
}
