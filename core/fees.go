package core

import (
	"time"

	"github.com/holiman/uint256"

	"stableswap-network/pkg/fixedmath"
)

// DefaultFeeChangeCooldown is the delay between scheduling a fee change and
// it taking effect, used whenever a pool isn't given a more specific
// cooldown (see Exchange.feeChangeCooldown).
const DefaultFeeChangeCooldown = 24 * time.Hour

// Fees is the rational fee-split record for a pool.
// trade_fee is charged on swap output and also sets the imbalance-fee rate
// (see ImbalanceFeeRate) charged on imbalanced deposits and on single-coin
// and imbalanced withdrawals. The admin share of a trade fee comes from the
// admin_trade pair, that of an imbalance fee from the admin_withdraw pair;
// the LP share is the remainder, which accrues to reserves. WithdrawFeeNum
// and WithdrawFeeDen are validated but not applied by any computation.
type Fees struct {
	TradeFeeNum      uint64
	TradeFeeDen      uint64
	AdminTradeFeeNum uint64
	AdminTradeFeeDen uint64

	WithdrawFeeNum      uint64
	WithdrawFeeDen      uint64
	AdminWithdrawFeeNum uint64
	AdminWithdrawFeeDen uint64
}

// Validate checks that every denominator is positive and every numerator is
// strictly less than its denominator: a rational fee must be less than 1.
func (f Fees) Validate() error {
	pairs := [][2]uint64{
		{f.TradeFeeNum, f.TradeFeeDen},
		{f.AdminTradeFeeNum, f.AdminTradeFeeDen},
		{f.WithdrawFeeNum, f.WithdrawFeeDen},
		{f.AdminWithdrawFeeNum, f.AdminWithdrawFeeDen},
	}
	for _, p := range pairs {
		if p[1] == 0 {
			return ErrBadArgument
		}
		if p[0] >= p[1] {
			return ErrBadArgument
		}
	}
	return nil
}

// applyRational computes gross * num / den, truncating toward zero.
func applyRational(gross *uint256.Int, num, den uint64) (*uint256.Int, error) {
	if den == 0 {
		return nil, ErrBadArgument
	}
	scaled, err := fixedmath.Mul(gross, fixedmath.FromUint64(num))
	if err != nil {
		return nil, err
	}
	return fixedmath.Div(scaled, fixedmath.FromUint64(den))
}

// ApplyTradeFee splits a gross swap-output amount into (fee, netOut), then
// further splits fee into (adminPortion, lpPortion).
func (f Fees) ApplyTradeFee(gross *uint256.Int) (net, adminPortion, lpPortion *uint256.Int, err error) {
	fee, err := applyRational(gross, f.TradeFeeNum, f.TradeFeeDen)
	if err != nil {
		return nil, nil, nil, err
	}
	net, err = fixedmath.Sub(gross, fee)
	if err != nil {
		return nil, nil, nil, err
	}
	adminPortion, err = applyRational(fee, f.AdminTradeFeeNum, f.AdminTradeFeeDen)
	if err != nil {
		return nil, nil, nil, err
	}
	lpPortion, err = fixedmath.Sub(fee, adminPortion)
	if err != nil {
		return nil, nil, nil, err
	}
	return net, adminPortion, lpPortion, nil
}

// ImbalanceFeeRate returns the effective per-coin imbalance fee rate used
// by ComputeMintAmount, ComputeWithdrawOne, and ComputeImbalancedWithdraw:
// trade_fee * N / (4*(N-1)), expressed as the same Fees-style num/den pair
// so the same applyRational helper handles it.
func (f Fees) ImbalanceFeeRate(n int) (num, den uint64) {
	// num/den = (TradeFeeNum/TradeFeeDen) * n / (4*(n-1))
	//         = (TradeFeeNum * n) / (TradeFeeDen * 4 * (n-1))
	return f.TradeFeeNum * uint64(n), f.TradeFeeDen * 4 * uint64(n-1)
}

// ApplyImbalanceFee applies the imbalance-fee rate to a per-coin delta and
// splits the result into admin/LP portions the way ApplyTradeFee does, but
// with the AdminWithdrawFeeNum/AdminWithdrawFeeDen fraction.
func (f Fees) ApplyImbalanceFee(delta *uint256.Int, n int) (fee, adminPortion, lpPortion *uint256.Int, err error) {
	num, den := f.ImbalanceFeeRate(n)
	fee, err = applyRational(delta, num, den)
	if err != nil {
		return nil, nil, nil, err
	}
	adminPortion, err = applyRational(fee, f.AdminWithdrawFeeNum, f.AdminWithdrawFeeDen)
	if err != nil {
		return nil, nil, nil, err
	}
	lpPortion, err = fixedmath.Sub(fee, adminPortion)
	if err != nil {
		return nil, nil, nil, err
	}
	return fee, adminPortion, lpPortion, nil
}

// PendingFees holds a scheduled fee change awaiting its cooldown: a new
// Fees setting takes effect only once ApplyAfter has passed.
type PendingFees struct {
	Fees         Fees
	ApplyAfter   time.Time
	HasSchedule  bool
}

// Resolve returns the fees active at `now`: the pending fees if their
// cooldown has elapsed, otherwise the currently active fees.
func (p *PendingFees) Resolve(now time.Time, active Fees) Fees {
	if p.HasSchedule && !now.Before(p.ApplyAfter) {
		return p.Fees
	}
	return active
}
