package core

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/holiman/uint256"

	"stableswap-network/pkg/fixedmath"
)

func testLogger() *log.Logger {
	l := log.New()
	l.SetOutput(nowhereWriter{})
	return l
}

type nowhereWriter struct{}

func (nowhereWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	p, err := NewPool(0, []TokenID{"usdc", "usdt", "dai"}, []uint8{6, 6, 18}, 100, testFees(), testLogger())
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	return p
}

func rawAmounts(vals ...uint64) []*uint256.Int {
	out := make([]*uint256.Int, len(vals))
	for i, v := range vals {
		out[i] = fixedmath.FromUint64(v)
	}
	return out
}

func TestPoolAddLiquidityFirstDeposit(t *testing.T) {
	p := newTestPool(t)
	deposits := rawAmounts(10_000000, 10_000000, 10_000000000000000000)
	minted, err := p.AddLiquidity("lp1", deposits, fixedmath.Zero(), time.Unix(0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if minted.IsZero() {
		t.Fatalf("expected nonzero mint")
	}
	if p.SharesOf("lp1") != minted.String() {
		t.Fatalf("shares not credited correctly")
	}
}

func TestPoolAddLiquiditySlippage(t *testing.T) {
	p := newTestPool(t)
	deposits := rawAmounts(10_000000, 10_000000, 10_000000000000000000)
	huge, _ := fixedmath.Mul(fixedmath.FromUint64(1_000_000), fixedmath.FromUint64(1_000_000_000_000_000_000))
	if _, err := p.AddLiquidity("lp1", deposits, huge, time.Unix(0, 0)); err != ErrSlippageExceeded {
		t.Fatalf("expected slippage error, got %v", err)
	}
}

func TestPoolSwap(t *testing.T) {
	p := newTestPool(t)
	deposits := rawAmounts(10_000000, 10_000000, 10_000000000000000000)
	if _, err := p.AddLiquidity("lp1", deposits, fixedmath.Zero(), time.Unix(0, 0)); err != nil {
		t.Fatalf("seed deposit: %v", err)
	}

	out, err := p.Swap("usdc", "usdt", fixedmath.FromUint64(1_000000), fixedmath.Zero(), time.Unix(0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.IsZero() {
		t.Fatalf("expected nonzero swap output")
	}
	if out.Cmp(fixedmath.FromUint64(1_000000)) >= 0 {
		t.Fatalf("fee-bearing swap output should be less than input, got %v", out)
	}
}

func TestPoolSwapUnknownToken(t *testing.T) {
	p := newTestPool(t)
	deposits := rawAmounts(10_000000, 10_000000, 10_000000000000000000)
	if _, err := p.AddLiquidity("lp1", deposits, fixedmath.Zero(), time.Unix(0, 0)); err != nil {
		t.Fatalf("seed deposit: %v", err)
	}
	if _, err := p.Swap("usdc", "frax", fixedmath.FromUint64(1_000000), fixedmath.Zero(), time.Unix(0, 0)); err != ErrTokenNotInPool {
		t.Fatalf("expected ErrTokenNotInPool, got %v", err)
	}
}

func TestPoolRemoveLiquidity(t *testing.T) {
	p := newTestPool(t)
	deposits := rawAmounts(10_000000, 10_000000, 10_000000000000000000)
	minted, err := p.AddLiquidity("lp1", deposits, fixedmath.Zero(), time.Unix(0, 0))
	if err != nil {
		t.Fatalf("seed deposit: %v", err)
	}

	half, err := fixedmath.Div(minted, fixedmath.FromUint64(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	amounts, err := p.RemoveLiquidity("lp1", half, rawAmounts(0, 0, 0), time.Unix(0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, amt := range amounts {
		if amt.IsZero() {
			t.Fatalf("coin %d: expected nonzero withdrawal", i)
		}
	}
}

func TestPoolRemoveLiquidityInsufficientShares(t *testing.T) {
	p := newTestPool(t)
	deposits := rawAmounts(10_000000, 10_000000, 10_000000000000000000)
	if _, err := p.AddLiquidity("lp1", deposits, fixedmath.Zero(), time.Unix(0, 0)); err != nil {
		t.Fatalf("seed deposit: %v", err)
	}
	if _, err := p.RemoveLiquidity("lp2", fixedmath.FromUint64(1), rawAmounts(0, 0, 0), time.Unix(0, 0)); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestPoolRampAmp(t *testing.T) {
	p := newTestPool(t)
	start := time.Unix(0, 0)
	stop := time.Unix(2_592_000, 0)
	if err := p.RampAmp(200, start, stop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mid := time.Unix(1_296_000, 0)
	if got := p.AmpFactor(mid); got != 150 {
		t.Fatalf("got %d want 150", got)
	}
	if got := p.AmpFactor(stop); got != 200 {
		t.Fatalf("got %d want 200", got)
	}
}

func TestPoolScheduleFeesCooldown(t *testing.T) {
	p := newTestPool(t)
	now := time.Unix(0, 0)
	newFees := testFees()
	newFees.TradeFeeNum = 10
	if err := p.ScheduleFees(newFees, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.activeFees(now).TradeFeeNum != testFees().TradeFeeNum {
		t.Fatalf("new fees should not be active before the cooldown elapses")
	}
	after := now.Add(DefaultFeeChangeCooldown + time.Second)
	if p.activeFees(after).TradeFeeNum != 10 {
		t.Fatalf("new fees should be active after the cooldown elapses")
	}
}
