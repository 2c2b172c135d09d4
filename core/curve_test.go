package core

import (
	"testing"

	"github.com/holiman/uint256"

	"stableswap-network/pkg/fixedmath"
)

func u(v uint64) *uint256.Int { return fixedmath.FromUint64(v) }

func testFees() Fees {
	return Fees{
		TradeFeeNum: 4, TradeFeeDen: 10000,
		AdminTradeFeeNum: 5000, AdminTradeFeeDen: 10000,
		WithdrawFeeNum: 4, WithdrawFeeDen: 10000,
		AdminWithdrawFeeNum: 5000, AdminWithdrawFeeDen: 10000,
	}
}

func TestAmpAtBeforeStart(t *testing.T) {
	if got := AmpAt(100, 200, 1000, 2000, 500); got != 100 {
		t.Fatalf("got %d want 100", got)
	}
}

func TestAmpAtAfterStop(t *testing.T) {
	if got := AmpAt(100, 200, 1000, 2000, 3000); got != 200 {
		t.Fatalf("got %d want 200", got)
	}
}

func TestAmpAtMidpoint(t *testing.T) {
	// ramp 100 -> 200 over 2,592,000s (30 days), midpoint ~150.
	start := int64(0)
	stop := int64(2_592_000)
	mid := stop / 2
	got := AmpAt(100, 200, start, stop, mid)
	if got != 150 {
		t.Fatalf("got %d want 150", got)
	}
}

func TestComputeDBalancedPool(t *testing.T) {
	reserves := []*uint256.Int{mustCommon(1000), mustCommon(1000), mustCommon(1000)}
	D, err := ComputeD(reserves, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := mustCommon(3000)
	if D.Cmp(want) != 0 {
		t.Fatalf("got %v want %v", D, want)
	}
}

func TestComputeDZeroReserve(t *testing.T) {
	reserves := []*uint256.Int{mustCommon(1000), fixedmath.Zero(), mustCommon(1000)}
	D, err := ComputeD(reserves, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !D.IsZero() {
		t.Fatalf("expected D=0 for a zero reserve, got %v", D)
	}
}

func TestComputeDConvergesForVariousN(t *testing.T) {
	for n := 2; n <= 4; n++ {
		reserves := make([]*uint256.Int, n)
		for i := range reserves {
			reserves[i] = mustCommon(uint64(500 + i*137))
		}
		D, err := ComputeD(reserves, 200)
		if err != nil {
			t.Fatalf("N=%d: unexpected error: %v", n, err)
		}
		if D.IsZero() {
			t.Fatalf("N=%d: D should not be zero", n)
		}
	}
}

func TestComputeYRoundTrip(t *testing.T) {
	reserves := []*uint256.Int{mustCommon(1000), mustCommon(1000), mustCommon(1000)}
	D, err := ComputeD(reserves, 100)
	if err != nil {
		t.Fatalf("ComputeD: %v", err)
	}
	// Solving for index 1 holding 0 and 2 fixed at D should reproduce reserves[1].
	y, err := ComputeY(reserves, 1, D, 100)
	if err != nil {
		t.Fatalf("ComputeY: %v", err)
	}
	if diff := signedAbsDiff(y, reserves[1]); diff.Cmp(u(1)) > 0 {
		t.Fatalf("got y=%v want ~%v", y, reserves[1])
	}
}

func TestSwapToDecreasesOutputReserve(t *testing.T) {
	reserves := []*uint256.Int{mustCommon(1000), mustCommon(1000), mustCommon(1000)}
	dx := mustCommon(100)
	result, err := SwapTo(reserves, 0, 1, dx, 100, testFees())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NetOut.IsZero() {
		t.Fatalf("expected nonzero output")
	}
	if result.NewReserves[1].Cmp(reserves[1]) >= 0 {
		t.Fatalf("output reserve should decrease")
	}
	if result.NewReserves[0].Cmp(reserves[0]) <= 0 {
		t.Fatalf("input reserve should increase by dx")
	}
}

func TestSwapToRejectsSameIndex(t *testing.T) {
	reserves := []*uint256.Int{mustCommon(1000), mustCommon(1000)}
	if _, err := SwapTo(reserves, 0, 0, mustCommon(1), 100, testFees()); err != ErrBadArgument {
		t.Fatalf("expected ErrBadArgument, got %v", err)
	}
}

func TestComputeMintAmountFirstDepositEqualsD(t *testing.T) {
	reserves := []*uint256.Int{fixedmath.Zero(), fixedmath.Zero(), fixedmath.Zero()}
	deposits := []*uint256.Int{mustCommon(3), mustCommon(3), mustCommon(3)}
	result, err := ComputeMintAmount(reserves, deposits, fixedmath.Zero(), 100, testFees())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := mustCommon(9)
	if result.Minted.Cmp(want) != 0 {
		t.Fatalf("got %v want %v (first deposit mints D exactly)", result.Minted, want)
	}
}

func TestComputeMintAmountBalancedDepositNoFee(t *testing.T) {
	reserves := []*uint256.Int{mustCommon(1000), mustCommon(1000), mustCommon(1000)}
	deposits := []*uint256.Int{mustCommon(100), mustCommon(100), mustCommon(100)}
	supply := mustCommon(3000)
	result, err := ComputeMintAmount(reserves, deposits, supply, 100, testFees())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, admin := range result.AdminPortions {
		if !admin.IsZero() {
			t.Fatalf("coin %d: balanced deposit should charge no imbalance fee, got %v", i, admin)
		}
	}
	if result.Minted.IsZero() {
		t.Fatalf("expected nonzero mint")
	}
}

func TestComputeMintAmountImbalancedChargesFee(t *testing.T) {
	reserves := []*uint256.Int{mustCommon(1000), mustCommon(1000), mustCommon(1000)}
	deposits := []*uint256.Int{mustCommon(300), fixedmath.Zero(), fixedmath.Zero()}
	supply := mustCommon(3000)
	result, err := ComputeMintAmount(reserves, deposits, supply, 100, testFees())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AdminPortions[0].IsZero() {
		t.Fatalf("expected an imbalance fee on the lopsided coin")
	}
}

func TestComputeWithdrawOnePaysOutRequestedCoin(t *testing.T) {
	reserves := []*uint256.Int{mustCommon(1000), mustCommon(1000), mustCommon(1000)}
	supply := mustCommon(3000)
	burn := mustCommon(300)
	result, err := ComputeWithdrawOne(reserves, supply, burn, 0, 100, testFees())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NetOut.IsZero() {
		t.Fatalf("expected nonzero payout")
	}
	if result.NewReserves[0].Cmp(reserves[0]) >= 0 {
		t.Fatalf("withdrawn coin's reserve should decrease")
	}
}

func TestComputeWithdrawOneRejectsOverBurn(t *testing.T) {
	reserves := []*uint256.Int{mustCommon(1000), mustCommon(1000)}
	supply := mustCommon(2000)
	if _, err := ComputeWithdrawOne(reserves, supply, mustCommon(3000), 0, 100, testFees()); err != ErrBadArgument {
		t.Fatalf("expected ErrBadArgument, got %v", err)
	}
}

func TestComputeImbalancedWithdrawBalanced(t *testing.T) {
	reserves := []*uint256.Int{mustCommon(1000), mustCommon(1000), mustCommon(1000)}
	supply := mustCommon(3000)
	requested := []*uint256.Int{mustCommon(100), mustCommon(100), mustCommon(100)}
	result, err := ComputeImbalancedWithdraw(reserves, supply, requested, 100, testFees())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, admin := range result.AdminPortions {
		if !admin.IsZero() {
			t.Fatalf("coin %d: balanced withdrawal should charge no imbalance fee, got %v", i, admin)
		}
	}
	if result.Burned.IsZero() {
		t.Fatalf("expected nonzero burn")
	}
}

func TestComputeImbalancedWithdrawRejectsOverdraw(t *testing.T) {
	reserves := []*uint256.Int{mustCommon(100), mustCommon(100)}
	supply := mustCommon(200)
	requested := []*uint256.Int{mustCommon(1000), fixedmath.Zero()}
	if _, err := ComputeImbalancedWithdraw(reserves, supply, requested, 100, testFees()); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func mustCommon(whole uint64) *uint256.Int {
	scale := fixedmath.FromUint64(1)
	for i := 0; i < fixedmath.CommonDecimals; i++ {
		scale, _ = fixedmath.Mul(scale, fixedmath.FromUint64(10))
	}
	v, err := fixedmath.Mul(fixedmath.FromUint64(whole), scale)
	if err != nil {
		panic(err)
	}
	return v
}
