package fixedmath

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestAddOverflow(t *testing.T) {
	max := new(uint256.Int).Not(new(uint256.Int)) // 2^256-1
	if _, err := Add(max, FromUint64(1)); err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
	got, err := Add(FromUint64(2), FromUint64(3))
	if err != nil || got.Uint64() != 5 {
		t.Fatalf("2+3 = %v (err %v), want 5", got, err)
	}
}

func TestSubUnderflow(t *testing.T) {
	if _, err := Sub(FromUint64(1), FromUint64(2)); err != ErrOverflow {
		t.Fatalf("expected underflow error, got %v", err)
	}
	got, err := Sub(FromUint64(5), FromUint64(2))
	if err != nil || got.Uint64() != 3 {
		t.Fatalf("5-2 = %v (err %v), want 3", got, err)
	}
}

func TestSubClamped(t *testing.T) {
	if got := SubClamped(FromUint64(1), FromUint64(5)); !got.IsZero() {
		t.Fatalf("expected clamp to zero, got %v", got)
	}
	if got := SubClamped(FromUint64(5), FromUint64(1)); got.Uint64() != 4 {
		t.Fatalf("expected 4, got %v", got)
	}
}

func TestMulDiv(t *testing.T) {
	got, err := Mul(FromUint64(6), FromUint64(7))
	if err != nil || got.Uint64() != 42 {
		t.Fatalf("6*7 = %v (err %v), want 42", got, err)
	}
	got, err = Div(FromUint64(42), FromUint64(5))
	if err != nil || got.Uint64() != 8 {
		t.Fatalf("42/5 truncated = %v (err %v), want 8", got, err)
	}
	if _, err := Div(FromUint64(1), FromUint64(0)); err != ErrDivByZero {
		t.Fatalf("expected div by zero, got %v", err)
	}
}

func TestPow(t *testing.T) {
	got, err := Pow(FromUint64(2), 10)
	if err != nil || got.Uint64() != 1024 {
		t.Fatalf("2^10 = %v (err %v), want 1024", got, err)
	}
	got, err = Pow(FromUint64(10), 0)
	if err != nil || got.Uint64() != 1 {
		t.Fatalf("x^0 = %v (err %v), want 1", got, err)
	}
}

func TestToCommonUpScale(t *testing.T) {
	// USDC-style 6 decimals: 100 raw -> 100 * 10^12 common.
	got, err := ToCommon(FromUint64(100), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := Mul(FromUint64(100), FromUint64(1_000_000_000_000))
	if got.Cmp(want) != 0 {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestToCommonDownScaleTruncates(t *testing.T) {
	// A hypothetical 20-decimal token: common = raw / 10^2, truncated.
	got, err := ToCommon(FromUint64(1299), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Uint64() != 12 {
		t.Fatalf("got %v want 12 (truncated from 12.99)", got)
	}
}

func TestToCommonToRawRoundTrip18Decimals(t *testing.T) {
	raw := FromUint64(123456789)
	common, err := ToCommon(raw, CommonDecimals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if common.Cmp(raw) != 0 {
		t.Fatalf("18-decimal token should be identity scaled, got %v", common)
	}
	back, err := ToRaw(common, CommonDecimals)
	if err != nil || back.Cmp(raw) != 0 {
		t.Fatalf("round trip mismatch: got %v, want %v (err %v)", back, raw, err)
	}
}

func TestFromDecimalString(t *testing.T) {
	got, err := FromDecimalString("123456789012345678901234567890")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := uint256.FromDecimal("123456789012345678901234567890")
	if got.Cmp(want) != 0 {
		t.Fatalf("got %v want %v", got, want)
	}
	if got, err := FromDecimalString(""); err != nil || !got.IsZero() {
		t.Fatalf("empty string should parse as zero, got %v (err %v)", got, err)
	}
	if _, err := FromDecimalString("not-a-number"); err != ErrOverflow {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestToRawDownScaleTruncates(t *testing.T) {
	// 6-decimal token: common 1_999_999 (< 1 raw unit of 10^12) truncates to 0.
	got, err := ToRaw(FromUint64(1_999_999), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("got %v want 0", got)
	}
}
