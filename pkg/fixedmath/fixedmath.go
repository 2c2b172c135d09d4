// Package fixedmath provides checked 256-bit unsigned arithmetic and the
// raw/common-precision scaling helpers the stableswap curve is built on.
//
// Add, Sub, Mul, Div and Pow are checked: overflow, underflow, and division
// by zero return an error instead of wrapping or panicking. SubClamped is
// the exception and clamps an underflow to zero. Division truncates toward
// zero, matching the stableswap invariant's integer semantics.
package fixedmath

import (
	"errors"

	"github.com/holiman/uint256"
)

// CommonDecimals is the precision every curve computation is performed in.
const CommonDecimals = 18

var (
	// ErrOverflow is returned by Add, Sub (on underflow), Mul, and Pow when
	// the 256-bit result cannot represent the true value.
	ErrOverflow = errors.New("fixedmath: overflow")
	// ErrDivByZero is returned by Div when the divisor is zero.
	ErrDivByZero = errors.New("fixedmath: division by zero")
)

// Zero returns a fresh zero-valued Int rather than a shared package-level
// singleton, so a caller that mutates the result in place cannot change
// another caller's zero.
func Zero() *uint256.Int { return new(uint256.Int) }

// FromUint64 lifts a uint64 into the 256-bit space.
func FromUint64(v uint64) *uint256.Int { return new(uint256.Int).SetUint64(v) }

// FromDecimalString parses a base-10 amount, as used on the wire in CLI
// arguments and transfer-callback messages. Empty string parses as zero.
func FromDecimalString(s string) (*uint256.Int, error) {
	if s == "" {
		return Zero(), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, ErrOverflow
	}
	return v, nil
}

// ToUint64 lowers x back to a uint64, failing if x does not fit.
func ToUint64(x *uint256.Int) (uint64, error) {
	if !x.IsUint64() {
		return 0, ErrOverflow
	}
	return x.Uint64(), nil
}

// Add returns a+b, failing on overflow.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	res, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return res, nil
}

// Sub returns a-b, failing (as overflow, i.e. underflow) if b > a.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	if a.Lt(b) {
		return nil, ErrOverflow
	}
	return new(uint256.Int).Sub(a, b), nil
}

// SubClamped returns a-b, clamped to zero if b > a. Used where a
// rounding-induced negative should clamp rather than fail.
func SubClamped(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return Zero()
	}
	return new(uint256.Int).Sub(a, b)
}

// Mul returns a*b, failing on overflow.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	res, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return res, nil
}

// Div returns a/b truncated toward zero, failing on division by zero.
func Div(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrDivByZero
	}
	return new(uint256.Int).Div(a, b), nil
}

// Pow returns base^exp, failing on overflow at any step.
func Pow(base *uint256.Int, exp uint) (*uint256.Int, error) {
	result := FromUint64(1)
	for i := uint(0); i < exp; i++ {
		var err error
		result, err = Mul(result, base)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// pow10 returns 10^exp as a 256-bit integer. exp is always small (<= 18) in
// this package's callers, so overflow is not a realistic concern, but the
// checked Mul is used anyway for consistency.
func pow10(exp uint8) (*uint256.Int, error) {
	return Pow(FromUint64(10), uint(exp))
}

// ToCommon scales a raw token amount with `decimals` decimal places into
// the 18-decimal common-precision space. Down-scaling (decimals > 18)
// truncates toward zero.
func ToCommon(raw *uint256.Int, decimals uint8) (*uint256.Int, error) {
	if decimals <= CommonDecimals {
		scale, err := pow10(CommonDecimals - decimals)
		if err != nil {
			return nil, err
		}
		return Mul(raw, scale)
	}
	scale, err := pow10(decimals - CommonDecimals)
	if err != nil {
		return nil, err
	}
	return Div(raw, scale)
}

// ToRaw is the inverse of ToCommon: it scales a common-precision amount
// back down to `decimals` raw decimal places, truncating toward zero.
func ToRaw(common *uint256.Int, decimals uint8) (*uint256.Int, error) {
	if decimals <= CommonDecimals {
		scale, err := pow10(CommonDecimals - decimals)
		if err != nil {
			return nil, err
		}
		return Div(common, scale)
	}
	scale, err := pow10(decimals - CommonDecimals)
	if err != nil {
		return nil, err
	}
	return Mul(common, scale)
}
