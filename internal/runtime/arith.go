package runtime

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// AddInt, SubInt, MulInt implement the integer arithmetic of §4.4; DivInt
// performs floor division, adjusting the quotient toward negative infinity
// when the operand signs differ and the remainder is nonzero.
func AddInt(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }
func SubInt(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }
func MulInt(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) }

func DivInt(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	q, m := new(big.Int).QuoRem(a, b, new(big.Int))
	if m.Sign() != 0 && (a.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return q, nil
}

// AddDec, SubDec, MulDec implement decimal arithmetic; DivDec uses
// banker's-rounding (half-to-even) division, per §4.4 "decimal-decimal uses
// banker's rounding (half-to-even)", using shopspring/decimal for exact
// base-10 semantics (see DESIGN.md).
func AddDec(a, b decimal.Decimal) decimal.Decimal { return a.Add(b) }
func SubDec(a, b decimal.Decimal) decimal.Decimal { return a.Sub(b) }
func MulDec(a, b decimal.Decimal) decimal.Decimal { return a.Mul(b) }

// decimalDivisionScale bounds the number of fractional digits DivDec keeps;
// division can be non-terminating in base 10 (e.g. 1/3), so a guard digit
// count beyond the kept scale is computed first and then rounded down to
// it with RoundBank (half-to-even), rather than rounding once at the final
// scale with the half-up DivRound directly.
const decimalDivisionScale = 34
const decimalGuardDigits = 10

func DivDec(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("division by zero")
	}
	guarded := a.DivRound(b, decimalDivisionScale+decimalGuardDigits)
	return guarded.RoundBank(decimalDivisionScale), nil
}
