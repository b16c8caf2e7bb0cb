// Package mathutil adapts erigon-lib/common/math's overflow-checked integer
// helpers for Katana's resource-bound arithmetic: V3 transactions bound fees
// by max_amount * max_price_per_unit per resource family (L1 gas, L2 gas,
// L1 data gas), and that multiplication must never silently wrap.
package mathutil

import (
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"
)

// SafeMul returns x*y and reports whether the multiplication overflowed a
// uint64, the same contract as erigon-lib/common/math.SafeMul.
func SafeMul(x, y uint64) (uint64, bool) {
	hi, lo := bits.Mul64(x, y)
	return lo, hi != 0
}

// SafeAdd returns x+y and reports whether the addition overflowed a uint64.
func SafeAdd(x, y uint64) (uint64, bool) {
	sum, carryOut := bits.Add64(x, y, 0)
	return sum, carryOut != 0
}

// CeilDiv returns ceil(x/y), or 0 if y is 0.
func CeilDiv(x, y int) int {
	if y == 0 {
		return 0
	}
	return (x + y - 1) / y
}

// ResourceCost computes max_amount * max_price_per_unit for one resource
// bound family, mirroring consensus/misc's FakeExponential overflow-check
// style (explicit MulOverflow, returning an error instead of wrapping).
func ResourceCost(maxAmount, maxPricePerUnit uint64) (*uint256.Int, error) {
	a := uint256.NewInt(maxAmount)
	p := uint256.NewInt(maxPricePerUnit)
	out := new(uint256.Int)
	if _, overflow := out.MulOverflow(a, p); overflow {
		return nil, fmt.Errorf("mathutil: resource cost overflow (amount=%d, price=%d)", maxAmount, maxPricePerUnit)
	}
	return out, nil
}

// SumResourceCosts adds a set of per-resource costs, erroring on overflow
// instead of wrapping, the same discipline as consensus/misc.FakeExponential
// uses for its AddOverflow accumulation.
func SumResourceCosts(costs ...*uint256.Int) (*uint256.Int, error) {
	total := new(uint256.Int)
	for _, c := range costs {
		if _, overflow := total.AddOverflow(total, c); overflow {
			return nil, fmt.Errorf("mathutil: resource cost sum overflow")
		}
	}
	return total, nil
}
