// Copyright (C) 2022 Creditor Corp. Group.
// See LICENSE for copying information.

package numbers

import (
	"math/big"
)

// Zero defines 0 number.
const Zero = 0

// IsPositive returns true if the number is grater than zero.
func IsPositive(num *big.Int) bool {
	return num.Sign() > Zero
}

// IsGreater returns true is a > b.
func IsGreater(a, b *big.Int) bool {
	return a.Cmp(b) > Zero
}

// IsLess returns true is a < b.
func IsLess(a, b *big.Int) bool {
	return a.Cmp(b) < Zero
}
