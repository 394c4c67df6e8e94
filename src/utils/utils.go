package utils

import (
	"fmt"
	"math/bits"

	"github.com/KuratZero/c-png-to-pnm/src/oops"
)

// Returns the provided value, or a default value if the input was zero.
func OrDefault[T comparable](v T, def T) T {
	var zero T
	if v == zero {
		return def
	} else {
		return v
	}
}

// MulSize multiplies buffer dimensions together. The second result is false
// if the product does not fit in a uint64.
func MulSize(factors ...uint64) (uint64, bool) {
	product := uint64(1)
	for _, f := range factors {
		hi, lo := bits.Mul64(product, f)
		if hi != 0 {
			return 0, false
		}
		product = lo
	}
	return product, true
}

// AddSize is the addition counterpart of MulSize.
func AddSize(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

/*
Recover a panic and convert it to a returned error. Call it like so:

	func MyFunc() (err error) {
		defer utils.RecoverPanicAsError(&err)
	}

If an error was already present, it stays in the chain and the panic value is
added to the message.
*/
func RecoverPanicAsError(err *error) {
	if r := recover(); r != nil {
		if *err != nil {
			*err = oops.New(*err, "panic recovered as error (%v)", r)
			return
		}

		var recoveredErr error
		if rerr, ok := r.(error); ok {
			recoveredErr = rerr
		} else {
			recoveredErr = fmt.Errorf("panic with value: %v", r)
		}
		*err = oops.New(recoveredErr, "panic recovered as error")
	}
}
