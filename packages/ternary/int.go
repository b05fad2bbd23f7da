package ternary

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/iota.go/trinary"
)

// ErrValueOutOfRange is returned when an integer does not fit into the requested number of trits.
var ErrValueOutOfRange = errors.New("value does not fit into trits")

// TritsToInt64 decodes balanced ternary trits (least significant first) into an integer.
func TritsToInt64(trits trinary.Trits) int64 {
	return trinary.TritsToInt(trits)
}

// Int64ToTrits encodes value as exactly size balanced ternary trits (least significant first).
func Int64ToTrits(value int64, size int) (trinary.Trits, error) {
	if value != 0 && MaxValue(size) < abs(value) {
		return nil, errors.Wrapf(ErrValueOutOfRange, "%d does not fit into %d trits", value, size)
	}

	return trinary.IntToTrits(value, size), nil
}

// MustInt64ToTrits works like Int64ToTrits but panics if the value does not fit.
func MustInt64ToTrits(value int64, size int) trinary.Trits {
	trits, err := Int64ToTrits(value, size)
	if err != nil {
		panic(err)
	}

	return trits
}

// MaxValue returns the largest absolute value that can be represented with size balanced ternary trits.
func MaxValue(size int) int64 {
	if size >= 40 {
		return 1<<63 - 1
	}

	var result int64 = 1
	for i := 0; i < size; i++ {
		result *= 3
	}

	return (result - 1) / 2
}

func abs(value int64) int64 {
	if value < 0 {
		return -value
	}

	return value
}
