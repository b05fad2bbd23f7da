package ternary

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/iota.go/trinary"
)

const (
	// TritsPerByte is the number of trits packed into a single byte.
	TritsPerByte = 5

	// MaxByteValue is the largest absolute value of a byte holding TritsPerByte trits.
	MaxByteValue = 121
)

// ErrInvalidByte is returned when a packed byte does not hold a valid group of trits.
var ErrInvalidByte = errors.New("invalid packed trit byte")

// BytesLength returns the number of bytes needed to pack the given number of trits.
func BytesLength(tritsLength int) int {
	return (tritsLength + TritsPerByte - 1) / TritsPerByte
}

// TritsToBytes packs the trits into bytes holding TritsPerByte trits each (least significant first).
func TritsToBytes(trits trinary.Trits) []byte {
	result := make([]byte, BytesLength(len(trits)))
	for i := range result {
		end := (i + 1) * TritsPerByte
		if end > len(trits) {
			end = len(trits)
		}

		var value int8
		for j := end - 1; j >= i*TritsPerByte; j-- {
			value = value*3 + trits[j]
		}
		result[i] = byte(value)
	}

	return result
}

// BytesToTrits unpacks exactly tritsLength trits from bytes created by TritsToBytes.
func BytesToTrits(bytes []byte, tritsLength int) (trinary.Trits, error) {
	if tritsLength < 0 || len(bytes) != BytesLength(tritsLength) {
		return nil, errors.Wrapf(ErrInvalidByte, "%d bytes cannot hold %d trits", len(bytes), tritsLength)
	}

	result := make(trinary.Trits, len(bytes)*TritsPerByte)
	for i, b := range bytes {
		value := int8(b)
		if value > MaxByteValue || value < -MaxByteValue {
			return nil, errors.Wrapf(ErrInvalidByte, "value %d at position %d", value, i)
		}

		for j := 0; j < TritsPerByte; j++ {
			remainder := value % 3
			value /= 3
			switch remainder {
			case 2:
				remainder = -1
				value++
			case -2:
				remainder = 1
				value--
			}
			result[i*TritsPerByte+j] = remainder
		}
	}

	for _, trit := range result[tritsLength:] {
		if trit != 0 {
			return nil, errors.Wrapf(ErrInvalidByte, "%d trits overflow the last byte", tritsLength)
		}
	}

	return result[:tritsLength:tritsLength], nil
}
