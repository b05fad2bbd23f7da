// Package ternary contains the fixed-size hash type of the tangle and the balanced ternary helpers used to decode
// scalar transaction fields.
package ternary

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/iota.go/trinary"
)

const (
	// HashTrinarySize is the number of trits of a hash.
	HashTrinarySize = 243

	// HashTrytesSize is the number of trytes of a hash.
	HashTrytesSize = HashTrinarySize / 3

	// HashSize is the number of bytes of a hash packed with 5 trits per byte.
	HashSize = 49
)

var (
	// ErrInvalidHashLength is returned when a hash is created from input of the wrong size.
	ErrInvalidHashLength = errors.New("invalid hash length")

	// NullHash is the all-zero hash that roots the tangle.
	NullHash Hash
)

// region Hash /////////////////////////////////////////////////////////////////////////////////////////////////////////

// Hash is the 243 trit identifier of a transaction, a bundle or an address in its packed byte form.
type Hash [HashSize]byte

// HashFromBytes creates a Hash from its packed byte form.
func HashFromBytes(bytes []byte) (hash Hash, err error) {
	if len(bytes) != HashSize {
		return hash, errors.Wrapf(ErrInvalidHashLength, "expected %d bytes, got %d", HashSize, len(bytes))
	}
	copy(hash[:], bytes)

	return hash, nil
}

// HashFromTrits creates a Hash from exactly 243 trits.
func HashFromTrits(trits trinary.Trits) (hash Hash, err error) {
	if len(trits) != HashTrinarySize {
		return hash, errors.Wrapf(ErrInvalidHashLength, "expected %d trits, got %d", HashTrinarySize, len(trits))
	}
	copy(hash[:], TritsToBytes(trits))

	return hash, nil
}

// HashFromTrytes creates a Hash from exactly 81 trytes.
func HashFromTrytes(trytes trinary.Trytes) (hash Hash, err error) {
	if len(trytes) != HashTrytesSize {
		return hash, errors.Wrapf(ErrInvalidHashLength, "expected %d trytes, got %d", HashTrytesSize, len(trytes))
	}
	trits, err := trinary.TrytesToTrits(trytes)
	if err != nil {
		return hash, errors.Errorf("failed to convert trytes: %w", err)
	}

	return HashFromTrits(trits)
}

// MustHashFromTrits works like HashFromTrits but panics on invalid input.
func MustHashFromTrits(trits trinary.Trits) Hash {
	hash, err := HashFromTrits(trits)
	if err != nil {
		panic(err)
	}

	return hash
}

// Bytes returns the packed byte form of the Hash.
func (h Hash) Bytes() []byte {
	return h[:]
}

// Trits returns the 243 trits of the Hash.
func (h Hash) Trits() trinary.Trits {
	trits, err := BytesToTrits(h[:], HashTrinarySize)
	if err != nil {
		// a Hash can only be created from valid trits
		panic(err)
	}

	return trits
}

// Trytes returns the tryte representation of the Hash.
func (h Hash) Trytes() trinary.Trytes {
	return trinary.MustTritsToTrytes(h.Trits())
}

// IsNull returns true if the Hash is the NullHash.
func (h Hash) IsNull() bool {
	return h == NullHash
}

// String returns the tryte representation of the Hash.
func (h Hash) String() string {
	return string(h.Trytes())
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
