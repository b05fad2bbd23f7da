// Package sponge provides the absorb/squeeze hash constructions used by the signature scheme and the transaction
// hashing of the tangle.
package sponge

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/iota.go/curl"
	"github.com/iotaledger/iota.go/kerl"
	"github.com/iotaledger/iota.go/trinary"
)

// ErrUnknownMode is returned when a sponge is requested for a Mode that does not exist.
var ErrUnknownMode = errors.New("unknown sponge mode")

// Sponge is a stateful absorb/squeeze hash function over trits.
type Sponge interface {
	// Absorb feeds the given trits into the sponge.
	Absorb(in trinary.Trits) error
	// Squeeze extracts length trits from the sponge.
	Squeeze(length int) (trinary.Trits, error)
	// Reset resets the sponge to its initial state.
	Reset()
}

// region Mode /////////////////////////////////////////////////////////////////////////////////////////////////////////

// Mode selects one of the supported sponge constructions. It is fixed for the lifetime of a network.
type Mode uint8

const (
	// CurlP81 is the balanced ternary Curl permutation with 81 rounds.
	CurlP81 Mode = iota
	// CurlP27 is the balanced ternary Curl permutation with 27 rounds.
	CurlP27
	// Kerl is the Keccak-384 based sponge with ternary conversion.
	Kerl
)

var modeNames = map[Mode]string{
	CurlP81: "CURLP81",
	CurlP27: "CURLP27",
	Kerl:    "KERL",
}

// ParseMode returns the Mode with the given (case insensitive) name.
func ParseMode(name string) (Mode, error) {
	for mode, modeName := range modeNames {
		if strings.EqualFold(modeName, name) {
			return mode, nil
		}
	}

	return 0, errors.Wrapf(ErrUnknownMode, "'%s'", name)
}

// New returns a fresh Sponge of this Mode.
func (m Mode) New() (Sponge, error) {
	switch m {
	case CurlP81:
		return curl.NewCurlP81(), nil
	case CurlP27:
		return NewCurl(27), nil
	case Kerl:
		return &kerlSponge{Kerl: kerl.NewKerl()}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownMode, "%d", m)
	}
}

// MustNew works like New but panics on an unknown Mode.
func (m Mode) MustNew() Sponge {
	s, err := m.New()
	if err != nil {
		panic(err)
	}

	return s
}

// String returns the configuration name of the Mode.
func (m Mode) String() string {
	if name, exists := modeNames[m]; exists {
		return name
	}

	return "UNKNOWN"
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region kerlSponge ///////////////////////////////////////////////////////////////////////////////////////////////////

// kerlSponge clears the last trit of every absorbed chunk, which Kerl cannot represent in its byte conversion.
type kerlSponge struct {
	*kerl.Kerl
}

func (k *kerlSponge) Absorb(in trinary.Trits) error {
	if len(in)%HashLength != 0 {
		return errors.Wrapf(ErrInvalidLength, "got %d trits", len(in))
	}

	normalized := make(trinary.Trits, len(in))
	copy(normalized, in)
	for i := HashLength - 1; i < len(normalized); i += HashLength {
		normalized[i] = 0
	}

	return k.Kerl.Absorb(normalized)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// Hash absorbs all inputs into a fresh Sponge of the given Mode and squeezes length trits.
func Hash(mode Mode, length int, inputs ...trinary.Trits) (trinary.Trits, error) {
	s, err := mode.New()
	if err != nil {
		return nil, err
	}
	for _, input := range inputs {
		if err = s.Absorb(input); err != nil {
			return nil, errors.Errorf("failed to absorb: %w", err)
		}
	}

	result, err := s.Squeeze(length)
	if err != nil {
		return nil, errors.Errorf("failed to squeeze: %w", err)
	}

	return result, nil
}
