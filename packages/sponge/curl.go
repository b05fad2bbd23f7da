package sponge

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/iota.go/trinary"
)

const (
	// HashLength is the number of trits absorbed or squeezed per permutation.
	HashLength = 243

	curlStateLength = 3 * HashLength
)

// ErrInvalidLength is returned when a Curl is fed or squeezed with a length that is not a multiple of 243 trits.
var ErrInvalidLength = errors.New("length must be a non-zero multiple of 243 trits")

var curlTruthTable = [11]int8{1, 0, -1, 2, 1, -1, 0, 2, -1, 1, 0}

// region Curl /////////////////////////////////////////////////////////////////////////////////////////////////////////

// Curl is the trit-wise Curl permutation with a configurable number of rounds.
type Curl struct {
	rounds     int
	state      [curlStateLength]int8
	scratchpad [curlStateLength]int8
}

// NewCurl returns a Curl that applies the given number of rounds per transformation.
func NewCurl(rounds int) *Curl {
	return &Curl{
		rounds: rounds,
	}
}

// Absorb replaces the rate part of the state with each 243 trit chunk of in and transforms the state after each chunk.
func (c *Curl) Absorb(in trinary.Trits) error {
	if len(in) == 0 || len(in)%HashLength != 0 {
		return errors.Wrapf(ErrInvalidLength, "got %d trits", len(in))
	}

	for ; len(in) > 0; in = in[HashLength:] {
		copy(c.state[:HashLength], in[:HashLength])
		c.transform()
	}

	return nil
}

// Squeeze extracts length trits from the state, transforming it after every 243 trits.
func (c *Curl) Squeeze(length int) (trinary.Trits, error) {
	if length == 0 || length%HashLength != 0 {
		return nil, errors.Wrapf(ErrInvalidLength, "got %d trits", length)
	}

	result := make(trinary.Trits, length)
	for out := result; len(out) > 0; out = out[HashLength:] {
		copy(out, c.state[:HashLength])
		c.transform()
	}

	return result, nil
}

// Reset clears the state.
func (c *Curl) Reset() {
	c.state = [curlStateLength]int8{}
}

func (c *Curl) transform() {
	index := 0
	for round := 0; round < c.rounds; round++ {
		c.scratchpad = c.state
		for i := 0; i < curlStateLength; i++ {
			previous := index
			if index < 365 {
				index += 364
			} else {
				index -= 365
			}
			c.state[i] = curlTruthTable[c.scratchpad[previous]+(c.scratchpad[index]<<2)+5]
		}
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
