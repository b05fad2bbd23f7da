package sponge

import (
	"testing"

	"github.com/iotaledger/iota.go/trinary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, mode := range []Mode{CurlP81, CurlP27, Kerl} {
		parsed, err := ParseMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	parsed, err := ParseMode("kerl")
	require.NoError(t, err)
	assert.Equal(t, Kerl, parsed)

	_, err = ParseMode("SHA3")
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = Mode(42).New()
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestHash(t *testing.T) {
	input := make(trinary.Trits, 243)
	input[0] = 1

	for _, mode := range []Mode{CurlP81, CurlP27, Kerl} {
		first, err := Hash(mode, 243, input)
		require.NoError(t, err)
		assert.Len(t, first, 243)

		second, err := Hash(mode, 243, input)
		require.NoError(t, err)
		assert.Equal(t, first, second, "mode %s", mode)
	}

	curlHash, err := Hash(CurlP27, 243, input)
	require.NoError(t, err)
	kerlHash, err := Hash(Kerl, 243, input)
	require.NoError(t, err)
	assert.NotEqual(t, curlHash, kerlHash)
}

func TestCurl_MatchesCurlP81(t *testing.T) {
	input := make(trinary.Trits, 2*HashLength)
	for i := range input {
		input[i] = int8(i*7%3) - 1
	}

	expected, err := Hash(CurlP81, 2*HashLength, input)
	require.NoError(t, err)

	local := NewCurl(81)
	require.NoError(t, local.Absorb(input))
	actual, err := local.Squeeze(2 * HashLength)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)

	curlP27, err := Hash(CurlP27, HashLength, input)
	require.NoError(t, err)
	assert.NotEqual(t, expected[:HashLength], curlP27)

	assert.ErrorIs(t, local.Absorb(make(trinary.Trits, 42)), ErrInvalidLength)
	_, err = local.Squeeze(0)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestKerl_ClearsLastTritOfEveryChunk(t *testing.T) {
	withLastTrit := make(trinary.Trits, 2*HashLength)
	withLastTrit[0] = 1
	withLastTrit[HashLength-1] = 1
	withLastTrit[2*HashLength-1] = -1

	hash, err := Hash(Kerl, HashLength, withLastTrit)
	require.NoError(t, err)

	cleared := make(trinary.Trits, 2*HashLength)
	cleared[0] = 1
	expected, err := Hash(Kerl, HashLength, cleared)
	require.NoError(t, err)
	assert.Equal(t, expected, hash)

	assert.Equal(t, int8(1), withLastTrit[HashLength-1], "input must not be modified")
}
