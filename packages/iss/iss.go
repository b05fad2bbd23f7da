// Package iss implements the Winternitz based one-time signature scheme used by the coordinator to sign milestones,
// together with the Merkle tree that binds all one-time keys of the coordinator to a single address.
package iss

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/iota.go/trinary"

	"github.com/iotaledger/tanglenode/packages/sponge"
	"github.com/iotaledger/tanglenode/packages/ternary"
)

const (
	// NumberOfFragmentChunks is the number of hash sized chunks of a key or signature fragment.
	NumberOfFragmentChunks = 27

	// FragmentLength is the number of trits of a key or signature fragment.
	FragmentLength = ternary.HashTrinarySize * NumberOfFragmentChunks

	// TryteWidth is the number of trits of a tryte.
	TryteWidth = 3

	// NumberOfSecurityLevels is the highest supported security level.
	NumberOfSecurityLevels = 3

	// NormalizedFragmentLength is the number of normalized tryte values that cover one signature fragment.
	NormalizedFragmentLength = ternary.HashTrinarySize / TryteWidth / NumberOfSecurityLevels

	// MinTryteValue is the lowest value of a tryte.
	MinTryteValue = -13

	// MaxTryteValue is the highest value of a tryte.
	MaxTryteValue = 13

	minTritValue = -1
	maxTritValue = 1
)

var (
	// ErrInvalidLength is returned when an input does not have the exact length required by a primitive.
	ErrInvalidLength = errors.New("invalid length")

	// ErrInvalidIndex is returned when a negative index is used to derive a subseed.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrInvalidSecurityLevel is returned when a key is requested for an unsupported security level.
	ErrInvalidSecurityLevel = errors.New("invalid security level")
)

// Subseed derives the subseed of the given index by adding index to seed (with carry) and hashing the result once.
func Subseed(mode sponge.Mode, seed trinary.Trits, index int) (trinary.Trits, error) {
	if index < 0 {
		return nil, errors.Wrapf(ErrInvalidIndex, "subseed index %d", index)
	}
	if len(seed) != ternary.HashTrinarySize {
		return nil, errors.Wrapf(ErrInvalidLength, "seed has %d trits", len(seed))
	}

	subseed := make(trinary.Trits, len(seed))
	copy(subseed, seed)
	for ; index > 0; index-- {
		for i := range subseed {
			if subseed[i]++; subseed[i] <= maxTritValue {
				break
			}
			subseed[i] = minTritValue
		}
	}

	return sponge.Hash(mode, ternary.HashTrinarySize, subseed)
}

// Key expands a subseed into a signing key of one fragment per security level.
func Key(mode sponge.Mode, subseed trinary.Trits, securityLevel int) (trinary.Trits, error) {
	if len(subseed) != ternary.HashTrinarySize {
		return nil, errors.Wrapf(ErrInvalidLength, "subseed has %d trits", len(subseed))
	}
	if securityLevel < 1 || securityLevel > NumberOfSecurityLevels {
		return nil, errors.Wrapf(ErrInvalidSecurityLevel, "%d", securityLevel)
	}

	return sponge.Hash(mode, FragmentLength*securityLevel, subseed)
}

// Digests computes one digest per key fragment by hashing every chunk of the fragment to the end of its hash chain
// and then hashing the whole fragment.
func Digests(mode sponge.Mode, key trinary.Trits) (trinary.Trits, error) {
	if len(key) == 0 || len(key)%FragmentLength != 0 {
		return nil, errors.Wrapf(ErrInvalidLength, "key has %d trits", len(key))
	}

	s, err := mode.New()
	if err != nil {
		return nil, err
	}

	fragments := len(key) / FragmentLength
	digests := make(trinary.Trits, 0, fragments*ternary.HashTrinarySize)
	for i := 0; i < fragments; i++ {
		buffer := make(trinary.Trits, FragmentLength)
		copy(buffer, key[i*FragmentLength:(i+1)*FragmentLength])

		for j := 0; j < NumberOfFragmentChunks; j++ {
			if err = hashChunk(s, buffer, j, MaxTryteValue-MinTryteValue); err != nil {
				return nil, err
			}
		}

		digest, err := hashFragment(s, buffer)
		if err != nil {
			return nil, err
		}
		digests = append(digests, digest...)
	}

	return digests, nil
}

// Address hashes the concatenated digests of all fragments into an address.
func Address(mode sponge.Mode, digests trinary.Trits) (trinary.Trits, error) {
	if len(digests) == 0 || len(digests)%ternary.HashTrinarySize != 0 {
		return nil, errors.Wrapf(ErrInvalidLength, "digests have %d trits", len(digests))
	}

	return sponge.Hash(mode, ternary.HashTrinarySize, digests)
}

// Digest reconstructs the digest of one key fragment from its signature fragment and the normalized bundle values
// that were signed.
func Digest(mode sponge.Mode, normalizedBundleFragment []int8, signatureFragment trinary.Trits) (trinary.Trits, error) {
	if len(normalizedBundleFragment) != NormalizedFragmentLength {
		return nil, errors.Wrapf(ErrInvalidLength, "normalized bundle fragment has %d values", len(normalizedBundleFragment))
	}
	if len(signatureFragment) != FragmentLength {
		return nil, errors.Wrapf(ErrInvalidLength, "signature fragment has %d trits", len(signatureFragment))
	}

	s, err := mode.New()
	if err != nil {
		return nil, err
	}

	buffer := make(trinary.Trits, FragmentLength)
	copy(buffer, signatureFragment)
	for j := 0; j < NumberOfFragmentChunks; j++ {
		if err = hashChunk(s, buffer, j, int(normalizedBundleFragment[j])-MinTryteValue); err != nil {
			return nil, err
		}
	}

	return hashFragment(s, buffer)
}

// SignatureFragment signs one fragment of a normalized bundle hash with the matching key fragment.
func SignatureFragment(mode sponge.Mode, normalizedBundleFragment []int8, keyFragment trinary.Trits) (trinary.Trits, error) {
	if len(normalizedBundleFragment) != NormalizedFragmentLength {
		return nil, errors.Wrapf(ErrInvalidLength, "normalized bundle fragment has %d values", len(normalizedBundleFragment))
	}
	if len(keyFragment) != FragmentLength {
		return nil, errors.Wrapf(ErrInvalidLength, "key fragment has %d trits", len(keyFragment))
	}

	s, err := mode.New()
	if err != nil {
		return nil, err
	}

	signature := make(trinary.Trits, FragmentLength)
	copy(signature, keyFragment)
	for j := 0; j < NumberOfFragmentChunks; j++ {
		if err = hashChunk(s, signature, j, MaxTryteValue-int(normalizedBundleFragment[j])); err != nil {
			return nil, err
		}
	}

	return signature, nil
}

// NormalizedBundle converts a bundle hash into signed tryte values, adjusted so that the values of every security
// level group sum up to zero.
func NormalizedBundle(bundleHash trinary.Trits) ([]int8, error) {
	if len(bundleHash) != ternary.HashTrinarySize {
		return nil, errors.Wrapf(ErrInvalidLength, "bundle hash has %d trits", len(bundleHash))
	}

	normalized := make([]int8, ternary.HashTrinarySize/TryteWidth)
	for i := 0; i < NumberOfSecurityLevels; i++ {
		group := normalized[i*NormalizedFragmentLength : (i+1)*NormalizedFragmentLength]

		sum := 0
		for j := range group {
			offset := (i*NormalizedFragmentLength + j) * TryteWidth
			group[j] = bundleHash[offset] + bundleHash[offset+1]*3 + bundleHash[offset+2]*9
			sum += int(group[j])
		}

		for ; sum > 0; sum-- {
			for j := range group {
				if group[j] > MinTryteValue {
					group[j]--
					break
				}
			}
		}
		for ; sum < 0; sum++ {
			for j := range group {
				if group[j] < MaxTryteValue {
					group[j]++
					break
				}
			}
		}
	}

	return normalized, nil
}

// MerkleRoot walks depth levels up the Merkle tree from leaf at position leafIndex, reading one sibling hash per level
// from siblings. A leafIndex that does not fit into a tree of the given depth yields the null hash.
func MerkleRoot(mode sponge.Mode, leaf trinary.Trits, siblings trinary.Trits, leafIndex uint32, depth int) (trinary.Trits, error) {
	if len(leaf) != ternary.HashTrinarySize {
		return nil, errors.Wrapf(ErrInvalidLength, "leaf has %d trits", len(leaf))
	}
	if depth < 0 || len(siblings) != depth*ternary.HashTrinarySize {
		return nil, errors.Wrapf(ErrInvalidLength, "%d sibling trits for depth %d", len(siblings), depth)
	}

	s, err := mode.New()
	if err != nil {
		return nil, err
	}

	current := make(trinary.Trits, ternary.HashTrinarySize)
	copy(current, leaf)
	index := leafIndex
	for i := 0; i < depth; i++ {
		sibling := siblings[i*ternary.HashTrinarySize : (i+1)*ternary.HashTrinarySize]

		s.Reset()
		if index&1 == 0 {
			err = absorbAll(s, current, sibling)
		} else {
			err = absorbAll(s, sibling, current)
		}
		if err != nil {
			return nil, err
		}
		if current, err = s.Squeeze(ternary.HashTrinarySize); err != nil {
			return nil, errors.Errorf("failed to squeeze: %w", err)
		}

		index >>= 1
	}

	if index != 0 {
		return make(trinary.Trits, ternary.HashTrinarySize), nil
	}

	return current, nil
}

// hashChunk replaces the j-th chunk of buffer with its hash, iterated times times.
func hashChunk(s sponge.Sponge, buffer trinary.Trits, j int, times int) error {
	chunk := buffer[j*ternary.HashTrinarySize : (j+1)*ternary.HashTrinarySize]
	for k := 0; k < times; k++ {
		s.Reset()
		if err := s.Absorb(chunk); err != nil {
			return errors.Errorf("failed to absorb chunk: %w", err)
		}
		hashed, err := s.Squeeze(ternary.HashTrinarySize)
		if err != nil {
			return errors.Errorf("failed to squeeze chunk: %w", err)
		}
		copy(chunk, hashed)
	}

	return nil
}

func hashFragment(s sponge.Sponge, fragment trinary.Trits) (trinary.Trits, error) {
	s.Reset()
	if err := s.Absorb(fragment); err != nil {
		return nil, errors.Errorf("failed to absorb fragment: %w", err)
	}

	digest, err := s.Squeeze(ternary.HashTrinarySize)
	if err != nil {
		return nil, errors.Errorf("failed to squeeze fragment: %w", err)
	}

	return digest, nil
}

func absorbAll(s sponge.Sponge, inputs ...trinary.Trits) error {
	for _, input := range inputs {
		if err := s.Absorb(input); err != nil {
			return errors.Errorf("failed to absorb: %w", err)
		}
	}

	return nil
}
