package iss

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/iota.go/trinary"

	"github.com/iotaledger/tanglenode/packages/sponge"
	"github.com/iotaledger/tanglenode/packages/ternary"
)

// MerkleTree holds all one-time key addresses of a signer as leaves of a binary hash tree. Its root is the address
// that verifiers pin, the authentication path of a leaf proves that the leaf belongs to it.
type MerkleTree struct {
	mode          sponge.Mode
	seed          trinary.Trits
	securityLevel int
	depth         int
	layers        [][]trinary.Trits
}

// NewMerkleTree derives the 2^depth leaf addresses from seed and hashes them up to the root.
func NewMerkleTree(mode sponge.Mode, seed trinary.Trits, securityLevel int, depth int) (*MerkleTree, error) {
	if depth < 0 || depth > 20 {
		return nil, errors.Errorf("invalid merkle tree depth %d", depth)
	}

	tree := &MerkleTree{
		mode:          mode,
		seed:          seed,
		securityLevel: securityLevel,
		depth:         depth,
		layers:        make([][]trinary.Trits, depth+1),
	}

	leaves := make([]trinary.Trits, 1<<depth)
	for i := range leaves {
		key, err := tree.Key(i)
		if err != nil {
			return nil, err
		}
		digests, err := Digests(mode, key)
		if err != nil {
			return nil, err
		}
		if leaves[i], err = Address(mode, digests); err != nil {
			return nil, err
		}
	}
	tree.layers[0] = leaves

	for level := 1; level <= depth; level++ {
		lower := tree.layers[level-1]
		upper := make([]trinary.Trits, len(lower)/2)
		for i := range upper {
			node, err := sponge.Hash(mode, ternary.HashTrinarySize, lower[2*i], lower[2*i+1])
			if err != nil {
				return nil, err
			}
			upper[i] = node
		}
		tree.layers[level] = upper
	}

	return tree, nil
}

// Key returns the signing key of the leaf at index.
func (m *MerkleTree) Key(index int) (trinary.Trits, error) {
	subseed, err := Subseed(m.mode, m.seed, index)
	if err != nil {
		return nil, err
	}

	return Key(m.mode, subseed, m.securityLevel)
}

// Root returns the root of the tree.
func (m *MerkleTree) Root() trinary.Trits {
	return m.layers[m.depth][0]
}

// Depth returns the number of levels between the leaves and the root.
func (m *MerkleTree) Depth() int {
	return m.depth
}

// Siblings returns the concatenated authentication path of the leaf at index, ordered from the leaf to the root.
func (m *MerkleTree) Siblings(index int) (trinary.Trits, error) {
	if index < 0 || index >= len(m.layers[0]) {
		return nil, errors.Wrapf(ErrInvalidIndex, "leaf %d of %d", index, len(m.layers[0]))
	}

	siblings := make(trinary.Trits, 0, m.depth*ternary.HashTrinarySize)
	for level := 0; level < m.depth; level++ {
		siblings = append(siblings, m.layers[level][index^1]...)
		index >>= 1
	}

	return siblings, nil
}

// Sign signs hash with the key of the leaf at index and returns one signature fragment per security level.
func (m *MerkleTree) Sign(index int, hash trinary.Trits) ([]trinary.Trits, error) {
	key, err := m.Key(index)
	if err != nil {
		return nil, err
	}
	normalized, err := NormalizedBundle(hash)
	if err != nil {
		return nil, err
	}

	fragments := make([]trinary.Trits, m.securityLevel)
	for i := range fragments {
		fragments[i], err = SignatureFragment(m.mode, normalized[i*NormalizedFragmentLength:(i+1)*NormalizedFragmentLength], key[i*FragmentLength:(i+1)*FragmentLength])
		if err != nil {
			return nil, err
		}
	}

	return fragments, nil
}
