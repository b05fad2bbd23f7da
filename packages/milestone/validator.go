// Package milestone validates the checkpoints issued by the coordinator and tracks the latest and the latest solid
// milestone of the tangle.
package milestone

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/iota.go/trinary"

	"github.com/iotaledger/tanglenode/packages/bundle"
	"github.com/iotaledger/tanglenode/packages/iss"
	"github.com/iotaledger/tanglenode/packages/sponge"
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

const (
	// MaxIndex is the first milestone index that is out of range.
	MaxIndex = 0x200000

	// IndexTritsSize is the number of trits at the beginning of the obsolete tag that encode the milestone index.
	IndexTritsSize = 15

	// MaxMerkleTreeDepth is the deepest coordinator Merkle tree whose siblings fit into one signature fragment.
	MaxMerkleTreeDepth = transaction.SignatureMessageFragmentSize / ternary.HashTrinarySize
)

// ErrInvalidConfiguration is returned when a Validator is created with parameters that can not verify any milestone.
var ErrInvalidConfiguration = errors.New("invalid milestone configuration")

// Index returns the milestone index that the coordinator encoded into the obsolete tag of the transaction.
func Index(tx *transaction.Transaction) int64 {
	return ternary.TritsToInt64(tx.ObsoleteTagTrits()[:IndexTritsSize])
}

// region Validity /////////////////////////////////////////////////////////////////////////////////////////////////////

// Validity is the verdict of a milestone validation.
type Validity uint8

const (
	// Invalid marks a candidate that is not a milestone. It is never analyzed again.
	Invalid Validity = iota
	// Valid marks a candidate that is a milestone signed by the coordinator.
	Valid
	// Incomplete marks a candidate whose bundle is not complete yet. It is analyzed again later.
	Incomplete
)

// String returns a human readable version of the Validity.
func (v Validity) String() string {
	switch v {
	case Invalid:
		return "Invalid"
	case Valid:
		return "Valid"
	case Incomplete:
		return "Incomplete"
	default:
		return "Unknown"
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Validator ////////////////////////////////////////////////////////////////////////////////////////////////////

// Validator checks that milestone candidates are signed by the coordinator and persists the valid ones.
type Validator struct {
	storage       *tangle.Storage
	coordinator   ternary.Hash
	securityLevel int
	depth         int
	mode          sponge.Mode

	testnet                         bool
	dontValidateTestnetMilestoneSig bool
}

// NewValidator creates a Validator for milestones of the coordinator with the given address, signed with the given
// security level by a Merkle tree of the given depth.
func NewValidator(storage *tangle.Storage, coordinator ternary.Hash, securityLevel, depth int, mode sponge.Mode, opts ...ValidatorOption) (*Validator, error) {
	if securityLevel < 1 || securityLevel > iss.NumberOfSecurityLevels {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "security level %d", securityLevel)
	}
	if depth < 0 || depth > MaxMerkleTreeDepth {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "merkle tree depth %d", depth)
	}
	if _, err := mode.New(); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "%s", err)
	}

	validator := &Validator{
		storage:       storage,
		coordinator:   coordinator,
		securityLevel: securityLevel,
		depth:         depth,
		mode:          mode,
	}
	for _, opt := range opts {
		opt(validator)
	}

	return validator, nil
}

// Coordinator returns the address of the coordinator.
func (v *Validator) Coordinator() ternary.Hash {
	return v.coordinator
}

// Validate checks whether the tail is a milestone with the given index. Valid milestones are persisted, a milestone
// that was persisted before is Valid without checking its signature again.
func (v *Validator) Validate(tail *transaction.Transaction, index int64) (Validity, error) {
	if index < 0 || index >= MaxIndex {
		return Invalid, nil
	}

	exists, err := v.storage.ContainsMilestone(uint32(index))
	if err != nil {
		return Invalid, err
	}
	if exists {
		return Valid, nil
	}

	bundles, err := bundle.Validate(v.storage, tail.Hash())
	if err != nil {
		return Invalid, err
	}
	if len(bundles) == 0 {
		return Incomplete, nil
	}

	for _, milestoneBundle := range bundles {
		if milestoneBundle.Tail().Hash() != tail.Hash() || !v.isStructureValid(milestoneBundle) {
			continue
		}

		root, err := v.merkleRoot(milestoneBundle, uint32(index))
		if err != nil {
			return Invalid, err
		}
		if !(v.testnet && v.dontValidateTestnetMilestoneSig) && ternary.MustHashFromTrits(root) != v.coordinator {
			return Invalid, nil
		}

		if err = v.storage.StoreMilestone(&tangle.Milestone{Index: uint32(index), Hash: tail.Hash()}); err != nil {
			return Invalid, err
		}

		return Valid, nil
	}

	return Invalid, nil
}

// isStructureValid checks that the bundle holds the signature fragments followed by the siblings transaction and that
// all signature transactions approve the trunk of the siblings transaction as their branch.
func (v *Validator) isStructureValid(milestoneBundle bundle.Bundle) bool {
	if len(milestoneBundle) <= v.securityLevel {
		return false
	}

	head := milestoneBundle[v.securityLevel]
	for _, signatureTransaction := range milestoneBundle[:v.securityLevel] {
		if signatureTransaction.Branch() != head.Trunk() {
			return false
		}
	}

	return true
}

// merkleRoot recovers the one-time address from the signature over the siblings transaction hash and hashes it up the
// authentication path stored in the siblings transaction.
func (v *Validator) merkleRoot(milestoneBundle bundle.Bundle, index uint32) (trinary.Trits, error) {
	siblingsTransaction := milestoneBundle[v.securityLevel]

	normalized, err := iss.NormalizedBundle(siblingsTransaction.Hash().Trits())
	if err != nil {
		return nil, err
	}

	digests := make(trinary.Trits, 0, v.securityLevel*ternary.HashTrinarySize)
	for i := 0; i < v.securityLevel; i++ {
		digest, err := iss.Digest(v.mode, normalized[i*iss.NormalizedFragmentLength:(i+1)*iss.NormalizedFragmentLength], milestoneBundle[i].SignatureMessageFragment())
		if err != nil {
			return nil, err
		}
		digests = append(digests, digest...)
	}

	address, err := iss.Address(v.mode, digests)
	if err != nil {
		return nil, err
	}

	siblings := siblingsTransaction.SignatureMessageFragment()[:v.depth*ternary.HashTrinarySize]

	return iss.MerkleRoot(v.mode, address, siblings, index, v.depth)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ValidatorOptions /////////////////////////////////////////////////////////////////////////////////////////////

// ValidatorOption is a function setting an option of the Validator.
type ValidatorOption func(*Validator)

// WithTestnet marks the network as a testnet. If skipSignatureCheck is set as well, milestones of any signer are
// accepted.
func WithTestnet(skipSignatureCheck bool) ValidatorOption {
	return func(v *Validator) {
		v.testnet = true
		v.dontValidateTestnetMilestoneSig = skipSignatureCheck
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
