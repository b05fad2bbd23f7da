// Package bundle reassembles the atomic transfer groups of the tangle and checks their consistency.
package bundle

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/iota.go/trinary"

	"github.com/iotaledger/tanglenode/packages/iss"
	"github.com/iotaledger/tanglenode/packages/sponge"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

// MaxLength is the largest number of transactions that a bundle may contain.
const MaxLength = 10000

// TransactionLoader loads transactions by their hash. Unknown transactions are returned as placeholders.
type TransactionLoader interface {
	Transaction(hash ternary.Hash) (*transaction.Transaction, error)
}

// Bundle is the ordered list of transactions of one bundle, starting with the tail.
type Bundle []*transaction.Transaction

// Tail returns the first transaction of the Bundle.
func (b Bundle) Tail() *transaction.Transaction {
	return b[0]
}

// Validate reassembles the bundle that starts at the given tail by following the trunk references and checks its
// structure, bundle hash, value balance and input signatures. It returns every consistent bundle that starts at the
// tail. The result is empty if the bundle is incomplete or invalid.
func Validate(loader TransactionLoader, tailHash ternary.Hash) ([]Bundle, error) {
	tail, err := loader.Transaction(tailHash)
	if err != nil {
		return nil, err
	}
	if tail.IsPlaceholder() || !tail.IsTail() {
		return []Bundle{}, nil
	}

	lastIndex := tail.LastIndex()
	if lastIndex < tail.CurrentIndex() || lastIndex >= MaxLength {
		return []Bundle{}, nil
	}

	var bundle Bundle
	var bundleValue int64

	for current := tail; ; {
		if current.CurrentIndex() != int64(len(bundle)) || current.LastIndex() != lastIndex {
			return []Bundle{}, nil
		}
		if bundleValue += current.Value(); bundleValue < -transaction.Supply || bundleValue > transaction.Supply {
			return []Bundle{}, nil
		}
		// value transfers must use addresses with a zero last trit
		if current.Value() != 0 && current.Address().Trits()[ternary.HashTrinarySize-1] != 0 {
			return []Bundle{}, nil
		}
		bundle = append(bundle, current)

		if current.CurrentIndex() == lastIndex {
			break
		}

		if current, err = loader.Transaction(current.Trunk()); err != nil {
			return nil, err
		}
		if current.IsPlaceholder() || current.Bundle() != tail.Bundle() {
			return []Bundle{}, nil
		}
	}

	if bundleValue != 0 {
		return []Bundle{}, nil
	}

	hash, err := Hash(bundle)
	if err != nil {
		return nil, err
	}
	if hash != tail.Bundle() {
		return []Bundle{}, nil
	}

	if valid, err := validateSignatures(bundle, hash); err != nil || !valid {
		return []Bundle{}, err
	}

	return []Bundle{bundle}, nil
}

// Hash computes the bundle hash over the essences of the given transactions.
func Hash(transactions []*transaction.Transaction) (ternary.Hash, error) {
	essences := make([]trinary.Trits, len(transactions))
	for i, tx := range transactions {
		essences[i] = tx.Essence()
	}

	return HashEssences(essences...)
}

// HashEssences computes the bundle hash over the given transaction essences.
func HashEssences(essences ...trinary.Trits) (ternary.Hash, error) {
	hashTrits, err := sponge.Hash(sponge.Kerl, ternary.HashTrinarySize, essences...)
	if err != nil {
		return ternary.NullHash, errors.Errorf("failed to compute bundle hash: %w", err)
	}

	return ternary.HashFromTrits(hashTrits)
}

// validateSignatures recomputes the address of every input from the signature fragments stored in the input
// transaction and the zero valued transactions of the same address that follow it.
func validateSignatures(bundle Bundle, bundleHash ternary.Hash) (bool, error) {
	normalized, err := iss.NormalizedBundle(bundleHash.Trits())
	if err != nil {
		return false, err
	}

	for i := 0; i < len(bundle); {
		input := bundle[i]
		if input.Value() >= 0 {
			i++
			continue
		}

		digests := make(trinary.Trits, 0, iss.NumberOfSecurityLevels*ternary.HashTrinarySize)
		for fragment := 0; ; fragment++ {
			offset := (fragment % iss.NumberOfSecurityLevels) * iss.NormalizedFragmentLength
			digest, err := iss.Digest(sponge.Kerl, normalized[offset:offset+iss.NormalizedFragmentLength], bundle[i].SignatureMessageFragment())
			if err != nil {
				return false, err
			}
			digests = append(digests, digest...)

			if i++; i >= len(bundle) || bundle[i].Address() != input.Address() || bundle[i].Value() != 0 {
				break
			}
		}

		address, err := iss.Address(sponge.Kerl, digests)
		if err != nil {
			return false, err
		}
		if ternary.MustHashFromTrits(address) != input.Address() {
			return false, nil
		}
	}

	return true, nil
}
