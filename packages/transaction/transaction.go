// Package transaction contains a read-only view over the fixed-size ternary transaction format of the tangle and the
// mutable metadata that the node keeps for every transaction.
package transaction

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/stringify"
	"github.com/iotaledger/iota.go/trinary"

	"github.com/iotaledger/tanglenode/packages/sponge"
	"github.com/iotaledger/tanglenode/packages/ternary"
)

// ErrMalformedTransaction is returned when a transaction is created from a buffer of unrecognized size or content.
var ErrMalformedTransaction = errors.New("malformed transaction")

// Type tells whether the content of a transaction is known or only its hash.
type Type int8

const (
	// PrefilledSlot is the Type of a transaction that is only known by its hash because another transaction
	// references it.
	PrefilledSlot Type = 1
	// FilledSlot is the Type of a transaction whose content is known.
	FilledSlot Type = -1
)

// region Transaction //////////////////////////////////////////////////////////////////////////////////////////////////

// Transaction is an immutable view over the trits of a transaction. The fields are decoded on first access.
type Transaction struct {
	hash      ternary.Hash
	txType    Type
	bytes     []byte
	trits     trinary.Trits
	fields    fields
	tritsOnce sync.Once
	parseOnce sync.Once
}

type fields struct {
	address                       ternary.Hash
	value                         int64
	obsoleteTag                   trinary.Trytes
	timestamp                     int64
	currentIndex                  int64
	lastIndex                     int64
	bundle                        ternary.Hash
	trunk                         ternary.Hash
	branch                        ternary.Hash
	tag                           trinary.Trytes
	attachmentTimestamp           int64
	attachmentTimestampLowerBound int64
	attachmentTimestampUpperBound int64
	nonce                         trinary.Trytes
}

// FromBytes creates a Transaction with a known hash from its packed byte form. The bytes are copied.
func FromBytes(hash ternary.Hash, bytes []byte) (*Transaction, error) {
	if len(bytes) != SizeInBytes {
		return nil, errors.Wrapf(ErrMalformedTransaction, "expected %d bytes, got %d", SizeInBytes, len(bytes))
	}
	trits, err := ternary.BytesToTrits(bytes, SizeInTrits)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedTransaction, "%s", err)
	}

	tx := &Transaction{
		hash:   hash,
		txType: FilledSlot,
		bytes:  ternary.TritsToBytes(trits),
		trits:  trits,
	}
	tx.tritsOnce.Do(func() {})

	return tx, nil
}

// FromTrits creates a Transaction from a copy of its trits and computes its hash.
func FromTrits(trits trinary.Trits) (*Transaction, error) {
	if len(trits) != SizeInTrits {
		return nil, errors.Wrapf(ErrMalformedTransaction, "expected %d trits, got %d", SizeInTrits, len(trits))
	}
	if err := trinary.ValidTrits(trits); err != nil {
		return nil, errors.Wrapf(ErrMalformedTransaction, "%s", err)
	}

	hashTrits, err := sponge.Hash(sponge.CurlP81, ternary.HashTrinarySize, trits)
	if err != nil {
		return nil, errors.Errorf("failed to hash transaction: %w", err)
	}

	owned := make(trinary.Trits, SizeInTrits)
	copy(owned, trits)

	tx := &Transaction{
		hash:   ternary.MustHashFromTrits(hashTrits),
		txType: FilledSlot,
		bytes:  ternary.TritsToBytes(owned),
		trits:  owned,
	}
	tx.tritsOnce.Do(func() {})

	return tx, nil
}

// NewPlaceholder creates a Transaction of which only the hash is known.
func NewPlaceholder(hash ternary.Hash) *Transaction {
	return &Transaction{
		hash:   hash,
		txType: PrefilledSlot,
	}
}

// Hash returns the hash of the Transaction.
func (t *Transaction) Hash() ternary.Hash {
	return t.hash
}

// Type returns whether the content of the Transaction is known.
func (t *Transaction) Type() Type {
	return t.txType
}

// IsPlaceholder returns true if only the hash of the Transaction is known.
func (t *Transaction) IsPlaceholder() bool {
	return t.txType == PrefilledSlot
}

// Bytes returns the packed byte form of the Transaction.
func (t *Transaction) Bytes() []byte {
	return t.bytes
}

// Trits returns the trits of the Transaction. A placeholder has all trits set to zero.
func (t *Transaction) Trits() trinary.Trits {
	t.tritsOnce.Do(func() {
		if t.bytes == nil {
			t.trits = make(trinary.Trits, SizeInTrits)
			return
		}

		trits, err := ternary.BytesToTrits(t.bytes, SizeInTrits)
		if err != nil {
			// the bytes were validated on creation
			panic(err)
		}
		t.trits = trits
	})

	return t.trits
}

// SignatureMessageFragment returns the signature or message part of the Transaction.
func (t *Transaction) SignatureMessageFragment() trinary.Trits {
	return t.Trits()[SignatureMessageFragmentOffset : SignatureMessageFragmentOffset+SignatureMessageFragmentSize]
}

// Essence returns the part of the Transaction that is covered by the bundle hash.
func (t *Transaction) Essence() trinary.Trits {
	return t.Trits()[EssenceOffset : EssenceOffset+EssenceSize]
}

// ObsoleteTagTrits returns the raw trits of the obsolete tag.
func (t *Transaction) ObsoleteTagTrits() trinary.Trits {
	return t.Trits()[ObsoleteTagOffset : ObsoleteTagOffset+ObsoleteTagSize]
}

// Address returns the address the Transaction moves value from or to.
func (t *Transaction) Address() ternary.Hash {
	return t.parsed().address
}

// Value returns the (signed) amount of tokens moved by the Transaction.
func (t *Transaction) Value() int64 {
	return t.parsed().value
}

// ObsoleteTag returns the obsolete tag of the Transaction.
func (t *Transaction) ObsoleteTag() trinary.Trytes {
	return t.parsed().obsoleteTag
}

// Timestamp returns the issuance timestamp of the Transaction in seconds.
func (t *Transaction) Timestamp() int64 {
	return t.parsed().timestamp
}

// CurrentIndex returns the position of the Transaction in its bundle.
func (t *Transaction) CurrentIndex() int64 {
	return t.parsed().currentIndex
}

// LastIndex returns the position of the last Transaction of the bundle.
func (t *Transaction) LastIndex() int64 {
	return t.parsed().lastIndex
}

// IsTail returns true if the Transaction is the first one of its bundle.
func (t *Transaction) IsTail() bool {
	return t.CurrentIndex() == 0
}

// Bundle returns the bundle hash of the Transaction.
func (t *Transaction) Bundle() ternary.Hash {
	return t.parsed().bundle
}

// Trunk returns the hash of the first approved Transaction.
func (t *Transaction) Trunk() ternary.Hash {
	return t.parsed().trunk
}

// Branch returns the hash of the second approved Transaction.
func (t *Transaction) Branch() ternary.Hash {
	return t.parsed().branch
}

// Tag returns the tag of the Transaction.
func (t *Transaction) Tag() trinary.Trytes {
	return t.parsed().tag
}

// AttachmentTimestamp returns the time the Transaction was attached to the tangle in milliseconds.
func (t *Transaction) AttachmentTimestamp() int64 {
	return t.parsed().attachmentTimestamp
}

// AttachmentTimestampLowerBound returns the lower bound of the attachment timestamp.
func (t *Transaction) AttachmentTimestampLowerBound() int64 {
	return t.parsed().attachmentTimestampLowerBound
}

// AttachmentTimestampUpperBound returns the upper bound of the attachment timestamp.
func (t *Transaction) AttachmentTimestampUpperBound() int64 {
	return t.parsed().attachmentTimestampUpperBound
}

// Nonce returns the proof of work nonce of the Transaction.
func (t *Transaction) Nonce() trinary.Trytes {
	return t.parsed().nonce
}

// String returns a human readable version of the Transaction.
func (t *Transaction) String() string {
	return stringify.Struct("Transaction",
		stringify.StructField("hash", t.Hash().String()),
		stringify.StructField("address", t.Address().String()),
		stringify.StructField("value", t.Value()),
		stringify.StructField("currentIndex", t.CurrentIndex()),
		stringify.StructField("lastIndex", t.LastIndex()),
		stringify.StructField("bundle", t.Bundle().String()),
		stringify.StructField("trunk", t.Trunk().String()),
		stringify.StructField("branch", t.Branch().String()),
	)
}

func (t *Transaction) parsed() *fields {
	t.parseOnce.Do(func() {
		trits := t.Trits()

		t.fields = fields{
			address:                       hashAt(trits, AddressOffset),
			value:                         ternary.TritsToInt64(trits[ValueOffset : ValueOffset+ValueUsableSize]),
			obsoleteTag:                   trytesAt(trits, ObsoleteTagOffset, ObsoleteTagSize),
			timestamp:                     intAt(trits, TimestampOffset, TimestampSize),
			currentIndex:                  intAt(trits, CurrentIndexOffset, CurrentIndexSize),
			lastIndex:                     intAt(trits, LastIndexOffset, LastIndexSize),
			bundle:                        hashAt(trits, BundleOffset),
			trunk:                         hashAt(trits, TrunkOffset),
			branch:                        hashAt(trits, BranchOffset),
			tag:                           trytesAt(trits, TagOffset, TagSize),
			attachmentTimestamp:           intAt(trits, AttachmentTimestampOffset, AttachmentTimestampSize),
			attachmentTimestampLowerBound: intAt(trits, AttachmentTimestampLowerBoundOffset, AttachmentTimestampLowerBoundSize),
			attachmentTimestampUpperBound: intAt(trits, AttachmentTimestampUpperBoundOffset, AttachmentTimestampUpperBoundSize),
			nonce:                         trytesAt(trits, NonceOffset, NonceSize),
		}
	})

	return &t.fields
}

func hashAt(trits trinary.Trits, offset int) ternary.Hash {
	return ternary.MustHashFromTrits(trits[offset : offset+ternary.HashTrinarySize])
}

func intAt(trits trinary.Trits, offset, size int) int64 {
	return ternary.TritsToInt64(trits[offset : offset+size])
}

func trytesAt(trits trinary.Trits, offset, size int) trinary.Trytes {
	return trinary.MustTritsToTrytes(trits[offset : offset+size])
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
