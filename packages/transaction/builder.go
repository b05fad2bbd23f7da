package transaction

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/iota.go/trinary"

	"github.com/iotaledger/tanglenode/packages/ternary"
)

// Builder assembles the trits of a new transaction field by field.
type Builder struct {
	trits trinary.Trits
	err   error
}

// NewBuilder returns a Builder for a transaction with all trits set to zero.
func NewBuilder() *Builder {
	return &Builder{
		trits: make(trinary.Trits, SizeInTrits),
	}
}

// SignatureMessageFragment sets the signature or message part of the transaction.
func (b *Builder) SignatureMessageFragment(fragment trinary.Trits) *Builder {
	return b.setTrits(SignatureMessageFragmentOffset, SignatureMessageFragmentSize, fragment)
}

// Address sets the address of the transaction.
func (b *Builder) Address(address ternary.Hash) *Builder {
	return b.setTrits(AddressOffset, AddressSize, address.Trits())
}

// Value sets the value of the transaction.
func (b *Builder) Value(value int64) *Builder {
	if value > Supply || value < -Supply {
		b.fail(errors.Errorf("value %d exceeds the supply", value))
		return b
	}

	return b.setInt(ValueOffset, ValueSize, value)
}

// ObsoleteTag sets the raw obsolete tag trits of the transaction.
func (b *Builder) ObsoleteTag(obsoleteTag trinary.Trits) *Builder {
	return b.setTrits(ObsoleteTagOffset, ObsoleteTagSize, obsoleteTag)
}

// Timestamp sets the issuance timestamp of the transaction.
func (b *Builder) Timestamp(timestamp int64) *Builder {
	return b.setInt(TimestampOffset, TimestampSize, timestamp)
}

// CurrentIndex sets the position of the transaction in its bundle.
func (b *Builder) CurrentIndex(index int64) *Builder {
	return b.setInt(CurrentIndexOffset, CurrentIndexSize, index)
}

// LastIndex sets the position of the last transaction of the bundle.
func (b *Builder) LastIndex(index int64) *Builder {
	return b.setInt(LastIndexOffset, LastIndexSize, index)
}

// Bundle sets the bundle hash of the transaction.
func (b *Builder) Bundle(bundle ternary.Hash) *Builder {
	return b.setTrits(BundleOffset, BundleSize, bundle.Trits())
}

// Trunk sets the first approved transaction.
func (b *Builder) Trunk(trunk ternary.Hash) *Builder {
	return b.setTrits(TrunkOffset, TrunkSize, trunk.Trits())
}

// Branch sets the second approved transaction.
func (b *Builder) Branch(branch ternary.Hash) *Builder {
	return b.setTrits(BranchOffset, BranchSize, branch.Trits())
}

// Tag sets the tag of the transaction.
func (b *Builder) Tag(tag trinary.Trits) *Builder {
	return b.setTrits(TagOffset, TagSize, tag)
}

// AttachmentTimestamp sets the attachment timestamp of the transaction.
func (b *Builder) AttachmentTimestamp(timestamp int64) *Builder {
	return b.setInt(AttachmentTimestampOffset, AttachmentTimestampSize, timestamp)
}

// Nonce sets the proof of work nonce of the transaction.
func (b *Builder) Nonce(nonce trinary.Trits) *Builder {
	return b.setTrits(NonceOffset, NonceSize, nonce)
}

// Essence returns the essence of the transaction built so far.
func (b *Builder) Essence() trinary.Trits {
	return b.trits[EssenceOffset : EssenceOffset+EssenceSize]
}

// Build creates the Transaction and computes its hash.
func (b *Builder) Build() (*Transaction, error) {
	if b.err != nil {
		return nil, b.err
	}

	return FromTrits(b.trits)
}

func (b *Builder) setInt(offset, size int, value int64) *Builder {
	trits, err := ternary.Int64ToTrits(value, size)
	if err != nil {
		b.fail(err)
		return b
	}

	return b.setTrits(offset, size, trits)
}

func (b *Builder) setTrits(offset, size int, trits trinary.Trits) *Builder {
	if len(trits) > size {
		b.fail(errors.Wrapf(ErrMalformedTransaction, "%d trits do not fit into a field of %d trits", len(trits), size))
		return b
	}
	field := b.trits[offset : offset+size]
	for i := range field {
		field[i] = 0
	}
	copy(field, trits)

	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
