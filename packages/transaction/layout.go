package transaction

import (
	"github.com/iotaledger/tanglenode/packages/ternary"
)

// The fixed trit layout of a transaction. Every field is addressed by (offset, size) in trits.
const (
	SignatureMessageFragmentOffset = 0
	SignatureMessageFragmentSize   = 6561

	AddressOffset = SignatureMessageFragmentOffset + SignatureMessageFragmentSize
	AddressSize   = 243

	ValueOffset     = AddressOffset + AddressSize
	ValueSize       = 81
	ValueUsableSize = 33

	ObsoleteTagOffset = ValueOffset + ValueSize
	ObsoleteTagSize   = 81

	TimestampOffset = ObsoleteTagOffset + ObsoleteTagSize
	TimestampSize   = 27

	CurrentIndexOffset = TimestampOffset + TimestampSize
	CurrentIndexSize   = 27

	LastIndexOffset = CurrentIndexOffset + CurrentIndexSize
	LastIndexSize   = 27

	BundleOffset = LastIndexOffset + LastIndexSize
	BundleSize   = 243

	TrunkOffset = BundleOffset + BundleSize
	TrunkSize   = 243

	BranchOffset = TrunkOffset + TrunkSize
	BranchSize   = 243

	TagOffset = BranchOffset + BranchSize
	TagSize   = 81

	AttachmentTimestampOffset = TagOffset + TagSize
	AttachmentTimestampSize   = 27

	AttachmentTimestampLowerBoundOffset = AttachmentTimestampOffset + AttachmentTimestampSize
	AttachmentTimestampLowerBoundSize   = 27

	AttachmentTimestampUpperBoundOffset = AttachmentTimestampLowerBoundOffset + AttachmentTimestampLowerBoundSize
	AttachmentTimestampUpperBoundSize   = 27

	NonceOffset = AttachmentTimestampUpperBoundOffset + AttachmentTimestampUpperBoundSize
	NonceSize   = 81

	// SizeInTrits is the number of trits of a transaction.
	SizeInTrits = NonceOffset + NonceSize

	// SizeInBytes is the number of bytes of a transaction packed with 5 trits per byte.
	SizeInBytes = (SizeInTrits + ternary.TritsPerByte - 1) / ternary.TritsPerByte

	// EssenceOffset is the offset of the part of a transaction that is covered by the bundle hash.
	EssenceOffset = AddressOffset
	// EssenceSize is the size of the part of a transaction that is covered by the bundle hash.
	EssenceSize = AddressSize + ValueSize + ObsoleteTagSize + TimestampSize + CurrentIndexSize + LastIndexSize

	// Supply is the total number of tokens, (3^33 - 1) / 2.
	Supply int64 = 2779530283277761
)
