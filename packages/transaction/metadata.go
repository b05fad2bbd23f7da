package transaction

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"

	"github.com/iotaledger/tanglenode/packages/ternary"
)

const (
	flagSolid     byte = 1 << 0
	flagMilestone byte = 1 << 1
)

// region Metadata /////////////////////////////////////////////////////////////////////////////////////////////////////

// Metadata contains the information that the node derives for a transaction after it was received. Unlike the
// Transaction itself it changes over time and is persisted separately.
type Metadata struct {
	hash          ternary.Hash
	solid         bool
	milestone     bool
	snapshotIndex uint32
	height        uint64
	arrivalTime   time.Time
	modified      bool

	mutex sync.RWMutex
}

// NewMetadata creates empty Metadata for the transaction with the given hash.
func NewMetadata(hash ternary.Hash) *Metadata {
	return &Metadata{
		hash:        hash,
		arrivalTime: time.Now(),
		modified:    true,
	}
}

// MetadataFromBytes unmarshals the Metadata of the transaction with the given hash.
func MetadataFromBytes(hash ternary.Hash, bytes []byte) (metadata *Metadata, err error) {
	marshalUtil := marshalutil.New(bytes)
	metadata = &Metadata{hash: hash}

	flags, err := marshalUtil.ReadByte()
	if err != nil {
		return nil, errors.Errorf("failed to parse flags of metadata (%v): %w", err, ErrMalformedTransaction)
	}
	metadata.solid = flags&flagSolid != 0
	metadata.milestone = flags&flagMilestone != 0

	if metadata.snapshotIndex, err = marshalUtil.ReadUint32(); err != nil {
		return nil, errors.Errorf("failed to parse snapshot index of metadata (%v): %w", err, ErrMalformedTransaction)
	}
	if metadata.height, err = marshalUtil.ReadUint64(); err != nil {
		return nil, errors.Errorf("failed to parse height of metadata (%v): %w", err, ErrMalformedTransaction)
	}
	if metadata.arrivalTime, err = marshalUtil.ReadTime(); err != nil {
		return nil, errors.Errorf("failed to parse arrival time of metadata (%v): %w", err, ErrMalformedTransaction)
	}

	return metadata, nil
}

// Hash returns the hash of the transaction the Metadata belongs to.
func (m *Metadata) Hash() ternary.Hash {
	return m.hash
}

// IsSolid returns true if the whole past cone of the transaction is known.
func (m *Metadata) IsSolid() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.solid
}

// SetSolid marks the transaction as solid and returns true if the flag changed.
func (m *Metadata) SetSolid(solid bool) (modified bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.solid == solid {
		return false
	}
	m.solid = solid
	m.modified = true

	return true
}

// IsMilestone returns true if the transaction was validated as a milestone.
func (m *Metadata) IsMilestone() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.milestone
}

// SetMilestone marks the transaction as a milestone and returns true if the flag changed.
func (m *Metadata) SetMilestone(milestone bool) (modified bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.milestone == milestone {
		return false
	}
	m.milestone = milestone
	m.modified = true

	return true
}

// SnapshotIndex returns the index of the milestone that confirmed the transaction or 0 if it is unconfirmed.
func (m *Metadata) SnapshotIndex() uint32 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.snapshotIndex
}

// SetSnapshotIndex sets the index of the milestone that confirmed the transaction.
func (m *Metadata) SetSnapshotIndex(index uint32) (modified bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.snapshotIndex == index {
		return false
	}
	m.snapshotIndex = index
	m.modified = true

	return true
}

// Height returns the length of the longest trunk chain down to the genesis.
func (m *Metadata) Height() uint64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.height
}

// SetHeight sets the height of the transaction.
func (m *Metadata) SetHeight(height uint64) (modified bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.height == height {
		return false
	}
	m.height = height
	m.modified = true

	return true
}

// ArrivalTime returns the time the node received the transaction.
func (m *Metadata) ArrivalTime() time.Time {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.arrivalTime
}

// IsModified returns true if the Metadata changed since it was last persisted.
func (m *Metadata) IsModified() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.modified
}

// SetModified sets the modified flag.
func (m *Metadata) SetModified(modified bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.modified = modified
}

// Bytes marshals the Metadata.
func (m *Metadata) Bytes() []byte {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var flags byte
	if m.solid {
		flags |= flagSolid
	}
	if m.milestone {
		flags |= flagMilestone
	}

	return marshalutil.New(marshalutil.Uint8Size + marshalutil.Uint32Size + marshalutil.Uint64Size + marshalutil.TimeSize).
		WriteByte(flags).
		WriteUint32(m.snapshotIndex).
		WriteUint64(m.height).
		WriteTime(m.arrivalTime).
		Bytes()
}

// String returns a human readable version of the Metadata.
func (m *Metadata) String() string {
	return stringify.Struct("Metadata",
		stringify.StructField("hash", m.Hash().String()),
		stringify.StructField("solid", m.IsSolid()),
		stringify.StructField("milestone", m.IsMilestone()),
		stringify.StructField("snapshotIndex", m.SnapshotIndex()),
		stringify.StructField("height", m.Height()),
		stringify.StructField("arrivalTime", m.ArrivalTime()),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
