package tangle

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"

	"github.com/iotaledger/tanglenode/packages/ternary"
)

// Milestone links a milestone index to the tail transaction of the coordinator bundle that issued it.
type Milestone struct {
	Index uint32
	Hash  ternary.Hash
}

// MilestoneFromBytes unmarshals a Milestone.
func MilestoneFromBytes(bytes []byte) (milestone *Milestone, err error) {
	marshalUtil := marshalutil.New(bytes)
	milestone = new(Milestone)

	if milestone.Index, err = marshalUtil.ReadUint32(); err != nil {
		return nil, errors.Errorf("failed to parse milestone index: %w", err)
	}
	hashBytes, err := marshalUtil.ReadBytes(ternary.HashSize)
	if err != nil {
		return nil, errors.Errorf("failed to parse milestone hash: %w", err)
	}
	if milestone.Hash, err = ternary.HashFromBytes(hashBytes); err != nil {
		return nil, err
	}

	return milestone, nil
}

// Bytes marshals the Milestone.
func (m *Milestone) Bytes() []byte {
	return marshalutil.New(marshalutil.Uint32Size + ternary.HashSize).
		WriteUint32(m.Index).
		WriteBytes(m.Hash.Bytes()).
		Bytes()
}

// String returns a human readable version of the Milestone.
func (m *Milestone) String() string {
	return stringify.Struct("Milestone",
		stringify.StructField("index", m.Index),
		stringify.StructField("hash", m.Hash.String()),
	)
}
