package tangle

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/marshalutil"

	"github.com/iotaledger/tanglenode/packages/ternary"
)

// StateDiff maps addresses to the change of their balance.
type StateDiff map[ternary.Hash]int64

// StateDiffFromBytes unmarshals a StateDiff.
func StateDiffFromBytes(bytes []byte) (StateDiff, error) {
	marshalUtil := marshalutil.New(bytes)

	count, err := marshalUtil.ReadUint32()
	if err != nil {
		return nil, errors.Errorf("failed to parse state diff size: %w", err)
	}

	diff := make(StateDiff, count)
	for i := uint32(0); i < count; i++ {
		addressBytes, err := marshalUtil.ReadBytes(ternary.HashSize)
		if err != nil {
			return nil, errors.Errorf("failed to parse address of state diff entry %d: %w", i, err)
		}
		value, err := marshalUtil.ReadInt64()
		if err != nil {
			return nil, errors.Errorf("failed to parse value of state diff entry %d: %w", i, err)
		}

		var address ternary.Hash
		copy(address[:], addressBytes)
		diff[address] = value
	}

	return diff, nil
}

// Bytes marshals the StateDiff.
func (s StateDiff) Bytes() []byte {
	marshalUtil := marshalutil.New(marshalutil.Uint32Size + len(s)*(ternary.HashSize+marshalutil.Int64Size))
	marshalUtil.WriteUint32(uint32(len(s)))
	for address, value := range s {
		marshalUtil.WriteBytes(address.Bytes())
		marshalUtil.WriteInt64(value)
	}

	return marshalUtil.Bytes()
}

// Add folds the changes of other into the StateDiff and drops addresses whose change cancels out.
func (s StateDiff) Add(other StateDiff) {
	for address, value := range other {
		if s[address] += value; s[address] == 0 {
			delete(s, address)
		}
	}
}
