package milestone

import (
	"github.com/iotaledger/tanglenode/packages/ternary"
)

// CandidateState is the outcome of the last analysis of a transaction at the coordinator address.
type CandidateState uint8

const (
	// CandidateUnseen marks a transaction that was never analyzed.
	CandidateUnseen CandidateState = iota
	// CandidatePending marks a transaction whose bundle was incomplete. It is analyzed again on the next scan.
	CandidatePending
	// CandidateRejected marks a transaction that is not a valid milestone tail.
	CandidateRejected
	// CandidateAccepted marks a transaction that is a valid milestone.
	CandidateAccepted
)

// candidates remembers the analyzed milestone candidates. It is only used by the scan loop.
type candidates map[ternary.Hash]CandidateState

// state returns the CandidateState of the transaction.
func (c candidates) state(hash ternary.Hash) CandidateState {
	return c[hash]
}

// needsAnalysis returns true for transactions that were never analyzed or whose analysis has to be repeated.
func (c candidates) needsAnalysis(hash ternary.Hash) bool {
	switch c[hash] {
	case CandidateUnseen, CandidatePending:
		return true
	default:
		return false
	}
}

// set records the outcome of an analysis.
func (c candidates) set(hash ternary.Hash, state CandidateState) {
	c[hash] = state
}

// setValidity records the CandidateState that belongs to the Validity of a milestone validation.
func (c candidates) setValidity(hash ternary.Hash, validity Validity) {
	switch validity {
	case Valid:
		c.set(hash, CandidateAccepted)
	case Incomplete:
		c.set(hash, CandidatePending)
	default:
		c.set(hash, CandidateRejected)
	}
}
