package tangle

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/generics/walker"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/iota.go/trinary"
	"github.com/panjf2000/ants/v2"

	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

// region Processor ////////////////////////////////////////////////////////////////////////////////////////////////////

// Processor stores incoming transactions and updates the solid flags of their future cone in the background.
type Processor struct {
	storage    *Storage
	solidifier *Solidifier
	pool       *ants.Pool
	log        *logger.Logger

	optsWorkerCount int
	optsQueueSize   int
}

// NewProcessor creates a Processor and starts its workers.
func NewProcessor(storage *Storage, solidifier *Solidifier, opts ...ProcessorOption) (processor *Processor, err error) {
	processor = &Processor{
		storage:    storage,
		solidifier: solidifier,

		optsWorkerCount: 4,
		optsQueueSize:   10000,
	}
	for _, opt := range opts {
		opt(processor)
	}
	if processor.log == nil {
		processor.log = logger.NewLogger("Processor")
	}

	if processor.pool, err = ants.NewPool(processor.optsWorkerCount, ants.WithMaxBlockingTasks(processor.optsQueueSize)); err != nil {
		return nil, errors.Errorf("failed to create worker pool: %w", err)
	}

	return processor, nil
}

// ProcessTrytes parses a transaction from its trytes and processes it.
func (p *Processor) ProcessTrytes(trytes trinary.Trytes) (tx *transaction.Transaction, stored bool, err error) {
	trits, err := trinary.TrytesToTrits(trytes)
	if err != nil {
		return nil, false, errors.Wrapf(transaction.ErrMalformedTransaction, "%s", err)
	}
	if tx, err = transaction.FromTrits(trits); err != nil {
		return nil, false, err
	}
	if stored, err = p.Process(tx); err != nil {
		return nil, false, err
	}

	return tx, stored, nil
}

// Process stores the transaction and schedules the update of the solid flags. It returns false if the transaction
// was known already.
func (p *Processor) Process(tx *transaction.Transaction) (stored bool, err error) {
	if stored, err = p.storage.StoreTransaction(tx); err != nil || !stored {
		return stored, err
	}

	hash := tx.Hash()
	if err = p.pool.Submit(func() { p.propagateSolidity(hash) }); err != nil {
		p.log.Warnf("failed to schedule solidity check of %s: %s", hash, err)
	}

	return true, nil
}

// Shutdown stops the workers.
func (p *Processor) Shutdown() {
	p.pool.Release()
}

// propagateSolidity checks the solidity of the transaction and continues with its approvers as long as the checked
// transactions turn solid.
func (p *Processor) propagateSolidity(hash ternary.Hash) {
	futureConeWalker := walker.New[ternary.Hash](false).Push(hash)
	for futureConeWalker.HasNext() {
		current := futureConeWalker.Next()

		solid, err := p.solidifier.CheckSolidity(current, false)
		if err != nil {
			p.log.Errorf("failed to check solidity of %s: %s", current, err)
			return
		}
		if !solid {
			continue
		}

		approvers, err := p.storage.Approvers(current)
		if err != nil {
			p.log.Errorf("failed to load approvers of %s: %s", current, err)
			return
		}
		for _, approver := range approvers {
			futureConeWalker.Push(approver)
		}
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ProcessorOption //////////////////////////////////////////////////////////////////////////////////////////////

// ProcessorOption is a function setting an option of the Processor.
type ProcessorOption func(*Processor)

// WithWorkerCount sets the number of concurrent solidity checks.
func WithWorkerCount(workerCount int) ProcessorOption {
	return func(p *Processor) {
		p.optsWorkerCount = workerCount
	}
}

// WithQueueSize sets how many solidity checks may wait for a worker before Process drops them.
func WithQueueSize(queueSize int) ProcessorOption {
	return func(p *Processor) {
		p.optsQueueSize = queueSize
	}
}

// WithLogger sets the logger of the Processor.
func WithLogger(log *logger.Logger) ProcessorOption {
	return func(p *Processor) {
		p.log = log
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
