// Package requester keeps track of the transactions that are referenced by the tangle but not stored locally.
package requester

import (
	"sort"
	"time"

	"github.com/ReneKroon/ttlcache/v2"
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/generics/event"

	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

// Request is a missing transaction that should be fetched from the neighbors.
type Request struct {
	Hash      ternary.Hash
	Milestone bool
	Since     time.Time
}

// region Requester ////////////////////////////////////////////////////////////////////////////////////////////////////

// Requester collects the transactions reported missing by the solidity checks. Requests that are not renewed within
// the TTL are forgotten, so transactions that nobody references anymore do not stay requested forever.
type Requester struct {
	requests *ttlcache.Cache

	storedClosure  *event.Closure[*transaction.Transaction]
	missingClosure *event.Closure[*tangle.TransactionMissingEvent]
}

// New creates a Requester whose requests expire after ttl.
func New(ttl time.Duration) (*Requester, error) {
	requests := ttlcache.NewCache()
	if err := requests.SetTTL(ttl); err != nil {
		return nil, errors.WithStack(err)
	}
	requests.SkipTTLExtensionOnHit(true)

	return &Requester{requests: requests}, nil
}

// Attach subscribes the Requester to the events of the Storage.
func (r *Requester) Attach(storage *tangle.Storage) {
	r.missingClosure = event.NewClosure(func(missing *tangle.TransactionMissingEvent) {
		r.Request(missing.Hash, missing.Milestone)
	})
	r.storedClosure = event.NewClosure(func(tx *transaction.Transaction) {
		r.Remove(tx.Hash())
	})

	storage.Events.TransactionMissing.Hook(r.missingClosure)
	storage.Events.TransactionStored.Hook(r.storedClosure)
}

// Detach unsubscribes the Requester from the events of the Storage.
func (r *Requester) Detach(storage *tangle.Storage) {
	if r.missingClosure == nil {
		return
	}

	storage.Events.TransactionMissing.Detach(r.missingClosure)
	storage.Events.TransactionStored.Detach(r.storedClosure)
}

// Request adds the transaction to the requests or renews its request. A request keeps its milestone flag once it was
// requested for a milestone.
func (r *Requester) Request(hash ternary.Hash, milestone bool) {
	if hash == ternary.NullHash {
		return
	}

	request := &Request{Hash: hash, Milestone: milestone, Since: time.Now()}
	if existing, err := r.requests.Get(hash.String()); err == nil {
		previous := existing.(*Request)
		request.Milestone = request.Milestone || previous.Milestone
		request.Since = previous.Since
	}

	_ = r.requests.Set(hash.String(), request)
}

// Remove drops the request of the transaction.
func (r *Requester) Remove(hash ternary.Hash) {
	_ = r.requests.Remove(hash.String())
}

// IsRequested returns true if the transaction is currently requested.
func (r *Requester) IsRequested(hash ternary.Hash) bool {
	_, err := r.requests.Get(hash.String())
	return err == nil
}

// Requests returns the current requests, milestone requests first and older requests before newer ones.
func (r *Requester) Requests() []*Request {
	items := r.requests.GetItems()

	requests := make([]*Request, 0, len(items))
	for _, item := range items {
		requests = append(requests, item.(*Request))
	}
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].Milestone != requests[j].Milestone {
			return requests[i].Milestone
		}
		return requests[i].Since.Before(requests[j].Since)
	})

	return requests
}

// Size returns the number of requests.
func (r *Requester) Size() int {
	return r.requests.Count()
}

// Shutdown stops the expiration of the requests.
func (r *Requester) Shutdown() error {
	return r.requests.Close()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
