package firestore

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
)

const (
	txAttempts = 5
	txTimeout  = 15 * time.Second
)

type txKey struct{}

// txState holds the writes issued inside a transaction. Firestore rejects a read that follows
// a write, so writes are queued and applied once fn has finished reading.
type txState struct {
	tx      *firestore.Transaction
	mu      sync.Mutex
	pending []func(tx *firestore.Transaction) error
}

func (s *txState) queue(op func(tx *firestore.Transaction) error) {
	s.mu.Lock()
	s.pending = append(s.pending, op)
	s.mu.Unlock()
}

func (s *txState) flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range s.pending {
		if err := op(s.tx); err != nil {
			return err
		}
	}
	s.pending = nil
	return nil
}

// TxFunc runs inside a transaction. ctx carries tx so BaseRepository calls join it.
type TxFunc func(ctx context.Context, tx *firestore.Transaction) error

// TransactionFromContext returns the transaction opened by RunTransaction, or nil.
func TransactionFromContext(ctx context.Context) *firestore.Transaction {
	if state := stateFromContext(ctx); state != nil {
		return state.tx
	}
	return nil
}

// QueueWrite defers op until the transaction carried by ctx has finished its reads. It reports
// false when ctx has no transaction, in which case the caller writes directly.
// Reads inside a transaction observe the documents as they were when it started.
func QueueWrite(ctx context.Context, op func(tx *firestore.Transaction) error) bool {
	state := stateFromContext(ctx)
	if state == nil {
		return false
	}
	state.queue(op)
	return true
}

func stateFromContext(ctx context.Context) *txState {
	state, _ := ctx.Value(txKey{}).(*txState)
	return state
}

// RunTransaction runs fn in a Firestore transaction. When ctx already carries one, fn joins it
// and the outer call owns commit and retry.
func (p *Provider) RunTransaction(ctx context.Context, fn TxFunc) error {
	if state := stateFromContext(ctx); state != nil {
		return fn(ctx, state.tx)
	}
	client, err := p.Client(ctx)
	if err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, txTimeout)
		defer cancel()
	}
	err = client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		state := &txState{tx: tx}
		if err := fn(context.WithValue(ctx, txKey{}, state), tx); err != nil {
			return err
		}
		return state.flush()
	}, firestore.MaxAttempts(txAttempts))
	return WrapError("transaction", err)
}
