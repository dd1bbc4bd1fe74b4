package firestore

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/firestore"
)

func TestQueueWriteWithoutTransaction(t *testing.T) {
	called := false
	if QueueWrite(context.Background(), func(*firestore.Transaction) error { called = true; return nil }) {
		t.Fatalf("expected QueueWrite to decline without a transaction")
	}
	if called {
		t.Fatalf("write must not run without a transaction")
	}
}

func TestQueuedWritesRunAfterReadsInOrder(t *testing.T) {
	state := &txState{}
	ctx := context.WithValue(context.Background(), txKey{}, state)

	var order []string
	write := func(name string) func(*firestore.Transaction) error {
		return func(*firestore.Transaction) error {
			order = append(order, name)
			return nil
		}
	}
	if !QueueWrite(ctx, write("redemption")) || !QueueWrite(ctx, write("counter")) {
		t.Fatalf("expected writes to be queued")
	}
	if len(order) != 0 {
		t.Fatalf("queued writes ran early: %v", order)
	}
	order = append(order, "read")

	if err := state.flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(order) != 3 || order[0] != "read" || order[1] != "redemption" || order[2] != "counter" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestQueuedWritesStopAtFirstError(t *testing.T) {
	state := &txState{}
	ctx := context.WithValue(context.Background(), txKey{}, state)
	boom := errors.New("boom")
	ran := false
	QueueWrite(ctx, func(*firestore.Transaction) error { return boom })
	QueueWrite(ctx, func(*firestore.Transaction) error { ran = true; return nil })

	if err := state.flush(); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if ran {
		t.Fatalf("writes after a failure must not run")
	}
}
