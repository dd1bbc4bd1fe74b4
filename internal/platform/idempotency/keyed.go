package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/laundryhub/api/internal/platform/keyvalue"
)

const keyedPrefix = "idempotency/"

// KeyedStore keeps records in the keyed JSON store (memory or Postgres).
type KeyedStore struct {
	store keyvalue.Store
}

// NewKeyedStore wraps store.
func NewKeyedStore(store keyvalue.Store) *KeyedStore {
	return &KeyedStore{store: store}
}

func (s *KeyedStore) Reserve(ctx context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error) {
	var result Reservation
	err := s.store.Update(ctx, keyedPrefix+documentID(key), func(current []byte) ([]byte, error) {
		existing, err := decodeRecord(current)
		if err != nil {
			return nil, err
		}
		reservation, write, err := decideReservation(existing, key, fingerprint, now.UTC(), ttl)
		if err != nil {
			return nil, err
		}
		result = reservation
		if !write {
			return current, nil
		}
		return json.Marshal(reservation.Record)
	})
	return result, err
}

func (s *KeyedStore) Complete(ctx context.Context, key, fingerprint string, resp Response, now time.Time, ttl time.Duration) error {
	return s.store.Update(ctx, keyedPrefix+documentID(key), func(current []byte) ([]byte, error) {
		existing, err := decodeRecord(current)
		if err != nil {
			return nil, err
		}
		record, err := completeRecord(existing, key, fingerprint, resp, now.UTC(), ttl)
		if err != nil {
			return nil, err
		}
		return json.Marshal(record)
	})
}

func (s *KeyedStore) Release(ctx context.Context, key string) error {
	err := s.store.Delete(ctx, keyedPrefix+documentID(key))
	if errors.Is(err, keyvalue.ErrNotFound) {
		return nil
	}
	return err
}

func decodeRecord(raw []byte) (*Record, error) {
	if raw == nil {
		return nil, nil
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
