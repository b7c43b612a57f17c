// Package memstore is an in-process store.Store. It keeps records in
// insertion order and mirrors the MongoDB semantics the gateway relies on.
package memstore

import (
	"context"
	"maps"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"example.com/gkg/tripexpo/internal/store"
)

var _ store.Store = (*MemStore)(nil)

type MemStore struct {
	mu          sync.RWMutex
	collections map[string][]store.Record
	closed      bool
}

func New() *MemStore {
	return &MemStore{collections: make(map[string][]store.Record)}
}

func (m *MemStore) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MemStore) InsertOne(ctx context.Context, collection string, doc store.Record) (store.InsertAck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return store.InsertAck{}, err
	}

	rec := maps.Clone(doc)
	if rec == nil {
		rec = store.Record{}
	}
	if _, ok := rec[store.IDField]; !ok {
		rec[store.IDField] = primitive.NewObjectID()
	}
	m.collections[collection] = append(m.collections[collection], rec)
	return store.InsertAck{Acknowledged: true, InsertedID: rec[store.IDField]}, nil
}

func (m *MemStore) Find(ctx context.Context, collection string, filter store.Filter, opts store.FindOptions) ([]store.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	out := []store.Record{}
	var skipped int64
	for _, rec := range m.collections[collection] {
		if !matches(rec, filter) {
			continue
		}
		if skipped < opts.Skip {
			skipped++
			continue
		}
		if opts.Limit > 0 && int64(len(out)) == opts.Limit {
			break
		}
		out = append(out, maps.Clone(rec))
	}
	return out, nil
}

func (m *MemStore) Count(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx); err != nil {
		return 0, err
	}

	var n int64
	for _, rec := range m.collections[collection] {
		if matches(rec, filter) {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) FindOne(ctx context.Context, collection string, filter store.Filter) (store.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	if i := m.index(collection, filter); i >= 0 {
		return maps.Clone(m.collections[collection][i]), nil
	}
	return nil, store.ErrNotFound
}

func (m *MemStore) UpdateOne(ctx context.Context, collection string, filter store.Filter, update store.Update, upsert bool) (store.UpdateAck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return store.UpdateAck{}, err
	}

	ack := store.UpdateAck{Acknowledged: true}
	i := m.index(collection, filter)
	if i < 0 {
		if !upsert {
			return ack, nil
		}
		rec := store.Record{}
		for k, v := range filter {
			if _, isOp := v.(bson.M); !isOp {
				rec[k] = v
			}
		}
		if _, ok := rec[store.IDField]; !ok {
			rec[store.IDField] = primitive.NewObjectID()
		}
		apply(rec, update)
		m.collections[collection] = append(m.collections[collection], rec)
		ack.UpsertedCount = 1
		ack.UpsertedID = rec[store.IDField]
		return ack, nil
	}

	rec := m.collections[collection][i]
	before := maps.Clone(rec)
	apply(rec, update)
	ack.MatchedCount = 1
	if !reflect.DeepEqual(before, rec) {
		ack.ModifiedCount = 1
	}
	return ack, nil
}

func (m *MemStore) DeleteOne(ctx context.Context, collection string, filter store.Filter) (store.DeleteAck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return store.DeleteAck{}, err
	}

	ack := store.DeleteAck{Acknowledged: true}
	if i := m.index(collection, filter); i >= 0 {
		recs := m.collections[collection]
		m.collections[collection] = append(recs[:i:i], recs[i+1:]...)
		ack.DeletedCount = 1
	}
	return ack, nil
}

// check must be called with mu held.
func (m *MemStore) check(ctx context.Context) error {
	if m.closed {
		return store.ErrUnavailable
	}
	return ctx.Err()
}

func (m *MemStore) index(collection string, filter store.Filter) int {
	for i, rec := range m.collections[collection] {
		if matches(rec, filter) {
			return i
		}
	}
	return -1
}

func apply(rec store.Record, update store.Update) {
	for k, v := range update.Set {
		rec[k] = v
	}
	for k, delta := range update.Inc {
		switch cur := rec[k].(type) {
		case float64:
			rec[k] = cur + float64(delta)
		default:
			n, _ := toFloat(cur)
			rec[k] = int64(n) + delta
		}
	}
}

func matches(rec store.Record, filter store.Filter) bool {
	for k, want := range filter {
		got := rec[k]
		if op, ok := want.(bson.M); ok {
			if !matchesOp(got, op) {
				return false
			}
			continue
		}
		if !equal(got, want) {
			return false
		}
	}
	return true
}

func matchesOp(got interface{}, op bson.M) bool {
	for name, arg := range op {
		switch name {
		case "$in":
			values, _ := arg.(bson.A)
			found := false
			for _, v := range values {
				if equal(got, v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// equal compares values the way a MongoDB equality match does for the
// types JSON decoding produces: numbers compare by value across types.
func equal(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
