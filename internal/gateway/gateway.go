// Package gateway maps resource operations onto a single store collection.
//
// One Gateway serves one collection. Documents are passed through untouched:
// there is no validation and no schema.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"math"

	"example.com/gkg/tripexpo/internal/store"
)

// Page is the result of ListPage. Count is the size of the whole
// collection, not of Items.
type Page struct {
	Count int64          `json:"count"`
	Items []store.Record `json:"items"`
}

type Gateway struct {
	store      store.Store
	collection string
}

func New(s store.Store, collection string) *Gateway {
	return &Gateway{store: s, collection: collection}
}

func (g *Gateway) Collection() string {
	return g.collection
}

// Create inserts doc as-is.
func (g *Gateway) Create(ctx context.Context, doc store.Record) (store.InsertAck, error) {
	return g.store.InsertOne(ctx, g.collection, doc)
}

// ListAll returns every record matching filter. A nil filter scans the
// whole collection.
func (g *Gateway) ListAll(ctx context.Context, filter store.Filter) ([]store.Record, error) {
	return g.store.Find(ctx, g.collection, filter, store.FindOptions{})
}

// ListPage returns page number page (zero-based) of the given size. A nil
// page returns every record.
func (g *Gateway) ListPage(ctx context.Context, page *int64, size int64) (Page, error) {
	if page != nil && (*page < 0 || size <= 0) {
		return Page{}, fmt.Errorf("%w: page=%d size=%d", ErrBadPage, *page, size)
	}
	count, err := g.store.Count(ctx, g.collection, nil)
	if err != nil {
		return Page{}, err
	}
	var opts store.FindOptions
	if page != nil {
		// An offset past MaxInt64 is past every record.
		if *page > math.MaxInt64/size {
			return Page{Count: count, Items: []store.Record{}}, nil
		}
		opts = store.FindOptions{Skip: *page * size, Limit: size}
	}
	items, err := g.store.Find(ctx, g.collection, nil, opts)
	if err != nil {
		return Page{}, err
	}
	return Page{Count: count, Items: items}, nil
}

// GetOne returns the record with the given hex id. found is false when no
// record matches; err is reserved for malformed ids and store failures.
func (g *Gateway) GetOne(ctx context.Context, id string) (rec store.Record, found bool, err error) {
	filter, err := store.ByID(id)
	if err != nil {
		return nil, false, err
	}
	return g.findOne(ctx, filter)
}

// FindOneWhere is GetOne keyed on an arbitrary match instead of the id.
func (g *Gateway) FindOneWhere(ctx context.Context, match store.Filter) (store.Record, bool, error) {
	return g.findOne(ctx, match)
}

func (g *Gateway) findOne(ctx context.Context, filter store.Filter) (store.Record, bool, error) {
	rec, err := g.store.FindOne(ctx, g.collection, filter)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// UpdateField sets one field on the record with the given hex id.
func (g *Gateway) UpdateField(ctx context.Context, id, field string, value interface{}) (store.UpdateAck, error) {
	filter, err := store.ByID(id)
	if err != nil {
		return store.UpdateAck{}, err
	}
	return g.UpdateFieldWhere(ctx, filter, field, value)
}

// UpdateFieldWhere sets one field on the first record matching match. It
// never inserts.
func (g *Gateway) UpdateFieldWhere(ctx context.Context, match store.Filter, field string, value interface{}) (store.UpdateAck, error) {
	return g.store.UpdateOne(ctx, g.collection, match, store.Update{Set: store.Record{field: value}}, false)
}

// Upsert sets every field of doc on the record matching match, inserting
// a new record when none matches.
func (g *Gateway) Upsert(ctx context.Context, match store.Filter, doc store.Record) (store.UpdateAck, error) {
	set := make(store.Record, len(doc))
	for k, v := range doc {
		if k == store.IDField {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		return store.UpdateAck{}, fmt.Errorf("%w: empty document", ErrEmptyUpdate)
	}
	return g.store.UpdateOne(ctx, g.collection, match, store.Update{Set: set}, true)
}

// Increment adds delta to a numeric field of the record matching match,
// creating it when absent.
func (g *Gateway) Increment(ctx context.Context, match store.Filter, field string, delta int64) (store.UpdateAck, error) {
	return g.store.UpdateOne(ctx, g.collection, match, store.Update{Inc: map[string]int64{field: delta}}, true)
}

// DeleteOne removes the record with the given hex id.
func (g *Gateway) DeleteOne(ctx context.Context, id string) (store.DeleteAck, error) {
	filter, err := store.ByID(id)
	if err != nil {
		return store.DeleteAck{}, err
	}
	return g.store.DeleteOne(ctx, g.collection, filter)
}

// CheckRole reports whether the record whose keyField equals key has its
// role field set to role. A missing record yields false.
func (g *Gateway) CheckRole(ctx context.Context, keyField, key, role string) (bool, error) {
	rec, found, err := g.findOne(ctx, store.Filter{keyField: key})
	if err != nil || !found {
		return false, err
	}
	got, _ := rec[RoleField].(string)
	return got == role, nil
}
