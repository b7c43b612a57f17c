package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"example.com/gkg/tripexpo/internal/store"
)

func TestInsertAssignsID(t *testing.T) {
	ctx := context.Background()
	m := New()

	doc := store.Record{"title": "Bali"}
	ack, err := m.InsertOne(ctx, "blogs", doc)
	require.NoError(t, err)
	require.True(t, ack.Acknowledged)

	oid, ok := ack.InsertedID.(primitive.ObjectID)
	require.True(t, ok)
	assert.NotContains(t, doc, store.IDField, "caller's document must not be mutated")

	got, err := m.FindOne(ctx, "blogs", store.Filter{store.IDField: oid})
	require.NoError(t, err)
	assert.Equal(t, "Bali", got["title"])
}

func TestFindSkipLimitAndFilter(t *testing.T) {
	ctx := context.Background()
	m := New()
	for i := 0; i < 5; i++ {
		_, err := m.InsertOne(ctx, "blogs", store.Record{"n": float64(i), "even": i%2 == 0})
		require.NoError(t, err)
	}

	page, err := m.Find(ctx, "blogs", nil, store.FindOptions{Skip: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, float64(2), page[0]["n"])
	assert.Equal(t, float64(3), page[1]["n"])

	evens, err := m.Find(ctx, "blogs", store.Filter{"even": true}, store.FindOptions{})
	require.NoError(t, err)
	assert.Len(t, evens, 3)

	n, err := m.Count(ctx, "blogs", store.Filter{"n": int64(4)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	in, err := m.Find(ctx, "blogs", store.Filter{"n": bson.M{"$in": bson.A{"1", 1}}}, store.FindOptions{})
	require.NoError(t, err)
	assert.Len(t, in, 1)
}

func TestFindEmptyCollection(t *testing.T) {
	recs, err := New().Find(context.Background(), "nothing", nil, store.FindOptions{})
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestUpdateOne(t *testing.T) {
	ctx := context.Background()
	m := New()
	_, err := m.InsertOne(ctx, "users", store.Record{"email": "a@x.io", "name": "A"})
	require.NoError(t, err)

	ack, err := m.UpdateOne(ctx, "users", store.Filter{"email": "a@x.io"}, store.Update{Set: store.Record{"name": "A"}}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, ack.MatchedCount)
	assert.EqualValues(t, 0, ack.ModifiedCount)

	ack, err = m.UpdateOne(ctx, "users", store.Filter{"email": "a@x.io"}, store.Update{Set: store.Record{"role": "admin"}}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, ack.ModifiedCount)

	ack, err = m.UpdateOne(ctx, "users", store.Filter{"email": "b@x.io"}, store.Update{Set: store.Record{"role": "admin"}}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, ack.MatchedCount)
	assert.Nil(t, ack.UpsertedID)

	ack, err = m.UpdateOne(ctx, "users", store.Filter{"email": "b@x.io"}, store.Update{Set: store.Record{"name": "B"}}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, ack.UpsertedCount)
	assert.NotNil(t, ack.UpsertedID)

	got, err := m.FindOne(ctx, "users", store.Filter{"email": "b@x.io"})
	require.NoError(t, err)
	assert.Equal(t, "B", got["name"])
}

func TestUpdateIncrement(t *testing.T) {
	ctx := context.Background()
	m := New()
	filter := store.Filter{"blogId": "abc"}
	inc := store.Update{Inc: map[string]int64{"views": 1}}

	for i := 0; i < 3; i++ {
		_, err := m.UpdateOne(ctx, "views", filter, inc, true)
		require.NoError(t, err)
	}

	got, err := m.FindOne(ctx, "views", filter)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got["views"])
}

func TestDeleteOne(t *testing.T) {
	ctx := context.Background()
	m := New()
	ack, err := m.InsertOne(ctx, "tips", store.Record{"text": "pack light"})
	require.NoError(t, err)
	filter := store.Filter{store.IDField: ack.InsertedID}

	del, err := m.DeleteOne(ctx, "tips", filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, del.DeletedCount)

	del, err = m.DeleteOne(ctx, "tips", filter)
	require.NoError(t, err)
	assert.EqualValues(t, 0, del.DeletedCount)

	_, err = m.FindOne(ctx, "tips", filter)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	ctx := context.Background()
	m := New()
	require.NoError(t, m.Close(ctx))

	_, err := m.InsertOne(ctx, "blogs", store.Record{})
	assert.ErrorIs(t, err, store.ErrUnavailable)
	_, err = m.Find(ctx, "blogs", nil, store.FindOptions{})
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Count(ctx, "blogs", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
