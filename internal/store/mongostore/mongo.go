// Package mongostore implements store.Store on top of MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"example.com/gkg/tripexpo/internal/store"
)

var _ store.Store = (*MongoStore)(nil)

const connectTimeout = 10 * time.Second

// indexes are created at startup. None of them is unique: users.email stays
// a lookup key, not a constraint.
var indexes = map[string][]mongo.IndexModel{
	store.UsersCollection: {
		{Keys: bson.D{{Key: store.EmailField, Value: 1}}},
	},
	store.BlogsCollection: {
		{Keys: bson.D{{Key: store.BlogRatingField, Value: 1}}},
		{Keys: bson.D{{Key: store.BlogCategoryField, Value: 1}}},
	},
	store.ViewsCollection: {
		{Keys: bson.D{{Key: store.ViewBlogIDField, Value: 1}}},
	},
}

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, pings the primary and ensures indexes on database.
func Connect(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", classify(err))
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", classify(err))
	}

	m := &MongoStore{client: client, db: client.Database(database)}
	for name, models := range indexes {
		for _, model := range models {
			if _, err := m.db.Collection(name).Indexes().CreateOne(ctx, model); err != nil {
				log.Error().Err(err).Str("collection", name).Msg("error occured while creating index")
			}
		}
	}
	log.Info().Str("database", database).Msg("connected to mongo")
	return m, nil
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoStore) InsertOne(ctx context.Context, collection string, doc store.Record) (store.InsertAck, error) {
	if doc == nil {
		doc = store.Record{}
	}
	res, err := m.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return store.InsertAck{}, fmt.Errorf("insert into %s: %w", collection, classify(err))
	}
	return store.InsertAck{Acknowledged: true, InsertedID: res.InsertedID}, nil
}

func (m *MongoStore) Find(ctx context.Context, collection string, filter store.Filter, opts store.FindOptions) ([]store.Record, error) {
	findOpts := options.Find()
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit).SetSort(bson.D{{Key: store.IDField, Value: 1}})
	}
	cursor, err := m.db.Collection(collection).Find(ctx, nonNil(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, classify(err))
	}
	out := []store.Record{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("read cursor of %s: %w", collection, classify(err))
	}
	return out, nil
}

func (m *MongoStore) Count(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	n, err := m.db.Collection(collection).CountDocuments(ctx, nonNil(filter))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, classify(err))
	}
	return n, nil
}

func (m *MongoStore) FindOne(ctx context.Context, collection string, filter store.Filter) (store.Record, error) {
	var rec store.Record
	err := m.db.Collection(collection).FindOne(ctx, nonNil(filter)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one in %s: %w", collection, classify(err))
	}
	return rec, nil
}

func (m *MongoStore) UpdateOne(ctx context.Context, collection string, filter store.Filter, update store.Update, upsert bool) (store.UpdateAck, error) {
	doc := bson.M{}
	if len(update.Set) > 0 {
		doc["$set"] = update.Set
	}
	if len(update.Inc) > 0 {
		doc["$inc"] = update.Inc
	}
	res, err := m.db.Collection(collection).UpdateOne(ctx, nonNil(filter), doc, options.Update().SetUpsert(upsert))
	if err != nil {
		return store.UpdateAck{}, fmt.Errorf("update in %s: %w", collection, classify(err))
	}
	return store.UpdateAck{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}, nil
}

func (m *MongoStore) DeleteOne(ctx context.Context, collection string, filter store.Filter) (store.DeleteAck, error) {
	res, err := m.db.Collection(collection).DeleteOne(ctx, nonNil(filter))
	if err != nil {
		return store.DeleteAck{}, fmt.Errorf("delete from %s: %w", collection, classify(err))
	}
	return store.DeleteAck{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func nonNil(filter store.Filter) store.Filter {
	if filter == nil {
		return store.Filter{}
	}
	return filter
}

// classify tags connection-level failures with store.ErrUnavailable so the
// HTTP layer can answer 503 instead of 500.
func classify(err error) error {
	if mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return err
}
