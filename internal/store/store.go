// Package store defines the document store the resource gateway talks to.
//
// Records are schema-less field maps. Every record carries an "_id" assigned
// by the backend on insert. Two backends exist: mongostore for production and
// memstore for tests and local runs.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDField is the identifier field every backend assigns on insert.
const IDField = "_id"

var (
	// ErrUnavailable is wrapped by backend errors caused by a lost or
	// unreachable connection.
	ErrUnavailable = errors.New("store unavailable")
	// ErrInvalidID is returned when an identifier is not a valid ObjectID hex string.
	ErrInvalidID = errors.New("invalid id")
	// ErrNotFound is returned by FindOne when nothing matches.
	ErrNotFound = errors.New("record not found")
)

// Record is one document.
type Record = bson.M

// Filter is an equality match over top-level fields. A value may also be
// bson.M{"$in": bson.A{...}} to match any of several values.
type Filter = bson.M

// Update describes a partial update: Set assigns fields, Inc adds to
// numeric fields.
type Update struct {
	Set Record
	Inc map[string]int64
}

// FindOptions bounds a Find. Zero values mean no skip and no limit.
type FindOptions struct {
	Skip  int64
	Limit int64
}

type InsertAck struct {
	Acknowledged bool        `json:"acknowledged"`
	InsertedID   interface{} `json:"insertedId"`
}

type UpdateAck struct {
	Acknowledged  bool        `json:"acknowledged"`
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId"`
}

type DeleteAck struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Store is implemented by every backend. Implementations must be safe for
// concurrent use; they hold the one connection shared by all requests.
type Store interface {
	InsertOne(ctx context.Context, collection string, doc Record) (InsertAck, error)
	Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Record, error)
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	FindOne(ctx context.Context, collection string, filter Filter) (Record, error)
	UpdateOne(ctx context.Context, collection string, filter Filter, update Update, upsert bool) (UpdateAck, error)
	DeleteOne(ctx context.Context, collection string, filter Filter) (DeleteAck, error)
	Close(ctx context.Context) error
}

// ParseID converts a hex identifier into the value stored under IDField.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// ByID builds the filter matching one record by its hex identifier.
func ByID(id string) (Filter, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return Filter{IDField: oid}, nil
}
