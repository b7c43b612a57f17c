package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := ParseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	for _, bad := range []string{"", "abc", "zzzzzzzzzzzzzzzzzzzzzzzz", oid.Hex() + "00"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, bad)
	}
}

func TestByID(t *testing.T) {
	oid := primitive.NewObjectID()

	f, err := ByID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, Filter{IDField: oid}, f)

	_, err = ByID("nope")
	assert.ErrorIs(t, err, ErrInvalidID)
}
