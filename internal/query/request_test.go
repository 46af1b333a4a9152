package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParse_RequiresKindCollectionAndPayload(t *testing.T) {
	_, err := Parse("", "users", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = Parse("find", "", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = Parse("find", "users", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParse_Find(t *testing.T) {
	req, err := Parse("find", "users", json.RawMessage(`{"age":{"$gt":21}}`))

	require.NoError(t, err)
	assert.Equal(t, KindFind, req.Kind)
	assert.Equal(t, "users", req.Collection)
	require.Contains(t, req.Filter, "age")
}

func TestParse_StringWrappedPayload(t *testing.T) {
	// Clients sometimes double-encode the query as a JSON string.
	req, err := Parse("find", "users", json.RawMessage(`"{\"name\":\"ada\"}"`))

	require.NoError(t, err)
	assert.Equal(t, "ada", req.Filter["name"])
}

func TestParse_StringWrappedGarbageRejected(t *testing.T) {
	_, err := Parse("find", "users", json.RawMessage(`"not json at all"`))

	assert.ErrorIs(t, err, ErrValidation)
}

func TestParse_Aggregate(t *testing.T) {
	payload := json.RawMessage(`[{"$match":{"status":"active"}},{"$count":"n"}]`)

	req, err := Parse("aggregate", "orders", payload)

	require.NoError(t, err)
	require.Len(t, req.Pipeline, 2)
	assert.Contains(t, req.Pipeline[0], "$match")
}

func TestParse_AggregateRejectsNonArray(t *testing.T) {
	_, err := Parse("aggregate", "orders", json.RawMessage(`{"$match":{}}`))

	assert.ErrorIs(t, err, ErrValidation)
}

func TestParse_Insert(t *testing.T) {
	req, err := Parse("insert", "users", json.RawMessage(`[{"name":"ada"},{"name":"grace"}]`))

	require.NoError(t, err)
	assert.Len(t, req.Insert, 2)
}

func TestParse_InsertRejectsEmptyArray(t *testing.T) {
	_, err := Parse("insert", "users", json.RawMessage(`[]`))

	assert.ErrorIs(t, err, ErrValidation)
}

func TestParse_Update(t *testing.T) {
	payload := json.RawMessage(`{"filter":{"name":"ada"},"update":{"$set":{"active":true}}}`)

	req, err := Parse("update", "users", payload)

	require.NoError(t, err)
	assert.Equal(t, bson.M{"name": "ada"}, req.Update.Filter)
	require.Contains(t, req.Update.Update, "$set")
}

func TestParse_UpdateRequiresBothHalves(t *testing.T) {
	_, err := Parse("update", "users", json.RawMessage(`{"filter":{"name":"ada"}}`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = Parse("update", "users", json.RawMessage(`{"update":{"$set":{}}}`))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParse_Delete(t *testing.T) {
	req, err := Parse("delete", "users", json.RawMessage(`{"active":false}`))

	require.NoError(t, err)
	assert.Equal(t, KindDelete, req.Kind)
	assert.Equal(t, false, req.Filter["active"])
}

func TestParse_UnknownKind(t *testing.T) {
	_, err := Parse("mapreduce", "users", json.RawMessage(`{}`))

	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse("find", "users", json.RawMessage(`{"name":`))

	assert.ErrorIs(t, err, ErrValidation)
}

func TestRequestString_RendersActivePayload(t *testing.T) {
	req, err := Parse("find", "users", json.RawMessage(`{"name":"ada"}`))
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"ada"}`, req.String())

	req, err = Parse("aggregate", "users", json.RawMessage(`[{"$count":"n"}]`))
	require.NoError(t, err)

	assert.JSONEq(t, `[{"$count":"n"}]`, req.String())
}
