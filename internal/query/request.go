// Package query parses typed query requests and dispatches them against
// live database handles.
package query

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrValidation - query, queryType or collection missing, or payload malformed
	ErrValidation = errors.New("query: query, queryType and collection are required")

	// ErrUnsupportedKind - queryType outside the supported set
	ErrUnsupportedKind = errors.New("query: unsupported query type")
)

// Kind enumerates the supported query operations.
type Kind string

const (
	KindFind      Kind = "find"
	KindInsert    Kind = "insert"
	KindUpdate    Kind = "update"
	KindDelete    Kind = "delete"
	KindAggregate Kind = "aggregate"
)

// UpdatePayload pairs the filter selecting documents with the update applied
// to them.
type UpdatePayload struct {
	Filter bson.M `json:"filter"`
	Update bson.M `json:"update"`
}

// Request is a parsed, typed query. Exactly one payload field is set,
// matching Kind. Payloads are parsed once at the boundary; nothing untyped
// travels past this point.
type Request struct {
	Kind       Kind
	Collection string
	Database   string

	Filter   bson.M        // find, delete
	Pipeline []bson.M      // aggregate
	Update   UpdatePayload // update
	Insert   []any         // insert
}

// Parse builds a typed Request from wire fields. The payload may arrive
// either as a JSON document or as a JSON-encoded string of one, matching
// what clients send. All validation happens here, before any execution
// timing starts.
func Parse(kind, collection string, payload json.RawMessage) (*Request, error) {
	if kind == "" || collection == "" || len(payload) == 0 {
		return nil, ErrValidation
	}

	raw, err := unquotePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in query", ErrValidation)
	}

	req := &Request{Kind: Kind(kind), Collection: collection}

	switch req.Kind {
	case KindFind:
		if err := json.Unmarshal(raw, &req.Filter); err != nil {
			return nil, fmt.Errorf("%w: find expects a filter document", ErrValidation)
		}
	case KindDelete:
		if err := json.Unmarshal(raw, &req.Filter); err != nil {
			return nil, fmt.Errorf("%w: delete expects a filter document", ErrValidation)
		}
	case KindAggregate:
		if err := json.Unmarshal(raw, &req.Pipeline); err != nil {
			return nil, fmt.Errorf("%w: aggregate expects a pipeline array", ErrValidation)
		}
	case KindInsert:
		if err := json.Unmarshal(raw, &req.Insert); err != nil || len(req.Insert) == 0 {
			return nil, fmt.Errorf("%w: insert expects a non-empty document array", ErrValidation)
		}
	case KindUpdate:
		if err := json.Unmarshal(raw, &req.Update); err != nil || req.Update.Filter == nil || req.Update.Update == nil {
			return nil, fmt.Errorf("%w: update expects {filter, update}", ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	return req, nil
}

// unquotePayload unwraps a payload sent as a JSON string ("{\"a\":1}") into
// the document it encodes.
func unquotePayload(payload json.RawMessage) (json.RawMessage, error) {
	if payload[0] != '"' {
		return payload, nil
	}
	var inner string
	if err := json.Unmarshal(payload, &inner); err != nil {
		return nil, err
	}
	if !json.Valid([]byte(inner)) {
		return nil, errors.New("payload string is not valid JSON")
	}
	return json.RawMessage(inner), nil
}

// String renders the request payload for history records.
func (r *Request) String() string {
	var payload any
	switch r.Kind {
	case KindFind, KindDelete:
		payload = r.Filter
	case KindAggregate:
		payload = r.Pipeline
	case KindInsert:
		payload = r.Insert
	case KindUpdate:
		payload = r.Update
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(data)
}
