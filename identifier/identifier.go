// Package identifier translates between the hex strings clients see and the
// ObjectIDs stored in MongoDB.
package identifier

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidIdentifier is returned for any string that is not a canonical ObjectID
var ErrInvalidIdentifier = errors.New("invalid identifier")

// canonical is the lowercase 24 character hex form produced by ObjectID.Hex
var canonical = regexp.MustCompile(`^[0-9a-f]{24}$`)

// Decode converts a canonical hex string into an ObjectID
func Decode(raw string) (primitive.ObjectID, error) {
	if !canonical.MatchString(raw) {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)
	}
	return oid, nil
}

// DecodeAll decodes every raw id, failing on the first invalid one
func DecodeAll(raws ...string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(raws))
	for _, raw := range raws {
		oid, err := Decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

// Encode returns the canonical string form of ref
func Encode(ref primitive.ObjectID) string {
	return ref.Hex()
}

// EncodeValue walks v and returns a copy in which every ObjectID is replaced
// by its hex string and every BSON datetime by a UTC time.Time. Mappings and
// sequences are rebuilt, never modified in place.
func EncodeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.ObjectID:
		return Encode(t)
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case bson.M:
		return encodeMap(t)
	case map[string]interface{}:
		return encodeMap(t)
	case bson.D:
		out := make(map[string]interface{}, len(t))
		for _, e := range t {
			out[e.Key] = EncodeValue(e.Value)
		}
		return out
	case bson.A:
		return encodeSlice(t)
	case []interface{}:
		return encodeSlice(t)
	case []bson.M:
		out := make([]interface{}, len(t))
		for i, m := range t {
			out[i] = encodeMap(m)
		}
		return out
	case []primitive.ObjectID:
		out := make([]interface{}, len(t))
		for i, oid := range t {
			out[i] = Encode(oid)
		}
		return out
	default:
		return v
	}
}

func encodeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, val := range m {
		out[k] = EncodeValue(val)
	}
	return out
}

func encodeSlice(s []interface{}) []interface{} {
	out := make([]interface{}, len(s))
	for i, val := range s {
		out[i] = EncodeValue(val)
	}
	return out
}

// EncodeDocument encodes a stored document for output, exposing _id as id
func EncodeDocument(doc bson.M) map[string]interface{} {
	out := encodeMap(doc)
	if id, ok := out["_id"]; ok {
		out["id"] = id
		delete(out, "_id")
	}
	return out
}

// EncodeDocuments encodes each document. The result is never nil.
func EncodeDocuments(docs []bson.M) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		out = append(out, EncodeDocument(doc))
	}
	return out
}
