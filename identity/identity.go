// Package identity gives every stored entity a single id type.
//
// Historical writes stored the same logical id either as an ObjectID or as
// its hex string. ID decodes both, always encodes hex-shaped values as
// ObjectIDs, and Candidates/In build filters that match either form.
package identity

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ID string

func New() ID {
	return ID(primitive.NewObjectID().Hex())
}

// Parse never fails; surrounding whitespace is dropped.
func Parse(raw string) ID {
	return ID(strings.TrimSpace(raw))
}

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return id == "" }

func (id ID) ObjectID() (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func (id ID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if oid, ok := id.ObjectID(); ok {
		return bson.MarshalValue(oid)
	}
	return bson.MarshalValue(string(id))
}

func (id *ID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeObjectID:
		*id = ID(rv.ObjectID().Hex())
	case bson.TypeString:
		*id = ID(rv.StringValue())
	case bson.TypeNull, bson.TypeUndefined:
		*id = ""
	default:
		return fmt.Errorf("identity: cannot decode BSON %s into ID", t)
	}
	return nil
}

// Candidates lists every representation id may be stored under.
func (id ID) Candidates() []any {
	if oid, ok := id.ObjectID(); ok {
		return []any{oid, string(id)}
	}
	return []any{string(id)}
}

// In matches a field holding any representation of any of ids.
func In(ids ...ID) bson.M {
	vals := make([]any, 0, len(ids)*2)
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		vals = append(vals, id.Candidates()...)
	}
	return bson.M{"$in": vals}
}

func ParseAll(raws []string) []ID {
	out := make([]ID, 0, len(raws))
	seen := make(map[ID]bool, len(raws))
	for _, r := range raws {
		id := Parse(r)
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
