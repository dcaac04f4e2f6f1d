package identity

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("identity: no record for id")

// Lookup reports whether collection holds a record whose _id equals key.
type Lookup func(ctx context.Context, collection string, key any) (bool, error)

// Ref is a resolved id together with the exact value it is stored under.
type Ref struct {
	ID     ID
	Stored any
}

func (r Ref) Filter() bson.M {
	return bson.M{"_id": r.Stored}
}

type Resolver struct {
	lookup Lookup
}

func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// MongoLookup probes db.<collection> by _id with an id-only projection.
func MongoLookup(db *mongo.Database) Lookup {
	return func(ctx context.Context, collection string, key any) (bool, error) {
		err := db.Collection(collection).FindOne(ctx, bson.M{"_id": key},
			options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return err == nil, err
	}
}

// Resolve tries the ObjectID form of raw first and the plain string second.
// A raw value that is not hex, or matches nothing, is ErrNotFound; only
// store failures come back as other errors.
func (r *Resolver) Resolve(ctx context.Context, collection, raw string) (Ref, error) {
	id := Parse(raw)
	if id.IsZero() {
		return Ref{}, ErrNotFound
	}

	if oid, ok := id.ObjectID(); ok {
		found, err := r.lookup(ctx, collection, oid)
		if err != nil {
			return Ref{}, err
		}
		if found {
			return Ref{ID: id, Stored: oid}, nil
		}
	}

	found, err := r.lookup(ctx, collection, string(id))
	if err != nil {
		return Ref{}, err
	}
	if found {
		return Ref{ID: id, Stored: string(id)}, nil
	}
	return Ref{}, ErrNotFound
}
