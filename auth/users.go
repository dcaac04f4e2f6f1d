package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dukaan/db"
	"dukaan/identity"
	"dukaan/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore finds users by mobile, creating them on first login.
type UserStore interface {
	// FindOrCreateByMobile reports created=true when this call inserted the user.
	FindOrCreateByMobile(ctx context.Context, mobile string) (*models.User, bool, error)
	ByID(ctx context.Context, id identity.ID) (*models.User, error)
}

type mongoUsers struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoUserStore relies on the unique_mobile index from db.EnsureIndexes.
func NewMongoUserStore(d *db.DB) UserStore {
	return &mongoUsers{coll: d.UserCollection, now: time.Now}
}

func (m *mongoUsers) FindOrCreateByMobile(ctx context.Context, mobile string) (*models.User, bool, error) {
	now := m.now().UTC()
	id := identity.New()
	update := bson.M{
		"$setOnInsert": bson.M{"_id": id, "mobile": mobile, "created_at": now},
		"$set":         bson.M{"last_login": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	err := m.coll.FindOneAndUpdate(ctx, bson.M{"mobile": mobile}, update, opts).Decode(&user)
	if db.IsDuplicateKeyError(err) {
		// Two first logins raced; the other one inserted, so this is a plain update now.
		err = m.coll.FindOneAndUpdate(ctx, bson.M{"mobile": mobile}, update, opts).Decode(&user)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &user, user.ID == id, nil
}

func (m *mongoUsers) ByID(ctx context.Context, id identity.ID) (*models.User, error) {
	var user models.User
	err := m.coll.FindOne(ctx, bson.M{"_id": identity.In(id)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}
