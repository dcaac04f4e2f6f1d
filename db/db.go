package db

import (
	"context"
	"fmt"
	"time"

	"dukaan/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	Users         = "users"
	Shops         = "shops"
	Products      = "products"
	Wishlist      = "wishlist"
	Orders        = "orders"
	Reviews       = "reviews"
	Feedback      = "feedback"
	Followups     = "feedback_followups"
	Prescriptions = "prescriptions"
)

type DB struct {
	Client       *mongo.Client
	Database     *mongo.Database
	transactions bool

	UserCollection         *mongo.Collection
	ShopsCollection        *mongo.Collection
	ProductCollection      *mongo.Collection
	WishlistCollection     *mongo.Collection
	OrderCollection        *mongo.Collection
	ReviewsCollection      *mongo.Collection
	FeedbackCollection     *mongo.Collection
	FollowupCollection     *mongo.Collection
	PrescriptionCollection *mongo.Collection
}

// Connect dials MongoDB and pings it before handing back the collections.
func Connect(ctx context.Context, cfg *config.Config) (*DB, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return New(client, cfg.MongoDB, cfg.MongoTransactions), nil
}

func New(client *mongo.Client, name string, transactions bool) *DB {
	database := client.Database(name)
	return &DB{
		Client:       client,
		Database:     database,
		transactions: transactions,

		UserCollection:         database.Collection(Users),
		ShopsCollection:        database.Collection(Shops),
		ProductCollection:      database.Collection(Products),
		WishlistCollection:     database.Collection(Wishlist),
		OrderCollection:        database.Collection(Orders),
		ReviewsCollection:      database.Collection(Reviews),
		FeedbackCollection:     database.Collection(Feedback),
		FollowupCollection:     database.Collection(Followups),
		PrescriptionCollection: database.Collection(Prescriptions),
	}
}

// EnsureIndexes creates the indexes the stores rely on, including the
// unique merge key on wishlist lines and the unique mobile on users.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	plan := map[*mongo.Collection][]mongo.IndexModel{
		d.UserCollection: {
			{Keys: bson.D{{Key: "mobile", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_mobile")},
		},
		d.WishlistCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "product_id", Value: 1},
					{Key: "variant_key", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("unique_merge_key"),
			},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "shop_id", Value: 1}}},
		},
		d.ProductCollection: {
			{Keys: bson.D{{Key: "shop_id", Value: 1}}},
		},
		d.OrderCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		d.ReviewsCollection: {
			{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		d.PrescriptionCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for coll, idxs := range plan {
		if _, err := coll.Indexes().CreateMany(ctx, idxs); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// Transactor runs fn as one atomic unit. The ctx handed to fn must be used
// for every store call that belongs to the unit.
type Transactor interface {
	RunTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunTx wraps fn in a multi-document transaction, or runs it directly when
// transactions are disabled (standalone mongod).
func (d *DB) RunTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !d.transactions {
		return fn(ctx)
	}

	sess, err := d.Client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

// NoTx runs fn without any transaction; used by in-memory stores.
type NoTx struct{}

func (NoTx) RunTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func IsDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
