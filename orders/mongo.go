package orders

import (
	"context"
	"errors"
	"fmt"

	"dukaan/db"
	"dukaan/identity"
	"dukaan/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoLedger struct {
	coll *mongo.Collection
}

func NewMongoLedger(d *db.DB) Ledger {
	return &mongoLedger{coll: d.OrderCollection}
}

func (m *mongoLedger) Create(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = identity.New()
	}
	if order.Status == "" {
		order.Status = models.OrderPending
	}
	if _, err := m.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func ownedBy(id string, userID identity.ID) bson.M {
	return bson.M{
		"_id":     identity.In(identity.Parse(id)),
		"user_id": identity.In(userID),
	}
}

func (m *mongoLedger) Get(ctx context.Context, id string, userID identity.ID) (*models.Order, error) {
	var order models.Order
	err := m.coll.FindOne(ctx, ownedBy(id, userID)).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

func (m *mongoLedger) ListByUser(ctx context.Context, userID identity.ID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return db.FindAndDecode[models.Order](ctx, m.coll, bson.M{"user_id": identity.In(userID)}, opts)
}

func (m *mongoLedger) MarkCompleted(ctx context.Context, id string, userID identity.ID) (bool, error) {
	filter := ownedBy(id, userID)
	filter["status"] = models.OrderPending
	res, err := m.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": models.OrderCompleted}})
	if err != nil {
		return false, fmt.Errorf("failed to complete order: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (m *mongoLedger) CountCompleted(ctx context.Context, userID identity.ID) (int64, error) {
	n, err := m.coll.CountDocuments(ctx, bson.M{
		"user_id": identity.In(userID),
		"status":  models.OrderCompleted,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}
