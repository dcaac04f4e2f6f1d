package prescriptions

import (
	"context"
	"fmt"

	"dukaan/db"
	"dukaan/identity"
	"dukaan/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store interface {
	Add(ctx context.Context, p *models.Prescription) error
	// ListByUser is newest first.
	ListByUser(ctx context.Context, userID identity.ID) ([]models.Prescription, error)
}

type mongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(d *db.DB) Store {
	return &mongoStore{coll: d.PrescriptionCollection}
}

func (m *mongoStore) Add(ctx context.Context, p *models.Prescription) error {
	if p.ID.IsZero() {
		p.ID = identity.New()
	}
	if _, err := m.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert prescription: %w", err)
	}
	return nil
}

func (m *mongoStore) ListByUser(ctx context.Context, userID identity.ID) ([]models.Prescription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return db.FindAndDecode[models.Prescription](ctx, m.coll, bson.M{"user_id": identity.In(userID)}, opts)
}
