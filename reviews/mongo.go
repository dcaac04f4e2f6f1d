package reviews

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

type mongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(d *db.DB) Store {
	return &mongoStore{coll: d.ReviewsCollection}
}

func (m *mongoStore) Add(ctx context.Context, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = identity.New()
	}
	if _, err := m.coll.InsertOne(ctx, review); err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (m *mongoStore) ListByShop(ctx context.Context, shopID identity.ID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return db.FindAndDecode[models.Review](ctx, m.coll, bson.M{"shop_id": identity.In(shopID)}, opts)
}

func (m *mongoStore) Summarize(ctx context.Context, shopID identity.ID) (Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"shop_id": identity.In(shopID)}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return Summary{}, fmt.Errorf("failed to decode review average: %w", err)
	}
	if len(rows) == 0 {
		return Summary{}, nil
	}
	return Summary{Average: rows[0].Avg, Count: rows[0].Count}, nil
}
