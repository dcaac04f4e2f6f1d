package feedback

import (
	"context"
	"fmt"

	"dukaan/db"
	"dukaan/identity"
	"dukaan/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type Store interface {
	Save(ctx context.Context, fb *models.Feedback) error
	SaveFollowup(ctx context.Context, f *models.FeedbackFollowup) error
}

type mongoStore struct {
	feedback  *mongo.Collection
	followups *mongo.Collection
}

func NewMongoStore(d *db.DB) Store {
	return &mongoStore{feedback: d.FeedbackCollection, followups: d.FollowupCollection}
}

func (m *mongoStore) Save(ctx context.Context, fb *models.Feedback) error {
	if fb.ID.IsZero() {
		fb.ID = identity.New()
	}
	if _, err := m.feedback.InsertOne(ctx, fb); err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

func (m *mongoStore) SaveFollowup(ctx context.Context, f *models.FeedbackFollowup) error {
	if f.ID.IsZero() {
		f.ID = identity.New()
	}
	if _, err := m.followups.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("failed to insert feedback followup: %w", err)
	}
	return nil
}
