package reviews

import (
	"context"

	"dukaan/identity"
	"dukaan/models"
)

// Summary is the aggregate shown next to a shop. Average is 0 when the
// shop has no reviews.
type Summary struct {
	Average float64 `json:"average_rating"`
	Count   int64   `json:"count"`
}

type Store interface {
	Add(ctx context.Context, review *models.Review) error
	// ListByShop is newest first.
	ListByShop(ctx context.Context, shopID identity.ID) ([]models.Review, error)
	Summarize(ctx context.Context, shopID identity.ID) (Summary, error)
}
