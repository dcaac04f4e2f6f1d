package orders

import (
	"context"
	"errors"

	"dukaan/identity"
	"dukaan/models"
)

var ErrNotFound = errors.New("orders: not found")

// Ledger is append-only. Status is the only field that changes after
// Create, and only from pending to completed.
type Ledger interface {
	Create(ctx context.Context, order *models.Order) error
	// Get returns the order only when it belongs to userID.
	Get(ctx context.Context, id string, userID identity.ID) (*models.Order, error)
	// ListByUser is most recent first.
	ListByUser(ctx context.Context, userID identity.ID) ([]models.Order, error)
	// MarkCompleted reports false when the order is absent, someone else's
	// or no longer pending.
	MarkCompleted(ctx context.Context, id string, userID identity.ID) (bool, error)
	CountCompleted(ctx context.Context, userID identity.ID) (int64, error)
}
