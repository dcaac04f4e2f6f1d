package cart

import (
	"context"

	"dukaan/identity"
	"dukaan/models"
)

// Store persists cart lines. Every method is scoped to one user; a line
// belonging to someone else is indistinguishable from a missing one.
type Store interface {
	// Increment adds line.Quantity to the line sharing line's merge key,
	// inserting line when there is none.
	Increment(ctx context.Context, line models.CartLine) error
	ProductLines(ctx context.Context, userID, productID identity.ID) ([]models.CartLine, error)
	SetQuantity(ctx context.Context, userID, lineID identity.ID, quantity int) (bool, error)
	Lines(ctx context.Context, userID identity.ID) ([]models.CartLine, error)
	// Select returns the user's lines, narrowed to shopID when it is set
	// and to productIDs when any are given.
	Select(ctx context.Context, userID, shopID identity.ID, productIDs []identity.ID) ([]models.CartLine, error)
	DeleteLines(ctx context.Context, userID identity.ID, lineIDs []identity.ID) (int64, error)
	DeleteAll(ctx context.Context, userID identity.ID) (int64, error)
}

// OrderWriter is the only thing checkout needs from the order ledger.
type OrderWriter interface {
	Create(ctx context.Context, order *models.Order) error
}
