package orders

import (
	"context"
	"testing"
	"time"

	"dukaan/db/dbtest"
	"dukaan/identity"
	"dukaan/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoLedger_Integration(t *testing.T) {
	ctx := context.Background()
	ledger := NewMongoLedger(dbtest.Setup(t))
	user := identity.New()
	base := time.Now().UTC().Truncate(time.Millisecond)

	older := &models.Order{UserID: user, TotalAmount: 100, CreatedAt: base}
	newer := &models.Order{UserID: user, TotalAmount: 350, CreatedAt: base.Add(time.Minute)}
	require.NoError(t, ledger.Create(ctx, older))
	require.NoError(t, ledger.Create(ctx, newer))
	assert.Equal(t, models.OrderPending, older.Status)

	list, err := ledger.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	_, err = ledger.Get(ctx, older.ID.String(), identity.New())
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := ledger.MarkCompleted(ctx, older.ID.String(), user)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ledger.MarkCompleted(ctx, older.ID.String(), user)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := ledger.CountCompleted(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := ledger.Get(ctx, older.ID.String(), user)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.TotalAmount)
	assert.Equal(t, models.OrderCompleted, got.Status)
}
