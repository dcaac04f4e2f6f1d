// Package dbtest starts a throwaway MongoDB for repository tests.
package dbtest

import (
	"context"
	"testing"

	"dukaan/db"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Setup skips under -short. The returned DB has its indexes in place and
// transactions off, since the container is a standalone mongod.
func Setup(t *testing.T) *db.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	d := db.New(client, "dukaan_test", false)
	require.NoError(t, d.EnsureIndexes(ctx))
	return d
}
