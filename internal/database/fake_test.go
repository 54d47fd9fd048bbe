package database

import (
	"context"
	"testing"

	"firebasebindings/internal/binding"
	"firebasebindings/internal/testutil"

	firebase "firebase.google.com/go/v4"
	"github.com/stretchr/testify/require"
)

// newTestDatabase wires a Database to a FakeRTDB through the admin client's
// emulator URL form.
func newTestDatabase(t *testing.T, metrics binding.Metrics) (*Database, *testutil.FakeRTDB) {
	t.Helper()
	d, fake, dbURL := newAdminOnlyDatabase(t, metrics)

	exporter, err := NewExporter(context.Background(), dbURL)
	require.NoError(t, err)
	d.exporter = exporter
	return d, fake
}

// newAdminOnlyDatabase reads through the admin client alone.
func newAdminOnlyDatabase(t *testing.T, metrics binding.Metrics) (*Database, *testutil.FakeRTDB, string) {
	t.Helper()

	fake, dbURL := testutil.NewFakeRTDB(t)

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:   "demo-project",
		DatabaseURL: dbURL,
	})
	require.NoError(t, err)

	client, err := app.Database(ctx)
	require.NoError(t, err)

	if metrics == nil {
		metrics = binding.NopMetrics{}
	}
	return New(client, binding.NopLogger{}, metrics), fake, dbURL
}
