package configstore

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"headsign.transitboard.org/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := Open(filepath.Join(t.TempDir(), "config.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoadSeedsDefaultRoute(t *testing.T) {
	store := openTestStore(t)

	cfg, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Red", cfg.RouteID)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.RouteConfig{RouteID: "Orange"}))

	cfg, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Orange", cfg.RouteID)

	// Saving again overwrites the single row.
	require.NoError(t, store.Save(ctx, models.RouteConfig{RouteID: "66"}))
	cfg, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "66", cfg.RouteID)
}

func TestSaveRejectsInvalidRoute(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.RouteConfig{RouteID: "Blue"}))
	assert.Error(t, store.Save(ctx, models.RouteConfig{RouteID: "Red Line"}))

	// The stored selection is untouched by the failed save.
	cfg, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Blue", cfg.RouteID)
}

func TestPersistsAcrossReopen(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "config.db")
	ctx := context.Background()

	store, err := Open(path, logger)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, models.RouteConfig{RouteID: "Green-D"}))
	require.NoError(t, store.Close())

	reopened, err := Open(path, logger)
	require.NoError(t, err)
	defer reopened.Close()

	cfg, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Green-D", cfg.RouteID)
}
