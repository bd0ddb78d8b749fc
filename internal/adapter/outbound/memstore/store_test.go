package memstore_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasdraft/oasdraft/internal/adapter/outbound/memstore"
	"github.com/oasdraft/oasdraft/internal/usecase"
)

func TestStoreSaveLoad(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store := memstore.New(logger)

	_, err := store.Load(ctx, "info")
	assert.ErrorIs(err, usecase.ErrSectionNotFound)

	require.NoError(t, store.Save(ctx, "info", []byte(`{"title":"A"}`)))
	data, err := store.Load(ctx, "info")
	require.NoError(t, err)
	assert.Equal(`{"title":"A"}`, string(data))

	// Overwrite semantics.
	require.NoError(t, store.Save(ctx, "info", []byte(`{"title":"B"}`)))
	data, err = store.Load(ctx, "info")
	require.NoError(t, err)
	assert.Equal(`{"title":"B"}`, string(data))
}

func TestStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store := memstore.New(logger)

	in := []byte("original")
	require.NoError(t, store.Save(ctx, "k", in))
	in[0] = 'X'

	out, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(out))

	out[0] = 'Y'
	again, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(again))
}
