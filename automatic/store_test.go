package automatic

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(ctx, filepath.Join(t.TempDir(), "games.db"))
	require.NoError(t, err)
	defer store.Close()

	rec := GameRecord{
		ID:          uuid.New(),
		Started:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:    1500 * time.Millisecond,
		StartFEN:    backRankMate,
		Moves:       []string{"a1a8"},
		Result:      "1-0",
		Termination: TerminationCheckmate,
		FinalFEN:    "R5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 1 1",
		PGN:         "1. Ra8# 1-0",
	}
	require.NoError(t, store.SaveGame(ctx, rec))
	// saving again replaces the row.
	require.NoError(t, store.SaveGame(ctx, rec))

	got, err := store.Game(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, rec.Started.Equal(got.Started))
	assert.Equal(t, rec.Duration, got.Duration)
	assert.Equal(t, rec.Moves, got.Moves)
	assert.Equal(t, rec.Result, got.Result)
	assert.Equal(t, rec.Termination, got.Termination)
	assert.Equal(t, rec.FinalFEN, got.FinalFEN)
	assert.Equal(t, rec.PGN, got.PGN)

	counts, err := store.ResultCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"1-0": 1}, counts)

	_, err = store.Game(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrGameNotFound)
}
