package automatic

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/alxlyan/alexchess/board"
	"github.com/alxlyan/alexchess/config"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

const backRankMate = "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1"

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Set("ttable-mb", 2)
	cfg.Set("depth", 1)
	return &cfg
}

func TestPlayGameToMate(t *testing.T) {
	cfg := testConfig()
	cfg.Set("start-fen", backRankMate)
	r := NewGameRunner(nil, cfg)

	var transcript bytes.Buffer
	rec, err := r.PlayGame(context.Background(), &transcript)
	require.NoError(t, err)

	assert.Equal(t, []string{"a1a8"}, rec.Moves)
	assert.Equal(t, "1-0", rec.Result)
	assert.Equal(t, TerminationCheckmate, rec.Termination)
	assert.Equal(t, "R5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 1 1", rec.FinalFEN)
	assert.True(t, strings.HasPrefix(transcript.String(), "01. a1a8\nResult: 1-0\n"))

	assert.Contains(t, rec.PGN, "Ra8")
	assert.Contains(t, rec.PGN, "1-0")
	assert.Contains(t, rec.PGN, `[FEN "`+backRankMate+`"]`)
	assert.Equal(t, 1, rec.ThinkMs.Count())
}

func TestPlayGameStopsAtPlyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Set("plies", 4)
	r := NewGameRunner(nil, cfg)

	var transcript bytes.Buffer
	rec, err := r.PlayGame(context.Background(), &transcript)
	require.NoError(t, err)

	assert.Len(t, rec.Moves, 4)
	assert.Equal(t, "*", rec.Result)
	assert.Equal(t, TerminationPlyLimit, rec.Termination)
	assert.Equal(t, board.StartFEN, rec.StartFEN)
	assert.Equal(t, 4, r.Board().Ply())
	for i, line := range strings.Split(transcript.String(), "\n")[:4] {
		assert.True(t, strings.HasPrefix(line, "0"+string(rune('1'+i))+". "), line)
	}

	// a second game starts over with a new id.
	again, err := r.PlayGame(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, rec.ID, again.ID)
	assert.Equal(t, rec.Moves, again.Moves)
}

func TestPlayGameInterrupted(t *testing.T) {
	cfg := testConfig()
	r := NewGameRunner(nil, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec, err := r.PlayGame(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, TerminationInterrupted, rec.Termination)
	assert.Empty(t, rec.Moves)
}

func TestPlayTurnLogsYAML(t *testing.T) {
	cfg := testConfig()
	cfg.Set("start-fen", backRankMate)
	logchan := make(chan []byte, 1)
	r := NewGameRunner(logchan, cfg)
	require.NoError(t, r.StartGame())

	res, err := r.PlayTurn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a1a8", board.MoveToken(res.Move))

	var plies []LogPly
	require.NoError(t, yaml.Unmarshal(<-logchan, &plies))
	require.Len(t, plies, 1)
	assert.Equal(t, "a1a8", plies[0].Move)
	assert.Equal(t, backRankMate, plies[0].FEN)
	assert.Equal(t, 1, plies[0].Ply)
	assert.Equal(t, 10000, plies[0].Score)
}

func TestPlayGames(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Set("games", 3)
	cfg.Set("threads", 2)
	cfg.Set("plies", 2)
	cfg.Set("db", filepath.Join(dir, "games.db"))
	cfg.Set("log-file", filepath.Join(dir, "plies.yaml"))

	var out bytes.Buffer
	summary, err := PlayGames(context.Background(), cfg, &out)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Games)
	assert.Equal(t, 3, summary.Unfinished)
	assert.Equal(t, 2.0, summary.Plies.Mean())
	assert.Equal(t, 6, summary.ThinkMs.Count())
	assert.Equal(t, 3, strings.Count(out.String(), "Result: *"))
	assert.Contains(t, summary.String(), "Games played: 3")

	logged, err := os.ReadFile(filepath.Join(dir, "plies.yaml"))
	require.NoError(t, err)
	var plies []LogPly
	require.NoError(t, yaml.Unmarshal(logged, &plies))
	assert.Len(t, plies, 6)

	store, err := OpenStore(context.Background(), filepath.Join(dir, "games.db"))
	require.NoError(t, err)
	defer store.Close()
	counts, err := store.ResultCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"*": 3}, counts)
}

func TestSummaryScores(t *testing.T) {
	var s Summary
	for _, result := range []string{"1-0", "1-0", "1/2-1/2", "0-1", "*"} {
		s.add(GameRecord{Result: result, Moves: []string{"e2e4"}})
	}
	assert.Equal(t, 5, s.Games)
	assert.Equal(t, 2, s.WhiteWins)
	assert.Equal(t, 1, s.BlackWins)
	assert.Equal(t, 1, s.Draws)
	assert.Equal(t, 1, s.Unfinished)
	assert.Contains(t, s.String(), "White score: 0.625")
}
