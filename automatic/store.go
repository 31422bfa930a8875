package automatic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrGameNotFound = errors.New("game not found")

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          TEXT PRIMARY KEY,
	started     TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	start_fen   TEXT NOT NULL,
	moves       TEXT NOT NULL,
	plies       INTEGER NOT NULL,
	result      TEXT NOT NULL,
	termination TEXT NOT NULL,
	final_fen   TEXT NOT NULL,
	pgn         TEXT NOT NULL
)`

// Store keeps self-play games in a sqlite database.
type Store struct {
	db *sql.DB
}

func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) SaveGame(ctx context.Context, rec GameRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO games
		(id, started, duration_ms, start_fen, moves, plies, result, termination, final_fen, pgn)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(),
		rec.Started.UTC().Format(time.RFC3339Nano),
		rec.Duration.Milliseconds(),
		rec.StartFEN,
		strings.Join(rec.Moves, " "),
		len(rec.Moves),
		rec.Result,
		rec.Termination,
		rec.FinalFEN,
		rec.PGN,
	)
	return err
}

// Game loads a stored game. Search statistics are not stored.
func (s *Store) Game(ctx context.Context, id uuid.UUID) (GameRecord, error) {
	var (
		rec        GameRecord
		idStr      string
		started    string
		durationMs int64
		moves      string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started, duration_ms, start_fen, moves, result, termination, final_fen, pgn
		FROM games WHERE id = ?`, id.String()).
		Scan(&idStr, &started, &durationMs, &rec.StartFEN, &moves,
			&rec.Result, &rec.Termination, &rec.FinalFEN, &rec.PGN)
	if errors.Is(err, sql.ErrNoRows) {
		return GameRecord{}, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	if err != nil {
		return GameRecord{}, err
	}
	if rec.ID, err = uuid.Parse(idStr); err != nil {
		return GameRecord{}, err
	}
	if rec.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return GameRecord{}, err
	}
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	rec.Moves = strings.Fields(moves)
	return rec, nil
}

// ResultCounts returns how many stored games ended with each result.
func (s *Store) ResultCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT result, COUNT(*) FROM games GROUP BY result`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var result string
		var n int
		if err := rows.Scan(&result, &n); err != nil {
			return nil, err
		}
		counts[result] = n
	}
	return counts, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
