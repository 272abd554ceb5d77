// Package storage provides SQLite-based persistence for the game
// configuration and the history of finished games.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-connect4/internal/game"
	"github.com/vovakirdan/tui-connect4/internal/multiplayer"
)

const gameConfigKey = "game_config"

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished game.
type MatchRecord struct {
	ID         int64
	MatchID    string
	Mode       multiplayer.Mode
	Round      int
	Winner     game.Winner
	Turns      int
	AllowDraws bool
	Timed      bool
	CreatedAt  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			round INTEGER NOT NULL DEFAULT 0,
			winner INTEGER NOT NULL,
			turns INTEGER NOT NULL DEFAULT 0,
			allow_draws INTEGER NOT NULL DEFAULT 0,
			timed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadGameConfig returns the saved game configuration. ok is false when
// nothing was saved yet. Turn limits below the minimum load as unset.
func (s *Store) LoadGameConfig() (cfg game.Config, ok bool, err error) {
	var value string
	err = s.db.QueryRow("SELECT value FROM settings WHERE key = ?", gameConfigKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Config{}, false, nil
	}
	if err != nil {
		return game.Config{}, false, fmt.Errorf("storage: cannot load game config: %w", err)
	}
	if err := json.Unmarshal([]byte(value), &cfg); err != nil {
		return game.Config{}, false, fmt.Errorf("storage: cannot decode game config: %w", err)
	}
	return cfg, true, nil
}

// SaveGameConfig replaces the saved game configuration.
func (s *Store) SaveGameConfig(cfg game.Config) error {
	value, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("storage: cannot encode game config: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		gameConfigKey, string(value),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save game config: %w", err)
	}
	return nil
}

// RecordMatch stores a finished game. A missing MatchID is generated.
// Returns the ID of the inserted record.
func (s *Store) RecordMatch(rec MatchRecord) (int64, error) {
	if rec.MatchID == "" {
		rec.MatchID = uuid.NewString()
	}
	res, err := s.db.Exec(
		`INSERT INTO matches (match_id, mode, round, winner, turns, allow_draws, timed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.MatchID,
		rec.Mode.String(),
		rec.Round,
		int(rec.Winner),
		rec.Turns,
		rec.AllowDraws,
		rec.Timed,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot record match: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentMatches retrieves the most recent games, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, match_id, mode, round, winner, turns, allow_draws, timed, created_at
		 FROM matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		var mode string
		var winner int
		var createdAt any
		if err := rows.Scan(
			&rec.ID,
			&rec.MatchID,
			&mode,
			&rec.Round,
			&winner,
			&rec.Turns,
			&rec.AllowDraws,
			&rec.Timed,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		rec.Mode = multiplayer.ParseMode(mode)
		rec.Winner = game.Winner(winner)
		rec.CreatedAt = parseTime(createdAt)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	_, err := s.RecordMatch(MatchRecord{
		MatchID:    data.MatchID,
		Mode:       data.Mode,
		Round:      data.Round,
		Winner:     data.Winner,
		Turns:      data.Turns,
		AllowDraws: data.AllowDraws,
		Timed:      data.Timed,
	})
	return err
}

// Ensure Store implements the coordinator's persistence interfaces
var (
	_ multiplayer.MatchResultSaver = (*Store)(nil)
	_ multiplayer.ConfigSaver      = (*Store)(nil)
)

// MatchStats contains aggregated statistics over all recorded games.
type MatchStats struct {
	Games      int
	Wins       [2]int
	Draws      int
	Local      int
	Remote     int
	AvgTurns   float64
	LastPlayed time.Time
}

// MatchStats aggregates the match history.
func (s *Store) MatchStats() (*MatchStats, error) {
	stats := &MatchStats{}
	var lastPlayed any

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(winner = ?), 0),
		        COALESCE(SUM(winner = ?), 0),
		        COALESCE(SUM(winner = ?), 0),
		        COALESCE(SUM(mode = 'local'), 0),
		        COALESCE(SUM(mode = 'remote'), 0),
		        COALESCE(AVG(turns), 0),
		        MAX(created_at)
		 FROM matches`,
		int(game.WinnerPlayer1), int(game.WinnerPlayer2), int(game.WinnerDraw),
	).Scan(
		&stats.Games,
		&stats.Wins[game.Player1],
		&stats.Wins[game.Player2],
		&stats.Draws,
		&stats.Local,
		&stats.Remote,
		&stats.AvgTurns,
		&lastPlayed,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get match stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// parseTime handles both time.Time and string datetimes.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
