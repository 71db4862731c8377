package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// note: as per SQLites's manual suggestions, we do not use 'AUTOINCREMENT' on
// the 'INTEGER PRIMARY KEY' columns. The default behaviour of such columns is
// nearly identical anyway, with less overhead.
var schema_stmts = []string{
	`PRAGMA journal_mode=WAL;`,
	`PRAGMA foreign_keys=ON;`,
	`CREATE TABLE IF NOT EXISTS games (
		id INTEGER PRIMARY KEY,
		table_id TEXT NOT NULL,
		played_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
		mode TEXT NOT NULL,
		human_color TEXT NOT NULL DEFAULT 'w',
		room_id TEXT NOT NULL DEFAULT '',
		result TEXT NOT NULL,
		termination TEXT NOT NULL DEFAULT '',
		moves_san TEXT NOT NULL DEFAULT '',
		ply_count INTEGER NOT NULL GENERATED ALWAYS AS (length(moves_san) - length(replace(moves_san, ' ', '')) + CASE WHEN moves_san = '' THEN 0 ELSE 1 END) STORED,
		ai_moves INTEGER NOT NULL DEFAULT 0,
		ai_fallbacks INTEGER NOT NULL DEFAULT 0,
		pgn TEXT NOT NULL DEFAULT '',
		CHECK (mode IN ('local', 'ai', 'remote')),
		CHECK (human_color IN ('w', 'b')),
		CHECK (result IN ('1-0', '0-1', '1/2-1/2')),
		CHECK (trim(moves_san) = moves_san)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_games_played_at ON games(played_at);`,
	`CREATE INDEX IF NOT EXISTS idx_games_mode ON games(mode);`,
	`CREATE INDEX IF NOT EXISTS idx_games_table ON games(table_id);`,
}

type Store struct {
	db *sqlx.DB
}

func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// keep it predictable; this is a single-instance service.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	for _, stmt := range schema_stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
