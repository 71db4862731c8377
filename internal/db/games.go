package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrGameNotFound = errors.New("game not found")

const gameColumns = `
		id,
		table_id,
		played_at,
		mode,
		human_color,
		room_id,
		result,
		termination,
		moves_san,
		ply_count,
		ai_moves,
		ai_fallbacks`

// Add a finished game to the archive. Returns the inserted games ID.
func (s *Store) InsertFinishedGame(ctx context.Context, g FinishedGame) (int64, error) {
	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO games (table_id, mode, human_color, room_id, result, termination, moves_san, ai_moves, ai_fallbacks, pgn)
		VALUES (:table_id, :mode, :human_color, :room_id, :result, :termination, :moves_san, :ai_moves, :ai_fallbacks, :pgn)
	`, g)
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// list most recent finished games
func (s *Store) ListFinishedGames(ctx context.Context, limit int) ([]GameDetail, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []GameDetail
	err := s.db.SelectContext(ctx, &out, `SELECT`+gameColumns+`
		FROM games
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	return out, err
}

func (s *Store) GetGame(ctx context.Context, id int64) (GameDetail, error) {
	var gd GameDetail
	err := s.db.GetContext(ctx, &gd, `SELECT`+gameColumns+`
		FROM games
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return GameDetail{}, ErrGameNotFound
	}
	return gd, err
}

func (s *Store) GamePGN(ctx context.Context, id int64) (string, error) {
	var pgn string
	err := s.db.GetContext(ctx, &pgn, `SELECT pgn FROM games WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrGameNotFound
	}
	return pgn, err
}

// universal search function
func (s *Store) SearchGames(ctx context.Context, filter GameSearchFilter, limit int) (int, []GameDetail, error) {
	if limit <= 0 {
		limit = 20
	}

	where := "WHERE 1=1"
	args := make([]any, 0, 4)
	if filter.Mode != "" {
		where += " AND mode = ?"
		args = append(args, filter.Mode)
	}
	if filter.Result != "" {
		where += " AND result = ?"
		args = append(args, filter.Result)
	}
	if filter.Termination != "" {
		where += " AND termination = ?"
		args = append(args, filter.Termination)
	}
	if filter.RoomID != "" {
		where += " AND room_id = ?"
		args = append(args, filter.RoomID)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM games "+where, args...); err != nil {
		return 0, nil, err
	}

	listQuery := `SELECT` + gameColumns + `
		FROM games
		` + where + `
		ORDER BY id DESC
		LIMIT ?
	`
	listArgs := append(args, limit)
	var results []GameDetail
	if err := s.db.SelectContext(ctx, &results, listQuery, listArgs...); err != nil {
		return 0, nil, err
	}
	return total, results, nil
}

func (s *Store) ListResultSummaries(ctx context.Context) ([]ResultSummary, error) {
	var out []ResultSummary
	err := s.db.SelectContext(ctx, &out, `
		SELECT mode,
			result,
			COUNT(*) AS count
		FROM games
		GROUP BY mode, result
		ORDER BY mode, result
	`)
	return out, err
}

func (s *Store) CountGames(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM games`)
	return n, err
}

func (s *Store) DeleteGame(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrGameNotFound
	}
	return nil
}

// DeleteAllGames wipes the archive and returns how many rows were removed.
func (s *Store) DeleteAllGames(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
