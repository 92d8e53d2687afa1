package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Schema creates the results table used by Repository.
const Schema = `CREATE TABLE IF NOT EXISTS dark_games (
    game_id      TEXT PRIMARY KEY,
    result       TEXT NOT NULL,
    result_method TEXT NOT NULL,
    winner       TEXT,
    moves        JSONB NOT NULL,
    moves_text   TEXT NOT NULL,
    final_fen    TEXT NOT NULL,
    started_at   TIMESTAMPTZ NOT NULL,
    ended_at     TIMESTAMPTZ NOT NULL,
    duration_ms  BIGINT NOT NULL
)`

// Repository persists finished games into PostgreSQL.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts the final result of a finished session.
func (r *Repository) SaveResult(ctx context.Context, s *Session) error {
	if r == nil || r.db == nil || s == nil {
		return nil
	}
	row, err := resultRow(s)
	if err != nil {
		return err
	}

	q := `INSERT INTO dark_games (
        game_id, result, result_method, winner, moves, moves_text, final_fen,
        started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5::jsonb,$6,$7,$8,$9,$10
      ) ON CONFLICT (game_id) DO UPDATE SET
        result=EXCLUDED.result,
        result_method=EXCLUDED.result_method,
        winner=EXCLUDED.winner,
        moves=EXCLUDED.moves,
        moves_text=EXCLUDED.moves_text,
        final_fen=EXCLUDED.final_fen,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err = r.db.ExecContext(ctx, q,
		row.GameID, row.Result, row.Method, row.Winner, row.Moves, row.MovesText, row.FinalFEN,
		row.StartedAt, row.EndedAt, row.DurationMS,
	)
	return err
}

// ResultRow is the flattened form of a finished session.
type ResultRow struct {
	GameID     string
	Result     string
	Method     string
	Winner     sql.NullString
	Moves      string
	MovesText  string
	FinalFEN   string
	StartedAt  time.Time
	EndedAt    time.Time
	DurationMS int64
}

func resultRow(s *Session) (*ResultRow, error) {
	movesRaw, err := json.Marshal(s.Moves)
	if err != nil {
		return nil, fmt.Errorf("marshal moves: %w", err)
	}
	texts := make([]string, 0, len(s.Moves))
	for _, mv := range s.Moves {
		texts = append(texts, MoveText(mv.Move, mv.Promotion))
	}
	duration := s.UpdatedAt.Sub(s.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}
	return &ResultRow{
		GameID:     s.ID,
		Result:     mapResult(s),
		Method:     s.Outcome,
		Winner:     sql.NullString{String: string(s.Winner), Valid: s.Winner != ""},
		Moves:      string(movesRaw),
		MovesText:  strings.Join(texts, " "),
		FinalFEN:   PositionFEN(s.Game),
		StartedAt:  s.CreatedAt,
		EndedAt:    s.UpdatedAt,
		DurationMS: duration,
	}, nil
}

func mapResult(s *Session) string {
	switch {
	case s.Status == StatusDraw:
		return "1/2-1/2"
	case s.Winner == "white":
		return "1-0"
	case s.Winner == "black":
		return "0-1"
	default:
		return "*"
	}
}
