package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

type DatabaseConfig interface {
	DBUrl() string
}

// SessionRecord describes one finished viewer session. Only session metadata
// is journaled, never frame data.
type SessionRecord struct {
	ID             string    `json:"id"`
	RemoteAddr     string    `json:"remote_addr"`
	ConnectedAt    time.Time `json:"connected_at"`
	DisconnectedAt time.Time `json:"disconnected_at"`
	FramesServed   int64     `json:"frames_served"`
	Commands       int64     `json:"commands"`
}

type DatabaseService interface {
	Close() error
	GetSessions(ctx context.Context, limit int) ([]SessionRecord, error)
	WriteSession(ctx context.Context, rec SessionRecord) error
}

type service struct {
	cfg DatabaseConfig
	db  *sql.DB
}

// NewDatabaseService opens the sqlite journal at cfg.DBUrl(). An empty URL
// returns a journal that drops writes and lists nothing.
func NewDatabaseService(cfg DatabaseConfig) (DatabaseService, error) {
	if cfg.DBUrl() == "" {
		return nopService{}, nil
	}

	db, err := sql.Open("sqlite3", cfg.DBUrl())
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		remote_addr TEXT NOT NULL,
		connected_at INTEGER NOT NULL,
		disconnected_at INTEGER NOT NULL,
		frames_served INTEGER NOT NULL,
		commands INTEGER NOT NULL
	)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not initialise database: %w", err)
	}

	log.Info().Str("db", cfg.DBUrl()).Msg("session journal opened")
	return &service{cfg, db}, nil
}

func (s *service) Close() error {
	log.Info().Str("db", s.cfg.DBUrl()).Msg("disconnected from database")
	return s.db.Close()
}

// GetSessions returns the most recently finished sessions first.
func (s *service) GetSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, remote_addr, connected_at, disconnected_at, frames_served, commands
		FROM sessions ORDER BY disconnected_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []SessionRecord{}
	for rows.Next() {
		var rec SessionRecord
		var connected, disconnected int64
		if err := rows.Scan(&rec.ID, &rec.RemoteAddr, &connected, &disconnected, &rec.FramesServed, &rec.Commands); err != nil {
			return nil, err
		}
		rec.ConnectedAt = time.UnixMilli(connected).UTC()
		rec.DisconnectedAt = time.UnixMilli(disconnected).UTC()
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *service) WriteSession(ctx context.Context, rec SessionRecord) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, remote_addr, connected_at, disconnected_at, frames_served, commands)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET disconnected_at=excluded.disconnected_at,
			frames_served=excluded.frames_served, commands=excluded.commands`,
		rec.ID, rec.RemoteAddr, rec.ConnectedAt.UnixMilli(), rec.DisconnectedAt.UnixMilli(),
		rec.FramesServed, rec.Commands)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

type nopService struct{}

func (nopService) Close() error { return nil }

func (nopService) GetSessions(context.Context, int) ([]SessionRecord, error) {
	return []SessionRecord{}, nil
}

func (nopService) WriteSession(context.Context, SessionRecord) error { return nil }
