package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"washpoint/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// bookingsKey is the fixed storage key holding the whole booking collection
// as one JSON array. The layout mirrors what the old site kept in the
// browser's local storage, so exported dumps load without conversion.
const bookingsKey = "bookings"

type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	// Создаем директорию для БД, если её нет
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Создаем таблицы
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Хранилище вида ключ -> JSON-значение
		`CREATE TABLE IF NOT EXISTS storage (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL
        )`,
		// Очередь задач экспорта
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            booking_id TEXT NOT NULL DEFAULT '',
            payload TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_next_retry ON sync_queue(next_retry_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// LoadAll returns every booking record under the fixed storage key.
// An absent key reads as an empty collection. A malformed value is tolerated
// the same way: logged and treated as empty, never surfaced as an error.
func (db *DB) LoadAll(ctx context.Context) ([]models.Booking, error) {
	var raw string
	err := db.QueryRowContext(ctx, `SELECT value FROM storage WHERE key = ?`, bookingsKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return []models.Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage key %q: %w", bookingsKey, err)
	}

	var bookings []models.Booking
	if err := json.Unmarshal([]byte(raw), &bookings); err != nil {
		db.logger.Warn().Err(err).Str("key", bookingsKey).Msg("malformed storage value, starting from an empty collection")
		return []models.Booking{}, nil
	}

	// Записи старых версий не содержали cleaningStages
	for i := range bookings {
		if bookings[i].CleaningStages == nil {
			bookings[i].CleaningStages = models.StageMap{}
		}
	}

	return bookings, nil
}

// SaveAll replaces the whole collection in one transaction. There is no
// partial-update API: every mutation is load-all, transform, save-all.
func (db *DB) SaveAll(ctx context.Context, bookings []models.Booking) error {
	if bookings == nil {
		bookings = []models.Booking{}
	}

	raw, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("failed to encode bookings: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO storage (key, value) VALUES (?, ?)
              ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.ExecContext(ctx, query, bookingsKey, string(raw)); err != nil {
		return fmt.Errorf("failed to write storage key %q: %w", bookingsKey, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
