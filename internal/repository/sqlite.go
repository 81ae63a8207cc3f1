package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

// SQLiteRepository хранит коллекцию клиентов в локальном файле SQLite.
type SQLiteRepository struct {
	db *sqlx.DB
}

// NewSQLiteRepository открывает (или создаёт) файл базы и применяет миграции.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Один писатель: SQLite не допускает параллельной записи.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := runMigrations(ctx, db.DB, "sqlite3"); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

// Close закрывает соединение с базой.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) get(ctx context.Context, key string) (string, bool, error) {
	var raw string
	err := r.db.GetContext(ctx, &raw, `SELECT value FROM app_storage WHERE key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return raw, true, nil
}

func (r *SQLiteRepository) put(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO app_storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}

// LoadCustomers возвращает сохранённую коллекцию клиентов или пустую коллекцию, если данных нет.
func (r *SQLiteRepository) LoadCustomers(ctx context.Context) ([]model.CustomerRecord, error) {
	raw, ok, err := r.get(ctx, CustomersKey)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	if !ok {
		return []model.CustomerRecord{}, nil
	}
	return decodeCustomers(raw)
}

// SaveCustomers перезаписывает коллекцию клиентов целиком.
func (r *SQLiteRepository) SaveCustomers(ctx context.Context, customers []model.CustomerRecord) error {
	raw, err := encodeCustomers(customers)
	if err != nil {
		return err
	}
	if err := r.put(ctx, CustomersKey, raw); err != nil {
		return fmt.Errorf("save customers: %w", err)
	}
	return nil
}

// IsInitialized сообщает, были ли уже установлены демонстрационные данные.
func (r *SQLiteRepository) IsInitialized(ctx context.Context) (bool, error) {
	raw, ok, err := r.get(ctx, InitializedKey)
	if err != nil {
		return false, fmt.Errorf("read init flag: %w", err)
	}
	return ok && raw == "true", nil
}

// MarkInitialized сохраняет признак установки демонстрационных данных.
func (r *SQLiteRepository) MarkInitialized(ctx context.Context) error {
	if err := r.put(ctx, InitializedKey, "true"); err != nil {
		return fmt.Errorf("mark initialized: %w", err)
	}
	return nil
}
