// Package repository содержит реализации хранилища записей клиентов в PostgreSQL и SQLite.
package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Ключи хранилища: коллекция клиентов и признак установки демонстрационных данных.
const (
	CustomersKey   = "suraksha_service_data"
	InitializedKey = "suraksha_initialized"
)

// ErrCorruptData возвращается, если сохранённая коллекция не разбирается как JSON.
var ErrCorruptData = errors.New("corrupt stored data")

func runMigrations(ctx context.Context, db *sql.DB, dialect string) error {
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func encodeCustomers(customers []model.CustomerRecord) (string, error) {
	if customers == nil {
		customers = []model.CustomerRecord{}
	}
	data, err := json.Marshal(customers)
	if err != nil {
		return "", fmt.Errorf("encode customers: %w", err)
	}
	return string(data), nil
}

func decodeCustomers(raw string) ([]model.CustomerRecord, error) {
	if raw == "" {
		return []model.CustomerRecord{}, nil
	}
	var customers []model.CustomerRecord
	if err := json.Unmarshal([]byte(raw), &customers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if customers == nil {
		customers = []model.CustomerRecord{}
	}
	return customers, nil
}
