package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

// PostgresRepository хранит коллекцию клиентов в PostgreSQL в виде пары ключ/значение.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	delays []time.Duration
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{
		pool:   pool,
		delays: []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := runMigrations(ctx, db, "postgres"); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for i := 0; i <= len(r.delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if !isRetryable(err) || i == len(r.delays) {
			break
		}

		timer := time.NewTimer(r.delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// LoadCustomers возвращает сохранённую коллекцию клиентов или пустую коллекцию, если данных нет.
func (r *PostgresRepository) LoadCustomers(ctx context.Context) ([]model.CustomerRecord, error) {
	var raw string
	err := r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT value FROM app_storage WHERE key = $1`,
			CustomersKey,
		).Scan(&raw)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []model.CustomerRecord{}, nil
		}
		return nil, fmt.Errorf("load customers: %w", err)
	}

	return decodeCustomers(raw)
}

// SaveCustomers перезаписывает коллекцию клиентов целиком.
func (r *PostgresRepository) SaveCustomers(ctx context.Context, customers []model.CustomerRecord) error {
	raw, err := encodeCustomers(customers)
	if err != nil {
		return err
	}

	err = r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO app_storage (key, value, updated_at) VALUES ($1, $2, NOW())
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
			CustomersKey, raw,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("save customers: %w", err)
	}
	return nil
}

// IsInitialized сообщает, были ли уже установлены демонстрационные данные.
func (r *PostgresRepository) IsInitialized(ctx context.Context) (bool, error) {
	var raw string
	err := r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT value FROM app_storage WHERE key = $1`,
			InitializedKey,
		).Scan(&raw)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("read init flag: %w", err)
	}
	return raw == "true", nil
}

// MarkInitialized сохраняет признак установки демонстрационных данных.
func (r *PostgresRepository) MarkInitialized(ctx context.Context) error {
	err := r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO app_storage (key, value, updated_at) VALUES ($1, 'true', NOW())
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
			InitializedKey,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("mark initialized: %w", err)
	}
	return nil
}
