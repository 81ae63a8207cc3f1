package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func TestSQLiteRepository_EmptyStorage(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	customers, err := repo.LoadCustomers(ctx)
	require.NoError(t, err)
	assert.Empty(t, customers)

	initialized, err := repo.IsInitialized(ctx)
	require.NoError(t, err)
	assert.False(t, initialized)
}

func TestSQLiteRepository_SaveAndLoad(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	sentAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	in := []model.CustomerRecord{
		{
			ID:          "1",
			Name:        "Rajesh Kumar",
			Phone:       "+919876543210",
			ServiceDate: "2024-06-01",
			ServiceType: model.ServiceTypeTank,
			Price:       1500,
			History: []model.ServiceVisit{
				{
					Date:           "2024-01-01",
					ServiceType:    model.ServiceTypeSump,
					Price:          1000,
					PaymentStatus:  model.PaymentStatusPaid,
					ReminderSent:   true,
					ReminderSentAt: &sentAt,
				},
			},
		},
	}

	require.NoError(t, repo.SaveCustomers(ctx, in))

	out, err := repo.LoadCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// Повторное сохранение перезаписывает коллекцию.
	require.NoError(t, repo.SaveCustomers(ctx, in[:0]))
	out, err = repo.LoadCustomers(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSQLiteRepository_MarkInitialized(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, repo.MarkInitialized(ctx))
	require.NoError(t, repo.MarkInitialized(ctx))

	initialized, err := repo.IsInitialized(ctx)
	require.NoError(t, err)
	assert.True(t, initialized)
}

func TestSQLiteRepository_CorruptData(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, repo.put(ctx, CustomersKey, "{not json"))

	_, err := repo.LoadCustomers(ctx)
	assert.ErrorIs(t, err, ErrCorruptData)
}
