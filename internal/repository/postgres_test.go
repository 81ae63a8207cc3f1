package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

func newTestPostgres(t *testing.T) *PostgresRepository {
	t.Helper()

	dsn := os.Getenv("DATABASE_URI")
	if dsn == "" {
		t.Skip("DATABASE_URI is not set")
	}

	repo, err := NewPostgresRepository(dsn)
	require.NoError(t, err)

	truncate := func() {
		_, err := repo.pool.Exec(context.Background(),
			`DELETE FROM app_storage WHERE key = ANY($1)`,
			[]string{CustomersKey, InitializedKey},
		)
		require.NoError(t, err)
	}
	truncate()
	t.Cleanup(func() {
		truncate()
		_ = repo.Close()
	})

	return repo
}

func TestPostgresRepository_EmptyStorage(t *testing.T) {
	repo := newTestPostgres(t)
	ctx := context.Background()

	customers, err := repo.LoadCustomers(ctx)
	require.NoError(t, err)
	assert.Empty(t, customers)

	initialized, err := repo.IsInitialized(ctx)
	require.NoError(t, err)
	assert.False(t, initialized)
}

func TestPostgresRepository_SaveLoadAndInitialize(t *testing.T) {
	repo := newTestPostgres(t)
	ctx := context.Background()

	customers := []model.CustomerRecord{
		{
			ID:          "1",
			Name:        "Rajesh Kumar",
			Phone:       "+919876543210",
			ServiceDate: "2024-06-10",
			ServiceType: model.ServiceTypeBoth,
			Price:       2500,
			History: []model.ServiceVisit{
				{Date: "2024-01-15", ServiceType: model.ServiceTypeSump, Price: 1000, PaymentStatus: model.PaymentStatusPaid},
			},
		},
	}

	require.NoError(t, repo.SaveCustomers(ctx, customers))

	customers[0].Price = 2700
	require.NoError(t, repo.SaveCustomers(ctx, customers))

	loaded, err := repo.LoadCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, customers, loaded)

	require.NoError(t, repo.MarkInitialized(ctx))
	require.NoError(t, repo.MarkInitialized(ctx))

	initialized, err := repo.IsInitialized(ctx)
	require.NoError(t, err)
	assert.True(t, initialized)
}
