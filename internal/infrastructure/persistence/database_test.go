package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
)

// newMockDatabase creates a Database over a mocked postgres connection.
// Pings are monitored, so the ping gorm issues on open is expected up front.
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := Open(dialector, nil, false)
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()
		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping failure is returned", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		err := db.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.MaxOpenConnections)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
	assert.Equal(t, int64(0), stats.WaitCount)
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_UpsertOrder_Postgres(t *testing.T) {
	merchantID := uuid.New()
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	orderColumns := []string{"id", "merchant_id", "shopify_order_id", "shopify_name", "total_price", "currency_code",
		"financial_status", "fulfillment_status", "shopify_created_at", "created_at", "updated_at"}

	t.Run("lost insert race returns the winner", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(db.DB)
		winnerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE shopify_order_id = \$1`).
			WillReturnRows(sqlmock.NewRows(orderColumns))
		mock.ExpectExec(`INSERT INTO "orders"`).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE shopify_order_id = \$1`).
			WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(
				winnerID.String(), merchantID.String(), "gid://shopify/Order/1", "#1001", "42.0000", "AUD",
				"PAID", "unknown", createdAt, createdAt, createdAt))

		stored, created, err := repo.UpsertOrder(context.Background(), newTestOrder(merchantID, "gid://shopify/Order/1", createdAt, "42"))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, winnerID, stored.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("read failure is a persistence error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(db.DB)

		mock.ExpectQuery(`SELECT \* FROM "orders"`).WillReturnError(errors.New("connection reset"))

		_, _, err := repo.UpsertOrder(context.Background(), newTestOrder(merchantID, "gid://shopify/Order/1", createdAt, "42"))
		assert.ErrorIs(t, err, integration.ErrPersistence)
		assert.False(t, errors.Is(err, integration.ErrRemoteFetch))
	})

	t.Run("item unique violation is a duplicate record", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(db.DB)

		mock.ExpectExec(`INSERT INTO "order_items"`).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.CreateOrderItem(context.Background(), newTestItem(uuid.New(), "gid://shopify/LineItem/1"))
		assert.ErrorIs(t, err, integration.ErrDuplicateRecord)
	})
}
