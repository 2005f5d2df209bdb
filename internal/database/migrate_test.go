package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	for _, driver := range []string{DriverPostgres, DriverMySQL, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			migrations, err := Migrations(driver)
			require.NoError(t, err)
			require.NotEmpty(t, migrations)
			assert.Equal(t, "0001_init", migrations[0].Version)
			for _, table := range []string{"users", "service_requests", "activity_log", "attachments", "request_code_counter"} {
				assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS "+table+" (")
			}
		})
	}

	_, err := Migrations("mssql")
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	t.Run("applies pending migrations", func(t *testing.T) {
		qb, mock := newMockBuilder(t, DriverSQLite)
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs("0001_init", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		n, err := Migrate(ctx, qb)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips applied migrations", func(t *testing.T) {
		qb, mock := newMockBuilder(t, DriverPostgres)
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0001_init"))

		n, err := Migrate(ctx, qb)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil connection", func(t *testing.T) {
		_, err := Migrate(ctx, nil)
		assert.Error(t, err)
	})
}
