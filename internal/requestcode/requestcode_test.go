package requestcode

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procare-io/srportal/internal/database"
)

func TestSequential(t *testing.T) {
	ctx := context.Background()
	g := NewSequential("SR", 1001, NewMemoryStore())

	a, err := g.Next(ctx, "US")
	require.NoError(t, err)
	b, err := g.Next(ctx, "DE")
	require.NoError(t, err)

	assert.Equal(t, "SR-1001", a)
	assert.Equal(t, "SR-1002", b)
}

func TestCountryDate(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC)
	g := NewCountryDate("SR", NewMemoryStore(), func() time.Time { return day })

	a, err := g.Next(ctx, "us")
	require.NoError(t, err)
	b, err := g.Next(ctx, "US")
	require.NoError(t, err)
	c, err := g.Next(ctx, "DE")
	require.NoError(t, err)

	assert.Equal(t, "SR-US-20261019-00001", a)
	assert.Equal(t, "SR-US-20261019-00002", b)
	assert.Equal(t, "SR-DE-20261019-00001", c)

	day = day.Add(time.Hour)
	d, err := g.Next(ctx, "US")
	require.NoError(t, err)
	assert.Equal(t, "SR-US-20261020-00001", d, "counter restarts each day")

	_, err = g.Next(ctx, "")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	store := NewMemoryStore()
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"sequential", FormatSequential, false},
		{"", FormatSequential, false},
		{"Country-Date", FormatCountryDate, false},
		{"random", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			g, err := Resolve(tt.format, "SR", 1, store)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Name())
		})
	}
}

func TestMemoryStoreConcurrentUnique(t *testing.T) {
	g := NewSequential("SR", 1, NewMemoryStore())
	const n = 50

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := g.Next(context.Background(), "US")
			assert.NoError(t, err)
			mu.Lock()
			seen[code] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestSQLStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	qb, err := database.NewQueryBuilder(db, database.DriverPostgres)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO request_code_counter (counter_key, counter)")).
		WithArgs("SR", int64(1001)).
		WillReturnRows(sqlmock.NewRows([]string{"counter"}).AddRow(1001))
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (counter_key) DO UPDATE")).
		WithArgs("SR", int64(1001)).
		WillReturnRows(sqlmock.NewRows([]string{"counter"}).AddRow(1002))

	g := NewSequential("SR", 1001, NewSQLStore(qb))
	a, err := g.Next(context.Background(), "US")
	require.NoError(t, err)
	b, err := g.Next(context.Background(), "US")
	require.NoError(t, err)

	assert.Equal(t, "SR-1001", a)
	assert.Equal(t, "SR-1002", b)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreMySQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	qb, err := database.NewQueryBuilder(db, database.DriverMySQL)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE counter = LAST_INSERT_ID(counter + 1)")).
		WithArgs("SR", int64(1001)).
		WillReturnResult(sqlmock.NewResult(1001, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO request_code_counter")).
		WithArgs("SR", int64(1001)).
		WillReturnResult(sqlmock.NewResult(1002, 2))

	g := NewSequential("SR", 1001, NewSQLStore(qb))
	a, err := g.Next(context.Background(), "US")
	require.NoError(t, err)
	b, err := g.Next(context.Background(), "US")
	require.NoError(t, err)

	assert.Equal(t, "SR-1001", a)
	assert.Equal(t, "SR-1002", b)
	assert.NoError(t, mock.ExpectationsWereMet())
}
