package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procare-io/srportal/internal/database"
	"github.com/procare-io/srportal/internal/models"
)

func newMock(t *testing.T) (*database.QueryBuilder, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	qb, err := database.NewQueryBuilder(db, database.DriverPostgres)
	require.NoError(t, err)
	return qb, mock
}

func TestScope(t *testing.T) {
	req := &models.ServiceRequest{CustomerNumber: "CUST-001", Territory: "US-EAST"}

	tests := []struct {
		name  string
		scope Scope
		empty bool
		allow bool
	}{
		{"admin", Scope{All: true}, false, true},
		{"own customer", Scope{CustomerNumber: "CUST-001"}, false, true},
		{"other customer", Scope{CustomerNumber: "CUST-002"}, false, false},
		{"territory match", Scope{Territories: []string{"US-WEST", "US-EAST"}}, false, true},
		{"territory miss", Scope{Territories: []string{"DE-SOUTH"}}, false, false},
		{"nothing", Scope{}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.empty, tt.scope.Empty())
			assert.Equal(t, tt.allow, tt.scope.Allows(req))
		})
	}
}

func TestSQLUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		qb, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE LOWER(email) = LOWER($1)")).
			WithArgs("Tech@ProCare.example").
			WillReturnRows(sqlmock.NewRows([]string{
				"email", "name", "password_hash", "role", "customer_number", "customer_name",
				"country_code", "is_active", "last_login_date",
			}).AddRow("tech@procare.example", "Sam Ortiz", "hash", "SalesTech", "", "", "US", true, nil))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT territory FROM user_territories WHERE email = $1")).
			WithArgs("tech@procare.example").
			WillReturnRows(sqlmock.NewRows([]string{"territory"}).AddRow("US-EAST").AddRow("US-WEST"))

		user, err := NewSQLUserRepository(qb).GetByEmail(ctx, "Tech@ProCare.example")
		require.NoError(t, err)
		assert.Equal(t, models.RoleSalesTech, user.Role)
		assert.Equal(t, []string{"US-EAST", "US-WEST"}, user.Territories)
		assert.Nil(t, user.LastLogin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		qb, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
			WillReturnRows(sqlmock.NewRows([]string{"email"}))

		_, err := NewSQLUserRepository(qb).GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSQLUserRepository_UpdateLastLogin(t *testing.T) {
	qb, mock := newMock(t)
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login_date = $1 WHERE email = $2")).
		WithArgs(at, "ghost@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewSQLUserRepository(qb).UpdateLastLogin(context.Background(), "ghost@example.com", at)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLItemRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("search items groups by item number", func(t *testing.T) {
		qb, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT item_number, item_description, MIN(product_family) AS product_family, COUNT(*) AS instance_count FROM items " +
				"WHERE (LOWER(item_number) LIKE $1 OR LOWER(item_description) LIKE $2) " +
				"GROUP BY item_number, item_description ORDER BY item_number LIMIT $3")).
			WithArgs("%surg%", "%surg%", 10).
			WillReturnRows(sqlmock.NewRows([]string{"item_number", "item_description", "product_family", "instance_count"}).
				AddRow("ITEM-SUR-001", "Advanced Surgical System Model X200", "Surgical Systems", 3))

		items, err := NewSQLItemRepository(qb).SearchItems(ctx, "Surg", 10)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 3, items[0].InstanceCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("search lots", func(t *testing.T) {
		qb, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE lot_number <> '' AND (LOWER(lot_number) LIKE $1)")).
			WithArgs("%lot-2024%", 10).
			WillReturnRows(sqlmock.NewRows([]string{"lot_number", "item_number", "item_description", "instance_count"}).
				AddRow("LOT-2024-01", "ITEM-SUR-001", "Advanced Surgical System Model X200", 2))

		lots, err := NewSQLItemRepository(qb).SearchLots(ctx, "LOT-2024", 10)
		require.NoError(t, err)
		require.Len(t, lots, 1)
		assert.Equal(t, "LOT-2024-01", lots[0].LotNumber)
	})

	t.Run("get by serial loads eligibility", func(t *testing.T) {
		qb, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM items WHERE serial_number = $1")).
			WithArgs("SN-X200-0001").
			WillReturnRows(sqlmock.NewRows([]string{
				"item_number", "item_description", "serial_number", "lot_number", "product_family",
				"product_line", "is_serviceable", "repairability_status", "install_base_status",
			}).AddRow("ITEM-SUR-001", "Advanced Surgical System Model X200", "SN-X200-0001", "LOT-2024-01",
				"Surgical Systems", "Robotics", true, "REPAIRABLE", "ACTIVE"))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT country_code FROM item_eligibility WHERE item_number = $1")).
			WithArgs("ITEM-SUR-001").
			WillReturnRows(sqlmock.NewRows([]string{"country_code"}).AddRow("DE").AddRow("US"))

		item, err := NewSQLItemRepository(qb).GetBySerial(ctx, "SN-X200-0001")
		require.NoError(t, err)
		assert.True(t, item.IsServiceable)
		assert.Equal(t, []string{"DE", "US"}, item.EligibilityCountries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown item number", func(t *testing.T) {
		qb, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM items WHERE item_number = $1 ORDER BY id LIMIT 1")).
			WillReturnRows(sqlmock.NewRows([]string{"item_number"}))

		_, err := NewSQLItemRepository(qb).GetByItemNumber(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSQLCustomerRepository_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("empty territory list short-circuits", func(t *testing.T) {
		qb, mock := newMock(t)
		out, err := NewSQLCustomerRepository(qb).Search(ctx, "st", []string{}, 10)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("restricted to territories", func(t *testing.T) {
		qb, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("AND territory IN ($3, $4) ORDER BY customer_name LIMIT $5")).
			WithArgs("%st%", "%st%", "US-EAST", "US-WEST", 10).
			WillReturnRows(sqlmock.NewRows([]string{"customer_number", "customer_name", "territory", "country_code"}).
				AddRow("CUST-001", "St. Mary's Medical Center", "US-EAST", "US"))

		out, err := NewSQLCustomerRepository(qb).Search(ctx, "St", []string{"US-EAST", "US-WEST"}, 10)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "CUST-001", out[0].CustomerNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLReferenceRepository_Countries(t *testing.T) {
	qb, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM countries WHERE is_active = $1 ORDER BY country_name")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"country_code", "country_name", "default_language"}).
			AddRow("DE", "Germany", "de").
			AddRow("GB", "United Kingdom", "en"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM country_languages")).
		WillReturnRows(sqlmock.NewRows([]string{"country_code", "language_code"}).
			AddRow("DE", "de").AddRow("DE", "en"))

	countries, err := NewSQLReferenceRepository(qb).Countries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 2)
	assert.Equal(t, []string{"de", "en"}, countries[0].SupportedLanguages)
	assert.Equal(t, []string{}, countries[1].SupportedLanguages)
}

func TestSQLRequestRepository_Create(t *testing.T) {
	qb, mock := newMock(t)
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	req := &models.ServiceRequest{
		RequestCode: "SR-1001", RequestType: models.RequestTypeSerial, ContactEmail: "a@b.example",
		ContactName: "A", ContactPhone: "1", CountryCode: "US", MainReason: "Other",
		Status: models.StatusSubmitted, UrgencyLevel: models.UrgencyNormal,
		SubmittedByEmail: "a@b.example", SubmittedDate: now, LastModifiedDate: now,
	}
	activity := &models.ActivityLog{ActivityType: models.ActivityCreated, PerformedBy: "a@b.example", PerformedDate: now}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO service_requests (request_code, request_type,")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_log")).
		WithArgs(int64(42), models.ActivityCreated, "", "a@b.example", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, NewSQLRequestRepository(qb).Create(context.Background(), req, activity))
	assert.Equal(t, int64(42), req.ID)
	assert.Equal(t, int64(42), activity.RequestID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRequestRepository_CreateMySQLDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	qb, err := database.NewQueryBuilder(db, database.DriverMySQL)
	require.NoError(t, err)

	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	req := &models.ServiceRequest{
		RequestCode:      "SR-1001",
		RequestType:      models.RequestTypeGeneral,
		Status:           models.StatusSubmitted,
		SubmittedDate:    now,
		LastModifiedDate: now,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO service_requests (request_code, request_type,")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'SR-1001'"})
	mock.ExpectRollback()

	err = NewSQLRequestRepository(qb).Create(context.Background(), req, nil)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Zero(t, req.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRequestRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("empty scope sees nothing", func(t *testing.T) {
		qb, mock := newMock(t)
		out, err := NewSQLRequestRepository(qb).List(ctx, Scope{}, models.RequestFilter{})
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("customer scope with filters", func(t *testing.T) {
		qb, mock := newMock(t)
		from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta(
			"WHERE customer_number = $1 AND status = $2 AND submitted_date >= $3 AND submitted_date < $4 " +
				"AND (LOWER(serial_number) LIKE $5) ORDER BY submitted_date DESC, id DESC")).
			WithArgs("CUST-001", "Submitted", from, to.Add(24*time.Hour), "%x200%").
			WillReturnRows(sqlmock.NewRows([]string{"id", "request_code", "status"}).
				AddRow(7, "SR-1007", "Submitted"))

		out, err := NewSQLRequestRepository(qb).List(ctx, Scope{CustomerNumber: "CUST-001"}, models.RequestFilter{
			Status: models.StatusSubmitted, FromDate: &from, ToDate: &to, SerialNumber: "X200",
		})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "SR-1007", out[0].RequestCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("territory scope", func(t *testing.T) {
		qb, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE territory IN ($1, $2) ORDER BY")).
			WithArgs("US-EAST", "US-WEST").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewSQLRequestRepository(qb).List(ctx, Scope{Territories: []string{"US-EAST", "US-WEST"}}, models.RequestFilter{})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLRequestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC)

	t.Run("records activity", func(t *testing.T) {
		qb, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE service_requests SET status = $1, last_modified_date = $2 WHERE id = $3")).
			WithArgs("Closed", at, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_log")).
			WithArgs(int64(5), models.ActivityStatusChanged, "Status changed to Closed", "tech@procare.example", at).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := NewSQLRequestRepository(qb).UpdateStatus(ctx, 5, models.StatusClosed, &models.ActivityLog{
			ActivityType: models.ActivityStatusChanged, ActivityDescription: "Status changed to Closed",
			PerformedBy: "tech@procare.example", PerformedDate: at,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing request rolls back", func(t *testing.T) {
		qb, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE service_requests")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := NewSQLRequestRepository(qb).UpdateStatus(ctx, 99, models.StatusClosed, nil)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLRequestRepository_AddActivity(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	qb, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_log")).
		WithArgs(int64(7), models.ActivityAttachment, "Attachment added: scan.pdf", "tech@procare.example", at).
		WillReturnResult(sqlmock.NewResult(3, 1))

	err := NewSQLRequestRepository(qb).AddActivity(ctx, &models.ActivityLog{
		RequestID: 7, ActivityType: models.ActivityAttachment, ActivityDescription: "Attachment added: scan.pdf",
		PerformedBy: "tech@procare.example", PerformedDate: at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLAttachmentRepository(t *testing.T) {
	ctx := context.Background()
	qb, mock := newMock(t)
	repo := NewSQLAttachmentRepository(qb)
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	a := &models.Attachment{RequestID: 3, FileName: "photo.jpg", BlobPath: "3/abc_photo.jpg", FileSize: 10, ContentType: "image/jpeg", UploadedBy: "x@y.example", UploadedDate: at}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attachments")).
		WithArgs(int64(3), "photo.jpg", "3/abc_photo.jpg", int64(10), "image/jpeg", "x@y.example", at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	require.NoError(t, repo.Add(ctx, a))
	assert.Equal(t, int64(11), a.ID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attachments WHERE blob_path = $1")).
		WithArgs("3/missing.pdf").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err := repo.GetByBlobPath(ctx, "3/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
