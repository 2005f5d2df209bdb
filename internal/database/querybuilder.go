package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// QueryBuilder wraps sqlx so that queries are written once with ? placeholders
// and rebound for the connected driver.
type QueryBuilder struct {
	db         *sqlx.DB
	driverName string
}

// NewQueryBuilder wraps an existing *sql.DB opened with driverName.
func NewQueryBuilder(db *sql.DB, driverName string) (*QueryBuilder, error) {
	if sqlx.BindType(driverName) == sqlx.UNKNOWN {
		return nil, fmt.Errorf("unsupported database driver: %s", driverName)
	}
	return &QueryBuilder{
		db:         sqlx.NewDb(db, driverName),
		driverName: driverName,
	}, nil
}

// DB returns the underlying sqlx.DB for advanced operations.
func (qb *QueryBuilder) DB() *sqlx.DB {
	return qb.db
}

func (qb *QueryBuilder) Driver() string {
	return qb.driverName
}

func (qb *QueryBuilder) IsPostgres() bool {
	return qb.driverName == DriverPostgres
}

func (qb *QueryBuilder) IsMySQL() bool {
	return qb.driverName == DriverMySQL
}

func (qb *QueryBuilder) Close() error {
	return qb.db.Close()
}

func (qb *QueryBuilder) PingContext(ctx context.Context) error {
	return qb.db.PingContext(ctx)
}

// Rebind converts ? placeholders to the driver's bind style.
func (qb *QueryBuilder) Rebind(query string) string {
	return qb.db.Rebind(query)
}

// SelectContext scans all rows into dest (slice of structs).
func (qb *QueryBuilder) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return qb.db.SelectContext(ctx, dest, qb.Rebind(query), args...)
}

// GetContext scans a single row into dest.
func (qb *QueryBuilder) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return qb.db.GetContext(ctx, dest, qb.Rebind(query), args...)
}

func (qb *QueryBuilder) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return qb.db.ExecContext(ctx, qb.Rebind(query), args...)
}

func (qb *QueryBuilder) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return qb.db.QueryRowContext(ctx, qb.Rebind(query), args...)
}

// InsertID runs an INSERT without a RETURNING clause and returns the id the
// database generated. MySQL has no RETURNING and reports it via LastInsertId.
func (qb *QueryBuilder) InsertID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return insertID(ctx, qb.driverName, qb.db, query, args...)
}

type execQueryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	Rebind(query string) string
}

func insertID(ctx context.Context, driver string, db execQueryer, query string, args ...interface{}) (int64, error) {
	if driver == DriverMySQL {
		res, err := db.ExecContext(ctx, db.Rebind(query), args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	var id int64
	err := db.QueryRowContext(ctx, db.Rebind(query+" RETURNING id"), args...).Scan(&id)
	return id, err
}

// In expands slice arguments for IN clauses and rebinds the result.
// Example: In("SELECT * FROM users WHERE id IN (?)", []int{1,2,3}).
func (qb *QueryBuilder) In(query string, args ...interface{}) (string, []interface{}, error) {
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return qb.Rebind(q), a, nil
}

// WithTx runs fn inside a transaction, rolling back when fn fails.
func (qb *QueryBuilder) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	stx, err := qb.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&Tx{tx: stx, driverName: qb.driverName}); err != nil {
		_ = stx.Rollback()
		return err
	}
	if err := stx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Tx is the transactional counterpart of QueryBuilder.
type Tx struct {
	tx         *sqlx.Tx
	driverName string
}

func (t *Tx) InsertID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return insertID(ctx, t.driverName, t.tx, query, args...)
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.tx.Rebind(query), args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.tx.Rebind(query), args...)
}

func (t *Tx) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return t.tx.GetContext(ctx, dest, t.tx.Rebind(query), args...)
}

// SelectBuilder provides a fluent interface for building SELECT queries safely.
type SelectBuilder struct {
	qb        *QueryBuilder
	columns   []string
	table     string
	joins     []string
	where     []string
	args      []interface{}
	groupBy   []string
	orderBy   []string
	limit     int
	offset    int
	hasLimit  bool
	hasOffset bool
}

func (qb *QueryBuilder) NewSelect(columns ...string) *SelectBuilder {
	return &SelectBuilder{
		qb:      qb,
		columns: columns,
	}
}

func (sb *SelectBuilder) From(table string) *SelectBuilder {
	sb.table = table
	return sb
}

func (sb *SelectBuilder) LeftJoin(join string) *SelectBuilder {
	sb.joins = append(sb.joins, "LEFT JOIN "+join)
	return sb
}

// Where adds a condition; conditions are joined with AND.
func (sb *SelectBuilder) Where(condition string, args ...interface{}) *SelectBuilder {
	sb.where = append(sb.where, condition)
	sb.args = append(sb.args, args...)
	return sb
}

// WhereIn adds a column IN (...) condition expanded by sqlx.In.
func (sb *SelectBuilder) WhereIn(column string, values interface{}) *SelectBuilder {
	sb.where = append(sb.where, column+" IN (?)")
	sb.args = append(sb.args, values)
	return sb
}

// WhereLike matches any of columns case-insensitively against %term%.
func (sb *SelectBuilder) WhereLike(term string, columns ...string) *SelectBuilder {
	if len(columns) == 0 {
		return sb
	}
	pattern := "%" + strings.ToLower(term) + "%"
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = "LOWER(" + col + ") LIKE ?"
		sb.args = append(sb.args, pattern)
	}
	sb.where = append(sb.where, "("+strings.Join(parts, " OR ")+")")
	return sb
}

func (sb *SelectBuilder) GroupBy(columns ...string) *SelectBuilder {
	sb.groupBy = append(sb.groupBy, columns...)
	return sb
}

func (sb *SelectBuilder) OrderBy(columns ...string) *SelectBuilder {
	sb.orderBy = append(sb.orderBy, columns...)
	return sb
}

func (sb *SelectBuilder) Limit(limit int) *SelectBuilder {
	sb.limit = limit
	sb.hasLimit = true
	return sb
}

func (sb *SelectBuilder) Offset(offset int) *SelectBuilder {
	sb.offset = offset
	sb.hasOffset = true
	return sb
}

// ToSQL builds the SQL query and returns it with arguments.
func (sb *SelectBuilder) ToSQL() (string, []interface{}, error) {
	if sb.table == "" {
		return "", nil, fmt.Errorf("table not specified")
	}

	var query strings.Builder
	query.WriteString("SELECT ")
	if len(sb.columns) == 0 {
		query.WriteString("*")
	} else {
		query.WriteString(strings.Join(sb.columns, ", "))
	}
	query.WriteString(" FROM ")
	query.WriteString(sb.table)

	for _, join := range sb.joins {
		query.WriteString(" ")
		query.WriteString(join)
	}

	allArgs := make([]interface{}, 0, len(sb.args)+2)
	allArgs = append(allArgs, sb.args...)

	if len(sb.where) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(sb.where, " AND "))
	}

	if len(sb.groupBy) > 0 {
		query.WriteString(" GROUP BY ")
		query.WriteString(strings.Join(sb.groupBy, ", "))
	}

	if len(sb.orderBy) > 0 {
		query.WriteString(" ORDER BY ")
		query.WriteString(strings.Join(sb.orderBy, ", "))
	}

	if sb.hasLimit {
		query.WriteString(" LIMIT ?")
		allArgs = append(allArgs, sb.limit)
	}

	if sb.hasOffset {
		query.WriteString(" OFFSET ?")
		allArgs = append(allArgs, sb.offset)
	}

	return sb.qb.In(query.String(), allArgs...)
}

// SelectContext executes the query and scans into dest.
func (sb *SelectBuilder) SelectContext(ctx context.Context, dest interface{}) error {
	query, args, err := sb.ToSQL()
	if err != nil {
		return err
	}
	return sb.qb.db.SelectContext(ctx, dest, query, args...)
}

// GetContext executes the query expecting a single row.
func (sb *SelectBuilder) GetContext(ctx context.Context, dest interface{}) error {
	query, args, err := sb.ToSQL()
	if err != nil {
		return err
	}
	return sb.qb.db.GetContext(ctx, dest, query, args...)
}
