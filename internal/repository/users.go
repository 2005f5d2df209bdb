package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/procare-io/srportal/internal/database"
	"github.com/procare-io/srportal/internal/models"
)

// NewSQLStore wires every SQL repository to qb.
func NewSQLStore(qb *database.QueryBuilder) *Store {
	return &Store{
		Users:       NewSQLUserRepository(qb),
		Items:       NewSQLItemRepository(qb),
		Customers:   NewSQLCustomerRepository(qb),
		Reference:   NewSQLReferenceRepository(qb),
		Requests:    NewSQLRequestRepository(qb),
		Attachments: NewSQLAttachmentRepository(qb),
	}
}

// SQLUserRepository reads portal accounts from the users table.
type SQLUserRepository struct {
	qb *database.QueryBuilder
}

func NewSQLUserRepository(qb *database.QueryBuilder) *SQLUserRepository {
	return &SQLUserRepository{qb: qb}
}

const userColumns = `email, name, password_hash, role, customer_number, customer_name,
	country_code, is_active, last_login_date`

// GetByEmail matches the address case-insensitively and loads territories.
func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.qb.GetContext(ctx, &user,
		"SELECT "+userColumns+" FROM users WHERE LOWER(email) = LOWER(?)", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	territories := []string{}
	if err := r.qb.SelectContext(ctx, &territories,
		"SELECT territory FROM user_territories WHERE email = ? ORDER BY territory", user.Email); err != nil {
		return nil, fmt.Errorf("get user territories: %w", err)
	}
	user.Territories = territories
	return &user, nil
}

func (r *SQLUserRepository) UpdateLastLogin(ctx context.Context, email string, at time.Time) error {
	res, err := r.qb.ExecContext(ctx, "UPDATE users SET last_login_date = ? WHERE email = ?", at, email)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Create inserts a user with an already hashed password.
func (r *SQLUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.qb.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.Email, user.Name, user.Password, string(user.Role), user.CustomerNumber,
			user.CustomerName, user.CountryCode, user.IsActive, user.LastLogin); err != nil {
			return fmt.Errorf("insert user %s: %w", user.Email, err)
		}
		for _, t := range user.Territories {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO user_territories (email, territory) VALUES (?, ?)", user.Email, t); err != nil {
				return fmt.Errorf("insert territory %s: %w", t, err)
			}
		}
		return nil
	})
}
