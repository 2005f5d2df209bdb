package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	Email          string     `json:"email" db:"email"`
	Name           string     `json:"name" db:"name"`
	Password       string     `json:"-" db:"password_hash"` // Never expose in JSON
	Role           UserRole   `json:"role" db:"role"`
	CustomerNumber string     `json:"customer_number,omitempty" db:"customer_number"`
	CustomerName   string     `json:"customer_name,omitempty" db:"customer_name"`
	CountryCode    string     `json:"country_code,omitempty" db:"country_code"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	LastLogin      *time.Time `json:"last_login,omitempty" db:"last_login_date"`
	Territories    []string   `json:"territories" db:"-"`
}

type UserRole string

const (
	RoleAdmin     UserRole = "Admin"
	RoleSalesTech UserRole = "SalesTech"
	RoleCustomer  UserRole = "Customer"
)

// Valid reports whether r is one of the known portal roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleSalesTech, RoleCustomer:
		return true
	}
	return false
}

// IsStaff is true for roles that act on behalf of customers.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleSalesTech
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Profile is the identity returned by login and /api/auth/me.
type Profile struct {
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Role           UserRole `json:"role"`
	CustomerNumber string   `json:"customer_number,omitempty"`
	CustomerName   string   `json:"customer_name,omitempty"`
	CountryCode    string   `json:"country_code,omitempty"`
	Territories    []string `json:"territories"`
}

func (u *User) Profile() Profile {
	territories := u.Territories
	if territories == nil {
		territories = []string{}
	}
	return Profile{
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		CustomerNumber: u.CustomerNumber,
		CustomerName:   u.CustomerName,
		CountryCode:    u.CountryCode,
		Territories:    territories,
	}
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the profile plus a bearer token for later calls.
type LoginResponse struct {
	Profile
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
