package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser(t *testing.T) {
	t.Run("SetPassword hashes password", func(t *testing.T) {
		user := &User{}
		plainPassword := "mySecurePassword123"

		err := user.SetPassword(plainPassword)
		require.NoError(t, err)

		assert.NotEqual(t, plainPassword, user.Password)
		assert.Greater(t, len(user.Password), len(plainPassword))
	})

	t.Run("CheckPassword validates correct password", func(t *testing.T) {
		user := &User{}
		require.NoError(t, user.SetPassword("correctPassword123"))

		assert.True(t, user.CheckPassword("correctPassword123"))
		assert.False(t, user.CheckPassword("wrongPassword"))
		assert.False(t, user.CheckPassword(""))
	})

	t.Run("Profile never returns nil territories", func(t *testing.T) {
		user := &User{Email: "tech@example.com", Role: RoleSalesTech}
		p := user.Profile()
		assert.NotNil(t, p.Territories)
		assert.Empty(t, p.Territories)
		assert.Equal(t, RoleSalesTech, p.Role)
	})
}

func TestUserRole(t *testing.T) {
	tests := []struct {
		role  UserRole
		valid bool
		staff bool
	}{
		{RoleCustomer, true, false},
		{RoleSalesTech, true, true},
		{RoleAdmin, true, true},
		{UserRole("Agent"), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.role.Valid())
			assert.Equal(t, tt.staff, tt.role.IsStaff())
		})
	}
}

func TestRequestEnums(t *testing.T) {
	assert.True(t, RequestTypeGeneral.Valid())
	assert.False(t, RequestType("Lot").Valid())
	assert.True(t, UrgencyCritical.Valid())
	assert.False(t, Urgency("Low").Valid())
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, RequestStatus("Open").Valid())
}
