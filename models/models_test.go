package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	orgID := uuid.New()

	user := NewUser("ada@example.com", "Ada", "cognito-sub", orgID, RoleMember)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "cognito-sub", user.CognitoSub)
	assert.Equal(t, orgID, user.OrgID)
	assert.Equal(t, RoleMember, user.Role)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"admin", &User{Role: RoleAdmin}, true},
		{"member", &User{Role: RoleMember}, false},
		{"viewer", &User{Role: RoleViewer}, false},
		{"unknown role", &User{Role: "owner"}, false},
		{"nil user", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.IsAdmin())
		})
	}
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada", (&User{Name: "Ada", Email: "ada@example.com"}).DisplayName())
	assert.Equal(t, "ada@example.com", (&User{Email: "ada@example.com"}).DisplayName())

	var nilUser *User
	assert.Empty(t, nilUser.DisplayName())
}

func TestUserRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleMember.Valid())
	assert.True(t, RoleViewer.Valid())
	assert.False(t, UserRole("superuser").Valid())
	assert.False(t, UserRole("").Valid())
}

func TestUser_JSONOmitsNothingUnexpected(t *testing.T) {
	user := NewUser("ada@example.com", "Ada", "sub", uuid.New(), RoleAdmin)

	data, err := json.Marshal(user)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "admin", decoded["role"])
	assert.Equal(t, "Ada", decoded["name"])
	assert.Contains(t, decoded, "cognito_sub")
}
