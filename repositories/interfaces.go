package repositories

import (
	"context"
	"errors"

	"github.com/upb/llm-control-plane/dashboard/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// UserRepository reads user records for the layout and provisions them on first login
type UserRepository interface {
	// GetByCognitoSub retrieves a user by Cognito subject
	GetByCognitoSub(ctx context.Context, cognitoSub string) (*models.User, error)

	// Create inserts a user; an existing row for the same Cognito subject is left untouched
	Create(ctx context.Context, user *models.User) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users UserRepository
}
