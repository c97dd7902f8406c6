package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upb/llm-control-plane/dashboard/models"
	"github.com/upb/llm-control-plane/dashboard/repositories"
	"go.uber.org/zap"
)

const userColumns = `id, email, name, cognito_sub, org_id, role, created_at, updated_at`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a user. Two first logins racing for the same subject leave one row.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (cognito_sub) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.CognitoSub,
		user.OrgID,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug("user created", zap.String("id", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// GetByCognitoSub retrieves a user by Cognito subject
func (r *UserRepository) GetByCognitoSub(ctx context.Context, cognitoSub string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE cognito_sub = $1`
	return r.getOne(ctx, query, cognitoSub, "cognito_sub "+cognitoSub)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}, desc string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.CognitoSub,
		&user.OrgID,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with %s: %w", desc, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
