// Package repository declares the storage interfaces used by the service
// layer. Implementations live in subpackages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/code-translator/internal/model"
)

// ListOptions controls pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository stores accounts.
type UserRepository interface {
	// Upsert inserts or refreshes a GitHub account keyed by GitHubID.
	Upsert(ctx context.Context, user *model.User) error
	// CreateLocal inserts a password account. It returns apperror.ErrConflict
	// when the login is already taken by another local account.
	CreateLocal(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetLocalUserByLogin(ctx context.Context, login string) (*model.User, error)
}

// ExecutionRepository stores the script execution audit log.
type ExecutionRepository interface {
	RecordExecution(ctx context.Context, rec *model.ExecutionRecord) error
	ListExecutions(ctx context.Context, userID string, opts ListOptions) ([]model.ExecutionRecord, error)
}
