package interfaces

import (
	"context"

	"github.com/Stewz00/login-guard/internal/model"
)

// CredentialStore defines the persistence operations the authenticator and
// registration flow rely on. Implementations must make CreateIfAbsent and
// CompareAndUpdate atomic with respect to concurrent callers.
type CredentialStore interface {
	// Find returns the record for username or repository.ErrUserNotFound.
	Find(ctx context.Context, username string) (*model.AuthRecord, error)
	// CreateIfAbsent inserts a fresh record and reports false if the
	// username is already taken.
	CreateIfAbsent(ctx context.Context, username, passwordHash string) (bool, error)
	// CompareAndUpdate writes next only if the stored state still equals
	// expected. It reports false when the row changed or no longer exists.
	CompareAndUpdate(ctx context.Context, username string, expected, next model.LockState) (bool, error)
}
