package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Stewz00/login-guard/internal/database"
	"github.com/Stewz00/login-guard/internal/interfaces"
	"github.com/Stewz00/login-guard/internal/model"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// Common errors that can be returned by the repository
var (
	ErrUserNotFound = errors.New("user not found")
)

const uniqueViolation = "23505"

// CredentialRepository implements the CredentialStore interface on PostgreSQL
type CredentialRepository struct {
	db      *database.DB
	timeout time.Duration
}

// Verify that CredentialRepository implements CredentialStore interface
var _ interfaces.CredentialStore = (*CredentialRepository)(nil)

// NewCredentialRepository creates a store whose queries each run under the given timeout
func NewCredentialRepository(db *database.DB, timeout time.Duration) *CredentialRepository {
	return &CredentialRepository{db: db, timeout: timeout}
}

func (r *CredentialRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Find retrieves the auth record for a username
func (r *CredentialRepository) Find(ctx context.Context, username string) (*model.AuthRecord, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rec model.AuthRecord
	err := r.db.Pool.QueryRow(ctx,
		`SELECT username, password_hash, failed_attempts, lock_until, created_at
		 FROM users
		 WHERE username = $1`,
		username).Scan(&rec.Username, &rec.PasswordHash, &rec.FailedAttempts, &rec.LockUntil, &rec.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// CreateIfAbsent inserts a new record with a zeroed lock state. The primary key
// on username decides races between concurrent registrations.
func (r *CredentialRepository) CreateIfAbsent(ctx context.Context, username, passwordHash string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO users (username, password_hash, failed_attempts, lock_until)
		 VALUES ($1, $2, 0, NULL)`,
		username, passwordHash)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// CompareAndUpdate applies next only while the row still holds expected
func (r *CredentialRepository) CompareAndUpdate(ctx context.Context, username string, expected, next model.LockState) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE users
		 SET failed_attempts = $4,
		     lock_until = $5
		 WHERE username = $1
		   AND failed_attempts = $2
		   AND lock_until IS NOT DISTINCT FROM $3::timestamptz`,
		username, expected.FailedAttempts, expected.LockUntil, next.FailedAttempts, next.LockUntil)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
