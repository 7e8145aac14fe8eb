package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Stewz00/login-guard/internal/config"
	"github.com/Stewz00/login-guard/internal/interfaces"
	"github.com/Stewz00/login-guard/internal/model"
	"github.com/Stewz00/login-guard/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MaxFailedAttempts is the failure count at which an account locks.
	MaxFailedAttempts = 5
	// LockDuration is how long a lock lasts once set.
	LockDuration = 10 * time.Minute
	// MinElapsedSeconds is the fastest plausible human form fill.
	MinElapsedSeconds = 2.0

	maxUpdateTries = 3
)

var (
	ErrStoreUnavailable       = errors.New("credential store unavailable")
	ErrConflictRetryExhausted = errors.New("concurrent update retries exhausted")
)

// LoginAttempt is a parsed login form submission.
type LoginAttempt struct {
	Username       string
	Password       string
	Honeypot       string
	ElapsedSeconds float64
}

type AuthService struct {
	store      interfaces.CredentialStore
	log        *slog.Logger
	bcryptCost int

	// dummyHash is compared against when the username is unknown so both
	// paths spend the same hashing time.
	dummyHash []byte
}

// NewAuthService creates a new authentication service
func NewAuthService(store interfaces.CredentialStore, cfg *config.Config, log *slog.Logger) (*AuthService, error) {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("login-guard-timing-equalizer"), cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt cost %d: %w", cost, err)
	}

	return &AuthService{
		store:      store,
		log:        log,
		bcryptCost: cost,
		dummyHash:  dummy,
	}, nil
}

// Register creates a new account with a bcrypt-hashed password
func (s *AuthService) Register(ctx context.Context, username, password string) (Outcome, error) {
	if username == "" || password == "" {
		return OutcomeInvalidRegistration, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return OutcomeInvalidRegistration, nil
	}
	if err != nil {
		return OutcomeTemporaryFailure, fmt.Errorf("hashing password: %w", err)
	}

	created, err := s.store.CreateIfAbsent(ctx, username, string(hash))
	if err != nil {
		return OutcomeTemporaryFailure, fmt.Errorf("%w: create: %w", ErrStoreUnavailable, err)
	}
	if !created {
		return OutcomeDuplicateUsername, nil
	}

	return OutcomeRegistered, nil
}

// Authenticate runs the bot checks, the lock check and password
// verification for one login attempt, then records the result.
//
// The counter update is a compare-and-update against the state that was
// read. When another attempt for the same username wins the race the record
// is read again and the new state recomputed, at most maxUpdateTries times.
func (s *AuthService) Authenticate(ctx context.Context, attempt LoginAttempt, now time.Time) (Outcome, error) {
	if attempt.Honeypot != "" {
		return OutcomeBotDetected, nil
	}
	if attempt.ElapsedSeconds < MinElapsedSeconds {
		return OutcomeSuspiciousTiming, nil
	}

	rec, err := s.store.Find(ctx, attempt.Username)
	if errors.Is(err, repository.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(attempt.Password))
		return OutcomeInvalidCredentials, nil
	}
	if err != nil {
		return OutcomeTemporaryFailure, fmt.Errorf("%w: find: %w", ErrStoreUnavailable, err)
	}

	state := rec.State()
	if state.LockedAt(now) {
		return OutcomeAccountLocked, nil
	}

	verified := s.verifyPassword(ctx, rec, attempt.Password)

	for try := 1; ; try++ {
		next := nextState(state, verified, now)

		applied, err := s.store.CompareAndUpdate(ctx, rec.Username, state, next)
		if err != nil {
			return OutcomeTemporaryFailure, fmt.Errorf("%w: update: %w", ErrStoreUnavailable, err)
		}
		if applied {
			if verified {
				return OutcomeSuccess, nil
			}
			if next.LockUntil != nil {
				s.log.WarnContext(ctx, "account locked",
					"username", rec.Username,
					"failed_attempts", next.FailedAttempts,
					"lock_until", *next.LockUntil)
			}
			return OutcomeInvalidCredentials, nil
		}

		if try >= maxUpdateTries {
			return OutcomeTemporaryFailure, fmt.Errorf("%w: username %q after %d tries", ErrConflictRetryExhausted, rec.Username, try)
		}

		rec, err = s.store.Find(ctx, attempt.Username)
		if errors.Is(err, repository.ErrUserNotFound) {
			return OutcomeInvalidCredentials, nil
		}
		if err != nil {
			return OutcomeTemporaryFailure, fmt.Errorf("%w: find: %w", ErrStoreUnavailable, err)
		}

		state = rec.State()
		if state.LockedAt(now) {
			return OutcomeAccountLocked, nil
		}
	}
}

// verifyPassword treats a malformed stored hash the same as a wrong password.
func (s *AuthService) verifyPassword(ctx context.Context, rec *model.AuthRecord, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		s.log.WarnContext(ctx, "stored password hash is unusable", "username", rec.Username, "error", err)
	}
	return err == nil
}

func nextState(current model.LockState, verified bool, now time.Time) model.LockState {
	if verified {
		return model.LockState{}
	}
	next := model.LockState{FailedAttempts: current.FailedAttempts + 1}
	if next.FailedAttempts >= MaxFailedAttempts {
		lockUntil := now.Add(LockDuration)
		next.LockUntil = &lockUntil
	}
	return next
}
