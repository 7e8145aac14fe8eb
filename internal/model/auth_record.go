package model

import "time"

// AuthRecord is the stored credential state of one registered username.
type AuthRecord struct {
	Username       string
	PasswordHash   string // bcrypt
	FailedAttempts int
	LockUntil      *time.Time
	CreatedAt      time.Time
}

// LockState is the part of an AuthRecord that changes on every login
// attempt. It doubles as the snapshot for compare-and-update writes.
type LockState struct {
	FailedAttempts int
	LockUntil      *time.Time
}

// State returns the record's current lock state.
func (r *AuthRecord) State() LockState {
	return LockState{FailedAttempts: r.FailedAttempts, LockUntil: r.LockUntil}
}

// LockedAt reports whether the lock is still in force at now.
func (s LockState) LockedAt(now time.Time) bool {
	return s.LockUntil != nil && s.LockUntil.After(now)
}

// Equal compares two states, treating lock times with time.Equal.
func (s LockState) Equal(o LockState) bool {
	if s.FailedAttempts != o.FailedAttempts {
		return false
	}
	if s.LockUntil == nil || o.LockUntil == nil {
		return s.LockUntil == nil && o.LockUntil == nil
	}
	return s.LockUntil.Equal(*o.LockUntil)
}
