package test

import (
	"context"
	"sync"
	"time"

	"github.com/Stewz00/login-guard/internal/interfaces"
	"github.com/Stewz00/login-guard/internal/model"
	"github.com/Stewz00/login-guard/internal/repository"
)

// MockCredentialStore is an in-memory CredentialStore. All operations hold a
// single mutex, so CreateIfAbsent and CompareAndUpdate are atomic just like
// their SQL counterparts.
type MockCredentialStore struct {
	mu      sync.Mutex
	records map[string]model.AuthRecord

	// Err, when set, is returned from every operation.
	Err error
	// BeforeUpdate runs under the lock ahead of each compare. Tests use it
	// to simulate a concurrent writer changing the row.
	BeforeUpdate func(rec *model.AuthRecord)

	findCalls   int
	createCalls int
	updateCalls int
}

// Verify that MockCredentialStore implements CredentialStore interface
var _ interfaces.CredentialStore = (*MockCredentialStore)(nil)

func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{records: make(map[string]model.AuthRecord)}
}

func (s *MockCredentialStore) Find(ctx context.Context, username string) (*model.AuthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++

	if s.Err != nil {
		return nil, s.Err
	}
	rec, ok := s.records[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &rec, nil
}

func (s *MockCredentialStore) CreateIfAbsent(ctx context.Context, username, passwordHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++

	if s.Err != nil {
		return false, s.Err
	}
	if _, exists := s.records[username]; exists {
		return false, nil
	}
	s.records[username] = model.AuthRecord{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	return true, nil
}

func (s *MockCredentialStore) CompareAndUpdate(ctx context.Context, username string, expected, next model.LockState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++

	if s.Err != nil {
		return false, s.Err
	}
	rec, ok := s.records[username]
	if !ok {
		return false, nil
	}
	if s.BeforeUpdate != nil {
		s.BeforeUpdate(&rec)
		s.records[username] = rec
	}
	if !rec.State().Equal(expected) {
		return false, nil
	}
	rec.FailedAttempts = next.FailedAttempts
	rec.LockUntil = next.LockUntil
	s.records[username] = rec
	return true, nil
}

// Put stores rec as-is, replacing any existing record.
func (s *MockCredentialStore) Put(rec model.AuthRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Username] = rec
}

// Get returns a copy of the stored record.
func (s *MockCredentialStore) Get(username string) (model.AuthRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[username]
	return rec, ok
}

// Calls reports how many times each operation was invoked.
func (s *MockCredentialStore) Calls() (find, create, update int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCalls, s.createCalls, s.updateCalls
}

// Len returns the number of stored records.
func (s *MockCredentialStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
