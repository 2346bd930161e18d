package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pushpam22priya/contract-management-sub000/pkg/models"
)

// MemoryStore is an in-memory implementation of ContractStore,
// VersionedContractStore and UserStore, used in tests and dev mode.
//
// The collection is held as an encoded blob so that LoadAll hands out
// copies, the same way a real key-value backend would.
type MemoryStore struct {
	mu       sync.Mutex
	data     []byte
	revision int64
	users    map[string]models.User
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]models.User)}
}

// LoadAll returns a copy of the stored contract collection.
func (s *MemoryStore) LoadAll(ctx context.Context) ([]models.Contract, error) {
	contracts, _, err := s.LoadAllVersioned(ctx)
	return contracts, err
}

// SaveAll overwrites the stored collection unconditionally.
func (s *MemoryStore) SaveAll(ctx context.Context, contracts []models.Contract) error {
	data, err := json.Marshal(contracts)
	if err != nil {
		return fmt.Errorf("failed to encode contracts: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.revision++
	return nil
}

// LoadAllVersioned returns the collection plus its current revision.
func (s *MemoryStore) LoadAllVersioned(ctx context.Context) ([]models.Contract, int64, error) {
	s.mu.Lock()
	data, revision := s.data, s.revision
	s.mu.Unlock()

	if data == nil {
		return []models.Contract{}, 0, nil
	}
	var contracts []models.Contract
	if err := json.Unmarshal(data, &contracts); err != nil {
		return nil, 0, fmt.Errorf("failed to decode contracts: %w", err)
	}
	if contracts == nil {
		contracts = []models.Contract{}
	}
	return contracts, revision, nil
}

// SaveAllIfRevision overwrites the collection only when the revision still
// matches.
func (s *MemoryStore) SaveAllIfRevision(ctx context.Context, contracts []models.Contract, revision int64) error {
	data, err := json.Marshal(contracts)
	if err != nil {
		return fmt.Errorf("failed to encode contracts: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revision != revision {
		return ErrRevisionMismatch
	}
	s.data = data
	s.revision++
	return nil
}

// GetUserByEmail returns the user with the given email.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// CreateUser stores a new user.
func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return fmt.Errorf("user %s already exists", user.Email)
	}
	s.users[user.Email] = *user
	return nil
}
