package repository

import (
	"context"
	"errors"

	"github.com/pushpam22priya/contract-management-sub000/pkg/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrRevisionMismatch is returned by SaveAllIfRevision when the collection
// was modified since it was loaded.
var ErrRevisionMismatch = errors.New("collection revision mismatch")

// ContractStore holds the full contract collection under a fixed name.
//
// There is no row-level update primitive: every mutation loads the whole
// collection, changes it in memory and writes the whole collection back.
// Two concurrent writers therefore race, and the second write wins
// (last-writer-wins). Callers that need to detect the race should use
// VersionedContractStore instead.
type ContractStore interface {
	// LoadAll returns the stored contracts in insertion order. It returns
	// an empty slice when nothing has been stored yet.
	LoadAll(ctx context.Context) ([]models.Contract, error)
	// SaveAll overwrites the stored collection. The write is idempotent.
	SaveAll(ctx context.Context, contracts []models.Contract) error
}

// VersionedContractStore extends ContractStore with an optimistic
// concurrency check. LoadAllVersioned returns the collection revision at
// read time; SaveAllIfRevision refuses the write with ErrRevisionMismatch
// when the stored revision has moved on.
type VersionedContractStore interface {
	ContractStore
	LoadAllVersioned(ctx context.Context) ([]models.Contract, int64, error)
	SaveAllIfRevision(ctx context.Context, contracts []models.Contract, revision int64) error
}

// UserStore persists auto-provisioned user accounts.
type UserStore interface {
	// GetUserByEmail returns the user with the given email, or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateUser stores a new user, assigning an ID if none is set.
	CreateUser(ctx context.Context, user *models.User) error
}
