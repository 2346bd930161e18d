package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pushpam22priya/contract-management-sub000/pkg/models"
)

// PostgresStore is a PostgreSQL implementation of ContractStore,
// VersionedContractStore and UserStore.
//
// The contract collection is stored as a single JSONB document row keyed by
// collection name, preserving the whole-collection read/write semantics of
// the store interface against a real backend. The revision column backs the
// optimistic save path.
type PostgresStore struct {
	db         *pgxpool.Pool
	collection string
}

// NewPostgresStore creates a new PostgresStore over the given pool. The
// collection name keys the contract document row.
func NewPostgresStore(db *pgxpool.Pool, collection string) *PostgresStore {
	if collection == "" {
		collection = "contracts"
	}
	return &PostgresStore{db: db, collection: collection}
}

// Migrate creates the backing tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS contract_collections (
	name       TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	revision   BIGINT NOT NULL DEFAULT 1,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	email      TEXT UNIQUE NOT NULL,
	name       TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// LoadAll returns the stored contract collection.
func (s *PostgresStore) LoadAll(ctx context.Context) ([]models.Contract, error) {
	contracts, _, err := s.LoadAllVersioned(ctx)
	return contracts, err
}

// SaveAll overwrites the stored contract collection unconditionally.
func (s *PostgresStore) SaveAll(ctx context.Context, contracts []models.Contract) error {
	data, err := json.Marshal(contracts)
	if err != nil {
		return fmt.Errorf("failed to encode contracts: %w", err)
	}
	_, err = s.db.Exec(ctx, `
INSERT INTO contract_collections(name, data, revision, updated_at)
VALUES($1, $2, 1, now())
ON CONFLICT (name) DO UPDATE SET
  data = EXCLUDED.data,
  revision = contract_collections.revision + 1,
  updated_at = now()`, s.collection, data)
	return err
}

// LoadAllVersioned returns the collection plus its current revision.
// Revision 0 means nothing has been stored yet.
func (s *PostgresStore) LoadAllVersioned(ctx context.Context) ([]models.Contract, int64, error) {
	var data []byte
	var revision int64
	err := s.db.QueryRow(ctx,
		`SELECT data, revision FROM contract_collections WHERE name = $1`,
		s.collection).Scan(&data, &revision)
	if errors.Is(err, pgx.ErrNoRows) {
		return []models.Contract{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
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

// SaveAllIfRevision overwrites the collection only if the stored revision
// still matches the one observed at load time.
func (s *PostgresStore) SaveAllIfRevision(ctx context.Context, contracts []models.Contract, revision int64) error {
	data, err := json.Marshal(contracts)
	if err != nil {
		return fmt.Errorf("failed to encode contracts: %w", err)
	}
	if revision == 0 {
		tag, err := s.db.Exec(ctx, `
INSERT INTO contract_collections(name, data, revision, updated_at)
VALUES($1, $2, 1, now())
ON CONFLICT (name) DO NOTHING`, s.collection, data)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrRevisionMismatch
		}
		return nil
	}
	tag, err := s.db.Exec(ctx, `
UPDATE contract_collections
SET data = $2, revision = revision + 1, updated_at = now()
WHERE name = $1 AND revision = $3`, s.collection, data, revision)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRevisionMismatch
	}
	return nil
}

// GetUserByEmail returns the user with the given email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		`SELECT id, email, COALESCE(name, ''), created_at FROM users WHERE email = $1`,
		email).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser stores a new user, assigning an ID and creation time when
// they are unset.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO users(id, email, name, created_at) VALUES($1, $2, $3, $4)`,
		user.ID, user.Email, user.Name, user.CreatedAt)
	return err
}
