// Package credentials persists the bearer credential between runs.
//
// Exactly one value is ever stored, under common.TokenStorageKey.
package credentials

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/taiglo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taiglo/internal/common"
)

// Store loads, saves and clears the current bearer credential.
// Load returns "" when nothing is stored.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MetadataStore keeps the credential in the local metadata table.
type MetadataStore struct {
	repo metadata.Repository
}

func NewMetadataStore(repo metadata.Repository) *MetadataStore {
	return &MetadataStore{repo: repo}
}

func (s *MetadataStore) Load(ctx context.Context) (string, error) {
	v, ok, err := s.repo.Get(ctx, common.TokenStorageKey)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	if !ok {
		return "", nil
	}
	return string(v), nil
}

func (s *MetadataStore) Save(ctx context.Context, token string) error {
	if err := s.repo.Set(ctx, common.TokenStorageKey, []byte(token)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *MetadataStore) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.TokenStorageKey); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// MemoryStore keeps the credential in process memory only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
