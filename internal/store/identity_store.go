package store

import (
	"path/filepath"
	"sync"

	"walletid/internal/domain"
)

const identityFilename = "identity.json"

// IdentityFileStore persists the public wallet identity to disk.
type IdentityFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir}
}

// SaveIdentity writes the identity, replacing any previous one.
func (s *IdentityFileStore) SaveIdentity(id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(filepath.Join(s.dir, identityFilename), id, 0o600)
}

// LoadIdentity returns the stored identity and whether one was present.
func (s *IdentityFileStore) LoadIdentity() (domain.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id domain.Identity
	found, err := readJSON(filepath.Join(s.dir, identityFilename), &id)
	if err != nil || !found {
		return domain.Identity{}, false, err
	}
	return id, true, nil
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
