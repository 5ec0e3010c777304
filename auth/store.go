package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoToken indicates no token file exists for the profile; the
// authorization flow has to run first.
var ErrNoToken = errors.New("no stored token for profile, run authorize first")

// Store persists one TokenSet per profile as a JSON file in the secure
// directory. Files are written with owner-only permissions.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the token file path for a profile.
func (s *Store) Path(profile string) string {
	return filepath.Join(s.dir, fmt.Sprintf("tokens_%s.json", profile))
}

// Load reads the TokenSet for a profile. Returns ErrNoToken when the file
// does not exist.
func (s *Store) Load(profile string) (*TokenSet, error) {
	data, err := os.ReadFile(s.Path(profile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("profile %q: %w", profile, ErrNoToken)
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	ts := &TokenSet{}
	if err := json.Unmarshal(data, ts); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return ts, nil
}

// Save writes the TokenSet for a profile, restricting access to the owner.
func (s *Store) Save(profile string, ts *TokenSet) error {
	data, err := json.MarshalIndent(ts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}
	path := s.Path(profile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	// WriteFile does not change the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("chmod token file: %w", err)
	}
	return nil
}
