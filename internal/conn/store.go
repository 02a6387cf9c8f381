package conn

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"sqlchat/internal/errs"
	"sqlchat/internal/logger"
)

// Store persists connection descriptors as an indented JSON array.
//
// The file is rewritten whole on every Save; a mutex serializes the
// read-modify-write cycles that the registry drives through it. This is
// administrative configuration, not a hot path.
type Store struct {
	mu     sync.Mutex
	path   string
	cipher *Cipher
	log    *logger.Logger
}

// NewStore creates a store backed by the file at path. Connection strings
// are encrypted with a key derived from secret before they reach disk.
func NewStore(path, secret string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.New(nil)
	}
	return &Store{
		path:   path,
		cipher: NewCipher(secret),
		log:    log,
	}
}

// Load returns all persisted descriptors. It never fails the caller:
//
//   - a missing file synthesizes the default descriptor, persists it, and
//     returns it;
//   - a malformed file logs the problem and falls back to the in-memory
//     default (lossy, but the service stays usable);
//   - a file without a "default" entry gets one appended on the way out.
func (s *Store) Load() []Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() []Descriptor {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		descs := []Descriptor{DefaultDescriptor()}
		if err := s.saveLocked(descs); err != nil {
			s.log.ErrorWith("failed to persist initial connection config", err, nil)
		}
		return descs
	}
	if err != nil {
		s.log.ErrorWith("failed to read connection config", err, map[string]interface{}{"path": s.path})
		return []Descriptor{DefaultDescriptor()}
	}

	var descs []Descriptor
	if err := json.Unmarshal(raw, &descs); err != nil {
		s.log.ErrorWith("malformed connection config, using default", err, map[string]interface{}{"path": s.path})
		return []Descriptor{DefaultDescriptor()}
	}

	if !hasDefault(descs) {
		descs = append(descs, DefaultDescriptor())
	}
	return descs
}

// Save persists the full descriptor set, replacing the previous file.
// Any descriptor whose connection string is not yet flagged Encrypted is
// encrypted first; already-encrypted descriptors pass through untouched,
// so repeated saves are idempotent. On any failure the prior file is left
// as it was.
func (s *Store) Save(descs []Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(descs)
}

func (s *Store) saveLocked(descs []Descriptor) error {
	out := make([]Descriptor, len(descs))
	for i, d := range descs {
		if !d.Encrypted {
			enc, err := s.cipher.Encrypt(d.ConnectionString)
			if err != nil {
				return errs.Wrap(errs.KindOf(err), "failed to encrypt connection string", err)
			}
			d.ConnectionString = enc
			d.Encrypted = true
		}
		out[i] = d
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to encode connection config", err)
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrap(errs.ErrKindUnknown, "failed to create config directory", err)
		}
	}

	// Write to a sibling temp file first so a failed write never clobbers
	// the existing config.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to write connection config", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return errs.Wrap(errs.ErrKindUnknown, "failed to replace connection config", err)
	}
	return nil
}

// DSN returns the plaintext connection string for a descriptor, decrypting
// it when the stored value is flagged Encrypted.
func (s *Store) DSN(d Descriptor) (string, error) {
	if !d.Encrypted {
		return d.ConnectionString, nil
	}
	return s.cipher.Decrypt(d.ConnectionString)
}

// Find returns the descriptor with the given name, if present.
func (s *Store) Find(name string) (Descriptor, bool) {
	for _, d := range s.Load() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

func hasDefault(descs []Descriptor) bool {
	for _, d := range descs {
		if d.Name == DefaultName {
			return true
		}
	}
	return false
}
