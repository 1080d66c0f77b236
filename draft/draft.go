// Package draft keeps unsaved sessions as JSON files between CLI runs.
package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/tagging-fight-cli/session"
)

const (
	currentFile = "current"
	ext         = ".json"
)

var (
	// ErrDraftNotFound is returned when no draft matches a reference.
	ErrDraftNotFound = errors.New("draft not found")
	// ErrAmbiguousRef is returned when a key prefix matches several drafts.
	ErrAmbiguousRef = errors.New("draft reference is ambiguous")
	// ErrNoCurrent is returned when no draft has been selected.
	ErrNoCurrent = errors.New("no current draft: run 'session new' or 'session use'")
)

// Store is a directory of drafts named <key>.json.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the drafts directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+ext)
}

// Save writes the session atomically.
func (s *Store) Save(sess *session.Session) error {
	if sess.Key == "" {
		return fmt.Errorf("draft: session has no key")
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("draft: encode %s: %w", sess.Key, err)
	}
	return s.writeFile(s.path(sess.Key), data)
}

func (s *Store) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("draft: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("draft: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("draft: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("draft: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("draft: rename: %w", err)
	}
	return nil
}

// keys lists the stored draft keys.
func (s *Store) keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft: read dir: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ext) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ext))
	}
	return keys, nil
}

// Resolve turns a full key or a unique key prefix into a key.
func (s *Store) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrDraftNotFound
	}
	keys, err := s.keys()
	if err != nil {
		return "", err
	}
	var matches []string
	for _, k := range keys {
		if k == ref {
			return k, nil
		}
		if strings.HasPrefix(k, ref) {
			matches = append(matches, k)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrDraftNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %d drafts", ErrAmbiguousRef, ref, len(matches))
	}
}

// Load reads a draft by key or key prefix.
func (s *Store) Load(ref string) (*session.Session, error) {
	key, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("draft: read %s: %w", key, err)
	}
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("draft: decode %s: %w", key, err)
	}
	return &sess, nil
}

// List loads every draft, most recently updated first. Unreadable files are skipped.
func (s *Store) List() ([]*session.Session, error) {
	keys, err := s.keys()
	if err != nil {
		return nil, err
	}
	out := make([]*session.Session, 0, len(keys))
	for _, k := range keys {
		sess, err := s.Load(k)
		if err != nil {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Delete removes a draft. When it was the current one the pointer is cleared.
func (s *Store) Delete(ref string) (string, error) {
	key, err := s.Resolve(ref)
	if err != nil {
		return "", err
	}
	if err := os.Remove(s.path(key)); err != nil {
		return "", fmt.Errorf("draft: delete %s: %w", key, err)
	}
	if cur, _ := s.CurrentKey(); cur == key {
		_ = os.Remove(filepath.Join(s.dir, currentFile))
	}
	return key, nil
}

// Use makes the referenced draft the current one.
func (s *Store) Use(ref string) (string, error) {
	key, err := s.Resolve(ref)
	if err != nil {
		return "", err
	}
	return key, s.writeFile(filepath.Join(s.dir, currentFile), []byte(key+"\n"))
}

// CurrentKey returns the key of the current draft.
func (s *Store) CurrentKey() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, currentFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoCurrent
	}
	if err != nil {
		return "", fmt.Errorf("draft: read current: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", ErrNoCurrent
	}
	return key, nil
}

// Current loads the current draft, or the referenced one when ref is set.
func (s *Store) Current(ref string) (*session.Session, error) {
	if ref != "" {
		return s.Load(ref)
	}
	key, err := s.CurrentKey()
	if err != nil {
		return nil, err
	}
	return s.Load(key)
}
