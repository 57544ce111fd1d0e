// Package store keeps the ordered contact list in sync with its backing text file.
package store

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/logger"
)

// DefaultPath is the backing file used when none is configured.
const DefaultPath = "contacts.txt"

// ErrIndexOutOfRange indicates a 1-based position outside [1, Len()].
var ErrIndexOutOfRange = errors.New("store: index out of range")

// FileStore holds contacts in insertion order and rewrites the whole backing
// file after every mutation. It is not safe for concurrent use.
type FileStore struct {
	path     string
	lenient  bool
	log      *slog.Logger
	contacts []*contact.Contact
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLenient makes Load skip malformed lines with a warning instead of failing.
func WithLenient(lenient bool) Option {
	return func(s *FileStore) { s.lenient = lenient }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns an empty FileStore for path without touching the filesystem.
func New(path string, opts ...Option) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	s := &FileStore{path: path, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns a FileStore for path with its contents loaded.
func Open(path string, opts ...Option) (*FileStore, error) {
	s := New(path, opts...)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Load replaces the in-memory list with the backing file's contents.
// A missing file is created empty. In strict mode the first malformed line
// fails the load with a *ParseError and the current list is kept.
func (s *FileStore) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := s.create(); err != nil {
				return err
			}
			s.contacts = nil
			s.log.Debug("created backing file", "path", s.path)
			return nil
		}
		return fmt.Errorf("store: reading %s: %w", s.path, err)
	}
	defer f.Close()

	var loaded []*contact.Contact
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		c, err := ParseLine(text)
		if err != nil {
			perr := &ParseError{Line: lineNo, Text: text, Err: err}
			if !s.lenient {
				return fmt.Errorf("store: parsing %s: %w", s.path, perr)
			}
			s.log.Warn("skipping malformed line", "path", s.path, "line", lineNo, "err", err)
			continue
		}
		loaded = append(loaded, &c)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("store: reading %s: %w", s.path, err)
	}

	s.contacts = loaded
	s.log.Debug("loaded contacts", "path", s.path, "count", len(loaded))
	return nil
}

// create writes an empty backing file, creating parent directories as needed.
func (s *FileStore) create() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("store: creating directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, nil, 0o644); err != nil {
		return fmt.Errorf("store: creating %s: %w", s.path, err)
	}
	return nil
}

// Save overwrites the backing file with every contact, one per line.
// The data is written to a temporary file and renamed into place, so a failed
// save leaves the previous file untouched. Existing permissions are kept.
func (s *FileStore) Save() error {
	var b strings.Builder
	for _, c := range s.contacts {
		b.WriteString(FormatLine(*c))
		b.WriteByte('\n')
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	if err := tmp.Chmod(s.fileMode()); err != nil {
		tmp.Close()
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}

	s.log.Debug("saved contacts", "path", s.path, "count", len(s.contacts))
	return nil
}

// fileMode returns the backing file's current permissions, or 0o644 when it
// does not exist yet.
func (s *FileStore) fileMode() os.FileMode {
	if fi, err := os.Stat(s.path); err == nil {
		return fi.Mode().Perm()
	}
	return 0o644
}

// Len returns the number of contacts.
func (s *FileStore) Len() int { return len(s.contacts) }

// List returns a copy of the contacts in display order.
func (s *FileStore) List() []contact.Contact {
	out := make([]contact.Contact, len(s.contacts))
	for i, c := range s.contacts {
		out[i] = *c
	}
	return out
}

// CheckIndex reports whether index is a valid 1-based position.
func (s *FileStore) CheckIndex(index int) error {
	if index < 1 || index > len(s.contacts) {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrIndexOutOfRange, index, len(s.contacts))
	}
	return nil
}

// Get returns the contact at a 1-based position.
func (s *FileStore) Get(index int) (contact.Contact, error) {
	if err := s.CheckIndex(index); err != nil {
		return contact.Contact{}, err
	}
	return *s.contacts[index-1], nil
}

// Add appends a normalized contact and saves. Invalid fields are rejected
// without changing the list. A save error is returned after the contact has
// been appended in memory.
func (s *FileStore) Add(first, last, phone, email string) (contact.Contact, error) {
	c := contact.New(first, last, phone, email)
	if err := c.Validate(); err != nil {
		return contact.Contact{}, err
	}
	s.contacts = append(s.contacts, &c)
	return c, s.Save()
}

// Edit applies e to the contact at a 1-based position and saves.
func (s *FileStore) Edit(index int, e contact.Edits) (contact.Contact, error) {
	if err := s.CheckIndex(index); err != nil {
		return contact.Contact{}, err
	}
	if err := e.Validate(); err != nil {
		return contact.Contact{}, err
	}
	c := s.contacts[index-1]
	c.ApplyEdits(e)
	return *c, s.Save()
}

// Delete removes the contact at a 1-based position and saves.
// It returns the removed contact.
func (s *FileStore) Delete(index int) (contact.Contact, error) {
	if err := s.CheckIndex(index); err != nil {
		return contact.Contact{}, err
	}
	c := s.contacts[index-1]
	removed := *c
	c.Clear()
	s.contacts = slices.Delete(s.contacts, index-1, index)
	return removed, s.Save()
}
