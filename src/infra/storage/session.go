// Package storage persists the whole session as a single JSON document.
// The document is small (open playlists, their items and queues, the tab
// set), so it is rewritten wholesale on every save; the write goes through
// a temp file and a rename so a crash never leaves a truncated session.
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// SessionStore reads and writes the session document at a fixed path.
type SessionStore struct {
	path string
}

// NewSessionStore creates a session store backed by the given file path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Path returns the backing file path.
func (s *SessionStore) Path() string {
	return s.path
}

// Save writes the document atomically.
func (s *SessionStore) Save(doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create session temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close session temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	slog.Debug("Session saved", "path", s.path, "bytes", len(data))
	return nil
}

// Load reads the document into the given value. Returns false without
// error when no session has been saved yet.
func (s *SessionStore) Load(into any) (bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		slog.Info("No saved session found", "path", s.path)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read session: %w", err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return false, fmt.Errorf("failed to decode session: %w", err)
	}
	return true, nil
}
