package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/AsimMerchant/mpv-torbox-setup/internal/logging"
)

// Store reads and writes the session file.
type Store struct {
	path string
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the saved session, or nil when there is none. Unreadable or
// invalid content counts as none: a broken session file must never block
// startup. The session always comes back with a usable watch map.
func (s *Store) Load() *Session {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Debug("session file unreadable", zap.String("path", s.path), zap.Error(err))
		}
		return nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		logging.Debug("session file invalid", zap.String("path", s.path), zap.Error(err))
		return nil
	}
	if sess.Watch == nil {
		sess.Watch = make(WatchMap)
	}
	return &sess
}

// Save writes the session atomically: temp file in the same directory, then
// rename. A crash mid-write leaves either the old file or the new one, never
// a torso.
func (s *Store) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Clear removes the session file. A missing file is fine.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
