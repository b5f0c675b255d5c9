// Package session persists browsing state between runs: which torrent was
// open, where in its tree the user was, and the watch status of every file
// they touched.
package session

import (
	"encoding/json"
	"fmt"
)

// Status is a file's watch status. Absence of a map entry means the file was
// never touched; there is no status value for that.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus validates a persisted status string. The set is closed: an
// unrecognized string is an error, not an empty status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusInProgress, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown watch status %q", s)
}

// WatchMap tracks watch status keyed by a file's full path as the API
// reported it, compared verbatim. Paths are not normalized, so history does
// not survive a renamed torrent.
type WatchMap map[string]Status

// UnmarshalJSON enforces the closed status set, rejecting the whole map when
// any entry carries an unknown status.
func (m *WatchMap) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(WatchMap, len(raw))
	for path, s := range raw {
		st, err := ParseStatus(s)
		if err != nil {
			return err
		}
		out[path] = st
	}
	*m = out
	return nil
}

// Session is the state written back after every change. Field names match
// the JSON earlier releases of this tool wrote, so existing session files
// keep working.
type Session struct {
	CurrentPath string   `json:"current_path"`
	TorrentID   int64    `json:"torrent_id,omitempty"`
	TorrentName string   `json:"torrent_name,omitempty"`
	LastFile    string   `json:"last_file,omitempty"`
	Watch       WatchMap `json:"watch_status"`
}

// New returns an empty session.
func New() *Session {
	return &Session{Watch: make(WatchMap)}
}

// HasTorrent reports whether the session points at a torrent to resume.
func (s *Session) HasTorrent() bool {
	return s != nil && s.TorrentID != 0
}

// Status returns the watch status for path.
func (s *Session) Status(path string) (Status, bool) {
	st, ok := s.Watch[path]
	return st, ok
}

// SetStatus records the watch status for path.
func (s *Session) SetStatus(path string, st Status) {
	if s.Watch == nil {
		s.Watch = make(WatchMap)
	}
	s.Watch[path] = st
}

// ClearWatch drops all watch history.
func (s *Session) ClearWatch() {
	s.Watch = make(WatchMap)
}
