package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestStore_RoundTrip(t *testing.T) {
	st := testStore(t)

	sess := New()
	sess.CurrentPath = "Season 1"
	sess.TorrentID = 42
	sess.TorrentName = "Some Show"
	sess.LastFile = "Some Show/Season 1/E01.mkv"
	sess.SetStatus("Some Show/Season 1/E01.mkv", StatusInProgress)
	sess.SetStatus("Some Show/Season 1/E02.mkv", StatusCompleted)

	if err := st.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := st.Load()
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if !reflect.DeepEqual(got, sess) {
		t.Errorf("loaded session = %+v, want %+v", got, sess)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	st := testStore(t)
	if got := st.Load(); got != nil {
		t.Errorf("Load of missing file = %+v, want nil", got)
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	st := testStore(t)
	if err := os.WriteFile(st.Path(), []byte("{{{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if got := st.Load(); got != nil {
		t.Errorf("Load of corrupt file = %+v, want nil", got)
	}
}

// An unknown status string invalidates the whole file rather than reading as
// "never watched".
func TestStore_LoadUnknownStatus(t *testing.T) {
	st := testStore(t)
	content := `{"current_path":"","watch_status":{"Show/E01.mkv":"paused"}}`
	if err := os.WriteFile(st.Path(), []byte(content), 0o600); err != nil {
		t.Fatalf("write session file: %v", err)
	}
	if got := st.Load(); got != nil {
		t.Errorf("Load with unknown status = %+v, want nil", got)
	}
}

// Session files written by earlier releases keep loading.
func TestStore_LoadsLegacyShape(t *testing.T) {
	st := testStore(t)
	content := `{
  "current_path": "Season 1",
  "torrent_id": 8010485,
  "torrent_name": "Some Show",
  "last_file": "Some Show/Season 1/E01.mkv",
  "watch_status": {
    "Some Show/Season 1/E01.mkv": "completed",
    "Some Show/Season 1/E02.mkv": "in-progress"
  }
}`
	if err := os.WriteFile(st.Path(), []byte(content), 0o600); err != nil {
		t.Fatalf("write session file: %v", err)
	}

	sess := st.Load()
	if sess == nil {
		t.Fatal("Load returned nil")
	}
	if sess.TorrentID != 8010485 {
		t.Errorf("TorrentID = %d, want 8010485", sess.TorrentID)
	}
	if sess.CurrentPath != "Season 1" {
		t.Errorf("CurrentPath = %q, want %q", sess.CurrentPath, "Season 1")
	}
	if st, _ := sess.Status("Some Show/Season 1/E01.mkv"); st != StatusCompleted {
		t.Errorf("E01 status = %q, want completed", st)
	}
	if st, _ := sess.Status("Some Show/Season 1/E02.mkv"); st != StatusInProgress {
		t.Errorf("E02 status = %q, want in-progress", st)
	}
}

func TestStore_SaveKeepsLegacyKeys(t *testing.T) {
	st := testStore(t)
	sess := New()
	sess.CurrentPath = "x"
	sess.TorrentID = 1
	sess.SetStatus("a/b", StatusCompleted)
	if err := st.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatalf("read session file: %v", err)
	}
	for _, key := range []string{`"current_path"`, `"torrent_id"`, `"watch_status"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("saved session missing %s", key)
		}
	}
}

func TestStore_SaveLeavesNoTempFile(t *testing.T) {
	st := testStore(t)
	if err := st.Save(New()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(st.Path()))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("session dir has %v, want only session.json", names)
	}
}

func TestStore_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "down", "session.json")
	st := NewStore(path)
	if err := st.Save(New()); err != nil {
		t.Fatalf("Save into missing dir: %v", err)
	}
	if st.Load() == nil {
		t.Error("Load returned nil after Save into fresh dir")
	}
}

func TestStore_Clear(t *testing.T) {
	st := testStore(t)
	if err := st.Save(New()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := st.Load(); got != nil {
		t.Errorf("Load after Clear = %+v, want nil", got)
	}
	if err := st.Clear(); err != nil {
		t.Errorf("Clear of missing file: %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"in-progress", StatusInProgress, false},
		{"completed", StatusCompleted, false},
		{"paused", "", true},
		{"", "", true},
		{"Completed", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseStatus(%q) succeeded, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStatus(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWatchMap_RejectsUnknownStatus(t *testing.T) {
	var m WatchMap
	err := json.Unmarshal([]byte(`{"a":"completed","b":"watched"}`), &m)
	if err == nil {
		t.Fatal("Unmarshal accepted unknown status")
	}
}

func TestSession_ZeroValueUsable(t *testing.T) {
	var sess Session
	sess.SetStatus("a/b", StatusInProgress)
	if st, ok := sess.Status("a/b"); !ok || st != StatusInProgress {
		t.Errorf("Status = %q %v, want in-progress", st, ok)
	}

	sess.ClearWatch()
	if _, ok := sess.Status("a/b"); ok {
		t.Error("status survived ClearWatch")
	}
}

func TestSession_HasTorrent(t *testing.T) {
	if New().HasTorrent() {
		t.Error("empty session claims a torrent")
	}
	sess := New()
	sess.TorrentID = 7
	if !sess.HasTorrent() {
		t.Error("session with torrent id reports none")
	}
	var nilSess *Session
	if nilSess.HasTorrent() {
		t.Error("nil session claims a torrent")
	}
}
