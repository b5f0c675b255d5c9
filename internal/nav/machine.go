// Package nav drives the search, browse and play flow. The machine is the
// only place that mutates navigation or watch state; the UI renders what the
// machine exposes and feeds parsed input back in. Mutating methods must all
// run on one goroutine. Launch and LocateResume only read, so the UI may run
// them on a worker while that goroutine keeps rendering.
package nav

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/AsimMerchant/mpv-torbox-setup/internal/browse"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/dispatch"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/logging"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/session"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/torbox"
)

// State is where the user is in the flow.
type State int

const (
	StateSearching State = iota
	StateBrowsing
	StateExited
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateBrowsing:
		return "browsing"
	case StateExited:
		return "exited"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrTorrentGone means a saved session points at a torrent that is no longer
// in the collection. The session file is left alone: the collection may just
// be mid-change.
var ErrTorrentGone = errors.New("torrent no longer in the collection")

// Library lists the remote torrent collection.
type Library interface {
	ListTorrents(ctx context.Context) ([]torbox.Torrent, error)
}

// Resolver turns a file into a streamable URL.
type Resolver interface {
	RequestDownloadLink(ctx context.Context, torrentID, fileID int64) (string, error)
}

// Player hands a URL to the external player.
type Player interface {
	Play(ctx context.Context, url string) error
}

// Dispatcher queues files for download.
type Dispatcher interface {
	Dispatch(ctx context.Context, t torbox.Torrent, files []torbox.File) []dispatch.Result
}

// Machine is the navigation state machine.
type Machine struct {
	library    Library
	resolver   Resolver
	player     Player
	dispatcher Dispatcher
	store      *session.Store

	state   State
	sess    *session.Session
	torrent torbox.Torrent
	path    string
}

// New creates a machine in the searching state, picking up whatever session
// the store has. A corrupt or missing session file simply means starting
// fresh.
func New(lib Library, res Resolver, pl Player, disp Dispatcher, store *session.Store) *Machine {
	sess := store.Load()
	if sess == nil {
		sess = session.New()
	}
	return &Machine{
		library:    lib,
		resolver:   res,
		player:     pl,
		dispatcher: disp,
		store:      store,
		state:      StateSearching,
		sess:       sess,
	}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Path returns the current virtual path, "" at the torrent root.
func (m *Machine) Path() string { return m.path }

// Torrent returns the open torrent. Only meaningful while browsing.
func (m *Machine) Torrent() torbox.Torrent { return m.torrent }

// CanResume reports whether a previous run left a torrent open.
func (m *Machine) CanResume() bool { return m.sess.HasTorrent() }

// ResumeTarget names the torrent a resume would reopen.
func (m *Machine) ResumeTarget() string { return m.sess.TorrentName }

// LastFile returns the most recently played file's full path, "" if none.
func (m *Machine) LastFile() string { return m.sess.LastFile }

// LocateResume re-fetches the collection and returns the torrent the saved
// session points at. Nothing is mutated: on ErrTorrentGone the saved session
// stays on disk and the machine remains in the searching state.
func (m *Machine) LocateResume(ctx context.Context) (torbox.Torrent, error) {
	if !m.sess.HasTorrent() {
		return torbox.Torrent{}, fmt.Errorf("%w: nothing saved", ErrTorrentGone)
	}

	torrents, err := m.library.ListTorrents(ctx)
	if err != nil {
		return torbox.Torrent{}, err
	}

	t, ok := torbox.FindTorrent(torrents, m.sess.TorrentID)
	if !ok {
		logging.Info("saved torrent missing from collection",
			zap.Int64("torrent_id", m.sess.TorrentID),
			zap.String("name", m.sess.TorrentName))
		return torbox.Torrent{}, fmt.Errorf("%w: %s", ErrTorrentGone, m.sess.TorrentName)
	}
	return t, nil
}

// FinishResume reopens t, which LocateResume found, at the session's saved
// path. Runs on the mutating goroutine.
func (m *Machine) FinishResume(t torbox.Torrent) {
	m.torrent = t
	m.path = browse.Normalize(m.sess.CurrentPath)
	m.state = StateBrowsing
	logging.Info("session resumed",
		zap.Int64("torrent_id", t.ID),
		zap.String("path", m.path))
}

// Search fetches the collection filtered by term. State is untouched, so a
// transport failure just leaves the user at the prompt.
func (m *Machine) Search(ctx context.Context, term string) ([]torbox.Torrent, error) {
	torrents, err := m.library.ListTorrents(ctx)
	if err != nil {
		return nil, err
	}
	matches := torbox.FilterTorrents(torrents, term)
	logging.Debug("search", zap.String("term", term), zap.Int("matches", len(matches)))
	return matches, nil
}

// EnterTorrent opens t at its root and makes it the session's torrent.
func (m *Machine) EnterTorrent(t torbox.Torrent) {
	m.torrent = t
	m.path = ""
	m.state = StateBrowsing
	m.sess.TorrentID = t.ID
	m.sess.TorrentName = t.Name
	m.sess.CurrentPath = ""
	m.persist()
}

// Listing returns the current level of the open torrent.
func (m *Machine) Listing() browse.Listing {
	return browse.Index(m.torrent.Files, m.path)
}

// Status returns the watch status of a listing entry.
func (m *Machine) Status(e browse.Entry) (session.Status, bool) {
	return m.sess.Status(e.Path)
}

// Enter descends into a folder of the current listing.
func (m *Machine) Enter(folder string) {
	if m.state != StateBrowsing || folder == "" {
		return
	}
	m.path = browse.Descend(m.path, folder)
	m.sess.CurrentPath = m.path
	m.persist()
}

// Back ascends one level. At the torrent root it ends browsing and returns
// true; the machine is back in the searching state.
func (m *Machine) Back() bool {
	if m.state != StateBrowsing {
		return false
	}
	if m.path == "" {
		m.state = StateSearching
		return true
	}
	m.path = browse.Parent(m.path)
	m.sess.CurrentPath = m.path
	m.persist()
	return false
}

// Launch resolves the entry's stream URL and hands it to the player. Nothing
// is mutated on success or failure, so the UI may run it on a worker while
// the browser keeps rendering; FinishPlay commits the result afterwards.
func (m *Machine) Launch(ctx context.Context, e browse.Entry) error {
	url, err := m.resolver.RequestDownloadLink(ctx, m.torrent.ID, e.File.ID)
	if err != nil {
		logging.Warn("stream resolution failed", zap.String("file", e.Path), zap.Error(err))
		return err
	}
	if err := m.player.Play(ctx, url); err != nil {
		logging.Warn("player launch failed", zap.String("file", e.Path), zap.Error(err))
		return err
	}
	return nil
}

// FinishPlay records e as in progress, saves the session and ends the run.
// Call it only after Launch succeeded: a failed launch commits nothing and
// the user stays in the browser to pick something else.
func (m *Machine) FinishPlay(e browse.Entry) {
	m.sess.SetStatus(e.Path, session.StatusInProgress)
	m.sess.LastFile = e.Path
	m.sess.CurrentPath = m.path
	m.persist()
	m.state = StateExited
	logging.Info("playback started", zap.String("file", e.Path))
}

// MarkCompleted flags the entry as watched and stays in the browser.
func (m *Machine) MarkCompleted(e browse.Entry) {
	m.sess.SetStatus(e.Path, session.StatusCompleted)
	m.persist()
}

// Download queues files with the dispatcher. Watch status and the session
// lifetime are deliberately unaffected: queueing a download says nothing
// about having watched anything.
func (m *Machine) Download(ctx context.Context, files []torbox.File) []dispatch.Result {
	return m.dispatcher.Dispatch(ctx, m.torrent, files)
}

// Scope returns every file at or below the current path, for whole-folder
// downloads.
func (m *Machine) Scope() []torbox.File {
	return browse.Scope(m.torrent.Files, m.path)
}

// ClearHistory wipes watch history and removes the session file. The open
// torrent stays open; the next state change writes a fresh session.
func (m *Machine) ClearHistory() error {
	m.sess.ClearWatch()
	m.sess.LastFile = ""
	if err := m.store.Clear(); err != nil {
		return err
	}
	logging.Info("watch history cleared")
	return nil
}

// persist saves the session. Failures are logged, not propagated: the file
// is an aid for the next run, not a ledger this run depends on.
func (m *Machine) persist() {
	if err := m.store.Save(m.sess); err != nil {
		logging.Warn("session save failed", zap.Error(err))
	}
}
