// Package tui renders the interactive browser on top of the navigation
// machine. The machine owns all state transitions; this package draws the
// menus and turns key input into machine calls.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AsimMerchant/mpv-torbox-setup/internal/browse"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/dispatch"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/nav"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/torbox"
)

// view is which screen the model is drawing.
type view int

const (
	viewResume view = iota
	viewSearch
	viewResults
	viewBrowser
	viewAction
	viewReport
)

type torrentsMsg struct {
	term     string
	torrents []torbox.Torrent
}

type searchFailedMsg struct{ err error }

type resumeDoneMsg struct {
	torrent torbox.Torrent
	err     error
}

type playDoneMsg struct {
	entry browse.Entry
	err   error
}

type dispatchDoneMsg struct{ results []dispatch.Result }

// Model is the bubbletea application state.
type Model struct {
	machine *nav.Machine

	input textinput.Model
	spin  spinner.Model

	view        view
	busy        bool
	busyNote    string
	status      string
	statusIsErr bool

	results  []torbox.Torrent
	listing  browse.Listing
	picked   browse.Entry
	report   []dispatch.Result
	farewell string

	width    int
	quitting bool
}

// New builds the initial model. A saved session puts the resume prompt
// first; otherwise the browser starts at the search prompt.
func New(machine *nav.Machine) Model {
	ti := textinput.New()
	ti.Placeholder = "search your torrents..."
	ti.Prompt = "> "
	ti.CharLimit = 128
	ti.Width = 48
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	m := Model{
		machine: machine,
		input:   ti,
		spin:    sp,
		view:    viewSearch,
		width:   80,
	}
	if machine.CanResume() {
		m.view = viewResume
	}
	return m
}

// Run drives the program to completion.
func Run(machine *nav.Machine) error {
	_, err := tea.NewProgram(New(machine)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case torrentsMsg:
		m.busy = false
		if len(msg.torrents) == 0 {
			m.setError(fmt.Sprintf("nothing matched %q", msg.term))
			m.view = viewSearch
			return m, nil
		}
		m.results = msg.torrents
		m.clearStatus()
		m.view = viewResults
		return m, nil

	case searchFailedMsg:
		m.busy = false
		m.setError("search failed: " + msg.err.Error())
		return m, nil

	case resumeDoneMsg:
		m.busy = false
		if msg.err != nil {
			if errors.Is(msg.err, nav.ErrTorrentGone) {
				m.setError("saved torrent is gone from your collection, starting fresh")
			} else {
				m.setError("resume failed: " + msg.err.Error())
			}
			m.view = viewSearch
			return m, nil
		}
		m.machine.FinishResume(msg.torrent)
		m.listing = m.machine.Listing()
		m.clearStatus()
		m.view = viewBrowser
		return m, nil

	case playDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setError("playback failed: " + msg.err.Error())
			m.view = viewBrowser
			return m, nil
		}
		m.machine.FinishPlay(msg.entry)
		m.farewell = fmt.Sprintf("Streaming %s in mpv. Run again to pick up where you left off.", msg.entry.Name)
		m.quitting = true
		return m, tea.Quit

	case dispatchDoneMsg:
		m.busy = false
		m.report = msg.results
		m.view = viewReport
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch m.view {
	case viewResume:
		return m.keyResume(msg)
	case viewSearch:
		return m.keySearch(msg)
	case viewResults:
		return m.keyResults(msg)
	case viewBrowser:
		return m.keyBrowser(msg)
	case viewAction:
		return m.keyAction(msg)
	case viewReport:
		m.view = viewBrowser
		m.clearStatus()
		return m, nil
	}
	return m, nil
}

func (m Model) keyResume(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		return m.startResume()
	case "n", "N", "esc":
		m.view = viewSearch
		return m, nil
	}
	return m, nil
}

func (m Model) keySearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		term := m.input.Value()
		m.input.Reset()
		if term == "exit" {
			m.quitting = true
			return m, tea.Quit
		}
		return m.startSearch(term)
	}
	return m.updateInput(msg)
}

func (m Model) keyResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewSearch
		m.clearStatus()
		return m, nil
	case "enter":
		raw := m.input.Value()
		m.input.Reset()
		n, err := nav.ParseSelection(raw, len(m.results))
		if err != nil {
			m.setError(fmt.Sprintf("pick 1-%d, or 0 to search again", len(m.results)))
			return m, nil
		}
		if n == 0 {
			m.view = viewSearch
			m.clearStatus()
			return m, nil
		}
		m.machine.EnterTorrent(m.results[n-1])
		m.listing = m.machine.Listing()
		m.clearStatus()
		m.view = viewBrowser
		return m, nil
	}
	return m.updateInput(msg)
}

func (m Model) keyBrowser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.goBack()
	case "enter":
		raw := m.input.Value()
		m.input.Reset()
		choice, err := nav.ParseChoice(raw, m.listing.Len())
		if err != nil {
			m.setError(fmt.Sprintf("pick 1-%d, 0 back, c clear, d download", m.listing.Len()))
			return m, nil
		}
		switch choice.Kind {
		case nav.ChoiceBack:
			return m.goBack()
		case nav.ChoiceClear:
			if err := m.machine.ClearHistory(); err != nil {
				m.setError("clearing history failed: " + err.Error())
				return m, nil
			}
			m.setNotice("watch history cleared")
			return m, nil
		case nav.ChoiceDownload:
			return m.startDispatch(m.machine.Scope())
		}
		item, ok := m.listing.At(choice.N)
		if !ok {
			m.setError(fmt.Sprintf("pick 1-%d", m.listing.Len()))
			return m, nil
		}
		if item.IsFolder {
			m.machine.Enter(item.Folder)
			m.listing = m.machine.Listing()
			m.clearStatus()
			return m, nil
		}
		m.picked = item.Entry
		m.clearStatus()
		m.view = viewAction
		return m, nil
	}
	return m.updateInput(msg)
}

func (m Model) keyAction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewBrowser
		m.clearStatus()
		return m, nil
	case "enter":
		raw := m.input.Value()
		m.input.Reset()
		action, err := nav.ParseAction(raw)
		if err != nil {
			m.setError("p play, c mark completed, d download, b back")
			return m, nil
		}
		switch action {
		case nav.ActionPlay:
			return m.startPlay(m.picked)
		case nav.ActionComplete:
			m.machine.MarkCompleted(m.picked)
			m.setNotice(m.picked.Name + " marked completed")
			m.view = viewBrowser
			return m, nil
		case nav.ActionDownload:
			return m.startDispatch([]torbox.File{m.picked.File})
		default:
			m.view = viewBrowser
			m.clearStatus()
			return m, nil
		}
	}
	return m.updateInput(msg)
}

func (m Model) goBack() (tea.Model, tea.Cmd) {
	if exited := m.machine.Back(); exited {
		m.view = viewSearch
		m.clearStatus()
		return m, nil
	}
	m.listing = m.machine.Listing()
	m.clearStatus()
	return m, nil
}

// The start* commands run collaborator I/O on a worker goroutine. Workers
// never mutate the machine; results come back as messages and any state
// change is committed in Update on the event loop.
func (m Model) startResume() (tea.Model, tea.Cmd) {
	m.busy = true
	m.busyNote = "reopening " + m.machine.ResumeTarget()
	machine := m.machine
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		t, err := machine.LocateResume(context.Background())
		return resumeDoneMsg{torrent: t, err: err}
	})
}

func (m Model) startSearch(term string) (tea.Model, tea.Cmd) {
	m.busy = true
	m.busyNote = "searching your collection"
	machine := m.machine
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		torrents, err := machine.Search(context.Background(), term)
		if err != nil {
			return searchFailedMsg{err: err}
		}
		return torrentsMsg{term: term, torrents: torrents}
	})
}

func (m Model) startPlay(entry browse.Entry) (tea.Model, tea.Cmd) {
	m.busy = true
	m.busyNote = "starting " + entry.Name
	machine := m.machine
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		return playDoneMsg{entry: entry, err: machine.Launch(context.Background(), entry)}
	})
}

func (m Model) startDispatch(files []torbox.File) (tea.Model, tea.Cmd) {
	if len(files) == 0 {
		m.setError("nothing to download here")
		return m, nil
	}
	m.busy = true
	m.busyNote = fmt.Sprintf("queueing %d file(s) in JDownloader", len(files))
	machine := m.machine
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		return dispatchDoneMsg{results: machine.Download(context.Background(), files)}
	})
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusIsErr = true
}

func (m *Model) setNotice(s string) {
	m.status = s
	m.statusIsErr = false
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusIsErr = false
}
