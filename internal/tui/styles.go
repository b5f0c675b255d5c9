package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/AsimMerchant/mpv-torbox-setup/internal/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	contextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	folderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	numberStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	sizeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	watchingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
)

// marker renders the watch-status column of a file row.
func marker(st session.Status, ok bool) string {
	if !ok {
		return "  "
	}
	switch st {
	case session.StatusInProgress:
		return watchingStyle.Render("» ")
	case session.StatusCompleted:
		return doneStyle.Render("✓ ")
	}
	return "  "
}

// size renders a byte count the way humans read it.
func size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// fit truncates s to max runes, marking the cut.
func fit(s string, max int) string {
	if max < 4 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
