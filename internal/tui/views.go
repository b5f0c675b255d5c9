package tui

import (
	"fmt"
	"strings"

	"github.com/AsimMerchant/mpv-torbox-setup/internal/dispatch"
)

func (m Model) View() string {
	if m.quitting {
		if m.farewell != "" {
			return m.farewell + "\n"
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("TorBox Browser"))
	if m.view == viewBrowser || m.view == viewAction || m.view == viewReport {
		loc := m.machine.Torrent().Name
		if p := m.machine.Path(); p != "" {
			loc += " / " + p
		}
		b.WriteString("  " + contextStyle.Render(fit(loc, m.width-18)))
	}
	b.WriteString("\n\n")

	switch m.view {
	case viewResume:
		b.WriteString(m.resumeBody())
	case viewSearch:
		b.WriteString(m.searchBody())
	case viewResults:
		b.WriteString(m.resultsBody())
	case viewBrowser:
		b.WriteString(m.browserBody())
	case viewAction:
		b.WriteString(m.actionBody())
	case viewReport:
		b.WriteString(m.reportBody())
	}

	if m.busy {
		b.WriteString("\n" + m.spin.View() + " " + m.busyNote + "\n")
	}

	if m.status != "" {
		style := noticeStyle
		if m.statusIsErr {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}
	return b.String()
}

func (m Model) resumeBody() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resume %q?\n", m.machine.ResumeTarget())
	if last := m.machine.LastFile(); last != "" {
		b.WriteString(contextStyle.Render("last played: "+fit(last, m.width-16)) + "\n")
	}
	b.WriteString("\n" + hintStyle.Render("[y] continue where you left off   [n] start a new search") + "\n")
	return b.String()
}

func (m Model) searchBody() string {
	var b strings.Builder
	b.WriteString("Search your collection\n\n")
	if !m.busy {
		b.WriteString(m.input.View() + "\n")
		b.WriteString(hintStyle.Render("enter to search · 'exit' or esc to quit") + "\n")
	}
	return b.String()
}

func (m Model) resultsBody() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d torrent(s) found\n\n", len(m.results))
	for i, t := range m.results {
		fmt.Fprintf(&b, "%s %s  %s\n",
			numberStyle.Render(fmt.Sprintf("%3d.", i+1)),
			fit(t.Name, m.width-28),
			sizeStyle.Render(fmt.Sprintf("%s · %d file(s)", size(t.Size), len(t.Files))))
	}
	b.WriteString("\n")
	if !m.busy {
		b.WriteString(m.input.View() + "\n")
		b.WriteString(hintStyle.Render("number to open · 0 to search again · esc back") + "\n")
	}
	return b.String()
}

func (m Model) browserBody() string {
	var b strings.Builder
	if m.listing.Len() == 0 {
		b.WriteString(contextStyle.Render("nothing at this level") + "\n")
	}
	for i, folder := range m.listing.Folders {
		fmt.Fprintf(&b, "%s   %s\n",
			numberStyle.Render(fmt.Sprintf("%3d.", i+1)),
			folderStyle.Render(folder+"/"))
	}
	for i, f := range m.listing.Files {
		st, ok := m.machine.Status(f)
		fmt.Fprintf(&b, "%s %s%s  %s\n",
			numberStyle.Render(fmt.Sprintf("%3d.", len(m.listing.Folders)+i+1)),
			marker(st, ok),
			fit(f.Name, m.width-24),
			sizeStyle.Render(size(f.Size)))
	}
	b.WriteString("\n")
	if !m.busy {
		b.WriteString(m.input.View() + "\n")
		b.WriteString(hintStyle.Render("number to open · 0 back · c clear history · d download this folder") + "\n")
	}
	return b.String()
}

func (m Model) actionBody() string {
	var b strings.Builder
	st, ok := m.machine.Status(m.picked)
	fmt.Fprintf(&b, "%s%s  %s\n\n",
		marker(st, ok),
		fit(m.picked.Name, m.width-20),
		sizeStyle.Render(size(m.picked.Size)))
	if !m.busy {
		b.WriteString(m.input.View() + "\n")
		b.WriteString(hintStyle.Render("p play · c mark completed · d download · b back") + "\n")
	}
	return b.String()
}

func (m Model) reportBody() string {
	var b strings.Builder
	queued, duplicates, failed := dispatch.Tally(m.report)
	fmt.Fprintf(&b, "Download dispatch: %d queued, %d duplicate(s), %d failed\n\n",
		queued, duplicates, failed)
	for _, r := range m.report {
		name := fit(r.File.Name, m.width-24)
		switch r.Outcome {
		case dispatch.OutcomeQueued:
			fmt.Fprintf(&b, "  %s %s\n", noticeStyle.Render("queued    "), name)
		case dispatch.OutcomeDuplicate:
			fmt.Fprintf(&b, "  %s %s\n", watchingStyle.Render("duplicate "), name)
		default:
			reason := ""
			if r.Err != nil {
				reason = ": " + r.Err.Error()
			}
			fmt.Fprintf(&b, "  %s %s%s\n", errorStyle.Render("failed    "), name, reason)
		}
	}
	b.WriteString("\n" + hintStyle.Render("press any key to continue") + "\n")
	return b.String()
}
