package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// filesView is the readonly tree browser for one application: directory
// listings with cursor navigation, file reads in a scrollable viewport.
// Writes stay with the deploy tooling.
type filesView struct {
	appID   string
	path    string
	listing *fileListing
	cursor  int
	loading bool
	err     error
	body    viewport.Model
	width   int
	height  int
}

func newFilesView() *filesView {
	return &filesView{body: viewport.New(60, 20)}
}

func (v *filesView) SetPath(appID, path string) {
	v.appID = appID
	v.path = path
	v.listing = nil
	v.cursor = 0
	v.loading = true
	v.err = nil
}

func (v *filesView) SetListing(path string, listing *fileListing, err error) {
	if path != v.path {
		return
	}
	v.loading = false
	v.err = err
	v.listing = listing
	v.cursor = 0
	v.body.GotoTop()
}

func (v *filesView) showingFile() bool {
	return v.listing != nil && v.listing.Type == "file"
}

func (v *filesView) Selected() (fileEntry, bool) {
	if v.listing == nil || v.showingFile() {
		return fileEntry{}, false
	}
	if v.cursor < 0 || v.cursor >= len(v.listing.Entries) {
		return fileEntry{}, false
	}
	return v.listing.Entries[v.cursor], true
}

// childPath joins an entry onto the current directory path.
func (v *filesView) childPath(entry fileEntry) string {
	base := strings.TrimRight(v.path, "/")
	return base + "/" + entry.Name
}

// parentPath steps one directory up; the root is its own parent.
func parentPath(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return "/"
	}
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 {
		return "/"
	}
	return trimmed[:idx]
}

func (v *filesView) SetSize(width, height int) {
	v.width = width
	v.height = height
	bodyHeight := height - 3
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	v.body.Width = width - 2
	v.body.Height = bodyHeight
}

func (v *filesView) Update(msg tea.Msg) tea.Cmd {
	if v.showingFile() {
		var cmd tea.Cmd
		v.body, cmd = v.body.Update(msg)
		return cmd
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.listing != nil && v.cursor < len(v.listing.Entries)-1 {
			v.cursor++
		}
	}
	return nil
}

func sizeLabel(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

func (v *filesView) View(s styles, focused bool) string {
	var lines []string
	switch {
	case v.loading:
		lines = append(lines, s.hint.Render(" loading…"))
	case v.err != nil:
		lines = append(lines, s.errText.Render(" failed to load path: "+v.err.Error()))
	case v.listing == nil:
		lines = append(lines, s.hint.Render(" no listing"))
	case v.showingFile():
		lines = append(lines, v.listing.Content)
	case len(v.listing.Entries) == 0:
		lines = append(lines, s.hint.Render(" empty directory"))
	default:
		for i, entry := range v.listing.Entries {
			label := entry.Name
			if entry.Type == "directory" {
				label += "/"
			} else {
				label = fmt.Sprintf("%s  %s", entry.Name, sizeLabel(entry.Size))
			}
			if i == v.cursor {
				lines = append(lines, s.listSel.Render(label))
			} else {
				lines = append(lines, s.listItem.Render(label))
			}
		}
	}
	v.body.SetContent(strings.Join(lines, "\n"))

	title := s.columnTitle.Render("Files • " + v.path)
	content := lipgloss.JoinVertical(lipgloss.Left, title, v.body.View())
	if focused {
		return s.panelFocused.Width(v.width).Render(content)
	}
	return s.panel.Width(v.width).Render(content)
}
