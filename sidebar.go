package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type sidebarEntryKind int

const (
	sidebarTable sidebarEntryKind = iota
	sidebarFiles
	sidebarConfig
)

type sidebarEntry struct {
	kind     sidebarEntryKind
	database string
	table    tableInfo
}

// sidebarView renders the grouped table navigation for one application:
// tables bucketed by database (grouping order), each with its record count,
// plus the configuration entry at the bottom.
type sidebarView struct {
	appID    string
	grouping tableGrouping
	counts   map[string]int
	entries  []sidebarEntry
	cursor   int
	body     viewport.Model
	width    int
	height   int
}

func newSidebarView() *sidebarView {
	return &sidebarView{body: viewport.New(28, 20)}
}

func (v *sidebarView) SetSchema(appID string, schema *schemaInfo) {
	v.appID = appID
	if schema != nil {
		v.grouping = groupByDatabase(schema.Tables, appID)
	} else {
		v.grouping = tableGrouping{}
	}
	v.entries = v.entries[:0]
	for _, db := range v.grouping.databases {
		for _, tbl := range v.grouping.tablesFor(db) {
			v.entries = append(v.entries, sidebarEntry{kind: sidebarTable, database: db, table: tbl})
		}
	}
	v.entries = append(v.entries, sidebarEntry{kind: sidebarFiles})
	v.entries = append(v.entries, sidebarEntry{kind: sidebarConfig})
	v.cursor = 0
}

func (v *sidebarView) SetCounts(counts map[string]int) {
	v.counts = counts
}

// Select moves the cursor onto the entry for the given route, so the
// sidebar highlight follows redirects and direct navigation.
func (v *sidebarView) Select(r route) {
	for i, entry := range v.entries {
		switch {
		case r.kind == routeConfig && entry.kind == sidebarConfig:
			v.cursor = i
			return
		case r.kind == routeFiles && entry.kind == sidebarFiles:
			v.cursor = i
			return
		case r.kind == routeData && entry.kind == sidebarTable &&
			entry.database == r.database && entry.table.Name == r.table:
			v.cursor = i
			return
		}
	}
}

func (v *sidebarView) Selected() (sidebarEntry, bool) {
	if v.cursor < 0 || v.cursor >= len(v.entries) {
		return sidebarEntry{}, false
	}
	return v.entries[v.cursor], true
}

func (v *sidebarView) SetSize(width, height int) {
	v.width = width
	v.height = height
	bodyHeight := height - 3
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	v.body.Width = width
	v.body.Height = bodyHeight
}

func (v *sidebarView) Update(msg tea.Msg) tea.Cmd {
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
		if v.cursor < len(v.entries)-1 {
			v.cursor++
		}
	}
	return nil
}

func (v *sidebarView) View(s styles, focused bool) string {
	var lines []string
	entryIndex := 0
	for _, db := range v.grouping.databases {
		lines = append(lines, s.groupHeader.Render(db))
		for range v.grouping.tablesFor(db) {
			entry := v.entries[entryIndex]
			label := fmt.Sprintf("%s (%d)", entry.table.Name, v.counts[entry.table.Name])
			lines = append(lines, v.entryLine(s, entryIndex, label))
			entryIndex++
		}
	}
	if v.grouping.tableTotal() == 0 {
		lines = append(lines, s.hint.Render(" no tables"))
	}
	lines = append(lines, "")
	lines = append(lines, v.entryLine(s, len(v.entries)-2, "Files"))
	lines = append(lines, v.entryLine(s, len(v.entries)-1, "Configuration"))

	v.body.SetContent(strings.Join(lines, "\n"))

	title := s.sidebarTitle.Render(v.appID)
	content := lipgloss.JoinVertical(lipgloss.Left, title, v.body.View())
	if focused {
		return s.panelFocused.Width(v.width).Render(content)
	}
	return s.sidebar.Width(v.width).Render(content)
}

func (v *sidebarView) entryLine(s styles, index int, label string) string {
	if index == v.cursor {
		return s.listSel.Render(label)
	}
	return s.listItem.Render(label)
}
