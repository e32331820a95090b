package main

import "github.com/charmbracelet/lipgloss"

var palette = struct {
	text      lipgloss.Color
	textMuted lipgloss.Color
	accent    lipgloss.Color
	warn      lipgloss.Color
	danger    lipgloss.Color
	ok        lipgloss.Color
	border    lipgloss.Color
	selection lipgloss.Color
}{
	text:      lipgloss.Color("252"),
	textMuted: lipgloss.Color("243"),
	accent:    lipgloss.Color("39"),
	warn:      lipgloss.Color("214"),
	danger:    lipgloss.Color("203"),
	ok:        lipgloss.Color("78"),
	border:    lipgloss.Color("240"),
	selection: lipgloss.Color("237"),
}

type styles struct {
	app, topBar                      lipgloss.Style
	sidebar, sidebarTitle            lipgloss.Style
	panel, panelFocused              lipgloss.Style
	columnTitle                      lipgloss.Style
	breadcrumbs                      lipgloss.Style
	statusBar, statusSeg, statusHint lipgloss.Style
	listItem, listSel                lipgloss.Style
	groupHeader                      lipgloss.Style
	emptyState                       lipgloss.Style
	errText, okText                  lipgloss.Style
	overlay, overlayPrompt, hint     lipgloss.Style
	toast                            lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	panelBorder := lipgloss.NormalBorder()
	focusedBorder := lipgloss.DoubleBorder()

	return styles{
		app:           base,
		topBar:        base.Padding(0, 1).Bold(true),
		sidebar:       base.BorderStyle(panelBorder).BorderForeground(palette.border),
		sidebarTitle:  base.Copy().Bold(true).Padding(0, 1),
		panel:         base.BorderStyle(panelBorder).BorderForeground(palette.border),
		panelFocused:  base.BorderStyle(focusedBorder).BorderForeground(palette.accent),
		columnTitle:   base.Copy().Bold(true).Padding(0, 1),
		breadcrumbs:   base.Padding(0, 1).Foreground(palette.textMuted),
		statusBar:     base.Padding(0, 1),
		statusSeg:     base.Padding(0, 1).MarginRight(1),
		statusHint:    base.Foreground(palette.textMuted),
		listItem:      base.Padding(0, 1),
		listSel:       base.Padding(0, 1).Bold(true).Foreground(palette.text).Background(palette.selection),
		groupHeader:   base.Padding(0, 1).Bold(true).Foreground(palette.accent),
		emptyState:    base.Padding(1, 2).Foreground(palette.textMuted),
		errText:       base.Foreground(palette.danger),
		okText:        base.Foreground(palette.ok),
		overlay:       base.Border(lipgloss.RoundedBorder()).Padding(1, 2),
		overlayPrompt: base.Copy().Bold(true),
		hint:          base.Copy().Faint(true),
		toast:         base.Padding(0, 1).Foreground(palette.warn),
	}
}
