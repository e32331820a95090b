package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type listEntry struct {
	title   string
	desc    string
	payload any
}

func (e listEntry) Title() string       { return e.title }
func (e listEntry) Description() string { return e.desc }
func (e listEntry) FilterValue() string { return e.title }

// sortApps orders applications with extensions first, then alphabetically by
// id within each group. The sort is stable so equal ids keep input order.
func sortApps(apps []appSummary) []appSummary {
	sorted := append([]appSummary(nil), apps...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsExtension != sorted[j].IsExtension {
			return sorted[i].IsExtension
		}
		return sorted[i].AppID < sorted[j].AppID
	})
	return sorted
}

// filterApps applies a case-insensitive substring match on the app id. It
// runs after sortApps, so filtering never reorders the grid.
func filterApps(apps []appSummary, query string) []appSummary {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return apps
	}
	var matched []appSummary
	for _, app := range apps {
		if strings.Contains(strings.ToLower(app.AppID), query) {
			matched = append(matched, app)
		}
	}
	return matched
}

type appsView struct {
	list      list.Model
	filter    textinput.Model
	filtering bool
	apps      []appSummary
	visits    map[string]time.Time
	width     int
	height    int
}

func newAppsView(s styles) *appsView {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = s.listSel
	delegate.Styles.SelectedDesc = s.listSel.Copy().Bold(false)
	delegate.Styles.NormalTitle = s.listItem
	delegate.Styles.NormalDesc = s.listItem.Foreground(palette.textMuted)

	m := list.New(nil, delegate, 40, 20)
	m.Title = "Applications"
	m.SetShowStatusBar(false)
	m.SetFilteringEnabled(false)
	m.SetShowHelp(false)

	filter := textinput.New()
	filter.Placeholder = "filter by app id"
	filter.Prompt = "/ "
	filter.CharLimit = 64

	return &appsView{list: m, filter: filter}
}

func (v *appsView) SetApps(apps []appSummary) {
	v.apps = sortApps(apps)
	v.refresh()
}

func (v *appsView) SetVisits(visits map[string]time.Time) {
	v.visits = visits
	v.refresh()
}

func (v *appsView) refresh() {
	visible := filterApps(v.apps, v.filter.Value())
	items := make([]list.Item, 0, len(visible))
	for _, app := range visible {
		items = append(items, listEntry{
			title:   appTitle(app),
			desc:    v.appDesc(app),
			payload: app,
		})
	}
	v.list.SetItems(items)
	if len(items) > 0 && v.list.Index() >= len(items) {
		v.list.Select(0)
	}
}

func appTitle(app appSummary) string {
	title := app.AppID
	if app.Name != "" && app.Name != app.AppID {
		title += " • " + app.Name
	}
	if app.IsExtension {
		title += " [ext]"
	}
	return title
}

func (v *appsView) appDesc(app appSummary) string {
	parts := []string{}
	if app.Enabled {
		parts = append(parts, "enabled")
	} else {
		parts = append(parts, "disabled")
	}
	if app.HasSchema {
		parts = append(parts, fmt.Sprintf("%d tables", app.TableCount))
	} else {
		parts = append(parts, "no schema")
	}
	if at, ok := v.visits[app.AppID]; ok {
		parts = append(parts, "last opened "+at.Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, " • ")
}

func (v *appsView) Selected() (appSummary, bool) {
	if entry, ok := v.list.SelectedItem().(listEntry); ok {
		if app, ok := entry.payload.(appSummary); ok {
			return app, true
		}
	}
	return appSummary{}, false
}

func (v *appsView) SetSize(width, height int) {
	v.width = width
	v.height = height
	listHeight := height - 2
	if listHeight < 3 {
		listHeight = 3
	}
	v.list.SetSize(width, listHeight)
}

func (v *appsView) Update(msg tea.Msg) tea.Cmd {
	if v.filtering {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "enter", "esc":
				v.filtering = false
				v.filter.Blur()
				if keyMsg.String() == "esc" {
					v.filter.SetValue("")
					v.refresh()
				}
				return nil
			}
		}
		var cmd tea.Cmd
		v.filter, cmd = v.filter.Update(msg)
		v.refresh()
		return cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "/" {
		v.filtering = true
		return v.filter.Focus()
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return cmd
}

func (v *appsView) View(s styles) string {
	var sections []string
	if v.filtering || v.filter.Value() != "" {
		sections = append(sections, v.filter.View())
	}
	if len(v.list.Items()) == 0 {
		sections = append(sections, s.emptyState.Render("No applications match."))
	} else {
		sections = append(sections, v.list.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
