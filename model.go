package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusSidebar focusArea = iota
	focusMain
)

type keyMap struct {
	quit       key.Binding
	back       key.Binding
	refresh    key.Binding
	logout     key.Binding
	nextFocus  key.Binding
	confirm    key.Binding
	edit       key.Binding
	copyJSON   key.Binding
	deployKeys key.Binding
	prevPage   key.Binding
	nextPage   key.Binding
	toggleHelp key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "log out"),
		),
		nextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch panel"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "inspect/edit"),
		),
		copyJSON: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy"),
		),
		deployKeys: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "deploy keys"),
		),
		prevPage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev page"),
		),
		nextPage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next page"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.confirm, k.back, k.refresh, k.copyJSON, k.logout, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.confirm, k.back, k.nextFocus, k.refresh},
		{k.prevPage, k.nextPage, k.edit, k.copyJSON},
		{k.deployKeys, k.logout, k.toggleHelp, k.quit},
	}
}

type model struct {
	width  int
	height int

	styles styles
	keys   keyMap
	help   help.Model

	client  *apiClient
	watcher *sessionWatcher
	history *visitStore

	auth  authState
	login *loginView

	route route
	stack []route
	gen   int

	apps        *appsView
	appsLoading bool
	appsErr     error

	sidebar *sidebarView
	data    *dataView
	config  *configView
	files   *filesView
	sshKeys *keysView

	detail     *appDetail
	schema     *schemaInfo
	counts     map[string]int
	appLoading bool
	appErr     error

	focus   focusArea
	spinner spinner.Model
	toasts  toastManager
}

func initialModel(client *apiClient, watcher *sessionWatcher, history *visitStore, pageSize int) *model {
	s := newStyles()
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &model{
		styles:  s,
		keys:    newKeyMap(),
		help:    help.New(),
		client:  client,
		watcher: watcher,
		history: history,
		auth:    authUnknown,
		login:   newLoginView(),
		route:   route{kind: routeHome},
		apps:    newAppsView(s),
		sidebar: newSidebarView(),
		data:    newDataView(pageSize),
		config:  newConfigView(),
		files:   newFilesView(),
		sshKeys: newKeysView(),
		spinner: sp,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		waitForSessionExpiry(m.watcher),
		probeCmd(m.client),
		m.spinner.Tick,
	)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastExpiredMsg:
		m.toasts.Expire(msg)
		return m, nil

	case sessionExpiredMsg:
		return m, m.handleSessionExpired()

	case probeResultMsg:
		if msg.err != nil {
			// Fail closed: any failure on the probe reads as logged out.
			m.auth = authUnauthenticated
			m.login.Reset()
			return m, nil
		}
		m.auth = authAuthenticated
		return m, m.enterHome()

	case loginResultMsg:
		if msg.err != nil {
			m.login.SetError(msg.err)
			return m, nil
		}
		return m, loginSettleCmd()

	case loginSettledMsg:
		m.auth = authAuthenticated
		m.route = route{kind: routeHome}
		m.stack = nil
		return m, m.enterHome()

	case loggedOutMsg:
		// Best effort; the local transition already happened.
		return m, nil

	case appsLoadedMsg:
		m.appsLoading = false
		if msg.err != nil {
			m.appsErr = msg.err
			return m, m.toasts.Show("Failed to load applications", 4*time.Second)
		}
		m.appsErr = nil
		m.apps.SetApps(msg.apps)
		if visits, err := m.history.LastVisited(); err == nil {
			m.apps.SetVisits(visits)
		}
		return m, nil

	case appLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.appLoading = false
		if msg.err != nil {
			m.appErr = msg.err
			return m, nil
		}
		return m, m.applyAppLoaded(msg.detail, msg.schema)

	case countsLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.counts = msg.counts
		m.sidebar.SetCounts(msg.counts)
		return m, nil

	case pageLoadedMsg:
		if msg.gen != m.gen || msg.table != m.route.table {
			return m, nil
		}
		m.data.SetPage(msg.page, msg.result)
		return m, nil

	case keysLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.sshKeys.SetKeys(msg.keys, msg.err)
		return m, nil

	case repoStatusMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.config.SetRepo(msg.status)
		return m, nil

	case filesLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.files.SetListing(msg.path, msg.listing, msg.err)
		return m, nil

	case recordUpdatedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.data.SetUpdateError(msg.err)
			return m, nil
		}
		m.data.closeEditor()
		return m, tea.Batch(
			m.toasts.Show("Record updated", 3*time.Second),
			m.reloadPage(),
		)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.updateActiveView(msg)
}

// handleSessionExpired is the single consumer of intercepted 401s. What
// the signal means depends on where the gate stood when it arrived: the
// opening probe finding no session, a rejected sign-in attempt, or a
// genuine mid-session expiry. Only the last one gets the expiry banner.
func (m *model) handleSessionExpired() tea.Cmd {
	resubscribe := waitForSessionExpiry(m.watcher)

	switch m.auth {
	case authUnknown:
		m.auth = authUnauthenticated
		m.login.Reset()
		return resubscribe
	case authUnauthenticated:
		m.login.Fail("invalid username or password")
		return resubscribe
	}

	m.auth = authUnauthenticated
	m.login.Reset()
	m.route = route{kind: routeHome}
	m.stack = nil
	m.gen++
	m.clearAppState()
	return tea.Batch(
		resubscribe,
		m.toasts.Show("Session expired, please sign in again", 5*time.Second),
	)
}

func (m *model) clearAppState() {
	m.detail = nil
	m.schema = nil
	m.counts = nil
	m.appLoading = false
	m.appErr = nil
}

func (m *model) enterHome() tea.Cmd {
	m.appsLoading = true
	return loadAppsCmd(m.client)
}

// navigate enters a route. Each navigation bumps the generation so results
// from loaders the previous route left in flight are dropped on receipt.
func (m *model) navigate(r route) tea.Cmd {
	m.gen++
	m.route = r

	switch r.kind {
	case routeHome:
		m.clearAppState()
		return m.enterHome()

	case routeApp:
		m.clearAppState()
		m.appLoading = true
		return loadAppCmd(m.client, m.gen, r.appID)

	case routeData:
		tbl, ok := m.grouping().find(r.table)
		if !ok {
			return nil
		}
		m.focus = focusMain
		m.sidebar.Select(r)
		m.data.SetTable(r.database, tbl, m.fieldsFor(r.table))
		_ = m.history.Record(r.appID, r.database, r.table)
		return loadPageCmd(m.client, m.gen, 1, m.data.pageSize, tbl)

	case routeConfig:
		m.focus = focusMain
		m.sidebar.Select(r)
		m.config.SetDetail(m.detail)
		_ = m.history.Record(r.appID, "", "")
		return loadRepoStatusCmd(m.client, m.gen, r.appID)

	case routeFiles:
		if r.path == "" {
			r.path = "/"
			m.route = r
		}
		m.focus = focusMain
		m.sidebar.Select(r)
		m.files.SetPath(r.appID, r.path)
		return loadFilesCmd(m.client, m.gen, r.appID, r.path)

	case routeKeys:
		m.sshKeys.SetLoading()
		return loadKeysCmd(m.client, m.gen)
	}
	return nil
}

func (m *model) pushRoute(r route) tea.Cmd {
	m.stack = append(m.stack, m.route)
	return m.navigate(r)
}

func (m *model) stepBack() tea.Cmd {
	if len(m.stack) == 0 {
		return nil
	}
	prev := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	if prev.kind == routeData || prev.kind == routeConfig || prev.kind == routeFiles {
		if m.schema == nil || m.detail == nil || prev.appID != m.route.appID {
			prev = route{kind: routeApp, appID: prev.appID}
		}
	}
	return m.navigate(prev)
}

// applyAppLoaded resolves the application entry route once detail and
// schema are in: redirect to the first table of the first database group,
// or to the config view when the schema has no tables. Count probes start
// alongside.
func (m *model) applyAppLoaded(detail *appDetail, schema *schemaInfo) tea.Cmd {
	m.detail = detail
	m.schema = schema
	m.sidebar.SetSchema(m.route.appID, schema)
	m.config.SetDetail(detail)

	cmds := []tea.Cmd{}
	if len(schema.Tables) > 0 {
		cmds = append(cmds, loadCountsCmd(m.client, m.gen, schema.Tables))
	}
	if m.route.kind == routeApp {
		target := defaultRoute(m.route.appID, schema)
		// Same generation: the counts fan-out above belongs to this
		// application view as much as the redirect target does.
		m.route = target
		switch target.kind {
		case routeData:
			tbl, _ := m.grouping().find(target.table)
			m.focus = focusMain
			m.sidebar.Select(target)
			m.data.SetTable(target.database, tbl, m.fieldsFor(target.table))
			_ = m.history.Record(target.appID, target.database, target.table)
			cmds = append(cmds, loadPageCmd(m.client, m.gen, 1, m.data.pageSize, tbl))
		case routeConfig:
			m.focus = focusMain
			m.sidebar.Select(target)
			_ = m.history.Record(target.appID, "", "")
			cmds = append(cmds, loadRepoStatusCmd(m.client, m.gen, target.appID))
		}
	}
	return tea.Batch(cmds...)
}

func (m *model) grouping() tableGrouping {
	if m.schema == nil {
		return tableGrouping{}
	}
	return groupByDatabase(m.schema.Tables, m.route.appID)
}

// fieldsFor matches the schema entry by exact table name. No match means
// the data view infers columns from the records it sees.
func (m *model) fieldsFor(table string) []fieldInfo {
	if m.schema == nil {
		return nil
	}
	for _, tbl := range m.schema.Tables {
		if tbl.Name == table {
			return tbl.Fields
		}
	}
	return nil
}

func (m *model) reloadPage() tea.Cmd {
	tbl, ok := m.grouping().find(m.route.table)
	if !ok {
		return nil
	}
	return loadPageCmd(m.client, m.gen, m.data.page, m.data.pageSize, tbl)
}

func (m *model) changePage(delta int) tea.Cmd {
	next := m.data.page + delta
	if next < 1 || next > m.data.PageCount() {
		return nil
	}
	tbl, ok := m.grouping().find(m.route.table)
	if !ok {
		return nil
	}
	return loadPageCmd(m.client, m.gen, next, m.data.pageSize, tbl)
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.auth {
	case authUnknown:
		return m, nil
	case authUnauthenticated:
		cmd, username, password, submit := m.login.Update(msg)
		if submit {
			return m, loginCmd(m.client, username, password)
		}
		return m, cmd
	}

	// Record editor captures everything except its own commit/cancel keys.
	if m.route.kind == routeData && m.data.editing {
		switch msg.String() {
		case "esc":
			m.data.closeEditor()
			return m, nil
		case "ctrl+s":
			record, id, ok := m.data.parseEdit()
			if !ok {
				return m, nil
			}
			tbl, found := m.grouping().find(m.route.table)
			if !found {
				return m, nil
			}
			return m, updateRecordCmd(m.client, m.gen, tbl, id, record)
		}
		return m, m.data.Update(msg)
	}

	if m.route.kind == routeHome && m.apps.filtering {
		return m, m.apps.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.logout):
		// Unconditional local transition; the server call is fire and
		// forget.
		cmd := logoutCmd(m.client)
		m.auth = authUnauthenticated
		m.login.Reset()
		m.route = route{kind: routeHome}
		m.stack = nil
		m.gen++
		m.clearAppState()
		return m, cmd
	case key.Matches(msg, m.keys.back):
		return m, m.stepBack()
	case key.Matches(msg, m.keys.deployKeys):
		if m.route.kind != routeKeys {
			return m, m.pushRoute(route{kind: routeKeys})
		}
		return m, nil
	}

	switch m.route.kind {
	case routeHome:
		return m.handleHomeKey(msg)
	case routeApp:
		if key.Matches(msg, m.keys.refresh) && m.appErr != nil {
			return m, m.navigate(m.route)
		}
		return m, nil
	case routeData, routeConfig, routeFiles:
		return m.handleAppKey(msg)
	case routeKeys:
		return m.handleKeysKey(msg)
	}
	return m, nil
}

func (m *model) handleKeysKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.refresh):
		return m, m.navigate(m.route)
	case key.Matches(msg, m.keys.copyJSON):
		if selected, ok := m.sshKeys.Selected(); ok && selected.PublicKey != "" {
			_ = clipboard.WriteAll(selected.PublicKey)
			return m, m.toasts.Show("Copied public key", 2*time.Second)
		}
		return m, nil
	}
	return m, m.sshKeys.Update(msg)
}

func (m *model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.confirm):
		if app, ok := m.apps.Selected(); ok {
			return m, m.pushRoute(route{kind: routeApp, appID: app.AppID})
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.enterHome()
	}
	return m, m.apps.Update(msg)
}

func (m *model) handleAppKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.nextFocus) {
		if m.focus == focusSidebar {
			m.focus = focusMain
		} else {
			m.focus = focusSidebar
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		switch {
		case key.Matches(msg, m.keys.confirm):
			entry, ok := m.sidebar.Selected()
			if !ok {
				return m, nil
			}
			if entry.kind == sidebarConfig {
				return m, m.navigate(route{kind: routeConfig, appID: m.route.appID})
			}
			if entry.kind == sidebarFiles {
				return m, m.navigate(route{kind: routeFiles, appID: m.route.appID, path: "/"})
			}
			return m, m.navigate(route{
				kind:     routeData,
				appID:    m.route.appID,
				database: entry.database,
				table:    entry.table.Name,
			})
		case key.Matches(msg, m.keys.copyJSON):
			if entry, ok := m.sidebar.Selected(); ok && entry.kind == sidebarTable {
				_ = clipboard.WriteAll(entry.table.RestURL)
				return m, m.toasts.Show("Copied table REST URL", 2*time.Second)
			}
			return m, nil
		}
		return m, m.sidebar.Update(msg)
	}

	if m.route.kind == routeConfig {
		return m, m.config.Update(msg)
	}

	if m.route.kind == routeFiles {
		return m.handleFilesKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.prevPage):
		return m, m.changePage(-1)
	case key.Matches(msg, m.keys.nextPage):
		return m, m.changePage(1)
	case key.Matches(msg, m.keys.refresh):
		return m, m.reloadPage()
	case key.Matches(msg, m.keys.edit):
		m.data.openEditor()
		return m, nil
	case key.Matches(msg, m.keys.copyJSON):
		if record, ok := m.data.SelectedRecord(); ok {
			if data, err := json.MarshalIndent(record, "", "  "); err == nil {
				_ = clipboard.WriteAll(string(data))
				return m, m.toasts.Show("Copied record JSON", 2*time.Second)
			}
		}
		return m, nil
	}
	return m, m.data.Update(msg)
}

func (m *model) handleFilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.confirm):
		if entry, ok := m.files.Selected(); ok {
			return m, m.pushRoute(route{
				kind:  routeFiles,
				appID: m.route.appID,
				path:  m.files.childPath(entry),
			})
		}
		return m, nil
	case msg.String() == "backspace":
		if m.route.path != "/" && m.route.path != "" {
			return m, m.navigate(route{
				kind:  routeFiles,
				appID: m.route.appID,
				path:  parentPath(m.route.path),
			})
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.navigate(m.route)
	case key.Matches(msg, m.keys.copyJSON):
		_ = clipboard.WriteAll(m.route.path)
		return m, m.toasts.Show("Copied path", 2*time.Second)
	}
	return m, m.files.Update(msg)
}

func (m *model) updateActiveView(msg tea.Msg) tea.Cmd {
	if m.auth != authAuthenticated {
		cmd, _, _, _ := m.login.Update(msg)
		return cmd
	}
	switch m.route.kind {
	case routeHome:
		return m.apps.Update(msg)
	case routeData:
		return m.data.Update(msg)
	case routeConfig:
		return m.config.Update(msg)
	case routeFiles:
		return m.files.Update(msg)
	case routeKeys:
		return m.sshKeys.Update(msg)
	}
	return nil
}

func (m *model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	bodyHeight := m.height - 4
	if bodyHeight < 5 {
		bodyHeight = 5
	}
	m.help.Width = maxInt(m.width-4, 0)
	m.login.SetSize(m.width, m.height)
	m.apps.SetSize(m.width-2, bodyHeight)

	sidebarWidth := 30
	if sidebarWidth > m.width/3 {
		sidebarWidth = m.width / 3
	}
	mainWidth := m.width - sidebarWidth - 6
	if mainWidth < 20 {
		mainWidth = 20
	}
	m.sidebar.SetSize(sidebarWidth, bodyHeight)
	m.data.SetSize(mainWidth, bodyHeight)
	m.config.SetSize(mainWidth, bodyHeight)
	m.files.SetSize(mainWidth, bodyHeight)
	m.sshKeys.SetSize(m.width-2, bodyHeight)
}

func (m *model) View() string {
	switch m.auth {
	case authUnknown:
		probe := m.spinner.View() + " Checking session…"
		if m.width == 0 {
			return probe
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, probe)
	case authUnauthenticated:
		return m.login.View(m.styles)
	}

	var b strings.Builder
	b.WriteString(m.styles.topBar.Width(maxInt(m.width, 0)).Render(m.titleLine()))
	b.WriteRune('\n')

	switch m.route.kind {
	case routeHome:
		if m.appsLoading {
			b.WriteString(m.styles.emptyState.Render(m.spinner.View() + " Loading applications…"))
		} else if m.appsErr != nil {
			b.WriteString(m.styles.errText.Render("Failed to load applications: " + m.appsErr.Error()))
			b.WriteRune('\n')
			b.WriteString(m.styles.hint.Render("press r to retry"))
		} else {
			b.WriteString(m.apps.View(m.styles))
		}
	case routeApp:
		if m.appErr != nil {
			b.WriteString(m.styles.errText.Render("Failed to load application: " + m.appErr.Error()))
			b.WriteRune('\n')
			b.WriteString(m.styles.hint.Render("press r to retry • esc to go back"))
		} else {
			b.WriteString(m.styles.emptyState.Render(m.spinner.View() + " Loading application…"))
		}
	case routeData, routeConfig, routeFiles:
		var main string
		switch m.route.kind {
		case routeData:
			main = m.data.View(m.styles, m.focus == focusMain)
		case routeFiles:
			main = m.files.View(m.styles, m.focus == focusMain)
		default:
			main = m.config.View(m.styles, m.focus == focusMain)
		}
		side := m.sidebar.View(m.styles, m.focus == focusSidebar)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, side, main))
	case routeKeys:
		b.WriteString(m.sshKeys.View(m.styles))
	}
	b.WriteRune('\n')

	b.WriteString(m.statusLine())

	if m.route.kind == routeData && m.data.editing {
		overlay := m.data.EditorView(m.styles)
		b.WriteRune('\n')
		b.WriteString(lipgloss.Place(m.width, m.height/2, lipgloss.Center, lipgloss.Center, overlay))
	}

	return m.styles.app.Render(b.String())
}

func (m *model) titleLine() string {
	title := "yeti-admin"
	switch m.route.kind {
	case routeApp:
		title += " • " + m.route.appID
	case routeData:
		title += fmt.Sprintf(" • %s • %s/%s", m.route.appID, m.route.database, m.route.table)
	case routeConfig:
		title += " • " + m.route.appID + " • config"
	case routeFiles:
		title += " • " + m.route.appID + " • files " + m.route.path
	case routeKeys:
		title += " • deploy keys"
	}
	return title
}

func (m *model) statusLine() string {
	segments := []string{}
	if toast := m.toasts.Message(); toast != "" {
		segments = append(segments, m.styles.toast.Render(toast))
	}
	if helpView := m.help.View(m.keys); helpView != "" {
		segments = append(segments, helpView)
	}
	return m.styles.statusBar.Render(strings.Join(segments, "  "))
}
