package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel() *model {
	watcher := newSessionWatcher()
	client := newAPIClient("http://127.0.0.1:0", watcher)
	return initialModel(client, watcher, nil, 25)
}

func TestAuthStartsUnknown(t *testing.T) {
	m := testModel()
	assert.Equal(t, authUnknown, m.auth)
}

func TestProbeFailClosed(t *testing.T) {
	m := testModel()
	_, _ = m.Update(probeResultMsg{err: errors.New("connection refused")})
	assert.Equal(t, authUnauthenticated, m.auth)
}

func TestProbeSuccessAuthenticates(t *testing.T) {
	m := testModel()
	_, cmd := m.Update(probeResultMsg{})
	assert.Equal(t, authAuthenticated, m.auth)
	assert.NotNil(t, cmd, "entering home must load the app list")
}

func TestLoginSuccessIsDelayed(t *testing.T) {
	m := testModel()
	m.auth = authUnauthenticated

	_, cmd := m.Update(loginResultMsg{})
	assert.Equal(t, authUnauthenticated, m.auth,
		"the authenticated transition waits for the cookie to settle")
	require.NotNil(t, cmd)

	_, _ = m.Update(loginSettledMsg{})
	assert.Equal(t, authAuthenticated, m.auth)
}

func TestLoginFailureStaysUnauthenticated(t *testing.T) {
	m := testModel()
	m.auth = authUnauthenticated
	_, _ = m.Update(loginResultMsg{err: errors.New("bad credentials")})
	assert.Equal(t, authUnauthenticated, m.auth)
	assert.Equal(t, "bad credentials", m.login.errText)
}

func TestSessionExpiredTransition(t *testing.T) {
	m := testModel()
	m.auth = authAuthenticated
	m.route = route{kind: routeData, appID: "app1", database: "db", table: "Users"}
	m.stack = []route{{kind: routeHome}}

	_, cmd := m.Update(sessionExpiredMsg{})
	assert.Equal(t, authUnauthenticated, m.auth)
	assert.Equal(t, routeHome, m.route.kind, "expiry navigates back to the root")
	assert.Empty(t, m.stack)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.toasts.Message(), "Session expired")
}

func TestInitialProbe401ShowsNoBanner(t *testing.T) {
	m := testModel()

	_, cmd := m.Update(sessionExpiredMsg{})
	assert.Equal(t, authUnauthenticated, m.auth)
	assert.Empty(t, m.toasts.Message(),
		"a fresh launch with no session is not an expiry")
	assert.NotNil(t, cmd, "the expiry subscription must re-arm")
}

func TestRejectedLoginShowsInlineError(t *testing.T) {
	m := testModel()
	m.auth = authUnauthenticated
	m.login.submitting = true

	_, _ = m.Update(sessionExpiredMsg{})
	assert.Equal(t, authUnauthenticated, m.auth)
	assert.Equal(t, "invalid username or password", m.login.errText)
	assert.False(t, m.login.submitting)
	assert.Empty(t, m.toasts.Message())
}

func TestStaleGenerationDropped(t *testing.T) {
	m := testModel()
	m.auth = authAuthenticated
	m.route = route{kind: routeData, appID: "app1", database: "db", table: "Users"}
	m.gen = 5

	_, _ = m.Update(pageLoadedMsg{
		gen:    4,
		page:   3,
		table:  "Users",
		result: pageResult{Records: []map[string]any{{"id": "stale"}}, Total: 99},
	})
	assert.Nil(t, m.data.records, "a superseded route's page result must not land")

	_, _ = m.Update(countsLoadedMsg{gen: 4, counts: map[string]int{"Users": 12}})
	assert.Nil(t, m.counts)
}

func TestPageResultForOtherTableDropped(t *testing.T) {
	m := testModel()
	m.auth = authAuthenticated
	m.route = route{kind: routeData, appID: "app1", database: "db", table: "Users"}
	m.gen = 1

	_, _ = m.Update(pageLoadedMsg{
		gen:    1,
		page:   1,
		table:  "Orders",
		result: pageResult{Total: 10},
	})
	assert.Zero(t, m.data.total)
}

func TestAppLoadedRedirectsToFirstTable(t *testing.T) {
	m := testModel()
	m.auth = authAuthenticated
	m.route = route{kind: routeApp, appID: "app1"}
	m.gen = 1

	schema := &schemaInfo{
		AppID: "app1",
		Tables: []tableInfo{
			{Name: "Zeta", Database: "b", RestURL: "/app1/Zeta"},
			{Name: "Alpha", Database: "a", RestURL: "/app1/Alpha"},
		},
	}
	_, cmd := m.Update(appLoadedMsg{gen: 1, detail: &appDetail{AppID: "app1"}, schema: schema})
	require.NotNil(t, cmd)
	assert.Equal(t, routeData, m.route.kind)
	assert.Equal(t, "a", m.route.database)
	assert.Equal(t, "Alpha", m.route.table)
}

func TestAppLoadedRedirectsToConfigWithoutTables(t *testing.T) {
	m := testModel()
	m.auth = authAuthenticated
	m.route = route{kind: routeApp, appID: "app1"}
	m.gen = 1

	_, _ = m.Update(appLoadedMsg{
		gen:    1,
		detail: &appDetail{AppID: "app1"},
		schema: &schemaInfo{AppID: "app1"},
	})
	assert.Equal(t, routeConfig, m.route.kind)
}

func TestAppLoadErrorFailsRoute(t *testing.T) {
	m := testModel()
	m.auth = authAuthenticated
	m.route = route{kind: routeApp, appID: "app1"}
	m.gen = 1

	_, _ = m.Update(appLoadedMsg{gen: 1, err: errors.New("detail fetch failed")})
	assert.Equal(t, routeApp, m.route.kind, "a failed required load must not redirect")
	require.Error(t, m.appErr)
}

func TestFieldsForExactMatch(t *testing.T) {
	m := testModel()
	m.schema = &schemaInfo{Tables: []tableInfo{
		{Name: "Users", Fields: []fieldInfo{{Name: "id", Type: "ID!"}}},
	}}

	require.Len(t, m.fieldsFor("Users"), 1)
	assert.Nil(t, m.fieldsFor("users"), "matching is exact, not case-folded")
	assert.Nil(t, m.fieldsFor("Orders"))
}

func TestStaleKeysAndFilesDropped(t *testing.T) {
	m := testModel()
	m.auth = authAuthenticated
	m.gen = 5

	_, _ = m.Update(keysLoadedMsg{gen: 4, keys: []sshKey{{Name: "deploy"}}})
	assert.Empty(t, m.sshKeys.keys)

	_, _ = m.Update(filesLoadedMsg{gen: 4, path: "/", listing: &fileListing{Type: "directory"}})
	assert.Nil(t, m.files.listing)
}

func TestConfigRouteLoadsRepoStatus(t *testing.T) {
	m := testModel()
	m.auth = authAuthenticated
	m.detail = &appDetail{AppID: "app1"}
	m.schema = &schemaInfo{AppID: "app1"}

	cmd := m.navigate(route{kind: routeConfig, appID: "app1"})
	require.NotNil(t, cmd, "entering config fires the repo status fetch")

	_, _ = m.Update(repoStatusMsg{gen: m.gen, status: &repoStatus{IsGit: true, Branch: "main"}})
	require.NotNil(t, m.config.repo)
	assert.Equal(t, "main", m.config.repo.Branch)
}

func TestUpdateErrorKeepsEditorOpen(t *testing.T) {
	m := testModel()
	m.auth = authAuthenticated
	m.schema = &schemaInfo{Tables: []tableInfo{{Name: "Users", RestURL: "/app1/Users"}}}
	m.route = route{kind: routeData, appID: "app1", database: "db", table: "Users"}
	m.gen = 1
	m.data.SetTable("db", tableInfo{Name: "Users", RestURL: "/app1/Users"}, nil)
	m.data.SetPage(1, pageResult{Records: []map[string]any{{"id": "1"}}, Total: 1})
	m.data.openEditor()

	_, _ = m.Update(recordUpdatedMsg{gen: 1, err: errors.New("constraint violation")})
	assert.True(t, m.data.editing)
	assert.Equal(t, "constraint violation", m.data.editErr)
}
