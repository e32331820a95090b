package main

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

type routeKind int

const (
	routeHome routeKind = iota
	routeApp
	routeData
	routeConfig
	routeFiles
	routeKeys
)

// route mirrors the console's navigation targets: the home grid, an
// application entry point (which immediately resolves to data or config),
// the per-table data browser, the readonly config viewer, the per-app
// file browser, and the deploy-key listing.
type route struct {
	kind     routeKind
	appID    string
	database string
	table    string
	path     string
}

type appsLoadedMsg struct {
	apps []appSummary
	err  error
}

type appLoadedMsg struct {
	gen    int
	detail *appDetail
	schema *schemaInfo
	err    error
}

type countsLoadedMsg struct {
	gen    int
	counts map[string]int
}

type pageLoadedMsg struct {
	gen    int
	page   int
	table  string
	result pageResult
}

type recordUpdatedMsg struct {
	gen int
	err error
}

type keysLoadedMsg struct {
	gen  int
	keys []sshKey
	err  error
}

type repoStatusMsg struct {
	gen    int
	status *repoStatus
}

type filesLoadedMsg struct {
	gen     int
	path    string
	listing *fileListing
	err     error
}

// loadAppsCmd feeds the home grid.
func loadAppsCmd(client *apiClient) tea.Cmd {
	return func() tea.Msg {
		apps, err := client.listApps(context.Background())
		if errors.Is(err, errSessionExpired) {
			return nil
		}
		return appsLoadedMsg{apps: apps, err: err}
	}
}

// loadAppCmd fetches detail and schema concurrently. Both must succeed;
// either failure fails the route load. The zero-row count probes are issued
// separately once the schema is known.
func loadAppCmd(client *apiClient, gen int, appID string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		var (
			wg        sync.WaitGroup
			detail    *appDetail
			schema    *schemaInfo
			detailErr error
			schemaErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			detail, detailErr = client.getApp(ctx, appID)
		}()
		go func() {
			defer wg.Done()
			schema, schemaErr = client.getSchema(ctx, appID)
		}()
		wg.Wait()

		if errors.Is(detailErr, errSessionExpired) || errors.Is(schemaErr, errSessionExpired) {
			return nil
		}
		if detailErr != nil {
			return appLoadedMsg{gen: gen, err: detailErr}
		}
		if schemaErr != nil {
			return appLoadedMsg{gen: gen, err: schemaErr}
		}
		return appLoadedMsg{gen: gen, detail: detail, schema: schema}
	}
}

// loadCountsCmd issues one zero-row paginated request per table and reads
// its total. Best-effort enrichment: a failed probe maps its table to 0 and
// never aborts the aggregate.
func loadCountsCmd(client *apiClient, gen int, tables []tableInfo) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			counts  = make(map[string]int, len(tables))
			expired bool
		)
		for _, tbl := range tables {
			wg.Add(1)
			go func(tbl tableInfo) {
				defer wg.Done()
				page, err := client.fetchPage(ctx, tbl.RestURL, 0, 0)
				mu.Lock()
				defer mu.Unlock()
				if errors.Is(err, errSessionExpired) {
					expired = true
					return
				}
				if err != nil {
					counts[tbl.Name] = 0
					return
				}
				counts[tbl.Name] = page.Total
			}(tbl)
		}
		wg.Wait()

		if expired {
			return nil
		}
		return countsLoadedMsg{gen: gen, counts: counts}
	}
}

// loadPageCmd fetches one page of records. A failed fetch yields an empty
// page so the view renders an empty state instead of an error.
func loadPageCmd(client *apiClient, gen, page, pageSize int, tbl tableInfo) tea.Cmd {
	return func() tea.Msg {
		result, err := client.fetchPage(context.Background(), tbl.RestURL, pageSize, (page-1)*pageSize)
		if errors.Is(err, errSessionExpired) {
			return nil
		}
		if err != nil {
			result = pageResult{Records: []map[string]any{}, Limit: pageSize, Offset: (page - 1) * pageSize}
		}
		return pageLoadedMsg{gen: gen, page: page, table: tbl.Name, result: result}
	}
}

func updateRecordCmd(client *apiClient, gen int, tbl tableInfo, id string, record map[string]any) tea.Cmd {
	return func() tea.Msg {
		err := client.updateRecord(context.Background(), tbl.RestURL, id, record)
		if errors.Is(err, errSessionExpired) {
			return nil
		}
		return recordUpdatedMsg{gen: gen, err: err}
	}
}

func loadKeysCmd(client *apiClient, gen int) tea.Cmd {
	return func() tea.Msg {
		keys, err := client.listKeys(context.Background())
		if errors.Is(err, errSessionExpired) {
			return nil
		}
		return keysLoadedMsg{gen: gen, keys: keys, err: err}
	}
}

// loadRepoStatusCmd enriches the config view. Best effort: a failure just
// leaves the repository section out.
func loadRepoStatusCmd(client *apiClient, gen int, appID string) tea.Cmd {
	return func() tea.Msg {
		status, err := client.repoStatus(context.Background(), appID)
		if errors.Is(err, errSessionExpired) {
			return nil
		}
		if err != nil {
			status = nil
		}
		return repoStatusMsg{gen: gen, status: status}
	}
}

func loadFilesCmd(client *apiClient, gen int, appID, path string) tea.Cmd {
	return func() tea.Msg {
		listing, err := client.browseFiles(context.Background(), appID, path)
		if errors.Is(err, errSessionExpired) {
			return nil
		}
		return filesLoadedMsg{gen: gen, path: path, listing: listing, err: err}
	}
}

// defaultRoute resolves the bare application route: the first table of the
// first database group when the schema has tables, the config view when it
// has none.
func defaultRoute(appID string, schema *schemaInfo) route {
	if schema != nil && len(schema.Tables) > 0 {
		grouping := groupByDatabase(schema.Tables, appID)
		if db, tbl, ok := grouping.first(); ok {
			return route{kind: routeData, appID: appID, database: db, table: tbl.Name}
		}
	}
	return route{kind: routeConfig, appID: appID}
}
