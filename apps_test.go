package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortAppsExtensionsFirst(t *testing.T) {
	apps := []appSummary{
		{AppID: "b", IsExtension: false},
		{AppID: "a", IsExtension: true},
	}

	sorted := sortApps(apps)
	require.Len(t, sorted, 2)
	assert.Equal(t, "a", sorted[0].AppID)
	assert.Equal(t, "b", sorted[1].AppID)
}

func TestSortAppsAlphabeticalWithinGroup(t *testing.T) {
	apps := []appSummary{
		{AppID: "zeta"},
		{AppID: "ext-b", IsExtension: true},
		{AppID: "alpha"},
		{AppID: "ext-a", IsExtension: true},
	}

	sorted := sortApps(apps)
	var ids []string
	for _, app := range sorted {
		ids = append(ids, app.AppID)
	}
	assert.Equal(t, []string{"ext-a", "ext-b", "alpha", "zeta"}, ids)
}

func TestSortAppsDoesNotMutateInput(t *testing.T) {
	apps := []appSummary{{AppID: "b"}, {AppID: "a"}}
	_ = sortApps(apps)
	assert.Equal(t, "b", apps[0].AppID)
}

func TestFilterAppsCaseInsensitive(t *testing.T) {
	apps := []appSummary{
		{AppID: "Blog-Engine"},
		{AppID: "shop"},
		{AppID: "blog-archive"},
	}

	matched := filterApps(apps, "BLOG")
	require.Len(t, matched, 2)
	assert.Equal(t, "Blog-Engine", matched[0].AppID)
	assert.Equal(t, "blog-archive", matched[1].AppID)
}

func TestFilterAppsEmptyQuery(t *testing.T) {
	apps := []appSummary{{AppID: "a"}, {AppID: "b"}}
	assert.Equal(t, apps, filterApps(apps, ""))
	assert.Equal(t, apps, filterApps(apps, "   "))
}

func TestFilterAppsKeepsSortOrder(t *testing.T) {
	sorted := sortApps([]appSummary{
		{AppID: "app-z"},
		{AppID: "app-a", IsExtension: true},
		{AppID: "app-m"},
	})
	matched := filterApps(sorted, "app")
	var ids []string
	for _, app := range matched {
		ids = append(ids, app.AppID)
	}
	assert.Equal(t, []string{"app-a", "app-m", "app-z"}, ids)
}
