package main

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// tableGrouping maps database names to their tables with a fixed iteration
// order. The order is an invariant: the default-redirect pipeline takes the
// first table of the first database, so the double sort below must be
// deterministic for any input permutation.
type tableGrouping struct {
	databases []string
	groups    map[string][]tableInfo
}

// groupByDatabase buckets tables by their database name. A table without a
// database falls back to fallbackDB, then to "default". Every input table is
// kept; databases sort ascending and tables sort ascending by name, both
// locale-aware.
func groupByDatabase(tables []tableInfo, fallbackDB string) tableGrouping {
	if fallbackDB == "" {
		fallbackDB = "default"
	}
	groups := make(map[string][]tableInfo)
	for _, tbl := range tables {
		db := tbl.Database
		if db == "" {
			db = fallbackDB
		}
		groups[db] = append(groups[db], tbl)
	}

	cl := collate.New(language.Und)
	databases := make([]string, 0, len(groups))
	for db := range groups {
		databases = append(databases, db)
	}
	sort.Slice(databases, func(i, j int) bool {
		return cl.CompareString(databases[i], databases[j]) < 0
	})
	for _, db := range databases {
		tbls := groups[db]
		sort.SliceStable(tbls, func(i, j int) bool {
			return cl.CompareString(tbls[i].Name, tbls[j].Name) < 0
		})
	}
	return tableGrouping{databases: databases, groups: groups}
}

func (g tableGrouping) first() (database string, table tableInfo, ok bool) {
	if len(g.databases) == 0 {
		return "", tableInfo{}, false
	}
	db := g.databases[0]
	return db, g.groups[db][0], true
}

func (g tableGrouping) tablesFor(database string) []tableInfo {
	return g.groups[database]
}

func (g tableGrouping) find(table string) (tableInfo, bool) {
	for _, db := range g.databases {
		for _, tbl := range g.groups[db] {
			if tbl.Name == table {
				return tbl, true
			}
		}
	}
	return tableInfo{}, false
}

func (g tableGrouping) tableTotal() int {
	n := 0
	for _, db := range g.databases {
		n += len(g.groups[db])
	}
	return n
}
