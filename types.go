package main

// Wire types for the Yeti platform REST API.

type appSummary struct {
	AppID         string `json:"app_id"`
	Name          string `json:"name"`
	Enabled       bool   `json:"enabled"`
	HasSchema     bool   `json:"has_schema"`
	ResourceCount int    `json:"resource_count"`
	TableCount    int    `json:"table_count"`
	IsExtension   bool   `json:"is_extension"`
}

type appDetail struct {
	AppID         string         `json:"app_id"`
	Config        map[string]any `json:"config"`
	Files         []string       `json:"files"`
	HasSchema     bool           `json:"has_schema"`
	ResourceCount int            `json:"resource_count"`
	TableCount    int            `json:"table_count"`
}

type fieldInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type tableInfo struct {
	Name     string      `json:"name"`
	Database string      `json:"database"`
	RestURL  string      `json:"rest_url"`
	Fields   []fieldInfo `json:"fields"`
}

type schemaInfo struct {
	AppID  string      `json:"app_id"`
	Tables []tableInfo `json:"tables"`
}

type pageResult struct {
	Records []map[string]any `json:"records"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// sshKey is one ED25519 deploy keypair; only the public half ever leaves
// the server.
type sshKey struct {
	Name      string `json:"name"`
	PublicKey string `json:"public_key"`
	Created   int64  `json:"created"`
}

type repoStatus struct {
	AppID     string `json:"app_id"`
	IsGit     bool   `json:"is_git"`
	Branch    string `json:"branch"`
	RemoteURL string `json:"remote_url"`
	Dirty     bool   `json:"dirty"`
}

type fileEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// fileListing covers both shapes of the files endpoint: a directory
// (Entries populated) or a single file read (Content populated).
type fileListing struct {
	App     string      `json:"app"`
	Path    string      `json:"path"`
	Type    string      `json:"type"`
	Entries []fileEntry `json:"entries"`
	Content string      `json:"content"`
	Size    int64       `json:"size"`
}
