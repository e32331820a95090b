package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, cfgPath := loadConsoleConfig()

	server := flag.String("server", cfg.Server, "Base URL of the Yeti platform")
	pageSize := flag.Int("page-size", cfg.PageSize, "Records per page in the data browser")
	theme := flag.String("theme", cfg.Theme, "Rendering theme: auto, light, or dark")
	flag.Parse()
	setMarkdownTheme(markdownThemeFromString(*theme))

	cfg.Server = *server
	cfg.PageSize = *pageSize
	cfg.Theme = string(markdownThemeFromString(*theme))
	_ = saveConsoleConfig(cfg, cfgPath)

	watcher := newSessionWatcher()
	client := newAPIClient(*server, watcher)

	history, err := openVisitStore()
	if err != nil {
		// The console works without local history.
		history = nil
	}
	defer history.Close()

	if _, err := tea.NewProgram(
		initialModel(client, watcher, history, *pageSize),
		tea.WithAltScreen(),
	).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
