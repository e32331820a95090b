package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type toastExpiredMsg struct {
	id int
}

// toastManager owns its own id counter so expiry ticks for a superseded
// toast cannot clear a newer one.
type toastManager struct {
	nextID  int
	id      int
	message string
}

func (t *toastManager) Show(message string, ttl time.Duration) tea.Cmd {
	t.nextID++
	t.id = t.nextID
	t.message = message
	id := t.id
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (t *toastManager) Expire(msg toastExpiredMsg) {
	if msg.id == t.id {
		t.message = ""
	}
}

func (t *toastManager) Message() string {
	return t.message
}
