package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// keysView lists the platform's deploy keypairs. Read only: generation and
// removal stay with the deploy tooling, the console shows what exists and
// hands the public half to the clipboard.
type keysView struct {
	keys    []sshKey
	cursor  int
	loading bool
	err     error
	body    viewport.Model
	width   int
	height  int
}

func newKeysView() *keysView {
	return &keysView{body: viewport.New(60, 20)}
}

func (v *keysView) SetLoading() {
	v.loading = true
	v.err = nil
}

func (v *keysView) SetKeys(keys []sshKey, err error) {
	v.loading = false
	v.err = err
	v.keys = keys
	if v.cursor >= len(keys) {
		v.cursor = 0
	}
}

func (v *keysView) Selected() (sshKey, bool) {
	if v.cursor < 0 || v.cursor >= len(v.keys) {
		return sshKey{}, false
	}
	return v.keys[v.cursor], true
}

func (v *keysView) SetSize(width, height int) {
	v.width = width
	v.height = height
	bodyHeight := height - 3
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	v.body.Width = width - 2
	v.body.Height = bodyHeight
}

func (v *keysView) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.keys)-1 {
			v.cursor++
		}
	}
	return nil
}

// keyCreatedLabel formats the server's unix creation timestamp; zero means
// the filesystem had no birth time to offer.
func keyCreatedLabel(created int64) string {
	if created == 0 {
		return ""
	}
	return time.Unix(created, 0).Format("2006-01-02")
}

func (v *keysView) View(s styles) string {
	var lines []string
	switch {
	case v.loading:
		lines = append(lines, s.hint.Render(" loading keys…"))
	case v.err != nil:
		lines = append(lines, s.errText.Render(" failed to load keys: "+v.err.Error()))
	case len(v.keys) == 0:
		lines = append(lines, s.hint.Render(" no deploy keys"))
	default:
		for i, key := range v.keys {
			label := key.Name
			if created := keyCreatedLabel(key.Created); created != "" {
				label = fmt.Sprintf("%s  (%s)", key.Name, created)
			}
			if i == v.cursor {
				lines = append(lines, s.listSel.Render(label))
			} else {
				lines = append(lines, s.listItem.Render(label))
			}
		}
		if selected, ok := v.Selected(); ok && selected.PublicKey != "" {
			lines = append(lines, "")
			lines = append(lines, s.hint.Render(truncateCell(selected.PublicKey, maxInt(v.width-4, 16))))
		}
	}
	v.body.SetContent(strings.Join(lines, "\n"))

	title := s.columnTitle.Render("Deploy keys")
	content := lipgloss.JoinVertical(lipgloss.Left, title, v.body.View())
	return s.panel.Width(v.width).Render(content)
}
