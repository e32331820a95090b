package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// authState is the gate's three-variant machine. unknown exists only while
// the initial probe is in flight; afterwards the state toggles between the
// other two via login success, logout, or an intercepted 401.
type authState int

const (
	authUnknown authState = iota
	authAuthenticated
	authUnauthenticated
)

// Delay between a successful login response and the authenticated
// transition, so the cookie jar has the session cookie before the first
// authenticated request fires.
const loginSettleDelay = 300 * time.Millisecond

type sessionExpiredMsg struct{}

type probeResultMsg struct {
	err error
}

type loginResultMsg struct {
	err error
}

type loginSettledMsg struct{}

type loggedOutMsg struct{}

// sessionWatcher is the AuthSink the fetch wrapper notifies. The channel is
// buffered with capacity one and sends never block, so a notification storm
// collapses into a single pending signal.
type sessionWatcher struct {
	ch chan struct{}
}

func newSessionWatcher() *sessionWatcher {
	return &sessionWatcher{ch: make(chan struct{}, 1)}
}

func (w *sessionWatcher) NotifySessionExpired() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

func waitForSessionExpiry(w *sessionWatcher) tea.Cmd {
	return func() tea.Msg {
		<-w.ch
		return sessionExpiredMsg{}
	}
}

// probeCmd resolves the initial unknown state by status code alone. A
// network-level failure reads as unauthenticated: the gate fails closed.
func probeCmd(client *apiClient) tea.Cmd {
	return func() tea.Msg {
		err := client.probe(context.Background())
		if errors.Is(err, errSessionExpired) {
			return nil
		}
		return probeResultMsg{err: err}
	}
}

// loginCmd submits credentials. A 401 rejection rides the AuthSink like
// every other intercepted call; the form's inline feedback for that case
// comes from the expiry handler, not from this command's result.
func loginCmd(client *apiClient, username, password string) tea.Cmd {
	return func() tea.Msg {
		err := client.login(context.Background(), username, password)
		if errors.Is(err, errSessionExpired) {
			return nil
		}
		return loginResultMsg{err: err}
	}
}

func loginSettleCmd() tea.Cmd {
	return tea.Tick(loginSettleDelay, func(time.Time) tea.Msg {
		return loginSettledMsg{}
	})
}

// logoutCmd is best effort: the server call may fail, the local transition
// to unauthenticated happens regardless.
func logoutCmd(client *apiClient) tea.Cmd {
	return func() tea.Msg {
		_ = client.logout(context.Background())
		return loggedOutMsg{}
	}
}

type loginView struct {
	username   textinput.Model
	password   textinput.Model
	focusIndex int
	submitting bool
	errText    string
	width      int
	height     int
}

func newLoginView() *loginView {
	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "> "
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "> "
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword

	return &loginView{username: username, password: password}
}

func (v *loginView) Reset() {
	v.password.SetValue("")
	v.submitting = false
	v.errText = ""
	v.focusIndex = 0
	v.username.Focus()
	v.password.Blur()
}

func (v *loginView) Fail(message string) {
	v.submitting = false
	v.errText = message
}

func (v *loginView) SetError(err error) {
	v.Fail(err.Error())
}

func (v *loginView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Update returns the credentials when the form is submitted.
func (v *loginView) Update(msg tea.Msg) (tea.Cmd, string, string, bool) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !v.submitting {
		switch keyMsg.String() {
		case "tab", "shift+tab", "up", "down":
			v.focusIndex = 1 - v.focusIndex
			if v.focusIndex == 0 {
				v.password.Blur()
				return v.username.Focus(), "", "", false
			}
			v.username.Blur()
			return v.password.Focus(), "", "", false
		case "enter":
			username := strings.TrimSpace(v.username.Value())
			password := v.password.Value()
			if username == "" || password == "" {
				v.errText = "username and password are required"
				return nil, "", "", false
			}
			v.submitting = true
			v.errText = ""
			return nil, username, password, true
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.username, cmd = v.username.Update(msg)
	cmds = append(cmds, cmd)
	v.password, cmd = v.password.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...), "", "", false
}

func (v *loginView) View(s styles) string {
	var b strings.Builder
	b.WriteString(s.overlayPrompt.Render("Yeti Admin • Sign in"))
	b.WriteString("\n\n")
	b.WriteString(v.username.View())
	b.WriteRune('\n')
	b.WriteString(v.password.View())
	b.WriteRune('\n')
	if v.submitting {
		b.WriteString(s.hint.Render("signing in…"))
		b.WriteRune('\n')
	}
	if v.errText != "" {
		b.WriteString(s.errText.Render(v.errText))
		b.WriteRune('\n')
	}
	b.WriteString(s.hint.Render("enter sign in • tab switch field"))

	card := s.overlay.Render(b.String())
	if v.width == 0 || v.height == 0 {
		return card
	}
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, card)
}
