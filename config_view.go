package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// configView is the readonly configuration viewer for one application.
type configView struct {
	appID  string
	detail *appDetail
	repo   *repoStatus
	body   viewport.Model
	width  int
	height int
}

func newConfigView() *configView {
	return &configView{body: viewport.New(60, 20)}
}

func (v *configView) SetDetail(detail *appDetail) {
	v.detail = detail
	v.repo = nil
	if detail == nil {
		v.body.SetContent("")
		return
	}
	v.appID = detail.AppID
	v.rebuild()
	v.body.GotoTop()
}

// SetRepo attaches the git status once its fetch resolves. Nil means the
// fetch failed or the app is not under git; either way no section renders.
func (v *configView) SetRepo(status *repoStatus) {
	v.repo = status
	if v.detail != nil {
		v.rebuild()
	}
}

func (v *configView) rebuild() {
	v.body.SetContent(renderMarkdown(configMarkdown(v.detail, v.repo)))
}

// configMarkdown lays the app detail out as a Markdown document for the
// Glamour renderer: the config object as fenced YAML, the repository
// status when the app is a git checkout, plus the file listing.
func configMarkdown(detail *appDetail, repo *repoStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", detail.AppID)
	fmt.Fprintf(&b, "%d tables • %d resources\n\n", detail.TableCount, detail.ResourceCount)

	b.WriteString("## config.yaml\n\n")
	if detail.Config == nil {
		b.WriteString("_no configuration_\n\n")
	} else {
		data, err := yaml.Marshal(detail.Config)
		if err != nil {
			fmt.Fprintf(&b, "```\n%v\n```\n\n", detail.Config)
		} else {
			fmt.Fprintf(&b, "```yaml\n%s```\n\n", string(data))
		}
	}

	if repo != nil && repo.IsGit {
		b.WriteString("## Repository\n\n")
		fmt.Fprintf(&b, "- branch: `%s`\n", repo.Branch)
		if repo.RemoteURL != "" {
			fmt.Fprintf(&b, "- remote: `%s`\n", repo.RemoteURL)
		}
		if repo.Dirty {
			b.WriteString("- uncommitted changes\n")
		} else {
			b.WriteString("- working tree clean\n")
		}
		b.WriteString("\n")
	}

	if len(detail.Files) > 0 {
		b.WriteString("## Files\n\n")
		for _, file := range detail.Files {
			fmt.Fprintf(&b, "- `%s`\n", file)
		}
	}
	return b.String()
}

func (v *configView) SetSize(width, height int) {
	v.width = width
	v.height = height
	bodyHeight := height - 3
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	v.body.Width = width - 2
	v.body.Height = bodyHeight
	setMarkdownWordWrap(minInt(width-4, 100))
}

func (v *configView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.body, cmd = v.body.Update(msg)
	return cmd
}

func (v *configView) View(s styles, focused bool) string {
	title := s.columnTitle.Render("Configuration")
	content := lipgloss.JoinVertical(lipgloss.Left, title, v.body.View())
	if focused {
		return s.panelFocused.Width(v.width).Render(content)
	}
	return s.panel.Width(v.width).Render(content)
}
