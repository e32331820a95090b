package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const cellDisplayLimit = 80

// pageCount reports how many pages a total occupies. Never below 1, so the
// pagination controls stay well-defined for an empty table.
func pageCount(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// columnNames picks the column set: schema field names verbatim when
// present, otherwise the union of keys across the page's records in order
// of first appearance (keys within one record sorted for determinism).
func columnNames(fields []fieldInfo, records []map[string]any) []string {
	if len(fields) > 0 {
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.Name
		}
		return names
	}
	seen := make(map[string]bool)
	var names []string
	for _, record := range records {
		var fresh []string
		for key := range record {
			if !seen[key] {
				seen[key] = true
				fresh = append(fresh, key)
			}
		}
		sort.Strings(fresh)
		names = append(names, fresh...)
	}
	return names
}

// cellText renders one value for a table cell: nil and absent values become
// the empty string, structured values their JSON form, scalars their string
// conversion.
func cellText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truncateCell is a presentation rule only; the full value stays available
// in the record inspector and is what an update sends back.
func truncateCell(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// recordID extracts the id an update is keyed on. Records without an id
// cannot be updated.
func recordID(record map[string]any) (string, bool) {
	value, ok := record["id"]
	if !ok || value == nil {
		return "", false
	}
	id := cellText(value)
	if id == "" {
		return "", false
	}
	return id, true
}

type dataView struct {
	tbl      tableInfo
	database string
	fields   []fieldInfo

	records  []map[string]any
	columns  []string
	total    int
	page     int
	pageSize int
	loading  bool

	grid table.Model
	pag  paginator.Model

	editing   bool
	editor    textarea.Model
	editErr   string
	editIndex int

	width  int
	height int
}

func newDataView(pageSize int) *dataView {
	grid := table.New(table.WithFocused(true))
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(palette.border)
	st.Selected = st.Selected.Foreground(palette.text).Background(palette.selection).Bold(false)
	grid.SetStyles(st)

	pag := paginator.New()
	pag.Type = paginator.Dots

	editor := textarea.New()
	editor.CharLimit = 0

	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &dataView{grid: grid, pag: pag, editor: editor, pageSize: pageSize, page: 1}
}

// SetTable switches the view to another table. The page counter always
// resets to 1: switching tables must not retain a stale page number.
func (v *dataView) SetTable(database string, tbl tableInfo, fields []fieldInfo) {
	v.database = database
	v.tbl = tbl
	v.fields = fields
	v.page = 1
	v.total = 0
	v.records = nil
	v.columns = nil
	v.loading = true
	v.closeEditor()
	v.grid.SetRows(nil)
}

func (v *dataView) SetPage(page int, result pageResult) {
	v.page = page
	v.total = result.Total
	v.records = result.Records
	v.loading = false
	v.columns = columnNames(v.fields, v.records)
	v.rebuild()
}

func (v *dataView) rebuild() {
	cols := make([]table.Column, len(v.columns))
	width := v.gridWidth()
	for i, name := range v.columns {
		cols[i] = table.Column{Title: name, Width: columnWidth(width, len(v.columns))}
	}
	rows := make([]table.Row, len(v.records))
	for i, record := range v.records {
		row := make(table.Row, len(v.columns))
		for j, name := range v.columns {
			row[j] = truncateCell(cellText(record[name]), cellDisplayLimit)
		}
		rows[i] = row
	}
	cursor := v.grid.Cursor()
	v.grid.SetColumns(cols)
	v.grid.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	v.grid.SetCursor(cursor)

	v.pag.PerPage = v.pageSize
	v.pag.SetTotalPages(maxInt(v.total, 1))
	v.pag.Page = v.page - 1
}

func columnWidth(total, count int) int {
	if count == 0 {
		return total
	}
	w := total/count - 2
	if w < 8 {
		w = 8
	}
	return w
}

func (v *dataView) gridWidth() int {
	w := v.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (v *dataView) PageCount() int {
	return pageCount(v.total, v.pageSize)
}

func (v *dataView) CanPrev() bool { return v.page > 1 }
func (v *dataView) CanNext() bool { return v.page < v.PageCount() }

func (v *dataView) SelectedRecord() (map[string]any, bool) {
	idx := v.grid.Cursor()
	if idx < 0 || idx >= len(v.records) {
		return nil, false
	}
	return v.records[idx], true
}

// openEditor shows the full record, not just the visible columns, as
// pretty-printed JSON.
func (v *dataView) openEditor() {
	record, ok := v.SelectedRecord()
	if !ok {
		return
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return
	}
	v.editIndex = v.grid.Cursor()
	v.editor.SetValue(string(data))
	v.editor.Focus()
	v.editing = true
	v.editErr = ""
}

func (v *dataView) closeEditor() {
	v.editing = false
	v.editErr = ""
	v.editor.Blur()
}

// parseEdit validates the editor text locally. Malformed JSON and a missing
// id never reach the network.
func (v *dataView) parseEdit() (map[string]any, string, bool) {
	var record map[string]any
	if err := json.Unmarshal([]byte(v.editor.Value()), &record); err != nil {
		v.editErr = "Invalid JSON"
		return nil, "", false
	}
	id, ok := recordID(record)
	if !ok {
		v.editErr = "record has no id field"
		return nil, "", false
	}
	return record, id, true
}

func (v *dataView) SetUpdateError(err error) {
	v.editErr = err.Error()
}

func (v *dataView) SetSize(width, height int) {
	v.width = width
	v.height = height
	gridHeight := height - 6
	if gridHeight < 3 {
		gridHeight = 3
	}
	v.grid.SetHeight(gridHeight)
	v.editor.SetWidth(minInt(width-8, 100))
	v.editor.SetHeight(maxInt(minInt(height-8, 24), 6))
	if len(v.columns) > 0 {
		v.rebuild()
	}
}

func (v *dataView) Update(msg tea.Msg) tea.Cmd {
	if v.editing {
		var cmd tea.Cmd
		v.editor, cmd = v.editor.Update(msg)
		return cmd
	}
	var cmd tea.Cmd
	v.grid, cmd = v.grid.Update(msg)
	return cmd
}

func (v *dataView) View(s styles, focused bool) string {
	title := s.columnTitle.Render(fmt.Sprintf("%s / %s", v.database, v.tbl.Name))

	var body string
	switch {
	case v.loading:
		body = s.emptyState.Render("Loading records…")
	case v.total == 0 && len(v.records) == 0:
		body = s.emptyState.Render("No records.")
	default:
		footer := fmt.Sprintf("page %d/%d • %d records  %s", v.page, v.PageCount(), v.total, v.pag.View())
		body = lipgloss.JoinVertical(lipgloss.Left, v.grid.View(), s.statusHint.Render(footer))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, body)
	if focused {
		return s.panelFocused.Width(v.width).Render(content)
	}
	return s.panel.Width(v.width).Render(content)
}

// EditorView renders the record edit overlay.
func (v *dataView) EditorView(s styles) string {
	prompt := s.overlayPrompt.Render(fmt.Sprintf("Edit record • %s", v.tbl.Name))
	parts := []string{prompt, v.editor.View()}
	if v.editErr != "" {
		parts = append(parts, s.errText.Render(v.editErr))
	}
	parts = append(parts, s.hint.Render("ctrl+s save • esc cancel"))
	return s.overlay.Render(strings.Join(parts, "\n"))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
