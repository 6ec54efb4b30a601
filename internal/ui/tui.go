// Package ui provides the terminal kanban board.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/nibzard/taskflow/internal/todo"
	"github.com/nibzard/taskflow/internal/utils"
)

const (
	defaultWidth   = 96
	minColumnWidth = 24
	readyStatus    = "Ready"
)

// BoardOption configures the board UI.
type BoardOption func(*boardConfig)

// boardConfig holds board UI configuration.
type boardConfig struct {
	theme           string
	defaultCategory string
	logger          *log.Logger
	now             func() time.Time
}

// WithTheme selects the initial theme, dark or light.
func WithTheme(theme string) BoardOption {
	return func(c *boardConfig) {
		c.theme = theme
	}
}

// WithDefaultCategory pre-fills the category of new tasks.
func WithDefaultCategory(category string) BoardOption {
	return func(c *boardConfig) {
		if category != "" {
			c.defaultCategory = category
		}
	}
}

// WithLogger reports failed saves to logger.
func WithLogger(logger *log.Logger) BoardOption {
	return func(c *boardConfig) {
		c.logger = logger
	}
}

// WithClock overrides the clock used for overdue checks.
func WithClock(now func() time.Time) BoardOption {
	return func(c *boardConfig) {
		c.now = now
	}
}

// RunBoard runs the interactive board until the user quits or ctx is done.
func RunBoard(ctx context.Context, board *todo.Board, opts ...BoardOption) error {
	model := newBoardModel(board, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

type mode int

const (
	modeBoard mode = iota
	modeForm
	modeSearch
)

type boardModel struct {
	board  *todo.Board
	cfg    boardConfig
	keys   keyMap
	help   help.Model
	styles styles

	mode   mode
	form   *taskForm
	search textinput.Model
	filter string

	col  int
	rows [3]int

	status   string
	errMsg   string
	showHelp bool
	width    int
	height   int
}

func newBoardModel(board *todo.Board, opts ...BoardOption) *boardModel {
	cfg := boardConfig{
		theme:           ThemeDark,
		defaultCategory: todo.DefaultCategory,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search title, category or note"
	search.CharLimit = 100

	return &boardModel{
		board:  board,
		cfg:    cfg,
		keys:   defaultKeyMap(),
		help:   help.New(),
		styles: newStyles(cfg.theme),
		search: search,
		status: readyStatus,
		width:  defaultWidth,
	}
}

func (m *boardModel) Init() tea.Cmd {
	return nil
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m, m.updateForm(msg)
		case modeSearch:
			return m, m.updateSearch(msg)
		default:
			return m.updateBoard(msg)
		}
	}

	if m.mode == modeForm && m.form != nil {
		cmd, _, _ := m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *boardModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Left):
		m.switchColumn(-1)
	case key.Matches(msg, m.keys.Right):
		m.switchColumn(1)
	case key.Matches(msg, m.keys.New):
		m.form = newDraftForm(m.cfg.defaultCategory)
		m.mode = modeForm
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Edit):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.form = newTaskForm(task.ID, todo.DraftFrom(task))
		m.mode = modeForm
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Delete):
		m.deleteSelected()
	case key.Matches(msg, m.keys.MoveLeft):
		m.moveSelected(todo.Left)
	case key.Matches(msg, m.keys.MoveRight):
		m.moveSelected(todo.Right)
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.filter)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Clear):
		if m.filter != "" {
			m.setFilter("")
			m.status = "Search cleared."
		}
	case key.Matches(msg, m.keys.Theme):
		m.styles = newStyles(toggleTheme(m.styles.theme))
		m.status = fmt.Sprintf("Theme: %s.", m.styles.theme)
	case key.Matches(msg, m.keys.Save):
		if err := m.board.Save(); err != nil {
			m.fail("Save failed", err)
		} else {
			m.status = "Tasks saved."
		}
	}
	return m, nil
}

func (m *boardModel) updateForm(msg tea.KeyMsg) tea.Cmd {
	cmd, submit, cancel := m.form.update(msg)
	switch {
	case cancel:
		m.closeForm()
		return nil
	case !submit:
		return cmd
	}

	d, err := m.form.draft()
	if err != nil {
		return m.form.fail(err)
	}

	var task todo.Task
	if m.form.editID == 0 {
		task, err = m.board.Add(d)
	} else {
		task, err = m.board.Edit(m.form.editID, d)
	}
	if err != nil {
		var ve *todo.ValidationError
		if errors.As(err, &ve) {
			return m.form.fail(err)
		}
		m.closeForm()
		m.fail("Save failed", err)
		return nil
	}

	if m.form.editID == 0 {
		m.status = "Task added."
	} else {
		m.status = "Task updated."
	}
	m.closeForm()
	m.selectTask(task.ID)
	return nil
}

func (m *boardModel) closeForm() {
	m.form = nil
	m.mode = modeBoard
}

func (m *boardModel) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.Blur()
		m.mode = modeBoard
		return nil
	case tea.KeyEsc:
		m.search.Blur()
		m.search.SetValue("")
		m.setFilter("")
		m.mode = modeBoard
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.setFilter(m.search.Value())
	return cmd
}

func (m *boardModel) setFilter(filter string) {
	m.filter = filter
	m.rows = [3]int{}
	m.clamp()
}

func (m *boardModel) columnStatus(i int) todo.Status {
	return todo.Statuses()[i]
}

func (m *boardModel) column(i int) []todo.Task {
	return m.board.Column(m.columnStatus(i), m.filter)
}

func (m *boardModel) selected() (todo.Task, bool) {
	tasks := m.column(m.col)
	row := m.rows[m.col]
	if row < 0 || row >= len(tasks) {
		return todo.Task{}, false
	}
	return tasks[row], true
}

func (m *boardModel) announceSelection() {
	if task, ok := m.selected(); ok {
		m.status = "Selected: " + task.Title
	}
}

func (m *boardModel) moveSelection(delta int) {
	n := len(m.column(m.col))
	if n == 0 {
		return
	}
	row := m.rows[m.col] + delta
	if row < 0 || row >= n {
		return
	}
	m.rows[m.col] = row
	m.announceSelection()
}

func (m *boardModel) switchColumn(delta int) {
	col := m.col + delta
	if col < 0 || col >= len(m.rows) {
		return
	}
	m.col = col
	m.clamp()
	m.announceSelection()
}

// selectTask points the selection at the card with id, if visible.
func (m *boardModel) selectTask(id int) {
	for c := range m.rows {
		for r, task := range m.column(c) {
			if task.ID == id {
				m.col = c
				m.rows[c] = r
				return
			}
		}
	}
	m.clamp()
}

// clamp keeps every row index inside its column.
func (m *boardModel) clamp() {
	for c := range m.rows {
		n := len(m.column(c))
		switch {
		case n == 0:
			m.rows[c] = 0
		case m.rows[c] >= n:
			m.rows[c] = n - 1
		case m.rows[c] < 0:
			m.rows[c] = 0
		}
	}
}

func (m *boardModel) deleteSelected() {
	task, ok := m.selected()
	if !ok {
		return
	}
	if err := m.board.Delete(task.ID); err != nil {
		m.fail("Delete failed", err)
		return
	}
	m.clamp()
	m.status = "Task removed."
}

func (m *boardModel) moveSelected(d todo.Direction) {
	task, ok := m.selected()
	if !ok {
		return
	}
	moved, changed, err := m.board.Move(task.ID, d)
	if err != nil {
		m.fail("Move failed", err)
		return
	}
	if !changed {
		return
	}
	m.selectTask(moved.ID)
	m.status = fmt.Sprintf("Task moved %s.", d)
}

func (m *boardModel) fail(what string, err error) {
	m.errMsg = fmt.Sprintf("%s: %v", what, err)
	if m.cfg.logger != nil {
		m.cfg.logger.Error(strings.ToLower(what), "path", m.board.Store().Path(), "err", err)
	}
}

func (m *boardModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("TaskFlow"))
	b.WriteString("  ")
	b.WriteString(m.searchLine())
	b.WriteString("\n\n")

	if m.mode == modeForm && m.form != nil {
		b.WriteString(m.form.view(m.styles, m.help.View(m.form.helpKeys())))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.renderColumns())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m *boardModel) searchLine() string {
	if m.mode == modeSearch {
		return m.search.View()
	}
	if m.filter != "" {
		return m.styles.meta.Render(fmt.Sprintf("Filter: %q (esc to clear)", m.filter))
	}
	return m.styles.meta.Render("Press / to search")
}

func (m *boardModel) statusLine() string {
	if m.errMsg != "" {
		return m.styles.errText.Render(m.errMsg)
	}
	summary := fmt.Sprintf("%d tasks", m.board.Len())
	if overdue := m.overdueCount(); overdue > 0 {
		summary += fmt.Sprintf(", %d overdue", overdue)
	}
	return m.styles.status.Render(m.status + "  ·  " + summary)
}

func (m *boardModel) overdueCount() int {
	now := m.cfg.now()
	n := 0
	for _, task := range m.board.Tasks() {
		if task.Overdue(now) {
			n++
		}
	}
	return n
}

func (m *boardModel) columnWidth() int {
	w := (m.width - 2) / len(m.rows)
	if w < minColumnWidth {
		w = minColumnWidth
	}
	return w
}

func (m *boardModel) renderColumns() string {
	width := m.columnWidth()
	counts := m.board.Counts()
	cols := make([]string, len(m.rows))
	for c := range m.rows {
		status := m.columnStatus(c)
		style := m.styles.column
		if c == m.col {
			style = m.styles.columnActive
		}
		inner := width - style.GetHorizontalFrameSize()

		var b strings.Builder
		b.WriteString(m.styles.header.Render(fmt.Sprintf("%s (%d)", status.Label(), counts[status])))
		b.WriteString("\n")

		tasks := m.column(c)
		if len(tasks) == 0 {
			b.WriteString(m.styles.empty.Render("No tasks"))
		}
		for r, task := range tasks {
			selected := c == m.col && r == m.rows[c]
			b.WriteString(m.renderCard(task, inner, selected))
			b.WriteString("\n")
		}
		cols[c] = style.Width(width - style.GetHorizontalBorderSize()).Render(strings.TrimRight(b.String(), "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m *boardModel) renderCard(task todo.Task, width int, selected bool) string {
	style := m.styles.card
	if selected {
		style = m.styles.cardSelected
	}
	inner := width - style.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}

	var lines []string
	header := fmt.Sprintf("Priority: %d • %s", task.Priority, task.Category)
	lines = append(lines, m.styles.badge(task.Priority).Render(utils.Truncate(header, inner-2)))

	titleStyle := m.styles.cardTitle
	if task.Overdue(m.cfg.now()) {
		titleStyle = m.styles.overdue
	}
	lines = append(lines, titleStyle.Render(utils.Truncate(task.Title, inner)))

	meta := "No due date"
	if task.DueDate != "" {
		meta = "Due: " + task.DueDate
	}
	lines = append(lines, m.styles.meta.Render(meta))

	if task.Note != "" {
		lines = append(lines, m.styles.note.Render(utils.Truncate(utils.FirstLine(task.Note), inner)))
	}

	return style.Width(width - style.GetHorizontalBorderSize()).Render(strings.Join(lines, "\n"))
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
