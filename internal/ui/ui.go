package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"todoapp/internal/config"
	"todoapp/internal/theme"
	"todoapp/internal/todo"
)

type mode int

const (
	modeList mode = iota
	modeAdd
)

// listTop is the screen row of the first task; View writes a header line
// and a blank line above the list.
const listTop = 2

type storeChangedMsg struct{}

type themeChangedMsg struct{ light bool }

type Model struct {
	store      *todo.Store
	theme      *theme.Controller
	cfg        config.Config
	log        *log.Logger
	cursor     int
	mode       mode
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel *todo.Task
	width      int
}

func newModel(store *todo.Store, th *theme.Controller, cfg config.Config, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ti := textinput.New()
	ti.Placeholder = "Create a new todo..."
	ti.CharLimit = 256
	ti.Width = 40
	ti.SetValue(store.Input())

	return Model{
		store:  store,
		theme:  th,
		cfg:    cfg,
		log:    logger,
		cursor: clampCursor(0, len(store.VisibleTasks())),
		status: fmt.Sprintf("Press '%s' to add, '%s' to move a task, '%s' to switch theme.", cfg.Keys.Add, cfg.Keys.Grab, cfg.Keys.Theme),
		input:  ti,
		mode:   modeList,
	}
}

// Run drives the program until the user quits. Store and theme changes made
// outside of Update are forwarded as messages so the view re-renders.
func Run(store *todo.Store, th *theme.Controller, cfg config.Config, logger *log.Logger) error {
	m := newModel(store, th, cfg, logger)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	stopStore := store.Subscribe(func() { go program.Send(storeChangedMsg{}) })
	defer stopStore()
	stopTheme := th.Subscribe(func(light bool) { go program.Send(themeChangedMsg{light: light}) })
	defer stopTheme()

	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case storeChangedMsg:
		m.cursor = clampCursor(m.cursor, len(m.store.VisibleTasks()))
	case themeChangedMsg:
		m.log.Debug("theme marker", "dark", !msg.light)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.mode == modeAdd {
		return m.updateAddMode(key, msg)
	}
	return m.updateListMode(key)
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.store.SetInput("")
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		m.store.SetInput(m.input.Value())
		task, ok := m.store.Submit()
		if !ok {
			m.status = "Title cannot be empty"
			return m, nil
		}
		m.status = "Added task"
		if i := indexOf(m.store.VisibleTasks(), task.ID); i >= 0 {
			m.cursor = i
		}
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.store.SetInput(m.input.Value())
		return m, cmd
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	tasks := m.store.VisibleTasks()
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		m.store.DragEnd()
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(tasks) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(tasks))
		m.dragOver()
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(tasks))
		}
		m.dragOver()
	case m.cfg.Keys.Add:
		m.mode = modeAdd
		m.input.SetValue(m.store.Input())
		m.status = "Add mode: type a title and press Enter"
		return m, m.input.Focus()
	case m.cfg.Keys.Toggle:
		if len(tasks) == 0 {
			return m, nil
		}
		m.store.Toggle(tasks[m.cursor].ID)
		m.cursor = clampCursor(m.cursor, len(m.store.VisibleTasks()))
		m.status = "Toggled task"
	case m.cfg.Keys.Delete:
		if len(tasks) == 0 {
			return m, nil
		}
		t := tasks[m.cursor]
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case m.cfg.Keys.ClearCompleted:
		m.store.ClearCompleted()
		m.cursor = clampCursor(m.cursor, len(m.store.VisibleTasks()))
		m.status = "Cleared completed tasks"
	case m.cfg.Keys.FilterAll:
		m.setFilter(todo.FilterAll)
	case m.cfg.Keys.FilterActive:
		m.setFilter(todo.FilterActive)
	case m.cfg.Keys.FilterDone:
		m.setFilter(todo.FilterCompleted)
	case m.cfg.Keys.Theme:
		m.theme.Toggle()
		if m.theme.Light() {
			m.status = "Light theme"
		} else {
			m.status = "Dark theme"
		}
	case m.cfg.Keys.Grab:
		if len(tasks) == 0 {
			return m, nil
		}
		target := tasks[m.cursor]
		if dragID, dragging := m.store.Dragging(); dragging {
			m.store.Drop(target.ID)
			m.cursor = clampCursor(indexOf(m.store.VisibleTasks(), dragID), len(tasks))
			m.status = "Moved task"
			return m, nil
		}
		m.store.DragStart(target.ID)
		m.status = fmt.Sprintf("Moving \"%s\": pick a spot and press '%s', %s to cancel", target.Title, m.cfg.Keys.Grab, m.cfg.Keys.Cancel)
	case m.cfg.Keys.Cancel:
		if _, dragging := m.store.Dragging(); dragging {
			m.store.DragEnd()
			m.status = "Move cancelled"
		}
	}
	return m, nil
}

func (m *Model) setFilter(f todo.Filter) {
	m.store.SetFilter(f)
	m.cursor = clampCursor(m.cursor, len(m.store.VisibleTasks()))
	m.status = "Showing " + f.String() + " tasks"
}

func (m Model) dragOver() {
	if _, dragging := m.store.Dragging(); dragging {
		m.store.DragOver()
	}
}

// handleMouse maps a press-drag-release gesture on the task rows onto the
// store's drag operations. Releasing away from any row cancels the drag.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeList || m.confirmDel {
		return m, nil
	}
	tasks := m.store.VisibleTasks()
	row, onRow := rowAt(msg.Y, len(tasks))
	dragID, dragging := m.store.Dragging()

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !onRow {
			return m, nil
		}
		m.cursor = row
		m.store.DragStart(tasks[row].ID)
	case tea.MouseActionMotion:
		if !dragging {
			return m, nil
		}
		m.store.DragOver()
		if onRow {
			m.cursor = row
		}
	case tea.MouseActionRelease:
		if !dragging {
			return m, nil
		}
		if !onRow {
			m.store.DragEnd()
			return m, nil
		}
		m.store.Drop(tasks[row].ID)
		m.cursor = clampCursor(indexOf(m.store.VisibleTasks(), dragID), len(tasks))
	}
	return m, nil
}

func rowAt(y, n int) (int, bool) {
	row := y - listTop
	if row < 0 || row >= n {
		return 0, false
	}
	return row, true
}

func (m Model) View() string {
	st := stylesFor(m.theme.Light())
	tasks := m.store.VisibleTasks()
	dragID, dragging := m.store.Dragging()

	var b strings.Builder

	b.WriteString(st.header.Render("TODO"))
	b.WriteString("  ")
	b.WriteString(st.muted.Render(themeLabel(m.theme.Light())))
	b.WriteString("\n\n")

	if len(tasks) == 0 {
		b.WriteString(st.muted.Render(emptyMessage(m.store.Filter(), m.cfg.Keys.Add)))
		b.WriteString("\n")
	}
	for i, t := range tasks {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.Done {
			checkbox = "[x]"
		}
		title := st.title.Render(t.Title)
		if t.Done {
			title = st.done.Render(t.Title)
		}
		line := fmt.Sprintf("%s %s %s", cursor, checkbox, title)
		if dragging && t.ID == dragID {
			line = st.dragging.Render(line + "  (moving)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.mode == modeAdd {
		b.WriteString("Add Task: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(st.muted.Render(footer(m.store.UncompletedCount(), m.store.Filter())))
	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(st.muted.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		m.store.Remove(m.pendingDel.ID)
		m.cursor = clampCursor(m.cursor, len(m.store.VisibleTasks()))
		m.status = "Deleted task"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s delete • %s clear done • %s/%s/%s filter • %s move task • %s theme • %s quit",
		k.Up, k.Down, k.Add, keyLabel(k.Toggle), k.Delete, k.ClearCompleted, k.FilterAll, k.FilterActive, k.FilterDone, k.Grab, k.Theme, k.Quit)
}

func footer(left int, f todo.Filter) string {
	noun := "items"
	if left == 1 {
		noun = "item"
	}
	return fmt.Sprintf("%d %s left • showing %s", left, noun, f)
}

func emptyMessage(f todo.Filter, addKey string) string {
	switch f {
	case todo.FilterActive:
		return "Nothing left to do."
	case todo.FilterCompleted:
		return "No completed tasks."
	}
	return fmt.Sprintf("No tasks yet. Press '%s' to add one.", addKey)
}

func themeLabel(light bool) string {
	if light {
		return "light"
	}
	return "dark"
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func indexOf(tasks []todo.Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
