package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskflow/internal/todo"
)

type formField int

const (
	fieldTitle formField = iota
	fieldCategory
	fieldDue
	fieldPriority
	fieldStatus
	fieldNote
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldTitle:    "Title",
	fieldCategory: "Category",
	fieldDue:      "Due (YYYY-MM-DD)",
	fieldPriority: "Priority (1 high, 2 medium, 3 low)",
	fieldStatus:   "Status (todo, doing, done)",
	fieldNote:     "Note",
}

var fieldPlaceholders = [fieldCount]string{
	fieldTitle:    "e.g. Prepare the presentation",
	fieldCategory: "e.g. Work",
	fieldDue:      "2025-11-30",
	fieldPriority: "2",
	fieldStatus:   "todo",
	fieldNote:     "Optional details",
}

// pathFields maps a validation error path to the input holding it.
var pathFields = map[string]formField{
	"title":    fieldTitle,
	"category": fieldCategory,
	"due_date": fieldDue,
	"priority": fieldPriority,
	"status":   fieldStatus,
	"note":     fieldNote,
}

// taskForm is the add/edit dialog.
type taskForm struct {
	// editID is the task being edited, or 0 for a new task.
	editID int
	inputs [fieldNote]textinput.Model
	note   textarea.Model
	focus  formField
	keys   formKeyMap
	nkeys  noteKeyMap
	err    error

	// values are the loaded field values and shown is what the widgets
	// displayed for them after sanitizing. A widget still showing its
	// initial text yields the loaded value unchanged.
	values [fieldCount]string
	shown  [fieldCount]string
}

func newTaskForm(editID int, d todo.Draft) *taskForm {
	f := &taskForm{editID: editID, keys: defaultFormKeyMap(), nkeys: defaultNoteKeyMap()}

	f.values = [fieldCount]string{
		fieldTitle:    d.Title,
		fieldCategory: d.Category,
		fieldDue:      d.DueDate,
		fieldStatus:   string(d.Status),
		fieldNote:     d.Note,
	}
	if d.Priority != 0 {
		f.values[fieldPriority] = strconv.Itoa(int(d.Priority))
	}

	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = fieldPlaceholders[i]
		ti.CharLimit = 0
		ti.Width = 48
		f.inputs[i] = ti
	}
	f.inputs[fieldDue].CharLimit = len(todo.DateLayout)
	f.inputs[fieldPriority].CharLimit = 1

	ta := textarea.New()
	ta.Placeholder = fieldPlaceholders[fieldNote]
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(50)
	ta.SetHeight(4)
	f.note = ta

	for i := range f.values {
		f.setValue(formField(i), f.values[i])
		f.shown[i] = f.value(formField(i))
	}
	f.inputs[fieldTitle].Focus()
	return f
}

// newDraftForm opens an empty form with the defaults of a new task.
func newDraftForm(defaultCategory string) *taskForm {
	return newTaskForm(0, todo.Draft{
		Category: defaultCategory,
		Priority: todo.PriorityMedium,
		Status:   todo.StatusTodo,
	})
}

func (f *taskForm) heading() string {
	if f.editID == 0 {
		return "New task"
	}
	return fmt.Sprintf("Edit task #%d", f.editID)
}

// value returns what the widget for field currently shows.
func (f *taskForm) value(field formField) string {
	if field == fieldNote {
		return f.note.Value()
	}
	return f.inputs[field].Value()
}

func (f *taskForm) setValue(field formField, v string) {
	if field == fieldNote {
		f.note.SetValue(v)
		return
	}
	f.inputs[field].SetValue(v)
}

// field returns the value of field as entered by the user.
func (f *taskForm) field(field formField) string {
	v := f.value(field)
	if v == f.shown[field] {
		return f.values[field]
	}
	return v
}

func (f *taskForm) setFocus(field formField) tea.Cmd {
	if f.focus == fieldNote {
		f.note.Blur()
	} else {
		f.inputs[f.focus].Blur()
	}
	f.focus = field
	if f.focus == fieldNote {
		return f.note.Focus()
	}
	return f.inputs[f.focus].Focus()
}

func (f *taskForm) next() tea.Cmd {
	return f.setFocus((f.focus + 1) % fieldCount)
}

func (f *taskForm) prev() tea.Cmd {
	return f.setFocus((f.focus + fieldCount - 1) % fieldCount)
}

// helpKeys returns the bindings active for the focused field.
func (f *taskForm) helpKeys() help.KeyMap {
	if f.focus == fieldNote {
		return f.nkeys
	}
	return f.keys
}

// update handles navigation keys and forwards the rest to the focused
// input. submit is true when the user asked to save.
func (f *taskForm) update(msg tea.Msg) (cmd tea.Cmd, submit, cancel bool) {
	if f.focus == fieldNote {
		if km, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(km, f.nkeys.Cancel):
				return nil, false, true
			case key.Matches(km, f.nkeys.Submit):
				return nil, true, false
			case key.Matches(km, f.nkeys.Next):
				return f.next(), false, false
			case key.Matches(km, f.nkeys.Prev):
				return f.prev(), false, false
			}
		}
		f.note, cmd = f.note.Update(msg)
		return cmd, false, false
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, f.keys.Cancel):
			return nil, false, true
		case key.Matches(km, f.keys.Submit):
			return nil, true, false
		case key.Matches(km, f.keys.Next):
			return f.next(), false, false
		case key.Matches(km, f.keys.Prev):
			return f.prev(), false, false
		}
	}
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd, false, false
}

// draft parses the inputs. Priority and status are checked here; the
// remaining rules are applied by the board.
func (f *taskForm) draft() (todo.Draft, error) {
	d := todo.Draft{
		Title:    f.field(fieldTitle),
		Category: f.field(fieldCategory),
		DueDate:  f.field(fieldDue),
		Note:     f.field(fieldNote),
	}

	if raw := strings.TrimSpace(f.field(fieldPriority)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !todo.Priority(n).Valid() {
			return todo.Draft{}, &todo.ValidationError{
				Path: "priority",
				Err:  fmt.Errorf("%w, got %q", todo.ErrInvalidPriority, raw),
			}
		}
		d.Priority = todo.Priority(n)
	}

	if raw := strings.TrimSpace(f.field(fieldStatus)); raw != "" {
		status, err := todo.ParseStatus(raw)
		if err != nil {
			return todo.Draft{}, &todo.ValidationError{Path: "status", Err: err}
		}
		d.Status = status
	}
	return d, nil
}

// fail records err and moves focus to the field it concerns.
func (f *taskForm) fail(err error) tea.Cmd {
	f.err = err
	var ve *todo.ValidationError
	if errors.As(err, &ve) {
		if field, ok := pathFields[ve.Path]; ok {
			return f.setFocus(field)
		}
	}
	return nil
}

func (f *taskForm) view(s styles, help string) string {
	var b strings.Builder
	b.WriteString(s.header.Render(f.heading()))
	b.WriteString("\n")
	for i := formField(0); i < fieldCount; i++ {
		label := s.label
		if i == f.focus {
			label = s.labelFocused
		}
		b.WriteString(label.Render(fieldLabels[i]))
		b.WriteString("\n")
		if i == fieldNote {
			b.WriteString(f.note.View())
		} else {
			b.WriteString(f.inputs[i].View())
		}
		b.WriteString("\n")
	}
	if f.err != nil {
		b.WriteString("\n")
		b.WriteString(s.errText.Render(formErrorText(f.err)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(help)
	return s.dialog.Render(b.String())
}

// formErrorText phrases a validation error for the dialog.
func formErrorText(err error) string {
	switch {
	case errors.Is(err, todo.ErrEmptyTitle):
		return "Title must not be empty."
	case errors.Is(err, todo.ErrInvalidDueDate):
		return "Invalid date. Use YYYY-MM-DD."
	case errors.Is(err, todo.ErrInvalidPriority):
		return "Priority must be 1, 2 or 3."
	case errors.Is(err, todo.ErrInvalidStatus):
		return "Status must be todo, doing or done."
	default:
		return err.Error()
	}
}
