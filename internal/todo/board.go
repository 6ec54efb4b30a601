package todo

import (
	"fmt"
	"slices"
)

// Action names a board mutation.
type Action string

const (
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionMove   Action = "move"
	ActionSave   Action = "save"
)

// Activity describes a mutation that was persisted.
type Activity struct {
	Action Action `json:"action"`
	Task   *Task  `json:"task,omitempty"`
	From   Status `json:"from,omitempty"`
	Count  int    `json:"count"`
}

// Recorder receives an Activity after every successful mutation.
type Recorder interface {
	Record(Activity)
}

// Option configures a Board.
type Option func(*Board)

// WithRecorder attaches an activity recorder.
func WithRecorder(r Recorder) Option {
	return func(b *Board) {
		b.recorder = r
	}
}

// WithDefaultCategory overrides the category applied to blank input.
func WithDefaultCategory(category string) Option {
	return func(b *Board) {
		if category != "" {
			b.defaultCategory = category
		}
	}
}

// Board owns the in-memory task list and persists it after each change.
// It is not safe for concurrent use.
type Board struct {
	store           *Store
	tasks           []Task
	recorder        Recorder
	defaultCategory string
}

// NewBoard loads the tasks from store.
func NewBoard(store *Store, opts ...Option) *Board {
	b := &Board{
		store:           store,
		defaultCategory: DefaultCategory,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.Reload()
	return b
}

// Reload discards in-memory state and reads the file again.
func (b *Board) Reload() {
	b.tasks = b.store.Load()
}

// Store returns the backing store.
func (b *Board) Store() *Store {
	return b.store
}

// Tasks returns a copy of the tasks in insertion order.
func (b *Board) Tasks() []Task {
	return slices.Clone(b.tasks)
}

// Len returns the number of tasks.
func (b *Board) Len() int {
	return len(b.tasks)
}

// Get returns the task with id.
func (b *Board) Get(id int) (Task, bool) {
	i := b.index(id)
	if i < 0 {
		return Task{}, false
	}
	return b.tasks[i], true
}

// NextID returns max(existing ids) + 1, or 1 for an empty board.
func (b *Board) NextID() int {
	maxID := 0
	for _, t := range b.tasks {
		maxID = max(maxID, t.ID)
	}
	return maxID + 1
}

// Add validates d, assigns the next id, appends the task, and saves.
func (b *Board) Add(d Draft) (Task, error) {
	d, err := d.normalize(b.defaultCategory)
	if err != nil {
		return Task{}, err
	}

	task := Task{ID: b.NextID()}
	task.apply(d)

	next := append(slices.Clone(b.tasks), task)
	if err := b.commit(next, Activity{Action: ActionAdd, Task: &task}); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Edit overwrites every mutable field of the task with id and saves.
func (b *Board) Edit(id int, d Draft) (Task, error) {
	i := b.index(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	d, err := d.normalize(b.defaultCategory)
	if err != nil {
		return Task{}, err
	}

	next := slices.Clone(b.tasks)
	from := next[i].Status
	next[i].apply(d)
	task := next[i]

	if err := b.commit(next, Activity{Action: ActionEdit, Task: &task, From: from}); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Delete removes the task with id and saves.
func (b *Board) Delete(id int) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}

	task := b.tasks[i]
	next := slices.Delete(slices.Clone(b.tasks), i, i+1)
	return b.commit(next, Activity{Action: ActionDelete, Task: &task})
}

// Move shifts the task one column in direction d and saves. Moving past
// the first or last column is a no-op and reports false.
func (b *Board) Move(id int, d Direction) (Task, bool, error) {
	i := b.index(id)
	if i < 0 {
		return Task{}, false, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}

	current := b.tasks[i]
	if !current.Status.Valid() {
		return current, false, &ValidationError{
			Path: fmt.Sprintf("task %d status", id),
			Err:  fmt.Errorf("%w %q", ErrInvalidStatus, current.Status),
		}
	}
	status, ok := current.Status.Step(d)
	if !ok {
		return current, false, nil
	}

	next := slices.Clone(b.tasks)
	next[i].Status = status
	task := next[i]

	if err := b.commit(next, Activity{Action: ActionMove, Task: &task, From: current.Status}); err != nil {
		return current, false, err
	}
	return task, true, nil
}

// Save writes the current tasks without changing them.
func (b *Board) Save() error {
	return b.commit(b.tasks, Activity{Action: ActionSave})
}

// View returns the tasks matching filter in board order.
func (b *Board) View(filter string) []Task {
	out := Filter(b.tasks, filter)
	Sort(out)
	return out
}

// Column returns the tasks in status matching filter, in board order.
func (b *Board) Column(status Status, filter string) []Task {
	var out []Task
	for _, t := range b.View(filter) {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Counts returns the number of tasks per status.
func (b *Board) Counts() map[Status]int {
	counts := map[Status]int{
		StatusTodo:  0,
		StatusDoing: 0,
		StatusDone:  0,
	}
	for _, t := range b.tasks {
		counts[t.Status]++
	}
	return counts
}

func (b *Board) index(id int) int {
	return slices.IndexFunc(b.tasks, func(t Task) bool { return t.ID == id })
}

// commit persists next and only then makes it the current state.
func (b *Board) commit(next []Task, a Activity) error {
	if err := b.store.Save(next); err != nil {
		return err
	}
	b.tasks = next
	a.Count = len(next)
	if b.recorder != nil {
		b.recorder.Record(a)
	}
	return nil
}
