package todo

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// IsOverdue reports whether a task due on due is late today.
// It is false when done is set or due is empty or not a valid date.
func IsOverdue(due string, done bool) bool {
	return IsOverdueAt(due, done, time.Now())
}

// IsOverdueAt is IsOverdue evaluated against the calendar day of now.
func IsOverdueAt(due string, done bool, now time.Time) bool {
	if done || due == "" {
		return false
	}
	date, err := time.ParseInLocation(DateLayout, due, now.Location())
	if err != nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return date.Before(today)
}

// Matches reports whether the case-insensitive filter text occurs in the
// task's title, category, or note. An empty filter matches everything.
func (t Task) Matches(filter string) bool {
	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return true
	}
	haystack := strings.ToLower(t.Title + " " + t.Category + " " + t.Note)
	return strings.Contains(haystack, needle)
}

// Filter returns the tasks matching filter, preserving their order.
func Filter(tasks []Task, filter string) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Matches(filter) {
			out = append(out, t)
		}
	}
	return out
}

// Sort orders tasks in place by status column, then priority, then due
// date with undated tasks last. Ties keep their original order.
func Sort(tasks []Task) {
	slices.SortStableFunc(tasks, compareTasks)
}

// Sorted returns a sorted copy of tasks.
func Sorted(tasks []Task) []Task {
	out := slices.Clone(tasks)
	Sort(out)
	return out
}

func compareTasks(a, b Task) int {
	if c := cmp.Compare(a.Status.Rank(), b.Status.Rank()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.sortPriority(), b.sortPriority()); c != 0 {
		return c
	}
	return cmp.Compare(a.sortDue(), b.sortDue())
}

// sortPriority treats a missing priority as medium.
func (t Task) sortPriority() Priority {
	if t.Priority == 0 {
		return PriorityMedium
	}
	return t.Priority
}

func (t Task) sortDue() string {
	if t.DueDate == "" {
		return noDueDate
	}
	return t.DueDate
}
