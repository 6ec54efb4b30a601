package todo

import (
	"reflect"
	"testing"
	"time"
)

func TestIsOverdue(t *testing.T) {
	tests := []struct {
		name string
		due  string
		done bool
		want bool
	}{
		{"past date", "2000-01-01", false, true},
		{"past date but done", "2000-01-01", true, false},
		{"empty", "", false, false},
		{"not a date", "not-a-date", false, false},
		{"far future", "2999-12-31", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverdue(tt.due, tt.done); got != tt.want {
				t.Errorf("IsOverdue(%q, %v) = %v, want %v", tt.due, tt.done, got, tt.want)
			}
		})
	}
}

func TestIsOverdueAtDayBoundary(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 59, 0, 0, time.Local)

	if IsOverdueAt("2025-03-10", false, now) {
		t.Error("a task due today is not overdue")
	}
	if !IsOverdueAt("2025-03-09", false, now) {
		t.Error("a task due yesterday is overdue")
	}
	if IsOverdueAt("2025-03-11", false, now) {
		t.Error("a task due tomorrow is not overdue")
	}
}

func TestTaskOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	late := Task{DueDate: "2025-01-01", Status: StatusDoing}
	if !late.Overdue(now) {
		t.Error("doing task past its due date should be overdue")
	}
	late.Status = StatusDone
	if late.Overdue(now) {
		t.Error("done task is never overdue")
	}
}

func TestSort(t *testing.T) {
	tasks := []Task{
		{ID: 1, Status: StatusDone, Priority: 1, DueDate: "2025-01-01"},
		{ID: 2, Status: StatusTodo, Priority: 3, DueDate: ""},
		{ID: 3, Status: StatusDoing, Priority: 2, DueDate: "2025-05-01"},
		{ID: 4, Status: StatusTodo, Priority: 1, DueDate: ""},
		{ID: 5, Status: StatusTodo, Priority: 1, DueDate: "2025-06-01"},
		{ID: 6, Status: StatusTodo, Priority: 1, DueDate: "2025-02-01"},
		{ID: 7, Status: StatusDoing, Priority: 1, DueDate: ""},
		{ID: 8, Status: StatusTodo, Priority: 3, DueDate: "2030-01-01"},
	}

	Sort(tasks)

	var got []int
	for _, task := range tasks {
		got = append(got, task.ID)
	}
	want := []int{6, 5, 4, 8, 2, 7, 3, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sort order = %v, want %v", got, want)
	}
}

func TestSortGroupsByColumn(t *testing.T) {
	tasks := []Task{
		{ID: 1, Status: StatusDone, Priority: 1},
		{ID: 2, Status: StatusDoing, Priority: 3},
		{ID: 3, Status: StatusTodo, Priority: 3},
		{ID: 4, Status: StatusDone, Priority: 2},
		{ID: 5, Status: StatusTodo, Priority: 1},
	}

	sorted := Sorted(tasks)
	lastRank := -1
	for _, task := range sorted {
		if task.Status.Rank() < lastRank {
			t.Fatalf("column order violated: %+v", sorted)
		}
		lastRank = task.Status.Rank()
	}
	if tasks[0].ID != 1 {
		t.Error("Sorted must not modify its input")
	}
}

func TestSortStableAndMissingPriority(t *testing.T) {
	tasks := []Task{
		{ID: 1, Status: StatusTodo, Priority: 3},
		{ID: 2, Status: StatusTodo},
		{ID: 3, Status: StatusTodo, Priority: 2},
		{ID: 4, Status: StatusTodo, Priority: 1},
	}
	Sort(tasks)

	var got []int
	for _, task := range tasks {
		got = append(got, task.ID)
	}
	want := []int{4, 2, 3, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sort order = %v, want %v", got, want)
	}
}

func TestFilter(t *testing.T) {
	tasks := []Task{
		{ID: 1, Title: "Prepare slides", Category: "Work"},
		{ID: 2, Title: "Buy milk", Category: "Home", Note: "Semi-skimmed"},
		{ID: 3, Title: "Call Ana", Category: "WORK", Note: "about slides"},
	}

	tests := []struct {
		name   string
		filter string
		want   []int
	}{
		{"empty matches all", "", []int{1, 2, 3}},
		{"blank matches all", "   ", []int{1, 2, 3}},
		{"title", "milk", []int{2}},
		{"category case-insensitive", "work", []int{1, 3}},
		{"note", "SKIMMED", []int{2}},
		{"title or note", "slides", []int{1, 3}},
		{"no match", "xyz", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []int{}
			for _, task := range Filter(tasks, tt.filter) {
				got = append(got, task.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}
