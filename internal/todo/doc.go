// Package todo stores, validates, and queries kanban tasks.
//
// The task file (tasks.json) is a JSON array of task objects:
//
//	[
//	  {
//	    "id": 1,
//	    "title": "Prepare slides",
//	    "category": "Work",
//	    "due_date": "2025-11-30",
//	    "priority": 1,
//	    "status": "todo",
//	    "note": "Ask Ana for the Q3 numbers"
//	  }
//	]
//
// # Board Columns
//
//   - "todo": not started
//   - "doing": in progress
//   - "done": finished
//
// Tasks move one column at a time; moving past either end is a no-op.
//
// # Priority Range
//
//   - 1: High
//   - 2: Medium (default)
//   - 3: Low
//
// # Ordering
//
// Board views sort by column, then priority, then due date. Tasks without a
// due date come after every dated task in the same column and priority.
//
// # Persistence
//
// Every mutation rewrites the whole file. A mutation whose save fails leaves
// the in-memory board unchanged. A missing or corrupt file loads as an empty
// board; use Store.Read or ValidateFile to surface the problem instead.
//
// # File Format
//
// When writing task files, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - Literal UTF-8 (no \u escapes, no HTML escaping)
package todo
