// Package domain contains the core data types for the daily tasks API.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"slices"
	"time"
	"unicode/utf8"
)

// Bounds on Todo.Text, counted in characters (runes), not bytes.
const (
	TextMinLen = 1
	TextMaxLen = 500
)

// Todo is the single managed resource.
// DueDate is nil when the todo has no due date.
// Tags keep the order, casing, and duplicates supplied by the caller.
type Todo struct {
	ID        string
	Text      string
	Completed bool
	DueDate   *time.Time
	Tags      []string
	CreatedAt time.Time
}

// Clone returns a deep copy so stores never share slices or pointers with callers.
func (t Todo) Clone() Todo {
	out := t
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	out.Tags = slices.Clone(t.Tags)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

// NewTodo carries the caller-supplied fields of a create operation.
// The service assigns ID, CreatedAt and Completed.
type NewTodo struct {
	Text    string
	DueDate *time.Time
	Tags    []string
}

// ValidateText checks the length bounds on the raw string; no trimming is applied.
func ValidateText(text string) error {
	n := utf8.RuneCountInString(text)
	if n < TextMinLen {
		return NewValidationError(KindInvalidField, "text", "text must not be empty")
	}
	if n > TextMaxLen {
		return NewValidationError(KindInvalidField, "text", "text must be at most %d characters", TextMaxLen)
	}
	return nil
}
