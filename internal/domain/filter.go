package domain

import (
	"slices"
	"strings"
	"time"
)

// ListQuery holds the raw list parameters as received from the caller.
// A nil pointer means the parameter was not supplied.
type ListQuery struct {
	DueBefore *string
	Tags      *string
}

// TodoFilter is a parsed ListQuery. The zero TodoFilter matches every todo.
type TodoFilter struct {
	// DueBefore is an inclusive ceiling on DueDate. Todos without a due date
	// always pass.
	DueBefore *time.Time
	// Tags must all be present on a todo (exact, case-sensitive).
	Tags []string
}

// ParseTodoFilter validates and normalizes q.
// An empty dueBefore string is treated as absent.
func ParseTodoFilter(q ListQuery) (TodoFilter, error) {
	var f TodoFilter
	if q.DueBefore != nil && *q.DueBefore != "" {
		t, err := ParseTimestamp(*q.DueBefore)
		if err != nil {
			return TodoFilter{}, NewValidationError(KindInvalidQuery, "dueBefore", "%s", err.Error())
		}
		f.DueBefore = &t
	}
	if q.Tags != nil {
		f.Tags = SplitTags(*q.Tags)
	}
	return f, nil
}

// SplitTags splits a comma-joined tag list, trimming each element and
// dropping empty ones.
func SplitTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether t satisfies both predicates.
func (f TodoFilter) Matches(t Todo) bool {
	if f.DueBefore != nil && t.DueDate != nil && t.DueDate.After(*f.DueBefore) {
		return false
	}
	for _, want := range f.Tags {
		if !slices.Contains(t.Tags, want) {
			return false
		}
	}
	return true
}

// Apply returns the matching todos sorted newest first.
// Todos with equal CreatedAt keep their relative input order.
// The result is never nil.
func (f TodoFilter) Apply(todos []Todo) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	SortNewestFirst(out)
	return out
}

// Key is a canonical string for the filter, used for cache keys.
// Tag order and duplicates do not change which todos match, so they are
// normalized away.
func (f TodoFilter) Key() string {
	var b strings.Builder
	b.WriteString("due=")
	if f.DueBefore != nil {
		b.WriteString(f.DueBefore.UTC().Format(time.RFC3339Nano))
	}
	tags := slices.Clone(f.Tags)
	slices.Sort(tags)
	tags = slices.Compact(tags)
	b.WriteString("|tags=")
	for i, t := range tags {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t)
	}
	return b.String()
}

// SortNewestFirst sorts todos by CreatedAt descending, in place and stably.
func SortNewestFirst(todos []Todo) {
	slices.SortStableFunc(todos, func(a, b Todo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
