package domain

import "slices"

// Field is a value that may be absent from a partial update.
// The zero Field is unset; Set marks it present, even when the value is nil,
// so an explicit JSON null stays distinguishable from an omitted key.
type Field[T any] struct {
	value   T
	present bool
}

// Set returns a present Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, present: true}
}

// IsSet reports whether the field was supplied.
func (f Field[T]) IsSet() bool {
	return f.present
}

// Get returns the value and whether the field was supplied.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.present
}

// TodoPatch is a partial update. Pointer-typed fields use nil for an explicit null.
// DueDate holds the raw ISO 8601 text; Validate parses it.
type TodoPatch struct {
	Text      Field[*string]
	Completed Field[*bool]
	DueDate   Field[*string]
	Tags      Field[[]string]
}

// PatchFields lists the JSON keys an update request may carry.
var PatchFields = []string{"text", "completed", "dueDate", "tags"}

// IsEmpty reports whether no field is present.
func (p TodoPatch) IsEmpty() bool {
	return !p.Text.IsSet() && !p.Completed.IsSet() && !p.DueDate.IsSet() && !p.Tags.IsSet()
}

// Validate checks every present field against the same constraints as creation.
// text and completed cannot be nulled; dueDate null clears the due date and
// tags null resets to an empty list.
func (p TodoPatch) Validate() error {
	if text, ok := p.Text.Get(); ok {
		if text == nil {
			return NewValidationError(KindInvalidField, "text", "text must not be null")
		}
		if err := ValidateText(*text); err != nil {
			return err
		}
	}
	if completed, ok := p.Completed.Get(); ok && completed == nil {
		return NewValidationError(KindInvalidField, "completed", "completed must not be null")
	}
	if due, ok := p.DueDate.Get(); ok && due != nil {
		if _, err := ParseTimestamp(*due); err != nil {
			return NewValidationError(KindInvalidField, "dueDate",
				"dueDate must be an ISO 8601 timestamp, got %q", *due)
		}
	}
	return nil
}

// Apply returns a copy of t with every present field overwritten.
// Callers must run Validate first; Apply does not re-check constraints.
func (p TodoPatch) Apply(t Todo) Todo {
	out := t.Clone()
	if text, ok := p.Text.Get(); ok && text != nil {
		out.Text = *text
	}
	if completed, ok := p.Completed.Get(); ok && completed != nil {
		out.Completed = *completed
	}
	if due, ok := p.DueDate.Get(); ok {
		out.DueDate = nil
		if due != nil {
			if d, err := ParseTimestamp(*due); err == nil {
				out.DueDate = &d
			}
		}
	}
	if tags, ok := p.Tags.Get(); ok {
		out.Tags = slices.Clone(tags)
		if out.Tags == nil {
			out.Tags = []string{}
		}
	}
	return out
}
