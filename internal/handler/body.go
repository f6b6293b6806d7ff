package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pkordes/daily-tasks/backend/internal/domain"
)

// Request-body schemas check JSON types only. Length and emptiness rules live
// in the domain so that a missing todo is reported before a bad field value.
const (
	createTodoSchema = `{
		"type": "object",
		"required": ["text"],
		"properties": {
			"text":    {"type": "string"},
			"dueDate": {"type": ["string", "null"]},
			"tags":    {"type": ["array", "null"], "items": {"type": "string"}}
		}
	}`

	updateTodoSchema = `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"text":      {"type": ["string", "null"]},
			"completed": {"type": ["boolean", "null"]},
			"dueDate":   {"type": ["string", "null"]},
			"tags":      {"type": ["array", "null"], "items": {"type": "string"}}
		}
	}`
)

var (
	createSchema = mustCompileSchema("create_todo.json", createTodoSchema)
	updateSchema = mustCompileSchema("update_todo.json", updateTodoSchema)
)

func mustCompileSchema(name, src string) *jsonschema.Schema {
	url := "https://daily-tasks.local/schemas/" + name

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("handler: add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("handler: compile schema %s: %v", name, err))
	}
	return schema
}

// decodeBody reads the request body and checks it in order: present and
// well-formed JSON (400), only allowed top-level keys when allowed is non-nil
// (422), then schema (422). It returns the raw bytes for typed decoding.
func decodeBody(r *http.Request, schema *jsonschema.Schema, allowed []string) ([]byte, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("handler.decodeBody: read: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, domain.NewValidationError(domain.KindMalformedBody, "", "request body is required")
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, domain.NewValidationError(domain.KindMalformedBody, "", "request body is not valid JSON: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.NewValidationError(domain.KindMalformedBody, "", "request body must contain a single JSON value")
	}

	if obj, ok := doc.(map[string]any); ok && allowed != nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if !slices.Contains(allowed, k) {
				return nil, domain.NewValidationError(domain.KindUnknownField, k, "unknown field %q", k)
			}
		}
	}

	if err := schema.Validate(doc); err != nil {
		return nil, schemaError(err)
	}
	return raw, nil
}

// schemaError reports the first leaf cause of a schema failure, naming the
// top-level field it occurred under.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return domain.NewValidationError(domain.KindInvalidField, "", "%v", err)
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	if i := strings.IndexByte(field, '/'); i >= 0 {
		field = field[:i]
	}
	if field == "" {
		return domain.NewValidationError(domain.KindInvalidField, "", "%s", ve.Message)
	}
	return domain.NewValidationError(domain.KindInvalidField, field, "%s: %s", field, ve.Message)
}

// jsonUnmarshal decodes an already schema-checked body into a typed request.
func jsonUnmarshal(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return domain.NewValidationError(domain.KindInvalidField, "", "%v", err)
	}
	return nil
}

// createTodoRequest is the body of POST /api/todos. Unknown keys are ignored.
type createTodoRequest struct {
	Text    string   `json:"text"`
	DueDate *string  `json:"dueDate"`
	Tags    []string `json:"tags"`
}

func (req createTodoRequest) toNewTodo() (domain.NewTodo, error) {
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return domain.NewTodo{}, err
	}
	return domain.NewTodo{Text: req.Text, DueDate: due, Tags: req.Tags}, nil
}

// updateTodoRequest mirrors the PATCH body with pointer fields so that an
// explicit null decodes to nil; key presence is tracked separately.
type updateTodoRequest struct {
	Text      *string  `json:"text"`
	Completed *bool    `json:"completed"`
	DueDate   *string  `json:"dueDate"`
	Tags      []string `json:"tags"`
}

// decodePatch converts a schema-checked PATCH body into a domain.TodoPatch.
// Only keys present in the body become set fields.
func decodePatch(raw []byte) (domain.TodoPatch, error) {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(raw, &present); err != nil {
		return domain.TodoPatch{}, domain.NewValidationError(domain.KindMalformedBody, "", "request body must be a JSON object")
	}
	var req updateTodoRequest
	if err := jsonUnmarshal(raw, &req); err != nil {
		return domain.TodoPatch{}, err
	}

	var patch domain.TodoPatch
	if _, ok := present["text"]; ok {
		patch.Text = domain.Set(req.Text)
	}
	if _, ok := present["completed"]; ok {
		patch.Completed = domain.Set(req.Completed)
	}
	if _, ok := present["dueDate"]; ok {
		patch.DueDate = domain.Set(req.DueDate)
	}
	if _, ok := present["tags"]; ok {
		patch.Tags = domain.Set(req.Tags)
	}
	return patch, nil
}

// parseDueDate parses an optional ISO 8601 dueDate. nil stays nil.
func parseDueDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := domain.ParseTimestamp(*s)
	if err != nil {
		return nil, domain.NewValidationError(domain.KindInvalidField, "dueDate",
			"dueDate must be an ISO 8601 timestamp, got %q", *s)
	}
	return &t, nil
}
