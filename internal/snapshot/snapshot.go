// Package snapshot converts the stack to and from its user-facing JSON form.
//
// Export writes the persisted record format, pretty-printed. Parse accepts
// hand-edited text (comments and trailing commas allowed), coerces loosely
// typed fields with JavaScript-style truthiness, and rejects the whole
// document on the first structural problem.
package snapshot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/jsonc"

	"github.com/topstack/topstack/internal/config"
	"github.com/topstack/topstack/internal/models"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://topstack.local/schema/stack.json"

var stackSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("load stack schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Export renders tasks in stack order as indented JSON.
func Export(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export stack: %w", err)
	}
	return append(data, '\n'), nil
}

var requiredFields = []string{"id", "title", "createdAt"}

// ParseOption configures Parse.
type ParseOption func(*parser)

// WithNow sets the time given to a createdAt that cannot be read as a date.
func WithNow(now func() time.Time) ParseOption {
	return func(p *parser) { p.now = now }
}

// WithLogger sets the logger that reports replaced timestamps.
func WithLogger(l *slog.Logger) ParseOption {
	return func(p *parser) { p.logger = l }
}

type parser struct {
	now    func() time.Time
	logger *slog.Logger
}

// Parse validates and sanitizes an imported document. Blank text is an empty
// stack. Any error is an *ImportError.
func Parse(text string, opts ...ParseOption) ([]models.Task, error) {
	p := parser{now: time.Now}
	for _, opt := range opts {
		opt(&p)
	}
	p.logger = config.Discard(p.logger)

	doc, err := decode(text)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return []models.Task{}, nil
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, &ImportError{Err: ErrShape}
	}

	tasks := make([]models.Task, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, raw := range items {
		t, err := p.sanitize(i+1, raw)
		if err != nil {
			return nil, err
		}
		if seen[t.ID] {
			return nil, &ImportError{Index: i + 1, Field: "id", Err: ErrDuplicateID, Detail: t.ID}
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}

	if err := checkSchema(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// decode strips JSONC syntax and decodes the document. A nil result with a
// nil error means the text was blank.
func decode(text string) (any, error) {
	data := jsonc.ToJSON([]byte(text))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		var probe any
		detail := "malformed document"
		if err := json.Unmarshal(data, &probe); err != nil {
			detail = err.Error()
		}
		return nil, &ImportError{Err: ErrSyntax, Detail: detail}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ImportError{Err: ErrSyntax, Detail: err.Error()}
	}
	if doc == nil {
		// Literal null is a value, just not an array.
		return nil, &ImportError{Err: ErrShape}
	}
	return doc, nil
}

func (p *parser) sanitize(index int, raw any) (models.Task, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return models.Task{}, &ImportError{Index: index, Err: ErrItemType}
	}
	for _, field := range requiredFields {
		if !truthy(obj[field]) {
			return models.Task{}, &ImportError{Index: index, Field: field, Err: ErrMissingField}
		}
	}

	created, ok := parseStamp(obj["createdAt"])
	if !ok {
		created = models.Stamp(p.now())
		p.logger.Warn("unreadable createdAt replaced with import time",
			"item", index, "value", coerceString(obj["createdAt"]))
	}
	t := models.Task{
		ID:        coerceString(obj["id"]),
		Title:     coerceString(obj["title"]),
		CreatedAt: created,
		Done:      truthy(obj["done"]),
	}
	if t.Done {
		if doneAt, ok := parseStamp(obj["doneAt"]); ok {
			t.DoneAt = &doneAt
		}
	}
	return t, nil
}

// truthy follows JavaScript truthiness for decoded JSON values.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// coerceString renders scalars as their text and composites as compact JSON.
func coerceString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}

var looseLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon Jan 02 2006",
}

// parseStamp accepts a timestamp string or a number of Unix milliseconds.
// Strings without a zone are read as UTC.
func parseStamp(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		if ts, err := models.ParseTime(x); err == nil {
			return ts, true
		}
		x = strings.TrimSpace(x)
		// JavaScript Date strings end in a zone name.
		if i := strings.Index(x, " ("); i > 0 && strings.HasSuffix(x, ")") {
			x = x[:i]
		}
		for _, layout := range looseLayouts {
			if ts, err := time.Parse(layout, x); err == nil {
				return models.Stamp(ts), true
			}
		}
		ts, err := dateparse.ParseIn(x, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return models.Stamp(ts), true
	case json.Number:
		if ms, err := x.Int64(); err == nil {
			return models.Stamp(time.UnixMilli(ms)), true
		}
		if f, err := x.Float64(); err == nil {
			return models.Stamp(time.UnixMilli(int64(f))), true
		}
	}
	return time.Time{}, false
}

func checkSchema(tasks []models.Task) error {
	data, err := Export(tasks)
	if err != nil {
		return &ImportError{Err: ErrSchema, Detail: err.Error()}
	}
	violations := validateBytes(data)
	if len(violations) == 0 {
		return nil
	}
	var ve *ValidationError
	if !errors.As(violations[0], &ve) {
		return &ImportError{Err: ErrSchema, Detail: violations[0].Error()}
	}
	index, field := splitPath(ve.Path)
	return &ImportError{Index: index, Field: field, Err: ErrSchema, Detail: ve.Err.Error()}
}

// Validate checks text against the stack schema without coercion and
// reports every violation. Blank text is valid.
func Validate(text string) []error {
	data := jsonc.ToJSON([]byte(text))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return validateBytes(data)
}

func validateBytes(data []byte) []error {
	schema, err := stackSchema()
	if err != nil {
		return []error{err}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return []error{&ValidationError{Err: fmt.Errorf("%w: %v", ErrSyntax, err)}}
	}
	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []error{err}
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	return errs
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}

// jsonPointerToPath turns "/2/createdAt" into "[2].createdAt".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

// splitPath maps "[2].createdAt" to the 1-based item 3 and its field.
func splitPath(path string) (int, string) {
	if !strings.HasPrefix(path, "[") {
		return 0, path
	}
	end := strings.IndexByte(path, ']')
	if end < 0 {
		return 0, path
	}
	idx, err := strconv.Atoi(path[1:end])
	if err != nil {
		return 0, path
	}
	return idx + 1, strings.TrimPrefix(path[end+1:], ".")
}
