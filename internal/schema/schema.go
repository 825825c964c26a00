// Package schema turns untrusted document bytes into a well-formed AppData.
//
// Validation runs in two passes. The embedded JSON Schema rejects records
// whose required fields are missing or mistyped (the Subtask definition
// references itself, so nesting depth is unbounded). Normalisation then fills
// every optional field with its default at every depth. Newer fields are
// always optional, which is how older document shapes keep loading without a
// version switch.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"associate-os/internal/model"
)

//go:embed appdata.schema.json
var appDataSchemaJSON string

const schemaURL = "https://associate-os.local/appdata.schema.json"

// ErrInvalidDocument is wrapped by every validation failure.
var ErrInvalidDocument = errors.New("invalid document")

// ValidationError reports the first structural problem found in a document.
type ValidationError struct {
	Path    string // dotted path to the offending value, e.g. tasks[0].title
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid document at %s: %s", e.Path, e.Message)
	}
	return "invalid document: " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

// Format tags the top-level shape of a stored payload.
type Format int

const (
	FormatUnknown Format = iota
	// FormatLegacyTaskList is the earliest shape: a bare array of tasks.
	FormatLegacyTaskList
	// FormatAggregate is {tasks, settings, resources?}.
	FormatAggregate
)

func (f Format) String() string {
	switch f {
	case FormatLegacyTaskList:
		return "legacy-task-list"
	case FormatAggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// DetectFormat inspects the first JSON token of raw.
func DetectFormat(raw []byte) Format {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return FormatUnknown
	}
	switch trimmed[0] {
	case '[':
		return FormatLegacyTaskList
	case '{':
		return FormatAggregate
	default:
		return FormatUnknown
	}
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func appDataSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, strings.NewReader(appDataSchemaJSON)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Validate parses raw in any supported format and returns the normalised document.
func Validate(raw []byte) (model.AppData, error) {
	agg, err := liftAggregate(raw)
	if err != nil {
		return model.AppData{}, err
	}
	if err := checkAggregate(agg); err != nil {
		return model.AppData{}, err
	}

	doc := model.AppData{Settings: DefaultSettings()}
	if err := json.Unmarshal(agg, &doc); err != nil {
		return model.AppData{}, &ValidationError{Message: err.Error()}
	}
	return Normalize(doc), nil
}

// ValidateValue validates an already decoded value, e.g. a document built in memory.
func ValidateValue(v any) (model.AppData, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return model.AppData{}, &ValidationError{Message: err.Error()}
	}
	return Validate(raw)
}

// Check validates raw as an aggregate document without normalising it.
func Check(raw []byte) error {
	if DetectFormat(raw) != FormatAggregate {
		return &ValidationError{Message: "expected a JSON object with tasks and settings"}
	}
	return checkAggregate(raw)
}

func liftAggregate(raw []byte) ([]byte, error) {
	switch DetectFormat(raw) {
	case FormatAggregate:
		return raw, nil
	case FormatLegacyTaskList:
		var buf bytes.Buffer
		buf.WriteString(`{"tasks":`)
		buf.Write(bytes.TrimSpace(raw))
		buf.WriteString(`,"settings":{}}`)
		return buf.Bytes(), nil
	default:
		return nil, &ValidationError{Message: "payload is neither a task list nor an aggregate document"}
	}
}

func checkAggregate(raw []byte) error {
	sch, err := appDataSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	if err := sch.Validate(v); err != nil {
		return mapSchemaError(err)
	}
	return nil
}

func mapSchemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}
	leaf := firstLeaf(ve)
	return &ValidationError{Path: pointerToPath(leaf.InstanceLocation), Message: leaf.Message}
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// pointerToPath converts a JSON pointer (/tasks/0/title) to tasks[0].title.
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for _, seg := range strings.Split(ptr, "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		if isIndex(seg) {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
