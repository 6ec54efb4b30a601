package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskflow/internal/utils"
)

//go:embed tasks.schema.json
var embeddedSchema []byte

const embeddedSchemaURL = "https://taskflow.dev/schemas/tasks.schema.json"

// EmbeddedSchema returns the built-in JSON Schema for the task file.
func EmbeddedSchema() []byte {
	return bytes.Clone(embeddedSchema)
}

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath is an optional schema file overriding the embedded one.
	SchemaPath string
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
}

func (r *ValidationResult) fail(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// ValidateFile checks raw task file contents. JSON Schema validation is
// used when a schema compiles; otherwise minimal checks run instead.
// Duplicate ids are always reported.
func ValidateFile(data []byte, opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.fail(&ValidationError{Err: fmt.Errorf("invalid JSON: %w", err)})
		return result
	}

	schema, warnings := compileSchema(opts.SchemaPath)
	result.Warnings = append(result.Warnings, warnings...)
	if schema != nil {
		result.UsedSchema = true
		if err := schema.Validate(doc); err != nil {
			result.Valid = false
			appendSchemaErrors(result, err)
		}
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		if result.Valid {
			result.fail(&ValidationError{Err: fmt.Errorf("not a task array: %w", err)})
		}
		return result
	}

	if !result.UsedSchema {
		result.Warnings = append(result.Warnings, "JSON Schema validation not available, using minimal checks")
		for i := range tasks {
			if err := validateTaskMinimal(&tasks[i], fmt.Sprintf("[%d]", i)); err != nil {
				result.fail(err)
			}
		}
	}
	checkUniqueIDs(tasks, result)

	return result
}

func compileSchema(schemaPath string) (*jsonschema.Schema, []string) {
	var warnings []string

	if schemaPath != "" {
		absPath, err := filepath.Abs(schemaPath)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid schema path: %v", err))
		} else if _, err := os.Stat(absPath); err != nil {
			if os.IsNotExist(err) {
				warnings = append(warnings, fmt.Sprintf("schema file not found: %s, using built-in schema", absPath))
			} else {
				warnings = append(warnings, fmt.Sprintf("failed to read schema file: %v", err))
			}
		} else {
			compiler := jsonschema.NewCompiler()
			compiler.AssertFormat = true
			schema, err := compiler.Compile(absPath)
			if err == nil {
				return schema, warnings
			}
			warnings = append(warnings, fmt.Sprintf("invalid schema file: %v", err))
		}
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(embeddedSchemaURL, bytes.NewReader(embeddedSchema)); err != nil {
		return nil, append(warnings, fmt.Sprintf("built-in schema: %v", err))
	}
	schema, err := compiler.Compile(embeddedSchemaURL)
	if err != nil {
		return nil, append(warnings, fmt.Sprintf("built-in schema: %v", err))
	}
	return schema, warnings
}

// validateTaskMinimal performs minimal task validation.
func validateTaskMinimal(task *Task, path string) *ValidationError {
	if task.ID < 1 {
		return &ValidationError{
			Path: path + ".id",
			Err:  fmt.Errorf("must be a positive integer, got %d", task.ID),
		}
	}
	if task.Title == "" {
		return &ValidationError{Path: path + ".title", Err: ErrEmptyTitle}
	}
	if task.DueDate != "" {
		if _, err := time.Parse(DateLayout, task.DueDate); err != nil {
			return &ValidationError{
				Path: path + ".due_date",
				Err:  fmt.Errorf("%w: %q", ErrInvalidDueDate, task.DueDate),
			}
		}
	}
	if !task.Priority.Valid() {
		return &ValidationError{
			Path: path + ".priority",
			Err:  fmt.Errorf("%w, got %d", ErrInvalidPriority, task.Priority),
		}
	}
	if !task.Status.Valid() {
		return &ValidationError{
			Path: path + ".status",
			Err:  fmt.Errorf("%w %q, must be one of: todo, doing, done", ErrInvalidStatus, task.Status),
		}
	}
	return nil
}

func checkUniqueIDs(tasks []Task, result *ValidationResult) {
	seen := make(map[int]int, len(tasks))
	for i, t := range tasks {
		if first, ok := seen[t.ID]; ok {
			result.fail(&ValidationError{
				Path: fmt.Sprintf("[%d].id", i),
				Err:  fmt.Errorf("duplicate id %d (first used at [%d])", t.ID, first),
			})
			continue
		}
		seen[t.ID] = i
	}
}

func appendSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}
