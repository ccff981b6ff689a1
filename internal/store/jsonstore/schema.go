package jsonstore

import (
	"errors"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://github.com/Aarondoran/TerminalTasks/todos.schema.json"

const schemaSource = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["task", "done", "date"],
    "additionalProperties": false,
    "properties": {
      "task": {"type": "string"},
      "done": {"type": "boolean"},
      "date": {"type": "string", "pattern": "^[0-9]{1,2}/[0-9]{1,2}/[0-9]{4}$"}
    }
  }
}`

var taskListSchema = jsonschema.MustCompileString(schemaURL, schemaSource)

// validate checks a decoded document against the todos.json contract.
func validate(doc any) error {
	err := taskListSchema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		return fmt.Errorf("schema: %s", innermost(ve))
	}
	return fmt.Errorf("schema: %w", err)
}

// innermost follows the first cause down to the error naming the field.
func innermost(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + ve.Message
}
