package protocol

import (
	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/newsroom-agent/internal/capability"
)

// requestSchema structurally validates inbound A2A envelopes before they are
// decoded: an id is required (every request expects a reply), and the
// payload must carry either an input object or an action string.
const requestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": ["string", "number"]},
    "input": {
      "type": "object",
      "required": ["action"],
      "properties": {
        "action": {"type": "string", "minLength": 1}
      }
    },
    "action": {"type": "string", "minLength": 1},
    "params": {"type": "object"}
  },
  "anyOf": [
    {"required": ["input"]},
    {"required": ["action"]}
  ]
}`

var requestSchemaLoader = gojsonschema.NewStringLoader(requestSchema)

// validateRequestShape checks the raw envelope against the request schema.
// Violations are reported as MalformedMessageError with the first failing
// field named.
func validateRequestShape(raw []byte) error {
	result, err := gojsonschema.Validate(requestSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &capability.MalformedMessageError{Message: "invalid JSON envelope", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	desc := result.Errors()[0]
	field := desc.Field()
	if field == "" {
		field = "(root)"
	}
	return &capability.MalformedMessageError{Message: field + ": " + desc.Description()}
}
