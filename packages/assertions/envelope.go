package assertions

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/authprobe/packages/http"
	"github.com/xeipuuv/gojsonschema"
)

// EnvelopeSchema describes the response shape every auth endpoint returns.
const EnvelopeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["success", "message"],
  "properties": {
    "success": {"type": "boolean"},
    "message": {"type": "string"},
    "data": {}
  }
}`

var envelopeLoader = gojsonschema.NewStringLoader(EnvelopeSchema)

// ValidateEnvelope checks a response body against EnvelopeSchema. Raw text
// bodies never conform.
func ValidateEnvelope(body *http.Body) *Result {
	result := &Result{
		Subject:  "body",
		Operator: "schema",
		Expected: "envelope",
	}

	if body == nil || !body.IsParsed() {
		result.Message = "envelope: response body is not a JSON object"
		return result
	}
	result.Actual = body.Fields()

	validation, err := gojsonschema.Validate(envelopeLoader, gojsonschema.NewBytesLoader(body.JSON()))
	if err != nil {
		result.Message = fmt.Sprintf("envelope: schema validation error: %v", err)
		return result
	}

	if validation.Valid() {
		result.Passed = true
		return result
	}

	var errors []string
	for _, desc := range validation.Errors() {
		errors = append(errors, desc.String())
	}
	result.Message = fmt.Sprintf("envelope: %s", strings.Join(errors, "; "))
	return result
}
