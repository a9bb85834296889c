package http

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBody(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     BodyKind
		expected map[string]any
	}{
		{
			name:     "json object",
			input:    `{"success": true, "message": "ok"}`,
			kind:     BodyParsed,
			expected: map[string]any{"success": true, "message": "ok"},
		},
		{
			name:     "plain text",
			input:    "Email already registered!",
			kind:     BodyRawText,
			expected: map[string]any{RawResponseKey: "Email already registered!"},
		},
		{
			name:     "empty body",
			input:    "",
			kind:     BodyRawText,
			expected: map[string]any{RawResponseKey: ""},
		},
		{
			name:     "json array is not an object",
			input:    `[1, 2]`,
			kind:     BodyRawText,
			expected: map[string]any{RawResponseKey: "[1, 2]"},
		},
		{
			name:     "json null",
			input:    `null`,
			kind:     BodyRawText,
			expected: map[string]any{RawResponseKey: "null"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ParseBody([]byte(tt.input))
			assert.Equal(t, tt.kind, b.Kind())
			assert.Equal(t, tt.expected, b.Fields())
			assert.Equal(t, tt.input, b.Text())
		})
	}
}

func TestBody_JSON(t *testing.T) {
	raw := RawText("<html>oops</html>")
	assert.JSONEq(t, `{"raw_response":"<html>oops</html>"}`, string(raw.JSON()))

	parsed := ParseBody([]byte(`{"data":{"token":"abc"}}`))
	assert.JSONEq(t, `{"data":{"token":"abc"}}`, string(parsed.JSON()))

	out, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw_response":"<html>oops</html>"}`, string(out))
}

func TestBody_Indented(t *testing.T) {
	b := ParseBody([]byte(`{"a":1}`))
	assert.Equal(t, "{\n  \"a\": 1\n}", b.Indented())
}
