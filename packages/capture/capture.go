package capture

import (
	"strings"

	"github.com/abdul-hamid-achik/authprobe/packages/http"
	"github.com/tidwall/gjson"
)

// Well-known paths in the auth service envelope.
const (
	PathSuccess      = "success"
	PathMessage      = "message"
	PathData         = "data"
	PathToken        = "data.token"
	PathCompanyEmail = "data.companyEmail"
	PathEmpID        = "data.empId"
)

type Extractor struct {
	body gjson.Result
}

func NewExtractor(body *http.Body) *Extractor {
	e := &Extractor{}
	if body != nil {
		e.body = gjson.ParseBytes(body.JSON())
	}
	return e
}

func (e *Extractor) lookup(path string) gjson.Result {
	if !e.body.Exists() {
		return gjson.Result{}
	}
	return e.body.Get(path)
}

// String returns the value at path rendered as text. Missing and null values
// report false.
func (e *Extractor) String(path string) (string, bool) {
	r := e.lookup(path)
	if !r.Exists() || r.Type == gjson.Null {
		return "", false
	}
	return r.String(), true
}

// Truthy reports whether the value at path is present and non-empty:
// true, a non-zero number, a non-empty string, object or array.
func (e *Extractor) Truthy(path string) bool {
	r := e.lookup(path)
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		raw := strings.Join(strings.Fields(r.Raw), "")
		return raw != "{}" && raw != "[]"
	default:
		return false
	}
}

// Object returns the JSON object at path as a map.
func (e *Extractor) Object(path string) (map[string]any, bool) {
	r := e.lookup(path)
	if !r.IsObject() {
		return nil, false
	}
	m, ok := r.Value().(map[string]any)
	return m, ok
}

// Message returns the envelope's message field when it is truthy.
func Message(body *http.Body) (string, bool) {
	e := NewExtractor(body)
	if !e.Truthy(PathMessage) {
		return "", false
	}
	return e.String(PathMessage)
}

// Token returns data.token when the envelope reports success and carries one.
func Token(body *http.Body) (string, bool) {
	e := NewExtractor(body)
	if !e.Truthy(PathSuccess) || !e.Truthy(PathToken) {
		return "", false
	}
	return e.String(PathToken)
}
