package assertions

import (
	"fmt"

	"github.com/abdul-hamid-achik/authprobe/packages/capture"
	"github.com/abdul-hamid-achik/authprobe/packages/http"
)

type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
	Subject  string
	Operator string
}

// EvaluateStatus compares the observed status code with the expected one and
// builds the outcome message:
//
//	Status: 200 - Login successful
//	Status: 500 (Expected: 200) - Internal error
func EvaluateStatus(observed, expected int, body *http.Body) *Result {
	result := &Result{
		Subject:  "status",
		Operator: "==",
		Expected: expected,
		Actual:   observed,
		Passed:   observed == expected,
	}

	msg := fmt.Sprintf("Status: %d", observed)
	e := capture.NewExtractor(body)

	if result.Passed {
		if e.Truthy(capture.PathSuccess) {
			// a present message is kept even when empty
			text, ok := e.String(capture.PathMessage)
			if !ok {
				text = "Success"
			}
			msg += " - " + text
		}
	} else {
		msg += fmt.Sprintf(" (Expected: %d)", expected)
		if text, ok := capture.Message(body); ok {
			msg += " - " + text
		}
	}

	result.Message = msg
	return result
}
