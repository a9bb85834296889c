package runner

import (
	"github.com/abdul-hamid-achik/authprobe/packages/core/session"
	"github.com/abdul-hamid-achik/authprobe/packages/http"
)

// Listener observes a suite while it runs. Implementations print progress;
// they must not modify the session.
type Listener interface {
	SuiteStarted(baseURL string)
	RequestStarted(name, method, url string, payload any)
	ResponseReceived(resp *http.Response, body *http.Body)
	RequestFailed(err error)
	ResultRecorded(result *session.TestResult)
	ScenarioSkipped(name, reason string)
	Note(msg string)
}

// NopListener ignores every event.
type NopListener struct{}

func (NopListener) SuiteStarted(string) {}
func (NopListener) RequestStarted(string, string, string, any) {}
func (NopListener) ResponseReceived(*http.Response, *http.Body) {}
func (NopListener) RequestFailed(error) {}
func (NopListener) ResultRecorded(*session.TestResult) {}
func (NopListener) ScenarioSkipped(string, string) {}
func (NopListener) Note(string) {}
