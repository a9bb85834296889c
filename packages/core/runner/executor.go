package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/assertions"
	"github.com/abdul-hamid-achik/authprobe/packages/core/session"
	"github.com/abdul-hamid-achik/authprobe/packages/http"
	"golang.org/x/time/rate"
)

const (
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	contentTypeJSON     = "application/json"
)

var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
}

// Call describes one HTTP exchange and the status it must produce.
type Call struct {
	Name           string
	Method         string
	Endpoint       string
	ExpectedStatus int
	Body           any
	Headers        map[string]string
}

// Outcome is what a check hands back to the scenario that issued it.
type Outcome struct {
	Success bool
	Body    *http.Body
}

// Executor performs one request per call and records the result.
type Executor struct {
	client         *http.Client
	listener       Listener
	limiter        *rate.Limiter
	strictEnvelope bool
}

type ExecutorOption func(*Executor)

func WithListener(l Listener) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.listener = l
		}
	}
}

// WithRateLimit caps the request rate. Zero or negative means unlimited.
func WithRateLimit(perSecond float64) ExecutorOption {
	return func(e *Executor) {
		if perSecond > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithStrictEnvelope also requires 2xx bodies to match the response envelope.
func WithStrictEnvelope(strict bool) ExecutorOption {
	return func(e *Executor) {
		e.strictEnvelope = strict
	}
}

func NewExecutor(client *http.Client, opts ...ExecutorOption) *Executor {
	if client == nil {
		client = http.NewClient()
	}
	e := &Executor{
		client:   client,
		listener: NopListener{},
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Note forwards an informational line to the listener.
func (e *Executor) Note(format string, args ...any) {
	e.listener.Note(fmt.Sprintf(format, args...))
}

// Execute issues the call against the session's base URL. It never returns an
// error: transport failures become failed results.
func (e *Executor) Execute(ctx context.Context, s *session.Session, call Call) Outcome {
	url := http.JoinURL(s.BaseURL, call.Endpoint)
	e.listener.RequestStarted(call.Name, call.Method, url, call.Body)

	result := &session.TestResult{
		Name:           call.Name,
		Method:         call.Method,
		URL:            url,
		ExpectedStatus: call.ExpectedStatus,
	}

	req, err := e.buildRequest(s, url, call)
	if err != nil {
		return e.fail(s, result, err)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return e.fail(s, result, err)
	}

	start := time.Now()
	resp, err := e.client.DoContext(ctx, req)
	result.Duration = time.Since(start)
	if err != nil {
		return e.fail(s, result, err)
	}

	body := resp.ParsedBody()
	e.listener.ResponseReceived(resp, body)

	status := assertions.EvaluateStatus(resp.StatusCode, call.ExpectedStatus, body)
	result.Passed = status.Passed
	result.Message = status.Message
	result.StatusCode = resp.StatusCode
	result.ResponseBody = body
	result.RequestID = resp.RequestID

	if e.strictEnvelope && result.Passed && resp.IsSuccess() {
		if envelope := assertions.ValidateEnvelope(body); !envelope.Passed {
			result.Passed = false
			result.Message += " - " + envelope.Message
		}
	}

	s.Record(result)
	e.listener.ResultRecorded(result)

	return Outcome{Success: result.Passed, Body: body}
}

func (e *Executor) buildRequest(s *session.Session, url string, call Call) (*http.Request, error) {
	if !allowedMethods[call.Method] {
		return nil, fmt.Errorf("unsupported method %q", call.Method)
	}

	req := http.NewRequest(call.Method, url)
	req.SetHeader(headerContentType, contentTypeJSON)
	for k, v := range call.Headers {
		req.SetHeader(k, v)
	}

	if token, ok := s.Token(); ok {
		if _, explicit := req.Header(headerAuthorization); !explicit {
			req.SetHeader(headerAuthorization, "Bearer "+token)
		}
	}

	if call.Body != nil && (call.Method == "POST" || call.Method == "PUT") {
		if err := req.SetJSONBody(call.Body); err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	return req, nil
}

func (e *Executor) fail(s *session.Session, result *session.TestResult, err error) Outcome {
	e.listener.RequestFailed(err)
	result.Passed = false
	result.Err = err
	result.Message = fmt.Sprintf("Request failed: %v", err)
	s.Record(result)
	e.listener.ResultRecorded(result)
	return Outcome{Success: false}
}

// PrettyPayload renders a request payload for progress output.
func PrettyPayload(payload any) string {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(data)
}
