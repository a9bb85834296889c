package builtin

import (
	"encoding/base64"
	"math/rand"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	digits       = "0123456789"
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type Func func(args []string) (any, error)

// Registry maps function names to implementations.
type Registry struct {
	funcs map[string]Func
	now   func() time.Time
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
		now:   time.Now,
	}
	r.registerDefaults()
	return r
}

// WithClock replaces the time source used by now, timestamp and date.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["uuid"] = func([]string) (any, error) { return uuid.NewString(), nil }
	r.funcs["now"] = func([]string) (any, error) { return r.now().UTC().Format(time.RFC3339), nil }
	r.funcs["timestamp"] = func([]string) (any, error) { return r.now().Unix(), nil }
	r.funcs["date"] = r.date
	r.funcs["random"] = funcRandom
	r.funcs["randomDigits"] = lengthFunc(6, digits)
	r.funcs["randomString"] = lengthFunc(16, alphanumeric)
	r.funcs["base64"] = funcBase64
	r.funcs["env"] = funcEnv
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

var funcCallPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// Call evaluates an expression such as `random(1, 10)`. The bool is false when
// expr is not a call to a registered function.
func (r *Registry) Call(expr string) (any, bool, error) {
	matches := funcCallPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if matches == nil {
		return nil, false, nil
	}

	fn, ok := r.funcs[matches[1]]
	if !ok {
		return nil, false, nil
	}

	var args []string
	if matches[2] != "" {
		args = parseArgs(matches[2])
	}

	v, err := fn(args)
	if err != nil {
		return nil, true, &CallError{Name: matches[1], Err: err}
	}
	return v, true, nil
}

// CallError reports a function that rejected its arguments.
type CallError struct {
	Name string
	Err  error
}

func (e *CallError) Error() string {
	return e.Name + "(): " + e.Err.Error()
}

func (e *CallError) Unwrap() error {
	return e.Err
}

func parseArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case !inQuote && (ch == '"' || ch == '\''):
			inQuote = true
			quoteChar = ch
		case inQuote && ch == quoteChar:
			inQuote = false
			quoteChar = 0
		case !inQuote && ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}

	return args
}

func (r *Registry) date(args []string) (any, error) {
	layout := "2006-01-02"
	if len(args) >= 1 && args[0] != "" {
		layout = args[0]
	}
	return r.now().UTC().Format(layout), nil
}

func funcRandom(args []string) (any, error) {
	lo, hi := 0, 100
	if len(args) >= 2 {
		var err error
		if lo, err = strconv.Atoi(args[0]); err != nil {
			return nil, err
		}
		if hi, err = strconv.Atoi(args[1]); err != nil {
			return nil, err
		}
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return rand.Intn(hi-lo+1) + lo, nil
}

func lengthFunc(def int, charset string) Func {
	return func(args []string) (any, error) {
		n := def
		if len(args) >= 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, err
			}
			n = v
		}
		if n < 0 {
			n = 0
		}
		return randomString(n, charset), nil
	}
}

func funcBase64(args []string) (any, error) {
	if len(args) < 1 {
		return "", nil
	}
	return base64.StdEncoding.EncodeToString([]byte(args[0])), nil
}

func funcEnv(args []string) (any, error) {
	if len(args) < 1 {
		return "", nil
	}
	if v, ok := os.LookupEnv(args[0]); ok {
		return v, nil
	}
	if len(args) >= 2 {
		return args[1], nil
	}
	return "", nil
}

func randomString(length int, charset string) string {
	result := make([]byte, length)
	for i := range result {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
