package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/authprobe/packages/builtin"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver expands {{...}} placeholders. A placeholder is one of:
//
//	{{$NAME}}       process environment variable
//	{{func(args)}}  builtin function call
//	{{name}}        variable set on the resolver
//
// Unresolved placeholders are left as written.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]string
	funcs     *builtin.Registry
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]string),
		funcs:     builtin.NewRegistry(),
	}
}

// SetWarnFunc sets a function to be called for unresolved placeholders
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

func (r *Resolver) GetVariable(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variables[name]
	return v, ok
}

func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		if val, ok := r.lookup(match, r.warn); ok {
			return val
		}
		return match
	})
}

func (r *Resolver) lookup(match string, warn WarnFunc) (string, bool) {
	expr := strings.TrimSpace(match[2 : len(match)-2])

	if name, ok := strings.CutPrefix(expr, "$"); ok {
		if val, set := os.LookupEnv(name); set {
			return val, true
		}
		warn("unresolved environment variable: $%s", name)
		return "", false
	}

	if strings.Contains(expr, "(") {
		result, ok, err := r.funcs.Call(expr)
		if err != nil {
			warn("function call failed: %v", err)
			return "", false
		}
		if !ok {
			warn("unresolved function call: %s", expr)
			return "", false
		}
		return fmt.Sprintf("%v", result), true
	}

	if val, ok := r.GetVariable(expr); ok {
		return val, true
	}
	warn("unresolved variable: %s", expr)
	return "", false
}

func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}

// Unresolved lists the placeholders in input that would be left as written.
func (r *Resolver) Unresolved(input string) []string {
	silent := func(string, ...any) {}

	var out []string
	for _, match := range variablePattern.FindAllString(input, -1) {
		if _, ok := r.lookup(match, silent); !ok {
			out = append(out, strings.TrimSpace(match[2:len(match)-2]))
		}
	}
	return out
}
