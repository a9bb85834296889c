package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		expected bool
	}{
		{"Login with Email", "", true},
		{"Login with Email", "Login with Email", true},
		{"Login with Email", "Login*", true},
		{"Login with Email", "*Email", true},
		{"Login with Email", "*with*", true},
		{"Login with Email", "*", true},
		{"Login with Email", "Token*", false},
		{"Health Check", "Login with Email", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, matchesPattern(tt.name, tt.pattern), "%s ~ %s", tt.name, tt.pattern)
	}
}

func TestFilter(t *testing.T) {
	scenarios := []Scenario{
		{Name: "Health Check", Tags: []string{"smoke"}},
		{Name: "User Registration", Tags: []string{"registration"}},
		{Name: "Login with Email", Tags: []string{"login"}},
		{Name: "Login with Employee ID", Tags: []string{"login"}},
	}

	names := func(in []Scenario) []string {
		var out []string
		for _, sc := range in {
			out = append(out, sc.Name)
		}
		return out
	}

	assert.Len(t, Filter(scenarios, "", nil), 4)
	assert.Equal(t, []string{"Login with Email", "Login with Employee ID"}, names(Filter(scenarios, "Login*", nil)))
	assert.Equal(t, []string{"Health Check", "User Registration"}, names(Filter(scenarios, "", []string{"smoke", "registration"})))
	assert.Equal(t, []string{"Login with Email"}, names(Filter(scenarios, "*Email", []string{"login"})))
	assert.Empty(t, Filter(scenarios, "Nope", nil))
}
