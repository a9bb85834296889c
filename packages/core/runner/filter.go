package runner

import "strings"

// Filter keeps scenarios whose name matches pattern (a glob with leading or
// trailing '*') and that carry at least one of tags. Empty criteria match
// everything. Order is preserved.
func Filter(scenarios []Scenario, pattern string, tags []string) []Scenario {
	var out []Scenario
	for _, sc := range scenarios {
		if pattern != "" && !matchesPattern(sc.Name, pattern) {
			continue
		}
		if len(tags) > 0 && !hasAnyTag(sc.Tags, tags) {
			continue
		}
		out = append(out, sc)
	}
	return out
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if len(pattern) > 1 && pattern[0] == '*' && pattern[len(pattern)-1] == '*' {
		return strings.Contains(name, pattern[1:len(pattern)-1])
	}

	if pattern[0] == '*' {
		return strings.HasSuffix(name, pattern[1:])
	}

	if pattern[len(pattern)-1] == '*' {
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	}

	return name == pattern
}

func hasAnyTag(tags []string, filters []string) bool {
	for _, filter := range filters {
		for _, tag := range tags {
			if tag == filter {
				return true
			}
		}
	}
	return false
}
