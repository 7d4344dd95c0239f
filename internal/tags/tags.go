// Package tags extracts inline markers from free-text task entries.
// A task written as "Ship release notes #work !high" carries a project tag
// (#work) and a priority tag (!high); both are read once, at creation time.
package tags

import (
	"regexp"
	"strings"
)

// Fallbacks used when a tag is missing or does not resolve.
const (
	FallbackProject  = "personal"
	FallbackPriority = "medium"
)

var (
	projectTag  = regexp.MustCompile(`#(\w+)`)
	priorityTag = regexp.MustCompile(`!(\w+)`)
)

var priorities = map[string]struct{}{
	"high":   {},
	"medium": {},
	"low":    {},
}

// ExtractProject returns the lower-cased name of the first #tag in text if
// it matches one of projects, and FallbackProject otherwise. Later tags are
// ignored.
func ExtractProject(text string, projects []string) string {
	m := projectTag.FindStringSubmatch(text)
	if m == nil {
		return FallbackProject
	}
	tag := strings.ToLower(m[1])
	for _, p := range projects {
		if p == tag {
			return tag
		}
	}
	return FallbackProject
}

// ExtractPriority returns the first !tag of text when it is high, medium or
// low (case-insensitive), and FallbackPriority otherwise.
func ExtractPriority(text string) string {
	m := priorityTag.FindStringSubmatch(text)
	if m == nil {
		return FallbackPriority
	}
	p := strings.ToLower(m[1])
	if _, ok := priorities[p]; !ok {
		return FallbackPriority
	}
	return p
}

// Clean removes every #tag and !tag from text and trims the result. It is
// meant for display; stored task text keeps its tags.
func Clean(text string) string {
	text = projectTag.ReplaceAllString(text, "")
	text = priorityTag.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
