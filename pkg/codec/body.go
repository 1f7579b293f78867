package codec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	dueMarker        = "📅 Due: "
	complexityMarker = "📊 Complexity: "
)

var (
	// Markers must end their line; anything trailing makes them malformed.
	dueRe        = regexp.MustCompile(`(?m)\n?📅 Due: (\d{4}-\d{2}-\d{2})[ \t\r]*$`)
	complexityRe = regexp.MustCompile(`(?m)\n?📊 Complexity: (\d+)(?: points?)?[ \t\r]*$`)
	referenceRe  = regexp.MustCompile(`^https?://\S+$`)
)

// SplitDue extracts the due date marker from a body. It returns the first
// marker's date and the body with every marker removed and trimmed.
func SplitDue(body string) (description, due string) {
	if m := dueRe.FindStringSubmatch(body); len(m) > 1 {
		due = m[1]
	}
	return strings.TrimSpace(dueRe.ReplaceAllString(body, "")), due
}

// JoinDue appends the due date marker to description, separated by a blank line.
func JoinDue(description, due string) string {
	if due == "" {
		return description
	}
	if description == "" {
		return dueMarker + due
	}
	return description + "\n\n" + dueMarker + due
}

// SplitTipBody extracts complexity and reference lines from a tip body.
// Malformed markers are left in the description.
func SplitTipBody(body string) (description string, complexity int, refs []string) {
	if m := complexityRe.FindStringSubmatch(body); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			complexity = n
		}
		body = complexityRe.ReplaceAllString(body, "")
	}

	var kept []string
	for _, line := range strings.Split(body, "\n") {
		if trimmed := strings.TrimSpace(line); referenceRe.MatchString(trimmed) {
			refs = append(refs, trimmed)
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n")), complexity, refs
}

// JoinTipBody is the inverse of SplitTipBody.
func JoinTipBody(description string, complexity int, refs []string) string {
	var parts []string
	if complexity > 0 {
		parts = append(parts, complexityLine(complexity))
	}
	if description != "" {
		parts = append(parts, description)
	}
	if len(refs) > 0 {
		parts = append(parts, strings.Join(refs, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func complexityLine(n int) string {
	unit := "points"
	if n == 1 {
		unit = "point"
	}
	return fmt.Sprintf("%s%d %s", complexityMarker, n, unit)
}
