package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/picotel/picotel/stream"
)

// Pattern: pattern operator value, e.g. "cpu_usage > 90.0".
var alertRule = regexp.MustCompile(`^(\S+)\s*([<>])\s*([0-9.]+)$`)

// ParseAlert parses a threshold rule string into a stream.Alert.
// Supported formats:
//   - "cpu_usage > 90"       (alert when the gauge exceeds 90)
//   - "disk_free < 1024"     (alert when the gauge drops under 1024)
//
// The pattern matches any gauge whose name contains it as a substring.
func ParseAlert(s string) (stream.Alert, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return stream.Alert{}, fmt.Errorf("empty alert rule")
	}

	matches := alertRule.FindStringSubmatch(s)
	if matches == nil {
		return stream.Alert{}, fmt.Errorf("invalid alert rule: %q (expected format: pattern operator value, e.g. 'cpu_usage > 90')", s)
	}

	value, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return stream.Alert{}, fmt.Errorf("invalid alert threshold %q: %v", matches[3], err)
	}

	dir := stream.Above
	if matches[2] == "<" {
		dir = stream.Below
	}

	return stream.Alert{
		Pattern:   matches[1],
		Threshold: value,
		Direction: dir,
	}, nil
}

// ParseAlerts parses multiple alert rule strings, collecting every
// parse failure into a single error.
func ParseAlerts(rules []string) ([]stream.Alert, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	result := make([]stream.Alert, 0, len(rules))
	var errors []string

	for i, s := range rules {
		a, err := ParseAlert(s)
		if err != nil {
			errors = append(errors, fmt.Sprintf("alert[%d]: %v", i, err))
			continue
		}
		result = append(result, a)
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("alert parsing errors: %s", strings.Join(errors, "; "))
	}

	return result, nil
}
