// services/quest_parser.go
package services

import (
	"strconv"
	"strings"
	"unicode"

	"fit-quest-system/models"

	"golang.org/x/text/unicode/norm"
)

// ParsedQuest holds the structured fields extracted from the generator's
// free-text reply. Numeric ranges are NOT validated here; out-of-range
// values from the generator are accepted as-is.
type ParsedQuest struct {
	Title        string
	Description  string
	HealthPoints int
	EnergyPoints int
	Goal         int
	ExpPoints    int
}

var questLabels = []string{
	"Title:",
	"Description:",
	"Health Points:",
	"Energy Points:",
	"Goal:",
	"Experience Points:",
}

// ParseQuestContent tolerantly extracts labeled lines from the raw generator
// output. Labels are substring-matched so markdown decoration around them is
// ignored; blank lines and unrelated lines are skipped. A missing mandatory
// field fails with a GenerationError naming the field.
func ParseQuestContent(raw string) (*ParsedQuest, error) {
	raw = norm.NFC.String(raw)

	values := map[string]string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "```" {
			continue
		}
		for _, label := range questLabels {
			if _, seen := values[label]; seen {
				continue
			}
			idx := strings.Index(line, label)
			if idx < 0 {
				continue
			}
			value := strings.TrimSpace(line[idx+len(label):])
			value = strings.Trim(value, "*_` ")
			values[label] = value
			break
		}
	}

	for _, label := range questLabels {
		if _, ok := values[label]; !ok {
			return nil, models.NewGenerationError(
				"generator output missing mandatory field "+strings.TrimSuffix(label, ":"), nil)
		}
	}

	parsed := &ParsedQuest{
		Title:       values["Title:"],
		Description: values["Description:"],
	}

	numeric := []struct {
		label string
		dst   *int
	}{
		{"Health Points:", &parsed.HealthPoints},
		{"Energy Points:", &parsed.EnergyPoints},
		{"Goal:", &parsed.Goal},
		{"Experience Points:", &parsed.ExpPoints},
	}
	for _, field := range numeric {
		n, ok := firstInt(values[field.label])
		if !ok {
			return nil, models.NewGenerationError(
				"generator output has non-numeric "+strings.TrimSuffix(field.label, ":"), nil)
		}
		*field.dst = n
	}

	return parsed, nil
}

// firstInt extracts the first run of digits from s.
func firstInt(s string) (int, bool) {
	start := -1
	for i, r := range s {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			return n, err == nil
		}
	}
	if start >= 0 {
		n, err := strconv.Atoi(s[start:])
		return n, err == nil
	}
	return 0, false
}
