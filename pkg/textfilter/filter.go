package textfilter

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Control markers the oracle sometimes leaks into its narrative text. These
// are internal instructions and must never reach the client view.
var controlMarkers = []string{
	"DECISION:",
	"STATE:",
	"HIDDEN AREA:",
	"NARRATOR NOTE:",
}

var (
	fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z]*\n.*?```")
	titleCaser    = cases.Title(language.English)
)

// StripControlText removes narrator-internal control content from an avatar
// reply: fenced code blocks, trailing bare JSON objects, and lines that
// start with a known control marker. The spoken reply text is left intact.
func StripControlText(text string) string {
	// Fenced blocks are always internal; the avatar speaks prose.
	text = fencedBlockRe.ReplaceAllString(text, "")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if isControlLine(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	// A reply that ends in a bare JSON object is a leaked decision record.
	if idx := trailingJSONStart(text); idx >= 0 {
		text = text[:idx]
	}

	return strings.TrimSpace(text)
}

func isControlLine(line string) bool {
	upper := strings.ToUpper(line)
	for _, marker := range controlMarkers {
		if strings.HasPrefix(upper, marker) {
			return true
		}
	}
	// Leftover fence delimiters or a standalone "json" label.
	return line == "```" || strings.EqualFold(line, "json")
}

// trailingJSONStart returns the index of a '{' that opens a JSON object
// running to the end of the text, or -1 when the text does not end in one.
func trailingJSONStart(text string) int {
	trimmed := strings.TrimRight(text, " \t\n")
	if !strings.HasSuffix(trimmed, "}") {
		return -1
	}
	depth := 0
	for i := len(trimmed) - 1; i >= 0; i-- {
		switch trimmed[i] {
		case '}':
			depth++
		case '{':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// DisplayName renders a location or node id as a human-readable title:
// "locked_door" becomes "Locked Door".
func DisplayName(id string) string {
	id = strings.ReplaceAll(id, "_", " ")
	id = strings.ReplaceAll(id, "-", " ")
	return titleCaser.String(strings.TrimSpace(id))
}
