package decision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// FieldSynonyms maps alternate field names observed in oracle replies to
// canonical Decision fields. The set is configuration, not hidden logic:
// extend it only when a new oracle failure mode is observed in the wild.
var FieldSynonyms = map[string]string{
	"response":     "avatar_reply",
	"reply":        "avatar_reply",
	"message":      "avatar_reply",
	"text":         "avatar_reply",
	"narration":    "avatar_reply",
	"destination":  "move_target",
	"location":     "move_target",
	"move_to":      "move_target",
	"target":       "move_target",
	"moved_to":     "move_target",
	"did_move":     "moved",
	"movement":     "moved",
	"solved":       "riddle_solved",
	"riddle":       "riddle_solved",
	"discovered":   "discovery_revealed",
	"revealed":     "discovery_revealed",
	"discovery":    "discovery_revealed",
	"found_hidden": "discovery_revealed",
}

var canonicalFields = map[string]bool{
	"avatar_reply":       true,
	"moved":              true,
	"move_target":        true,
	"discovery_revealed": true,
	"riddle_solved":      true,
}

// Parser validates and repairs raw oracle replies.
type Parser struct {
	validLocations map[string]bool
	logger         *slog.Logger
}

// NewParser creates a parser constrained to the given location-id set.
// The logger is optional and used for best-effort diagnostics only.
func NewParser(validLocations []string, logger *slog.Logger) *Parser {
	set := make(map[string]bool, len(validLocations))
	for _, id := range validLocations {
		set[id] = true
	}
	return &Parser{validLocations: set, logger: logger}
}

// Parse turns a raw oracle reply into a Decision. It first attempts a
// strict parse; on failure it repairs common malformations (markdown
// fences, prose around the JSON, synonym field names, missing fields) and
// re-attempts. A reply unusable even after repair yields a
// *ContractViolationError and no Decision.
func (p *Parser) Parse(raw string) (*Decision, error) {
	d, strictErr := p.strictParse(extractJSON(raw))
	if strictErr == nil {
		p.debugLog(raw, d, false)
		return d, nil
	}

	d, repairErr := p.repair(raw)
	if repairErr != nil {
		p.debugLog(raw, nil, true)
		return nil, &ContractViolationError{
			Raw: raw,
			Err: fmt.Errorf("strict parse failed (%v); repair failed: %w", strictErr, repairErr),
		}
	}
	p.debugLog(raw, d, true)
	return d, nil
}

// strictParse accepts only the exact canonical field set, with every field
// present and move_target either null or a known location id.
func (p *Parser) strictParse(jsonText string) (*Decision, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonText), &fields); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	for name := range fields {
		if !canonicalFields[name] {
			return nil, fmt.Errorf("unknown field %q", name)
		}
	}
	for name := range canonicalFields {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("missing field %q", name)
		}
	}

	var d Decision
	dec := json.NewDecoder(bytes.NewReader([]byte(jsonText)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, err
	}
	if d.AvatarReply == "" {
		return nil, fmt.Errorf("avatar_reply is empty")
	}
	if d.MoveTarget != nil && !p.validLocations[*d.MoveTarget] {
		return nil, fmt.Errorf("move_target %q is not a known location", *d.MoveTarget)
	}
	// Movement without a destination cannot be applied.
	if d.MoveTarget == nil {
		d.Moved = false
	}
	return &d, nil
}

// repair attempts a best-effort recovery: extract the largest embedded JSON
// fragment, rename synonym fields, fill missing booleans with false and a
// missing move_target with null, then re-run the strict parse.
func (p *Parser) repair(raw string) (*Decision, error) {
	jsonText := extractJSON(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonText), &fields); err != nil {
		return nil, fmt.Errorf("no parseable JSON fragment: %w", err)
	}

	normalized := make(map[string]json.RawMessage, len(canonicalFields))
	for name, value := range fields {
		key := strings.ToLower(strings.TrimSpace(name))
		if canonicalFields[key] {
			normalized[key] = value
			continue
		}
		if canonical, ok := FieldSynonyms[key]; ok {
			// A canonical field always wins over its synonym.
			if _, exists := normalized[canonical]; !exists {
				normalized[canonical] = value
			}
		}
		// Unknown extras are dropped.
	}

	falseRaw := json.RawMessage("false")
	for _, name := range []string{"moved", "discovery_revealed", "riddle_solved"} {
		if _, ok := normalized[name]; !ok {
			normalized[name] = falseRaw
		}
	}
	if _, ok := normalized["move_target"]; !ok {
		normalized["move_target"] = json.RawMessage("null")
	}

	// An unknown destination is dropped rather than applied.
	if target, ok := normalized["move_target"]; ok {
		var id *string
		if err := json.Unmarshal(target, &id); err != nil {
			normalized["move_target"] = json.RawMessage("null")
			normalized["moved"] = falseRaw
		} else if id != nil && !p.validLocations[*id] {
			normalized["move_target"] = json.RawMessage("null")
			normalized["moved"] = falseRaw
		}
	}

	repaired, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to reassemble repaired reply: %w", err)
	}
	return p.strictParse(string(repaired))
}

// extractJSON strips markdown fences and surrounding prose, returning the
// largest {...} fragment found in the text. Mirrors the reply shapes seen
// in practice: fenced JSON, narrative followed by JSON, standalone "json"
// labels. Content inside the braces is passed through untouched.
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		start := 1
		end := len(lines)
		for i := len(lines) - 1; i > 0; i-- {
			if strings.HasPrefix(lines[i], "```") {
				end = i
				break
			}
		}
		if start < end {
			text = strings.Join(lines[start:end], "\n")
		}
	}

	// Mixed prose and JSON: take from the first brace to the last.
	open := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if open >= 0 && last > open {
		text = text[open : last+1]
	}

	return strings.TrimSpace(text)
}

// debugLog records the raw reply and parse outcome for offline analysis.
// Best effort only; it must never block or fail the turn.
func (p *Parser) debugLog(raw string, d *Decision, repaired bool) {
	if p.logger == nil {
		return
	}
	if d == nil {
		p.logger.Debug("Oracle reply rejected", "raw", raw)
		return
	}
	p.logger.Debug("Oracle reply parsed",
		"repaired", repaired,
		"moved", d.Moved,
		"discovery_revealed", d.DiscoveryRevealed,
		"riddle_solved", d.RiddleSolved)
}
