// Package decision turns untrusted oracle replies into strict, validated
// narrator decisions. The oracle is asked for a JSON object matching
// Schema, but the shape is advisory only; all enforcement lives here.
package decision

import (
	"fmt"
)

// Decision is the strictly-typed result of one oracle turn.
type Decision struct {
	AvatarReply       string  `json:"avatar_reply"`
	Moved             bool    `json:"moved"`
	MoveTarget        *string `json:"move_target"`
	DiscoveryRevealed bool    `json:"discovery_revealed"`
	RiddleSolved      bool    `json:"riddle_solved"`
}

// ContractViolationError reports an oracle reply that could not be parsed
// even after repair. The raw reply is retained for offline analysis.
type ContractViolationError struct {
	Raw string
	Err error
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("oracle reply violates decision contract: %v", e.Err)
}

func (e *ContractViolationError) Unwrap() error {
	return e.Err
}

// Schema is the JSON schema requested from the oracle as a structured
// response format. Providers that support strict schemas enforce it
// server-side; the parser never relies on that.
func Schema(validLocations []string) map[string]interface{} {
	targetType := map[string]interface{}{
		"type": []string{"string", "null"},
	}
	if len(validLocations) > 0 {
		targetType = map[string]interface{}{
			"type": []string{"string", "null"},
			"enum": append(anySlice(validLocations), nil),
		}
	}
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"avatar_reply": map[string]interface{}{
				"type": "string",
			},
			"moved": map[string]interface{}{
				"type": "boolean",
			},
			"move_target": targetType,
			"discovery_revealed": map[string]interface{}{
				"type": "boolean",
			},
			"riddle_solved": map[string]interface{}{
				"type": "boolean",
			},
		},
		"required": []string{"avatar_reply", "moved", "move_target", "discovery_revealed", "riddle_solved"},
	}
}

func anySlice(ss []string) []interface{} {
	out := make([]interface{}, 0, len(ss)+1)
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}
