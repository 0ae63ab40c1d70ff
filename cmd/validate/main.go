package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nvaneck/escape-engine/pkg/puzzle"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <graph.json> [more.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &GraphValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid.\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

type GraphValidator struct {
	errors []string
}

func (v *GraphValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("graph file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidID(nameWithoutExt) {
		return fmt.Errorf("graph filename '%s' must be lowercase snake_case (e.g., study.json, not Study.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var g puzzle.Graph
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&g); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validateGraph(&g)

	if err := g.Validate(); err != nil {
		v.addError(err.Error())
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

// validateGraph checks conventions that Graph.Validate does not enforce:
// identifier formatting and prose fields that authoring tends to miss.
func (v *GraphValidator) validateGraph(g *puzzle.Graph) {
	v.validateIDFormat("graph name", g.Name)

	if strings.TrimSpace(g.Story) == "" {
		v.addError("graph is missing story text")
	}

	for _, loc := range g.Locations {
		v.validateIDFormat("location ID", loc.ID)
		if strings.TrimSpace(loc.Name) == "" {
			v.addError(fmt.Sprintf("location '%s' is missing a display name", loc.ID))
		}
		if strings.TrimSpace(loc.Description) == "" {
			v.addError(fmt.Sprintf("location '%s' is missing a description", loc.ID))
		}
	}

	for _, node := range g.Chain {
		v.validateIDFormat("clue node ID", node.ID)
		v.validateIDFormat("clue node location", node.LocationID)
		if strings.TrimSpace(node.Discovery) == "" {
			v.addError(fmt.Sprintf("clue node '%s' is missing discovery text", node.ID))
		}
		if strings.TrimSpace(node.HiddenArea) == "" {
			v.addError(fmt.Sprintf("clue node '%s' is missing hidden area text", node.ID))
		}
		if !node.IsTerminal() && strings.TrimSpace(node.PrematureDiscovery) == "" {
			v.addError(fmt.Sprintf("clue node '%s' is missing premature discovery text", node.ID))
		}
		if node.Answer != nil && strings.TrimSpace(*node.Answer) == "" {
			v.addError(fmt.Sprintf("clue node '%s' has a blank answer keyword", node.ID))
		}
	}
}

func (v *GraphValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *GraphValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
