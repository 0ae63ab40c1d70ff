package puzzle

import (
	"fmt"
)

// Location is a navigable spot in the room. Environmental locations exist
// only for context; interactable locations may carry a clue.
type Location struct {
	ID           string `json:"id"` // Also the key used in session state.
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	Interactable bool   `json:"interactable,omitempty"`
}

// ClueNode is one step of the puzzle chain. Riddle and Answer are both nil
// on exactly one node: the terminal exit node, which must be last in chain
// order.
type ClueNode struct {
	ID                 string  `json:"id"`
	LocationID         string  `json:"location_id"`
	Discovery          string  `json:"discovery"`           // Revealed on first correct arrival.
	PrematureDiscovery string  `json:"premature_discovery"` // Revealed on early arrival.
	Riddle             *string `json:"riddle,omitempty"`
	Answer             *string `json:"answer,omitempty"`
	HiddenArea         string  `json:"hidden_area,omitempty"` // Prompt for the image generator.
}

// IsTerminal reports whether the node is the exit node.
func (n *ClueNode) IsTerminal() bool {
	return n.Riddle == nil && n.Answer == nil
}

// Graph is the static puzzle description: the ordered clue chain plus the
// full set of locations (chain locations and environmental ones). Immutable
// once built; the turn engine treats it as a lookup table.
type Graph struct {
	Name      string     `json:"name"`
	Story     string     `json:"story,omitempty"` // Scenario framing for the narrator.
	Chain     []ClueNode `json:"chain"`
	Locations []Location `json:"locations"`
}

// Location returns the location with the given id, or nil.
func (g *Graph) Location(id string) *Location {
	for i := range g.Locations {
		if g.Locations[i].ID == id {
			return &g.Locations[i]
		}
	}
	return nil
}

// LocationIDs returns all location ids in declaration order.
func (g *Graph) LocationIDs() []string {
	ids := make([]string, 0, len(g.Locations))
	for _, loc := range g.Locations {
		ids = append(ids, loc.ID)
	}
	return ids
}

// StartLocation is the avatar's initial location: the first location in the
// full set.
func (g *Graph) StartLocation() string {
	if len(g.Locations) == 0 {
		return ""
	}
	return g.Locations[0].ID
}

// TotalClues counts the chain nodes that carry an answer, i.e. the solvable
// steps. The terminal exit node is not counted.
func (g *Graph) TotalClues() int {
	n := 0
	for i := range g.Chain {
		if g.Chain[i].Answer != nil {
			n++
		}
	}
	return n
}

// Validate checks the structural invariants of the graph. It is run by the
// validate CLI and on load, before a graph is handed to the engine.
func (g *Graph) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("graph name is required")
	}
	if len(g.Chain) == 0 {
		return fmt.Errorf("chain cannot be empty")
	}
	if len(g.Locations) == 0 {
		return fmt.Errorf("graph has no locations")
	}

	seenLocations := make(map[string]bool, len(g.Locations))
	for _, loc := range g.Locations {
		if loc.ID == "" {
			return fmt.Errorf("location with empty id")
		}
		if seenLocations[loc.ID] {
			return fmt.Errorf("duplicate location id %q", loc.ID)
		}
		seenLocations[loc.ID] = true
	}

	terminals := 0
	usedLocations := make(map[string]string, len(g.Chain)) // location id -> node id
	for i := range g.Chain {
		node := &g.Chain[i]
		if node.ID == "" {
			return fmt.Errorf("chain node %d has empty id", i)
		}

		loc := g.Location(node.LocationID)
		if loc == nil {
			return fmt.Errorf("node %q references unknown location %q", node.ID, node.LocationID)
		}
		if !loc.Interactable {
			return fmt.Errorf("node %q is placed at non-interactable location %q", node.ID, node.LocationID)
		}
		if prev, ok := usedLocations[node.LocationID]; ok {
			return fmt.Errorf("nodes %q and %q share location %q", prev, node.ID, node.LocationID)
		}
		usedLocations[node.LocationID] = node.ID

		// Riddle and answer travel together.
		if (node.Riddle == nil) != (node.Answer == nil) {
			return fmt.Errorf("node %q must have both riddle and answer, or neither", node.ID)
		}
		if node.IsTerminal() {
			terminals++
			if i != len(g.Chain)-1 {
				return fmt.Errorf("terminal node %q must be last in the chain", node.ID)
			}
		}
	}
	if terminals != 1 {
		return fmt.Errorf("chain must have exactly one terminal node, found %d", terminals)
	}
	return nil
}
