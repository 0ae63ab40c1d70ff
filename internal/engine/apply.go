package engine

import (
	"github.com/nvaneck/escape-engine/pkg/chat"
	"github.com/nvaneck/escape-engine/pkg/decision"
	"github.com/nvaneck/escape-engine/pkg/puzzle"
	"github.com/nvaneck/escape-engine/pkg/session"
)

// applyDecision runs the state-transition rules for one validated decision,
// in fixed order: movement, riddle resolution, terminal discovery, history
// append. It returns the hidden-area description to hand to the image
// generator, or nil when nothing was discovered this turn.
//
// Movement is applied before the riddle and terminal checks because one
// decision can legitimately represent "moved AND discovered AND solved" in
// a single combined turn.
func applyDecision(s *session.State, g *puzzle.Graph, utterance string, d *decision.Decision) *string {
	// 1. Movement, with first-visit bookkeeping.
	if d.Moved && d.MoveTarget != nil {
		s.CurrentLocation = *d.MoveTarget
		s.Visit(*d.MoveTarget)
	}

	// 2. Riddle resolution. The terminal node has no answer and can never
	// be "solved"; the oracle claiming otherwise is ignored.
	advanced := false
	if node := s.CurrentNode(g); node != nil && d.RiddleSolved && node.Answer != nil {
		s.CluesCompleted++
		if s.CurrentClueIndex+1 < len(g.Chain) {
			s.CurrentClueIndex++
			advanced = true
		} else {
			// Chain exhausted via a solved riddle. Defensive: a valid
			// graph ends in a riddle-less exit node, so the index never
			// runs past it, but the session must still terminate.
			s.SessionOver = true
		}
	}

	// 3. Terminal discovery. Re-read the node; it may have just advanced.
	if node := s.CurrentNode(g); node != nil && node.Riddle == nil && d.DiscoveryRevealed {
		s.SessionOver = true
	}

	// 4. History: player utterance first, then the avatar's reply.
	s.ConversationLog = append(s.ConversationLog,
		chat.ChatMessage{Role: chat.ChatRoleUser, Content: utterance},
		chat.ChatMessage{Role: chat.ChatRoleAvatar, Content: d.AvatarReply},
	)

	return hiddenArea(s, g, d, advanced)
}

// hiddenArea selects the node whose hidden-area description accompanies a
// discovery. When the riddle was solved and the index advanced this same
// turn, the discovered node is one step back; otherwise it is the
// still-current node.
func hiddenArea(s *session.State, g *puzzle.Graph, d *decision.Decision, advancedThisTurn bool) *string {
	if !d.DiscoveryRevealed {
		return nil
	}

	idx := s.CurrentClueIndex
	if advancedThisTurn {
		idx--
	}
	if idx < 0 || idx >= len(g.Chain) {
		return nil
	}

	desc := g.Chain[idx].HiddenArea
	if desc == "" {
		return nil
	}
	return &desc
}
