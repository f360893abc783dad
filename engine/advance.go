package engine

import "github.com/acemanager/ace-server/models"

// AdvancePolicy controls what happens to matches downstream of an already
// propagated result when a finished match is scored again with a different
// winner.
type AdvancePolicy int

const (
	// PropagateOnly overwrites the directly linked slot and leaves any
	// further descendants untouched (manual-correction behavior).
	PropagateOnly AdvancePolicy = iota
	// PropagateAndReset additionally clears the results of descendant
	// matches that were built on the stale winner.
	PropagateAndReset
)

// AdvanceWinner writes the winner of the finished match into the linked slot
// of its next-round match and returns the updated knockout collection. The
// input slice is not modified. A finished Final (no NextMatchID) is a no-op:
// reaching it is terminal for the bracket. The write is last-write-wins; the
// caller guarantees it is applied together with the triggering score entry.
func AdvanceWinner(knockout []models.Match, finished models.Match, policy AdvancePolicy) []models.Match {
	out := make([]models.Match, len(knockout))
	copy(out, knockout)

	if finished.NextMatchID == "" || !finished.IsFinished || finished.Winner == nil {
		return out
	}

	next := findMatch(out, finished.NextMatchID)
	if next == nil {
		return out
	}

	var previous string
	if finished.BracketPos == models.BracketPosBottom {
		previous = next.P2
		next.P2 = *finished.Winner
	} else {
		previous = next.P1
		next.P1 = *finished.Winner
	}

	// Descendants are only stale when the slot value actually changed under
	// an already recorded result.
	if policy == PropagateAndReset && previous != *finished.Winner && next.IsFinished {
		resetDownstream(out, next)
	}

	return out
}

// resetDownstream clears the result of m and blanks the slot it fed in its
// parent, walking the chain up to the final.
func resetDownstream(knockout []models.Match, m *models.Match) {
	for m != nil {
		wasFinished := m.IsFinished
		m.Score = ""
		m.Winner = nil
		m.IsFinished = false
		m.IsWalkover = false
		m.SetScores = []string{}

		if !wasFinished || m.NextMatchID == "" {
			return
		}
		parent := findMatch(knockout, m.NextMatchID)
		if parent == nil {
			return
		}
		if m.BracketPos == models.BracketPosBottom {
			parent.P2 = models.PlayerTBD
		} else {
			parent.P1 = models.PlayerTBD
		}
		m = parent
	}
}

func findMatch(matches []models.Match, id string) *models.Match {
	for i := range matches {
		if matches[i].ID == id {
			return &matches[i]
		}
	}
	return nil
}
