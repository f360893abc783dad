package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acemanager/ace-server/models"
)

// buildScoredBracket returns a Round-of-8 bracket with all quarterfinal slots
// seeded Ann..Hal.
func buildScoredBracket(t *testing.T) []models.Match {
	t.Helper()
	settings := knockoutSettings(models.ModeKnockoutOnly, models.StartRoundOf8)
	players := testPlayers("g1", "Ann", "Bob", "Cid", "Dan", "Eva", "Fay", "Gus", "Hal")

	// Identity shuffle keeps insertion order for deterministic slots.
	identity := func(n int, swap func(i, j int)) {}
	matches := BuildKnockoutBracket(settings, nil, players, nil, identity, sequentialIDs())
	require.Len(t, matches, 7)
	return matches
}

func scoreMatch(matches []models.Match, id, score, winner string) models.Match {
	for i := range matches {
		if matches[i].ID == id {
			matches[i].Score = score
			matches[i].Winner = &winner
			matches[i].IsFinished = true
			return matches[i]
		}
	}
	return models.Match{}
}

func findByID(t *testing.T, matches []models.Match, id string) models.Match {
	t.Helper()
	m := findMatch(matches, id)
	require.NotNil(t, m, "match %s not found", id)
	return *m
}

func TestAdvanceWinner_WritesLinkedSlot(t *testing.T) {
	bracket := buildScoredBracket(t)
	byRound := matchesByRound(bracket)
	quarters := byRound[models.RoundQuarter]

	tests := []struct {
		name string
		qf   models.Match
	}{
		{"top feeder fills p1", quarters[0]},
		{"bottom feeder fills p2", quarters[1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := make([]models.Match, len(bracket))
			copy(matches, bracket)

			finished := scoreMatch(matches, tt.qf.ID, "6-4 6-4", tt.qf.P1)
			updated := AdvanceWinner(matches, finished, PropagateOnly)

			before := findByID(t, matches, tt.qf.NextMatchID)
			after := findByID(t, updated, tt.qf.NextMatchID)
			if tt.qf.BracketPos == models.BracketPosTop {
				assert.Equal(t, tt.qf.P1, after.P1)
				assert.Equal(t, before.P2, after.P2)
			} else {
				assert.Equal(t, tt.qf.P1, after.P2)
				assert.Equal(t, before.P1, after.P1)
			}

			// No other field of the target changes.
			assert.Equal(t, before.Score, after.Score)
			assert.Equal(t, before.Winner, after.Winner)
			assert.Equal(t, before.IsFinished, after.IsFinished)
			assert.Equal(t, before.Round, after.Round)
			assert.Equal(t, before.NextMatchID, after.NextMatchID)
		})
	}
}

func TestAdvanceWinner_FinalIsTerminal(t *testing.T) {
	bracket := buildScoredBracket(t)
	final := matchesByRound(bracket)[models.RoundFinal][0]

	finished := scoreMatch(bracket, final.ID, "6-2 6-2", "Ann")
	updated := AdvanceWinner(bracket, finished, PropagateOnly)
	assert.Equal(t, bracket, updated)
}

func TestAdvanceWinner_UnfinishedMatchIsNoOp(t *testing.T) {
	bracket := buildScoredBracket(t)
	qf := matchesByRound(bracket)[models.RoundQuarter][0]

	updated := AdvanceWinner(bracket, qf, PropagateOnly)
	assert.Equal(t, bracket, updated)
}

func TestAdvanceWinner_RescoreOverwritesSlot(t *testing.T) {
	bracket := buildScoredBracket(t)
	qf := matchesByRound(bracket)[models.RoundQuarter][0]

	finished := scoreMatch(bracket, qf.ID, "6-4 6-4", qf.P1)
	bracket = AdvanceWinner(bracket, finished, PropagateOnly)

	// Result edited: the other player actually won.
	corrected := scoreMatch(bracket, qf.ID, "4-6 4-6", qf.P2)
	bracket = AdvanceWinner(bracket, corrected, PropagateOnly)

	sf := findByID(t, bracket, qf.NextMatchID)
	assert.Equal(t, qf.P2, sf.P1)
}

func TestAdvanceWinner_PropagateOnlyLeavesDescendantsStale(t *testing.T) {
	bracket := buildScoredBracket(t)
	quarters := matchesByRound(bracket)[models.RoundQuarter]
	qf1, qf2 := quarters[0], quarters[1]

	// Play both feeders and the semifinal they feed.
	bracket = AdvanceWinner(bracket, scoreMatch(bracket, qf1.ID, "6-4 6-4", qf1.P1), PropagateOnly)
	bracket = AdvanceWinner(bracket, scoreMatch(bracket, qf2.ID, "6-4 6-4", qf2.P1), PropagateOnly)
	bracket = AdvanceWinner(bracket, scoreMatch(bracket, qf1.NextMatchID, "6-3 6-3", qf1.P1), PropagateOnly)

	// Re-score the first quarterfinal with the opposite winner.
	bracket = AdvanceWinner(bracket, scoreMatch(bracket, qf1.ID, "4-6 4-6", qf1.P2), PropagateOnly)

	sf := findByID(t, bracket, qf1.NextMatchID)
	assert.Equal(t, qf1.P2, sf.P1)
	// The stale semifinal result is intentionally left in place.
	assert.True(t, sf.IsFinished)
	require.NotNil(t, sf.Winner)
	assert.Equal(t, qf1.P1, *sf.Winner)
}

func TestAdvanceWinner_PropagateAndResetClearsDescendants(t *testing.T) {
	bracket := buildScoredBracket(t)
	quarters := matchesByRound(bracket)[models.RoundQuarter]
	qf1, qf2 := quarters[0], quarters[1]

	bracket = AdvanceWinner(bracket, scoreMatch(bracket, qf1.ID, "6-4 6-4", qf1.P1), PropagateAndReset)
	bracket = AdvanceWinner(bracket, scoreMatch(bracket, qf2.ID, "6-4 6-4", qf2.P1), PropagateAndReset)
	bracket = AdvanceWinner(bracket, scoreMatch(bracket, qf1.NextMatchID, "6-3 6-3", qf1.P1), PropagateAndReset)

	bracket = AdvanceWinner(bracket, scoreMatch(bracket, qf1.ID, "4-6 4-6", qf1.P2), PropagateAndReset)

	sf := findByID(t, bracket, qf1.NextMatchID)
	assert.Equal(t, qf1.P2, sf.P1)
	assert.Equal(t, qf2.P1, sf.P2, "sibling slot must survive the reset")
	assert.False(t, sf.IsFinished)
	assert.Nil(t, sf.Winner)
	assert.Empty(t, sf.Score)

	// The final slot fed by the stale semifinal winner is blanked again.
	final := findByID(t, bracket, sf.NextMatchID)
	assert.Equal(t, models.PlayerTBD, final.P1)
}

func TestAdvanceWinner_ResetSkippedWhenWinnerUnchanged(t *testing.T) {
	bracket := buildScoredBracket(t)
	qf1 := matchesByRound(bracket)[models.RoundQuarter][0]
	qf2 := matchesByRound(bracket)[models.RoundQuarter][1]

	bracket = AdvanceWinner(bracket, scoreMatch(bracket, qf1.ID, "6-4 6-4", qf1.P1), PropagateAndReset)
	bracket = AdvanceWinner(bracket, scoreMatch(bracket, qf2.ID, "6-4 6-4", qf2.P1), PropagateAndReset)
	bracket = AdvanceWinner(bracket, scoreMatch(bracket, qf1.NextMatchID, "6-3 6-3", qf1.P1), PropagateAndReset)

	// Correcting only the score, same winner: descendants keep their results.
	bracket = AdvanceWinner(bracket, scoreMatch(bracket, qf1.ID, "7-5 7-5", qf1.P1), PropagateAndReset)

	sf := findByID(t, bracket, qf1.NextMatchID)
	assert.True(t, sf.IsFinished)
	require.NotNil(t, sf.Winner)
	assert.Equal(t, qf1.P1, *sf.Winner)
}

func TestAdvanceWinner_DoesNotMutateInput(t *testing.T) {
	bracket := buildScoredBracket(t)
	qf := matchesByRound(bracket)[models.RoundQuarter][0]

	input := make([]models.Match, len(bracket))
	copy(input, bracket)
	finished := scoreMatch(input, qf.ID, "6-4 6-4", qf.P1)

	snapshot := make([]models.Match, len(input))
	copy(snapshot, input)

	_ = AdvanceWinner(input, finished, PropagateOnly)
	assert.Equal(t, snapshot, input)
}
