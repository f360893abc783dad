package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTournamentDocumentStatus(t *testing.T) {
	winner := "Ann"

	tests := []struct {
		name string
		doc  TournamentDocument
		want TournamentStatus
	}{
		{
			name: "no matches yet",
			doc:  TournamentDocument{},
			want: StatusUpcoming,
		},
		{
			name: "schedule generated",
			doc: TournamentDocument{
				Matches: []Match{{ID: "m1", GroupID: "g1", P1: "Ann", P2: "Bob"}},
			},
			want: StatusLive,
		},
		{
			name: "bracket in progress",
			doc: TournamentDocument{
				KnockoutMatches: []Match{
					{ID: "f", GroupID: GroupKnockout, Round: RoundFinal, P1: "Ann", P2: "Bob"},
				},
			},
			want: StatusLive,
		},
		{
			name: "final played",
			doc: TournamentDocument{
				KnockoutMatches: []Match{
					{ID: "f", GroupID: GroupKnockout, Round: RoundFinal,
						P1: "Ann", P2: "Bob", IsFinished: true, Winner: &winner},
				},
			},
			want: StatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.Status())
		})
	}
}

func TestSummarizeFallsBackToUntitled(t *testing.T) {
	doc := TournamentDocument{ID: "t1"}
	summary := doc.Summarize()

	assert.Equal(t, "Untitled", summary.Name)
	assert.Equal(t, StatusUpcoming, summary.Status)
	assert.Equal(t, 0, summary.PlayersCount)
}

func TestMatchState(t *testing.T) {
	winner := "Ann"

	assert.Equal(t, MatchPending, Match{P1: "Ann", P2: PlayerTBD}.State())
	assert.Equal(t, MatchReady, Match{P1: "Ann", P2: "Bob"}.State())
	assert.Equal(t, MatchFinished, Match{P1: "Ann", P2: "Bob", IsFinished: true, Winner: &winner}.State())
}

func TestKnockoutStartBracketSize(t *testing.T) {
	assert.Equal(t, 16, StartRoundOf16.BracketSize())
	assert.Equal(t, 8, StartRoundOf8.BracketSize())
	assert.Equal(t, 4, StartSemifinal.BracketSize())
	assert.Equal(t, 8, KnockoutStart("").BracketSize())
}
