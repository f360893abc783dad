// Package engine contains the tournament scheduling core: round-robin fixture
// generation, group standings with deterministic tie-breaks, knockout bracket
// construction and winner advancement. Every operation is a pure function over
// an in-memory snapshot; the engine performs no I/O and never returns errors —
// malformed input degrades to a well-defined empty or partial result.
package engine

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/acemanager/ace-server/models"
)

// Shuffler permutes n elements via the provided swap function. Knockout-only
// qualification uses it so tests can inject a seeded source.
type Shuffler func(n int, swap func(i, j int))

// NewSeededShuffler returns a Shuffler backed by math/rand with the given seed.
func NewSeededShuffler(seed int64) Shuffler {
	r := rand.New(rand.NewSource(seed))
	return func(n int, swap func(i, j int)) {
		r.Shuffle(n, swap)
	}
}

// DefaultShuffler is a time-seeded Shuffler for production use.
func DefaultShuffler() Shuffler {
	return NewSeededShuffler(time.Now().UnixNano())
}

// StandingsFunc supplies the ranked standings of a group; the bracket builder
// uses it to resolve hybrid-mode qualifiers.
type StandingsFunc func(groupID string) []models.PlayerStats

// IDFunc mints opaque unique identifiers for generated matches.
type IDFunc func() string

// NewMatchID is the production IDFunc.
func NewMatchID() string {
	return uuid.NewString()
}
