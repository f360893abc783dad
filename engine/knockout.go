package engine

import "github.com/acemanager/ace-server/models"

// BuildKnockoutBracket constructs the knockout match tree for the configured
// starting round and seeds its leaf matches with qualifiers. The result
// replaces the whole knockout collection.
//
// Qualification: in knockout-only mode every player qualifies in shuffled
// order; in hybrid mode each group contributes its top ceil(size/groups)
// entries from standings, concatenated in group order. Qualifiers beyond the
// bracket size are dropped positionally. Slots without a qualifier stay "TBD".
func BuildKnockoutBracket(
	settings models.TournamentSettings,
	groups []models.Group,
	players []models.Player,
	standings StandingsFunc,
	shuffle Shuffler,
	newID IDFunc,
) []models.Match {
	if newID == nil {
		newID = NewMatchID
	}
	if shuffle == nil {
		shuffle = DefaultShuffler()
	}
	size := settings.KnockoutStart.BracketSize()

	qualifiers := qualify(settings, groups, players, standings, shuffle, size)
	if settings.Mode != models.ModeKnockoutOnly && len(groups) == 0 {
		return []models.Match{}
	}

	matches := buildTree(size, newID)

	leafRound := leafRoundFor(size)
	leaves := make([]*models.Match, 0, size/2)
	for i := range matches {
		if matches[i].Round == leafRound {
			leaves = append(leaves, &matches[i])
		}
	}

	// Leaves are created top-before-bottom within each branch, which is the
	// seeding order: qualifier[2i] and [2i+1] fill leaf i.
	for i, leaf := range leaves {
		if p1 := 2 * i; p1 < len(qualifiers) {
			leaf.P1 = qualifiers[p1]
		}
		if p2 := 2*i + 1; p2 < len(qualifiers) {
			leaf.P2 = qualifiers[p2]
		}
	}

	return matches
}

func qualify(
	settings models.TournamentSettings,
	groups []models.Group,
	players []models.Player,
	standings StandingsFunc,
	shuffle Shuffler,
	size int,
) []string {
	if settings.Mode == models.ModeKnockoutOnly {
		names := make([]string, 0, len(players))
		for _, p := range players {
			names = append(names, p.Name)
		}
		shuffle(len(names), func(i, j int) {
			names[i], names[j] = names[j], names[i]
		})
		return names
	}

	if len(groups) == 0 || standings == nil {
		return nil
	}
	perGroup := (size + len(groups) - 1) / len(groups)
	qualifiers := make([]string, 0, size)
	for _, g := range groups {
		table := standings(g.ID)
		for i := 0; i < perGroup && i < len(table); i++ {
			qualifiers = append(qualifiers, table[i].Name)
		}
	}
	return qualifiers
}

func leafRoundFor(size int) models.BracketRound {
	switch size {
	case 16:
		return models.RoundOf16
	case 8:
		return models.RoundQuarter
	default:
		return models.RoundSemi
	}
}

// buildTree creates the linked match tree from the final down: every non-final
// match points at its parent via NextMatchID and feeds the parent's top or
// bottom slot. Total matches = size - 1.
func buildTree(size int, newID IDFunc) []models.Match {
	create := func(round models.BracketRound, nextID string, pos models.BracketPos) models.Match {
		return models.Match{
			ID:          newID(),
			GroupID:     models.GroupKnockout,
			P1:          models.PlayerTBD,
			P2:          models.PlayerTBD,
			Winner:      nil,
			SetScores:   []string{},
			Round:       round,
			NextMatchID: nextID,
			BracketPos:  pos,
		}
	}

	matches := make([]models.Match, 0, size-1)

	final := create(models.RoundFinal, "", "")
	matches = append(matches, final)
	if size < 4 {
		return matches
	}

	sf1 := create(models.RoundSemi, final.ID, models.BracketPosTop)
	sf2 := create(models.RoundSemi, final.ID, models.BracketPosBottom)
	matches = append(matches, sf1, sf2)
	if size < 8 {
		return matches
	}

	quarters := make([]models.Match, 0, 4)
	for _, sf := range []models.Match{sf1, sf2} {
		quarters = append(quarters,
			create(models.RoundQuarter, sf.ID, models.BracketPosTop),
			create(models.RoundQuarter, sf.ID, models.BracketPosBottom),
		)
	}
	matches = append(matches, quarters...)
	if size < 16 {
		return matches
	}

	for _, qf := range quarters {
		matches = append(matches,
			create(models.RoundOf16, qf.ID, models.BracketPosTop),
			create(models.RoundOf16, qf.ID, models.BracketPosBottom),
		)
	}
	return matches
}
