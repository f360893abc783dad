package engine

import "github.com/acemanager/ace-server/models"

// GenerateRoundRobin produces the complete round-robin fixture set for the
// given groups: within each group every unordered pair of players meets exactly
// once, in player insertion order. The result replaces the whole round-robin
// match collection; re-running yields fresh match identifiers. Groups with
// fewer than two players contribute no matches.
func GenerateRoundRobin(groups []models.Group, players []models.Player, newID IDFunc) []models.Match {
	if newID == nil {
		newID = NewMatchID
	}

	matches := make([]models.Match, 0)
	for _, group := range groups {
		names := make([]string, 0)
		for _, p := range players {
			if p.GroupID == group.ID {
				names = append(names, p.Name)
			}
		}
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				matches = append(matches, models.Match{
					ID:        newID(),
					GroupID:   group.ID,
					P1:        names[i],
					P2:        names[j],
					Score:     "",
					Winner:    nil,
					SetScores: []string{},
				})
			}
		}
	}
	return matches
}
