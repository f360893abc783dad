package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/acemanager/ace-server/models"
)

const pointsPerWin = 2

// GroupStandings computes the ranked table of a group from its finished
// matches. Read-only and side-effect-free; always recomputed from the current
// match state. Ranking is descending by points, then head-to-head between the
// two tied players, then games won per match (desc), then games lost per match
// (asc). Ties surviving all four criteria keep their insertion order.
func GroupStandings(groupID string, players []models.Player, matches []models.Match) []models.PlayerStats {
	stats := make([]models.PlayerStats, 0)
	for _, p := range players {
		if p.GroupID == groupID {
			stats = append(stats, models.PlayerStats{
				PlayerID: p.ID,
				Name:     p.Name,
				GroupID:  p.GroupID,
			})
		}
	}

	index := make(map[string]*models.PlayerStats, len(stats))
	for i := range stats {
		index[stats[i].Name] = &stats[i]
	}

	finished := make([]models.Match, 0)
	for _, m := range matches {
		if m.GroupID == groupID && m.IsFinished {
			finished = append(finished, m)
		}
	}

	for _, m := range finished {
		p1, p2 := index[m.P1], index[m.P2]
		if p1 == nil || p2 == nil {
			continue
		}
		p1.MatchesPlayed++
		p2.MatchesPlayed++
		if m.Winner != nil {
			switch *m.Winner {
			case m.P1:
				p1.Points += pointsPerWin
			case m.P2:
				p2.Points += pointsPerWin
			}
		}
		p1Games, p2Games := ParseGames(m.Score)
		p1.GamesWon += p1Games
		p1.GamesLost += p2Games
		p2.GamesWon += p2Games
		p2.GamesLost += p1Games
	}

	for i := range stats {
		if stats[i].MatchesPlayed > 0 {
			stats[i].GamesWonPerMatch = float64(stats[i].GamesWon) / float64(stats[i].MatchesPlayed)
			stats[i].GamesLostPerMatch = float64(stats[i].GamesLost) / float64(stats[i].MatchesPlayed)
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		// Head-to-head only decides between equal-points players.
		if h2h := headToHead(a.Name, b.Name, finished); h2h != 0 {
			return h2h < 0
		}
		if a.GamesWonPerMatch != b.GamesWonPerMatch {
			return a.GamesWonPerMatch > b.GamesWonPerMatch
		}
		return a.GamesLostPerMatch < b.GamesLostPerMatch
	})

	return stats
}

// ParseGames totals the games won per side from a free-text score string like
// "6-4 6-3". Parsing is lenient and total: malformed tokens contribute zero to
// both sides, any input yields a finite non-negative pair.
func ParseGames(score string) (p1Games, p2Games int) {
	for _, token := range strings.Fields(score) {
		sides := strings.Split(token, "-")
		if len(sides) != 2 {
			continue
		}
		if g1, err := strconv.Atoi(sides[0]); err == nil && g1 >= 0 {
			p1Games += g1
		}
		if g2, err := strconv.Atoi(sides[1]); err == nil && g2 >= 0 {
			p2Games += g2
		}
	}
	return p1Games, p2Games
}

// headToHead reports -1 if p1 beat p2 in a finished match of this group,
// 1 if p2 beat p1, 0 when they have not met or the result is unresolved.
func headToHead(p1, p2 string, finished []models.Match) int {
	for _, m := range finished {
		if (m.P1 == p1 && m.P2 == p2) || (m.P1 == p2 && m.P2 == p1) {
			if m.Winner == nil {
				return 0
			}
			if *m.Winner == p1 {
				return -1
			}
			return 1
		}
	}
	return 0
}
