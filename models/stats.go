package models

// PlayerStats — производная строка таблицы группы. Никогда не сохраняется,
// пересчитывается при каждом запросе таблицы.
type PlayerStats struct {
	PlayerID          string  `json:"player_id"`
	Name              string  `json:"name"`
	GroupID           string  `json:"group_id"`
	Points            int     `json:"points"`
	MatchesPlayed     int     `json:"matches_played"`
	GamesWon          int     `json:"games_won"`
	GamesLost         int     `json:"games_lost"`
	GamesWonPerMatch  float64 `json:"games_won_per_match"`
	GamesLostPerMatch float64 `json:"games_lost_per_match"`
}
