package models

import "time"

// TournamentStatus представляет статусы турнира на хабе.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "Upcoming"
	StatusLive      TournamentStatus = "Live"
	StatusCompleted TournamentStatus = "Completed"
)

// TournamentDocument — полный снимок турнира, которым обменивается сервис
// с хранилищем документов. Сохраняется и рассылается целиком при каждой
// мутации; все поля сериализуемы в JSON без циклов.
type TournamentDocument struct {
	ID              string             `json:"id"`
	Settings        TournamentSettings `json:"settings"`
	Groups          []Group            `json:"groups"`
	Players         []Player           `json:"players"`
	Matches         []Match            `json:"matches"`
	KnockoutMatches []Match            `json:"knockout_matches"`
	LogoKey         *string            `json:"-"`
	LogoURL         *string            `json:"logo_url,omitempty"`

	// Version проверяется при сохранении (оптимистичная блокировка),
	// в сам документ JSONB не входит.
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Status выводит статус турнира из состояния его матчей: Upcoming до генерации
// расписания, Live после, Completed когда сыгран финал.
func (d *TournamentDocument) Status() TournamentStatus {
	for _, m := range d.KnockoutMatches {
		if m.IsFinished && m.Round == RoundFinal {
			return StatusCompleted
		}
	}
	if len(d.Matches) > 0 || len(d.KnockoutMatches) > 0 {
		return StatusLive
	}
	return StatusUpcoming
}

// FindGroup возвращает группу по ID или nil.
func (d *TournamentDocument) FindGroup(groupID string) *Group {
	for i := range d.Groups {
		if d.Groups[i].ID == groupID {
			return &d.Groups[i]
		}
	}
	return nil
}

// FindPlayer возвращает игрока по ID или nil.
func (d *TournamentDocument) FindPlayer(playerID string) *Player {
	for i := range d.Players {
		if d.Players[i].ID == playerID {
			return &d.Players[i]
		}
	}
	return nil
}

// MatchProgress — прогресс сыгранных матчей по группе.
type MatchProgress struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

// TournamentSummary — карточка турнира для хаба.
type TournamentSummary struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Status       TournamentStatus `json:"status"`
	PlayersCount int              `json:"players_count"`
	Format       TournamentFormat `json:"format"`
	Location     string           `json:"location"`
	LogoURL      *string          `json:"logo_url,omitempty"`
}

// Summarize строит карточку турнира для списка на хабе.
func (d *TournamentDocument) Summarize() TournamentSummary {
	name := d.Settings.Name
	if name == "" {
		name = "Untitled"
	}
	return TournamentSummary{
		ID:           d.ID,
		Name:         name,
		Status:       d.Status(),
		PlayersCount: len(d.Players),
		Format:       d.Settings.Format,
		Location:     "Main Court",
		LogoURL:      d.LogoURL,
	}
}
