package models

// TournamentFormat — формат участия.
type TournamentFormat string

const (
	FormatSingles TournamentFormat = "Singles"
	FormatDoubles TournamentFormat = "Doubles"
)

// TournamentMode определяет, предшествует ли плей-офф круговой этап.
type TournamentMode string

const (
	ModeRoundRobinKnockout TournamentMode = "Round-Robin + Knockout"
	ModeKnockoutOnly       TournamentMode = "Knockout Only"
)

// KnockoutStart — раунд, с которого начинается сетка плей-офф.
type KnockoutStart string

const (
	StartRoundOf16 KnockoutStart = "Round of 16"
	StartRoundOf8  KnockoutStart = "Round of 8"
	StartSemifinal KnockoutStart = "Semi-finals"
)

// BracketSize возвращает количество слотов сетки для стартового раунда.
func (k KnockoutStart) BracketSize() int {
	switch k {
	case StartRoundOf16:
		return 16
	case StartSemifinal:
		return 4
	default:
		return 8
	}
}

// TournamentSettings — настройки турнира, задаются при создании и могут
// редактироваться позже.
type TournamentSettings struct {
	Name          string           `json:"name"`
	Format        TournamentFormat `json:"format"`
	SetCount      int              `json:"set_count"`
	Mode          TournamentMode   `json:"mode"`
	KnockoutStart KnockoutStart    `json:"knockout_start"`
}

// DefaultSettings — настройки нового турнира по умолчанию.
func DefaultSettings() TournamentSettings {
	return TournamentSettings{
		Format:        FormatSingles,
		SetCount:      3,
		Mode:          ModeRoundRobinKnockout,
		KnockoutStart: StartRoundOf8,
	}
}

// ValidSetCount проверяет допустимое число сетов матча.
func (s TournamentSettings) ValidSetCount() bool {
	switch s.SetCount {
	case 1, 3, 5:
		return true
	default:
		return false
	}
}
