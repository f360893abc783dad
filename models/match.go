package models

// BracketRound — раунд матча плей-офф.
type BracketRound string

const (
	RoundOf16    BracketRound = "Ro16"
	RoundQuarter BracketRound = "QF"
	RoundSemi    BracketRound = "SF"
	RoundFinal   BracketRound = "F"
)

// BracketPos — слот родительского матча, в который проходит победитель.
type BracketPos string

const (
	BracketPosTop    BracketPos = "top"
	BracketPosBottom BracketPos = "bottom"
)

const (
	// GroupKnockout — сентинельный groupId для матчей плей-офф.
	GroupKnockout = "knockout"
	// PlayerTBD — заполнитель слота, пока участник не определён.
	PlayerTBD = "TBD"
)

// MatchState — состояние матча плей-офф.
type MatchState string

const (
	MatchPending  MatchState = "pending"  // хотя бы один слот ещё TBD
	MatchReady    MatchState = "ready"    // оба участника известны, счёта нет
	MatchFinished MatchState = "finished" // счёт введён, победитель определён
)

// Match — общая форма матча для кругового этапа и плей-офф.
// P1/P2 хранят отображаемые имена игроков, поэтому корректность завязана
// на уникальность имён (см. Player).
type Match struct {
	ID         string   `json:"id"`
	GroupID    string   `json:"group_id"`
	P1         string   `json:"p1"`
	P2         string   `json:"p2"`
	Score      string   `json:"score"` // сет-скоры через пробел, например "6-4 6-3"
	IsWalkover bool     `json:"is_walkover"`
	Winner     *string  `json:"winner"`
	IsFinished bool     `json:"is_finished"`
	SetScores  []string `json:"set_scores"`

	// Поля только для матчей плей-офф.
	Round       BracketRound `json:"round,omitempty"`
	NextMatchID string       `json:"next_match_id,omitempty"` // пусто у финала
	BracketPos  BracketPos   `json:"bracket_pos,omitempty"`
}

func (m Match) IsKnockout() bool {
	return m.GroupID == GroupKnockout
}

// State вычисляет состояние матча плей-офф.
func (m Match) State() MatchState {
	switch {
	case m.IsFinished:
		return MatchFinished
	case m.P1 == PlayerTBD || m.P2 == PlayerTBD:
		return MatchPending
	default:
		return MatchReady
	}
}

// HasPlayer сообщает, участвует ли игрок с данным именем в матче.
func (m Match) HasPlayer(name string) bool {
	return m.P1 == name || m.P2 == name
}
