package models

// Group — группа кругового этапа.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Player — участник турнира. Матчи ссылаются на игрока по имени,
// поэтому имя уникально в пределах турнира.
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	GroupID string `json:"group_id"`
}
