package services

import "errors"

// Общие ошибки сервисного слоя, маппятся на HTTP-статусы в handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed       = errors.New("validation failed")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrGroupNameRequired      = errors.New("group name is required")
	ErrPlayerNameRequired     = errors.New("player name is required")
	ErrInvalidSetCount        = errors.New("set count must be 1, 3 or 5")
	ErrGroupRequired          = errors.New("at least one group is required")
	ErrWinnerRequired         = errors.New("a finished match requires a winner equal to one of its players")
	ErrMatchSlotPending       = errors.New("match participants are not decided yet")

	// Ошибки конфликтов
	ErrPlayerNameConflict = errors.New("player name is already in use in this tournament")
	ErrSnapshotConflict   = errors.New("tournament was modified concurrently, reload and retry")

	// Ошибки аутентификации
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Хранилище логотипов не настроено
	ErrLogoStorageDisabled = errors.New("logo storage is not configured")

	// Ошибки, специфичные для сущностей
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrMatchNotFound      = errors.New("match not found")
)
