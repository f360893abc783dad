package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/acemanager/ace-server/engine"
	"github.com/acemanager/ace-server/models"
	"github.com/acemanager/ace-server/realtime"
	"github.com/acemanager/ace-server/repositories"
	"github.com/acemanager/ace-server/storage"
)

// SnapshotBroadcaster рассылает сообщения в комнату турнира после каждой
// мутации. Реализуется realtime.Hub.
type SnapshotBroadcaster interface {
	BroadcastToRoom(roomID string, message realtime.Message)
}

// ScoreEntry — ввод результата матча. Для матчей плей-офф ResetDescendants
// выбирает политику продвижения при исправлении уже сыгранного результата.
type ScoreEntry struct {
	Score            string   `json:"score"`
	SetScores        []string `json:"set_scores"`
	Winner           string   `json:"winner"`
	IsWalkover       bool     `json:"is_walkover"`
	IsFinished       bool     `json:"is_finished"`
	ResetDescendants bool     `json:"reset_descendants"`
}

// TournamentProgress — сводка сыгранных матчей турнира.
type TournamentProgress struct {
	Total     int                    `json:"total"`
	Completed int                    `json:"completed"`
	Groups    []models.MatchProgress `json:"groups"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, settings models.TournamentSettings) (*models.TournamentDocument, error)
	GetTournament(ctx context.Context, id string) (*models.TournamentDocument, error)
	DeleteTournament(ctx context.Context, id string) error

	UpdateSettings(ctx context.Context, id string, settings models.TournamentSettings) (*models.TournamentDocument, error)
	AddGroup(ctx context.Context, id, name string) (*models.TournamentDocument, error)
	AddPlayer(ctx context.Context, id, name, groupID string) (*models.TournamentDocument, error)
	RenamePlayer(ctx context.Context, id, playerID, newName string) (*models.TournamentDocument, error)
	DeletePlayer(ctx context.Context, id, playerID string) (*models.TournamentDocument, error)

	GenerateSchedule(ctx context.Context, id string) (*models.TournamentDocument, error)
	GetGroupStandings(ctx context.Context, id, groupID string) ([]models.PlayerStats, error)
	GetProgress(ctx context.Context, id string) (*TournamentProgress, error)
	BuildBracket(ctx context.Context, id string) (*models.TournamentDocument, error)

	UpdateMatchScore(ctx context.Context, id, matchID string, entry ScoreEntry) (*models.TournamentDocument, error)
	UpdateKnockoutMatchScore(ctx context.Context, id, matchID string, entry ScoreEntry) (*models.TournamentDocument, error)

	UploadLogo(ctx context.Context, id, contentType string, file io.Reader) (*models.TournamentDocument, error)
}

type tournamentService struct {
	repo     repositories.TournamentRepository
	hub      SnapshotBroadcaster
	uploader storage.FileUploader
	shuffler engine.Shuffler
	logger   *slog.Logger
}

func NewTournamentService(
	repo repositories.TournamentRepository,
	hub SnapshotBroadcaster,
	uploader storage.FileUploader,
	shuffler engine.Shuffler,
	logger *slog.Logger,
) TournamentService {
	if shuffler == nil {
		shuffler = engine.DefaultShuffler()
	}
	return &tournamentService{
		repo:     repo,
		hub:      hub,
		uploader: uploader,
		shuffler: shuffler,
		logger:   logger,
	}
}

// RoomID — имя комнаты realtime-хаба для турнира.
func RoomID(tournamentID string) string {
	return "tournament_" + tournamentID
}

func (s *tournamentService) CreateTournament(ctx context.Context, settings models.TournamentSettings) (*models.TournamentDocument, error) {
	settings.Name = strings.TrimSpace(settings.Name)
	if settings.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if settings.SetCount == 0 {
		settings.SetCount = models.DefaultSettings().SetCount
	}
	if !settings.ValidSetCount() {
		return nil, ErrInvalidSetCount
	}

	doc := &models.TournamentDocument{
		ID:              uuid.NewString(),
		Settings:        settings,
		Groups:          []models.Group{},
		Players:         []models.Player{},
		Matches:         []models.Match{},
		KnockoutMatches: []models.Match{},
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	s.logger.Info("tournament created", slog.String("tournament_id", doc.ID), slog.String("name", settings.Name))
	return doc, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id string) (*models.TournamentDocument, error) {
	return s.loadDocument(ctx, id)
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id string) error {
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	if doc.LogoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *doc.LogoKey); err != nil {
			s.logger.Warn("failed to delete tournament logo",
				slog.String("tournament_id", id), slog.Any("error", err))
		}
	}
	s.hub.BroadcastToRoom(RoomID(id), realtime.Message{
		Type:   realtime.MessageTournamentDeleted,
		RoomID: RoomID(id),
	})
	s.logger.Info("tournament deleted", slog.String("tournament_id", id))
	return nil
}

func (s *tournamentService) UpdateSettings(ctx context.Context, id string, settings models.TournamentSettings) (*models.TournamentDocument, error) {
	settings.Name = strings.TrimSpace(settings.Name)
	if settings.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !settings.ValidSetCount() {
		return nil, ErrInvalidSetCount
	}
	return s.mutate(ctx, id, func(doc *models.TournamentDocument) error {
		doc.Settings = settings
		return nil
	})
}

func (s *tournamentService) AddGroup(ctx context.Context, id, name string) (*models.TournamentDocument, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameRequired
	}
	return s.mutate(ctx, id, func(doc *models.TournamentDocument) error {
		doc.Groups = append(doc.Groups, models.Group{ID: uuid.NewString(), Name: name})
		return nil
	})
}

func (s *tournamentService) AddPlayer(ctx context.Context, id, name, groupID string) (*models.TournamentDocument, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	return s.mutate(ctx, id, func(doc *models.TournamentDocument) error {
		// Матчи ссылаются на игроков по имени, поэтому имя должно быть
		// уникальным без учёта регистра.
		for _, p := range doc.Players {
			if strings.EqualFold(p.Name, name) {
				return ErrPlayerNameConflict
			}
		}
		if doc.Settings.Mode != models.ModeKnockoutOnly && doc.FindGroup(groupID) == nil {
			return ErrGroupNotFound
		}
		doc.Players = append(doc.Players, models.Player{
			ID:      uuid.NewString(),
			Name:    name,
			GroupID: groupID,
		})
		return nil
	})
}

func (s *tournamentService) RenamePlayer(ctx context.Context, id, playerID, newName string) (*models.TournamentDocument, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, ErrPlayerNameRequired
	}
	return s.mutate(ctx, id, func(doc *models.TournamentDocument) error {
		player := doc.FindPlayer(playerID)
		if player == nil {
			return ErrPlayerNotFound
		}
		for _, p := range doc.Players {
			if p.ID != playerID && strings.EqualFold(p.Name, newName) {
				return ErrPlayerNameConflict
			}
		}
		oldName := player.Name
		player.Name = newName

		// Каскад переименования: матчи хранят имена, а не ID.
		rename := func(matches []models.Match) {
			for i := range matches {
				if matches[i].P1 == oldName {
					matches[i].P1 = newName
				}
				if matches[i].P2 == oldName {
					matches[i].P2 = newName
				}
				if matches[i].Winner != nil && *matches[i].Winner == oldName {
					winner := newName
					matches[i].Winner = &winner
				}
			}
		}
		rename(doc.Matches)
		rename(doc.KnockoutMatches)
		return nil
	})
}

func (s *tournamentService) DeletePlayer(ctx context.Context, id, playerID string) (*models.TournamentDocument, error) {
	return s.mutate(ctx, id, func(doc *models.TournamentDocument) error {
		player := doc.FindPlayer(playerID)
		if player == nil {
			return ErrPlayerNotFound
		}
		name := player.Name

		players := doc.Players[:0]
		for _, p := range doc.Players {
			if p.ID != playerID {
				players = append(players, p)
			}
		}
		doc.Players = players

		// Удаление игрока каскадно убирает его матчи кругового этапа.
		// Сетка плей-офф не трогается: сыгранные раунды остаются историей.
		matches := make([]models.Match, 0, len(doc.Matches))
		for _, m := range doc.Matches {
			if !m.HasPlayer(name) {
				matches = append(matches, m)
			}
		}
		doc.Matches = matches
		return nil
	})
}

func (s *tournamentService) GenerateSchedule(ctx context.Context, id string) (*models.TournamentDocument, error) {
	return s.mutate(ctx, id, func(doc *models.TournamentDocument) error {
		if len(doc.Groups) == 0 {
			return ErrGroupRequired
		}
		// Генерация всегда заменяет коллекцию целиком; решение, не потеряются
		// ли введённые счета, принимает вызывающий.
		doc.Matches = engine.GenerateRoundRobin(doc.Groups, doc.Players, nil)
		return nil
	})
}

func (s *tournamentService) GetGroupStandings(ctx context.Context, id, groupID string) ([]models.PlayerStats, error) {
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.FindGroup(groupID) == nil {
		return nil, ErrGroupNotFound
	}
	return engine.GroupStandings(groupID, doc.Players, doc.Matches), nil
}

func (s *tournamentService) GetProgress(ctx context.Context, id string) (*TournamentProgress, error) {
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	progress := &TournamentProgress{Groups: make([]models.MatchProgress, 0, len(doc.Groups))}
	for _, m := range append(doc.Matches, doc.KnockoutMatches...) {
		progress.Total++
		if m.IsFinished {
			progress.Completed++
		}
	}
	for _, g := range doc.Groups {
		gp := models.MatchProgress{GroupID: g.ID, GroupName: g.Name}
		for _, m := range doc.Matches {
			if m.GroupID == g.ID {
				gp.Total++
				if m.IsFinished {
					gp.Completed++
				}
			}
		}
		progress.Groups = append(progress.Groups, gp)
	}
	return progress, nil
}

func (s *tournamentService) BuildBracket(ctx context.Context, id string) (*models.TournamentDocument, error) {
	return s.mutate(ctx, id, func(doc *models.TournamentDocument) error {
		if doc.Settings.Mode != models.ModeKnockoutOnly && len(doc.Groups) == 0 {
			return ErrGroupRequired
		}
		standings := func(groupID string) []models.PlayerStats {
			return engine.GroupStandings(groupID, doc.Players, doc.Matches)
		}
		doc.KnockoutMatches = engine.BuildKnockoutBracket(
			doc.Settings, doc.Groups, doc.Players, standings, s.shuffler, nil)
		return nil
	})
}

func (s *tournamentService) UpdateMatchScore(ctx context.Context, id, matchID string, entry ScoreEntry) (*models.TournamentDocument, error) {
	return s.mutate(ctx, id, func(doc *models.TournamentDocument) error {
		match := findMatchByID(doc.Matches, matchID)
		if match == nil {
			return ErrMatchNotFound
		}
		return applyScoreEntry(match, entry)
	})
}

func (s *tournamentService) UpdateKnockoutMatchScore(ctx context.Context, id, matchID string, entry ScoreEntry) (*models.TournamentDocument, error) {
	return s.mutate(ctx, id, func(doc *models.TournamentDocument) error {
		match := findMatchByID(doc.KnockoutMatches, matchID)
		if match == nil {
			return ErrMatchNotFound
		}
		if entry.IsFinished && (match.P1 == models.PlayerTBD || match.P2 == models.PlayerTBD) {
			return ErrMatchSlotPending
		}
		if err := applyScoreEntry(match, entry); err != nil {
			return err
		}

		// Продвижение победителя применяется в том же сохранении, что и ввод
		// счёта: между ними не существует окна с несинхронизированной сеткой.
		if match.IsFinished && match.Winner != nil {
			policy := engine.PropagateOnly
			if entry.ResetDescendants {
				policy = engine.PropagateAndReset
			}
			doc.KnockoutMatches = engine.AdvanceWinner(doc.KnockoutMatches, *match, policy)
		}
		return nil
	})
}

func (s *tournamentService) UploadLogo(ctx context.Context, id, contentType string, file io.Reader) (*models.TournamentDocument, error) {
	if s.uploader == nil {
		return nil, ErrLogoStorageDisabled
	}
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tournaments/%s/logo-%s", id, uuid.NewString())
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}

	oldKey := doc.LogoKey
	if err := s.repo.UpdateLogoKey(ctx, id, &key); err != nil {
		// Загруженный, но не привязанный объект подчищаем сразу.
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to clean up orphaned logo",
				slog.String("key", key), slog.Any("error", delErr))
		}
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if oldKey != nil && *oldKey != key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous logo",
				slog.String("key", *oldKey), slog.Any("error", err))
		}
	}

	doc.LogoKey = &key
	s.decorate(doc)
	s.broadcastSnapshot(doc)
	return doc, nil
}

// mutate загружает снимок, применяет мутацию, сохраняет документ целиком и
// рассылает его в комнату турнира.
func (s *tournamentService) mutate(ctx context.Context, id string, fn func(doc *models.TournamentDocument) error) (*models.TournamentDocument, error) {
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, nil, doc); err != nil {
		switch {
		case errors.Is(err, repositories.ErrVersionConflict):
			return nil, ErrSnapshotConflict
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		default:
			return nil, err
		}
	}
	s.broadcastSnapshot(doc)
	return doc, nil
}

func (s *tournamentService) loadDocument(ctx context.Context, id string) (*models.TournamentDocument, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	s.decorate(doc)
	return doc, nil
}

func (s *tournamentService) decorate(doc *models.TournamentDocument) {
	if doc.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*doc.LogoKey)
		if url != "" {
			doc.LogoURL = &url
		}
	}
}

func (s *tournamentService) broadcastSnapshot(doc *models.TournamentDocument) {
	s.hub.BroadcastToRoom(RoomID(doc.ID), realtime.Message{
		Type:    realtime.MessageSnapshot,
		Payload: doc,
		RoomID:  RoomID(doc.ID),
	})
}

func applyScoreEntry(match *models.Match, entry ScoreEntry) error {
	if entry.IsFinished {
		if entry.Winner != match.P1 && entry.Winner != match.P2 {
			return ErrWinnerRequired
		}
		winner := entry.Winner
		match.Winner = &winner
	} else {
		match.Winner = nil
	}
	match.Score = entry.Score
	match.IsWalkover = entry.IsWalkover
	match.IsFinished = entry.IsFinished
	if entry.SetScores != nil {
		match.SetScores = entry.SetScores
	} else {
		match.SetScores = []string{}
	}
	return nil
}

func findMatchByID(matches []models.Match, id string) *models.Match {
	for i := range matches {
		if matches[i].ID == id {
			return &matches[i]
		}
	}
	return nil
}
