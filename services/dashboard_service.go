package services

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/acemanager/ace-server/models"
	"github.com/acemanager/ace-server/repositories"
	"github.com/acemanager/ace-server/storage"
)

// maxConcurrentFetches ограничивает параллельную загрузку документов при
// построении списка турниров.
const maxConcurrentFetches = 8

// DashboardService строит сводные карточки турниров для хаба.
type DashboardService interface {
	ListTournaments(ctx context.Context) ([]models.TournamentSummary, error)
}

type dashboardService struct {
	repo     repositories.TournamentRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewDashboardService(repo repositories.TournamentRepository, uploader storage.FileUploader, logger *slog.Logger) DashboardService {
	return &dashboardService{repo: repo, uploader: uploader, logger: logger}
}

// ListTournaments загружает все документы параллельно и сводит их в карточки.
// Статус карточки выводится из состояния матчей документа.
func (s *dashboardService) ListTournaments(ctx context.Context) ([]models.TournamentSummary, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.TournamentSummary, len(ids))
	order := make(map[string]int, len(ids))
	for i, id := range ids {
		order[id] = i
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			doc, err := s.repo.GetByID(gCtx, id)
			if err != nil {
				// Турнир мог быть удалён между листингом и загрузкой.
				s.logger.Warn("failed to load tournament for dashboard",
					slog.String("tournament_id", id), slog.Any("error", err))
				return nil
			}
			if doc.LogoKey != nil && s.uploader != nil {
				if url := s.uploader.GetPublicURL(*doc.LogoKey); url != "" {
					doc.LogoURL = &url
				}
			}
			summaries[order[id]] = doc.Summarize()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Пропуски от исчезнувших турниров убираем, исходный порядок сохраняем.
	result := make([]models.TournamentSummary, 0, len(summaries))
	for _, summary := range summaries {
		if summary.ID != "" {
			result = append(result, summary)
		}
	}
	return result, nil
}
