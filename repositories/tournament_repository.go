package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/acemanager/ace-server/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentConflict = errors.New("tournament id conflict")
	// ErrVersionConflict возвращается при сохранении устаревшего снимка:
	// версия в базе уже не совпадает с версией, с которой работал вызывающий.
	ErrVersionConflict = errors.New("tournament snapshot version conflict")
)

// documentPayload — JSONB-содержимое документа турнира. Хранилище документное:
// при каждом сохранении документ заменяется целиком, поле за полем ничего не
// обновляется.
type documentPayload struct {
	Settings        models.TournamentSettings `json:"settings"`
	Groups          []models.Group            `json:"groups"`
	Players         []models.Player           `json:"players"`
	Matches         []models.Match            `json:"matches"`
	KnockoutMatches []models.Match            `json:"knockout_matches"`
}

// TournamentRepository хранит снимки турниров.
//
// Схема:
//
//	CREATE TABLE tournaments (
//	    id         TEXT PRIMARY KEY,
//	    data       JSONB NOT NULL,
//	    logo_key   TEXT,
//	    version    BIGINT NOT NULL DEFAULT 1,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type TournamentRepository interface {
	Create(ctx context.Context, doc *models.TournamentDocument) error
	GetByID(ctx context.Context, id string) (*models.TournamentDocument, error)
	ListIDs(ctx context.Context) ([]string, error)
	// Save заменяет документ целиком. Версия снимка сверяется с базой;
	// при расхождении возвращается ErrVersionConflict и документ не меняется.
	Save(ctx context.Context, exec SQLExecutor, doc *models.TournamentDocument) error
	UpdateLogoKey(ctx context.Context, id string, logoKey *string) error
	Delete(ctx context.Context, id string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func marshalPayload(doc *models.TournamentDocument) ([]byte, error) {
	payload := documentPayload{
		Settings:        doc.Settings,
		Groups:          doc.Groups,
		Players:         doc.Players,
		Matches:         doc.Matches,
		KnockoutMatches: doc.KnockoutMatches,
	}
	// Коллекции сериализуются как [], а не null: документ на границе
	// хранилища должен оставаться примитивно-безопасным.
	if payload.Groups == nil {
		payload.Groups = []models.Group{}
	}
	if payload.Players == nil {
		payload.Players = []models.Player{}
	}
	if payload.Matches == nil {
		payload.Matches = []models.Match{}
	}
	if payload.KnockoutMatches == nil {
		payload.KnockoutMatches = []models.Match{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tournament document %s: %w", doc.ID, err)
	}
	return data, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, doc *models.TournamentDocument) error {
	executor := r.getExecutor(nil)
	data, err := marshalPayload(doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tournaments (id, data, logo_key)
		VALUES ($1, $2, $3)
		RETURNING version, created_at, updated_at`

	err = executor.QueryRowContext(ctx, query, doc.ID, data, doc.LogoKey).
		Scan(&doc.Version, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrTournamentConflict
		}
		return fmt.Errorf("failed to create tournament %s: %w", doc.ID, err)
	}
	return nil
}

func (r *postgresTournamentRepository) scanDocument(rowScanner interface{ Scan(...interface{}) error }) (*models.TournamentDocument, error) {
	var (
		doc  models.TournamentDocument
		data []byte
	)
	err := rowScanner.Scan(&doc.ID, &data, &doc.LogoKey, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	var payload documentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tournament document %s: %w", doc.ID, err)
	}
	doc.Settings = payload.Settings
	doc.Groups = payload.Groups
	doc.Players = payload.Players
	doc.Matches = payload.Matches
	doc.KnockoutMatches = payload.KnockoutMatches
	return &doc, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.TournamentDocument, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT id, data, logo_key, version, created_at, updated_at
		FROM tournaments
		WHERE id = $1`
	row := executor.QueryRowContext(ctx, query, id)
	return r.scanDocument(row)
}

func (r *postgresTournamentRepository) ListIDs(ctx context.Context) ([]string, error) {
	executor := r.getExecutor(nil)
	rows, err := executor.QueryContext(ctx, `SELECT id FROM tournaments ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresTournamentRepository) Save(ctx context.Context, exec SQLExecutor, doc *models.TournamentDocument) error {
	executor := r.getExecutor(exec)
	data, err := marshalPayload(doc)
	if err != nil {
		return err
	}

	query := `
		UPDATE tournaments
		SET data = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
		RETURNING version, updated_at`

	err = executor.QueryRowContext(ctx, query, data, doc.ID, doc.Version).
		Scan(&doc.Version, &doc.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to save tournament %s: %w", doc.ID, err)
	}

	// Ни одной строки: либо документа нет, либо снимок устарел.
	var exists bool
	checkErr := executor.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tournaments WHERE id = $1)`, doc.ID,
	).Scan(&exists)
	if checkErr != nil {
		return fmt.Errorf("failed to check tournament %s after stale save: %w", doc.ID, checkErr)
	}
	if exists {
		return ErrVersionConflict
	}
	return ErrTournamentNotFound
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	executor := r.getExecutor(nil)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournaments SET logo_key = $1, updated_at = NOW() WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update logo key for tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	executor := r.getExecutor(nil)
	result, err := executor.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
