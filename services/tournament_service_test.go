package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acemanager/ace-server/models"
	"github.com/acemanager/ace-server/realtime"
	"github.com/acemanager/ace-server/repositories"
)

// fakeTournamentRepo — репозиторий в памяти с той же семантикой версий,
// что и постгрес-реализация.
type fakeTournamentRepo struct {
	docs      map[string]*models.TournamentDocument
	saveCalls int
	saveErr   error
}

func newFakeRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{docs: make(map[string]*models.TournamentDocument)}
}

func cloneDoc(doc *models.TournamentDocument) *models.TournamentDocument {
	out := *doc
	out.Groups = append([]models.Group(nil), doc.Groups...)
	out.Players = append([]models.Player(nil), doc.Players...)
	out.Matches = cloneMatches(doc.Matches)
	out.KnockoutMatches = cloneMatches(doc.KnockoutMatches)
	return &out
}

func cloneMatches(matches []models.Match) []models.Match {
	out := make([]models.Match, len(matches))
	for i, m := range matches {
		out[i] = m
		if m.Winner != nil {
			winner := *m.Winner
			out[i].Winner = &winner
		}
		out[i].SetScores = append([]string(nil), m.SetScores...)
	}
	return out
}

func (r *fakeTournamentRepo) Create(_ context.Context, doc *models.TournamentDocument) error {
	if _, ok := r.docs[doc.ID]; ok {
		return repositories.ErrTournamentConflict
	}
	doc.Version = 1
	r.docs[doc.ID] = cloneDoc(doc)
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id string) (*models.TournamentDocument, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return cloneDoc(doc), nil
}

func (r *fakeTournamentRepo) ListIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeTournamentRepo) Save(_ context.Context, _ repositories.SQLExecutor, doc *models.TournamentDocument) error {
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.docs[doc.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if stored.Version != doc.Version {
		return repositories.ErrVersionConflict
	}
	doc.Version++
	r.docs[doc.ID] = cloneDoc(doc)
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(_ context.Context, id string, logoKey *string) error {
	doc, ok := r.docs[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	doc.LogoKey = logoKey
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.docs, id)
	return nil
}

type fakeBroadcaster struct {
	messages []realtime.Message
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message realtime.Message) {
	message.RoomID = roomID
	b.messages = append(b.messages, message)
}

func newTestService(t *testing.T) (TournamentService, *fakeTournamentRepo, *fakeBroadcaster) {
	t.Helper()
	repo := newFakeRepo()
	hub := &fakeBroadcaster{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewTournamentService(repo, hub, nil, nil, logger)
	return svc, repo, hub
}

func createTestTournament(t *testing.T, svc TournamentService) *models.TournamentDocument {
	t.Helper()
	doc, err := svc.CreateTournament(context.Background(), models.TournamentSettings{
		Name:          "Club Open",
		Format:        models.FormatSingles,
		SetCount:      3,
		Mode:          models.ModeRoundRobinKnockout,
		KnockoutStart: models.StartRoundOf8,
	})
	require.NoError(t, err)
	return doc
}

func TestCreateTournament_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTournament(ctx, models.TournamentSettings{Name: "   "})
	assert.ErrorIs(t, err, ErrTournamentNameRequired)

	_, err = svc.CreateTournament(ctx, models.TournamentSettings{Name: "Open", SetCount: 4})
	assert.ErrorIs(t, err, ErrInvalidSetCount)

	doc, err := svc.CreateTournament(ctx, models.TournamentSettings{Name: "Open"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings().SetCount, doc.Settings.SetCount)
	assert.NotEmpty(t, doc.ID)
	assert.NotNil(t, doc.Groups)
	assert.NotNil(t, doc.Matches)
}

func TestAddPlayer_NameConflictIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	doc := createTestTournament(t, svc)

	doc, err := svc.AddGroup(ctx, doc.ID, "Group A")
	require.NoError(t, err)
	groupID := doc.Groups[0].ID

	_, err = svc.AddPlayer(ctx, doc.ID, "Ann", groupID)
	require.NoError(t, err)

	_, err = svc.AddPlayer(ctx, doc.ID, "ann", groupID)
	assert.ErrorIs(t, err, ErrPlayerNameConflict)
}

func TestAddPlayer_RequiresExistingGroup(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	doc := createTestTournament(t, svc)

	_, err := svc.AddPlayer(ctx, doc.ID, "Ann", "missing-group")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestAddPlayer_KnockoutOnlySkipsGroupCheck(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	doc, err := svc.CreateTournament(ctx, models.TournamentSettings{
		Name:          "Cup",
		SetCount:      3,
		Mode:          models.ModeKnockoutOnly,
		KnockoutStart: models.StartSemifinal,
	})
	require.NoError(t, err)

	updated, err := svc.AddPlayer(ctx, doc.ID, "Ann", "")
	require.NoError(t, err)
	assert.Len(t, updated.Players, 1)
}

func TestRenamePlayer_CascadesIntoMatches(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	doc := createTestTournament(t, svc)

	doc, err := svc.AddGroup(ctx, doc.ID, "Group A")
	require.NoError(t, err)
	groupID := doc.Groups[0].ID

	doc, err = svc.AddPlayer(ctx, doc.ID, "Ann", groupID)
	require.NoError(t, err)
	doc, err = svc.AddPlayer(ctx, doc.ID, "Bob", groupID)
	require.NoError(t, err)
	annID := doc.Players[0].ID

	doc, err = svc.GenerateSchedule(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, doc.Matches, 1)

	// Сыгранный матч с победителем и отдельный матч плей-офф с тем же именем.
	winner := "Ann"
	stored := repo.docs[doc.ID]
	stored.Matches[0].IsFinished = true
	stored.Matches[0].Winner = &winner
	stored.KnockoutMatches = []models.Match{{
		ID: "ko-1", GroupID: models.GroupKnockout,
		P1: "Ann", P2: models.PlayerTBD,
		Round: models.RoundFinal, SetScores: []string{},
	}}

	renamed, err := svc.RenamePlayer(ctx, doc.ID, annID, "Anna")
	require.NoError(t, err)

	assert.Equal(t, "Anna", renamed.Players[0].Name)
	assert.Equal(t, "Anna", renamed.Matches[0].P1)
	require.NotNil(t, renamed.Matches[0].Winner)
	assert.Equal(t, "Anna", *renamed.Matches[0].Winner)
	assert.Equal(t, "Anna", renamed.KnockoutMatches[0].P1)
	assert.Equal(t, models.PlayerTBD, renamed.KnockoutMatches[0].P2)
}

func TestRenamePlayer_RejectsTakenName(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	doc := createTestTournament(t, svc)

	doc, err := svc.AddGroup(ctx, doc.ID, "Group A")
	require.NoError(t, err)
	groupID := doc.Groups[0].ID

	doc, err = svc.AddPlayer(ctx, doc.ID, "Ann", groupID)
	require.NoError(t, err)
	doc, err = svc.AddPlayer(ctx, doc.ID, "Bob", groupID)
	require.NoError(t, err)

	_, err = svc.RenamePlayer(ctx, doc.ID, doc.Players[1].ID, "ANN")
	assert.ErrorIs(t, err, ErrPlayerNameConflict)
}

func TestDeletePlayer_RemovesRoundRobinMatchesOnly(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	doc := createTestTournament(t, svc)

	doc, err := svc.AddGroup(ctx, doc.ID, "Group A")
	require.NoError(t, err)
	groupID := doc.Groups[0].ID

	for _, name := range []string{"Ann", "Bob", "Cid"} {
		doc, err = svc.AddPlayer(ctx, doc.ID, name, groupID)
		require.NoError(t, err)
	}
	annID := doc.Players[0].ID

	doc, err = svc.GenerateSchedule(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, doc.Matches, 3)

	repo.docs[doc.ID].KnockoutMatches = []models.Match{{
		ID: "ko-1", GroupID: models.GroupKnockout,
		P1: "Ann", P2: "Bob",
		Round: models.RoundFinal, SetScores: []string{},
	}}

	updated, err := svc.DeletePlayer(ctx, doc.ID, annID)
	require.NoError(t, err)

	assert.Len(t, updated.Players, 2)
	require.Len(t, updated.Matches, 1)
	assert.Equal(t, "Bob", updated.Matches[0].P1)
	assert.Equal(t, "Cid", updated.Matches[0].P2)
	// Сетка плей-офф остаётся историей.
	assert.Len(t, updated.KnockoutMatches, 1)
	assert.Equal(t, "Ann", updated.KnockoutMatches[0].P1)
}

func TestGenerateSchedule_RequiresGroup(t *testing.T) {
	svc, _, _ := newTestService(t)
	doc := createTestTournament(t, svc)

	_, err := svc.GenerateSchedule(context.Background(), doc.ID)
	assert.ErrorIs(t, err, ErrGroupRequired)
}

// semifinalBracket — сетка из трёх матчей: два полуфинала и финал.
func semifinalBracket() []models.Match {
	return []models.Match{
		{ID: "f", GroupID: models.GroupKnockout, P1: models.PlayerTBD, P2: models.PlayerTBD,
			Round: models.RoundFinal, SetScores: []string{}},
		{ID: "sf1", GroupID: models.GroupKnockout, P1: "Ann", P2: "Bob",
			Round: models.RoundSemi, NextMatchID: "f", BracketPos: models.BracketPosTop, SetScores: []string{}},
		{ID: "sf2", GroupID: models.GroupKnockout, P1: "Cid", P2: "Dan",
			Round: models.RoundSemi, NextMatchID: "f", BracketPos: models.BracketPosBottom, SetScores: []string{}},
	}
}

func TestUpdateKnockoutMatchScore_AdvancesWinnerInSameSave(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	doc := createTestTournament(t, svc)
	repo.docs[doc.ID].KnockoutMatches = semifinalBracket()

	savesBefore := repo.saveCalls
	updated, err := svc.UpdateKnockoutMatchScore(ctx, doc.ID, "sf1", ScoreEntry{
		Score:      "6-4 6-3",
		SetScores:  []string{"6-4", "6-3"},
		Winner:     "Ann",
		IsFinished: true,
	})
	require.NoError(t, err)
	// Счёт и продвижение победителя сохраняются одной записью.
	assert.Equal(t, savesBefore+1, repo.saveCalls)

	var final, sf1 *models.Match
	for i := range updated.KnockoutMatches {
		switch updated.KnockoutMatches[i].ID {
		case "f":
			final = &updated.KnockoutMatches[i]
		case "sf1":
			sf1 = &updated.KnockoutMatches[i]
		}
	}
	require.NotNil(t, final)
	require.NotNil(t, sf1)
	assert.True(t, sf1.IsFinished)
	assert.Equal(t, "Ann", final.P1)
	assert.Equal(t, models.PlayerTBD, final.P2)
}

func TestUpdateKnockoutMatchScore_PendingSlotRejected(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	doc := createTestTournament(t, svc)
	repo.docs[doc.ID].KnockoutMatches = semifinalBracket()

	_, err := svc.UpdateKnockoutMatchScore(ctx, doc.ID, "f", ScoreEntry{
		Winner:     "Ann",
		IsFinished: true,
	})
	assert.ErrorIs(t, err, ErrMatchSlotPending)
}

func TestUpdateMatchScore_WinnerMustBeParticipant(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	doc := createTestTournament(t, svc)
	repo.docs[doc.ID].Matches = []models.Match{{
		ID: "m1", GroupID: "g1", P1: "Ann", P2: "Bob", SetScores: []string{},
	}}

	_, err := svc.UpdateMatchScore(ctx, doc.ID, "m1", ScoreEntry{
		Winner:     "Cid",
		IsFinished: true,
	})
	assert.ErrorIs(t, err, ErrWinnerRequired)
}

func TestMutate_MapsVersionConflict(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	doc := createTestTournament(t, svc)

	repo.saveErr = repositories.ErrVersionConflict
	_, err := svc.AddGroup(ctx, doc.ID, "Group A")
	assert.ErrorIs(t, err, ErrSnapshotConflict)
}

func TestMutate_BroadcastsSnapshotToTournamentRoom(t *testing.T) {
	svc, _, hub := newTestService(t)
	ctx := context.Background()
	doc := createTestTournament(t, svc)

	_, err := svc.AddGroup(ctx, doc.ID, "Group A")
	require.NoError(t, err)

	require.NotEmpty(t, hub.messages)
	last := hub.messages[len(hub.messages)-1]
	assert.Equal(t, realtime.MessageSnapshot, last.Type)
	assert.Equal(t, RoomID(doc.ID), last.RoomID)
}

func TestDeleteTournament_BroadcastsDeletion(t *testing.T) {
	svc, repo, hub := newTestService(t)
	ctx := context.Background()
	doc := createTestTournament(t, svc)

	require.NoError(t, svc.DeleteTournament(ctx, doc.ID))
	assert.NotContains(t, repo.docs, doc.ID)

	last := hub.messages[len(hub.messages)-1]
	assert.Equal(t, realtime.MessageTournamentDeleted, last.Type)

	err := svc.DeleteTournament(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestUploadLogo_DisabledWithoutStorage(t *testing.T) {
	svc, _, _ := newTestService(t)
	doc := createTestTournament(t, svc)

	_, err := svc.UploadLogo(context.Background(), doc.ID, "image/png", nil)
	assert.ErrorIs(t, err, ErrLogoStorageDisabled)
}

func TestGetProgress_CountsGroupAndKnockoutMatches(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	doc := createTestTournament(t, svc)

	doc, err := svc.AddGroup(ctx, doc.ID, "Group A")
	require.NoError(t, err)
	groupID := doc.Groups[0].ID

	stored := repo.docs[doc.ID]
	stored.Matches = []models.Match{
		{ID: "m1", GroupID: groupID, P1: "Ann", P2: "Bob", IsFinished: true, SetScores: []string{}},
		{ID: "m2", GroupID: groupID, P1: "Ann", P2: "Cid", SetScores: []string{}},
	}
	stored.KnockoutMatches = []models.Match{
		{ID: "ko-1", GroupID: models.GroupKnockout, P1: "Ann", P2: "Bob",
			Round: models.RoundFinal, SetScores: []string{}},
	}

	progress, err := svc.GetProgress(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.Total)
	assert.Equal(t, 1, progress.Completed)
	require.Len(t, progress.Groups, 1)
	assert.Equal(t, 2, progress.Groups[0].Total)
	assert.Equal(t, 1, progress.Groups[0].Completed)
}
