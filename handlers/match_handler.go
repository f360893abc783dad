package handlers

import (
	"net/http"

	"github.com/acemanager/ace-server/services"
)

type MatchHandler struct {
	tournamentService services.TournamentService
}

func NewMatchHandler(tournamentService services.TournamentService) *MatchHandler {
	return &MatchHandler{tournamentService: tournamentService}
}

// UpdateMatchScoreHandler записывает результат матча кругового этапа.
func (h *MatchHandler) UpdateMatchScoreHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getStringParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var entry services.ScoreEntry
	if err := readJSON(w, r, &entry); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	doc, err := h.tournamentService.UpdateMatchScore(r.Context(), tournamentID, matchID, entry)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateKnockoutMatchScoreHandler записывает результат матча плей-офф.
// Победитель продвигается в следующий раунд в той же операции.
func (h *MatchHandler) UpdateKnockoutMatchScoreHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getStringParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var entry services.ScoreEntry
	if err := readJSON(w, r, &entry); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	doc, err := h.tournamentService.UpdateKnockoutMatchScore(r.Context(), tournamentID, matchID, entry)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
