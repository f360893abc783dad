package handlers

import (
	"net/http"

	"github.com/acemanager/ace-server/models"
	"github.com/acemanager/ace-server/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	dashboardService  services.DashboardService
}

func NewTournamentHandler(tournamentService services.TournamentService, dashboardService services.DashboardService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		dashboardService:  dashboardService,
	}
}

func (h *TournamentHandler) ListTournamentsHandler(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.dashboardService.ListTournaments(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": summaries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) CreateTournamentHandler(w http.ResponseWriter, r *http.Request) {
	var settings models.TournamentSettings
	if err := readJSON(w, r, &settings); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	doc, err := h.tournamentService.CreateTournament(r.Context(), settings)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetTournamentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	doc, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) DeleteTournamentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeleteTournament(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var settings models.TournamentSettings
	if err := readJSON(w, r, &settings); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	doc, err := h.tournamentService.UpdateSettings(r.Context(), id, settings)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

func (h *TournamentHandler) AddGroupHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req createGroupRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	doc, err := h.tournamentService.AddGroup(r.Context(), id, req.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type createPlayerRequest struct {
	Name    string `json:"name"`
	GroupID string `json:"group_id"`
}

func (h *TournamentHandler) AddPlayerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req createPlayerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	doc, err := h.tournamentService.AddPlayer(r.Context(), id, req.Name, req.GroupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type renamePlayerRequest struct {
	Name string `json:"name"`
}

func (h *TournamentHandler) RenamePlayerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getStringParam(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req renamePlayerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	doc, err := h.tournamentService.RenamePlayer(r.Context(), id, playerID, req.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) DeletePlayerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getStringParam(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	doc, err := h.tournamentService.DeletePlayer(r.Context(), id, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GenerateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	doc, err := h.tournamentService.GenerateSchedule(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetStandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	groupID, err := getStringParam(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.tournamentService.GetGroupStandings(r.Context(), id, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetProgressHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	progress, err := h.tournamentService.GetProgress(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"progress": progress}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) BuildBracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	doc, err := h.tournamentService.BuildBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

const maxLogoSize = 5 * 1_048_576 // 5MB

func (h *TournamentHandler) UploadLogoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxLogoSize)

	doc, err := h.tournamentService.UploadLogo(r.Context(), id, contentType, r.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
