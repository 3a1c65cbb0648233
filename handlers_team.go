package main

import (
	"net/http"

	"github.com/matchday/matchday-api/internal/api"
	"github.com/matchday/matchday-api/internal/team"
)

type teamDataResponse struct {
	Status     string     `json:"status"`
	Data       *team.Team `json:"data"`
	StatusCode int        `json:"statusCode"`
}

type teamListResponse struct {
	Status       string      `json:"status"`
	CurrentPage  int         `json:"currentPage"`
	TotalPages   int         `json:"totalPages"`
	TotalTeams   int64       `json:"totalTeams"`
	PaginateData []team.Team `json:"paginateData"`
	StatusCode   int         `json:"statusCode"`
}

type teamViewResponse struct {
	Status     string      `json:"status"`
	Data       []team.Team `json:"data"`
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
}

func handleCreateTeam(svc *team.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req team.CreateRequest
		if err := decodeJSON(r, &req); err != nil {
			api.WriteError(w, err)
			return
		}

		created, err := svc.Create(r.Context(), req)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusCreated, teamDataResponse{
			Status:     "success",
			Data:       created,
			StatusCode: http.StatusCreated,
		})
	})
}

func handleViewTeams(svc *team.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		page := parsePositiveInt(r.URL.Query().Get("page"), 1)
		limit := parsePositiveInt(r.URL.Query().Get("limit"), 10)

		result, err := svc.ViewAll(r.Context(), page, limit)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, teamListResponse{
			Status:       "success",
			CurrentPage:  result.CurrentPage,
			TotalPages:   result.TotalPages,
			TotalTeams:   result.Total,
			PaginateData: result.Teams,
			StatusCode:   http.StatusOK,
		})
	})
}

func handleSearchTeams(svc *team.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		query := r.URL.Query().Get("query")
		if query == "" {
			api.WriteError(w, api.BadRequest("Query parameter is required"))
			return
		}

		teams, fromCache, err := svc.Search(r.Context(), query)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, teamViewResponse{
			Status:     "success",
			Data:       teams,
			Message:    retrievedMessage("Teams", fromCache),
			StatusCode: http.StatusOK,
		})
	})
}

func handleUpdateTeam(svc *team.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req team.UpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			api.WriteError(w, err)
			return
		}

		updated, err := svc.Update(r.Context(), r.PathValue("id"), req)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, teamDataResponse{
			Status:     "success",
			Data:       updated,
			StatusCode: http.StatusOK,
		})
	})
}

func handleDeleteTeam(svc *team.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		deleted, err := svc.Delete(r.Context(), r.PathValue("id"))
		if err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, teamDataResponse{
			Status:     "success",
			Data:       deleted,
			StatusCode: http.StatusOK,
		})
	})
}
