package main

import (
	"net/http"

	"github.com/matchday/matchday-api/internal/api"
	"github.com/matchday/matchday-api/internal/fixture"
)

type fixtureDataResponse struct {
	Status     string           `json:"status"`
	Data       *fixture.Fixture `json:"data"`
	StatusCode int              `json:"statusCode"`
}

type fixtureListResponse struct {
	Status        string            `json:"status"`
	CurrentPage   int               `json:"currentPage"`
	TotalPages    int               `json:"totalPages"`
	TotalFixtures int64             `json:"totalFixtures"`
	PaginateData  []fixture.Fixture `json:"paginateData"`
	StatusCode    int               `json:"statusCode"`
}

type fixtureViewResponse struct {
	Status     string            `json:"status"`
	Data       []fixture.Fixture `json:"data"`
	Message    string            `json:"message"`
	StatusCode int               `json:"statusCode"`
}

func handleCreateFixture(svc *fixture.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req fixture.CreateRequest
		if err := decodeJSON(r, &req); err != nil {
			api.WriteError(w, err)
			return
		}

		created, err := svc.Create(r.Context(), req)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusCreated, fixtureDataResponse{
			Status:     "success",
			Data:       created,
			StatusCode: http.StatusCreated,
		})
	})
}

func handleListFixtures(svc *fixture.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		page := parsePositiveInt(r.URL.Query().Get("page"), 1)
		limit := parsePositiveInt(r.URL.Query().Get("limit"), 10)

		result, err := svc.ViewAll(r.Context(), page, limit)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, fixtureListResponse{
			Status:        "success",
			CurrentPage:   result.CurrentPage,
			TotalPages:    result.TotalPages,
			TotalFixtures: result.Total,
			PaginateData:  result.Fixtures,
			StatusCode:    http.StatusOK,
		})
	})
}

func handleViewFixtures(svc *fixture.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		status := fixture.Status(r.URL.Query().Get("status"))

		fixtures, fromCache, err := svc.ViewByStatus(r.Context(), status)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, fixtureViewResponse{
			Status:     "success",
			Data:       fixtures,
			Message:    retrievedMessage("Fixtures", fromCache),
			StatusCode: http.StatusOK,
		})
	})
}

func handleSearchFixtures(svc *fixture.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		query := r.URL.Query().Get("query")
		if query == "" {
			api.WriteError(w, api.BadRequest("Query parameter is required"))
			return
		}

		fixtures, fromCache, err := svc.Search(r.Context(), query)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, fixtureViewResponse{
			Status:     "success",
			Data:       fixtures,
			Message:    retrievedMessage("Fixtures", fromCache),
			StatusCode: http.StatusOK,
		})
	})
}

func handleUpdateFixture(svc *fixture.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req fixture.UpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			api.WriteError(w, err)
			return
		}

		updated, err := svc.Update(r.Context(), r.PathValue("id"), req)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, fixtureDataResponse{
			Status:     "success",
			Data:       updated,
			StatusCode: http.StatusOK,
		})
	})
}

func handleDeleteFixture(svc *fixture.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		deleted, err := svc.Delete(r.Context(), r.PathValue("id"))
		if err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, fixtureDataResponse{
			Status:     "success",
			Data:       deleted,
			StatusCode: http.StatusOK,
		})
	})
}

func retrievedMessage(noun string, fromCache bool) string {
	message := noun + " retrieved successfully"
	if fromCache {
		message += " (from cache)"
	}
	return message
}
