package main

import (
	"net/http"

	"github.com/matchday/matchday-api/internal/api"
	"github.com/matchday/matchday-api/internal/auth"
)

type signUpResponse struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

type loginResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

func handleSignUp(svc *auth.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req auth.SignUpRequest
		if err := decodeJSON(r, &req); err != nil {
			api.WriteError(w, err)
			return
		}

		if err := svc.SignUp(r.Context(), req); err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusCreated, signUpResponse{
			Status:     "success",
			StatusCode: http.StatusCreated,
			Message:    "User registered successfully",
		})
	})
}

func handleLogin(svc *auth.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			api.WriteError(w, err)
			return
		}

		token, err := svc.Login(r.Context(), req)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, loginResponse{
			Status: "success",
			Token:  token,
		})
	})
}
