package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/Tomlord1122/taskapi/internal/metrics"
	"github.com/Tomlord1122/taskapi/internal/service"
)

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := s.userService.Register(r.Context(), req)
	if err != nil {
		s.metrics.AuthEvent(metrics.EventRegister, metrics.OutcomeFailure)
		writeServiceError(w, err, "Failed to register user")
		return
	}
	s.metrics.AuthEvent(metrics.EventRegister, metrics.OutcomeSuccess)

	w.Header().Set("Location", fmt.Sprintf("/users/%d", user.ID))
	respondWithJSON(w, http.StatusCreated, user)
}

// loginHandler answers every credential failure with the same 401 body.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := s.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			s.metrics.AuthEvent(metrics.EventLogin, metrics.OutcomeFailure)
		}
		writeServiceError(w, err, "Failed to log in")
		return
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		log.Printf("Error issuing token for user %d: %v", user.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	s.metrics.AuthEvent(metrics.EventLogin, metrics.OutcomeSuccess)

	respondWithJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := s.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// A signed token for an account that no longer resolves.
			respondWithError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		writeServiceError(w, err, "Failed to retrieve user")
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}
