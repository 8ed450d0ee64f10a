package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/taskapi/internal/service"
)

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	todos, err := s.todoService.List(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve todos")
		return
	}

	respondWithJSON(w, http.StatusOK, todos)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req service.CreateTodoRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	todo, err := s.todoService.Create(r.Context(), ownerID, req)
	if err != nil {
		writeServiceError(w, err, "Failed to create todo")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/todos/%d", todo.ID))
	respondWithJSON(w, http.StatusCreated, todo)
}

func (s *Server) getTodoHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	todo, err := s.todoService.Get(r.Context(), ownerID, id)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve todo")
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	var req service.UpdateTodoRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if _, err := s.todoService.Update(r.Context(), ownerID, id, req); err != nil {
		writeServiceError(w, err, "Failed to update todo")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	if err := s.todoService.Delete(r.Context(), ownerID, id); err != nil {
		writeServiceError(w, err, "Failed to delete todo")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func todoIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID provided")
		return 0, false
	}
	return uint(id), true
}
