package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Tomlord1122/taskapi/internal/domain"
	"github.com/Tomlord1122/taskapi/internal/repository"
)

// CreateTodoRequest is the body of POST /todos.
type CreateTodoRequest struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// UpdateTodoRequest is the body of PUT /todos/{id}. A blank Title keeps the
// current title; Done is always applied.
type UpdateTodoRequest struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// TodoResponse is the representation of a Todo returned to clients.
type TodoResponse struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// TodoService manages a single owner's todos. Every method takes the
// caller's user ID and never touches another user's rows.
type TodoService interface {
	// List returns open todos before completed ones, each by ascending ID.
	List(ctx context.Context, ownerID uint) ([]TodoResponse, error)
	Create(ctx context.Context, ownerID uint, req CreateTodoRequest) (*TodoResponse, error)
	Get(ctx context.Context, ownerID, id uint) (*TodoResponse, error)
	Update(ctx context.Context, ownerID, id uint, req UpdateTodoRequest) (*TodoResponse, error)
	Delete(ctx context.Context, ownerID, id uint) error
}

type todoService struct {
	repo repository.TodoRepository
}

func NewTodoService(repo repository.TodoRepository) TodoService {
	return &todoService{repo: repo}
}

func (s *todoService) List(ctx context.Context, ownerID uint) ([]TodoResponse, error) {
	todos, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		log.Printf("Error listing todos for user %d: %v", ownerID, err)
		return nil, errors.New("failed to retrieve todo items")
	}

	responses := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		responses = append(responses, *toTodoResponse(&todos[i]))
	}
	return responses, nil
}

func (s *todoService) Create(ctx context.Context, ownerID uint, req CreateTodoRequest) (*TodoResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}

	todo := &domain.Todo{
		Title:  title,
		Done:   req.Done,
		UserID: ownerID,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		log.Printf("Error creating todo in repository: %v", err)
		return nil, errors.New("failed to create todo item")
	}
	return toTodoResponse(todo), nil
}

func (s *todoService) Get(ctx context.Context, ownerID, id uint) (*TodoResponse, error) {
	todo, err := s.ownedTodo(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return toTodoResponse(todo), nil
}

func (s *todoService) Update(ctx context.Context, ownerID, id uint, req UpdateTodoRequest) (*TodoResponse, error) {
	todo, err := s.ownedTodo(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		todo.Title = title
	}
	todo.Done = req.Done

	if err := s.repo.Update(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted between lookup and write.
			return nil, todoNotFound(id)
		}
		log.Printf("Error updating todo %d in repository: %v", id, err)
		return nil, errors.New("failed to update todo item")
	}
	return toTodoResponse(todo), nil
}

func (s *todoService) Delete(ctx context.Context, ownerID, id uint) error {
	if _, err := s.ownedTodo(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteOwned(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return todoNotFound(id)
		}
		log.Printf("Error deleting todo %d from repository: %v", id, err)
		return errors.New("failed to delete todo item")
	}
	return nil
}

// ownedTodo is the single ownership check behind Get, Update and Delete. A
// todo owned by someone else is indistinguishable from a missing one.
func (s *todoService) ownedTodo(ctx context.Context, ownerID, id uint) (*domain.Todo, error) {
	todo, err := s.repo.FindOwned(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, todoNotFound(id)
		}
		log.Printf("Error fetching todo %d for user %d: %v", id, ownerID, err)
		return nil, errors.New("failed to retrieve todo item")
	}
	return todo, nil
}

func todoNotFound(id uint) error {
	return fmt.Errorf("%w: todo with ID %d", ErrNotFound, id)
}

func toTodoResponse(t *domain.Todo) *TodoResponse {
	return &TodoResponse{ID: t.ID, Title: t.Title, Done: t.Done}
}
