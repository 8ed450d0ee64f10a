package service

import (
	"context"
	"sort"
	"sync"

	"github.com/Tomlord1122/taskapi/internal/auth"
	"github.com/Tomlord1122/taskapi/internal/domain"
	"github.com/Tomlord1122/taskapi/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[uint]*domain.User
	nextID  uint
	findErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

// fakeTodoRepo is an in-memory TodoRepository.
type fakeTodoRepo struct {
	mu        sync.Mutex
	todos     map[uint]*domain.Todo
	nextID    uint
	createErr error
	listErr   error
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: map[uint]*domain.Todo{}}
}

func (r *fakeTodoRepo) Create(ctx context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	todo.ID = r.nextID
	cp := *todo
	r.todos[todo.ID] = &cp
	return nil
}

func (r *fakeTodoRepo) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []domain.Todo{}
	for _, t := range r.todos {
		if t.UserID == ownerID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Done != out[j].Done {
			return !out[i].Done
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeTodoRepo) FindOwned(ctx context.Context, ownerID, id uint) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok || t.UserID != ownerID {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTodoRepo) Update(ctx context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[todo.ID]
	if !ok || t.UserID != todo.UserID {
		return repository.ErrNotFound
	}
	t.Title = todo.Title
	t.Done = todo.Done
	return nil
}

func (r *fakeTodoRepo) DeleteOwned(ctx context.Context, ownerID, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok || t.UserID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

// countingHasher wraps the real hasher and records Verify calls.
type countingHasher struct {
	*auth.PasswordHasher
	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Verify(plaintext, digest string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.PasswordHasher.Verify(plaintext, digest)
}
