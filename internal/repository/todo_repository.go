package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Tomlord1122/taskapi/internal/domain"
)

// TodoRepository defines the data operations on todos. Every read or write of
// an existing todo is keyed by both its ID and its owner.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	ListByOwner(ctx context.Context, ownerID uint) ([]domain.Todo, error)
	FindOwned(ctx context.Context, ownerID, id uint) (*domain.Todo, error)
	Update(ctx context.Context, todo *domain.Todo) error
	DeleteOwned(ctx context.Context, ownerID, id uint) error
}

type gormTodoRepository struct {
	db *gorm.DB
}

func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	return translate(r.db.WithContext(ctx).Create(todo).Error)
}

// ListByOwner returns the owner's open todos first, then completed ones, each
// group in ascending ID order.
func (r *gormTodoRepository) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Todo, error) {
	todos := make([]domain.Todo, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("done ASC").
		Order("id ASC").
		Find(&todos).Error
	if err != nil {
		return nil, translate(err)
	}
	return todos, nil
}

// FindOwned looks the todo up by ID and owner in one query. A todo that
// belongs to someone else is reported as ErrNotFound.
func (r *gormTodoRepository) FindOwned(ctx context.Context, ownerID, id uint) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&todo).Error
	if err != nil {
		return nil, translate(err)
	}
	return &todo, nil
}

// Update writes title and done back, still scoped to the owner so a stale or
// forged UserID cannot redirect the write.
func (r *gormTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Todo{}).
		Where("id = ? AND user_id = ?", todo.ID, todo.UserID).
		Updates(map[string]interface{}{
			"title": todo.Title,
			"done":  todo.Done,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOwned permanently removes the todo.
func (r *gormTodoRepository) DeleteOwned(ctx context.Context, ownerID, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&domain.Todo{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
