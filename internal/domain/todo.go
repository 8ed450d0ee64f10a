package domain

import "time"

// Todo is a single item on a user's list. UserID is set once at creation and
// never changes.
type Todo struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"not null"`
	Done      bool   `gorm:"not null;default:false;index:idx_todos_owner_order,priority:2"`
	UserID    uint   `gorm:"not null;index:idx_todos_owner_order,priority:1"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Belongs-to so AutoMigrate emits the todos.user_id foreign key. Never loaded.
	User *User `gorm:"constraint:OnDelete:CASCADE"`
}
