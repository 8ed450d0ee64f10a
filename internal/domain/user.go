package domain

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

// Models lists every table AutoMigrate should manage, in dependency order.
func Models() []interface{} {
	return []interface{}{&User{}, &Todo{}}
}
