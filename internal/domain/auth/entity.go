package auth

import "time"

// User is an authenticated identity. The role label travels in the JWT; case
// access is governed entirely by per-case grants, not by the role.
type User struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	Username     string    `gorm:"column:username;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"column:password" json:"-"`
	Role         string    `gorm:"column:role" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }
