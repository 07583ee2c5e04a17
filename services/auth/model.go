package auth

import (
	"errors"
	"time"

	"eventreward/pkg/api/authv1"

	"gorm.io/datatypes"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrSessionNotFound  = errors.New("refresh session not found")
	ErrEmailAlreadyUsed = errors.New("email already registered")
)

// bcryptCost matches the hashing cost of existing accounts.
const bcryptCost = 10

type User struct {
	UserID      string                      `gorm:"column:user_id;primaryKey"`
	Name        string                      `gorm:"column:name;not null"`
	Email       string                      `gorm:"column:email;not null;uniqueIndex:unique_user_email"`
	Password    string                      `gorm:"column:password;not null"`
	Roles       datatypes.JSONSlice[string] `gorm:"column:roles;not null"`
	LastLoginAt *time.Time                  `gorm:"column:last_login_at"`
	CreatedAt   time.Time                   `gorm:"column:created_at"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at"`
}

func (User) TableName() string { return "users" }

func validRole(role string) bool {
	switch role {
	case authv1.RoleUser, authv1.RoleOperator, authv1.RoleAuditor, authv1.RoleAdmin:
		return true
	}
	return false
}
