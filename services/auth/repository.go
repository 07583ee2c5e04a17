package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateRoles(ctx context.Context, userID string, roles []string) error
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, user *User) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailAlreadyUsed
	}
	return err
}

func (r *gormRepository) GetByID(ctx context.Context, userID string) (*User, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *gormRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *gormRepository) first(ctx context.Context, query string, arg any) (*User, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var user User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) UpdateRoles(ctx context.Context, userID string, roles []string) error {
	return r.update(ctx, userID, "roles", datatypes.JSONSlice[string](roles))
}

func (r *gormRepository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.update(ctx, userID, "last_login_at", at)
}

func (r *gormRepository) update(ctx context.Context, userID, column string, value any) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	res := r.db.WithContext(ctx).Model(&User{}).Where("user_id = ?", userID).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
