package reward

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository describes database operations available for rewards.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reward *Reward) error
	GetByID(ctx context.Context, rewardID string) (*Reward, error)
	ListByEvent(ctx context.Context, eventID string) ([]Reward, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{db: tx}
}

func (r *gormRepository) Create(ctx context.Context, reward *Reward) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(reward).Error
}

func (r *gormRepository) GetByID(ctx context.Context, rewardID string) (*Reward, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var reward Reward
	err := r.db.WithContext(ctx).
		Where("reward_id = ?", rewardID).
		First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRewardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

// ListByEvent returns the rewards of an event in registration order.
func (r *gormRepository) ListByEvent(ctx context.Context, eventID string) ([]Reward, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var rewards []Reward
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").Order("reward_id ASC").
		Find(&rewards).Error
	if err != nil {
		return nil, err
	}
	return rewards, nil
}
