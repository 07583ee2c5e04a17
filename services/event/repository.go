package event

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository describes database operations available for events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, eventID string) (*Event, error)
	GetForUpdate(ctx context.Context, eventID string) (*Event, error)
	Exists(ctx context.Context, eventID string) (bool, error)
	List(ctx context.Context) ([]Event, error)
	EndExpired(ctx context.Context, now time.Time) (int64, error)
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

func (r *gormRepository) Create(ctx context.Context, event *Event) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *gormRepository) GetByID(ctx context.Context, eventID string) (*Event, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return r.first(r.db.WithContext(ctx), eventID)
}

// GetForUpdate row-locks the event for the rest of the transaction.
// Dialects without row locks (sqlite) ignore the clause.
func (r *gormRepository) GetForUpdate(ctx context.Context, eventID string) (*Event, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), eventID)
}

func (r *gormRepository) first(q *gorm.DB, eventID string) (*Event, error) {
	var event Event
	err := q.Where("event_id = ?", eventID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, gorm.ErrInvalidDB
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&Event{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) List(ctx context.Context) ([]Event, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var events []Event
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("event_id DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// EndExpired moves ACTIVE events past their end date to ENDED and frees their condition slot.
func (r *gormRepository) EndExpired(ctx context.Context, now time.Time) (int64, error) {
	if r == nil || r.db == nil {
		return 0, gorm.ErrInvalidDB
	}

	res := r.db.WithContext(ctx).Model(&Event{}).
		Where("status = ? AND end_date < ?", StatusActive, now).
		UpdateColumns(map[string]any{
			"status":                StatusEnded,
			"active_condition_type": nil,
			"updated_at":            now,
		})
	return res.RowsAffected, res.Error
}
