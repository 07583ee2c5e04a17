package rewardrequest

import (
	"context"
	"strings"

	"eventreward/pkg/db/pagination"

	"gorm.io/gorm"
)

// Repository describes database operations available for reward requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, requests []RewardRequest) error
	HasInFlight(ctx context.Context, userID, eventID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]RewardRequest, error)
	List(ctx context.Context, f Filter, after *pagination.Cursor, limit int) ([]RewardRequest, error)
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

func (r *gormRepository) CreateBatch(ctx context.Context, requests []RewardRequest) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	if len(requests) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&requests).Error
}

// HasInFlight reports whether the user already holds a pending or settled request for the event.
func (r *gormRepository) HasInFlight(ctx context.Context, userID, eventID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, gorm.ErrInvalidDB
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&RewardRequest{}).
		Where("user_id = ? AND event_id = ? AND status IN ?", userID, eventID, inFlight).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) ListByUser(ctx context.Context, userID string) ([]RewardRequest, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var requests []RewardRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("request_id DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// List applies the filter and returns at most limit rows after the cursor.
func (r *gormRepository) List(ctx context.Context, f Filter, after *pagination.Cursor, limit int) ([]RewardRequest, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	q := r.db.WithContext(ctx).Model(&RewardRequest{}).Scopes(
		equals("user_id", f.UserID),
		equals("event_id", f.EventID),
		equals("reward_id", f.RewardID),
		equals("status", string(f.Status)),
		between("requested_at", f.RequestedAt),
		between("processed_at", f.ProcessedAt),
		between("claimed_at", f.ClaimedAt),
		notesContain(f.Notes),
	)
	if after != nil {
		q = q.Where("(created_at < ? OR (created_at = ? AND request_id < ?))",
			after.CreatedAt, after.CreatedAt, after.ID)
	}

	var requests []RewardRequest
	err := q.Order("created_at DESC").Order("request_id DESC").
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func equals(column, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}

func between(column string, r TimeRange) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.From != nil {
			db = db.Where(column+" >= ?", r.From.UTC())
		}
		if r.To != nil {
			db = db.Where(column+" <= ?", r.To.UTC())
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// notesContain is a case-insensitive substring match. '!' is the LIKE escape
// character because it needs no quoting on any supported dialect.
func notesContain(substr string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if substr == "" {
			return db
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(substr)) + "%"
		return db.Where("LOWER(notes) LIKE ? ESCAPE '!'", pattern)
	}
}
