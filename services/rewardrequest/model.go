package rewardrequest

import (
	"errors"
	"time"
)

var ErrConditionNotMet = errors.New("event condition not met")

type Status string

const (
	StatusPending                 Status = "PENDING"
	StatusApproved                Status = "APPROVED"
	StatusRejected                Status = "REJECTED"
	StatusClaimed                 Status = "CLAIMED"
	StatusFailedConditionNotMet   Status = "FAILED_CONDITION_NOT_MET"
	StatusFailedNoRemainingReward Status = "FAILED_NO_REMAINING_REWARD"
	StatusFailedAlreadyClaimed    Status = "FAILED_ALREADY_CLAIMED"
)

// inFlight statuses block another submission for the same user and event.
var inFlight = []Status{StatusPending, StatusApproved, StatusClaimed}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusClaimed,
		StatusFailedConditionNotMet, StatusFailedNoRemainingReward, StatusFailedAlreadyClaimed:
		return true
	}
	return false
}

// RewardRequest records one user's attempt at one reward of an event.
type RewardRequest struct {
	RequestID   string     `gorm:"column:request_id;primaryKey" json:"requestId"`
	UserID      string     `gorm:"column:user_id;not null;index" json:"userId"`
	EventID     string     `gorm:"column:event_id;not null;index" json:"eventId"`
	RewardID    string     `gorm:"column:reward_id;not null;index" json:"rewardId"`
	Status      Status     `gorm:"column:status;not null;index" json:"status"`
	RequestedAt time.Time  `gorm:"column:requested_at;not null" json:"requestedAt"`
	ProcessedAt *time.Time `gorm:"column:processed_at" json:"processedAt,omitempty"`
	ClaimedAt   *time.Time `gorm:"column:claimed_at" json:"claimedAt,omitempty"`
	Notes       string     `gorm:"column:notes;not null;default:''" json:"notes,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

func (RewardRequest) TableName() string { return "reward_requests" }

type TimeRange struct {
	From *time.Time
	To   *time.Time
}

func (r TimeRange) valid() bool {
	return r.From == nil || r.To == nil || !r.To.Before(*r.From)
}

// Filter narrows ListAll. Zero-valued fields impose no constraint.
type Filter struct {
	UserID      string
	EventID     string
	RewardID    string
	Status      Status
	RequestedAt TimeRange
	ProcessedAt TimeRange
	ClaimedAt   TimeRange
	Notes       string

	Cursor string
	Limit  int
}
