package event

import (
	"errors"
	"time"

	"eventreward/services/condition"
	"eventreward/services/reward"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusEnded    Status = "ENDED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusEnded:
		return true
	}
	return false
}

// Event is a time-bounded campaign with a completion condition.
//
// ActiveConditionType mirrors ConditionType only while the event is ACTIVE.
// Its unique index allows any number of NULLs, which makes it a partial
// unique index that behaves the same on postgres, mysql and sqlite.
type Event struct {
	EventID             string         `gorm:"column:event_id;primaryKey"`
	Title               string         `gorm:"column:title;not null"`
	Description         string         `gorm:"column:description"`
	StartDate           time.Time      `gorm:"column:start_date;not null;index:idx_events_window,priority:1"`
	EndDate             time.Time      `gorm:"column:end_date;not null;index:idx_events_window,priority:2"`
	Status              Status         `gorm:"column:status;not null;index"`
	ConditionType       condition.Type `gorm:"column:condition_type;not null;index"`
	ConditionDetails    datatypes.JSON `gorm:"column:condition_details"`
	ActiveConditionType *string        `gorm:"column:active_condition_type;uniqueIndex:unique_active_condition_type"`
	CreatedBy           string         `gorm:"column:created_by;index"`
	CreatedAt           time.Time      `gorm:"column:created_at;index"`
	UpdatedAt           time.Time      `gorm:"column:updated_at"`

	Rewards []reward.Reward `gorm:"-"`
}

func (Event) TableName() string { return "events" }

func (e *Event) BeforeSave(tx *gorm.DB) error {
	e.syncActiveSlot()
	return nil
}

func (e *Event) syncActiveSlot() {
	if e.Status == StatusActive {
		t := string(e.ConditionType)
		e.ActiveConditionType = &t
		return
	}
	e.ActiveConditionType = nil
}

func (e Event) Condition() condition.Condition {
	return condition.Condition{Type: e.ConditionType, Details: []byte(e.ConditionDetails)}
}
