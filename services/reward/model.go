package reward

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

// Unlimited is the quantity of a reward whose stock is never consumed.
const Unlimited = -1

var (
	ErrRewardNotFound  = errors.New("reward not found")
	ErrRewardExhausted = errors.New("reward stock exhausted")
)

type Type string

const (
	TypeCash   Type = "CASH"
	TypeGold   Type = "GOLD"
	TypeItem   Type = "ITEM"
	TypeCoupon Type = "COUPON"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCash, TypeGold, TypeItem, TypeCoupon:
		return true
	}
	return false
}

// Reward is a claimable prize scoped to one event.
// RemainingQuantity is only meaningful when Quantity is not Unlimited.
type Reward struct {
	RewardID          string         `gorm:"column:reward_id;primaryKey"`
	EventID           string         `gorm:"column:event_id;not null;index"`
	Type              Type           `gorm:"column:type;not null"`
	Name              string         `gorm:"column:name;not null"`
	Details           datatypes.JSON `gorm:"column:details"`
	Quantity          int            `gorm:"column:quantity;not null"`
	RemainingQuantity int            `gorm:"column:remaining_quantity;not null;default:0"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at"`
}

func (Reward) TableName() string { return "rewards" }

func (r Reward) IsUnlimited() bool { return r.Quantity == Unlimited }

// Available reports whether one more unit can be claimed.
func (r Reward) Available() bool {
	return r.IsUnlimited() || r.RemainingQuantity > 0
}
