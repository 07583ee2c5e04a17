package reward

import (
	"context"

	"gorm.io/gorm"
)

// Ledger owns reward stock. Every stock mutation goes through ClaimOne.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// IsAvailable reports whether the reward is unlimited or still has stock.
func (l *Ledger) IsAvailable(ctx context.Context, rewardID string) (bool, error) {
	reward, err := l.repo.GetByID(ctx, rewardID)
	if err != nil {
		return false, err
	}
	return reward.Available(), nil
}

// ClaimOne consumes one unit of stock inside tx.
//
// The check and the decrement are a single conditional UPDATE, so two claims
// racing on the last unit cannot both succeed. Unlimited rewards are left untouched.
func (l *Ledger) ClaimOne(ctx context.Context, tx *gorm.DB, rewardID string) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}

	res := tx.WithContext(ctx).Model(&Reward{}).
		Where("reward_id = ? AND quantity <> ? AND remaining_quantity > 0", rewardID, Unlimited).
		Update("remaining_quantity", gorm.Expr("remaining_quantity - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// nothing decremented: unlimited, exhausted or missing
	reward, err := l.repo.WithTx(tx).GetByID(ctx, rewardID)
	if err != nil {
		return err
	}
	if reward.IsUnlimited() {
		return nil
	}
	return ErrRewardExhausted
}
