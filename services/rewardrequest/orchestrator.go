package rewardrequest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventreward/pkg/errutil"
	"eventreward/services/condition"
	"eventreward/services/event"
	"eventreward/services/reward"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventLoader loads an event with its rewards under a row lock held by tx.
type EventLoader interface {
	FindForUpdate(ctx context.Context, tx *gorm.DB, eventID string) (*event.Event, error)
}

// StockLedger consumes one unit of a reward inside tx.
type StockLedger interface {
	ClaimOne(ctx context.Context, tx *gorm.DB, rewardID string) error
}

// Orchestrator settles reward request submissions.
type Orchestrator struct {
	db     *gorm.DB
	repo   Repository
	events EventLoader
	ledger StockLedger
	node   *snowflake.Node
	logger *zap.Logger
	now    func() time.Time
}

type OrchestratorParams struct {
	fx.In

	DB         *gorm.DB
	Repository Repository
	Events     EventLoader
	Ledger     StockLedger
	Node       *snowflake.Node
	Logger     *zap.Logger `optional:"true"`
}

func NewOrchestrator(p OrchestratorParams) *Orchestrator {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		db:     p.DB,
		repo:   p.Repository,
		events: p.Events,
		ledger: p.Ledger,
		node:   p.Node,
		logger: logger,
		now:    time.Now,
	}
}

// SubmitRequest checks the evidence against the event condition and claims
// one unit of every reward of the event, recording one request per reward.
//
// Everything runs in one transaction. Preconditions fail the whole call with
// a BaseError; an exhausted reward is recorded as FAILED_NO_REMAINING_REWARD
// and does not fail the call.
func (o *Orchestrator) SubmitRequest(ctx context.Context, userID, eventID string, ev condition.Evidence) ([]RewardRequest, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(eventID) == "" {
		submissions.WithLabelValues(outcomeRejected).Inc()
		return nil, errutil.BadRequest("userId and eventId are required", nil)
	}

	var created []RewardRequest
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		evt, err := o.events.FindForUpdate(ctx, tx, eventID)
		if errors.Is(err, event.ErrEventNotFound) {
			return errutil.NotFound("event not found", err)
		}
		if err != nil {
			return fmt.Errorf("load event: %w", err)
		}

		if len(evt.Rewards) == 0 {
			return errutil.BadRequest("no rewards configured for event", nil)
		}

		dup, err := o.repo.WithTx(tx).HasInFlight(ctx, userID, eventID)
		if err != nil {
			return fmt.Errorf("check duplicate request: %w", err)
		}
		if dup {
			return errutil.Conflict("a reward request for this event already exists", nil)
		}

		if err := checkCondition(evt.Condition(), ev); err != nil {
			return err
		}

		created, err = o.claimAll(ctx, tx, userID, evt)
		if err != nil {
			return err
		}
		return o.repo.WithTx(tx).CreateBatch(ctx, created)
	})
	if err != nil {
		var base errutil.BaseError
		if errors.As(err, &base) {
			submissions.WithLabelValues(outcomeRejected).Inc()
			o.logger.Info("reward request rejected",
				zap.String("user_id", userID),
				zap.String("event_id", eventID),
				zap.String("code", string(base.Code)),
				zap.String("reason", base.Message),
			)
			return nil, err
		}

		submissions.WithLabelValues(outcomeError).Inc()
		o.logger.Error("failed to submit reward request",
			zap.String("user_id", userID),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		return nil, errutil.Internal("failed to submit reward request", err)
	}

	submissions.WithLabelValues(outcomeSettled).Inc()
	for _, r := range created {
		claims.WithLabelValues(string(r.Status)).Inc()
	}
	o.logger.Info("reward request settled",
		zap.String("user_id", userID),
		zap.String("event_id", eventID),
		zap.Int("rewards", len(created)),
	)
	return created, nil
}

func checkCondition(c condition.Condition, ev condition.Evidence) error {
	ok, err := c.Evaluate(ev)
	switch {
	case errors.Is(err, condition.ErrInvalidEvidence):
		return errutil.BadRequest(err.Error(), err)
	case errors.Is(err, condition.ErrUnknownConditionType), errors.Is(err, condition.ErrInvalidCondition):
		return errutil.BadRequest("event condition cannot be evaluated", err)
	case err != nil:
		return fmt.Errorf("evaluate condition: %w", err)
	case !ok:
		return errutil.BadRequest("event condition not met", ErrConditionNotMet)
	}
	return nil
}

// claimAll tries every reward in catalog order. It must only touch tx.
func (o *Orchestrator) claimAll(ctx context.Context, tx *gorm.DB, userID string, evt *event.Event) ([]RewardRequest, error) {
	now := o.now().UTC()
	requests := make([]RewardRequest, 0, len(evt.Rewards))

	for _, rw := range evt.Rewards {
		req := RewardRequest{
			RequestID:   o.node.Generate().String(),
			UserID:      userID,
			EventID:     evt.EventID,
			RewardID:    rw.RewardID,
			RequestedAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		err := o.ledger.ClaimOne(ctx, tx, rw.RewardID)
		switch {
		case err == nil:
			processed := now
			req.Status = StatusApproved
			req.ProcessedAt = &processed
		case errors.Is(err, reward.ErrRewardExhausted):
			req.Status = StatusFailedNoRemainingReward
		default:
			return nil, fmt.Errorf("claim reward %s: %w", rw.RewardID, err)
		}

		requests = append(requests, req)
	}
	return requests, nil
}
