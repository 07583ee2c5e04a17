package reward

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"eventreward/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// EventChecker confirms that a reward's owning event exists.
type EventChecker interface {
	Exists(ctx context.Context, eventID string) (bool, error)
}

// CreateParams carries an operator's reward registration.
type CreateParams struct {
	EventID  string
	Type     Type
	Name     string
	Details  json.RawMessage
	Quantity int
}

type Service struct {
	repo   Repository
	events EventChecker
	node   *snowflake.Node
	logger *zap.Logger
}

type ServiceParams struct {
	fx.In

	Repository Repository
	Events     EventChecker
	Node       *snowflake.Node
	Logger     *zap.Logger `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   p.Repository,
		events: p.Events,
		node:   p.Node,
		logger: logger,
	}
}

// CreateReward registers a reward under an existing event with full stock.
func (s *Service) CreateReward(ctx context.Context, p CreateParams) (*Reward, error) {
	if err := validateCreate(p); err != nil {
		return nil, err
	}

	ok, err := s.events.Exists(ctx, p.EventID)
	if err != nil {
		s.logger.Error("failed to check event", zap.String("event_id", p.EventID), zap.Error(err))
		return nil, errutil.Internal("failed to create reward", err)
	}
	if !ok {
		return nil, errutil.NotFound("event not found", nil)
	}

	details := datatypes.JSON(p.Details)
	if len(details) == 0 {
		details = datatypes.JSON("{}")
	}

	now := time.Now().UTC()
	reward := &Reward{
		RewardID:  s.node.Generate().String(),
		EventID:   p.EventID,
		Type:      p.Type,
		Name:      strings.TrimSpace(p.Name),
		Details:   details,
		Quantity:  p.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !reward.IsUnlimited() {
		reward.RemainingQuantity = p.Quantity
	}

	if err := s.repo.Create(ctx, reward); err != nil {
		s.logger.Error("failed to create reward", zap.String("event_id", p.EventID), zap.Error(err))
		return nil, errutil.Internal("failed to create reward", err)
	}

	s.logger.Info("reward created",
		zap.String("reward_id", reward.RewardID),
		zap.String("event_id", reward.EventID),
		zap.Int("quantity", reward.Quantity),
	)
	return reward, nil
}

func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]Reward, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, errutil.BadRequest("eventId is required", nil)
	}
	rewards, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errutil.Internal("failed to list rewards", err)
	}
	return rewards, nil
}

func (s *Service) GetReward(ctx context.Context, rewardID string) (*Reward, error) {
	reward, err := s.repo.GetByID(ctx, rewardID)
	if errors.Is(err, ErrRewardNotFound) {
		return nil, errutil.NotFound("reward not found", err)
	}
	if err != nil {
		return nil, errutil.Internal("failed to get reward", err)
	}
	return reward, nil
}

func validateCreate(p CreateParams) error {
	var details []errutil.Detail
	if strings.TrimSpace(p.EventID) == "" {
		details = append(details, errutil.Detail{Field: "eventId", Message: "is required"})
	}
	if !p.Type.Valid() {
		details = append(details, errutil.Detail{Field: "type", Message: "must be one of CASH, GOLD, ITEM, COUPON"})
	}
	if strings.TrimSpace(p.Name) == "" {
		details = append(details, errutil.Detail{Field: "name", Message: "is required"})
	}
	if p.Quantity < Unlimited {
		details = append(details, errutil.Detail{Field: "quantity", Message: "must be -1 (unlimited) or greater"})
	}
	if len(p.Details) > 0 {
		var obj map[string]any
		if err := json.Unmarshal(p.Details, &obj); err != nil {
			details = append(details, errutil.Detail{Field: "details", Message: "must be an object"})
		}
	}
	if len(details) > 0 {
		return errutil.BadRequest("invalid reward", nil, errutil.WithDetails(details...))
	}
	return nil
}
