package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventreward/pkg/errutil"
	"eventreward/services/condition"
	"eventreward/services/reward"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateParams carries an operator's event definition.
type CreateParams struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Status      Status
	Condition   condition.Condition
}

// Service is the event catalog.
type Service struct {
	repo    Repository
	rewards reward.Repository
	node    *snowflake.Node
	logger  *zap.Logger
}

type ServiceParams struct {
	fx.In

	Repository Repository
	Rewards    reward.Repository
	Node       *snowflake.Node
	Logger     *zap.Logger `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    p.Repository,
		rewards: p.Rewards,
		node:    p.Node,
		logger:  logger,
	}
}

// Create stores a new event. Only one ACTIVE event may exist per condition type.
func (s *Service) Create(ctx context.Context, p CreateParams, createdBy string) (*Event, error) {
	if p.Status == "" {
		p.Status = StatusInactive
	}
	if err := validateCreate(p); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event := &Event{
		EventID:          s.node.Generate().String(),
		Title:            strings.TrimSpace(p.Title),
		Description:      strings.TrimSpace(p.Description),
		StartDate:        p.StartDate.UTC(),
		EndDate:          p.EndDate.UTC(),
		Status:           p.Status,
		ConditionType:    p.Condition.Type,
		ConditionDetails: datatypes.JSON(p.Condition.Details),
		CreatedBy:        createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errutil.Conflict(
				fmt.Sprintf("an active event with condition %s already exists", p.Condition.Type), err)
		}
		s.logger.Error("failed to create event", zap.Error(err))
		return nil, errutil.Internal("failed to create event", err)
	}

	s.logger.Info("event created",
		zap.String("event_id", event.EventID),
		zap.String("condition_type", string(event.ConditionType)),
		zap.String("status", string(event.Status)),
		zap.String("created_by", createdBy),
	)
	return event, nil
}

func (s *Service) FindAll(ctx context.Context) ([]Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list events", zap.Error(err))
		return nil, errutil.Internal("failed to list events", err)
	}
	return events, nil
}

// FindByID returns the event with its rewards populated.
func (s *Service) FindByID(ctx context.Context, eventID string) (*Event, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if errors.Is(err, ErrEventNotFound) {
		return nil, errutil.NotFound("event not found", err)
	}
	if err != nil {
		return nil, errutil.Internal("failed to get event", err)
	}

	event.Rewards, err = s.rewards.ListByEvent(ctx, event.EventID)
	if err != nil {
		return nil, errutil.Internal("failed to get event rewards", err)
	}
	return event, nil
}

// FindForUpdate loads the event and its rewards inside tx, holding the event row lock
// until tx ends. Returns ErrEventNotFound when the id does not resolve.
func (s *Service) FindForUpdate(ctx context.Context, tx *gorm.DB, eventID string) (*Event, error) {
	event, err := s.repo.WithTx(tx).GetForUpdate(ctx, eventID)
	if err != nil {
		return nil, err
	}

	event.Rewards, err = s.rewards.WithTx(tx).ListByEvent(ctx, event.EventID)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Service) Exists(ctx context.Context, eventID string) (bool, error) {
	return s.repo.Exists(ctx, eventID)
}

// EndExpired closes every ACTIVE event whose end date is before now.
func (s *Service) EndExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.EndExpired(ctx, now.UTC())
	if err != nil {
		s.logger.Error("failed to end expired events", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired events ended", zap.Int64("count", n))
	}
	return n, nil
}

func validateCreate(p CreateParams) error {
	var details []errutil.Detail
	if strings.TrimSpace(p.Title) == "" {
		details = append(details, errutil.Detail{Field: "title", Message: "is required"})
	}
	if strings.TrimSpace(p.Description) == "" {
		details = append(details, errutil.Detail{Field: "description", Message: "is required"})
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		details = append(details, errutil.Detail{Field: "startDate", Message: "startDate and endDate are required"})
	} else if !p.EndDate.After(p.StartDate) {
		details = append(details, errutil.Detail{Field: "endDate", Message: "must be after startDate"})
	}
	if !p.Status.Valid() {
		details = append(details, errutil.Detail{Field: "status", Message: "must be one of ACTIVE, INACTIVE, ENDED"})
	}
	if err := p.Condition.Validate(); err != nil {
		details = append(details, errutil.Detail{Field: "conditions", Message: err.Error()})
	}
	if len(details) > 0 {
		return errutil.BadRequest("invalid event", nil, errutil.WithDetails(details...))
	}
	return nil
}
