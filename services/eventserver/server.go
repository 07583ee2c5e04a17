// Package eventserver exposes the event catalog, reward inventory and reward
// request settlement over eventv1.
package eventserver

import (
	"context"

	"eventreward/pkg/api/eventv1"
	"eventreward/services/condition"
	"eventreward/services/event"
	"eventreward/services/reward"
	"eventreward/services/rewardrequest"

	"go.uber.org/fx"
)

type Server struct {
	events       *event.Service
	rewards      *reward.Service
	orchestrator *rewardrequest.Orchestrator
	query        *rewardrequest.QueryService
}

var _ eventv1.EventServiceServer = (*Server)(nil)

type Params struct {
	fx.In

	Events       *event.Service
	Rewards      *reward.Service
	Orchestrator *rewardrequest.Orchestrator
	Query        *rewardrequest.QueryService
}

func NewServer(p Params) *Server {
	return &Server{
		events:       p.Events,
		rewards:      p.Rewards,
		orchestrator: p.Orchestrator,
		query:        p.Query,
	}
}

func (s *Server) CreateEvent(ctx context.Context, req *eventv1.CreateEventRequest) (*eventv1.Event, error) {
	evt, err := s.events.Create(ctx, event.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      event.Status(req.Status),
		Condition: condition.Condition{
			Type:    condition.Type(req.Condition.Type),
			Details: req.Condition.Details,
		},
	}, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	return toEvent(evt), nil
}

func (s *Server) GetEvent(ctx context.Context, req *eventv1.GetEventRequest) (*eventv1.Event, error) {
	evt, err := s.events.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	return toEvent(evt), nil
}

func (s *Server) ListEvents(ctx context.Context, _ *eventv1.ListEventsRequest) (*eventv1.ListEventsResponse, error) {
	events, err := s.events.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]eventv1.Event, 0, len(events))
	for i := range events {
		out = append(out, *toEvent(&events[i]))
	}
	return &eventv1.ListEventsResponse{Events: out}, nil
}

func (s *Server) CreateReward(ctx context.Context, req *eventv1.CreateRewardRequest) (*eventv1.Reward, error) {
	r, err := s.rewards.CreateReward(ctx, reward.CreateParams{
		EventID:  req.EventID,
		Type:     reward.Type(req.Type),
		Name:     req.Name,
		Details:  req.Details,
		Quantity: req.Quantity,
	})
	if err != nil {
		return nil, err
	}
	out := toReward(*r)
	return &out, nil
}

func (s *Server) ListRewards(ctx context.Context, req *eventv1.ListRewardsRequest) (*eventv1.ListRewardsResponse, error) {
	rewards, err := s.rewards.ListByEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	return &eventv1.ListRewardsResponse{Rewards: toRewards(rewards)}, nil
}

func (s *Server) SubmitRewardRequest(ctx context.Context, req *eventv1.SubmitRewardRequestRequest) (*eventv1.SubmitRewardRequestResponse, error) {
	requests, err := s.orchestrator.SubmitRequest(ctx, req.UserID, req.EventID, toEvidence(req.Evidence))
	if err != nil {
		return nil, err
	}
	return &eventv1.SubmitRewardRequestResponse{Requests: toRewardRequests(requests)}, nil
}

func (s *Server) ListMyRewardRequests(ctx context.Context, req *eventv1.ListMyRewardRequestsRequest) (*eventv1.ListRewardRequestsResponse, error) {
	requests, err := s.query.ListByUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &eventv1.ListRewardRequestsResponse{Requests: toRewardRequests(requests)}, nil
}

func (s *Server) ListAllRewardRequests(ctx context.Context, req *eventv1.ListAllRewardRequestsRequest) (*eventv1.ListRewardRequestsResponse, error) {
	page, err := s.query.ListAll(ctx, toFilter(req))
	if err != nil {
		return nil, err
	}
	return &eventv1.ListRewardRequestsResponse{
		Requests:   toRewardRequests(page.Items),
		NextCursor: page.PageInfo.NextCursor,
		HasMore:    page.PageInfo.HasMore,
	}, nil
}
