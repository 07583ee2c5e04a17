package eventserver

import (
	"encoding/json"

	"eventreward/pkg/api/eventv1"
	"eventreward/services/condition"
	"eventreward/services/event"
	"eventreward/services/reward"
	"eventreward/services/rewardrequest"
)

func toEvent(e *event.Event) *eventv1.Event {
	out := &eventv1.Event{
		EventID:     e.EventID,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Status:      string(e.Status),
		Condition: eventv1.Condition{
			Type:    string(e.ConditionType),
			Details: json.RawMessage(e.ConditionDetails),
		},
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.Rewards != nil {
		out.Rewards = toRewards(e.Rewards)
	}
	return out
}

func toReward(r reward.Reward) eventv1.Reward {
	return eventv1.Reward{
		RewardID:          r.RewardID,
		EventID:           r.EventID,
		Type:              string(r.Type),
		Name:              r.Name,
		Details:           json.RawMessage(r.Details),
		Quantity:          r.Quantity,
		RemainingQuantity: r.RemainingQuantity,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toRewards(in []reward.Reward) []eventv1.Reward {
	out := make([]eventv1.Reward, 0, len(in))
	for _, r := range in {
		out = append(out, toReward(r))
	}
	return out
}

func toRewardRequests(in []rewardrequest.RewardRequest) []eventv1.RewardRequest {
	out := make([]eventv1.RewardRequest, 0, len(in))
	for _, r := range in {
		out = append(out, eventv1.RewardRequest{
			RequestID:   r.RequestID,
			UserID:      r.UserID,
			EventID:     r.EventID,
			RewardID:    r.RewardID,
			Status:      string(r.Status),
			RequestedAt: r.RequestedAt,
			ProcessedAt: r.ProcessedAt,
			ClaimedAt:   r.ClaimedAt,
			Notes:       r.Notes,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return out
}

func toEvidence(in eventv1.Evidence) condition.Evidence {
	ev := condition.Evidence{
		LoginDates:     in.LoginDates,
		ClearedQuests:  in.ClearedQuests,
		RecommendCount: in.RecommendCount,
		PurchaseCount:  in.PurchaseCount,
	}
	for _, k := range in.KilledMonsters {
		ev.KilledMonsters = append(ev.KilledMonsters, condition.MonsterKillCount{MonsterID: k.MonsterID, Count: k.Count})
	}
	return ev
}

func toFilter(req *eventv1.ListAllRewardRequestsRequest) rewardrequest.Filter {
	return rewardrequest.Filter{
		UserID:      req.UserID,
		EventID:     req.EventID,
		RewardID:    req.RewardID,
		Status:      rewardrequest.Status(req.Status),
		RequestedAt: rewardrequest.TimeRange{From: req.RequestedAtStart, To: req.RequestedAtEnd},
		ProcessedAt: rewardrequest.TimeRange{From: req.ProcessedAtStart, To: req.ProcessedAtEnd},
		ClaimedAt:   rewardrequest.TimeRange{From: req.ClaimedAtStart, To: req.ClaimedAtEnd},
		Notes:       req.Notes,
		Cursor:      req.Cursor,
		Limit:       req.Limit,
	}
}
