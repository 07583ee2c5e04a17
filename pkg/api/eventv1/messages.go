package eventv1

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type Condition struct {
	Type    string          `json:"type"`
	Details json.RawMessage `json:"details,omitempty"`
}

type Reward struct {
	RewardID          string          `json:"rewardId"`
	EventID           string          `json:"eventId"`
	Type              string          `json:"type"`
	Name              string          `json:"name"`
	Details           json.RawMessage `json:"details,omitempty"`
	Quantity          int             `json:"quantity"`
	RemainingQuantity int             `json:"remainingQuantity"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

type Event struct {
	EventID     string    `json:"eventId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Status      string    `json:"status"`
	Condition   Condition `json:"conditions"`
	CreatedBy   string    `json:"createdBy"`
	Rewards     []Reward  `json:"rewards,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type RewardRequest struct {
	RequestID   string     `json:"rewardRequestId"`
	UserID      string     `json:"userId"`
	EventID     string     `json:"eventId"`
	RewardID    string     `json:"rewardId"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requestedAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	ClaimedAt   *time.Time `json:"claimedAt,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type MonsterKill struct {
	MonsterID string `json:"monsterId"`
	Count     int    `json:"count"`
}

// Evidence is the completion data a user submits with a reward request.
type Evidence struct {
	LoginDates     []string      `json:"loginDates,omitempty"`
	ClearedQuests  []string      `json:"clearedQuests,omitempty"`
	KilledMonsters []MonsterKill `json:"killedMonsters,omitempty"`
	RecommendCount *int          `json:"recommendCount,omitempty"`
	PurchaseCount  *int          `json:"purchaseCount,omitempty"`
}

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Status      string    `json:"status,omitempty"`
	Condition   Condition `json:"conditions"`
	CreatedBy   string    `json:"createdBy"`
}

func (r *CreateEventRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.CreatedBy) == "":
		return errors.New("createdBy is required")
	case strings.TrimSpace(r.Condition.Type) == "":
		return errors.New("conditions.type is required")
	}
	return nil
}

type GetEventRequest struct {
	EventID string `json:"eventId"`
}

func (r *GetEventRequest) Validate() error {
	if strings.TrimSpace(r.EventID) == "" {
		return errors.New("eventId is required")
	}
	return nil
}

type ListEventsRequest struct{}

type ListEventsResponse struct {
	Events []Event `json:"events"`
}

type CreateRewardRequest struct {
	EventID  string          `json:"eventId"`
	Type     string          `json:"type"`
	Name     string          `json:"name"`
	Details  json.RawMessage `json:"details,omitempty"`
	Quantity int             `json:"quantity"`
}

func (r *CreateRewardRequest) Validate() error {
	if strings.TrimSpace(r.EventID) == "" {
		return errors.New("eventId is required")
	}
	return nil
}

type ListRewardsRequest struct {
	EventID string `json:"eventId"`
}

func (r *ListRewardsRequest) Validate() error {
	if strings.TrimSpace(r.EventID) == "" {
		return errors.New("eventId is required")
	}
	return nil
}

type ListRewardsResponse struct {
	Rewards []Reward `json:"rewards"`
}

type SubmitRewardRequestRequest struct {
	UserID   string   `json:"userId"`
	EventID  string   `json:"eventId"`
	Evidence Evidence `json:"completedInfo"`
}

func (r *SubmitRewardRequestRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return errors.New("userId is required")
	case strings.TrimSpace(r.EventID) == "":
		return errors.New("eventId is required")
	}
	return nil
}

type SubmitRewardRequestResponse struct {
	Requests []RewardRequest `json:"requests"`
}

type ListMyRewardRequestsRequest struct {
	UserID string `json:"userId"`
}

func (r *ListMyRewardRequestsRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("userId is required")
	}
	return nil
}

type ListAllRewardRequestsRequest struct {
	UserID           string     `json:"userId,omitempty"`
	EventID          string     `json:"eventId,omitempty"`
	RewardID         string     `json:"rewardId,omitempty"`
	Status           string     `json:"status,omitempty"`
	RequestedAtStart *time.Time `json:"requestedAtStart,omitempty"`
	RequestedAtEnd   *time.Time `json:"requestedAtEnd,omitempty"`
	ProcessedAtStart *time.Time `json:"processedAtStart,omitempty"`
	ProcessedAtEnd   *time.Time `json:"processedAtEnd,omitempty"`
	ClaimedAtStart   *time.Time `json:"claimedAtStart,omitempty"`
	ClaimedAtEnd     *time.Time `json:"claimedAtEnd,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	Cursor           string     `json:"cursor,omitempty"`
	Limit            int        `json:"limit,omitempty"`
}

type ListRewardRequestsResponse struct {
	Requests   []RewardRequest `json:"requests"`
	NextCursor string          `json:"nextCursor,omitempty"`
	HasMore    bool            `json:"hasMore"`
}
