package reward

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"

	"eventreward/pkg/errutil"
	"eventreward/services/testutil"
)

type eventCheckerMock struct {
	ExistsFn func(ctx context.Context, eventID string) (bool, error)
}

func (m eventCheckerMock) Exists(ctx context.Context, eventID string) (bool, error) {
	return m.ExistsFn(ctx, eventID)
}

func newTestService(t *testing.T, events EventChecker) (*Service, Repository) {
	t.Helper()

	db := testutil.NewTestDB(t, &Reward{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := NewRepository(db)
	return NewService(ServiceParams{Repository: repo, Events: events, Node: node}), repo
}

func knownEvents(ids ...string) EventChecker {
	return eventCheckerMock{ExistsFn: func(_ context.Context, eventID string) (bool, error) {
		for _, id := range ids {
			if id == eventID {
				return true, nil
			}
		}
		return false, nil
	}}
}

func requireStatus(t *testing.T, err error, want errutil.CoreStatus) {
	t.Helper()
	var base errutil.BaseError
	require.True(t, errors.As(err, &base), "expected BaseError, got %v", err)
	require.Equal(t, want, base.Code)
}

func TestService_CreateReward(t *testing.T) {
	svc, repo := newTestService(t, knownEvents("evt-1"))
	ctx := context.Background()

	finite, err := svc.CreateReward(ctx, CreateParams{
		EventID:  "evt-1",
		Type:     TypeCash,
		Name:     "1000 cash",
		Details:  json.RawMessage(`{"amount":1000}`),
		Quantity: 100,
	})
	require.NoError(t, err)
	require.NotEmpty(t, finite.RewardID)
	require.Equal(t, 100, finite.RemainingQuantity)

	unlimited, err := svc.CreateReward(ctx, CreateParams{EventID: "evt-1", Type: TypeItem, Name: "potion", Quantity: Unlimited})
	require.NoError(t, err)
	require.True(t, unlimited.IsUnlimited())
	require.Zero(t, unlimited.RemainingQuantity)
	require.JSONEq(t, `{}`, string(unlimited.Details))

	rewards, err := repo.ListByEvent(ctx, "evt-1")
	require.NoError(t, err)
	require.Len(t, rewards, 2)
	require.Equal(t, finite.RewardID, rewards[0].RewardID)
}

func TestService_CreateRewardValidation(t *testing.T) {
	svc, _ := newTestService(t, knownEvents("evt-1"))
	ctx := context.Background()

	_, err := svc.CreateReward(ctx, CreateParams{EventID: "evt-1", Type: "POINT", Name: "x", Quantity: 1})
	requireStatus(t, err, errutil.StatusBadRequest)

	_, err = svc.CreateReward(ctx, CreateParams{EventID: "evt-1", Type: TypeGold, Name: "x", Quantity: -2})
	requireStatus(t, err, errutil.StatusBadRequest)

	_, err = svc.CreateReward(ctx, CreateParams{EventID: "evt-1", Type: TypeGold, Name: " ", Quantity: 1})
	requireStatus(t, err, errutil.StatusBadRequest)

	_, err = svc.CreateReward(ctx, CreateParams{EventID: "evt-1", Type: TypeGold, Name: "x", Quantity: 1, Details: json.RawMessage(`[1]`)})
	requireStatus(t, err, errutil.StatusBadRequest)
}

func TestService_CreateRewardUnknownEvent(t *testing.T) {
	svc, _ := newTestService(t, knownEvents())

	_, err := svc.CreateReward(context.Background(), CreateParams{EventID: "evt-404", Type: TypeGold, Name: "x", Quantity: 1})
	requireStatus(t, err, errutil.StatusNotFound)
}

func TestService_GetReward(t *testing.T) {
	svc, _ := newTestService(t, knownEvents("evt-1"))
	ctx := context.Background()

	created, err := svc.CreateReward(ctx, CreateParams{EventID: "evt-1", Type: TypeCoupon, Name: "10% off", Quantity: 5})
	require.NoError(t, err)

	got, err := svc.GetReward(ctx, created.RewardID)
	require.NoError(t, err)
	require.Equal(t, 5, got.Quantity)

	_, err = svc.GetReward(ctx, "missing")
	requireStatus(t, err, errutil.StatusNotFound)
}
