package eventserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/validator"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"eventreward/pkg/api/eventv1"
	"eventreward/pkg/errutil"
	"eventreward/pkg/server"
	"eventreward/services/event"
	"eventreward/services/reward"
	"eventreward/services/rewardrequest"
	"eventreward/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// newClient serves a Server over an in-memory listener and returns a client for it.
func newClient(t *testing.T) eventv1.EventServiceClient {
	t.Helper()

	db := testutil.NewTestDB(t, &event.Event{}, &reward.Reward{}, &rewardrequest.RewardRequest{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	rewardRepo := reward.NewRepository(db)
	events := event.NewService(event.ServiceParams{Repository: event.NewRepository(db), Rewards: rewardRepo, Node: node})
	repo := rewardrequest.NewRepository(db)

	srv := NewServer(Params{
		Events:  events,
		Rewards: reward.NewService(reward.ServiceParams{Repository: rewardRepo, Events: events, Node: node}),
		Orchestrator: rewardrequest.NewOrchestrator(rewardrequest.OrchestratorParams{
			DB:         db,
			Repository: repo,
			Events:     events,
			Ledger:     reward.NewLedger(rewardRepo),
			Node:       node,
		}),
		Query: rewardrequest.NewQueryService(rewardrequest.QueryServiceParams{Repository: repo}),
	})

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(
		server.ErrorInterceptor(),
		validator.UnaryServerInterceptor(validator.WithFailFast()),
	))
	eventv1.RegisterEventServiceServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return eventv1.NewEventServiceClient(conn)
}

func requireStatus(t *testing.T, err error, want errutil.CoreStatus) {
	t.Helper()
	var base errutil.BaseError
	require.True(t, errors.As(err, &base), "expected errutil.BaseError, got %v", err)
	require.Equal(t, want, base.Code)
}

func createEvent(t *testing.T, c eventv1.EventServiceClient) *eventv1.Event {
	t.Helper()
	start := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	evt, err := c.CreateEvent(context.Background(), &eventv1.CreateEventRequest{
		Title:     "daily login",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 7),
		Status:    "ACTIVE",
		Condition: eventv1.Condition{Type: "QUEST_CLEAR", Details: json.RawMessage(`{"questId":"q-1"}`)},
		CreatedBy: "operator-1",
	})
	require.NoError(t, err)
	return evt
}

func TestServer_EventLifecycle(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	evt := createEvent(t, c)
	require.NotEmpty(t, evt.EventID)
	require.Equal(t, "ACTIVE", evt.Status)
	require.JSONEq(t, `{"questId":"q-1"}`, string(evt.Condition.Details))

	rw, err := c.CreateReward(ctx, &eventv1.CreateRewardRequest{
		EventID: evt.EventID, Type: "GOLD", Name: "100 gold", Quantity: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, rw.RemainingQuantity)

	got, err := c.GetEvent(ctx, &eventv1.GetEventRequest{EventID: evt.EventID})
	require.NoError(t, err)
	require.Len(t, got.Rewards, 1)
	require.Equal(t, rw.RewardID, got.Rewards[0].RewardID)

	list, err := c.ListEvents(ctx, &eventv1.ListEventsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Events, 1)

	rewards, err := c.ListRewards(ctx, &eventv1.ListRewardsRequest{EventID: evt.EventID})
	require.NoError(t, err)
	require.Len(t, rewards.Rewards, 1)
}

func TestServer_SubmitAndQuery(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	evt := createEvent(t, c)
	_, err := c.CreateReward(ctx, &eventv1.CreateRewardRequest{EventID: evt.EventID, Type: "ITEM", Name: "sword", Quantity: 1})
	require.NoError(t, err)

	evidence := eventv1.Evidence{ClearedQuests: []string{"q-1"}}

	first, err := c.SubmitRewardRequest(ctx, &eventv1.SubmitRewardRequestRequest{UserID: "u1", EventID: evt.EventID, Evidence: evidence})
	require.NoError(t, err)
	require.Len(t, first.Requests, 1)
	require.Equal(t, string(rewardrequest.StatusApproved), first.Requests[0].Status)

	second, err := c.SubmitRewardRequest(ctx, &eventv1.SubmitRewardRequestRequest{UserID: "u2", EventID: evt.EventID, Evidence: evidence})
	require.NoError(t, err)
	require.Equal(t, string(rewardrequest.StatusFailedNoRemainingReward), second.Requests[0].Status)

	_, err = c.SubmitRewardRequest(ctx, &eventv1.SubmitRewardRequestRequest{UserID: "u1", EventID: evt.EventID, Evidence: evidence})
	requireStatus(t, err, errutil.StatusConflict)

	_, err = c.SubmitRewardRequest(ctx, &eventv1.SubmitRewardRequestRequest{
		UserID: "u3", EventID: evt.EventID, Evidence: eventv1.Evidence{ClearedQuests: []string{"q-2"}},
	})
	requireStatus(t, err, errutil.StatusBadRequest)

	mine, err := c.ListMyRewardRequests(ctx, &eventv1.ListMyRewardRequestsRequest{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, mine.Requests, 1)

	all, err := c.ListAllRewardRequests(ctx, &eventv1.ListAllRewardRequestsRequest{Status: string(rewardrequest.StatusFailedNoRemainingReward)})
	require.NoError(t, err)
	require.Len(t, all.Requests, 1)
	require.Equal(t, "u2", all.Requests[0].UserID)
	require.False(t, all.HasMore)

	paged, err := c.ListAllRewardRequests(ctx, &eventv1.ListAllRewardRequestsRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, paged.Requests, 1)
	require.True(t, paged.HasMore)
	require.NotEmpty(t, paged.NextCursor)
}

func TestServer_ErrorsCrossTheWire(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.GetEvent(ctx, &eventv1.GetEventRequest{EventID: "missing"})
	requireStatus(t, err, errutil.StatusNotFound)

	_, err = c.GetEvent(ctx, &eventv1.GetEventRequest{})
	requireStatus(t, err, errutil.StatusBadRequest)

	_, err = c.CreateReward(ctx, &eventv1.CreateRewardRequest{EventID: "missing", Type: "GOLD", Name: "g", Quantity: 1})
	requireStatus(t, err, errutil.StatusNotFound)

	createEvent(t, c)
	start := time.Now().UTC()
	_, err = c.CreateEvent(ctx, &eventv1.CreateEventRequest{
		Title:     "second quest",
		StartDate: start,
		EndDate:   start.Add(time.Hour),
		Status:    "ACTIVE",
		Condition: eventv1.Condition{Type: "QUEST_CLEAR", Details: json.RawMessage(`{"questId":"q-9"}`)},
		CreatedBy: "operator-1",
	})
	requireStatus(t, err, errutil.StatusConflict)

	_, err = c.ListAllRewardRequests(ctx, &eventv1.ListAllRewardRequestsRequest{Status: "LOST"})
	requireStatus(t, err, errutil.StatusBadRequest)
}
