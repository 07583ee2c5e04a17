package rewardrequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"eventreward/pkg/errutil"
	"eventreward/services/condition"
	"eventreward/services/event"
	"eventreward/services/reward"
	"eventreward/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fixture struct {
	db           *gorm.DB
	events       *event.Service
	rewards      *reward.Service
	ledger       *reward.Ledger
	orchestrator *Orchestrator
	query        *QueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, testutil.NewTestDB(t, &event.Event{}, &reward.Reward{}, &RewardRequest{}))
}

// newContendedFixture backs the services with a multi-connection database
// whose transactions take the write lock at BEGIN, standing in for the event
// row lock a server database takes first.
func newContendedFixture(t *testing.T, conns int) *fixture {
	t.Helper()
	db := testutil.NewSharedTestDB(t, testutil.SharedDB{Conns: conns, ImmediateTx: true},
		&event.Event{}, &reward.Reward{}, &RewardRequest{})
	return newFixtureOn(t, db)
}

func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	rewardRepo := reward.NewRepository(db)
	events := event.NewService(event.ServiceParams{
		Repository: event.NewRepository(db),
		Rewards:    rewardRepo,
		Node:       node,
	})
	ledger := reward.NewLedger(rewardRepo)
	repo := NewRepository(db)

	return &fixture{
		db:     db,
		events: events,
		rewards: reward.NewService(reward.ServiceParams{
			Repository: rewardRepo,
			Events:     events,
			Node:       node,
		}),
		ledger: ledger,
		orchestrator: NewOrchestrator(OrchestratorParams{
			DB:         db,
			Repository: repo,
			Events:     events,
			Ledger:     ledger,
			Node:       node,
		}),
		query: NewQueryService(QueryServiceParams{Repository: repo}),
	}
}

func (f *fixture) createEvent(t *testing.T, c condition.Condition) *event.Event {
	t.Helper()
	start := time.Now().UTC().Add(-time.Hour)
	evt, err := f.events.Create(context.Background(), event.CreateParams{
		Title:       "attendance",
		Description: "check in every day",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 30),
		Status:      event.StatusActive,
		Condition:   c,
	}, "operator-1")
	require.NoError(t, err)
	return evt
}

func (f *fixture) createReward(t *testing.T, eventID string, quantity int) *reward.Reward {
	t.Helper()
	rw, err := f.rewards.CreateReward(context.Background(), reward.CreateParams{
		EventID:  eventID,
		Type:     reward.TypeGold,
		Name:     fmt.Sprintf("gold x%d", quantity),
		Quantity: quantity,
	})
	require.NoError(t, err)
	return rw
}

func (f *fixture) remaining(t *testing.T, rewardID string) int {
	t.Helper()
	rw, err := f.rewards.GetReward(context.Background(), rewardID)
	require.NoError(t, err)
	return rw.RemainingQuantity
}

func (f *fixture) countRequests(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&RewardRequest{}).Count(&n).Error)
	return n
}

func mustCondition(t *testing.T, typ condition.Type, d condition.Details) condition.Condition {
	t.Helper()
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	return condition.Condition{Type: typ, Details: raw}
}

func sevenDays() condition.Evidence {
	return condition.Evidence{LoginDates: []string{
		"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04",
		"2025-01-05", "2025-01-06", "2025-01-07",
	}}
}

func requireStatus(t *testing.T, err error, want errutil.CoreStatus) {
	t.Helper()
	var base errutil.BaseError
	require.True(t, errors.As(err, &base), "expected BaseError, got %v", err)
	require.Equal(t, want, base.Code)
}

func TestOrchestrator_LastUnitGoesToFirstUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	evt := f.createEvent(t, mustCondition(t, condition.LoginStreak, condition.Details{TargetCount: 7}))
	rw := f.createReward(t, evt.EventID, 1)

	got, err := f.orchestrator.SubmitRequest(ctx, "user-1", evt.EventID, sevenDays())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, StatusApproved, got[0].Status)
	require.Equal(t, rw.RewardID, got[0].RewardID)
	require.NotNil(t, got[0].ProcessedAt)
	require.Zero(t, f.remaining(t, rw.RewardID))

	got, err = f.orchestrator.SubmitRequest(ctx, "user-2", evt.EventID, sevenDays())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, StatusFailedNoRemainingReward, got[0].Status)
	require.Nil(t, got[0].ProcessedAt)
	require.Zero(t, f.remaining(t, rw.RewardID))
}

func TestOrchestrator_DuplicateSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	evt := f.createEvent(t, mustCondition(t, condition.LoginStreak, condition.Details{TargetCount: 7}))
	rw := f.createReward(t, evt.EventID, 5)

	_, err := f.orchestrator.SubmitRequest(ctx, "user-1", evt.EventID, sevenDays())
	require.NoError(t, err)

	_, err = f.orchestrator.SubmitRequest(ctx, "user-1", evt.EventID, sevenDays())
	requireStatus(t, err, errutil.StatusConflict)
	require.Equal(t, 4, f.remaining(t, rw.RewardID))
	require.Equal(t, int64(1), f.countRequests(t))
}

func TestOrchestrator_ExhaustedSubmissionCanRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	evt := f.createEvent(t, mustCondition(t, condition.LoginStreak, condition.Details{TargetCount: 7}))
	f.createReward(t, evt.EventID, 0)

	for i := 0; i < 2; i++ {
		got, err := f.orchestrator.SubmitRequest(ctx, "user-1", evt.EventID, sevenDays())
		require.NoError(t, err)
		require.Equal(t, StatusFailedNoRemainingReward, got[0].Status)
	}
	require.Equal(t, int64(2), f.countRequests(t))
}

func TestOrchestrator_MixedOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	evt := f.createEvent(t, mustCondition(t, condition.MonsterKill, condition.Details{MonsterID: "m1", TargetCount: 10}))
	empty := f.createReward(t, evt.EventID, 0)
	unlimited := f.createReward(t, evt.EventID, reward.Unlimited)
	stocked := f.createReward(t, evt.EventID, 2)

	got, err := f.orchestrator.SubmitRequest(ctx, "user-1", evt.EventID, condition.Evidence{
		KilledMonsters: []condition.MonsterKillCount{{MonsterID: "m1", Count: 10}},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)

	byReward := map[string]Status{}
	for _, r := range got {
		byReward[r.RewardID] = r.Status
	}
	require.Equal(t, StatusFailedNoRemainingReward, byReward[empty.RewardID])
	require.Equal(t, StatusApproved, byReward[unlimited.RewardID])
	require.Equal(t, StatusApproved, byReward[stocked.RewardID])
	require.Equal(t, 1, f.remaining(t, stocked.RewardID))
	require.Zero(t, f.remaining(t, unlimited.RewardID))
}

func TestOrchestrator_Preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	streak := f.createEvent(t, mustCondition(t, condition.LoginStreak, condition.Details{TargetCount: 7}))
	rw := f.createReward(t, streak.EventID, 3)
	noRewards := f.createEvent(t, mustCondition(t, condition.QuestClear, condition.Details{QuestID: "q1"}))

	tests := []struct {
		name    string
		userID  string
		eventID string
		ev      condition.Evidence
		want    errutil.CoreStatus
	}{
		{name: "missing user", userID: "", eventID: streak.EventID, ev: sevenDays(), want: errutil.StatusBadRequest},
		{name: "unknown event", userID: "user-1", eventID: "missing", ev: sevenDays(), want: errutil.StatusNotFound},
		{name: "no rewards", userID: "user-1", eventID: noRewards.EventID, ev: condition.Evidence{ClearedQuests: []string{"q1"}}, want: errutil.StatusBadRequest},
		{name: "missing evidence", userID: "user-1", eventID: streak.EventID, ev: condition.Evidence{}, want: errutil.StatusBadRequest},
		{name: "condition not met", userID: "user-1", eventID: streak.EventID, ev: condition.Evidence{LoginDates: []string{"2025-01-01", "2025-01-03"}}, want: errutil.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.orchestrator.SubmitRequest(ctx, tt.userID, tt.eventID, tt.ev)
			require.Nil(t, got)
			requireStatus(t, err, tt.want)
		})
	}

	require.Equal(t, 3, f.remaining(t, rw.RewardID))
	require.Zero(t, f.countRequests(t))
}

func TestOrchestrator_ConditionNotMetIsWrapped(t *testing.T) {
	f := newFixture(t)

	evt := f.createEvent(t, mustCondition(t, condition.RecommendCount, condition.Details{TargetCount: 3}))
	f.createReward(t, evt.EventID, 1)

	zero := 0
	_, err := f.orchestrator.SubmitRequest(context.Background(), "user-1", evt.EventID, condition.Evidence{RecommendCount: &zero})
	requireStatus(t, err, errutil.StatusBadRequest)
	require.ErrorIs(t, err, ErrConditionNotMet)
}

type claimFunc func(ctx context.Context, tx *gorm.DB, rewardID string) error

func (f claimFunc) ClaimOne(ctx context.Context, tx *gorm.DB, rewardID string) error {
	return f(ctx, tx, rewardID)
}

func TestOrchestrator_RollsBackOnUnexpectedFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	evt := f.createEvent(t, mustCondition(t, condition.LoginStreak, condition.Details{TargetCount: 7}))
	first := f.createReward(t, evt.EventID, 2)
	second := f.createReward(t, evt.EventID, 2)

	f.orchestrator.ledger = claimFunc(func(ctx context.Context, tx *gorm.DB, rewardID string) error {
		if rewardID == second.RewardID {
			return errors.New("disk full")
		}
		return f.ledger.ClaimOne(ctx, tx, rewardID)
	})

	_, err := f.orchestrator.SubmitRequest(ctx, "user-1", evt.EventID, sevenDays())
	requireStatus(t, err, errutil.StatusInternal)

	require.Equal(t, 2, f.remaining(t, first.RewardID))
	require.Equal(t, 2, f.remaining(t, second.RewardID))
	require.Zero(t, f.countRequests(t))
}

func TestOrchestrator_ConcurrentUsersNeverOverclaim(t *testing.T) {
	const users = 10
	f := newContendedFixture(t, users)
	ctx := context.Background()

	evt := f.createEvent(t, mustCondition(t, condition.LoginStreak, condition.Details{TargetCount: 7}))
	rw := f.createReward(t, evt.EventID, 3)

	var approved, failed atomic.Int64
	var g errgroup.Group
	start := make(chan struct{})
	for i := 0; i < users; i++ {
		userID := fmt.Sprintf("user-%d", i)
		g.Go(func() error {
			<-start
			got, err := f.orchestrator.SubmitRequest(ctx, userID, evt.EventID, sevenDays())
			if err != nil {
				return err
			}
			switch got[0].Status {
			case StatusApproved:
				approved.Add(1)
			case StatusFailedNoRemainingReward:
				failed.Add(1)
			}
			return nil
		})
	}
	close(start)
	require.NoError(t, g.Wait())

	require.Equal(t, int64(3), approved.Load())
	require.Equal(t, int64(7), failed.Load())
	require.Zero(t, f.remaining(t, rw.RewardID))
}

func TestOrchestrator_ConcurrentDuplicatesSettleOnce(t *testing.T) {
	const attempts = 5
	f := newContendedFixture(t, attempts)
	ctx := context.Background()

	evt := f.createEvent(t, mustCondition(t, condition.LoginStreak, condition.Details{TargetCount: 7}))
	rw := f.createReward(t, evt.EventID, 10)

	var settled, conflicts atomic.Int64
	var g errgroup.Group
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			<-start
			_, err := f.orchestrator.SubmitRequest(ctx, "user-1", evt.EventID, sevenDays())
			var base errutil.BaseError
			switch {
			case err == nil:
				settled.Add(1)
			case errors.As(err, &base) && base.Code == errutil.StatusConflict:
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	close(start)
	require.NoError(t, g.Wait())

	require.Equal(t, int64(1), settled.Load())
	require.Equal(t, int64(4), conflicts.Load())
	require.Equal(t, 9, f.remaining(t, rw.RewardID))
}
