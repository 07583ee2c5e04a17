package condition

import (
	"fmt"
	"slices"
	"time"
)

// Evaluator decides whether evidence satisfies a condition's details.
// Evaluators are pure; ErrInvalidEvidence is returned when the field they need is absent.
type Evaluator func(d Details, ev Evidence) (bool, error)

var dateLayouts = []string{time.DateOnly, time.RFC3339, time.RFC3339Nano}

func evaluateLoginStreak(d Details, ev Evidence) (bool, error) {
	if len(ev.LoginDates) == 0 {
		return false, fmt.Errorf("%w: loginDates is required", ErrInvalidEvidence)
	}

	days := make([]int64, 0, len(ev.LoginDates))
	for _, raw := range ev.LoginDates {
		day, err := parseDay(raw)
		if err != nil {
			return false, err
		}
		days = append(days, day)
	}
	// a repeated day is a gap of zero and resets the run
	slices.Sort(days)

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			current++
		} else {
			current = 1
		}
		longest = max(longest, current)
	}

	return longest >= d.TargetCount, nil
}

// parseDay returns the calendar day number of a login date.
func parseDay(raw string) (int64, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		y, m, dd := t.Date()
		return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC).Unix() / 86400, nil
	}
	return 0, fmt.Errorf("%w: invalid login date %q", ErrInvalidEvidence, raw)
}

func evaluateQuestClear(d Details, ev Evidence) (bool, error) {
	if len(ev.ClearedQuests) == 0 {
		return false, fmt.Errorf("%w: clearedQuests is required", ErrInvalidEvidence)
	}
	return slices.Contains(ev.ClearedQuests, d.QuestID), nil
}

func evaluateMonsterKill(d Details, ev Evidence) (bool, error) {
	if len(ev.KilledMonsters) == 0 {
		return false, fmt.Errorf("%w: killedMonsters is required", ErrInvalidEvidence)
	}

	count := 0
	for _, k := range ev.KilledMonsters {
		if k.MonsterID == d.MonsterID {
			count = k.Count
			break
		}
	}
	return count >= d.TargetCount, nil
}

func evaluateRecommendCount(d Details, ev Evidence) (bool, error) {
	if ev.RecommendCount == nil {
		return false, fmt.Errorf("%w: recommendCount is required", ErrInvalidEvidence)
	}
	return *ev.RecommendCount >= d.TargetCount, nil
}

func evaluatePurchaseCount(d Details, ev Evidence) (bool, error) {
	if ev.PurchaseCount == nil {
		return false, fmt.Errorf("%w: purchaseCount is required", ErrInvalidEvidence)
	}
	return *ev.PurchaseCount >= d.TargetCount, nil
}
