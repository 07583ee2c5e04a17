package condition

import "fmt"

var registry = map[Type]Evaluator{
	LoginStreak:    evaluateLoginStreak,
	QuestClear:     evaluateQuestClear,
	MonsterKill:    evaluateMonsterKill,
	RecommendCount: evaluateRecommendCount,
	PurchaseCount:  evaluatePurchaseCount,
}

// Lookup returns the evaluator registered for t.
func Lookup(t Type) (Evaluator, error) {
	eval, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConditionType, t)
	}
	return eval, nil
}

// Types lists the registered condition types.
func Types() []Type {
	return []Type{LoginStreak, QuestClear, MonsterKill, RecommendCount, PurchaseCount}
}
