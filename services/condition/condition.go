package condition

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Type identifies the kind of completion an event requires.
type Type string

const (
	LoginStreak    Type = "LOGIN_STREAK"
	QuestClear     Type = "QUEST_CLEAR"
	MonsterKill    Type = "MONSTER_KILL"
	RecommendCount Type = "RECOMMEND_COUNT"
	PurchaseCount  Type = "PURCHASE_COUNT"
)

var (
	ErrUnknownConditionType = errors.New("unknown event condition type")
	ErrInvalidEvidence      = errors.New("invalid completion evidence")
	ErrInvalidCondition     = errors.New("invalid event condition")
)

// Condition is the typed rule attached to an event.
type Condition struct {
	Type    Type            `json:"type"`
	Details json.RawMessage `json:"details"`
}

// Details is the union of every per-type payload. Fields not used by a type are ignored.
type Details struct {
	TargetCount int    `json:"targetCount,omitempty"`
	QuestID     string `json:"questId,omitempty"`
	MonsterID   string `json:"monsterId,omitempty"`
}

// MonsterKillCount is one entry of Evidence.KilledMonsters.
type MonsterKillCount struct {
	MonsterID string `json:"monsterId"`
	Count     int    `json:"count"`
}

// Evidence is the caller supplied progress checked against a condition.
type Evidence struct {
	LoginDates     []string           `json:"loginDates,omitempty"`
	ClearedQuests  []string           `json:"clearedQuests,omitempty"`
	KilledMonsters []MonsterKillCount `json:"killedMonsters,omitempty"`
	RecommendCount *int               `json:"recommendCount,omitempty"`
	PurchaseCount  *int               `json:"purchaseCount,omitempty"`
}

// ParseDetails decodes the raw details payload.
func (c Condition) ParseDetails() (Details, error) {
	var d Details
	if len(c.Details) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(c.Details, &d); err != nil {
		return d, fmt.Errorf("%w: details: %v", ErrInvalidCondition, err)
	}
	return d, nil
}

// Validate reports whether the condition can be evaluated at all.
func (c Condition) Validate() error {
	if _, err := Lookup(c.Type); err != nil {
		return err
	}

	d, err := c.ParseDetails()
	if err != nil {
		return err
	}

	switch c.Type {
	case QuestClear:
		if strings.TrimSpace(d.QuestID) == "" {
			return fmt.Errorf("%w: questId is required", ErrInvalidCondition)
		}
	case MonsterKill:
		if strings.TrimSpace(d.MonsterID) == "" {
			return fmt.Errorf("%w: monsterId is required", ErrInvalidCondition)
		}
		fallthrough
	default:
		if d.TargetCount <= 0 {
			return fmt.Errorf("%w: targetCount must be positive", ErrInvalidCondition)
		}
	}
	return nil
}

// Evaluate resolves the evaluator for the condition type and runs it.
func (c Condition) Evaluate(ev Evidence) (bool, error) {
	eval, err := Lookup(c.Type)
	if err != nil {
		return false, err
	}
	d, err := c.ParseDetails()
	if err != nil {
		return false, err
	}
	return eval(d, ev)
}
