package models

import (
	"github.com/google/uuid"
)

// AIBehavior définit les politiques de sélection d'action des monstres
type AIBehavior string

const (
	AIBehaviorBasic      AIBehavior = "basic"
	AIBehaviorAggressive AIBehavior = "aggressive"
	AIBehaviorDefensive  AIBehavior = "defensive"
	AIBehaviorHealer     AIBehavior = "healer"
	AIBehaviorBalanced   AIBehavior = "balanced"
	AIBehaviorBoss       AIBehavior = "boss"
)

// MonsterBlueprint représente la définition statique d'un type de monstre
type MonsterBlueprint struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	AIBehavior  AIBehavior `json:"ai_behavior" db:"ai_behavior"`
	BaseLevel   int        `json:"base_level" db:"base_level"`
	IsBoss      bool       `json:"is_boss" db:"is_boss"`

	// Stats : base + progression par niveau (colonnes JSONB)
	BaseStats     StatsBlock `json:"base_stats" db:"-"`
	PerLevelStats StatsBlock `json:"per_level_stats" db:"-"`

	// Récompenses
	XPReward      int        `json:"xp_reward" db:"xp_reward"`
	GoldRewardMin int        `json:"gold_reward_min" db:"gold_reward_min"`
	GoldRewardMax int        `json:"gold_reward_max" db:"gold_reward_max"`
	LootTableID   *uuid.UUID `json:"loot_table_id" db:"loot_table_id"`

	// Relations (chargées séparément)
	Abilities []MonsterAbility `json:"abilities,omitempty" db:"-"`
}

// MonsterAbility représente une capacité de monstre.
// Même forme qu'un sort, plus une priorité et une condition d'activation.
type MonsterAbility struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	BlueprintID   uuid.UUID       `json:"blueprint_id" db:"blueprint_id"`
	Name          string          `json:"name" db:"name"`
	CooldownTurns int             `json:"cooldown_turns" db:"cooldown_turns"`
	Priority      int             `json:"priority" db:"priority"`
	ConditionExpr string          `json:"condition_expr" db:"condition_expr"`
	Effects       []EffectPayload `json:"effects" db:"-"`
}

// StatsAtLevel calcule le bloc de stats d'une instance au niveau donné
func (b *MonsterBlueprint) StatsAtLevel(level int) StatsBlock {
	return b.BaseStats.ScaleToLevel(b.PerLevelStats, level)
}
