package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combat/internal/models"
)

func aiAbility(name string, priority int, effects ...models.EffectPayload) models.MonsterAbility {
	if len(effects) == 0 {
		effects = []models.EffectPayload{damageEffect("10", "TRUE")}
	}
	return models.MonsterAbility{
		ID:       uuid.New(),
		Name:     name,
		Priority: priority,
		Effects:  effects,
	}
}

func TestSelectMonsterAction_NoAbilitiesFallsBack(t *testing.T) {
	b := newDuelBattle(halfSource{})

	assert.Nil(t, SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity))
}

func TestSelectMonsterAction_FiltersCooldownsAndConditions(t *testing.T) {
	b := newDuelBattle(halfSource{})

	onCooldown := aiAbility("Heavy Slam", 5)
	gated := aiAbility("Finisher", 3)
	gated.ConditionExpr = "T_HP_PERCENT < 0.5"
	b.Monster.Abilities = []models.MonsterAbility{onCooldown, gated}
	b.Monster.SetCooldown(onCooldown.ID, 2)

	// Full-HP target: the slam is cooling down, the finisher's condition
	// fails, so the monster falls back to a basic attack.
	assert.Nil(t, SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity))

	b.Player.CurrentHP = 30
	selected := SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Finisher", selected.Name)
}

func TestSelectMonsterAction_BrokenConditionKeepsAbility(t *testing.T) {
	b := newDuelBattle(halfSource{})

	ability := aiAbility("Glitched Roar", 1)
	ability.ConditionExpr = "NOT_A_KNOWN_VARIABLE > 3"
	b.Monster.Abilities = []models.MonsterAbility{ability}

	// A condition that fails to evaluate must not silently disable the
	// ability.
	selected := SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Glitched Roar", selected.Name)
}

func TestSelectWeighted_PriorityDrivesTheDraw(t *testing.T) {
	b := newDuelBattle(halfSource{})

	heavy := aiAbility("Heavy", 3)
	light := aiAbility("Light", 1)

	// Roll 0.5 on a total weight of 4 lands at 2.0: inside the first
	// ability's bracket when it weighs 3.
	b.Monster.Abilities = []models.MonsterAbility{heavy, light}
	selected := SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Heavy", selected.Name)

	// Same roll with the weights swapped falls past the 1-weight bracket.
	b.Monster.Abilities = []models.MonsterAbility{light, heavy}
	selected = SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Heavy", selected.Name)
}

func TestSelectAggressive_ExecutesLowTargets(t *testing.T) {
	b := newDuelBattle(&rollSource{rolls: []float64{0.95}})
	b.Monster.AIBehavior = models.AIBehaviorAggressive
	b.Monster.Abilities = []models.MonsterAbility{
		aiAbility("Poke", 1),
		aiAbility("Execute", 5),
	}
	b.Player.CurrentHP = 20

	// Below 30% target HP the top priority is forced, no roll involved.
	selected := SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Execute", selected.Name)
}

func TestSelectAggressive_HealthyTargetMixesItUp(t *testing.T) {
	abilities := []models.MonsterAbility{aiAbility("Poke", 1), aiAbility("Execute", 5)}

	// Roll under 0.7 keeps the top priority.
	b := newDuelBattle(&rollSource{rolls: []float64{0.5}})
	b.Monster.AIBehavior = models.AIBehaviorAggressive
	b.Monster.Abilities = abilities
	selected := SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Execute", selected.Name)

	// Roll above 0.7 defers to the weighted draw; 0.9 * 6 = 5.4 lands in
	// the Execute bracket only after Poke's single point.
	b = newDuelBattle(&rollSource{rolls: []float64{0.95, 0.05}})
	b.Monster.AIBehavior = models.AIBehaviorAggressive
	b.Monster.Abilities = abilities
	selected = SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Poke", selected.Name, "weighted draw at 0.05 * 6 = 0.3 picks the first bracket")
}

func TestSelectHealer_HealsWhenHurt(t *testing.T) {
	heal := aiAbility("Healing Chant", 1, models.EffectPayload{
		Opcode: "heal",
		Params: models.EffectParams{"formula": "20"},
	})
	attack := aiAbility("Claw", 5)

	b := newDuelBattle(halfSource{})
	b.Monster.AIBehavior = models.AIBehaviorHealer
	b.Monster.Abilities = []models.MonsterAbility{attack, heal}
	b.Monster.CurrentHP = 60

	selected := SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Healing Chant", selected.Name)

	// At full HP the healer fights like anyone else.
	b.Monster.CurrentHP = 100
	selected = SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Claw", selected.Name)
}

func TestSelectDefensive_ShieldCountsAsProtection(t *testing.T) {
	shield := aiAbility("Stone Skin", 1, models.EffectPayload{
		Opcode: "shield",
		Params: models.EffectParams{"formula": "30"},
	})
	attack := aiAbility("Claw", 5)

	b := newDuelBattle(halfSource{})
	b.Monster.AIBehavior = models.AIBehaviorDefensive
	b.Monster.Abilities = []models.MonsterAbility{attack, shield}
	b.Monster.CurrentHP = 30

	selected := SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Stone Skin", selected.Name)

	// A healer does not treat a shield as a heal.
	b.Monster.AIBehavior = models.AIBehaviorHealer
	b.Monster.CurrentHP = 50
	selected = SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Claw", selected.Name)
}

func TestSelectBalanced_AdaptsToBothHealthBars(t *testing.T) {
	heal := aiAbility("Healing Chant", 1, models.EffectPayload{
		Opcode: "heal",
		Params: models.EffectParams{"formula": "20"},
	})
	execute := aiAbility("Execute", 5)

	// Hurt monster defends itself first.
	b := newDuelBattle(halfSource{})
	b.Monster.AIBehavior = models.AIBehaviorBalanced
	b.Monster.Abilities = []models.MonsterAbility{execute, heal}
	b.Monster.CurrentHP = 25

	selected := SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Healing Chant", selected.Name)

	// Healthy monster against a dying target goes for the kill.
	b.Monster.CurrentHP = 100
	b.Player.CurrentHP = 20
	selected = SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Execute", selected.Name)
}

func TestSelectBoss_EnragesBelowFortyPercent(t *testing.T) {
	abilities := []models.MonsterAbility{
		aiAbility("Swipe", 1),
		aiAbility("Obliterate", 5),
	}

	// Whatever the dice say, a boss under 40% always plays its strongest
	// card.
	for _, roll := range []float64{0.05, 0.5, 0.95} {
		b := newDuelBattle(&rollSource{rolls: []float64{roll}})
		b.Monster.AIBehavior = models.AIBehaviorBoss
		b.Monster.IsBoss = true
		b.Monster.Abilities = abilities
		b.Monster.CurrentHP = 40

		selected := SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
		require.NotNil(t, selected)
		assert.Equal(t, "Obliterate", selected.Name, "roll %v", roll)
	}
}

func TestSelectBoss_MidPhaseLeansAggressive(t *testing.T) {
	abilities := []models.MonsterAbility{
		aiAbility("Swipe", 1),
		aiAbility("Obliterate", 5),
	}

	// Between 40% and 70%: roll under 0.6 forces the top priority.
	b := newDuelBattle(&rollSource{rolls: []float64{0.5}})
	b.Monster.AIBehavior = models.AIBehaviorBoss
	b.Monster.Abilities = abilities
	b.Monster.CurrentHP = 55
	selected := SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Obliterate", selected.Name)

	// Above 70% the boss just plays the weighted mix.
	b = newDuelBattle(&rollSource{rolls: []float64{0.05}})
	b.Monster.AIBehavior = models.AIBehaviorBoss
	b.Monster.Abilities = abilities
	b.Monster.CurrentHP = 100
	selected = SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "Swipe", selected.Name, "0.05 * 6 = 0.3 lands in the first bracket")
}

func TestSortByPriorityDesc_IsStableOnTies(t *testing.T) {
	first := aiAbility("First Declared", 5)
	second := aiAbility("Second Declared", 5)

	b := newDuelBattle(halfSource{})
	b.Monster.AIBehavior = models.AIBehaviorBoss
	b.Monster.Abilities = []models.MonsterAbility{first, second}
	b.Monster.CurrentHP = 10

	selected := SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)
	require.NotNil(t, selected)
	assert.Equal(t, "First Declared", selected.Name)
}
