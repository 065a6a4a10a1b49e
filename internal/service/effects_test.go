package service

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combat/internal/models"
)

func damageEffect(formula, damageType string) models.EffectPayload {
	return models.EffectPayload{
		Opcode: "damage",
		Params: models.EffectParams{"formula": formula, "damage_type": damageType},
	}
}

func TestRunEffects_ExecutesInOrder(t *testing.T) {
	b := newDuelBattle(halfSource{})

	effects := []models.EffectPayload{
		{
			Opcode: "damage",
			Params: models.EffectParams{"formula": "10", "damage_type": "TRUE", "label": "second"},
			Order:  2,
		},
		{
			Opcode: "damage",
			Params: models.EffectParams{"formula": "5", "damage_type": "TRUE", "label": "first"},
			Order:  1,
		},
	}

	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	assert.Equal(t, 85, b.Monster.CurrentHP)
	require.Len(t, b.Logs, 2)
	assert.Contains(t, b.Logs[0].Message, "first")
	assert.Contains(t, b.Logs[1].Message, "second")
}

func TestRunEffects_SkipsMissingAndUnknownOpcodes(t *testing.T) {
	b := newDuelBattle(halfSource{})

	effects := []models.EffectPayload{
		{Opcode: ""},
		{Opcode: "teleport"},
		damageEffect("10", "TRUE"),
	}

	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	// Bad opcodes are logged and skipped, the rest of the list still runs.
	assert.Equal(t, 90, b.Monster.CurrentHP)
	messages := b.RecentLogMessages(10)
	assert.Contains(t, messages, "[WARN] Effect missing opcode")
	assert.Contains(t, messages, "[WARN] Unknown opcode: teleport")
}

func TestRunEffects_HandlerErrorAbortsTheAction(t *testing.T) {
	RegisterEffect("always_fails", func(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
		return errors.New("boom")
	})

	b := newDuelBattle(halfSource{})
	effects := []models.EffectPayload{
		{Opcode: "always_fails", Order: 1},
		damageEffect("10", "TRUE"),
	}

	err := RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "effect always_fails: boom")
	assert.Equal(t, 100, b.Monster.CurrentHP, "effects after the failure never run")
	assert.Contains(t, b.RecentLogMessages(5), "[ERROR] Effect always_fails failed: boom")
}

func TestRegisteredOpcodes(t *testing.T) {
	for _, opcode := range []string{
		"damage", "heal", "lifesteal", "apply_status", "remove_status",
		"modify_stat", "steal_stat", "shield", "build_gauge", "consume_gauge",
		"set_gauge", "if_condition", "execute_if_low_hp",
	} {
		assert.True(t, IsOpcodeRegistered(opcode), opcode)
	}
	assert.False(t, IsOpcodeRegistered("teleport"))
	assert.Contains(t, RegisteredOpcodes(), "damage")
}

func TestEffectDamage_DefaultsToPhysicalAndRecordsLastDamage(t *testing.T) {
	player := newTestPlayer("Kael", models.StatsBlock{MaxHP: 100, AD: 20})
	monster := newTestMonster("Ironhide", models.StatsBlock{MaxHP: 100, Armor: 100})
	b := newTestBattle(player, monster, halfSource{})

	effects := []models.EffectPayload{{
		Opcode: "damage",
		Params: models.EffectParams{"formula": "40"},
	}}
	require.NoError(t, RunEffects(b, &player.CombatEntity, &monster.CombatEntity, effects))

	assert.Equal(t, 80, monster.CurrentHP, "armor 100 halves the hit")

	require.NotNil(t, b.LastDamage)
	assert.Equal(t, 40, b.LastDamage.RawDamage)
	assert.Equal(t, 20, b.LastDamage.MitigatedDamage)
	assert.Equal(t, 20, b.LastDamage.FinalDamage)
	assert.Equal(t, models.DamageTypePhysical, b.LastDamage.DamageType)
}

func TestEffectDamage_VarianceStaysInBand(t *testing.T) {
	for seed := int64(0); seed < 30; seed++ {
		monster := newTestMonster("Dummy", models.StatsBlock{MaxHP: 1000})
		player := newTestPlayer("Kael", models.StatsBlock{MaxHP: 100})
		b := newTestBattle(player, monster, rand.NewSource(seed))

		effects := []models.EffectPayload{{
			Opcode: "damage",
			Params: models.EffectParams{"formula": "100", "damage_type": "TRUE", "variance": 0.2},
		}}
		require.NoError(t, RunEffects(b, &player.CombatEntity, &monster.CombatEntity, effects))

		dealt := 1000 - monster.CurrentHP
		assert.GreaterOrEqual(t, dealt, 80)
		assert.Less(t, dealt, 120)
	}
}

func TestEffectDamagePercentMaxHP(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Monster.MaxHP = 200
	b.Monster.CurrentHP = 200

	effects := []models.EffectPayload{{
		Opcode: "damage_percent_max_hp",
		Params: models.EffectParams{"percent": 0.25},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	assert.Equal(t, 150, b.Monster.CurrentHP, "25% of max HP as true damage")
}

func TestEffectDamagePercentMissingHP(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Monster.CurrentHP = 40

	effects := []models.EffectPayload{{
		Opcode: "damage_percent_missing_hp",
		Params: models.EffectParams{"percent": 0.5, "damage_type": "TRUE"},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	// 60 missing HP, half of it dealt on top.
	assert.Equal(t, 10, b.Monster.CurrentHP)
}

func TestEffectHealVariants(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Player.CurrentHP = 40

	heal := []models.EffectPayload{{Opcode: "heal", Params: models.EffectParams{"formula": "20"}}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Player.CombatEntity, heal))
	assert.Equal(t, 60, b.Player.CurrentHP)

	percentMax := []models.EffectPayload{{Opcode: "heal_percent_max_hp", Params: models.EffectParams{"percent": 0.1}}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Player.CombatEntity, percentMax))
	assert.Equal(t, 70, b.Player.CurrentHP)

	// 30 missing, 20% of it recovered.
	percentMissing := []models.EffectPayload{{Opcode: "heal_percent_missing_hp", Params: models.EffectParams{}}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Player.CombatEntity, percentMissing))
	assert.Equal(t, 76, b.Player.CurrentHP)
}

func TestEffectLifesteal_FeedsOnLastDamage(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Player.CurrentHP = 50

	effects := []models.EffectPayload{
		damageEffect("40", "TRUE"),
		{Opcode: "lifesteal", Params: models.EffectParams{"percent": 0.5}},
	}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	assert.Equal(t, 60, b.Monster.CurrentHP)
	assert.Equal(t, 70, b.Player.CurrentHP, "half of the 40 dealt is drained back")
}

func TestEffectLifesteal_NoPriorDamageIsNoOp(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Player.CurrentHP = 50

	effects := []models.EffectPayload{{Opcode: "lifesteal", Params: models.EffectParams{"percent": 0.5}}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	assert.Equal(t, 50, b.Player.CurrentHP)
	assert.Empty(t, b.Logs)
}

func TestEffectApplyStatus_ChanceGates(t *testing.T) {
	b := newDuelBattle(halfSource{})

	sure := []models.EffectPayload{{
		Opcode: "apply_status",
		Params: models.EffectParams{"status_code": "BURN", "duration_turns": 3, "stacks": 2},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, sure))

	require.True(t, b.Monster.HasStatus("BURN"))
	assert.Equal(t, 3, b.Monster.Statuses["BURN"].RemainingTurns)
	assert.Equal(t, 2, b.Monster.Statuses["BURN"].Stacks)
	assert.Contains(t, b.RecentLogMessages(5), "Training Dummy gains BURN (3 turns, 2 stacks)")

	never := []models.EffectPayload{{
		Opcode: "apply_status",
		Params: models.EffectParams{"status_code": "FREEZE", "chance": "0"},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, never))

	assert.False(t, b.Monster.HasStatus("FREEZE"))
	assert.Contains(t, b.RecentLogMessages(5), "Training Dummy resisted FREEZE")
}

func TestEffectApplyStatus_ChanceIsAFormula(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Monster.CurrentHP = 100

	// Condition false evaluates to 0, clamped into a guaranteed resist.
	conditional := []models.EffectPayload{{
		Opcode: "apply_status",
		Params: models.EffectParams{"status_code": "DOOM", "chance": "T_HP_PERCENT < 0.5"},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, conditional))
	assert.False(t, b.Monster.HasStatus("DOOM"))

	b.Monster.CurrentHP = 30
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, conditional))
	assert.True(t, b.Monster.HasStatus("DOOM"))
}

func TestEffectApplyStatus_MissingCodeIsLoggedAndSkipped(t *testing.T) {
	b := newDuelBattle(halfSource{})

	effects := []models.EffectPayload{{Opcode: "apply_status", Params: models.EffectParams{}}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	assert.Contains(t, b.RecentLogMessages(5), "[WARN] apply_status missing status_code")
}

func TestEffectRemoveStatus_NamedStatus(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Monster.AddStatus("BURN", 3, 1, 0, nil)

	effects := []models.EffectPayload{{
		Opcode: "remove_status",
		Params: models.EffectParams{"status_code": "BURN"},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))
	assert.False(t, b.Monster.HasStatus("BURN"))
	assert.Contains(t, b.RecentLogMessages(5), "Training Dummy lost BURN")

	// Removing an absent status is a logged no-op, never an error.
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))
	assert.Contains(t, b.RecentLogMessages(5), "Training Dummy doesn't have BURN")
}

func TestEffectRemoveStatus_AllDebuffsUsesDefinitions(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.RegisterStatusDefinitions([]*models.StatusDefinition{
		{Code: "BURN", IsDebuff: true},
		{Code: "POISON", IsDebuff: true},
		{Code: "BLESS", IsDebuff: false},
	})
	b.Monster.AddStatus("BURN", 3, 1, 0, nil)
	b.Monster.AddStatus("BLESS", 3, 1, 0, nil)
	b.Monster.AddStatus("POISON", 3, 1, 0, nil)
	b.Monster.AddStatus("MYSTERY", 3, 1, 0, nil)

	cleanse := []models.EffectPayload{{
		Opcode: "remove_status",
		Params: models.EffectParams{"all_debuffs": true},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, cleanse))

	assert.False(t, b.Monster.HasStatus("BURN"))
	assert.False(t, b.Monster.HasStatus("POISON"))
	assert.True(t, b.Monster.HasStatus("BLESS"))
	assert.True(t, b.Monster.HasStatus("MYSTERY"), "codes without a definition are left alone")
	assert.Contains(t, b.RecentLogMessages(5), "Training Dummy cleansed: BURN, POISON")

	strip := []models.EffectPayload{{
		Opcode: "remove_status",
		Params: models.EffectParams{"all_buffs": true},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, strip))

	assert.False(t, b.Monster.HasStatus("BLESS"))
	assert.Contains(t, b.RecentLogMessages(5), "Training Dummy lost buffs: BLESS")
}

func TestEffectExtendStatus(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Monster.AddStatus("BURN", 2, 1, 0, nil)

	effects := []models.EffectPayload{{
		Opcode: "extend_status",
		Params: models.EffectParams{"status_code": "BURN", "duration_turns": 2},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))
	assert.Equal(t, 4, b.Monster.Statuses["BURN"].RemainingTurns)

	// Absent status: nothing happens, nothing is logged.
	logCount := len(b.Logs)
	missing := []models.EffectPayload{{
		Opcode: "extend_status",
		Params: models.EffectParams{"status_code": "FREEZE"},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, missing))
	assert.Len(t, b.Logs, logCount)
}

func TestEffectTransferStatus_MovesModifierDelta(t *testing.T) {
	b := newDuelBattle(halfSource{})
	playerAD := b.Player.Stats.AD
	monsterAD := b.Monster.Stats.AD

	b.Player.AddStatus("STAT_AD_-5", 2, 1, 0, &models.StatModifier{Stat: models.StatAD, Delta: -5})
	require.Equal(t, playerAD-5, b.Player.Stats.AD)

	effects := []models.EffectPayload{{
		Opcode: "transfer_status",
		Params: models.EffectParams{"status_code": "STAT_AD_-5"},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	assert.False(t, b.Player.HasStatus("STAT_AD_-5"))
	assert.True(t, b.Monster.HasStatus("STAT_AD_-5"))
	assert.Equal(t, playerAD, b.Player.Stats.AD, "the debuff leaves with its delta")
	assert.Equal(t, monsterAD-5, b.Monster.Stats.AD)
	assert.Contains(t, b.RecentLogMessages(5), "STAT_AD_-5 transferred from Kael to Training Dummy")
}

func TestEffectModifyStat_BuffAndNoOpOnZero(t *testing.T) {
	b := newDuelBattle(halfSource{})
	baseArmor := b.Monster.Stats.Armor

	buff := []models.EffectPayload{{
		Opcode: "modify_stat",
		Params: models.EffectParams{"stat": "ARMOR", "formula": "10", "duration_turns": 3},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, buff))

	assert.Equal(t, baseArmor+10, b.Monster.Stats.Armor)
	require.True(t, b.Monster.HasStatus("STAT_ARMOR_+10"))
	assert.Equal(t, 3, b.Monster.Statuses["STAT_ARMOR_+10"].RemainingTurns)
	assert.Contains(t, b.RecentLogMessages(5), "Training Dummy gains buff: ARMOR +10 for 3 turns")

	// A zero amount creates no status at all.
	logCount := len(b.Logs)
	zero := []models.EffectPayload{{
		Opcode: "modify_stat",
		Params: models.EffectParams{"stat": "AD", "formula": "0"},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, zero))
	assert.False(t, b.Monster.HasStatus("STAT_AD_+0"))
	assert.Len(t, b.Logs, logCount)
}

func TestEffectModifyStat_DebuffLabel(t *testing.T) {
	b := newDuelBattle(halfSource{})

	debuff := []models.EffectPayload{{
		Opcode: "modify_stat",
		Params: models.EffectParams{"stat": "AD", "formula": "0 - 5", "duration_turns": 2, "is_debuff": true},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, debuff))

	assert.True(t, b.Monster.HasStatus("STAT_AD_-5"))
	assert.Contains(t, b.RecentLogMessages(5), "Training Dummy gains debuff: AD -5 for 2 turns")
}

func TestEffectStealStat_Symmetric(t *testing.T) {
	b := newDuelBattle(halfSource{})
	playerAD := b.Player.Stats.AD
	monsterAD := b.Monster.Stats.AD

	effects := []models.EffectPayload{{
		Opcode: "steal_stat",
		Params: models.EffectParams{"stat": "AD", "amount": 10, "duration_turns": 2},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	assert.Equal(t, playerAD+10, b.Player.Stats.AD)
	assert.Equal(t, monsterAD-10, b.Monster.Stats.AD)
	assert.True(t, b.Player.HasStatus("STAT_AD_+10"))
	assert.True(t, b.Monster.HasStatus("STAT_AD_-10"))
	assert.Contains(t, b.RecentLogMessages(5), "Kael steals 10 AD from Training Dummy for 2 turns")
}

func TestEffectShield_Accumulates(t *testing.T) {
	b := newDuelBattle(halfSource{})

	shield := []models.EffectPayload{{Opcode: "shield", Params: models.EffectParams{"formula": "40"}}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Player.CombatEntity, shield))
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Player.CombatEntity, shield))

	assert.Equal(t, 80, b.Player.Shield())
	assert.Contains(t, b.RecentLogMessages(5), "Kael gains 40 shield (total: 80)")

	// Non positive amounts never log a gain.
	logCount := len(b.Logs)
	empty := []models.EffectPayload{{Opcode: "shield", Params: models.EffectParams{"formula": "0"}}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Player.CombatEntity, empty))
	assert.Len(t, b.Logs, logCount)
}

func TestEffectRemoveShield(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Monster.SetGauge(models.GaugeShield, 50)

	partial := []models.EffectPayload{{
		Opcode: "remove_shield",
		Params: models.EffectParams{"amount": 15},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, partial))
	assert.Equal(t, 35, b.Monster.Shield())

	full := []models.EffectPayload{{Opcode: "remove_shield", Params: models.EffectParams{}}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, full))
	assert.Equal(t, 0, b.Monster.Shield())
	assert.Contains(t, b.RecentLogMessages(5), "Training Dummy's shield removed (35)")
}

func TestEffectBuildGauge_EchoGoesThroughTheGaugeRules(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Player.EchoCurrent = 90

	gain := []models.EffectPayload{{
		Opcode: "build_gauge",
		Params: models.EffectParams{"amount": 30},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, gain))

	// Only 10 points of room: the gain is truncated and logged as such.
	assert.Equal(t, 100, b.Player.EchoCurrent)
	require.NotEmpty(t, b.Logs)
	last := b.Logs[len(b.Logs)-1]
	assert.Equal(t, "Kael gains 10 Echo (total: 100)", last.Message)
	assert.Equal(t, 10, last.EchoGained)

	drain := []models.EffectPayload{{
		Opcode: "build_gauge",
		Params: models.EffectParams{"amount": -40},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, drain))
	assert.Equal(t, 60, b.Player.EchoCurrent)
	assert.Contains(t, b.RecentLogMessages(3), "Kael loses 40 Echo (total: 60)")
}

func TestEffectBuildGauge_FormulaOverridesAmount(t *testing.T) {
	b := newDuelBattle(halfSource{})

	effects := []models.EffectPayload{{
		Opcode: "build_gauge",
		Params: models.EffectParams{"amount": 1, "formula": "5 * 4"},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	assert.Equal(t, 20, b.Player.EchoCurrent)
}

func TestEffectBuildGauge_NamedGaugeAndStatusGate(t *testing.T) {
	b := newDuelBattle(halfSource{})

	gated := []models.EffectPayload{{
		Opcode: "build_gauge",
		Params: models.EffectParams{
			"gauge": "fury", "amount": 25, "target_self": true,
			"only_if_target_has_status": "BURN",
		},
	}}

	require.NoError(t, RunEffects(b, &b.Monster.CombatEntity, &b.Player.CombatEntity, gated))
	assert.Equal(t, 0, b.Monster.Gauge("fury"), "gate closed without the status")

	b.Player.AddStatus("BURN", 2, 1, 0, nil)
	require.NoError(t, RunEffects(b, &b.Monster.CombatEntity, &b.Player.CombatEntity, gated))
	assert.Equal(t, 25, b.Monster.Gauge("fury"))
	assert.Contains(t, b.RecentLogMessages(3), "Training Dummy gains 25 fury (total: 25)")
}

func TestEffectConsumeGauge_RequireFull(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Player.EchoCurrent = 50

	strict := []models.EffectPayload{{
		Opcode: "consume_gauge",
		Params: models.EffectParams{"amount": 80},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, strict))

	assert.Equal(t, 50, b.Player.EchoCurrent, "require_full refuses a partial spend")
	assert.Contains(t, b.RecentLogMessages(3), "Not enough Echo (50/80)")

	loose := []models.EffectPayload{{
		Opcode: "consume_gauge",
		Params: models.EffectParams{"amount": 80, "require_full": false},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, loose))

	assert.Equal(t, 0, b.Player.EchoCurrent)
	assert.Contains(t, b.RecentLogMessages(3), "Kael consumed 50 Echo")
}

func TestEffectSetGauge_EchoClampsToGauge(t *testing.T) {
	b := newDuelBattle(halfSource{})

	overflow := []models.EffectPayload{{
		Opcode: "set_gauge",
		Params: models.EffectParams{"value": 500},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, overflow))
	assert.Equal(t, 100, b.Player.EchoCurrent)
	assert.Contains(t, b.RecentLogMessages(3), "Kael's Echo set to 100")

	named := []models.EffectPayload{{
		Opcode: "set_gauge",
		Params: models.EffectParams{"gauge": "fury", "value": 7},
	}}
	require.NoError(t, RunEffects(b, &b.Monster.CombatEntity, &b.Player.CombatEntity, named))
	assert.Equal(t, 7, b.Monster.Gauge("fury"))
}

func TestEffectIfCondition_ExactlyOneBranchRuns(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Monster.CurrentHP = 40

	effects := []models.EffectPayload{{
		Opcode: "if_condition",
		Params: models.EffectParams{
			"condition": "T_HP_PERCENT < 0.5",
			"then_effects": []interface{}{
				map[string]interface{}{
					"opcode": "apply_status",
					"params": map[string]interface{}{"status_code": "MARKED"},
				},
			},
			"else_effects": []interface{}{
				map[string]interface{}{
					"opcode": "apply_status",
					"params": map[string]interface{}{"status_code": "GUARDED"},
				},
			},
		},
	}}

	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))
	assert.True(t, b.Monster.HasStatus("MARKED"))
	assert.False(t, b.Monster.HasStatus("GUARDED"))

	// Same effect on a healthy target takes the other branch.
	b.Monster.RemoveStatus("MARKED")
	b.Monster.CurrentHP = 100
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))
	assert.False(t, b.Monster.HasStatus("MARKED"))
	assert.True(t, b.Monster.HasStatus("GUARDED"))
}

func TestEffectIfCondition_MissingBranchIsNoOp(t *testing.T) {
	b := newDuelBattle(halfSource{})

	effects := []models.EffectPayload{{
		Opcode: "if_condition",
		Params: models.EffectParams{"condition": "0"},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))
	assert.Empty(t, b.Logs)
}

func TestEffectExecuteIfLowHP(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Monster.CurrentHP = 15

	effects := []models.EffectPayload{{Opcode: "execute_if_low_hp", Params: models.EffectParams{}}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	assert.Equal(t, 0, b.Monster.CurrentHP, "15% HP sits exactly on the default threshold")
	assert.Contains(t, b.RecentLogMessages(3), "Kael executes Training Dummy!")
}

func TestEffectExecuteIfLowHP_AboveThreshold(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Monster.CurrentHP = 16

	effects := []models.EffectPayload{{Opcode: "execute_if_low_hp", Params: models.EffectParams{}}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	assert.Equal(t, 16, b.Monster.CurrentHP)
	assert.Empty(t, b.Logs)
}

func TestEffectExecuteIfLowHP_SparesBossesByDefault(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Monster.IsBoss = true
	b.Monster.CurrentHP = 10

	effects := []models.EffectPayload{{Opcode: "execute_if_low_hp", Params: models.EffectParams{}}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))
	assert.Equal(t, 10, b.Monster.CurrentHP)

	lethal := []models.EffectPayload{{
		Opcode: "execute_if_low_hp",
		Params: models.EffectParams{"ignore_bosses": false},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, lethal))
	assert.Equal(t, 0, b.Monster.CurrentHP)
}

func TestEffectBonusDamageIfStatus(t *testing.T) {
	b := newDuelBattle(halfSource{})

	effects := []models.EffectPayload{{
		Opcode: "bonus_damage_if_target_has_status",
		Params: models.EffectParams{
			"status_code": "BURN", "formula": "20", "damage_type": "TRUE", "consume_status": true,
		},
	}}

	// Without the status the rider does nothing.
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))
	assert.Equal(t, 100, b.Monster.CurrentHP)

	b.Monster.AddStatus("BURN", 2, 1, 0, nil)
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	assert.Equal(t, 80, b.Monster.CurrentHP)
	assert.False(t, b.Monster.HasStatus("BURN"), "consume_status burns the mark")
}

func TestEffectBonusDamagePerStack(t *testing.T) {
	b := newDuelBattle(halfSource{})
	b.Monster.AddStatus("POISON", 3, 3, 0, nil)

	effects := []models.EffectPayload{{
		Opcode: "bonus_damage_per_stack",
		Params: models.EffectParams{
			"status_code": "POISON", "damage_per_stack": 15, "damage_type": "TRUE", "consume_stacks": true,
		},
	}}
	require.NoError(t, RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, effects))

	assert.Equal(t, 55, b.Monster.CurrentHP, "3 stacks at 15 damage each")
	assert.False(t, b.Monster.HasStatus("POISON"))
}
