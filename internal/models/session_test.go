package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCombatSession_Defaults(t *testing.T) {
	playerID := uuid.New()
	blueprintID := uuid.New()

	session := NewCombatSession(playerID, blueprintID, 5, 42)

	assert.Equal(t, CombatStatusPending, session.Status)
	assert.Equal(t, 0, session.TurnCount)
	assert.Equal(t, TurnEntityPlayer, session.CurrentTurnEntity)
	assert.Equal(t, int64(42), session.RngSeed)
	assert.Equal(t, int64(1), session.Version)
	assert.NotNil(t, session.PlayerStatuses)
	assert.NotNil(t, session.MonsterGauges)
	assert.Nil(t, session.EndedAt)
	assert.True(t, session.IsActive())
}

func TestCombatSession_StartAndTurnAlternation(t *testing.T) {
	session := NewCombatSession(uuid.New(), uuid.New(), 1, 1)

	session.Start()
	assert.Equal(t, CombatStatusPlayerTurn, session.Status)
	assert.Equal(t, 1, session.TurnCount)
	assert.Equal(t, TurnEntityPlayer, session.CurrentTurnEntity)

	// Player hands over: same turn number, monster acts.
	session.NextTurn()
	assert.Equal(t, CombatStatusMonsterTurn, session.Status)
	assert.Equal(t, TurnEntityMonster, session.CurrentTurnEntity)
	assert.Equal(t, 1, session.TurnCount)

	// Back to the player: the turn counter advances.
	session.NextTurn()
	assert.Equal(t, CombatStatusPlayerTurn, session.Status)
	assert.Equal(t, TurnEntityPlayer, session.CurrentTurnEntity)
	assert.Equal(t, 2, session.TurnCount)

	session.NextTurn()
	session.NextTurn()
	assert.Equal(t, 3, session.TurnCount)
}

func TestCombatSession_TerminalStates(t *testing.T) {
	tests := []struct {
		name string
		end  func(*CombatSession)
		want CombatStatus
	}{
		{name: "victory", end: (*CombatSession).EndVictory, want: CombatStatusVictory},
		{name: "defeat", end: (*CombatSession).EndDefeat, want: CombatStatusDefeat},
		{name: "abandoned", end: (*CombatSession).Abandon, want: CombatStatusAbandoned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewCombatSession(uuid.New(), uuid.New(), 1, 1)
			session.Start()

			tt.end(session)

			assert.Equal(t, tt.want, session.Status)
			require.NotNil(t, session.EndedAt)
			assert.True(t, session.IsTerminal())
			assert.False(t, session.IsActive())
		})
	}
}

func TestMarshalStatuses_RoundTripKeepsOrderAndModifiers(t *testing.T) {
	statuses := map[string]*StatusInstance{
		"BURN": {RemainingTurns: 3, Stacks: 2, Seq: 2},
		"STAT_AD_-5": {
			RemainingTurns: 1,
			Stacks:         1,
			Seq:            1,
			Modifier:       &StatModifier{Stat: StatAD, Delta: -5},
		},
	}

	data, err := MarshalStatuses(statuses)
	require.NoError(t, err)

	restored, err := UnmarshalStatuses(data)
	require.NoError(t, err)
	require.Len(t, restored, 2)

	assert.Equal(t, 3, restored["BURN"].RemainingTurns)
	assert.Equal(t, 2, restored["BURN"].Stacks)
	require.NotNil(t, restored["STAT_AD_-5"].Modifier)
	assert.Equal(t, -5, restored["STAT_AD_-5"].Modifier.Delta)

	// Application order survives persistence.
	assert.Equal(t, []string{"STAT_AD_-5", "BURN"}, OrderedStatusCodes(restored))
}

func TestMarshalStatuses_NilAndEmptyInputs(t *testing.T) {
	data, err := MarshalStatuses(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	restored, err := UnmarshalStatuses(nil)
	require.NoError(t, err)
	assert.NotNil(t, restored)
	assert.Empty(t, restored)

	_, err = UnmarshalStatuses([]byte("not json"))
	assert.Error(t, err)
}

func TestStatModifierCode(t *testing.T) {
	assert.Equal(t, "STAT_AD_+10", StatModifierCode(StatAD, 10))
	assert.Equal(t, "STAT_ARMOR_-5", StatModifierCode(StatArmor, -5))
	assert.Equal(t, "STAT_SPEED_+0", StatModifierCode(StatSpeed, 0))
}

func TestStatsBlock_ScaleToLevel(t *testing.T) {
	base := StatsBlock{MaxHP: 50, AD: 8, Armor: 2, CritChance: 0.05}
	perLevel := StatsBlock{MaxHP: 12, AD: 3, Armor: 1}

	got := base.ScaleToLevel(perLevel, 4)

	assert.Equal(t, 50+48, got.MaxHP)
	assert.Equal(t, 8+12, got.AD)
	assert.Equal(t, 2+4, got.Armor)
	assert.InDelta(t, 0.05, got.CritChance, 1e-9)
}
