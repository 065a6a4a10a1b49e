package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestStartCombatRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     StartCombatRequest
		wantErr string
	}{
		{
			name: "valid without level",
			req:  StartCombatRequest{MonsterBlueprintID: uuid.New()},
		},
		{
			name: "valid with level",
			req:  StartCombatRequest{MonsterBlueprintID: uuid.New(), MonsterLevel: intPtr(10)},
		},
		{
			name:    "missing blueprint",
			req:     StartCombatRequest{},
			wantErr: "monster_blueprint_id is required",
		},
		{
			name:    "level below range",
			req:     StartCombatRequest{MonsterBlueprintID: uuid.New(), MonsterLevel: intPtr(0)},
			wantErr: "monster_level must be between 1 and 100",
		},
		{
			name:    "level above range",
			req:     StartCombatRequest{MonsterBlueprintID: uuid.New(), MonsterLevel: intPtr(101)},
			wantErr: "monster_level must be between 1 and 100",
		},
		{
			name: "level boundaries accepted",
			req:  StartCombatRequest{MonsterBlueprintID: uuid.New(), MonsterLevel: intPtr(100)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestCombatActionRequest_Validate(t *testing.T) {
	spellID := uuid.New()

	tests := []struct {
		name    string
		req     CombatActionRequest
		wantErr string
	}{
		{name: "basic attack", req: CombatActionRequest{ActionType: ActionTypeBasicAttack}},
		{name: "consumable", req: CombatActionRequest{ActionType: ActionTypeConsumable}},
		{name: "spell with id", req: CombatActionRequest{ActionType: ActionTypeSpell, SpellID: &spellID}},
		{
			name:    "spell without id",
			req:     CombatActionRequest{ActionType: ActionTypeSpell},
			wantErr: "spell_id is required for spell actions",
		},
		{
			name:    "spell with nil uuid",
			req:     CombatActionRequest{ActionType: ActionTypeSpell, SpellID: &uuid.Nil},
			wantErr: "spell_id is required for spell actions",
		},
		{
			name:    "flee is not an action payload",
			req:     CombatActionRequest{ActionType: ActionTypeFlee},
			wantErr: "invalid action_type: flee",
		},
		{
			name:    "unknown action",
			req:     CombatActionRequest{ActionType: "dance"},
			wantErr: "invalid action_type: dance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestCombatError_ErrorString(t *testing.T) {
	err := NewNotEnoughEcho(40, 60)
	assert.Equal(t, "NOT_ENOUGH_ECHO: not enough Echo (40/60)", err.Error())
	assert.Equal(t, 400, err.Status)

	assert.Equal(t, 404, NewEntityNotFound("monster blueprint").Status)
	assert.Equal(t, 409, NewConcurrentModification().Status)
	assert.Equal(t, 500, NewInternalError(assert.AnError).Status)
}
