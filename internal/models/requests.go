package models

import (
	"fmt"

	"github.com/google/uuid"
)

// StartCombatRequest représente une demande de démarrage de combat
type StartCombatRequest struct {
	MonsterBlueprintID uuid.UUID `json:"monster_blueprint_id" binding:"required"`
	MonsterLevel       *int      `json:"monster_level,omitempty"`
}

// Validate vérifie la cohérence de la demande
func (r *StartCombatRequest) Validate() error {
	if r.MonsterBlueprintID == uuid.Nil {
		return fmt.Errorf("monster_blueprint_id is required")
	}
	if r.MonsterLevel != nil && (*r.MonsterLevel < 1 || *r.MonsterLevel > 100) {
		return fmt.Errorf("monster_level must be between 1 and 100")
	}
	return nil
}

// CombatActionRequest représente une action du joueur pendant son tour
type CombatActionRequest struct {
	ActionType string     `json:"action_type" binding:"required"`
	SpellID    *uuid.UUID `json:"spell_id,omitempty"`
}

// Validate vérifie le type d'action et ses paramètres
func (r *CombatActionRequest) Validate() error {
	switch r.ActionType {
	case ActionTypeBasicAttack, ActionTypeConsumable:
		return nil
	case ActionTypeSpell:
		if r.SpellID == nil || *r.SpellID == uuid.Nil {
			return fmt.Errorf("spell_id is required for spell actions")
		}
		return nil
	default:
		return fmt.Errorf("invalid action_type: %s", r.ActionType)
	}
}
