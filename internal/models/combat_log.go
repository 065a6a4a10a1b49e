package models

import (
	"time"

	"github.com/google/uuid"
)

// Types d'action journalisés dans combat_logs
const (
	ActionTypeBasicAttack = "basic_attack"
	ActionTypeSpell       = "spell"
	ActionTypeConsumable  = "consumable"
	ActionTypeFlee        = "flee"
	ActionTypeStatusTick  = "status_tick"
	ActionTypeSystem      = "system"
)

// CombatLogEntry représente une entrée structurée du journal de combat
type CombatLogEntry struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	SessionID   uuid.UUID   `json:"session_id" db:"session_id"`
	Turn        int         `json:"turn" db:"turn"`
	Actor       string      `json:"actor" db:"actor"` // "player" ou "monster"
	ActionType  string      `json:"action_type" db:"action_type"`
	SpellID     *uuid.UUID  `json:"spell_id,omitempty" db:"spell_id"`
	Damage      int         `json:"damage" db:"damage"`
	DamageType  *DamageType `json:"damage_type,omitempty" db:"damage_type"`
	WasCritical bool        `json:"was_critical" db:"was_critical"`
	EchoGained  int         `json:"echo_gained" db:"echo_gained"`
	Message     string      `json:"message" db:"message"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// NewCombatLogEntry construit une entrée de journal pour la session donnée
func NewCombatLogEntry(sessionID uuid.UUID, turn int, actor, actionType, message string) *CombatLogEntry {
	return &CombatLogEntry{
		ID:         uuid.New(),
		SessionID:  sessionID,
		Turn:       turn,
		Actor:      actor,
		ActionType: actionType,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}
}
