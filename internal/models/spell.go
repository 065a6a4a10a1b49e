package models

import (
	"github.com/google/uuid"
)

// SpellType définit les catégories de sorts
type SpellType string

const (
	SpellTypeBasic    SpellType = "BASIC"
	SpellTypeSkill    SpellType = "SKILL"
	SpellTypeUltimate SpellType = "ULTIMATE"
)

// Spell représente un sort porté par une arme équipée.
// Contenu statique : jamais modifié pendant un combat.
type Spell struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	SpellType     SpellType       `json:"spell_type" db:"spell_type"`
	CooldownTurns int             `json:"cooldown_turns" db:"cooldown_turns"`
	EchoCost      int             `json:"echo_cost" db:"echo_cost"`
	Effects       []EffectPayload `json:"effects" db:"-"`
}

// IsUltimate indique si le sort consomme la jauge d'Echo
func (s *Spell) IsUltimate() bool {
	return s.SpellType == SpellTypeUltimate
}
