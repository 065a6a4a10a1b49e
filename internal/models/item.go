package models

import (
	"github.com/google/uuid"
)

// ItemSlot définit les emplacements d'équipement
type ItemSlot string

const (
	ItemSlotWeapon     ItemSlot = "weapon"
	ItemSlotArmor      ItemSlot = "armor"
	ItemSlotTrinket    ItemSlot = "trinket"
	ItemSlotConsumable ItemSlot = "consumable"
)

// ItemBlueprint représente la définition statique d'un objet équipable
type ItemBlueprint struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Slot        ItemSlot  `json:"slot" db:"slot"`

	// Contribution aux stats : base + progression par niveau d'objet (JSONB)
	BaseStats     StatsBlock `json:"base_stats" db:"-"`
	PerLevelStats StatsBlock `json:"per_level_stats" db:"-"`

	// Armes : sorts embarqués (chargés séparément)
	Spells []Spell `json:"spells,omitempty" db:"-"`

	// Consommables
	ConsumableUses    int             `json:"consumable_uses" db:"consumable_uses"`
	ConsumableEffects []EffectPayload `json:"consumable_effects,omitempty" db:"-"`
}

// EquippedItem associe un blueprint d'objet à son niveau d'amélioration
type EquippedItem struct {
	PlayerID  uuid.UUID `json:"player_id" db:"player_id"`
	ItemID    uuid.UUID `json:"item_id" db:"item_id"`
	Slot      ItemSlot  `json:"slot" db:"slot"`
	ItemLevel int       `json:"item_level" db:"item_level"`

	Item *ItemBlueprint `json:"item,omitempty" db:"-"`
}

// StatsAtLevel calcule la contribution de l'objet à son niveau d'amélioration
func (e *EquippedItem) StatsAtLevel() StatsBlock {
	if e.Item == nil {
		return StatsBlock{}
	}
	return e.Item.BaseStats.ScaleToLevel(e.Item.PerLevelStats, e.ItemLevel)
}

// PlayerProfile représente les champs du joueur lus par le service combat.
// Le CRUD complet du profil appartient au service player.
type PlayerProfile struct {
	ID       uuid.UUID `json:"id" db:"id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Name     string    `json:"name" db:"name"`
	Level    int       `json:"level" db:"level"`
	XP       int64     `json:"xp" db:"xp"`
	Gold     int64     `json:"gold" db:"gold"`
}
