package models

import (
	"github.com/google/uuid"
)

// PlayerStateDTO représente l'état du joueur exposé aux clients
type PlayerStateDTO struct {
	Name           string         `json:"name"`
	CurrentHP      int            `json:"current_hp"`
	MaxHP          int            `json:"max_hp"`
	EchoCurrent    int            `json:"echo_current"`
	EchoMax        int            `json:"echo_max"`
	Statuses       map[string]int `json:"statuses"` // code -> stacks
	Shield         int            `json:"shield"`
	SpellCooldowns map[string]int `json:"spell_cooldowns"`
	ConsumableUses int            `json:"consumable_uses"`
}

// MonsterStateDTO représente l'état du monstre exposé aux clients
type MonsterStateDTO struct {
	Name      string         `json:"name"`
	CurrentHP int            `json:"current_hp"`
	MaxHP     int            `json:"max_hp"`
	Statuses  map[string]int `json:"statuses"` // code -> stacks
}

// CombatStateDTO représente l'état complet d'un combat pour le client
type CombatStateDTO struct {
	SessionID        uuid.UUID       `json:"session_id"`
	Status           CombatStatus    `json:"status"`
	TurnCount        int             `json:"turn_count"`
	CurrentTurn      string          `json:"current_turn"` // "player" ou "monster"
	Player           PlayerStateDTO  `json:"player"`
	Monster          MonsterStateDTO `json:"monster"`
	AvailableActions []string        `json:"available_actions"`
	Logs             []string        `json:"logs"` // 10 dernières lignes
}

// LootDropDTO représente un objet obtenu en récompense
type LootDropDTO struct {
	ItemID   uuid.UUID `json:"item_id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
}

// CombatRewardDTO représente les récompenses d'une victoire
type CombatRewardDTO struct {
	XPGained   int           `json:"xp_gained"`
	GoldGained int           `json:"gold_gained"`
	LootDrops  []LootDropDTO `json:"loot_drops"`
}

// CombatResultDTO représente le résultat d'une action de combat
type CombatResultDTO struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	State       *CombatStateDTO  `json:"state,omitempty"`
	CombatEnded bool             `json:"combat_ended"`
	Result      string           `json:"result,omitempty"` // "victory", "defeat", "fled"
	Rewards     *CombatRewardDTO `json:"rewards,omitempty"`
}

// Valeurs du champ result d'un CombatResultDTO
const (
	CombatResultVictory = "victory"
	CombatResultDefeat  = "defeat"
	CombatResultFled    = "fled"
)
