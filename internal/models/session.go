package models

import (
	"time"

	"github.com/google/uuid"
)

// CombatStatus définit les états de la machine à états d'un combat
type CombatStatus string

const (
	CombatStatusPending     CombatStatus = "PENDING"
	CombatStatusPlayerTurn  CombatStatus = "PLAYER_TURN"
	CombatStatusMonsterTurn CombatStatus = "MONSTER_TURN"
	CombatStatusVictory     CombatStatus = "VICTORY"
	CombatStatusDefeat      CombatStatus = "DEFEAT"
	CombatStatusAbandoned   CombatStatus = "ABANDONED"
)

// Identifiants de camp pour current_turn_entity et les logs
const (
	TurnEntityPlayer  = "player"
	TurnEntityMonster = "monster"
)

// CombatSession représente l'état persisté d'un combat.
// La ligne porte le snapshot complet des deux entités : le runtime est
// reconstruit depuis ces champs à chaque action puis resynchronisé.
type CombatSession struct {
	ID                 uuid.UUID    `json:"id" db:"id"`
	PlayerID           uuid.UUID    `json:"player_id" db:"player_id"`
	MonsterBlueprintID uuid.UUID    `json:"monster_blueprint_id" db:"monster_blueprint_id"`
	MonsterLevel       int          `json:"monster_level" db:"monster_level"`
	Status             CombatStatus `json:"status" db:"status"`
	TurnCount          int          `json:"turn_count" db:"turn_count"`
	CurrentTurnEntity  string       `json:"current_turn_entity" db:"current_turn_entity"`

	// Snapshot joueur
	PlayerCurrentHP      int                        `json:"player_current_hp" db:"player_current_hp"`
	PlayerMaxHP          int                        `json:"player_max_hp" db:"player_max_hp"`
	PlayerEchoCurrent    int                        `json:"player_echo_current" db:"player_echo_current"`
	PlayerEchoMax        int                        `json:"player_echo_max" db:"player_echo_max"`
	PlayerConsumableUses int                        `json:"player_consumable_uses" db:"player_consumable_uses"`
	PlayerStatuses       map[string]*StatusInstance `json:"player_statuses" db:"-"`
	PlayerGauges         map[string]int             `json:"player_gauges" db:"-"`
	PlayerCooldowns      map[string]int             `json:"player_cooldowns" db:"-"`

	// Snapshot monstre
	MonsterCurrentHP int                        `json:"monster_current_hp" db:"monster_current_hp"`
	MonsterMaxHP     int                        `json:"monster_max_hp" db:"monster_max_hp"`
	MonsterStatuses  map[string]*StatusInstance `json:"monster_statuses" db:"-"`
	MonsterGauges    map[string]int             `json:"monster_gauges" db:"-"`
	MonsterCooldowns map[string]int             `json:"monster_cooldowns" db:"-"`

	// Reproductibilité : graine du RNG de ce combat
	RngSeed int64 `json:"rng_seed" db:"rng_seed"`

	// Verrouillage optimiste : incrémenté à chaque écriture
	Version int64 `json:"version" db:"version"`

	StartedAt time.Time  `json:"started_at" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at" db:"ended_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// NewCombatSession crée une session en attente de démarrage
func NewCombatSession(playerID, monsterBlueprintID uuid.UUID, monsterLevel int, rngSeed int64) *CombatSession {
	now := time.Now().UTC()
	return &CombatSession{
		ID:                 uuid.New(),
		PlayerID:           playerID,
		MonsterBlueprintID: monsterBlueprintID,
		MonsterLevel:       monsterLevel,
		Status:             CombatStatusPending,
		TurnCount:          0,
		CurrentTurnEntity:  TurnEntityPlayer,
		PlayerStatuses:     map[string]*StatusInstance{},
		PlayerGauges:       map[string]int{},
		PlayerCooldowns:    map[string]int{},
		MonsterStatuses:    map[string]*StatusInstance{},
		MonsterGauges:      map[string]int{},
		MonsterCooldowns:   map[string]int{},
		RngSeed:            rngSeed,
		Version:            1,
		StartedAt:          now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Start démarre le combat : tour 1, au joueur de jouer
func (s *CombatSession) Start() {
	s.Status = CombatStatusPlayerTurn
	s.TurnCount = 1
	s.CurrentTurnEntity = TurnEntityPlayer
}

// NextTurn alterne le camp actif. Le compteur de tours s'incrémente
// quand la main revient au joueur.
func (s *CombatSession) NextTurn() {
	if s.CurrentTurnEntity == TurnEntityPlayer {
		s.CurrentTurnEntity = TurnEntityMonster
		s.Status = CombatStatusMonsterTurn
	} else {
		s.CurrentTurnEntity = TurnEntityPlayer
		s.Status = CombatStatusPlayerTurn
		s.TurnCount++
	}
}

// EndVictory termine le combat sur une victoire du joueur
func (s *CombatSession) EndVictory() {
	s.Status = CombatStatusVictory
	now := time.Now().UTC()
	s.EndedAt = &now
}

// EndDefeat termine le combat sur une défaite du joueur
func (s *CombatSession) EndDefeat() {
	s.Status = CombatStatusDefeat
	now := time.Now().UTC()
	s.EndedAt = &now
}

// Abandon termine le combat sur une fuite réussie
func (s *CombatSession) Abandon() {
	s.Status = CombatStatusAbandoned
	now := time.Now().UTC()
	s.EndedAt = &now
}

// IsActive indique si le combat est encore en cours
func (s *CombatSession) IsActive() bool {
	switch s.Status {
	case CombatStatusPending, CombatStatusPlayerTurn, CombatStatusMonsterTurn:
		return true
	}
	return false
}

// IsTerminal indique si le combat est terminé
func (s *CombatSession) IsTerminal() bool {
	return !s.IsActive()
}
