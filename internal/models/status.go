package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// TickTrigger définit le moment où un statut applique son effet périodique
type TickTrigger string

const (
	TickTriggerOnTurnStart TickTrigger = "ON_TURN_START"
	TickTriggerOnTurnEnd   TickTrigger = "ON_TURN_END"
	TickTriggerOnHit       TickTrigger = "ON_HIT"
	TickTriggerOnDamaged   TickTrigger = "ON_DAMAGED"
	TickTriggerImmediate   TickTrigger = "IMMEDIATE"
)

// StatusDefinition décrit un statut tel que chargé depuis le contenu statique
type StatusDefinition struct {
	Code        string         `json:"code" db:"code"`
	DisplayName string         `json:"display_name" db:"display_name"`
	IsDebuff    bool           `json:"is_debuff" db:"is_debuff"`
	IsStackable bool           `json:"is_stackable" db:"is_stackable"`
	MaxStacks   int            `json:"max_stacks" db:"max_stacks"`
	TickTrigger TickTrigger    `json:"tick_trigger" db:"tick_trigger"`
	TickEffect  *EffectPayload `json:"tick_effect,omitempty" db:"-"`
}

// StatModifier encode le delta de stat porté par un buff/debuff dynamique.
// Le code synthétique (ex: STAT_AD_+10) ne sert que d'étiquette de log ;
// le delta appliqué est toujours lu depuis cette structure.
type StatModifier struct {
	Stat  string `json:"stat"`
	Delta int    `json:"delta"`
}

// StatusInstance représente un statut actif sur une entité.
// Seq mémorise l'ordre d'application sur l'entité : les ticks de fin de
// tour rejouent les statuts dans cet ordre, y compris après un passage
// par la session persistée.
type StatusInstance struct {
	RemainingTurns int           `json:"remaining_turns"`
	Stacks         int           `json:"stacks"`
	Seq            int           `json:"seq"`
	Modifier       *StatModifier `json:"modifier,omitempty"`
}

// AddStacks ajoute des stacks en respectant un maximum optionnel (0 = sans limite)
func (s *StatusInstance) AddStacks(amount, maxStacks int) {
	s.Stacks += amount
	if maxStacks > 0 && s.Stacks > maxStacks {
		s.Stacks = maxStacks
	}
}

// Clone copie l'instance (les snapshots de session ne partagent aucun pointeur)
func (s *StatusInstance) Clone() *StatusInstance {
	clone := *s
	if s.Modifier != nil {
		mod := *s.Modifier
		clone.Modifier = &mod
	}
	return &clone
}

// OrderedStatusCodes retourne les codes de statuts en ordre d'application
// (Seq croissant, départagé par le code)
func OrderedStatusCodes(statuses map[string]*StatusInstance) []string {
	codes := make([]string, 0, len(statuses))
	for code := range statuses {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		a, b := statuses[codes[i]], statuses[codes[j]]
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return codes[i] < codes[j]
	})
	return codes
}

// StatModifierCode construit le code synthétique d'un buff/debuff de stat
func StatModifierCode(stat string, delta int) string {
	sign := "+"
	abs := delta
	if delta < 0 {
		sign = "-"
		abs = -delta
	}
	return fmt.Sprintf("STAT_%s_%s%d", stat, sign, abs)
}

// MarshalStatuses sérialise une map de statuts pour la colonne JSONB
func MarshalStatuses(statuses map[string]*StatusInstance) ([]byte, error) {
	if statuses == nil {
		statuses = map[string]*StatusInstance{}
	}
	return json.Marshal(statuses)
}

// UnmarshalStatuses relit une map de statuts depuis la colonne JSONB
func UnmarshalStatuses(data []byte) (map[string]*StatusInstance, error) {
	statuses := map[string]*StatusInstance{}
	if len(data) == 0 {
		return statuses, nil
	}
	if err := json.Unmarshal(data, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}
