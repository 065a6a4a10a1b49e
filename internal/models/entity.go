package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Noms de jauges connus du moteur
const (
	GaugeShield = "shield"
	GaugeEcho   = "echo"
)

// Stats modifiables par les buffs/debuffs dynamiques
const (
	StatAD    = "AD"
	StatAP    = "AP"
	StatArmor = "ARMOR"
	StatMR    = "MR"
	StatSpeed = "SPEED"
)

// CombatEntity représente une entité en combat : état runtime mutable,
// reconstruit depuis la session à chaque action puis resynchronisé.
type CombatEntity struct {
	ID        uuid.UUID                  `json:"id"`
	Name      string                     `json:"name"`
	Stats     StatsBlock                 `json:"stats"`
	CurrentHP int                        `json:"current_hp"`
	MaxHP     int                        `json:"max_hp"`
	Statuses  map[string]*StatusInstance `json:"statuses"`
	Gauges    map[string]int             `json:"gauges"`
	Cooldowns map[string]int             `json:"cooldowns"`
}

// NewCombatEntity initialise une entité avec ses maps vides
func NewCombatEntity(id uuid.UUID, name string, stats StatsBlock) CombatEntity {
	return CombatEntity{
		ID:        id,
		Name:      name,
		Stats:     stats,
		CurrentHP: stats.MaxHP,
		MaxHP:     stats.MaxHP,
		Statuses:  map[string]*StatusInstance{},
		Gauges:    map[string]int{},
		Cooldowns: map[string]int{},
	}
}

// IsDead indique si l'entité est morte
func (e *CombatEntity) IsDead() bool {
	return e.CurrentHP <= 0
}

// HPPercent retourne les PV en pourcentage [0,1]
func (e *CombatEntity) HPPercent() float64 {
	if e.MaxHP <= 0 {
		return 0.0
	}
	return float64(e.CurrentHP) / float64(e.MaxHP)
}

// MissingHP retourne les PV manquants
func (e *CombatEntity) MissingHP() int {
	return e.MaxHP - e.CurrentHP
}

// Heal soigne l'entité en bornant aux PV max. Retourne le soin effectif.
func (e *CombatEntity) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := amount
	if missing := e.MaxHP - e.CurrentHP; actual > missing {
		actual = missing
	}
	e.CurrentHP += actual
	return actual
}

// TakeDamage applique des dégâts à l'entité : absorption par le bouclier,
// mitigation selon le type, puis retrait des PV borné au restant.
// RawDamage du résultat reflète le montant après absorption du bouclier.
func (e *CombatEntity) TakeDamage(amount int, damageType DamageType) *DamageResult {
	if amount < 0 {
		amount = 0
	}

	if shield := e.Gauges[GaugeShield]; shield > 0 && amount > 0 {
		absorbed := amount
		if absorbed > shield {
			absorbed = shield
		}
		e.Gauges[GaugeShield] = shield - absorbed
		amount -= absorbed
	}

	var mitigated int
	switch damageType {
	case DamageTypeTrue:
		mitigated = amount
	case DamageTypePhysical:
		mitigated = mitigate(amount, e.Stats.Armor)
	case DamageTypeMagic:
		mitigated = mitigate(amount, e.Stats.MR)
	case DamageTypeMixed:
		// Répartition moitié physique (arrondi bas), moitié magique
		physical := amount / 2
		magical := amount - physical
		mitigated = mitigate(physical, e.Stats.Armor) + mitigate(magical, e.Stats.MR)
	default:
		mitigated = amount
	}

	actual := mitigated
	if actual > e.CurrentHP {
		actual = e.CurrentHP
	}
	e.CurrentHP -= actual

	return &DamageResult{
		RawDamage:       amount,
		MitigatedDamage: mitigated,
		FinalDamage:     actual,
		DamageType:      damageType,
		Overkill:        mitigated - actual,
	}
}

// mitigate applique la réduction resistance/(100+resistance).
// Une résistance négative ne réduit rien.
func mitigate(amount, resistance int) int {
	if resistance < 0 {
		return amount
	}
	reduction := float64(resistance) / float64(100+resistance)
	return int(float64(amount) * (1 - reduction))
}

// Gauge retourne la valeur d'une jauge (0 si absente)
func (e *CombatEntity) Gauge(name string) int {
	return e.Gauges[name]
}

// SetGauge fixe une jauge, bornée à 0
func (e *CombatEntity) SetGauge(name string, value int) {
	if value < 0 {
		value = 0
	}
	e.Gauges[name] = value
}

// AddGauge incrémente (ou décrémente) une jauge, bornée à 0
func (e *CombatEntity) AddGauge(name string, delta int) {
	e.SetGauge(name, e.Gauges[name]+delta)
}

// Shield retourne la valeur courante du bouclier
func (e *CombatEntity) Shield() int {
	return e.Gauges[GaugeShield]
}

// HasStatus indique si un statut est actif
func (e *CombatEntity) HasStatus(code string) bool {
	_, ok := e.Statuses[code]
	return ok
}

// StatusStacks retourne le nombre de stacks d'un statut (0 si absent)
func (e *CombatEntity) StatusStacks(code string) int {
	if instance, ok := e.Statuses[code]; ok {
		return instance.Stacks
	}
	return 0
}

// AddStatus applique ou rafraîchit un statut.
// Rafraîchissement : remaining = max(ancien, nouveau), stacks cumulés avec
// plafond optionnel (maxStacks ≤ 0 = sans limite). Le delta de stat d'un
// modificateur n'est appliqué qu'à la création de l'instance.
// Retourne true si le statut vient d'être créé.
func (e *CombatEntity) AddStatus(code string, duration, stacks, maxStacks int, modifier *StatModifier) bool {
	if existing, ok := e.Statuses[code]; ok {
		if duration > existing.RemainingTurns {
			existing.RemainingTurns = duration
		}
		existing.AddStacks(stacks, maxStacks)
		return false
	}

	seq := 1
	for _, other := range e.Statuses {
		if other.Seq >= seq {
			seq = other.Seq + 1
		}
	}

	instance := &StatusInstance{
		RemainingTurns: duration,
		Stacks:         stacks,
		Seq:            seq,
		Modifier:       modifier,
	}
	if maxStacks > 0 && instance.Stacks > maxStacks {
		instance.Stacks = maxStacks
	}
	e.Statuses[code] = instance

	if modifier != nil {
		e.applyStatDelta(modifier.Stat, modifier.Delta)
	}
	return true
}

// RemoveStatus retire un statut et annule son éventuel delta de stat.
// Retourne true si le statut existait.
func (e *CombatEntity) RemoveStatus(code string) bool {
	instance, ok := e.Statuses[code]
	if !ok {
		return false
	}
	delete(e.Statuses, code)

	if instance.Modifier != nil {
		e.applyStatDelta(instance.Modifier.Stat, -instance.Modifier.Delta)
	}
	return true
}

// RestoreStatuses remplace la table des statuts par un snapshot persisté et
// réapplique les deltas de stats portés par les modificateurs. À appeler sur
// des stats fraîchement calculées, avant toute autre mutation.
func (e *CombatEntity) RestoreStatuses(statuses map[string]*StatusInstance) {
	e.Statuses = map[string]*StatusInstance{}
	for code, instance := range statuses {
		clone := instance.Clone()
		e.Statuses[code] = clone
		if clone.Modifier != nil {
			e.applyStatDelta(clone.Modifier.Stat, clone.Modifier.Delta)
		}
	}
}

// applyStatDelta ajuste une stat nommée du bloc courant
func (e *CombatEntity) applyStatDelta(stat string, delta int) {
	switch stat {
	case StatAD:
		e.Stats.AD += delta
	case StatAP:
		e.Stats.AP += delta
	case StatArmor:
		e.Stats.Armor += delta
	case StatMR:
		e.Stats.MR += delta
	case StatSpeed:
		e.Stats.Speed += delta
	}
}

// SetCooldown place une capacité en recharge (ignoré si turns ≤ 0)
func (e *CombatEntity) SetCooldown(abilityID uuid.UUID, turns int) {
	if turns > 0 {
		e.Cooldowns[abilityID.String()] = turns
	}
}

// IsOnCooldown indique si une capacité est en recharge
func (e *CombatEntity) IsOnCooldown(abilityID uuid.UUID) bool {
	_, ok := e.Cooldowns[abilityID.String()]
	return ok
}

// CooldownRemaining retourne les tours de recharge restants (0 si prête)
func (e *CombatEntity) CooldownRemaining(abilityID uuid.UUID) int {
	return e.Cooldowns[abilityID.String()]
}

// TickCooldowns décrémente toutes les recharges et retire celles arrivées à 0
func (e *CombatEntity) TickCooldowns() {
	for id := range e.Cooldowns {
		e.Cooldowns[id]--
		if e.Cooldowns[id] <= 0 {
			delete(e.Cooldowns, id)
		}
	}
}

// PlayerEntity représente le joueur en combat, avec sa jauge d'Echo
type PlayerEntity struct {
	CombatEntity

	PlayerID                uuid.UUID       `json:"player_id"`
	EchoCurrent             int             `json:"echo_current"`
	EchoMax                 int             `json:"echo_max"`
	Spells                  []Spell         `json:"spells"`
	ConsumableUsesRemaining int             `json:"consumable_uses_remaining"`
	ConsumableEffects       []EffectPayload `json:"consumable_effects,omitempty"`
}

// AddEcho ajoute de l'Echo en bornant à la jauge max. Retourne le gain effectif.
func (p *PlayerEntity) AddEcho(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := amount
	if room := p.EchoMax - p.EchoCurrent; actual > room {
		actual = room
	}
	p.EchoCurrent += actual
	return actual
}

// ConsumeEcho dépense de l'Echo. Retourne false si la jauge est insuffisante.
func (p *PlayerEntity) ConsumeEcho(cost int) bool {
	if p.EchoCurrent < cost {
		return false
	}
	p.EchoCurrent -= cost
	return true
}

// SetEcho fixe la jauge d'Echo, bornée à [0, echo_max]
func (p *PlayerEntity) SetEcho(value int) {
	if value < 0 {
		value = 0
	}
	if value > p.EchoMax {
		value = p.EchoMax
	}
	p.EchoCurrent = value
}

// SpellByID retrouve un sort équipé par son identifiant
func (p *PlayerEntity) SpellByID(spellID uuid.UUID) *Spell {
	for i := range p.Spells {
		if p.Spells[i].ID == spellID {
			return &p.Spells[i]
		}
	}
	return nil
}

// CanUseSpell vérifie recharge et coût en Echo.
// Retourne (utilisable, raison du refus).
func (p *PlayerEntity) CanUseSpell(spell *Spell) (bool, string) {
	if p.IsOnCooldown(spell.ID) {
		return false, fmt.Sprintf("On cooldown (%d turns)", p.CooldownRemaining(spell.ID))
	}
	if spell.EchoCost > 0 && p.EchoCurrent < spell.EchoCost {
		return false, fmt.Sprintf("Not enough Echo (%d/%d)", p.EchoCurrent, spell.EchoCost)
	}
	return true, "OK"
}

// UseConsumable décompte une utilisation. Retourne false si épuisé.
func (p *PlayerEntity) UseConsumable() bool {
	if p.ConsumableUsesRemaining <= 0 {
		return false
	}
	p.ConsumableUsesRemaining--
	return true
}

// MonsterEntity représente l'instance de monstre en combat
type MonsterEntity struct {
	CombatEntity

	BlueprintID   uuid.UUID        `json:"blueprint_id"`
	Level         int              `json:"level"`
	AIBehavior    AIBehavior       `json:"ai_behavior"`
	Abilities     []MonsterAbility `json:"abilities"`
	IsBoss        bool             `json:"is_boss"`
	XPReward      int              `json:"xp_reward"`
	GoldRewardMin int              `json:"gold_reward_min"`
	GoldRewardMax int              `json:"gold_reward_max"`
	LootTableID   *uuid.UUID       `json:"loot_table_id,omitempty"`
}
