package service

import (
	"fmt"

	"combat/internal/models"
)

// ApplyStatus ajoute ou rafraîchit un statut sur l'entité. Pour une
// définition à déclencheur IMMEDIATE, l'effet de tick est exécuté une fois
// dès l'application, avec l'entité porteuse pour source et cible.
func (b *Battle) ApplyStatus(target *models.CombatEntity, code string, duration, stacks, maxStacks int, modifier *models.StatModifier) error {
	target.AddStatus(code, duration, stacks, maxStacks, modifier)

	def := b.StatusDefinition(code)
	if def != nil && def.TickTrigger == models.TickTriggerImmediate && def.TickEffect != nil {
		return RunEffects(b, target, target, []models.EffectPayload{*def.TickEffect})
	}
	return nil
}

// ProcessTurnStart exécute les ticks ON_TURN_START des statuts de l'entité
func (b *Battle) ProcessTurnStart(entity *models.CombatEntity) error {
	return b.processStatusTicks(entity, models.TickTriggerOnTurnStart)
}

// ProcessTurnEnd clôt le tour de l'entité côté statuts : ticks ON_TURN_END,
// décrément des durées avec retrait des statuts expirés, puis décrément
// des recharges.
func (b *Battle) ProcessTurnEnd(entity *models.CombatEntity) error {
	if err := b.processStatusTicks(entity, models.TickTriggerOnTurnEnd); err != nil {
		return err
	}
	b.expireStatuses(entity)
	entity.TickCooldowns()
	return nil
}

// processStatusTicks exécute l'effet de tick des statuts au déclencheur
// donné, dans l'ordre d'application, une fois par stack pour un statut
// cumulable. La source et la cible du tick sont l'entité porteuse.
func (b *Battle) processStatusTicks(entity *models.CombatEntity, trigger models.TickTrigger) error {
	previous := b.setAction(models.ActionTypeStatusTick)
	defer b.setAction(previous)

	for _, code := range models.OrderedStatusCodes(entity.Statuses) {
		instance, ok := entity.Statuses[code]
		if !ok {
			// Retiré par le tick d'un statut précédent
			continue
		}

		def := b.StatusDefinition(code)
		if def == nil || def.TickTrigger != trigger || def.TickEffect == nil {
			continue
		}

		ticks := 1
		if def.IsStackable {
			ticks = instance.Stacks
		}
		for i := 0; i < ticks; i++ {
			if err := RunEffects(b, entity, entity, []models.EffectPayload{*def.TickEffect}); err != nil {
				return err
			}
		}
	}
	return nil
}

// expireStatuses décrémente la durée de tous les statuts de l'entité et
// retire ceux arrivés à 0, en annulant leurs modificateurs de stat
func (b *Battle) expireStatuses(entity *models.CombatEntity) {
	previous := b.setAction(models.ActionTypeStatusTick)
	defer b.setAction(previous)

	expired := []string{}
	for _, code := range models.OrderedStatusCodes(entity.Statuses) {
		instance := entity.Statuses[code]
		instance.RemainingTurns--
		if instance.RemainingTurns <= 0 {
			expired = append(expired, code)
		}
	}

	for _, code := range expired {
		entity.RemoveStatus(code)
		b.Log(fmt.Sprintf("%s's %s expired", entity.Name, code))
	}
}

// TriggerOnHit exécute les statuts ON_HIT de l'attaquant quand un coup
// porte, avec l'attaquant pour source et la cible du coup pour cible.
func (b *Battle) TriggerOnHit(attacker, target *models.CombatEntity) error {
	return b.runTriggeredStatuses(attacker, target, models.TickTriggerOnHit)
}

// TriggerOnDamaged exécute les statuts ON_DAMAGED de l'entité touchée,
// avec elle-même pour source et l'attaquant pour cible.
func (b *Battle) TriggerOnDamaged(target, attacker *models.CombatEntity) error {
	return b.runTriggeredStatuses(target, attacker, models.TickTriggerOnDamaged)
}

// runTriggeredStatuses exécute les effets de tick des statuts de la source
// au déclencheur donné. Les déclencheurs ne se réentrent pas : des dégâts
// infligés par un tick ne déclenchent pas de nouveaux ON_HIT/ON_DAMAGED.
func (b *Battle) runTriggeredStatuses(source, target *models.CombatEntity, trigger models.TickTrigger) error {
	if b.inTrigger {
		return nil
	}
	b.inTrigger = true
	defer func() { b.inTrigger = false }()

	previous := b.setAction(models.ActionTypeStatusTick)
	defer b.setAction(previous)

	for _, code := range models.OrderedStatusCodes(source.Statuses) {
		if _, ok := source.Statuses[code]; !ok {
			continue
		}

		def := b.StatusDefinition(code)
		if def == nil || def.TickTrigger != trigger || def.TickEffect == nil {
			continue
		}

		if err := RunEffects(b, source, target, []models.EffectPayload{*def.TickEffect}); err != nil {
			return err
		}
	}
	return nil
}

// StatusSummary retourne la vue code → stacks des statuts actifs
func StatusSummary(entity *models.CombatEntity) map[string]int {
	summary := make(map[string]int, len(entity.Statuses))
	for code, instance := range entity.Statuses {
		summary[code] = instance.Stacks
	}
	return summary
}
