package service

import (
	"fmt"
	"strings"

	"combat/internal/models"
)

func init() {
	RegisterEffect("apply_status", effectApplyStatus)
	RegisterEffect("remove_status", effectRemoveStatus)
	RegisterEffect("extend_status", effectExtendStatus)
	RegisterEffect("transfer_status", effectTransferStatus)
	RegisterEffect("modify_stat", effectModifyStat)
	RegisterEffect("steal_stat", effectStealStat)
}

// effectApplyStatus applique un statut à la cible après un jet de chance.
//
// Paramètres :
//   - status_code : code du statut (ex. "BURN", "FREEZE")
//   - duration_turns : durée en tours (défaut 1)
//   - stacks : stacks appliqués (défaut 1)
//   - chance : formule de chance d'application, bornée à [0,1] (défaut "1")
//   - max_stacks : plafond de stacks (optionnel)
func effectApplyStatus(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	statusCode := params.GetString("status_code", "")
	if statusCode == "" {
		b.Log("[WARN] apply_status missing status_code")
		return nil
	}

	duration := params.GetInt("duration_turns", 1)
	stacks := params.GetInt("stacks", 1)
	chanceExpr := params.GetFormula("chance", "1")
	maxStacks := params.GetInt("max_stacks", 0)

	chance := b.Eval(chanceExpr, source, target)
	if chance < 0 {
		chance = 0
	}
	if chance > 1 {
		chance = 1
	}

	if b.Rng.Float64() > chance {
		b.Log(fmt.Sprintf("%s resisted %s", target.Name, statusCode))
		return nil
	}

	b.Log(fmt.Sprintf("%s gains %s (%d turns, %d stacks)", target.Name, statusCode, duration, stacks))

	return b.ApplyStatus(target, statusCode, duration, stacks, maxStacks, nil)
}

// effectRemoveStatus retire un statut nommé de la cible, ou l'ensemble de
// ses debuffs (all_debuffs) ou buffs (all_buffs) d'après les définitions.
func effectRemoveStatus(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	statusCode := params.GetString("status_code", "")

	if params.GetBool("all_debuffs", false) {
		removed := removeStatusesOfKind(b, target, true)
		if len(removed) > 0 {
			b.Log(fmt.Sprintf("%s cleansed: %s", target.Name, strings.Join(removed, ", ")))
		}
		return nil
	}

	if params.GetBool("all_buffs", false) {
		removed := removeStatusesOfKind(b, target, false)
		if len(removed) > 0 {
			b.Log(fmt.Sprintf("%s lost buffs: %s", target.Name, strings.Join(removed, ", ")))
		}
		return nil
	}

	if statusCode == "" {
		return nil
	}

	if target.RemoveStatus(statusCode) {
		b.Log(fmt.Sprintf("%s lost %s", target.Name, statusCode))
	} else {
		b.Log(fmt.Sprintf("%s doesn't have %s", target.Name, statusCode))
	}
	return nil
}

// removeStatusesOfKind retire les statuts du genre demandé dans leur ordre
// d'application, pour un journal stable d'une exécution à l'autre
func removeStatusesOfKind(b *Battle, target *models.CombatEntity, debuffs bool) []string {
	removed := []string{}
	for _, code := range models.OrderedStatusCodes(target.Statuses) {
		def := b.StatusDefinition(code)
		if def == nil || def.IsDebuff != debuffs {
			continue
		}
		target.RemoveStatus(code)
		removed = append(removed, code)
	}
	return removed
}

// effectExtendStatus prolonge la durée d'un statut déjà présent.
//
// Paramètres : status_code, duration_turns (tours ajoutés, défaut 1).
func effectExtendStatus(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	statusCode := params.GetString("status_code", "")
	duration := params.GetInt("duration_turns", 1)

	if instance, ok := target.Statuses[statusCode]; ok {
		instance.RemainingTurns += duration
		b.Log(fmt.Sprintf("%s's %s extended by %d turns", target.Name, statusCode, duration))
	}
	return nil
}

// effectTransferStatus déplace un statut de la source vers la cible, en
// conservant durée restante, stacks et modificateur de stat.
func effectTransferStatus(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	statusCode := params.GetString("status_code", "")

	instance, ok := source.Statuses[statusCode]
	if !ok {
		return nil
	}

	target.AddStatus(statusCode, instance.RemainingTurns, instance.Stacks, 0, instance.Modifier)
	source.RemoveStatus(statusCode)

	b.Log(fmt.Sprintf("%s transferred from %s to %s", statusCode, source.Name, target.Name))
	return nil
}

// effectModifyStat applique un buff ou debuff temporaire de stat via un
// statut synthétique portant le delta, annulé à l'expiration.
//
// Paramètres :
//   - stat : AD, AP, ARMOR, MR ou SPEED (défaut AD)
//   - formula : formule du montant
//   - duration_turns : durée (défaut 2)
//   - is_debuff : libellé du journal (défaut false)
func effectModifyStat(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	stat := params.GetString("stat", models.StatAD)
	formula := params.GetFormula("formula", "0")
	duration := params.GetInt("duration_turns", 2)
	isDebuff := params.GetBool("is_debuff", false)

	amount := int(b.Eval(formula, source, target))
	if amount == 0 {
		return nil
	}

	code := models.StatModifierCode(stat, amount)
	target.AddStatus(code, duration, 1, 0, &models.StatModifier{Stat: stat, Delta: amount})

	kind := "buff"
	if isDebuff {
		kind = "debuff"
	}
	sign := "+"
	magnitude := amount
	if amount < 0 {
		sign = "-"
		magnitude = -amount
	}
	b.Log(fmt.Sprintf("%s gains %s: %s %s%d for %d turns",
		target.Name, kind, stat, sign, magnitude, duration))
	return nil
}

// effectStealStat vole un montant fixe de stat : debuff sur la cible,
// buff symétrique sur la source, pour la même durée.
//
// Paramètres : stat (défaut AD), amount (défaut 10), duration_turns (défaut 2).
func effectStealStat(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	stat := params.GetString("stat", models.StatAD)
	amount := params.GetInt("amount", 10)
	duration := params.GetInt("duration_turns", 2)

	target.AddStatus(models.StatModifierCode(stat, -amount), duration, 1, 0,
		&models.StatModifier{Stat: stat, Delta: -amount})
	source.AddStatus(models.StatModifierCode(stat, amount), duration, 1, 0,
		&models.StatModifier{Stat: stat, Delta: amount})

	b.Log(fmt.Sprintf("%s steals %d %s from %s for %d turns",
		source.Name, amount, stat, target.Name, duration))
	return nil
}
