package service

import (
	"fmt"

	"combat/internal/models"
)

func init() {
	RegisterEffect("bonus_damage_if_target_has_status", effectBonusDamageIfStatus)
	RegisterEffect("bonus_damage_per_stack", effectBonusDamagePerStack)
	RegisterEffect("execute_if_low_hp", effectExecuteIfLowHP)
	RegisterEffect("if_condition", effectIfCondition)
}

// effectBonusDamageIfStatus inflige des dégâts supplémentaires si la cible
// porte le statut demandé.
//
// Paramètres :
//   - status_code : statut requis sur la cible
//   - formula : formule des dégâts bonus
//   - damage_type : type de dégâts (défaut PHYSICAL)
//   - consume_status : retire le statut après le bonus (défaut false)
func effectBonusDamageIfStatus(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	statusCode := params.GetString("status_code", "")
	formula := params.GetFormula("formula", "0")
	damageType := models.ParseDamageType(params.GetString("damage_type", ""), models.DamageTypePhysical)
	consumeStatus := params.GetBool("consume_status", false)

	if !target.HasStatus(statusCode) {
		return nil
	}

	bonus := int(b.Eval(formula, source, target))
	if bonus <= 0 {
		return nil
	}

	result := target.TakeDamage(bonus, damageType)

	entry := b.Log(fmt.Sprintf("%s deals %d bonus damage (%s). HP: %d/%d",
		source.Name, result.FinalDamage, statusCode, target.CurrentHP, target.MaxHP))
	entry.Damage = result.FinalDamage
	entry.DamageType = &result.DamageType

	if consumeStatus {
		target.RemoveStatus(statusCode)
		b.Log(fmt.Sprintf("%s consumed", statusCode))
	}
	return nil
}

// effectBonusDamagePerStack inflige des dégâts proportionnels aux stacks
// d'un statut de la cible.
//
// Paramètres :
//   - status_code : statut dont on compte les stacks
//   - damage_per_stack : dégâts par stack (défaut 10)
//   - damage_type : type de dégâts (défaut MAGIC)
//   - consume_stacks : retire le statut après les dégâts (défaut false)
func effectBonusDamagePerStack(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	statusCode := params.GetString("status_code", "")
	damagePerStack := params.GetInt("damage_per_stack", 10)
	damageType := models.ParseDamageType(params.GetString("damage_type", ""), models.DamageTypeMagic)
	consumeStacks := params.GetBool("consume_stacks", false)

	stacks := target.StatusStacks(statusCode)
	if stacks <= 0 {
		return nil
	}

	result := target.TakeDamage(damagePerStack*stacks, damageType)

	entry := b.Log(fmt.Sprintf("%s deals %d damage (%d %s stacks). HP: %d/%d",
		source.Name, result.FinalDamage, stacks, statusCode, target.CurrentHP, target.MaxHP))
	entry.Damage = result.FinalDamage
	entry.DamageType = &result.DamageType

	if consumeStacks {
		target.RemoveStatus(statusCode)
	}
	return nil
}

// effectExecuteIfLowHP achève la cible si ses PV sont sous le seuil.
// Les boss sont épargnés sauf si ignore_bosses est explicitement à false.
//
// Paramètres : threshold_percent (défaut 0.15), ignore_bosses (défaut true).
func effectExecuteIfLowHP(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	threshold := params.GetFloat("threshold_percent", 0.15)
	ignoreBosses := params.GetBool("ignore_bosses", true)

	if ignoreBosses {
		if monster := b.AsMonster(target); monster != nil && monster.IsBoss {
			return nil
		}
	}

	if target.HPPercent() <= threshold {
		executed := target.CurrentHP
		target.CurrentHP = 0

		entry := b.Log(fmt.Sprintf("%s executes %s!", source.Name, target.Name))
		entry.Damage = executed
		damageType := models.DamageTypeTrue
		entry.DamageType = &damageType
	}
	return nil
}

// effectIfCondition exécute une branche d'effets selon une condition.
//
// Paramètres :
//   - condition : expression (ex. "T_HP_PERCENT < 0.5"), défaut "1"
//   - then_effects : effets exécutés si la condition est vraie
//   - else_effects : effets exécutés sinon (optionnel)
func effectIfCondition(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	condition := params.GetFormula("condition", "1")
	thenEffects := params.GetEffects("then_effects")
	elseEffects := params.GetEffects("else_effects")

	if b.Eval(condition, source, target) != 0 {
		if len(thenEffects) > 0 {
			return RunEffects(b, source, target, thenEffects)
		}
		return nil
	}

	if len(elseEffects) > 0 {
		return RunEffects(b, source, target, elseEffects)
	}
	return nil
}
