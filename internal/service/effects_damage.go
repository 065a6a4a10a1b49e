package service

import (
	"fmt"

	"combat/internal/models"
)

func init() {
	RegisterEffect("damage", effectDamage)
	RegisterEffect("damage_percent_max_hp", effectDamagePercentMaxHP)
	RegisterEffect("damage_percent_missing_hp", effectDamagePercentMissingHP)
}

// effectDamage inflige des dégâts à la cible.
//
// Paramètres :
//   - formula : formule de dégâts (ex. "AD * 1.5 + 50")
//   - damage_type : PHYSICAL, MAGIC, TRUE ou MIXED (défaut PHYSICAL)
//   - variance : variance aléatoire dans [0, 0.2] (défaut 0)
//   - can_crit : coup critique possible (défaut false)
//   - label : libellé pour le journal (défaut "damage")
//
// Le résultat est mémorisé dans battle.LastDamage pour les effets qui en
// dépendent (lifesteal), puis les déclencheurs ON_HIT et ON_DAMAGED sont
// exécutés si des dégâts ont réellement été infligés.
func effectDamage(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	formula := params.GetFormula("formula", "0")
	damageType := models.ParseDamageType(params.GetString("damage_type", ""), models.DamageTypePhysical)
	variance := params.GetFloat("variance", 0)
	canCrit := params.GetBool("can_crit", false)
	label := params.GetString("label", "damage")

	baseDamage := b.Eval(formula, source, target)

	if variance > 0 {
		roll := 1.0 + (b.Rng.Float64()*2-1)*variance
		baseDamage *= roll
	}

	isCrit := false
	if canCrit && b.Rng.Float64() < source.Stats.CritChance {
		baseDamage *= source.Stats.CritDamage
		isCrit = true
	}

	result := target.TakeDamage(int(baseDamage), damageType)
	result.WasCritical = isCrit

	critText := ""
	if isCrit {
		critText = " (CRIT!)"
	}
	entry := b.Log(fmt.Sprintf("%s deals %d %s%s to %s. HP: %d/%d",
		source.Name, result.FinalDamage, label, critText, target.Name, target.CurrentHP, target.MaxHP))
	entry.Damage = result.FinalDamage
	entry.DamageType = &result.DamageType
	entry.WasCritical = isCrit

	b.LastDamage = result

	if result.FinalDamage > 0 {
		if err := b.TriggerOnHit(source, target); err != nil {
			return err
		}
		if err := b.TriggerOnDamaged(target, source); err != nil {
			return err
		}
	}

	return nil
}

// effectDamagePercentMaxHP inflige un pourcentage des PV max de la cible.
//
// Paramètres : percent (défaut 0.05), damage_type (défaut TRUE), label.
func effectDamagePercentMaxHP(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	percent := params.GetFloat("percent", 0.05)
	damageType := models.ParseDamageType(params.GetString("damage_type", ""), models.DamageTypeTrue)
	label := params.GetString("label", "% max HP damage")

	damage := int(float64(target.MaxHP) * percent)
	result := target.TakeDamage(damage, damageType)

	entry := b.Log(fmt.Sprintf("%s deals %d %s to %s. HP: %d/%d",
		source.Name, result.FinalDamage, label, target.Name, target.CurrentHP, target.MaxHP))
	entry.Damage = result.FinalDamage
	entry.DamageType = &result.DamageType

	return nil
}

// effectDamagePercentMissingHP inflige un pourcentage des PV manquants de
// la cible. Dégâts de type exécution, plus forts sur cible affaiblie.
//
// Paramètres : percent (défaut 0.1), damage_type (défaut PHYSICAL), label.
func effectDamagePercentMissingHP(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	percent := params.GetFloat("percent", 0.1)
	damageType := models.ParseDamageType(params.GetString("damage_type", ""), models.DamageTypePhysical)
	label := params.GetString("label", "execute damage")

	damage := int(float64(target.MissingHP()) * percent)
	result := target.TakeDamage(damage, damageType)

	entry := b.Log(fmt.Sprintf("%s deals %d %s to %s. HP: %d/%d",
		source.Name, result.FinalDamage, label, target.Name, target.CurrentHP, target.MaxHP))
	entry.Damage = result.FinalDamage
	entry.DamageType = &result.DamageType

	return nil
}
