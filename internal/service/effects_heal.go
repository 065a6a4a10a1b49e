package service

import (
	"fmt"

	"combat/internal/models"
)

func init() {
	RegisterEffect("heal", effectHeal)
	RegisterEffect("heal_percent_max_hp", effectHealPercentMaxHP)
	RegisterEffect("heal_percent_missing_hp", effectHealPercentMissingHP)
	RegisterEffect("lifesteal", effectLifesteal)
}

// effectHeal soigne la cible.
//
// Paramètres : formula (ex. "AP * 0.5 + 100"), label (défaut "heal").
func effectHeal(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	formula := params.GetFormula("formula", "0")
	label := params.GetString("label", "heal")

	amount := int(b.Eval(formula, source, target))
	healed := target.Heal(amount)

	b.Log(fmt.Sprintf("%s heals %d (%s). HP: %d/%d",
		target.Name, healed, label, target.CurrentHP, target.MaxHP))

	return nil
}

// effectHealPercentMaxHP soigne un pourcentage des PV max de la cible.
//
// Paramètres : percent (défaut 0.1), label.
func effectHealPercentMaxHP(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	percent := params.GetFloat("percent", 0.1)
	label := params.GetString("label", "% max HP heal")

	amount := int(float64(target.MaxHP) * percent)
	healed := target.Heal(amount)

	b.Log(fmt.Sprintf("%s heals %d (%s). HP: %d/%d",
		target.Name, healed, label, target.CurrentHP, target.MaxHP))

	return nil
}

// effectHealPercentMissingHP soigne un pourcentage des PV manquants.
//
// Paramètres : percent (défaut 0.2), label (défaut "recovery").
func effectHealPercentMissingHP(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	percent := params.GetFloat("percent", 0.2)
	label := params.GetString("label", "recovery")

	amount := int(float64(target.MissingHP()) * percent)
	healed := target.Heal(amount)

	b.Log(fmt.Sprintf("%s heals %d (%s). HP: %d/%d",
		target.Name, healed, label, target.CurrentHP, target.MaxHP))

	return nil
}

// effectLifesteal soigne la source d'un pourcentage des derniers dégâts
// infligés. À placer après un effet de dégâts dans la liste.
//
// Paramètres : percent (défaut 0.2), label (défaut "lifesteal").
func effectLifesteal(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	percent := params.GetFloat("percent", 0.2)
	label := params.GetString("label", "lifesteal")

	if b.LastDamage == nil {
		return nil
	}

	amount := int(float64(b.LastDamage.FinalDamage) * percent)
	healed := source.Heal(amount)

	b.Log(fmt.Sprintf("%s heals %d (%s). HP: %d/%d",
		source.Name, healed, label, source.CurrentHP, source.MaxHP))

	return nil
}
