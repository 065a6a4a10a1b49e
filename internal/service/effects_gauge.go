package service

import (
	"fmt"

	"combat/internal/models"
)

func init() {
	RegisterEffect("shield", effectShield)
	RegisterEffect("remove_shield", effectRemoveShield)
	RegisterEffect("build_gauge", effectBuildGauge)
	RegisterEffect("consume_gauge", effectConsumeGauge)
	RegisterEffect("set_gauge", effectSetGauge)
}

// effectShield ajoute un bouclier à la cible.
//
// Paramètres : formula (montant), label (défaut "shield").
func effectShield(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	formula := params.GetFormula("formula", "0")
	label := params.GetString("label", "shield")

	amount := int(b.Eval(formula, source, target))
	if amount <= 0 {
		return nil
	}

	target.AddGauge(models.GaugeShield, amount)

	b.Log(fmt.Sprintf("%s gains %d %s (total: %d)", target.Name, amount, label, target.Shield()))
	return nil
}

// effectRemoveShield retire du bouclier à la cible : tout si amount est
// absent, sinon au plus le montant demandé.
func effectRemoveShield(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	current := target.Shield()

	if !params.Has("amount") {
		target.SetGauge(models.GaugeShield, 0)
		b.Log(fmt.Sprintf("%s's shield removed (%d)", target.Name, current))
		return nil
	}

	removed := params.GetInt("amount", 0)
	if removed > current {
		removed = current
	}
	target.SetGauge(models.GaugeShield, current-removed)

	b.Log(fmt.Sprintf("%s's shield reduced by %d", target.Name, removed))
	return nil
}

// effectBuildGauge ajoute (ou retire, montant négatif) des points à une
// jauge nommée. La jauge "echo" d'un joueur est bornée à [0, echo_max].
//
// Paramètres :
//   - gauge : nom de la jauge (défaut "echo")
//   - amount : montant fixe (défaut 0)
//   - formula : formule prioritaire sur amount si présente
//   - only_if_target_has_status : statut requis sur la cible
//   - target_self : applique à la source (défaut true pour "echo")
func effectBuildGauge(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	gauge := params.GetString("gauge", models.GaugeEcho)
	amount := params.GetInt("amount", 0)
	targetSelf := params.GetBool("target_self", gauge == models.GaugeEcho)

	if required := params.GetString("only_if_target_has_status", ""); required != "" && !target.HasStatus(required) {
		return nil
	}

	if formula := params.GetFormula("formula", ""); formula != "" {
		amount = int(b.Eval(formula, source, target))
	}

	entity := target
	if targetSelf {
		entity = source
	}

	if player := b.AsPlayer(entity); gauge == models.GaugeEcho && player != nil {
		if amount > 0 {
			added := player.AddEcho(amount)
			entry := b.Log(fmt.Sprintf("%s gains %d Echo (total: %d)", player.Name, added, player.EchoCurrent))
			entry.EchoGained = added
		} else {
			player.SetEcho(player.EchoCurrent + amount)
			b.Log(fmt.Sprintf("%s loses %d Echo (total: %d)", player.Name, -amount, player.EchoCurrent))
		}
		return nil
	}

	entity.AddGauge(gauge, amount)
	total := entity.Gauge(gauge)
	if amount > 0 {
		b.Log(fmt.Sprintf("%s gains %d %s (total: %d)", entity.Name, amount, gauge, total))
	} else {
		b.Log(fmt.Sprintf("%s loses %d %s (total: %d)", entity.Name, -amount, gauge, total))
	}
	return nil
}

// effectConsumeGauge dépense une jauge de la source, typiquement combiné à
// if_condition pour des mécaniques à ressource.
//
// Paramètres : gauge (défaut "echo"), amount, require_full (défaut true :
// refus si la jauge est insuffisante, sinon consomme ce qui reste).
func effectConsumeGauge(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	gauge := params.GetString("gauge", models.GaugeEcho)
	amount := params.GetInt("amount", 0)
	requireFull := params.GetBool("require_full", true)

	if player := b.AsPlayer(source); gauge == models.GaugeEcho && player != nil {
		if requireFull && player.EchoCurrent < amount {
			b.Log(fmt.Sprintf("Not enough Echo (%d/%d)", player.EchoCurrent, amount))
			return nil
		}
		consumed := amount
		if consumed > player.EchoCurrent {
			consumed = player.EchoCurrent
		}
		player.SetEcho(player.EchoCurrent - consumed)
		b.Log(fmt.Sprintf("%s consumed %d Echo", player.Name, consumed))
		return nil
	}

	current := source.Gauge(gauge)
	if requireFull && current < amount {
		b.Log(fmt.Sprintf("Not enough %s (%d/%d)", gauge, current, amount))
		return nil
	}
	consumed := amount
	if consumed > current {
		consumed = current
	}
	source.SetGauge(gauge, current-consumed)

	b.Log(fmt.Sprintf("%s consumed %d %s", source.Name, consumed, gauge))
	return nil
}

// effectSetGauge fixe une jauge à une valeur donnée.
//
// Paramètres : gauge (défaut "echo"), value, target_self (défaut true).
func effectSetGauge(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error {
	gauge := params.GetString("gauge", models.GaugeEcho)
	value := params.GetInt("value", 0)
	targetSelf := params.GetBool("target_self", true)

	entity := target
	if targetSelf {
		entity = source
	}

	if player := b.AsPlayer(entity); gauge == models.GaugeEcho && player != nil {
		player.SetEcho(value)
		b.Log(fmt.Sprintf("%s's Echo set to %d", player.Name, player.EchoCurrent))
		return nil
	}

	entity.SetGauge(gauge, value)
	b.Log(fmt.Sprintf("%s's %s set to %d", entity.Name, gauge, entity.Gauge(gauge)))
	return nil
}
