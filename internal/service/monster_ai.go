package service

import (
	"sort"
	"strings"

	"combat/internal/models"
)

// SelectMonsterAction choisit la capacité jouée par le monstre selon sa
// politique d'IA. Retourne nil pour une attaque de base.
//
// Pipeline : filtre des capacités en recharge, filtre des conditions
// d'activation (une condition en erreur laisse la capacité disponible),
// puis sélection propre au comportement.
func SelectMonsterAction(b *Battle, monster *models.MonsterEntity, target *models.CombatEntity) *models.MonsterAbility {
	available := make([]*models.MonsterAbility, 0, len(monster.Abilities))
	for i := range monster.Abilities {
		ability := &monster.Abilities[i]
		if monster.IsOnCooldown(ability.ID) {
			continue
		}
		if !abilityConditionMet(b, monster, target, ability) {
			continue
		}
		available = append(available, ability)
	}

	if len(available) == 0 {
		return nil
	}

	switch monster.AIBehavior {
	case models.AIBehaviorAggressive:
		return selectAggressive(b, available, target)
	case models.AIBehaviorDefensive:
		return selectDefensive(b, available, monster)
	case models.AIBehaviorHealer:
		return selectHealer(b, available, monster)
	case models.AIBehaviorBalanced:
		return selectBalanced(b, available, monster, target)
	case models.AIBehaviorBoss:
		return selectBoss(b, available, monster)
	default:
		return selectWeighted(b, available)
	}
}

// abilityConditionMet évalue la condition d'activation d'une capacité
func abilityConditionMet(b *Battle, monster *models.MonsterEntity, target *models.CombatEntity, ability *models.MonsterAbility) bool {
	if ability.ConditionExpr == "" {
		return true
	}

	result, err := b.EvalCondition(ability.ConditionExpr, &monster.CombatEntity, target)
	if err != nil {
		return true
	}
	return result != 0
}

// selectWeighted tire une capacité au hasard, pondérée par sa priorité
// (tirage cumulatif sur le poids total)
func selectWeighted(b *Battle, abilities []*models.MonsterAbility) *models.MonsterAbility {
	total := 0
	for _, ability := range abilities {
		total += ability.Priority
	}

	roll := b.Rng.Float64() * float64(total)
	cumulative := 0.0
	for _, ability := range abilities {
		cumulative += float64(ability.Priority)
		if roll <= cumulative {
			return ability
		}
	}
	return abilities[0]
}

// selectAggressive privilégie la capacité de plus haute priorité : toujours
// quand la cible est sous 30% de PV, sinon 70% du temps.
func selectAggressive(b *Battle, abilities []*models.MonsterAbility, target *models.CombatEntity) *models.MonsterAbility {
	sorted := sortByPriorityDesc(abilities)

	if target.HPPercent() < 0.3 {
		return sorted[0]
	}
	if b.Rng.Float64() < 0.7 {
		return sorted[0]
	}
	return selectWeighted(b, abilities)
}

// selectDefensive privilégie une capacité de soin ou de bouclier quand le
// monstre passe sous 40% de PV
func selectDefensive(b *Battle, abilities []*models.MonsterAbility, monster *models.MonsterEntity) *models.MonsterAbility {
	if monster.HPPercent() < 0.4 {
		if healing := filterHealing(abilities, true); len(healing) > 0 {
			return healing[0]
		}
	}
	return selectWeighted(b, abilities)
}

// selectHealer privilégie le soin dès que le monstre n'est plus à 80% de PV
func selectHealer(b *Battle, abilities []*models.MonsterAbility, monster *models.MonsterEntity) *models.MonsterAbility {
	healing := filterHealing(abilities, false)
	if len(healing) > 0 && monster.HPPercent() < 0.8 {
		return healing[0]
	}
	return selectWeighted(b, abilities)
}

// selectBalanced panache offensive et défense selon la situation
func selectBalanced(b *Battle, abilities []*models.MonsterAbility, monster *models.MonsterEntity, target *models.CombatEntity) *models.MonsterAbility {
	if monster.HPPercent() < 0.3 {
		return selectDefensive(b, abilities, monster)
	}
	if target.HPPercent() < 0.3 {
		return selectAggressive(b, abilities, target)
	}
	return selectWeighted(b, abilities)
}

// selectBoss suit un schéma par phases sur les PV du monstre : tirage
// pondéré au-dessus de 70%, plus agressif entre 40% et 70%, toujours la
// plus haute priorité en dessous (enragé).
func selectBoss(b *Battle, abilities []*models.MonsterAbility, monster *models.MonsterEntity) *models.MonsterAbility {
	hpPercent := monster.HPPercent()

	if hpPercent > 0.7 {
		return selectWeighted(b, abilities)
	}

	sorted := sortByPriorityDesc(abilities)
	if hpPercent > 0.4 {
		if b.Rng.Float64() < 0.6 {
			return sorted[0]
		}
		return selectWeighted(b, abilities)
	}

	return sorted[0]
}

// sortByPriorityDesc retourne une copie triée par priorité décroissante,
// stable pour préserver l'ordre de déclaration en cas d'égalité
func sortByPriorityDesc(abilities []*models.MonsterAbility) []*models.MonsterAbility {
	sorted := make([]*models.MonsterAbility, len(abilities))
	copy(sorted, abilities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return sorted
}

// filterHealing retient les capacités de soin : un opcode de soin parmi
// les effets (ou de bouclier si includeShield), ou "heal" dans le nom
func filterHealing(abilities []*models.MonsterAbility, includeShield bool) []*models.MonsterAbility {
	healing := []*models.MonsterAbility{}
	for _, ability := range abilities {
		if isHealingAbility(ability, includeShield) {
			healing = append(healing, ability)
		}
	}
	return healing
}

func isHealingAbility(ability *models.MonsterAbility, includeShield bool) bool {
	if strings.Contains(strings.ToLower(ability.Name), "heal") {
		return true
	}
	for _, effect := range ability.Effects {
		switch effect.Opcode {
		case "heal", "heal_percent_max_hp":
			return true
		case "shield":
			if includeShield {
				return true
			}
		}
	}
	return false
}
