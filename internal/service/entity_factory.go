package service

import (
	"math/rand"

	"combat/internal/constants"
	"combat/internal/models"
)

// PlayerBaseStats calcule les stats de base d'un joueur à un niveau donné,
// avant contribution de l'équipement
func PlayerBaseStats(level int) models.StatsBlock {
	return models.StatsBlock{
		MaxHP:      constants.PlayerBaseHP + level*constants.PlayerHPPerLevel,
		AD:         constants.PlayerBaseAD + level*constants.PlayerADPerLevel,
		AP:         constants.PlayerBaseAP + level*constants.PlayerAPPerLevel,
		Armor:      constants.PlayerBaseArmor + level*constants.PlayerArmorPerLevel,
		MR:         constants.PlayerBaseMR + level*constants.PlayerMRPerLevel,
		Speed:      constants.PlayerBaseSpeed,
		CritChance: constants.PlayerBaseCritPct,
		CritDamage: constants.PlayerBaseCritMult,
	}
}

// PlayerCombatStats ajoute aux stats de base la contribution de chaque objet
// équipé, à son niveau d'amélioration
func PlayerCombatStats(level int, equipment []models.EquippedItem) models.StatsBlock {
	stats := PlayerBaseStats(level)
	for i := range equipment {
		stats = stats.Add(equipment[i].StatsAtLevel())
	}
	return stats
}

// PlayerSpells agrège les sorts portés par les objets équipés
func PlayerSpells(equipment []models.EquippedItem) []models.Spell {
	spells := []models.Spell{}
	for i := range equipment {
		if equipment[i].Item == nil {
			continue
		}
		spells = append(spells, equipment[i].Item.Spells...)
	}
	return spells
}

// EquippedConsumable retourne le blueprint du consommable équipé, ou nil
func EquippedConsumable(equipment []models.EquippedItem) *models.ItemBlueprint {
	for i := range equipment {
		item := equipment[i].Item
		if item != nil && equipment[i].Slot == models.ItemSlotConsumable {
			return item
		}
	}
	return nil
}

// NewPlayerEntity construit l'entité joueur d'un combat qui démarre :
// PV pleins, Echo à zéro, consommable chargé
func NewPlayerEntity(profile *models.PlayerProfile, equipment []models.EquippedItem) *models.PlayerEntity {
	stats := PlayerCombatStats(profile.Level, equipment)

	player := &models.PlayerEntity{
		CombatEntity:            models.NewCombatEntity(profile.ID, profile.Name, stats),
		PlayerID:                profile.ID,
		EchoCurrent:             0,
		EchoMax:                 constants.DefaultEchoMax,
		Spells:                  PlayerSpells(equipment),
		ConsumableUsesRemaining: constants.DefaultConsumableUses,
	}

	if consumable := EquippedConsumable(equipment); consumable != nil {
		player.ConsumableEffects = consumable.ConsumableEffects
		if consumable.ConsumableUses > 0 {
			player.ConsumableUsesRemaining = consumable.ConsumableUses
		}
	}
	return player
}

// NewMonsterEntity construit l'entité monstre d'un combat qui démarre,
// au niveau demandé
func NewMonsterEntity(blueprint *models.MonsterBlueprint, level int) *models.MonsterEntity {
	stats := blueprint.StatsAtLevel(level)

	return &models.MonsterEntity{
		CombatEntity:  models.NewCombatEntity(blueprint.ID, blueprint.Name, stats),
		BlueprintID:   blueprint.ID,
		Level:         level,
		AIBehavior:    blueprint.AIBehavior,
		Abilities:     blueprint.Abilities,
		IsBoss:        blueprint.IsBoss,
		XPReward:      blueprint.XPReward,
		GoldRewardMin: blueprint.GoldRewardMin,
		GoldRewardMax: blueprint.GoldRewardMax,
		LootTableID:   blueprint.LootTableID,
	}
}

// ActionSeed dérive la graine RNG de l'action courante. La graine de session
// est stable sur toute la durée du combat, le compteur de tours fait varier
// la séquence d'une action à l'autre : rejouer la même action sur le même
// snapshot reproduit exactement les mêmes tirages.
func ActionSeed(session *models.CombatSession) int64 {
	return session.RngSeed ^ (int64(session.TurnCount) << 16)
}

// NewBattleFromSession reconstruit le runtime complet d'une session
// persistée. Les stats du joueur sont recalculées depuis le niveau et
// l'équipement courants, puis les snapshots de la session (PV, Echo,
// statuts, jauges, recharges) sont réappliqués par-dessus. Les PV max
// restent ceux capturés au démarrage du combat.
func NewBattleFromSession(
	session *models.CombatSession,
	profile *models.PlayerProfile,
	equipment []models.EquippedItem,
	blueprint *models.MonsterBlueprint,
	statusDefs []*models.StatusDefinition,
	formula FormulaEngineInterface,
) *Battle {
	player := NewPlayerEntity(profile, equipment)
	player.MaxHP = session.PlayerMaxHP
	player.CurrentHP = session.PlayerCurrentHP
	player.EchoCurrent = session.PlayerEchoCurrent
	player.EchoMax = session.PlayerEchoMax
	player.ConsumableUsesRemaining = session.PlayerConsumableUses
	player.RestoreStatuses(session.PlayerStatuses)
	player.Gauges = cloneIntMap(session.PlayerGauges)
	player.Cooldowns = cloneIntMap(session.PlayerCooldowns)

	monster := NewMonsterEntity(blueprint, session.MonsterLevel)
	monster.MaxHP = session.MonsterMaxHP
	monster.CurrentHP = session.MonsterCurrentHP
	monster.RestoreStatuses(session.MonsterStatuses)
	monster.Gauges = cloneIntMap(session.MonsterGauges)
	monster.Cooldowns = cloneIntMap(session.MonsterCooldowns)

	rng := rand.New(rand.NewSource(ActionSeed(session)))

	battle := NewBattle(session, player, monster, rng, formula)
	battle.RegisterStatusDefinitions(statusDefs)
	warmFormulaCache(battle, player, monster, statusDefs)
	return battle
}

// warmFormulaCache précompile les formules de tout le contenu du combat,
// pour que les erreurs de syntaxe se signalent au chargement plutôt
// qu'en plein tour
func warmFormulaCache(b *Battle, player *models.PlayerEntity, monster *models.MonsterEntity, statusDefs []*models.StatusDefinition) {
	for i := range player.Spells {
		b.formula.Precompile(player.Spells[i].Effects)
	}
	b.formula.Precompile(player.ConsumableEffects)
	for i := range monster.Abilities {
		b.formula.Precompile(monster.Abilities[i].Effects)
	}
	for _, def := range statusDefs {
		if def.TickEffect != nil {
			b.formula.Precompile([]models.EffectPayload{*def.TickEffect})
		}
	}
}
