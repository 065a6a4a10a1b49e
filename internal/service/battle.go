package service

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"combat/internal/constants"
	"combat/internal/models"
)

// Battle porte l'état runtime d'un combat : les deux entités reconstruites
// depuis la session, le générateur aléatoire de l'action en cours et le
// journal produit pendant cette action. Aucune E/S ici : le chargement et
// la persistance sont assurés par le service appelant.
type Battle struct {
	Session *models.CombatSession
	Player  *models.PlayerEntity
	Monster *models.MonsterEntity

	// Générateur de l'action en cours, dérivé de la graine de la session
	Rng *rand.Rand

	// Dernier résultat de dégâts, consommé par les effets conditionnels
	LastDamage *models.DamageResult

	// Entrées de journal produites pendant l'action en cours
	Logs []*models.CombatLogEntry

	formula    FormulaEngineInterface
	statusDefs map[string]*models.StatusDefinition

	// Type d'action courant, estampillé sur chaque entrée de journal
	action string

	// Garde de réentrance des déclencheurs ON_HIT / ON_DAMAGED
	inTrigger bool
}

// NewBattle construit l'instance runtime d'un combat
func NewBattle(session *models.CombatSession, player *models.PlayerEntity, monster *models.MonsterEntity, rng *rand.Rand, formula FormulaEngineInterface) *Battle {
	return &Battle{
		Session:    session,
		Player:     player,
		Monster:    monster,
		Rng:        rng,
		formula:    formula,
		statusDefs: map[string]*models.StatusDefinition{},
		action:     models.ActionTypeSystem,
	}
}

// RegisterStatusDefinitions enregistre les définitions de statuts utilisées
// par ce combat
func (b *Battle) RegisterStatusDefinitions(definitions []*models.StatusDefinition) {
	for _, def := range definitions {
		b.statusDefs[def.Code] = def
	}
}

// StatusDefinition retourne la définition d'un statut (nil si inconnue)
func (b *Battle) StatusDefinition(code string) *models.StatusDefinition {
	return b.statusDefs[code]
}

// Log ajoute une ligne au journal de combat et retourne l'entrée créée,
// que l'appelant peut compléter avec les champs structurés (dégâts, sort).
func (b *Battle) Log(message string) *models.CombatLogEntry {
	entry := models.NewCombatLogEntry(b.Session.ID, b.Session.TurnCount, b.Session.CurrentTurnEntity, b.action, message)
	b.Logs = append(b.Logs, entry)

	logrus.WithFields(logrus.Fields{
		"session_id": b.Session.ID,
		"turn":       b.Session.TurnCount,
	}).Debug(message)

	return entry
}

// RecentLogMessages retourne les n derniers messages du journal
func (b *Battle) RecentLogMessages(n int) []string {
	start := len(b.Logs) - n
	if start < 0 {
		start = 0
	}
	messages := make([]string, 0, len(b.Logs)-start)
	for _, entry := range b.Logs[start:] {
		messages = append(messages, entry.Message)
	}
	return messages
}

// setAction change le type d'action courant et retourne l'ancien
func (b *Battle) setAction(action string) string {
	previous := b.action
	b.action = action
	return previous
}

// AsPlayer retourne la spécialisation joueur d'une entité, ou nil si
// l'entité est le monstre. La comparaison se fait par identité de pointeur.
func (b *Battle) AsPlayer(e *models.CombatEntity) *models.PlayerEntity {
	if b.Player != nil && e == &b.Player.CombatEntity {
		return b.Player
	}
	return nil
}

// AsMonster retourne la spécialisation monstre d'une entité, ou nil si
// l'entité est le joueur
func (b *Battle) AsMonster(e *models.CombatEntity) *models.MonsterEntity {
	if b.Monster != nil && e == &b.Monster.CombatEntity {
		return b.Monster
	}
	return nil
}

// OpponentOf retourne l'adversaire d'une entité
func (b *Battle) OpponentOf(e *models.CombatEntity) *models.CombatEntity {
	if e == &b.Player.CombatEntity {
		return &b.Monster.CombatEntity
	}
	return &b.Player.CombatEntity
}

// Scope construit la portée de variables d'une évaluation de formule à
// partir du couple (source, cible) : stats nues et préfixées S_, stats de
// la cible préfixées T_, jauge d'Echo pour un joueur, stacks de statuts
// actifs et boucliers des deux camps.
func (b *Battle) Scope(source, target *models.CombatEntity) map[string]float64 {
	scope := map[string]float64{
		"AD":          float64(source.Stats.AD),
		"AP":          float64(source.Stats.AP),
		"ARMOR":       float64(source.Stats.Armor),
		"MR":          float64(source.Stats.MR),
		"SPEED":       float64(source.Stats.Speed),
		"MAX_HP":      float64(source.MaxHP),
		"HP":          float64(source.CurrentHP),
		"CRIT_CHANCE": source.Stats.CritChance,
		"CRIT_DAMAGE": source.Stats.CritDamage,

		"S_AD":         float64(source.Stats.AD),
		"S_AP":         float64(source.Stats.AP),
		"S_ARMOR":      float64(source.Stats.Armor),
		"S_MR":         float64(source.Stats.MR),
		"S_MAX_HP":     float64(source.MaxHP),
		"S_HP":         float64(source.CurrentHP),
		"S_HP_PERCENT": source.HPPercent(),

		"T_AD":         float64(target.Stats.AD),
		"T_AP":         float64(target.Stats.AP),
		"T_ARMOR":      float64(target.Stats.Armor),
		"T_MR":         float64(target.Stats.MR),
		"T_MAX_HP":     float64(target.MaxHP),
		"T_HP":         float64(target.CurrentHP),
		"T_HP_PERCENT": target.HPPercent(),
		"T_MISSING_HP": float64(target.MissingHP()),
	}
	scope["T_MISSING_HP_PERCENT"] = 1 - scope["T_HP_PERCENT"]

	if player := b.AsPlayer(source); player != nil {
		scope["ECHO"] = float64(player.EchoCurrent)
		scope["ECHO_MAX"] = float64(player.EchoMax)
		scope["S_ECHO"] = float64(player.EchoCurrent)
	}

	for code, instance := range source.Statuses {
		scope["S_STACKS_"+code] = float64(instance.Stacks)
	}
	for code, instance := range target.Statuses {
		scope["T_STACKS_"+code] = float64(instance.Stacks)
	}

	scope["S_SHIELD"] = float64(source.Shield())
	scope["T_SHIELD"] = float64(target.Shield())

	return scope
}

// Eval évalue une formule dans la portée (source, cible).
// Retourne 0.0 en cas d'échec, sans interrompre le combat.
func (b *Battle) Eval(expr string, source, target *models.CombatEntity) float64 {
	return b.formula.Eval(expr, b.Scope(source, target))
}

// EvalCondition évalue une expression en exposant l'erreur, pour les
// conditions d'activation des capacités de monstre.
func (b *Battle) EvalCondition(expr string, source, target *models.CombatEntity) (float64, error) {
	return b.formula.Evaluate(expr, b.Scope(source, target))
}

// Start démarre le combat et journalise l'état initial
func (b *Battle) Start() {
	b.Session.Start()
	b.Log(fmt.Sprintf("Combat started! %s vs %s", b.Player.Name, b.Monster.Name))
	b.Log(fmt.Sprintf("Player HP: %d/%d", b.Player.CurrentHP, b.Player.MaxHP))
	b.Log(fmt.Sprintf("Monster HP: %d/%d", b.Monster.CurrentHP, b.Monster.MaxHP))
}

// IsActive indique si le combat continue
func (b *Battle) IsActive() bool {
	return b.Session.IsActive() && !b.Player.IsDead() && !b.Monster.IsDead()
}

// CheckVictoryConditions vérifie les conditions de fin de combat et clôt la
// session le cas échéant. Retourne "victory", "defeat", "fled" ou "" si le
// combat continue. L'appel est idempotent : une session déjà terminée n'est
// ni modifiée ni rejournalisée.
func (b *Battle) CheckVictoryConditions() string {
	switch b.Session.Status {
	case models.CombatStatusVictory:
		return models.CombatResultVictory
	case models.CombatStatusDefeat:
		return models.CombatResultDefeat
	case models.CombatStatusAbandoned:
		return models.CombatResultFled
	}

	if b.Monster.IsDead() {
		b.Session.EndVictory()
		b.Log(fmt.Sprintf("%s has been defeated!", b.Monster.Name))
		return models.CombatResultVictory
	}

	if b.Player.IsDead() {
		b.Session.EndDefeat()
		b.Log(fmt.Sprintf("%s has been defeated!", b.Player.Name))
		return models.CombatResultDefeat
	}

	return ""
}

// PlayerCastSpell lance un sort du joueur sur le monstre : consomme l'Echo,
// exécute les effets, pose la recharge puis crédite le gain d'Echo (5 de
// base, +10 pour un sort SKILL, rien pour un ultime).
// Retourne (succès, message utilisateur, erreur fatale).
func (b *Battle) PlayerCastSpell(spell *models.Spell) (bool, string, error) {
	if b.Session.Status != models.CombatStatusPlayerTurn {
		return false, "Not your turn", nil
	}

	canUse, reason := b.Player.CanUseSpell(spell)
	if !canUse {
		return false, reason, nil
	}

	previous := b.setAction(models.ActionTypeSpell)
	defer b.setAction(previous)

	if spell.EchoCost > 0 {
		b.Player.ConsumeEcho(spell.EchoCost)
		b.Log(fmt.Sprintf("%s uses %d Echo", b.Player.Name, spell.EchoCost))
	}

	entry := b.Log(fmt.Sprintf("%s casts %s!", b.Player.Name, spell.Name))
	entry.SpellID = &spell.ID

	if err := RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, spell.Effects); err != nil {
		return false, "", err
	}

	if spell.CooldownTurns > 0 {
		b.Player.SetCooldown(spell.ID, spell.CooldownTurns)
	}

	if !spell.IsUltimate() {
		gain := constants.EchoGainSpellBase
		if spell.SpellType == models.SpellTypeSkill {
			gain += constants.EchoGainSkillBonus
		}
		entry.EchoGained = b.Player.AddEcho(gain)
	}

	return true, "OK", nil
}

// PlayerBasicAttack exécute l'attaque de base du joueur
func (b *Battle) PlayerBasicAttack() (bool, string, error) {
	if b.Session.Status != models.CombatStatusPlayerTurn {
		return false, "Not your turn", nil
	}

	previous := b.setAction(models.ActionTypeBasicAttack)
	defer b.setAction(previous)

	entry := b.Log(fmt.Sprintf("%s attacks!", b.Player.Name))

	if err := RunEffects(b, &b.Player.CombatEntity, &b.Monster.CombatEntity, basicAttackEffects()); err != nil {
		return false, "", err
	}

	entry.EchoGained = b.Player.AddEcho(constants.EchoGainBasicAttack)

	return true, "OK", nil
}

// PlayerUseConsumable utilise le consommable équipé du joueur.
// Les effets s'appliquent au joueur lui-même et ne génèrent pas d'Echo.
func (b *Battle) PlayerUseConsumable() (bool, string, error) {
	if b.Session.Status != models.CombatStatusPlayerTurn {
		return false, "Not your turn", nil
	}

	if len(b.Player.ConsumableEffects) == 0 {
		return false, "No consumable equipped", nil
	}

	if !b.Player.UseConsumable() {
		return false, "No consumable uses remaining", nil
	}

	previous := b.setAction(models.ActionTypeConsumable)
	defer b.setAction(previous)

	b.Log(fmt.Sprintf("%s uses a consumable!", b.Player.Name))

	if err := RunEffects(b, &b.Player.CombatEntity, &b.Player.CombatEntity, b.Player.ConsumableEffects); err != nil {
		return false, "", err
	}

	return true, "OK", nil
}

// PlayerEndTurn clôt le tour du joueur : ticks de fin de tour, vérification
// de fin de combat, passage au monstre puis ticks de début de son tour.
func (b *Battle) PlayerEndTurn() error {
	if err := b.ProcessTurnEnd(&b.Player.CombatEntity); err != nil {
		return err
	}

	if b.CheckVictoryConditions() != "" {
		return nil
	}

	b.Session.NextTurn()
	b.Log(fmt.Sprintf("--- Monster's Turn (Turn %d) ---", b.Session.TurnCount))

	if err := b.ProcessTurnStart(&b.Monster.CombatEntity); err != nil {
		return err
	}
	b.CheckVictoryConditions()
	return nil
}

// MonsterTakeTurn fait jouer le monstre : sélection d'une capacité par
// l'IA, exécution des effets (ou attaque de repli), puis clôture du tour.
func (b *Battle) MonsterTakeTurn() error {
	if b.Session.Status != models.CombatStatusMonsterTurn {
		return nil
	}

	ability := SelectMonsterAction(b, b.Monster, &b.Player.CombatEntity)

	if ability != nil {
		previous := b.setAction(models.ActionTypeSpell)

		entry := b.Log(fmt.Sprintf("%s uses %s!", b.Monster.Name, ability.Name))
		entry.SpellID = &ability.ID

		err := RunEffects(b, &b.Monster.CombatEntity, &b.Player.CombatEntity, ability.Effects)
		b.setAction(previous)
		if err != nil {
			return err
		}

		if ability.CooldownTurns > 0 {
			b.Monster.SetCooldown(ability.ID, ability.CooldownTurns)
		}
	} else {
		previous := b.setAction(models.ActionTypeBasicAttack)

		b.Log(fmt.Sprintf("%s attacks!", b.Monster.Name))

		err := RunEffects(b, &b.Monster.CombatEntity, &b.Player.CombatEntity, monsterFallbackEffects())
		b.setAction(previous)
		if err != nil {
			return err
		}
	}

	if b.CheckVictoryConditions() != "" {
		return nil
	}

	return b.monsterEndTurn()
}

// monsterEndTurn clôt le tour du monstre et redonne la main au joueur
func (b *Battle) monsterEndTurn() error {
	if err := b.ProcessTurnEnd(&b.Monster.CombatEntity); err != nil {
		return err
	}

	if b.CheckVictoryConditions() != "" {
		return nil
	}

	b.Session.NextTurn()
	b.Log(fmt.Sprintf("--- Player's Turn (Turn %d) ---", b.Session.TurnCount))

	if err := b.ProcessTurnStart(&b.Player.CombatEntity); err != nil {
		return err
	}
	b.CheckVictoryConditions()
	return nil
}

// PlayerFlee tente une fuite. La chance vaut 50% plus 1% par point d'écart
// de vitesse, bornée entre 10% et 90%. Un échec consomme le tour du joueur.
func (b *Battle) PlayerFlee() (bool, string, error) {
	if b.Session.Status != models.CombatStatusPlayerTurn {
		return false, "Not your turn", nil
	}

	previous := b.setAction(models.ActionTypeFlee)
	defer b.setAction(previous)

	speedDiff := b.Player.Stats.Speed - b.Monster.Stats.Speed
	fleeChance := constants.FleeBaseChance + float64(speedDiff)*constants.FleeSpeedPerPoint
	if fleeChance < constants.FleeMinChance {
		fleeChance = constants.FleeMinChance
	}
	if fleeChance > constants.FleeMaxChance {
		fleeChance = constants.FleeMaxChance
	}

	if b.Rng.Float64() < fleeChance {
		b.Session.Abandon()
		b.Log(fmt.Sprintf("%s fled from combat!", b.Player.Name))
		return true, "Escaped!", nil
	}

	b.Log(fmt.Sprintf("%s failed to flee!", b.Player.Name))

	if err := b.PlayerEndTurn(); err != nil {
		return false, "", err
	}
	return false, "Failed to escape!", nil
}

// CalculateRewards calcule les récompenses d'une victoire : XP fixe du
// monstre et or tiré uniformément dans sa fourchette. Le butin est résolu
// à part par le résolveur de tables de loot.
func (b *Battle) CalculateRewards() *models.CombatRewardDTO {
	if b.Session.Status != models.CombatStatusVictory {
		return &models.CombatRewardDTO{}
	}

	gold := b.Monster.GoldRewardMin
	if spread := b.Monster.GoldRewardMax - b.Monster.GoldRewardMin; spread > 0 {
		gold += b.Rng.Intn(spread + 1)
	}

	return &models.CombatRewardDTO{
		XPGained:   b.Monster.XPReward,
		GoldGained: gold,
	}
}

// SyncToSession recopie l'état runtime des deux entités dans la session
// pour persistance : PV, Echo, consommable, statuts, jauges et recharges.
func (b *Battle) SyncToSession() {
	b.Session.PlayerCurrentHP = b.Player.CurrentHP
	b.Session.PlayerMaxHP = b.Player.MaxHP
	b.Session.PlayerEchoCurrent = b.Player.EchoCurrent
	b.Session.PlayerEchoMax = b.Player.EchoMax
	b.Session.PlayerConsumableUses = b.Player.ConsumableUsesRemaining
	b.Session.PlayerStatuses = cloneStatuses(b.Player.Statuses)
	b.Session.PlayerGauges = cloneIntMap(b.Player.Gauges)
	b.Session.PlayerCooldowns = cloneIntMap(b.Player.Cooldowns)

	b.Session.MonsterCurrentHP = b.Monster.CurrentHP
	b.Session.MonsterMaxHP = b.Monster.MaxHP
	b.Session.MonsterStatuses = cloneStatuses(b.Monster.Statuses)
	b.Session.MonsterGauges = cloneIntMap(b.Monster.Gauges)
	b.Session.MonsterCooldowns = cloneIntMap(b.Monster.Cooldowns)
}

// StateDTO construit la représentation client de l'état du combat.
// Les actions ne sont proposées que pendant le tour du joueur.
func (b *Battle) StateDTO() *models.CombatStateDTO {
	availableActions := []string{}
	if b.Session.Status == models.CombatStatusPlayerTurn {
		availableActions = constants.AvailableCombatActions
	}

	return &models.CombatStateDTO{
		SessionID:   b.Session.ID,
		Status:      b.Session.Status,
		TurnCount:   b.Session.TurnCount,
		CurrentTurn: b.Session.CurrentTurnEntity,
		Player: models.PlayerStateDTO{
			Name:           b.Player.Name,
			CurrentHP:      b.Player.CurrentHP,
			MaxHP:          b.Player.MaxHP,
			EchoCurrent:    b.Player.EchoCurrent,
			EchoMax:        b.Player.EchoMax,
			Statuses:       StatusSummary(&b.Player.CombatEntity),
			Shield:         b.Player.Shield(),
			SpellCooldowns: cloneIntMap(b.Player.Cooldowns),
			ConsumableUses: b.Player.ConsumableUsesRemaining,
		},
		Monster: models.MonsterStateDTO{
			Name:      b.Monster.Name,
			CurrentHP: b.Monster.CurrentHP,
			MaxHP:     b.Monster.MaxHP,
			Statuses:  StatusSummary(&b.Monster.CombatEntity),
		},
		AvailableActions: availableActions,
		Logs:             b.RecentLogMessages(constants.CombatLogTailLength),
	}
}

// basicAttackEffects retourne l'effet d'attaque de base du joueur
func basicAttackEffects() []models.EffectPayload {
	return []models.EffectPayload{{
		Opcode: "damage",
		Params: models.EffectParams{
			"formula":     "AD * 1.0",
			"damage_type": string(models.DamageTypePhysical),
			"can_crit":    true,
			"variance":    0.1,
			"label":       "attack",
		},
	}}
}

// monsterFallbackEffects retourne l'attaque de repli d'un monstre dont
// aucune capacité n'est disponible
func monsterFallbackEffects() []models.EffectPayload {
	return []models.EffectPayload{{
		Opcode: "damage",
		Params: models.EffectParams{
			"formula":     "AD * 1.0",
			"damage_type": string(models.DamageTypePhysical),
			"label":       "attack",
		},
	}}
}

func cloneStatuses(statuses map[string]*models.StatusInstance) map[string]*models.StatusInstance {
	cloned := make(map[string]*models.StatusInstance, len(statuses))
	for code, instance := range statuses {
		cloned[code] = instance.Clone()
	}
	return cloned
}

func cloneIntMap(values map[string]int) map[string]int {
	cloned := make(map[string]int, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}
