package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"combat/internal/config"
	"combat/internal/constants"
	"combat/internal/external"
	"combat/internal/models"
	"combat/internal/monitoring"
	"combat/internal/repository"
	"combat/internal/utils"
)

// CombatService orchestre le cycle de vie des combats : chargement de la
// session et du contenu, reconstruction du runtime, résolution des actions
// et écriture atomique du résultat
type CombatService struct {
	config       *config.Config
	combatRepo   repository.CombatRepositoryInterface
	contentRepo  repository.ContentRepositoryInterface
	sessionCache repository.SessionCacheInterface
	playerClient external.PlayerClientInterface
	lootResolver external.LootResolverInterface
	formula      FormulaEngineInterface
}

// NewCombatService crée une nouvelle instance du service de combat
func NewCombatService(
	config *config.Config,
	combatRepo repository.CombatRepositoryInterface,
	contentRepo repository.ContentRepositoryInterface,
	sessionCache repository.SessionCacheInterface,
	playerClient external.PlayerClientInterface,
	lootResolver external.LootResolverInterface,
	formula FormulaEngineInterface,
) CombatServiceInterface {
	return &CombatService{
		config:       config,
		combatRepo:   combatRepo,
		contentRepo:  contentRepo,
		sessionCache: sessionCache,
		playerClient: playerClient,
		lootResolver: lootResolver,
		formula:      formula,
	}
}

// StartCombat démarre un combat contre un monstre
func (s *CombatService) StartCombat(ctx context.Context, userID uuid.UUID, req models.StartCombatRequest) (*models.CombatResultDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, models.NewInvalidRequest(err.Error())
	}

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Refuser si une session active existe déjà (cache d'abord, base ensuite)
	if cached, err := s.sessionCache.GetActiveSession(ctx, profile.ID); err != nil {
		logrus.WithError(err).WithField("player_id", profile.ID).Warn("Failed to read session cache")
	} else if cached != nil {
		return nil, models.NewAlreadyInCombat()
	}

	if _, err := s.combatRepo.GetActiveSessionByPlayer(ctx, profile.ID); err == nil {
		return nil, models.NewAlreadyInCombat()
	} else if !errors.Is(err, repository.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}

	equipment, err := s.contentRepo.GetPlayerEquipment(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player equipment: %w", err)
	}

	blueprint, err := s.contentRepo.GetMonsterBlueprint(ctx, req.MonsterBlueprintID)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) {
			return nil, models.NewEntityNotFound("monster")
		}
		return nil, fmt.Errorf("failed to load monster blueprint: %w", err)
	}

	statusDefs, err := s.contentRepo.GetAllStatusDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load status definitions: %w", err)
	}

	monsterLevel := blueprint.BaseLevel
	if req.MonsterLevel != nil {
		monsterLevel = *req.MonsterLevel
	}
	if monsterLevel < constants.MinMonsterLevel {
		monsterLevel = constants.MinMonsterLevel
	}

	session := models.NewCombatSession(profile.ID, blueprint.ID, monsterLevel, utils.SecureRandInt63())

	player := NewPlayerEntity(profile, equipment)
	monster := NewMonsterEntity(blueprint, monsterLevel)

	rng := rand.New(rand.NewSource(ActionSeed(session)))
	battle := NewBattle(session, player, monster, rng, s.formula)
	battle.RegisterStatusDefinitions(statusDefs)
	warmFormulaCache(battle, player, monster, statusDefs)

	battle.Start()
	battle.SyncToSession()

	if err := s.combatRepo.CreateSession(ctx, session, battle.Logs); err != nil {
		if errors.Is(err, repository.ErrActiveSessionExists) {
			return nil, models.NewAlreadyInCombat()
		}
		return nil, fmt.Errorf("failed to create combat session: %w", err)
	}

	if err := s.sessionCache.SetActiveSession(ctx, session); err != nil {
		logrus.WithError(err).WithField("session_id", session.ID).Warn("Failed to cache combat session")
	}

	monitoring.CombatSessionsStarted.Inc()
	monitoring.ActiveCombatSessions.Inc()

	logrus.WithFields(logrus.Fields{
		"session_id":    session.ID,
		"player_id":     profile.ID,
		"blueprint_id":  blueprint.ID,
		"monster_level": monsterLevel,
	}).Info("Combat session started")

	return &models.CombatResultDTO{
		Success:     true,
		Message:     "Combat started!",
		State:       battle.StateDTO(),
		CombatEnded: false,
	}, nil
}

// GetCurrentCombat retourne l'état de la session active du joueur.
// Le journal renvoyé est la queue persistée, pas celui de l'action courante.
func (s *CombatService) GetCurrentCombat(ctx context.Context, userID uuid.UUID) (*models.CombatStateDTO, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := s.activeSession(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, models.NewEntityNotFound("combat session")
		}
		return nil, fmt.Errorf("failed to load combat session: %w", err)
	}

	battle, err := s.buildBattle(ctx, session, profile)
	if err != nil {
		return nil, err
	}

	state := battle.StateDTO()

	logs, err := s.combatRepo.GetSessionLogs(ctx, session.ID, constants.CombatLogTailLength)
	if err != nil {
		logrus.WithError(err).WithField("session_id", session.ID).Warn("Failed to load combat logs")
		return state, nil
	}

	messages := make([]string, 0, len(logs))
	for _, entry := range logs {
		messages = append(messages, entry.Message)
	}
	state.Logs = messages

	return state, nil
}

// ExecuteAction résout une action du joueur puis, si le combat continue,
// le tour du monstre. La session n'est écrite qu'une fois, en fin d'action.
func (s *CombatService) ExecuteAction(ctx context.Context, userID uuid.UUID, req models.CombatActionRequest) (*models.CombatResultDTO, error) {
	started := time.Now()

	if err := req.Validate(); err != nil {
		return nil, models.NewInvalidRequest(err.Error())
	}

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := s.activeSession(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, models.NewEntityNotFound("combat session")
		}
		return nil, fmt.Errorf("failed to load combat session: %w", err)
	}

	release, err := s.acquireActionLock(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if session.Status != models.CombatStatusPlayerTurn {
		return nil, models.NewNotYourTurn()
	}

	battle, err := s.buildBattle(ctx, session, profile)
	if err != nil {
		return nil, err
	}

	message, err := s.dispatchPlayerAction(battle, req)
	if err != nil {
		return nil, err
	}

	// Fin de combat vérifiée avant les ticks de fin de tour : un monstre
	// déjà mort ne déclenche pas le tour suivant
	result := battle.CheckVictoryConditions()
	if result == "" {
		if err := battle.PlayerEndTurn(); err != nil {
			return nil, fmt.Errorf("failed to resolve player turn end: %w", err)
		}
		if err := battle.MonsterTakeTurn(); err != nil {
			return nil, fmt.Errorf("failed to resolve monster turn: %w", err)
		}
		result = battle.CheckVictoryConditions()
	}

	if err := s.persistBattle(ctx, battle, result); err != nil {
		return nil, err
	}

	observeAction(req.ActionType, started, battle)

	var rewards *models.CombatRewardDTO
	if result == models.CombatResultVictory {
		rewards = s.resolveRewards(ctx, battle)
	}

	logrus.WithFields(logrus.Fields{
		"session_id":  session.ID,
		"action_type": req.ActionType,
		"turn":        session.TurnCount,
		"result":      result,
	}).Info("Combat action resolved")

	return &models.CombatResultDTO{
		Success:     true,
		Message:     message,
		State:       battle.StateDTO(),
		CombatEnded: result != "",
		Result:      result,
		Rewards:     rewards,
	}, nil
}

// Flee tente une fuite. Un échec consomme le tour du joueur et le monstre
// joue immédiatement.
func (s *CombatService) Flee(ctx context.Context, userID uuid.UUID) (*models.CombatResultDTO, error) {
	started := time.Now()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := s.activeSession(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, models.NewNotInCombat()
		}
		return nil, fmt.Errorf("failed to load combat session: %w", err)
	}

	release, err := s.acquireActionLock(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if session.Status != models.CombatStatusPlayerTurn {
		return nil, models.NewNotYourTurn()
	}

	battle, err := s.buildBattle(ctx, session, profile)
	if err != nil {
		return nil, err
	}

	escaped, message, err := battle.PlayerFlee()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve flee attempt: %w", err)
	}

	if !escaped {
		if err := battle.MonsterTakeTurn(); err != nil {
			return nil, fmt.Errorf("failed to resolve monster turn: %w", err)
		}
	}
	result := battle.CheckVictoryConditions()

	if err := s.persistBattle(ctx, battle, result); err != nil {
		return nil, err
	}

	observeAction(models.ActionTypeFlee, started, battle)

	logrus.WithFields(logrus.Fields{
		"session_id": session.ID,
		"escaped":    escaped,
		"result":     result,
	}).Info("Flee attempt resolved")

	return &models.CombatResultDTO{
		Success:     escaped,
		Message:     message,
		State:       battle.StateDTO(),
		CombatEnded: result != "",
		Result:      result,
	}, nil
}

// loadProfile résout le profil joueur du compte utilisateur authentifié
func (s *CombatService) loadProfile(ctx context.Context, userID uuid.UUID) (*models.PlayerProfile, error) {
	profile, err := s.contentRepo.GetPlayerProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) {
			return nil, models.NewEntityNotFound("player")
		}
		return nil, fmt.Errorf("failed to load player profile: %w", err)
	}
	return profile, nil
}

// activeSession charge la session active du joueur, cache d'abord.
// Une entrée de cache périmée est rattrapée par le verrouillage optimiste
// à l'écriture.
func (s *CombatService) activeSession(ctx context.Context, playerID uuid.UUID) (*models.CombatSession, error) {
	if cached, err := s.sessionCache.GetActiveSession(ctx, playerID); err != nil {
		logrus.WithError(err).WithField("player_id", playerID).Warn("Failed to read session cache")
	} else if cached != nil {
		return cached, nil
	}

	return s.combatRepo.GetActiveSessionByPlayer(ctx, playerID)
}

// buildBattle recharge le contenu du combat et reconstruit son runtime
func (s *CombatService) buildBattle(ctx context.Context, session *models.CombatSession, profile *models.PlayerProfile) (*Battle, error) {
	equipment, err := s.contentRepo.GetPlayerEquipment(ctx, session.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player equipment: %w", err)
	}

	blueprint, err := s.contentRepo.GetMonsterBlueprint(ctx, session.MonsterBlueprintID)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) {
			return nil, models.NewEntityNotFound("monster")
		}
		return nil, fmt.Errorf("failed to load monster blueprint: %w", err)
	}

	statusDefs, err := s.contentRepo.GetAllStatusDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load status definitions: %w", err)
	}

	return NewBattleFromSession(session, profile, equipment, blueprint, statusDefs, s.formula), nil
}

// dispatchPlayerAction vérifie les préconditions de l'action puis l'exécute.
// Les préconditions échouées retournent une erreur typée sans avoir muté
// l'état du combat.
func (s *CombatService) dispatchPlayerAction(battle *Battle, req models.CombatActionRequest) (string, error) {
	switch req.ActionType {
	case models.ActionTypeBasicAttack:
		return runPlayerAction(battle.PlayerBasicAttack)

	case models.ActionTypeSpell:
		spell := battle.Player.SpellByID(*req.SpellID)
		if spell == nil {
			return "", models.NewEntityNotFound("spell")
		}
		if remaining := battle.Player.CooldownRemaining(spell.ID); remaining > 0 {
			return "", models.NewSpellOnCooldown(remaining)
		}
		if spell.EchoCost > 0 && battle.Player.EchoCurrent < spell.EchoCost {
			return "", models.NewNotEnoughEcho(battle.Player.EchoCurrent, spell.EchoCost)
		}
		return runPlayerAction(func() (bool, string, error) {
			return battle.PlayerCastSpell(spell)
		})

	case models.ActionTypeConsumable:
		if len(battle.Player.ConsumableEffects) == 0 || battle.Player.ConsumableUsesRemaining <= 0 {
			return "", models.NewNoConsumableUses()
		}
		return runPlayerAction(battle.PlayerUseConsumable)

	default:
		return "", models.NewInvalidRequest(fmt.Sprintf("unknown action type: %s", req.ActionType))
	}
}

// runPlayerAction exécute une action moteur et normalise son résultat.
// Un refus du moteur après les préconditions du service est renvoyé tel
// quel au joueur.
func runPlayerAction(action func() (bool, string, error)) (string, error) {
	ok, message, err := action()
	if err != nil {
		return "", fmt.Errorf("failed to execute action: %w", err)
	}
	if !ok {
		return "", models.NewInvalidRequest(message)
	}
	return message, nil
}

// acquireActionLock pose le verrou d'action de la session et retourne sa
// fonction de libération. Une panne Redis n'empêche pas l'action : le
// verrouillage optimiste de la session reste l'autorité.
func (s *CombatService) acquireActionLock(ctx context.Context, sessionID uuid.UUID) (func(), error) {
	locked, err := s.sessionCache.AcquireActionLock(ctx, sessionID)
	if err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Warn("Failed to acquire action lock")
		return func() {}, nil
	}
	if !locked {
		return nil, models.NewConcurrentModification()
	}

	return func() {
		if err := s.sessionCache.ReleaseActionLock(ctx, sessionID); err != nil {
			logrus.WithError(err).WithField("session_id", sessionID).Warn("Failed to release action lock")
		}
	}, nil
}

// persistBattle synchronise le runtime dans la session et l'écrit avec son
// journal, puis met le cache et les métriques de fin de combat à jour
func (s *CombatService) persistBattle(ctx context.Context, battle *Battle, result string) error {
	battle.SyncToSession()
	session := battle.Session

	if err := s.combatRepo.UpdateSession(ctx, session, battle.Logs); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			if cacheErr := s.sessionCache.InvalidateActiveSession(ctx, session.PlayerID); cacheErr != nil {
				logrus.WithError(cacheErr).WithField("session_id", session.ID).Warn("Failed to invalidate session cache")
			}
			return models.NewConcurrentModification()
		}
		return fmt.Errorf("failed to persist combat session: %w", err)
	}

	if session.IsTerminal() {
		if err := s.sessionCache.InvalidateActiveSession(ctx, session.PlayerID); err != nil {
			logrus.WithError(err).WithField("session_id", session.ID).Warn("Failed to invalidate session cache")
		}
		monitoring.ActiveCombatSessions.Dec()
		if result != "" {
			monitoring.CombatSessionsEnded.WithLabelValues(result).Inc()
		}
		return nil
	}

	if err := s.sessionCache.SetActiveSession(ctx, session); err != nil {
		logrus.WithError(err).WithField("session_id", session.ID).Warn("Failed to cache combat session")
	}
	return nil
}

// resolveRewards calcule les récompenses d'une victoire, résout le butin et
// les transmet au service Player. Les échecs externes sont journalisés sans
// faire échouer l'action : l'état du combat est déjà persisté.
func (s *CombatService) resolveRewards(ctx context.Context, battle *Battle) *models.CombatRewardDTO {
	rewards := battle.CalculateRewards()

	if battle.Monster.LootTableID != nil {
		drops, err := s.lootResolver.Roll(ctx, *battle.Monster.LootTableID, battle.Monster.Level, battle.Session.RngSeed)
		if err != nil {
			logrus.WithError(err).WithField("session_id", battle.Session.ID).Warn("Failed to roll loot table")
		} else {
			rewards.LootDrops = drops
		}
	}

	grant := external.RewardGrant{
		PlayerID:   battle.Session.PlayerID,
		SessionID:  battle.Session.ID,
		XPGained:   rewards.XPGained,
		GoldGained: rewards.GoldGained,
	}
	if err := s.playerClient.ApplyRewards(ctx, grant); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"session_id": battle.Session.ID,
			"player_id":  battle.Session.PlayerID,
		}).Error("Failed to apply combat rewards")
	}

	return rewards
}

// observeAction enregistre les métriques d'une action résolue
func observeAction(actionType string, started time.Time, battle *Battle) {
	monitoring.CombatActionsTotal.WithLabelValues(actionType).Inc()
	monitoring.CombatActionDuration.WithLabelValues(actionType).Observe(time.Since(started).Seconds())

	for _, entry := range battle.Logs {
		if entry.Damage > 0 && entry.DamageType != nil {
			monitoring.CombatDamageDealt.WithLabelValues(string(*entry.DamageType)).Observe(float64(entry.Damage))
		}
	}
}
