package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"combat/internal/database"
	"combat/internal/models"
)

// ErrContentNotFound signale un contenu statique introuvable
// (blueprint, profil, objet)
var ErrContentNotFound = errors.New("content not found")

// ContentRepositoryInterface expose le contenu statique du combat :
// blueprints de monstres, profils et équipement des joueurs, définitions
// de statuts
type ContentRepositoryInterface interface {
	GetMonsterBlueprint(ctx context.Context, id uuid.UUID) (*models.MonsterBlueprint, error)
	GetPlayerProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.PlayerProfile, error)
	GetPlayerEquipment(ctx context.Context, playerID uuid.UUID) ([]models.EquippedItem, error)
	GetAllStatusDefinitions(ctx context.Context) ([]*models.StatusDefinition, error)
}

// ContentRepository implémente l'interface ContentRepositoryInterface.
// Les définitions de statuts sont mises en cache après le premier
// chargement : ce contenu ne change qu'au déploiement.
type ContentRepository struct {
	db *database.DB

	mu         sync.RWMutex
	statusDefs []*models.StatusDefinition
}

// NewContentRepository crée une nouvelle instance du repository contenu
func NewContentRepository(db *database.DB) ContentRepositoryInterface {
	return &ContentRepository{db: db}
}

// GetMonsterBlueprint récupère un blueprint de monstre et ses capacités
func (r *ContentRepository) GetMonsterBlueprint(ctx context.Context, id uuid.UUID) (*models.MonsterBlueprint, error) {
	var blueprint models.MonsterBlueprint
	var baseStats, perLevelStats []byte

	query := `
		SELECT id, name, description, ai_behavior, base_level, is_boss,
		       base_stats, per_level_stats,
		       xp_reward, gold_reward_min, gold_reward_max, loot_table_id
		FROM monster_blueprints
		WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	err := row.Scan(
		&blueprint.ID, &blueprint.Name, &blueprint.Description,
		&blueprint.AIBehavior, &blueprint.BaseLevel, &blueprint.IsBoss,
		&baseStats, &perLevelStats,
		&blueprint.XPReward, &blueprint.GoldRewardMin, &blueprint.GoldRewardMax,
		&blueprint.LootTableID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get monster blueprint: %w", err)
	}

	if err := json.Unmarshal(baseStats, &blueprint.BaseStats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monster base stats: %w", err)
	}
	if err := json.Unmarshal(perLevelStats, &blueprint.PerLevelStats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monster per-level stats: %w", err)
	}

	abilities, err := r.getMonsterAbilities(ctx, id)
	if err != nil {
		return nil, err
	}
	blueprint.Abilities = abilities

	return &blueprint, nil
}

// getMonsterAbilities charge les capacités d'un blueprint, dans leur ordre
// de déclaration
func (r *ContentRepository) getMonsterAbilities(ctx context.Context, blueprintID uuid.UUID) ([]models.MonsterAbility, error) {
	query := `
		SELECT id, blueprint_id, name, cooldown_turns, priority, condition_expr, effects
		FROM monster_abilities
		WHERE blueprint_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, blueprintID)
	if err != nil {
		return nil, fmt.Errorf("failed to get monster abilities: %w", err)
	}
	defer rows.Close()

	abilities := []models.MonsterAbility{}
	for rows.Next() {
		var ability models.MonsterAbility
		var effects []byte

		if err := rows.Scan(
			&ability.ID, &ability.BlueprintID, &ability.Name,
			&ability.CooldownTurns, &ability.Priority, &ability.ConditionExpr,
			&effects,
		); err != nil {
			return nil, fmt.Errorf("failed to scan monster ability: %w", err)
		}

		if err := json.Unmarshal(effects, &ability.Effects); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ability effects: %w", err)
		}
		abilities = append(abilities, ability)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monster abilities: %w", err)
	}

	return abilities, nil
}

// GetPlayerProfileByUserID récupère le profil d'un joueur par son compte
// utilisateur (l'identité portée par le jeton d'authentification)
func (r *ContentRepository) GetPlayerProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.PlayerProfile, error) {
	var profile models.PlayerProfile

	query := `
		SELECT id, user_id, name, level, xp, gold
		FROM player_profiles
		WHERE user_id = $1`

	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get player profile: %w", err)
	}

	return &profile, nil
}

// GetPlayerEquipment récupère les objets équipés d'un joueur, blueprints
// et sorts chargés
func (r *ContentRepository) GetPlayerEquipment(ctx context.Context, playerID uuid.UUID) ([]models.EquippedItem, error) {
	query := `
		SELECT player_id, item_id, slot, item_level
		FROM player_equipment
		WHERE player_id = $1
		ORDER BY slot`

	equipment := []models.EquippedItem{}
	if err := r.db.SelectContext(ctx, &equipment, query, playerID); err != nil {
		return nil, fmt.Errorf("failed to get player equipment: %w", err)
	}

	for i := range equipment {
		item, err := r.getItemBlueprint(ctx, equipment[i].ItemID)
		if err != nil {
			return nil, err
		}
		equipment[i].Item = item
	}

	return equipment, nil
}

// getItemBlueprint charge un blueprint d'objet et ses sorts
func (r *ContentRepository) getItemBlueprint(ctx context.Context, id uuid.UUID) (*models.ItemBlueprint, error) {
	var item models.ItemBlueprint
	var baseStats, perLevelStats, consumableEffects []byte

	query := `
		SELECT id, name, description, slot,
		       base_stats, per_level_stats,
		       consumable_uses, consumable_effects
		FROM item_blueprints
		WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.Slot,
		&baseStats, &perLevelStats,
		&item.ConsumableUses, &consumableEffects,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get item blueprint: %w", err)
	}

	if err := json.Unmarshal(baseStats, &item.BaseStats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item base stats: %w", err)
	}
	if err := json.Unmarshal(perLevelStats, &item.PerLevelStats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item per-level stats: %w", err)
	}
	if err := json.Unmarshal(consumableEffects, &item.ConsumableEffects); err != nil {
		return nil, fmt.Errorf("failed to unmarshal consumable effects: %w", err)
	}

	spells, err := r.getItemSpells(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Spells = spells

	return &item, nil
}

// getItemSpells charge les sorts portés par un objet, dans l'ordre d'affichage
func (r *ContentRepository) getItemSpells(ctx context.Context, itemID uuid.UUID) ([]models.Spell, error) {
	query := `
		SELECT id, name, description, spell_type, cooldown_turns, echo_cost, effects
		FROM spells
		WHERE item_blueprint_id = $1
		ORDER BY spell_order, id`

	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item spells: %w", err)
	}
	defer rows.Close()

	spells := []models.Spell{}
	for rows.Next() {
		var spell models.Spell
		var effects []byte

		if err := rows.Scan(
			&spell.ID, &spell.Name, &spell.Description, &spell.SpellType,
			&spell.CooldownTurns, &spell.EchoCost, &effects,
		); err != nil {
			return nil, fmt.Errorf("failed to scan spell: %w", err)
		}

		if err := json.Unmarshal(effects, &spell.Effects); err != nil {
			return nil, fmt.Errorf("failed to unmarshal spell effects: %w", err)
		}
		spells = append(spells, spell)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spells: %w", err)
	}

	return spells, nil
}

// GetAllStatusDefinitions récupère toutes les définitions de statuts,
// depuis le cache après le premier chargement
func (r *ContentRepository) GetAllStatusDefinitions(ctx context.Context) ([]*models.StatusDefinition, error) {
	r.mu.RLock()
	cached := r.statusDefs
	r.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	query := `
		SELECT code, display_name, is_debuff, is_stackable, max_stacks,
		       tick_trigger, tick_effect
		FROM status_definitions
		ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get status definitions: %w", err)
	}
	defer rows.Close()

	definitions := []*models.StatusDefinition{}
	for rows.Next() {
		var def models.StatusDefinition
		var tickEffect []byte

		if err := rows.Scan(
			&def.Code, &def.DisplayName, &def.IsDebuff, &def.IsStackable,
			&def.MaxStacks, &def.TickTrigger, &tickEffect,
		); err != nil {
			return nil, fmt.Errorf("failed to scan status definition: %w", err)
		}

		if len(tickEffect) > 0 {
			var effect models.EffectPayload
			if err := json.Unmarshal(tickEffect, &effect); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tick effect: %w", err)
			}
			def.TickEffect = &effect
		}
		definitions = append(definitions, &def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status definitions: %w", err)
	}

	r.mu.Lock()
	r.statusDefs = definitions
	r.mu.Unlock()

	return definitions, nil
}
