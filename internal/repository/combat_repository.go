package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"combat/internal/database"
	"combat/internal/models"
)

// Erreurs sentinelles du repository combat
var (
	ErrSessionNotFound     = errors.New("combat session not found")
	ErrVersionConflict     = errors.New("combat session version conflict")
	ErrActiveSessionExists = errors.New("player already has an active combat session")
)

// Code d'erreur PostgreSQL pour violation de contrainte d'unicité
const pqUniqueViolation = "23505"

// CombatRepositoryInterface définit les méthodes du repository combat
type CombatRepositoryInterface interface {
	// Sessions. Les écritures embarquent les lignes de journal de l'action
	// dans la même transaction.
	CreateSession(ctx context.Context, session *models.CombatSession, logs []*models.CombatLogEntry) error
	GetSessionByID(ctx context.Context, id uuid.UUID) (*models.CombatSession, error)
	GetActiveSessionByPlayer(ctx context.Context, playerID uuid.UUID) (*models.CombatSession, error)
	UpdateSession(ctx context.Context, session *models.CombatSession, logs []*models.CombatLogEntry) error

	// Journal
	GetSessionLogs(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.CombatLogEntry, error)
}

// CombatRepository implémente l'interface CombatRepositoryInterface
type CombatRepository struct {
	db *database.DB
}

// NewCombatRepository crée une nouvelle instance du repository combat
func NewCombatRepository(db *database.DB) CombatRepositoryInterface {
	return &CombatRepository{db: db}
}

// CreateSession insère une nouvelle session et ses lignes de journal
// d'ouverture. L'index partiel sur les sessions actives garantit l'unicité
// par joueur même en cas de démarrages concurrents.
func (r *CombatRepository) CreateSession(ctx context.Context, session *models.CombatSession, logs []*models.CombatLogEntry) error {
	data, err := sessionWriteData(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO combat_sessions (
			id, player_id, monster_blueprint_id, monster_level, status,
			turn_count, current_turn_entity,
			player_current_hp, player_max_hp, player_echo_current,
			player_echo_max, player_consumable_uses,
			player_statuses, player_gauges, player_cooldowns,
			monster_current_hp, monster_max_hp,
			monster_statuses, monster_gauges, monster_cooldowns,
			rng_seed, version, started_at, ended_at, created_at, updated_at
		) VALUES (
			:id, :player_id, :monster_blueprint_id, :monster_level, :status,
			:turn_count, :current_turn_entity,
			:player_current_hp, :player_max_hp, :player_echo_current,
			:player_echo_max, :player_consumable_uses,
			:player_statuses, :player_gauges, :player_cooldowns,
			:monster_current_hp, :monster_max_hp,
			:monster_statuses, :monster_gauges, :monster_cooldowns,
			:rng_seed, :version, :started_at, :ended_at, :created_at, :updated_at
		)`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.NamedExecContext(ctx, query, data); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrActiveSessionExists
		}
		return fmt.Errorf("failed to create combat session: %w", err)
	}

	if err := insertLogs(ctx, tx, logs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit combat session: %w", err)
	}

	return nil
}

// GetSessionByID récupère une session par son ID
func (r *CombatRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*models.CombatSession, error) {
	query := selectSessionColumns + ` FROM combat_sessions WHERE id = $1`
	return r.scanSession(r.db.QueryRowContext(ctx, query, id))
}

// GetActiveSessionByPlayer récupère la session active d'un joueur, s'il en a une
func (r *CombatRepository) GetActiveSessionByPlayer(ctx context.Context, playerID uuid.UUID) (*models.CombatSession, error) {
	query := selectSessionColumns + `
		FROM combat_sessions
		WHERE player_id = $1 AND status IN ('PENDING', 'PLAYER_TURN', 'MONSTER_TURN')`
	return r.scanSession(r.db.QueryRowContext(ctx, query, playerID))
}

// UpdateSession écrit le snapshot complet de la session et les lignes de
// journal de l'action dans une transaction, sous verrouillage optimiste :
// la ligne n'est modifiée que si sa version en base est celle qui a été lue.
func (r *CombatRepository) UpdateSession(ctx context.Context, session *models.CombatSession, logs []*models.CombatLogEntry) error {
	session.UpdatedAt = time.Now().UTC()

	data, err := sessionWriteData(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE combat_sessions SET
			status = :status,
			turn_count = :turn_count,
			current_turn_entity = :current_turn_entity,
			player_current_hp = :player_current_hp,
			player_echo_current = :player_echo_current,
			player_echo_max = :player_echo_max,
			player_consumable_uses = :player_consumable_uses,
			player_statuses = :player_statuses,
			player_gauges = :player_gauges,
			player_cooldowns = :player_cooldowns,
			monster_current_hp = :monster_current_hp,
			monster_statuses = :monster_statuses,
			monster_gauges = :monster_gauges,
			monster_cooldowns = :monster_cooldowns,
			ended_at = :ended_at,
			version = version + 1,
			updated_at = :updated_at
		WHERE id = :id AND version = :version`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.NamedExecContext(ctx, query, data)
	if err != nil {
		return fmt.Errorf("failed to update combat session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return ErrVersionConflict
	}

	if err := insertLogs(ctx, tx, logs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit combat session: %w", err)
	}

	session.Version++
	return nil
}

// GetSessionLogs récupère les dernières lignes de journal d'une session,
// en ordre chronologique
func (r *CombatRepository) GetSessionLogs(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.CombatLogEntry, error) {
	query := `
		SELECT id, session_id, turn, actor, action_type, spell_id,
		       damage, damage_type, was_critical, echo_gained, message, created_at
		FROM combat_logs
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	logs := []*models.CombatLogEntry{}
	if err := r.db.SelectContext(ctx, &logs, query, sessionID, limit); err != nil {
		return nil, fmt.Errorf("failed to get combat logs: %w", err)
	}

	// Remise en ordre chronologique
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

// Colonnes lues par scanSession, dans l'ordre du Scan
const selectSessionColumns = `
		SELECT id, player_id, monster_blueprint_id, monster_level, status,
		       turn_count, current_turn_entity,
		       player_current_hp, player_max_hp, player_echo_current,
		       player_echo_max, player_consumable_uses,
		       player_statuses, player_gauges, player_cooldowns,
		       monster_current_hp, monster_max_hp,
		       monster_statuses, monster_gauges, monster_cooldowns,
		       rng_seed, version, started_at, ended_at, created_at, updated_at`

// scanSession lit une ligne de combat_sessions et désérialise les colonnes JSONB
func (r *CombatRepository) scanSession(row *sql.Row) (*models.CombatSession, error) {
	var session models.CombatSession
	var playerStatuses, playerGauges, playerCooldowns []byte
	var monsterStatuses, monsterGauges, monsterCooldowns []byte

	err := row.Scan(
		&session.ID, &session.PlayerID, &session.MonsterBlueprintID,
		&session.MonsterLevel, &session.Status,
		&session.TurnCount, &session.CurrentTurnEntity,
		&session.PlayerCurrentHP, &session.PlayerMaxHP, &session.PlayerEchoCurrent,
		&session.PlayerEchoMax, &session.PlayerConsumableUses,
		&playerStatuses, &playerGauges, &playerCooldowns,
		&session.MonsterCurrentHP, &session.MonsterMaxHP,
		&monsterStatuses, &monsterGauges, &monsterCooldowns,
		&session.RngSeed, &session.Version,
		&session.StartedAt, &session.EndedAt, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get combat session: %w", err)
	}

	if session.PlayerStatuses, err = models.UnmarshalStatuses(playerStatuses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player statuses: %w", err)
	}
	if session.MonsterStatuses, err = models.UnmarshalStatuses(monsterStatuses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monster statuses: %w", err)
	}
	if err = unmarshalIntMap(playerGauges, &session.PlayerGauges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player gauges: %w", err)
	}
	if err = unmarshalIntMap(playerCooldowns, &session.PlayerCooldowns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player cooldowns: %w", err)
	}
	if err = unmarshalIntMap(monsterGauges, &session.MonsterGauges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monster gauges: %w", err)
	}
	if err = unmarshalIntMap(monsterCooldowns, &session.MonsterCooldowns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monster cooldowns: %w", err)
	}

	return &session, nil
}

// sessionWriteData prépare les paramètres nommés d'une écriture de session,
// colonnes JSONB sérialisées
func sessionWriteData(session *models.CombatSession) (map[string]interface{}, error) {
	playerStatuses, err := models.MarshalStatuses(session.PlayerStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player statuses: %w", err)
	}
	monsterStatuses, err := models.MarshalStatuses(session.MonsterStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal monster statuses: %w", err)
	}
	playerGauges, err := marshalIntMap(session.PlayerGauges)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player gauges: %w", err)
	}
	playerCooldowns, err := marshalIntMap(session.PlayerCooldowns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player cooldowns: %w", err)
	}
	monsterGauges, err := marshalIntMap(session.MonsterGauges)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal monster gauges: %w", err)
	}
	monsterCooldowns, err := marshalIntMap(session.MonsterCooldowns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal monster cooldowns: %w", err)
	}

	return map[string]interface{}{
		"id":                     session.ID,
		"player_id":              session.PlayerID,
		"monster_blueprint_id":   session.MonsterBlueprintID,
		"monster_level":          session.MonsterLevel,
		"status":                 session.Status,
		"turn_count":             session.TurnCount,
		"current_turn_entity":    session.CurrentTurnEntity,
		"player_current_hp":      session.PlayerCurrentHP,
		"player_max_hp":          session.PlayerMaxHP,
		"player_echo_current":    session.PlayerEchoCurrent,
		"player_echo_max":        session.PlayerEchoMax,
		"player_consumable_uses": session.PlayerConsumableUses,
		"player_statuses":        playerStatuses,
		"player_gauges":          playerGauges,
		"player_cooldowns":       playerCooldowns,
		"monster_current_hp":     session.MonsterCurrentHP,
		"monster_max_hp":         session.MonsterMaxHP,
		"monster_statuses":       monsterStatuses,
		"monster_gauges":         monsterGauges,
		"monster_cooldowns":      monsterCooldowns,
		"rng_seed":               session.RngSeed,
		"version":                session.Version,
		"started_at":             session.StartedAt,
		"ended_at":               session.EndedAt,
		"created_at":             session.CreatedAt,
		"updated_at":             session.UpdatedAt,
	}, nil
}

// insertLogs insère les lignes de journal dans la transaction courante
func insertLogs(ctx context.Context, tx *sqlx.Tx, logs []*models.CombatLogEntry) error {
	if len(logs) == 0 {
		return nil
	}

	query := `
		INSERT INTO combat_logs (
			id, session_id, turn, actor, action_type, spell_id,
			damage, damage_type, was_critical, echo_gained, message, created_at
		) VALUES (
			:id, :session_id, :turn, :actor, :action_type, :spell_id,
			:damage, :damage_type, :was_critical, :echo_gained, :message, :created_at
		)`

	for _, entry := range logs {
		if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
			return fmt.Errorf("failed to insert combat log: %w", err)
		}
	}
	return nil
}

// marshalIntMap sérialise une map de compteurs pour une colonne JSONB
func marshalIntMap(values map[string]int) ([]byte, error) {
	if values == nil {
		values = map[string]int{}
	}
	return json.Marshal(values)
}

// unmarshalIntMap relit une map de compteurs depuis une colonne JSONB
func unmarshalIntMap(data []byte, target *map[string]int) error {
	*target = map[string]int{}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
