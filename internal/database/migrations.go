package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Migration 1: Table des sessions de combat
const createCombatSessionsTable = `
CREATE TABLE IF NOT EXISTS combat_sessions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    player_id UUID NOT NULL,
    monster_blueprint_id UUID NOT NULL,
    monster_level INTEGER NOT NULL DEFAULT 1,
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'PLAYER_TURN', 'MONSTER_TURN', 'VICTORY', 'DEFEAT', 'ABANDONED')),
    turn_count INTEGER NOT NULL DEFAULT 0,
    current_turn_entity VARCHAR(10) NOT NULL DEFAULT 'player' CHECK (current_turn_entity IN ('player', 'monster')),

    -- Snapshot joueur
    player_current_hp INTEGER NOT NULL,
    player_max_hp INTEGER NOT NULL,
    player_echo_current INTEGER NOT NULL DEFAULT 0,
    player_echo_max INTEGER NOT NULL DEFAULT 100,
    player_consumable_uses INTEGER NOT NULL DEFAULT 1,
    player_statuses JSONB NOT NULL DEFAULT '{}',
    player_gauges JSONB NOT NULL DEFAULT '{}',
    player_cooldowns JSONB NOT NULL DEFAULT '{}',

    -- Snapshot monstre
    monster_current_hp INTEGER NOT NULL,
    monster_max_hp INTEGER NOT NULL,
    monster_statuses JSONB NOT NULL DEFAULT '{}',
    monster_gauges JSONB NOT NULL DEFAULT '{}',
    monster_cooldowns JSONB NOT NULL DEFAULT '{}',

    -- Reproductibilité et verrouillage optimiste
    rng_seed BIGINT NOT NULL,
    version BIGINT NOT NULL DEFAULT 1,

    -- Timestamps
    started_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    ended_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 2: Journal de combat structuré
const createCombatLogsTable = `
CREATE TABLE IF NOT EXISTS combat_logs (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    session_id UUID NOT NULL REFERENCES combat_sessions(id) ON DELETE CASCADE,
    turn INTEGER NOT NULL,
    actor VARCHAR(10) NOT NULL CHECK (actor IN ('player', 'monster')),
    action_type VARCHAR(20) NOT NULL CHECK (action_type IN ('basic_attack', 'spell', 'consumable', 'flee', 'status_tick', 'system')),
    spell_id UUID,
    damage INTEGER NOT NULL DEFAULT 0,
    damage_type VARCHAR(10) CHECK (damage_type IN ('PHYSICAL', 'MAGIC', 'TRUE', 'MIXED')),
    was_critical BOOLEAN NOT NULL DEFAULT false,
    echo_gained INTEGER NOT NULL DEFAULT 0,
    message TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 3: Définitions des statuts
const createStatusDefinitionsTable = `
CREATE TABLE IF NOT EXISTS status_definitions (
    code VARCHAR(50) PRIMARY KEY,
    display_name VARCHAR(100) NOT NULL,
    is_debuff BOOLEAN NOT NULL DEFAULT false,
    is_stackable BOOLEAN NOT NULL DEFAULT false,
    max_stacks INTEGER NOT NULL DEFAULT 0,
    tick_trigger VARCHAR(20) NOT NULL DEFAULT '' CHECK (tick_trigger IN ('', 'ON_TURN_START', 'ON_TURN_END', 'ON_HIT', 'ON_DAMAGED', 'IMMEDIATE')),
    tick_effect JSONB,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 4: Blueprints de monstres
const createMonsterBlueprintsTable = `
CREATE TABLE IF NOT EXISTS monster_blueprints (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    ai_behavior VARCHAR(20) NOT NULL DEFAULT 'basic' CHECK (ai_behavior IN ('basic', 'aggressive', 'defensive', 'healer', 'balanced', 'boss')),
    base_level INTEGER NOT NULL DEFAULT 1,
    is_boss BOOLEAN NOT NULL DEFAULT false,

    -- Stats : base + progression par niveau
    base_stats JSONB NOT NULL DEFAULT '{}',
    per_level_stats JSONB NOT NULL DEFAULT '{}',

    -- Récompenses
    xp_reward INTEGER NOT NULL DEFAULT 0,
    gold_reward_min INTEGER NOT NULL DEFAULT 0,
    gold_reward_max INTEGER NOT NULL DEFAULT 0,
    loot_table_id UUID,

    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 5: Capacités des monstres
const createMonsterAbilitiesTable = `
CREATE TABLE IF NOT EXISTS monster_abilities (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    blueprint_id UUID NOT NULL REFERENCES monster_blueprints(id) ON DELETE CASCADE,
    name VARCHAR(100) NOT NULL,
    cooldown_turns INTEGER NOT NULL DEFAULT 0,
    priority INTEGER NOT NULL DEFAULT 1,
    condition_expr TEXT NOT NULL DEFAULT '',
    effects JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 6: Blueprints d'objets équipables
const createItemBlueprintsTable = `
CREATE TABLE IF NOT EXISTS item_blueprints (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    slot VARCHAR(20) NOT NULL CHECK (slot IN ('weapon', 'armor', 'trinket', 'consumable')),

    -- Contribution aux stats : base + progression par niveau d'objet
    base_stats JSONB NOT NULL DEFAULT '{}',
    per_level_stats JSONB NOT NULL DEFAULT '{}',

    -- Consommables
    consumable_uses INTEGER NOT NULL DEFAULT 0,
    consumable_effects JSONB NOT NULL DEFAULT '[]',

    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 7: Sorts portés par les objets
const createSpellsTable = `
CREATE TABLE IF NOT EXISTS spells (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    item_blueprint_id UUID NOT NULL REFERENCES item_blueprints(id) ON DELETE CASCADE,
    name VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    spell_type VARCHAR(10) NOT NULL DEFAULT 'BASIC' CHECK (spell_type IN ('BASIC', 'SKILL', 'ULTIMATE')),
    spell_order INTEGER NOT NULL DEFAULT 0,
    cooldown_turns INTEGER NOT NULL DEFAULT 0,
    echo_cost INTEGER NOT NULL DEFAULT 0,
    effects JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 8: Profils joueurs (miroir local du service player)
const createPlayerProfilesTable = `
CREATE TABLE IF NOT EXISTS player_profiles (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID UNIQUE NOT NULL,
    name VARCHAR(50) NOT NULL,
    level INTEGER NOT NULL DEFAULT 1 CHECK (level >= 1 AND level <= 100),
    xp BIGINT NOT NULL DEFAULT 0,
    gold BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 9: Équipement des joueurs
const createPlayerEquipmentTable = `
CREATE TABLE IF NOT EXISTS player_equipment (
    player_id UUID NOT NULL REFERENCES player_profiles(id) ON DELETE CASCADE,
    item_id UUID NOT NULL REFERENCES item_blueprints(id) ON DELETE CASCADE,
    slot VARCHAR(20) NOT NULL CHECK (slot IN ('weapon', 'armor', 'trinket', 'consumable')),
    item_level INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,

    PRIMARY KEY (player_id, slot)
);`

// Migration 10: Index
const createIndexes = `
-- Au plus une session active par joueur
CREATE UNIQUE INDEX IF NOT EXISTS idx_combat_sessions_active_player
    ON combat_sessions(player_id)
    WHERE status IN ('PENDING', 'PLAYER_TURN', 'MONSTER_TURN');

-- Index pour combat_sessions
CREATE INDEX IF NOT EXISTS idx_combat_sessions_player_id ON combat_sessions(player_id);
CREATE INDEX IF NOT EXISTS idx_combat_sessions_status ON combat_sessions(status);
CREATE INDEX IF NOT EXISTS idx_combat_sessions_started_at ON combat_sessions(started_at);

-- Index pour combat_logs
CREATE INDEX IF NOT EXISTS idx_combat_logs_session_id ON combat_logs(session_id);
CREATE INDEX IF NOT EXISTS idx_combat_logs_session_turn ON combat_logs(session_id, turn);

-- Index pour le contenu
CREATE INDEX IF NOT EXISTS idx_monster_abilities_blueprint_id ON monster_abilities(blueprint_id);
CREATE INDEX IF NOT EXISTS idx_spells_item_blueprint_id ON spells(item_blueprint_id);
CREATE INDEX IF NOT EXISTS idx_player_equipment_player_id ON player_equipment(player_id);`

// RunMigrations exécute les migrations de base de données
func RunMigrations(db *DB) error {
	logrus.Info("Running combat database migrations...")

	migrations := []string{
		createCombatSessionsTable,
		createCombatLogsTable,
		createStatusDefinitionsTable,
		createMonsterBlueprintsTable,
		createMonsterAbilitiesTable,
		createItemBlueprintsTable,
		createSpellsTable,
		createPlayerProfilesTable,
		createPlayerEquipmentTable,
		createIndexes,
	}

	for i, migration := range migrations {
		logrus.WithField("migration", i+1).Debug("Executing migration")

		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", i+1, err)
		}
	}

	logrus.Info("Combat database migrations completed successfully")
	return nil
}
