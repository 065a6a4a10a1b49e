package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"combat/internal/config"
	"combat/internal/models"
)

// LootResolverInterface définit le tirage de butin sur une table de loot.
// La résolution des tables appartient au service loot ; le combat ne
// transmet que la graine pour garder le tirage rejouable.
type LootResolverInterface interface {
	Roll(ctx context.Context, lootTableID uuid.UUID, monsterLevel int, seed int64) ([]models.LootDropDTO, error)
}

// LootClient implémente LootResolverInterface contre le service loot
type LootClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLootClient crée une nouvelle instance du client loot
func NewLootClient(cfg *config.Config) LootResolverInterface {
	return &LootClient{
		baseURL: cfg.Services.LootService.URL,
		httpClient: &http.Client{
			Timeout: cfg.Services.LootService.Timeout,
		},
	}
}

// Roll tire le butin d'une table de loot
func (c *LootClient) Roll(ctx context.Context, lootTableID uuid.UUID, monsterLevel int, seed int64) ([]models.LootDropDTO, error) {
	url := fmt.Sprintf("%s/api/v1/internal/loot-tables/%s/roll?level=%d&seed=%d",
		c.baseURL, lootTableID, monsterLevel, seed)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call loot service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("loot service returned status %d", resp.StatusCode)
	}

	drops := []models.LootDropDTO{}
	if err := json.NewDecoder(resp.Body).Decode(&drops); err != nil {
		return nil, fmt.Errorf("failed to decode loot drops: %w", err)
	}

	return drops, nil
}

// NoLootResolver est le résolveur par défaut quand aucun service loot
// n'est configuré : jamais de butin
type NoLootResolver struct{}

// NewNoLootResolver crée un résolveur de butin vide
func NewNoLootResolver() LootResolverInterface {
	return &NoLootResolver{}
}

// Roll ne retourne jamais de butin
func (r *NoLootResolver) Roll(ctx context.Context, lootTableID uuid.UUID, monsterLevel int, seed int64) ([]models.LootDropDTO, error) {
	return []models.LootDropDTO{}, nil
}
