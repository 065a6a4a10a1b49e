package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"combat/internal/config"
)

// PlayerClientInterface définit les méthodes pour communiquer avec le service Player
type PlayerClientInterface interface {
	ApplyRewards(ctx context.Context, grant RewardGrant) error
}

// RewardGrant représente les récompenses d'un combat à créditer au joueur
type RewardGrant struct {
	PlayerID   uuid.UUID `json:"player_id"`
	SessionID  uuid.UUID `json:"session_id"`
	XPGained   int       `json:"xp_gained"`
	GoldGained int       `json:"gold_gained"`
}

// PlayerClient implémente l'interface PlayerClientInterface
type PlayerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPlayerClient crée une nouvelle instance du client Player
func NewPlayerClient(cfg *config.Config) PlayerClientInterface {
	return &PlayerClient{
		baseURL: cfg.Services.PlayerService.URL,
		httpClient: &http.Client{
			Timeout: cfg.Services.PlayerService.Timeout,
		},
	}
}

// ApplyRewards crédite l'XP et l'or gagnés au joueur
func (c *PlayerClient) ApplyRewards(ctx context.Context, grant RewardGrant) error {
	body, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("failed to marshal reward grant: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/internal/players/%s/rewards", c.baseURL, grant.PlayerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call player service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("player service returned status %d", resp.StatusCode)
	}

	logrus.WithFields(logrus.Fields{
		"player_id":   grant.PlayerID,
		"session_id":  grant.SessionID,
		"xp_gained":   grant.XPGained,
		"gold_gained": grant.GoldGained,
	}).Info("Rewards applied")

	return nil
}
