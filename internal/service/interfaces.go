package service

import (
	"context"

	"github.com/google/uuid"

	"combat/internal/models"
)

// CombatServiceInterface définit les opérations publiques de l'orchestrateur
// de combat. Toutes prennent l'identifiant du compte utilisateur authentifié
// et résolvent elles-mêmes le profil joueur correspondant.
type CombatServiceInterface interface {
	// StartCombat démarre un combat contre un monstre. Refusé si le joueur
	// a déjà une session active.
	StartCombat(ctx context.Context, userID uuid.UUID, req models.StartCombatRequest) (*models.CombatResultDTO, error)

	// GetCurrentCombat retourne l'état de la session active du joueur
	GetCurrentCombat(ctx context.Context, userID uuid.UUID) (*models.CombatStateDTO, error)

	// ExecuteAction résout une action du joueur puis le tour du monstre
	ExecuteAction(ctx context.Context, userID uuid.UUID, req models.CombatActionRequest) (*models.CombatResultDTO, error)

	// Flee tente une fuite ; un échec consomme le tour du joueur
	Flee(ctx context.Context, userID uuid.UUID) (*models.CombatResultDTO, error)
}
