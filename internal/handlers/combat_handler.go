package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"combat/internal/middleware"
	"combat/internal/models"
	"combat/internal/service"
)

// CombatHandler gère les requêtes HTTP liées au combat
type CombatHandler struct {
	combatService service.CombatServiceInterface
}

// NewCombatHandler crée un nouveau handler de combat
func NewCombatHandler(combatService service.CombatServiceInterface) *CombatHandler {
	return &CombatHandler{
		combatService: combatService,
	}
}

// StartCombat démarre un combat contre un monstre
// POST /api/v1/combat/start
func (h *CombatHandler) StartCombat(c *gin.Context) {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.StartCombatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewInvalidRequest("invalid request format: "+err.Error()))
		return
	}

	result, err := h.combatService.StartCombat(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetCurrentCombat récupère l'état du combat actif du joueur
// GET /api/v1/combat/current
func (h *CombatHandler) GetCurrentCombat(c *gin.Context) {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	state, err := h.combatService.GetCurrentCombat(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// ExecuteAction exécute une action de combat pendant le tour du joueur
// POST /api/v1/combat/action
func (h *CombatHandler) ExecuteAction(c *gin.Context) {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.CombatActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewInvalidRequest("invalid request format: "+err.Error()))
		return
	}

	result, err := h.combatService.ExecuteAction(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Flee tente de fuir le combat actif
// POST /api/v1/combat/flee
func (h *CombatHandler) Flee(c *gin.Context) {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := h.combatService.Flee(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// respondError traduit une erreur du service en réponse HTTP.
// Les erreurs métier portent leur propre statut, tout le reste devient un 500 opaque.
func (h *CombatHandler) respondError(c *gin.Context, err error) {
	var combatErr *models.CombatError
	if errors.As(err, &combatErr) {
		c.JSON(combatErr.Status, combatErr)
		return
	}

	logrus.WithFields(logrus.Fields{
		"error":      err.Error(),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("request_id"),
	}).Error("Unhandled combat service error")

	c.JSON(http.StatusInternalServerError, models.NewInternalError(errors.New("internal server error")))
}
