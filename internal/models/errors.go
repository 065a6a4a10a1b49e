package models

import (
	"fmt"
	"net/http"
)

// ErrorCode identifie une catégorie d'échec exposée aux appelants
type ErrorCode string

const (
	ErrCodeInvalidRequest         ErrorCode = "INVALID_REQUEST"
	ErrCodeEntityNotFound         ErrorCode = "ENTITY_NOT_FOUND"
	ErrCodeAlreadyInCombat        ErrorCode = "ALREADY_IN_COMBAT"
	ErrCodeNotInCombat            ErrorCode = "NOT_IN_COMBAT"
	ErrCodeNotYourTurn            ErrorCode = "NOT_YOUR_TURN"
	ErrCodeSpellOnCooldown        ErrorCode = "SPELL_ON_COOLDOWN"
	ErrCodeNotEnoughEcho          ErrorCode = "NOT_ENOUGH_ECHO"
	ErrCodeNoConsumableUses       ErrorCode = "NO_CONSUMABLE_USES"
	ErrCodeConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"
	ErrCodeInternal               ErrorCode = "INTERNAL"
)

// CombatError porte un code d'erreur métier et son statut HTTP.
// Les préconditions échouées laissent toujours l'état intact.
type CombatError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Status  int       `json:"-"`
}

// Error implémente l'interface error
func (e *CombatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest signale une requête malformée ou incohérente
func NewInvalidRequest(message string) *CombatError {
	return &CombatError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewEntityNotFound signale une entité introuvable (joueur, monstre, session, objet)
func NewEntityNotFound(what string) *CombatError {
	return &CombatError{
		Code:    ErrCodeEntityNotFound,
		Message: fmt.Sprintf("%s not found", what),
		Status:  http.StatusNotFound,
	}
}

// NewAlreadyInCombat signale qu'une session active existe déjà pour ce joueur
func NewAlreadyInCombat() *CombatError {
	return &CombatError{
		Code:    ErrCodeAlreadyInCombat,
		Message: "player already has an active combat session",
		Status:  http.StatusBadRequest,
	}
}

// NewNotInCombat signale une tentative de fuite sans combat en cours
func NewNotInCombat() *CombatError {
	return &CombatError{
		Code:    ErrCodeNotInCombat,
		Message: "no active combat session",
		Status:  http.StatusBadRequest,
	}
}

// NewNotYourTurn signale une action hors du tour du joueur
func NewNotYourTurn() *CombatError {
	return &CombatError{
		Code:    ErrCodeNotYourTurn,
		Message: "it is not your turn",
		Status:  http.StatusBadRequest,
	}
}

// NewSpellOnCooldown signale un sort encore en recharge
func NewSpellOnCooldown(remaining int) *CombatError {
	return &CombatError{
		Code:    ErrCodeSpellOnCooldown,
		Message: fmt.Sprintf("spell on cooldown (%d turns)", remaining),
		Status:  http.StatusBadRequest,
	}
}

// NewNotEnoughEcho signale une jauge d'Echo insuffisante
func NewNotEnoughEcho(current, cost int) *CombatError {
	return &CombatError{
		Code:    ErrCodeNotEnoughEcho,
		Message: fmt.Sprintf("not enough Echo (%d/%d)", current, cost),
		Status:  http.StatusBadRequest,
	}
}

// NewNoConsumableUses signale un consommable épuisé ou absent
func NewNoConsumableUses() *CombatError {
	return &CombatError{
		Code:    ErrCodeNoConsumableUses,
		Message: "no consumable uses remaining",
		Status:  http.StatusBadRequest,
	}
}

// NewConcurrentModification signale un conflit d'écriture sur la session
func NewConcurrentModification() *CombatError {
	return &CombatError{
		Code:    ErrCodeConcurrentModification,
		Message: "combat session was modified concurrently, retry the action",
		Status:  http.StatusConflict,
	}
}

// NewInternalError enveloppe une erreur technique non prévue
func NewInternalError(err error) *CombatError {
	return &CombatError{
		Code:    ErrCodeInternal,
		Message: err.Error(),
		Status:  http.StatusInternalServerError,
	}
}
