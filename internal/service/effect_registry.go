package service

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"combat/internal/models"
	"combat/internal/monitoring"
)

// EffectHandler exécute un opcode d'effet sur le couple (source, cible)
type EffectHandler func(b *Battle, source, target *models.CombatEntity, params models.EffectParams) error

// effectRegistry associe chaque opcode à son exécutant. Le registre est
// rempli par les init() des fichiers effects_*.go et n'est plus modifié
// ensuite : la lecture concurrente est sûre.
var effectRegistry = map[string]EffectHandler{}

// RegisterEffect enregistre l'exécutant d'un opcode
func RegisterEffect(opcode string, handler EffectHandler) {
	if _, exists := effectRegistry[opcode]; exists {
		logrus.WithField("opcode", opcode).Warn("Overwriting existing opcode")
	}
	effectRegistry[opcode] = handler
}

// RegisteredOpcodes retourne la liste triée des opcodes connus
func RegisteredOpcodes() []string {
	opcodes := make([]string, 0, len(effectRegistry))
	for opcode := range effectRegistry {
		opcodes = append(opcodes, opcode)
	}
	sort.Strings(opcodes)
	return opcodes
}

// IsOpcodeRegistered indique si un opcode est connu du moteur
func IsOpcodeRegistered(opcode string) bool {
	_, ok := effectRegistry[opcode]
	return ok
}

// RunEffects exécute une liste d'effets en ordre croissant de (order,
// indice dans la liste). Un opcode absent ou inconnu est journalisé dans le
// combat puis ignoré ; une erreur d'exécutant est fatale et interrompt
// l'action sans persistance.
func RunEffects(b *Battle, source, target *models.CombatEntity, effects []models.EffectPayload) error {
	sorted := make([]models.EffectPayload, len(effects))
	copy(sorted, effects)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	for _, effect := range sorted {
		if effect.Opcode == "" {
			monitoring.EffectErrorsTotal.WithLabelValues("missing_opcode").Inc()
			b.Log("[WARN] Effect missing opcode")
			continue
		}

		handler, ok := effectRegistry[effect.Opcode]
		if !ok {
			monitoring.EffectErrorsTotal.WithLabelValues("unknown_opcode").Inc()
			b.Log(fmt.Sprintf("[WARN] Unknown opcode: %s", effect.Opcode))
			continue
		}

		params := effect.Params
		if params == nil {
			params = models.EffectParams{}
		}

		if err := handler(b, source, target, params); err != nil {
			b.Log(fmt.Sprintf("[ERROR] Effect %s failed: %v", effect.Opcode, err))
			logrus.WithFields(logrus.Fields{
				"opcode":     effect.Opcode,
				"session_id": b.Session.ID,
			}).WithError(err).Error("Effect execution failed")
			return fmt.Errorf("effect %s: %w", effect.Opcode, err)
		}
	}

	return nil
}
