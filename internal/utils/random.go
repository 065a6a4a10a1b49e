package utils

import (
	"crypto/rand"
	"math/big"
	"time"
)

// SecureRandInt63 génère un entier aléatoire sécurisé sur 63 bits,
// utilisé comme graine RNG des sessions de combat
func SecureRandInt63() int64 {
	maxVal := new(big.Int).Lsh(big.NewInt(1), 63)
	result, err := rand.Int(rand.Reader, maxVal)
	if err != nil {
		// Fallback en cas d'erreur
		return time.Now().UnixNano()
	}
	return result.Int64()
}
