package models

import "encoding/json"

// DamageType définit les types de dégâts
type DamageType string

const (
	DamageTypePhysical DamageType = "PHYSICAL"
	DamageTypeMagic    DamageType = "MAGIC"
	DamageTypeTrue     DamageType = "TRUE"
	DamageTypeMixed    DamageType = "MIXED"
)

// ParseDamageType convertit un libellé de type de dégâts, avec repli sur
// le type donné si le libellé est inconnu
func ParseDamageType(value string, fallback DamageType) DamageType {
	switch DamageType(value) {
	case DamageTypePhysical, DamageTypeMagic, DamageTypeTrue, DamageTypeMixed:
		return DamageType(value)
	default:
		return fallback
	}
}

// EffectParams porte les paramètres d'un effet tels que décodés du JSON.
// Les accesseurs sont tolérants : les nombres JSON arrivent en float64,
// certaines formules sont stockées en nombre brut.
type EffectParams map[string]interface{}

// EffectPayload représente un effet déclaratif : un opcode et ses paramètres.
// L'ordre d'exécution est (order, index dans la liste) croissant.
type EffectPayload struct {
	Opcode string       `json:"opcode"`
	Params EffectParams `json:"params"`
	Order  int          `json:"order"`
}

// DamageResult détaille la résolution d'une instance de dégâts
type DamageResult struct {
	RawDamage       int        `json:"raw_damage"`
	MitigatedDamage int        `json:"mitigated_damage"`
	FinalDamage     int        `json:"final_damage"`
	DamageType      DamageType `json:"damage_type"`
	WasCritical     bool       `json:"was_critical"`
	Overkill        int        `json:"overkill"`
}

// GetString lit un paramètre texte avec valeur par défaut
func (p EffectParams) GetString(key, def string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// GetFloat lit un paramètre numérique avec valeur par défaut
func (p EffectParams) GetFloat(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return def
}

// GetInt lit un paramètre entier avec valeur par défaut
func (p EffectParams) GetInt(key string, def int) int {
	switch v := p[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	}
	return def
}

// GetBool lit un paramètre booléen avec valeur par défaut
func (p EffectParams) GetBool(key string, def bool) bool {
	if v, ok := p[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Has indique si le paramètre est présent
func (p EffectParams) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// GetFormula lit une formule : chaîne telle quelle, nombre converti en littéral
func (p EffectParams) GetFormula(key, def string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		data, _ := json.Marshal(v)
		return string(data)
	}
	return def
}

// GetEffects décode une liste d'effets imbriquée (branches de if_condition)
func (p EffectParams) GetEffects(key string) []EffectPayload {
	raw, ok := p[key]
	if !ok {
		return nil
	}

	// Re-passage par JSON : les branches arrivent en []interface{} depuis le décodage
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}

	var effects []EffectPayload
	if err := json.Unmarshal(data, &effects); err != nil {
		return nil
	}
	return effects
}
