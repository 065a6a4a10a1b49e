package models

// StatsBlock regroupe les statistiques de combat d'une entité.
// Valeur immuable : les méthodes retournent toujours un nouveau bloc.
type StatsBlock struct {
	MaxHP      int     `json:"max_hp" db:"max_hp"`
	AD         int     `json:"ad" db:"ad"`
	AP         int     `json:"ap" db:"ap"`
	Armor      int     `json:"armor" db:"armor"`
	MR         int     `json:"mr" db:"mr"`
	Speed      int     `json:"speed" db:"speed"`
	CritChance float64 `json:"crit_chance" db:"crit_chance"`
	CritDamage float64 `json:"crit_damage" db:"crit_damage"`
}

// Add additionne deux blocs point par point
func (s StatsBlock) Add(other StatsBlock) StatsBlock {
	return StatsBlock{
		MaxHP:      s.MaxHP + other.MaxHP,
		AD:         s.AD + other.AD,
		AP:         s.AP + other.AP,
		Armor:      s.Armor + other.Armor,
		MR:         s.MR + other.MR,
		Speed:      s.Speed + other.Speed,
		CritChance: s.CritChance + other.CritChance,
		CritDamage: s.CritDamage + other.CritDamage,
	}
}

// Scale multiplie chaque stat par un niveau (blocs de progression par niveau)
func (s StatsBlock) Scale(level int) StatsBlock {
	return StatsBlock{
		MaxHP:      s.MaxHP * level,
		AD:         s.AD * level,
		AP:         s.AP * level,
		Armor:      s.Armor * level,
		MR:         s.MR * level,
		Speed:      s.Speed * level,
		CritChance: s.CritChance * float64(level),
		CritDamage: s.CritDamage * float64(level),
	}
}

// ScaleToLevel compose un bloc de base avec sa progression : base + perLevel × level
func (s StatsBlock) ScaleToLevel(perLevel StatsBlock, level int) StatsBlock {
	return s.Add(perLevel.Scale(level))
}
