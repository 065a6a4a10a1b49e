package constants

// Constantes d'équilibrage du combat
const (
	// Gains d'Echo par action offensive
	EchoGainBasicAttack = 5
	EchoGainSpellBase   = 5
	EchoGainSkillBonus  = 10

	// Jauge d'Echo et consommable par défaut d'un joueur
	DefaultEchoMax        = 100
	DefaultConsumableUses = 1

	// Fuite : chance de base, bonus par point de vitesse d'écart, bornes
	FleeBaseChance    = 0.5
	FleeSpeedPerPoint = 0.01
	FleeMinChance     = 0.1
	FleeMaxChance     = 0.9

	// Stats de base du joueur et progression par niveau
	PlayerBaseHP        = 100
	PlayerHPPerLevel    = 10
	PlayerBaseAD        = 10
	PlayerADPerLevel    = 2
	PlayerBaseAP        = 10
	PlayerAPPerLevel    = 2
	PlayerBaseArmor     = 5
	PlayerArmorPerLevel = 1
	PlayerBaseMR        = 5
	PlayerMRPerLevel    = 1
	PlayerBaseSpeed     = 10
	PlayerBaseCritPct   = 0.05
	PlayerBaseCritMult  = 1.5

	// Bornes du niveau de monstre accepté au démarrage
	MinMonsterLevel = 1
	MaxMonsterLevel = 100

	// Nombre de lignes de journal renvoyées dans l'état de combat
	CombatLogTailLength = 10
)

// AvailableCombatActions liste les actions proposées au joueur à son tour
var AvailableCombatActions = []string{"basic_attack", "spell", "consumable", "flee"}
