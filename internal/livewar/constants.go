// internal/livewar/constants.go
package livewar

import "time"

// Unit type and team identifiers as they appear on the wire.
const (
	UnitMiner       = "miner"
	UnitEngineer    = "engineer"
	UnitHeavyTank   = "heavy_tank"
	UnitAssaultTank = "assault_tank"

	TeamRed  = "red"
	TeamBlue = "blue"
)

// unitStats is the combat profile of one unit type.
type unitStats struct {
	HP          int64
	Attack      int64
	Speed       float64
	AttackRange float64
	EnergyDrop  int64
}

var unitTypes = map[string]unitStats{
	UnitMiner:       {HP: 60, Attack: 6, Speed: 1.0, AttackRange: 1.5, EnergyDrop: 10},
	UnitEngineer:    {HP: 90, Attack: 12, Speed: 4.0, AttackRange: 1.5, EnergyDrop: 10},
	UnitHeavyTank:   {HP: 220, Attack: 28, Speed: 0.5, AttackRange: 2.5, EnergyDrop: 10},
	UnitAssaultTank: {HP: 120, Attack: 32, Speed: 1.2, AttackRange: 2.5, EnergyDrop: 10},
}

var spawnCost = map[string]int64{
	UnitMiner:       20,
	UnitEngineer:    50,
	UnitHeavyTank:   100,
	UnitAssaultTank: 80,
}

// TickInterval is the simulation cadence.
const TickInterval = 100 * time.Millisecond

const (
	tickSeconds        = 0.1
	attackCooldown     = 1.0 // seconds between attacks per unit
	miningSpeedPenalty = 0.8

	initialEnergy        = 100
	carryReturnThreshold = 30 // carried energy at which a miner heads home

	mineHarvestPerTick = 10
	mineLifetime       = 180.0
	mineSpawnInterval  = 60.0
	mineEnergyMax      = 1000
	mineRegenPerTick   = 3 // 30 energy/s at 10 ticks/s

	dropLifetime    = 60.0
	dropHealPercent = 0.5

	healEffectLifetime   = 0.5
	bulletEffectLifetime = 0.3

	minerRespawnDelay  = 5.0
	gameOverResetDelay = 10.0

	defaultMapWidth  = 60
	defaultMapHeight = 60
)

func teamLabel(team string) string {
	switch team {
	case TeamRed:
		return "红方"
	case TeamBlue:
		return "蓝方"
	default:
		return team
	}
}

func unitLabel(unitType string) string {
	switch unitType {
	case UnitMiner:
		return "矿工"
	case UnitEngineer:
		return "工程师"
	case UnitHeavyTank:
		return "重型坦克"
	case UnitAssaultTank:
		return "突击坦克"
	default:
		return unitType
	}
}
