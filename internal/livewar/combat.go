// internal/livewar/combat.go
package livewar

import (
	"fmt"

	"github.com/momentchat/moment/internal/protocol"
)

// resolveCombatLocked lets every off-cooldown unit fire at one target. Assault
// tanks only engage units; heavy tanks engage tanks then the base; miners and
// engineers engage anything, then the base.
func (g *Game) resolveCombatLocked(st *RoomState, now float64) {
	units := make([]*Unit, len(st.Units))
	copy(units, st.Units)

	for _, u := range units {
		if u.IsDead {
			continue
		}
		if now-u.LastAttackTime < attackCooldown {
			continue
		}

		switch u.Type {
		case UnitAssaultTank:
			for _, t := range units {
				if t.IsDead || t.Team == u.Team {
					continue
				}
				switch t.Type {
				case UnitHeavyTank, UnitAssaultTank, UnitEngineer, UnitMiner:
				default:
					continue
				}
				if distance(u.X, u.Y, t.X, t.Y) <= u.AttackRange {
					g.attackUnitLocked(st, u, t, now)
					break
				}
			}

		case UnitHeavyTank:
			attacked := false
			for _, t := range units {
				if t.IsDead || t.Team == u.Team {
					continue
				}
				if t.Type != UnitHeavyTank && t.Type != UnitAssaultTank {
					continue
				}
				if distance(u.X, u.Y, t.X, t.Y) <= u.AttackRange {
					g.attackUnitLocked(st, u, t, now)
					attacked = true
					break
				}
			}
			if !attacked {
				g.attackEnemyBaseInRangeLocked(st, u, now)
			}

		default:
			attacked := false
			for _, t := range units {
				if t.IsDead || t.Team == u.Team {
					continue
				}
				if distance(u.X, u.Y, t.X, t.Y) <= u.AttackRange {
					g.attackUnitLocked(st, u, t, now)
					attacked = true
					break
				}
			}
			if !attacked {
				g.attackEnemyBaseInRangeLocked(st, u, now)
			}
		}
	}
}

func (g *Game) attackEnemyBaseInRangeLocked(st *RoomState, u *Unit, now float64) {
	b := st.enemyBaseFor(u.Team)
	if b == nil || b.HP <= 0 {
		return
	}
	if distance(u.X, u.Y, b.X, b.Y) <= u.AttackRange {
		g.attackBaseLocked(st, u, b, now)
	}
}

// attackUnitLocked applies one hit and handles a resulting death. Only tanks
// produce a bullet tracer.
func (g *Game) attackUnitLocked(st *RoomState, attacker, target *Unit, now float64) {
	if attacker.Type == UnitHeavyTank || attacker.Type == UnitAssaultTank {
		st.BulletEffects = append(st.BulletEffects, &BulletEffect{
			ID:       shortID("bullet_", 6),
			FromX:    attacker.X,
			FromY:    attacker.Y,
			ToX:      target.X,
			ToY:      target.Y,
			Created:  now,
			Lifetime: bulletEffectLifetime,
			Team:     attacker.Team,
		})
	}
	target.HP = max(0, target.HP-attacker.Attack)
	attacker.LastAttackTime = now
	if target.HP <= 0 {
		g.killUnitLocked(st, target, now)
	}
}

func (g *Game) attackBaseLocked(st *RoomState, attacker *Unit, b *Base, now float64) {
	if attacker.Type == UnitHeavyTank || attacker.Type == UnitAssaultTank {
		st.BulletEffects = append(st.BulletEffects, &BulletEffect{
			ID:       shortID("bullet_", 6),
			FromX:    attacker.X,
			FromY:    attacker.Y,
			ToX:      b.X,
			ToY:      b.Y,
			Created:  now,
			Lifetime: bulletEffectLifetime,
			Team:     attacker.Team,
		})
	}
	b.HP = max(0, b.HP-attacker.Attack)
	attacker.LastAttackTime = now
}

// killUnitLocked drops the unit's cargo plus its salvage value as pickable
// energy, records a starter-miner death for respawn, and removes the unit.
func (g *Game) killUnitLocked(st *RoomState, u *Unit, now float64) {
	if u.IsDead {
		return
	}
	u.IsDead = true

	drop := u.CarryingEnergy + unitEnergyDrop(u.Type)
	if drop > 0 {
		st.EnergyDrops = append(st.EnergyDrops, &EnergyDrop{
			ID:      shortID("drop_", 8),
			X:       u.X,
			Y:       u.Y,
			Energy:  drop,
			Dropped: now,
		})
	}
	u.CarryingEnergy = 0

	if u.Type == UnitMiner && st.MainMinerID[u.OwnerID] == u.ID {
		st.MinerDeathTime[u.OwnerID] = now
		delete(st.MainMinerID, u.OwnerID)
	}

	st.removeUnit(u.ID)
}

func unitEnergyDrop(unitType string) int64 {
	if stats, ok := unitTypes[unitType]; ok {
		return stats.EnergyDrop
	}
	return 10
}

// checkGameOverLocked ends the match when a base falls and announces the
// winner.
func (g *Game) checkGameOverLocked(st *RoomState, now float64) {
	if st.Winner != "" {
		return
	}

	winner := ""
	if st.RedBase != nil && st.RedBase.HP <= 0 {
		winner = TeamBlue
	} else if st.BlueBase != nil && st.BlueBase.HP <= 0 {
		winner = TeamRed
	}
	if winner == "" {
		return
	}

	st.Winner = winner
	st.GameOverTime = now

	for _, userID := range st.PlayerOrder {
		g.appendLogLocked(st, userID, fmt.Sprintf("游戏结束，%s获胜", teamLabel(winner)))
	}

	winnerName := "BLUE"
	if winner == TeamRed {
		winnerName = "RED"
	}
	g.broadcastLocked(&protocol.GameMessage{
		Type: protocol.GameMsgOver,
		GameOver: &protocol.GameOverPayload{
			Winner:     winner,
			WinnerName: winnerName,
		},
	})
}
