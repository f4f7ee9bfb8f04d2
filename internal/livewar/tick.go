// internal/livewar/tick.go
package livewar

import "fmt"

// tickLocked advances the simulation one step: economy, AI, combat, expiry,
// respawns, win check, then a state broadcast.
func (g *Game) tickLocked() {
	st := g.state
	if st == nil || !st.GameStarted {
		return
	}

	now := g.now()
	if st.Winner != "" {
		if st.GameOverTime > 0 && now-st.GameOverTime >= gameOverResetDelay {
			g.resetGameLocked(st)
		}
		return
	}

	st.Tick++
	st.GameTime = now - st.GameStartTime

	g.refreshMinesLocked(st, now)
	g.stepUnitsLocked(st, now)
	g.resolveCombatLocked(st, now)
	g.expireDropsLocked(st, now)
	g.expireEffectsLocked(st, now)
	g.respawnMinersLocked(st, now)
	g.checkGameOverLocked(st, now)
	g.broadcastStateLocked(st)
}

// resetGameLocked returns the room to its pre-game roster state after the
// post-game window. Players must rejoin and repopulate both teams; with the
// roster empty, the tick loop parks itself on its next iteration.
func (g *Game) resetGameLocked(st *RoomState) {
	st.Players = make(map[int64]string)
	st.PlayerOrder = nil
	st.Teams = make(map[int64]string)
	st.Energies = make(map[int64]int64)
	st.Selected = make(map[int64]string)
	st.PlayerLogs = make(map[int64][]string)

	st.Tick = 0
	st.GameStarted = false
	st.GameStartTime = 0
	st.GameTime = 0
	st.Winner = ""
	st.GameOverTime = 0
	st.LastMineSpawn = 0

	st.Units = nil
	st.MineFields = nil
	st.EnergyDrops = nil
	st.HealEffects = nil
	st.BulletEffects = nil

	st.RedBase.HP = st.RedBase.HPMax
	st.BlueBase.HP = st.BlueBase.HPMax

	st.MainMinerID = make(map[int64]string)
	st.MinerDeathTime = make(map[int64]float64)

	g.broadcastStateLocked(st)
}

func (g *Game) expireDropsLocked(st *RoomState, now float64) {
	kept := st.EnergyDrops[:0]
	for _, d := range st.EnergyDrops {
		if now-d.Dropped < dropLifetime {
			kept = append(kept, d)
		}
	}
	st.EnergyDrops = kept
}

func (g *Game) expireEffectsLocked(st *RoomState, now float64) {
	heals := st.HealEffects[:0]
	for _, h := range st.HealEffects {
		if now-h.Created < h.Lifetime {
			heals = append(heals, h)
		}
	}
	st.HealEffects = heals

	bullets := st.BulletEffects[:0]
	for _, b := range st.BulletEffects {
		if now-b.Created < b.Lifetime {
			bullets = append(bullets, b)
		}
	}
	st.BulletEffects = bullets
}

// respawnMinersLocked revives starter miners five seconds after death while
// the owner is still in the game.
func (g *Game) respawnMinersLocked(st *RoomState, now float64) {
	for userID, died := range st.MinerDeathTime {
		if now-died < minerRespawnDelay {
			continue
		}
		username, ok := st.Players[userID]
		if !ok {
			continue
		}
		team, ok := st.Teams[userID]
		if !ok {
			continue
		}
		g.spawnUnitForPlayerLocked(st, userID, team, UnitMiner)
		g.appendLogLocked(st, userID, fmt.Sprintf("%s 的矿工已重生", username))
	}
}
