// internal/livewar/actions.go
package livewar

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/momentchat/moment/internal/protocol"
)

// HandleJoin admits a user to a team, spawns their starter miner and opens the
// match once both teams are populated. The returned error goes only to the
// caller; broadcasts have already been emitted by the time it is returned.
func (g *Game) HandleJoin(userID int64, username string, anonymous bool, team string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	st := g.ensureStateLocked()
	if anonymous {
		return errors.New("请先登录再加入游戏")
	}

	if team == "" {
		team = TeamRed
	}
	st.addPlayer(userID, username)
	st.Teams[userID] = team
	if _, ok := st.Energies[userID]; !ok {
		st.Energies[userID] = initialEnergy
	}
	if _, ok := st.Selected[userID]; !ok {
		st.Selected[userID] = UnitMiner
	}

	g.spawnUnitForPlayerLocked(st, userID, team, UnitMiner)
	g.appendLogLocked(st, userID, fmt.Sprintf("%s 加入了%s", username, teamLabel(team)))

	g.broadcastLocked(&protocol.GameMessage{
		Type: protocol.GameMsgPlayerJoined,
		PlayerEvent: &protocol.PlayerEventPayload{
			PlayerID:   strconv.FormatInt(userID, 10),
			PlayerName: username,
			Team:       team,
		},
	})

	now := g.now()
	if st.Winner != "" && st.GameOverTime > 0 {
		sinceOver := now - st.GameOverTime
		if sinceOver < gameOverResetDelay {
			return fmt.Errorf("游戏刚结束，请等待 %d 秒后再开始新游戏", int(gameOverResetDelay-sinceOver))
		}
	}

	if !st.GameStarted && st.teamCount(TeamRed) > 0 && st.teamCount(TeamBlue) > 0 {
		st.GameStarted = true
		st.GameStartTime = now
		st.LastMineSpawn = now
		if len(st.MineFields) == 0 {
			g.seedInitialMinesLocked(st, now)
		}
		g.broadcastLocked(&protocol.GameMessage{Type: protocol.GameMsgStarted})
		g.startLoopLocked()
	}

	st.Tick++
	g.broadcastStateLocked(st)
	return nil
}

// HandleLeave removes a user from the pre-game roster. Leaving a running match
// is rejected; unknown users are ignored.
func (g *Game) HandleLeave(userID int64, username string, anonymous bool) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	st := g.ensureStateLocked()
	if anonymous {
		return nil
	}
	if st.GameStarted {
		return errors.New("游戏已经开始，无法退出队伍")
	}
	if _, ok := st.Players[userID]; !ok {
		return nil
	}

	st.removePlayer(userID)
	delete(st.Teams, userID)
	delete(st.Energies, userID)
	delete(st.Selected, userID)
	if minerID, ok := st.MainMinerID[userID]; ok {
		delete(st.MainMinerID, userID)
		st.removeUnit(minerID)
	}
	delete(st.MinerDeathTime, userID)

	g.broadcastLocked(&protocol.GameMessage{
		Type: protocol.GameMsgPlayerLeft,
		PlayerEvent: &protocol.PlayerEventPayload{
			PlayerID:   strconv.FormatInt(userID, 10),
			PlayerName: username,
		},
	})

	st.Tick++
	g.broadcastStateLocked(st)
	return nil
}

// HandleSelectUnit records the unit type the user's next spawn will produce.
func (g *Game) HandleSelectUnit(userID int64, anonymous bool, unitType string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	st := g.ensureStateLocked()
	if anonymous {
		return nil
	}
	if _, ok := st.Players[userID]; !ok {
		return nil
	}
	if unitType == "" {
		unitType = UnitMiner
	}
	st.Selected[userID] = unitType

	st.Tick++
	g.broadcastStateLocked(st)
	return nil
}

// HandleSpawnUnit buys one unit of the user's selected type, deducting its
// energy cost.
func (g *Game) HandleSpawnUnit(userID int64, anonymous bool) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	st := g.ensureStateLocked()
	if anonymous {
		return nil
	}
	username, ok := st.Players[userID]
	if !ok {
		return nil
	}

	unitType := st.Selected[userID]
	if unitType == "" {
		unitType = UnitMiner
	}
	cost, ok := spawnCost[unitType]
	if !ok {
		cost = spawnCost[UnitMiner]
	}
	if st.Energies[userID] < cost {
		return errors.New("能量不足")
	}
	st.Energies[userID] -= cost

	team := st.Teams[userID]
	if team == "" {
		team = TeamRed
	}
	g.spawnUnitForPlayerLocked(st, userID, team, unitType)
	g.appendLogLocked(st, userID, fmt.Sprintf("%s 部署了%s", username, unitLabel(unitType)))

	st.Tick++
	g.broadcastStateLocked(st)
	return nil
}
