// internal/livewar/state.go
package livewar

import "math"

// Base is one team's destructible headquarters.
type Base struct {
	X, Y  float64
	HP    int64
	HPMax int64
}

// Unit is a live combat unit. Position is continuous; occupancy rules work on
// the floored grid cell.
type Unit struct {
	ID             string
	Type           string
	Team           string
	OwnerID        int64
	X, Y           float64
	HP             int64
	HPMax          int64
	Attack         int64
	Speed          float64
	AttackRange    float64
	IsDead         bool
	CarryingEnergy int64
	TargetX        float64
	TargetY        float64
	TargetID       string
	LastAttackTime float64
	IsMining       bool
}

type MineField struct {
	ID        string
	X, Y      float64
	Energy    int64
	EnergyMax int64
	Created   float64
	Lifetime  float64
}

type EnergyDrop struct {
	ID      string
	X, Y    float64
	Energy  int64
	Dropped float64
}

type HealEffect struct {
	ID       string
	X, Y     float64
	Created  float64
	Lifetime float64
	Team     string
}

type BulletEffect struct {
	ID           string
	FromX, FromY float64
	ToX, ToY     float64
	Created      float64
	Lifetime     float64
	Team         string
}

// RoomState is the full simulation state of one room. PlayerOrder preserves
// join order, which drives the roster and log aggregation in state frames.
type RoomState struct {
	Players     map[int64]string
	PlayerOrder []int64
	Teams       map[int64]string
	Energies    map[int64]int64
	Selected    map[int64]string

	Tick          int64
	GameStarted   bool
	GameStartTime float64
	GameTime      float64
	Winner        string
	GameOverTime  float64

	Width, Height int
	RedBase       *Base
	BlueBase      *Base
	Units         []*Unit
	MineFields    []*MineField
	EnergyDrops   []*EnergyDrop
	HealEffects   []*HealEffect
	BulletEffects []*BulletEffect
	Walls         [][2]float64

	LastMineSpawn float64
	PlayerLogs    map[int64][]string

	MainMinerID    map[int64]string
	MinerDeathTime map[int64]float64
}

func newRoomState(width, height int, now float64) *RoomState {
	return &RoomState{
		Players:        make(map[int64]string),
		Teams:          make(map[int64]string),
		Energies:       make(map[int64]int64),
		Selected:       make(map[int64]string),
		Width:          width,
		Height:         height,
		RedBase:        &Base{X: 8, Y: float64(height) - 8, HP: 1000, HPMax: 1000},
		BlueBase:       &Base{X: float64(width) - 8, Y: 8, HP: 1000, HPMax: 1000},
		LastMineSpawn:  now,
		PlayerLogs:     make(map[int64][]string),
		MainMinerID:    make(map[int64]string),
		MinerDeathTime: make(map[int64]float64),
	}
}

func (st *RoomState) addPlayer(userID int64, username string) {
	if _, ok := st.Players[userID]; !ok {
		st.PlayerOrder = append(st.PlayerOrder, userID)
	}
	st.Players[userID] = username
}

func (st *RoomState) removePlayer(userID int64) {
	delete(st.Players, userID)
	for i, uid := range st.PlayerOrder {
		if uid == userID {
			st.PlayerOrder = append(st.PlayerOrder[:i], st.PlayerOrder[i+1:]...)
			break
		}
	}
}

func (st *RoomState) teamCount(team string) int {
	n := 0
	for _, t := range st.Teams {
		if t == team {
			n++
		}
	}
	return n
}

func (st *RoomState) baseFor(team string) *Base {
	if team == TeamRed {
		return st.RedBase
	}
	return st.BlueBase
}

func (st *RoomState) enemyBaseFor(team string) *Base {
	if team == TeamRed {
		return st.BlueBase
	}
	return st.RedBase
}

func (st *RoomState) removeUnit(id string) {
	for i, u := range st.Units {
		if u.ID == id {
			st.Units = append(st.Units[:i], st.Units[i+1:]...)
			return
		}
	}
}

func (st *RoomState) removeDrop(id string) {
	for i, d := range st.EnergyDrops {
		if d.ID == id {
			st.EnergyDrops = append(st.EnergyDrops[:i], st.EnergyDrops[i+1:]...)
			return
		}
	}
}

func (st *RoomState) nearestEnemy(u *Unit) *Unit {
	var nearest *Unit
	minDist := math.Inf(1)
	for _, t := range st.Units {
		if t.IsDead || t.Team == u.Team {
			continue
		}
		if d := distance(u.X, u.Y, t.X, t.Y); d < minDist {
			minDist = d
			nearest = t
		}
	}
	return nearest
}

func (st *RoomState) nearestEnemyOfType(u *Unit, unitType string) *Unit {
	var nearest *Unit
	minDist := math.Inf(1)
	for _, t := range st.Units {
		if t.IsDead || t.Team == u.Team || t.Type != unitType {
			continue
		}
		if d := distance(u.X, u.Y, t.X, t.Y); d < minDist {
			minDist = d
			nearest = t
		}
	}
	return nearest
}

// nearestEnemyTank returns the closest living enemy tank of either class and
// its distance.
func (st *RoomState) nearestEnemyTank(u *Unit) (*Unit, float64) {
	var nearest *Unit
	minDist := math.Inf(1)
	for _, t := range st.Units {
		if t.IsDead || t.Team == u.Team {
			continue
		}
		if t.Type != UnitHeavyTank && t.Type != UnitAssaultTank {
			continue
		}
		if d := distance(u.X, u.Y, t.X, t.Y); d < minDist {
			minDist = d
			nearest = t
		}
	}
	return nearest, minDist
}

// nearestMine returns the closest mine that still has energy.
func (st *RoomState) nearestMine(u *Unit) *MineField {
	var nearest *MineField
	minDist := math.Inf(1)
	for _, m := range st.MineFields {
		if m.Energy <= 0 {
			continue
		}
		if d := distance(u.X, u.Y, m.X, m.Y); d < minDist {
			minDist = d
			nearest = m
		}
	}
	return nearest
}

func (st *RoomState) nearestDrop(u *Unit) *EnergyDrop {
	var nearest *EnergyDrop
	minDist := math.Inf(1)
	for _, d := range st.EnergyDrops {
		if dd := distance(u.X, u.Y, d.X, d.Y); dd < minDist {
			minDist = dd
			nearest = d
		}
	}
	return nearest
}

func (st *RoomState) mineWithin(x, y, r float64) bool {
	for _, m := range st.MineFields {
		if distance(x, y, m.X, m.Y) < r {
			return true
		}
	}
	return false
}

func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}
