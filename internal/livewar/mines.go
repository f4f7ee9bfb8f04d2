// internal/livewar/mines.go
package livewar

import "math"

func newMine(x, y, now float64) *MineField {
	return &MineField{
		ID:        shortID("mine_", 6),
		X:         x,
		Y:         y,
		Energy:    mineEnergyMax,
		EnergyMax: mineEnergyMax,
		Created:   now,
		Lifetime:  mineLifetime,
	}
}

// refreshMinesLocked expires old mines, regenerates energy and spawns a fresh
// mine once per spawn interval.
func (g *Game) refreshMinesLocked(st *RoomState, now float64) {
	if !st.GameStarted {
		return
	}

	kept := st.MineFields[:0]
	for _, m := range st.MineFields {
		if now-m.Created < m.Lifetime {
			kept = append(kept, m)
		}
	}
	st.MineFields = kept

	for _, m := range st.MineFields {
		if m.Energy < m.EnergyMax {
			m.Energy = min(m.EnergyMax, m.Energy+mineRegenPerTick)
		}
	}

	if now-st.LastMineSpawn >= mineSpawnInterval {
		g.spawnMineLocked(st, now)
		st.LastMineSpawn = now
	}
}

// seedInitialMinesLocked places two mines near each base at game start, 8 to
// 12 cells out, at least 3 apart from each other.
func (g *Game) seedInitialMinesLocked(st *RoomState, now float64) {
	if !st.GameStarted || len(st.MineFields) > 0 {
		return
	}

	for _, b := range []*Base{st.RedBase, st.BlueBase} {
		if b == nil {
			continue
		}
		for i := 0; i < 2; i++ {
			for attempt := 0; attempt < 20; attempt++ {
				angle := g.uniform(0, 2*math.Pi)
				dist := g.uniform(8, 12)
				x := min(max(b.X+math.Cos(angle)*dist, 5), float64(st.Width)-5)
				y := min(max(b.Y+math.Sin(angle)*dist, 5), float64(st.Height)-5)
				if distance(x, y, b.X, b.Y) <= 5 {
					continue
				}
				if st.mineWithin(x, y, 3) {
					continue
				}
				st.MineFields = append(st.MineFields, newMine(x, y, now))
				break
			}
		}
	}
	st.LastMineSpawn = now
}

// spawnMineLocked adds one mine in a randomly chosen zone (red side, blue
// side or centre), keeping clear of bases and existing mines.
func (g *Game) spawnMineLocked(st *RoomState, now float64) {
	if !st.GameStarted || st.RedBase == nil || st.BlueBase == nil {
		return
	}

	zones := []string{TeamRed, TeamBlue, "center"}
	zone := zones[g.rng.Intn(len(zones))]

	for attempt := 0; attempt < 30; attempt++ {
		var x, y float64
		switch zone {
		case TeamRed:
			angle := g.uniform(0, 2*math.Pi)
			dist := g.uniform(8, 20)
			x = st.RedBase.X + math.Cos(angle)*dist
			y = st.RedBase.Y + math.Sin(angle)*dist
		case TeamBlue:
			angle := g.uniform(0, 2*math.Pi)
			dist := g.uniform(8, 20)
			x = st.BlueBase.X + math.Cos(angle)*dist
			y = st.BlueBase.Y + math.Sin(angle)*dist
		default:
			// Centre zone, nudged off the midline.
			off := g.uniform(-15, 15)
			if math.Abs(off) < 3 {
				off *= 2
			}
			x = float64(st.Width)/2 + off
			y = float64(st.Height)/2 + g.uniform(-8, 8)
		}

		x = min(max(x, 5), float64(st.Width)-5)
		y = min(max(y, 5), float64(st.Height)-5)

		if distance(x, y, st.RedBase.X, st.RedBase.Y) <= 5 {
			continue
		}
		if distance(x, y, st.BlueBase.X, st.BlueBase.Y) <= 5 {
			continue
		}
		if st.mineWithin(x, y, 3) {
			continue
		}

		st.MineFields = append(st.MineFields, newMine(x, y, now))
		return
	}
}
