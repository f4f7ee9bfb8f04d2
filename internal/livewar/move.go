// internal/livewar/move.go
package livewar

import (
	"math"
	"sort"
)

func (st *RoomState) clampX(x float64) float64 {
	return max(2, min(float64(st.Width)-3, x))
}

func (st *RoomState) clampY(y float64) float64 {
	return max(2, min(float64(st.Height)-3, y))
}

// blocked reports whether a unit of the given type cannot stand on the grid
// cell containing (x, y). A cell holds at most two non-engineer units and at
// most two engineers; engineers do not count against the regular limit and
// pass through walls and bases.
func (st *RoomState) blocked(x, y float64, excludeID, unitType string) bool {
	gx := int(math.Floor(x))
	gy := int(math.Floor(y))

	if unitType == UnitEngineer {
		engineers := 0
		for _, o := range st.Units {
			if o.IsDead || o.ID == excludeID {
				continue
			}
			if int(math.Floor(o.X)) != gx || int(math.Floor(o.Y)) != gy {
				continue
			}
			if o.Type == UnitEngineer {
				engineers++
				if engineers >= 2 {
					return true
				}
			}
		}
		return false
	}

	occupants := 0
	for _, o := range st.Units {
		if o.IsDead || o.ID == excludeID {
			continue
		}
		if int(math.Floor(o.X)) != gx || int(math.Floor(o.Y)) != gy {
			continue
		}
		if o.Type != UnitEngineer {
			occupants++
			if occupants >= 2 {
				return true
			}
		}
	}

	for _, w := range st.Walls {
		if int(w[0]) == gx && int(w[1]) == gy {
			return true
		}
	}

	if st.RedBase != nil && int(math.Floor(st.RedBase.X)) == gx && int(math.Floor(st.RedBase.Y)) == gy {
		return true
	}
	if st.BlueBase != nil && int(math.Floor(st.BlueBase.X)) == gx && int(math.Floor(st.BlueBase.Y)) == gy {
		return true
	}
	return false
}

type compassDir struct {
	x, y      float64
	angleDiff float64
}

// compassDirections returns the eight grid directions ordered by how closely
// they match the desired heading.
func compassDirections(mainAngle float64) []compassDir {
	dirs := []compassDir{
		{x: 0, y: -1}, {x: 1, y: -1}, {x: 1, y: 0}, {x: 1, y: 1},
		{x: 0, y: 1}, {x: -1, y: 1}, {x: -1, y: 0}, {x: -1, y: -1},
	}
	for i := range dirs {
		diff := math.Abs(math.Atan2(dirs[i].y, dirs[i].x) - mainAngle)
		if diff > math.Pi {
			diff = 2*math.Pi - diff
		}
		dirs[i].angleDiff = diff
	}
	sort.SliceStable(dirs, func(i, j int) bool { return dirs[i].angleDiff < dirs[j].angleDiff })
	return dirs
}

// moveTowardsLocked advances a unit one tick toward (tx, ty). The unit looks
// three steps ahead and detours early when the lane is blocked; failing that
// it steps straight, then tries the eight compass directions, then jumps to
// any nearby free spot so it never stays wedged.
func (g *Game) moveTowardsLocked(st *RoomState, u *Unit, tx, ty float64) {
	if u.IsDead {
		return
	}
	u.TargetX = tx
	u.TargetY = ty

	dx := tx - u.X
	dy := ty - u.Y
	dist := math.Hypot(dx, dy)
	if dist < 0.5 {
		return
	}

	speed := u.Speed * tickSeconds
	if u.IsMining {
		speed *= miningSpeedPenalty
	}
	dx /= dist
	dy /= dist
	mainAngle := math.Atan2(dy, dx)

	pathBlocked := false
	for step := 1; step <= 3; step++ {
		cx := st.clampX(u.X + dx*speed*float64(step))
		cy := st.clampY(u.Y + dy*speed*float64(step))
		if st.blocked(cx, cy, u.ID, u.Type) {
			pathBlocked = true
			break
		}
	}

	if pathBlocked {
		bestScore := math.Inf(1)
		var bestX, bestY float64
		found := false
		for deg := -45; deg <= 45; deg += 15 {
			angle := mainAngle + float64(deg)*math.Pi/180
			dirX := math.Cos(angle)
			dirY := math.Sin(angle)
			for _, mult := range []float64{1.0, 0.8, 0.6} {
				tryX := st.clampX(u.X + dirX*speed*mult)
				tryY := st.clampY(u.Y + dirY*speed*mult)
				if st.blocked(tryX, tryY, u.ID, u.Type) {
					continue
				}
				clear := true
				for step := 1; step <= 2; step++ {
					fx := st.clampX(tryX + dirX*speed*float64(step))
					fy := st.clampY(tryY + dirY*speed*float64(step))
					if st.blocked(fx, fy, u.ID, u.Type) {
						clear = false
						break
					}
				}
				if !clear {
					continue
				}
				newDist := distance(tryX, tryY, tx, ty)
				oldDist := distance(u.X, u.Y, tx, ty)
				score := newDist + math.Abs(float64(deg))*0.1
				if newDist < oldDist && score < bestScore {
					bestScore = score
					bestX, bestY = tryX, tryY
					found = true
				}
			}
		}
		if found {
			u.X, u.Y = bestX, bestY
			return
		}
	}

	newX := st.clampX(u.X + dx*speed)
	newY := st.clampY(u.Y + dy*speed)
	if !st.blocked(newX, newY, u.ID, u.Type) {
		u.X = newX
		u.Y = newY
		return
	}

	oldDist := distance(u.X, u.Y, tx, ty)
	bestScore := math.Inf(1)
	var bestX, bestY float64
	found := false
	for _, d := range compassDirections(mainAngle) {
		for _, mult := range []float64{1.0, 0.8, 0.6, 0.4, 0.2} {
			tryX := st.clampX(u.X + d.x*speed*mult)
			tryY := st.clampY(u.Y + d.y*speed*mult)
			if st.blocked(tryX, tryY, u.ID, u.Type) {
				continue
			}
			newDist := distance(tryX, tryY, tx, ty)
			if newDist < oldDist || newDist <= oldDist+speed*0.5 {
				score := newDist + d.angleDiff*0.2
				if score < bestScore {
					bestScore = score
					bestX, bestY = tryX, tryY
					found = true
				}
			}
		}
	}
	if found {
		u.X, u.Y = bestX, bestY
		return
	}

	// Fully wedged. Allow a wider jump even if it loses a little ground.
	for _, radius := range []float64{1.5, 2.0, 2.5} {
		for deg := 0; deg < 360; deg += 45 {
			angle := float64(deg) * math.Pi / 180
			tryX := st.clampX(u.X + math.Cos(angle)*speed*radius)
			tryY := st.clampY(u.Y + math.Sin(angle)*speed*radius)
			if st.blocked(tryX, tryY, u.ID, u.Type) {
				continue
			}
			if distance(tryX, tryY, tx, ty) <= oldDist+speed*1.0 {
				u.X = tryX
				u.Y = tryY
				return
			}
		}
	}
}

// moveEngineerTowardsLocked is the engineer variant of moveTowardsLocked. It
// fans wider when detouring, weighs angle deviation less, and tolerates more
// backtracking, since engineers need to squeeze between friendly units.
func (g *Game) moveEngineerTowardsLocked(st *RoomState, u *Unit, tx, ty float64) {
	if u.IsDead {
		return
	}
	u.TargetX = tx
	u.TargetY = ty

	dx := tx - u.X
	dy := ty - u.Y
	dist := math.Hypot(dx, dy)
	if dist < 0.5 {
		return
	}

	speed := u.Speed * tickSeconds
	dx /= dist
	dy /= dist
	mainAngle := math.Atan2(dy, dx)

	pathBlocked := false
	for step := 1; step <= 3; step++ {
		cx := st.clampX(u.X + dx*speed*float64(step))
		cy := st.clampY(u.Y + dy*speed*float64(step))
		if st.blocked(cx, cy, u.ID, UnitEngineer) {
			pathBlocked = true
			break
		}
	}

	if pathBlocked {
		bestScore := math.Inf(1)
		var bestX, bestY float64
		found := false
		for deg := -60; deg <= 60; deg += 15 {
			angle := mainAngle + float64(deg)*math.Pi/180
			dirX := math.Cos(angle)
			dirY := math.Sin(angle)
			for _, mult := range []float64{1.0, 0.8, 0.6} {
				tryX := st.clampX(u.X + dirX*speed*mult)
				tryY := st.clampY(u.Y + dirY*speed*mult)
				if st.blocked(tryX, tryY, u.ID, UnitEngineer) {
					continue
				}
				clear := true
				for step := 1; step <= 2; step++ {
					fx := st.clampX(tryX + dirX*speed*float64(step))
					fy := st.clampY(tryY + dirY*speed*float64(step))
					if st.blocked(fx, fy, u.ID, UnitEngineer) {
						clear = false
						break
					}
				}
				if !clear {
					continue
				}
				newDist := distance(tryX, tryY, tx, ty)
				oldDist := distance(u.X, u.Y, tx, ty)
				score := newDist + math.Abs(float64(deg))*0.05
				if newDist < oldDist && score < bestScore {
					bestScore = score
					bestX, bestY = tryX, tryY
					found = true
				}
			}
		}
		if found {
			u.X, u.Y = bestX, bestY
			return
		}
	}

	newX := st.clampX(u.X + dx*speed)
	newY := st.clampY(u.Y + dy*speed)
	if !st.blocked(newX, newY, u.ID, UnitEngineer) {
		u.X = newX
		u.Y = newY
		return
	}

	// 24 candidate headings, 15 degrees apart, centered on the desired one.
	oldDist := distance(u.X, u.Y, tx, ty)
	bestScore := math.Inf(1)
	var bestX, bestY float64
	found := false
	for i := 0; i < 24; i++ {
		angle := mainAngle + float64(i-12)*math.Pi/12
		dirX := math.Cos(angle)
		dirY := math.Sin(angle)
		angleDiff := math.Abs(angle - mainAngle)
		for _, mult := range []float64{1.0, 0.8, 0.6, 0.4, 0.2} {
			tryX := st.clampX(u.X + dirX*speed*mult)
			tryY := st.clampY(u.Y + dirY*speed*mult)
			if st.blocked(tryX, tryY, u.ID, UnitEngineer) {
				continue
			}
			newDist := distance(tryX, tryY, tx, ty)
			if newDist < oldDist || newDist <= oldDist+speed*0.8 {
				score := newDist + angleDiff*0.05
				if score < bestScore {
					bestScore = score
					bestX, bestY = tryX, tryY
					found = true
				}
			}
		}
	}
	if found {
		u.X, u.Y = bestX, bestY
		return
	}

	for _, radius := range []float64{1.0, 1.5, 2.0, 2.5} {
		for deg := 0; deg < 360; deg += 30 {
			angle := float64(deg) * math.Pi / 180
			tryX := st.clampX(u.X + math.Cos(angle)*speed*radius)
			tryY := st.clampY(u.Y + math.Sin(angle)*speed*radius)
			if st.blocked(tryX, tryY, u.ID, UnitEngineer) {
				continue
			}
			if distance(tryX, tryY, tx, ty) <= oldDist+speed*1.5 {
				u.X = tryX
				u.Y = tryY
				return
			}
		}
	}
}

// moveToAttackRangeLocked closes to firing range along a flanking approach.
// Units converging on the same victim pick staggered approach angles so they
// surround it instead of stacking into one lane.
func (g *Game) moveToAttackRangeLocked(st *RoomState, u *Unit, tx, ty, attackRange float64) {
	if u.IsDead {
		return
	}
	u.TargetX = tx
	u.TargetY = ty

	if distance(u.X, u.Y, tx, ty) <= attackRange {
		return
	}

	approaching := 0
	for _, o := range st.Units {
		if o.IsDead || o.Team != u.Team || o.ID == u.ID {
			continue
		}
		same := false
		if u.TargetID != "" && o.TargetID == u.TargetID {
			same = true
		} else if math.Abs(o.TargetX-tx) < 0.5 && math.Abs(o.TargetY-ty) < 0.5 {
			same = true
		}
		if same && distance(o.X, o.Y, tx, ty) > attackRange {
			approaching++
		}
	}

	offsetDeg := 0.0
	if approaching > 0 {
		switch approaching % 4 {
		case 0:
			offsetDeg = -90
		case 1:
			offsetDeg = 90
		case 2:
			offsetDeg = 180
		default:
			offsetDeg = -45
		}
	}

	mainAngle := math.Atan2(ty-u.Y, tx-u.X)
	approach := mainAngle + offsetDeg*math.Pi/180

	idealDist := attackRange * 0.9
	idealX := st.clampX(tx - math.Cos(approach)*idealDist)
	idealY := st.clampY(ty - math.Sin(approach)*idealDist)

	g.moveTowardsSmartLocked(st, u, idealX, idealY, tx, ty, attackRange)
}

// moveTowardsSmartLocked heads for the ideal flanking spot but settles for
// any position that puts the target within attackRange.
func (g *Game) moveTowardsSmartLocked(st *RoomState, u *Unit, idealX, idealY, tx, ty, attackRange float64) {
	if u.IsDead {
		return
	}

	speed := u.Speed * tickSeconds
	if u.IsMining {
		speed *= miningSpeedPenalty
	}

	dx := idealX - u.X
	dy := idealY - u.Y
	distToIdeal := math.Hypot(dx, dy)

	if distToIdeal < 0.5 {
		if distance(u.X, u.Y, tx, ty) <= attackRange {
			return
		}
		// Reached the flank point but still out of range. Head straight in.
		idealX = tx
		idealY = ty
		dx = idealX - u.X
		dy = idealY - u.Y
		distToIdeal = math.Hypot(dx, dy)
	}

	if distToIdeal > 0 {
		dx /= distToIdeal
		dy /= distToIdeal
	}
	mainAngle := math.Atan2(dy, dx)

	pathBlocked := false
	for step := 1; step <= 3; step++ {
		cx := st.clampX(u.X + dx*speed*float64(step))
		cy := st.clampY(u.Y + dy*speed*float64(step))
		if st.blocked(cx, cy, u.ID, u.Type) {
			pathBlocked = true
			break
		}
	}

	if pathBlocked {
		bestScore := math.Inf(1)
		var bestX, bestY float64
		found := false
		for deg := -90; deg <= 90; deg += 30 {
			angle := mainAngle + float64(deg)*math.Pi/180
			dirX := math.Cos(angle)
			dirY := math.Sin(angle)
			for _, mult := range []float64{1.0, 0.8, 0.6} {
				tryX := st.clampX(u.X + dirX*speed*mult)
				tryY := st.clampY(u.Y + dirY*speed*mult)
				if st.blocked(tryX, tryY, u.ID, u.Type) {
					continue
				}
				newDistTarget := distance(tryX, tryY, tx, ty)
				newDistIdeal := distance(tryX, tryY, idealX, idealY)
				var score float64
				if newDistTarget <= attackRange {
					score = newDistIdeal + math.Abs(float64(deg))*0.1
				} else if newDistTarget < distance(u.X, u.Y, tx, ty) {
					score = newDistTarget + math.Abs(float64(deg))*0.1
				} else {
					continue
				}
				if score < bestScore {
					bestScore = score
					bestX, bestY = tryX, tryY
					found = true
				}
			}
		}
		if found {
			u.X, u.Y = bestX, bestY
			return
		}
	}

	newX := st.clampX(u.X + dx*speed)
	newY := st.clampY(u.Y + dy*speed)
	if !st.blocked(newX, newY, u.ID, u.Type) {
		u.X = newX
		u.Y = newY
		return
	}

	oldDist := distance(u.X, u.Y, tx, ty)
	bestScore := math.Inf(1)
	var bestX, bestY float64
	found := false
	for _, d := range compassDirections(mainAngle) {
		for _, mult := range []float64{1.0, 0.8, 0.6, 0.4} {
			tryX := st.clampX(u.X + d.x*speed*mult)
			tryY := st.clampY(u.Y + d.y*speed*mult)
			if st.blocked(tryX, tryY, u.ID, u.Type) {
				continue
			}
			newDistTarget := distance(tryX, tryY, tx, ty)
			newDistIdeal := distance(tryX, tryY, idealX, idealY)
			var score float64
			if newDistTarget <= attackRange {
				score = newDistIdeal + d.angleDiff*0.2
			} else if newDistTarget < oldDist {
				score = newDistTarget + d.angleDiff*0.2
			} else {
				continue
			}
			if score < bestScore {
				bestScore = score
				bestX, bestY = tryX, tryY
				found = true
			}
		}
	}
	if found {
		u.X = bestX
		u.Y = bestY
	}
}
