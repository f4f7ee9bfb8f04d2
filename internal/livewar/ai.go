// internal/livewar/ai.go
package livewar

import "math"

// stepUnitsLocked runs one AI decision for every living unit.
func (g *Game) stepUnitsLocked(st *RoomState, now float64) {
	units := make([]*Unit, len(st.Units))
	copy(units, st.Units)
	for _, u := range units {
		if u.IsDead {
			continue
		}
		switch u.Type {
		case UnitMiner:
			g.aiMinerLocked(st, u)
		case UnitEngineer:
			g.aiEngineerLocked(st, u, now)
		case UnitHeavyTank:
			g.aiHeavyTankLocked(st, u)
		case UnitAssaultTank:
			g.aiAssaultTankLocked(st, u)
		}
	}
}

// aiMinerLocked hauls energy home once loaded, prefers drops over mines when
// closer, and harasses the nearest enemy when there is nothing to gather.
func (g *Game) aiMinerLocked(st *RoomState, u *Unit) {
	b := st.baseFor(u.Team)
	if b == nil {
		return
	}

	if u.CarryingEnergy >= carryReturnThreshold {
		g.moveTowardsLocked(st, u, b.X, b.Y)
		if distance(u.X, u.Y, b.X, b.Y) < 4 {
			if _, ok := st.Energies[u.OwnerID]; ok {
				st.Energies[u.OwnerID] += u.CarryingEnergy
			}
			u.CarryingEnergy = 0
		}
		return
	}

	drop := st.nearestDrop(u)
	mine := st.nearestMine(u)

	if drop != nil {
		dropDist := distance(u.X, u.Y, drop.X, drop.Y)
		mineDist := math.Inf(1)
		if mine != nil {
			mineDist = distance(u.X, u.Y, mine.X, mine.Y)
		}
		if dropDist < mineDist {
			g.moveTowardsLocked(st, u, drop.X, drop.Y)
			if dropDist < 1.5 {
				u.CarryingEnergy += drop.Energy
				heal := int64(float64(u.HPMax) * dropHealPercent)
				u.HP = min(u.HPMax, u.HP+heal)
				st.removeDrop(drop.ID)
			}
			return
		}
	}

	if mine != nil {
		g.moveTowardsLocked(st, u, mine.X, mine.Y)
		if distance(u.X, u.Y, mine.X, mine.Y) < 2 {
			harvest := min(mineHarvestPerTick, mine.Energy)
			mine.Energy -= harvest
			u.CarryingEnergy += harvest
		}
		return
	}

	if enemy := st.nearestEnemy(u); enemy != nil {
		u.TargetID = enemy.ID
		g.moveTowardsLocked(st, u, enemy.X, enemy.Y)
		return
	}
	g.moveTowardsLocked(st, u, b.X, b.Y)
}

// aiEngineerLocked heals every wounded ally and the base within radius 3.
// With no one in range it chases the most wounded ally on the map, otherwise
// it idles at the base.
func (g *Game) aiEngineerLocked(st *RoomState, u *Unit, now float64) {
	b := st.baseFor(u.Team)
	if b == nil {
		return
	}

	const healPerTick = int64(1) // 10 hp/s at 10 ticks/s

	healedAny := false
	for _, ally := range st.Units {
		if ally.IsDead || ally.Team != u.Team || ally.ID == u.ID {
			continue
		}
		if ally.HP >= ally.HPMax {
			continue
		}
		if distance(u.X, u.Y, ally.X, ally.Y) > 3 {
			continue
		}
		ally.HP = min(ally.HPMax, ally.HP+healPerTick)
		st.HealEffects = append(st.HealEffects, &HealEffect{
			ID:       shortID("heal_", 6),
			X:        ally.X,
			Y:        ally.Y,
			Created:  now,
			Lifetime: healEffectLifetime,
			Team:     u.Team,
		})
		healedAny = true
	}

	if b.HP < b.HPMax && distance(u.X, u.Y, b.X, b.Y) <= 3 {
		b.HP = min(b.HPMax, b.HP+healPerTick)
		st.HealEffects = append(st.HealEffects, &HealEffect{
			ID:       shortID("heal_", 6),
			X:        b.X,
			Y:        b.Y,
			Created:  now,
			Lifetime: healEffectLifetime,
			Team:     u.Team,
		})
		healedAny = true
	}

	if healedAny {
		// Aura marker on the engineer itself while healing.
		st.HealEffects = append(st.HealEffects, &HealEffect{
			ID:       shortID("heal_engineer_", 6),
			X:        u.X,
			Y:        u.Y,
			Created:  now,
			Lifetime: healEffectLifetime,
			Team:     u.Team,
		})
		return
	}

	// Lowest hp fraction first, closest breaks ties.
	var target *Unit
	targetDist := math.Inf(1)
	bestFrac := math.Inf(1)
	for _, ally := range st.Units {
		if ally.IsDead || ally.Team != u.Team || ally.ID == u.ID {
			continue
		}
		if ally.HP >= ally.HPMax {
			continue
		}
		frac := 1.0
		if ally.HPMax > 0 {
			frac = float64(ally.HP) / float64(ally.HPMax)
		}
		d := distance(u.X, u.Y, ally.X, ally.Y)
		if frac < bestFrac || (frac == bestFrac && d < targetDist) {
			bestFrac = frac
			targetDist = d
			target = ally
		}
	}

	if target != nil {
		if targetDist > 3 {
			dx := target.X - u.X
			dy := target.Y - u.Y
			d := math.Hypot(dx, dy)
			if d > 0 {
				g.moveEngineerTowardsLocked(st, u, target.X-dx/d*2, target.Y-dy/d*2)
			}
		}
		return
	}
	g.moveEngineerTowardsLocked(st, u, b.X, b.Y)
}

// aiHeavyTankLocked hunts enemy tanks, then sieges the enemy base, falling
// back to the forward line when neither exists.
func (g *Game) aiHeavyTankLocked(st *RoomState, u *Unit) {
	if tank, tankDist := st.nearestEnemyTank(u); tank != nil {
		u.TargetID = tank.ID
		if tankDist <= u.AttackRange {
			return
		}
		g.moveToAttackRangeLocked(st, u, tank.X, tank.Y, u.AttackRange)
		return
	}

	if enemyBase := st.enemyBaseFor(u.Team); enemyBase != nil && enemyBase.HP > 0 {
		u.TargetID = ""
		if distance(u.X, u.Y, enemyBase.X, enemyBase.Y) <= u.AttackRange {
			return
		}
		g.moveToAttackRangeLocked(st, u, enemyBase.X, enemyBase.Y, u.AttackRange)
		return
	}

	if b := st.baseFor(u.Team); b != nil {
		g.moveTowardsLocked(st, u, frontlineX(b, u.Team), b.Y)
	}
}

// aiAssaultTankLocked prioritises tanks, then engineers, then miners; it never
// targets the base.
func (g *Game) aiAssaultTankLocked(st *RoomState, u *Unit) {
	if tank, tankDist := st.nearestEnemyTank(u); tank != nil {
		u.TargetID = tank.ID
		if tankDist <= u.AttackRange {
			return
		}
		g.moveToAttackRangeLocked(st, u, tank.X, tank.Y, u.AttackRange)
		return
	}

	for _, targetType := range []string{UnitEngineer, UnitMiner} {
		t := st.nearestEnemyOfType(u, targetType)
		if t == nil {
			continue
		}
		u.TargetID = t.ID
		if distance(u.X, u.Y, t.X, t.Y) <= u.AttackRange {
			return
		}
		g.moveToAttackRangeLocked(st, u, t.X, t.Y, u.AttackRange)
		return
	}

	if b := st.baseFor(u.Team); b != nil {
		g.moveTowardsLocked(st, u, frontlineX(b, u.Team), b.Y)
	}
}

// frontlineX is the holding position x for an idle tank, 15 cells toward the
// enemy side.
func frontlineX(b *Base, team string) float64 {
	if team == TeamRed {
		return b.X + 15
	}
	return b.X - 15
}
