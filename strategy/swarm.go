package strategy

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/base"
	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
)

// SwarmStrategy is the swarm collective (§4.6): non-queen units never
// retreat, patrol by role-specific radius until a queen is near (queen
// guard), then orbit-tighten onto the weakest nearby target in combat.
// Assimilation drones are a distinct per-NPC state this same strategy
// drives (seeking_base -> assimilate -> frozen passenger).
type SwarmStrategy struct {
	cfg *config.Config
}

func NewSwarmStrategy(cfg *config.Config) *SwarmStrategy {
	return &SwarmStrategy{cfg: cfg}
}

func (s *SwarmStrategy) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	if n.AttachedToBase {
		return nil, nil // frozen passenger, §4.6
	}
	if n.State == "seeking_base" {
		return s.updateAssimilation(n, ctx), nil
	}

	if len(nb.NearbyPlayers) == 0 {
		n.State = "patrol"
		n.ClearTarget()
		radius, speed := s.patrolParams(n.Type)
		simplePatrol(n, n.EffectiveBasePosition(), radius, speed, ctx.DtMs)
		return nil, nil
	}

	return s.updateCombat(n, nb, ctx), nil
}

func (s *SwarmStrategy) patrolParams(t npc.Type) (radius, speed float64) {
	switch t {
	case npc.SwarmDrone:
		return (s.cfg.Swarm.DronePatrolRadiusMin + s.cfg.Swarm.DronePatrolRadiusMax) / 2, s.cfg.Swarm.DroneOrbitSpeed
	case npc.SwarmWorker:
		return s.cfg.Swarm.WorkerPatrolRadius, s.cfg.Swarm.WorkerOrbitSpeed
	case npc.SwarmWarrior:
		return s.cfg.Swarm.WarriorPatrolRadius, s.cfg.Swarm.WarriorOrbitSpeed
	default:
		return s.cfg.Swarm.WorkerPatrolRadius, s.cfg.Swarm.WorkerOrbitSpeed
	}
}

func (s *SwarmStrategy) updateCombat(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	var target *neighborhood.PlayerEntry
	lowestFrac := math.Inf(1)
	for i := range nb.NearbyPlayers {
		p := nb.NearbyPlayers[i]
		frac := p.Player.Hull / maxFloat(p.Player.HullMax, 1)
		if frac < lowestFrac {
			lowestFrac = frac
			target = &nb.NearbyPlayers[i]
		}
	}
	if target == nil {
		return nil
	}
	n.State = "combat"
	n.SetTargetPlayer(target.Player.ID)

	n.OrbitRadius -= float64(ctx.DtMs) * s.cfg.Swarm.OrbitTightenPerMs
	minOrbit := n.WeaponRange * s.cfg.Swarm.OrbitMinFrac
	if n.OrbitRadius < minOrbit || n.OrbitRadius == 0 {
		n.OrbitRadius = minOrbit
	}
	n.OrbitAngle += 0.5 * float64(ctx.DtMs) / 1000.0
	waypoint := geom.PointOnCircle(target.Position, n.OrbitRadius, n.OrbitAngle)
	n.Position = moveToward(n.Position, waypoint, n.Speed, ctx.DtMs)
	n.Rotation = faceToward(n.Position, target.Position)

	return tryFire(n, ctx.Now, time.Duration(s.cfg.Swarm.CombatFireCooldownMs)*time.Millisecond,
		target.Player.ID, true, target.Distance, n.WeaponDamage, n.WeaponType, n.WeaponTier, 0)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// UpdateGuard runs the queen-guard behavior: tight alternating-radius
// orbit around the live queen, breaking only to intercept a close intruder
// (§4.6).
func (s *SwarmStrategy) UpdateGuard(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context, queen *npc.NPC) (*action.Action, error) {
	if n.AttachedToBase {
		return nil, nil
	}
	n.State = "queen_guard"

	var intruder *neighborhood.PlayerEntry
	for i := range nb.NearbyPlayers {
		if geom.Distance(nb.NearbyPlayers[i].Position, queen.Position) <= s.cfg.Swarm.GuardInterceptRadius {
			intruder = &nb.NearbyPlayers[i]
			break
		}
	}

	if intruder != nil {
		n.SetTargetPlayer(intruder.Player.ID)
		interceptPoint := geom.Lerp(queen.Position, intruder.Position, s.cfg.Swarm.GuardInterceptFrac)
		n.Position = moveToward(n.Position, interceptPoint, n.Speed, ctx.DtMs)
		n.Rotation = faceToward(n.Position, intruder.Position)
		return tryFire(n, ctx.Now, time.Duration(s.cfg.Swarm.CombatFireCooldownMs)*time.Millisecond,
			intruder.Player.ID, true, intruder.Distance, n.WeaponDamage, n.WeaponType, n.WeaponTier, 0), nil
	}

	n.ClearTarget()
	radius := s.cfg.Swarm.GuardInnerRadius
	if int(ctx.Now.UnixMilli()/500)%2 == 0 {
		radius = s.cfg.Swarm.GuardOuterRadius
	}
	n.OrbitAngle += s.cfg.Swarm.GuardOrbitSpeed * float64(ctx.DtMs) / 1000.0
	waypoint := geom.PointOnCircle(queen.Position, radius, n.OrbitAngle)
	n.Position = moveToward(n.Position, waypoint, n.Speed, ctx.DtMs)
	n.Rotation = faceToward(n.Position, queen.Position)
	return nil, nil
}

// StartAssimilation puts a swarm drone onto the assimilation path toward
// target (§4.6).
func (s *SwarmStrategy) StartAssimilation(n *npc.NPC, target *base.Base) {
	n.State = "seeking_base"
	n.AssimilateTarget = &target.ID
}

func (s *SwarmStrategy) updateAssimilation(n *npc.NPC, ctx *Context) *action.Action {
	if n.AssimilateTarget == nil {
		n.State = "patrol"
		return nil
	}
	var target *base.Base
	for _, b := range ctx.NearbyBases {
		if b.ID == *n.AssimilateTarget {
			target = b
		}
	}
	if target == nil || target.Destroyed {
		n.State = "patrol"
		n.AssimilateTarget = nil
		return nil
	}
	dist := geom.Distance(n.Position, target.Position)
	n.Position = moveToward(n.Position, target.Position, s.cfg.Swarm.DroneAssimilateSpeed, ctx.DtMs)
	if dist <= s.cfg.Swarm.AssimilateRange {
		return &action.Action{
			ID:        action.NewActionID(),
			AuthorID:  n.ID,
			Kind:      action.AssimilateKind,
			Timestamp: ctx.Now,
			Assimilate: &action.AssimilateParams{
				DroneID: n.ID,
				BaseID:  target.ID,
			},
		}
	}
	return nil
}

// LinkedDamagePass propagates 20% of damage D dealt to originator to every
// other linked swarm unit within 300 units, once per damage event,
// non-recursively (§4.6, §8 property 5). Returns the (targetID, amount)
// pairs the applier must also subtract from hull/shield.
func LinkedDamagePass(originator *npc.NPC, damage float64, allNPCs []*npc.NPC, cfg config.SwarmConfig) map[bson.ObjectID]float64 {
	out := make(map[bson.ObjectID]float64)
	if !originator.LinkedHealth {
		return out
	}
	for _, other := range allNPCs {
		if other.ID == originator.ID || !other.LinkedHealth || other.Dead() {
			continue
		}
		if geom.Distance(originator.Position, other.Position) <= cfg.LinkedDamageRadius {
			out[other.ID] = damage * cfg.LinkedDamagePct
		}
	}
	return out
}

func (s *SwarmStrategy) Cleanup(id bson.ObjectID) {}
