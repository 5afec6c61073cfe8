package strategy

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
)

// ScoutBehavior implements the pirate scout's espionage pipeline (§4.8):
// patrol -> espionage -> fleeing -> raid. Reaching the base publishes the
// intel and switches straight to raid; there is no separate at_base state.
type ScoutBehavior struct {
	cfg    *config.Config
	parent *PirateStrategy
}

func (b *ScoutBehavior) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	if n.Scout == nil {
		n.Scout = &npc.ScoutSlot{}
	}

	switch n.State {
	case "espionage":
		return b.updateEspionage(n, ctx), nil
	case "fleeing":
		return b.updateFleeing(n, ctx), nil
	case "raid":
		return b.updateRaid(n, nb, ctx), nil
	default:
		return b.updatePatrol(n, nb, ctx), nil
	}
}

func (b *ScoutBehavior) updatePatrol(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	simplePatrol(n, n.EffectiveBasePosition(), b.cfg.Pirate.ScoutPatrolRadius, 0.25, ctx.DtMs)
	n.Position = moveToward(n.Position, n.PatrolTarget, n.Speed, ctx.DtMs)

	if p := selectNearest(nb.NearbyPlayers); p != nil {
		n.Scout.TargetID = &p.Player.ID
		n.Scout.TargetType = "player"
		n.Scout.TargetPos = p.Position
		n.Scout.HasResources = true
		n.Scout.IsBaseTarget = false
	} else if enemyBase := nearestEnemyBase(n, ctx.NearbyBases); enemyBase != nil {
		n.Scout.TargetID = &enemyBase.ID
		n.Scout.TargetType = "base"
		n.Scout.TargetPos = enemyBase.Position
		n.Scout.HasResources = enemyBase.ClaimCredits > 0 || enemyBase.ScrapPile.Count > 0
		n.Scout.IsBaseTarget = true
	} else if hostile := selectNearestHostile(nb.NearbyHostiles); hostile != nil {
		id := hostile.NPC.ID
		n.Scout.TargetID = &id
		n.Scout.TargetType = "npc"
		n.Scout.TargetPos = hostile.Position
		n.Scout.HasResources = false
		n.Scout.IsBaseTarget = false
	} else {
		return nil
	}

	n.State = "espionage"
	n.Scout.ObservationStart = ctx.Now
	return nil
}

func (b *ScoutBehavior) updateEspionage(n *npc.NPC, ctx *Context) *action.Action {
	if ctx.Now.Sub(n.Scout.ObservationStart) < time.Duration(b.cfg.Pirate.ScoutEspionageMs)*time.Millisecond {
		return nil
	}
	n.State = "fleeing"
	return nil
}

func (b *ScoutBehavior) updateFleeing(n *npc.NPC, ctx *Context) *action.Action {
	home := n.EffectiveBasePosition()
	if ctx.HomeBase == nil || ctx.HomeBase.Destroyed {
		if nearest := nearestSurvivingBase(ctx.NearbyBases, n.Faction); nearest != nil {
			home = nearest.Position
			n.HomeBaseID = &nearest.ID
			n.HomeBasePosition = nearest.Position
		} else {
			n.State = "raid"
			return nil
		}
	}
	n.Position = moveToward(n.Position, home, n.Speed*b.cfg.Pirate.ScoutFleeSpeedMult, ctx.DtMs)
	if geom.Distance(n.Position, home) < 40 {
		if n.Scout.TargetID != nil {
			b.parent.publishIntel(*n.HomeBaseID, &intelRecord{
				TargetID:     *n.Scout.TargetID,
				TargetType:   n.Scout.TargetType,
				TargetPos:    n.Scout.TargetPos,
				IsBaseTarget: n.Scout.IsBaseTarget,
				HasResources: n.Scout.HasResources,
				ReportedAt:   ctx.Now,
				ReportedBy:   n.ID,
			})
		}
		n.State = "raid"
		if ctx.Captains != nil && n.Scout.TargetID != nil {
			ctx.Captains.SpawnCaptainFromIntel(*n.HomeBaseID, intelToHook(n.Scout))
		}
	}
	return nil
}

func (b *ScoutBehavior) updateRaid(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	if n.Scout.TargetID == nil {
		n.State = "patrol"
		return nil
	}
	target := n.Scout.TargetPos
	found := false
	switch n.Scout.TargetType {
	case "player":
		if p, ok := findPlayerByID(nb.NearbyPlayers, *n.Scout.TargetID); ok {
			target = p.Position
			found = true
		}
	case "npc":
		if h, ok := findHostileByID(nb.NearbyHostiles, *n.Scout.TargetID); ok {
			target = h.Position
			found = true
		}
	case "base":
		if bs, ok := findBaseByID(ctx.NearbyBases, *n.Scout.TargetID); ok && !bs.Destroyed {
			target = bs.Position
			found = true
		}
	}
	if found {
		n.Scout.LostTargetSince = nil
	} else {
		if n.Scout.LostTargetSince == nil {
			now := ctx.Now
			n.Scout.LostTargetSince = &now
		}
		if ctx.Now.Sub(*n.Scout.LostTargetSince) > time.Duration(b.cfg.Pirate.ScoutLoseTargetSec*float64(time.Second)) {
			n.State = "patrol"
			n.Scout.TargetID = nil
			n.ClearTarget()
			return nil
		}
	}
	if geom.Distance(n.Position, target) > b.cfg.Pirate.ScoutChaseRadius {
		n.State = "patrol"
		n.Scout.TargetID = nil
		n.ClearTarget()
		return nil
	}

	switch n.Scout.TargetType {
	case "player":
		n.SetTargetPlayer(*n.Scout.TargetID)
	case "npc":
		n.SetTargetNPC(*n.Scout.TargetID)
	default:
		// Bases aren't a valid Fire target; the scout still shadows it but
		// never shoots.
		n.ClearTarget()
	}
	orbitRadius := (b.cfg.Pirate.ScoutRaidOrbitMin + b.cfg.Pirate.ScoutRaidOrbitMax) / 2
	n.OrbitAngle += 0.4 * float64(ctx.DtMs) / 1000.0
	waypoint := geom.PointOnCircle(target, orbitRadius, n.OrbitAngle)
	n.Position = moveToward(n.Position, waypoint, n.Speed, ctx.DtMs)
	n.Rotation = faceToward(n.Position, target)

	if n.Scout.TargetType == "base" {
		return nil
	}
	return tryFire(n, ctx.Now, time.Duration(b.cfg.Pirate.ScoutRaidFireCooldownMs)*time.Millisecond,
		*n.Scout.TargetID, n.Scout.TargetType == "player", geom.Distance(n.Position, target), n.WeaponDamage, n.WeaponType, n.WeaponTier, 0)
}

func (b *ScoutBehavior) Cleanup(id bson.ObjectID) {}
