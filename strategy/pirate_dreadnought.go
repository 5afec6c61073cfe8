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

// DreadnoughtBehavior implements the pirate dreadnought (§4.8): spawning ->
// raid -> enraged (permanent, on base destruction). The 35% block-chance
// damage mitigation is applied by the action applier at hit-resolution
// time, not here; this behavior only moves, circles and fires.
type DreadnoughtBehavior struct {
	cfg    *config.Config
	parent *PirateStrategy
}

func (b *DreadnoughtBehavior) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	if ctx.HomeBase != nil && ctx.HomeBase.Destroyed && n.State != "enraged" {
		n.State = "enraged"
	}

	switch n.State {
	case "spawning":
		return b.updateSpawning(n, ctx), nil
	case "enraged":
		return b.updateEnraged(n, nb, ctx), nil
	default:
		return b.updateRaid(n, nb, ctx), nil
	}
}

func (b *DreadnoughtBehavior) updateSpawning(n *npc.NPC, ctx *Context) *action.Action {
	if n.Dreadnought == nil {
		n.Dreadnought = &npc.DreadnoughtSlot{}
	}
	if n.Dreadnought.SpawnStartedAt.IsZero() {
		n.Dreadnought.SpawnStartedAt = ctx.Now
	}
	if ctx.Now.Sub(n.Dreadnought.SpawnStartedAt) >= time.Duration(b.cfg.Pirate.DreadnoughtSpawnMs)*time.Millisecond {
		n.State = "raid"
	}
	return nil
}

func (b *DreadnoughtBehavior) updateRaid(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	n.State = "raid"
	var targetPos geom.Vector2
	var targetID bson.ObjectID
	var isPlayer, found bool

	if p := selectNearest(nb.NearbyPlayers); p != nil {
		targetPos, targetID, isPlayer, found = p.Position, p.Player.ID, true, true
	} else if h := selectNearestHostile(nb.NearbyHostiles); h != nil {
		targetPos, targetID, isPlayer, found = h.Position, h.NPC.ID, false, true
	}

	if !found {
		simplePatrol(n, n.EffectiveBasePosition(), b.cfg.Pirate.ScoutPatrolRadius, 0.1, ctx.DtMs)
		n.Position = moveToward(n.Position, n.PatrolTarget, n.Speed, ctx.DtMs)
		return nil
	}

	if isPlayer {
		n.SetTargetPlayer(targetID)
	} else {
		n.SetTargetNPC(targetID)
	}

	standoff := (b.cfg.Pirate.DreadnoughtStandoffMin + b.cfg.Pirate.DreadnoughtStandoffMax) / 2
	n.OrbitAngle += 0.3 * float64(ctx.DtMs) / 1000.0
	waypoint := geom.PointOnCircle(targetPos, standoff, n.OrbitAngle)
	n.Position = moveToward(n.Position, waypoint, n.Speed, ctx.DtMs)
	n.Rotation = faceToward(n.Position, targetPos)

	return tryFire(n, ctx.Now, time.Duration(b.cfg.Pirate.DreadnoughtFireCooldownMs)*time.Millisecond,
		targetID, isPlayer, geom.Distance(n.Position, targetPos), n.WeaponDamage, n.WeaponType, n.WeaponTier,
		b.cfg.Pirate.DreadnoughtShieldPierce)
}

func (b *DreadnoughtBehavior) updateEnraged(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	var targetPos geom.Vector2
	var targetID bson.ObjectID
	var isPlayer, found bool

	if p := selectNearest(nb.NearbyPlayers); p != nil {
		targetPos, targetID, isPlayer, found = p.Position, p.Player.ID, true, true
	} else if h := selectNearestHostile(nb.NearbyHostiles); h != nil {
		targetPos, targetID, isPlayer, found = h.Position, h.NPC.ID, false, true
	}

	if n.AggroRange < b.cfg.Pirate.DreadnoughtEnragedMinAggroRange {
		n.AggroRange = b.cfg.Pirate.DreadnoughtEnragedMinAggroRange
	}

	if !found {
		n.ClearTarget()
		simplePatrol(n, n.Position, b.cfg.Pirate.ScoutPatrolRadius, 0.1, ctx.DtMs)
		n.Position = moveToward(n.Position, n.PatrolTarget, n.Speed*b.cfg.Pirate.DreadnoughtEnragedSpeedMult, ctx.DtMs)
		return nil
	}

	if isPlayer {
		n.SetTargetPlayer(targetID)
	} else {
		n.SetTargetNPC(targetID)
	}
	n.Position = moveToward(n.Position, targetPos, n.Speed*b.cfg.Pirate.DreadnoughtEnragedSpeedMult, ctx.DtMs)
	n.Rotation = faceToward(n.Position, targetPos)

	a := tryFire(n, ctx.Now, time.Duration(b.cfg.Pirate.DreadnoughtEnragedFireCooldownMs)*time.Millisecond,
		targetID, isPlayer, geom.Distance(n.Position, targetPos), n.WeaponDamage*b.cfg.Pirate.DreadnoughtEnragedDamageMult,
		n.WeaponType, n.WeaponTier, b.cfg.Pirate.DreadnoughtShieldPierce)
	if a != nil {
		a.Fire.Enraged = true
	}
	return a
}

func (b *DreadnoughtBehavior) Cleanup(id bson.ObjectID) {}
