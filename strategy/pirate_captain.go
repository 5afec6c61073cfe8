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

// CaptainBehavior implements the pirate captain (§4.8): raid -> flee ->
// healing, spawned from a scout's delivered intel. The blueprint's initial
// idle state lasts only until the first update; with nothing to raid, the
// captain patrols around its home base in the raid state instead of
// waiting there.
type CaptainBehavior struct {
	cfg    *config.Config
	parent *PirateStrategy
}

func (b *CaptainBehavior) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	if n.Captain == nil {
		n.Captain = &npc.CaptainSlot{}
	}

	if n.HullFrac() <= b.cfg.Pirate.CaptainFleeHullFrac && n.State != "flee" && n.State != "healing" {
		n.State = "flee"
	}

	switch n.State {
	case "flee":
		return b.updateFlee(n, ctx), nil
	case "healing":
		return b.updateHealing(n, ctx), nil
	default:
		return b.updateRaid(n, nb, ctx), nil
	}
}

func (b *CaptainBehavior) updateRaid(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	n.State = "raid"

	// Priority 1: a player in range interrupts anything.
	if p := selectNearest(nb.NearbyPlayers); p != nil && p.Distance <= n.AggroRange {
		n.Captain.RememberedTargetID = &p.Player.ID
		n.SetTargetPlayer(p.Player.ID)
		return b.engage(n, p.Position, p.Player.ID, true, ctx)
	}

	// Priority 2: steal from a base within range.
	if a := b.maybeSteal(n, ctx); a != nil {
		return a
	}

	// Priority 3: approach the intel-reported base target to steal.
	var baseID bson.ObjectID
	if ctx.HomeBase != nil {
		baseID = ctx.HomeBase.ID
	}
	if rec := b.parent.readIntel(baseID, ctx.Now); rec != nil {
		dist := geom.Distance(n.Position, rec.TargetPos)
		if dist > b.cfg.Pirate.CaptainStealRange {
			n.Position = moveToward(n.Position, rec.TargetPos, n.Speed, ctx.DtMs)
			n.Rotation = faceToward(n.Position, rec.TargetPos)
			return nil
		}
	}

	// Priority 4: engage the nearest hostile defender.
	if h := selectNearestHostile(nb.NearbyHostiles); h != nil {
		id := h.NPC.ID
		n.Captain.RememberedTargetID = &id
		n.SetTargetNPC(id)
		return b.engage(n, h.Position, id, false, ctx)
	}

	simplePatrol(n, n.EffectiveBasePosition(), b.cfg.Pirate.ScoutPatrolRadius, 0.15, ctx.DtMs)
	n.Position = moveToward(n.Position, n.PatrolTarget, n.Speed, ctx.DtMs)
	return nil
}

func (b *CaptainBehavior) engage(n *npc.NPC, pos geom.Vector2, targetID bson.ObjectID, isPlayer bool, ctx *Context) *action.Action {
	engageDist := n.WeaponRange * 0.8
	waypoint := geom.PointOnCircle(pos, engageDist, geom.Angle(pos, n.Position))
	n.Position = moveToward(n.Position, waypoint, n.Speed, ctx.DtMs)
	n.Rotation = faceToward(n.Position, pos)
	return tryFire(n, ctx.Now, time.Duration(b.cfg.Dispatch.DefaultFireCooldownMs)*time.Millisecond,
		targetID, isPlayer, geom.Distance(n.Position, pos), n.WeaponDamage, n.WeaponType, n.WeaponTier, 0)
}

func (b *CaptainBehavior) maybeSteal(n *npc.NPC, ctx *Context) *action.Action {
	if !b.parent.canSteal(n.ID, ctx.Now) {
		return nil
	}
	for _, bs := range ctx.NearbyBases {
		if bs.Faction == n.Faction || bs.Destroyed {
			continue
		}
		if geom.Distance(n.Position, bs.Position) > b.cfg.Pirate.CaptainStealRange {
			continue
		}
		if bs.ScrapPile.Count > 0 {
			taken := bs.TakeScrap(b.cfg.Pirate.StealScrapItems)
			b.parent.markStole(n.ID, ctx.Now)
			id := bs.ID
			return &action.Action{
				ID: action.NewActionID(), AuthorID: n.ID, Kind: action.PirateSteal, Timestamp: ctx.Now,
				Steal: &action.StealParams{TargetType: "scrap_pile", StolenItems: taken, TargetBaseID: &id},
			}
		}
		if bs.ClaimCredits > 0 {
			amount := bs.TakeClaimCreditsFrac(b.cfg.Pirate.StealClaimCreditsFrac)
			b.parent.markStole(n.ID, ctx.Now)
			id := bs.ID
			return &action.Action{
				ID: action.NewActionID(), AuthorID: n.ID, Kind: action.PirateSteal, Timestamp: ctx.Now,
				Steal: &action.StealParams{TargetType: "claim_credits", StolenAmount: amount, TargetBaseID: &id},
			}
		}
	}
	return nil
}

func (b *CaptainBehavior) updateFlee(n *npc.NPC, ctx *Context) *action.Action {
	home := n.EffectiveBasePosition()
	n.Position = moveToward(n.Position, home, n.Speed, ctx.DtMs)
	n.ClearTarget()
	if geom.Distance(n.Position, home) < 60 {
		n.State = "healing"
	}
	return nil
}

func (b *CaptainBehavior) updateHealing(n *npc.NPC, ctx *Context) *action.Action {
	n.Hull += n.HullMax * b.cfg.Pirate.CaptainHealHullPctPerSec * float64(ctx.DtMs) / 1000.0
	n.Shield += n.ShieldMax * b.cfg.Pirate.CaptainHealShieldPctPerSec * float64(ctx.DtMs) / 1000.0
	n.ClampHull()
	n.ClampShield()
	if n.HullFrac() >= b.cfg.Pirate.CaptainReengageHullFrac {
		n.State = "raid"
		if n.Captain.RememberedTargetID != nil {
			n.SetTargetNPC(*n.Captain.RememberedTargetID)
		}
	}
	return nil
}

func (b *CaptainBehavior) Cleanup(id bson.ObjectID) {}
