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

// FighterBehavior implements the pirate fighter (§4.8): patrol -> raid ->
// circling -> boost_dive -> cooldown, with opportunistic stealing while
// raiding.
type FighterBehavior struct {
	cfg    *config.Config
	parent *PirateStrategy
}

func (b *FighterBehavior) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	if n.Fighter == nil {
		n.Fighter = &npc.FighterSlot{}
	}

	switch n.State {
	case "boost_dive":
		return b.updateBoostDive(n, ctx), nil
	case "cooldown":
		return b.updateCooldown(n, ctx), nil
	case "circling":
		return b.updateCircling(n, nb, ctx)
	default:
		return b.updateRaid(n, nb, ctx)
	}
}

// pickTarget implements §4.8's fighter priority: players, then enemy NPC
// defenders, then the stored raid target position.
func (b *FighterBehavior) pickTarget(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (geom.Vector2, *bson.ObjectID, bool) {
	if p := selectNearest(nb.NearbyPlayers); p != nil {
		return p.Position, &p.Player.ID, true
	}
	if h := selectNearestHostile(nb.NearbyHostiles); h != nil {
		id := h.NPC.ID
		return h.Position, &id, false
	}
	if rec := b.parent.readIntel(safeBaseID(ctx), ctx.Now); rec != nil {
		return rec.TargetPos, nil, false
	}
	return geom.Vector2{}, nil, false
}

func safeBaseID(ctx *Context) bson.ObjectID {
	if ctx.HomeBase != nil {
		return ctx.HomeBase.ID
	}
	return bson.ObjectID{}
}

func (b *FighterBehavior) updateRaid(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	n.State = "raid"
	if a := b.maybeSteal(n, nb, ctx); a != nil {
		return a, nil
	}

	pos, targetID, isPlayer := b.pickTarget(n, nb, ctx)
	if targetID == nil && pos == (geom.Vector2{}) {
		n.ClearTarget()
		simplePatrol(n, n.EffectiveBasePosition(), ctx.PatrolRadius, 0.2, ctx.DtMs)
		return nil, nil
	}
	if targetID != nil {
		if isPlayer {
			n.SetTargetPlayer(*targetID)
		} else {
			n.SetTargetNPC(*targetID)
		}
	}

	dist := geom.Distance(n.Position, pos)
	if dist <= b.cfg.Pirate.FighterCircleRadius {
		n.State = "circling"
		return nil, nil
	}
	n.Position = moveToward(n.Position, pos, n.Speed, ctx.DtMs)
	n.Rotation = faceToward(n.Position, pos)
	return nil, nil
}

func (b *FighterBehavior) updateCircling(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	pos, targetID, isPlayer := b.pickTarget(n, nb, ctx)
	if targetID == nil {
		n.State = "raid"
		return nil, nil
	}
	if isPlayer {
		n.SetTargetPlayer(*targetID)
	} else {
		n.SetTargetNPC(*targetID)
	}

	n.OrbitAngle += b.cfg.Pirate.FighterCircleSpeed * float64(ctx.DtMs) / 1000.0
	waypoint := geom.PointOnCircle(pos, b.cfg.Pirate.FighterCircleRadius, n.OrbitAngle)
	n.Position = moveToward(n.Position, waypoint, n.Speed, ctx.DtMs)
	n.Rotation = faceToward(n.Position, pos)

	if a := b.maybeSteal(n, nb, ctx); a != nil {
		return a, nil
	}

	if ctx.Now.After(n.Fighter.CooldownUntil) {
		n.State = "boost_dive"
		n.Fighter.DiveStartedAt = ctx.Now
		n.Fighter.DiveTargetPos = pos
	}
	return nil, nil
}

func (b *FighterBehavior) updateBoostDive(n *npc.NPC, ctx *Context) *action.Action {
	if n.TargetPlayer == nil && n.TargetNPC == nil {
		n.State = "raid"
		return nil
	}
	var targetID bson.ObjectID
	isPlayer := n.TargetPlayer != nil
	if isPlayer {
		targetID = *n.TargetPlayer
	} else {
		targetID = *n.TargetNPC
	}

	elapsed := ctx.Now.Sub(n.Fighter.DiveStartedAt)
	if elapsed > time.Duration(b.cfg.Pirate.BoostDiveMaxMs)*time.Millisecond {
		n.State = "cooldown"
		n.Fighter.CooldownUntil = ctx.Now.Add(time.Duration(b.cfg.Pirate.BoostDiveCooldownBackMs) * time.Millisecond)
		return nil
	}
	// The dive steers toward the target position recorded when the dive
	// started; it is not refreshed while the dive runs.
	dist := geom.Distance(n.Position, n.Fighter.DiveTargetPos)
	n.Position = moveToward(n.Position, n.Fighter.DiveTargetPos, n.Speed*b.cfg.Pirate.BoostDiveSpeedMult, ctx.DtMs)
	if dist > b.cfg.Pirate.BoostDiveFireRange {
		return nil
	}
	n.Fighter.CooldownUntil = ctx.Now.Add(time.Duration(b.cfg.Pirate.BoostDiveCooldownMs) * time.Millisecond)
	n.State = "cooldown"
	return &action.Action{
		ID: action.NewActionID(), AuthorID: n.ID, Kind: action.Fire, Timestamp: ctx.Now,
		Fire: &action.FireParams{
			Target: targetID, TargetIsPlayer: isPlayer,
			WeaponType: n.WeaponType, WeaponTier: n.WeaponTier + 1,
			BaseDamage:     n.WeaponDamage * b.cfg.Pirate.BoostDiveDamageMult,
			ShieldPiercing: b.cfg.Pirate.BoostDiveShieldPierce,
		},
	}
}

func (b *FighterBehavior) updateCooldown(n *npc.NPC, ctx *Context) *action.Action {
	home := n.EffectiveBasePosition()
	away := geom.Vector2{X: n.Position.X*2 - home.X, Y: n.Position.Y*2 - home.Y}
	n.Position = moveToward(n.Position, away, n.Speed*b.cfg.Pirate.BoostDiveCooldownBackSpeedMult, ctx.DtMs)
	if ctx.Now.After(n.Fighter.CooldownUntil) {
		n.State = "raid"
	}
	return nil
}

func (b *FighterBehavior) maybeSteal(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	if !b.parent.canSteal(n.ID, ctx.Now) {
		return nil
	}
	for _, bs := range ctx.NearbyBases {
		if bs.Faction == n.Faction || bs.Destroyed {
			continue
		}
		if geom.Distance(n.Position, bs.Position) > b.cfg.Pirate.StealRange {
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

func (b *FighterBehavior) Cleanup(id bson.ObjectID) {}
