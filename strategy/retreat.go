package strategy

import (
	"math"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
)

// RetreatStrategy is the scavenger baseline (§4.3): hit-and-run against
// hostile NPCs, strafing combat, and a heal-at-base cycle.
type RetreatStrategy struct {
	cfg *config.Config
}

func NewRetreatStrategy(cfg *config.Config) *RetreatStrategy {
	return &RetreatStrategy{cfg: cfg}
}

// scoreHostile implements §4.3's target score: (damaged-more-is-better x
// 50) + isolation - (proximity/50).
func scoreHostile(h neighborhood.NPCEntry, allies []neighborhood.NPCEntry, cfg config.RetreatConfig) float64 {
	damagedScore := (1.0 - h.NPC.HullFrac()) * cfg.DamagedWeight
	isolation := cfg.IsolationWeight // flat weight: no ally-crowding data on a single hostile entry
	proximityPenalty := h.Distance / cfg.ProximityDivisor
	return damagedScore + isolation - proximityPenalty
}

func (s *RetreatStrategy) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	switch n.State {
	case "healing":
		return s.updateHealing(n, ctx), nil
	case "retreat":
		return s.updateRetreat(n, nb, ctx), nil
	default:
		if shouldRetreat(n, s.cfg) {
			n.State = "retreat"
			n.ClearTarget()
			return s.updateRetreat(n, nb, ctx), nil
		}
		return s.updateCombatOrPatrol(n, nb, ctx), nil
	}
}

func (s *RetreatStrategy) updateCombatOrPatrol(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	var best *neighborhood.NPCEntry
	bestScore := math.Inf(-1)
	for i := range nb.NearbyHostiles {
		h := nb.NearbyHostiles[i]
		sc := scoreHostile(h, nb.NearbyAllies, s.cfg.Retreat)
		if sc > bestScore {
			bestScore = sc
			best = &nb.NearbyHostiles[i]
		}
	}
	if best == nil {
		n.State = "patrol"
		n.ClearTarget()
		if geom.Distance(n.Position, n.PatrolTarget) < 10 || n.PatrolTarget == (geom.Vector2{}) {
			n.PatrolTarget = geom.Vector2{
				X: n.EffectiveBasePosition().X + (rand.Float64()*2-1)*s.cfg.Retreat.PatrolRadius,
				Y: n.EffectiveBasePosition().Y + (rand.Float64()*2-1)*s.cfg.Retreat.PatrolRadius,
			}
		}
		n.Position = moveToward(n.Position, n.PatrolTarget, n.Speed, ctx.DtMs)
		return nil
	}
	n.State = "combat"
	n.SetTargetNPC(best.NPC.ID)
	engageDist := n.WeaponRange * s.cfg.Retreat.EngageRangeFrac
	strafeAngle := n.PatrolAngle + 0.6*float64(ctx.DtMs)/1000.0
	n.PatrolAngle = math.Mod(strafeAngle, 2*math.Pi)
	waypoint := geom.PointOnCircle(best.Position, engageDist, n.PatrolAngle)
	n.Position = moveToward(n.Position, waypoint, n.Speed, ctx.DtMs)
	n.Rotation = faceToward(n.Position, best.Position)
	return tryFire(n, ctx.Now, time.Duration(s.cfg.Retreat.FireCooldownMs)*time.Millisecond,
		best.NPC.ID, false, best.Distance, n.WeaponDamage, n.WeaponType, n.WeaponTier, 0)
}

func (s *RetreatStrategy) updateRetreat(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	home := n.EffectiveBasePosition()
	threatCentroid := home
	if len(nb.NearbyHostiles) > 0 {
		pts := make([]geom.Vector2, 0, len(nb.NearbyHostiles))
		for _, h := range nb.NearbyHostiles {
			pts = append(pts, h.Position)
		}
		threatCentroid = geom.Centroid(pts)
	}
	away := geom.Vector2{
		X: n.Position.X*2 - threatCentroid.X,
		Y: n.Position.Y*2 - threatCentroid.Y,
	}
	blended := geom.Lerp(away, home, s.cfg.Retreat.RetreatHomeWeight)
	n.Position = moveToward(n.Position, blended, n.Speed*s.cfg.Retreat.RetreatSpeedMult, ctx.DtMs)
	if geom.Distance(n.Position, home) < 20 {
		n.State = "healing"
	}
	return nil
}

func (s *RetreatStrategy) updateHealing(n *npc.NPC, ctx *Context) *action.Action {
	dtSec := float64(ctx.DtMs) / 1000.0
	n.Hull += n.HullMax * s.cfg.Retreat.HealHullPctPerSec * dtSec
	n.Shield += n.ShieldMax * s.cfg.Retreat.HealShieldPctPerSec * dtSec
	n.ClampHull()
	n.ClampShield()
	if n.HullFrac() >= s.cfg.Retreat.HealUntilHullFrac {
		n.State = "patrol"
	}
	return nil
}

func (s *RetreatStrategy) Cleanup(id bson.ObjectID) {}
