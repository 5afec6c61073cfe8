package strategy

import (
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
)

// FlankingStrategy is the pirate baseline combat behavior (§4.2): focus-fire
// target scoring plus angular flanking geometry so allies attacking the
// same target spread across the far hemisphere from their home base. The
// scoring and geometry helpers below are exported; the fighter and captain
// behaviors do not use them and pick their targets nearest-first.
// PirateStrategy falls back to a FlankingStrategy for any pirate NPC type
// without a dedicated sub-strategy.
type FlankingStrategy struct {
	cfg *config.Config
}

func NewFlankingStrategy(cfg *config.Config) *FlankingStrategy {
	return &FlankingStrategy{cfg: cfg}
}

// ScoreTarget returns the focus-fire-weighted score for targeting p, given
// how many allies are already targeting p (§4.2: "+2 per ally on the same
// target, plus a proximity bonus of 1 - distance/aggroRange").
func ScoreTarget(n *npc.NPC, p neighborhood.PlayerEntry, alliesOnTarget int, focusBonus float64) float64 {
	proximity := 1.0
	if n.AggroRange > 0 {
		proximity = 1.0 - p.Distance/n.AggroRange
	}
	return focusBonus*float64(alliesOnTarget) + proximity
}

// countAlliesOnTarget counts same-faction allies already targeting p.
func countAlliesOnTarget(allies []neighborhood.NPCEntry, playerID bson.ObjectID) int {
	count := 0
	for _, a := range allies {
		if a.NPC.TargetPlayer != nil && *a.NPC.TargetPlayer == playerID {
			count++
		}
	}
	return count
}

// BestTarget picks the highest-scoring player target for n (§4.2).
func BestTarget(n *npc.NPC, nb neighborhood.Neighborhood, focusBonus float64) *neighborhood.PlayerEntry {
	if len(nb.NearbyPlayers) == 0 {
		return nil
	}
	var best *neighborhood.PlayerEntry
	bestScore := math.Inf(-1)
	for i := range nb.NearbyPlayers {
		p := nb.NearbyPlayers[i]
		score := ScoreTarget(n, p, countAlliesOnTarget(nb.NearbyAllies, p.Player.ID), focusBonus)
		if score > bestScore {
			bestScore = score
			best = &nb.NearbyPlayers[i]
		}
	}
	return best
}

// FlankPosition computes the flanking waypoint for n relative to allies
// sharing the same target (§4.2: index/total distributed across a 270-deg
// arc centered on base->target rotated 180, approach at 0.8x weapon range).
func FlankPosition(n *npc.NPC, target geom.Vector2, allies []neighborhood.NPCEntry, targetID bson.ObjectID, arcDegrees, approachFrac float64) geom.Vector2 {
	attackers := []bson.ObjectID{n.ID}
	for _, a := range allies {
		if a.NPC.TargetPlayer != nil && *a.NPC.TargetPlayer == targetID {
			attackers = append(attackers, a.NPC.ID)
		}
	}
	sort.Slice(attackers, func(i, j int) bool { return attackers[i].Hex() < attackers[j].Hex() })

	index := 0
	for i, id := range attackers {
		if id == n.ID {
			index = i
			break
		}
	}
	total := len(attackers)
	frac := 0.0
	if total > 1 {
		frac = float64(index) / float64(total)
	}

	baseToTarget := geom.Angle(n.HomeBasePosition, target)
	opposite := baseToTarget + math.Pi
	arcRad := arcDegrees * math.Pi / 180.0
	angle := opposite - arcRad/2 + frac*arcRad

	approachDist := n.WeaponRange * approachFrac
	return geom.PointOnCircle(target, approachDist, angle)
}

func (s *FlankingStrategy) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	switch n.State {
	case "retreat":
		return s.updateRetreat(n, ctx), nil
	default:
		if shouldRetreat(n, s.cfg) {
			n.State = "retreat"
			n.ClearTarget()
			return s.updateRetreat(n, ctx), nil
		}
		target := BestTarget(n, nb, s.cfg.Flanking.FocusFireBonusPerAlly)
		if target == nil {
			n.State = "patrol"
			n.ClearTarget()
			simplePatrol(n, n.EffectiveBasePosition(), ctx.PatrolRadius, 0.2, ctx.DtMs)
			return nil, nil
		}
		n.State = "combat"
		n.SetTargetPlayer(target.Player.ID)
		waypoint := FlankPosition(n, target.Position, nb.NearbyAllies, target.Player.ID, s.cfg.Flanking.FlankArcDegrees, s.cfg.Flanking.ApproachRangeFrac)
		n.Position = moveToward(n.Position, waypoint, n.Speed, ctx.DtMs)
		n.Rotation = faceToward(n.Position, target.Position)
		return tryFire(n, ctx.Now, time.Duration(s.cfg.Dispatch.DefaultFireCooldownMs)*time.Millisecond,
			target.Player.ID, true, target.Distance, n.WeaponDamage, n.WeaponType, n.WeaponTier, 0), nil
	}
}

func (s *FlankingStrategy) updateRetreat(n *npc.NPC, ctx *Context) *action.Action {
	home := n.EffectiveBasePosition()
	n.Position = moveToward(n.Position, home, n.Speed*s.cfg.Flanking.RetreatSpeedMult, ctx.DtMs)
	if geom.Distance(n.Position, home) < s.cfg.Flanking.RetreatArriveRadius {
		n.State = "patrol"
	}
	return nil
}

func (s *FlankingStrategy) Cleanup(id bson.ObjectID) {}
