package strategy

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
)

// selectNearest returns the nearest player entry, or nil if players is
// empty. Build already sorts nearbyPlayers by ascending distance (§4.1
// common helper "selectNearest(npc, players)").
func selectNearest(players []neighborhood.PlayerEntry) *neighborhood.PlayerEntry {
	if len(players) == 0 {
		return nil
	}
	return &players[0]
}

// tryFire builds a fire Action if dist is within weaponRange and the
// per-NPC cooldown has elapsed (§4.1 common helper "tryFire(npc, target,
// cooldown)"). lastFire is read from n.LastFireTime and stamped on success.
func tryFire(n *npc.NPC, now time.Time, cooldown time.Duration, targetID bson.ObjectID, targetIsPlayer bool, dist float64, damage float64, weaponType string, weaponTier int, shieldPiercing float64) *action.Action {
	if dist > n.WeaponRange {
		return nil
	}
	if !n.LastFireTime.IsZero() && now.Sub(n.LastFireTime) < cooldown {
		return nil
	}
	n.LastFireTime = now
	return &action.Action{
		ID:        action.NewActionID(),
		AuthorID:  n.ID,
		Kind:      action.Fire,
		Timestamp: now,
		Fire: &action.FireParams{
			Target:         targetID,
			TargetIsPlayer: targetIsPlayer,
			WeaponType:     weaponType,
			WeaponTier:     weaponTier,
			BaseDamage:     damage,
			ShieldPiercing: shieldPiercing,
		},
	}
}

// simplePatrol advances n's patrol angle around center by angularSpeed
// (rad/s) and recomputes n.PatrolTarget on the circle of the given radius
// (§4.1 common helper "simplePatrol(npc, center, radius, angularSpeed)").
func simplePatrol(n *npc.NPC, center geom.Vector2, radius float64, angularSpeed float64, dtMs int64) geom.Vector2 {
	n.PatrolAngle += angularSpeed * float64(dtMs) / 1000.0
	n.PatrolAngle = math.Mod(n.PatrolAngle, 2*math.Pi)
	n.PatrolTarget = geom.PointOnCircle(center, radius, n.PatrolAngle)
	return n.PatrolTarget
}

// shouldRetreat consults the faction's configured hull-fraction threshold
// (§4.1 common helper "shouldRetreat(npc)"). Swarm's 0.0 threshold means
// "never" since hull can only reach 0 on death.
func shouldRetreat(n *npc.NPC, cfg *config.Config) bool {
	threshold, ok := cfg.Dispatch.RetreatThresholds[string(n.Faction)]
	if !ok {
		return false
	}
	return n.HullFrac() <= threshold
}

// moveToward advances current toward target by at most maxDistance,
// mirroring geom.MoveToward but expressed in terms of a per-tick dt and a
// speed, the form every strategy's movement step uses.
func moveToward(current, target geom.Vector2, speed float64, dtMs int64) geom.Vector2 {
	maxDist := speed * float64(dtMs) / 1000.0
	return geom.MoveToward(current, target, maxDist)
}

// faceToward returns the heading (radians) from a to b.
func faceToward(a, b geom.Vector2) float64 {
	return geom.Angle(a, b)
}
