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

// RageStrategy is the universal fallback for orphaned NPCs (§4.11): it
// overrides the faction strategy entirely whenever npc.Orphaned and
// npc.State == "rage", set by the base-destruction handler.
type RageStrategy struct {
	cfg *config.Config
}

func NewRageStrategy(cfg *config.Config) *RageStrategy {
	return &RageStrategy{cfg: cfg}
}

func (s *RageStrategy) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	target := selectNearest(nb.NearbyPlayers)
	if target == nil || target.Distance > n.AggroRange {
		n.ClearTarget()
		simplePatrol(n, n.OrphanCenter, ctx.PatrolRadius, 0.2, ctx.DtMs)
		n.Position = moveToward(n.Position, n.PatrolTarget, n.Speed, ctx.DtMs)
		return nil, nil
	}

	n.SetTargetPlayer(target.Player.ID)
	n.Position = moveToward(n.Position, target.Position, n.Speed*s.cfg.Rage.SpeedMult, ctx.DtMs)
	n.Rotation = faceToward(n.Position, target.Position)

	a := tryFire(n, ctx.Now, time.Duration(s.cfg.Rage.FireCooldownMs)*time.Millisecond,
		target.Player.ID, true, geom.Distance(n.Position, target.Position), n.WeaponDamage, n.WeaponType, n.WeaponTier, 0)
	if a != nil {
		a.Fire.RageMultiplier = s.cfg.Rage.DamageMult
		a.Fire.BaseDamage *= s.cfg.Rage.DamageMult
	}
	return a, nil
}

func (s *RageStrategy) Cleanup(id bson.ObjectID) {}
