package strategy

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/faction"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
)

type warningEntry struct {
	Start  time.Time
	Warned bool
}

// TerritorialStrategy is the rogue-miner baseline (§4.4): a disc of
// territoryRadius around home base inside which player intruders get a
// 3-second warning before combat engages. MiningStrategy defers to this
// whenever an intruder is present and the miner is not mid-job.
type TerritorialStrategy struct {
	cfg      *config.Config
	warnings map[bson.ObjectID]map[bson.ObjectID]*warningEntry
}

func NewTerritorialStrategy(cfg *config.Config) *TerritorialStrategy {
	return &TerritorialStrategy{
		cfg:      cfg,
		warnings: make(map[bson.ObjectID]map[bson.ObjectID]*warningEntry),
	}
}

// Intruder reports whether a player is inside n's territory disc.
func Intruder(n *npc.NPC, p geom.Vector2, territoryRadius float64) bool {
	return geom.Distance(n.EffectiveBasePosition(), p) <= territoryRadius
}

func (s *TerritorialStrategy) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	if shouldRetreat(n, s.cfg) && n.State != "retreat" {
		n.State = "retreat"
		n.ClearTarget()
	}
	if n.State == "retreat" {
		return s.updateRetreat(n, ctx), nil
	}

	// Pirates get no warning: immediate fire (§4.4).
	if hostile := nearestHostilePirate(nb.NearbyHostiles); hostile != nil {
		n.State = "combat"
		n.SetTargetNPC(hostile.NPC.ID)
		n.Position = moveToward(n.Position, hostile.Position, n.Speed, ctx.DtMs)
		n.Rotation = faceToward(n.Position, hostile.Position)
		dmg := n.WeaponDamage * (1 + s.cfg.Territorial.DefenderDamageBonus)
		return tryFire(n, ctx.Now, time.Duration(s.cfg.Dispatch.DefaultFireCooldownMs)*time.Millisecond,
			hostile.NPC.ID, false, hostile.Distance, dmg, n.WeaponType, n.WeaponTier, 0), nil
	}

	intruder := nearestIntruder(n, nb, ctx.TerritoryRadius)
	if intruder == nil {
		s.clearWarnings(n.ID)
		n.State = "patrol"
		n.ClearTarget()
		simplePatrol(n, n.EffectiveBasePosition(), ctx.PatrolRadius, 0.2, ctx.DtMs)
		return nil, nil
	}

	if intruder.Player.Mining {
		return s.engage(n, *intruder, ctx), nil
	}

	entries := s.entriesFor(n.ID)
	we, ok := entries[intruder.Player.ID]
	if !ok {
		we = &warningEntry{Start: ctx.Now}
		entries[intruder.Player.ID] = we
	}
	if we.Warned {
		return s.engage(n, *intruder, ctx), nil
	}
	if ctx.Now.Sub(we.Start) >= time.Duration(s.cfg.Territorial.WarningDurationMs)*time.Millisecond {
		we.Warned = true
		return s.engage(n, *intruder, ctx), nil
	}

	n.State = "warning"
	n.SetTargetPlayer(intruder.Player.ID)
	approachAngle := geom.Angle(intruder.Position, n.Position)
	waypoint := geom.PointOnCircle(intruder.Position, n.WeaponRange*s.cfg.Territorial.WarningApproachFrac, approachAngle)
	n.Position = moveToward(n.Position, waypoint, n.Speed, ctx.DtMs)
	n.Rotation = faceToward(n.Position, intruder.Position)
	return &action.Action{
		ID:        action.NewActionID(),
		AuthorID:  n.ID,
		Kind:      action.Warning,
		Timestamp: ctx.Now,
		Warning_:  &action.WarningParams{IntruderID: intruder.Player.ID},
	}, nil
}

func (s *TerritorialStrategy) engage(n *npc.NPC, intruder neighborhood.PlayerEntry, ctx *Context) *action.Action {
	n.State = "combat"
	n.SetTargetPlayer(intruder.Player.ID)
	center := n.EffectiveBasePosition()
	maxFromCenter := ctx.TerritoryRadius * s.cfg.Territorial.PursueClampFrac
	waypoint := geom.ClampRadius(center, intruder.Position, maxFromCenter)
	n.Position = moveToward(n.Position, waypoint, n.Speed, ctx.DtMs)
	n.Rotation = faceToward(n.Position, intruder.Position)
	dmg := n.WeaponDamage * (1 + s.cfg.Territorial.DefenderDamageBonus)
	return tryFire(n, ctx.Now, time.Duration(s.cfg.Dispatch.DefaultFireCooldownMs)*time.Millisecond,
		intruder.Player.ID, true, intruder.Distance, dmg, n.WeaponType, n.WeaponTier, 0)
}

func (s *TerritorialStrategy) updateRetreat(n *npc.NPC, ctx *Context) *action.Action {
	home := n.EffectiveBasePosition()
	n.Position = moveToward(n.Position, home, n.Speed, ctx.DtMs)
	if geom.Distance(n.Position, home) < 20 {
		n.State = "patrol"
	}
	return nil
}

func nearestIntruder(n *npc.NPC, nb neighborhood.Neighborhood, territoryRadius float64) *neighborhood.PlayerEntry {
	for i := range nb.NearbyPlayers {
		if Intruder(n, nb.NearbyPlayers[i].Position, territoryRadius) {
			return &nb.NearbyPlayers[i]
		}
	}
	return nil
}

func nearestHostilePirate(hostiles []neighborhood.NPCEntry) *neighborhood.NPCEntry {
	for i := range hostiles {
		if hostiles[i].NPC.Faction == faction.Pirate {
			return &hostiles[i]
		}
	}
	return nil
}

func (s *TerritorialStrategy) entriesFor(id bson.ObjectID) map[bson.ObjectID]*warningEntry {
	m, ok := s.warnings[id]
	if !ok {
		m = make(map[bson.ObjectID]*warningEntry)
		s.warnings[id] = m
	}
	return m
}

func (s *TerritorialStrategy) clearWarnings(id bson.ObjectID) {
	delete(s.warnings, id)
}

func (s *TerritorialStrategy) Cleanup(id bson.ObjectID) {
	delete(s.warnings, id)
}
