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

const (
	phaseHunt        = "hunt"
	phaseSiege       = "siege"
	phaseSwarm       = "swarm"
	phaseDesperation = "desperation"
)

// QueenStrategy drives the Swarm Queen boss's four-phase engine (§4.9):
// HUNT -> SIEGE -> SWARM -> DESPERATION, gated on hull fraction, each with
// its own speed/damage multiplier and ability preference.
type QueenStrategy struct {
	cfg *config.Config
}

func NewQueenStrategy(cfg *config.Config) *QueenStrategy {
	return &QueenStrategy{cfg: cfg}
}

func (s *QueenStrategy) phaseFor(frac float64) string {
	q := s.cfg.Queen
	switch {
	case frac > q.PhaseHuntMinFrac:
		return phaseHunt
	case frac > q.PhaseSiegeMinFrac:
		return phaseSiege
	case frac > q.PhaseSwarmMinFrac:
		return phaseSwarm
	default:
		return phaseDesperation
	}
}

func (s *QueenStrategy) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	if n.Queen == nil {
		n.Queen = &npc.QueenSlot{Phase: phaseHunt, PhaseStartedAt: ctx.Now}
	}

	next := s.phaseFor(n.HullFrac())
	var transition *npc.PhaseTransition
	if next != n.Queen.Phase {
		transition = &npc.PhaseTransition{From: n.Queen.Phase, To: next, Timestamp: ctx.Now}
		n.Queen.Phase = next
		n.Queen.PhaseStartedAt = ctx.Now
	}

	var a *action.Action
	switch n.Queen.Phase {
	case phaseSiege:
		a = s.updateSiege(n, nb, ctx)
	case phaseSwarm:
		a = s.updateSwarmPhase(n, nb, ctx)
	case phaseDesperation:
		a = s.updateDesperation(n, nb, ctx)
	default:
		a = s.updateHunt(n, nb, ctx)
	}

	if transition != nil {
		if a == nil {
			// No combat action this tick; the transition still has to
			// surface through something, so carry it on a bare warning
			// action rather than drop it (§4.9: "surfaces through the next
			// returned Action").
			a = &action.Action{ID: action.NewActionID(), AuthorID: n.ID, Kind: action.Warning, Timestamp: ctx.Now, Warning_: &action.WarningParams{IntruderID: n.ID}}
		}
		a.PhaseTransition = transition
	}
	return a, nil
}

func (s *QueenStrategy) updateHunt(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	target := selectNearest(nb.NearbyPlayers)
	if target == nil {
		return s.patrol(n, ctx)
	}
	n.SetTargetPlayer(target.Player.ID)
	waypoint := geom.PointOnCircle(target.Position, n.WeaponRange*0.6, geom.Angle(target.Position, n.Position))
	n.Position = moveToward(n.Position, waypoint, n.Speed*s.cfg.Queen.HuntSpeedMult, ctx.DtMs)
	n.Rotation = faceToward(n.Position, target.Position)

	if a := s.maybeAbility(n, nb, ctx); a != nil {
		return a
	}
	a := tryFire(n, ctx.Now, time.Duration(s.cfg.Dispatch.DefaultFireCooldownMs)*time.Millisecond,
		target.Player.ID, true, target.Distance, n.WeaponDamage*s.cfg.Queen.HuntDamageMult, n.WeaponType, n.WeaponTier, 0)
	return a
}

func (s *QueenStrategy) updateSiege(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	centroid := n.EffectiveBasePosition()
	if len(nb.NearbyAllies) > 0 {
		pts := make([]geom.Vector2, 0, len(nb.NearbyAllies))
		for _, ally := range nb.NearbyAllies {
			pts = append(pts, ally.Position)
		}
		centroid = geom.Centroid(pts)
	}
	n.Position = moveToward(n.Position, centroid, n.Speed*s.cfg.Queen.SiegeSpeedMult, ctx.DtMs)

	target := selectNearest(nb.NearbyPlayers)
	if target == nil {
		n.ClearTarget()
		return nil
	}
	n.SetTargetPlayer(target.Player.ID)
	n.Rotation = faceToward(n.Position, target.Position)

	if a := s.maybeAbility(n, nb, ctx); a != nil {
		return a
	}
	return tryFire(n, ctx.Now, time.Duration(s.cfg.Dispatch.DefaultFireCooldownMs)*time.Millisecond,
		target.Player.ID, true, target.Distance, n.WeaponDamage*s.cfg.Queen.SiegeDamageMult, n.WeaponType, n.WeaponTier, 0)
}

func (s *QueenStrategy) updateSwarmPhase(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	if len(nb.NearbyPlayers) == 0 {
		return s.patrol(n, ctx)
	}
	if a := s.tryAcidBurst(n, nb, ctx); a != nil {
		return a
	}
	if n.Queen.ActiveWebSnare != nil {
		return s.advanceWebSnare(n, ctx)
	}
	if s.tryWebSnare(n, nb, ctx) {
		return nil
	}
	return s.updateHunt(n, nb, ctx)
}

func (s *QueenStrategy) updateDesperation(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	target := selectNearest(nb.NearbyPlayers)
	if target == nil {
		return s.patrol(n, ctx)
	}
	n.SetTargetPlayer(target.Player.ID)
	n.Position = moveToward(n.Position, target.Position, n.Speed*s.cfg.Queen.DesperationSpeedMult, ctx.DtMs)
	n.Rotation = faceToward(n.Position, target.Position)

	if a := s.maybeAbility(n, nb, ctx); a != nil {
		return a
	}
	return tryFire(n, ctx.Now, time.Duration(s.cfg.Dispatch.DefaultFireCooldownMs)*time.Millisecond,
		target.Player.ID, true, target.Distance, n.WeaponDamage*s.cfg.Queen.DesperationDamageMult, n.WeaponType, n.WeaponTier, 0)
}

func (s *QueenStrategy) patrol(n *npc.NPC, ctx *Context) *action.Action {
	n.ClearTarget()
	radius := s.cfg.Queen.PatrolRadius
	simplePatrol(n, n.EffectiveBasePosition(), radius, s.cfg.Queen.PatrolOrbitSpeed, ctx.DtMs)
	n.Position = moveToward(n.Position, n.PatrolTarget, n.Speed, ctx.DtMs)
	return nil
}

// cooldownDivisor halves ability cooldowns in desperation (§4.9).
func (s *QueenStrategy) cooldownDivisor(n *npc.NPC) float64 {
	if n.Queen.Phase == phaseDesperation {
		return s.cfg.Queen.DesperationCooldownDivisor
	}
	return 1
}

func (s *QueenStrategy) maybeAbility(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	if n.Queen.ActiveWebSnare != nil {
		return s.advanceWebSnare(n, ctx)
	}
	if s.tryWebSnare(n, nb, ctx) {
		return nil // charge started this tick; the cast itself lands later
	}
	return s.tryAcidBurst(n, nb, ctx)
}

// tryWebSnare begins the charge phase of a web-snare cast at the centroid
// of nearby players, gated by cooldown. It reports whether a charge was
// started; the actual WebSnare action isn't emitted until advanceWebSnare
// carries it through the charge and projectile-travel phases (§4.9).
func (s *QueenStrategy) tryWebSnare(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) bool {
	if len(nb.NearbyPlayers) == 0 || ctx.Now.Before(n.Queen.WebSnareCooldownUntil) {
		return false
	}
	pts := make([]geom.Vector2, 0, len(nb.NearbyPlayers))
	for _, p := range nb.NearbyPlayers {
		pts = append(pts, p.Position)
	}
	centroid := geom.Centroid(pts)
	cooldown := time.Duration(float64(s.cfg.Queen.WebSnareCooldownMs)/s.cooldownDivisor(n)) * time.Millisecond
	n.Queen.WebSnareCooldownUntil = ctx.Now.Add(cooldown)

	chargeEnd := ctx.Now.Add(time.Duration(s.cfg.Queen.WebSnareChargeMs) * time.Millisecond)
	travelSec := geom.Distance(n.Position, centroid) / s.cfg.Queen.WebSnareProjectileSpeed
	n.Queen.ActiveWebSnare = &npc.WebSnareState{
		Phase:     "charging",
		CastAt:    ctx.Now,
		ImpactAt:  centroid,
		ArrivesAt: chargeEnd.Add(time.Duration(travelSec * float64(time.Second))),
	}
	return true
}

// advanceWebSnare carries an in-flight web-snare cast through its charge
// and travel phases, emitting the WebSnare action only once the projectile
// reaches its impact point (§4.9).
func (s *QueenStrategy) advanceWebSnare(n *npc.NPC, ctx *Context) *action.Action {
	ws := n.Queen.ActiveWebSnare
	chargeEnd := ws.CastAt.Add(time.Duration(s.cfg.Queen.WebSnareChargeMs) * time.Millisecond)

	switch ws.Phase {
	case "charging":
		if ctx.Now.Before(chargeEnd) {
			return nil
		}
		ws.Phase = "traveling"
		fallthrough
	case "traveling":
		if ctx.Now.Before(ws.ArrivesAt) {
			return nil
		}
		n.Queen.ActiveWebSnare = nil
		return &action.Action{
			ID: action.NewActionID(), AuthorID: n.ID, Kind: action.WebSnare, Timestamp: ctx.Now,
			AreaEffect: &action.AreaEffectParams{
				Center: ws.ImpactAt, Radius: s.cfg.Queen.WebSnareRadius,
				DurationMs: s.cfg.Queen.WebSnareDurationMs, SlowPct: s.cfg.Queen.WebSnareSlowPct,
			},
		}
	default:
		n.Queen.ActiveWebSnare = nil
		return nil
	}
}

func (s *QueenStrategy) tryAcidBurst(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	if len(nb.NearbyPlayers) == 0 || ctx.Now.Before(n.Queen.AcidBurstCooldownUntil) {
		return nil
	}
	target := selectNearest(nb.NearbyPlayers)
	if target == nil || target.Distance > n.WeaponRange*1.5 {
		return nil
	}
	cooldown := time.Duration(float64(s.cfg.Queen.AcidBurstCooldownMs)/s.cooldownDivisor(n)) * time.Millisecond
	n.Queen.AcidBurstCooldownUntil = ctx.Now.Add(cooldown)
	return &action.Action{
		ID: action.NewActionID(), AuthorID: n.ID, Kind: action.AcidBurst, Timestamp: ctx.Now,
		AreaEffect: &action.AreaEffectParams{
			Center: target.Position, Radius: s.cfg.Queen.AcidBurstRadius,
			Damage: s.cfg.Queen.AcidBurstDamage, DotIntervalMs: s.cfg.Queen.AcidBurstDotInterval,
			DotDurationMs: s.cfg.Queen.AcidBurstDotDurationMs,
		},
	}
}

func (s *QueenStrategy) Cleanup(id bson.ObjectID) {}
