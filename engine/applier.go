package engine

import (
	"math"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/faction"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/npc"
	"github.com/nicoberrocal/skirmishCore/player"
	"github.com/nicoberrocal/skirmishCore/strategy"
)

// apply resolves a single Strategy-produced Action against world state and
// appends the events it produces (spec.md §2 step 3, §4.12's Kind table).
// A Kind that no strategy in this core ever emits (reserved constants such
// as PirateIntelBroadcast) still gets a defensive branch rather than
// falling into the default error case, since a future strategy or a
// hand-authored test fixture may legitimately construct one.
func (e *Engine) apply(a *action.Action, now time.Time, dtSec float64) {
	if pt := a.PhaseTransition; pt != nil {
		e.emit(action.NewEvent(action.EventQueenPhaseChanged, a.AuthorID, e.positionOf(a.AuthorID)).
			With("from", pt.From).
			With("to", pt.To))
	}

	switch a.Kind {
	case action.Fire:
		e.applyFire(a, now)

	case action.RogueMinerStartMining, action.RogueMinerMiningProgress,
		action.RogueMinerMiningComplete, action.RogueMinerStartDeposit,
		action.RogueMinerRage, action.RogueMinerRageClear:
		e.emit(action.NewEvent(action.EventNPCUpdated, a.AuthorID, e.positionOf(a.AuthorID)).
			With("kind", string(a.Kind)))

	case action.RogueMinerDeposited:
		e.applyDeposit(a, now)

	case action.PirateIntelBroadcast:
		e.emit(action.NewEvent(action.EventIntelBroadcast, a.AuthorID, e.positionOf(a.AuthorID)))

	case action.PirateBoostDive:
		e.emit(action.NewEvent(action.EventNPCUpdated, a.AuthorID, e.positionOf(a.AuthorID)).
			With("kind", string(a.Kind)))

	case action.PirateSteal:
		e.applySteal(a, now)

	case action.PirateDreadnoughtEnraged, action.NPCInvulnerable:
		e.emit(action.NewEvent(action.EventNPCUpdated, a.AuthorID, e.positionOf(a.AuthorID)).
			With("kind", string(a.Kind)))

	case action.AssimilateKind:
		e.applyAssimilate(a, now)

	case action.VoidSpawnMinions:
		e.applySpawnMinions(a, now)

	case action.VoidGravityWell:
		e.applyGravityWell(a, now)

	case action.VoidGravityWellTick:
		e.applyGravityWellTick(a, now, dtSec)

	case action.VoidConsume:
		e.applyConsume(a, now)

	case action.WebSnare, action.AcidBurst:
		e.applyAreaEffectCast(a, now)

	case action.Warning:
		e.emit(action.NewEvent(action.EventNPCUpdated, a.AuthorID, e.positionOf(a.AuthorID)).
			With("intruderId", a.Warning_.IntruderID.Hex()))
	}
}

// positionOf returns n's current position for event stamping, or the zero
// vector if n is no longer live (e.g. already swept this tick).
func (e *Engine) positionOf(id bson.ObjectID) geom.Vector2 {
	if n, ok := e.npcs[id]; ok {
		return n.Position
	}
	return geom.Vector2{}
}

// applyFire resolves one Fire action against its target, including the
// dreadnought block-chance mitigation (checked target-side, since no
// strategy ever sets FireParams.Blockable — block applies whenever the
// target itself is a pirate dreadnought) and the swarm linked-damage
// propagation (§4.6, §4.8).
func (e *Engine) applyFire(a *action.Action, now time.Time) {
	fp := a.Fire
	if fp.TargetIsPlayer {
		p, ok := e.players[fp.Target]
		if !ok {
			return
		}
		hullDealt, shieldDealt := e.applyDamageToPlayer(p, fp.BaseDamage, fp.ShieldPiercing)
		e.emit(action.NewEvent(action.EventDamageApplied, a.AuthorID, p.Position).
			With("target", fp.Target.Hex()).
			With("targetIsPlayer", true).
			With("hullDamage", hullDealt).
			With("shieldDamage", shieldDealt))
		if e.hitObserver != nil {
			e.hitObserver(HitResult{
				AttackerID: a.AuthorID, TargetID: fp.Target, TargetIsPlayer: true,
				RawDamage: fp.BaseDamage, HullDamage: hullDealt, ShieldDamage: shieldDealt,
				Lethal: p.Hull <= 0,
			})
		}
		return
	}

	target, ok := e.npcs[fp.Target]
	if !ok || target.Dead() {
		return
	}

	if target.Type == npc.PirateDreadnought && rand.Float64() < e.cfg.Pirate.DreadnoughtBlockChance {
		e.emit(action.NewEvent(action.EventDamageApplied, a.AuthorID, target.Position).
			With("target", fp.Target.Hex()).
			With("blocked", true))
		if e.hitObserver != nil {
			e.hitObserver(HitResult{
				AttackerID: a.AuthorID, TargetID: fp.Target, RawDamage: fp.BaseDamage, Blocked: true,
			})
		}
		return
	}

	hullDealt, shieldDealt := e.applyDamageToNPC(target, fp.BaseDamage, fp.ShieldPiercing)
	e.emit(action.NewEvent(action.EventDamageApplied, a.AuthorID, target.Position).
		With("target", fp.Target.Hex()).
		With("hullDamage", hullDealt).
		With("shieldDamage", shieldDealt))
	if e.hitObserver != nil {
		e.hitObserver(HitResult{
			AttackerID: a.AuthorID, TargetID: fp.Target, RawDamage: fp.BaseDamage,
			HullDamage: hullDealt, ShieldDamage: shieldDealt, Lethal: target.Dead(),
		})
	}
	e.handleNPCDeathIfNeeded(target, a.AuthorID, now)

	if target.LinkedHealth {
		shares := strategy.LinkedDamagePass(target, hullDealt+shieldDealt, e.liveNPCs(), e.cfg.Swarm)
		for id, amount := range shares {
			recipient, ok := e.npcs[id]
			if !ok || recipient.Dead() {
				continue
			}
			rh, rs := e.applyDamageToNPC(recipient, amount, 0)
			e.emit(action.NewEvent(action.EventDamageApplied, a.AuthorID, recipient.Position).
				With("target", id.Hex()).
				With("hullDamage", rh).
				With("shieldDamage", rs).
				With("linked", true))
			e.handleNPCDeathIfNeeded(recipient, a.AuthorID, now)
		}
	}
}

// applyDamageToNPC subtracts shieldPiercing's fraction of rawDamage
// straight from hull; the remainder resolves against shield first, then
// hull, clamping both (§3.1 invariant 0 <= hull/shield <= max).
func (e *Engine) applyDamageToNPC(target *npc.NPC, rawDamage, shieldPiercing float64) (hullDealt, shieldDealt float64) {
	pierce := rawDamage * shieldPiercing
	remainder := rawDamage - pierce
	shieldDealt = math.Min(remainder, target.Shield)
	target.Shield -= shieldDealt
	remainder -= shieldDealt
	hullDealt = pierce + remainder
	target.Hull -= hullDealt
	target.ClampHull()
	target.ClampShield()
	return hullDealt, shieldDealt
}

// applyDamageToPlayer mirrors applyDamageToNPC's math; player.Ref carries
// no clamp helpers of its own, so clamping is inlined here.
func (e *Engine) applyDamageToPlayer(p *player.Ref, rawDamage, shieldPiercing float64) (hullDealt, shieldDealt float64) {
	pierce := rawDamage * shieldPiercing
	remainder := rawDamage - pierce
	shieldDealt = math.Min(remainder, p.Shield)
	p.Shield -= shieldDealt
	if p.Shield < 0 {
		p.Shield = 0
	}
	remainder -= shieldDealt
	hullDealt = pierce + remainder
	p.Hull -= hullDealt
	if p.Hull < 0 {
		p.Hull = 0
	}
	if p.Hull > p.HullMax {
		p.Hull = p.HullMax
	}
	return hullDealt, shieldDealt
}

// handleNPCDeathIfNeeded emits destruction telemetry and runs the
// formation-leader-replacement pass the instant a target's hull reaches
// zero. Actual map removal is deferred to the end-of-tick sweep so a dead
// NPC's final position/state is still visible to any action or event
// produced later in the same tick.
func (e *Engine) handleNPCDeathIfNeeded(target *npc.NPC, attackerID bson.ObjectID, now time.Time) {
	if !target.Dead() {
		return
	}
	if target.State == "dead" {
		return // already handled this tick
	}
	target.State = "dead"
	e.emit(action.NewEvent(action.EventNPCDestroyed, target.ID, target.Position).
		With("attacker", attackerID.Hex()))

	if target.FormationLeader && target.FormationID != nil {
		fid := *target.FormationID
		target.FormationLeader = false
		e.dispatcher.Formation().HandleLeaderDeath(fid, e.liveNPCs(), now)
		e.emit(action.NewEvent(action.EventFormationLeaderNew, target.ID, target.Position).
			With("formationId", fid.Hex()))
	}
}

// healNPC fills hull room first, then spills any remaining amount into
// shield, clamping both (used by the Leviathan's consume-dissolve heal).
func (e *Engine) healNPC(n *npc.NPC, amount float64) {
	room := n.HullMax - n.Hull
	if amount <= room {
		n.Hull += amount
	} else {
		n.Hull = n.HullMax
		n.Shield += amount - room
	}
	n.ClampHull()
	n.ClampShield()
}

// applyAssimilate advances a base's takeover progress and, once it flips,
// removes every drone that had attached itself to this base (§4.6, §8
// property 10).
func (e *Engine) applyAssimilate(a *action.Action, now time.Time) {
	ap := a.Assimilate
	target, ok := e.bases[ap.BaseID]
	if !ok || target.Destroyed {
		return
	}
	if drone, ok := e.npcs[ap.DroneID]; ok {
		drone.AttachedToBase = true
	}

	flipped := target.Assimilate()
	ev := action.NewEvent(action.EventBaseAssimilated, ap.BaseID, target.Position).
		With("drone", ap.DroneID.Hex()).
		With("flipped", flipped).
		With("progress", target.AssimilationProgress).
		With("threshold", target.AssimilationThreshold)

	if flipped {
		var consumed []string
		for id, n := range e.npcs {
			if n.AttachedToBase && n.AssimilateTarget != nil && *n.AssimilateTarget == target.ID {
				consumed = append(consumed, id.Hex())
				e.dispatcher.Cleanup(id)
				delete(e.npcs, id)
			}
		}
		ev = ev.With("consumed", consumed)
	}
	e.emit(ev)
}

// applySpawnMinions materializes RiftCount new void rift NPCs at the
// Leviathan's position and registers each with the leviathan strategy so
// its active-minion count stays accurate (§4.10).
func (e *Engine) applySpawnMinions(a *action.Action, now time.Time) {
	leviathan, ok := e.npcs[a.AuthorID]
	if !ok {
		return
	}
	sp := a.SpawnMinions
	for i := 0; i < sp.RiftCount; i++ {
		id := bson.NewObjectID()
		minion := npc.New(id, npc.VoidRift, faction.Void, npc.Blueprints[npc.VoidRift], leviathan.Position, leviathan.HomeBaseID)
		e.npcs[id] = minion
		e.dispatcher.Leviathan().RegisterMinion(leviathan.ID, id)
		e.emit(action.NewEvent(action.EventNPCUpdated, id, minion.Position).
			With("spawnedBy", leviathan.ID.Hex()).
			With("trigger", sp.Trigger))
	}
}

// applyGravityWell handles the non-damaging warning/end phase broadcasts;
// the active phase's actual pull/damage is a separate VoidGravityWellTick
// action handled by applyGravityWellTick.
func (e *Engine) applyGravityWell(a *action.Action, now time.Time) {
	gw := a.GravityWell
	e.emit(action.NewEvent(action.EventGravityWellTick, a.AuthorID, gw.Center).
		With("phase", gw.Phase).
		With("radius", gw.Radius))
}

// applyGravityWellTick pulls and damages every player within the well's
// radius. AffectedPlayers is never populated by the strategy (it only
// knows the well's geometry, not the live player snapshot), so the
// applier builds it here from the current player set.
func (e *Engine) applyGravityWellTick(a *action.Action, now time.Time, dtSec float64) {
	gw := a.GravityWell
	var affected []action.GravityWellAffected

	for _, p := range e.players {
		dist := geom.Distance(gw.Center, p.Position)
		if dist > gw.Radius {
			continue
		}
		dir := gw.Center.Sub(p.Position).Normalized()
		p.Position = p.Position.Add(dir.Scale(gw.PullStrength * dtSec))

		frac := 0.0
		if gw.Radius > 0 {
			frac = 1 - dist/gw.Radius
		}
		damage := gw.DamageEdge + (gw.DamageCenter-gw.DamageEdge)*frac
		e.applyDamageToPlayer(p, damage, 0)

		affected = append(affected, action.GravityWellAffected{PlayerID: p.ID, Distance: dist})
	}

	e.emit(action.NewEvent(action.EventGravityWellTick, a.AuthorID, gw.Center).
		With("phase", "active").
		With("affected", affected))
}

// applyConsume advances the Leviathan's consume ability: tendril/drag
// phases are telemetry only, dissolve removes the target and heals the
// Leviathan (§4.10).
func (e *Engine) applyConsume(a *action.Action, now time.Time) {
	cp := a.Consume
	target, ok := e.npcs[cp.TargetNPCID]

	e.emit(action.NewEvent(action.EventConsumeTick, a.AuthorID, e.positionOf(a.AuthorID)).
		With("phase", cp.Phase).
		With("target", cp.TargetNPCID.Hex()))

	if cp.Phase != "dissolve" {
		return
	}
	if ok {
		e.dispatcher.Cleanup(target.ID)
		delete(e.npcs, target.ID)
	}
	if leviathan, ok := e.npcs[a.AuthorID]; ok && cp.HealAmount > 0 {
		e.healNPC(leviathan, cp.HealAmount)
	}
}

// applyAreaEffectCast registers a new WebSnare/AcidBurst field and, for
// AcidBurst, applies its immediate initial-impact tick (§4.9).
func (e *Engine) applyAreaEffectCast(a *action.Action, now time.Time) {
	ap := a.AreaEffect
	effect := &activeAreaEffect{
		Kind:        a.Kind,
		AuthorID:    a.AuthorID,
		Center:      ap.Center,
		Radius:      ap.Radius,
		SlowPct:     ap.SlowPct,
		Damage:      ap.Damage,
		DotInterval: time.Duration(ap.DotIntervalMs) * time.Millisecond,
		ExpiresAt:   now.Add(time.Duration(ap.DurationMs) * time.Millisecond),
		lastDotAt:   now,
	}
	e.areaEffects[a.ID] = effect

	switch a.Kind {
	case action.WebSnare:
		e.emit(action.NewEvent(action.EventWebSnareApplied, a.AuthorID, ap.Center).
			With("radius", ap.Radius).
			With("slowPct", ap.SlowPct).
			With("durationMs", ap.DurationMs))
	case action.AcidBurst:
		e.applyAreaDamageTick(effect, now)
		e.emit(action.NewEvent(action.EventAcidBurstApplied, a.AuthorID, ap.Center).
			With("radius", ap.Radius).
			With("damage", ap.Damage))
	}
}

// applySteal emits telemetry only: both pirate steal behaviors already
// mutate the target base's scrap pile / claim credits themselves before
// returning the Action (§4.8), so the applier must not re-apply it.
func (e *Engine) applySteal(a *action.Action, now time.Time) {
	sp := a.Steal
	ev := action.NewEvent(action.EventStealResolved, a.AuthorID, e.positionOf(a.AuthorID)).
		With("targetType", sp.TargetType).
		With("stolenAmount", sp.StolenAmount).
		With("stolenItems", sp.StolenItems)
	if sp.TargetBaseID != nil {
		ev = ev.With("targetBase", sp.TargetBaseID.Hex())
	}
	if sp.TargetNPCID != nil {
		ev = ev.With("targetNpc", sp.TargetNPCID.Hex())
	}
	e.emit(ev)
}

// applyDeposit credits the depositing miner's home base with its hauled
// claim credits (§4.7). Unlike steal, the mining strategy never mutates
// the base itself, so this is the applier's only chance to do it.
func (e *Engine) applyDeposit(a *action.Action, now time.Time) {
	rp := a.RogueMiner
	b, ok := e.bases[rp.BaseID]
	if !ok || b.Destroyed {
		return
	}
	b.CreditDeposit(rp.CreditAmount)
	e.emit(action.NewEvent(action.EventClaimCredited, rp.BaseID, b.Position).
		With("amount", rp.CreditAmount).
		With("miner", a.AuthorID.Hex()))
}
