package engine

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/base"
	"github.com/nicoberrocal/skirmishCore/faction"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/npc"
)

// runCrossCutting runs every per-tick pass that belongs to no single NPC's
// dispatch (spec.md §2 step 4): pirate intel expiry, the dreadnought spawn
// gate, the swarm assimilation trigger, and active area-effect upkeep.
func (e *Engine) runCrossCutting(now time.Time) {
	e.dispatcher.Pirate().ExpireIntel(now)
	e.runDreadnoughtSpawnGate(now)
	e.runAssimilationTrigger(now)
	e.runAreaEffects(now)
}

// runDreadnoughtSpawnGate spawns one pirate dreadnought per outpost the
// first tick its health fraction drops to or below the configured
// threshold (§4.8: "a dreadnought spawns once per base, ever").
func (e *Engine) runDreadnoughtSpawnGate(now time.Time) {
	for _, b := range e.bases {
		if b.Destroyed || b.Faction != faction.Pirate || b.Type != base.PirateOutpost {
			continue
		}
		if b.SpawnedDreadnought {
			continue
		}
		if b.HealthFrac() > e.cfg.Pirate.DreadnoughtSpawnHealthFrac {
			continue
		}
		id := bson.NewObjectID()
		baseID := b.ID
		dn := npc.New(id, npc.PirateDreadnought, faction.Pirate, npc.Blueprints[npc.PirateDreadnought], b.Position, &baseID)
		dn.Dreadnought = &npc.DreadnoughtSlot{SpawnStartedAt: now}
		e.npcs[id] = dn
		b.SpawnedDreadnought = true
		e.emit(action.NewEvent(action.EventNPCUpdated, id, b.Position).
			With("spawned", "pirate_dreadnought").
			With("homeBase", baseID.Hex()))
	}
}

// runAssimilationTrigger periodically redirects idle swarm drones/workers
// onto the assimilation path once an assimilable enemy base enters range
// (§4.6; gating cadence is this core's own decision — see DESIGN.md).
func (e *Engine) runAssimilationTrigger(now time.Time) {
	if now.Before(e.nextAssimilateTriggerAt) {
		return
	}
	e.nextAssimilateTriggerAt = now.Add(time.Duration(e.cfg.Swarm.AssimilateTriggerIntervalMs) * time.Millisecond)

	for _, n := range e.npcs {
		if n.Dead() || n.AttachedToBase || n.AssimilateTarget != nil {
			continue
		}
		if n.Type != npc.SwarmDrone && n.Type != npc.SwarmWorker {
			continue
		}
		if n.State != "patrol" {
			continue
		}
		target := e.nearestAssimilableBase(n.Position)
		if target == nil {
			continue
		}
		e.dispatcher.Swarm().StartAssimilation(n, target)
	}
}

// nearestAssimilableBase finds the closest non-destroyed, non-swarm base
// within AssimilateTriggerRadius of point (§4.6: scavenger/pirate/mining
// bases are the only assimilable types).
func (e *Engine) nearestAssimilableBase(point geom.Vector2) *base.Base {
	var best *base.Base
	bestDist := e.cfg.Swarm.AssimilateTriggerRadius

	for _, b := range e.bases {
		if b.Destroyed || b.Faction == faction.Swarm {
			continue
		}
		switch b.Type {
		case base.ScavengerYard, base.PirateOutpost, base.MiningClaim:
		default:
			continue
		}
		d := geom.Distance(point, b.Position)
		if d <= bestDist {
			bestDist = d
			best = b
		}
	}
	return best
}

// runAreaEffects ticks every active WebSnare/AcidBurst field, applying
// AcidBurst's recurring damage-over-time on its configured interval, and
// prunes fields past their expiry (§4.9).
func (e *Engine) runAreaEffects(now time.Time) {
	for id, eff := range e.areaEffects {
		if now.After(eff.ExpiresAt) {
			delete(e.areaEffects, id)
			continue
		}
		if eff.Kind == action.AcidBurst && eff.DotInterval > 0 && now.Sub(eff.lastDotAt) >= eff.DotInterval {
			e.applyAreaDamageTick(eff, now)
		}
	}
}

// applyAreaDamageTick applies eff's damage to every NPC outside the author's
// faction and every player currently inside its radius, stamping lastDotAt
// so the next tick's interval check starts fresh.
func (e *Engine) applyAreaDamageTick(eff *activeAreaEffect, now time.Time) {
	eff.lastDotAt = now
	author, ok := e.npcs[eff.AuthorID]
	var authorFaction faction.Faction
	if ok {
		authorFaction = author.Faction
	}

	for _, n := range e.npcs {
		if n.Dead() || n.Faction == authorFaction {
			continue
		}
		if geom.Distance(eff.Center, n.Position) > eff.Radius {
			continue
		}
		hullDealt, shieldDealt := e.applyDamageToNPC(n, eff.Damage, 0)
		e.emit(action.NewEvent(action.EventAcidBurstApplied, eff.AuthorID, n.Position).
			With("target", n.ID.Hex()).
			With("hullDamage", hullDealt).
			With("shieldDamage", shieldDealt))
		e.handleNPCDeathIfNeeded(n, eff.AuthorID, now)
	}

	for _, p := range e.players {
		if geom.Distance(eff.Center, p.Position) > eff.Radius {
			continue
		}
		hullDealt, shieldDealt := e.applyDamageToPlayer(p, eff.Damage, 0)
		e.emit(action.NewEvent(action.EventAcidBurstApplied, eff.AuthorID, p.Position).
			With("target", p.ID.Hex()).
			With("targetIsPlayer", true).
			With("hullDamage", hullDealt).
			With("shieldDamage", shieldDealt))
	}
}

// ActiveSlowFactor reports the web-snare slow multiplier currently
// affecting playerID's position, or 1 (no slow) if none applies. Exposed
// for the surrounding server's own movement resolution, since this core
// never mutates a player's speed directly (§4.9).
func (e *Engine) ActiveSlowFactor(playerID bson.ObjectID) float64 {
	p, ok := e.players[playerID]
	if !ok {
		return 1
	}
	factor := 1.0
	for _, eff := range e.areaEffects {
		if eff.Kind != action.WebSnare {
			continue
		}
		if geom.Distance(eff.Center, p.Position) > eff.Radius {
			continue
		}
		remaining := 1 - eff.SlowPct
		if remaining < factor {
			factor = remaining
		}
	}
	return factor
}

// sweepDead removes every NPC whose hull reached zero this tick, after its
// death has already been handled (formation-leader replacement, linked
// damage, event emission). Running this last ensures every strategy and
// every applier function for the current tick saw a dead NPC's final
// state before it disappears from the world.
func (e *Engine) sweepDead(now time.Time) {
	for id, n := range e.npcs {
		if n.Dead() {
			e.dispatcher.Cleanup(id)
			delete(e.npcs, id)
		}
	}
}
