// Package strategy holds the per-faction AI behaviors and the dispatcher
// that routes each NPC to the one that owns it (spec.md §4.1, §9). The
// split mirrors the teacher's per-concern file layout under ships/: one
// file per strategy, a shared Strategy interface, and a Dispatcher that
// replaces the duck-typed lookup the source used with an explicit
// tagged-variant switch.
package strategy

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/base"
	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/faction"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
	"github.com/nicoberrocal/skirmishCore/worldhooks"
)

// Context is the tick-local set of lookups a Strategy update needs beyond
// the NPC and its neighborhood (§4.1: "context is a struct of tick-local
// lookups"). It is rebuilt fresh every tick by the engine; nothing here is
// cached strategy-side.
type Context struct {
	Now  time.Time
	DtMs int64

	HomeBase        *base.Base // nil once the home base is destroyed (§4.1: "must tolerate homeBase == null")
	TerritoryRadius float64
	PatrolRadius    float64
	HasForeman      bool

	AllNPCs        []*npc.NPC
	NearbyBases    []*base.Base
	NearbyHostiles []neighborhood.NPCEntry

	World    worldhooks.WorldObjectLocator
	Claims   worldhooks.ClaimSource
	Bases    worldhooks.BaseDirectory
	Players  worldhooks.PlayerDirectory
	Captains worldhooks.CaptainSpawner

	Rel faction.Relations
	Cfg *config.Config
}

// Strategy is the contract every faction behavior implements (§4.1).
// Update returning (nil, nil) is a valid no-op tick. Update must never
// return an error for anything an engine could reasonably hit at runtime —
// errors are reserved for programmer mistakes (§7: "strategies must never
// throw out of update"); the engine logs any error and skips that NPC for
// the tick, the same as a nil action.
type Strategy interface {
	Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error)
	Cleanup(id bson.ObjectID)
}

// Dispatcher maps an NPC's faction (and, for pirates and bosses, its type)
// to the Strategy that owns it (§4.1). It holds no NPC state of its own;
// every strategy instance owns its own long-lived side-tables (§3.4, §9).
type Dispatcher struct {
	cfg *config.Config
	rel faction.Relations

	flanking    *FlankingStrategy
	retreat     *RetreatStrategy
	territorial *TerritorialStrategy
	formation   *FormationStrategy
	swarm       *SwarmStrategy
	mining      *MiningStrategy
	pirate      *PirateStrategy
	queen       *QueenStrategy
	leviathan   *LeviathanStrategy
	rage        *RageStrategy
}

// NewDispatcher wires one instance of every strategy, sharing the same
// config and faction relations provider.
func NewDispatcher(cfg *config.Config, rel faction.Relations) *Dispatcher {
	return &Dispatcher{
		cfg:         cfg,
		rel:         rel,
		flanking:    NewFlankingStrategy(cfg),
		retreat:     NewRetreatStrategy(cfg),
		territorial: NewTerritorialStrategy(cfg),
		formation:   NewFormationStrategy(cfg),
		swarm:       NewSwarmStrategy(cfg),
		mining:      NewMiningStrategy(cfg),
		pirate:      NewPirateStrategy(cfg),
		queen:       NewQueenStrategy(cfg),
		leviathan:   NewLeviathanStrategy(cfg),
		rage:        NewRageStrategy(cfg),
	}
}

// Dispatch routes one NPC's update for this tick (§4.1 dispatch rules). A
// panic inside a strategy is recovered and returned as an error naming the
// NPC, so it never escapes the tick.
func (d *Dispatcher) Dispatch(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (a *action.Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("dispatch: recovered panic for npc %s (faction %q): %v", n.ID.Hex(), n.Faction, r)
		}
	}()

	if n.Orphaned && n.State == "rage" {
		return d.rage.Update(n, nb, ctx)
	}

	switch n.Faction {
	case faction.Pirate:
		return d.pirate.Update(n, nb, ctx)

	case faction.Swarm:
		if n.Type == npc.SwarmQueen {
			return d.queen.Update(n, nb, ctx)
		}
		if queen := d.liveQueen(ctx.AllNPCs, n); queen != nil && geom.Distance(n.Position, queen.Position) <= d.cfg.Dispatch.QueenGuardRange {
			return d.swarm.UpdateGuard(n, nb, ctx, queen)
		}
		return d.swarm.Update(n, nb, ctx)

	case faction.Void:
		if n.Type == npc.VoidLeviathan {
			return d.leviathan.Update(n, nb, ctx)
		}
		return d.formation.Update(n, nb, ctx)

	case faction.Scavenger:
		return d.retreat.Update(n, nb, ctx)

	case faction.RogueMiner:
		return d.mining.Update(n, nb, ctx)

	default:
		return nil, fmt.Errorf("dispatch: unrecognized faction %q for npc %s", n.Faction, n.ID.Hex())
	}
}

// Cleanup fans a dead NPC's id out to every strategy's cleanup hook (§3.4,
// §8 property 3: "x is absent from every map in S after the death tick
// completes").
func (d *Dispatcher) Cleanup(id bson.ObjectID) {
	d.flanking.Cleanup(id)
	d.retreat.Cleanup(id)
	d.territorial.Cleanup(id)
	d.formation.Cleanup(id)
	d.swarm.Cleanup(id)
	d.mining.Cleanup(id)
	d.pirate.Cleanup(id)
	d.queen.Cleanup(id)
	d.leviathan.Cleanup(id)
	d.rage.Cleanup(id)
}

// Mining exposes the mining strategy instance so the engine's cross-cutting
// passes can call TriggerRage without the dispatcher mediating (§5's
// "shared-resource policy": other code mutates strategy-local maps only
// through strategy methods, never directly).
func (d *Dispatcher) Mining() *MiningStrategy { return d.mining }

// Formation exposes the formation strategy instance so the engine can call
// HandleLeaderDeath when a formation leader dies.
func (d *Dispatcher) Formation() *FormationStrategy { return d.formation }

// Pirate exposes the pirate strategy instance so the engine can prune
// expired intel and clear a destroyed base's cached report.
func (d *Dispatcher) Pirate() *PirateStrategy { return d.pirate }

// Swarm exposes the swarm strategy instance so the engine's assimilation
// trigger can call StartAssimilation (linked damage is the package-level
// LinkedDamagePass, not a method on it).
func (d *Dispatcher) Swarm() *SwarmStrategy { return d.swarm }

// Leviathan exposes the leviathan strategy instance so the engine can
// register minions it actually spawned from a VoidSpawnMinions action.
func (d *Dispatcher) Leviathan() *LeviathanStrategy { return d.leviathan }

// liveQueen finds a living Swarm Queen of the same faction as n, or nil.
func (d *Dispatcher) liveQueen(allNPCs []*npc.NPC, n *npc.NPC) *npc.NPC {
	for _, other := range allNPCs {
		if other.Type == npc.SwarmQueen && other.Faction == n.Faction && !other.Dead() {
			return other
		}
	}
	return nil
}

