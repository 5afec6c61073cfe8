// Package engine runs the five-phase faction AI tick (spec.md §2): build
// neighborhoods, dispatch each live NPC to its strategy, apply the
// resulting actions, run the cross-cutting passes that no single strategy
// owns, and emit the tick's events. Shape is grounded on the teacher's
// game.Engine — a single struct holding the authoritative entity maps plus
// injected world-query collaborators, exposing one Tick method and a set
// of inbound command handlers the surrounding server calls between ticks.
package engine

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/base"
	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/faction"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/logging"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
	"github.com/nicoberrocal/skirmishCore/player"
	"github.com/nicoberrocal/skirmishCore/strategy"
	"github.com/nicoberrocal/skirmishCore/worldhooks"
)

var log = logging.Component("engine")

// nearbyBaseScanRadius bounds how far out buildContext looks for
// ctx.NearbyBases. Generous relative to every strategy's own radii so no
// strategy can starve for lack of candidates.
const nearbyBaseScanRadius = 3000.0

// HitResult is a synchronous readout of one resolved damage application,
// delivered to whatever SetHitObserver callback is registered before the
// tick that produced it. Grounded on the teacher's combat.CombatManager
// hit-observer idiom; unlike that collaborator this engine resolves damage
// synchronously inside Tick, never via a delayed time.AfterFunc, and holds
// no package-level singleton (spec.md §9: no hidden statics).
type HitResult struct {
	AttackerID     bson.ObjectID
	TargetID       bson.ObjectID
	TargetIsPlayer bool
	RawDamage      float64
	HullDamage     float64
	ShieldDamage   float64
	Blocked        bool
	Lethal         bool
}

// activeAreaEffect is the engine's side-table entry for an in-flight
// WebSnare or AcidBurst cast, keyed by the originating Action's id. Neither
// the npc nor the base packages model these; they are purely a
// cross-cutting concern of the tick loop (§4.9).
type activeAreaEffect struct {
	Kind       action.Kind
	AuthorID   bson.ObjectID
	Center     geom.Vector2
	Radius     float64
	SlowPct    float64
	Damage     float64
	DotInterval time.Duration
	ExpiresAt  time.Time
	lastDotAt  time.Time
}

// Engine owns the authoritative world state for one faction-AI instance:
// every live NPC and base, a snapshot of players, and the collaborators
// strategies reach through worldhooks. It is not safe for concurrent Tick
// calls; the surrounding server is expected to serialize ticks per
// instance, same as the teacher's single-threaded game.Engine.
type Engine struct {
	cfg *config.Config
	rel faction.Relations

	dispatcher *strategy.Dispatcher

	npcs    map[bson.ObjectID]*npc.NPC
	bases   map[bson.ObjectID]*base.Base
	players map[bson.ObjectID]*player.Ref

	world    worldhooks.WorldObjectLocator
	claims   worldhooks.ClaimSource
	captains worldhooks.CaptainSpawner

	areaEffects map[string]*activeAreaEffect
	events      []action.Event

	hitObserver func(HitResult)

	nextAssimilateTriggerAt time.Time
}

// New constructs an Engine wired to its surrounding game server's world
// hooks. cfg must already be validated (see config.Config.Validate).
func New(cfg *config.Config, rel faction.Relations, world worldhooks.WorldObjectLocator, claims worldhooks.ClaimSource, captains worldhooks.CaptainSpawner) *Engine {
	return &Engine{
		cfg:         cfg,
		rel:         rel,
		dispatcher:  strategy.NewDispatcher(cfg, rel),
		npcs:        make(map[bson.ObjectID]*npc.NPC),
		bases:       make(map[bson.ObjectID]*base.Base),
		players:     make(map[bson.ObjectID]*player.Ref),
		world:       world,
		claims:      claims,
		captains:    captains,
		areaEffects: make(map[string]*activeAreaEffect),
	}
}

// SetHitObserver registers fn to be called once per resolved damage
// application during the next and all subsequent ticks. Passing nil
// disables the callback. Grounded on combat.CombatManager.SetHitObserver.
func (e *Engine) SetHitObserver(fn func(HitResult)) {
	e.hitObserver = fn
}

// --- Inbound commands (called by the surrounding server between ticks) ---

// SpawnNPC registers a new live NPC, overwriting any prior entry with the
// same id.
func (e *Engine) SpawnNPC(n *npc.NPC) {
	e.npcs[n.ID] = n
}

// RemoveNPC deletes an NPC without running death handling — for server-side
// despawns that are not combat deaths (e.g. administrative cleanup).
func (e *Engine) RemoveNPC(id bson.ObjectID) {
	delete(e.npcs, id)
	e.dispatcher.Cleanup(id)
}

// UpsertBase inserts or replaces a base record.
func (e *Engine) UpsertBase(b *base.Base) {
	e.bases[b.ID] = b
}

// UpsertPlayer inserts or replaces this tick's player snapshot.
func (e *Engine) UpsertPlayer(p *player.Ref) {
	e.players[p.ID] = p
}

// RemovePlayer drops a disconnected player from the snapshot.
func (e *Engine) RemovePlayer(id bson.ObjectID) {
	delete(e.players, id)
}

// OnPlayerDamage applies player-sourced damage to npcID outside the normal
// Fire-action path (e.g. the surrounding server's own weapon resolution)
// and, for rogue miners, triggers the faction-wide rage response (§4.7,
// §4.11).
func (e *Engine) OnPlayerDamage(npcID bson.ObjectID, amount float64, attackerPlayerID bson.ObjectID) {
	n, ok := e.npcs[npcID]
	if !ok || n.Dead() {
		return
	}
	now := time.Now()
	hullDealt, shieldDealt := e.applyDamageToNPC(n, amount, 0)
	e.emit(action.NewEvent(action.EventDamageApplied, n.ID, n.Position).
		With("attacker", attackerPlayerID.Hex()).
		With("hullDamage", hullDealt).
		With("shieldDamage", shieldDealt))
	e.handleNPCDeathIfNeeded(n, attackerPlayerID, now)
	if n.Faction == faction.RogueMiner {
		e.dispatcher.Mining().TriggerRage(n, attackerPlayerID, e.liveNPCs())
	}
}

// OnBaseDestroyed marks baseID destroyed, clears its cached pirate intel,
// and orphans every surviving NPC homed on it except pirate dreadnoughts,
// which have their own spawn gate and must not fall into rage mode (§4.8,
// §4.11).
func (e *Engine) OnBaseDestroyed(baseID bson.ObjectID) {
	b, ok := e.bases[baseID]
	if !ok {
		return
	}
	b.Health = 0
	b.Destroyed = true
	e.dispatcher.Pirate().ClearIntel(baseID)

	for _, n := range e.npcs {
		if n.HomeBaseID == nil || *n.HomeBaseID != baseID {
			continue
		}
		if n.Type == npc.PirateDreadnought {
			continue
		}
		n.Orphaned = true
		n.OrphanCenter = n.Position
		n.State = "rage"
	}
}

// --- worldhooks implementations ---

type baseDirectory struct{ e *Engine }

func (d baseDirectory) GetActiveBase(id bson.ObjectID) (*base.Base, bool) {
	b, ok := d.e.bases[id]
	if !ok || b.Destroyed {
		return nil, false
	}
	return b, true
}

func (d baseDirectory) GetBasesInRange(point geom.Vector2, radius float64) []*base.Base {
	var out []*base.Base
	for _, b := range d.e.bases {
		if geom.Distance(point, b.Position) <= radius {
			out = append(out, b)
		}
	}
	return out
}

func (d baseDirectory) GetActiveBasesByFaction(f string) []*base.Base {
	var out []*base.Base
	for _, b := range d.e.bases {
		if !b.Destroyed && string(b.Faction) == f {
			out = append(out, b)
		}
	}
	return out
}

type playerDirectory struct{ e *Engine }

func (d playerDirectory) GetPlayer(id bson.ObjectID) (*player.Ref, bool) {
	p, ok := d.e.players[id]
	return p, ok
}

// --- tick loop ---

// liveNPCs returns a snapshot slice of every non-dead NPC, so strategies
// and cross-cutting passes walk a stable list. It returns them sorted by id, so dispatch order (and
// thus the order actions are emitted in within a tick) is deterministic
// across runs regardless of map-iteration order (spec.md §5).
func (e *Engine) liveNPCs() []*npc.NPC {
	out := make([]*npc.NPC, 0, len(e.npcs))
	for _, n := range e.npcs {
		if !n.Dead() {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

func (e *Engine) livePlayers() []*player.Ref {
	out := make([]*player.Ref, 0, len(e.players))
	for _, p := range e.players {
		out = append(out, p)
	}
	return out
}

// patrolRadiusFor resolves ctx.PatrolRadius per faction (spec.md §4 leaves
// the generic patrol radius unspecified outside the scavenger baseline;
// this core reuses the nearest configured radius for each faction's own
// baseline strategy rather than inventing a new tunable).
func patrolRadiusFor(n *npc.NPC, cfg *config.Config) float64 {
	switch n.Faction {
	case faction.RogueMiner:
		return cfg.Territorial.DefaultTerritoryRadius
	case faction.Pirate:
		return cfg.Pirate.ScoutPatrolRadius
	default:
		return cfg.Retreat.PatrolRadius
	}
}

// buildContext assembles the tick-local Context for n. nb is n's own
// neighborhood; NearbyHostiles is copied in separately from strategy's
// Neighborhood parameter since Context carries its own distinct field.
func (e *Engine) buildContext(n *npc.NPC, nb neighborhood.Neighborhood, now time.Time, dtMs int64, allNPCs []*npc.NPC) *strategy.Context {
	var homeBase *base.Base
	hasForeman := false
	if n.HomeBaseID != nil {
		if b, ok := e.bases[*n.HomeBaseID]; ok && !b.Destroyed {
			homeBase = b
			hasForeman = b.HasForeman
		}
	}

	ctx := &strategy.Context{
		Now:             now,
		DtMs:            dtMs,
		HomeBase:        homeBase,
		TerritoryRadius: e.cfg.Territorial.DefaultTerritoryRadius,
		PatrolRadius:    patrolRadiusFor(n, e.cfg),
		HasForeman:      hasForeman,
		AllNPCs:         allNPCs,
		NearbyBases:     baseDirectory{e}.GetBasesInRange(n.Position, nearbyBaseScanRadius),
		NearbyHostiles:  nb.NearbyHostiles,
		World:           e.world,
		Claims:          e.claims,
		Bases:           baseDirectory{e},
		Players:         playerDirectory{e},
		Captains:        e.captains,
		Rel:             e.rel,
		Cfg:             e.cfg,
	}
	return ctx
}

// Tick advances the simulation by dt and returns every event produced
// (spec.md §2's five steps, §6). The returned slice is this tick's only
// observable output; the engine retains no queued events across calls.
func (e *Engine) Tick(dt time.Duration) []action.Event {
	now := time.Now()
	dtMs := dt.Milliseconds()
	dtSec := dt.Seconds()
	e.events = nil

	allNPCs := e.liveNPCs()
	players := e.livePlayers()

	neighborhoods, err := neighborhood.BuildAll(context.Background(), allNPCs, players, e.rel)
	if err != nil {
		log.Error().Err(err).Msg("neighborhood build failed; skipping tick's dispatch phase")
		e.runCrossCutting(now)
		e.sweepDead(now)
		return e.drainEvents()
	}

	for _, n := range allNPCs {
		nb := neighborhoods[n.ID]
		ctx := e.buildContext(n, nb, now, dtMs, allNPCs)

		a, err := e.dispatcher.Dispatch(n, nb, ctx)
		if err != nil {
			log.Error().Err(err).Str("npc", n.ID.Hex()).Msg("dispatch failed; skipping this npc's tick")
			continue
		}
		if a == nil {
			continue
		}
		if verr := a.Validate(); verr != nil {
			log.Error().Err(verr).Str("npc", n.ID.Hex()).Msg("dropping invalid action")
			continue
		}
		e.apply(a, now, dtSec)
	}

	e.runCrossCutting(now)
	e.sweepDead(now)

	return e.drainEvents()
}

func (e *Engine) drainEvents() []action.Event {
	out := e.events
	e.events = nil
	return out
}

func (e *Engine) emit(ev action.Event) {
	e.events = append(e.events, ev)
}
