package engine

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/base"
	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/faction"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/npc"
	"github.com/nicoberrocal/skirmishCore/player"
	"github.com/nicoberrocal/skirmishCore/worldhooks"
)

type stubWorld struct{}

func (stubWorld) WorldObjectAt(id npc.WorldObjectID) (geom.Vector2, bool) { return geom.Vector2{}, false }

type stubClaims struct{}

func (stubClaims) ClaimsNear(point geom.Vector2, radius float64) []worldhooks.ClaimCandidate {
	return nil
}

type stubCaptains struct{}

func (stubCaptains) SpawnCaptainFromIntel(baseID bson.ObjectID, intel worldhooks.Intel) (*npc.NPC, bool) {
	return nil, false
}

func newTestEngine() *Engine {
	cfg := config.Default()
	return New(cfg, faction.NewDefaultRelations(), stubWorld{}, stubClaims{}, stubCaptains{})
}

func newEngineNPC(f faction.Faction, t npc.Type, pos geom.Vector2) *npc.NPC {
	return npc.New(bson.NewObjectID(), t, f, npc.Blueprints[t], pos, nil)
}

func TestTickWithNoEntitiesProducesNoEvents(t *testing.T) {
	e := newTestEngine()
	events := e.Tick(100 * time.Millisecond)
	if len(events) != 0 {
		t.Errorf("expected an empty world to produce no events, got %+v", events)
	}
}

func TestOnPlayerDamageAppliesDamageAndEmitsEvent(t *testing.T) {
	e := newTestEngine()
	n := newEngineNPC(faction.Scavenger, npc.ScavengerRaider, geom.Vector2{})
	startHull := n.Hull
	e.SpawnNPC(n)

	attacker := bson.NewObjectID()
	e.OnPlayerDamage(n.ID, 10, attacker)

	if n.Hull >= startHull {
		t.Errorf("expected npc hull to drop after damage, before=%v after=%v", startHull, n.Hull)
	}

	found := false
	for _, ev := range e.drainEvents() {
		if ev.Type == action.EventDamageApplied && ev.SubjectID == n.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a damage-applied event for the damaged npc")
	}
}

func TestOnPlayerDamageIgnoresUnknownNPC(t *testing.T) {
	e := newTestEngine()
	// Must not panic when the target id was never spawned.
	e.OnPlayerDamage(bson.NewObjectID(), 10, bson.NewObjectID())
}

func TestOnPlayerDamageTriggersRageForRogueMiner(t *testing.T) {
	e := newTestEngine()
	n := newEngineNPC(faction.RogueMiner, npc.RogueMiner, geom.Vector2{})
	e.SpawnNPC(n)

	e.OnPlayerDamage(n.ID, 1, bson.NewObjectID())

	if n.Miner == nil || !n.Miner.Enraged || n.State != "enraged" {
		t.Errorf("expected rogue miner damage to trigger enraged state, got miner=%+v state=%q", n.Miner, n.State)
	}
}

func TestOnBaseDestroyedOrphansHomedNPCsExceptDreadnoughts(t *testing.T) {
	e := newTestEngine()
	b := &base.Base{ID: bson.NewObjectID(), Faction: faction.Pirate, Type: base.PirateOutpost, Health: 100, MaxHealth: 100}
	e.UpsertBase(b)

	homed := newEngineNPC(faction.Pirate, npc.PirateFighter, geom.Vector2{})
	homed.HomeBaseID = &b.ID
	e.SpawnNPC(homed)

	dread := newEngineNPC(faction.Pirate, npc.PirateDreadnought, geom.Vector2{})
	dread.HomeBaseID = &b.ID
	e.SpawnNPC(dread)

	e.OnBaseDestroyed(b.ID)

	if !b.Destroyed {
		t.Errorf("expected base to be marked destroyed")
	}
	if !homed.Orphaned || homed.State != "rage" {
		t.Errorf("expected homed non-dreadnought npc to be orphaned into rage, got orphaned=%v state=%q", homed.Orphaned, homed.State)
	}
	if dread.Orphaned {
		t.Errorf("expected pirate dreadnought to never be orphaned by base destruction")
	}
}

func TestSpawnAndRemoveNPCDropsItFromMap(t *testing.T) {
	e := newTestEngine()
	n := newEngineNPC(faction.Scavenger, npc.ScavengerRaider, geom.Vector2{})
	e.SpawnNPC(n)
	if _, ok := e.npcs[n.ID]; !ok {
		t.Fatalf("expected spawned npc to be present")
	}
	e.RemoveNPC(n.ID)
	if _, ok := e.npcs[n.ID]; ok {
		t.Errorf("expected removed npc to be gone from the engine's map")
	}
}

func TestBaseDirectoryGetActiveBaseExcludesDestroyed(t *testing.T) {
	e := newTestEngine()
	live := &base.Base{ID: bson.NewObjectID(), Faction: faction.Pirate, Type: base.PirateOutpost}
	dead := &base.Base{ID: bson.NewObjectID(), Faction: faction.Pirate, Type: base.PirateOutpost, Destroyed: true}
	e.UpsertBase(live)
	e.UpsertBase(dead)

	dir := baseDirectory{e}
	if _, ok := dir.GetActiveBase(live.ID); !ok {
		t.Errorf("expected live base to be active")
	}
	if _, ok := dir.GetActiveBase(dead.ID); ok {
		t.Errorf("expected destroyed base to be excluded from GetActiveBase")
	}
}

func TestBaseDirectoryGetBasesInRangeIncludesDestroyed(t *testing.T) {
	e := newTestEngine()
	dead := &base.Base{ID: bson.NewObjectID(), Faction: faction.Pirate, Type: base.PirateOutpost, Destroyed: true, Position: geom.Vector2{}}
	e.UpsertBase(dead)

	dir := baseDirectory{e}
	got := dir.GetBasesInRange(geom.Vector2{}, 100)
	if len(got) != 1 {
		t.Errorf("expected GetBasesInRange to include destroyed bases (caller checks Destroyed itself), got %d", len(got))
	}
}

func TestPlayerDirectoryRoundTrip(t *testing.T) {
	e := newTestEngine()
	p := &player.Ref{ID: bson.NewObjectID(), Hull: 100, HullMax: 100}
	e.UpsertPlayer(p)

	dir := playerDirectory{e}
	got, ok := dir.GetPlayer(p.ID)
	if !ok || got.ID != p.ID {
		t.Errorf("expected to find upserted player, ok=%v got=%+v", ok, got)
	}

	e.RemovePlayer(p.ID)
	if _, ok := dir.GetPlayer(p.ID); ok {
		t.Errorf("expected removed player to be gone")
	}
}

func TestApplyDamageToNPCClampsAndSplitsShieldThenHull(t *testing.T) {
	e := newTestEngine()
	n := newEngineNPC(faction.Scavenger, npc.ScavengerRaider, geom.Vector2{})
	n.Hull, n.HullMax = 100, 100
	n.Shield, n.ShieldMax = 20, 20

	hullDealt, shieldDealt := e.applyDamageToNPC(n, 30, 0)

	if shieldDealt != 20 {
		t.Errorf("expected shield to absorb 20 damage first, got %v", shieldDealt)
	}
	if hullDealt != 10 {
		t.Errorf("expected remaining 10 damage to spill into hull, got %v", hullDealt)
	}
	if n.Shield != 0 {
		t.Errorf("expected shield to clamp to 0, got %v", n.Shield)
	}
	if n.Hull != 90 {
		t.Errorf("expected hull at 90 after 10 damage, got %v", n.Hull)
	}
}

func TestApplyDamageToNPCShieldPiercingBypassesShield(t *testing.T) {
	e := newTestEngine()
	n := newEngineNPC(faction.Scavenger, npc.ScavengerRaider, geom.Vector2{})
	n.Hull, n.HullMax = 100, 100
	n.Shield, n.ShieldMax = 50, 50

	hullDealt, shieldDealt := e.applyDamageToNPC(n, 10, 1.0)

	if shieldDealt != 0 {
		t.Errorf("expected fully shield-piercing damage to skip shield entirely, got %v", shieldDealt)
	}
	if hullDealt != 10 {
		t.Errorf("expected all 10 damage to land on hull, got %v", hullDealt)
	}
	if n.Shield != 50 {
		t.Errorf("expected shield untouched by fully piercing damage, got %v", n.Shield)
	}
}

func TestApplyDamageToPlayerClampsHullAtZero(t *testing.T) {
	e := newTestEngine()
	p := &player.Ref{Hull: 5, HullMax: 100, Shield: 0, ShieldMax: 50}

	e.applyDamageToPlayer(p, 50, 0)

	if p.Hull != 0 {
		t.Errorf("expected player hull to clamp at 0, got %v", p.Hull)
	}
}

func TestHandleNPCDeathIfNeededIsIdempotent(t *testing.T) {
	e := newTestEngine()
	n := newEngineNPC(faction.Scavenger, npc.ScavengerRaider, geom.Vector2{})
	n.Hull = 0

	e.handleNPCDeathIfNeeded(n, bson.NewObjectID(), time.Now())
	first := len(e.events)
	e.handleNPCDeathIfNeeded(n, bson.NewObjectID(), time.Now())
	second := len(e.events)

	if first == 0 {
		t.Fatalf("expected a destruction event on first call")
	}
	if second != first {
		t.Errorf("expected no additional event from a second death-handling call on the same npc, first=%d second=%d", first, second)
	}
}

func TestHealNPCFillsHullBeforeSpillingIntoShield(t *testing.T) {
	e := newTestEngine()
	n := newEngineNPC(faction.Void, npc.VoidFighter, geom.Vector2{})
	n.Hull, n.HullMax = 90, 100
	n.Shield, n.ShieldMax = 0, 50

	e.healNPC(n, 30)

	if n.Hull != 100 {
		t.Errorf("expected hull to cap at max before spilling, got %v", n.Hull)
	}
	if n.Shield != 20 {
		t.Errorf("expected the remaining 20 healing to spill into shield, got %v", n.Shield)
	}
}
