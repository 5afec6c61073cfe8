package strategy

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/faction"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
)

func newNPC(f faction.Faction, t npc.Type) *npc.NPC {
	return npc.New(bson.NewObjectID(), t, f, npc.Blueprints[t], geom.Vector2{}, nil)
}

func newContext(cfg *config.Config) *Context {
	return &Context{
		AllNPCs: nil,
		Cfg:     cfg,
		Rel:     faction.NewDefaultRelations(),
	}
}

func TestDispatchUnrecognizedFactionErrors(t *testing.T) {
	cfg := config.Default()
	d := NewDispatcher(cfg, faction.NewDefaultRelations())
	n := newNPC(faction.Faction("unknown"), npc.PirateFighter)

	_, err := d.Dispatch(n, neighborhood.Neighborhood{}, newContext(cfg))
	if err == nil {
		t.Errorf("expected an error dispatching an npc of an unrecognized faction")
	}
}

func TestDispatchScavengerWithNoHostilesIdlesToPatrol(t *testing.T) {
	cfg := config.Default()
	d := NewDispatcher(cfg, faction.NewDefaultRelations())
	n := newNPC(faction.Scavenger, npc.ScavengerRaider)

	a, err := d.Dispatch(n, neighborhood.Neighborhood{}, newContext(cfg))
	if err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if a != nil {
		t.Errorf("expected no action while idling with no hostiles nearby, got %+v", a)
	}
	if n.State != "patrol" {
		t.Errorf("expected npc state to settle to patrol, got %q", n.State)
	}
}

func TestDispatchOrphanedRagingNPCGoesToRageStrategyRegardlessOfFaction(t *testing.T) {
	cfg := config.Default()
	d := NewDispatcher(cfg, faction.NewDefaultRelations())
	n := newNPC(faction.RogueMiner, npc.RogueMiner)
	n.Orphaned = true
	n.State = "rage"

	// Should not error or panic even though rogue miners normally route to mining.
	if _, err := d.Dispatch(n, neighborhood.Neighborhood{}, newContext(cfg)); err != nil {
		t.Errorf("unexpected error dispatching an orphaned raging npc: %v", err)
	}
}

func TestDispatcherCleanupIsIdempotentForUnknownID(t *testing.T) {
	cfg := config.Default()
	d := NewDispatcher(cfg, faction.NewDefaultRelations())
	// Must not panic even though this id was never dispatched.
	d.Cleanup(bson.NewObjectID())
}

func TestLinkedDamagePassOnlyPropagatesToOtherLinkedSurvivorsInRadius(t *testing.T) {
	cfg := config.Default().Swarm

	originator := newNPC(faction.Swarm, npc.SwarmWorker)
	originator.LinkedHealth = true

	linkedNear := newNPC(faction.Swarm, npc.SwarmWorker)
	linkedNear.LinkedHealth = true
	linkedNear.Position = geom.Vector2{X: cfg.LinkedDamageRadius / 2}

	linkedFar := newNPC(faction.Swarm, npc.SwarmWorker)
	linkedFar.LinkedHealth = true
	linkedFar.Position = geom.Vector2{X: cfg.LinkedDamageRadius * 10}

	notLinked := newNPC(faction.Swarm, npc.SwarmWorker)
	notLinked.Position = geom.Vector2{X: cfg.LinkedDamageRadius / 2}

	all := []*npc.NPC{originator, linkedNear, linkedFar, notLinked}
	shares := LinkedDamagePass(originator, 100, all, cfg)

	if _, ok := shares[originator.ID]; ok {
		t.Errorf("expected the originator itself to never receive a linked-damage share")
	}
	if _, ok := shares[linkedFar.ID]; ok {
		t.Errorf("expected a linked npc outside the radius to receive no share")
	}
	if _, ok := shares[notLinked.ID]; ok {
		t.Errorf("expected a non-linked npc in radius to receive no share")
	}
	got, ok := shares[linkedNear.ID]
	if !ok {
		t.Fatalf("expected the in-radius linked npc to receive a share")
	}
	want := 100 * cfg.LinkedDamagePct
	if got != want {
		t.Errorf("expected linked damage share %v, got %v", want, got)
	}
}

func TestLinkedDamagePassReturnsEmptyForNonLinkedOriginator(t *testing.T) {
	cfg := config.Default().Swarm
	originator := newNPC(faction.Swarm, npc.SwarmWorker)
	other := newNPC(faction.Swarm, npc.SwarmWorker)
	other.LinkedHealth = true

	shares := LinkedDamagePass(originator, 100, []*npc.NPC{originator, other}, cfg)
	if len(shares) != 0 {
		t.Errorf("expected no shares when the originator itself is not linked, got %+v", shares)
	}
}
