package neighborhood

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/faction"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/npc"
	"github.com/nicoberrocal/skirmishCore/player"
)

func newTestNPC(f faction.Faction, t npc.Type, pos geom.Vector2) *npc.NPC {
	return npc.New(bson.NewObjectID(), t, f, npc.Blueprints[t], pos, nil)
}

func newTestPlayer(pos geom.Vector2) *player.Ref {
	return &player.Ref{ID: bson.NewObjectID(), Position: pos, Hull: 100, HullMax: 100, Shield: 50, ShieldMax: 50}
}

func TestBuildExcludesSelf(t *testing.T) {
	rel := faction.NewDefaultRelations()
	self := newTestNPC(faction.RogueMiner, npc.RogueMiner, geom.Vector2{})
	other := newTestNPC(faction.RogueMiner, npc.RogueMiner, geom.Vector2{X: 10})
	all := []*npc.NPC{self, other}

	nb := Build(self, nil, all, rel)
	for _, e := range nb.NearbyAllies {
		if e.NPC.ID == self.ID {
			t.Errorf("expected neighborhood to never contain the observer itself")
		}
	}
}

func TestBuildClassifiesAlliesAndHostiles(t *testing.T) {
	rel := faction.NewDefaultRelations()
	self := newTestNPC(faction.Pirate, npc.PirateFighter, geom.Vector2{})
	self.AggroRange = 1000

	ally := newTestNPC(faction.Pirate, npc.PirateFighter, geom.Vector2{X: 100})
	hostile := newTestNPC(faction.Scavenger, npc.ScavengerRaider, geom.Vector2{X: 200})
	stranger := newTestNPC(faction.Void, npc.VoidFighter, geom.Vector2{X: 300})

	all := []*npc.NPC{self, ally, hostile, stranger}
	nb := Build(self, nil, all, rel)

	if len(nb.NearbyAllies) != 1 || nb.NearbyAllies[0].NPC.ID != ally.ID {
		t.Errorf("expected exactly the same-faction npc to be classified as ally, got %+v", nb.NearbyAllies)
	}
	if len(nb.NearbyHostiles) != 1 || nb.NearbyHostiles[0].NPC.ID != hostile.ID {
		t.Errorf("expected exactly the enemy-faction npc to be classified as hostile, got %+v", nb.NearbyHostiles)
	}
}

func TestBuildAllyRadiusIsFixedIndependentOfAggroRange(t *testing.T) {
	rel := faction.NewDefaultRelations()
	self := newTestNPC(faction.Swarm, npc.SwarmDrone, geom.Vector2{})
	self.AggroRange = 10000 // large aggro range must not extend the ally radius

	farAlly := newTestNPC(faction.Swarm, npc.SwarmDrone, geom.Vector2{X: AllyRadius + 1})
	all := []*npc.NPC{self, farAlly}

	nb := Build(self, nil, all, rel)
	if len(nb.NearbyAllies) != 0 {
		t.Errorf("expected ally outside the fixed AllyRadius to be excluded regardless of AggroRange, got %+v", nb.NearbyAllies)
	}
}

func TestBuildPlayersBeyondAggroRangeExcluded(t *testing.T) {
	rel := faction.NewDefaultRelations()
	self := newTestNPC(faction.Pirate, npc.PirateFighter, geom.Vector2{})
	self.AggroRange = 100

	near := newTestPlayer(geom.Vector2{X: 50})
	far := newTestPlayer(geom.Vector2{X: 500})

	nb := Build(self, []*player.Ref{near, far}, []*npc.NPC{self}, rel)
	if len(nb.NearbyPlayers) != 1 || nb.NearbyPlayers[0].Player.ID != near.ID {
		t.Errorf("expected only the in-range player, got %+v", nb.NearbyPlayers)
	}
}

func TestBuildSortsByDistanceAscending(t *testing.T) {
	rel := faction.NewDefaultRelations()
	self := newTestNPC(faction.Pirate, npc.PirateFighter, geom.Vector2{})
	self.AggroRange = 1000

	far := newTestPlayer(geom.Vector2{X: 900})
	near := newTestPlayer(geom.Vector2{X: 100})
	mid := newTestPlayer(geom.Vector2{X: 500})

	nb := Build(self, []*player.Ref{far, near, mid}, []*npc.NPC{self}, rel)
	if len(nb.NearbyPlayers) != 3 {
		t.Fatalf("expected 3 nearby players, got %d", len(nb.NearbyPlayers))
	}
	for i := 1; i < len(nb.NearbyPlayers); i++ {
		if nb.NearbyPlayers[i-1].Distance > nb.NearbyPlayers[i].Distance {
			t.Errorf("expected NearbyPlayers sorted ascending by distance, got %+v", nb.NearbyPlayers)
		}
	}
}

func TestBuildAllMatchesPerNPCBuild(t *testing.T) {
	rel := faction.NewDefaultRelations()
	a := newTestNPC(faction.Pirate, npc.PirateFighter, geom.Vector2{})
	a.AggroRange = 1000
	b := newTestNPC(faction.Scavenger, npc.ScavengerRaider, geom.Vector2{X: 50})
	b.AggroRange = 1000
	all := []*npc.NPC{a, b}

	got, err := BuildAll(context.Background(), all, nil, rel)
	if err != nil {
		t.Fatalf("unexpected error from BuildAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected one neighborhood per npc, got %d", len(got))
	}

	wantA := Build(a, nil, all, rel)
	if len(got[a.ID].NearbyHostiles) != len(wantA.NearbyHostiles) {
		t.Errorf("BuildAll result for a diverged from Build: got %+v, want %+v", got[a.ID], wantA)
	}
}
