// Package worldhooks declares the external-collaborator interfaces spec.md
// §6 names: opaque queries the AI core makes into subsystems it does not
// own (map generation, orbital kinematics, base/player directories,
// captain spawning). Grounded on the teacher's diplomacy.Provider — a
// small synchronous interface injected into the consumer rather than a
// concrete dependency — which keeps the core's "strategies do not block"
// rule (§5) enforceable: every hook here must be answered from in-memory
// state, never a network or disk call.
package worldhooks

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/base"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/npc"
	"github.com/nicoberrocal/skirmishCore/player"
)

// WorldObjectLocator resolves an orbital object's current position. Used
// by the mining strategy to re-look-up orbital (planet) targets every
// tick, per §4.7 ("Orbital targets are re-looked-up through worldObjectAt
// each tick; static asteroids are not").
type WorldObjectLocator interface {
	WorldObjectAt(id npc.WorldObjectID) (geom.Vector2, bool)
}

// ClaimCandidate is one mining-claim asteroid or planet within search
// range of a rogue miner's home base (§4.7 findMiningTarget).
type ClaimCandidate struct {
	ID       npc.WorldObjectID
	Position geom.Vector2
	Orbital  bool // planet (re-looked-up every tick) vs static asteroid
}

// ClaimSource enumerates mining-claim candidates near a point. Map
// generation itself is out of scope (§1); this core only ever asks
// "what's claimable within radius of here."
type ClaimSource interface {
	ClaimsNear(point geom.Vector2, radius float64) []ClaimCandidate
}

// BaseDirectory answers the base-lookup queries §6 names:
// getActiveBase/getBasesInRange/getActiveBasesByFaction.
type BaseDirectory interface {
	GetActiveBase(id bson.ObjectID) (*base.Base, bool)
	GetBasesInRange(point geom.Vector2, radius float64) []*base.Base
	GetActiveBasesByFaction(f string) []*base.Base
}

// PlayerDirectory answers the player-lookup query the AI core needs to
// resolve TargetPlayer references into current positions/hull each tick.
type PlayerDirectory interface {
	GetPlayer(id bson.ObjectID) (*player.Ref, bool)
}

// CaptainSpawner is spawnCaptainFromIntel(baseId, intel) -> NPC|null
// (§4.8): the scout's arrival triggers a captain spawn, but spawning itself
// is owned by the surrounding game server, not this core.
type CaptainSpawner interface {
	SpawnCaptainFromIntel(baseID bson.ObjectID, intel Intel) (*npc.NPC, bool)
}

// Intel is the scout-reported record a captain spawn decision consumes
// (§4.8, §3.4 intelReports).
type Intel struct {
	TargetID     bson.ObjectID
	TargetType   string
	TargetPos    geom.Vector2
	IsBaseTarget bool
	HasResources bool
}
