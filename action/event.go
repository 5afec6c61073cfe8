package action

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/geom"
)

// EventType discriminates an outbound event record (spec.md §6). Events are
// the engine's only observable output toward the surrounding game server;
// nothing else escapes a tick.
type EventType string

const (
	EventDamageApplied      EventType = "damage-applied"
	EventNPCDestroyed       EventType = "npc-destroyed"
	EventNPCUpdated         EventType = "npc-updated"
	EventFormationLeaderNew EventType = "formation-leader-changed"
	EventQueenPhaseChanged  EventType = "queen-phase-changed"
	EventBaseAssimilated    EventType = "base-assimilated"
	EventBaseDamaged        EventType = "base-damaged"
	EventBaseDestroyed      EventType = "base-destroyed"
	EventIntelBroadcast     EventType = "pirate-intel-broadcast"
	EventStealResolved      EventType = "steal-resolved"
	EventGravityWellTick    EventType = "void-gravity-well-tick"
	EventConsumeTick        EventType = "void-consume-tick"
	EventWebSnareApplied    EventType = "web-snare-applied"
	EventAcidBurstApplied   EventType = "acid-burst-applied"
	EventClaimCredited      EventType = "claim-credited"
	// EventBarnacleKingSpawn is carried over from the boss roster named in
	// §1 ("Swarm Queen, Void Leviathan, Barnacle King") but never given a
	// behavior section of its own in §4; kept as a recognized event type
	// for whichever future component spawns that boss, emitted by nothing
	// in this engine.
	EventBarnacleKingSpawn EventType = "barnacle-king-spawn"
)

// Event is one outbound record the engine appends to its per-tick queue
// after applying an Action or running a cross-cutting pass (§2 step 5, §6).
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	SubjectID bson.ObjectID
	Position  geom.Vector2
	Data      map[string]any
}

// NewEvent stamps a fresh Event with a generated id and the given type.
func NewEvent(t EventType, subject bson.ObjectID, pos geom.Vector2) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now(),
		SubjectID: subject,
		Position:  pos,
		Data:      map[string]any{},
	}
}

// With sets a single Data key and returns the event for chaining, matching
// the teacher's fluent battle-report builder style.
func (e Event) With(key string, value any) Event {
	e.Data[key] = value
	return e
}

// NewActionID generates a fresh Action identifier.
func NewActionID() string {
	return uuid.NewString()
}
