// Package npc models the live combat entity the AI core simulates
// (spec.md §3.1). The struct mirrors the teacher's ships.ShipStack shape —
// a core identity/kinematics/vitals block plus a handful of optional
// role-specific slot pointers — but fields, invariants, and lifecycle are
// rewritten for individually-simulated NPCs instead of HP-bucketed ship
// stacks.
package npc

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/faction"
	"github.com/nicoberrocal/skirmishCore/geom"
)

// Type is the NPC's variant tag. It determines which sub-dispatch a
// faction's strategy applies (pirate and swarm/void bosses sub-dispatch on
// Type; other factions have one baseline per faction).
type Type string

const (
	PirateScout       Type = "pirate_scout"
	PirateFighter     Type = "pirate_fighter"
	PirateCaptain     Type = "pirate_captain"
	PirateDreadnought Type = "pirate_dreadnought"

	ScavengerRaider Type = "scavenger_raider"

	SwarmDrone   Type = "swarm_drone"
	SwarmWorker  Type = "swarm_worker"
	SwarmWarrior Type = "swarm_warrior"
	SwarmQueen   Type = "swarm_queen"

	VoidFighter   Type = "void_fighter"
	VoidLeviathan Type = "void_leviathan"
	VoidRift      Type = "void_rift" // Leviathan minion, §4.10 void_spawn_minions

	RogueMiner Type = "rogue_miner"
)

// WorldObjectID identifies an orbital body (asteroid/planet) the mining
// strategy can target. Kept as a distinct string type rather than
// bson.ObjectID because the sole sync contract with the client world is a
// literal substring match ("_clm", GLOSSARY) — an opaque id, not a Mongo
// identity, per spec.md §4.7.
type WorldObjectID string

// NPC is a live combat entity owned by exactly one faction and (usually)
// exactly one home base (spec.md §3.1).
type NPC struct {
	ID      bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Type    Type          `bson:"type" json:"type"`
	Faction faction.Faction `bson:"faction" json:"faction"`

	// Kinematics
	Position geom.Vector2 `bson:"position" json:"position"`
	Rotation float64      `bson:"rotation" json:"rotation"` // radians
	Speed    float64      `bson:"speed" json:"speed"`        // units/sec

	// Vitals
	Hull     float64 `bson:"hull" json:"hull"`
	HullMax  float64 `bson:"hullMax" json:"hullMax"`
	Shield   float64 `bson:"shield" json:"shield"`
	ShieldMax float64 `bson:"shieldMax" json:"shieldMax"`

	// Combat
	AggroRange    float64       `bson:"aggroRange" json:"aggroRange"`
	WeaponRange   float64       `bson:"weaponRange" json:"weaponRange"`
	WeaponDamage  float64       `bson:"weaponDamage" json:"weaponDamage"`
	WeaponType    string        `bson:"weaponType" json:"weaponType"`
	WeaponTier    int           `bson:"weaponTier" json:"weaponTier"`
	LastFireTime  time.Time     `bson:"lastFireTime" json:"lastFireTime"`

	// Behavioral state. State strings never cross Type namespaces (§3.1).
	State        string         `bson:"state" json:"state"`
	TargetPlayer *bson.ObjectID `bson:"targetPlayer,omitempty" json:"targetPlayer,omitempty"`
	TargetNPC    *bson.ObjectID `bson:"targetNPC,omitempty" json:"targetNPC,omitempty"`
	PatrolAngle  float64        `bson:"patrolAngle" json:"patrolAngle"`
	PatrolTarget geom.Vector2   `bson:"patrolTarget" json:"patrolTarget"`
	OrbitAngle   float64        `bson:"orbitAngle" json:"orbitAngle"`
	OrbitRadius  float64        `bson:"orbitRadius" json:"orbitRadius"`

	// Role-specific slots. Exactly the ones the active Type uses are ever
	// populated; the rest stay nil.
	Scout       *ScoutSlot       `bson:"scout,omitempty" json:"scout,omitempty"`
	Fighter     *FighterSlot     `bson:"fighter,omitempty" json:"fighter,omitempty"`
	Captain     *CaptainSlot     `bson:"captain,omitempty" json:"captain,omitempty"`
	Dreadnought *DreadnoughtSlot `bson:"dreadnought,omitempty" json:"dreadnought,omitempty"`
	Miner       *MinerSlot       `bson:"miner,omitempty" json:"miner,omitempty"`
	Queen       *QueenSlot       `bson:"queen,omitempty" json:"queen,omitempty"`

	// Affinity
	HomeBaseID       *bson.ObjectID `bson:"homeBaseId,omitempty" json:"homeBaseId,omitempty"`
	HomeBasePosition geom.Vector2   `bson:"homeBasePosition" json:"homeBasePosition"`
	SpawnPoint       geom.Vector2   `bson:"spawnPoint" json:"spawnPoint"`
	FormationID      *bson.ObjectID `bson:"formationId,omitempty" json:"formationId,omitempty"`
	FormationLeader  bool           `bson:"formationLeader" json:"formationLeader"`
	IsBoss           bool           `bson:"isBoss" json:"isBoss"`

	// Swarm linked-damage and base-passenger flags (§3.1, §4.6).
	LinkedHealth   bool `bson:"linkedHealth" json:"linkedHealth"`
	AttachedToBase bool `bson:"attachedToBase" json:"attachedToBase"`

	// AssimilateTarget is the base a seeking_base drone is walking toward
	// (§4.6). Stored by id, not reference, per §9's cyclic-reference rule.
	AssimilateTarget *bson.ObjectID `bson:"assimilateTarget,omitempty" json:"assimilateTarget,omitempty"`

	// Rage-mode fallback (§4.11): set by the base-destruction handler.
	Orphaned     bool         `bson:"orphaned" json:"orphaned"`
	OrphanCenter geom.Vector2 `bson:"orphanCenter" json:"orphanCenter"`
}

// ScoutSlot is the pirate scout's in-flight intel bookkeeping (§3.1, §4.8).
type ScoutSlot struct {
	TargetID         *bson.ObjectID `bson:"targetId,omitempty" json:"targetId,omitempty"`
	TargetType       string         `bson:"targetType,omitempty" json:"targetType,omitempty"` // player|base|npc
	TargetPos        geom.Vector2   `bson:"targetPos" json:"targetPos"`
	HasResources     bool           `bson:"hasResources" json:"hasResources"`
	IsBaseTarget     bool           `bson:"isBaseTarget" json:"isBaseTarget"`
	ObservationStart time.Time      `bson:"observationStart" json:"observationStart"`
	LostTargetSince  *time.Time     `bson:"lostTargetSince,omitempty" json:"lostTargetSince,omitempty"`
}

// FighterSlot is the pirate fighter's boost-dive phase bookkeeping (§4.8).
type FighterSlot struct {
	DiveStartedAt     time.Time    `bson:"diveStartedAt" json:"diveStartedAt"`
	DiveTargetPos     geom.Vector2 `bson:"diveTargetPos" json:"diveTargetPos"`
	CooldownUntil     time.Time    `bson:"cooldownUntil" json:"cooldownUntil"`
	CooldownBackUntil time.Time    `bson:"cooldownBackUntil" json:"cooldownBackUntil"`
	CircleAngle       float64      `bson:"circleAngle" json:"circleAngle"`
	LastStealAt       time.Time    `bson:"lastStealAt" json:"lastStealAt"`
}

// CaptainSlot is the pirate captain's heal-until-threshold bookkeeping
// (§4.8).
type CaptainSlot struct {
	RememberedTargetID *bson.ObjectID `bson:"rememberedTargetId,omitempty" json:"rememberedTargetId,omitempty"`
	LastStealAt        time.Time      `bson:"lastStealAt" json:"lastStealAt"`
}

// DreadnoughtSlot is the pirate dreadnought's spawn-animation bookkeeping
// (§4.8).
type DreadnoughtSlot struct {
	SpawnStartedAt time.Time `bson:"spawnStartedAt" json:"spawnStartedAt"`
}

// MinerSlot is the rogue miner's claim/haul/rage bookkeeping (§4.7).
type MinerSlot struct {
	ClaimedTarget     WorldObjectID `bson:"claimedTarget,omitempty" json:"claimedTarget,omitempty"`
	TargetIsOrbital   bool          `bson:"targetIsOrbital" json:"targetIsOrbital"`
	MiningStartedAt   time.Time     `bson:"miningStartedAt" json:"miningStartedAt"`
	MiningTargetPos   geom.Vector2  `bson:"miningTargetPos" json:"miningTargetPos"`
	HasHaul           bool          `bson:"hasHaul" json:"hasHaul"`
	DepositStartedAt  time.Time     `bson:"depositStartedAt" json:"depositStartedAt"`
	Enraged           bool          `bson:"enraged" json:"enraged"`
	RageSourcePlayer  *bson.ObjectID `bson:"rageSourcePlayer,omitempty" json:"rageSourcePlayer,omitempty"`
	WarningStarted    map[bson.ObjectID]time.Time `bson:"-" json:"-"` // intruderId -> warning start, not persisted
	Warned            map[bson.ObjectID]bool      `bson:"-" json:"-"`
}

// QueenSlot is the Swarm Queen's phase-engine state (§4.9).
type QueenSlot struct {
	Phase               string     `bson:"phase" json:"phase"`
	PhaseStartedAt      time.Time  `bson:"phaseStartedAt" json:"phaseStartedAt"`
	PendingTransition   *PhaseTransition `bson:"pendingTransition,omitempty" json:"pendingTransition,omitempty"`
	WebSnareCooldownUntil  time.Time `bson:"webSnareCooldownUntil" json:"webSnareCooldownUntil"`
	AcidBurstCooldownUntil time.Time `bson:"acidBurstCooldownUntil" json:"acidBurstCooldownUntil"`
	ActiveWebSnare      *WebSnareState `bson:"activeWebSnare,omitempty" json:"activeWebSnare,omitempty"`
}

// PhaseTransition records a queen phase change so it can surface through
// the next returned Action (§4.9).
type PhaseTransition struct {
	From      string    `bson:"from" json:"from"`
	To        string    `bson:"to" json:"to"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// WebSnareState tracks an in-flight web-snare ability through its
// charge/travel/slow-field phases (§4.9).
type WebSnareState struct {
	Phase     string       `bson:"phase" json:"phase"` // charging|traveling
	CastAt    time.Time    `bson:"castAt" json:"castAt"`
	ImpactAt  geom.Vector2 `bson:"impactAt" json:"impactAt"`
	ArrivesAt time.Time    `bson:"arrivesAt" json:"arrivesAt"`
}

// New constructs an NPC from a blueprint, populating HomeBasePosition and
// SpawnPoint per §3.1's invariant that HomeBasePosition is always
// populated, even before any base is ever destroyed.
func New(id bson.ObjectID, t Type, f faction.Faction, bp Blueprint, pos geom.Vector2, homeBaseID *bson.ObjectID) *NPC {
	return &NPC{
		ID:               id,
		Type:             t,
		Faction:          f,
		Position:         pos,
		SpawnPoint:       pos,
		HomeBaseID:       homeBaseID,
		HomeBasePosition: pos,
		Hull:             bp.HullMax,
		HullMax:          bp.HullMax,
		Shield:           bp.ShieldMax,
		ShieldMax:        bp.ShieldMax,
		AggroRange:       bp.AggroRange,
		WeaponRange:      bp.WeaponRange,
		WeaponDamage:     bp.WeaponDamage,
		WeaponType:       bp.WeaponType,
		WeaponTier:       bp.WeaponTier,
		Speed:            bp.Speed,
		State:            bp.InitialState,
		LinkedHealth:     bp.LinkedHealth,
	}
}

// ClampHull enforces the invariant 0 <= Hull <= HullMax (§3.1).
func (n *NPC) ClampHull() {
	if n.Hull < 0 {
		n.Hull = 0
	}
	if n.Hull > n.HullMax {
		n.Hull = n.HullMax
	}
}

// ClampShield enforces the invariant 0 <= Shield <= ShieldMax (§3.1).
func (n *NPC) ClampShield() {
	if n.Shield < 0 {
		n.Shield = 0
	}
	if n.Shield > n.ShieldMax {
		n.Shield = n.ShieldMax
	}
}

// Dead reports whether the NPC's hull has reached zero.
func (n *NPC) Dead() bool {
	return n.Hull <= 0
}

// HullFrac returns hull as a fraction of hullMax, or 0 if hullMax is 0.
func (n *NPC) HullFrac() float64 {
	if n.HullMax <= 0 {
		return 0
	}
	return n.Hull / n.HullMax
}

// SetTargetPlayer enforces "exactly one of targetPlayer/targetNPC/neither"
// (§3.1) by clearing the other slot.
func (n *NPC) SetTargetPlayer(id bson.ObjectID) {
	n.TargetNPC = nil
	cp := id
	n.TargetPlayer = &cp
}

// SetTargetNPC enforces the same invariant from the NPC side.
func (n *NPC) SetTargetNPC(id bson.ObjectID) {
	n.TargetPlayer = nil
	cp := id
	n.TargetNPC = &cp
}

// ClearTarget drops both target references, e.g. on transition back to
// patrol/idle (§9: "leaving a state must clear the invalidated local
// slots").
func (n *NPC) ClearTarget() {
	n.TargetPlayer = nil
	n.TargetNPC = nil
}

// EffectiveBasePosition returns HomeBasePosition, the fallback waypoint a
// strategy must use once HomeBaseID no longer resolves to a live base
// (§3.1, §4.1 "strategies must tolerate homeBase == null").
func (n *NPC) EffectiveBasePosition() geom.Vector2 {
	return n.HomeBasePosition
}
