// Package action defines the tagged-union Action a Strategy returns each
// tick (spec.md §4.1, §4.12) and the outbound event records the engine
// emits after applying it (§6). Shape is adapted from the teacher's
// ships/battle_report_builder.go idiom of accreting a structured report
// from a sequence of combat sub-events — here collapsed to "one
// discriminated Action variant per NPC per tick," which is what §2 step 3
// specifies.
package action

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/npc"
)

// Kind discriminates the Action variant. Every row of spec.md §4.12's table
// has a Kind here, plus "warning" from §4.4 (the territorial strategy's
// periodic non-damaging warning emission).
type Kind string

const (
	Fire                     Kind = "fire"
	RogueMinerStartMining    Kind = "rogueMiner:startMining"
	RogueMinerMiningProgress Kind = "rogueMiner:miningProgress"
	RogueMinerMiningComplete Kind = "rogueMiner:miningComplete"
	RogueMinerStartDeposit   Kind = "rogueMiner:startDeposit"
	RogueMinerDeposited      Kind = "rogueMiner:deposited"
	RogueMinerRage           Kind = "rogueMiner:rage"
	RogueMinerRageClear      Kind = "rogueMiner:rageClear"
	PirateIntelBroadcast     Kind = "pirate:intelBroadcast"
	PirateBoostDive          Kind = "pirate:boostDive"
	PirateSteal              Kind = "pirate:steal"
	PirateDreadnoughtEnraged Kind = "pirate:dreadnoughtEnraged"
	NPCInvulnerable          Kind = "npc:invulnerable"
	AssimilateKind           Kind = "assimilate"
	VoidSpawnMinions         Kind = "void_spawn_minions"
	VoidGravityWell          Kind = "void_gravity_well"
	VoidGravityWellTick      Kind = "void_gravity_well_tick"
	VoidConsume              Kind = "void_consume"
	WebSnare                 Kind = "web_snare"
	AcidBurst                Kind = "acid_burst"
	Warning                  Kind = "warning"
)

// Action is the tagged union a Strategy.Update returns. Exactly one of the
// payload pointers below is populated, matching Kind; PhaseTransition is
// an optional extra that may ride along with any Kind. A variant missing
// its required payload is invalid and must be dropped by the applier, not
// treated as fatal (§4.1, §7-c).
type Action struct {
	ID        string
	AuthorID  bson.ObjectID
	Kind      Kind
	Timestamp time.Time

	Fire            *FireParams
	RogueMiner      *RogueMinerParams
	Intel           *IntelBroadcastParams
	BoostDive       *BoostDiveParams
	Steal           *StealParams
	Assimilate      *AssimilateParams
	SpawnMinions    *SpawnMinionsParams
	GravityWell     *GravityWellParams
	Consume         *ConsumeParams
	AreaEffect      *AreaEffectParams
	Warning_        *WarningParams
	PhaseTransition *npc.PhaseTransition
}

// Validate reports whether the Action carries the payload its Kind
// requires. The applier calls this before acting on an Action; a non-nil
// error means "log and drop," never panic (§4.1, §7-c).
func (a *Action) Validate() error {
	if a == nil {
		return fmt.Errorf("nil action")
	}
	missing := func(have bool) error {
		if !have {
			return fmt.Errorf("action kind %q missing its required payload", a.Kind)
		}
		return nil
	}
	switch a.Kind {
	case Fire:
		return missing(a.Fire != nil)
	case RogueMinerStartMining, RogueMinerMiningProgress, RogueMinerMiningComplete,
		RogueMinerStartDeposit, RogueMinerDeposited, RogueMinerRage, RogueMinerRageClear:
		return missing(a.RogueMiner != nil)
	case PirateIntelBroadcast:
		return missing(a.Intel != nil)
	case PirateBoostDive:
		return missing(a.BoostDive != nil)
	case PirateSteal:
		return missing(a.Steal != nil)
	case PirateDreadnoughtEnraged:
		return nil // broadcast-only, no payload required
	case NPCInvulnerable:
		return nil
	case AssimilateKind:
		return missing(a.Assimilate != nil)
	case VoidSpawnMinions:
		return missing(a.SpawnMinions != nil)
	case VoidGravityWell, VoidGravityWellTick:
		return missing(a.GravityWell != nil)
	case VoidConsume:
		return missing(a.Consume != nil)
	case WebSnare, AcidBurst:
		return missing(a.AreaEffect != nil)
	case Warning:
		return missing(a.Warning_ != nil)
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

// FireParams backs Kind == Fire (§4.12, §4.8 shield-piercing contract).
type FireParams struct {
	Target         bson.ObjectID
	TargetIsPlayer bool
	WeaponType     string
	WeaponTier     int
	BaseDamage     float64
	ShieldPiercing float64 // fraction 0..1 bypassing shield straight to hull
	Enraged        bool    // set by enraged rogue miners (§4.7) and enraged dreadnoughts; informational, the applier does not read it
	RageMultiplier float64 // orphan rage-mode multiplier (§4.11), already folded into BaseDamage; 0 if not orphaned
	Synchronized   bool    // void formation volley fire (§4.5, §8 property 7)
	Blockable      bool    // not read by the applier, which applies the dreadnought block chance whenever the target is a pirate dreadnought (§4.8)
}

// RogueMinerParams backs the rogueMiner:* broadcast kinds (§4.12).
type RogueMinerParams struct {
	AsteroidID   npc.WorldObjectID
	BaseID       bson.ObjectID
	CreditAmount int // deposited kind only
	RageSourceID bson.ObjectID
}

// IntelBroadcastParams backs Kind == PirateIntelBroadcast (§4.8, §4.12).
type IntelBroadcastParams struct {
	BaseID          bson.ObjectID
	TargetID        bson.ObjectID
	TargetType      string
	TargetPos       geom.Vector2
	IsBaseTarget    bool
	HasResources    bool
	BroadcastRadius float64
}

// BoostDiveParams backs Kind == PirateBoostDive (§4.8, §4.12).
type BoostDiveParams struct {
	Target    bson.ObjectID
	TrailFrom geom.Vector2
	TrailTo   geom.Vector2
}

// StealParams backs Kind == PirateSteal (§4.8, §4.12).
type StealParams struct {
	TargetType    string // scrap_pile|carried_wreckage|claim_credits
	StolenAmount  int
	StolenItems   []string
	TargetBaseID  *bson.ObjectID
	TargetNPCID   *bson.ObjectID
}

// AssimilateParams backs Kind == AssimilateKind (§4.6, §4.12).
type AssimilateParams struct {
	DroneID bson.ObjectID
	BaseID  bson.ObjectID
}

// SpawnMinionsParams backs Kind == VoidSpawnMinions (§4.10, §4.12).
type SpawnMinionsParams struct {
	RiftCount      int
	Trigger        string // "threshold" | "continuous"
	HealthThreshold *float64
}

// GravityWellParams backs Kind == VoidGravityWell / VoidGravityWellTick
// (§4.10, §4.12).
type GravityWellParams struct {
	Phase           string // warning|active|end
	Center          geom.Vector2
	Radius          float64
	PullStrength    float64
	DamageEdge      float64
	DamageCenter    float64
	AffectedPlayers []GravityWellAffected
}

// GravityWellAffected is one player's per-tick pull/damage readout inside a
// void_gravity_well_tick event (§4.10).
type GravityWellAffected struct {
	PlayerID bson.ObjectID
	Distance float64
}

// ConsumeParams backs Kind == VoidConsume (§4.10, §4.12).
type ConsumeParams struct {
	Phase        string // tendril|drag|dissolve
	TargetNPCID  bson.ObjectID
	HealAmount   float64
	RemoveTarget bool
}

// AreaEffectParams backs Kind == WebSnare / AcidBurst (§4.9, §4.12).
type AreaEffectParams struct {
	Center       geom.Vector2
	Radius       float64
	DurationMs   int64
	SlowPct      float64 // web snare
	Damage       float64 // acid burst initial + DoT tick amount
	DotIntervalMs int64
	DotDurationMs int64
}

// WarningParams backs Kind == Warning (§4.4).
type WarningParams struct {
	IntruderID bson.ObjectID
}
