// Package base models the persistent faction structure NPCs defend,
// resupply at, and (for swarm drones) assimilate (spec.md §3.2). Shape is
// grounded on the teacher's orbitables.System consistency-invariant
// documentation style and buildings.BaseBuilding's flat no-method data
// structs; the teacher's planetary-economy catalogs (energy production,
// growth rates) have no home here since planetary economy is out of scope
// (see DESIGN.md).
package base

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/faction"
	"github.com/nicoberrocal/skirmishCore/geom"
)

// Type is the base's variant tag.
type Type string

const (
	PirateOutpost    Type = "pirate_outpost"
	ScavengerYard    Type = "scavenger_yard"
	SwarmHive        Type = "swarm_hive"
	VoidBastion      Type = "void_bastion"
	MiningClaim      Type = "mining_claim"
	SwarmAssimilated Type = "swarm_assimilated" // flip target for ScavengerYard/PirateOutpost/MiningClaim
)

// AssimilatedCounterpart returns the swarm-assimilated variant of a base
// type, per §4.6 "the base's type is replaced with its swarm-assimilated
// counterpart". Only scavenger/pirate/rogue-miner bases are assimilable.
func AssimilatedCounterpart(t Type) Type {
	switch t {
	case ScavengerYard, PirateOutpost, MiningClaim:
		return SwarmAssimilated
	default:
		return t
	}
}

// Base is a persistent faction structure (§3.2).
type Base struct {
	ID       bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Faction  faction.Faction `bson:"faction" json:"faction"`
	Type     Type            `bson:"type" json:"type"`
	Position geom.Vector2    `bson:"position" json:"position"`

	Health    float64 `bson:"health" json:"health"`
	MaxHealth float64 `bson:"maxHealth" json:"maxHealth"`
	Destroyed bool    `bson:"destroyed" json:"destroyed"`

	// Scavenger yard accumulator (§3.2, §4.8 steal).
	ScrapPile ScrapPile `bson:"scrapPile,omitempty" json:"scrapPile,omitempty"`

	// Mining claim accumulator (§3.2, §4.7 deposit, §4.8 steal).
	ClaimCredits int `bson:"claimCredits" json:"claimCredits"`

	// Mining claim / rogue-miner accumulator: a Foreman present boosts
	// haul speed and deposit credit (§4.7).
	HasForeman bool `bson:"hasForeman" json:"hasForeman"`

	// Swarm takeover progress (§3.2, §4.6).
	AssimilationProgress  int `bson:"assimilationProgress" json:"assimilationProgress"`
	AssimilationThreshold int `bson:"assimilationThreshold" json:"assimilationThreshold"`

	// Dreadnought spawn gate (§4.8): tracked here since it is a per-base,
	// once-per-lifetime fact, not cross-strategy cache state.
	SpawnedDreadnought bool `bson:"spawnedDreadnought" json:"spawnedDreadnought"`
}

// ScrapPile is a scavenger yard's stealable inventory (§3.2).
type ScrapPile struct {
	Count    int      `bson:"count" json:"count"`
	Contents []string `bson:"contents" json:"contents"`
}

// HealthFrac returns Health/MaxHealth, or 0 if MaxHealth is 0.
func (b *Base) HealthFrac() float64 {
	if b.MaxHealth <= 0 {
		return 0
	}
	return b.Health / b.MaxHealth
}

// ApplyDamage subtracts dmg from Health, clamping at 0 and flipping
// Destroyed — the invariant from §3.2 ("if destroyed, health == 0").
func (b *Base) ApplyDamage(dmg float64) {
	b.Health -= dmg
	if b.Health <= 0 {
		b.Health = 0
		b.Destroyed = true
	}
}

// TakeScrap removes up to n items from the pile, keeping
// len(Contents) == Count (§3.2 invariant). Returns the items actually
// taken.
func (b *Base) TakeScrap(n int) []string {
	if n > len(b.ScrapPile.Contents) {
		n = len(b.ScrapPile.Contents)
	}
	taken := append([]string(nil), b.ScrapPile.Contents[:n]...)
	b.ScrapPile.Contents = b.ScrapPile.Contents[n:]
	b.ScrapPile.Count = len(b.ScrapPile.Contents)
	return taken
}

// TakeClaimCreditsFrac removes floor(ClaimCredits * frac) credits and
// returns the amount taken (§4.8 steal rule (c)).
func (b *Base) TakeClaimCreditsFrac(frac float64) int {
	amount := int(float64(b.ClaimCredits) * frac)
	if amount > b.ClaimCredits {
		amount = b.ClaimCredits
	}
	b.ClaimCredits -= amount
	return amount
}

// CreditDeposit adds a rogue-miner haul deposit to the claim (§4.7).
func (b *Base) CreditDeposit(amount int) {
	b.ClaimCredits += amount
}

// Assimilate advances the swarm takeover by one drone sacrifice (§4.6) and
// reports whether this push flipped the base. Progress never exceeds
// Threshold (§8 property 10): on reaching it exactly once, Type/Faction
// flip and Progress holds at Threshold.
func (b *Base) Assimilate() (flipped bool) {
	if b.AssimilationProgress >= b.AssimilationThreshold {
		return false
	}
	b.AssimilationProgress++
	if b.AssimilationProgress >= b.AssimilationThreshold {
		b.Type = AssimilatedCounterpart(b.Type)
		b.Faction = faction.Swarm
		return true
	}
	return false
}
