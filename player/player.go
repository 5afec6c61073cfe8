// Package player holds the read-only snapshot of a player the AI core
// targets. Account/auth fields live in the persistence layer, which
// spec.md §1 places out of scope; this is deliberately a trimmed sibling of
// the teacher's players.Player, keeping only what combat and targeting
// logic actually reads.
package player

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/geom"
)

// Ref is a tick-local snapshot of a player, supplied by the surrounding
// game server (see worldhooks.PlayerDirectory). Strategies only read it; the
// engine's action applier writes damage (Hull, Shield) and gravity-well pull
// (Position) back into it.
type Ref struct {
	ID       bson.ObjectID
	Position geom.Vector2
	Speed    float64
	Hull     float64
	HullMax  float64
	Shield   float64
	ShieldMax float64

	// Mining is true while this player is actively mining a claim; the
	// rogue-miner territorial strategy skips the warning phase entirely
	// for a mining target per §4.4.
	Mining bool
}
