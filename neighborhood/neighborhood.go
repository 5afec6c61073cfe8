// Package neighborhood builds the per-tick, per-NPC view of nearby players,
// allies, and hostiles that every Strategy update reads (spec.md §3.3, §2
// step 1). Nothing here is stored across ticks. Construction is a pure read
// over a tick-start snapshot, which is why BuildAll is safe to parallelize
// per-NPC (§5) even though the rest of the tick runs single-threaded.
package neighborhood

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/sync/errgroup"

	"github.com/nicoberrocal/skirmishCore/faction"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/npc"
	"github.com/nicoberrocal/skirmishCore/player"
)

// AllyRadius is the fixed radius (§3.3) within which same-faction NPCs
// count as allies, independent of the observer's own aggro range.
const AllyRadius = 500.0

// Entry is one neighbor with its precomputed distance and a position
// snapshot taken at the start of the tick (§3.3: "each entry carries
// precomputed distance and the referent's position snapshot for this
// tick").
type Entry struct {
	Distance float64
	Position geom.Vector2
}

// PlayerEntry is a nearbyPlayers[] member.
type PlayerEntry struct {
	Entry
	Player *player.Ref
}

// NPCEntry is a nearbyAllies[]/nearbyHostiles[] member.
type NPCEntry struct {
	Entry
	NPC *npc.NPC
}

// Neighborhood is NPC N's derived view for one tick (§3.3).
type Neighborhood struct {
	NearbyPlayers  []PlayerEntry
	NearbyAllies   []NPCEntry
	NearbyHostiles []NPCEntry
}

// Relations reports faction hostility; satisfied by faction.Relations.
type Relations interface {
	AreEnemies(a, b faction.Faction) bool
}

// Build computes N's neighborhood against a world snapshot. players and
// allNPCs are the tick-start snapshots; N itself must not appear in its own
// allies/hostiles lists.
func Build(n *npc.NPC, players []*player.Ref, allNPCs []*npc.NPC, rel Relations) Neighborhood {
	var out Neighborhood

	for _, p := range players {
		d := geom.Distance(n.Position, p.Position)
		if d <= n.AggroRange {
			out.NearbyPlayers = append(out.NearbyPlayers, PlayerEntry{
				Entry:  Entry{Distance: d, Position: p.Position},
				Player: p,
			})
		}
	}

	for _, other := range allNPCs {
		if other.ID == n.ID {
			continue
		}
		d := geom.Distance(n.Position, other.Position)
		switch {
		case other.Faction == n.Faction:
			if d <= AllyRadius {
				out.NearbyAllies = append(out.NearbyAllies, NPCEntry{
					Entry: Entry{Distance: d, Position: other.Position},
					NPC:   other,
				})
			}
		case rel.AreEnemies(n.Faction, other.Faction):
			if d <= n.AggroRange {
				out.NearbyHostiles = append(out.NearbyHostiles, NPCEntry{
					Entry: Entry{Distance: d, Position: other.Position},
					NPC:   other,
				})
			}
		}
	}

	sort.Slice(out.NearbyPlayers, func(i, j int) bool { return out.NearbyPlayers[i].Distance < out.NearbyPlayers[j].Distance })
	sort.Slice(out.NearbyAllies, func(i, j int) bool { return out.NearbyAllies[i].Distance < out.NearbyAllies[j].Distance })
	sort.Slice(out.NearbyHostiles, func(i, j int) bool { return out.NearbyHostiles[i].Distance < out.NearbyHostiles[j].Distance })

	return out
}

// BuildAll computes every NPC's neighborhood concurrently. Per §5, this is
// the one pass explicitly allowed to parallelize within a tick, since it
// only reads the snapshot taken at tick start and writes into disjoint
// slots of the returned map — no strategy mutation happens here.
func BuildAll(ctx context.Context, allNPCs []*npc.NPC, players []*player.Ref, rel Relations) (map[bson.ObjectID]Neighborhood, error) {
	out := make(map[bson.ObjectID]Neighborhood, len(allNPCs))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	for _, n := range allNPCs {
		n := n
		g.Go(func() error {
			nb := Build(n, players, allNPCs, rel)
			mu.Lock()
			out[n.ID] = nb
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
