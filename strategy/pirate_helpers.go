package strategy

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/base"
	"github.com/nicoberrocal/skirmishCore/faction"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
	"github.com/nicoberrocal/skirmishCore/worldhooks"
)

// nearestEnemyBase returns the closest base not belonging to n's faction,
// used by the scout's target-priority scan (§4.8: priority 2, "enemy base
// with resources").
func nearestEnemyBase(n *npc.NPC, bases []*base.Base) *base.Base {
	var best *base.Base
	bestDist := -1.0
	for _, b := range bases {
		if b.Faction == n.Faction || b.Destroyed {
			continue
		}
		d := n.Position.X - b.Position.X
		dy := n.Position.Y - b.Position.Y
		dist := d*d + dy*dy
		if best == nil || dist < bestDist {
			best = b
			bestDist = dist
		}
	}
	return best
}

// nearestSurvivingBase returns the first non-destroyed base of f in bases'
// order, used by a fleeing scout re-homing after its original base dies
// (§4.8). It does not compare distances, so it is not necessarily the
// closest such base.
func nearestSurvivingBase(bases []*base.Base, f faction.Faction) *base.Base {
	var best *base.Base
	for _, b := range bases {
		if b.Faction != f || b.Destroyed {
			continue
		}
		if best == nil {
			best = b
		}
	}
	return best
}

// selectNearestHostile returns the closest hostile NPC entry, or nil.
func selectNearestHostile(hostiles []neighborhood.NPCEntry) *neighborhood.NPCEntry {
	if len(hostiles) == 0 {
		return nil
	}
	return &hostiles[0]
}

// findPlayerByID looks a player up within a neighborhood's player list.
func findPlayerByID(players []neighborhood.PlayerEntry, id bson.ObjectID) (*neighborhood.PlayerEntry, bool) {
	for i := range players {
		if players[i].Player.ID == id {
			return &players[i], true
		}
	}
	return nil, false
}

// findHostileByID looks an NPC up within a neighborhood's hostile list.
func findHostileByID(hostiles []neighborhood.NPCEntry, id bson.ObjectID) (*neighborhood.NPCEntry, bool) {
	for i := range hostiles {
		if hostiles[i].NPC.ID == id {
			return &hostiles[i], true
		}
	}
	return nil, false
}

// findBaseByID looks a base up by id within a base slice.
func findBaseByID(bases []*base.Base, id bson.ObjectID) (*base.Base, bool) {
	for _, b := range bases {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// intelToHook adapts a scout's in-flight slot into the worldhooks.Intel
// shape the captain-spawner collaborator expects (§4.8, §6).
func intelToHook(s *npc.ScoutSlot) worldhooks.Intel {
	var targetID bson.ObjectID
	if s.TargetID != nil {
		targetID = *s.TargetID
	}
	return worldhooks.Intel{
		TargetID:     targetID,
		TargetType:   s.TargetType,
		TargetPos:    s.TargetPos,
		IsBaseTarget: s.IsBaseTarget,
		HasResources: s.HasResources,
	}
}
