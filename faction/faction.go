// Package faction defines the five hostile factions and the static
// hostility table the neighborhood builder uses to split an NPC's
// surroundings into allies and hostiles (spec.md §3.3).
package faction

// Faction is a variant tag identifying which side an NPC or base belongs
// to.
type Faction string

const (
	Pirate     Faction = "pirate"
	Scavenger  Faction = "scavenger"
	Swarm      Faction = "swarm"
	Void       Faction = "void"
	RogueMiner Faction = "rogue_miner"
)

// RetreatThreshold looks up the faction's configured retreat threshold
// (hull fraction at or below which shouldRetreat triggers). Callers pass
// the table from config.Config.Dispatch.RetreatThresholds; this indirection
// keeps the literal out of strategy code per §6.
func RetreatThreshold(thresholds map[string]float64, f Faction) float64 {
	if v, ok := thresholds[string(f)]; ok {
		return v
	}
	return 0
}
