package faction

// Relations answers ally/enemy questions for a pair of factions. Adapted
// from the teacher's diplomacy.Provider (diplomacy/provider.go), which
// answered the same question for a pair of *players* with a time-bounded
// peace/ceasefire state machine; factions here have one fixed relation for
// the whole match, so the provider collapses to a static table, but the
// "ask a provider, don't hardcode the matrix in the caller" shape is kept
// so the neighborhood builder and strategies never inline the enemy map.
type Relations interface {
	AreAllies(a, b Faction) bool
	AreEnemies(a, b Faction) bool
}

// pair is an unordered key for the relation table, normalized the same way
// the teacher's diplomacy.normalizePair did for player ids.
type pair struct {
	a, b Faction
}

func normalizePair(a, b Faction) pair {
	if a <= b {
		return pair{a, b}
	}
	return pair{b, a}
}

// StaticRelations implements Relations with the fixed §3.3 hostility map:
// pirate is hostile to scavenger and rogue_miner; no other cross-faction
// pair is hostile, and no faction is ever enemies with itself.
type StaticRelations struct {
	enemies map[pair]bool
}

// NewDefaultRelations builds the table spec.md §2/§3.3 describes: "enemy
// map is pirate↔{scavenger, rogue_miner}".
func NewDefaultRelations() *StaticRelations {
	r := &StaticRelations{enemies: make(map[pair]bool)}
	r.setEnemies(Pirate, Scavenger)
	r.setEnemies(Pirate, RogueMiner)
	return r
}

func (r *StaticRelations) setEnemies(a, b Faction) {
	r.enemies[normalizePair(a, b)] = true
}

func (r *StaticRelations) AreEnemies(a, b Faction) bool {
	if a == b {
		return false
	}
	return r.enemies[normalizePair(a, b)]
}

// AreAllies is true for any same-faction pair (including a stack checking
// itself), and false across factions — this engine has no cross-faction
// alliance mechanic, unlike the teacher's player diplomacy.
func (r *StaticRelations) AreAllies(a, b Faction) bool {
	return a == b
}
