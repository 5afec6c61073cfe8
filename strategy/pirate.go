package strategy

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
)

// intelRecord is a base's single-slot scout report (§3.4, §4.8).
type intelRecord struct {
	TargetID     bson.ObjectID
	TargetType   string
	TargetPos    geom.Vector2
	IsBaseTarget bool
	HasResources bool
	ReportedAt   time.Time
	ReportedBy   bson.ObjectID
}

// PirateStrategy is the second-level dispatcher keyed by npc.Type (§4.8).
// It owns the cross-NPC caches the four pirate roles share: per-base intel
// and a per-NPC steal cooldown.
type PirateStrategy struct {
	cfg *config.Config

	scout       *ScoutBehavior
	fighter     *FighterBehavior
	captain     *CaptainBehavior
	dreadnought *DreadnoughtBehavior

	intel         map[bson.ObjectID]*intelRecord    // baseId -> latest report
	lastStealAt   map[bson.ObjectID]time.Time       // npcId -> last steal
}

func NewPirateStrategy(cfg *config.Config) *PirateStrategy {
	p := &PirateStrategy{
		cfg:           cfg,
		intel:         make(map[bson.ObjectID]*intelRecord),
		lastStealAt:   make(map[bson.ObjectID]time.Time),
	}
	p.scout = &ScoutBehavior{cfg: cfg, parent: p}
	p.fighter = &FighterBehavior{cfg: cfg, parent: p}
	p.captain = &CaptainBehavior{cfg: cfg, parent: p}
	p.dreadnought = &DreadnoughtBehavior{cfg: cfg, parent: p}
	return p
}

func (s *PirateStrategy) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	switch n.Type {
	case npc.PirateScout:
		return s.scout.Update(n, nb, ctx)
	case npc.PirateFighter:
		return s.fighter.Update(n, nb, ctx)
	case npc.PirateCaptain:
		return s.captain.Update(n, nb, ctx)
	case npc.PirateDreadnought:
		return s.dreadnought.Update(n, nb, ctx)
	default:
		// Fallback to the shared baseline (§4.2's "also fallback").
		fb := NewFlankingStrategy(s.cfg)
		return fb.Update(n, nb, ctx)
	}
}

// publishIntel overwrites the single-slot report for baseID (§4.8).
func (s *PirateStrategy) publishIntel(baseID bson.ObjectID, rec *intelRecord) {
	s.intel[baseID] = rec
}

// readIntel returns the still-valid intel for baseID, or nil (§4.8: 30 s
// validity, §8 property 6).
func (s *PirateStrategy) readIntel(baseID bson.ObjectID, now time.Time) *intelRecord {
	rec, ok := s.intel[baseID]
	if !ok {
		return nil
	}
	if now.Sub(rec.ReportedAt) > time.Duration(s.cfg.Pirate.IntelValidityMs)*time.Millisecond {
		delete(s.intel, baseID)
		return nil
	}
	return rec
}

// clearIntel drops a destroyed base's cached report (§4.8).
func (s *PirateStrategy) clearIntel(baseID bson.ObjectID) {
	delete(s.intel, baseID)
}

// ClearIntel is clearIntel exported for the engine's base-destruction
// handler (§5's shared-resource policy: other code mutates strategy-local
// maps only through strategy methods).
func (s *PirateStrategy) ClearIntel(baseID bson.ObjectID) {
	s.clearIntel(baseID)
}

// ExpireIntel prunes every base's cached report past its 30 s validity
// window (§8 property 6, §2 step 4 "pirate intel expiry").
func (s *PirateStrategy) ExpireIntel(now time.Time) {
	for baseID, rec := range s.intel {
		if now.Sub(rec.ReportedAt) > time.Duration(s.cfg.Pirate.IntelValidityMs)*time.Millisecond {
			delete(s.intel, baseID)
		}
	}
}

// canSteal reports whether n's per-NPC steal cooldown has elapsed (§4.8:
// 10,000 ms, captains and fighters only).
func (s *PirateStrategy) canSteal(npcID bson.ObjectID, now time.Time) bool {
	last, ok := s.lastStealAt[npcID]
	if !ok {
		return true
	}
	return now.Sub(last) >= time.Duration(s.cfg.Pirate.StealCooldownMs)*time.Millisecond
}

func (s *PirateStrategy) markStole(npcID bson.ObjectID, now time.Time) {
	s.lastStealAt[npcID] = now
}

func (s *PirateStrategy) Cleanup(id bson.ObjectID) {
	delete(s.lastStealAt, id)
	s.scout.Cleanup(id)
	s.fighter.Cleanup(id)
	s.captain.Cleanup(id)
	s.dreadnought.Cleanup(id)
}
