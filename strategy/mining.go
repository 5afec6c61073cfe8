package strategy

import (
	"math/rand"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
)

// MiningStrategy is the rogue-miner strategy (§4.7): idle -> seeking ->
// mining -> returning -> depositing -> idle, preempted at any point by
// enraged, and falling back to TerritorialStrategy whenever an intruder or
// a hostile pirate shows up and no haul is in progress.
type MiningStrategy struct {
	cfg         *config.Config
	territorial *TerritorialStrategy
	claimed     map[npc.WorldObjectID]bson.ObjectID // asteroidId -> npcId, §3.4
}

func NewMiningStrategy(cfg *config.Config) *MiningStrategy {
	return &MiningStrategy{
		cfg:         cfg,
		territorial: NewTerritorialStrategy(cfg),
		claimed:     make(map[npc.WorldObjectID]bson.ObjectID),
	}
}

func (s *MiningStrategy) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	if n.Miner == nil {
		n.Miner = &npc.MinerSlot{}
	}

	if n.Miner.Enraged {
		return s.updateEnraged(n, ctx), nil
	}

	busy := n.State == "mining" || n.State == "returning" || n.State == "depositing"
	if !busy {
		if intruder := nearestIntruder(n, nb, ctx.TerritoryRadius); intruder != nil {
			return s.territorial.Update(n, nb, ctx)
		}
		if hostile := nearestHostilePirate(nb.NearbyHostiles); hostile != nil {
			return s.territorial.Update(n, nb, ctx)
		}
	}

	switch n.State {
	case "seeking":
		return s.updateSeeking(n, ctx), nil
	case "mining":
		return s.updateMining(n, ctx), nil
	case "returning":
		return s.updateReturning(n, ctx), nil
	case "depositing":
		return s.updateDepositing(n, ctx), nil
	default:
		n.State = "seeking"
		return s.updateSeeking(n, ctx), nil
	}
}

type claimCandidate struct {
	id       npc.WorldObjectID
	pos      geom.Vector2
	orbital  bool
	distance float64
}

// findMiningTarget scans candidate asteroid/planet ids within searchRadius
// of home, skips already-claimed ones, and picks uniformly among the five
// nearest (§4.7). candidates is supplied by the engine from its world
// directory since this core has no asteroid registry of its own.
func (s *MiningStrategy) findMiningTarget(n *npc.NPC, home geom.Vector2, candidates []claimCandidate) *claimCandidate {
	var eligible []claimCandidate
	for _, c := range candidates {
		if _, taken := s.claimed[c.id]; taken {
			continue
		}
		d := geom.Distance(home, c.pos)
		if d <= s.cfg.Mining.SearchRadius {
			c.distance = d
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].distance < eligible[j].distance })
	n_ := s.cfg.Mining.NearestCandidateCount
	if n_ > len(eligible) {
		n_ = len(eligible)
	}
	pick := eligible[rand.Intn(n_)]
	return &pick
}

func (s *MiningStrategy) updateSeeking(n *npc.NPC, ctx *Context) *action.Action {
	if n.Miner.ClaimedTarget == "" {
		candidates := miningCandidatesFromContext(ctx, n.EffectiveBasePosition(), s.cfg)
		target := s.findMiningTarget(n, n.EffectiveBasePosition(), candidates)
		if target == nil {
			simplePatrol(n, n.EffectiveBasePosition(), ctx.PatrolRadius, 0.2, ctx.DtMs)
			return nil
		}
		n.Miner.ClaimedTarget = target.id
		n.Miner.TargetIsOrbital = target.orbital
		n.Miner.MiningTargetPos = target.pos
		s.claimed[target.id] = n.ID
	}

	pos := n.Miner.MiningTargetPos
	if n.Miner.TargetIsOrbital && ctx.World != nil {
		if p, ok := ctx.World.WorldObjectAt(n.Miner.ClaimedTarget); ok {
			pos = p
			n.Miner.MiningTargetPos = p
		}
	}
	n.Position = moveToward(n.Position, pos, n.Speed, ctx.DtMs)
	if geom.Distance(n.Position, pos) < 20 {
		n.State = "mining"
		n.Miner.MiningStartedAt = ctx.Now
		return &action.Action{
			ID: action.NewActionID(), AuthorID: n.ID, Kind: action.RogueMinerStartMining, Timestamp: ctx.Now,
			RogueMiner: &action.RogueMinerParams{AsteroidID: n.Miner.ClaimedTarget},
		}
	}
	return nil
}

func (s *MiningStrategy) updateMining(n *npc.NPC, ctx *Context) *action.Action {
	if n.Miner.TargetIsOrbital && ctx.World != nil {
		if p, ok := ctx.World.WorldObjectAt(n.Miner.ClaimedTarget); ok {
			n.Miner.MiningTargetPos = p
		}
	}
	if ctx.Now.Sub(n.Miner.MiningStartedAt) >= time.Duration(s.cfg.Mining.MiningDurationMs)*time.Millisecond {
		n.Miner.HasHaul = true
		n.State = "returning"
		delete(s.claimed, n.Miner.ClaimedTarget)
		return &action.Action{
			ID: action.NewActionID(), AuthorID: n.ID, Kind: action.RogueMinerMiningComplete, Timestamp: ctx.Now,
			RogueMiner: &action.RogueMinerParams{AsteroidID: n.Miner.ClaimedTarget},
		}
	}
	return &action.Action{
		ID: action.NewActionID(), AuthorID: n.ID, Kind: action.RogueMinerMiningProgress, Timestamp: ctx.Now,
		RogueMiner: &action.RogueMinerParams{AsteroidID: n.Miner.ClaimedTarget},
	}
}

func (s *MiningStrategy) updateReturning(n *npc.NPC, ctx *Context) *action.Action {
	mult := 1.0
	if ctx.HasForeman {
		mult = s.cfg.Mining.ForemanSpeedMult
	}
	home := n.EffectiveBasePosition()
	n.Position = moveToward(n.Position, home, n.Speed*s.cfg.Mining.ReturnSpeedFrac*mult, ctx.DtMs)
	if geom.Distance(n.Position, home) < s.cfg.Mining.DepositRadius {
		n.State = "depositing"
		n.Miner.DepositStartedAt = ctx.Now
		return &action.Action{
			ID: action.NewActionID(), AuthorID: n.ID, Kind: action.RogueMinerStartDeposit, Timestamp: ctx.Now,
			RogueMiner: &action.RogueMinerParams{},
		}
	}
	return nil
}

func (s *MiningStrategy) updateDepositing(n *npc.NPC, ctx *Context) *action.Action {
	if ctx.Now.Sub(n.Miner.DepositStartedAt) < time.Duration(s.cfg.Mining.DepositDurationMs)*time.Millisecond {
		return nil
	}
	credit := s.cfg.Mining.DepositCreditBase
	if ctx.HasForeman {
		credit = s.cfg.Mining.DepositCreditForeman
	}
	n.Miner.HasHaul = false
	n.Miner.ClaimedTarget = ""
	n.State = "idle"
	var baseID bson.ObjectID
	if ctx.HomeBase != nil {
		baseID = ctx.HomeBase.ID
	}
	return &action.Action{
		ID: action.NewActionID(), AuthorID: n.ID, Kind: action.RogueMinerDeposited, Timestamp: ctx.Now,
		RogueMiner: &action.RogueMinerParams{BaseID: baseID, CreditAmount: credit},
	}
}

func (s *MiningStrategy) updateEnraged(n *npc.NPC, ctx *Context) *action.Action {
	if n.Miner.RageSourcePlayer == nil {
		n.Miner.Enraged = false
		n.State = "idle"
		return nil
	}
	var target *geom.Vector2
	if ctx.Players != nil {
		if p, ok := ctx.Players.GetPlayer(*n.Miner.RageSourcePlayer); ok {
			target = &p.Position
		}
	}
	if target == nil {
		n.Miner.Enraged = false
		n.Miner.RageSourcePlayer = nil
		n.State = "idle"
		return &action.Action{ID: action.NewActionID(), AuthorID: n.ID, Kind: action.RogueMinerRageClear, Timestamp: ctx.Now, RogueMiner: &action.RogueMinerParams{}}
	}
	dist := geom.Distance(n.Position, *target)
	if dist > s.cfg.Mining.RageRadius {
		n.Miner.Enraged = false
		n.Miner.RageSourcePlayer = nil
		n.State = "idle"
		return &action.Action{ID: action.NewActionID(), AuthorID: n.ID, Kind: action.RogueMinerRageClear, Timestamp: ctx.Now, RogueMiner: &action.RogueMinerParams{}}
	}

	engageDist := n.WeaponRange * s.cfg.Mining.RageEngageFrac
	waypoint := geom.PointOnCircle(*target, engageDist, geom.Angle(*target, n.Position))
	n.Position = moveToward(n.Position, waypoint, n.Speed*s.cfg.Mining.RageSpeedMult, ctx.DtMs)
	n.Rotation = faceToward(n.Position, *target)
	n.SetTargetPlayer(*n.Miner.RageSourcePlayer)

	cooldownMs := s.cfg.Mining.RageFireCooldownNoFormanMs
	if ctx.HasForeman {
		cooldownMs = s.cfg.Mining.RageFireCooldownMs
	}
	a := tryFire(n, ctx.Now, time.Duration(cooldownMs)*time.Millisecond,
		*n.Miner.RageSourcePlayer, true, dist, n.WeaponDamage, n.WeaponType, n.WeaponTier, 0)
	if a != nil {
		a.Fire.Enraged = true
	}
	return a
}

// TriggerRage enters every rogue miner within RageRadius of victim into
// enraged pursuit of attacker (§4.7 faction-wide "rage zone"). Called by
// the engine's damage-reaction cross-cutting pass.
func (s *MiningStrategy) TriggerRage(victim *npc.NPC, attacker bson.ObjectID, allNPCs []*npc.NPC) {
	for _, other := range allNPCs {
		if other.Type != npc.RogueMiner || other.Dead() {
			continue
		}
		if geom.Distance(victim.Position, other.Position) > s.cfg.Mining.RageRadius {
			continue
		}
		if other.Miner == nil {
			other.Miner = &npc.MinerSlot{}
		}
		other.Miner.Enraged = true
		cp := attacker
		other.Miner.RageSourcePlayer = &cp
		other.State = "enraged"
		if other.Miner.ClaimedTarget != "" {
			delete(s.claimed, other.Miner.ClaimedTarget)
			other.Miner.ClaimedTarget = ""
		}
	}
}

func miningCandidatesFromContext(ctx *Context, home geom.Vector2, cfg *config.Config) []claimCandidate {
	if ctx.Claims == nil {
		return nil
	}
	raw := ctx.Claims.ClaimsNear(home, cfg.Mining.SearchRadius)
	out := make([]claimCandidate, 0, len(raw))
	for _, c := range raw {
		out = append(out, claimCandidate{id: c.ID, pos: c.Position, orbital: c.Orbital})
	}
	return out
}

func (s *MiningStrategy) Cleanup(id bson.ObjectID) {
	for asteroid, claimant := range s.claimed {
		if claimant == id {
			delete(s.claimed, asteroid)
		}
	}
	s.territorial.Cleanup(id)
}
