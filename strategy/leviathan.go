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

// gravityWellState tracks one Leviathan's in-flight gravity well ability
// through its warning/active/end phases (§4.10).
type gravityWellState struct {
	Phase     string
	Center    geom.Vector2
	StartedAt time.Time
}

// consumeState tracks one Leviathan's in-flight consume ability through its
// tendril/drag/dissolve sub-phases (§4.10).
type consumeState struct {
	Phase      string
	TargetID   bson.ObjectID
	StartedAt  time.Time
	TendrilEnd time.Time
	DragEnd    time.Time
}

// leviathanState is the per-Leviathan side-table entry the spec keys by npc
// id (§4.10: "leviathans[id] = {...}").
type leviathanState struct {
	GravityWellCooldownUntil time.Time
	ConsumeCooldownUntil     time.Time
	ContinuousSpawnTimer     time.Time
	TriggeredThresholds      map[float64]bool
	GravityWell              *gravityWellState
	Consume                  *consumeState
	SpawnedMinions           map[bson.ObjectID]bool
	MaxHull                  float64
}

// LeviathanStrategy drives the Void Leviathan boss (§4.10): priority order
// is minion spawning, then gravity well / consume (mutually exclusive,
// whichever is ready), then standard combat fallback.
type LeviathanStrategy struct {
	cfg    *config.Config
	states map[bson.ObjectID]*leviathanState
}

func NewLeviathanStrategy(cfg *config.Config) *LeviathanStrategy {
	return &LeviathanStrategy{cfg: cfg, states: make(map[bson.ObjectID]*leviathanState)}
}

func (s *LeviathanStrategy) stateFor(n *npc.NPC) *leviathanState {
	st, ok := s.states[n.ID]
	if !ok {
		st = &leviathanState{
			TriggeredThresholds: make(map[float64]bool),
			SpawnedMinions:      make(map[bson.ObjectID]bool),
			MaxHull:             n.HullMax,
		}
		s.states[n.ID] = st
	}
	return st
}

// RegisterMinion records a rift the engine actually spawned in response to
// a VoidSpawnMinions action, so activeMinions can be probed next tick
// (§4.10). The strategy itself never creates NPCs.
func (s *LeviathanStrategy) RegisterMinion(leviathanID, minionID bson.ObjectID) {
	st, ok := s.states[leviathanID]
	if !ok {
		return
	}
	st.SpawnedMinions[minionID] = true
}

func (s *LeviathanStrategy) activeMinions(st *leviathanState, allNPCs []*npc.NPC) int {
	live := make(map[bson.ObjectID]bool, len(allNPCs))
	for _, other := range allNPCs {
		if !other.Dead() {
			live[other.ID] = true
		}
	}
	count := 0
	for id := range st.SpawnedMinions {
		if live[id] {
			count++
		} else {
			delete(st.SpawnedMinions, id)
		}
	}
	return count
}

func (s *LeviathanStrategy) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	st := s.stateFor(n)

	if a := s.tryMinionSpawn(n, st, ctx); a != nil {
		return a, nil
	}
	if st.GravityWell != nil {
		return s.advanceGravityWell(n, st, ctx), nil
	}
	if st.Consume != nil {
		return s.advanceConsume(n, st, ctx), nil
	}
	if a := s.tryStartGravityWell(n, nb, st, ctx); a != nil {
		return a, nil
	}
	if a := s.tryStartConsume(n, ctx, st); a != nil {
		return a, nil
	}
	return s.updateCombat(n, nb, ctx), nil
}

func (s *LeviathanStrategy) tryMinionSpawn(n *npc.NPC, st *leviathanState, ctx *Context) *action.Action {
	frac := n.HullFrac()
	for _, th := range s.cfg.Leviathan.HealthThresholds {
		if frac <= th.HealthFrac && !st.TriggeredThresholds[th.HealthFrac] {
			st.TriggeredThresholds[th.HealthFrac] = true
			hf := th.HealthFrac
			return &action.Action{
				ID: action.NewActionID(), AuthorID: n.ID, Kind: action.VoidSpawnMinions, Timestamp: ctx.Now,
				SpawnMinions: &action.SpawnMinionsParams{RiftCount: th.Rifts, Trigger: "threshold", HealthThreshold: &hf},
			}
		}
	}

	if st.ContinuousSpawnTimer.IsZero() {
		st.ContinuousSpawnTimer = ctx.Now
	}
	if ctx.Now.Sub(st.ContinuousSpawnTimer) >= time.Duration(s.cfg.Leviathan.ContinuousIntervalMs)*time.Millisecond {
		st.ContinuousSpawnTimer = ctx.Now
		if s.activeMinions(st, ctx.AllNPCs) < s.cfg.Leviathan.MaxActiveMinions {
			return &action.Action{
				ID: action.NewActionID(), AuthorID: n.ID, Kind: action.VoidSpawnMinions, Timestamp: ctx.Now,
				SpawnMinions: &action.SpawnMinionsParams{RiftCount: 1, Trigger: "continuous"},
			}
		}
	}
	return nil
}

func (s *LeviathanStrategy) tryStartGravityWell(n *npc.NPC, nb neighborhood.Neighborhood, st *leviathanState, ctx *Context) *action.Action {
	if ctx.Now.Before(st.GravityWellCooldownUntil) || len(nb.NearbyPlayers) == 0 {
		return nil
	}
	pts := make([]geom.Vector2, 0, len(nb.NearbyPlayers))
	for _, p := range nb.NearbyPlayers {
		pts = append(pts, p.Position)
	}
	center := geom.Centroid(pts)
	st.GravityWellCooldownUntil = ctx.Now.Add(time.Duration(s.cfg.Leviathan.GravityWellCooldownMs) * time.Millisecond)
	st.GravityWell = &gravityWellState{Phase: "warning", Center: center, StartedAt: ctx.Now}
	return &action.Action{
		ID: action.NewActionID(), AuthorID: n.ID, Kind: action.VoidGravityWell, Timestamp: ctx.Now,
		GravityWell: &action.GravityWellParams{Phase: "warning", Center: center, Radius: s.cfg.Leviathan.GravityWellRadius},
	}
}

func (s *LeviathanStrategy) advanceGravityWell(n *npc.NPC, st *leviathanState, ctx *Context) *action.Action {
	gw := st.GravityWell
	warningEnd := gw.StartedAt.Add(time.Duration(s.cfg.Leviathan.GravityWellWarningMs) * time.Millisecond)
	activeEnd := warningEnd.Add(time.Duration(s.cfg.Leviathan.GravityWellActiveMs) * time.Millisecond)

	switch gw.Phase {
	case "warning":
		if ctx.Now.Before(warningEnd) {
			return nil
		}
		gw.Phase = "active"
		fallthrough
	case "active":
		if ctx.Now.After(activeEnd) {
			gw.Phase = "end"
			st.GravityWell = nil
			return &action.Action{
				ID: action.NewActionID(), AuthorID: n.ID, Kind: action.VoidGravityWell, Timestamp: ctx.Now,
				GravityWell: &action.GravityWellParams{Phase: "end", Center: gw.Center, Radius: s.cfg.Leviathan.GravityWellRadius},
			}
		}
		return &action.Action{
			ID: action.NewActionID(), AuthorID: n.ID, Kind: action.VoidGravityWellTick, Timestamp: ctx.Now,
			GravityWell: &action.GravityWellParams{
				Phase: "active", Center: gw.Center, Radius: s.cfg.Leviathan.GravityWellRadius,
				PullStrength: s.cfg.Leviathan.GravityWellPullStrength,
				DamageEdge:   s.cfg.Leviathan.GravityWellDamageEdge,
				DamageCenter: s.cfg.Leviathan.GravityWellDamageCenter,
			},
		}
	default:
		st.GravityWell = nil
		return nil
	}
}

// tryStartConsume scores nearby void allies and begins the tendril phase on
// the highest-value target (§4.10).
func (s *LeviathanStrategy) tryStartConsume(n *npc.NPC, ctx *Context, st *leviathanState) *action.Action {
	if ctx.Now.Before(st.ConsumeCooldownUntil) {
		return nil
	}
	var best *npc.NPC
	bestScore := -1.0
	for _, other := range ctx.AllNPCs {
		if other.ID == n.ID || other.Faction != n.Faction || other.Dead() || other.Type == npc.VoidLeviathan {
			continue
		}
		dist := geom.Distance(n.Position, other.Position)
		if dist > s.cfg.Leviathan.ConsumeRange {
			continue
		}
		healthScore := (other.Hull + other.Shield) / maxFloat(other.HullMax+other.ShieldMax, 1)
		proxScore := 1 - dist/s.cfg.Leviathan.ConsumeRange
		score := healthScore*s.cfg.Leviathan.ConsumeHullWeight + proxScore*s.cfg.Leviathan.ConsumeProximityWeight
		if score > bestScore {
			bestScore = score
			best = other
		}
	}
	if best == nil {
		return nil
	}
	dist := geom.Distance(n.Position, best.Position)
	tendrilMs := dist / maxFloat(s.cfg.Leviathan.ConsumeTendrilSpeed, 1) * 1000
	st.Consume = &consumeState{
		Phase: "tendril", TargetID: best.ID, StartedAt: ctx.Now,
		TendrilEnd: ctx.Now.Add(time.Duration(tendrilMs) * time.Millisecond),
	}
	return &action.Action{
		ID: action.NewActionID(), AuthorID: n.ID, Kind: action.VoidConsume, Timestamp: ctx.Now,
		Consume: &action.ConsumeParams{Phase: "tendril", TargetNPCID: best.ID},
	}
}

func (s *LeviathanStrategy) advanceConsume(n *npc.NPC, st *leviathanState, ctx *Context) *action.Action {
	cs := st.Consume
	var target *npc.NPC
	for _, other := range ctx.AllNPCs {
		if other.ID == cs.TargetID {
			target = other
			break
		}
	}
	if target == nil || target.Dead() {
		st.Consume = nil
		st.ConsumeCooldownUntil = ctx.Now.Add(time.Duration(s.cfg.Leviathan.ConsumeCooldownMs) * time.Millisecond)
		return nil
	}

	switch cs.Phase {
	case "tendril":
		if ctx.Now.Before(cs.TendrilEnd) {
			return nil
		}
		cs.Phase = "drag"
		cs.DragEnd = ctx.Now.Add(time.Duration(s.cfg.Leviathan.ConsumeDragMs) * time.Millisecond)
		return &action.Action{
			ID: action.NewActionID(), AuthorID: n.ID, Kind: action.VoidConsume, Timestamp: ctx.Now,
			Consume: &action.ConsumeParams{Phase: "drag", TargetNPCID: target.ID},
		}
	case "drag":
		if ctx.Now.Before(cs.DragEnd) {
			return nil
		}
		heal := (target.Hull + target.Shield) * s.cfg.Leviathan.ConsumeHealMultiplier
		st.Consume = nil
		st.ConsumeCooldownUntil = ctx.Now.Add(time.Duration(s.cfg.Leviathan.ConsumeCooldownMs) * time.Millisecond)
		return &action.Action{
			ID: action.NewActionID(), AuthorID: n.ID, Kind: action.VoidConsume, Timestamp: ctx.Now,
			Consume: &action.ConsumeParams{Phase: "dissolve", TargetNPCID: target.ID, HealAmount: heal, RemoveTarget: true},
		}
	default:
		st.Consume = nil
		return nil
	}
}

func (s *LeviathanStrategy) updateCombat(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	var weakest *neighborhood.PlayerEntry
	lowestFrac := 2.0
	for i := range nb.NearbyPlayers {
		p := nb.NearbyPlayers[i]
		frac := p.Player.Hull / maxFloat(p.Player.HullMax, 1)
		if frac < lowestFrac {
			lowestFrac = frac
			weakest = &nb.NearbyPlayers[i]
		}
	}
	if weakest == nil {
		n.ClearTarget()
		return nil
	}
	n.SetTargetPlayer(weakest.Player.ID)
	waypoint := geom.PointOnCircle(weakest.Position, n.WeaponRange*s.cfg.Leviathan.CombatApproachFrac, geom.Angle(weakest.Position, n.Position))
	n.Position = moveToward(n.Position, waypoint, n.Speed, ctx.DtMs)
	n.Rotation = faceToward(n.Position, weakest.Position)

	return tryFire(n, ctx.Now, time.Duration(s.cfg.Leviathan.CombatFireCooldownMs)*time.Millisecond,
		weakest.Player.ID, true, weakest.Distance, n.WeaponDamage, n.WeaponType, n.WeaponTier, 0)
}

func (s *LeviathanStrategy) Cleanup(id bson.ObjectID) {
	delete(s.states, id)
}
