package strategy

import (
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/action"
	"github.com/nicoberrocal/skirmishCore/config"
	"github.com/nicoberrocal/skirmishCore/geom"
	"github.com/nicoberrocal/skirmishCore/neighborhood"
	"github.com/nicoberrocal/skirmishCore/npc"
)

// formationWindow is one of the two timed states a formation enters right
// after its leader dies (§4.5). Shape follows the teacher's bio_machine
// stage+timestamp idiom: a state tag plus the wall-clock instant it
// started, aged out by comparing against Now at the top of every Update.
type formationWindow struct {
	State        string // "confusion" | "reforming"
	StartedAt    time.Time
	NewLeaderID  bson.ObjectID
}

// FormationStrategy is the void baseline (§4.5): fixed V-formation slots,
// synchronized volley fire, and leader succession with confusion/reforming
// windows.
type FormationStrategy struct {
	cfg    *config.Config
	states map[bson.ObjectID]*formationWindow // formationId -> window
}

func NewFormationStrategy(cfg *config.Config) *FormationStrategy {
	return &FormationStrategy{cfg: cfg, states: make(map[bson.ObjectID]*formationWindow)}
}

// leaderOf returns the designated/elected leader for formationId among
// members (§4.5: formationLeader flag or isBoss, else highest hullMax).
func leaderOf(members []*npc.NPC) *npc.NPC {
	for _, m := range members {
		if !m.Dead() && (m.FormationLeader || m.IsBoss) {
			return m
		}
	}
	var best *npc.NPC
	for _, m := range members {
		if m.Dead() {
			continue
		}
		if best == nil || m.HullMax > best.HullMax ||
			(m.HullMax == best.HullMax && m.ID.Hex() < best.ID.Hex()) {
			best = m
		}
	}
	return best
}

// formationSlot computes follower index i's waypoint behind the leader
// (§4.5: alternating sides, row = ceil(i/2); the slot sits row*rowSpacing
// behind the leader and 0.3*row*rowSpacing to the side).
func formationSlot(leader *npc.NPC, index int, rowSpacing float64) geom.Vector2 {
	row := math.Ceil(float64(index) / 2.0)
	side := 1.0
	if index%2 == 1 {
		side = -1.0
	}
	behind := leader.Rotation + math.Pi
	lateral := leader.Rotation + math.Pi/2*side
	back := geom.PointOnCircle(leader.Position, row*rowSpacing, behind)
	return geom.PointOnCircle(back, row*rowSpacing*0.3, lateral)
}

func (s *FormationStrategy) Update(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) (*action.Action, error) {
	if n.FormationID != nil {
		if w, ok := s.states[*n.FormationID]; ok {
			return s.updateWindow(n, w, ctx), nil
		}
	}

	members := formationMembers(n, ctx.AllNPCs)
	leader := leaderOf(members)
	if leader == nil {
		n.ClearTarget()
		return nil, nil
	}

	if leader.ID == n.ID {
		return s.updateLeader(n, nb, ctx), nil
	}
	return s.updateFollower(n, leader, members, ctx), nil
}

func formationMembers(n *npc.NPC, allNPCs []*npc.NPC) []*npc.NPC {
	if n.FormationID == nil {
		return []*npc.NPC{n}
	}
	var out []*npc.NPC
	for _, other := range allNPCs {
		if other.FormationID != nil && *other.FormationID == *n.FormationID {
			out = append(out, other)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

func (s *FormationStrategy) updateLeader(n *npc.NPC, nb neighborhood.Neighborhood, ctx *Context) *action.Action {
	if shouldRetreat(n, s.cfg) {
		n.State = "retreat"
		home := n.EffectiveBasePosition()
		n.Position = moveToward(n.Position, home, n.Speed*s.cfg.Formation.RetreatSpeedMult, ctx.DtMs)
		return nil
	}
	target := selectNearest(nb.NearbyPlayers)
	if target == nil {
		n.State = "patrol"
		n.ClearTarget()
		simplePatrol(n, n.EffectiveBasePosition(), ctx.PatrolRadius, 0.2, ctx.DtMs)
		return nil
	}
	n.State = "combat"
	n.SetTargetPlayer(target.Player.ID)
	approach := n.WeaponRange * s.cfg.Formation.LeaderApproachFrac
	backoff := n.WeaponRange * s.cfg.Formation.LeaderBackoffFrac
	dist := target.Distance
	var waypoint geom.Vector2
	if dist < backoff {
		angle := geom.Angle(target.Position, n.Position)
		waypoint = geom.PointOnCircle(target.Position, backoff, angle)
	} else {
		angle := geom.Angle(n.Position, target.Position)
		waypoint = geom.PointOnCircle(target.Position, approach, angle+math.Pi)
	}
	n.Position = moveToward(n.Position, waypoint, n.Speed, ctx.DtMs)
	n.Rotation = faceToward(n.Position, target.Position)
	return tryFire(n, ctx.Now, time.Duration(s.cfg.Formation.BaseFireCooldownMs)*time.Millisecond,
		target.Player.ID, true, dist, n.WeaponDamage, n.WeaponType, n.WeaponTier, 0)
}

func (s *FormationStrategy) updateFollower(n *npc.NPC, leader *npc.NPC, members []*npc.NPC, ctx *Context) *action.Action {
	index := 0
	for i, m := range members {
		if m.ID == n.ID {
			index = i
		}
	}

	var targetPlayerID *bson.ObjectID
	var targetPos geom.Vector2
	haveTarget := false
	if leader.TargetPlayer != nil && ctx.Players != nil {
		if p, ok := ctx.Players.GetPlayer(*leader.TargetPlayer); ok {
			targetPlayerID = leader.TargetPlayer
			targetPos = p.Position
			haveTarget = true
		}
	}

	if shouldRetreat(leader, s.cfg) || leader.State == "retreat" {
		n.State = "retreat"
	} else if haveTarget {
		n.State = "combat"
	} else {
		n.State = "patrol"
	}

	slot := formationSlot(leader, index, s.cfg.Formation.RowSpacing)
	speedMult := 1.0
	if geom.Distance(n.Position, slot) > s.cfg.Formation.RowSpacing*2 {
		speedMult = s.cfg.Formation.FollowerCatchupMult
	}
	n.Position = moveToward(n.Position, slot, n.Speed*speedMult, ctx.DtMs)

	if !haveTarget {
		n.ClearTarget()
		n.Rotation = faceToward(n.Position, leader.Position)
		return nil
	}

	n.SetTargetPlayer(*targetPlayerID)
	n.Rotation = faceToward(n.Position, targetPos)

	stagger := time.Duration(index) * time.Duration(s.cfg.Formation.VolleyStaggerMs) * time.Millisecond
	if ctx.Now.Sub(leader.LastFireTime) < stagger {
		return nil
	}
	dist := geom.Distance(n.Position, targetPos)
	return tryFire(n, ctx.Now, time.Duration(s.cfg.Formation.BaseFireCooldownMs)*time.Millisecond,
		*targetPlayerID, true, dist, n.WeaponDamage, n.WeaponType, n.WeaponTier, 0)
}

func (s *FormationStrategy) updateWindow(n *npc.NPC, w *formationWindow, ctx *Context) *action.Action {
	elapsed := ctx.Now.Sub(w.StartedAt)
	confusionDur := time.Duration(s.cfg.Formation.ConfusionMs) * time.Millisecond
	reformingDur := time.Duration(s.cfg.Formation.ReformingMs) * time.Millisecond

	switch {
	case elapsed < confusionDur:
		n.ClearTarget()
		n.PatrolAngle += 1.5 * float64(ctx.DtMs) / 1000.0
		drift := geom.PointOnCircle(n.Position, n.Speed*float64(ctx.DtMs)/1000.0, n.Rotation+math.Sin(n.PatrolAngle)*0.5)
		n.Position = drift
		return nil
	case elapsed < confusionDur+reformingDur:
		w.State = "reforming"
		var leader *npc.NPC
		for _, m := range ctx.AllNPCs {
			if m.ID == w.NewLeaderID {
				leader = m
			}
		}
		if leader != nil {
			index := 0
			for i, m := range formationMembers(n, ctx.AllNPCs) {
				if m.ID == n.ID {
					index = i
				}
			}
			slot := formationSlot(leader, index, s.cfg.Formation.RowSpacing)
			n.Position = moveToward(n.Position, slot, n.Speed, ctx.DtMs)
		}
		n.ClearTarget()
		return nil
	default:
		if n.FormationID != nil {
			delete(s.states, *n.FormationID)
		}
		return nil
	}
}

// HandleLeaderDeath starts the confusion window for a formation whose
// leader just died, electing the highest-surviving-hullMax replacement
// (§4.5, §9 open question resolution). Called by the engine's post-damage
// cross-cutting pass, not from inside Update.
func (s *FormationStrategy) HandleLeaderDeath(formationID bson.ObjectID, allNPCs []*npc.NPC, now time.Time) {
	var survivors []*npc.NPC
	for _, m := range allNPCs {
		if m.FormationID != nil && *m.FormationID == formationID && !m.Dead() {
			survivors = append(survivors, m)
		}
	}
	newLeader := leaderOf(survivors)
	if newLeader == nil {
		return
	}
	newLeader.FormationLeader = true
	s.states[formationID] = &formationWindow{State: "confusion", StartedAt: now, NewLeaderID: newLeader.ID}
}

func (s *FormationStrategy) Cleanup(id bson.ObjectID) {}
