package action

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/skirmishCore/geom"
)

func TestNewEventStampsFields(t *testing.T) {
	subject := bson.NewObjectID()
	pos := geom.Vector2{X: 1, Y: 2}
	ev := NewEvent(EventDamageApplied, subject, pos)

	if ev.ID == "" {
		t.Errorf("expected NewEvent to stamp a non-empty id")
	}
	if ev.Type != EventDamageApplied {
		t.Errorf("expected type %q, got %q", EventDamageApplied, ev.Type)
	}
	if ev.SubjectID != subject {
		t.Errorf("expected subject %v, got %v", subject, ev.SubjectID)
	}
	if ev.Position != pos {
		t.Errorf("expected position %v, got %v", pos, ev.Position)
	}
	if ev.Data == nil {
		t.Errorf("expected NewEvent to initialize a non-nil Data map")
	}
}

func TestEventWithChainsAndMutatesData(t *testing.T) {
	ev := NewEvent(EventNPCUpdated, bson.NewObjectID(), geom.Vector2{})
	ev = ev.With("hullDamage", 42.0).With("target", "abc")

	if v, ok := ev.Data["hullDamage"]; !ok || v != 42.0 {
		t.Errorf("expected hullDamage=42.0 in event data, got %v", ev.Data["hullDamage"])
	}
	if v, ok := ev.Data["target"]; !ok || v != "abc" {
		t.Errorf("expected target=abc in event data, got %v", ev.Data["target"])
	}
}

func TestNewActionIDIsUnique(t *testing.T) {
	a := NewActionID()
	b := NewActionID()
	if a == "" || b == "" {
		t.Errorf("expected non-empty action ids")
	}
	if a == b {
		t.Errorf("expected two calls to NewActionID to produce distinct ids")
	}
}
