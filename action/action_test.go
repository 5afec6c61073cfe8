package action

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestValidateNilAction(t *testing.T) {
	var a *Action
	if err := a.Validate(); err == nil {
		t.Errorf("expected nil action to fail validation")
	}
}

func TestValidateMissingPayload(t *testing.T) {
	a := &Action{Kind: Fire}
	if err := a.Validate(); err == nil {
		t.Errorf("expected Fire action with no FireParams to fail validation")
	}
}

func TestValidateFirePayloadPresent(t *testing.T) {
	a := &Action{
		Kind: Fire,
		Fire: &FireParams{Target: bson.NewObjectID(), BaseDamage: 10},
	}
	if err := a.Validate(); err != nil {
		t.Errorf("expected valid Fire action to pass validation, got %v", err)
	}
}

func TestValidateUnknownKind(t *testing.T) {
	a := &Action{Kind: Kind("not-a-real-kind")}
	if err := a.Validate(); err == nil {
		t.Errorf("expected unknown kind to fail validation")
	}
}

func TestValidateBroadcastOnlyKindsAllowNilPayload(t *testing.T) {
	for _, k := range []Kind{PirateDreadnoughtEnraged, NPCInvulnerable} {
		a := &Action{Kind: k}
		if err := a.Validate(); err != nil {
			t.Errorf("expected %q to validate with no payload, got %v", k, err)
		}
	}
}

func TestValidateGravityWellSharesPayloadAcrossPhaseKinds(t *testing.T) {
	gw := &GravityWellParams{Phase: "warning", Radius: 500}
	for _, k := range []Kind{VoidGravityWell, VoidGravityWellTick} {
		a := &Action{Kind: k, GravityWell: gw}
		if err := a.Validate(); err != nil {
			t.Errorf("expected %q with GravityWellParams to validate, got %v", k, err)
		}
	}
	a := &Action{Kind: VoidGravityWellTick}
	if err := a.Validate(); err == nil {
		t.Errorf("expected VoidGravityWellTick with no payload to fail validation")
	}
}

func TestValidateRogueMinerKindsShareOnePayloadField(t *testing.T) {
	for _, k := range []Kind{
		RogueMinerStartMining, RogueMinerMiningProgress, RogueMinerMiningComplete,
		RogueMinerStartDeposit, RogueMinerDeposited, RogueMinerRage, RogueMinerRageClear,
	} {
		a := &Action{Kind: k, RogueMiner: &RogueMinerParams{BaseID: bson.NewObjectID()}}
		if err := a.Validate(); err != nil {
			t.Errorf("expected %q with RogueMinerParams to validate, got %v", k, err)
		}
	}
}
