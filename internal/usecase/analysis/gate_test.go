package analysis

import (
	"testing"

	"github.com/google/uuid"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

func gateFixtures() (*entities.OrgSetting, *entities.User) {
	orgID := uuid.New()
	setting := entities.NewOrgSetting(orgID)
	user := entities.NewUser(orgID, "student@itqan.app", "Student")
	return setting, user
}

func gateReason(t *testing.T, rej *GateRejection) string {
	t.Helper()
	if rej == nil {
		t.Fatal("expected a gate rejection")
	}
	return rej.Reason
}

func TestGateAllowsWithinLimits(t *testing.T) {
	setting, user := gateFixtures()
	if rej := CheckSubmissionGate(setting, user, true, 120, 5); rej != nil {
		t.Fatalf("expected pass got %+v", rej)
	}
}

func TestGateRejectsWhenOrgDisabled(t *testing.T) {
	setting, user := gateFixtures()
	setting.TajweedEnabled = false

	rej := CheckSubmissionGate(setting, user, true, 120, 0)
	if got := gateReason(t, rej); got != GateReasonDisabled {
		t.Fatalf("expected %s got %s", GateReasonDisabled, got)
	}
}

func TestGateRejectsWhenAssignmentAutoAIOff(t *testing.T) {
	setting, user := gateFixtures()

	rej := CheckSubmissionGate(setting, user, false, 120, 0)
	if got := gateReason(t, rej); got != GateReasonDisabled {
		t.Fatalf("expected %s got %s", GateReasonDisabled, got)
	}
}

func TestGateUserOverrideWinsOverOrgDefault(t *testing.T) {
	setting, user := gateFixtures()

	// Org disabled, user explicitly enabled.
	setting.TajweedEnabled = false
	enabled := true
	user.TajweedEnabled = &enabled
	if rej := CheckSubmissionGate(setting, user, true, 120, 0); rej != nil {
		t.Fatalf("user override should win, got %+v", rej)
	}

	// Org enabled, user explicitly disabled.
	setting.TajweedEnabled = true
	disabled := false
	user.TajweedEnabled = &disabled
	rej := CheckSubmissionGate(setting, user, true, 120, 0)
	if got := gateReason(t, rej); got != GateReasonDisabled {
		t.Fatalf("expected %s got %s", GateReasonDisabled, got)
	}
}

func TestGateRejectsOverlongAudio(t *testing.T) {
	setting, user := gateFixtures()

	rej := CheckSubmissionGate(setting, user, true, float64(setting.MaxDurationSeconds)+1, 0)
	if got := gateReason(t, rej); got != GateReasonDurationLimit {
		t.Fatalf("expected %s got %s", GateReasonDurationLimit, got)
	}

	// Exactly at the limit is allowed.
	if rej := CheckSubmissionGate(setting, user, true, float64(setting.MaxDurationSeconds), 0); rej != nil {
		t.Fatalf("duration at the limit should pass, got %+v", rej)
	}
}

func TestGateRejectsWhenQuotaExhausted(t *testing.T) {
	setting, user := gateFixtures()
	setting.DailyAnalysisLimit = 3

	if rej := CheckSubmissionGate(setting, user, true, 60, 2); rej != nil {
		t.Fatalf("under quota should pass, got %+v", rej)
	}

	rej := CheckSubmissionGate(setting, user, true, 60, 3)
	if got := gateReason(t, rej); got != GateReasonQuotaExceeded {
		t.Fatalf("expected %s got %s", GateReasonQuotaExceeded, got)
	}
}

func TestGateZeroLimitsMeanUnlimited(t *testing.T) {
	setting, user := gateFixtures()
	setting.DailyAnalysisLimit = 0
	setting.MaxDurationSeconds = 0

	if rej := CheckSubmissionGate(setting, user, true, 100000, 100000); rej != nil {
		t.Fatalf("zero limits should be unlimited, got %+v", rej)
	}
}

func TestGateCheckOrder(t *testing.T) {
	// All three checks would fire; the feature switch wins.
	setting, user := gateFixtures()
	setting.TajweedEnabled = false
	setting.MaxDurationSeconds = 1
	setting.DailyAnalysisLimit = 1

	rej := CheckSubmissionGate(setting, user, true, 100, 100)
	if got := gateReason(t, rej); got != GateReasonDisabled {
		t.Fatalf("expected %s first, got %s", GateReasonDisabled, got)
	}

	// With the switch on, duration beats quota.
	setting.TajweedEnabled = true
	rej = CheckSubmissionGate(setting, user, true, 100, 100)
	if got := gateReason(t, rej); got != GateReasonDurationLimit {
		t.Fatalf("expected %s before quota, got %s", GateReasonDurationLimit, got)
	}
}
