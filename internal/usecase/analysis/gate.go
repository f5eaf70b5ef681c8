package analysis

import (
	"fmt"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

// Gate rejection reason codes, surfaced verbatim to clients.
const (
	GateReasonDisabled      = "analysis_disabled"
	GateReasonDurationLimit = "duration_limit_exceeded"
	GateReasonQuotaExceeded = "daily_quota_exceeded"
)

// GateRejection is a policy refusal from the submission gate. It is a
// normal outcome rather than an error: the caller reports it to the
// user with a 200 and creates nothing.
type GateRejection struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// CheckSubmissionGate decides whether a recitation may be queued for
// analysis. The checks run in a fixed order so the caller always gets
// the most actionable rejection first: feature switches, then duration,
// then daily quota. Analysis runs only when the org setting, the user's
// override, and the assignment's auto-AI flag all allow it. jobsToday
// is the number of jobs the user already created since local midnight.
// A nil return means the submission may proceed.
func CheckSubmissionGate(setting *entities.OrgSetting, user *entities.User, assignmentAutoAI bool, durationSeconds float64, jobsToday int64) *GateRejection {
	if !setting.AnalysisEnabledFor(user) || !assignmentAutoAI {
		return &GateRejection{
			Reason:  GateReasonDisabled,
			Message: "Tajweed analysis is disabled for this submission",
		}
	}

	if setting.MaxDurationSeconds > 0 && durationSeconds > float64(setting.MaxDurationSeconds) {
		return &GateRejection{
			Reason:  GateReasonDurationLimit,
			Message: fmt.Sprintf("recording exceeds the maximum duration of %d seconds", setting.MaxDurationSeconds),
		}
	}

	if setting.DailyAnalysisLimit > 0 && jobsToday >= int64(setting.DailyAnalysisLimit) {
		return &GateRejection{
			Reason:  GateReasonQuotaExceeded,
			Message: fmt.Sprintf("daily limit of %d analyses reached", setting.DailyAnalysisLimit),
		}
	}

	return nil
}
