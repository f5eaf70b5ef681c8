package errors

// ErrorCode is a stable machine-readable code attached to every AppError.
type ErrorCode int32

const (
	ErrorCode_HTTP_OK           ErrorCode = 0
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_FORBIDDEN         ErrorCode = 1006
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1007

	ErrorCode_AUTH_INVALID_TOKEN         ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED         ErrorCode = 2001
	ErrorCode_AUTH_USER_NOT_FOUND        ErrorCode = 2002
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN ErrorCode = 2003
	ErrorCode_AUTH_OAUTH_FAILED          ErrorCode = 2004

	ErrorCode_RECITATION_NOT_FOUND      ErrorCode = 3000
	ErrorCode_ANALYSIS_JOB_NOT_FOUND    ErrorCode = 3001
	ErrorCode_ANALYSIS_DISABLED         ErrorCode = 3002
	ErrorCode_ANALYSIS_QUOTA_EXCEEDED   ErrorCode = 3003
	ErrorCode_ANALYSIS_DURATION_LIMIT   ErrorCode = 3004
	ErrorCode_ANALYSIS_NOT_REPROCESSABLE  ErrorCode = 3005
	ErrorCode_TRANSCRIPTION_FAILED      ErrorCode = 3006
	ErrorCode_ASSIGNMENT_NOT_FOUND      ErrorCode = 3007
	ErrorCode_PLAN_NOT_FOUND            ErrorCode = 4000
	ErrorCode_SRS_ITEM_NOT_FOUND        ErrorCode = 4001
	ErrorCode_SETTINGS_NOT_FOUND        ErrorCode = 5000
	ErrorCode_INTEGRATION_STORAGE       ErrorCode = 6000
	ErrorCode_INTEGRATION_CACHE         ErrorCode = 6001
	ErrorCode_INTEGRATION_EXTERNAL_API  ErrorCode = 6002
	ErrorCode_DB_QUERY_FAILED           ErrorCode = 7000
	ErrorCode_DB_TRANSACTION_FAILED     ErrorCode = 7001
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                    "OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:             "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:          "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:                  "FORBIDDEN",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_AUTH_INVALID_TOKEN:         "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:         "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_USER_NOT_FOUND:        "AUTH_USER_NOT_FOUND",
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN: "AUTH_INVALID_REFRESH_TOKEN",
	ErrorCode_AUTH_OAUTH_FAILED:          "AUTH_OAUTH_FAILED",
	ErrorCode_RECITATION_NOT_FOUND:       "RECITATION_NOT_FOUND",
	ErrorCode_ANALYSIS_JOB_NOT_FOUND:     "ANALYSIS_JOB_NOT_FOUND",
	ErrorCode_ANALYSIS_DISABLED:          "ANALYSIS_DISABLED",
	ErrorCode_ANALYSIS_QUOTA_EXCEEDED:    "ANALYSIS_QUOTA_EXCEEDED",
	ErrorCode_ANALYSIS_DURATION_LIMIT:    "ANALYSIS_DURATION_LIMIT",
	ErrorCode_ANALYSIS_NOT_REPROCESSABLE:   "ANALYSIS_NOT_REPROCESSABLE",
	ErrorCode_TRANSCRIPTION_FAILED:       "TRANSCRIPTION_FAILED",
	ErrorCode_ASSIGNMENT_NOT_FOUND:       "ASSIGNMENT_NOT_FOUND",
	ErrorCode_PLAN_NOT_FOUND:             "PLAN_NOT_FOUND",
	ErrorCode_SRS_ITEM_NOT_FOUND:         "SRS_ITEM_NOT_FOUND",
	ErrorCode_SETTINGS_NOT_FOUND:         "SETTINGS_NOT_FOUND",
	ErrorCode_INTEGRATION_STORAGE:        "INTEGRATION_STORAGE",
	ErrorCode_INTEGRATION_CACHE:          "INTEGRATION_CACHE",
	ErrorCode_INTEGRATION_EXTERNAL_API:   "INTEGRATION_EXTERNAL_API",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
	ErrorCode_DB_TRANSACTION_FAILED:      "DB_TRANSACTION_FAILED",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
