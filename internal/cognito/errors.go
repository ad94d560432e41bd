package cognito

import "errors"

// Sentinel errors for Cognito operations.
var (
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotConfirmed      = errors.New("user not confirmed")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrInvalidCode           = errors.New("invalid code")
	ErrCodeExpired           = errors.New("code expired")
	ErrTooManyRequests       = errors.New("too many requests")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrLimitExceeded         = errors.New("limit exceeded")
	ErrPasswordResetRequired = errors.New("password reset required")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrMFAMethodNotFound     = errors.New("mfa method not found")
	ErrSoftwareTokenMismatch = errors.New("software token mismatch")
)

// Outcome is the tagged result of password-reset operations where the
// provider's expected failure modes are part of the normal control flow.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeResetSent
	OutcomeResetComplete
	OutcomeConfirmed
	OutcomeInvalidUser
	OutcomeInvalidToken
	OutcomeInvalidPassword
	OutcomeExceeded
)

var outcomeNames = map[Outcome]string{
	OutcomeSuccess:         "SUCCESS",
	OutcomeResetSent:       "RESET_SENT",
	OutcomeResetComplete:   "RESET_COMPLETE",
	OutcomeConfirmed:       "CONFIRMED",
	OutcomeInvalidUser:     "INVALID_USER",
	OutcomeInvalidToken:    "INVALID_TOKEN",
	OutcomeInvalidPassword: "INVALID_PASSWORD",
	OutcomeExceeded:        "EXCEEDED",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}

// OK reports whether the outcome represents a completed operation.
func (o Outcome) OK() bool {
	switch o {
	case OutcomeSuccess, OutcomeResetSent, OutcomeResetComplete, OutcomeConfirmed:
		return true
	}
	return false
}

// ErrorInfo maps a sentinel error to its HTTP status and error code.
type ErrorInfo struct {
	Status int
	Code   string
}

// errorMap maps sentinel errors to their HTTP status codes and error codes.
var errorMap = map[error]ErrorInfo{
	ErrUserAlreadyExists:     {Status: 409, Code: "USER_ALREADY_EXISTS"},
	ErrUserNotFound:          {Status: 404, Code: "USER_NOT_FOUND"},
	ErrUserNotConfirmed:      {Status: 403, Code: "USER_NOT_CONFIRMED"},
	ErrInvalidPassword:       {Status: 400, Code: "INVALID_PASSWORD"},
	ErrInvalidCode:           {Status: 400, Code: "INVALID_CODE"},
	ErrCodeExpired:           {Status: 400, Code: "CODE_EXPIRED"},
	ErrTooManyRequests:       {Status: 429, Code: "TOO_MANY_REQUESTS"},
	ErrNotAuthorized:         {Status: 401, Code: "NOT_AUTHORIZED"},
	ErrLimitExceeded:         {Status: 429, Code: "LIMIT_EXCEEDED"},
	ErrPasswordResetRequired: {Status: 403, Code: "PASSWORD_RESET_REQUIRED"},
	ErrInvalidParameter:      {Status: 400, Code: "INVALID_PARAMETER"},
	ErrMFAMethodNotFound:     {Status: 400, Code: "MFA_METHOD_NOT_FOUND"},
	ErrSoftwareTokenMismatch: {Status: 400, Code: "SOFTWARE_TOKEN_MISMATCH"},
}

// LookupError checks if the given error matches any known Cognito sentinel
// error and returns the corresponding ErrorInfo. Returns false if no match.
func LookupError(err error) (ErrorInfo, bool) {
	for sentinel, info := range errorMap {
		if errors.Is(err, sentinel) {
			return info, true
		}
	}
	return ErrorInfo{}, false
}
