package domain

import "fmt"

// ErrorKind groups workflow failures by how a caller can recover from them.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindPrecondition
	KindAuthorization
	KindNotFound
	KindUnauthenticated
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a categorized workflow failure. Two errors with the same Code
// match under errors.Is regardless of the attached detail.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// With returns a copy of e carrying extra context in its message.
func (e *Error) With(format string, args ...any) *Error {
	return &Error{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message + ": " + fmt.Sprintf(format, args...),
	}
}

func newError(kind ErrorKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrPINRequired   = newError(KindValidation, "PIN_REQUIRED", "PIN is required")
	ErrMissingFields = newError(KindValidation, "MISSING_FIELDS", "trade and PIN are required")
	ErrInvalidTrade  = newError(KindValidation, "INVALID_TRADE", "unknown trade")
	ErrAERequired    = newError(KindValidation, "AE_REQUIRED", "at least AE (Air Engineer) must be assigned")
	ErrInvalidInput  = newError(KindValidation, "INVALID_INPUT", "invalid input")

	ErrAlreadyAuthenticated = newError(KindPrecondition, "ALREADY_AUTHENTICATED", "FSI has already authenticated")
	ErrFSINotAuthenticated  = newError(KindPrecondition, "FSI_NOT_AUTHENTICATED", "FSI must authenticate first")
	ErrPersonnelNotAssigned = newError(KindPrecondition, "PERSONNEL_NOT_ASSIGNED", "personnel must be assigned first")
	ErrSupervisorNotNeeded  = newError(KindPrecondition, "SUPERVISOR_NOT_REQUIRED", "supervisor signature not required")
	ErrFSINotInitialized    = newError(KindPrecondition, "FSI_NOT_INITIALIZED", "FSI must complete initial authentication first")
	ErrBFSClosed            = newError(KindPrecondition, "BFS_CLOSED", "BFS record is already FSI approved")
	ErrSignaturesIncomplete = newError(KindPrecondition, "SIGNATURES_INCOMPLETE", "assigned personnel have not signed")
	ErrAlreadySigned        = newError(KindPrecondition, "ALREADY_SIGNED", "slot is already signed")
	ErrBFSNotApproved       = newError(KindPrecondition, "BFS_NOT_APPROVED", "BFS record is not FSI approved")
	ErrAcceptanceExists     = newError(KindPrecondition, "ACCEPTANCE_EXISTS", "BFS record already has a pilot acceptance")
	ErrAcceptanceClosed     = newError(KindPrecondition, "ACCEPTANCE_CLOSED", "pilot acceptance is no longer pending")
	ErrNotAccepted          = newError(KindPrecondition, "ACCEPTANCE_NOT_ACCEPTED", "pilot acceptance is not accepted")
	ErrPostFlightExists     = newError(KindPrecondition, "POST_FLIGHT_EXISTS", "pilot acceptance already has a post flying record")
	ErrPostFlightClosed     = newError(KindPrecondition, "POST_FLIGHT_CLOSED", "post flying record is already closed")

	ErrTradeUnassigned      = newError(KindAuthorization, "TRADE_UNASSIGNED", "no user assigned")
	ErrSupervisorUnassigned = newError(KindAuthorization, "UNASSIGNED", "no supervisor assigned")
	ErrInvalidPIN           = newError(KindAuthorization, "INVALID_PIN", "invalid PIN")

	ErrNotFound = newError(KindNotFound, "NOT_FOUND", "record not found")

	ErrUnauthenticated    = newError(KindUnauthenticated, "UNAUTHENTICATED", "authentication required")
	ErrInvalidCredentials = newError(KindUnauthenticated, "INVALID_CREDENTIALS", "invalid credentials")

	ErrRecordBusy = newError(KindConflict, "RECORD_BUSY", "record is being modified by another request")
)

// NotFound reports a missing record of the given kind.
func NotFound(kind string, id any) *Error {
	return ErrNotFound.With("%s %v", kind, id)
}
