// Package apperr defines the typed error taxonomy that crosses every
// service boundary in this repo, per §7. The HTTP layer holds exactly
// one mapping table (StatusFor) instead of ad hoc per-handler status
// codes.
package apperr

// Kind is the error taxonomy category.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindAuthentication      Kind = "authentication"
	KindAuthorization       Kind = "authorization"
	KindNotFound             Kind = "not_found"
	KindStateConflict       Kind = "state_conflict"
	KindConcurrencyConflict Kind = "concurrency_conflict"
	KindInternal            Kind = "internal"
)

// Code identifies the specific error within a Kind, stable for clients
// to switch on (e.g. "BookingOverlap", "SelfBooking").
type Code string

const (
	CodeInvalidField     Code = "invalid_field"
	CodeDuplicateEmail   Code = "duplicate_email"
	CodeBadCredentials   Code = "bad_credentials"
	CodeNotOwner         Code = "not_owner"
	CodeNotParticipant   Code = "not_participant"
	CodeNotAuthorized    Code = "not_authorized"
	CodeItemNotFound     Code = "item_not_found"
	CodeBookingNotFound  Code = "booking_not_found"
	CodeUserNotFound     Code = "user_not_found"
	CodeConvNotFound     Code = "conversation_not_found"
	CodeCategoryNotFound Code = "category_not_found"
	CodeItemInactive     Code = "item_inactive"
	CodeSelfBooking      Code = "self_booking"
	CodeInvalidRange     Code = "invalid_range"
	CodeInvalidTransition Code = "invalid_transition"
	CodeBookingExpired   Code = "booking_expired"
	CodeReviewNotEligible Code = "review_not_eligible"
	CodeBookingOverlap   Code = "booking_overlap"
	CodeDuplicateReview  Code = "duplicate_review"
	CodeConversationRace Code = "conversation_conflict"
	CodeInternal         Code = "internal_error"
)

// Error is the single error type every service in this repo returns
// for anything a caller might need to distinguish.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Fields  map[string]string // field -> reason, for validation errors
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, code Code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, cause: cause}
}

func Validation(code Code, msg string) *Error    { return newErr(KindValidation, code, msg, nil) }
func Authentication(code Code, msg string) *Error { return newErr(KindAuthentication, code, msg, nil) }
func Authorization(code Code, msg string) *Error  { return newErr(KindAuthorization, code, msg, nil) }
func NotFound(code Code, msg string) *Error       { return newErr(KindNotFound, code, msg, nil) }
func StateConflict(code Code, msg string) *Error  { return newErr(KindStateConflict, code, msg, nil) }
func ConcurrencyConflict(code Code, msg string) *Error {
	return newErr(KindConcurrencyConflict, code, msg, nil)
}
func Internal(cause error) *Error {
	return newErr(KindInternal, CodeInternal, "internal server error", cause)
}

// WithField attaches a field-level validation reason, mirroring the
// "%s is required" style messages of the teacher's message catalog
// but structured instead of string-formatted.
func (e *Error) WithField(field, reason string) *Error {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = reason
	return e
}

// Is allows errors.Is(err, apperr.ErrXxx) sentinel-style matching by
// Code, without requiring identical pointers.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel instances for errors.Is comparisons across packages.
var (
	ErrItemNotFound      = NotFound(CodeItemNotFound, "item not found")
	ErrItemInactive      = StateConflict(CodeItemInactive, "item is not active")
	ErrSelfBooking       = StateConflict(CodeSelfBooking, "renter cannot be the item owner")
	ErrInvalidRange      = Validation(CodeInvalidRange, "invalid date range")
	ErrBookingNotFound   = NotFound(CodeBookingNotFound, "booking not found")
	ErrBookingOverlap    = ConcurrencyConflict(CodeBookingOverlap, "booking overlaps an existing reservation")
	ErrInvalidTransition = StateConflict(CodeInvalidTransition, "illegal booking transition")
	ErrBookingExpired    = StateConflict(CodeBookingExpired, "booking approval window has expired")
	ErrNotAuthorized     = Authorization(CodeNotAuthorized, "not authorized to perform this action")
	ErrReviewNotEligible = StateConflict(CodeReviewNotEligible, "booking is not eligible for review")
	ErrDuplicateReview   = ConcurrencyConflict(CodeDuplicateReview, "a review for this booking and direction already exists")
	ErrNotParticipant    = Authorization(CodeNotParticipant, "not a participant of this conversation")
	ErrUserNotFound      = NotFound(CodeUserNotFound, "user not found")
	ErrDuplicateEmail    = Validation(CodeDuplicateEmail, "email already registered")
	ErrBadCredentials    = Authentication(CodeBadCredentials, "invalid email or password")
	ErrCategoryNotFound  = NotFound(CodeCategoryNotFound, "category not found")
	ErrNotOwner          = Authorization(CodeNotOwner, "not the owner of this resource")
)

// StatusFor maps a Kind to its HTTP status code, per §6/§7.
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return 400
	case KindAuthentication:
		return 401
	case KindAuthorization:
		return 403
	case KindNotFound:
		return 404
	case KindStateConflict:
		return 422
	case KindConcurrencyConflict:
		return 409
	default:
		return 500
	}
}

// AsAppError unwraps err into *Error if possible, otherwise wraps it
// as an internal error. Never leaks backend detail for internal
// errors — the caller is responsible for logging cause separately.
func AsAppError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if as(err, &ae) {
		return ae
	}
	return Internal(err)
}

func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
