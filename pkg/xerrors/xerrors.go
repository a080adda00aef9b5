package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Code classifies a settlement failure for callers. Codes are stable and
// surfaced in API responses; messages are not.
type Code string

const (
	CodeUnauthenticated    Code = "unauthenticated"
	CodeInvalidArgument    Code = "invalid_argument"
	CodeFailedPrecondition Code = "failed_precondition"
	CodeAborted            Code = "aborted"
	CodeInternal           Code = "internal"
)

// SettlementError carries a taxonomy code alongside the message shown to the
// caller. Wrapped causes stay server-side.
type SettlementError struct {
	Code Code
	Msg  string
	Err  error
}

func (e *SettlementError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *SettlementError) Unwrap() error { return e.Err }

func New(code Code, msg string) *SettlementError {
	return &SettlementError{Code: code, Msg: msg}
}

func Wrap(code Code, msg string, err error) *SettlementError {
	return &SettlementError{Code: code, Msg: msg, Err: err}
}

// CodeOf extracts the taxonomy code from err, defaulting to internal.
func CodeOf(err error) Code {
	var se *SettlementError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeInternal
}

// Ledger / lifecycle
var (
	ErrTipNotFound      = errors.New("tip not found")
	ErrAlreadySettled   = errors.New("tip already in a terminal state")
	ErrCreatorNotFound  = errors.New("creator not found")
	ErrSessionNotFound  = errors.New("session not found or expired")
	ErrDuplicateTxRef   = errors.New("duplicate transaction reference")
	ErrProviderDeclined = errors.New("payment provider declined the charge")
)

const uniqueViolation = "23505"

func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return "unknown"
}

// IsUniqueViolation reports whether err is a Postgres duplicate-key error.
func IsUniqueViolation(err error) bool {
	return ParsePGErrorCode(err) == uniqueViolation
}
