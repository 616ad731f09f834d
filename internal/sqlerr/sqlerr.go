// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the database driver and
// converts them into user-friendly messages (e.g., converting
// a "foreign key violation" into a "Bad Request" error)
package sqlerr

import "fmt"

// Code is a driver-independent category for a database error.
type Code string

const (
	Other                     Code = "other"
	NotNullViolation          Code = "not_null_violation"
	ForeignKeyViolation       Code = "foreign_key_violation"
	UniqueViolation           Code = "unique_violation"
	CheckViolation            Code = "check_violation"
	ExclusionViolation        Code = "exclusion_violation"
	SerializationFailure      Code = "serialization_failure"
	DeadlockDetected          Code = "deadlock_detected"
	InvalidTextRepresentation Code = "invalid_text_representation"
)

// Severity mirrors the Postgres error severity levels.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a normalized database error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (SQLSTATE %s)", e.Severity, e.Message, e.DatabaseCode)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// pgCodes maps Postgres SQLSTATE codes onto Code.
var pgCodes = map[string]Code{
	"23502": NotNullViolation,
	"23503": ForeignKeyViolation,
	"23505": UniqueViolation,
	"23514": CheckViolation,
	"23P01": ExclusionViolation,
	"40001": SerializationFailure,
	"40P01": DeadlockDetected,
	"22P02": InvalidTextRepresentation,
}

// MapCode maps a SQLSTATE code onto Code.
func MapCode(code string) Code {
	if c, ok := pgCodes[code]; ok {
		return c
	}
	return Other
}

// MapSeverity maps a Postgres severity string onto Severity.
func MapSeverity(severity string) Severity {
	switch s := Severity(severity); s {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return s
	default:
		return SeverityError
	}
}

// NoRowsError is a missing row annotated with the table it was read from.
type NoRowsError struct {
	Table string
	err   error
}

func (e *NoRowsError) Error() string {
	return fmt.Sprintf("%s: %v", e.Table, e.err)
}

func (e *NoRowsError) Unwrap() error {
	return e.err
}

// WrapNoRows tags err with its table so HandleError can answer
// "<Entity> not found".
func WrapNoRows(table string, err error) error {
	return &NoRowsError{Table: table, err: err}
}
