package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/pickboard/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode reports the Code of the first *Error in err's chain, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError converts a raw Postgres error into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode builds a machine code like PROFILE_ALREADY_EXISTS from
// the table name and violation type.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(singular(tableName))

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)
	case UniqueViolation:
		// "identifier" is swapped for the column name when it can be inferred.
		return fmt.Sprintf("A %s with this identifier already exists", entityName)
	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)
	case CheckViolation:
		if fieldName := humanizeText(sqlErr.ColumnName); fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"
	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName prefers a foreign-key column ("author_id" -> "Author") and
// falls back to the singular table name.
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(columnName), "_id"))
	}
	if tableName != "" {
		return humanizeText(singular(tableName))
	}
	return "record"
}

// singular crudely drops a trailing "s": notes -> note, profiles -> profile.
func singular(s string) string {
	if len(s) > 1 && (strings.HasSuffix(s, "s") || strings.HasSuffix(s, "S")) {
		return s[:len(s)-1]
	}
	return s
}

func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var constraintKeyRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// extractColumnForUniqueViolation infers the column from a constraint name
// following either "unique_<table>_<column>" or "<table>_<column>_key".
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		if parts := strings.Split(constraintName, "_"); len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := constraintKeyRe.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// HandleError converts a low-level database error into an *errs.HTTPError.
// An *errs.HTTPError passes through unchanged and anything unrecognised
// becomes a generic 500.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return constraintError(ConvertPgError(pgerr))
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		var noRows *NoRowsError
		if errors.As(err, &noRows) {
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", getEntityName(noRows.Table, "")), true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}

func constraintError(sqlErr *Error) error {
	code := generateErrorCode(sqlErr.TableName, sqlErr.Code)
	message := formatUserFriendlyMessage(sqlErr)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return errs.NewBadRequestError(message, false, &code, nil, nil)

	case UniqueViolation:
		if column := extractColumnForUniqueViolation(sqlErr.ConstraintName); column != "" {
			message = strings.ReplaceAll(message, "identifier", humanizeText(column))
		}
		return errs.NewConflictError(message, true, &code)

	case NotNullViolation:
		return errs.NewBadRequestError(message, true, &code, []errs.FieldError{{
			Field: strings.ToLower(sqlErr.ColumnName),
			Error: "is required",
		}}, nil)

	case CheckViolation:
		return errs.NewBadRequestError(message, true, &code, nil, nil)

	case InvalidTextRepresentation:
		return errs.NewBadRequestError("Invalid identifier format", false, nil, nil, nil)

	default:
		return errs.NewInternalServerError()
	}
}
