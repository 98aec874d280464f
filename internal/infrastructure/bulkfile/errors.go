package bulkfile

import (
	"errors"
	"fmt"
	"strings"
)

// Row-level error codes. Whole-file problems never get a row code;
// they surface as the fatal sentinel errors below.
const (
	ErrCodeImportValidation      = "ERR_IMPORT_VALIDATION"
	ErrCodeImportRequiredField   = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType     = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidFormat   = "ERR_IMPORT_INVALID_FORMAT"
	ErrCodeImportInvalidRange    = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeImportInvalidEnum     = "ERR_IMPORT_INVALID_ENUM"
	ErrCodeImportListTooLong     = "ERR_IMPORT_LIST_TOO_LONG"
	ErrCodeImportCrossField      = "ERR_IMPORT_CROSS_FIELD"
	ErrCodeImportDuplicateInFile = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeImportDuplicateInDB   = "ERR_IMPORT_DUPLICATE_IN_DB"
	ErrCodeImportOverlap         = "ERR_IMPORT_OVERLAP"
)

// Fatal import errors: these abort the whole call with no partial effect
var (
	// ErrEmptyFile is returned for a zero-length upload
	ErrEmptyFile = errors.New("file is empty")

	// ErrFileTooLarge is returned when the upload exceeds the size ceiling
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

	// ErrUnsupportedFormat is returned when the content signature or
	// extension is not a supported spreadsheet format
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("file missing header row")

	// ErrNoDataRows is returned when the file contains a header but no data
	ErrNoDataRows = errors.New("file contains no data rows")

	// ErrUnsupportedEntityType is returned for an unknown import target
	ErrUnsupportedEntityType = errors.New("unsupported entity type")
)

// MissingColumnsError is the fatal schema error raised when required
// columns are entirely absent from the header row. Per-value problems
// never raise this; they accumulate as RowErrors instead.
type MissingColumnsError struct {
	Columns []string
}

// Error implements the error interface
func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required columns missing: %s", strings.Join(e.Columns, ", "))
}

// RowError represents a non-fatal error in a specific row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
	}
}

// NewRowErrorWithValue creates a new RowError carrying the offending value
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
		Value:   value,
	}
}

// RowWarning is advisory only; warnings never block persistence
type RowWarning struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// ErrorCollection accumulates row errors up to a cap. The total count
// keeps growing past the cap so callers can report truncation.
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates an ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// Errors returns the collected errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// Count returns the number of collected errors (up to the cap)
func (ec *ErrorCollection) Count() int {
	return len(ec.errors)
}

// TotalCount returns the total number of errors including truncated ones
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if any error was recorded
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated returns true if some errors were dropped due to the cap
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// String returns a readable summary of all collected errors
func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) found", ec.totalCount))
	if ec.IsTruncated() {
		sb.WriteString(fmt.Sprintf(" (showing first %d)", ec.maxErrors))
	}
	sb.WriteString(":\n")

	for _, err := range ec.errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}

	return sb.String()
}

// InvalidRow groups the errors recorded for one data row
type InvalidRow struct {
	Row    int        `json:"row"`
	Errors []RowError `json:"errors"`
}

// ValidationResult is the per-call outcome of schema validation:
// which data rows passed, which failed and why. A row with at least
// one error is invalid and excluded from persistence; validation
// never stops at the first bad row.
type ValidationResult struct {
	TotalRows   int          `json:"total_rows"`
	ValidRows   []*Row       `json:"-"`
	ValidIndex  []int        `json:"valid_row_indices"`
	InvalidRows []InvalidRow `json:"invalid_rows,omitempty"`
	Warnings    []RowWarning `json:"warnings,omitempty"`
	IsTruncated bool         `json:"is_truncated,omitempty"`
	TotalErrors int          `json:"total_errors,omitempty"`
}

// AllErrors flattens the per-row errors in row order
func (vr *ValidationResult) AllErrors() []RowError {
	var out []RowError
	for _, inv := range vr.InvalidRows {
		out = append(out, inv.Errors...)
	}
	return out
}

// LeadErrors returns one error per invalid row: the first recorded
// problem stands in for the row, so callers reporting a skip count can
// keep exactly one error entry per skipped row.
func (vr *ValidationResult) LeadErrors() []RowError {
	out := make([]RowError, 0, len(vr.InvalidRows))
	for _, inv := range vr.InvalidRows {
		if len(inv.Errors) > 0 {
			out = append(out, inv.Errors[0])
		}
	}
	return out
}

// InvalidCount returns the number of invalid rows
func (vr *ValidationResult) InvalidCount() int {
	return len(vr.InvalidRows)
}

// IsValid returns true when every row passed
func (vr *ValidationResult) IsValid() bool {
	return len(vr.InvalidRows) == 0
}
