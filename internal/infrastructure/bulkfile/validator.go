package bulkfile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// RowValidator validates parsed rows against a schema.
// Every rule runs on every row; a failing check never stops the
// remaining checks for that row or the remaining rows.
type RowValidator struct {
	schema    Schema
	maxErrors int
}

// NewRowValidator creates a validator for the given schema.
// maxErrors caps the flattened error total; zero means no cap.
func NewRowValidator(schema Schema, maxErrors int) *RowValidator {
	return &RowValidator{
		schema:    schema,
		maxErrors: maxErrors,
	}
}

// Validate checks the whole table. Missing required columns are fatal
// and reported as a MissingColumnsError; everything else accumulates
// per row into the result.
func (v *RowValidator) Validate(table *Table) (*ValidationResult, error) {
	var missing []string
	for _, col := range v.schema.RequiredColumns() {
		if !table.HasHeader(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	result := &ValidationResult{
		TotalRows: len(table.Rows),
		Warnings:  append([]RowWarning(nil), table.Warnings...),
	}
	collection := NewErrorCollection(v.maxErrors)

	for _, row := range table.Rows {
		rowErrors := v.validateRow(row)
		if len(rowErrors) == 0 {
			result.ValidRows = append(result.ValidRows, row)
			result.ValidIndex = append(result.ValidIndex, row.Index)
			continue
		}
		result.InvalidRows = append(result.InvalidRows, InvalidRow{
			Row:    row.Index,
			Errors: rowErrors,
		})
		for _, re := range rowErrors {
			collection.Add(re)
		}
	}

	result.IsTruncated = collection.IsTruncated()
	result.TotalErrors = collection.TotalCount()
	return result, nil
}

func (v *RowValidator) validateRow(row *Row) []RowError {
	var errs []RowError
	for _, rule := range v.schema.Rules {
		if err := v.validateField(row, rule); err != nil {
			errs = append(errs, *err)
		}
	}
	for _, check := range v.schema.CrossChecks {
		errs = append(errs, check(row)...)
	}
	return errs
}

func (v *RowValidator) validateField(row *Row, rule FieldRule) *RowError {
	value := strings.TrimSpace(row.Get(rule.Column))
	if value == "" {
		if rule.Required {
			err := NewRowError(row.Index, rule.Column, ErrCodeImportRequiredField,
				fmt.Sprintf("field '%s' is required", rule.Column))
			return &err
		}
		return nil
	}

	switch rule.Type {
	case TypeString:
		if rule.MaxLength > 0 && len(value) > rule.MaxLength {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidFormat,
				fmt.Sprintf("field '%s' exceeds maximum length of %d", rule.Column, rule.MaxLength), value)
			return &err
		}
	case TypeEmail:
		if !emailRe.MatchString(value) {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidFormat,
				fmt.Sprintf("'%s' is not a valid email address", value), value)
			return &err
		}
	case TypeEnum:
		if !containsFold(rule.Allowed, value) {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidEnum,
				fmt.Sprintf("'%s' is not one of: %s", value, strings.Join(rule.Allowed, ", ")), value)
			return &err
		}
	case TypeDate:
		if _, perr := ParseDate(value); perr != nil {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidType,
				fmt.Sprintf("'%s' is not a valid date", value), value)
			return &err
		}
	case TypeDecimal:
		num, perr := decimal.NewFromString(value)
		if perr != nil {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidType,
				fmt.Sprintf("'%s' is not a valid number", value), value)
			return &err
		}
		if rule.MinValue != nil && num.LessThan(*rule.MinValue) {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidRange,
				fmt.Sprintf("field '%s' must be at least %s", rule.Column, rule.MinValue.String()), value)
			return &err
		}
		if rule.MaxValue != nil && num.GreaterThan(*rule.MaxValue) {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidRange,
				fmt.Sprintf("field '%s' must not exceed %s", rule.Column, rule.MaxValue.String()), value)
			return &err
		}
	case TypeInt:
		num, perr := strconv.Atoi(value)
		if perr != nil {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidType,
				fmt.Sprintf("'%s' is not a valid integer", value), value)
			return &err
		}
		if rule.MinInt != nil && num < *rule.MinInt {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidRange,
				fmt.Sprintf("field '%s' must be at least %d", rule.Column, *rule.MinInt), value)
			return &err
		}
		if rule.MaxInt != nil && num > *rule.MaxInt {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidRange,
				fmt.Sprintf("field '%s' must not exceed %d", rule.Column, *rule.MaxInt), value)
			return &err
		}
	case TypeTime:
		if !clockRe.MatchString(value) {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidFormat,
				fmt.Sprintf("'%s' is not a valid time, expected HH:MM", value), value)
			return &err
		}
	case TypeRange:
		start, end, ok := SplitTimeRange(value)
		if !ok {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidFormat,
				fmt.Sprintf("'%s' is not a valid window, expected HH:MM-HH:MM", value), value)
			return &err
		}
		if end <= start {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportInvalidRange,
				fmt.Sprintf("window '%s' must end after it starts", value), value)
			return &err
		}
	case TypeList:
		items := SplitList(value)
		if rule.MaxItems > 0 && len(items) > rule.MaxItems {
			err := NewRowErrorWithValue(row.Index, rule.Column, ErrCodeImportListTooLong,
				fmt.Sprintf("field '%s' allows at most %d items", rule.Column, rule.MaxItems), value)
			return &err
		}
	}
	return nil
}

// SplitTimeRange parses an "HH:MM-HH:MM" window into its endpoints.
// "HH:MM" strings compare lexicographically in time order.
func SplitTimeRange(value string) (start, end string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(value), "-", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	start, end = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if !clockRe.MatchString(start) || !clockRe.MatchString(end) {
		return "", "", false
	}
	return start, end, true
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
