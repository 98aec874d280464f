package bulkfile

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType represents the expected type of a field
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeEmail   FieldType = "email"
	TypeEnum    FieldType = "enum"
	TypeDate    FieldType = "date"
	TypeDecimal FieldType = "decimal"
	TypeInt     FieldType = "int"
	TypeTime    FieldType = "time"
	TypeRange   FieldType = "time_range"
	TypeList    FieldType = "list"
)

// DateFormats are tried in order; the first successful parse wins
var DateFormats = []string{
	"2006-01-02", // ISO
	"01/02/2006", // US
	"02-Jan-2006",
}

// ParseDate parses a date string against the known formats
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date '%s'", s)
}

// ListSeparator splits multi-value fields like qualifications
const ListSeparator = ";"

// SplitList splits a list field into trimmed, non-empty items
func SplitList(s string) []string {
	var items []string
	for _, part := range strings.Split(s, ListSeparator) {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

// FieldRule defines validation for a single column
type FieldRule struct {
	Column    string
	Type      FieldType
	Required  bool
	MaxLength int
	MinValue  *decimal.Decimal
	MaxValue  *decimal.Decimal
	MinInt    *int
	MaxInt    *int
	Allowed   []string
	MaxItems  int
}

// FieldRuleBuilder builds field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field creates a new field rule builder
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{
		rule: FieldRule{
			Column: column,
			Type:   TypeString,
		},
	}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// String sets the field type to string
func (b *FieldRuleBuilder) String() *FieldRuleBuilder {
	b.rule.Type = TypeString
	return b
}

// Email sets the field type to email
func (b *FieldRuleBuilder) Email() *FieldRuleBuilder {
	b.rule.Type = TypeEmail
	return b
}

// Enum sets the field type to enum with the allowed values
func (b *FieldRuleBuilder) Enum(allowed ...string) *FieldRuleBuilder {
	b.rule.Type = TypeEnum
	b.rule.Allowed = allowed
	return b
}

// Date sets the field type to date
func (b *FieldRuleBuilder) Date() *FieldRuleBuilder {
	b.rule.Type = TypeDate
	return b
}

// Decimal sets the field type to decimal
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// Int sets the field type to integer
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Time sets the field type to an "HH:MM" clock time
func (b *FieldRuleBuilder) Time() *FieldRuleBuilder {
	b.rule.Type = TypeTime
	return b
}

// TimeRange sets the field type to an "HH:MM-HH:MM" window
func (b *FieldRuleBuilder) TimeRange() *FieldRuleBuilder {
	b.rule.Type = TypeRange
	return b
}

// List sets the field type to a separated list with a max item count
func (b *FieldRuleBuilder) List(maxItems int) *FieldRuleBuilder {
	b.rule.Type = TypeList
	b.rule.MaxItems = maxItems
	return b
}

// MaxLength sets the maximum string length
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// Range sets inclusive decimal bounds
func (b *FieldRuleBuilder) Range(min, max decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &min
	b.rule.MaxValue = &max
	return b
}

// IntRange sets inclusive integer bounds
func (b *FieldRuleBuilder) IntRange(min, max int) *FieldRuleBuilder {
	b.rule.MinInt = &min
	b.rule.MaxInt = &max
	return b
}

// Build returns the built field rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// CrossCheck validates relationships between fields of one row.
// It runs after per-field checks and returns any violations.
type CrossCheck func(row *Row) []RowError

// Schema is the immutable validation definition for one entity type.
// It is injected per call rather than read from shared state.
type Schema struct {
	Entity      string
	Rules       []FieldRule
	CrossChecks []CrossCheck
}

// RequiredColumns returns the columns that must exist in the header
func (s Schema) RequiredColumns() []string {
	var cols []string
	for _, r := range s.Rules {
		if r.Required {
			cols = append(cols, r.Column)
		}
	}
	return cols
}

// ExpectedColumns returns every column the schema knows about
func (s Schema) ExpectedColumns() []string {
	cols := make([]string, 0, len(s.Rules))
	for _, r := range s.Rules {
		cols = append(cols, r.Column)
	}
	return cols
}
