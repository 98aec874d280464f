package bulk

import (
	"context"

	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/rosterly/backend/internal/infrastructure/bulkfile"
)

// DefaultPreviewRows is the sample size when no limit is configured
const DefaultPreviewRows = 10

// ColumnDiagnostics compares the uploaded header row against the
// entity schema, after column mapping has been applied
type ColumnDiagnostics struct {
	Expected []string `json:"expected"`
	Found    []string `json:"found"`
	Missing  []string `json:"missing,omitempty"`
	Extra    []string `json:"extra,omitempty"`
}

// PreviewRow is one sampled data row with its validity verdict
type PreviewRow struct {
	Index  int               `json:"index"`
	Values map[string]string `json:"values"`
	Valid  bool              `json:"valid"`
}

// Preview is the dry-run report for an uploaded file. Producing it
// never writes to the store, so the same file can be previewed any
// number of times before importing.
type Preview struct {
	EntityType  string                `json:"entity_type"`
	File        bulkfile.FileInfo     `json:"file"`
	Columns     ColumnDiagnostics     `json:"columns"`
	Sample      []PreviewRow          `json:"sample"`
	TotalRows   int                   `json:"total_rows"`
	ValidRows   int                   `json:"valid_rows"`
	InvalidRows int                   `json:"invalid_rows"`
	Errors      []bulkfile.RowError   `json:"errors,omitempty"`
	Warnings    []bulkfile.RowWarning `json:"warnings,omitempty"`
	IsTruncated bool                  `json:"is_truncated,omitempty"`
	TotalErrors int                   `json:"total_errors,omitempty"`
	Duplicates  *DuplicateReport      `json:"duplicates,omitempty"`
}

// PreviewGenerator runs the validation and duplicate detection stages
// of the import pipeline without persisting anything
type PreviewGenerator struct {
	detector   *DuplicateDetector
	maxErrors  int
	sampleSize int
}

// NewPreviewGenerator creates a preview generator. sampleSize bounds
// the number of rows echoed back; zero means the default.
func NewPreviewGenerator(
	employees workforce.EmployeeRepository,
	schedules workforce.ScheduleRepository,
	maxErrors int,
	sampleSize int,
) *PreviewGenerator {
	if sampleSize <= 0 {
		sampleSize = DefaultPreviewRows
	}
	return &PreviewGenerator{
		detector:   NewDuplicateDetector(employees, schedules),
		maxErrors:  maxErrors,
		sampleSize: sampleSize,
	}
}

// Generate produces the dry-run report for one uploaded file. Fatal
// file problems (oversize, unreadable, missing required columns)
// return an error exactly as the import call would.
func (g *PreviewGenerator) Generate(ctx context.Context, req ImportRequest) (*Preview, error) {
	entity, err := ParseEntityType(req.EntityType)
	if err != nil {
		return nil, err
	}
	schema, err := SchemaFor(entity)
	if err != nil {
		return nil, err
	}

	info, err := bulkfile.Validate(req.Data, req.FileName)
	if err != nil {
		return nil, err
	}
	table, err := bulkfile.Parse(req.Data, info)
	if err != nil {
		return nil, err
	}
	// Column diagnostics describe the file as uploaded, so they are
	// taken from the header row before any mapping is applied.
	rawHeaders := append([]string(nil), table.Headers...)
	table.ApplyColumnMapping(req.ColumnMapping)

	validation, err := bulkfile.NewRowValidator(schema, g.maxErrors).Validate(table)
	if err != nil {
		return nil, err
	}

	report, err := g.detect(ctx, entity, validation.ValidRows)
	if err != nil {
		return nil, err
	}

	collection := bulkfile.NewErrorCollection(g.maxErrors)
	for _, rowErr := range validation.AllErrors() {
		collection.Add(rowErr)
	}

	preview := &Preview{
		EntityType:  string(entity),
		File:        info,
		Columns:     diagnoseColumns(schema, rawHeaders),
		Sample:      g.sampleRows(table, validation, req.SampleRows),
		TotalRows:   validation.TotalRows,
		ValidRows:   len(validation.ValidRows),
		InvalidRows: validation.InvalidCount(),
		Errors:      collection.Errors(),
		Warnings:    validation.Warnings,
		IsTruncated: collection.IsTruncated(),
		TotalErrors: collection.TotalCount(),
	}
	if report.HasConflicts() {
		preview.Duplicates = report
	}
	return preview, nil
}

func (g *PreviewGenerator) detect(ctx context.Context, entity EntityType, rows []*bulkfile.Row) (*DuplicateReport, error) {
	switch entity {
	case EntityEmployees:
		return g.detector.DetectEmployees(ctx, rows)
	case EntitySchedules:
		return g.detector.DetectSchedules(ctx, rows)
	default:
		return &DuplicateReport{}, nil
	}
}

// diagnoseColumns reports how the file's raw headers line up with the
// schema, untouched by any column mapping. Missing lists only schema
// columns the file lacks entirely; required ones among them would have
// failed validation already.
func diagnoseColumns(schema bulkfile.Schema, headers []string) ColumnDiagnostics {
	diag := ColumnDiagnostics{
		Expected: schema.ExpectedColumns(),
		Found:    headers,
	}
	present := map[string]bool{}
	for _, h := range headers {
		present[h] = true
	}
	known := map[string]bool{}
	for _, col := range diag.Expected {
		known[col] = true
		if !present[col] {
			diag.Missing = append(diag.Missing, col)
		}
	}
	for _, h := range headers {
		if !known[h] {
			diag.Extra = append(diag.Extra, h)
		}
	}
	return diag
}

// sampleRows echoes back the first rows of the file with a per-row
// validity verdict. requested can shrink the sample below the
// configured size but never grow it.
func (g *PreviewGenerator) sampleRows(table *bulkfile.Table, validation *bulkfile.ValidationResult, requested int) []PreviewRow {
	valid := make(map[int]bool, len(validation.ValidRows))
	for _, row := range validation.ValidRows {
		valid[row.Index] = true
	}

	limit := g.sampleSize
	if requested > 0 && requested < limit {
		limit = requested
	}
	if limit > len(table.Rows) {
		limit = len(table.Rows)
	}
	sample := make([]PreviewRow, 0, limit)
	for _, row := range table.Rows[:limit] {
		sample = append(sample, PreviewRow{
			Index:  row.Index,
			Values: row.Data,
			Valid:  valid[row.Index],
		})
	}
	return sample
}
