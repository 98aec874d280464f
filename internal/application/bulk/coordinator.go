package bulk

import (
	"context"
	"fmt"

	"github.com/rosterly/backend/internal/domain/shared"
	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/rosterly/backend/internal/infrastructure/bulkfile"
	"go.uber.org/zap"
)

// ImportRequest describes one bulk import call
type ImportRequest struct {
	EntityType     string            `json:"entity_type"`
	FileName       string            `json:"file_name"`
	Data           []byte            `json:"-"`
	ColumnMapping  map[string]string `json:"column_mapping,omitempty"`
	UpdateExisting bool              `json:"update_existing"`
	CreatedBy      string            `json:"created_by,omitempty"`
	// SampleRows shrinks the preview sample below the configured
	// size. Ignored by Import.
	SampleRows int `json:"sample_rows,omitempty"`
}

// ImportResult is the partial-success outcome of an import call.
// Created+Updated+Skipped always equals TotalRows; every skipped row
// has exactly one entry in Errors (subject to the error cap).
type ImportResult struct {
	EntityType  string                 `json:"entity_type"`
	FileName    string                 `json:"file_name"`
	TotalRows   int                    `json:"total_rows"`
	Created     int                    `json:"created"`
	Updated     int                    `json:"updated"`
	Skipped     int                    `json:"skipped"`
	Errors      []bulkfile.RowError    `json:"errors,omitempty"`
	Warnings    []bulkfile.RowWarning  `json:"warnings,omitempty"`
	IsTruncated bool                   `json:"is_truncated,omitempty"`
	TotalErrors int                    `json:"total_errors,omitempty"`
	Duplicates  *DuplicateReport      `json:"-"`
}

// importOptions carries the per-call knobs down to entity importers
type importOptions struct {
	UpdateExisting bool
	CreatedBy      string
}

// entityImporter persists the valid rows of one entity type. It runs
// inside the coordinator's transaction: a returned error aborts and
// rolls back the whole import.
type entityImporter interface {
	importRows(ctx context.Context, rows []*bulkfile.Row, report *DuplicateReport, opts importOptions, errs *bulkfile.ErrorCollection, result *ImportResult) error
}

// ImportCoordinator drives the bulk import pipeline: file validation,
// parsing, schema validation, duplicate detection and transactional
// persistence. Valid rows are imported even when other rows fail;
// store-level failures roll back everything.
type ImportCoordinator struct {
	employees workforce.EmployeeRepository
	schedules workforce.ScheduleRepository
	history   workforce.ImportRunRepository
	detector  *DuplicateDetector
	tx        shared.TransactionManager
	logger    *zap.Logger
	maxErrors int
}

// NewImportCoordinator creates an import coordinator.
// maxErrors caps the reported error list; zero means the default cap.
func NewImportCoordinator(
	employees workforce.EmployeeRepository,
	schedules workforce.ScheduleRepository,
	history workforce.ImportRunRepository,
	tx shared.TransactionManager,
	logger *zap.Logger,
	maxErrors int,
) *ImportCoordinator {
	return &ImportCoordinator{
		employees: employees,
		schedules: schedules,
		history:   history,
		detector:  NewDuplicateDetector(employees, schedules),
		tx:        tx,
		logger:    logger.Named("import"),
		maxErrors: maxErrors,
	}
}

// Import runs the whole pipeline for one uploaded file. Fatal problems
// (bad file, missing columns, store failure) return an error and leave
// the store untouched; row-level problems only skip their rows.
func (c *ImportCoordinator) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	entity, err := ParseEntityType(req.EntityType)
	if err != nil {
		return nil, err
	}

	validation, err := c.validate(entity, req)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		EntityType: string(entity),
		FileName:   req.FileName,
		TotalRows:  validation.TotalRows,
		Skipped:    validation.InvalidCount(),
		Warnings:   validation.Warnings,
	}
	// One error entry per skipped row, so the caller can rely on
	// len(errors) matching the skip count.
	collection := bulkfile.NewErrorCollection(c.maxErrors)
	for _, rowErr := range validation.LeadErrors() {
		collection.Add(rowErr)
	}

	importer := c.importerFor(entity)
	opts := importOptions{
		UpdateExisting: req.UpdateExisting,
		CreatedBy:      req.CreatedBy,
	}

	err = c.tx.Transaction(ctx, func(ctx context.Context) error {
		report, err := c.detect(ctx, entity, validation.ValidRows)
		if err != nil {
			return err
		}
		result.Duplicates = report

		if err := importer.importRows(ctx, validation.ValidRows, report, opts, collection, result); err != nil {
			return err
		}

		run := workforce.NewImportRun(string(entity), req.FileName,
			result.TotalRows, result.Created, result.Updated, result.Skipped, req.CreatedBy)
		return c.history.Save(ctx, run)
	})
	if err != nil {
		c.logger.Error("import rolled back",
			zap.String("entity", string(entity)),
			zap.String("file", req.FileName),
			zap.Error(err))
		return nil, fmt.Errorf("import failed, no rows were written: %w", err)
	}

	result.Errors = collection.Errors()
	result.IsTruncated = collection.IsTruncated()
	result.TotalErrors = collection.TotalCount()

	c.logger.Info("import finished",
		zap.String("entity", string(entity)),
		zap.String("file", req.FileName),
		zap.Int("total", result.TotalRows),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

// validate runs the non-writing stages: whole-file checks, parsing,
// column mapping and schema validation
func (c *ImportCoordinator) validate(entity EntityType, req ImportRequest) (*bulkfile.ValidationResult, error) {
	info, err := bulkfile.Validate(req.Data, req.FileName)
	if err != nil {
		return nil, err
	}

	table, err := bulkfile.Parse(req.Data, info)
	if err != nil {
		return nil, err
	}
	table.ApplyColumnMapping(req.ColumnMapping)

	schema, err := SchemaFor(entity)
	if err != nil {
		return nil, err
	}
	return bulkfile.NewRowValidator(schema, c.maxErrors).Validate(table)
}

func (c *ImportCoordinator) detect(ctx context.Context, entity EntityType, rows []*bulkfile.Row) (*DuplicateReport, error) {
	switch entity {
	case EntityEmployees:
		return c.detector.DetectEmployees(ctx, rows)
	case EntitySchedules:
		return c.detector.DetectSchedules(ctx, rows)
	default:
		return &DuplicateReport{}, nil
	}
}

func (c *ImportCoordinator) importerFor(entity EntityType) entityImporter {
	switch entity {
	case EntitySchedules:
		return &scheduleImporter{employees: c.employees, schedules: c.schedules}
	default:
		return &employeeImporter{repo: c.employees}
	}
}

// History returns the most recent import runs
func (c *ImportCoordinator) History(ctx context.Context, limit int) ([]workforce.ImportRun, error) {
	return c.history.FindRecent(ctx, limit)
}
