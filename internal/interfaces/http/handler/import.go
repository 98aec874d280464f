package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rosterly/backend/internal/application/bulk"
	"github.com/rosterly/backend/internal/infrastructure/bulkfile"
	"github.com/rosterly/backend/internal/interfaces/http/dto"
)

// ImportHandler serves bulk import uploads: dry-run preview, the
// import itself and the run history.
type ImportHandler struct {
	BaseHandler
	coordinator  *bulk.ImportCoordinator
	preview      *bulk.PreviewGenerator
	maxFileSize  int64
	historyLimit int
}

// NewImportHandler creates an ImportHandler
func NewImportHandler(coordinator *bulk.ImportCoordinator, preview *bulk.PreviewGenerator, maxFileSize int64, historyLimit int) *ImportHandler {
	if maxFileSize <= 0 {
		maxFileSize = bulkfile.MaxFileSize
	}
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &ImportHandler{
		coordinator:  coordinator,
		preview:      preview,
		maxFileSize:  maxFileSize,
		historyLimit: historyLimit,
	}
}

// RegisterRoutes registers import routes on the API group
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/import")
	imports.POST("", h.Import)
	imports.POST("/preview", h.Preview)
	imports.GET("/history", h.History)
}

// importForm holds the decoded multipart upload fields
type importForm struct {
	EntityType     string
	FileName       string
	Data           []byte
	ColumnMapping  map[string]string
	UpdateExisting bool
	PreviewRows    int
}

// Preview validates an upload and reports what an import would do,
// without writing anything
func (h *ImportHandler) Preview(c *gin.Context) {
	form, ok := h.readForm(c)
	if !ok {
		return
	}

	result, err := h.preview.Generate(c.Request.Context(), bulk.ImportRequest{
		EntityType:    form.EntityType,
		FileName:      form.FileName,
		Data:          form.Data,
		ColumnMapping: form.ColumnMapping,
		SampleRows:    form.PreviewRows,
	})
	if err != nil {
		h.handleFileError(c, err)
		return
	}
	h.Success(c, result)
}

// Import runs a bulk import. Row-level failures produce a partial
// success response; fatal failures report an error and write nothing.
func (h *ImportHandler) Import(c *gin.Context) {
	form, ok := h.readForm(c)
	if !ok {
		return
	}

	result, err := h.coordinator.Import(c.Request.Context(), bulk.ImportRequest{
		EntityType:     form.EntityType,
		FileName:       form.FileName,
		Data:           form.Data,
		ColumnMapping:  form.ColumnMapping,
		UpdateExisting: form.UpdateExisting,
		CreatedBy:      getActor(c),
	})
	if err != nil {
		h.handleFileError(c, err)
		return
	}
	h.Success(c, result)
}

// History returns the most recent import runs
func (h *ImportHandler) History(c *gin.Context) {
	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	runs, err := h.coordinator.History(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, runs)
}

func (h *ImportHandler) readForm(c *gin.Context) (*importForm, bool) {
	entityType := c.PostForm("entity_type")
	if entityType == "" {
		h.BadRequest(c, "entity_type is required")
		return nil, false
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return nil, false
	}
	defer file.Close()

	if header.Size > h.maxFileSize {
		h.PayloadTooLarge(c, fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxFileSize))
		return nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		h.InternalError(c, "failed to read uploaded file")
		return nil, false
	}
	if int64(len(data)) > h.maxFileSize {
		h.PayloadTooLarge(c, fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxFileSize))
		return nil, false
	}

	form := &importForm{
		EntityType: entityType,
		FileName:   header.Filename,
		Data:       data,
	}

	if raw := c.PostForm("column_mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &form.ColumnMapping); err != nil {
			h.BadRequest(c, "column_mapping must be a JSON object of source to target column names")
			return nil, false
		}
	}
	if raw := c.PostForm("update_existing"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "update_existing must be a boolean")
			return nil, false
		}
		form.UpdateExisting = parsed
	}
	if raw := c.PostForm("preview_rows"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "preview_rows must be a positive integer")
			return nil, false
		}
		form.PreviewRows = parsed
	}
	return form, true
}

// handleFileError maps pipeline failures onto HTTP statuses
func (h *ImportHandler) handleFileError(c *gin.Context, err error) {
	var missing *bulkfile.MissingColumnsError
	switch {
	case errors.Is(err, bulkfile.ErrFileTooLarge):
		h.PayloadTooLarge(c, err.Error())
	case errors.Is(err, bulkfile.ErrUnsupportedFormat):
		h.UnsupportedMedia(c, err.Error())
	case errors.Is(err, bulkfile.ErrEmptyFile),
		errors.Is(err, bulkfile.ErrMissingHeader),
		errors.Is(err, bulkfile.ErrNoDataRows),
		errors.Is(err, bulkfile.ErrUnsupportedEntityType):
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeValidation), dto.ErrCodeValidation, err.Error())
	case errors.As(err, &missing):
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeValidation), dto.ErrCodeValidation, err.Error())
	default:
		h.UnprocessableEntity(c, dto.ErrCodeImportFailed, err.Error())
	}
}
