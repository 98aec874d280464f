package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterly/backend/internal/application/export"
	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/rosterly/backend/internal/infrastructure/bulkfile"
	"github.com/rosterly/backend/internal/interfaces/http/middleware"
)

// ExportHandler serves downloadable exports of employees and schedules
type ExportHandler struct {
	BaseHandler
	service *export.Service
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(service *export.Service) *ExportHandler {
	return &ExportHandler{service: service}
}

// RegisterRoutes registers export routes on the API group
func (h *ExportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export/:entity", h.Export)
}

// exportQuery holds the bound filter parameters
type exportQuery struct {
	Format     string `form:"format,default=csv"`
	Department string `form:"department"`
	Role       string `form:"role" binding:"omitempty,oneof=manager chef cook server host bartender cleaner"`
	Search     string `form:"search"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
}

// Export renders one entity in the requested format and streams it as
// an attachment. Format defaults to csv.
func (h *ExportHandler) Export(c *gin.Context) {
	entity, err := export.ParseEntity(c.Param("entity"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var query exportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	format, err := export.ParseFormat(query.Format)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter, err := buildExportFilter(query)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	artifact, err := h.service.Export(c.Request.Context(), entity, format, filter)
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			h.BadRequest(c, err.Error())
			return
		}
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, artifact.FileName))
	c.Data(200, artifact.ContentType, artifact.Bytes)
}

// buildExportFilter converts the bound query into a store filter.
// Dates accept the same formats as import files.
func buildExportFilter(query exportQuery) (workforce.ExportFilter, error) {
	filter := workforce.ExportFilter{
		Department: query.Department,
		Role:       query.Role,
		Search:     query.Search,
	}

	parse := func(name, raw string) (*time.Time, error) {
		if raw == "" {
			return nil, nil
		}
		date, err := bulkfile.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return &date, nil
	}

	var err error
	if filter.DateFrom, err = parse("date_from", query.DateFrom); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parse("date_to", query.DateTo); err != nil {
		return filter, err
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return filter, errors.New("date_to must not be before date_from")
	}
	return filter, nil
}
