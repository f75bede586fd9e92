package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"course-ops/backend/internal/service"
)

const (
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	calendarContentType = "text/calendar; charset=utf-8"
)

// ExportHandler file export endpoints
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCourseTeams downloads the course's team roster
// GET /api/v1/export/courses/:id/teams
func (h *ExportHandler) ExportCourseTeams(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportCourseTeams(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportFormationDeadline downloads the course's team formation deadline
// as an iCalendar event
// GET /api/v1/export/courses/:id/deadline.ics
func (h *ExportHandler) ExportFormationDeadline(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportFormationDeadline(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, calendarContentType, buf.Bytes())
}
