package handler

import (
	"github.com/gin-gonic/gin"

	"course-ops/backend/internal/service"
	"course-ops/backend/pkg/response"
)

// ReportHandler reporting endpoints
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler creates a ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Dashboard system-wide counters
// GET /api/v1/reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	result, err := h.reportSvc.Dashboard(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// StudentsByMentor students with an approved enrollment in the mentor's courses
// GET /api/v1/reports/mentors/:id/students?semester_id=
func (h *ReportHandler) StudentsByMentor(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.reportSvc.StudentsByMentor(c.Request.Context(), p, c.Param("id"), c.Query("semester_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// MentorPerformance one mentor's team formation figures
// GET /api/v1/reports/mentors/:id/performance?semester_id=
func (h *ReportHandler) MentorPerformance(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.reportSvc.MentorPerformance(c.Request.Context(), p, c.Param("id"), c.Query("semester_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// AllMentorPerformance figures for every mentor
// GET /api/v1/reports/mentor-performance?semester_id=
func (h *ReportHandler) AllMentorPerformance(c *gin.Context) {
	list, err := h.reportSvc.AllMentorPerformance(c.Request.Context(), c.Query("semester_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CourseStatistics enrollment and team figures for a course
// GET /api/v1/reports/courses/:id
func (h *ReportHandler) CourseStatistics(c *gin.Context) {
	result, err := h.reportSvc.CourseStatistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// TeamFormationRate share of approved students placed in a team
// GET /api/v1/reports/courses/:id/team-formation-rate
func (h *ReportHandler) TeamFormationRate(c *gin.Context) {
	result, err := h.reportSvc.TeamFormationRate(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// TeamStatistics team figures, optionally for one course
// GET /api/v1/reports/teams?course_id=
func (h *ReportHandler) TeamStatistics(c *gin.Context) {
	result, err := h.reportSvc.TeamStatistics(c.Request.Context(), c.Query("course_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// EnrollmentStatistics enrollment counts per status, optionally for one course
// GET /api/v1/reports/enrollments?course_id=
func (h *ReportHandler) EnrollmentStatistics(c *gin.Context) {
	result, err := h.reportSvc.EnrollmentStatistics(c.Request.Context(), c.Query("course_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}
