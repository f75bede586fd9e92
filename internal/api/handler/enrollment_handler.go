package handler

import (
	"github.com/gin-gonic/gin"

	"course-ops/backend/internal/dto"
	"course-ops/backend/internal/service"
	"course-ops/backend/pkg/response"
)

// EnrollmentHandler enrollment workflow endpoints
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler creates an EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// ────────────────────── queries ──────────────────────

// GetEnrollment returns one enrollment
// GET /api/v1/enrollments/:id
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentSvc.GetByID(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// ListMyEnrollments lists the caller's enrollments
// GET /api/v1/enrollments/me
func (h *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.enrollmentSvc.ListByUser(c.Request.Context(), p, p.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListCourseEnrollments lists a course's enrollments, optionally by status
// GET /api/v1/courses/:id/enrollments?status=
func (h *EnrollmentHandler) ListCourseEnrollments(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.enrollmentSvc.ListByCourse(c.Request.Context(), p, c.Param("id"), c.Query("status"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// SearchEnrollments pages enrollments by user, course and status
// GET /api/v1/enrollments?user_id=&course_id=&status=&page=&page_size=
func (h *EnrollmentHandler) SearchEnrollments(c *gin.Context) {
	var req dto.EnrollmentSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, total, err := h.enrollmentSvc.Search(c.Request.Context(), p, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ────────────────────── workflow ──────────────────────

// CreateEnrollment enrolls the caller, or user_id when an admin asks
// POST /api/v1/enrollments
func (h *EnrollmentHandler) CreateEnrollment(c *gin.Context) {
	var req dto.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, enrollment)
}

// ApproveEnrollment PENDING → APPROVED
// PUT /api/v1/enrollments/:id/approve
func (h *EnrollmentHandler) ApproveEnrollment(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentSvc.Approve(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// RejectEnrollment PENDING → REJECTED
// PUT /api/v1/enrollments/:id/reject
func (h *EnrollmentHandler) RejectEnrollment(c *gin.Context) {
	var req dto.RejectEnrollmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentSvc.Reject(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// CompleteEnrollment APPROVED → COMPLETED with optional score and grade
// PUT /api/v1/enrollments/:id/complete
func (h *EnrollmentHandler) CompleteEnrollment(c *gin.Context) {
	var req dto.CompleteEnrollmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentSvc.Complete(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// CancelEnrollment withdraws the enrollment
// DELETE /api/v1/enrollments/:id
func (h *EnrollmentHandler) CancelEnrollment(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.enrollmentSvc.Cancel(c.Request.Context(), p, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
