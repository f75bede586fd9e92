package handler

import (
	"github.com/gin-gonic/gin"

	"course-ops/backend/internal/dto"
	"course-ops/backend/internal/service"
	"course-ops/backend/pkg/response"
)

// SemesterHandler semester endpoints
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler creates a SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// ListSemesters lists every semester, newest first
// GET /api/v1/semesters
func (h *SemesterHandler) ListSemesters(c *gin.Context) {
	semesters, err := h.semesterSvc.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": semesters})
}

// GetSemester returns one semester
// GET /api/v1/semesters/:id
func (h *SemesterHandler) GetSemester(c *gin.Context) {
	semester, err := h.semesterSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, semester)
}

// GetCurrentSemester returns the active semester
// GET /api/v1/semesters/current
func (h *SemesterHandler) GetCurrentSemester(c *gin.Context) {
	semester, err := h.semesterSvc.GetCurrent(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, semester)
}

// CreateSemester creates a semester
// POST /api/v1/semesters
func (h *SemesterHandler) CreateSemester(c *gin.Context) {
	var req dto.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	semester, err := h.semesterSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, semester)
}

// ActivateSemester makes the semester the only active one
// PUT /api/v1/semesters/:id/activate
func (h *SemesterHandler) ActivateSemester(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.semesterSvc.Activate(c.Request.Context(), p, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
