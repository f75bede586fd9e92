package handler

import (
	"github.com/gin-gonic/gin"

	"course-ops/backend/internal/dto"
	"course-ops/backend/internal/service"
	"course-ops/backend/pkg/response"
)

// CourseHandler course endpoints
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler creates a CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses lists courses by semester, mentor or status
// GET /api/v1/courses?semester_id=&mentor_id=&status=
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	courses, err := h.courseSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// GetCourse returns one course
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, course)
}

// CreateCourse creates a course
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, course)
}

// CompleteCourse closes the course and completes its approved enrollments
// PUT /api/v1/courses/:id/complete
func (h *CourseHandler) CompleteCourse(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.courseSvc.Complete(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}
