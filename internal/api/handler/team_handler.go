package handler

import (
	"github.com/gin-gonic/gin"

	"course-ops/backend/internal/dto"
	"course-ops/backend/internal/service"
	"course-ops/backend/pkg/response"
)

// TeamHandler team formation endpoints.
//
// Mutations name the caller's enrollment in the course (enrollment_id), in
// the JSON body for POST/PUT and in the query string for DELETE/GET.
type TeamHandler struct {
	teamSvc service.TeamService
}

// NewTeamHandler creates a TeamHandler
func NewTeamHandler(teamSvc service.TeamService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc}
}

// ────────────────────── teams ──────────────────────

// CreateTeam founds a team led by the caller's enrollment
// POST /api/v1/teams
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, team)
}

// GetTeam returns a team with its members
// GET /api/v1/teams/:id
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, err := h.teamSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, team)
}

// ListCourseTeams lists a course's teams
// GET /api/v1/courses/:id/teams
func (h *TeamHandler) ListCourseTeams(c *gin.Context) {
	teams, err := h.teamSvc.ListByCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": teams})
}

// UpdateTeamName renames the team (leader only)
// PUT /api/v1/teams/:id/name
func (h *TeamHandler) UpdateTeamName(c *gin.Context) {
	var req dto.UpdateTeamNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.UpdateName(c.Request.Context(), p, c.Param("id"), req.EnrollmentID, req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, team)
}

// DisbandTeam deletes the team (leader only)
// DELETE /api/v1/teams/:id?enrollment_id=
func (h *TeamHandler) DisbandTeam(c *gin.Context) {
	var req dto.ActingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.teamSvc.Disband(c.Request.Context(), p, c.Param("id"), req.EnrollmentID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// TransferLeadership hands the LEADER role to another member
// PUT /api/v1/teams/:id/leader
func (h *TeamHandler) TransferLeadership(c *gin.Context) {
	var req dto.TransferLeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.TransferLeadership(c.Request.Context(), p, c.Param("id"), req.EnrollmentID, req.TargetEnrollmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, team)
}

// ────────────────────── members ──────────────────────

// RemoveMember removes a member (leader only)
// DELETE /api/v1/teams/:id/members/:enrollmentId?enrollment_id=
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	var req dto.ActingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.RemoveMember(c.Request.Context(), p, c.Param("id"), req.EnrollmentID, c.Param("enrollmentId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, team)
}

// LeaveTeam removes the caller from the team
// POST /api/v1/teams/:id/leave
func (h *TeamHandler) LeaveTeam(c *gin.Context) {
	var req dto.ActingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	deleted, err := h.teamSvc.Leave(c.Request.Context(), p, c.Param("id"), req.EnrollmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"team_deleted": deleted})
}

// ────────────────────── applications ──────────────────────

// Apply requests to join the team
// POST /api/v1/teams/:id/applications
func (h *TeamHandler) Apply(c *gin.Context) {
	var req dto.ActingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	app, err := h.teamSvc.Apply(c.Request.Context(), p, c.Param("id"), req.EnrollmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, app)
}

// ListApplications lists the team's applications (leader only)
// GET /api/v1/teams/:id/applications?enrollment_id=&status=
func (h *TeamHandler) ListApplications(c *gin.Context) {
	var req dto.ActingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	apps, err := h.teamSvc.ListApplications(c.Request.Context(), p, c.Param("id"), req.EnrollmentID, c.Query("status"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": apps})
}

// ApproveApplication admits the applicant (leader only)
// PUT /api/v1/teams/:id/applications/:appId/approve
func (h *TeamHandler) ApproveApplication(c *gin.Context) {
	var req dto.ActingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.ApproveApplication(c.Request.Context(), p, c.Param("id"), req.EnrollmentID, c.Param("appId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, team)
}

// RejectApplication declines the applicant (leader only)
// PUT /api/v1/teams/:id/applications/:appId/reject
func (h *TeamHandler) RejectApplication(c *gin.Context) {
	var req dto.ActingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.teamSvc.RejectApplication(c.Request.Context(), p, c.Param("id"), req.EnrollmentID, c.Param("appId")); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// WithdrawApplication cancels the caller's own pending application
// DELETE /api/v1/applications/:appId?enrollment_id=
func (h *TeamHandler) WithdrawApplication(c *gin.Context) {
	var req dto.ActingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.teamSvc.WithdrawApplication(c.Request.Context(), p, c.Param("appId"), req.EnrollmentID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// MyApplications lists the applications made with an enrollment
// GET /api/v1/enrollments/:id/applications
func (h *TeamHandler) MyApplications(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	apps, err := h.teamSvc.MyApplications(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": apps})
}
