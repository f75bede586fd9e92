package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"course-ops/backend/internal/service"
	pkgerrors "course-ops/backend/pkg/errors"
	"course-ops/backend/pkg/response"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable maps service outcomes onto the response envelope. The message
// is the sentinel's own text.
var errorTable = []errorMapping{
	// auth & users
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
	{service.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{service.ErrEmailExists, http.StatusConflict, "EMAIL_EXISTS"},
	{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},

	// semesters & courses
	{service.ErrSemesterNotFound, http.StatusNotFound, "SEMESTER_NOT_FOUND"},
	{service.ErrSemesterDateInvalid, http.StatusBadRequest, "VALIDATION_FAILED"},
	{service.ErrCourseNotFound, http.StatusNotFound, "COURSE_NOT_FOUND"},
	{service.ErrCourseClosed, http.StatusConflict, "COURSE_CLOSED"},
	{service.ErrCourseFull, http.StatusConflict, "COURSE_FULL"},
	{service.ErrCourseCodeTaken, http.StatusConflict, "COURSE_CODE_TAKEN"},
	{service.ErrMentorInvalid, http.StatusBadRequest, "VALIDATION_FAILED"},
	{service.ErrDeadlineInvalid, http.StatusBadRequest, "VALIDATION_FAILED"},

	// enrollments
	{service.ErrEnrollmentNotFound, http.StatusNotFound, "ENROLLMENT_NOT_FOUND"},
	{service.ErrDuplicateEnrollment, http.StatusConflict, "DUPLICATE_ENROLLMENT"},
	{service.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},

	// teams
	{service.ErrTeamNotFound, http.StatusNotFound, "TEAM_NOT_FOUND"},
	{service.ErrEnrollmentNotEligible, http.StatusUnprocessableEntity, "ENROLLMENT_NOT_ELIGIBLE"},
	{service.ErrAlreadyInTeam, http.StatusConflict, "ALREADY_IN_TEAM"},
	{service.ErrTeamFull, http.StatusConflict, "TEAM_FULL"},
	{service.ErrNotLeader, http.StatusForbidden, "NOT_LEADER"},
	{service.ErrCannotRemoveLeader, http.StatusUnprocessableEntity, "CANNOT_REMOVE_LEADER"},
	{service.ErrMemberNotFound, http.StatusNotFound, "MEMBER_NOT_FOUND"},
	{service.ErrApplicationNotFound, http.StatusNotFound, "APPLICATION_NOT_FOUND"},
	{service.ErrApplicationExists, http.StatusConflict, "APPLICATION_EXISTS"},
	{service.ErrLeaderCannotLeave, http.StatusUnprocessableEntity, "LEADER_CANNOT_LEAVE"},
	{service.ErrInvalidTeamName, http.StatusBadRequest, "INVALID_TEAM_NAME"},

	// export
	{service.ErrExportNoTeams, http.StatusNotFound, "NO_TEAMS"},
	{service.ErrExportNoDeadline, http.StatusNotFound, "NO_DEADLINE"},
}

// handleServiceError writes the envelope for err. Unknown errors become a
// bare 500 so storage details never reach the client.
func handleServiceError(c *gin.Context, err error) {
	if pkgerrors.IsRetryable(err) {
		response.Conflict(c, "CONCURRENCY_CONFLICT", pkgerrors.ErrConcurrencyConflict.Error())
		return
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			response.Error(c, m.status, m.code, m.err.Error())
			return
		}
	}
	_ = c.Error(err)
	response.InternalError(c)
}

// bindFailed answers a request whose body or query failed validation.
func bindFailed(c *gin.Context, err error) {
	response.BadRequest(c, "VALIDATION_FAILED", err.Error())
}
