package service

import (
	"errors"

	pkgerrors "course-ops/backend/pkg/errors"
)

// domainErrors are business outcomes handed back to the caller as-is; they
// are not storage failures and are never logged at error level.
var domainErrors = []error{
	ErrInvalidCredentials, ErrUserNotFound, ErrInvalidToken,
	ErrEmailExists, ErrForbidden,
	ErrSemesterNotFound, ErrSemesterDateInvalid,
	ErrCourseNotFound, ErrCourseClosed, ErrCourseFull, ErrCourseCodeTaken, ErrMentorInvalid, ErrDeadlineInvalid,
	ErrEnrollmentNotFound, ErrDuplicateEnrollment, ErrInvalidTransition,
	ErrTeamNotFound, ErrEnrollmentNotEligible, ErrAlreadyInTeam, ErrTeamFull, ErrNotLeader,
	ErrCannotRemoveLeader, ErrMemberNotFound, ErrApplicationNotFound, ErrApplicationExists,
	ErrLeaderCannotLeave, ErrInvalidTeamName,
	ErrExportNoTeams, ErrExportNoDeadline,
	pkgerrors.ErrConcurrencyConflict,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
