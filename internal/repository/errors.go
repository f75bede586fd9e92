package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Unique-constraint violations surfaced as domain-meaningful errors.
var (
	ErrActiveEnrollmentExists   = errors.New("active enrollment already exists")
	ErrTeamMembershipExists     = errors.New("student already belongs to a team in this course")
	ErrPendingApplicationExists = errors.New("student already has a pending application in this course")
	ErrDuplicateKey             = errors.New("duplicate key")
)

const pgUniqueViolation = "23505"

// translateUnique maps PostgreSQL unique violations onto the sentinels above
// using the constraint names declared in the migrations.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "uq_enrollments_active":
		return ErrActiveEnrollmentExists
	case "uq_team_members_course_user", "uq_team_members_enrollment":
		return ErrTeamMembershipExists
	case "uq_team_applications_pending":
		return ErrPendingApplicationExists
	default:
		return ErrDuplicateKey
	}
}
