package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs fn inside a single database transaction. fn receives a
// Repository bound to that transaction; returning an error rolls back.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *Repository) error) error
}

// Repository aggregates every repository.
type Repository struct {
	User            UserRepository
	Semester        SemesterRepository
	Course          CourseRepository
	Enrollment      EnrollmentRepository
	Team            TeamRepository
	TeamApplication TeamApplicationRepository

	Tx Transactor
}

// NewRepository builds the gorm-backed aggregate.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:            NewUserRepo(db),
		Semester:        NewSemesterRepo(db),
		Course:          NewCourseRepo(db),
		Enrollment:      NewEnrollmentRepo(db),
		Team:            NewTeamRepo(db),
		TeamApplication: NewTeamApplicationRepo(db),
		Tx:              &gormTransactor{db: db},
	}
}

// Transaction delegates to the configured Transactor.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.Tx.Transaction(ctx, fn)
}

type gormTransactor struct {
	db *gorm.DB
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
