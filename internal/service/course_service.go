package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-ops/backend/internal/dto"
	"course-ops/backend/internal/model"
	"course-ops/backend/internal/repository"
	pkgerrors "course-ops/backend/pkg/errors"
)

// ── course errors ──

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrCourseClosed    = errors.New("course is already completed")
	ErrCourseFull      = errors.New("course has reached its student limit")
	ErrCourseCodeTaken = errors.New("course code already used in this semester")
	ErrMentorInvalid   = errors.New("mentor must be an existing user with the mentor role")
	ErrDeadlineInvalid = errors.New("team_formation_deadline must be an RFC3339 timestamp")
)

// CourseService course catalogue and course closing
type CourseService interface {
	Create(ctx context.Context, p Principal, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error)
	// Complete closes the course and completes every APPROVED enrollment in
	// it, releasing their team memberships, in one transaction.
	Complete(ctx context.Context, p Principal, id string) (*dto.CompleteCourseResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService creates a CourseService
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, p Principal, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	if _, err := s.repo.Semester.GetByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		return nil, err
	}

	mentor, err := s.repo.User.GetByID(ctx, req.MentorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMentorInvalid
		}
		return nil, err
	}
	if mentor.Role != model.RoleMentor {
		return nil, ErrMentorInvalid
	}

	course := &model.Course{
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:           strings.TrimSpace(req.Name),
		SemesterID:     req.SemesterID,
		MentorID:       req.MentorID,
		MaxStudents:    req.MaxStudents,
		TeamMaxMembers: req.TeamMaxMembers,
		Status:         model.CourseUpcoming,
	}
	if req.Status != "" {
		course.Status = req.Status
	}
	if req.TeamFormationDeadline != nil && *req.TeamFormationDeadline != "" {
		deadline, err := time.Parse(time.RFC3339, *req.TeamFormationDeadline)
		if err != nil {
			return nil, ErrDeadlineInvalid
		}
		deadline = deadline.UTC()
		course.TeamFormationDeadline = &deadline
	}
	course.CreatedBy = &p.UserID
	course.UpdatedBy = &p.UserID

	if err := s.repo.Course.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrCourseCodeTaken
		}
		s.logger.Error("create course failed", zap.Error(err))
		return nil, err
	}
	course.Mentor = mentor

	return toCourseResponse(course), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("load course failed", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{
		SemesterID: req.SemesterID,
		MentorID:   req.MentorID,
		Status:     req.Status,
	})
	if err != nil {
		s.logger.Error("list courses failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}
	return result, nil
}

// ────────────────────── Complete ──────────────────────

func (s *courseService) Complete(ctx context.Context, p Principal, id string) (*dto.CompleteCourseResponse, error) {
	completed := 0

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		completed = 0

		// admissions wait on this lock and then see the course closed
		course, err := tx.Course.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
		if !canManageCourse(p, course) {
			return ErrForbidden
		}
		if course.Status == model.CourseCompleted {
			return ErrCourseClosed
		}

		if err := tx.Course.UpdateStatus(ctx, id, model.CourseCompleted, p.UserID); err != nil {
			return err
		}

		approved, err := tx.Enrollment.ListByCourse(ctx, id, model.EnrollmentApproved)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, e := range approved {
			if _, err := tx.Enrollment.GetForUpdate(ctx, e.EnrollmentID); err != nil {
				return err
			}
			err := tx.Enrollment.Transition(ctx, e.EnrollmentID, []string{model.EnrollmentApproved}, repository.EnrollmentTransition{
				To:            model.EnrollmentCompleted,
				CompletedDate: &now,
				UpdatedBy:     p.UserID,
			})
			if err != nil {
				if errors.Is(err, pkgerrors.ErrConcurrencyConflict) {
					continue // cancelled concurrently
				}
				return err
			}
			if err := detachEnrollment(ctx, tx, e.EnrollmentID, p.UserID, s.logger); err != nil {
				return err
			}
			completed++
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error("complete course failed", zap.String("course_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("course completed",
		zap.String("course_id", id),
		zap.Int("completed_enrollments", completed))

	return &dto.CompleteCourseResponse{CourseID: id, CompletedEnrollments: completed}, nil
}

// ── helpers ──

// canManageCourse admins manage every course, mentors only their own.
func canManageCourse(p Principal, course *model.Course) bool {
	return p.IsAdmin() || (p.IsMentor() && course.MentorID == p.UserID)
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	resp := &dto.CourseResponse{
		ID:             c.CourseID,
		Code:           c.Code,
		Name:           c.Name,
		SemesterID:     c.SemesterID,
		MentorID:       c.MentorID,
		MaxStudents:    c.MaxStudents,
		TeamMaxMembers: c.TeamMaxMembers,
		Status:         c.Status,
	}
	if c.Mentor != nil {
		resp.MentorName = c.Mentor.FullName
	}
	if c.TeamFormationDeadline != nil {
		resp.TeamFormationDeadline = formatTime(c.TeamFormationDeadline)
	}
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dto.TimeLayout)
	return &s
}
