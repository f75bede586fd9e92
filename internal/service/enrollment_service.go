package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-ops/backend/internal/dto"
	"course-ops/backend/internal/model"
	"course-ops/backend/internal/repository"
	pkgerrors "course-ops/backend/pkg/errors"
)

// ── enrollment errors ──

var (
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrDuplicateEnrollment = errors.New("an active enrollment for this course already exists")
	ErrInvalidTransition   = errors.New("enrollment status does not allow this transition")
)

// EnrollmentService enrollment approval workflow.
//
//	PENDING  --approve-->  APPROVED --complete--> COMPLETED
//	PENDING  --reject--->  REJECTED
//	PENDING | APPROVED --cancel--> CANCELLED
//
// Leaving APPROVED releases the student's team membership in the same
// transaction.
type EnrollmentService interface {
	Create(ctx context.Context, p Principal, req *dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error)
	GetByID(ctx context.Context, p Principal, id string) (*dto.EnrollmentResponse, error)
	ListByUser(ctx context.Context, p Principal, userID string) ([]dto.EnrollmentResponse, error)
	ListByCourse(ctx context.Context, p Principal, courseID, status string) ([]dto.EnrollmentResponse, error)
	Search(ctx context.Context, p Principal, req *dto.EnrollmentSearchRequest) ([]dto.EnrollmentResponse, int64, error)

	Approve(ctx context.Context, p Principal, id string) (*dto.EnrollmentResponse, error)
	Reject(ctx context.Context, p Principal, id string, req *dto.RejectEnrollmentRequest) (*dto.EnrollmentResponse, error)
	Complete(ctx context.Context, p Principal, id string, req *dto.CompleteEnrollmentRequest) (*dto.EnrollmentResponse, error)
	// Cancel withdraws the enrollment. Students cancel their own; an admin
	// cancelling someone else's enrollment also soft-deletes it.
	Cancel(ctx context.Context, p Principal, id string) error
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEnrollmentService creates an EnrollmentService
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *enrollmentService) Create(ctx context.Context, p Principal, req *dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	userID := p.UserID
	if req.UserID != "" && req.UserID != p.UserID {
		if !p.IsAdmin() {
			return nil, ErrForbidden
		}
		userID = req.UserID
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Role != model.RoleStudent {
		return nil, ErrForbidden
	}

	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("load course failed", zap.String("course_id", req.CourseID), zap.Error(err))
		return nil, err
	}

	enrollment := &model.Enrollment{
		UserID:         userID,
		CourseID:       course.CourseID,
		Status:         model.EnrollmentPending,
		EnrollmentDate: time.Now().UTC(),
	}
	enrollment.CreatedBy = &p.UserID
	enrollment.UpdatedBy = &p.UserID

	// admissions to one course serialise on its row lock, so the seat count
	// cannot move between the check and the insert
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		locked, err := tx.Course.GetForUpdate(ctx, course.CourseID)
		if err != nil {
			return err
		}
		if locked.Status == model.CourseCompleted {
			return ErrCourseClosed
		}

		if _, err := tx.Enrollment.GetActiveByUserAndCourse(ctx, userID, course.CourseID); err == nil {
			return ErrDuplicateEnrollment
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if locked.MaxStudents > 0 {
			active, err := tx.Enrollment.CountActiveByCourse(ctx, course.CourseID)
			if err != nil {
				return err
			}
			if active >= int64(locked.MaxStudents) {
				return ErrCourseFull
			}
		}

		// the partial unique index settles concurrent duplicate requests
		if err := tx.Enrollment.Create(ctx, enrollment); err != nil {
			if errors.Is(err, repository.ErrActiveEnrollmentExists) {
				return ErrDuplicateEnrollment
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error("create enrollment failed",
				zap.String("user_id", userID),
				zap.String("course_id", course.CourseID),
				zap.Error(err))
		}
		return nil, err
	}

	enrollment.User = user
	enrollment.Course = course
	return toEnrollmentResponse(enrollment), nil
}

// ────────────────────── queries ──────────────────────

func (s *enrollmentService) GetByID(ctx context.Context, p Principal, id string) (*dto.EnrollmentResponse, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != p.UserID && !canManageCourse(p, e.Course) {
		return nil, ErrForbidden
	}
	return toEnrollmentResponse(e), nil
}

func (s *enrollmentService) ListByUser(ctx context.Context, p Principal, userID string) ([]dto.EnrollmentResponse, error) {
	if userID != p.UserID && !p.IsAdmin() && !p.IsMentor() {
		return nil, ErrForbidden
	}

	list, err := s.repo.Enrollment.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("list enrollments by user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toEnrollmentResponses(list), nil
}

func (s *enrollmentService) ListByCourse(ctx context.Context, p Principal, courseID, status string) ([]dto.EnrollmentResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !canManageCourse(p, course) {
		return nil, ErrForbidden
	}

	list, err := s.repo.Enrollment.ListByCourse(ctx, courseID, status)
	if err != nil {
		s.logger.Error("list enrollments by course failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return toEnrollmentResponses(list), nil
}

func (s *enrollmentService) Search(ctx context.Context, p Principal, req *dto.EnrollmentSearchRequest) ([]dto.EnrollmentResponse, int64, error) {
	if !p.IsAdmin() && !p.IsMentor() {
		return nil, 0, ErrForbidden
	}

	list, total, err := s.repo.Enrollment.Search(ctx, repository.EnrollmentFilter{
		UserID:   req.UserID,
		CourseID: req.CourseID,
		Status:   req.Status,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("search enrollments failed", zap.Error(err))
		return nil, 0, err
	}
	return toEnrollmentResponses(list), total, nil
}

// ────────────────────── Approve ──────────────────────

func (s *enrollmentService) Approve(ctx context.Context, p Principal, id string) (*dto.EnrollmentResponse, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageCourse(p, e.Course) {
		return nil, ErrForbidden
	}
	if e.Status != model.EnrollmentPending || e.IsDeleted {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	err = s.repo.Enrollment.Transition(ctx, id, []string{model.EnrollmentPending}, repository.EnrollmentTransition{
		To:           model.EnrollmentApproved,
		ApprovedBy:   &p.UserID,
		ApprovedDate: &now,
		UpdatedBy:    p.UserID,
	})
	if err != nil {
		return nil, s.transitionError(err, id, "approve")
	}

	s.logger.Info("enrollment approved", zap.String("enrollment_id", id), zap.String("approved_by", p.UserID))
	return s.reload(ctx, id)
}

// ────────────────────── Reject ──────────────────────

func (s *enrollmentService) Reject(ctx context.Context, p Principal, id string, req *dto.RejectEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageCourse(p, e.Course) {
		return nil, ErrForbidden
	}
	if e.Status != model.EnrollmentPending || e.IsDeleted {
		return nil, ErrInvalidTransition
	}

	t := repository.EnrollmentTransition{
		To:        model.EnrollmentRejected,
		UpdatedBy: p.UserID,
	}
	if req != nil {
		t.RejectReason = req.Reason
	}
	if err := s.repo.Enrollment.Transition(ctx, id, []string{model.EnrollmentPending}, t); err != nil {
		return nil, s.transitionError(err, id, "reject")
	}

	s.logger.Info("enrollment rejected", zap.String("enrollment_id", id), zap.String("rejected_by", p.UserID))
	return s.reload(ctx, id)
}

// ────────────────────── Complete ──────────────────────

func (s *enrollmentService) Complete(ctx context.Context, p Principal, id string, req *dto.CompleteEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageCourse(p, e.Course) {
		return nil, ErrForbidden
	}
	if e.Status != model.EnrollmentApproved || e.IsDeleted {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	t := repository.EnrollmentTransition{
		To:            model.EnrollmentCompleted,
		CompletedDate: &now,
		UpdatedBy:     p.UserID,
	}
	if req != nil {
		t.Score = req.Score
		t.Grade = req.Grade
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Enrollment.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if err := tx.Enrollment.Transition(ctx, id, []string{model.EnrollmentApproved}, t); err != nil {
			return err
		}
		return detachEnrollment(ctx, tx, id, p.UserID, s.logger)
	})
	if err != nil {
		return nil, s.transitionError(err, id, "complete")
	}

	s.logger.Info("enrollment completed", zap.String("enrollment_id", id))
	return s.reload(ctx, id)
}

// ────────────────────── Cancel ──────────────────────

func (s *enrollmentService) Cancel(ctx context.Context, p Principal, id string) error {
	e, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	own := e.UserID == p.UserID
	if !own && !p.IsAdmin() {
		return ErrForbidden
	}
	if !e.IsActive() {
		return ErrInvalidTransition
	}

	now := time.Now().UTC()
	t := repository.EnrollmentTransition{
		To:            model.EnrollmentCancelled,
		CancelledDate: &now,
		SoftDelete:    !own,
		UpdatedBy:     p.UserID,
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// team Create and Apply hold this lock while they check eligibility
		if _, err := tx.Enrollment.GetForUpdate(ctx, id); err != nil {
			return err
		}
		from := []string{model.EnrollmentPending, model.EnrollmentApproved}
		if err := tx.Enrollment.Transition(ctx, id, from, t); err != nil {
			return err
		}
		return detachEnrollment(ctx, tx, id, p.UserID, s.logger)
	})
	if err != nil {
		return s.transitionError(err, id, "cancel")
	}

	s.logger.Info("enrollment cancelled",
		zap.String("enrollment_id", id),
		zap.Bool("deleted", t.SoftDelete))
	return nil
}

// ── helpers ──

func (s *enrollmentService) load(ctx context.Context, id string) (*model.Enrollment, error) {
	e, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("load enrollment failed", zap.String("enrollment_id", id), zap.Error(err))
		return nil, err
	}
	if e.Course == nil {
		course, err := s.repo.Course.GetByID(ctx, e.CourseID)
		if err != nil {
			return nil, err
		}
		e.Course = course
	}
	return e, nil
}

func (s *enrollmentService) reload(ctx context.Context, id string) (*dto.EnrollmentResponse, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEnrollmentResponse(e), nil
}

// transitionError maps a lost status race onto ErrInvalidTransition: by the
// time the update ran the enrollment had already left the source state.
func (s *enrollmentService) transitionError(err error, id, op string) error {
	if errors.Is(err, pkgerrors.ErrConcurrencyConflict) {
		return ErrInvalidTransition
	}
	if isDomainError(err) {
		return err
	}
	s.logger.Error("enrollment transition failed",
		zap.String("enrollment_id", id),
		zap.String("op", op),
		zap.Error(err))
	return err
}

func toEnrollmentResponses(list []model.Enrollment) []dto.EnrollmentResponse {
	result := make([]dto.EnrollmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toEnrollmentResponse(&list[i]))
	}
	return result
}

func toEnrollmentResponse(e *model.Enrollment) *dto.EnrollmentResponse {
	resp := &dto.EnrollmentResponse{
		ID:             e.EnrollmentID,
		UserID:         e.UserID,
		CourseID:       e.CourseID,
		Status:         e.Status,
		EnrollmentDate: e.EnrollmentDate.UTC().Format(dto.TimeLayout),
		ApprovedDate:   formatTime(e.ApprovedDate),
		ApprovedBy:     e.ApprovedBy,
		CompletedDate:  formatTime(e.CompletedDate),
		Score:          e.Score,
		Grade:          e.Grade,
		RejectReason:   e.RejectReason,
		IsDeleted:      e.IsDeleted,
	}
	if e.User != nil {
		resp.FullName = e.User.FullName
	}
	if e.Course != nil {
		resp.CourseCode = e.Course.Code
	}
	return resp
}
