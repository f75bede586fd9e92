package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"course-ops/backend/internal/model"
	pkgerrors "course-ops/backend/pkg/errors"
)

// EnrollmentFilter search filters; empty fields are ignored
type EnrollmentFilter struct {
	UserID   string
	CourseID string
	Status   string
}

// EnrollmentTransition describes a status change and the columns it stamps.
type EnrollmentTransition struct {
	To            string
	ApprovedBy    *string
	ApprovedDate  *time.Time
	CompletedDate *time.Time
	CancelledDate *time.Time
	Score         *float64
	Grade         *string
	RejectReason  string
	SoftDelete    bool
	UpdatedBy     string
}

// EnrollmentRepository enrollment data access
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	// GetForUpdate loads the bare enrollment row and holds a row lock on it
	// until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*model.Enrollment, error)
	GetActiveByUserAndCourse(ctx context.Context, userID, courseID string) (*model.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]model.Enrollment, error)
	ListByCourse(ctx context.Context, courseID, status string) ([]model.Enrollment, error)
	ListApprovedByCourses(ctx context.Context, courseIDs []string) ([]model.Enrollment, error)
	Search(ctx context.Context, filter EnrollmentFilter, offset, limit int) ([]model.Enrollment, int64, error)
	// Transition applies t only while the row is still in one of the from
	// states; otherwise it returns pkgerrors.ErrConcurrencyConflict.
	Transition(ctx context.Context, id string, from []string, t EnrollmentTransition) error
	CountActiveByCourse(ctx context.Context, courseID string) (int64, error)
	CountByStatus(ctx context.Context, courseID string) (map[string]int64, error)
	CountApprovedByCourses(ctx context.Context, courseIDs []string) (map[string]int64, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo creates an EnrollmentRepository
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return translateUnique(r.db.WithContext(ctx).Create(enrollment).Error)
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Where("enrollment_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) GetForUpdate(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("enrollment_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) GetActiveByUserAndCourse(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND status IN ? AND NOT is_deleted",
			userID, courseID, []string{model.EnrollmentPending, model.EnrollmentApproved}).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, userID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ? AND NOT is_deleted", userID).
		Order("enrollment_date DESC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListByCourse(ctx context.Context, courseID, status string) ([]model.Enrollment, error) {
	db := r.db.WithContext(ctx).
		Preload("User").
		Where("course_id = ? AND NOT is_deleted", courseID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var list []model.Enrollment
	err := db.Order("enrollment_date ASC").Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListApprovedByCourses(ctx context.Context, courseIDs []string) ([]model.Enrollment, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Where("course_id IN ? AND status = ? AND NOT is_deleted", courseIDs, model.EnrollmentApproved).
		Order("enrollment_date ASC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) Search(ctx context.Context, filter EnrollmentFilter, offset, limit int) ([]model.Enrollment, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Enrollment{}).Where("NOT is_deleted")
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.CourseID != "" {
		db = db.Where("course_id = ?", filter.CourseID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Enrollment
	if err := db.Preload("User").Preload("Course").
		Offset(offset).Limit(limit).
		Order("enrollment_date DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *enrollmentRepo) Transition(ctx context.Context, id string, from []string, t EnrollmentTransition) error {
	updates := map[string]interface{}{
		"status":     t.To,
		"updated_by": t.UpdatedBy,
		"updated_at": gorm.Expr("NOW()"),
	}
	if t.ApprovedBy != nil {
		updates["approved_by"] = *t.ApprovedBy
	}
	if t.ApprovedDate != nil {
		updates["approved_date"] = *t.ApprovedDate
	}
	if t.CompletedDate != nil {
		updates["completed_date"] = *t.CompletedDate
	}
	if t.CancelledDate != nil {
		updates["cancelled_date"] = *t.CancelledDate
	}
	if t.Score != nil {
		updates["score"] = *t.Score
	}
	if t.Grade != nil {
		updates["grade"] = *t.Grade
	}
	if t.RejectReason != "" {
		updates["reject_reason"] = t.RejectReason
	}
	if t.SoftDelete {
		updates["is_deleted"] = true
	}

	result := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("enrollment_id = ? AND status IN ? AND NOT is_deleted", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrConcurrencyConflict
	}
	return nil
}

func (r *enrollmentRepo) CountActiveByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("course_id = ? AND status IN ? AND NOT is_deleted",
			courseID, []string{model.EnrollmentPending, model.EnrollmentApproved}).
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepo) CountByStatus(ctx context.Context, courseID string) (map[string]int64, error) {
	db := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("NOT is_deleted")
	if courseID != "" {
		db = db.Where("course_id = ?", courseID)
	}

	var rows []groupCount
	if err := db.Select("status AS key, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}

func (r *enrollmentRepo) CountApprovedByCourses(ctx context.Context, courseIDs []string) (map[string]int64, error) {
	if len(courseIDs) == 0 {
		return map[string]int64{}, nil
	}
	var rows []groupCount
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Select("course_id AS key, COUNT(*) AS count").
		Where("course_id IN ? AND status = ? AND NOT is_deleted", courseIDs, model.EnrollmentApproved).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}
