package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"course-ops/backend/internal/model"
)

// CourseFilter optional list filters; empty fields are ignored
type CourseFilter struct {
	SemesterID string
	MentorID   string
	Status     string
}

// CourseRepository course data access
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	// GetForUpdate row-locks the course; enrollment admission serialises on it.
	GetForUpdate(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]model.Course, error)
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo creates a CourseRepository
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return translateUnique(r.db.WithContext(ctx).Create(course).Error)
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Preload("Mentor").
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetForUpdate(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) List(ctx context.Context, filter CourseFilter) ([]model.Course, error) {
	db := r.db.WithContext(ctx).Model(&model.Course{})
	if filter.SemesterID != "" {
		db = db.Where("semester_id = ?", filter.SemesterID)
	}
	if filter.MentorID != "" {
		db = db.Where("mentor_id = ?", filter.MentorID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	var courses []model.Course
	err := db.Preload("Mentor").Order("code ASC").Find(&courses).Error
	return courses, err
}

func (r *courseRepo) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *courseRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).
		Model(&model.Course{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}
