package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"course-ops/backend/internal/model"
	pkgerrors "course-ops/backend/pkg/errors"
)

// TeamApplicationRepository join-request data access
type TeamApplicationRepository interface {
	Create(ctx context.Context, app *model.TeamApplication) error
	GetByID(ctx context.Context, id string) (*model.TeamApplication, error)
	ListByTeam(ctx context.Context, teamID, status string) ([]model.TeamApplication, error)
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]model.TeamApplication, error)
	// Resolve moves a PENDING application to status; an already resolved
	// application yields pkgerrors.ErrConcurrencyConflict.
	Resolve(ctx context.Context, id, status string, resolvedBy *string, at time.Time) error
}

type teamApplicationRepo struct {
	db *gorm.DB
}

// NewTeamApplicationRepo creates a TeamApplicationRepository
func NewTeamApplicationRepo(db *gorm.DB) TeamApplicationRepository {
	return &teamApplicationRepo{db: db}
}

func (r *teamApplicationRepo) Create(ctx context.Context, app *model.TeamApplication) error {
	return translateUnique(r.db.WithContext(ctx).Omit("User").Create(app).Error)
}

func (r *teamApplicationRepo) GetByID(ctx context.Context, id string) (*model.TeamApplication, error) {
	var app model.TeamApplication
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("application_id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *teamApplicationRepo) ListByTeam(ctx context.Context, teamID, status string) ([]model.TeamApplication, error) {
	db := r.db.WithContext(ctx).Preload("User").Where("team_id = ?", teamID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	var apps []model.TeamApplication
	err := db.Order("requested_at ASC").Find(&apps).Error
	return apps, err
}

func (r *teamApplicationRepo) ListByEnrollment(ctx context.Context, enrollmentID string) ([]model.TeamApplication, error) {
	var apps []model.TeamApplication
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("requested_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *teamApplicationRepo) Resolve(ctx context.Context, id, status string, resolvedBy *string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.TeamApplication{}).
		Where("application_id = ? AND status = ?", id, model.ApplicationPending).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_by": resolvedBy,
			"resolved_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrConcurrencyConflict
	}
	return nil
}
