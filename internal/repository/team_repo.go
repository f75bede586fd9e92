package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"course-ops/backend/internal/model"
	pkgerrors "course-ops/backend/pkg/errors"
)

// TeamRepository team and membership data access
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	// GetForUpdate loads the team with its members and holds a row lock
	// on the team until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*model.Team, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Team, error)
	ListByCourses(ctx context.Context, courseIDs []string) ([]model.Team, error)
	// Update writes the mutable columns when team.Version still matches and
	// bumps it; a stale version yields pkgerrors.ErrConcurrencyConflict.
	Update(ctx context.Context, team *model.Team) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)

	AddMember(ctx context.Context, member *model.TeamMember) error
	UpdateMemberRole(ctx context.Context, memberID, role string) error
	RemoveMember(ctx context.Context, memberID string) error
	GetMemberByEnrollment(ctx context.Context, enrollmentID string) (*model.TeamMember, error)
	GetMemberByUserAndCourse(ctx context.Context, userID, courseID string) (*model.TeamMember, error)
	ListMembersByCourses(ctx context.Context, courseIDs []string) ([]model.TeamMember, error)
	CountMembersByCourses(ctx context.Context, courseIDs []string) (map[string]int64, error)
}

type teamRepo struct {
	db *gorm.DB
}

// NewTeamRepo creates a TeamRepository
func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func preloadMembers(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Preload("Members.User")
}

func (r *teamRepo) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Omit("Members").Create(team).Error
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	err := preloadMembers(r.db.WithContext(ctx)).
		Where("team_id = ?", id).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) GetForUpdate(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	err := preloadMembers(r.db.WithContext(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("team_id = ?", id).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Team, error) {
	var teams []model.Team
	err := preloadMembers(r.db.WithContext(ctx)).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&teams).Error
	return teams, err
}

func (r *teamRepo) ListByCourses(ctx context.Context, courseIDs []string) ([]model.Team, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	var teams []model.Team
	err := r.db.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Order("created_at ASC").
		Find(&teams).Error
	return teams, err
}

func (r *teamRepo) Update(ctx context.Context, team *model.Team) error {
	oldVersion := team.Version
	result := r.db.WithContext(ctx).
		Model(&model.Team{}).
		Where("team_id = ? AND version = ?", team.TeamID, oldVersion).
		Updates(map[string]interface{}{
			"name":                 team.Name,
			"leader_id":            team.LeaderID,
			"current_members":      team.CurrentMembers,
			"pending_applications": team.PendingApplications,
			"updated_by":           team.UpdatedBy,
			"updated_at":           gorm.Expr("NOW()"),
			"version":              oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrConcurrencyConflict
	}
	team.Version = oldVersion + 1
	return nil
}

// Delete removes the team, its members and its applications.
func (r *teamRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&model.TeamApplication{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&model.TeamMember{}).Error; err != nil {
			return err
		}
		result := tx.Where("team_id = ?", id).Delete(&model.Team{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *teamRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Team{}).Count(&count).Error
	return count, err
}

// ── members ──

func (r *teamRepo) AddMember(ctx context.Context, member *model.TeamMember) error {
	return translateUnique(r.db.WithContext(ctx).Omit("User").Create(member).Error)
}

func (r *teamRepo) UpdateMemberRole(ctx context.Context, memberID, role string) error {
	result := r.db.WithContext(ctx).
		Model(&model.TeamMember{}).
		Where("member_id = ?", memberID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *teamRepo) RemoveMember(ctx context.Context, memberID string) error {
	result := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Delete(&model.TeamMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *teamRepo) GetMemberByEnrollment(ctx context.Context, enrollmentID string) (*model.TeamMember, error) {
	var m model.TeamMember
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *teamRepo) GetMemberByUserAndCourse(ctx context.Context, userID, courseID string) (*model.TeamMember, error) {
	var m model.TeamMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *teamRepo) ListMembersByCourses(ctx context.Context, courseIDs []string) ([]model.TeamMember, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	var members []model.TeamMember
	err := r.db.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Find(&members).Error
	return members, err
}

func (r *teamRepo) CountMembersByCourses(ctx context.Context, courseIDs []string) (map[string]int64, error) {
	if len(courseIDs) == 0 {
		return map[string]int64{}, nil
	}
	var rows []groupCount
	err := r.db.WithContext(ctx).
		Model(&model.TeamMember{}).
		Select("course_id AS key, COUNT(DISTINCT user_id) AS count").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}
