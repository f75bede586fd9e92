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
)

// ── semester errors ──

var (
	ErrSemesterNotFound    = errors.New("semester not found")
	ErrSemesterDateInvalid = errors.New("semester end date must be after start date")
)

const dateLayout = "2006-01-02"

// SemesterService semester management
type SemesterService interface {
	Create(ctx context.Context, p Principal, req *dto.CreateSemesterRequest) (*dto.SemesterResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SemesterResponse, error)
	GetCurrent(ctx context.Context) (*dto.SemesterResponse, error)
	List(ctx context.Context) ([]dto.SemesterResponse, error)
	Activate(ctx context.Context, p Principal, id string) error
}

type semesterService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSemesterService creates a SemesterService
func NewSemesterService(repo *repository.Repository, logger *zap.Logger) SemesterService {
	return &semesterService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *semesterService) Create(ctx context.Context, p Principal, req *dto.CreateSemesterRequest) (*dto.SemesterResponse, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, ErrSemesterDateInvalid
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, ErrSemesterDateInvalid
	}
	if !endDate.After(startDate) {
		return nil, ErrSemesterDateInvalid
	}

	semester := &model.Semester{
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  false,
		Status:    "active",
	}
	semester.CreatedBy = &p.UserID
	semester.UpdatedBy = &p.UserID

	if err := s.repo.Semester.Create(ctx, semester); err != nil {
		s.logger.Error("create semester failed", zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *semesterService) GetByID(ctx context.Context, id string) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("load semester failed", zap.String("semester_id", id), zap.Error(err))
		return nil, err
	}
	return toSemesterResponse(semester), nil
}

// ────────────────────── GetCurrent ──────────────────────

func (s *semesterService) GetCurrent(ctx context.Context) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("load current semester failed", zap.Error(err))
		return nil, err
	}
	return toSemesterResponse(semester), nil
}

// ────────────────────── List ──────────────────────

func (s *semesterService) List(ctx context.Context) ([]dto.SemesterResponse, error) {
	semesters, err := s.repo.Semester.List(ctx)
	if err != nil {
		s.logger.Error("list semesters failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SemesterResponse, 0, len(semesters))
	for i := range semesters {
		result = append(result, *toSemesterResponse(&semesters[i]))
	}
	return result, nil
}

// ────────────────────── Activate ──────────────────────

func (s *semesterService) Activate(ctx context.Context, p Principal, id string) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}

	// clear + set must not be observed half-done
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		semester, err := tx.Semester.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSemesterNotFound
			}
			s.logger.Error("load semester failed", zap.String("semester_id", id), zap.Error(err))
			return err
		}

		if err := tx.Semester.ClearActive(ctx); err != nil {
			s.logger.Error("clear active semester failed", zap.Error(err))
			return err
		}

		semester.IsActive = true
		semester.UpdatedBy = &p.UserID
		if err := tx.Semester.Update(ctx, semester); err != nil {
			s.logger.Error("activate semester failed", zap.String("semester_id", id), zap.Error(err))
			return err
		}

		s.logger.Info("semester activated", zap.String("semester_id", id))
		return nil
	})
}

// ── helpers ──

func toSemesterResponse(semester *model.Semester) *dto.SemesterResponse {
	return &dto.SemesterResponse{
		ID:        semester.SemesterID,
		Name:      semester.Name,
		StartDate: semester.StartDate.Format(dateLayout),
		EndDate:   semester.EndDate.Format(dateLayout),
		IsActive:  semester.IsActive,
		Status:    semester.Status,
		CreatedAt: semester.CreatedAt.UTC().Format(dto.TimeLayout),
	}
}
