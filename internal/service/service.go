package service

import (
	"go.uber.org/zap"

	"course-ops/backend/config"
	"course-ops/backend/internal/model"
	"course-ops/backend/internal/repository"
	"course-ops/backend/pkg/jwt"
)

// Principal is the acting user, extracted from the access token by
// middleware and passed explicitly into every service call.
type Principal struct {
	UserID   string
	FullName string
	Role     string
}

// IsAdmin reports the admin role.
func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

// IsMentor reports the mentor role.
func (p Principal) IsMentor() bool { return p.Role == model.RoleMentor }

// Service aggregates every service.
type Service struct {
	Auth       AuthService
	User       UserService
	Semester   SemesterService
	Course     CourseService
	Enrollment EnrollmentService
	Team       TeamService
	Report     ReportService
	Export     ExportService
}

// NewService wires the services. tokens and cache may be nil when Redis is
// not configured; logout then becomes a no-op and reports are not cached.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	cache ReportCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, tokens, logger),
		User:       NewUserService(repo, logger),
		Semester:   NewSemesterService(repo, logger),
		Course:     NewCourseService(repo, logger),
		Enrollment: NewEnrollmentService(repo, logger),
		Team:       NewTeamService(&cfg.Team, repo, logger),
		Report:     NewReportService(&cfg.Report, repo, cache, logger),
		Export:     NewExportService(repo, logger),
	}
}
