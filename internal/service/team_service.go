package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-ops/backend/config"
	"course-ops/backend/internal/dto"
	"course-ops/backend/internal/model"
	"course-ops/backend/internal/repository"
)

// ── team errors ──

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrEnrollmentNotEligible = errors.New("enrollment must be APPROVED in this course to take part in a team")
	ErrAlreadyInTeam         = errors.New("student already belongs to a team in this course")
	ErrTeamFull              = errors.New("team has no free seat")
	ErrNotLeader             = errors.New("only the team leader can perform this operation")
	ErrCannotRemoveLeader    = errors.New("the team leader cannot be removed")
	ErrMemberNotFound        = errors.New("member not found in this team")
	ErrApplicationNotFound   = errors.New("pending application not found")
	ErrApplicationExists     = errors.New("a pending application in this course already exists")
	ErrLeaderCannotLeave     = errors.New("leader must transfer leadership or disband the team while other members remain")
	ErrInvalidTeamName       = errors.New("team name length is out of range")
)

// TeamService team creation and the membership coordinator.
//
// Every mutation runs in a transaction holding the team row lock, re-checks
// leadership and capacity under that lock, and persists the team through a
// version compare-and-set. A pending application holds a seat until it is
// resolved, so approving never overfills a team.
type TeamService interface {
	Create(ctx context.Context, p Principal, req *dto.CreateTeamRequest) (*dto.TeamResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TeamResponse, error)
	ListByCourse(ctx context.Context, courseID string) ([]dto.TeamResponse, error)

	Apply(ctx context.Context, p Principal, teamID, enrollmentID string) (*dto.TeamApplicationResponse, error)
	ApproveApplication(ctx context.Context, p Principal, teamID, actingEnrollmentID, applicationID string) (*dto.TeamResponse, error)
	RejectApplication(ctx context.Context, p Principal, teamID, actingEnrollmentID, applicationID string) error
	WithdrawApplication(ctx context.Context, p Principal, applicationID, enrollmentID string) error
	ListApplications(ctx context.Context, p Principal, teamID, actingEnrollmentID, status string) ([]dto.TeamApplicationResponse, error)
	MyApplications(ctx context.Context, p Principal, enrollmentID string) ([]dto.TeamApplicationResponse, error)

	RemoveMember(ctx context.Context, p Principal, teamID, actingEnrollmentID, targetEnrollmentID string) (*dto.TeamResponse, error)
	// Leave removes the caller from the team. It reports whether the team
	// was deleted because the caller was its last member.
	Leave(ctx context.Context, p Principal, teamID, enrollmentID string) (bool, error)
	Disband(ctx context.Context, p Principal, teamID, actingEnrollmentID string) error
	UpdateName(ctx context.Context, p Principal, teamID, actingEnrollmentID, name string) (*dto.TeamResponse, error)
	TransferLeadership(ctx context.Context, p Principal, teamID, actingEnrollmentID, targetEnrollmentID string) (*dto.TeamResponse, error)
}

type teamService struct {
	cfg    *config.TeamConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeamService creates a TeamService
func NewTeamService(cfg *config.TeamConfig, repo *repository.Repository, logger *zap.Logger) TeamService {
	return &teamService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *teamService) Create(ctx context.Context, p Principal, req *dto.CreateTeamRequest) (*dto.TeamResponse, error) {
	name, err := s.validateName(req.Name)
	if err != nil {
		return nil, err
	}

	e, err := s.actingEnrollment(ctx, p, req.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if !e.IsEligibleForTeam() {
		return nil, ErrEnrollmentNotEligible
	}

	course, err := s.repo.Course.GetByID(ctx, e.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	maxMembers := course.TeamMaxMembers
	if maxMembers <= 0 {
		maxMembers = s.cfg.DefaultMaxMembers
	}

	var teamID string
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := lockEligibleEnrollment(ctx, tx, e.EnrollmentID); err != nil {
			return err
		}
		if _, err := tx.Team.GetMemberByUserAndCourse(ctx, e.UserID, e.CourseID); err == nil {
			return ErrAlreadyInTeam
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// founding a team supersedes any open request to join another one
		if err := detachEnrollment(ctx, tx, e.EnrollmentID, p.UserID, s.logger); err != nil {
			return err
		}

		now := time.Now().UTC()
		team := &model.Team{
			Name:           name,
			CourseID:       e.CourseID,
			LeaderID:       e.UserID,
			MaxMembers:     maxMembers,
			CurrentMembers: 1,
			Version:        1,
		}
		team.CreatedBy = &p.UserID
		team.UpdatedBy = &p.UserID
		if err := tx.Team.Create(ctx, team); err != nil {
			return err
		}

		leader := &model.TeamMember{
			TeamID:       team.TeamID,
			CourseID:     e.CourseID,
			EnrollmentID: e.EnrollmentID,
			UserID:       e.UserID,
			Role:         model.MemberLeader,
			JoinedAt:     now,
		}
		if err := tx.Team.AddMember(ctx, leader); err != nil {
			if errors.Is(err, repository.ErrTeamMembershipExists) {
				return ErrAlreadyInTeam
			}
			return err
		}

		teamID = team.TeamID
		return nil
	})
	if err != nil {
		return nil, s.fail(err, "create team", zap.String("enrollment_id", e.EnrollmentID))
	}

	s.logger.Info("team created",
		zap.String("team_id", teamID),
		zap.String("course_id", e.CourseID),
		zap.String("leader_user_id", e.UserID))
	return s.GetByID(ctx, teamID)
}

// ────────────────────── queries ──────────────────────

func (s *teamService) GetByID(ctx context.Context, id string) (*dto.TeamResponse, error) {
	team, err := s.repo.Team.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("load team failed", zap.String("team_id", id), zap.Error(err))
		return nil, err
	}
	return toTeamResponse(team), nil
}

func (s *teamService) ListByCourse(ctx context.Context, courseID string) ([]dto.TeamResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	teams, err := s.repo.Team.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("list teams failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		result = append(result, *toTeamResponse(&teams[i]))
	}
	return result, nil
}

// ────────────────────── Apply ──────────────────────

func (s *teamService) Apply(ctx context.Context, p Principal, teamID, enrollmentID string) (*dto.TeamApplicationResponse, error) {
	e, err := s.actingEnrollment(ctx, p, enrollmentID)
	if err != nil {
		return nil, err
	}
	if !e.IsEligibleForTeam() {
		return nil, ErrEnrollmentNotEligible
	}

	var app *model.TeamApplication
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// enrollment before team, the order Cancel and Complete lock in
		if err := lockEligibleEnrollment(ctx, tx, e.EnrollmentID); err != nil {
			return err
		}
		team, err := lockTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		if team.CourseID != e.CourseID {
			return ErrEnrollmentNotEligible
		}
		if _, err := tx.Team.GetMemberByUserAndCourse(ctx, e.UserID, e.CourseID); err == nil {
			return ErrAlreadyInTeam
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if !team.HasFreeSeat() {
			return ErrTeamFull
		}

		app = &model.TeamApplication{
			TeamID:       team.TeamID,
			CourseID:     team.CourseID,
			EnrollmentID: e.EnrollmentID,
			UserID:       e.UserID,
			Status:       model.ApplicationPending,
			RequestedAt:  time.Now().UTC(),
		}
		if err := tx.TeamApplication.Create(ctx, app); err != nil {
			if errors.Is(err, repository.ErrPendingApplicationExists) {
				return ErrApplicationExists
			}
			return err
		}

		team.PendingApplications++
		team.UpdatedBy = &p.UserID
		return tx.Team.Update(ctx, team)
	})
	if err != nil {
		return nil, s.fail(err, "apply to team", zap.String("team_id", teamID), zap.String("enrollment_id", enrollmentID))
	}

	s.logger.Info("team application submitted",
		zap.String("team_id", teamID),
		zap.String("application_id", app.ApplicationID))
	return toApplicationResponse(app), nil
}

// ────────────────────── ApproveApplication ──────────────────────

func (s *teamService) ApproveApplication(ctx context.Context, p Principal, teamID, actingEnrollmentID, applicationID string) (*dto.TeamResponse, error) {
	if _, err := s.actingEnrollment(ctx, p, actingEnrollmentID); err != nil {
		return nil, err
	}

	err := s.withLockedTeam(ctx, teamID, func(tx *repository.Repository, team *model.Team) error {
		if err := requireLeader(team, actingEnrollmentID); err != nil {
			return err
		}
		app, err := s.pendingApplication(ctx, tx, teamID, applicationID)
		if err != nil {
			return err
		}
		if team.CurrentMembers >= team.MaxMembers {
			return ErrTeamFull
		}

		applicant, err := tx.Enrollment.GetByID(ctx, app.EnrollmentID)
		if err != nil {
			return err
		}
		if !applicant.IsEligibleForTeam() {
			return ErrEnrollmentNotEligible
		}

		now := time.Now().UTC()
		if err := tx.TeamApplication.Resolve(ctx, app.ApplicationID, model.ApplicationApproved, &p.UserID, now); err != nil {
			return err
		}
		member := &model.TeamMember{
			TeamID:       team.TeamID,
			CourseID:     team.CourseID,
			EnrollmentID: app.EnrollmentID,
			UserID:       app.UserID,
			Role:         model.MemberMember,
			JoinedAt:     now,
		}
		if err := tx.Team.AddMember(ctx, member); err != nil {
			if errors.Is(err, repository.ErrTeamMembershipExists) {
				return ErrAlreadyInTeam
			}
			return err
		}

		team.CurrentMembers++
		if team.PendingApplications > 0 {
			team.PendingApplications--
		}
		team.UpdatedBy = &p.UserID
		return tx.Team.Update(ctx, team)
	})
	if err != nil {
		return nil, s.fail(err, "approve application", zap.String("team_id", teamID), zap.String("application_id", applicationID))
	}

	s.logger.Info("team application approved",
		zap.String("team_id", teamID),
		zap.String("application_id", applicationID))
	return s.GetByID(ctx, teamID)
}

// ────────────────────── RejectApplication ──────────────────────

func (s *teamService) RejectApplication(ctx context.Context, p Principal, teamID, actingEnrollmentID, applicationID string) error {
	if _, err := s.actingEnrollment(ctx, p, actingEnrollmentID); err != nil {
		return err
	}

	err := s.withLockedTeam(ctx, teamID, func(tx *repository.Repository, team *model.Team) error {
		if err := requireLeader(team, actingEnrollmentID); err != nil {
			return err
		}
		app, err := s.pendingApplication(ctx, tx, teamID, applicationID)
		if err != nil {
			return err
		}
		return s.releaseApplication(ctx, tx, team, app, p.UserID)
	})
	if err != nil {
		return s.fail(err, "reject application", zap.String("team_id", teamID), zap.String("application_id", applicationID))
	}

	s.logger.Info("team application rejected",
		zap.String("team_id", teamID),
		zap.String("application_id", applicationID))
	return nil
}

// ────────────────────── WithdrawApplication ──────────────────────

func (s *teamService) WithdrawApplication(ctx context.Context, p Principal, applicationID, enrollmentID string) error {
	if _, err := s.actingEnrollment(ctx, p, enrollmentID); err != nil {
		return err
	}

	app, err := s.repo.TeamApplication.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrApplicationNotFound
		}
		return err
	}
	if app.EnrollmentID != enrollmentID {
		return ErrApplicationNotFound
	}

	err = s.withLockedTeam(ctx, app.TeamID, func(tx *repository.Repository, team *model.Team) error {
		current, err := s.pendingApplication(ctx, tx, team.TeamID, applicationID)
		if err != nil {
			return err
		}
		return s.releaseApplication(ctx, tx, team, current, p.UserID)
	})
	if err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return ErrApplicationNotFound
		}
		return s.fail(err, "withdraw application", zap.String("application_id", applicationID))
	}
	return nil
}

// ────────────────────── ListApplications ──────────────────────

func (s *teamService) ListApplications(ctx context.Context, p Principal, teamID, actingEnrollmentID, status string) ([]dto.TeamApplicationResponse, error) {
	if _, err := s.actingEnrollment(ctx, p, actingEnrollmentID); err != nil {
		return nil, err
	}

	team, err := s.repo.Team.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if err := requireLeader(team, actingEnrollmentID); err != nil {
		return nil, err
	}

	apps, err := s.repo.TeamApplication.ListByTeam(ctx, teamID, status)
	if err != nil {
		s.logger.Error("list applications failed", zap.String("team_id", teamID), zap.Error(err))
		return nil, err
	}
	return toApplicationResponses(apps), nil
}

func (s *teamService) MyApplications(ctx context.Context, p Principal, enrollmentID string) ([]dto.TeamApplicationResponse, error) {
	if _, err := s.actingEnrollment(ctx, p, enrollmentID); err != nil {
		return nil, err
	}

	apps, err := s.repo.TeamApplication.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		s.logger.Error("list applications failed", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return nil, err
	}
	return toApplicationResponses(apps), nil
}

// ────────────────────── RemoveMember ──────────────────────

func (s *teamService) RemoveMember(ctx context.Context, p Principal, teamID, actingEnrollmentID, targetEnrollmentID string) (*dto.TeamResponse, error) {
	if _, err := s.actingEnrollment(ctx, p, actingEnrollmentID); err != nil {
		return nil, err
	}

	err := s.withLockedTeam(ctx, teamID, func(tx *repository.Repository, team *model.Team) error {
		if err := requireLeader(team, actingEnrollmentID); err != nil {
			return err
		}
		target := team.MemberByEnrollment(targetEnrollmentID)
		if target == nil {
			return ErrMemberNotFound
		}
		if target.Role == model.MemberLeader {
			return ErrCannotRemoveLeader
		}

		removed := *target
		if _, err := dropMember(ctx, tx, team, &removed, s.logger); err != nil {
			return err
		}
		team.UpdatedBy = &p.UserID
		return tx.Team.Update(ctx, team)
	})
	if err != nil {
		return nil, s.fail(err, "remove member", zap.String("team_id", teamID), zap.String("enrollment_id", targetEnrollmentID))
	}

	s.logger.Info("team member removed",
		zap.String("team_id", teamID),
		zap.String("enrollment_id", targetEnrollmentID))
	return s.GetByID(ctx, teamID)
}

// ────────────────────── Leave ──────────────────────

func (s *teamService) Leave(ctx context.Context, p Principal, teamID, enrollmentID string) (bool, error) {
	if _, err := s.actingEnrollment(ctx, p, enrollmentID); err != nil {
		return false, err
	}

	deleted := false
	err := s.withLockedTeam(ctx, teamID, func(tx *repository.Repository, team *model.Team) error {
		me := team.MemberByEnrollment(enrollmentID)
		if me == nil {
			return ErrMemberNotFound
		}
		if me.Role == model.MemberLeader && len(team.Members) > 1 {
			return ErrLeaderCannotLeave
		}

		leaving := *me
		gone, err := dropMember(ctx, tx, team, &leaving, s.logger)
		if err != nil {
			return err
		}
		deleted = gone
		if gone {
			return nil
		}
		team.UpdatedBy = &p.UserID
		return tx.Team.Update(ctx, team)
	})
	if err != nil {
		return false, s.fail(err, "leave team", zap.String("team_id", teamID), zap.String("enrollment_id", enrollmentID))
	}

	s.logger.Info("member left team",
		zap.String("team_id", teamID),
		zap.String("enrollment_id", enrollmentID),
		zap.Bool("team_deleted", deleted))
	return deleted, nil
}

// ────────────────────── Disband ──────────────────────

func (s *teamService) Disband(ctx context.Context, p Principal, teamID, actingEnrollmentID string) error {
	if _, err := s.actingEnrollment(ctx, p, actingEnrollmentID); err != nil {
		return err
	}

	err := s.withLockedTeam(ctx, teamID, func(tx *repository.Repository, team *model.Team) error {
		if err := requireLeader(team, actingEnrollmentID); err != nil {
			return err
		}
		return tx.Team.Delete(ctx, team.TeamID)
	})
	if err != nil {
		return s.fail(err, "disband team", zap.String("team_id", teamID))
	}

	s.logger.Info("team disbanded", zap.String("team_id", teamID), zap.String("by", p.UserID))
	return nil
}

// ────────────────────── UpdateName ──────────────────────

func (s *teamService) UpdateName(ctx context.Context, p Principal, teamID, actingEnrollmentID, name string) (*dto.TeamResponse, error) {
	name, err := s.validateName(name)
	if err != nil {
		return nil, err
	}
	if _, err := s.actingEnrollment(ctx, p, actingEnrollmentID); err != nil {
		return nil, err
	}

	err = s.withLockedTeam(ctx, teamID, func(tx *repository.Repository, team *model.Team) error {
		if err := requireLeader(team, actingEnrollmentID); err != nil {
			return err
		}
		team.Name = name
		team.UpdatedBy = &p.UserID
		return tx.Team.Update(ctx, team)
	})
	if err != nil {
		return nil, s.fail(err, "rename team", zap.String("team_id", teamID))
	}
	return s.GetByID(ctx, teamID)
}

// ────────────────────── TransferLeadership ──────────────────────

func (s *teamService) TransferLeadership(ctx context.Context, p Principal, teamID, actingEnrollmentID, targetEnrollmentID string) (*dto.TeamResponse, error) {
	if _, err := s.actingEnrollment(ctx, p, actingEnrollmentID); err != nil {
		return nil, err
	}

	err := s.withLockedTeam(ctx, teamID, func(tx *repository.Repository, team *model.Team) error {
		if err := requireLeader(team, actingEnrollmentID); err != nil {
			return err
		}
		if targetEnrollmentID == actingEnrollmentID {
			return nil
		}
		target := team.MemberByEnrollment(targetEnrollmentID)
		if target == nil {
			return ErrMemberNotFound
		}
		current := team.Leader()

		// demote first: at most one LEADER row may exist per team
		if err := tx.Team.UpdateMemberRole(ctx, current.MemberID, model.MemberMember); err != nil {
			return err
		}
		if err := tx.Team.UpdateMemberRole(ctx, target.MemberID, model.MemberLeader); err != nil {
			return err
		}

		team.LeaderID = target.UserID
		team.UpdatedBy = &p.UserID
		return tx.Team.Update(ctx, team)
	})
	if err != nil {
		return nil, s.fail(err, "transfer leadership", zap.String("team_id", teamID))
	}

	s.logger.Info("team leadership transferred",
		zap.String("team_id", teamID),
		zap.String("to_enrollment_id", targetEnrollmentID))
	return s.GetByID(ctx, teamID)
}

// ── helpers ──

// withLockedTeam runs fn in a transaction holding the team's row lock.
func (s *teamService) withLockedTeam(ctx context.Context, teamID string, fn func(tx *repository.Repository, team *model.Team) error) error {
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		team, err := lockTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		return fn(tx, team)
	})
}

func lockTeam(ctx context.Context, tx *repository.Repository, teamID string) (*model.Team, error) {
	team, err := tx.Team.GetForUpdate(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

// actingEnrollment loads an enrollment the principal acts through; it must
// be their own.
func (s *teamService) actingEnrollment(ctx context.Context, p Principal, enrollmentID string) (*model.Enrollment, error) {
	e, err := s.repo.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("load enrollment failed", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return nil, err
	}
	if e.UserID != p.UserID {
		return nil, ErrForbidden
	}
	return e, nil
}

func (s *teamService) pendingApplication(ctx context.Context, tx *repository.Repository, teamID, applicationID string) (*model.TeamApplication, error) {
	app, err := tx.TeamApplication.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if app.TeamID != teamID || app.Status != model.ApplicationPending {
		return nil, ErrApplicationNotFound
	}
	return app, nil
}

// releaseApplication rejects a pending application and frees its seat.
func (s *teamService) releaseApplication(ctx context.Context, tx *repository.Repository, team *model.Team, app *model.TeamApplication, actorID string) error {
	if err := tx.TeamApplication.Resolve(ctx, app.ApplicationID, model.ApplicationRejected, &actorID, time.Now().UTC()); err != nil {
		return err
	}
	if team.PendingApplications > 0 {
		team.PendingApplications--
	}
	team.UpdatedBy = &actorID
	return tx.Team.Update(ctx, team)
}

func (s *teamService) validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < s.cfg.NameMinLen || n > s.cfg.NameMaxLen {
		return "", ErrInvalidTeamName
	}
	return name, nil
}

// fail logs unexpected errors and passes every error through unchanged.
func (s *teamService) fail(err error, op string, fields ...zap.Field) error {
	if !isDomainError(err) {
		s.logger.Error(op+" failed", append(fields, zap.Error(err))...)
	}
	return err
}

func requireLeader(team *model.Team, enrollmentID string) error {
	m := team.MemberByEnrollment(enrollmentID)
	if m == nil || m.Role != model.MemberLeader {
		return ErrNotLeader
	}
	return nil
}

func toTeamResponse(t *model.Team) *dto.TeamResponse {
	resp := &dto.TeamResponse{
		ID:             t.TeamID,
		Name:           t.Name,
		CourseID:       t.CourseID,
		LeaderID:       t.LeaderID,
		MaxMembers:     t.MaxMembers,
		CurrentMembers: t.CurrentMembers,
		Status:         t.Status(),
		Members:        make([]dto.TeamMemberResponse, 0, len(t.Members)),
		CreatedAt:      t.CreatedAt.UTC().Format(dto.TimeLayout),
		UpdatedAt:      t.UpdatedAt.UTC().Format(dto.TimeLayout),
	}
	for _, m := range t.Members {
		mr := dto.TeamMemberResponse{
			EnrollmentID: m.EnrollmentID,
			UserID:       m.UserID,
			Role:         m.Role,
			JoinedAt:     m.JoinedAt.UTC().Format(dto.TimeLayout),
		}
		if m.User != nil {
			mr.FullName = m.User.FullName
			mr.Email = m.User.Email
		}
		resp.Members = append(resp.Members, mr)
	}
	return resp
}

func toApplicationResponses(apps []model.TeamApplication) []dto.TeamApplicationResponse {
	result := make([]dto.TeamApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, *toApplicationResponse(&apps[i]))
	}
	return result
}

func toApplicationResponse(a *model.TeamApplication) *dto.TeamApplicationResponse {
	resp := &dto.TeamApplicationResponse{
		ID:           a.ApplicationID,
		TeamID:       a.TeamID,
		EnrollmentID: a.EnrollmentID,
		UserID:       a.UserID,
		Status:       a.Status,
		RequestedAt:  a.RequestedAt.UTC().Format(dto.TimeLayout),
		ResolvedAt:   formatTime(a.ResolvedAt),
	}
	if a.User != nil {
		resp.FullName = a.User.FullName
	}
	return resp
}
