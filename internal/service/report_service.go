package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"course-ops/backend/config"
	"course-ops/backend/internal/dto"
	"course-ops/backend/internal/model"
	"course-ops/backend/internal/repository"
	"course-ops/backend/pkg/redis"
)

// ReportCache stores computed reports. *redis.Client satisfies it.
type ReportCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}

const dashboardCacheKey = "report:dashboard"

// ReportService read-only aggregation over enrollments and teams.
//
// Figures are a snapshot: they are read without locks while memberships keep
// changing, so each response carries the moment it was taken in as_of.
// Percentages are rounded to two decimals; an empty denominator yields 0.
type ReportService interface {
	TeamFormationRate(ctx context.Context, courseID string) (*dto.TeamFormationRateResponse, error)
	MentorPerformance(ctx context.Context, p Principal, mentorID, semesterID string) (*dto.MentorPerformanceResponse, error)
	AllMentorPerformance(ctx context.Context, semesterID string) ([]dto.MentorPerformanceResponse, error)
	StudentsByMentor(ctx context.Context, p Principal, mentorID, semesterID string) ([]dto.MentorStudentResponse, error)
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	CourseStatistics(ctx context.Context, courseID string) (*dto.CourseStatisticsResponse, error)
	TeamStatistics(ctx context.Context, courseID string) (*dto.TeamStatisticsResponse, error)
	EnrollmentStatistics(ctx context.Context, courseID string) (*dto.EnrollmentStatisticsResponse, error)
}

type reportService struct {
	cfg    *config.ReportConfig
	repo   *repository.Repository
	cache  ReportCache
	group  singleflight.Group
	logger *zap.Logger
}

// NewReportService creates a ReportService. cache may be nil.
func NewReportService(cfg *config.ReportConfig, repo *repository.Repository, cache ReportCache, logger *zap.Logger) ReportService {
	return &reportService{cfg: cfg, repo: repo, cache: cache, logger: logger}
}

// ────────────────────── TeamFormationRate ──────────────────────

func (s *reportService) TeamFormationRate(ctx context.Context, courseID string) (*dto.TeamFormationRateResponse, error) {
	asOf := asOfNow()
	if _, err := s.course(ctx, courseID); err != nil {
		return nil, err
	}

	ids := []string{courseID}
	approved, err := s.repo.Enrollment.CountApprovedByCourses(ctx, ids)
	if err != nil {
		return nil, err
	}
	inTeams, err := s.repo.Team.CountMembersByCourses(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &dto.TeamFormationRateResponse{
		CourseID:         courseID,
		EnrolledStudents: approved[courseID],
		StudentsInTeams:  inTeams[courseID],
		Rate:             percent(inTeams[courseID], approved[courseID]),
		AsOf:             asOf,
	}, nil
}

// ────────────────────── MentorPerformance ──────────────────────

func (s *reportService) MentorPerformance(ctx context.Context, p Principal, mentorID, semesterID string) (*dto.MentorPerformanceResponse, error) {
	if p.IsMentor() && p.UserID != mentorID {
		return nil, ErrForbidden
	}

	mentor, err := s.mentor(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	return s.mentorAggregate(ctx, mentor, semesterID)
}

func (s *reportService) AllMentorPerformance(ctx context.Context, semesterID string) ([]dto.MentorPerformanceResponse, error) {
	mentors, err := s.repo.User.ListByRole(ctx, model.RoleMentor)
	if err != nil {
		s.logger.Error("list mentors failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.MentorPerformanceResponse, len(mentors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range mentors {
		i := i
		g.Go(func() error {
			agg, err := s.mentorAggregate(gctx, &mentors[i], semesterID)
			if err != nil {
				return err
			}
			result[i] = *agg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("aggregate mentor performance failed", zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (s *reportService) mentorAggregate(ctx context.Context, mentor *model.User, semesterID string) (*dto.MentorPerformanceResponse, error) {
	asOf := asOfNow()
	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{MentorID: mentor.UserID, SemesterID: semesterID})
	if err != nil {
		return nil, err
	}
	ids := courseIDs(courses)

	var (
		approved map[string]int64
		inTeams  map[string]int64
		teams    []model.Team
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		approved, err = s.repo.Enrollment.CountApprovedByCourses(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		inTeams, err = s.repo.Team.CountMembersByCourses(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		teams, err = s.repo.Team.ListByCourses(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &dto.MentorPerformanceResponse{
		MentorID:      mentor.UserID,
		MentorName:    mentor.FullName,
		SemesterID:    semesterID,
		TotalCourses:  len(courses),
		TotalStudents: sum(approved),
		TotalTeams:    int64(len(teams)),
		AsOf:          asOf,
	}
	resp.StudentsInTeams = sum(inTeams)
	resp.AverageStudentsPerCourse = ratio(resp.TotalStudents, int64(resp.TotalCourses))
	resp.AverageTeamsPerCourse = ratio(resp.TotalTeams, int64(resp.TotalCourses))
	resp.TeamFormationRate = percent(resp.StudentsInTeams, resp.TotalStudents)
	return resp, nil
}

// ────────────────────── StudentsByMentor ──────────────────────

func (s *reportService) StudentsByMentor(ctx context.Context, p Principal, mentorID, semesterID string) ([]dto.MentorStudentResponse, error) {
	if p.IsMentor() && p.UserID != mentorID {
		return nil, ErrForbidden
	}
	if _, err := s.mentor(ctx, mentorID); err != nil {
		return nil, err
	}

	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{MentorID: mentorID, SemesterID: semesterID})
	if err != nil {
		return nil, err
	}
	ids := courseIDs(courses)
	codes := make(map[string]string, len(courses))
	for _, c := range courses {
		codes[c.CourseID] = c.Code
	}

	var (
		enrollments []model.Enrollment
		members     []model.TeamMember
		teams       []model.Team
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		enrollments, err = s.repo.Enrollment.ListApprovedByCourses(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		members, err = s.repo.Team.ListMembersByCourses(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		teams, err = s.repo.Team.ListByCourses(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("load mentor students failed", zap.String("mentor_id", mentorID), zap.Error(err))
		return nil, err
	}

	teamNames := make(map[string]string, len(teams))
	for _, t := range teams {
		teamNames[t.TeamID] = t.Name
	}
	teamOf := make(map[string]string, len(members))
	for _, m := range members {
		teamOf[m.EnrollmentID] = m.TeamID
	}

	result := make([]dto.MentorStudentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		row := dto.MentorStudentResponse{
			UserID:       e.UserID,
			CourseID:     e.CourseID,
			CourseCode:   codes[e.CourseID],
			EnrollmentID: e.EnrollmentID,
		}
		if e.User != nil {
			row.FullName = e.User.FullName
			row.Email = e.User.Email
		}
		if teamID, ok := teamOf[e.EnrollmentID]; ok {
			row.TeamID = teamID
			row.TeamName = teamNames[teamID]
		}
		result = append(result, row)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CourseCode != result[j].CourseCode {
			return result[i].CourseCode < result[j].CourseCode
		}
		return result[i].FullName < result[j].FullName
	})
	return result, nil
}

// ────────────────────── Dashboard ──────────────────────

func (s *reportService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	if s.cache != nil {
		var cached dto.DashboardResponse
		err := s.cache.GetJSON(ctx, dashboardCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("read dashboard cache failed", zap.Error(err))
		}
	}

	// concurrent misses share one computation; it must outlive the caller
	// that happened to start it
	v, err, _ := s.group.Do(dashboardCacheKey, func() (interface{}, error) {
		flightCtx := context.WithoutCancel(ctx)
		d, err := s.buildDashboard(flightCtx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && s.cfg.CacheTTL > 0 {
			if err := s.cache.SetJSON(flightCtx, dashboardCacheKey, d, s.cfg.CacheTTL); err != nil {
				s.logger.Warn("write dashboard cache failed", zap.Error(err))
			}
		}
		return d, nil
	})
	if err != nil {
		s.logger.Error("build dashboard failed", zap.Error(err))
		return nil, err
	}
	return v.(*dto.DashboardResponse), nil
}

func (s *reportService) buildDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	d := &dto.DashboardResponse{AsOf: asOfNow()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.UsersByRole, err = s.repo.User.CountByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.CoursesByStatus, err = s.repo.Course.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.EnrollmentsByStatus, err = s.repo.Enrollment.CountByStatus(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		d.TotalTeams, err = s.repo.Team.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.CurrentSemester, err = s.semesterSnapshot(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.TotalUsers = sum(d.UsersByRole)
	d.TotalCourses = sum(d.CoursesByStatus)
	d.TotalEnrollments = sum(d.EnrollmentsByStatus)
	return d, nil
}

func (s *reportService) semesterSnapshot(ctx context.Context) (*dto.SemesterSnapshot, error) {
	semester, err := s.repo.Semester.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{SemesterID: semester.SemesterID})
	if err != nil {
		return nil, err
	}
	ids := courseIDs(courses)

	approved, err := s.repo.Enrollment.CountApprovedByCourses(ctx, ids)
	if err != nil {
		return nil, err
	}
	inTeams, err := s.repo.Team.CountMembersByCourses(ctx, ids)
	if err != nil {
		return nil, err
	}
	teams, err := s.repo.Team.ListByCourses(ctx, ids)
	if err != nil {
		return nil, err
	}

	enrolled := sum(approved)
	return &dto.SemesterSnapshot{
		SemesterID:        semester.SemesterID,
		Name:              semester.Name,
		Courses:           len(courses),
		EnrolledStudents:  enrolled,
		Teams:             int64(len(teams)),
		TeamFormationRate: percent(sum(inTeams), enrolled),
	}, nil
}

// ────────────────────── statistics ──────────────────────

func (s *reportService) CourseStatistics(ctx context.Context, courseID string) (*dto.CourseStatisticsResponse, error) {
	asOf := asOfNow()
	course, err := s.course(ctx, courseID)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.repo.Enrollment.CountByStatus(ctx, courseID)
	if err != nil {
		return nil, err
	}
	teams, err := s.repo.Team.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	inTeams, err := s.repo.Team.CountMembersByCourses(ctx, []string{courseID})
	if err != nil {
		return nil, err
	}

	resp := &dto.CourseStatisticsResponse{
		CourseID:            courseID,
		CourseCode:          course.Code,
		PendingEnrollments:  byStatus[model.EnrollmentPending],
		ApprovedEnrollments: byStatus[model.EnrollmentApproved],
		Teams:               len(teams),
		StudentsInTeams:     inTeams[courseID],
		AsOf:                asOf,
	}
	var members int64
	for i := range teams {
		members += int64(teams[i].CurrentMembers)
		if teams[i].Status() == model.TeamOpening {
			resp.OpenTeams++
		} else {
			resp.ClosedTeams++
		}
	}
	if without := resp.ApprovedEnrollments - resp.StudentsInTeams; without > 0 {
		resp.StudentsWithoutTeam = without
	}
	resp.AverageTeamSize = ratio(members, int64(len(teams)))
	resp.TeamFormationRate = percent(resp.StudentsInTeams, resp.ApprovedEnrollments)
	return resp, nil
}

func (s *reportService) TeamStatistics(ctx context.Context, courseID string) (*dto.TeamStatisticsResponse, error) {
	asOf := asOfNow()

	var ids []string
	if courseID != "" {
		if _, err := s.course(ctx, courseID); err != nil {
			return nil, err
		}
		ids = []string{courseID}
	} else {
		courses, err := s.repo.Course.List(ctx, repository.CourseFilter{})
		if err != nil {
			return nil, err
		}
		ids = courseIDs(courses)
	}

	teams, err := s.repo.Team.ListByCourses(ctx, ids)
	if err != nil {
		s.logger.Error("list teams failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.TeamStatisticsResponse{CourseID: courseID, TotalTeams: len(teams), AsOf: asOf}
	for i := range teams {
		resp.TotalMembers += teams[i].CurrentMembers
		if teams[i].Status() == model.TeamOpening {
			resp.OpenTeams++
		} else {
			resp.ClosedTeams++
		}
	}
	resp.AverageTeamSize = ratio(int64(resp.TotalMembers), int64(resp.TotalTeams))
	return resp, nil
}

func (s *reportService) EnrollmentStatistics(ctx context.Context, courseID string) (*dto.EnrollmentStatisticsResponse, error) {
	asOf := asOfNow()
	if courseID != "" {
		if _, err := s.course(ctx, courseID); err != nil {
			return nil, err
		}
	}

	counts, err := s.repo.Enrollment.CountByStatus(ctx, courseID)
	if err != nil {
		s.logger.Error("count enrollments failed", zap.Error(err))
		return nil, err
	}

	byStatus := map[string]int64{
		model.EnrollmentPending:   0,
		model.EnrollmentApproved:  0,
		model.EnrollmentCompleted: 0,
		model.EnrollmentRejected:  0,
		model.EnrollmentCancelled: 0,
	}
	for k, v := range counts {
		byStatus[k] = v
	}

	return &dto.EnrollmentStatisticsResponse{
		CourseID: courseID,
		ByStatus: byStatus,
		Total:    sum(byStatus),
		AsOf:     asOf,
	}, nil
}

// ── helpers ──

func (s *reportService) course(ctx context.Context, id string) (*model.Course, error) {
	c, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("load course failed", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *reportService) mentor(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.Role != model.RoleMentor {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func asOfNow() string {
	return time.Now().UTC().Format(dto.TimeLayout)
}

func courseIDs(courses []model.Course) []string {
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.CourseID)
	}
	return ids
}

func sum(m map[string]int64) int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}

// percent is part/whole*100 rounded to two decimals, 0 when whole is 0.
func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) * 100 / float64(whole))
}

// ratio is a/b rounded to two decimals, 0 when b is 0.
func ratio(a, b int64) float64 {
	if b == 0 {
		return 0
	}
	return round2(float64(a) / float64(b))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
