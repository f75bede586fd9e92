package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"course-ops/backend/config"
	"course-ops/backend/internal/model"
	"course-ops/backend/internal/repository"
)

// ── test fixtures ──

type fixture struct {
	t     *testing.T
	store *memStore
	repo  *repository.Repository

	enrollment EnrollmentService
	team       TeamService
	course     CourseService
	report     ReportService

	admin   model.User
	mentor  model.User
	course1 model.Course
}

var testTeamConfig = config.TeamConfig{DefaultMaxMembers: 5, NameMinLen: 5, NameMaxLen: 100}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	repo := newMockRepository(store)
	logger := zap.NewNop()
	teamCfg := testTeamConfig

	f := &fixture{
		t:          t,
		store:      store,
		repo:       repo,
		enrollment: NewEnrollmentService(repo, logger),
		team:       NewTeamService(&teamCfg, repo, logger),
		course:     NewCourseService(repo, logger),
		report:     NewReportService(&config.ReportConfig{CacheTTL: time.Minute}, repo, nil, logger),
	}
	f.admin = f.addUser(model.RoleAdmin, "Ada Admin")
	f.mentor = f.addUser(model.RoleMentor, "Mina Mentor")
	sem := f.addSemester("Fall 2026", true)
	f.course1 = f.addCourse("C101", sem.SemesterID, f.mentor.UserID, 4)
	return f
}

func (f *fixture) addUser(role, name string) model.User {
	f.t.Helper()
	u := &model.User{FullName: name, Email: name + "@uni.test", Role: role, PasswordHash: "x"}
	if err := f.repo.User.Create(context.Background(), u); err != nil {
		f.t.Fatalf("seed user: %v", err)
	}
	return *u
}

func (f *fixture) addSemester(name string, active bool) model.Semester {
	f.t.Helper()
	sem := &model.Semester{
		Name:      name,
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC),
		IsActive:  active,
		Status:    "active",
	}
	if err := f.repo.Semester.Create(context.Background(), sem); err != nil {
		f.t.Fatalf("seed semester: %v", err)
	}
	return *sem
}

func (f *fixture) addCourse(code, semesterID, mentorID string, teamMax int) model.Course {
	f.t.Helper()
	c := &model.Course{
		Code:           code,
		Name:           "Course " + code,
		SemesterID:     semesterID,
		MentorID:       mentorID,
		TeamMaxMembers: teamMax,
		Status:         model.CourseOngoing,
	}
	if err := f.repo.Course.Create(context.Background(), c); err != nil {
		f.t.Fatalf("seed course: %v", err)
	}
	return *c
}

func (f *fixture) addEnrollment(userID, courseID, status string) model.Enrollment {
	f.t.Helper()
	e := &model.Enrollment{
		UserID:         userID,
		CourseID:       courseID,
		Status:         status,
		EnrollmentDate: time.Now().UTC(),
	}
	if err := f.repo.Enrollment.Create(context.Background(), e); err != nil {
		f.t.Fatalf("seed enrollment: %v", err)
	}
	return *e
}

// addStudent creates a student with an APPROVED enrollment in courseID.
func (f *fixture) addStudent(name, courseID string) (Principal, model.Enrollment) {
	f.t.Helper()
	u := f.addUser(model.RoleStudent, name)
	e := f.addEnrollment(u.UserID, courseID, model.EnrollmentApproved)
	return principalOf(u), e
}

func principalOf(u model.User) Principal {
	return Principal{UserID: u.UserID, FullName: u.FullName, Role: u.Role}
}

func (f *fixture) teamRow(id string) *model.Team {
	f.t.Helper()
	team, err := f.repo.Team.GetByID(context.Background(), id)
	if err != nil {
		f.t.Fatalf("load team %s: %v", id, err)
	}
	return team
}

// assertTeamInvariants checks capacity, leader exclusivity and the member counter.
func (f *fixture) assertTeamInvariants(teamID string) {
	f.t.Helper()
	team := f.teamRow(teamID)
	if len(team.Members) > team.MaxMembers {
		f.t.Errorf("team %s has %d members, max %d", teamID, len(team.Members), team.MaxMembers)
	}
	if team.CurrentMembers != len(team.Members) {
		f.t.Errorf("team %s current_members=%d, rows=%d", teamID, team.CurrentMembers, len(team.Members))
	}
	leaders := 0
	for _, m := range team.Members {
		if m.Role == model.MemberLeader {
			leaders++
			if m.UserID != team.LeaderID {
				f.t.Errorf("team %s leader_id=%s, LEADER row user=%s", teamID, team.LeaderID, m.UserID)
			}
		}
	}
	if leaders != 1 {
		f.t.Errorf("team %s has %d leaders", teamID, leaders)
	}
}
