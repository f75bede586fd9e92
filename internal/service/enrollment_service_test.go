package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"course-ops/backend/internal/dto"
	"course-ops/backend/internal/model"
	"course-ops/backend/internal/repository"
)

// ── Create ──

func TestEnrollmentService_Create_Success(t *testing.T) {
	f := newFixture(t)
	student := principalOf(f.addUser(model.RoleStudent, "Sam Student"))

	resp, err := f.enrollment.Create(context.Background(), student, &dto.CreateEnrollmentRequest{CourseID: f.course1.CourseID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.Status != model.EnrollmentPending {
		t.Errorf("expected PENDING, got %s", resp.Status)
	}
	if resp.UserID != student.UserID {
		t.Errorf("expected user %s, got %s", student.UserID, resp.UserID)
	}
	if resp.CourseCode != "C101" {
		t.Errorf("expected course code C101, got %s", resp.CourseCode)
	}
}

func TestEnrollmentService_Create_Duplicate(t *testing.T) {
	f := newFixture(t)
	student := principalOf(f.addUser(model.RoleStudent, "Sam Student"))
	req := &dto.CreateEnrollmentRequest{CourseID: f.course1.CourseID}

	if _, err := f.enrollment.Create(context.Background(), student, req); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := f.enrollment.Create(context.Background(), student, req); !errors.Is(err, ErrDuplicateEnrollment) {
		t.Errorf("expected ErrDuplicateEnrollment, got %v", err)
	}
}

func TestEnrollmentService_Create_AfterCancelAllowed(t *testing.T) {
	f := newFixture(t)
	student := principalOf(f.addUser(model.RoleStudent, "Sam Student"))
	req := &dto.CreateEnrollmentRequest{CourseID: f.course1.CourseID}

	first, err := f.enrollment.Create(context.Background(), student, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := f.enrollment.Cancel(context.Background(), student, first.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, err := f.enrollment.Create(context.Background(), student, req); err != nil {
		t.Errorf("re-enrolling after cancellation should succeed, got %v", err)
	}
}

func TestEnrollmentService_Create_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	student := principalOf(f.addUser(model.RoleStudent, "Sam Student"))
	req := &dto.CreateEnrollmentRequest{CourseID: f.course1.CourseID}

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.enrollment.Create(context.Background(), student, req)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateEnrollment):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("expected exactly one enrollment, got %d", ok)
	}
}

func TestEnrollmentService_Create_CompletedCourse(t *testing.T) {
	f := newFixture(t)
	student := principalOf(f.addUser(model.RoleStudent, "Sam Student"))
	_ = f.repo.Course.UpdateStatus(context.Background(), f.course1.CourseID, model.CourseCompleted, f.admin.UserID)

	_, err := f.enrollment.Create(context.Background(), student, &dto.CreateEnrollmentRequest{CourseID: f.course1.CourseID})
	if !errors.Is(err, ErrCourseClosed) {
		t.Errorf("expected ErrCourseClosed, got %v", err)
	}
}

func TestEnrollmentService_Create_CourseFull(t *testing.T) {
	f := newFixture(t)
	sem := f.addSemester("Spring 2027", false)
	c := &model.Course{Code: "C200", Name: "Small", SemesterID: sem.SemesterID, MentorID: f.mentor.UserID, MaxStudents: 1, Status: model.CourseOngoing}
	_ = f.repo.Course.Create(context.Background(), c)
	f.addStudent("First In", c.CourseID)

	late := principalOf(f.addUser(model.RoleStudent, "Late Comer"))
	_, err := f.enrollment.Create(context.Background(), late, &dto.CreateEnrollmentRequest{CourseID: c.CourseID})
	if !errors.Is(err, ErrCourseFull) {
		t.Errorf("expected ErrCourseFull, got %v", err)
	}
}

func TestEnrollmentService_Create_ConcurrentSeatsNeverOverfill(t *testing.T) {
	f := newFixture(t)
	sem := f.addSemester("Spring 2027", false)
	c := &model.Course{Code: "C210", Name: "Seminar", SemesterID: sem.SemesterID, MentorID: f.mentor.UserID, MaxStudents: 2, Status: model.CourseOngoing}
	if err := f.repo.Course.Create(context.Background(), c); err != nil {
		t.Fatalf("seed course: %v", err)
	}

	const n = 8
	students := make([]Principal, n)
	for i := range students {
		students[i] = principalOf(f.addUser(model.RoleStudent, fmt.Sprintf("Student %d", i)))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.enrollment.Create(context.Background(), students[i], &dto.CreateEnrollmentRequest{CourseID: c.CourseID})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrCourseFull):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != c.MaxStudents {
		t.Errorf("expected %d admissions, got %d", c.MaxStudents, ok)
	}
	active, err := f.repo.Enrollment.CountActiveByCourse(context.Background(), c.CourseID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if active != int64(c.MaxStudents) {
		t.Errorf("course holds %d active enrollments, max %d", active, c.MaxStudents)
	}
}

func TestEnrollmentService_Cancel_MemberAlreadyRemovedKeepsTeam(t *testing.T) {
	f := newFixture(t)
	leader, le := f.addStudent("Lea Leader", f.course1.CourseID)
	member, me := f.addStudent("Max Member", f.course1.CourseID)
	team := mustCreateTeam(t, f, leader, le, "Alpha Team")
	joinTeam(t, f, team.ID, leader, le, member, me)

	row, err := f.repo.Team.GetMemberByEnrollment(context.Background(), me.EnrollmentID)
	if err != nil {
		t.Fatalf("load member: %v", err)
	}
	if _, err := f.team.RemoveMember(context.Background(), leader, team.ID, le.EnrollmentID, me.EnrollmentID); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	// the cancel's pre-lock read still sees the removed row
	f.repo.Tx = &interceptTx{inner: f.store, wrap: func(tx *repository.Repository) {
		tx.Team = &staleMemberTeamRepo{TeamRepository: tx.Team, stale: *row}
	}}
	if err := f.enrollment.Cancel(context.Background(), member, me.EnrollmentID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	got, err := f.team.GetByID(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("team should survive, got %v", err)
	}
	if got.CurrentMembers != 1 || got.LeaderID != leader.UserID {
		t.Errorf("expected the leader alone, got %+v", got.Members)
	}
	f.assertTeamInvariants(team.ID)
}

func TestEnrollmentService_Create_OnBehalfRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	target := f.addUser(model.RoleStudent, "Target Student")
	other := principalOf(f.addUser(model.RoleStudent, "Other Student"))
	req := &dto.CreateEnrollmentRequest{CourseID: f.course1.CourseID, UserID: target.UserID}

	if _, err := f.enrollment.Create(context.Background(), other, req); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	resp, err := f.enrollment.Create(context.Background(), principalOf(f.admin), req)
	if err != nil {
		t.Fatalf("admin Create failed: %v", err)
	}
	if resp.UserID != target.UserID {
		t.Errorf("expected enrollment for %s, got %s", target.UserID, resp.UserID)
	}
}

// ── Approve / Reject ──

func TestEnrollmentService_Approve_TwiceIsInvalidTransition(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(model.RoleStudent, "Sam Student")
	e := f.addEnrollment(u.UserID, f.course1.CourseID, model.EnrollmentPending)
	approver := principalOf(f.admin)

	resp, err := f.enrollment.Approve(context.Background(), approver, e.EnrollmentID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if resp.Status != model.EnrollmentApproved {
		t.Errorf("expected APPROVED, got %s", resp.Status)
	}
	if resp.ApprovedBy == nil || *resp.ApprovedBy != approver.UserID {
		t.Errorf("expected approved_by=%s, got %v", approver.UserID, resp.ApprovedBy)
	}
	if resp.ApprovedDate == nil {
		t.Error("approved_date must be set")
	}

	if _, err := f.enrollment.Approve(context.Background(), approver, e.EnrollmentID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Approve: expected ErrInvalidTransition, got %v", err)
	}
}

func TestEnrollmentService_Approve_ConcurrentOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(model.RoleStudent, "Sam Student")
	e := f.addEnrollment(u.UserID, f.course1.CourseID, model.EnrollmentPending)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.enrollment.Approve(context.Background(), principalOf(f.admin), e.EnrollmentID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvalidTransition):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("expected exactly one successful approval, got %d", ok)
	}
}

func TestEnrollmentService_Approve_OtherMentorForbidden(t *testing.T) {
	f := newFixture(t)
	other := principalOf(f.addUser(model.RoleMentor, "Other Mentor"))
	u := f.addUser(model.RoleStudent, "Sam Student")
	e := f.addEnrollment(u.UserID, f.course1.CourseID, model.EnrollmentPending)

	if _, err := f.enrollment.Approve(context.Background(), other, e.EnrollmentID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.enrollment.Approve(context.Background(), principalOf(f.mentor), e.EnrollmentID); err != nil {
		t.Errorf("course mentor should approve: %v", err)
	}
}

func TestEnrollmentService_Reject_Terminal(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(model.RoleStudent, "Sam Student")
	e := f.addEnrollment(u.UserID, f.course1.CourseID, model.EnrollmentPending)
	admin := principalOf(f.admin)

	resp, err := f.enrollment.Reject(context.Background(), admin, e.EnrollmentID, &dto.RejectEnrollmentRequest{Reason: "prerequisites missing"})
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if resp.Status != model.EnrollmentRejected || resp.RejectReason != "prerequisites missing" {
		t.Errorf("unexpected response: %+v", resp)
	}

	if _, err := f.enrollment.Approve(context.Background(), admin, e.EnrollmentID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("approve after reject: expected ErrInvalidTransition, got %v", err)
	}
	if err := f.enrollment.Cancel(context.Background(), admin, e.EnrollmentID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancel after reject: expected ErrInvalidTransition, got %v", err)
	}
}

// ── Complete / Cancel ──

func TestEnrollmentService_Complete_RequiresApproved(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(model.RoleStudent, "Sam Student")
	e := f.addEnrollment(u.UserID, f.course1.CourseID, model.EnrollmentPending)

	_, err := f.enrollment.Complete(context.Background(), principalOf(f.admin), e.EnrollmentID, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestEnrollmentService_Complete_RecordsScoreAndLeavesTeam(t *testing.T) {
	f := newFixture(t)
	leader, le := f.addStudent("Lea Leader", f.course1.CourseID)
	member, me := f.addStudent("Max Member", f.course1.CourseID)
	team := mustCreateTeam(t, f, leader, le, "Alpha Team")
	joinTeam(t, f, team.ID, leader, le, member, me)

	score, grade := 91.5, "A"
	resp, err := f.enrollment.Complete(context.Background(), principalOf(f.mentor), me.EnrollmentID,
		&dto.CompleteEnrollmentRequest{Score: &score, Grade: &grade})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Status != model.EnrollmentCompleted || resp.CompletedDate == nil {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Score == nil || *resp.Score != 91.5 || resp.Grade == nil || *resp.Grade != "A" {
		t.Errorf("score/grade not recorded: %+v", resp)
	}

	row := f.teamRow(team.ID)
	if row.MemberByEnrollment(me.EnrollmentID) != nil {
		t.Error("completed enrollment must no longer back a team membership")
	}
	f.assertTeamInvariants(team.ID)
}

func TestEnrollmentService_Cancel_LeaderHandsOver(t *testing.T) {
	f := newFixture(t)
	leader, le := f.addStudent("Lea Leader", f.course1.CourseID)
	first, fe := f.addStudent("First Joiner", f.course1.CourseID)
	second, se := f.addStudent("Second Joiner", f.course1.CourseID)
	team := mustCreateTeam(t, f, leader, le, "Alpha Team")
	joinTeam(t, f, team.ID, leader, le, first, fe)
	joinTeam(t, f, team.ID, leader, le, second, se)

	if err := f.enrollment.Cancel(context.Background(), leader, le.EnrollmentID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	row := f.teamRow(team.ID)
	if row.CurrentMembers != 2 {
		t.Errorf("expected 2 members, got %d", row.CurrentMembers)
	}
	if row.LeaderID != first.UserID {
		t.Errorf("expected earliest joiner %s to lead, got %s", first.UserID, row.LeaderID)
	}
	f.assertTeamInvariants(team.ID)
}

func TestEnrollmentService_Cancel_SoleMemberRemovesTeam(t *testing.T) {
	f := newFixture(t)
	leader, le := f.addStudent("Lea Leader", f.course1.CourseID)
	team := mustCreateTeam(t, f, leader, le, "Solo Team")

	if err := f.enrollment.Cancel(context.Background(), leader, le.EnrollmentID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, err := f.team.GetByID(context.Background(), team.ID); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("expected team to be gone, got %v", err)
	}
}

func TestEnrollmentService_Cancel_RejectsPendingApplications(t *testing.T) {
	f := newFixture(t)
	leader, le := f.addStudent("Lea Leader", f.course1.CourseID)
	applicant, ae := f.addStudent("Abe Applicant", f.course1.CourseID)
	team := mustCreateTeam(t, f, leader, le, "Alpha Team")

	app, err := f.team.Apply(context.Background(), applicant, team.ID, ae.EnrollmentID)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := f.enrollment.Cancel(context.Background(), applicant, ae.EnrollmentID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	stored, _ := f.repo.TeamApplication.GetByID(context.Background(), app.ID)
	if stored.Status != model.ApplicationRejected {
		t.Errorf("expected application REJECTED, got %s", stored.Status)
	}
	if row := f.teamRow(team.ID); row.PendingApplications != 0 {
		t.Errorf("expected seat released, pending=%d", row.PendingApplications)
	}
}

func TestEnrollmentService_Cancel_AdminSoftDeletes(t *testing.T) {
	f := newFixture(t)
	_, e := f.addStudent("Sam Student", f.course1.CourseID)

	if err := f.enrollment.Cancel(context.Background(), principalOf(f.admin), e.EnrollmentID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	stored, _ := f.repo.Enrollment.GetByID(context.Background(), e.EnrollmentID)
	if stored.Status != model.EnrollmentCancelled || !stored.IsDeleted {
		t.Errorf("expected CANCELLED and deleted, got %s deleted=%v", stored.Status, stored.IsDeleted)
	}
}

func TestEnrollmentService_Cancel_OtherStudentForbidden(t *testing.T) {
	f := newFixture(t)
	_, e := f.addStudent("Sam Student", f.course1.CourseID)
	intruder := principalOf(f.addUser(model.RoleStudent, "Ivy Intruder"))

	if err := f.enrollment.Cancel(context.Background(), intruder, e.EnrollmentID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

// ── queries ──

func TestEnrollmentService_Search_StudentForbidden(t *testing.T) {
	f := newFixture(t)
	student := principalOf(f.addUser(model.RoleStudent, "Sam Student"))

	if _, _, err := f.enrollment.Search(context.Background(), student, &dto.EnrollmentSearchRequest{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestEnrollmentService_Search_FiltersAndPages(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Ann", "Ben", "Cat"} {
		f.addStudent(name, f.course1.CourseID)
	}
	u := f.addUser(model.RoleStudent, "Dan")
	f.addEnrollment(u.UserID, f.course1.CourseID, model.EnrollmentPending)

	list, total, err := f.enrollment.Search(context.Background(), principalOf(f.admin), &dto.EnrollmentSearchRequest{
		PaginationRequest: dto.PaginationRequest{Page: 1, PageSize: 2},
		CourseID:          f.course1.CourseID,
		Status:            model.EnrollmentApproved,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total=3, got %d", total)
	}
	if len(list) != 2 {
		t.Errorf("expected a page of 2, got %d", len(list))
	}
}

func TestEnrollmentService_GetByID_Visibility(t *testing.T) {
	f := newFixture(t)
	owner, e := f.addStudent("Sam Student", f.course1.CourseID)
	stranger := principalOf(f.addUser(model.RoleStudent, "Stan Stranger"))

	if _, err := f.enrollment.GetByID(context.Background(), owner, e.EnrollmentID); err != nil {
		t.Errorf("owner should see enrollment: %v", err)
	}
	if _, err := f.enrollment.GetByID(context.Background(), principalOf(f.mentor), e.EnrollmentID); err != nil {
		t.Errorf("course mentor should see enrollment: %v", err)
	}
	if _, err := f.enrollment.GetByID(context.Background(), stranger, e.EnrollmentID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.enrollment.GetByID(context.Background(), owner, "missing"); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Errorf("expected ErrEnrollmentNotFound, got %v", err)
	}
}
