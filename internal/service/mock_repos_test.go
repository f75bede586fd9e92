package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"course-ops/backend/internal/model"
	"course-ops/backend/internal/repository"
	pkgerrors "course-ops/backend/pkg/errors"
)

// ── in-memory store ──
//
// memStore backs every mock repository. Rows are stored by value and handed
// out as copies, so a service only changes state through repository calls,
// as it would against PostgreSQL. Transaction serialises callers (standing
// in for row locks) and restores a snapshot when fn fails. Unique indexes
// and compare-and-set updates behave like the gorm repositories.

type memStore struct {
	mu   sync.Mutex // guards the tables
	txMu sync.Mutex // one transaction at a time
	seq  int

	users       map[string]model.User
	semesters   map[string]model.Semester
	courses     map[string]model.Course
	enrollments map[string]model.Enrollment
	teams       map[string]model.Team
	members     map[string]model.TeamMember
	apps        map[string]model.TeamApplication

	// failTeamUpdate, when set, is returned by the next Team.Update call
	failTeamUpdate error
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]model.User),
		semesters:   make(map[string]model.Semester),
		courses:     make(map[string]model.Course),
		enrollments: make(map[string]model.Enrollment),
		teams:       make(map[string]model.Team),
		members:     make(map[string]model.TeamMember),
		apps:        make(map[string]model.TeamApplication),
	}
}

// newMockRepository wires the aggregate the services receive.
func newMockRepository(s *memStore) *repository.Repository {
	return &repository.Repository{
		User:            &mockUserRepo{s},
		Semester:        &mockSemesterRepo{s},
		Course:          &mockCourseRepo{s},
		Enrollment:      &mockEnrollmentRepo{s},
		Team:            &mockTeamRepo{s},
		TeamApplication: &mockTeamApplicationRepo{s},
		Tx:              s,
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq)
}

func (s *memStore) Transaction(_ context.Context, fn func(tx *repository.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(newMockRepository(s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// interceptTx wraps a Transactor to stage interleavings. before runs once,
// ahead of the next transaction, and commits on its own; wrap may swap the
// repositories a transaction sees.
type interceptTx struct {
	inner  repository.Transactor
	before func()
	wrap   func(tx *repository.Repository)
}

func (i *interceptTx) Transaction(ctx context.Context, fn func(tx *repository.Repository) error) error {
	if before := i.before; before != nil {
		i.before = nil
		before()
	}
	return i.inner.Transaction(ctx, func(tx *repository.Repository) error {
		if i.wrap != nil {
			i.wrap(tx)
		}
		return fn(tx)
	})
}

// staleMemberTeamRepo answers GetMemberByEnrollment with a row that has
// already been deleted, as an unlocked read racing a removal would.
type staleMemberTeamRepo struct {
	repository.TeamRepository
	stale model.TeamMember
}

func (r *staleMemberTeamRepo) GetMemberByEnrollment(ctx context.Context, enrollmentID string) (*model.TeamMember, error) {
	if enrollmentID == r.stale.EnrollmentID {
		m := r.stale
		return &m, nil
	}
	return r.TeamRepository.GetMemberByEnrollment(ctx, enrollmentID)
}

type memSnapshot struct {
	users       map[string]model.User
	semesters   map[string]model.Semester
	courses     map[string]model.Course
	enrollments map[string]model.Enrollment
	teams       map[string]model.Team
	members     map[string]model.TeamMember
	apps        map[string]model.TeamApplication
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		users:       copyMap(s.users),
		semesters:   copyMap(s.semesters),
		courses:     copyMap(s.courses),
		enrollments: copyMap(s.enrollments),
		teams:       copyMap(s.teams),
		members:     copyMap(s.members),
		apps:        copyMap(s.apps),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.semesters = snap.semesters
	s.courses = snap.courses
	s.enrollments = snap.enrollments
	s.teams = snap.teams
	s.members = snap.members
	s.apps = snap.apps
}

// ── Mock UserRepository ──

type mockUserRepo struct{ s *memStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	if user.UserID == "" {
		user.UserID = m.s.nextID("user")
	}
	user.CreatedAt = time.Now()
	m.s.users[user.UserID] = *user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u, ok := m.s.users[id]; ok {
		return &u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []model.User
	for _, u := range m.s.users {
		if role == "" || u.Role == role {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	users, _, err := m.List(ctx, role, 0, 1<<30)
	return users, err
}

func (m *mockUserRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make(map[string]int64)
	for _, u := range m.s.users {
		out[u.Role]++
	}
	return out, nil
}

// ── Mock SemesterRepository ──

type mockSemesterRepo struct{ s *memStore }

func (m *mockSemesterRepo) Create(_ context.Context, semester *model.Semester) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if semester.SemesterID == "" {
		semester.SemesterID = m.s.nextID("sem")
	}
	m.s.semesters[semester.SemesterID] = *semester
	return nil
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id string) (*model.Semester, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if sem, ok := m.s.semesters[id]; ok {
		return &sem, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetCurrent(_ context.Context) (*model.Semester, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, sem := range m.s.semesters {
		if sem.IsActive {
			return &sem, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) List(_ context.Context) ([]model.Semester, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Semester
	for _, sem := range m.s.semesters {
		out = append(out, sem)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *mockSemesterRepo) Update(_ context.Context, semester *model.Semester) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.semesters[semester.SemesterID] = *semester
	return nil
}

func (m *mockSemesterRepo) ClearActive(_ context.Context) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, sem := range m.s.semesters {
		sem.IsActive = false
		m.s.semesters[id] = sem
	}
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct{ s *memStore }

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.courses {
		if c.SemesterID == course.SemesterID && c.Code == course.Code {
			return repository.ErrDuplicateKey
		}
	}
	if course.CourseID == "" {
		course.CourseID = m.s.nextID("course")
	}
	row := *course
	row.Mentor, row.Semester = nil, nil
	m.s.courses[course.CourseID] = row
	return nil
}

func (m *mockCourseRepo) withRelations(c model.Course) *model.Course {
	if u, ok := m.s.users[c.MentorID]; ok {
		c.Mentor = &u
	}
	if sem, ok := m.s.semesters[c.SemesterID]; ok {
		c.Semester = &sem
	}
	return &c
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.courses[id]; ok {
		return m.withRelations(c), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetForUpdate(_ context.Context, id string) (*model.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.courses[id]; ok {
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, filter repository.CourseFilter) ([]model.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Course
	for _, c := range m.s.courses {
		if filter.SemesterID != "" && c.SemesterID != filter.SemesterID {
			continue
		}
		if filter.MentorID != "" && c.MentorID != filter.MentorID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, *m.withRelations(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *mockCourseRepo) UpdateStatus(_ context.Context, id, status, updatedBy string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.courses[id]
	if !ok {
		return nil
	}
	c.Status = status
	c.UpdatedBy = &updatedBy
	m.s.courses[id] = c
	return nil
}

func (m *mockCourseRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make(map[string]int64)
	for _, c := range m.s.courses {
		out[c.Status]++
	}
	return out, nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct{ s *memStore }

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, other := range m.s.enrollments {
		if other.UserID == e.UserID && other.CourseID == e.CourseID && other.IsActive() {
			return repository.ErrActiveEnrollmentExists
		}
	}
	if e.EnrollmentID == "" {
		e.EnrollmentID = m.s.nextID("enr")
	}
	row := *e
	row.User, row.Course = nil, nil
	m.s.enrollments[e.EnrollmentID] = row
	return nil
}

func (m *mockEnrollmentRepo) withRelations(e model.Enrollment) model.Enrollment {
	if u, ok := m.s.users[e.UserID]; ok {
		e.User = &u
	}
	if c, ok := m.s.courses[e.CourseID]; ok {
		e.Course = &c
	}
	return e
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if e, ok := m.s.enrollments[id]; ok {
		e = m.withRelations(e)
		return &e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) GetForUpdate(_ context.Context, id string) (*model.Enrollment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if e, ok := m.s.enrollments[id]; ok {
		return &e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) GetActiveByUserAndCourse(_ context.Context, userID, courseID string) (*model.Enrollment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, e := range m.s.enrollments {
		if e.UserID == userID && e.CourseID == courseID && e.IsActive() {
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) filter(keep func(e model.Enrollment) bool) []model.Enrollment {
	var out []model.Enrollment
	for _, e := range m.s.enrollments {
		if !e.IsDeleted && keep(e) {
			out = append(out, m.withRelations(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrollmentID < out[j].EnrollmentID })
	return out
}

func (m *mockEnrollmentRepo) ListByUser(_ context.Context, userID string) ([]model.Enrollment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.filter(func(e model.Enrollment) bool { return e.UserID == userID }), nil
}

func (m *mockEnrollmentRepo) ListByCourse(_ context.Context, courseID, status string) ([]model.Enrollment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.filter(func(e model.Enrollment) bool {
		return e.CourseID == courseID && (status == "" || e.Status == status)
	}), nil
}

func (m *mockEnrollmentRepo) ListApprovedByCourses(_ context.Context, courseIDs []string) ([]model.Enrollment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	in := toSet(courseIDs)
	return m.filter(func(e model.Enrollment) bool {
		return in[e.CourseID] && e.Status == model.EnrollmentApproved
	}), nil
}

func (m *mockEnrollmentRepo) Search(_ context.Context, f repository.EnrollmentFilter, offset, limit int) ([]model.Enrollment, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := m.filter(func(e model.Enrollment) bool {
		return (f.UserID == "" || e.UserID == f.UserID) &&
			(f.CourseID == "" || e.CourseID == f.CourseID) &&
			(f.Status == "" || e.Status == f.Status)
	})
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockEnrollmentRepo) Transition(_ context.Context, id string, from []string, t repository.EnrollmentTransition) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.enrollments[id]
	if !ok || e.IsDeleted || !toSet(from)[e.Status] {
		return pkgerrors.ErrConcurrencyConflict
	}
	e.Status = t.To
	e.UpdatedBy = &t.UpdatedBy
	if t.ApprovedBy != nil {
		e.ApprovedBy = t.ApprovedBy
	}
	if t.ApprovedDate != nil {
		e.ApprovedDate = t.ApprovedDate
	}
	if t.CompletedDate != nil {
		e.CompletedDate = t.CompletedDate
	}
	if t.CancelledDate != nil {
		e.CancelledDate = t.CancelledDate
	}
	if t.Score != nil {
		e.Score = t.Score
	}
	if t.Grade != nil {
		e.Grade = t.Grade
	}
	if t.RejectReason != "" {
		e.RejectReason = t.RejectReason
	}
	if t.SoftDelete {
		e.IsDeleted = true
	}
	m.s.enrollments[id] = e
	return nil
}

func (m *mockEnrollmentRepo) CountActiveByCourse(_ context.Context, courseID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, e := range m.s.enrollments {
		if e.CourseID == courseID && e.IsActive() {
			n++
		}
	}
	return n, nil
}

func (m *mockEnrollmentRepo) CountByStatus(_ context.Context, courseID string) (map[string]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make(map[string]int64)
	for _, e := range m.s.enrollments {
		if !e.IsDeleted && (courseID == "" || e.CourseID == courseID) {
			out[e.Status]++
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) CountApprovedByCourses(_ context.Context, courseIDs []string) (map[string]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	in := toSet(courseIDs)
	out := make(map[string]int64)
	for _, e := range m.s.enrollments {
		if in[e.CourseID] && !e.IsDeleted && e.Status == model.EnrollmentApproved {
			out[e.CourseID]++
		}
	}
	return out, nil
}

// ── Mock TeamRepository ──

type mockTeamRepo struct{ s *memStore }

func (m *mockTeamRepo) Create(_ context.Context, team *model.Team) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if team.TeamID == "" {
		team.TeamID = m.s.nextID("team")
	}
	now := time.Now()
	team.CreatedAt, team.UpdatedAt = now, now
	row := *team
	row.Members = nil
	m.s.teams[team.TeamID] = row
	return nil
}

// load assembles the team with members in join order.
func (m *mockTeamRepo) load(id string) (*model.Team, error) {
	t, ok := m.s.teams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	t.Members = nil
	for _, mem := range m.s.members {
		if mem.TeamID == id {
			if u, ok := m.s.users[mem.UserID]; ok {
				mem.User = &u
			}
			t.Members = append(t.Members, mem)
		}
	}
	sort.Slice(t.Members, func(i, j int) bool {
		if !t.Members[i].JoinedAt.Equal(t.Members[j].JoinedAt) {
			return t.Members[i].JoinedAt.Before(t.Members[j].JoinedAt)
		}
		return t.Members[i].MemberID < t.Members[j].MemberID
	})
	return &t, nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (*model.Team, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.load(id)
}

func (m *mockTeamRepo) GetForUpdate(ctx context.Context, id string) (*model.Team, error) {
	return m.GetByID(ctx, id)
}

func (m *mockTeamRepo) ListByCourse(_ context.Context, courseID string) ([]model.Team, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Team
	for id, t := range m.s.teams {
		if t.CourseID == courseID {
			full, _ := m.load(id)
			out = append(out, *full)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (m *mockTeamRepo) ListByCourses(_ context.Context, courseIDs []string) ([]model.Team, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	in := toSet(courseIDs)
	var out []model.Team
	for _, t := range m.s.teams {
		if in[t.CourseID] {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (m *mockTeamRepo) Update(_ context.Context, team *model.Team) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.failTeamUpdate; err != nil {
		m.s.failTeamUpdate = nil
		return err
	}
	cur, ok := m.s.teams[team.TeamID]
	if !ok || cur.Version != team.Version {
		return pkgerrors.ErrConcurrencyConflict
	}
	if team.CurrentMembers > team.MaxMembers {
		return fmt.Errorf("check constraint: current_members %d exceeds max_members %d", team.CurrentMembers, team.MaxMembers)
	}
	cur.Name = team.Name
	cur.LeaderID = team.LeaderID
	cur.CurrentMembers = team.CurrentMembers
	cur.PendingApplications = team.PendingApplications
	cur.UpdatedBy = team.UpdatedBy
	cur.UpdatedAt = time.Now()
	cur.Version = team.Version + 1
	m.s.teams[team.TeamID] = cur
	team.Version = cur.Version
	return nil
}

func (m *mockTeamRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.teams[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for appID, a := range m.s.apps {
		if a.TeamID == id {
			delete(m.s.apps, appID)
		}
	}
	for memberID, mem := range m.s.members {
		if mem.TeamID == id {
			delete(m.s.members, memberID)
		}
	}
	delete(m.s.teams, id)
	return nil
}

func (m *mockTeamRepo) Count(_ context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return int64(len(m.s.teams)), nil
}

func (m *mockTeamRepo) AddMember(_ context.Context, member *model.TeamMember) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, other := range m.s.members {
		if (other.CourseID == member.CourseID && other.UserID == member.UserID) ||
			other.EnrollmentID == member.EnrollmentID {
			return repository.ErrTeamMembershipExists
		}
		if other.TeamID == member.TeamID && other.Role == model.MemberLeader && member.Role == model.MemberLeader {
			return repository.ErrDuplicateKey
		}
	}
	if member.MemberID == "" {
		member.MemberID = m.s.nextID("member")
	}
	row := *member
	row.User = nil
	m.s.members[member.MemberID] = row
	return nil
}

func (m *mockTeamRepo) UpdateMemberRole(_ context.Context, memberID, role string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	mem, ok := m.s.members[memberID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if role == model.MemberLeader {
		for _, other := range m.s.members {
			if other.TeamID == mem.TeamID && other.MemberID != memberID && other.Role == model.MemberLeader {
				return repository.ErrDuplicateKey
			}
		}
	}
	mem.Role = role
	m.s.members[memberID] = mem
	return nil
}

func (m *mockTeamRepo) RemoveMember(_ context.Context, memberID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.members[memberID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.s.members, memberID)
	return nil
}

func (m *mockTeamRepo) GetMemberByEnrollment(_ context.Context, enrollmentID string) (*model.TeamMember, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, mem := range m.s.members {
		if mem.EnrollmentID == enrollmentID {
			return &mem, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) GetMemberByUserAndCourse(_ context.Context, userID, courseID string) (*model.TeamMember, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, mem := range m.s.members {
		if mem.UserID == userID && mem.CourseID == courseID {
			return &mem, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) ListMembersByCourses(_ context.Context, courseIDs []string) ([]model.TeamMember, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	in := toSet(courseIDs)
	var out []model.TeamMember
	for _, mem := range m.s.members {
		if in[mem.CourseID] {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *mockTeamRepo) CountMembersByCourses(_ context.Context, courseIDs []string) (map[string]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	in := toSet(courseIDs)
	seen := make(map[string]bool)
	out := make(map[string]int64)
	for _, mem := range m.s.members {
		key := mem.CourseID + "/" + mem.UserID
		if in[mem.CourseID] && !seen[key] {
			seen[key] = true
			out[mem.CourseID]++
		}
	}
	return out, nil
}

// ── Mock TeamApplicationRepository ──

type mockTeamApplicationRepo struct{ s *memStore }

func (m *mockTeamApplicationRepo) Create(_ context.Context, app *model.TeamApplication) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, other := range m.s.apps {
		if other.Status == model.ApplicationPending && other.CourseID == app.CourseID && other.UserID == app.UserID {
			return repository.ErrPendingApplicationExists
		}
	}
	if app.ApplicationID == "" {
		app.ApplicationID = m.s.nextID("app")
	}
	row := *app
	row.User = nil
	m.s.apps[app.ApplicationID] = row
	return nil
}

func (m *mockTeamApplicationRepo) GetByID(_ context.Context, id string) (*model.TeamApplication, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if u, ok := m.s.users[a.UserID]; ok {
		a.User = &u
	}
	return &a, nil
}

func (m *mockTeamApplicationRepo) list(keep func(a model.TeamApplication) bool) []model.TeamApplication {
	var out []model.TeamApplication
	for _, a := range m.s.apps {
		if !keep(a) {
			continue
		}
		if u, ok := m.s.users[a.UserID]; ok {
			a.User = &u
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApplicationID < out[j].ApplicationID })
	return out
}

func (m *mockTeamApplicationRepo) ListByTeam(_ context.Context, teamID, status string) ([]model.TeamApplication, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.list(func(a model.TeamApplication) bool {
		return a.TeamID == teamID && (status == "" || a.Status == status)
	}), nil
}

func (m *mockTeamApplicationRepo) ListByEnrollment(_ context.Context, enrollmentID string) ([]model.TeamApplication, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.list(func(a model.TeamApplication) bool { return a.EnrollmentID == enrollmentID }), nil
}

func (m *mockTeamApplicationRepo) Resolve(_ context.Context, id, status string, resolvedBy *string, at time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.apps[id]
	if !ok || a.Status != model.ApplicationPending {
		return pkgerrors.ErrConcurrencyConflict
	}
	a.Status = status
	a.ResolvedBy = resolvedBy
	a.ResolvedAt = &at
	m.s.apps[id] = a
	return nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
