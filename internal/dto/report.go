package dto

// ── reports ──
// Every report is a point-in-time snapshot stamped with AsOf.

// TeamFormationRateResponse course formation rate
type TeamFormationRateResponse struct {
	CourseID         string  `json:"course_id"`
	EnrolledStudents int64   `json:"enrolled_students"`
	StudentsInTeams  int64   `json:"students_in_teams"`
	Rate             float64 `json:"rate"`
	AsOf             string  `json:"as_of"`
}

// MentorPerformanceResponse per-mentor aggregate
type MentorPerformanceResponse struct {
	MentorID                 string  `json:"mentor_id"`
	MentorName               string  `json:"mentor_name,omitempty"`
	SemesterID               string  `json:"semester_id,omitempty"`
	TotalCourses             int     `json:"total_courses"`
	TotalStudents            int64   `json:"total_students"`
	TotalTeams               int64   `json:"total_teams"`
	StudentsInTeams          int64   `json:"students_in_teams"`
	AverageStudentsPerCourse float64 `json:"average_students_per_course"`
	AverageTeamsPerCourse    float64 `json:"average_teams_per_course"`
	TeamFormationRate        float64 `json:"team_formation_rate"`
	AsOf                     string  `json:"as_of"`
}

// MentorStudentResponse a student taught by a mentor
type MentorStudentResponse struct {
	UserID       string `json:"user_id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	CourseID     string `json:"course_id"`
	CourseCode   string `json:"course_code"`
	EnrollmentID string `json:"enrollment_id"`
	TeamID       string `json:"team_id,omitempty"`
	TeamName     string `json:"team_name,omitempty"`
}

// SemesterSnapshot current semester figures
type SemesterSnapshot struct {
	SemesterID        string  `json:"semester_id"`
	Name              string  `json:"name"`
	Courses           int     `json:"courses"`
	EnrolledStudents  int64   `json:"enrolled_students"`
	Teams             int64   `json:"teams"`
	TeamFormationRate float64 `json:"team_formation_rate"`
}

// DashboardResponse system-wide counts
type DashboardResponse struct {
	UsersByRole         map[string]int64  `json:"users_by_role"`
	CoursesByStatus     map[string]int64  `json:"courses_by_status"`
	EnrollmentsByStatus map[string]int64  `json:"enrollments_by_status"`
	TotalUsers          int64             `json:"total_users"`
	TotalCourses        int64             `json:"total_courses"`
	TotalEnrollments    int64             `json:"total_enrollments"`
	TotalTeams          int64             `json:"total_teams"`
	CurrentSemester     *SemesterSnapshot `json:"current_semester,omitempty"`
	AsOf                string            `json:"as_of"`
}

// CourseStatisticsResponse course health
type CourseStatisticsResponse struct {
	CourseID            string  `json:"course_id"`
	CourseCode          string  `json:"course_code"`
	PendingEnrollments  int64   `json:"pending_enrollments"`
	ApprovedEnrollments int64   `json:"approved_enrollments"`
	Teams               int     `json:"teams"`
	OpenTeams           int     `json:"open_teams"`
	ClosedTeams         int     `json:"closed_teams"`
	StudentsInTeams     int64   `json:"students_in_teams"`
	StudentsWithoutTeam int64   `json:"students_without_team"`
	AverageTeamSize     float64 `json:"average_team_size"`
	TeamFormationRate   float64 `json:"team_formation_rate"`
	AsOf                string  `json:"as_of"`
}

// TeamStatisticsResponse team counts over a scope
type TeamStatisticsResponse struct {
	CourseID        string  `json:"course_id,omitempty"`
	TotalTeams      int     `json:"total_teams"`
	OpenTeams       int     `json:"open_teams"`
	ClosedTeams     int     `json:"closed_teams"`
	TotalMembers    int     `json:"total_members"`
	AverageTeamSize float64 `json:"average_team_size"`
	AsOf            string  `json:"as_of"`
}

// EnrollmentStatisticsResponse enrollment counts by status
type EnrollmentStatisticsResponse struct {
	CourseID string           `json:"course_id,omitempty"`
	ByStatus map[string]int64 `json:"by_status"`
	Total    int64            `json:"total"`
	AsOf     string           `json:"as_of"`
}

// ReportScopeRequest optional scope filters
type ReportScopeRequest struct {
	CourseID   string `form:"course_id"`
	SemesterID string `form:"semester_id"`
}
