package dto

// ── courses ──

// CreateCourseRequest create payload
type CreateCourseRequest struct {
	Code                  string  `json:"code"                    binding:"required,min=2,max=20"`
	Name                  string  `json:"name"                    binding:"required,min=2,max=200"`
	SemesterID            string  `json:"semester_id"             binding:"required"`
	MentorID              string  `json:"mentor_id"               binding:"required"`
	MaxStudents           int     `json:"max_students"            binding:"omitempty,min=0"`
	TeamMaxMembers        int     `json:"team_max_members"        binding:"omitempty,min=0,max=50"`
	Status                string  `json:"status"                  binding:"omitempty,oneof=UPCOMING ONGOING"`
	TeamFormationDeadline *string `json:"team_formation_deadline"` // RFC3339
}

// CourseListRequest list filters
type CourseListRequest struct {
	SemesterID string `form:"semester_id"`
	MentorID   string `form:"mentor_id"`
	Status     string `form:"status" binding:"omitempty,oneof=UPCOMING ONGOING COMPLETED"`
}

// CourseResponse course view; also the getCourseById contract
type CourseResponse struct {
	ID                    string  `json:"id"`
	Code                  string  `json:"code"`
	Name                  string  `json:"name"`
	SemesterID            string  `json:"semester_id"`
	MentorID              string  `json:"mentor_id"`
	MentorName            string  `json:"mentor_name,omitempty"`
	MaxStudents           int     `json:"max_students"`
	TeamMaxMembers        int     `json:"team_max_members"`
	Status                string  `json:"status"`
	TeamFormationDeadline *string `json:"team_formation_deadline,omitempty"`
}

// CompleteCourseResponse result of closing a course
type CompleteCourseResponse struct {
	CourseID             string `json:"course_id"`
	CompletedEnrollments int    `json:"completed_enrollments"`
}
