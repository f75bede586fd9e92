package model

import "time"

// Course status
const (
	CourseUpcoming  = "UPCOMING"
	CourseOngoing   = "ONGOING"
	CourseCompleted = "COMPLETED"
)

// Course maps to courses.
// TeamMaxMembers is the default team size for teams created in this course;
// zero falls back to the server-wide default.
type Course struct {
	CourseID              string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code                  string     `gorm:"type:varchar(20);not null"                      json:"code"`
	Name                  string     `gorm:"type:varchar(200);not null"                     json:"name"`
	SemesterID            string     `gorm:"type:uuid;not null;index"                       json:"semester_id"`
	MentorID              string     `gorm:"type:uuid;not null;index"                       json:"mentor_id"`
	MaxStudents           int        `gorm:"not null;default:0"                             json:"max_students"`
	TeamMaxMembers        int        `gorm:"not null;default:0"                             json:"team_max_members"`
	Status                string     `gorm:"type:varchar(20);not null;default:'UPCOMING'"   json:"status"`
	TeamFormationDeadline *time.Time `json:"team_formation_deadline,omitempty"`
	SoftDeleteModel

	Semester *Semester `gorm:"foreignKey:SemesterID;references:SemesterID" json:"semester,omitempty"`
	Mentor   *User     `gorm:"foreignKey:MentorID;references:UserID"       json:"mentor,omitempty"`
}

// TableName table name
func (Course) TableName() string { return "courses" }
