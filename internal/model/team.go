package model

import "time"

// Team status, derived from occupancy
const (
	TeamOpening = "OPENING"
	TeamClosed  = "CLOSED"
)

// Member roles
const (
	MemberLeader = "LEADER"
	MemberMember = "MEMBER"
)

// Application status
const (
	ApplicationPending  = "PENDING"
	ApplicationApproved = "APPROVED"
	ApplicationRejected = "REJECTED"
)

// Team maps to teams.
// CurrentMembers and PendingApplications are maintained in the same transaction
// as the member/application rows; Version guards every mutation.
type Team struct {
	TeamID              string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"team_id"`
	Name                string `gorm:"type:varchar(100);not null"                     json:"name"`
	CourseID            string `gorm:"type:uuid;not null;index"                       json:"course_id"`
	LeaderID            string `gorm:"type:uuid;not null"                             json:"leader_id"`
	MaxMembers          int    `gorm:"not null"                                       json:"max_members"`
	CurrentMembers      int    `gorm:"not null;default:0"                             json:"current_members"`
	PendingApplications int    `gorm:"not null;default:0"                             json:"pending_applications"`
	Version             int    `gorm:"not null;default:1"                             json:"version"`
	BaseModel

	Members []TeamMember `gorm:"foreignKey:TeamID;references:TeamID" json:"members,omitempty"`
}

// TableName table name
func (Team) TableName() string { return "teams" }

// Status is OPENING while seats remain, CLOSED at capacity.
func (t *Team) Status() string {
	if t.CurrentMembers >= t.MaxMembers {
		return TeamClosed
	}
	return TeamOpening
}

// HasFreeSeat reports whether a new application can still be admitted.
// Pending applications hold a seat until they are resolved.
func (t *Team) HasFreeSeat() bool {
	return t.CurrentMembers+t.PendingApplications < t.MaxMembers
}

// Leader returns the LEADER row from the loaded members.
func (t *Team) Leader() *TeamMember {
	for i := range t.Members {
		if t.Members[i].Role == MemberLeader {
			return &t.Members[i]
		}
	}
	return nil
}

// MemberByEnrollment finds a loaded member by enrollment id.
func (t *Team) MemberByEnrollment(enrollmentID string) *TeamMember {
	for i := range t.Members {
		if t.Members[i].EnrollmentID == enrollmentID {
			return &t.Members[i]
		}
	}
	return nil
}

// TeamMember maps to team_members.
// uq_team_members_course_user keeps one team per course per student.
type TeamMember struct {
	MemberID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"member_id"`
	TeamID       string    `gorm:"type:uuid;not null;index"                       json:"team_id"`
	CourseID     string    `gorm:"type:uuid;not null"                             json:"course_id"`
	EnrollmentID string    `gorm:"type:uuid;not null;uniqueIndex"                 json:"enrollment_id"`
	UserID       string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Role         string    `gorm:"type:varchar(10);not null;default:'MEMBER'"     json:"role"`
	JoinedAt     time.Time `gorm:"not null"                                       json:"joined_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName table name
func (TeamMember) TableName() string { return "team_members" }

// TeamApplication maps to team_applications.
// uq_team_applications_pending allows one PENDING application per course per student.
type TeamApplication struct {
	ApplicationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"application_id"`
	TeamID        string     `gorm:"type:uuid;not null;index"                       json:"team_id"`
	CourseID      string     `gorm:"type:uuid;not null"                             json:"course_id"`
	EnrollmentID  string     `gorm:"type:uuid;not null;index"                       json:"enrollment_id"`
	UserID        string     `gorm:"type:uuid;not null"                             json:"user_id"`
	Status        string     `gorm:"type:varchar(10);not null;default:'PENDING'"    json:"status"`
	RequestedAt   time.Time  `gorm:"not null"                                       json:"requested_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy    *string    `gorm:"type:uuid"                                      json:"resolved_by,omitempty"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName table name
func (TeamApplication) TableName() string { return "team_applications" }
