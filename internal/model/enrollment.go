package model

import "time"

// Enrollment status
const (
	EnrollmentPending   = "PENDING"
	EnrollmentApproved  = "APPROVED"
	EnrollmentCompleted = "COMPLETED"
	EnrollmentRejected  = "REJECTED"
	EnrollmentCancelled = "CANCELLED"
)

// Enrollment maps to enrollments.
// At most one PENDING/APPROVED, non-deleted row exists per (user_id, course_id);
// the partial unique index uq_enrollments_active enforces it.
type Enrollment struct {
	EnrollmentID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	UserID         string     `gorm:"type:uuid;not null;index"                       json:"user_id"`
	CourseID       string     `gorm:"type:uuid;not null;index"                       json:"course_id"`
	Status         string     `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	EnrollmentDate time.Time  `gorm:"not null"                                       json:"enrollment_date"`
	ApprovedDate   *time.Time `json:"approved_date,omitempty"`
	ApprovedBy     *string    `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	CompletedDate  *time.Time `json:"completed_date,omitempty"`
	CancelledDate  *time.Time `json:"cancelled_date,omitempty"`
	Score          *float64   `json:"score,omitempty"`
	Grade          *string    `gorm:"type:varchar(5)"                                json:"grade,omitempty"`
	RejectReason   string     `gorm:"type:varchar(500)"                              json:"reject_reason,omitempty"`
	IsDeleted      bool       `gorm:"not null;default:false"                         json:"is_deleted"`
	BaseModel

	User   *User   `gorm:"foreignKey:UserID;references:UserID"     json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName table name
func (Enrollment) TableName() string { return "enrollments" }

// IsActive reports PENDING or APPROVED and not deleted.
func (e *Enrollment) IsActive() bool {
	return !e.IsDeleted && (e.Status == EnrollmentPending || e.Status == EnrollmentApproved)
}

// IsEligibleForTeam reports whether the enrollment may back a team membership.
func (e *Enrollment) IsEligibleForTeam() bool {
	return !e.IsDeleted && e.Status == EnrollmentApproved
}
