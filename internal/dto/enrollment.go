package dto

// ── enrollments ──

// CreateEnrollmentRequest enroll payload.
// UserID is only honoured for admins enrolling someone else.
type CreateEnrollmentRequest struct {
	CourseID string `json:"course_id" binding:"required"`
	UserID   string `json:"user_id"`
}

// RejectEnrollmentRequest reject payload
type RejectEnrollmentRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// CompleteEnrollmentRequest completion payload
type CompleteEnrollmentRequest struct {
	Score *float64 `json:"score" binding:"omitempty,min=0,max=100"`
	Grade *string  `json:"grade" binding:"omitempty,max=5"`
}

// EnrollmentSearchRequest search filters
type EnrollmentSearchRequest struct {
	PaginationRequest
	UserID   string `form:"user_id"`
	CourseID string `form:"course_id"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING APPROVED COMPLETED REJECTED CANCELLED"`
}

// EnrollmentResponse enrollment view
type EnrollmentResponse struct {
	ID             string   `json:"id"`
	UserID         string   `json:"user_id"`
	FullName       string   `json:"full_name,omitempty"`
	CourseID       string   `json:"course_id"`
	CourseCode     string   `json:"course_code,omitempty"`
	Status         string   `json:"status"`
	EnrollmentDate string   `json:"enrollment_date"`
	ApprovedDate   *string  `json:"approved_date,omitempty"`
	ApprovedBy     *string  `json:"approved_by,omitempty"`
	CompletedDate  *string  `json:"completed_date,omitempty"`
	Score          *float64 `json:"score,omitempty"`
	Grade          *string  `json:"grade,omitempty"`
	RejectReason   string   `json:"reject_reason,omitempty"`
	IsDeleted      bool     `json:"is_deleted"`
}
