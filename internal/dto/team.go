package dto

// ── teams ──

// CreateTeamRequest create payload
type CreateTeamRequest struct {
	EnrollmentID string `json:"enrollment_id" binding:"required"`
	Name         string `json:"name"          binding:"required"`
}

// ActingRequest identifies the caller's enrollment for team operations
type ActingRequest struct {
	EnrollmentID string `json:"enrollment_id" form:"enrollment_id" binding:"required"`
}

// UpdateTeamNameRequest rename payload
type UpdateTeamNameRequest struct {
	EnrollmentID string `json:"enrollment_id" binding:"required"`
	Name         string `json:"name"          binding:"required"`
}

// TransferLeaderRequest leadership hand-over payload
type TransferLeaderRequest struct {
	EnrollmentID       string `json:"enrollment_id"        binding:"required"`
	TargetEnrollmentID string `json:"target_enrollment_id" binding:"required"`
}

// TeamMemberResponse member view
type TeamMemberResponse struct {
	EnrollmentID string `json:"enrollment_id"`
	UserID       string `json:"user_id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	JoinedAt     string `json:"joined_at"`
}

// TeamResponse team view
type TeamResponse struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	CourseID       string               `json:"course_id"`
	LeaderID       string               `json:"leader_id"`
	MaxMembers     int                  `json:"max_members"`
	CurrentMembers int                  `json:"current_members"`
	Status         string               `json:"status"`
	Members        []TeamMemberResponse `json:"members"`
	CreatedAt      string               `json:"created_at"`
	UpdatedAt      string               `json:"updated_at"`
}

// TeamApplicationResponse application view
type TeamApplicationResponse struct {
	ID           string  `json:"id"`
	TeamID       string  `json:"team_id"`
	EnrollmentID string  `json:"enrollment_id"`
	UserID       string  `json:"user_id"`
	FullName     string  `json:"full_name,omitempty"`
	Status       string  `json:"status"`
	RequestedAt  string  `json:"requested_at"`
	ResolvedAt   *string `json:"resolved_at,omitempty"`
}
