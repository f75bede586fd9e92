package handler

import "course-ops/backend/internal/service"

// Handler aggregates every HTTP handler
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Semester   *SemesterHandler
	Course     *CourseHandler
	Enrollment *EnrollmentHandler
	Team       *TeamHandler
	Report     *ReportHandler
	Export     *ExportHandler
}

// NewHandler builds the handlers from the service aggregate
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Semester:   NewSemesterHandler(svc.Semester),
		Course:     NewCourseHandler(svc.Course),
		Enrollment: NewEnrollmentHandler(svc.Enrollment),
		Team:       NewTeamHandler(svc.Team),
		Report:     NewReportHandler(svc.Report),
		Export:     NewExportHandler(svc.Export),
	}
}
