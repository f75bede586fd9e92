package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"course-ops/backend/config"
	"course-ops/backend/internal/api/handler"
	"course-ops/backend/internal/api/middleware"
	"course-ops/backend/internal/model"
	"course-ops/backend/pkg/jwt"
	"course-ops/backend/pkg/redis"
)

// Setup builds the gin engine. rdb may be nil; token revocation checks and
// rate limiting are then skipped.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── health ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limit := middleware.RateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	admin := middleware.RoleAuth(model.RoleAdmin)
	staff := middleware.RoleAuth(model.RoleAdmin, model.RoleMentor)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", limit, h.Auth.Login)
			auth.POST("/refresh", limit, h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			users := authorized.Group("/users", admin)
			{
				users.GET("", h.User.ListUsers)
				users.POST("", limit, h.User.CreateUser)
				users.GET("/:id", h.User.GetUser)
			}

			semesters := authorized.Group("/semesters")
			{
				semesters.GET("", h.Semester.ListSemesters)
				semesters.GET("/current", h.Semester.GetCurrentSemester)
				semesters.GET("/:id", h.Semester.GetSemester)
				semesters.POST("", admin, limit, h.Semester.CreateSemester)
				semesters.PUT("/:id/activate", admin, limit, h.Semester.ActivateSemester)
			}

			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/:id", h.Course.GetCourse)
				courses.POST("", admin, limit, h.Course.CreateCourse)
				courses.PUT("/:id/complete", staff, limit, h.Course.CompleteCourse)
				courses.GET("/:id/enrollments", staff, h.Enrollment.ListCourseEnrollments)
				courses.GET("/:id/teams", h.Team.ListCourseTeams)
			}

			enrollments := authorized.Group("/enrollments")
			{
				enrollments.GET("", staff, h.Enrollment.SearchEnrollments)
				enrollments.POST("", limit, h.Enrollment.CreateEnrollment)
				enrollments.GET("/me", h.Enrollment.ListMyEnrollments)
				enrollments.GET("/:id", h.Enrollment.GetEnrollment)
				enrollments.GET("/:id/applications", h.Team.MyApplications)
				enrollments.PUT("/:id/approve", staff, limit, h.Enrollment.ApproveEnrollment)
				enrollments.PUT("/:id/reject", staff, limit, h.Enrollment.RejectEnrollment)
				enrollments.PUT("/:id/complete", staff, limit, h.Enrollment.CompleteEnrollment)
				enrollments.DELETE("/:id", limit, h.Enrollment.CancelEnrollment)
			}

			teams := authorized.Group("/teams")
			{
				teams.POST("", limit, h.Team.CreateTeam)
				teams.GET("/:id", h.Team.GetTeam)
				teams.PUT("/:id/name", limit, h.Team.UpdateTeamName)
				teams.DELETE("/:id", limit, h.Team.DisbandTeam)
				teams.PUT("/:id/leader", limit, h.Team.TransferLeadership)
				teams.POST("/:id/leave", limit, h.Team.LeaveTeam)
				teams.DELETE("/:id/members/:enrollmentId", limit, h.Team.RemoveMember)
				teams.POST("/:id/applications", limit, h.Team.Apply)
				teams.GET("/:id/applications", h.Team.ListApplications)
				teams.PUT("/:id/applications/:appId/approve", limit, h.Team.ApproveApplication)
				teams.PUT("/:id/applications/:appId/reject", limit, h.Team.RejectApplication)
			}

			authorized.DELETE("/applications/:appId", limit, h.Team.WithdrawApplication)

			reports := authorized.Group("/reports", staff)
			{
				reports.GET("/dashboard", admin, h.Report.Dashboard)
				reports.GET("/mentor-performance", admin, h.Report.AllMentorPerformance)
				reports.GET("/mentors/:id/students", h.Report.StudentsByMentor)
				reports.GET("/mentors/:id/performance", h.Report.MentorPerformance)
				reports.GET("/courses/:id", h.Report.CourseStatistics)
				reports.GET("/courses/:id/team-formation-rate", h.Report.TeamFormationRate)
				reports.GET("/teams", h.Report.TeamStatistics)
				reports.GET("/enrollments", h.Report.EnrollmentStatistics)
			}

			export := authorized.Group("/export")
			{
				export.GET("/courses/:id/teams", staff, h.Export.ExportCourseTeams)
				export.GET("/courses/:id/deadline.ics", h.Export.ExportFormationDeadline)
			}
		}
	}

	return r
}
