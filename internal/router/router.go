package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/examlink/examlink-backend/internal/config"
	"github.com/examlink/examlink-backend/internal/handler"
	"github.com/examlink/examlink-backend/internal/middleware"
	"github.com/examlink/examlink-backend/internal/response"
	"github.com/examlink/examlink-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	Exam   *handler.ExamHandler
	Portal *handler.PortalHandler
	Stream *handler.StreamHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Auth group (public, rate limited).
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		auth.POST("/logout", middleware.RequireTeacherJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireTeacherJWT(authService), handlers.Auth.Me)
	}

	// Public exam surface. OptionalTeacherJWT lets the client send an
	// authenticated teacher back to the dashboard.
	router.GET("/api/v1/exam",
		middleware.OptionalTeacherJWT(authService),
		handlers.Portal.Load,
	)

	// WebSocket attempt stream. Students are anonymous; the exam link is
	// the only credential.
	ws := router.Group("/ws/v1")
	{
		ws.GET("/exam", handlers.Stream.ExamStream)
	}

	// Teacher dashboard (JWT).
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.POST("/exams", handlers.Exam.Create)
		teacherAPI.GET("/exams", handlers.Exam.List)
		teacherAPI.DELETE("/exams", handlers.Exam.DeleteAll)
		teacherAPI.POST("/exams/preview", handlers.Exam.PreviewLink)
		teacherAPI.DELETE("/exams/:exam_id", handlers.Exam.Delete)
		teacherAPI.GET("/exams/:exam_id/share", handlers.Exam.ShareLink)
		teacherAPI.GET("/exams/:exam_id/results", handlers.Exam.Results)
		teacherAPI.GET("/exams/:exam_id/results/export", handlers.Exam.ExportResults)
		teacherAPI.GET("/exams/:exam_id/integrity", handlers.Exam.Integrity)
	}

	return router
}
