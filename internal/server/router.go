package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/scaffoldlab/scaffold-backend/internal/handlers"
	"github.com/scaffoldlab/scaffold-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	UserHandler         *handlers.UserHandler
	CourseHandler       *handlers.CourseHandler
	ClassProfileHandler *handlers.ClassProfileHandler
	ScaffoldHandler     *handlers.ScaffoldHandler
	SessionHandler      *handlers.SessionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Refresh-Token"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// User
	protected.GET("/user", cfg.UserHandler.GetMe)

	// Courses and readings
	protected.POST("/courses", cfg.CourseHandler.Create)
	protected.GET("/courses", cfg.CourseHandler.List)
	protected.GET("/courses/:course_id", cfg.CourseHandler.Get)
	protected.PUT("/courses/:course_id/perusall", cfg.CourseHandler.LinkPerusall)
	protected.POST("/courses/:course_id/readings", cfg.CourseHandler.CreateReading)
	protected.GET("/courses/:course_id/readings", cfg.CourseHandler.ListReadings)

	// Class profile
	protected.POST("/courses/:course_id/profile/generate", cfg.ClassProfileHandler.Generate)
	protected.GET("/courses/:course_id/profile", cfg.ClassProfileHandler.GetView)
	protected.PUT("/courses/:course_id/profile", cfg.ClassProfileHandler.ManualEdit)
	protected.POST("/courses/:course_id/profile/refine", cfg.ClassProfileHandler.Refine)
	protected.POST("/courses/:course_id/profile/approve", cfg.ClassProfileHandler.Approve)
	protected.POST("/courses/:course_id/profile/revert", cfg.ClassProfileHandler.Revert)
	protected.GET("/courses/:course_id/profile/history", cfg.ClassProfileHandler.History)

	// Course basic info
	protected.GET("/courses/:course_id/basic-info", cfg.ClassProfileHandler.GetBasicInfo)
	protected.PUT("/courses/:course_id/basic-info", cfg.ClassProfileHandler.UpsertBasicInfo)
	protected.GET("/courses/:course_id/basic-info/history", cfg.ClassProfileHandler.BasicInfoHistory)

	// Scaffold annotations
	protected.POST("/readings/:reading_id/annotations", cfg.ScaffoldHandler.Create)
	protected.GET("/readings/:reading_id/annotations", cfg.ScaffoldHandler.ListByReading)
	protected.PUT("/annotations/:annotation_id", cfg.ScaffoldHandler.ManualEdit)
	protected.POST("/annotations/:annotation_id/refine", cfg.ScaffoldHandler.Refine)
	protected.POST("/annotations/:annotation_id/approve", cfg.ScaffoldHandler.Approve)
	protected.POST("/annotations/:annotation_id/reject", cfg.ScaffoldHandler.Reject)
	protected.POST("/annotations/:annotation_id/revert", cfg.ScaffoldHandler.Revert)
	protected.GET("/annotations/:annotation_id/coords", cfg.ScaffoldHandler.Coords)
	protected.GET("/annotations/:annotation_id/history", cfg.ScaffoldHandler.History)

	// Sessions
	protected.POST("/courses/:course_id/sessions", cfg.SessionHandler.Create)
	protected.GET("/courses/:course_id/sessions", cfg.SessionHandler.ListByCourse)
	protected.PUT("/sessions/:session_id", cfg.SessionHandler.ManualEdit)
	protected.PUT("/sessions/:session_id/assignment", cfg.SessionHandler.LinkAssignment)
	protected.POST("/sessions/:session_id/readings/rederive", cfg.SessionHandler.RederiveReadings)
	protected.GET("/sessions/:session_id/readings/expected", cfg.SessionHandler.ExpectedReadings)
	protected.GET("/sessions/:session_id/readings", cfg.SessionHandler.Readings)
	protected.GET("/sessions/:session_id/history", cfg.SessionHandler.History)

	return router
}
