package app

import (
	"github.com/gin-gonic/gin"

	"github.com/scaffoldlab/scaffold-backend/internal/handlers"
	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/middleware"
	"github.com/scaffoldlab/scaffold-backend/internal/server"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Course       *handlers.CourseHandler
	ClassProfile *handlers.ClassProfileHandler
	Scaffold     *handlers.ScaffoldHandler
	Session      *handlers.SessionHandler
}

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:         handlers.NewAuthHandler(s.Auth),
		User:         handlers.NewUserHandler(s.User),
		Course:       handlers.NewCourseHandler(log, s.Course),
		ClassProfile: handlers.NewClassProfileHandler(log, s.ClassProfile, s.BasicInfo),
		Scaffold:     handlers.NewScaffoldHandler(log, s.Scaffold),
		Session:      handlers.NewSessionHandler(log, s.Session),
	}
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, s.Auth),
	}
}

func wireRouter(h Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:         h.Auth,
		AuthMiddleware:      mw.Auth,
		UserHandler:         h.User,
		CourseHandler:       h.Course,
		ClassProfileHandler: h.ClassProfile,
		ScaffoldHandler:     h.Scaffold,
		SessionHandler:      h.Session,
	})
}
