package app

import (
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/services"
)

const generationSystemPrompt = `You are an instructional-design assistant. Given structured
class input (discipline, course, and class information plus design
considerations), produce a JSON object with a "generated_profile" object
whose keys are overview, teaching_approach, engagement_plan, and
assessment_strategy, a "class_input" object echoing the structural input,
and an optional "metadata" object with design rationale.`

const refinementSystemPrompt = `You are an instructional-design assistant. You receive the
current class profile JSON and a revision instruction. Apply the
instruction and return the full revised profile as JSON with the same
top-level shape. Never modify the "class_input" object.`

type Services struct {
	Auth         services.AuthService
	User         services.UserService
	Course       services.CourseService
	BasicInfo    services.CourseBasicInfoService
	ClassProfile services.ClassProfileService
	Scaffold     services.ScaffoldService
	Session      services.SessionService
	ViewCache    services.ViewCache
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	openaiClient, err := services.NewOpenAIClient(log, cfg.OpenAI)
	if err != nil {
		return Services{}, err
	}
	generation := services.NewGenerationWorkflow(log, openaiClient, generationSystemPrompt)
	refinement := services.NewRefinementWorkflow(log, openaiClient, refinementSystemPrompt)

	assignments, err := services.NewPerusallClient(log, cfg.Perusall)
	if err != nil {
		// Perusall sync is optional; sessions still work without it until
		// a rederive is requested.
		log.Warn("Perusall client disabled", "error", err)
		assignments = nil
	}

	viewCache, err := services.NewViewCache(log)
	if err != nil {
		return Services{}, err
	}

	basicInfo := services.NewCourseBasicInfoService(db, log, r.Course, r.CourseBasicInfo, r.CourseBasicInfoVersion)
	classProfile := services.NewClassProfileService(db, log, r.Course, r.ClassProfile, r.ClassProfileVersion, basicInfo, generation, refinement, viewCache)
	scaffold := services.NewScaffoldService(db, log, r.Reading, r.ScaffoldAnnotation, r.ScaffoldAnnotationVersion, r.AnnotationHighlightCoords, refinement)
	session := services.NewSessionService(db, log, r.Course, r.Reading, r.Session, r.SessionVersion, r.SessionReading, assignments)

	return Services{
		Auth:         services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		User:         services.NewUserService(db, log, r.User),
		Course:       services.NewCourseService(db, log, r.Course, r.Reading),
		BasicInfo:    basicInfo,
		ClassProfile: classProfile,
		Scaffold:     scaffold,
		Session:      session,
		ViewCache:    viewCache,
	}, nil
}
