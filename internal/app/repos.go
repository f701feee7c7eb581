package app

import (
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/repos"
)

type Repos struct {
	User                      repos.UserRepo
	UserToken                 repos.UserTokenRepo
	Course                    repos.CourseRepo
	Reading                   repos.ReadingRepo
	ClassProfile              repos.ClassProfileRepo
	ClassProfileVersion       repos.ClassProfileVersionRepo
	CourseBasicInfo           repos.CourseBasicInfoRepo
	CourseBasicInfoVersion    repos.CourseBasicInfoVersionRepo
	ScaffoldAnnotation        repos.ScaffoldAnnotationRepo
	ScaffoldAnnotationVersion repos.ScaffoldAnnotationVersionRepo
	AnnotationHighlightCoords repos.AnnotationHighlightCoordsRepo
	Session                   repos.SessionRepo
	SessionVersion            repos.SessionVersionRepo
	SessionReading            repos.SessionReadingRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:                      repos.NewUserRepo(db, log),
		UserToken:                 repos.NewUserTokenRepo(db, log),
		Course:                    repos.NewCourseRepo(db, log),
		Reading:                   repos.NewReadingRepo(db, log),
		ClassProfile:              repos.NewClassProfileRepo(db, log),
		ClassProfileVersion:       repos.NewClassProfileVersionRepo(db, log),
		CourseBasicInfo:           repos.NewCourseBasicInfoRepo(db, log),
		CourseBasicInfoVersion:    repos.NewCourseBasicInfoVersionRepo(db, log),
		ScaffoldAnnotation:        repos.NewScaffoldAnnotationRepo(db, log),
		ScaffoldAnnotationVersion: repos.NewScaffoldAnnotationVersionRepo(db, log),
		AnnotationHighlightCoords: repos.NewAnnotationHighlightCoordsRepo(db, log),
		Session:                   repos.NewSessionRepo(db, log),
		SessionVersion:            repos.NewSessionVersionRepo(db, log),
		SessionReading:            repos.NewSessionReadingRepo(db, log),
	}
}
