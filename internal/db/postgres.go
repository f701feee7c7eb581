package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
	"github.com/scaffoldlab/scaffold-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "scaffold", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Course{},
		&types.Reading{},
		&types.ClassProfile{},
		&types.ClassProfileVersion{},
		&types.CourseBasicInfo{},
		&types.CourseBasicInfoVersion{},
		&types.ScaffoldAnnotation{},
		&types.ScaffoldAnnotationVersion{},
		&types.AnnotationHighlightCoords{},
		&types.Session{},
		&types.SessionVersion{},
		&types.SessionReading{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		table, name, column, refTable, refColumn string
	}{
		{"user_token", "fk_user_token_user_id", "user_id", "user", "id"},
		{"course", "fk_course_owner_id", "owner_id", "user", "id"},
		{"reading", "fk_reading_course_id", "course_id", "course", "id"},
		{"class_profile", "fk_class_profile_course_id", "course_id", "course", "id"},
		{"class_profile_version", "fk_class_profile_version_profile_id", "class_profile_id", "class_profile", "id"},
		{"course_basic_info", "fk_course_basic_info_course_id", "course_id", "course", "id"},
		{"course_basic_info_version", "fk_course_basic_info_version_info_id", "course_basic_info_id", "course_basic_info", "id"},
		{"scaffold_annotation", "fk_scaffold_annotation_reading_id", "reading_id", "reading", "id"},
		{"scaffold_annotation_version", "fk_scaffold_annotation_version_annotation_id", "scaffold_annotation_id", "scaffold_annotation", "id"},
		{"annotation_highlight_coords", "fk_annotation_highlight_coords_version_id", "version_id", "scaffold_annotation_version", "id"},
		{"session", "fk_session_course_id", "course_id", "course", "id"},
		{"session_version", "fk_session_version_session_id", "session_id", "session", "id"},
		{"session_reading", "fk_session_reading_session_id", "session_id", "session", "id"},
		{"session_reading", "fk_session_reading_reading_id", "reading_id", "reading", "id"},
	}
	for _, c := range constraints {
		stmt := fmt.Sprintf(`
			ALTER TABLE %q DROP CONSTRAINT IF EXISTS %q;
			ALTER TABLE %q
			ADD CONSTRAINT %q
			FOREIGN KEY (%q)
			REFERENCES %q(%q)
			ON DELETE CASCADE
		`, c.table, c.name, c.table, c.name, c.column, c.refTable, c.refColumn)
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
