package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/repos"
	"github.com/scaffoldlab/scaffold-backend/internal/requestdata"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

type CourseService interface {
	Create(ctx context.Context, name, term, perusallCourseID string) (*types.Course, error)
	GetByID(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	ListOwn(ctx context.Context) ([]*types.Course, error)
	LinkPerusallCourse(ctx context.Context, courseID uuid.UUID, perusallCourseID string) (*types.Course, error)
	CreateReading(ctx context.Context, courseID uuid.UUID, title, fileName, perusallDocumentID string) (*types.Reading, error)
	ListReadings(ctx context.Context, courseID uuid.UUID) ([]*types.Reading, error)
}

type courseService struct {
	db          *gorm.DB
	log         *logger.Logger
	courseRepo  repos.CourseRepo
	readingRepo repos.ReadingRepo
}

func NewCourseService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, readingRepo repos.ReadingRepo) CourseService {
	return &courseService{
		db:          db,
		log:         baseLog.With("service", "CourseService"),
		courseRepo:  courseRepo,
		readingRepo: readingRepo,
	}
}

func (cs *courseService) Create(ctx context.Context, name, term, perusallCourseID string) (*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	if name == "" {
		return nil, fmt.Errorf("course name is required")
	}
	course := &types.Course{
		ID:               uuid.New(),
		OwnerID:          rd.UserID,
		Name:             name,
		Term:             term,
		PerusallCourseID: perusallCourseID,
	}
	if _, err := cs.courseRepo.Create(ctx, nil, []*types.Course{course}); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

func (cs *courseService) GetByID(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}
	return courses[0], nil
}

func (cs *courseService) ListOwn(ctx context.Context) ([]*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	courses, err := cs.courseRepo.GetByOwnerID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (cs *courseService) LinkPerusallCourse(ctx context.Context, courseID uuid.UUID, perusallCourseID string) (*types.Course, error) {
	course, err := cs.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	course.PerusallCourseID = perusallCourseID
	if uErr := cs.courseRepo.Update(ctx, nil, course); uErr != nil {
		return nil, fmt.Errorf("link perusall course: %w", uErr)
	}
	return course, nil
}

func (cs *courseService) CreateReading(ctx context.Context, courseID uuid.UUID, title, fileName, perusallDocumentID string) (*types.Reading, error) {
	if _, err := cs.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("reading title is required")
	}
	reading := &types.Reading{
		ID:                 uuid.New(),
		CourseID:           courseID,
		Title:              title,
		FileName:           fileName,
		PerusallDocumentID: perusallDocumentID,
		Status:             "uploaded",
	}
	if _, err := cs.readingRepo.Create(ctx, nil, []*types.Reading{reading}); err != nil {
		return nil, fmt.Errorf("create reading: %w", err)
	}
	return reading, nil
}

func (cs *courseService) ListReadings(ctx context.Context, courseID uuid.UUID) ([]*types.Reading, error) {
	if _, err := cs.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	readings, err := cs.readingRepo.GetByCourseID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	return readings, nil
}
