package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

type ReadingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, readings []*types.Reading) ([]*types.Reading, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, readingIDs []uuid.UUID) ([]*types.Reading, error)
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Reading, error)
	// GetByCourseAndDocumentID backs the local-reading lookup against an
	// external document id. Returns (nil, nil) when absent.
	GetByCourseAndDocumentID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, documentID string) (*types.Reading, error)
}

type readingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReadingRepo(db *gorm.DB, baseLog *logger.Logger) ReadingRepo {
	return &readingRepo{db: db, log: baseLog.With("repo", "ReadingRepo")}
}

func (r *readingRepo) Create(ctx context.Context, tx *gorm.DB, readings []*types.Reading) ([]*types.Reading, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(readings) == 0 {
		return []*types.Reading{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *readingRepo) GetByIDs(ctx context.Context, tx *gorm.DB, readingIDs []uuid.UUID) ([]*types.Reading, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Reading
	if len(readingIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", readingIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *readingRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Reading, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Reading
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *readingRepo) GetByCourseAndDocumentID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, documentID string) (*types.Reading, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if documentID == "" {
		return nil, nil
	}
	var result types.Reading
	err := transaction.WithContext(ctx).
		Where("course_id = ? AND perusall_document_id = ?", courseID, documentID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
