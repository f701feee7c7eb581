package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

type AnnotationHighlightCoordsRepo interface {
	Create(ctx context.Context, tx *gorm.DB, coords []*types.AnnotationHighlightCoords) ([]*types.AnnotationHighlightCoords, error)
	GetValidByVersionID(ctx context.Context, tx *gorm.DB, versionID uuid.UUID) ([]*types.AnnotationHighlightCoords, error)
	GetByVersionIDs(ctx context.Context, tx *gorm.DB, versionIDs []uuid.UUID) ([]*types.AnnotationHighlightCoords, error)
}

type annotationHighlightCoordsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnnotationHighlightCoordsRepo(db *gorm.DB, baseLog *logger.Logger) AnnotationHighlightCoordsRepo {
	return &annotationHighlightCoordsRepo{db: db, log: baseLog.With("repo", "AnnotationHighlightCoordsRepo")}
}

func (r *annotationHighlightCoordsRepo) Create(ctx context.Context, tx *gorm.DB, coords []*types.AnnotationHighlightCoords) ([]*types.AnnotationHighlightCoords, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(coords) == 0 {
		return []*types.AnnotationHighlightCoords{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&coords).Error; err != nil {
		return nil, err
	}
	return coords, nil
}

func (r *annotationHighlightCoordsRepo) GetValidByVersionID(ctx context.Context, tx *gorm.DB, versionID uuid.UUID) ([]*types.AnnotationHighlightCoords, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AnnotationHighlightCoords
	if err := transaction.WithContext(ctx).
		Where("version_id = ? AND valid = ?", versionID, true).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *annotationHighlightCoordsRepo) GetByVersionIDs(ctx context.Context, tx *gorm.DB, versionIDs []uuid.UUID) ([]*types.AnnotationHighlightCoords, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AnnotationHighlightCoords
	if len(versionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("version_id IN ?", versionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
