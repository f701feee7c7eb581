package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

type ScaffoldAnnotationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, annotations []*types.ScaffoldAnnotation) ([]*types.ScaffoldAnnotation, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, annotationIDs []uuid.UUID) ([]*types.ScaffoldAnnotation, error)
	GetByReadingID(ctx context.Context, tx *gorm.DB, readingID uuid.UUID) ([]*types.ScaffoldAnnotation, error)
	Update(ctx context.Context, tx *gorm.DB, annotation *types.ScaffoldAnnotation) error
}

type scaffoldAnnotationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScaffoldAnnotationRepo(db *gorm.DB, baseLog *logger.Logger) ScaffoldAnnotationRepo {
	return &scaffoldAnnotationRepo{db: db, log: baseLog.With("repo", "ScaffoldAnnotationRepo")}
}

func (r *scaffoldAnnotationRepo) Create(ctx context.Context, tx *gorm.DB, annotations []*types.ScaffoldAnnotation) ([]*types.ScaffoldAnnotation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(annotations) == 0 {
		return []*types.ScaffoldAnnotation{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&annotations).Error; err != nil {
		return nil, err
	}
	return annotations, nil
}

func (r *scaffoldAnnotationRepo) GetByIDs(ctx context.Context, tx *gorm.DB, annotationIDs []uuid.UUID) ([]*types.ScaffoldAnnotation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ScaffoldAnnotation
	if len(annotationIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", annotationIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scaffoldAnnotationRepo) GetByReadingID(ctx context.Context, tx *gorm.DB, readingID uuid.UUID) ([]*types.ScaffoldAnnotation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ScaffoldAnnotation
	if err := transaction.WithContext(ctx).
		Where("reading_id = ?", readingID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scaffoldAnnotationRepo) Update(ctx context.Context, tx *gorm.DB, annotation *types.ScaffoldAnnotation) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(annotation).Error
}
