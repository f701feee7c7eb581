package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

type ScaffoldAnnotationVersionRepo interface {
	CreateNext(ctx context.Context, tx *gorm.DB, v *types.ScaffoldAnnotationVersion) (*types.ScaffoldAnnotationVersion, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, versionIDs []uuid.UUID) ([]*types.ScaffoldAnnotationVersion, error)
	ListByAnnotationID(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID) ([]*types.ScaffoldAnnotationVersion, error)
}

type scaffoldAnnotationVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScaffoldAnnotationVersionRepo(db *gorm.DB, baseLog *logger.Logger) ScaffoldAnnotationVersionRepo {
	return &scaffoldAnnotationVersionRepo{db: db, log: baseLog.With("repo", "ScaffoldAnnotationVersionRepo")}
}

func (r *scaffoldAnnotationVersionRepo) CreateNext(ctx context.Context, tx *gorm.DB, v *types.ScaffoldAnnotationVersion) (*types.ScaffoldAnnotationVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var maxNumber int
	if err := transaction.WithContext(ctx).
		Model(&types.ScaffoldAnnotationVersion{}).
		Where("scaffold_annotation_id = ?", v.ScaffoldAnnotationID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&maxNumber).Error; err != nil {
		return nil, err
	}
	v.VersionNumber = maxNumber + 1
	if err := transaction.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

func (r *scaffoldAnnotationVersionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, versionIDs []uuid.UUID) ([]*types.ScaffoldAnnotationVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ScaffoldAnnotationVersion
	if len(versionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", versionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scaffoldAnnotationVersionRepo) ListByAnnotationID(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID) ([]*types.ScaffoldAnnotationVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ScaffoldAnnotationVersion
	if err := transaction.WithContext(ctx).
		Where("scaffold_annotation_id = ?", annotationID).
		Order("version_number DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
