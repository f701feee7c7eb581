package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

type CourseBasicInfoVersionRepo interface {
	CreateNext(ctx context.Context, tx *gorm.DB, v *types.CourseBasicInfoVersion) (*types.CourseBasicInfoVersion, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, versionIDs []uuid.UUID) ([]*types.CourseBasicInfoVersion, error)
	ListByInfoID(ctx context.Context, tx *gorm.DB, infoID uuid.UUID) ([]*types.CourseBasicInfoVersion, error)
}

type courseBasicInfoVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseBasicInfoVersionRepo(db *gorm.DB, baseLog *logger.Logger) CourseBasicInfoVersionRepo {
	return &courseBasicInfoVersionRepo{db: db, log: baseLog.With("repo", "CourseBasicInfoVersionRepo")}
}

func (r *courseBasicInfoVersionRepo) CreateNext(ctx context.Context, tx *gorm.DB, v *types.CourseBasicInfoVersion) (*types.CourseBasicInfoVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var maxNumber int
	if err := transaction.WithContext(ctx).
		Model(&types.CourseBasicInfoVersion{}).
		Where("course_basic_info_id = ?", v.CourseBasicInfoID).
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

func (r *courseBasicInfoVersionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, versionIDs []uuid.UUID) ([]*types.CourseBasicInfoVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CourseBasicInfoVersion
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

func (r *courseBasicInfoVersionRepo) ListByInfoID(ctx context.Context, tx *gorm.DB, infoID uuid.UUID) ([]*types.CourseBasicInfoVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CourseBasicInfoVersion
	if err := transaction.WithContext(ctx).
		Where("course_basic_info_id = ?", infoID).
		Order("version_number DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
