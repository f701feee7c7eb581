package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

type CourseBasicInfoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, infos []*types.CourseBasicInfo) ([]*types.CourseBasicInfo, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, infoIDs []uuid.UUID) ([]*types.CourseBasicInfo, error)
	GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.CourseBasicInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *types.CourseBasicInfo) error
}

type courseBasicInfoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseBasicInfoRepo(db *gorm.DB, baseLog *logger.Logger) CourseBasicInfoRepo {
	return &courseBasicInfoRepo{db: db, log: baseLog.With("repo", "CourseBasicInfoRepo")}
}

func (r *courseBasicInfoRepo) Create(ctx context.Context, tx *gorm.DB, infos []*types.CourseBasicInfo) ([]*types.CourseBasicInfo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(infos) == 0 {
		return []*types.CourseBasicInfo{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&infos).Error; err != nil {
		return nil, err
	}
	return infos, nil
}

func (r *courseBasicInfoRepo) GetByIDs(ctx context.Context, tx *gorm.DB, infoIDs []uuid.UUID) ([]*types.CourseBasicInfo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CourseBasicInfo
	if len(infoIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", infoIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseBasicInfoRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.CourseBasicInfo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CourseBasicInfo
	if len(courseIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseBasicInfoRepo) Update(ctx context.Context, tx *gorm.DB, info *types.CourseBasicInfo) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(info).Error
}
