package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

type ClassProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, profiles []*types.ClassProfile) ([]*types.ClassProfile, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, profileIDs []uuid.UUID) ([]*types.ClassProfile, error)
	GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.ClassProfile, error)
	Update(ctx context.Context, tx *gorm.DB, profile *types.ClassProfile) error
}

type classProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClassProfileRepo(db *gorm.DB, baseLog *logger.Logger) ClassProfileRepo {
	return &classProfileRepo{db: db, log: baseLog.With("repo", "ClassProfileRepo")}
}

func (r *classProfileRepo) Create(ctx context.Context, tx *gorm.DB, profiles []*types.ClassProfile) ([]*types.ClassProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(profiles) == 0 {
		return []*types.ClassProfile{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *classProfileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, profileIDs []uuid.UUID) ([]*types.ClassProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ClassProfile
	if len(profileIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", profileIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *classProfileRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.ClassProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ClassProfile
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

func (r *classProfileRepo) Update(ctx context.Context, tx *gorm.DB, profile *types.ClassProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(profile).Error
}
