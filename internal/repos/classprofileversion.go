package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

// ClassProfileVersionRepo is the append-only version ledger for class
// profiles. Rows are immutable once created; only cascade deletes remove
// them. CreateNext assigns version numbers; it never touches the owning
// profile's current pointer.
type ClassProfileVersionRepo interface {
	// CreateNext persists v with version_number = max(existing)+1 for its
	// owner, computed inside the caller's transaction. The composite unique
	// index on (class_profile_id, version_number) turns concurrent races
	// into a retryable duplicate-key error.
	CreateNext(ctx context.Context, tx *gorm.DB, v *types.ClassProfileVersion) (*types.ClassProfileVersion, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, versionIDs []uuid.UUID) ([]*types.ClassProfileVersion, error)
	// ListByProfileID returns versions newest-first.
	ListByProfileID(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) ([]*types.ClassProfileVersion, error)
}

type classProfileVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClassProfileVersionRepo(db *gorm.DB, baseLog *logger.Logger) ClassProfileVersionRepo {
	return &classProfileVersionRepo{db: db, log: baseLog.With("repo", "ClassProfileVersionRepo")}
}

func (r *classProfileVersionRepo) CreateNext(ctx context.Context, tx *gorm.DB, v *types.ClassProfileVersion) (*types.ClassProfileVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var maxNumber int
	if err := transaction.WithContext(ctx).
		Model(&types.ClassProfileVersion{}).
		Where("class_profile_id = ?", v.ClassProfileID).
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

func (r *classProfileVersionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, versionIDs []uuid.UUID) ([]*types.ClassProfileVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ClassProfileVersion
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

func (r *classProfileVersionRepo) ListByProfileID(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) ([]*types.ClassProfileVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ClassProfileVersion
	if err := transaction.WithContext(ctx).
		Where("class_profile_id = ?", profileID).
		Order("version_number DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
