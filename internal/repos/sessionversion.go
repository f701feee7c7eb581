package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

type SessionVersionRepo interface {
	CreateNext(ctx context.Context, tx *gorm.DB, v *types.SessionVersion) (*types.SessionVersion, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, versionIDs []uuid.UUID) ([]*types.SessionVersion, error)
	ListBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionVersion, error)
}

type sessionVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionVersionRepo(db *gorm.DB, baseLog *logger.Logger) SessionVersionRepo {
	return &sessionVersionRepo{db: db, log: baseLog.With("repo", "SessionVersionRepo")}
}

func (r *sessionVersionRepo) CreateNext(ctx context.Context, tx *gorm.DB, v *types.SessionVersion) (*types.SessionVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var maxNumber int
	if err := transaction.WithContext(ctx).
		Model(&types.SessionVersion{}).
		Where("session_id = ?", v.SessionID).
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

func (r *sessionVersionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, versionIDs []uuid.UUID) ([]*types.SessionVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SessionVersion
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

func (r *sessionVersionRepo) ListBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SessionVersion
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("version_number DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
