package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

// SessionReadingRepo manages the derived session-to-reading join rows.
// Rows are only ever written by a full rebuild: FullDeleteBySessionID
// followed by Create inside one transaction.
type SessionReadingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.SessionReading) ([]*types.SessionReading, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionReading, error)
	FullDeleteBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error
}

type sessionReadingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionReadingRepo(db *gorm.DB, baseLog *logger.Logger) SessionReadingRepo {
	return &sessionReadingRepo{db: db, log: baseLog.With("repo", "SessionReadingRepo")}
}

func (r *sessionReadingRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.SessionReading) ([]*types.SessionReading, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.SessionReading{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sessionReadingRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionReading, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SessionReading
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionReadingRepo) FullDeleteBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("session_id = ?", sessionID).
		Delete(&types.SessionReading{}).Error
}
