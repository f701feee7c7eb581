package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sessions []*types.Session) ([]*types.Session, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.Session, error)
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Session, error)
	Update(ctx context.Context, tx *gorm.DB, session *types.Session) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.Session) ([]*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sessions) == 0 {
		return []*types.Session{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Session
	if len(sessionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", sessionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Session
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("week_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionRepo) Update(ctx context.Context, tx *gorm.DB, session *types.Session) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(session).Error
}
