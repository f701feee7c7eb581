package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/repos"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

// CourseBasicInfoService maintains the structural discipline/course/class
// document per course, versioned like every other entity. Other services
// read it as the fallback source for view building.
type CourseBasicInfoService interface {
	Upsert(ctx context.Context, courseID uuid.UUID, input *types.ClassInput, changeType string, actor string) (*types.CourseBasicInfo, *types.CourseBasicInfoVersion, error)
	Get(ctx context.Context, courseID uuid.UUID) (*types.CourseBasicInfo, error)
	// GetClassInput returns the parsed current document, or nil when the
	// course has none yet. It never fails on malformed content.
	GetClassInput(ctx context.Context, courseID uuid.UUID) (*types.ClassInput, error)
	History(ctx context.Context, courseID uuid.UUID) ([]HistoryEntry, error)
}

type courseBasicInfoService struct {
	db          *gorm.DB
	log         *logger.Logger
	courseRepo  repos.CourseRepo
	infoRepo    repos.CourseBasicInfoRepo
	versionRepo repos.CourseBasicInfoVersionRepo
}

func NewCourseBasicInfoService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	infoRepo repos.CourseBasicInfoRepo,
	versionRepo repos.CourseBasicInfoVersionRepo,
) CourseBasicInfoService {
	return &courseBasicInfoService{
		db:          db,
		log:         baseLog.With("service", "CourseBasicInfoService"),
		courseRepo:  courseRepo,
		infoRepo:    infoRepo,
		versionRepo: versionRepo,
	}
}

// ParseClassInput decodes a stored content blob into the structural
// document. Malformed content yields nil rather than an error: the
// callers all sit on best-effort display paths.
func ParseClassInput(content string) *types.ClassInput {
	if content == "" {
		return nil
	}
	var input types.ClassInput
	if err := json.Unmarshal([]byte(content), &input); err != nil {
		return nil
	}
	return &input
}

func (s *courseBasicInfoService) Upsert(ctx context.Context, courseID uuid.UUID, input *types.ClassInput, changeType string, actor string) (*types.CourseBasicInfo, *types.CourseBasicInfoVersion, error) {
	courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 {
		return nil, nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}

	content, err := json.Marshal(input)
	if err != nil {
		return nil, nil, fmt.Errorf("encode class input: %w", err)
	}

	var info *types.CourseBasicInfo
	var version *types.CourseBasicInfoVersion
	err = runVersionWrite(ctx, s.db, func(tx *gorm.DB) error {
		existing, gErr := s.infoRepo.GetByCourseIDs(ctx, tx, []uuid.UUID{courseID})
		if gErr != nil {
			return fmt.Errorf("load course basic info: %w", gErr)
		}
		if len(existing) > 0 {
			info = existing[0]
		} else {
			info = &types.CourseBasicInfo{ID: uuid.New(), CourseID: courseID}
			if _, cErr := s.infoRepo.Create(ctx, tx, []*types.CourseBasicInfo{info}); cErr != nil {
				return fmt.Errorf("create course basic info: %w", cErr)
			}
		}

		v := &types.CourseBasicInfoVersion{
			ID:                uuid.New(),
			CourseBasicInfoID: info.ID,
			Content:           string(content),
			ChangeType:        changeType,
			CreatedBy:         actor,
		}
		created, vErr := s.versionRepo.CreateNext(ctx, tx, v)
		if vErr != nil {
			return vErr
		}
		version = created

		info.CurrentVersionID = &version.ID
		info.Content = version.Content
		if uErr := s.infoRepo.Update(ctx, tx, info); uErr != nil {
			return fmt.Errorf("advance course basic info pointer: %w", uErr)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return info, version, nil
}

func (s *courseBasicInfoService) Get(ctx context.Context, courseID uuid.UUID) (*types.CourseBasicInfo, error) {
	infos, err := s.infoRepo.GetByCourseIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course basic info: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("course basic info for course %s: %w", courseID, ErrNotFound)
	}
	return infos[0], nil
}

func (s *courseBasicInfoService) GetClassInput(ctx context.Context, courseID uuid.UUID) (*types.ClassInput, error) {
	infos, err := s.infoRepo.GetByCourseIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course basic info: %w", err)
	}
	if len(infos) == 0 {
		return nil, nil
	}
	return ParseClassInput(infos[0].Content), nil
}

func (s *courseBasicInfoService) History(ctx context.Context, courseID uuid.UUID) ([]HistoryEntry, error) {
	info, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	versions, err := s.versionRepo.ListByInfoID(ctx, nil, info.ID)
	if err != nil {
		return nil, fmt.Errorf("list course basic info versions: %w", err)
	}
	entries := make([]HistoryEntry, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		entries = append(entries, HistoryEntry{
			VersionID:     v.ID,
			VersionNumber: v.VersionNumber,
			Action:        historyAction(v.ChangeType),
			CreatedBy:     v.CreatedBy,
			CreatedAt:     v.CreatedAt,
			Content:       v.Content,
		})
	}
	return entries, nil
}
