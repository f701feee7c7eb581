package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/repos"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

// HighlightInput is an incoming highlighted range for a freshly created
// annotation version.
type HighlightInput struct {
	PageNumber  int            `json:"page_number"`
	StartOffset int            `json:"start_offset"`
	EndOffset   int            `json:"end_offset"`
	Rects       datatypes.JSON `json:"rects"`
}

// ScaffoldService reconciles scaffold annotation edits against the
// annotation's version ledger. Highlight coordinates are child records of
// individual versions; versions created without fresh coordinates inherit
// them from the nearest ancestor that has any.
type ScaffoldService interface {
	Create(ctx context.Context, readingID uuid.UUID, fragmentText, content string, coords []HighlightInput, changeType, actor string) (*types.ScaffoldAnnotation, *types.ScaffoldAnnotationVersion, error)
	ApplyManualEdit(ctx context.Context, annotationID uuid.UUID, newContent string, actor string) (*types.ScaffoldAnnotation, *types.ScaffoldAnnotationVersion, error)
	ApplyLLMRefine(ctx context.Context, annotationID uuid.UUID, instruction string, actor string) (*types.ScaffoldAnnotation, *types.ScaffoldAnnotationVersion, error)
	Approve(ctx context.Context, annotationID uuid.UUID, updatedText string, actor string) (*types.ScaffoldAnnotation, error)
	Reject(ctx context.Context, annotationID uuid.UUID, actor string) (*types.ScaffoldAnnotation, error)
	Revert(ctx context.Context, annotationID uuid.UUID, versionID uuid.UUID, actor string) (*types.ScaffoldAnnotation, *types.ScaffoldAnnotationVersion, error)
	ListByReading(ctx context.Context, readingID uuid.UUID) ([]*types.ScaffoldAnnotation, error)
	CurrentCoords(ctx context.Context, annotationID uuid.UUID) ([]*types.AnnotationHighlightCoords, error)
	History(ctx context.Context, annotationID uuid.UUID) ([]HistoryEntry, error)
}

type scaffoldService struct {
	db             *gorm.DB
	log            *logger.Logger
	readingRepo    repos.ReadingRepo
	annotationRepo repos.ScaffoldAnnotationRepo
	versionRepo    repos.ScaffoldAnnotationVersionRepo
	coordsRepo     repos.AnnotationHighlightCoordsRepo
	refinement     RefinementWorkflow
}

func NewScaffoldService(
	db *gorm.DB,
	baseLog *logger.Logger,
	readingRepo repos.ReadingRepo,
	annotationRepo repos.ScaffoldAnnotationRepo,
	versionRepo repos.ScaffoldAnnotationVersionRepo,
	coordsRepo repos.AnnotationHighlightCoordsRepo,
	refinement RefinementWorkflow,
) ScaffoldService {
	return &scaffoldService{
		db:             db,
		log:            baseLog.With("service", "ScaffoldService"),
		readingRepo:    readingRepo,
		annotationRepo: annotationRepo,
		versionRepo:    versionRepo,
		coordsRepo:     coordsRepo,
		refinement:     refinement,
	}
}

func (s *scaffoldService) Create(ctx context.Context, readingID uuid.UUID, fragmentText, content string, coords []HighlightInput, changeType, actor string) (*types.ScaffoldAnnotation, *types.ScaffoldAnnotationVersion, error) {
	readings, err := s.readingRepo.GetByIDs(ctx, nil, []uuid.UUID{readingID})
	if err != nil {
		return nil, nil, fmt.Errorf("load reading: %w", err)
	}
	if len(readings) == 0 {
		return nil, nil, fmt.Errorf("reading %s: %w", readingID, ErrNotFound)
	}
	if changeType == "" {
		changeType = types.ChangeTypeManualEdit
	}

	var annotation *types.ScaffoldAnnotation
	var version *types.ScaffoldAnnotationVersion
	err = runVersionWrite(ctx, s.db, func(tx *gorm.DB) error {
		annotation = &types.ScaffoldAnnotation{
			ID:           uuid.New(),
			ReadingID:    readingID,
			FragmentText: fragmentText,
			Status:       "draft",
		}
		if _, cErr := s.annotationRepo.Create(ctx, tx, []*types.ScaffoldAnnotation{annotation}); cErr != nil {
			return fmt.Errorf("create scaffold annotation: %w", cErr)
		}

		v := &types.ScaffoldAnnotationVersion{
			ID:                   uuid.New(),
			ScaffoldAnnotationID: annotation.ID,
			Content:              content,
			ChangeType:           changeType,
			CreatedBy:            actor,
		}
		created, vErr := s.versionRepo.CreateNext(ctx, tx, v)
		if vErr != nil {
			return vErr
		}
		version = created

		// A fresh version owns its own highlight set; nothing is inherited.
		if len(coords) > 0 {
			records := make([]*types.AnnotationHighlightCoords, 0, len(coords))
			for _, c := range coords {
				records = append(records, &types.AnnotationHighlightCoords{
					ID:          uuid.New(),
					VersionID:   version.ID,
					PageNumber:  c.PageNumber,
					StartOffset: c.StartOffset,
					EndOffset:   c.EndOffset,
					Rects:       c.Rects,
					Valid:       true,
				})
			}
			if _, cErr := s.coordsRepo.Create(ctx, tx, records); cErr != nil {
				return fmt.Errorf("attach highlight coords: %w", cErr)
			}
		}
		return s.advanceCurrent(ctx, tx, annotation, version)
	})
	if err != nil {
		return nil, nil, err
	}
	return annotation, version, nil
}

func (s *scaffoldService) ApplyManualEdit(ctx context.Context, annotationID uuid.UUID, newContent string, actor string) (*types.ScaffoldAnnotation, *types.ScaffoldAnnotationVersion, error) {
	annotation, err := s.loadAnnotation(ctx, nil, annotationID)
	if err != nil {
		return nil, nil, err
	}
	version, err := s.appendVersion(ctx, annotation, newContent, nil, types.ChangeTypeManualEdit, actor, true)
	if err != nil {
		return nil, nil, err
	}
	return annotation, version, nil
}

func (s *scaffoldService) ApplyLLMRefine(ctx context.Context, annotationID uuid.UUID, instruction string, actor string) (*types.ScaffoldAnnotation, *types.ScaffoldAnnotationVersion, error) {
	annotation, err := s.loadAnnotation(ctx, nil, annotationID)
	if err != nil {
		return nil, nil, err
	}

	current := s.resolveCurrentText(ctx, nil, annotation)
	refined, err := s.refinement.Run(ctx, current, instruction)
	if err != nil {
		return nil, nil, fmt.Errorf("refine scaffold annotation: %w", err)
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(refined), &parsed); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidGenerationOutput, err)
	}

	version, err := s.appendVersion(ctx, annotation, refined, nil, types.ChangeTypeLLMEdit, actor, true)
	if err != nil {
		return nil, nil, err
	}
	return annotation, version, nil
}

func (s *scaffoldService) Approve(ctx context.Context, annotationID uuid.UUID, updatedText string, actor string) (*types.ScaffoldAnnotation, error) {
	annotation, err := s.loadAnnotation(ctx, nil, annotationID)
	if err != nil {
		return nil, err
	}
	if updatedText != "" {
		annotation.Status = "approved"
		if _, vErr := s.appendVersion(ctx, annotation, updatedText, nil, types.ChangeTypeAccept, actor, true); vErr != nil {
			return nil, vErr
		}
		return annotation, nil
	}
	annotation.Status = "approved"
	if uErr := s.annotationRepo.Update(ctx, nil, annotation); uErr != nil {
		return nil, fmt.Errorf("approve scaffold annotation: %w", uErr)
	}
	return annotation, nil
}

func (s *scaffoldService) Reject(ctx context.Context, annotationID uuid.UUID, actor string) (*types.ScaffoldAnnotation, error) {
	annotation, err := s.loadAnnotation(ctx, nil, annotationID)
	if err != nil {
		return nil, err
	}
	annotation.Status = "rejected"
	current := s.resolveCurrentText(ctx, nil, annotation)
	if _, vErr := s.appendVersion(ctx, annotation, current, nil, types.ChangeTypeReject, actor, true); vErr != nil {
		return nil, vErr
	}
	return annotation, nil
}

func (s *scaffoldService) Revert(ctx context.Context, annotationID uuid.UUID, versionID uuid.UUID, actor string) (*types.ScaffoldAnnotation, *types.ScaffoldAnnotationVersion, error) {
	annotation, err := s.loadAnnotation(ctx, nil, annotationID)
	if err != nil {
		return nil, nil, err
	}
	targets, err := s.versionRepo.GetByIDs(ctx, nil, []uuid.UUID{versionID})
	if err != nil {
		return nil, nil, fmt.Errorf("load target version: %w", err)
	}
	if len(targets) == 0 {
		return nil, nil, fmt.Errorf("version %s: %w", versionID, ErrNotFound)
	}
	target := targets[0]
	if target.ScaffoldAnnotationID != annotation.ID {
		return nil, nil, fmt.Errorf("version %s: %w", versionID, ErrVersionMismatch)
	}

	var version *types.ScaffoldAnnotationVersion
	err = runVersionWrite(ctx, s.db, func(tx *gorm.DB) error {
		v := &types.ScaffoldAnnotationVersion{
			ID:                   uuid.New(),
			ScaffoldAnnotationID: annotation.ID,
			Content:              target.Content,
			Metadata:             target.Metadata,
			ChangeType:           types.ChangeTypeRevert,
			CreatedBy:            actor,
		}
		created, vErr := s.versionRepo.CreateNext(ctx, tx, v)
		if vErr != nil {
			return vErr
		}
		version = created
		// The revert restores the target's highlights, not the abandoned
		// current version's.
		if _, cfErr := s.carryForward(ctx, tx, &target.ID, version.ID); cfErr != nil {
			return cfErr
		}
		return s.advanceCurrent(ctx, tx, annotation, version)
	})
	if err != nil {
		return nil, nil, err
	}
	return annotation, version, nil
}

func (s *scaffoldService) ListByReading(ctx context.Context, readingID uuid.UUID) ([]*types.ScaffoldAnnotation, error) {
	annotations, err := s.annotationRepo.GetByReadingID(ctx, nil, readingID)
	if err != nil {
		return nil, fmt.Errorf("list scaffold annotations: %w", err)
	}
	return annotations, nil
}

func (s *scaffoldService) CurrentCoords(ctx context.Context, annotationID uuid.UUID) ([]*types.AnnotationHighlightCoords, error) {
	annotation, err := s.loadAnnotation(ctx, nil, annotationID)
	if err != nil {
		return nil, err
	}
	if annotation.CurrentVersionID == nil {
		return []*types.AnnotationHighlightCoords{}, nil
	}
	coords, err := s.coordsRepo.GetValidByVersionID(ctx, nil, *annotation.CurrentVersionID)
	if err != nil {
		return nil, fmt.Errorf("load highlight coords: %w", err)
	}
	return coords, nil
}

func (s *scaffoldService) History(ctx context.Context, annotationID uuid.UUID) ([]HistoryEntry, error) {
	annotation, err := s.loadAnnotation(ctx, nil, annotationID)
	if err != nil {
		return nil, err
	}
	versions, err := s.versionRepo.ListByAnnotationID(ctx, nil, annotation.ID)
	if err != nil {
		return nil, fmt.Errorf("list scaffold annotation versions: %w", err)
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

// appendVersion runs one reconciliation write: append a version, optionally
// inherit highlight coordinates from an ancestor, advance the pointer.
func (s *scaffoldService) appendVersion(ctx context.Context, annotation *types.ScaffoldAnnotation, content string, meta datatypes.JSON, changeType, actor string, inheritCoords bool) (*types.ScaffoldAnnotationVersion, error) {
	var version *types.ScaffoldAnnotationVersion
	err := runVersionWrite(ctx, s.db, func(tx *gorm.DB) error {
		v := &types.ScaffoldAnnotationVersion{
			ID:                   uuid.New(),
			ScaffoldAnnotationID: annotation.ID,
			Content:              content,
			Metadata:             meta,
			ChangeType:           changeType,
			CreatedBy:            actor,
		}
		created, vErr := s.versionRepo.CreateNext(ctx, tx, v)
		if vErr != nil {
			return vErr
		}
		version = created
		if inheritCoords {
			count, cfErr := s.carryForwardWithFallback(ctx, tx, annotation.ID, version.ID)
			if cfErr != nil {
				return cfErr
			}
			if count == 0 {
				s.log.Warn("No highlight coordinates found to carry forward", "annotation_id", annotation.ID, "version_id", version.ID)
			}
		}
		return s.advanceCurrent(ctx, tx, annotation, version)
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// carryForward clones all valid highlight rows from one version onto
// another. A nil source is a no-op.
func (s *scaffoldService) carryForward(ctx context.Context, tx *gorm.DB, fromVersionID *uuid.UUID, toVersionID uuid.UUID) (int, error) {
	if fromVersionID == nil {
		return 0, nil
	}
	records, err := s.coordsRepo.GetValidByVersionID(ctx, tx, *fromVersionID)
	if err != nil {
		return 0, fmt.Errorf("load highlight coords for carry-forward: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	clones := make([]*types.AnnotationHighlightCoords, 0, len(records))
	for _, rec := range records {
		clones = append(clones, &types.AnnotationHighlightCoords{
			ID:          uuid.New(),
			VersionID:   toVersionID,
			PageNumber:  rec.PageNumber,
			StartOffset: rec.StartOffset,
			EndOffset:   rec.EndOffset,
			Rects:       rec.Rects,
			Valid:       true,
		})
	}
	if _, err := s.coordsRepo.Create(ctx, tx, clones); err != nil {
		return 0, fmt.Errorf("clone highlight coords: %w", err)
	}
	return len(clones), nil
}

// carryForwardWithFallback walks the annotation's versions newest-first and
// clones from the first one holding any valid highlight rows. Finding none
// anywhere is not an error.
func (s *scaffoldService) carryForwardWithFallback(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID, toVersionID uuid.UUID) (int, error) {
	versions, err := s.versionRepo.ListByAnnotationID(ctx, tx, annotationID)
	if err != nil {
		return 0, fmt.Errorf("list versions for carry-forward: %w", err)
	}
	for _, v := range versions {
		if v.ID == toVersionID {
			continue
		}
		count, cfErr := s.carryForward(ctx, tx, &v.ID, toVersionID)
		if cfErr != nil {
			return 0, cfErr
		}
		if count > 0 {
			return count, nil
		}
	}
	return 0, nil
}

func (s *scaffoldService) advanceCurrent(ctx context.Context, tx *gorm.DB, annotation *types.ScaffoldAnnotation, version *types.ScaffoldAnnotationVersion) error {
	annotation.CurrentVersionID = &version.ID
	annotation.CurrentContent = version.Content
	if len(version.Metadata) > 0 {
		annotation.Metadata = version.Metadata
	}
	if err := s.annotationRepo.Update(ctx, tx, annotation); err != nil {
		return fmt.Errorf("advance scaffold annotation pointer: %w", err)
	}
	return nil
}

func (s *scaffoldService) resolveCurrentText(ctx context.Context, tx *gorm.DB, annotation *types.ScaffoldAnnotation) string {
	if annotation.CurrentVersionID != nil {
		versions, err := s.versionRepo.GetByIDs(ctx, tx, []uuid.UUID{*annotation.CurrentVersionID})
		if err == nil && len(versions) > 0 {
			return versions[0].Content
		}
		if err != nil {
			s.log.Warn("Failed to resolve current annotation version, using denormalized text", "annotation_id", annotation.ID, "error", err)
		}
	}
	return annotation.CurrentContent
}

func (s *scaffoldService) loadAnnotation(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID) (*types.ScaffoldAnnotation, error) {
	annotations, err := s.annotationRepo.GetByIDs(ctx, tx, []uuid.UUID{annotationID})
	if err != nil {
		return nil, fmt.Errorf("load scaffold annotation: %w", err)
	}
	if len(annotations) == 0 {
		return nil, fmt.Errorf("scaffold annotation %s: %w", annotationID, ErrNotFound)
	}
	return annotations[0], nil
}
