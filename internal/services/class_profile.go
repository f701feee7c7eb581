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

// ClassProfileService reconciles class profile edits from all three
// sources (pipeline generation, manual edits, LLM refinement) against the
// profile's version ledger, and renders the frontend view.
type ClassProfileService interface {
	CreateFromGeneration(ctx context.Context, courseID uuid.UUID, input *types.ClassInput, actor string) (*types.ClassProfile, *types.ClassProfileVersion, *ProfileView, error)
	ApplyManualEdit(ctx context.Context, courseID uuid.UUID, newContent string, meta *types.ProfileMetadata, actor string) (*types.ClassProfile, *types.ClassProfileVersion, *ProfileView, error)
	ApplyLLMRefine(ctx context.Context, courseID uuid.UUID, instruction string, structural *types.ClassInput, actor string) (*types.ClassProfile, *types.ClassProfileVersion, *ProfileView, error)
	Approve(ctx context.Context, courseID uuid.UUID, updatedText string, actor string) (*types.ClassProfile, *ProfileView, error)
	Revert(ctx context.Context, courseID uuid.UUID, versionID uuid.UUID, actor string) (*types.ClassProfile, *types.ClassProfileVersion, *ProfileView, error)
	GetView(ctx context.Context, courseID uuid.UUID) (*ProfileView, error)
	History(ctx context.Context, courseID uuid.UUID) ([]HistoryEntry, error)
}

type classProfileService struct {
	db          *gorm.DB
	log         *logger.Logger
	courseRepo  repos.CourseRepo
	profileRepo repos.ClassProfileRepo
	versionRepo repos.ClassProfileVersionRepo
	basicInfo   CourseBasicInfoService
	generation  GenerationWorkflow
	refinement  RefinementWorkflow
	viewCache   ViewCache
}

func NewClassProfileService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	profileRepo repos.ClassProfileRepo,
	versionRepo repos.ClassProfileVersionRepo,
	basicInfo CourseBasicInfoService,
	generation GenerationWorkflow,
	refinement RefinementWorkflow,
	viewCache ViewCache,
) ClassProfileService {
	return &classProfileService{
		db:          db,
		log:         baseLog.With("service", "ClassProfileService"),
		courseRepo:  courseRepo,
		profileRepo: profileRepo,
		versionRepo: versionRepo,
		basicInfo:   basicInfo,
		generation:  generation,
		refinement:  refinement,
		viewCache:   viewCache,
	}
}

func (s *classProfileService) CreateFromGeneration(ctx context.Context, courseID uuid.UUID, input *types.ClassInput, actor string) (*types.ClassProfile, *types.ClassProfileVersion, *ProfileView, error) {
	courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 {
		return nil, nil, nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}

	if input != nil {
		if _, _, uErr := s.basicInfo.Upsert(ctx, courseID, input, types.ChangeTypePipeline, actor); uErr != nil {
			return nil, nil, nil, uErr
		}
	} else {
		stored, gErr := s.basicInfo.GetClassInput(ctx, courseID)
		if gErr != nil {
			return nil, nil, nil, gErr
		}
		input = stored
	}

	output, err := s.generation.Run(ctx, map[string]interface{}{"class_input": input})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("generate class profile: %w", err)
	}

	versionMeta, err := marshalMetadata(output.DerivedMetadata)
	if err != nil {
		return nil, nil, nil, err
	}

	var profile *types.ClassProfile
	var version *types.ClassProfileVersion
	err = runVersionWrite(ctx, s.db, func(tx *gorm.DB) error {
		existing, gErr := s.profileRepo.GetByCourseIDs(ctx, tx, []uuid.UUID{courseID})
		if gErr != nil {
			return fmt.Errorf("load class profile: %w", gErr)
		}
		if len(existing) > 0 {
			profile = existing[0]
		} else {
			profile = &types.ClassProfile{ID: uuid.New(), CourseID: courseID, Status: "draft"}
			if _, cErr := s.profileRepo.Create(ctx, tx, []*types.ClassProfile{profile}); cErr != nil {
				return fmt.Errorf("create class profile: %w", cErr)
			}
		}

		v := &types.ClassProfileVersion{
			ID:             uuid.New(),
			ClassProfileID: profile.ID,
			Content:        output.Content,
			Metadata:       versionMeta,
			ChangeType:     types.ChangeTypePipeline,
			CreatedBy:      actor,
		}
		created, vErr := s.versionRepo.CreateNext(ctx, tx, v)
		if vErr != nil {
			return vErr
		}
		version = created
		return s.advanceCurrent(ctx, tx, profile, version)
	})
	if err != nil {
		return nil, nil, nil, err
	}

	view := s.renderView(ctx, profile)
	return profile, version, &view, nil
}

func (s *classProfileService) ApplyManualEdit(ctx context.Context, courseID uuid.UUID, newContent string, meta *types.ProfileMetadata, actor string) (*types.ClassProfile, *types.ClassProfileVersion, *ProfileView, error) {
	profile, err := s.loadProfile(ctx, nil, courseID)
	if err != nil {
		return nil, nil, nil, err
	}

	var versionMeta datatypes.JSON
	if meta != nil {
		raw, mErr := json.Marshal(meta)
		if mErr != nil {
			return nil, nil, nil, fmt.Errorf("encode profile metadata: %w", mErr)
		}
		versionMeta = raw
	}

	var version *types.ClassProfileVersion
	err = runVersionWrite(ctx, s.db, func(tx *gorm.DB) error {
		v := &types.ClassProfileVersion{
			ID:             uuid.New(),
			ClassProfileID: profile.ID,
			Content:        newContent,
			Metadata:       versionMeta,
			ChangeType:     types.ChangeTypeManualEdit,
			CreatedBy:      actor,
		}
		created, vErr := s.versionRepo.CreateNext(ctx, tx, v)
		if vErr != nil {
			return vErr
		}
		version = created
		return s.advanceCurrent(ctx, tx, profile, version)
	})
	if err != nil {
		return nil, nil, nil, err
	}

	view := s.renderView(ctx, profile)
	return profile, version, &view, nil
}

func (s *classProfileService) ApplyLLMRefine(ctx context.Context, courseID uuid.UUID, instruction string, structural *types.ClassInput, actor string) (*types.ClassProfile, *types.ClassProfileVersion, *ProfileView, error) {
	if structural != nil {
		// Full-regeneration sub-path: the structural source of truth is
		// updated first, keeping its own version history, then the profile
		// is regenerated against it.
		if _, _, uErr := s.basicInfo.Upsert(ctx, courseID, structural, types.ChangeTypeManualEdit, actor); uErr != nil {
			return nil, nil, nil, uErr
		}
		return s.regenerateAs(ctx, courseID, structural, types.ChangeTypeLLMEdit, actor)
	}

	profile, err := s.loadProfile(ctx, nil, courseID)
	if err != nil {
		return nil, nil, nil, err
	}

	current := s.resolveCurrentText(ctx, nil, profile)
	refined, err := s.refinement.Run(ctx, current, instruction)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("refine class profile: %w", err)
	}

	var refinedDict map[string]interface{}
	if err := json.Unmarshal([]byte(refined), &refinedDict); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidGenerationOutput, err)
	}

	// Targeted refinement never touches the structural fields; whatever
	// class_input the current content carries is preserved verbatim.
	var currentDict map[string]interface{}
	if err := json.Unmarshal([]byte(current), &currentDict); err == nil {
		if embedded, ok := currentDict["class_input"]; ok {
			refinedDict["class_input"] = embedded
		}
	}
	merged, err := json.Marshal(refinedDict)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode refined profile: %w", err)
	}

	var version *types.ClassProfileVersion
	err = runVersionWrite(ctx, s.db, func(tx *gorm.DB) error {
		v := &types.ClassProfileVersion{
			ID:             uuid.New(),
			ClassProfileID: profile.ID,
			Content:        string(merged),
			ChangeType:     types.ChangeTypeLLMEdit,
			CreatedBy:      actor,
		}
		created, vErr := s.versionRepo.CreateNext(ctx, tx, v)
		if vErr != nil {
			return vErr
		}
		version = created
		return s.advanceCurrent(ctx, tx, profile, version)
	})
	if err != nil {
		return nil, nil, nil, err
	}

	view := s.renderView(ctx, profile)
	return profile, version, &view, nil
}

func (s *classProfileService) regenerateAs(ctx context.Context, courseID uuid.UUID, input *types.ClassInput, changeType string, actor string) (*types.ClassProfile, *types.ClassProfileVersion, *ProfileView, error) {
	profile, err := s.loadProfile(ctx, nil, courseID)
	if err != nil {
		return nil, nil, nil, err
	}

	output, err := s.generation.Run(ctx, map[string]interface{}{"class_input": input})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("regenerate class profile: %w", err)
	}
	versionMeta, err := marshalMetadata(output.DerivedMetadata)
	if err != nil {
		return nil, nil, nil, err
	}

	var version *types.ClassProfileVersion
	err = runVersionWrite(ctx, s.db, func(tx *gorm.DB) error {
		v := &types.ClassProfileVersion{
			ID:             uuid.New(),
			ClassProfileID: profile.ID,
			Content:        output.Content,
			Metadata:       versionMeta,
			ChangeType:     changeType,
			CreatedBy:      actor,
		}
		created, vErr := s.versionRepo.CreateNext(ctx, tx, v)
		if vErr != nil {
			return vErr
		}
		version = created
		return s.advanceCurrent(ctx, tx, profile, version)
	})
	if err != nil {
		return nil, nil, nil, err
	}

	view := s.renderView(ctx, profile)
	return profile, version, &view, nil
}

func (s *classProfileService) Approve(ctx context.Context, courseID uuid.UUID, updatedText string, actor string) (*types.ClassProfile, *ProfileView, error) {
	profile, err := s.loadProfile(ctx, nil, courseID)
	if err != nil {
		return nil, nil, err
	}

	if updatedText == "" {
		// Approval without edits is a status change over the current state,
		// not a new version.
		profile.Status = "approved"
		if uErr := s.profileRepo.Update(ctx, nil, profile); uErr != nil {
			return nil, nil, fmt.Errorf("approve class profile: %w", uErr)
		}
		view := s.renderView(ctx, profile)
		return profile, &view, nil
	}

	err = runVersionWrite(ctx, s.db, func(tx *gorm.DB) error {
		v := &types.ClassProfileVersion{
			ID:             uuid.New(),
			ClassProfileID: profile.ID,
			Content:        updatedText,
			ChangeType:     types.ChangeTypeAccept,
			CreatedBy:      actor,
		}
		created, vErr := s.versionRepo.CreateNext(ctx, tx, v)
		if vErr != nil {
			return vErr
		}
		profile.Status = "approved"
		return s.advanceCurrent(ctx, tx, profile, created)
	})
	if err != nil {
		return nil, nil, err
	}

	view := s.renderView(ctx, profile)
	return profile, &view, nil
}

func (s *classProfileService) Revert(ctx context.Context, courseID uuid.UUID, versionID uuid.UUID, actor string) (*types.ClassProfile, *types.ClassProfileVersion, *ProfileView, error) {
	profile, err := s.loadProfile(ctx, nil, courseID)
	if err != nil {
		return nil, nil, nil, err
	}

	targets, err := s.versionRepo.GetByIDs(ctx, nil, []uuid.UUID{versionID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load target version: %w", err)
	}
	if len(targets) == 0 {
		return nil, nil, nil, fmt.Errorf("version %s: %w", versionID, ErrNotFound)
	}
	target := targets[0]
	if target.ClassProfileID != profile.ID {
		return nil, nil, nil, fmt.Errorf("version %s: %w", versionID, ErrVersionMismatch)
	}

	// The rewind is recorded as a new revert-tagged version snapshotting
	// the target, so the ledger stays append-only and the pointer only
	// ever advances.
	var version *types.ClassProfileVersion
	err = runVersionWrite(ctx, s.db, func(tx *gorm.DB) error {
		v := &types.ClassProfileVersion{
			ID:             uuid.New(),
			ClassProfileID: profile.ID,
			Content:        target.Content,
			Metadata:       target.Metadata,
			ChangeType:     types.ChangeTypeRevert,
			CreatedBy:      actor,
		}
		created, vErr := s.versionRepo.CreateNext(ctx, tx, v)
		if vErr != nil {
			return vErr
		}
		version = created
		return s.advanceCurrent(ctx, tx, profile, version)
	})
	if err != nil {
		return nil, nil, nil, err
	}

	view := s.renderView(ctx, profile)
	return profile, version, &view, nil
}

func (s *classProfileService) GetView(ctx context.Context, courseID uuid.UUID) (*ProfileView, error) {
	profile, err := s.loadProfile(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.viewCache.GetProfileView(ctx, profile.ID); ok {
		return cached, nil
	}
	view := s.buildView(ctx, profile)
	s.viewCache.SetProfileView(ctx, profile.ID, view)
	return &view, nil
}

func (s *classProfileService) History(ctx context.Context, courseID uuid.UUID) ([]HistoryEntry, error) {
	profile, err := s.loadProfile(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	versions, err := s.versionRepo.ListByProfileID(ctx, nil, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("list class profile versions: %w", err)
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

func (s *classProfileService) loadProfile(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.ClassProfile, error) {
	profiles, err := s.profileRepo.GetByCourseIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load class profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("class profile for course %s: %w", courseID, ErrNotFound)
	}
	return profiles[0], nil
}

// advanceCurrent moves the profile's current pointer onto version and
// refreshes every denormalized field from it. The version's metadata,
// when present, replaces the profile's metadata wholesale.
func (s *classProfileService) advanceCurrent(ctx context.Context, tx *gorm.DB, profile *types.ClassProfile, version *types.ClassProfileVersion) error {
	profile.CurrentVersionID = &version.ID
	profile.Description = version.Content
	if len(version.Metadata) > 0 {
		profile.Metadata = version.Metadata
	}
	if err := s.profileRepo.Update(ctx, tx, profile); err != nil {
		return fmt.Errorf("advance class profile pointer: %w", err)
	}
	s.viewCache.InvalidateProfileView(ctx, profile.ID)
	return nil
}

// resolveCurrentText returns the current version's content, falling back
// to the denormalized description and then to empty. It never fails on a
// missing version.
func (s *classProfileService) resolveCurrentText(ctx context.Context, tx *gorm.DB, profile *types.ClassProfile) string {
	if profile.CurrentVersionID != nil {
		versions, err := s.versionRepo.GetByIDs(ctx, tx, []uuid.UUID{*profile.CurrentVersionID})
		if err == nil && len(versions) > 0 {
			return versions[0].Content
		}
		if err != nil {
			s.log.Warn("Failed to resolve current profile version, using denormalized text", "profile_id", profile.ID, "error", err)
		}
	}
	return profile.Description
}

func (s *classProfileService) buildView(ctx context.Context, profile *types.ClassProfile) ProfileView {
	text := s.resolveCurrentText(ctx, nil, profile)
	meta := parseProfileMetadata(profile.Metadata)
	courseID := profile.CourseID
	fallback := func() *types.ClassInput {
		input, err := s.basicInfo.GetClassInput(ctx, courseID)
		if err != nil {
			s.log.Warn("Failed to load course basic info for view, degrading", "course_id", courseID, "error", err)
			return nil
		}
		return input
	}
	return BuildProfileView(text, meta, fallback)
}

func (s *classProfileService) renderView(ctx context.Context, profile *types.ClassProfile) ProfileView {
	view := s.buildView(ctx, profile)
	s.viewCache.SetProfileView(ctx, profile.ID, view)
	return view
}

func parseProfileMetadata(raw datatypes.JSON) *types.ProfileMetadata {
	if len(raw) == 0 {
		return nil
	}
	var meta types.ProfileMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}
	return &meta
}

func marshalMetadata(meta map[string]interface{}) (datatypes.JSON, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode derived metadata: %w", err)
	}
	return raw, nil
}
