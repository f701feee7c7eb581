package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/repos"
	repotest "github.com/scaffoldlab/scaffold-backend/internal/repos/testutil"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

type fakeGeneration struct {
	content string
	meta    map[string]interface{}
	err     error
	calls   int
}

func (f *fakeGeneration) Run(ctx context.Context, structuredInput map[string]interface{}) (*GenerationOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &GenerationOutput{Content: f.content, DerivedMetadata: f.meta}, nil
}

type fakeRefinement struct {
	out   string
	err   error
	calls int
}

func (f *fakeRefinement) Run(ctx context.Context, currentContent, instruction string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type fakeAssignments struct {
	assignment *ExternalAssignment
	err        error
}

func (f *fakeAssignments) GetAssignment(ctx context.Context, courseID, assignmentID string) (*ExternalAssignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.assignment, nil
}

func seedCourse(t *testing.T, tx *gorm.DB, log *logger.Logger) *types.Course {
	t.Helper()
	ctx := context.Background()
	user := &types.User{ID: uuid.New(), Email: uuid.New().String() + "@example.com", Password: "x"}
	if _, err := repos.NewUserRepo(tx, log).Create(ctx, nil, []*types.User{user}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	course := &types.Course{ID: uuid.New(), OwnerID: user.ID, Name: "Mechanics", PerusallCourseID: "pcourse-1"}
	if _, err := repos.NewCourseRepo(tx, log).Create(ctx, nil, []*types.Course{course}); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}

func seedReading(t *testing.T, tx *gorm.DB, log *logger.Logger, courseID uuid.UUID, docID string) *types.Reading {
	t.Helper()
	reading := &types.Reading{
		ID:                 uuid.New(),
		CourseID:           courseID,
		Title:              "Reading " + docID,
		PerusallDocumentID: docID,
		Status:             "uploaded",
	}
	if _, err := repos.NewReadingRepo(tx, log).Create(context.Background(), nil, []*types.Reading{reading}); err != nil {
		t.Fatalf("seed reading: %v", err)
	}
	return reading
}

func newBasicInfoService(tx *gorm.DB, log *logger.Logger) CourseBasicInfoService {
	return NewCourseBasicInfoService(
		tx, log,
		repos.NewCourseRepo(tx, log),
		repos.NewCourseBasicInfoRepo(tx, log),
		repos.NewCourseBasicInfoVersionRepo(tx, log),
	)
}

func newProfileService(tx *gorm.DB, log *logger.Logger, gen GenerationWorkflow, ref RefinementWorkflow) ClassProfileService {
	return NewClassProfileService(
		tx, log,
		repos.NewCourseRepo(tx, log),
		repos.NewClassProfileRepo(tx, log),
		repos.NewClassProfileVersionRepo(tx, log),
		newBasicInfoService(tx, log),
		gen, ref,
		noopViewCache{},
	)
}

func newScaffoldTestService(tx *gorm.DB, log *logger.Logger, ref RefinementWorkflow) ScaffoldService {
	return NewScaffoldService(
		tx, log,
		repos.NewReadingRepo(tx, log),
		repos.NewScaffoldAnnotationRepo(tx, log),
		repos.NewScaffoldAnnotationVersionRepo(tx, log),
		repos.NewAnnotationHighlightCoordsRepo(tx, log),
		ref,
	)
}

func newSessionTestService(tx *gorm.DB, log *logger.Logger, assignments ExternalAssignmentSource) SessionService {
	return NewSessionService(
		tx, log,
		repos.NewCourseRepo(tx, log),
		repos.NewReadingRepo(tx, log),
		repos.NewSessionRepo(tx, log),
		repos.NewSessionVersionRepo(tx, log),
		repos.NewSessionReadingRepo(tx, log),
		assignments,
	)
}

func testEnv(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	return tx, repotest.Logger(t)
}
