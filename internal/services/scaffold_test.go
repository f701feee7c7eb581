package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/scaffoldlab/scaffold-backend/internal/repos"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

func threeHighlights() []HighlightInput {
	return []HighlightInput{
		{PageNumber: 1, StartOffset: 0, EndOffset: 40},
		{PageNumber: 1, StartOffset: 80, EndOffset: 120},
		{PageNumber: 2, StartOffset: 10, EndOffset: 55},
	}
}

func TestScaffoldCreateOwnsFreshCoords(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)
	reading := seedReading(t, tx, log, course.ID, "doc-1")

	svc := newScaffoldTestService(tx, log, &fakeRefinement{})
	annotation, v1, err := svc.Create(ctx, reading.ID, "fragment", `{"question":"Why?"}`, threeHighlights(), types.ChangeTypePipeline, "pipeline")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v1.VersionNumber != 1 {
		t.Fatalf("version number = %d, want 1", v1.VersionNumber)
	}
	if annotation.Status != "draft" {
		t.Fatalf("status = %q, want draft", annotation.Status)
	}

	coords, err := svc.CurrentCoords(ctx, annotation.ID)
	if err != nil {
		t.Fatalf("CurrentCoords: %v", err)
	}
	if len(coords) != 3 {
		t.Fatalf("coords = %d, want 3", len(coords))
	}
}

func TestScaffoldManualEditCarriesCoordsForward(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)
	reading := seedReading(t, tx, log, course.ID, "doc-1")

	svc := newScaffoldTestService(tx, log, &fakeRefinement{})
	annotation, v1, err := svc.Create(ctx, reading.ID, "fragment", `{"question":"Why?"}`, threeHighlights(), types.ChangeTypePipeline, "pipeline")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, v2, err := svc.ApplyManualEdit(ctx, annotation.ID, `{"question":"Edited?"}`, "instructor")
	if err != nil {
		t.Fatalf("ApplyManualEdit: %v", err)
	}

	coordsRepo := repos.NewAnnotationHighlightCoordsRepo(tx, log)
	cloned, err := coordsRepo.GetValidByVersionID(ctx, nil, v2.ID)
	if err != nil {
		t.Fatalf("load cloned coords: %v", err)
	}
	if len(cloned) != 3 {
		t.Fatalf("cloned coords = %d, want exactly 3", len(cloned))
	}
	for _, c := range cloned {
		if !c.Valid {
			t.Fatal("cloned coords must be valid")
		}
	}

	// The originals stay attached to the old version, untouched.
	originals, err := coordsRepo.GetValidByVersionID(ctx, nil, v1.ID)
	if err != nil {
		t.Fatalf("load original coords: %v", err)
	}
	if len(originals) != 3 {
		t.Fatalf("original coords = %d, want 3 (never invalidated)", len(originals))
	}
}

func TestScaffoldCarryForwardFallbackSkipsEmptyAncestors(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)
	reading := seedReading(t, tx, log, course.ID, "doc-1")

	svc := newScaffoldTestService(tx, log, &fakeRefinement{})

	// V1 carries no highlights at all.
	annotation, _, err := svc.Create(ctx, reading.ID, "fragment", `{"question":"v1"}`, nil, types.ChangeTypePipeline, "pipeline")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// V2 also inherits nothing, then gains two highlights out of band.
	_, v2, err := svc.ApplyManualEdit(ctx, annotation.ID, `{"question":"v2"}`, "instructor")
	if err != nil {
		t.Fatalf("ApplyManualEdit v2: %v", err)
	}
	coordsRepo := repos.NewAnnotationHighlightCoordsRepo(tx, log)
	late := []*types.AnnotationHighlightCoords{
		{ID: uuid.New(), VersionID: v2.ID, PageNumber: 3, StartOffset: 5, EndOffset: 9, Valid: true},
		{ID: uuid.New(), VersionID: v2.ID, PageNumber: 4, StartOffset: 1, EndOffset: 2, Valid: true},
	}
	if _, err := coordsRepo.Create(ctx, nil, late); err != nil {
		t.Fatalf("attach late coords: %v", err)
	}

	// V3 must find V2's two highlights, not give up at the empty V1.
	_, v3, err := svc.ApplyManualEdit(ctx, annotation.ID, `{"question":"v3"}`, "instructor")
	if err != nil {
		t.Fatalf("ApplyManualEdit v3: %v", err)
	}
	cloned, err := coordsRepo.GetValidByVersionID(ctx, nil, v3.ID)
	if err != nil {
		t.Fatalf("load v3 coords: %v", err)
	}
	if len(cloned) != 2 {
		t.Fatalf("v3 coords = %d, want 2 carried from v2", len(cloned))
	}
}

func TestScaffoldCarryForwardZeroIsSilent(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)
	reading := seedReading(t, tx, log, course.ID, "doc-1")

	svc := newScaffoldTestService(tx, log, &fakeRefinement{})
	annotation, _, err := svc.Create(ctx, reading.ID, "fragment", `{"question":"v1"}`, nil, types.ChangeTypePipeline, "pipeline")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, _, err := svc.ApplyManualEdit(ctx, annotation.ID, `{"question":"v2"}`, "instructor"); err != nil {
		t.Fatalf("ApplyManualEdit with no coords anywhere must not fail: %v", err)
	}
	coords, err := svc.CurrentCoords(ctx, annotation.ID)
	if err != nil {
		t.Fatalf("CurrentCoords: %v", err)
	}
	if len(coords) != 0 {
		t.Fatalf("coords = %d, want 0", len(coords))
	}
}

func TestScaffoldRefineValidatesJSON(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)
	reading := seedReading(t, tx, log, course.ID, "doc-1")

	ref := &fakeRefinement{out: "definitely not json"}
	svc := newScaffoldTestService(tx, log, ref)
	annotation, _, err := svc.Create(ctx, reading.ID, "fragment", `{"question":"v1"}`, threeHighlights(), types.ChangeTypePipeline, "pipeline")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, _, err = svc.ApplyLLMRefine(ctx, annotation.ID, "improve it", "instructor")
	if !errors.Is(err, ErrInvalidGenerationOutput) {
		t.Fatalf("err = %v, want ErrInvalidGenerationOutput", err)
	}

	ref.out = `{"question":"refined?"}`
	_, v2, err := svc.ApplyLLMRefine(ctx, annotation.ID, "improve it", "instructor")
	if err != nil {
		t.Fatalf("ApplyLLMRefine with valid output: %v", err)
	}
	if v2.VersionNumber != 2 {
		t.Fatalf("version number = %d, want 2 (failed refine appends nothing)", v2.VersionNumber)
	}

	entries, err := svc.History(ctx, annotation.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if entries[len(entries)-1].Action != "llm_refine" {
		t.Fatalf("last action = %q, want llm_refine", entries[len(entries)-1].Action)
	}
}

func TestScaffoldApproveRejectRevert(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)
	reading := seedReading(t, tx, log, course.ID, "doc-1")

	svc := newScaffoldTestService(tx, log, &fakeRefinement{})
	annotation, v1, err := svc.Create(ctx, reading.ID, "fragment", `{"question":"v1"}`, threeHighlights(), types.ChangeTypePipeline, "pipeline")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	approved, err := svc.Approve(ctx, annotation.ID, "", "instructor")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != "approved" {
		t.Fatalf("status = %q, want approved", approved.Status)
	}

	rejected, err := svc.Reject(ctx, annotation.ID, "instructor")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != "rejected" {
		t.Fatalf("status = %q, want rejected", rejected.Status)
	}

	_, v3, err := svc.Revert(ctx, annotation.ID, v1.ID, "instructor")
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if v3.Content != v1.Content {
		t.Fatal("revert must snapshot the target content")
	}
	coords, err := svc.CurrentCoords(ctx, annotation.ID)
	if err != nil {
		t.Fatalf("CurrentCoords: %v", err)
	}
	if len(coords) != 3 {
		t.Fatalf("coords after revert = %d, want 3 restored from target", len(coords))
	}
}
