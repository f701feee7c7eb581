package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

const generatedContent = `{"generated_profile":{"overview":"An overview."},"class_input":{"discipline_info":{"discipline_name":"Physics","discipline_description":"d"}}}`

func TestClassProfileGenerateAndEdit(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)

	gen := &fakeGeneration{content: generatedContent, meta: map[string]interface{}{"design_rationale": "because"}}
	svc := newProfileService(tx, log, gen, &fakeRefinement{})

	profile, v1, view, err := svc.CreateFromGeneration(ctx, course.ID, physicsClassInput(), "pipeline")
	if err != nil {
		t.Fatalf("CreateFromGeneration: %v", err)
	}
	if v1.VersionNumber != 1 {
		t.Fatalf("first version number = %d, want 1", v1.VersionNumber)
	}
	if profile.CurrentVersionID == nil || *profile.CurrentVersionID != v1.ID {
		t.Fatalf("current pointer = %v, want %s", profile.CurrentVersionID, v1.ID)
	}
	if profile.Description != generatedContent {
		t.Fatal("denormalized description must match the version content")
	}
	if view.DisciplineInfo.DisciplineName != "Physics" {
		t.Fatalf("view discipline = %q, want embedded value", view.DisciplineInfo.DisciplineName)
	}

	_, v2, _, err := svc.ApplyManualEdit(ctx, course.ID, `{"profile":"edited"}`, nil, "instructor")
	if err != nil {
		t.Fatalf("ApplyManualEdit: %v", err)
	}
	if v2.VersionNumber != 2 {
		t.Fatalf("second version number = %d, want 2", v2.VersionNumber)
	}

	entries, err := svc.History(ctx, course.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("history length = %d, want 2", len(entries))
	}
	if entries[0].Action != "init" || entries[1].Action != "manual_edit" {
		t.Fatalf("history actions = [%s %s], want [init manual_edit]", entries[0].Action, entries[1].Action)
	}
	if entries[0].VersionNumber != 1 || entries[1].VersionNumber != 2 {
		t.Fatal("history must be ordered oldest-first")
	}
}

func TestClassProfileGenerateReusesStoredInput(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)

	basicInfo := newBasicInfoService(tx, log)
	if _, _, err := basicInfo.Upsert(ctx, course.ID, physicsClassInput(), types.ChangeTypeManualEdit, "instructor"); err != nil {
		t.Fatalf("Upsert basic info: %v", err)
	}

	gen := &fakeGeneration{content: generatedContent}
	svc := newProfileService(tx, log, gen, &fakeRefinement{})
	if _, _, _, err := svc.CreateFromGeneration(ctx, course.ID, nil, "pipeline"); err != nil {
		t.Fatalf("CreateFromGeneration without input: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("generation calls = %d, want 1", gen.calls)
	}
}

func TestClassProfileRefineInstruction(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)

	gen := &fakeGeneration{content: generatedContent}
	ref := &fakeRefinement{out: `{"generated_profile":{"overview":"Refined."}}`}
	svc := newProfileService(tx, log, gen, ref)

	if _, _, _, err := svc.CreateFromGeneration(ctx, course.ID, physicsClassInput(), "pipeline"); err != nil {
		t.Fatalf("CreateFromGeneration: %v", err)
	}

	_, v2, _, err := svc.ApplyLLMRefine(ctx, course.ID, "shorten the overview", nil, "instructor")
	if err != nil {
		t.Fatalf("ApplyLLMRefine: %v", err)
	}
	if v2.ChangeType != types.ChangeTypeLLMEdit {
		t.Fatalf("change type = %q, want %q", v2.ChangeType, types.ChangeTypeLLMEdit)
	}

	// The refinement output carried no class_input; the current content's
	// structural fields must survive the merge untouched.
	var merged map[string]interface{}
	if err := json.Unmarshal([]byte(v2.Content), &merged); err != nil {
		t.Fatalf("merged content not JSON: %v", err)
	}
	if _, ok := merged["class_input"]; !ok {
		t.Fatal("refined version lost the embedded class_input")
	}
}

func TestClassProfileRefineRejectsInvalidOutput(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)

	svc := newProfileService(tx, log, &fakeGeneration{content: generatedContent}, &fakeRefinement{out: "not json at all"})
	if _, _, _, err := svc.CreateFromGeneration(ctx, course.ID, physicsClassInput(), "pipeline"); err != nil {
		t.Fatalf("CreateFromGeneration: %v", err)
	}

	_, _, _, err := svc.ApplyLLMRefine(ctx, course.ID, "do something", nil, "instructor")
	if !errors.Is(err, ErrInvalidGenerationOutput) {
		t.Fatalf("err = %v, want ErrInvalidGenerationOutput", err)
	}

	entries, hErr := svc.History(ctx, course.ID)
	if hErr != nil {
		t.Fatalf("History: %v", hErr)
	}
	if len(entries) != 1 {
		t.Fatalf("history length = %d after failed refine, want 1", len(entries))
	}
}

func TestClassProfileRefineStructuralRegenerates(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)

	gen := &fakeGeneration{content: generatedContent}
	svc := newProfileService(tx, log, gen, &fakeRefinement{})
	if _, _, _, err := svc.CreateFromGeneration(ctx, course.ID, physicsClassInput(), "pipeline"); err != nil {
		t.Fatalf("CreateFromGeneration: %v", err)
	}

	newInput := physicsClassInput()
	newInput.CourseInfo.CourseName = "Advanced Mechanics"
	_, v2, _, err := svc.ApplyLLMRefine(ctx, course.ID, "", newInput, "instructor")
	if err != nil {
		t.Fatalf("ApplyLLMRefine structural: %v", err)
	}
	if v2.ChangeType != types.ChangeTypeLLMEdit {
		t.Fatalf("change type = %q, want %q", v2.ChangeType, types.ChangeTypeLLMEdit)
	}
	if gen.calls != 2 {
		t.Fatalf("generation calls = %d, want 2 (initial + structural refine)", gen.calls)
	}

	// The structural source of truth gains its own version.
	stored, gErr := newBasicInfoService(tx, log).GetClassInput(ctx, course.ID)
	if gErr != nil {
		t.Fatalf("GetClassInput: %v", gErr)
	}
	if stored == nil || stored.CourseInfo.CourseName.String() != "Advanced Mechanics" {
		t.Fatalf("stored basic info = %+v, want updated course name", stored)
	}
}

func TestClassProfileApprove(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)

	svc := newProfileService(tx, log, &fakeGeneration{content: generatedContent}, &fakeRefinement{})
	if _, _, _, err := svc.CreateFromGeneration(ctx, course.ID, physicsClassInput(), "pipeline"); err != nil {
		t.Fatalf("CreateFromGeneration: %v", err)
	}

	t.Run("without text is a status change only", func(t *testing.T) {
		profile, _, err := svc.Approve(ctx, course.ID, "", "instructor")
		if err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if profile.Status != "approved" {
			t.Fatalf("status = %q, want approved", profile.Status)
		}
		entries, _ := svc.History(ctx, course.ID)
		if len(entries) != 1 {
			t.Fatalf("history length = %d, want 1 (no version appended)", len(entries))
		}
	})

	t.Run("with text appends an approve version", func(t *testing.T) {
		profile, _, err := svc.Approve(ctx, course.ID, `{"profile":"final text"}`, "instructor")
		if err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if profile.Description != `{"profile":"final text"}` {
			t.Fatal("pointer did not advance onto the approved text")
		}
		entries, _ := svc.History(ctx, course.ID)
		if len(entries) != 2 || entries[1].Action != "approve" {
			t.Fatalf("history = %+v, want trailing approve entry", entries)
		}
	})
}

func TestClassProfileRevert(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)

	svc := newProfileService(tx, log, &fakeGeneration{content: generatedContent}, &fakeRefinement{})
	_, v1, _, err := svc.CreateFromGeneration(ctx, course.ID, physicsClassInput(), "pipeline")
	if err != nil {
		t.Fatalf("CreateFromGeneration: %v", err)
	}
	if _, _, _, err := svc.ApplyManualEdit(ctx, course.ID, `{"profile":"edited"}`, nil, "instructor"); err != nil {
		t.Fatalf("ApplyManualEdit: %v", err)
	}

	profile, v3, _, err := svc.Revert(ctx, course.ID, v1.ID, "instructor")
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if v3.VersionNumber != 3 {
		t.Fatalf("revert version number = %d, want 3 (ledger stays append-only)", v3.VersionNumber)
	}
	if v3.Content != v1.Content {
		t.Fatal("revert version must snapshot the target content")
	}
	if profile.CurrentVersionID == nil || *profile.CurrentVersionID != v3.ID {
		t.Fatal("pointer must advance onto the revert version")
	}
	entries, _ := svc.History(ctx, course.ID)
	if entries[len(entries)-1].Action != "revert" {
		t.Fatalf("last history action = %q, want revert", entries[len(entries)-1].Action)
	}
}

func TestClassProfileRevertRejectsForeignVersion(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	courseA := seedCourse(t, tx, log)
	courseB := seedCourse(t, tx, log)

	svc := newProfileService(tx, log, &fakeGeneration{content: generatedContent}, &fakeRefinement{})
	if _, _, _, err := svc.CreateFromGeneration(ctx, courseA.ID, physicsClassInput(), "pipeline"); err != nil {
		t.Fatalf("CreateFromGeneration A: %v", err)
	}
	_, foreign, _, err := svc.CreateFromGeneration(ctx, courseB.ID, physicsClassInput(), "pipeline")
	if err != nil {
		t.Fatalf("CreateFromGeneration B: %v", err)
	}

	_, _, _, err = svc.Revert(ctx, courseA.ID, foreign.ID, "instructor")
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("err = %v, want ErrVersionMismatch", err)
	}

	_, _, _, err = svc.Revert(ctx, courseA.ID, uuid.New(), "instructor")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClassProfileGetViewMissingProfile(t *testing.T) {
	tx, log := testEnv(t)
	course := seedCourse(t, tx, log)

	svc := newProfileService(tx, log, &fakeGeneration{content: generatedContent}, &fakeRefinement{})
	_, err := svc.GetView(context.Background(), course.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCourseBasicInfoVersioning(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)

	svc := newBasicInfoService(tx, log)
	info, v1, err := svc.Upsert(ctx, course.ID, physicsClassInput(), types.ChangeTypePipeline, "pipeline")
	if err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if v1.VersionNumber != 1 {
		t.Fatalf("version number = %d, want 1", v1.VersionNumber)
	}

	updated := physicsClassInput()
	updated.ClassInfo.ClassSize = "60"
	info2, v2, err := svc.Upsert(ctx, course.ID, updated, types.ChangeTypeManualEdit, "instructor")
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if info2.ID != info.ID {
		t.Fatal("upsert must reuse the existing entity row")
	}
	if v2.VersionNumber != 2 {
		t.Fatalf("version number = %d, want 2", v2.VersionNumber)
	}

	stored, err := svc.GetClassInput(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetClassInput: %v", err)
	}
	if stored.ClassInfo.ClassSize.String() != "60" {
		t.Fatalf("stored class size = %q, want 60", stored.ClassInfo.ClassSize)
	}

	// A course with no basic info resolves to absent, not an error.
	other := seedCourse(t, tx, log)
	absent, err := svc.GetClassInput(ctx, other.ID)
	if err != nil || absent != nil {
		t.Fatalf("GetClassInput absent = (%v, %v), want (nil, nil)", absent, err)
	}
}
