package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func intPtr(v int) *int { return &v }

func TestSessionVersioningAndHistory(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)

	svc := newSessionTestService(tx, log, &fakeAssignments{})
	session, v1, err := svc.Create(ctx, course.ID, 1, "Week 1", "Kinematics intro", "instructor")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v1.VersionNumber != 1 {
		t.Fatalf("version number = %d, want 1", v1.VersionNumber)
	}
	if v1.ChangeType != "pipeline" {
		t.Fatalf("first version change type = %q, want pipeline so history opens with init", v1.ChangeType)
	}

	edited, v2, err := svc.ApplyManualEdit(ctx, session.ID, 2, "Week 2", "Dynamics", "instructor")
	if err != nil {
		t.Fatalf("ApplyManualEdit: %v", err)
	}
	if v2.VersionNumber != 2 {
		t.Fatalf("version number = %d, want 2", v2.VersionNumber)
	}
	if edited.WeekNumber != 2 || edited.Title != "Week 2" {
		t.Fatalf("session fields not updated: week=%d title=%q", edited.WeekNumber, edited.Title)
	}

	entries, err := svc.History(ctx, session.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("history length = %d, want 2", len(entries))
	}
	if entries[0].Action != "init" || entries[1].Action != "manual_edit" {
		t.Fatalf("history actions = [%s, %s], want [init, manual_edit]", entries[0].Action, entries[1].Action)
	}
}

func TestSessionRederiveRequiresLink(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)

	svc := newSessionTestService(tx, log, &fakeAssignments{})
	session, _, err := svc.Create(ctx, course.ID, 1, "Week 1", "", "instructor")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.RederiveReadings(ctx, session.ID); !errors.Is(err, ErrMissingAssignmentLink) {
		t.Fatalf("err = %v, want ErrMissingAssignmentLink", err)
	}
}

func TestSessionRederiveWithoutAssignmentSource(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)

	svc := newSessionTestService(tx, log, nil)
	session, _, err := svc.Create(ctx, course.ID, 1, "Week 1", "", "instructor")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.LinkAssignment(ctx, session.ID, "assign-1"); err != nil {
		t.Fatalf("LinkAssignment: %v", err)
	}

	if _, err := svc.RederiveReadings(ctx, session.ID); !errors.Is(err, ErrAssignmentSourceUnavailable) {
		t.Fatalf("RederiveReadings err = %v, want ErrAssignmentSourceUnavailable", err)
	}
	if _, err := svc.ExpectedReadings(ctx, session.ID); !errors.Is(err, ErrAssignmentSourceUnavailable) {
		t.Fatalf("ExpectedReadings err = %v, want ErrAssignmentSourceUnavailable", err)
	}
}

func TestSessionRederiveProjectsPartsInOrder(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)
	readingA := seedReading(t, tx, log, course.ID, "doc-a")
	readingB := seedReading(t, tx, log, course.ID, "doc-b")

	src := &fakeAssignments{assignment: &ExternalAssignment{
		ID:   "assign-1",
		Name: "Forces",
		Parts: []AssignmentPart{
			{DocumentID: "doc-a", StartPage: intPtr(1), EndPage: intPtr(12)},
			{DocumentID: "doc-unknown"},
			{DocumentID: "doc-b", StartPage: intPtr(3), EndPage: intPtr(7)},
		},
	}}
	svc := newSessionTestService(tx, log, src)
	session, _, err := svc.Create(ctx, course.ID, 1, "Week 1", "", "instructor")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.LinkAssignment(ctx, session.ID, "assign-1"); err != nil {
		t.Fatalf("LinkAssignment: %v", err)
	}

	rows, err := svc.RederiveReadings(ctx, session.ID)
	if err != nil {
		t.Fatalf("RederiveReadings: %v", err)
	}
	// doc-unknown has no local reading; its slot is skipped but the
	// positions of the remaining parts keep the assignment's ordering.
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].ReadingID != readingA.ID || rows[0].Position != 0 {
		t.Fatalf("row 0 = reading %s at %d, want %s at 0", rows[0].ReadingID, rows[0].Position, readingA.ID)
	}
	if rows[0].StartPage == nil || *rows[0].StartPage != 1 || rows[0].EndPage == nil || *rows[0].EndPage != 12 {
		t.Fatal("row 0 must carry the part's page range")
	}
	if rows[1].ReadingID != readingB.ID || rows[1].Position != 2 {
		t.Fatalf("row 1 = reading %s at %d, want %s at 2", rows[1].ReadingID, rows[1].Position, readingB.ID)
	}

	// Rederiving again replaces wholesale instead of accumulating.
	again, err := svc.RederiveReadings(ctx, session.ID)
	if err != nil {
		t.Fatalf("RederiveReadings rerun: %v", err)
	}
	if len(again) != 2 {
		t.Fatalf("rerun rows = %d, want 2", len(again))
	}
	stored, err := svc.Readings(ctx, session.ID)
	if err != nil {
		t.Fatalf("Readings: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored rows = %d, want 2 after rerun", len(stored))
	}
}

func TestSessionRederivePartlessFallback(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)
	readingA := seedReading(t, tx, log, course.ID, "doc-a")

	src := &fakeAssignments{assignment: &ExternalAssignment{
		ID:          "assign-1",
		Name:        "Forces",
		DocumentIDs: []string{"doc-a", "doc-unknown"},
	}}
	svc := newSessionTestService(tx, log, src)
	session, _, err := svc.Create(ctx, course.ID, 1, "Week 1", "", "instructor")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.LinkAssignment(ctx, session.ID, "assign-1"); err != nil {
		t.Fatalf("LinkAssignment: %v", err)
	}

	rows, err := svc.RederiveReadings(ctx, session.ID)
	if err != nil {
		t.Fatalf("RederiveReadings: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].ReadingID != readingA.ID {
		t.Fatalf("row 0 reading = %s, want %s", rows[0].ReadingID, readingA.ID)
	}
	if rows[0].StartPage != nil || rows[0].EndPage != nil {
		t.Fatal("fallback rows carry no page range")
	}
}

func TestSessionExpectedReadings(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)
	readingA := seedReading(t, tx, log, course.ID, "doc-a")

	src := &fakeAssignments{assignment: &ExternalAssignment{
		ID:   "assign-1",
		Name: "Forces",
		Parts: []AssignmentPart{
			{DocumentID: "doc-a", StartPage: intPtr(1), EndPage: intPtr(12)},
			{DocumentID: "doc-missing"},
		},
	}}
	svc := newSessionTestService(tx, log, src)
	session, _, err := svc.Create(ctx, course.ID, 1, "Week 1", "", "instructor")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Unlinked sessions report an empty expectation, not an error.
	expected, err := svc.ExpectedReadings(ctx, session.ID)
	if err != nil {
		t.Fatalf("ExpectedReadings unlinked: %v", err)
	}
	if len(expected) != 0 {
		t.Fatalf("unlinked expectations = %d, want 0", len(expected))
	}

	if _, err := svc.LinkAssignment(ctx, session.ID, "assign-1"); err != nil {
		t.Fatalf("LinkAssignment: %v", err)
	}
	expected, err = svc.ExpectedReadings(ctx, session.ID)
	if err != nil {
		t.Fatalf("ExpectedReadings: %v", err)
	}
	if len(expected) != 2 {
		t.Fatalf("expectations = %d, want 2 (missing docs still listed)", len(expected))
	}
	if !expected[0].Uploaded || expected[0].ReadingID == nil || *expected[0].ReadingID != readingA.ID {
		t.Fatalf("entry 0 = %+v, want uploaded with reading %s", expected[0], readingA.ID)
	}
	if expected[0].Title != readingA.Title {
		t.Fatalf("entry 0 title = %q, want %q", expected[0].Title, readingA.Title)
	}
	if expected[1].Uploaded || expected[1].ReadingID != nil {
		t.Fatalf("entry 1 = %+v, want not uploaded", expected[1])
	}
	if expected[1].DocumentID != "doc-missing" || expected[1].Position != 1 {
		t.Fatalf("entry 1 = %+v, want doc-missing at position 1", expected[1])
	}
}

func TestSessionListByCourse(t *testing.T) {
	tx, log := testEnv(t)
	ctx := context.Background()
	course := seedCourse(t, tx, log)

	svc := newSessionTestService(tx, log, &fakeAssignments{})
	if _, _, err := svc.Create(ctx, course.ID, 1, "Week 1", "", "instructor"); err != nil {
		t.Fatalf("Create week 1: %v", err)
	}
	if _, _, err := svc.Create(ctx, course.ID, 2, "Week 2", "", "instructor"); err != nil {
		t.Fatalf("Create week 2: %v", err)
	}

	sessions, err := svc.ListByCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("ListByCourse: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	if _, err := svc.ListByCourse(ctx, uuid.New()); err != nil {
		t.Fatalf("ListByCourse unknown course: %v", err)
	}
}
