package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/repos"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

// ExpectedReading is one document the linked assignment says the session
// should contain, annotated with whether a matching local reading exists.
type ExpectedReading struct {
	DocumentID string     `json:"document_id"`
	Position   int        `json:"position"`
	StartPage  *int       `json:"start_page,omitempty"`
	EndPage    *int       `json:"end_page,omitempty"`
	Uploaded   bool       `json:"uploaded"`
	ReadingID  *uuid.UUID `json:"reading_id,omitempty"`
	Title      string     `json:"title,omitempty"`
}

// SessionService manages weekly sessions, their version ledger, and the
// session-reading rows projected from the linked Perusall assignment.
type SessionService interface {
	Create(ctx context.Context, courseID uuid.UUID, weekNumber int, title, description, actor string) (*types.Session, *types.SessionVersion, error)
	ApplyManualEdit(ctx context.Context, sessionID uuid.UUID, weekNumber int, title, description, actor string) (*types.Session, *types.SessionVersion, error)
	LinkAssignment(ctx context.Context, sessionID uuid.UUID, assignmentID string) (*types.Session, error)
	RederiveReadings(ctx context.Context, sessionID uuid.UUID) ([]*types.SessionReading, error)
	ExpectedReadings(ctx context.Context, sessionID uuid.UUID) ([]ExpectedReading, error)
	Readings(ctx context.Context, sessionID uuid.UUID) ([]*types.SessionReading, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*types.Session, error)
	History(ctx context.Context, sessionID uuid.UUID) ([]HistoryEntry, error)
}

type sessionService struct {
	db          *gorm.DB
	log         *logger.Logger
	courseRepo  repos.CourseRepo
	readingRepo repos.ReadingRepo
	sessionRepo repos.SessionRepo
	versionRepo repos.SessionVersionRepo
	rowRepo     repos.SessionReadingRepo
	assignments ExternalAssignmentSource
}

func NewSessionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	readingRepo repos.ReadingRepo,
	sessionRepo repos.SessionRepo,
	versionRepo repos.SessionVersionRepo,
	rowRepo repos.SessionReadingRepo,
	assignments ExternalAssignmentSource,
) SessionService {
	return &sessionService{
		db:          db,
		log:         baseLog.With("service", "SessionService"),
		courseRepo:  courseRepo,
		readingRepo: readingRepo,
		sessionRepo: sessionRepo,
		versionRepo: versionRepo,
		rowRepo:     rowRepo,
		assignments: assignments,
	}
}

// sessionContent is the canonical version payload for a session; the
// session row keeps denormalized copies of the same fields.
type sessionContent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	WeekNumber  int    `json:"week_number"`
}

func (s *sessionService) Create(ctx context.Context, courseID uuid.UUID, weekNumber int, title, description, actor string) (*types.Session, *types.SessionVersion, error) {
	courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 {
		return nil, nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}

	var session *types.Session
	var version *types.SessionVersion
	err = runVersionWrite(ctx, s.db, func(tx *gorm.DB) error {
		session = &types.Session{
			ID:          uuid.New(),
			CourseID:    courseID,
			WeekNumber:  weekNumber,
			Title:       title,
			Description: description,
		}
		if _, cErr := s.sessionRepo.Create(ctx, tx, []*types.Session{session}); cErr != nil {
			return fmt.Errorf("create session: %w", cErr)
		}
		created, vErr := s.appendVersion(ctx, tx, session, types.ChangeTypePipeline, actor)
		if vErr != nil {
			return vErr
		}
		version = created
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return session, version, nil
}

func (s *sessionService) ApplyManualEdit(ctx context.Context, sessionID uuid.UUID, weekNumber int, title, description, actor string) (*types.Session, *types.SessionVersion, error) {
	session, err := s.loadSession(ctx, nil, sessionID)
	if err != nil {
		return nil, nil, err
	}

	var version *types.SessionVersion
	err = runVersionWrite(ctx, s.db, func(tx *gorm.DB) error {
		session.WeekNumber = weekNumber
		session.Title = title
		session.Description = description
		created, vErr := s.appendVersion(ctx, tx, session, types.ChangeTypeManualEdit, actor)
		if vErr != nil {
			return vErr
		}
		version = created
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return session, version, nil
}

func (s *sessionService) LinkAssignment(ctx context.Context, sessionID uuid.UUID, assignmentID string) (*types.Session, error) {
	session, err := s.loadSession(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	session.PerusallAssignmentID = &assignmentID
	if uErr := s.sessionRepo.Update(ctx, nil, session); uErr != nil {
		return nil, fmt.Errorf("link assignment: %w", uErr)
	}
	return session, nil
}

// RederiveReadings throws away the session's reading rows and rebuilds
// them from the linked assignment. Documents with no local reading are
// skipped without a placeholder.
func (s *sessionService) RederiveReadings(ctx context.Context, sessionID uuid.UUID) ([]*types.SessionReading, error) {
	session, err := s.loadSession(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PerusallAssignmentID == nil || *session.PerusallAssignmentID == "" {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrMissingAssignmentLink)
	}
	if s.assignments == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrAssignmentSourceUnavailable)
	}

	course, err := s.loadCourse(ctx, session.CourseID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignments.GetAssignment(ctx, course.PerusallCourseID, *session.PerusallAssignmentID)
	if err != nil {
		return nil, fmt.Errorf("fetch assignment: %w", err)
	}

	var rows []*types.SessionReading
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dErr := s.rowRepo.FullDeleteBySessionID(ctx, tx, session.ID); dErr != nil {
			return fmt.Errorf("clear session readings: %w", dErr)
		}
		built, bErr := s.projectRows(ctx, tx, session, assignment)
		if bErr != nil {
			return bErr
		}
		if len(built) > 0 {
			if _, cErr := s.rowRepo.Create(ctx, tx, built); cErr != nil {
				return fmt.Errorf("create session readings: %w", cErr)
			}
		}
		rows = built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *sessionService) projectRows(ctx context.Context, tx *gorm.DB, session *types.Session, assignment *ExternalAssignment) ([]*types.SessionReading, error) {
	rows := make([]*types.SessionReading, 0, len(assignment.Parts))
	if len(assignment.Parts) > 0 {
		for i, part := range assignment.Parts {
			reading, err := s.readingRepo.GetByCourseAndDocumentID(ctx, tx, session.CourseID, part.DocumentID)
			if err != nil {
				return nil, fmt.Errorf("look up reading for document %s: %w", part.DocumentID, err)
			}
			if reading == nil {
				s.log.Warn("Assignment part references a document with no local reading, skipping", "session_id", session.ID, "document_id", part.DocumentID)
				continue
			}
			rows = append(rows, &types.SessionReading{
				ID:                 uuid.New(),
				SessionID:          session.ID,
				ReadingID:          reading.ID,
				Position:           i,
				PerusallDocumentID: part.DocumentID,
				StartPage:          part.StartPage,
				EndPage:            part.EndPage,
			})
		}
		return rows, nil
	}

	// Part-less assignments only expose an unordered document-id list.
	for i, docID := range assignment.DocumentIDs {
		reading, err := s.readingRepo.GetByCourseAndDocumentID(ctx, tx, session.CourseID, docID)
		if err != nil {
			return nil, fmt.Errorf("look up reading for document %s: %w", docID, err)
		}
		if reading == nil {
			s.log.Warn("Assignment references a document with no local reading, skipping", "session_id", session.ID, "document_id", docID)
			continue
		}
		rows = append(rows, &types.SessionReading{
			ID:                 uuid.New(),
			SessionID:          session.ID,
			ReadingID:          reading.ID,
			Position:           i,
			PerusallDocumentID: docID,
		})
	}
	return rows, nil
}

// ExpectedReadings is the read-only variant of the projection. A session
// with no linked assignment yields an empty list, never an error.
func (s *sessionService) ExpectedReadings(ctx context.Context, sessionID uuid.UUID) ([]ExpectedReading, error) {
	session, err := s.loadSession(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PerusallAssignmentID == nil || *session.PerusallAssignmentID == "" {
		return []ExpectedReading{}, nil
	}
	if s.assignments == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrAssignmentSourceUnavailable)
	}

	course, err := s.loadCourse(ctx, session.CourseID)
	if err != nil {
		return nil, err
	}

	var assignment *ExternalAssignment
	var readings []*types.Reading
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, aErr := s.assignments.GetAssignment(gctx, course.PerusallCourseID, *session.PerusallAssignmentID)
		if aErr != nil {
			return fmt.Errorf("fetch assignment: %w", aErr)
		}
		assignment = a
		return nil
	})
	g.Go(func() error {
		r, rErr := s.readingRepo.GetByCourseID(gctx, nil, session.CourseID)
		if rErr != nil {
			return fmt.Errorf("list course readings: %w", rErr)
		}
		readings = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byDoc := make(map[string]*types.Reading, len(readings))
	for _, r := range readings {
		if r.PerusallDocumentID != "" {
			byDoc[r.PerusallDocumentID] = r
		}
	}

	expected := make([]ExpectedReading, 0, len(assignment.Parts))
	if len(assignment.Parts) > 0 {
		for i, part := range assignment.Parts {
			expected = append(expected, expectedEntry(part.DocumentID, i, part.StartPage, part.EndPage, byDoc))
		}
		return expected, nil
	}
	for i, docID := range assignment.DocumentIDs {
		expected = append(expected, expectedEntry(docID, i, nil, nil, byDoc))
	}
	return expected, nil
}

func expectedEntry(docID string, position int, startPage, endPage *int, byDoc map[string]*types.Reading) ExpectedReading {
	entry := ExpectedReading{
		DocumentID: docID,
		Position:   position,
		StartPage:  startPage,
		EndPage:    endPage,
	}
	if reading, ok := byDoc[docID]; ok {
		entry.Uploaded = true
		entry.ReadingID = &reading.ID
		entry.Title = reading.Title
	}
	return entry
}

func (s *sessionService) Readings(ctx context.Context, sessionID uuid.UUID) ([]*types.SessionReading, error) {
	if _, err := s.loadSession(ctx, nil, sessionID); err != nil {
		return nil, err
	}
	rows, err := s.rowRepo.GetBySessionID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session readings: %w", err)
	}
	return rows, nil
}

func (s *sessionService) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*types.Session, error) {
	sessions, err := s.sessionRepo.GetByCourseID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) History(ctx context.Context, sessionID uuid.UUID) ([]HistoryEntry, error) {
	session, err := s.loadSession(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	versions, err := s.versionRepo.ListBySessionID(ctx, nil, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list session versions: %w", err)
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

// appendVersion snapshots the session's denormalized fields into a new
// version and advances the current pointer. Runs inside the caller's
// transaction.
func (s *sessionService) appendVersion(ctx context.Context, tx *gorm.DB, session *types.Session, changeType, actor string) (*types.SessionVersion, error) {
	payload, err := json.Marshal(sessionContent{
		Title:       session.Title,
		Description: session.Description,
		WeekNumber:  session.WeekNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("encode session content: %w", err)
	}
	v := &types.SessionVersion{
		ID:         uuid.New(),
		SessionID:  session.ID,
		Content:    string(payload),
		ChangeType: changeType,
		CreatedBy:  actor,
	}
	created, err := s.versionRepo.CreateNext(ctx, tx, v)
	if err != nil {
		return nil, err
	}
	session.CurrentVersionID = &created.ID
	if err := s.sessionRepo.Update(ctx, tx, session); err != nil {
		return nil, fmt.Errorf("advance session pointer: %w", err)
	}
	return created, nil
}

func (s *sessionService) loadSession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.Session, error) {
	sessions, err := s.sessionRepo.GetByIDs(ctx, tx, []uuid.UUID{sessionID})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return sessions[0], nil
}

func (s *sessionService) loadCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}
	return courses[0], nil
}
