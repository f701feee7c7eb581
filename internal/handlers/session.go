package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/services"
)

type SessionHandler struct {
	log            *logger.Logger
	sessionService services.SessionService
}

func NewSessionHandler(baseLog *logger.Logger, sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{log: baseLog.With("handler", "SessionHandler"), sessionService: sessionService}
}

func (sh *SessionHandler) Create(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		WeekNumber  int    `json:"week_number"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()
	session, version, err := sh.sessionService.Create(ctx, courseID, req.WeekNumber, req.Title, req.Description, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": session, "version": version})
}

func (sh *SessionHandler) ListByCourse(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	sessions, err := sh.sessionService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, sessions)
}

func (sh *SessionHandler) ManualEdit(c *gin.Context) {
	sessionID, err := parseIDParam(c, "session_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		WeekNumber  int    `json:"week_number"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()
	session, version, err := sh.sessionService.ApplyManualEdit(ctx, sessionID, req.WeekNumber, req.Title, req.Description, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": session, "version": version})
}

func (sh *SessionHandler) LinkAssignment(c *gin.Context) {
	sessionID, err := parseIDParam(c, "session_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		AssignmentID string `json:"assignment_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.AssignmentID == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", errMissingAssignmentID)
		return
	}
	session, err := sh.sessionService.LinkAssignment(c.Request.Context(), sessionID, req.AssignmentID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, session)
}

func (sh *SessionHandler) RederiveReadings(c *gin.Context) {
	sessionID, err := parseIDParam(c, "session_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	rows, err := sh.sessionService.RederiveReadings(c.Request.Context(), sessionID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (sh *SessionHandler) ExpectedReadings(c *gin.Context) {
	sessionID, err := parseIDParam(c, "session_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	expected, err := sh.sessionService.ExpectedReadings(c.Request.Context(), sessionID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, expected)
}

func (sh *SessionHandler) Readings(c *gin.Context) {
	sessionID, err := parseIDParam(c, "session_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	rows, err := sh.sessionService.Readings(c.Request.Context(), sessionID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (sh *SessionHandler) History(c *gin.Context) {
	sessionID, err := parseIDParam(c, "session_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	entries, err := sh.sessionService.History(c.Request.Context(), sessionID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, entries)
}
