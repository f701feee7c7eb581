package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/services"
)

type ScaffoldHandler struct {
	log             *logger.Logger
	scaffoldService services.ScaffoldService
}

func NewScaffoldHandler(baseLog *logger.Logger, scaffoldService services.ScaffoldService) *ScaffoldHandler {
	return &ScaffoldHandler{log: baseLog.With("handler", "ScaffoldHandler"), scaffoldService: scaffoldService}
}

func (sh *ScaffoldHandler) Create(c *gin.Context) {
	readingID, err := parseIDParam(c, "reading_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		FragmentText string                    `json:"fragment_text"`
		Content      string                    `json:"content"`
		ChangeType   string                    `json:"change_type"`
		Coords       []services.HighlightInput `json:"coords"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()
	annotation, version, err := sh.scaffoldService.Create(ctx, readingID, req.FragmentText, req.Content, req.Coords, req.ChangeType, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"annotation": annotation, "version": version})
}

func (sh *ScaffoldHandler) ListByReading(c *gin.Context) {
	readingID, err := parseIDParam(c, "reading_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	annotations, err := sh.scaffoldService.ListByReading(c.Request.Context(), readingID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, annotations)
}

func (sh *ScaffoldHandler) ManualEdit(c *gin.Context) {
	annotationID, err := parseIDParam(c, "annotation_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()
	annotation, version, err := sh.scaffoldService.ApplyManualEdit(ctx, annotationID, req.Content, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"annotation": annotation, "version": version})
}

func (sh *ScaffoldHandler) Refine(c *gin.Context) {
	annotationID, err := parseIDParam(c, "annotation_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		Instruction string `json:"instruction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()
	annotation, version, err := sh.scaffoldService.ApplyLLMRefine(ctx, annotationID, req.Instruction, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"annotation": annotation, "version": version})
}

func (sh *ScaffoldHandler) Approve(c *gin.Context) {
	annotationID, err := parseIDParam(c, "annotation_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		UpdatedText string `json:"updated_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()
	annotation, err := sh.scaffoldService.Approve(ctx, annotationID, req.UpdatedText, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, annotation)
}

func (sh *ScaffoldHandler) Reject(c *gin.Context) {
	annotationID, err := parseIDParam(c, "annotation_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()
	annotation, err := sh.scaffoldService.Reject(ctx, annotationID, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, annotation)
}

func (sh *ScaffoldHandler) Revert(c *gin.Context) {
	annotationID, err := parseIDParam(c, "annotation_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		VersionID string `json:"version_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	versionID, err := parseID(req.VersionID, "version_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()
	annotation, version, err := sh.scaffoldService.Revert(ctx, annotationID, versionID, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"annotation": annotation, "version": version})
}

func (sh *ScaffoldHandler) Coords(c *gin.Context) {
	annotationID, err := parseIDParam(c, "annotation_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	coords, err := sh.scaffoldService.CurrentCoords(c.Request.Context(), annotationID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, coords)
}

func (sh *ScaffoldHandler) History(c *gin.Context) {
	annotationID, err := parseIDParam(c, "annotation_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	entries, err := sh.scaffoldService.History(c.Request.Context(), annotationID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, entries)
}
