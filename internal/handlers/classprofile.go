package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/requestdata"
	"github.com/scaffoldlab/scaffold-backend/internal/services"
	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

type ClassProfileHandler struct {
	log            *logger.Logger
	profileService services.ClassProfileService
	basicInfo      services.CourseBasicInfoService
}

func NewClassProfileHandler(baseLog *logger.Logger, profileService services.ClassProfileService, basicInfo services.CourseBasicInfoService) *ClassProfileHandler {
	return &ClassProfileHandler{
		log:            baseLog.With("handler", "ClassProfileHandler"),
		profileService: profileService,
		basicInfo:      basicInfo,
	}
}

func actorFrom(ctx context.Context) string {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return "user"
	}
	return rd.UserID.String()
}

func (ph *ClassProfileHandler) Generate(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		ClassInput *types.ClassInput `json:"class_input"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()
	profile, version, view, err := ph.profileService.CreateFromGeneration(ctx, courseID, req.ClassInput, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"profile": profile, "version": version, "view": view})
}

func (ph *ClassProfileHandler) GetView(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	view, err := ph.profileService.GetView(c.Request.Context(), courseID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (ph *ClassProfileHandler) ManualEdit(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		Content  string                 `json:"content"`
		Metadata *types.ProfileMetadata `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()
	profile, version, view, err := ph.profileService.ApplyManualEdit(ctx, courseID, req.Content, req.Metadata, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"profile": profile, "version": version, "view": view})
}

func (ph *ClassProfileHandler) Refine(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		Instruction string            `json:"instruction"`
		ClassInput  *types.ClassInput `json:"class_input"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Instruction == "" && req.ClassInput == nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errMissingRefineInput)
		return
	}
	ctx := c.Request.Context()
	profile, version, view, err := ph.profileService.ApplyLLMRefine(ctx, courseID, req.Instruction, req.ClassInput, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"profile": profile, "version": version, "view": view})
}

func (ph *ClassProfileHandler) Approve(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
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
	profile, view, err := ph.profileService.Approve(ctx, courseID, req.UpdatedText, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"profile": profile, "view": view})
}

func (ph *ClassProfileHandler) Revert(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		VersionID uuid.UUID `json:"version_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()
	profile, version, view, err := ph.profileService.Revert(ctx, courseID, req.VersionID, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"profile": profile, "version": version, "view": view})
}

func (ph *ClassProfileHandler) History(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	entries, err := ph.profileService.History(c.Request.Context(), courseID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, entries)
}

func (ph *ClassProfileHandler) GetBasicInfo(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	input, err := ph.basicInfo.GetClassInput(c.Request.Context(), courseID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"class_input": input})
}

func (ph *ClassProfileHandler) UpsertBasicInfo(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		ClassInput *types.ClassInput `json:"class_input"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ClassInput == nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errMissingClassInput)
		return
	}
	ctx := c.Request.Context()
	info, version, err := ph.basicInfo.Upsert(ctx, courseID, req.ClassInput, types.ChangeTypeManualEdit, actorFrom(ctx))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"basic_info": info, "version": version})
}

func (ph *ClassProfileHandler) BasicInfoHistory(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	entries, err := ph.basicInfo.History(c.Request.Context(), courseID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, entries)
}
