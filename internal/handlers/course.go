package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(baseLog *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{log: baseLog.With("handler", "CourseHandler"), courseService: courseService}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return parseID(c.Param(name), name)
}

func parseID(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func (ch *CourseHandler) Create(c *gin.Context) {
	var req struct {
		Name             string `json:"name"`
		Term             string `json:"term"`
		PerusallCourseID string `json:"perusall_course_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	course, err := ch.courseService.Create(c.Request.Context(), req.Name, req.Term, req.PerusallCourseID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, course)
}

func (ch *CourseHandler) List(c *gin.Context) {
	courses, err := ch.courseService.ListOwn(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, courses)
}

func (ch *CourseHandler) Get(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	course, err := ch.courseService.GetByID(c.Request.Context(), courseID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, course)
}

func (ch *CourseHandler) LinkPerusall(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		PerusallCourseID string `json:"perusall_course_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	course, err := ch.courseService.LinkPerusallCourse(c.Request.Context(), courseID, req.PerusallCourseID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, course)
}

func (ch *CourseHandler) CreateReading(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		Title              string `json:"title"`
		FileName           string `json:"file_name"`
		PerusallDocumentID string `json:"perusall_document_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	reading, err := ch.courseService.CreateReading(c.Request.Context(), courseID, req.Title, req.FileName, req.PerusallDocumentID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, reading)
}

func (ch *CourseHandler) ListReadings(c *gin.Context) {
	courseID, err := parseIDParam(c, "course_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	readings, err := ch.courseService.ListReadings(c.Request.Context(), courseID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, readings)
}
