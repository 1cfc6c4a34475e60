package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ganliai/insight/pkg/apiserver/middleware"
	"github.com/ganliai/insight/pkg/task"
)

type TaskHandler struct {
	service *task.Service
	logger  *zap.Logger
}

func NewTaskHandler(service *task.Service, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

type createTaskRequest struct {
	Name       string `json:"name" binding:"required"`
	Position   string `json:"position"`
	SourceText string `json:"source_text" binding:"required"`
}

type createTaskResponse struct {
	ReportUUID    string `json:"report_uuid"`
	CandidateUUID string `json:"candidate_uuid"`
}

// Create runs the full analysis synchronously; expect 20-60s end to end.
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	result, err := h.service.CreateAnalysisTask(c.Request.Context(), task.CreateTaskInput{
		TenantID:   middleware.TenantID(c),
		UserID:     middleware.UserID(c),
		Name:       req.Name,
		Position:   req.Position,
		SourceText: req.SourceText,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, createTaskResponse{
		ReportUUID:    result.ReportUUID.String(),
		CandidateUUID: result.CandidateUUID.String(),
	})
}
