package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ganliai/insight/pkg/apiserver/middleware"
	"github.com/ganliai/insight/pkg/task"
)

type TeamHandler struct {
	service *task.Service
	logger  *zap.Logger
}

func NewTeamHandler(service *task.Service, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{service: service, logger: logger}
}

func (h *TeamHandler) Stats(c *gin.Context) {
	stats, err := h.service.TeamStats(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *TeamHandler) HighRisk(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 5)

	items, err := h.service.HighRiskCandidates(c.Request.Context(), middleware.TenantID(c), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, items)
}
