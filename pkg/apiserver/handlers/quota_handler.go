package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ganliai/insight/pkg/apiserver/middleware"
	"github.com/ganliai/insight/pkg/task"
)

type QuotaHandler struct {
	service *task.Service
	logger  *zap.Logger
}

func NewQuotaHandler(service *task.Service, logger *zap.Logger) *QuotaHandler {
	return &QuotaHandler{service: service, logger: logger}
}

func (h *QuotaHandler) Remaining(c *gin.Context) {
	status, err := h.service.RemainingQuota(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
