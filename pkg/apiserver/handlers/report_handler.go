package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ganliai/insight/pkg/apiserver/middleware"
	"github.com/ganliai/insight/pkg/model"
	"github.com/ganliai/insight/pkg/store"
	"github.com/ganliai/insight/pkg/task"
)

type ReportHandler struct {
	service *task.Service
	logger  *zap.Logger
}

func NewReportHandler(service *task.Service, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{service: service, logger: logger}
}

func (h *ReportHandler) Get(c *gin.Context) {
	reportUUID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report uuid"})
		return
	}

	detail, err := h.service.GetReport(c.Request.Context(), reportUUID, middleware.TenantID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *ReportHandler) List(c *gin.Context) {
	riskLevel := strings.TrimSpace(c.Query("risk_level"))
	if riskLevel != "" && !isValidRiskLevel(model.RiskLevel(riskLevel)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid risk_level"})
		return
	}

	filter := store.ReportFilter{
		Position:        strings.TrimSpace(c.Query("position")),
		RiskLevel:       model.RiskLevel(riskLevel),
		PersonalityType: strings.TrimSpace(c.Query("personality_type")),
		NameSearch:      strings.TrimSpace(c.Query("search")),
		Page:            parsePage(c.Query("page")),
		Limit:           parseLimit(c.Query("limit"), 50),
	}

	items, total, err := h.service.ListReports(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
	})
}

func (h *ReportHandler) Delete(c *gin.Context) {
	reportUUID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report uuid"})
		return
	}

	if err := h.service.DeleteReport(c.Request.Context(), reportUUID, middleware.TenantID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *ReportHandler) MarkHired(c *gin.Context) {
	candidateUUID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate uuid"})
		return
	}

	candidate, err := h.service.MarkHired(c.Request.Context(), candidateUUID, middleware.TenantID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, candidate)
}

func isValidRiskLevel(level model.RiskLevel) bool {
	switch level {
	case model.RiskLow, model.RiskMedium, model.RiskHigh:
		return true
	default:
		return false
	}
}
