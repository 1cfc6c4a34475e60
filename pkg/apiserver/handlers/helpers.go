package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ganliai/insight/pkg/llm"
	"github.com/ganliai/insight/pkg/quota"
	"github.com/ganliai/insight/pkg/store"
	"github.com/ganliai/insight/pkg/task"
)

func parseLimit(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parsePage(value string) int {
	if value == "" {
		return 1
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return 1
	}
	return parsed
}

// writeError maps the domain taxonomy onto HTTP. The three user-actionable
// cases stay distinguishable: invalid input, no quota, AI failure.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, task.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, quota.ErrQuotaExceeded):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":  "分析次数不足，请升级套餐或充值",
			"reason": "quota_exceeded",
		})
	case errors.Is(err, llm.ErrAnalysisUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "AI分析失败，请稍后重试",
			"reason": "analysis_unavailable",
		})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
