package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ganliai/insight/pkg/apiserver/handlers"
	"github.com/ganliai/insight/pkg/apiserver/middleware"
	"github.com/ganliai/insight/pkg/auth"
	"github.com/ganliai/insight/pkg/config"
	"github.com/ganliai/insight/pkg/task"
)

type Server struct {
	router  *gin.Engine
	service *task.Service
	tokens  *auth.TokenManager
	cfg     *config.Config
	logger  *zap.Logger
}

func NewServer(service *task.Service, tokens *auth.TokenManager, cfg *config.Config, logger *zap.Logger) *Server {
	s := &Server{
		service: service,
		tokens:  tokens,
		cfg:     cfg,
		logger:  logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.CORS(s.cfg.Server.CORSAllowedOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.Use(middleware.Auth(s.tokens))

		taskHandler := handlers.NewTaskHandler(s.service, s.logger)
		api.POST("/tasks", taskHandler.Create)

		reportHandler := handlers.NewReportHandler(s.service, s.logger)
		api.GET("/reports", reportHandler.List)
		api.GET("/reports/:uuid", reportHandler.Get)
		api.DELETE("/reports/:uuid", reportHandler.Delete)
		api.POST("/candidates/:uuid/hire", reportHandler.MarkHired)

		quotaHandler := handlers.NewQuotaHandler(s.service, s.logger)
		api.GET("/quota", quotaHandler.Remaining)

		teamHandler := handlers.NewTeamHandler(s.service, s.logger)
		api.GET("/team/stats", teamHandler.Stats)
		api.GET("/team/high-risk", teamHandler.HighRisk)
	}

	s.router = r
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
