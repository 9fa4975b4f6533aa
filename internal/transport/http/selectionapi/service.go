package selectionapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MianAhsan577/waapi-server/internal/domain/selection"
	"github.com/MianAhsan577/waapi-server/internal/domain/store"
	"github.com/MianAhsan577/waapi-server/internal/platform/errors"
	"github.com/MianAhsan577/waapi-server/internal/platform/logging"
	httptransport "github.com/MianAhsan577/waapi-server/internal/transport/http"
)

// Service exposes the public widget endpoints.
type Service struct {
	selections *selection.Service
	store      store.Store
	logger     *logging.Logger
}

// NewService builds the public API transport service.
func NewService(selections *selection.Service, st store.Store, logger *logging.Logger) (*Service, error) {
	if selections == nil || st == nil {
		return nil, errors.New(errors.KindConfig, "selectionapi.new", "selection service and store are required")
	}
	return &Service{selections: selections, store: st, logger: logger}, nil
}

// Register mounts the public routes on the api group.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.POST("/log-selection", s.handleLogSelection)
	router.GET("/health", s.handleHealth)

	if s.logger != nil {
		s.logger.InfoTag("HTTP", "public api routes registered")
	}
	return nil
}

type logSelectionRequest struct {
	City          string            `json:"city"`
	Service       string            `json:"service"`
	SupportNumber string            `json:"supportNumber"`
	UTMParams     map[string]string `json:"utmParams"`
	Timestamp     *time.Time        `json:"timestamp"`
}

func (s *Service) handleLogSelection(c *gin.Context) {
	var req logSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, errors.Wrap(errors.KindValidation, "selectionapi.log", "invalid request body", err))
		return
	}

	in := selection.Input{
		City:          req.City,
		Service:       req.Service,
		SupportNumber: req.SupportNumber,
		UTMParams:     req.UTMParams,
	}
	if req.Timestamp != nil {
		in.Timestamp = *req.Timestamp
	}

	record, err := s.selections.LogSelection(c.Request.Context(), in)
	if err != nil {
		httptransport.RespondError(c, err)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, "Selection logged successfully", gin.H{
		"id": record.ID(),
	})
}

func (s *Service) handleHealth(c *gin.Context) {
	storage := "in-memory"
	if s.store.IsRemoteBacked() {
		storage = "remote"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"storage": storage,
	})
}
