package adminapi

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MianAhsan577/waapi-server/internal/domain/admin"
	"github.com/MianAhsan577/waapi-server/internal/domain/broadcast"
	"github.com/MianAhsan577/waapi-server/internal/platform/errors"
	"github.com/MianAhsan577/waapi-server/internal/platform/logging"
	httptransport "github.com/MianAhsan577/waapi-server/internal/transport/http"
)

// Service exposes the dashboard endpoints. All routes assume the bearer
// middleware already ran on the group they are registered on.
type Service struct {
	admin       *admin.Service
	broadcaster *broadcast.Broadcaster
	logger      *logging.Logger
}

// NewService builds the admin transport service.
func NewService(adminSvc *admin.Service, broadcaster *broadcast.Broadcaster, logger *logging.Logger) (*Service, error) {
	if adminSvc == nil {
		return nil, errors.New(errors.KindConfig, "adminapi.new", "admin service is required")
	}
	return &Service{admin: adminSvc, broadcaster: broadcaster, logger: logger}, nil
}

// Register mounts the dashboard routes.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.GET("/logs", s.handleListLogs)
	router.GET("/logs/all", s.handleListAll)
	router.GET("/stats", s.handleStats)
	router.POST("/logs/limit", s.handleLimitLogs)
	router.POST("/logs/reset", s.handleReset)
	router.POST("/logs/delete-selected", s.handleDeleteSelected)
	if s.broadcaster != nil {
		router.GET("/logs/sse", s.handleSSE)
	}

	if s.logger != nil {
		s.logger.InfoTag("HTTP", "admin routes registered")
	}
	return nil
}

func (s *Service) handleListLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(admin.DefaultPageSize)))

	filters := admin.Filters{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		City:      c.Query("city"),
		Service:   c.Query("service"),
		StartDate: parseDate(c.Query("startDate")),
		EndDate:   parseDate(c.Query("endDate")),
	}

	result, err := s.admin.ListLogs(c.Request.Context(), filters, page, pageSize)
	if err != nil {
		httptransport.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        result.Records,
		"totalCount":  result.TotalCount,
		"totalPages":  result.TotalPages,
		"currentPage": result.CurrentPage,
	})
}

func (s *Service) handleListAll(c *gin.Context) {
	logs, err := s.admin.ListAll(c.Request.Context())
	if err != nil {
		httptransport.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"count":   len(logs),
	})
}

func (s *Service) handleStats(c *gin.Context) {
	stats, err := s.admin.ComputeStats(c.Request.Context(), c.Query("period"))
	if err != nil {
		httptransport.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"totalInteractions": stats.TotalInteractions,
		"uniqueUsers":       stats.UniqueUsers,
		"byCity":            stats.ByCity,
		"byService":         stats.ByService,
		"bySource":          stats.BySource,
		"byStatus":          stats.ByStatus,
		"timeData":          stats.TimeData,
	})
}

func (s *Service) handleLimitLogs(c *gin.Context) {
	max, err := strconv.Atoi(c.DefaultQuery("max", "7"))
	if err != nil {
		httptransport.RespondError(c, errors.New(errors.KindValidation, "adminapi.limit", "max must be an integer"))
		return
	}

	if err := s.admin.LimitLogs(c.Request.Context(), max); err != nil {
		httptransport.RespondError(c, err)
		return
	}

	logs, err := s.admin.ListAll(c.Request.Context())
	if err != nil {
		httptransport.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(logs),
	})
}

func (s *Service) handleReset(c *gin.Context) {
	if err := s.admin.Reset(c.Request.Context()); err != nil {
		httptransport.RespondError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, "Log collections cleared", nil)
}

type deleteSelectedRequest struct {
	LogIDs []string `json:"logIds"`
}

func (s *Service) handleDeleteSelected(c *gin.Context) {
	var req deleteSelectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, errors.Wrap(errors.KindValidation, "adminapi.delete", "logIds must be a list of ids", err))
		return
	}

	result, err := s.admin.DeleteSelected(c.Request.Context(), req.LogIDs)
	if err != nil {
		httptransport.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"deletedCount":   result.DeletedCount,
		"remainingCount": result.RemainingCount,
	})
}

// handleSSE upgrades the request to a server-sent event stream and relays
// broadcaster events until the client goes away.
func (s *Service) handleSSE(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	sub := s.broadcaster.Subscribe(c.Query("city"), c.Query("service"))
	defer s.broadcaster.Unsubscribe(sub)

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case <-sub.Done():
			return false
		case evt := <-sub.Events():
			c.SSEvent(evt.Name, evt.Data)
			return true
		}
	})
}

// parseDate accepts the dashboard's date-picker format or a full RFC3339
// timestamp. Anything else reads as no bound.
func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts
	}
	return time.Time{}
}
