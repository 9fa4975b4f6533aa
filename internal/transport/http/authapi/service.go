package authapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MianAhsan577/waapi-server/internal/domain/auth"
	"github.com/MianAhsan577/waapi-server/internal/platform/errors"
	"github.com/MianAhsan577/waapi-server/internal/platform/logging"
	httptransport "github.com/MianAhsan577/waapi-server/internal/transport/http"
)

// Service exposes the credential endpoints.
type Service struct {
	auth   *auth.Service
	logger *logging.Logger
}

// NewService builds the auth transport service.
func NewService(authSvc *auth.Service, logger *logging.Logger) (*Service, error) {
	if authSvc == nil {
		return nil, errors.New(errors.KindConfig, "authapi.new", "auth service is required")
	}
	return &Service{auth: authSvc, logger: logger}, nil
}

// Register mounts the credential routes. Register and login are public;
// verify sits behind the bearer middleware supplied by the caller.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup, authMiddleware gin.HandlerFunc) error {
	router.POST("/register", s.handleRegister)
	router.POST("/login", s.handleLogin)

	verify := router.Group("")
	if authMiddleware != nil {
		verify.Use(authMiddleware)
	}
	verify.GET("/verify", s.handleVerify)

	if s.logger != nil {
		s.logger.InfoTag("HTTP", "auth routes registered")
	}
	return nil
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Service) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, errors.Wrap(errors.KindValidation, "authapi.register", "invalid request body", err))
		return
	}

	token, identity, err := s.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		httptransport.RespondError(c, err)
		return
	}

	httptransport.RespondSuccess(c, http.StatusCreated, "Admin user registered", gin.H{
		"token": token,
		"user":  identity,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, errors.Wrap(errors.KindValidation, "authapi.login", "invalid request body", err))
		return
	}

	token, identity, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httptransport.RespondError(c, err)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  identity,
	})
}

func (s *Service) handleVerify(c *gin.Context) {
	identity, ok := httptransport.IdentityFrom(c)
	if !ok {
		httptransport.RespondError(c, errors.New(errors.KindAuth, "authapi.verify", "no verified identity"))
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, "", gin.H{
		"user": identity,
	})
}
