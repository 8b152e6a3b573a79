package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/portfolio-backend/internal/http/handlers/common"
	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/service"
)

// Authenticator: операции AuthService, нужные HTTP слою.
type Authenticator interface {
	Register(ctx context.Context, in service.RegisterInput, meta map[string]string) (*service.AuthResult, error)
	Login(ctx context.Context, in service.LoginInput, meta map[string]string) (*service.AuthResult, error)
	Refresh(ctx context.Context, oldToken string, meta map[string]string) (*service.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// AuthHandler предоставляет HTTP слой для регистрации и входа владельца.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Signup обрабатывает POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}, requestMeta(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, gin.H{
		"user":   result.User,
		"tokens": result.TokenPair,
	})
}

// Signin обрабатывает POST /api/auth/signin.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, requestMeta(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondOK(c, gin.H{
		"user":   result.User,
		"tokens": result.TokenPair,
	})
}

// Refresh обрабатывает POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	tokenPair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, requestMeta(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondOK(c, gin.H{"tokens": tokenPair})
}

// Signout обрабатывает POST /api/auth/signout.
func (h *AuthHandler) Signout(c *gin.Context) {
	var req refreshRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, apperror.Validation("refresh_token обязателен", "refresh_token"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondNoContent(c)
}

func requestMeta(c *gin.Context) map[string]string {
	return map[string]string{
		"user_agent": c.GetHeader("User-Agent"),
		"ip":         c.ClientIP(),
	}
}
