// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading_backend/internal/api"
	"trading_backend/internal/feature/auth/transport/http/dto"
	"trading_backend/internal/feature/auth/usecase"
)

// AuthUsecase は認証操作のユースケースです。
type AuthUsecase interface {
	Signup(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthHandler struct {
	auth AuthUsecase
}

func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup はユーザー登録を処理します。
// 入力不正は400、メール重複は409、成功時は201を返します。
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	err := h.auth.Signup(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, api.MessageResponse{Message: "ok"})
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		zap.L().Error("signup failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "signup failed"})
	}
}

// Login はログインを処理し、成功時にJWTを返します。
// 認証失敗の理由は公開しません。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, usecase.ErrInvalidCredentials) {
			zap.L().Error("login failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		}
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: usecase.ErrInvalidCredentials.Error()})
		return
	}
	c.JSON(http.StatusOK, api.TokenResponse{Token: token})
}
