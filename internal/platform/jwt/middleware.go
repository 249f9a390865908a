package jwtmw

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading_backend/internal/api"
)

const (
	ContextUserID = "userID"
	ContextEmail  = "email"
)

// AuthRequired はBearerトークンを検証し、ユーザーIDとメールをコンテキストに設定します。
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing bearer token"})
			return
		}

		// 署名鍵が空ならサーバー設定の不備
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "server misconfigured"})
			return
		}

		claims, err := Parse(secret, tokenStr)
		if errors.Is(err, ErrInvalidSubject) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token subject"})
			return
		}
		if err != nil {
			zap.L().Debug("rejected token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
			return
		}

		id, _ := claims.UserID()
		c.Set(ContextUserID, id)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// UserID はAuthRequiredが設定したユーザーIDを取り出します。
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
