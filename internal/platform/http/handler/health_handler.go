// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Health は /healthz の生存確認です。依存先は見ません。
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Check is a readiness probe such as a database or Redis ping.
type Check func(ctx context.Context) error

// Ready は /readyz 用のハンドラーを返します。
// すべてのチェックが成功すれば200、1つでも失敗すれば503で、失敗したチェック名を返します。
func Ready(checks map[string]Check, timeout time.Duration) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		result := make(map[string]string, len(names))
		ok := true
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				zap.L().Warn("readiness check failed", zap.String("check", name), zap.Error(err))
				result[name] = err.Error()
				ok = false
				continue
			}
			result[name] = "ok"
		}

		if !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": result})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": result})
	}
}
