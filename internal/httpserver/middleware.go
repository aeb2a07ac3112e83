package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dots-marketplace/internal/logger"
	sessionsvc "dots-marketplace/internal/service/session"
)

type ctxKey string

const shopperCtxKey ctxKey = "shopper"

// shopperMiddleware resolves the bearer token to a shopper id. Requests without
// an Authorization header act as the default shopper.
func shopperMiddleware(sessions sessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			writeError(c, http.StatusUnauthorized, "authorization must use the Bearer scheme")
			return
		}
		shopper, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, sessionsvc.ErrInvalidToken) {
				writeError(c, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			logger.FromGin(c).Error("session lookup failed", zap.Error(err))
			writeError(c, http.StatusInternalServerError, "failed to resolve session")
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), shopperCtxKey, shopper))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func shopperFrom(c *gin.Context) string {
	shopper, _ := c.Request.Context().Value(shopperCtxKey).(string)
	return shopper
}
