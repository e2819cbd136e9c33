package httpx

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-ID"
	ridKey          = "rid"
	maxRIDLen       = 64
)

// RequestID tags every request with an id, echoed in X-Request-ID. A caller's
// id is kept only when it is short and made of [A-Za-z0-9._-]; anything else
// is replaced so it can go into log fields as is.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if !validRID(rid) {
			rid = uuid.NewString()
		}
		c.Set(ridKey, rid)
		c.Header(HeaderRequestID, rid)
		c.Next()
	}
}

func validRID(s string) bool {
	if s == "" || len(s) > maxRIDLen {
		return false
	}
	for _, r := range s {
		ok := r == '-' || r == '_' || r == '.' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !ok {
			return false
		}
	}
	return true
}

// RID returns the request id set by RequestID, or "" outside that middleware.
func RID(c *gin.Context) string {
	return c.GetString(ridKey)
}

// Logger writes one access line per request. 5xx responses log at error level.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("rid", RID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("dur", time.Since(start)),
		}
		if status >= 500 {
			log.Error("http", fields...)
			return
		}
		log.Info("http", fields...)
	}
}
