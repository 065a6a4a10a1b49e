// internal/middleware/logger.go
package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger journalise chaque requête HTTP en JSON structuré via logrus.
// Les chemins passés en argument (sondes de santé, métriques) sont exclus
// du journal pour ne pas le noyer sous le trafic de supervision.
func Logger(skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		for _, skip := range skipPaths {
			if skip != "" && strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"client_ip":  c.ClientIP(),
			"method":     c.Request.Method,
			"path":       path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"bytes_out":  c.Writer.Size(),
			"user_agent": c.Request.UserAgent(),
			"request_id": c.GetString("request_id"),
			"service":    "combat",
		}
		if userID := c.GetString("user_id"); userID != "" {
			fields["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.Errors()
		}

		entry := logrus.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("Server error")
		case status >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request completed")
		}
	}
}
