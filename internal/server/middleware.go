package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"legal-lens/internal/helper"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "req_id"
)

// RequestID reuses the caller's X-Request-ID or makes a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			generated, err := helper.GenerateUUID()
			if err != nil {
				log.Warn().Err(err).Msg("Could not generate request id")
			}
			id = generated
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		event.Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str(requestIDKey, c.GetString(requestIDKey)).
			Msg("HTTP request")
	}
}
