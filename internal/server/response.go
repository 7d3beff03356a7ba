package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"legal-lens/internal/apierr"
)

type errorBody struct {
	Error string      `json:"error"`
	Code  apierr.Kind `json:"code,omitempty"`
}

// RespondError writes {"error": msg}. Only *apierr.Error messages reach the
// client; anything else becomes a generic 500.
func RespondError(c *gin.Context, err error) {
	if e, ok := apierr.As(err); ok {
		if e.Cause != nil {
			log.Warn().Err(e.Cause).Str("code", string(e.Kind)).Str(requestIDKey, c.GetString(requestIDKey)).Msg("Request failed")
		}
		c.AbortWithStatusJSON(e.Status, errorBody{Error: e.Message, Code: e.Kind})
		return
	}
	log.Error().Err(err).Str(requestIDKey, c.GetString(requestIDKey)).Msg("Unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "Internal server error"})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
