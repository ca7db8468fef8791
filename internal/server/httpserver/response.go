package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lanzath/authapi/internal/common"
)

const (
	msgUnauthorized = "Unauthorized"
	msgInvalidData  = "The given data was invalid."
	msgServerError  = "Server Error"
	msgUnavailable  = "Service Unavailable"
)

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, messageResponse{Message: msgUnauthorized})
}

func validationFailed(c *gin.Context, fields map[string]string) {
	errs := make(map[string][]string, len(fields))
	for k, v := range fields {
		errs[k] = []string{v}
	}
	c.JSON(http.StatusUnprocessableEntity, validationResponse{Message: msgInvalidData, Errors: errs})
}

// writeError maps err onto a status code and body. Token and credential
// failures all look the same to the caller; infrastructure details are
// logged and never returned.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	var verr *common.ValidationError

	switch {
	case errors.As(err, &verr):
		validationFailed(c, verr.Fields)
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrorUnauthorized):
		abortUnauthorized(c)
	case errors.Is(err, common.ErrorUnavailable):
		s.logger.Error(c.Request.Context(), "storage unavailable", "path", c.Request.URL.Path, "error", err)
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, messageResponse{Message: msgUnavailable})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: msgServerError})
	}
}
