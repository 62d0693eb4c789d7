package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/job-finder/internal/clients/jsearch"
	"github.com/maxaizer/job-finder/internal/logger"
	"github.com/maxaizer/job-finder/internal/repositories"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func statusOf(err error) int {
	var validationErrs validator.ValidationErrors
	var fetchErr *jsearch.FetchError

	switch {
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.Is(err, repositories.ErrDuplicateJob):
		return http.StatusConflict
	case errors.As(err, &fetchErr):
		switch {
		case fetchErr.Kind == jsearch.KindRequest:
			return http.StatusBadRequest
		case fetchErr.Kind == jsearch.KindTimeout:
			return http.StatusGatewayTimeout
		// missing or revoked API credentials are a server fault, not the caller's
		case fetchErr.StatusCode == http.StatusUnauthorized || fetchErr.StatusCode == http.StatusForbidden:
			return http.StatusBadGateway
		case fetchErr.StatusCode == http.StatusTooManyRequests:
			return http.StatusServiceUnavailable
		default:
			return http.StatusBadGateway
		}
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHTTP).
			Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
