package handlers

import (
	"errors"
	"net/http"

	"github.com/upb/wellchat-api/services"
	"github.com/upb/wellchat-api/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)

	var writeErr error
	switch status := services.HTTPStatus(err); status {
	case http.StatusBadRequest:
		writeErr = utils.WriteBadRequest(w, err.Error(), details)
	case http.StatusNotFound:
		writeErr = utils.WriteNotFound(w, err.Error())
	case http.StatusUnauthorized:
		writeErr = utils.WriteUnauthorized(w, "")
	case http.StatusForbidden:
		writeErr = utils.WriteForbidden(w, "")
	case http.StatusTooManyRequests:
		writeErr = utils.WriteTooManyRequests(w, err.Error(), details)
	case http.StatusServiceUnavailable:
		logger.Warn("dependency unavailable", zap.Error(err))
		writeErr = utils.WriteServiceUnavailable(w, "")
	default:
		// Internal details stay in the log
		logger.Error("internal server error",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		writeErr = utils.WriteInternalServerError(w, "An internal error occurred")
	}

	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles errors from request decoding and validation
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var details map[string]interface{}
	message := err.Error()
	var verr *utils.ValidationError
	if errors.As(err, &verr) {
		details = verr.Details()
		message = verr.Message
	}

	if err := utils.WriteBadRequest(w, message, details); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
