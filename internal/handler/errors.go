package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/device-lending/backend/internal/domain"
	"github.com/pkordes/device-lending/backend/internal/handler/gen"
)

// Error codes carried in ErrorDetail.Code.
const (
	codeNotFound          = "not_found"
	codeDeviceUnavailable = "device_unavailable"
	codeValidation        = "validation_error"
	codeTooLarge          = "request_too_large"
	codeInternal          = "internal_error"
)

// notFoundBody returns an ErrorResponse naming which lookup failed.
func notFoundBody(err error) gen.NotFoundJSONResponse {
	message := "device not found"
	if errors.Is(err, domain.ErrUserNotFound) {
		message = "user not found"
	}
	return gen.NotFoundJSONResponse{Error: gen.ErrorDetail{Code: codeNotFound, Message: message}}
}

// badRequestBody maps a domain.ErrUnavailable or domain.ErrValidation error
// to an ErrorResponse. ok is false for any other error, which the caller
// should pass on as a 500.
func badRequestBody(err error) (body gen.BadRequestJSONResponse, ok bool) {
	switch {
	case errors.Is(err, domain.ErrUnavailable):
		return gen.BadRequestJSONResponse{Error: gen.ErrorDetail{
			Code:    codeDeviceUnavailable,
			Message: reason(err, domain.ErrUnavailable),
		}}, true
	case errors.Is(err, domain.ErrValidation):
		return gen.BadRequestJSONResponse{Error: gen.ErrorDetail{
			Code:    codeValidation,
			Message: reason(err, domain.ErrValidation),
		}}, true
	}
	return gen.BadRequestJSONResponse{}, false
}

// reason extracts the human-readable part that follows a sentinel in a
// wrapped error chain.
// e.g. "service.DeviceService.Book: device unavailable: device is already booked"
// → "device is already booked"
func reason(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}

// RequestErrorHandler answers requests the generated bindings reject before
// they reach a handler (malformed path/query params or JSON bodies) with a
// JSON 400 instead of the default text/plain one. A body cut off by
// http.MaxBytesReader gets 413, matching the Content-Length check in
// middleware.NewMaxBodySizeHandler.
func RequestErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, gen.ErrorDetail{Code: codeTooLarge, Message: "request body too large"})
		return
	}
	writeError(w, http.StatusBadRequest, gen.ErrorDetail{Code: codeValidation, Message: err.Error()})
}

// ResponseErrorHandler logs an unexpected handler error and answers with a
// JSON 500 that does not leak the error text.
func ResponseErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, gen.ErrorDetail{Code: codeInternal, Message: "internal server error"})
}

func writeError(w http.ResponseWriter, status int, detail gen.ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(gen.ErrorResponse{Error: detail})
}

// StrictOptions returns the options main.go passes to gen.NewStrictHandlerWithOptions.
func StrictOptions() gen.StrictHTTPServerOptions {
	return gen.StrictHTTPServerOptions{
		RequestErrorHandlerFunc:  RequestErrorHandler,
		ResponseErrorHandlerFunc: ResponseErrorHandler,
	}
}
