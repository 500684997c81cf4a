package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/service"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/httpx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/quizsdk"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/slogx"
)

// writeServiceError maps a service error onto its status code. Internal
// failures are logged here with action and never leak their cause.
func writeServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var cool *service.CooldownError
	if errors.As(err, &cool) {
		w.Header().Set("Retry-After", strconv.Itoa(cool.Wait))
		httpx.WriteJSON(w, http.StatusTooManyRequests, quizsdk.ErrorResponse{
			Error:            quizsdk.ErrorCodeRateLimited,
			ErrorDescription: cool.Error(),
			RetryAfter:       cool.Wait,
		})
		return
	}

	status, code := http.StatusInternalServerError, quizsdk.ErrorCodeServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, code = http.StatusBadRequest, quizsdk.ErrorCodeInvalidRequest
	case errors.Is(err, service.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, quizsdk.ErrorCodeUnauthenticated
	case errors.Is(err, service.ErrUnauthorized):
		status, code = http.StatusForbidden, quizsdk.ErrorCodeForbidden
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, quizsdk.ErrorCodeNotFound
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, quizsdk.ErrorCodeConflict
	case errors.Is(err, service.ErrRateLimited):
		status, code = http.StatusTooManyRequests, quizsdk.ErrorCodeRateLimited
	case errors.Is(err, service.ErrDeliveryFailed):
		status, code = http.StatusBadGateway, quizsdk.ErrorCodeDeliveryFailed
	}

	desc := service.Message(err)
	if status == http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("failed to "+action, slog.Any("error", err))
		desc = "Internal server error"
	}

	httpx.WriteError(w, status, code, desc)
}

// decodeBody reads the JSON request body into dst and answers 400 when it is
// malformed. It reports whether the handler should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, quizsdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return false
	}
	return true
}

// callerID returns the authenticated subject or answers 401.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := httpx.UserID(r.Context())
	if id == "" {
		httpx.WriteError(w, http.StatusUnauthorized, quizsdk.ErrorCodeUnauthenticated, "Authentication required")
		return "", false
	}
	return id, true
}

func isAdmin(r *http.Request) bool {
	return httpx.Role(r.Context()) == string(domain.RoleAdmin)
}
