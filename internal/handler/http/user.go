package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/techy-Nik/assignment-13/internal/service"
	apperrors "github.com/techy-Nik/assignment-13/pkg/errors"
	"github.com/techy-Nik/assignment-13/pkg/middleware"
	"github.com/techy-Nik/assignment-13/pkg/validator"
)

// UserHandler handles HTTP requests for user profile endpoints.
type UserHandler struct {
	service *service.AuthService
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.AuthService) *UserHandler {
	return &UserHandler{service: svc}
}

// GetProfile handles GET /api/v1/users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.SubjectFromContext(r.Context())
	if userID == "" {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// --- Shared response helpers ---

// detailResponse is the error body for every non-2xx response. A single
// generic message per status keeps failure modes indistinguishable to
// probing clients.
type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, detailResponse{Detail: detail})
}

func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status == http.StatusServiceUnavailable {
			// Do not leak which dependency is down.
			writeDetail(w, appErr.Status, "Service temporarily unavailable")
			return
		}
		writeDetail(w, appErr.Status, appErr.Message)
		return
	}

	status := apperrors.HTTPStatus(err)
	detail := "Internal server error"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		detail = "Resource not found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		detail = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		detail = err.Error()
	case errors.Is(err, apperrors.ErrStoreUnavail):
		detail = "Service temporarily unavailable"
	}

	writeDetail(w, status, detail)
}

func writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeDetail(w, http.StatusBadRequest, valErr.Error())
		return
	}

	writeDetail(w, http.StatusBadRequest, err.Error())
}
