package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	apperrors "holidaze/internal/errors"
	"holidaze/internal/logger"
	"holidaze/internal/middleware"
	"holidaze/internal/service"

	"github.com/gin-gonic/gin"
)

const loginPath = "/login"

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		services: services,
	}
}

// respondError maps a service error onto a status code and a user-facing message
func (h *Handlers) respondError(c *gin.Context, err error) {
	log := logger.WithContext(c.Request.Context())

	var (
		authErr       *apperrors.AuthError
		validationErr *apperrors.ValidationError
		rejection     *apperrors.APIRejection
		networkErr    *apperrors.NetworkError
	)

	switch {
	case errors.As(err, &authErr):
		// токен истек: сессию сбрасываем, клиент уходит на логин
		h.endSession(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": apperrors.Message(err), "redirect": loginPath})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": apperrors.Message(err)})
	case errors.As(err, &rejection):
		c.JSON(rejectionStatus(rejection), gin.H{"error": rejection.Message})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": apperrors.Message(err)})
	case errors.As(err, &networkErr):
		log.Error("Upstream request failed", "op", networkErr.Op, "error", networkErr.Err)
		c.JSON(http.StatusBadGateway, gin.H{"error": apperrors.Message(err)})
	case errors.Is(err, context.DeadlineExceeded):
		log.Error("Request timed out", "error", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "The booking service took too long to answer"})
	default:
		log.Error("Request failed", "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.Message(err)})
	}
}

// rejectionStatus keeps the upstream 4xx except 401, which at this point can
// only be an API key failure and is not the caller's fault.
func rejectionStatus(r *apperrors.APIRejection) int {
	switch {
	case r.Status >= 500:
		return http.StatusBadGateway
	case r.Status < 400 || r.Status == http.StatusUnauthorized:
		return http.StatusUnprocessableEntity
	default:
		return r.Status
	}
}

// endSession logs the session out and drops the per-session state
func (h *Handlers) endSession(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return
	}
	if err := h.services.Auth.Logout(c.Request.Context(), sess); err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to clear session", "error", err)
	}
	h.services.Venues.CloseEditors(sess.ID())
	h.services.Profile.Forget(sess.ID())
}

// bindJSON binds the body and answers 400 on malformed input
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
