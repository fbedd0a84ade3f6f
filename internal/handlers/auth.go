package handlers

import (
	"errors"
	"io"
	"net/http"

	apperrors "holidaze/internal/errors"
	"holidaze/internal/middleware"
	"holidaze/internal/models"
	"holidaze/internal/session"

	"github.com/gin-gonic/gin"
)

// Auth handlers

// Login - POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	sess := middleware.SessionFrom(c)
	result, err := h.services.Auth.Login(c.Request.Context(), sess, &req)
	if err != nil {
		// неверный пароль: сессии еще нет, редирект не нужен
		var authErr *apperrors.AuthError
		if errors.As(err, &authErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Error()})
			return
		}
		h.respondError(c, err)
		return
	}
	// открытые формы и профиль принадлежали прежнему пользователю
	h.services.Venues.CloseEditors(sess.ID())
	h.services.Profile.Forget(sess.ID())

	c.JSON(http.StatusOK, gin.H{
		"name":         result.Name,
		"email":        result.Email,
		"venueManager": result.VenueManager,
		"avatar":       result.Avatar,
	})
}

// Register - POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var form models.RegisterForm
	if !bindJSON(c, &form) {
		return
	}

	profile, err := h.services.Auth.Register(c.Request.Context(), &form)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"profile": profile, "redirect": loginPath})
}

// Logout - POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	h.endSession(c)
	c.JSON(http.StatusOK, gin.H{"redirect": loginPath})
}

// AuthState - GET /api/auth/state
func (h *Handlers) AuthState(c *gin.Context) {
	c.JSON(http.StatusOK, authState(middleware.SessionFrom(c)))
}

// AuthEvents - GET /api/auth/events
// Server-sent events with the auth state of this session: the current state
// first, then one event per change until the client disconnects.
func (h *Handlers) AuthEvents(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	updates := make(chan struct{}, 1)
	unsubscribe := sess.Subscribe(func(bool) {
		// observers run on the mutating goroutine; coalesce instead of blocking it
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("auth", authState(sess))
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-updates:
			c.SSEvent("auth", authState(sess))
			return true
		}
	})
}

func authState(sess *session.Session) models.AuthStateResponse {
	creds, ok := sess.Credentials()
	if !ok {
		return models.AuthStateResponse{}
	}
	return models.AuthStateResponse{Authenticated: true, Profile: creds.ProfileName}
}
