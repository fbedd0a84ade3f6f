package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"holidaze/internal/logger"
	"holidaze/internal/models"
	"holidaze/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionKey      = "session"
	requestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// CORS middleware для обработки CORS запросов. An empty origin allows any
// origin but then browsers will not send the session cookie cross-site.
func CORS(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin == "" {
			c.Header("Access-Control-Allow-Origin", "*")
		} else {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestID reuses an incoming X-Request-ID or generates one and puts it on the context logger
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = logger.NewRequestID()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// Timeout bounds the request context; upstream calls inherit the deadline
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Logger middleware для структурированного логирования запросов
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		log := logger.WithContext(c.Request.Context())
		if c.Writer.Status() >= 500 {
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			log.Error("Request completed with error", logFields...)
			return
		}
		log.Debug("Request completed", logFields...)
	}
}

// Recovery middleware для восстановления после паники с детальным логированием
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(requestIDKey),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	})
}

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Session attaches the browser context's Session, issuing a new session id
// cookie when the request has none or an invalid one.
func Session(manager *session.Manager, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookie.Name)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		// refresh the cookie on every request so it expires together with the stored credential
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie.Name, id, int(cookie.MaxAge.Seconds()), "/", "", cookie.Secure, true)

		sess, err := manager.Get(c.Request.Context(), id)
		if err != nil {
			logger.WithContext(c.Request.Context()).Error("Failed to load session", "error", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session store unavailable"})
			return
		}

		profile := ""
		if creds, ok := sess.Credentials(); ok {
			profile = creds.ProfileName
		}
		c.Set(sessionKey, sess)
		c.Request = c.Request.WithContext(logger.ContextWithSession(c.Request.Context(), id, profile))
		c.Next()
	}
}

// SessionFrom returns the Session attached by the Session middleware
func SessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// Credentials returns the logged-in credentials, if any
func Credentials(c *gin.Context) (models.Credentials, bool) {
	sess := SessionFrom(c)
	if sess == nil {
		return models.Credentials{}, false
	}
	return sess.Credentials()
}

// RequireAuth rejects anonymous sessions with a redirect hint to the login page
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Credentials(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "You need to log in first",
				"redirect": "/login",
			})
			return
		}
		c.Next()
	}
}
