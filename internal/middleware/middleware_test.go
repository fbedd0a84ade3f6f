package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"holidaze/internal/logger"
	"holidaze/internal/models"
	"holidaze/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "holidaze_session"

func newEngine(manager *session.Manager, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(Session(manager, CookieConfig{Name: testCookie, MaxAge: time.Hour}))
	r.GET("/", handlers...)
	return r
}

func TestSessionIssuesCookie(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStore(), nil, "test", nil)
	r := newEngine(manager, func(c *gin.Context) {
		require.NotNil(t, SessionFrom(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 1, manager.Len())
}

func TestSessionReusesValidCookie(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStore(), nil, "test", nil)
	var seen string
	r := newEngine(manager, func(c *gin.Context) {
		seen = SessionFrom(c).ID()
	})

	id := "7b1c7a52-5d2b-4a0e-9f2e-3f4b3c2d1e0f"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: id})
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, id, seen)
}

func TestSessionReplacesForgedCookie(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStore(), nil, "test", nil)
	var seen string
	r := newEngine(manager, func(c *gin.Context) {
		seen = SessionFrom(c).ID()
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "../../etc/passwd"})
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEqual(t, "../../etc/passwd", seen)
	assert.Len(t, seen, 36)
}

func TestRequireAuth(t *testing.T) {
	store := session.NewMemoryStore()
	manager := session.NewManager(store, nil, "test", nil)
	r := newEngine(manager, RequireAuth(), func(c *gin.Context) {
		creds, ok := Credentials(c)
		require.True(t, ok)
		c.String(http.StatusOK, creds.ProfileName)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/login"`)

	id := "0f8e2c1a-9b3d-4e5f-a6b7-c8d9e0f1a2b3"
	require.NoError(t, store.Save(t.Context(), id, models.Credentials{AccessToken: "tok", ProfileName: "mona"}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: id})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mona", w.Body.String())
}

func TestRequestIDPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	var fromCtx string
	r.GET("/", func(c *gin.Context) {
		fromCtx = logger.RequestIDFromContext(c.Request.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", fromCtx)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestRecoveryReturnsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestTimeoutSetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(time.Second))
	var hasDeadline bool
	r.GET("/", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, hasDeadline)
}
