package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"holidaze/internal/cache"
	"holidaze/internal/config"
	"holidaze/internal/database"
	"holidaze/internal/external"
	"holidaze/internal/handlers"
	"holidaze/internal/messaging"
	"holidaze/internal/metrics"
	"holidaze/internal/middleware"
	"holidaze/internal/repository"
	"holidaze/internal/search"
	"holidaze/internal/service"
	"holidaze/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/stan.go"
)

const (
	localOrigin   = "local"
	pruneInterval = 10 * time.Minute
)

// Server представляет HTTP сервер BFF
type Server struct {
	router   *gin.Engine
	config   *config.Config
	metrics  *metrics.Metrics
	db       *database.DB
	valkey   *cache.ValkeyClient
	nats     *messaging.NATSClient
	index    *search.VenueIndex
	sessions *session.Manager
	services *service.Services
	subs     []stan.Subscription
	done     chan struct{}
}

// NewServer создает новый экземпляр сервера. Optional backends (NATS,
// Elasticsearch) are skipped when disabled; the session store must connect.
func NewServer(cfg *config.Config) (*Server, error) {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	s := &Server{config: cfg, done: make(chan struct{})}
	if cfg.MetricsEnabled {
		s.metrics = metrics.New()
	}

	store, err := s.sessionStore()
	if err != nil {
		_ = s.Cleanup()
		return nil, err
	}

	var publisher messaging.Publisher
	origin := localOrigin
	if cfg.NATSEnabled {
		natsClient, err := messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			_ = s.Cleanup()
			return nil, err
		}
		s.nats = natsClient
		publisher = natsClient
		origin = natsClient.ClientID()
	}

	s.sessions = session.NewManager(store, publisher, origin, s.metrics)
	if s.nats != nil {
		sub, err := session.Listen(s.nats, s.sessions)
		if err != nil {
			_ = s.Cleanup()
			return nil, fmt.Errorf("failed to subscribe to session events: %w", err)
		}
		s.subs = append(s.subs, sub)
	}

	deps := service.Deps{
		API:          external.NewHolidazeClient(cfg.Holidaze, s.metrics),
		Publisher:    publisher,
		Metrics:      s.metrics,
		PageSize:     cfg.DirectoryPageSize,
		HomePageSize: cfg.HomePageSize,
	}
	if cfg.SearchEnabled {
		index, err := search.NewVenueIndex(cfg.Elasticsearch)
		if err != nil {
			// поиск деградирует до фильтрации каталога
			slog.Warn("Venue index unavailable, search filters the directory", "error", err)
		} else {
			s.index = index
			deps.Index = index
		}
	}
	s.services = service.NewServices(deps)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSOrigin))
	s.router = router

	s.setupRoutes()
	return s, nil
}

// sessionStore connects the configured credential backend
func (s *Server) sessionStore() (session.Store, error) {
	switch s.config.SessionStore {
	case "valkey":
		valkeyClient, err := cache.NewValkeyClient(s.config.Valkey)
		if err != nil {
			return nil, err
		}
		s.valkey = valkeyClient
		return session.NewValkeyStore(valkeyClient, s.config.SessionTTL), nil

	case "postgres":
		db, err := database.Connect(s.config.Database)
		if err != nil {
			return nil, err
		}
		s.db = db
		if err := db.RunMigrations(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		repos := repository.NewRepositories(db)
		return session.NewPostgresStore(repos.Sessions, s.config.SessionTTL), nil

	case "memory", "":
		slog.Warn("Sessions are kept in memory and are lost on restart")
		return session.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown session store %q", s.config.SessionStore)
	}
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)
	sessionMW := middleware.Session(s.sessions, middleware.CookieConfig{
		Name:   s.config.SessionCookie,
		MaxAge: s.config.SessionTTL,
		Secure: s.config.CookieSecure,
	})

	// SSE живет дольше любого таймаута запроса
	stream := s.router.Group("/api", sessionMW)
	stream.GET("/auth/events", h.AuthEvents)

	api := s.router.Group("/api", sessionMW, middleware.Timeout(s.config.RequestTimeout))
	{
		// Auth endpoints
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Login)
			auth.POST("/register", h.Register)
			auth.POST("/logout", h.Logout)
			auth.GET("/state", h.AuthState)
		}

		// Public venue endpoints
		venues := api.Group("/venues")
		{
			venues.GET("", h.ListVenues)
			venues.GET("/search", h.SearchVenues)
			venues.GET("/:id", h.GetVenue)
			venues.GET("/:id/calendar", h.VenueCalendar)
			venues.POST("/:id/quote", h.QuoteStay)
		}

		// Endpoints that need a logged-in profile
		authed := api.Group("", middleware.RequireAuth())
		{
			authed.POST("/venues", h.CreateVenue)
			authed.PUT("/venues/:id", h.UpdateVenue)
			authed.DELETE("/venues/:id", h.DeleteVenue)
			authed.GET("/venues/:id/editor", h.VenueEditor)

			authed.POST("/bookings", h.CreateBooking)
			authed.DELETE("/bookings/:id", h.DeleteBooking)

			authed.GET("/profile", h.GetProfile)
			authed.PUT("/profile", h.UpdateProfile)
		}
	}

	s.router.GET("/health", s.healthCheck)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}

	if s.db != nil {
		check := s.db.HealthCheck(ctx)
		checks["database"] = check
		if check.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
	}
	if s.valkey != nil {
		if err := s.valkey.Ping(ctx); err != nil {
			checks["valkey"] = gin.H{"status": "unhealthy", "error": err.Error()}
			status = http.StatusServiceUnavailable
		} else {
			checks["valkey"] = gin.H{"status": "healthy"}
		}
	}
	if s.index != nil {
		// search falls back to the directory, so a failing index only degrades
		if err := s.index.HealthCheck(ctx); err != nil {
			checks["elasticsearch"] = gin.H{"status": "degraded", "error": err.Error()}
		} else {
			checks["elasticsearch"] = gin.H{"status": "healthy"}
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":   overall,
		"service":  "holidaze-bff",
		"version":  "1.0.0",
		"sessions": s.sessions.Len(),
		"checks":   checks,
	})
}

// StartBackground drops idle in-memory sessions until Cleanup is called
func (s *Server) StartBackground() {
	ticker := time.NewTicker(pruneInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.sessions.Prune(s.config.SessionTTL); n > 0 {
					slog.Info("Pruned idle sessions", "count", n)
				}
				if s.db != nil {
					s.db.LogPoolPressure()
				}
			case <-s.done:
				return
			}
		}
	}()
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
	}

	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
