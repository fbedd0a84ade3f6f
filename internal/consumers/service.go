package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"holidaze/internal/config"
	"holidaze/internal/database"
	"holidaze/internal/directory"
	"holidaze/internal/external"
	"holidaze/internal/messaging"
	"holidaze/internal/metrics"
	"holidaze/internal/models"
	"holidaze/internal/repository"
	"holidaze/internal/search"

	"github.com/nats-io/stan.go"
)

const queueGroup = "venue-indexers"

// ConsumerService keeps the venue search index in step with the API: NATS
// events for single venues, periodic full syncs for everything else.
type ConsumerService struct {
	config   *config.Config
	nats     *messaging.NATSClient
	index    *search.VenueIndex
	db       *database.DB
	repos    *repository.Repositories
	fetcher  *directory.Fetcher
	handlers *Handlers
	subs     []stan.Subscription
	guard    directory.Guard
}

func NewConsumerService(cfg *config.Config, m *metrics.Metrics) (*ConsumerService, error) {
	index, err := search.NewVenueIndex(cfg.Elasticsearch)
	if err != nil {
		return nil, fmt.Errorf("failed to create venue index: %w", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	cs := &ConsumerService{
		config:   cfg,
		nats:     natsClient,
		index:    index,
		fetcher:  directory.NewFetcher(external.NewHolidazeClient(cfg.Holidaze, m), m),
		handlers: NewHandlers(index, cfg.RequestTimeout),
	}

	// истекшие сессии чистим только там, где они лежат в Postgres
	if cfg.SessionStore == "postgres" {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			_ = natsClient.Close()
			return nil, err
		}
		cs.db = db
		cs.repos = repository.NewRepositories(db)
	}

	return cs, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	subscriptions := []struct {
		subject string
		handler stan.MsgHandler
	}{
		{models.EventVenueCreated, cs.handlers.HandleVenueChanged},
		{models.EventVenueUpdated, cs.handlers.HandleVenueChanged},
		{models.EventVenueDeleted, cs.handlers.HandleVenueDeleted},
	}

	for _, s := range subscriptions {
		sub, err := cs.nats.SubscribeQueue(s.subject, queueGroup, s.handler)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", s.subject, err)
		}
		cs.subs = append(cs.subs, sub)
	}

	slog.Info("All consumers started successfully", "subjects", len(subscriptions))
	return nil
}

// Reindex runs one full directory sync
func (cs *ConsumerService) Reindex(ctx context.Context) (search.SyncStats, error) {
	return search.Sync(ctx, cs.fetcher, cs.index, cs.config.DirectoryPageSize, &cs.guard)
}

// Sessions returns the session repository, or nil when sessions are not kept in Postgres
func (cs *ConsumerService) Sessions() *repository.SessionRepository {
	if cs.repos == nil {
		return nil
	}
	return cs.repos.Sessions
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	for _, sub := range cs.subs {
		// Close keeps the durable queue position for the next start
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
