package cache

import (
	"context"
	"fmt"
	"time"

	"holidaze/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	fieldToken   = "accessToken"
	fieldProfile = "name"
)

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// ValkeyClient keeps per-session credentials in a Valkey hash
type ValkeyClient struct {
	client    *redis.Client
	keyPrefix string
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "holidaze:session:"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:    rdb,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (v *ValkeyClient) key(sessionID string) string {
	return v.keyPrefix + sessionID
}

// GetCredentials returns ok=false when the session holds nothing
func (v *ValkeyClient) GetCredentials(ctx context.Context, sessionID string) (models.Credentials, bool, error) {
	fields, err := v.client.HGetAll(ctx, v.key(sessionID)).Result()
	if err != nil {
		return models.Credentials{}, false, fmt.Errorf("cache lookup error: %w", err)
	}

	creds := models.Credentials{
		AccessToken: fields[fieldToken],
		ProfileName: fields[fieldProfile],
	}
	if !creds.Valid() {
		return models.Credentials{}, false, nil
	}
	return creds, true, nil
}

// SaveCredentials writes both fields atomically and (re)arms the expiry
func (v *ValkeyClient) SaveCredentials(ctx context.Context, sessionID string, creds models.Credentials, ttl time.Duration) error {
	key := v.key(sessionID)

	_, err := v.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldToken, creds.AccessToken, fieldProfile, creds.ProfileName)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session credentials: %w", err)
	}
	return nil
}

// ClearCredentials removes token and profile name together
func (v *ValkeyClient) ClearCredentials(ctx context.Context, sessionID string) error {
	if err := v.client.Del(ctx, v.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session credentials: %w", err)
	}
	return nil
}

func (v *ValkeyClient) Ping(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
