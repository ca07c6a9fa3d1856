package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/onurcolak/dispatch-service/environments"
	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/pkg/logger"
)

type Client struct {
	client valkey.Client
}

const (
	deliveryKeyPrefix = "delivery:"
	deliveryTTL       = 24 * time.Hour
	jobDoneKeyPrefix  = "dispatch_job:done:"
)

func NewRedisClient(cfg environments.RedisConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis (via Valkey client)")

	return &Client{client: client}, nil
}

// Valkey exposes the underlying client for the queue backend.
func (c *Client) Valkey() valkey.Client {
	return c.client
}

// CacheDelivery keeps the outcome of a job for a day, keyed by job id.
func (c *Client) CacheDelivery(ctx context.Context, delivery domain.CachedDelivery) error {
	data, err := json.Marshal(delivery)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	key := deliveryKeyPrefix + delivery.JobID

	err = c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(data)).Ex(deliveryTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to cache delivery: %w", err)
	}

	logger.Debugf("Cached delivery %s (%s) in Redis", delivery.JobID, delivery.Status)

	return nil
}

func (c *Client) GetAllCachedDeliveries(ctx context.Context) (map[string]*domain.CachedDelivery, error) {
	pattern := deliveryKeyPrefix + "*"

	var keys []string
	var cursor uint64
	for {
		result := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build())
		if result.Error() != nil {
			return nil, fmt.Errorf("failed to scan cache keys: %w", result.Error())
		}

		scanResult, err := result.AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to parse scan result: %w", err)
		}

		keys = append(keys, scanResult.Elements...)
		cursor = scanResult.Cursor

		if cursor == 0 {
			break
		}
	}

	result := make(map[string]*domain.CachedDelivery, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	values, err := c.client.Do(ctx, c.client.B().Mget().Key(keys...).Build()).ToArray()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached deliveries: %w", err)
	}

	for i, value := range values {
		data, err := value.ToString()
		if err != nil {
			// expired between SCAN and MGET
			continue
		}

		var delivery domain.CachedDelivery
		if err := json.Unmarshal([]byte(data), &delivery); err != nil {
			logger.Warnf("failed to decode cached delivery %q: %v", keys[i], err)
			continue
		}

		result[delivery.JobID] = &delivery
	}

	return result, nil
}

// IsJobDone reports whether a job id was already fully processed.
func (c *Client) IsJobDone(ctx context.Context, jobID string) (bool, error) {
	n, err := c.client.Do(ctx, c.client.B().Exists().Key(jobDoneKeyPrefix+jobID).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to check job marker: %w", err)
	}
	return n > 0, nil
}

// MarkJobDone records that a job's delivery log entry was written.
func (c *Client) MarkJobDone(ctx context.Context, jobID string, ttl time.Duration) error {
	cmd := c.client.B().Set().Key(jobDoneKeyPrefix + jobID).Value("1").Nx().Ex(ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil && !valkey.IsValkeyNil(err) {
		return fmt.Errorf("failed to mark job done: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}
