package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/binghan60/EKERA-LunchBOT/config"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// eventKeyTTL bounds how long a processed webhook event id is remembered.
// LINE retries redeliveries within a short window, one hour is plenty.
const eventKeyTTL = time.Hour

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// MarkEventHandled records a webhook event id as processed. Returns true when
// this call was the first to claim the event, false when it was already seen.
// When Redis is not initialized every event is treated as first-seen.
func MarkEventHandled(ctx context.Context, eventID string) (bool, error) {
	if client == nil || eventID == "" {
		return true, nil
	}

	key := fmt.Sprintf("webhook:event:%s", eventID)
	ok, err := client.SetNX(ctx, key, "handled", eventKeyTTL).Result()
	if err != nil {
		logger.Error("Failed to record webhook event", err, map[string]interface{}{
			"event_id": eventID,
		})
		return true, err
	}

	if !ok {
		logger.Debug("Duplicate webhook event ignored", map[string]interface{}{
			"event_id": eventID,
		})
	}
	return ok, nil
}
