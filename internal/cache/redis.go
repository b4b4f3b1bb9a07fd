package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"zxtrack/internal/core/model"
)

// Sessions is the Redis-backed registry of live device connections,
// keyed by IMEI. When Redis is unavailable the registry degrades to a
// no-op so the collector keeps serving devices.
type Sessions struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration
}

const sessionKeyPrefix = "zx303:sess:"

// NewSessions connects to Redis if a URL is provided.
func NewSessions(redisURL string, ttl time.Duration) *Sessions {
	if redisURL == "" {
		log.Println("Redis URL not provided, session registry disabled")
		return &Sessions{}
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Failed to parse Redis URL: %v, session registry disabled", err)
		return &Sessions{}
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Failed to connect to Redis: %v, session registry disabled", err)
		return &Sessions{}
	}

	log.Println("Redis session registry initialized")
	return &Sessions{client: client, enabled: true, ttl: ttl}
}

func (s *Sessions) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// Register stores the session for a freshly logged-in device.
func (s *Sessions) Register(ctx context.Context, device *model.Device) error {
	if !s.enabled {
		return nil
	}
	data, err := json.Marshal(device)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+device.IMEI, data, s.ttl).Err()
}

// Touch refreshes the TTL, typically on heartbeat.
func (s *Sessions) Touch(ctx context.Context, imei string) error {
	if !s.enabled {
		return nil
	}
	return s.client.Expire(ctx, sessionKeyPrefix+imei, s.ttl).Err()
}

// Get returns the registered session, or nil when the device is not
// connected (or the registry is disabled).
func (s *Sessions) Get(ctx context.Context, imei string) (*model.Device, error) {
	if !s.enabled {
		return nil, nil
	}
	data, err := s.client.Get(ctx, sessionKeyPrefix+imei).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var device model.Device
	if err := json.Unmarshal(data, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Remove drops the session when the connection closes.
func (s *Sessions) Remove(ctx context.Context, imei string) error {
	if !s.enabled {
		return nil
	}
	return s.client.Del(ctx, sessionKeyPrefix+imei).Err()
}
