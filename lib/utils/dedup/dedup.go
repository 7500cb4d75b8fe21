package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Slack delivers events at least once; retries carry the same delivery
// id. This filter drops retries early, the lifecycle stays idempotent
// on its own either way.

type Provider interface {
	FirstDelivery(key string, ttl time.Duration) bool
}

var Instance Provider

func NewInstance(client *redis.Client) Provider {
	Instance = &impl{client: client}
	return Instance
}

type impl struct {
	client *redis.Client
}

func (i impl) FirstDelivery(key string, ttl time.Duration) bool {
	if i.client == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ok, err := i.client.SetNX(ctx, "slack:delivery:"+key, 1, ttl).Result()
	if err != nil {
		// fail open, duplicates are handled downstream
		log.WithError(err).WithField("delivery_key", key).Warn("delivery dedup check failed")
		return true
	}
	return ok
}
