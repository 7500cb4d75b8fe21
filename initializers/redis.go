package initializers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"pto-bot-backend/config"
	"pto-bot-backend/lib/utils/dedup"
)

func InitRedis() {
	client := redis.NewClient(&redis.Options{
		Addr: config.Conf.Redis.Addr,
		DB:   config.Conf.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// dedup fails open without redis, the lifecycle is idempotent
		log.WithError(err).Warn("redis unavailable, delivery dedup disabled")
		dedup.NewInstance(nil)
		return
	}
	dedup.NewInstance(client)
}
