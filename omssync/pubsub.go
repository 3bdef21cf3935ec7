package omssync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/adsync_backend/config"
)

func PublishCatalogSyncRun(ctx context.Context, runId uint) error {
	topicName := strings.TrimSpace(os.Getenv("CATALOG_SYNC_TOPIC"))
	if topicName == "" {
		topicName = "catalog-sync"
	}

	client, err := config.GetClient(ctx)
	if err != nil {
		return err
	}

	topic := client.Topic(topicName)
	if envBoolDefault("CATALOG_SYNC_CREATE_TOPIC", false) {
		topic, err = config.CreateTopicIfNotExists(client, topicName)
		if err != nil {
			return err
		}
	}

	data, _ := json.Marshal(CatalogSyncPayload{RunId: runId})
	res := topic.Publish(ctx, &pubsub.Message{Data: data})
	_, err = res.Get(ctx)
	return err
}

// CatalogSyncPushHandler handles Pub/Sub push deliveries. It always answers
// 204 so a malformed message is dropped instead of redelivered forever; run
// failures land on the run record, not the subscription.
func CatalogSyncPushHandler() gin.HandlerFunc {
	logger := config.GetLogger()
	return func(c *gin.Context) {
		if !envBoolDefault("ENABLE_CATALOG_PUBSUB_PUSH_ENDPOINT", true) {
			c.Status(204)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(204)
			return
		}

		var envelope PubSubPushEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			c.Status(204)
			return
		}

		var payload CatalogSyncPayload
		if err := json.Unmarshal(envelope.Message.Data, &payload); err != nil {
			c.Status(204)
			return
		}
		if payload.RunId == 0 {
			c.Status(204)
			return
		}

		ctx := c.Request.Context()

		// Best-effort lock against concurrent redeliveries. Losing the
		// lock service is not a reason to stop processing.
		if locker := config.GetRedisLock(); locker != nil {
			lockKey := fmt.Sprintf("lock:catalog-sync-run:%d", payload.RunId)
			lock, lockErr := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
			if lockErr == redislock.ErrNotObtained {
				logger.WithField("runId", payload.RunId).Warn("catalog sync run already being processed")
				c.Status(204)
				return
			}
			if lockErr != nil {
				logger.WithField("runId", payload.RunId).Warn("could not obtain catalog sync lock, proceeding")
			} else {
				defer func() {
					if releaseErr := lock.Release(ctx); releaseErr != nil {
						logger.WithField("runId", payload.RunId).Warn("could not release catalog sync lock")
					}
				}()
			}
		}

		if err := processCatalogSyncRun(ctx, payload); err != nil {
			config.LogError(logger, "pubsub.go", "CatalogSyncPushHandler", "process catalog sync run", payload, err)
		}
		c.Status(204)
	}
}

func envBoolDefault(key string, def bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off":
		return false
	default:
		return def
	}
}
