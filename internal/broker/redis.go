package broker

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Redis implements Broker over Redis Pub/Sub so status updates reach
// subscribers on other processes.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{rdb: redis.NewClient(opt)}, nil
}

func (b *Redis) Subscribe(jobID string) chan StatusUpdate {
	ch := make(chan StatusUpdate, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, b.channel(jobID))
	// initial receive confirms the subscription is live
	_, _ = ps.Receive(ctx)
	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			var update StatusUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err == nil {
				select {
				case ch <- update:
				default:
				}
			}
		}
	}()
	return ch
}

func (b *Redis) Unsubscribe(_ string, ch chan StatusUpdate) {
	close(ch)
}

func (b *Redis) Publish(update StatusUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(update)
	_ = b.rdb.Publish(ctx, b.channel(update.JobID), data).Err()
}

func (b *Redis) channel(jobID string) string { return "job:" + jobID }
