package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/supplier/domain"
)

// Sorted set of task JSON scored by due time in unix millis.
const keyOutbox = "supplier:outbox"

type redisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client) Queue {
	return &redisQueue{rdb: rdb, key: keyOutbox}
}

func (q *redisQueue) Enqueue(ctx context.Context, task domain.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", task.ID, err)
	}
	return q.rdb.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(task.DueAt.UnixMilli()),
		Member: string(data),
	}).Err()
}

func (q *redisQueue) Due(ctx context.Context, now time.Time, limit int) ([]domain.Task, error) {
	members, err := q.rdb.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrangebyscore %s: %w", q.key, err)
	}

	tasks := make([]domain.Task, 0, len(members))
	for _, member := range members {
		// ZREM yang berhasil = task ini milik kita
		removed, err := q.rdb.ZRem(ctx, q.key, member).Result()
		if err != nil {
			return tasks, fmt.Errorf("redis zrem %s: %w", q.key, err)
		}
		if removed == 0 {
			continue
		}
		var task domain.Task
		if err := json.Unmarshal([]byte(member), &task); err != nil {
			logger.Error("Outbox: dropping undecodable task", err, map[string]interface{}{"member": member})
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (q *redisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.rdb.ZCard(ctx, q.key).Result()
	return int(n), err
}
