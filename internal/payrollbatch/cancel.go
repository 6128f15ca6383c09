package payrollbatch

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cancelFlagTTL = 24 * time.Hour

// CancelFlag is a cooperative stop signal checked between employments
// while a batch is processing.
type CancelFlag interface {
	Set(ctx context.Context, batchID string) error
	IsSet(ctx context.Context, batchID string) (bool, error)
	Clear(ctx context.Context, batchID string) error
}

type redisCancelFlag struct {
	client *redis.Client
}

func NewRedisCancelFlag(client *redis.Client) CancelFlag {
	return &redisCancelFlag{client: client}
}

func cancelKey(batchID string) string {
	return fmt.Sprintf("payroll:batch:cancel:%s", batchID)
}

func (f *redisCancelFlag) Set(ctx context.Context, batchID string) error {
	return f.client.Set(ctx, cancelKey(batchID), "1", cancelFlagTTL).Err()
}

func (f *redisCancelFlag) IsSet(ctx context.Context, batchID string) (bool, error) {
	_, err := f.client.Get(ctx, cancelKey(batchID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (f *redisCancelFlag) Clear(ctx context.Context, batchID string) error {
	return f.client.Del(ctx, cancelKey(batchID)).Err()
}
