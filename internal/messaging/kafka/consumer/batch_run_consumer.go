package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-payroll/internal/events"
	"go-payroll/internal/payrollbatch"
	payrollbatcherrors "go-payroll/internal/payrollbatch/errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BatchRunConsumer executes requested payroll batches. Messages are
// committed only after the run reaches a terminal state, so a crashed
// worker replays the request and the run resumes from a clean reset.
type BatchRunConsumer struct {
	reader  *kafkago.Reader
	service payrollbatch.Service
	logger  *zap.Logger
}

func NewBatchRunConsumer(
	broker string,
	groupID string,
	service payrollbatch.Service,
	logger ...*zap.Logger,
) *BatchRunConsumer {
	l := zap.L().Named("payrollbatch.consumer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payrollbatch.consumer")
	}

	return &BatchRunConsumer{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:        []string{broker},
			Topic:          events.PayrollBatchRequestedTopic,
			GroupID:        groupID,
			CommitInterval: 0,
			StartOffset:    kafkago.FirstOffset,
		}),
		service: service,
		logger:  l,
	}
}

func (c *BatchRunConsumer) Close() error {
	return c.reader.Close()
}

func (c *BatchRunConsumer) Start(ctx context.Context) {
	go func() {
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error("fetch batch request failed", zap.Error(err))
				continue
			}

			var event events.PayrollBatchRequestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				c.logger.Error("decode batch request failed", zap.Error(err))
				c.commit(ctx, msg)
				continue
			}

			started := time.Now()
			err = c.service.Process(ctx, event.BatchID)
			switch {
			case err == nil:
				c.commit(ctx, msg)
				c.logger.Info("batch request processed",
					zap.String("batch_id", event.BatchID),
					zap.Duration("took", time.Since(started)),
				)
			case errors.Is(err, payrollbatcherrors.ErrBatchNotFound),
				errors.Is(err, payrollbatcherrors.ErrInvalidBatchID):
				// Nothing to retry; the request does not match a batch.
				c.logger.Warn("batch request dropped",
					zap.String("batch_id", event.BatchID),
					zap.Error(err),
				)
				c.commit(ctx, msg)
			default:
				// Leave uncommitted so the run is redelivered.
				c.logger.Error("batch processing failed",
					zap.String("batch_id", event.BatchID),
					zap.Error(err),
				)
			}
		}
	}()
}

func (c *BatchRunConsumer) commit(ctx context.Context, msg kafkago.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("commit batch request failed", zap.Error(err))
	}
}
