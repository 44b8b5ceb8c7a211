package messaging

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"avilegal.backend/pkg/logger"
)

const (
	defaultHandleTimeout = 30 * time.Second
	fetchBackoff         = time.Second
)

// Reader is the subset of kafka.Reader the consumer needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one message. A returned error leaves the offset
// uncommitted so the message is redelivered.
type Handler func(ctx context.Context, key, value []byte) error

type Consumer struct {
	reader        Reader
	handleTimeout time.Duration
	backoff       time.Duration
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return NewConsumerWithReader(kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	}))
}

func NewConsumerWithReader(r Reader) *Consumer {
	return &Consumer{reader: r, handleTimeout: defaultHandleTimeout, backoff: fetchBackoff}
}

// Start fetches and handles messages until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, handler Handler) {
	logger.Info(ctx, "Kafka consumer started")
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn(ctx, "Failed to fetch message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff):
			}
			continue
		}

		handleCtx, cancel := context.WithTimeout(ctx, c.handleTimeout)
		err = handler(handleCtx, m.Key, m.Value)
		cancel()
		if err != nil {
			logger.Error(ctx, "Failed to process message",
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			logger.Error(ctx, "Failed to commit offset", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
