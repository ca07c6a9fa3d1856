package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/onurcolak/dispatch-service/environments"
	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/pkg/logger"
)

// KafkaQueue publishes jobs to one topic and consumes them through a consumer
// group. Offsets are committed only after the handler succeeds.
type KafkaQueue struct {
	writer     *kafka.Writer
	reader     *kafka.Reader
	brokers    []string
	retryDelay time.Duration
}

func NewKafkaQueue(cfg environments.QueueConfig) *KafkaQueue {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		StartOffset:    kafka.FirstOffset,
		MaxWait:        time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: time.Second,
	})

	logger.Infof("Kafka queue configured (brokers: %v, topic: %s, group: %s)",
		cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)

	return &KafkaQueue{writer: writer, reader: reader, brokers: cfg.KafkaBrokers, retryDelay: 2 * time.Second}
}

// Ping dials the first reachable broker.
func (q *KafkaQueue) Ping(ctx context.Context) error {
	var lastErr error
	for _, broker := range q.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	if lastErr == nil {
		lastErr = errors.New("no kafka brokers configured")
	}
	return fmt.Errorf("failed to reach kafka: %w", lastErr)
}

func (q *KafkaQueue) Enqueue(ctx context.Context, job domain.DispatchJob) error {
	data, err := encode(job)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(job.ID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "channel", Value: []byte(job.Channel)},
		},
	}

	if err := q.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	return nil
}

// Consume hands each message to handle and commits its offset afterwards. A
// handler error keeps the message and retries it after retryDelay, since
// fetching further would skip past the uncommitted offset.
func (q *KafkaQueue) Consume(ctx context.Context, handle Handler) error {
	for {
		msg, err := q.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to fetch kafka message: %w", err)
		}

		job, err := decode(msg.Value)
		if err != nil {
			logger.Errorf("Dropping malformed job at offset %d: %v", msg.Offset, err)
			q.commit(ctx, msg)
			continue
		}

		for {
			err := handle(ctx, job)
			if err == nil {
				break
			}

			logger.Warnf("Job %s at offset %d failed, retrying in %v: %v", job.ID, msg.Offset, q.retryDelay, err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(q.retryDelay):
			}
		}

		q.commit(ctx, msg)
	}
}

func (q *KafkaQueue) commit(ctx context.Context, msg kafka.Message) {
	if err := q.reader.CommitMessages(context.WithoutCancel(ctx), msg); err != nil {
		logger.Errorf("Failed to commit kafka offset %d: %v", msg.Offset, err)
	}
}

func (q *KafkaQueue) Close() error {
	return errors.Join(q.writer.Close(), q.reader.Close())
}
