package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"herald/internal/config"
	"herald/internal/constants"
	"herald/internal/logger"
	pkgerrors "herald/pkg/errors"
	"herald/pkg/logging"
	"herald/pkg/metrics"
	"herald/pkg/models"
	"herald/pkg/retry"
	"herald/pkg/tracing"
)

type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: constants.KafkaBatchTimeout,
		WriteTimeout: constants.KafkaWriteTimeout,
		Async:        false,
	}
	return &KafkaProducer{writer: w, logger: log}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Inject trace context into Kafka headers
	headers := []kafka.Header{}
	headers = tracing.InjectTraceContext(ctx, headers)

	err = p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic:   topic,
			Key:     []byte(key),
			Value:   body,
			Headers: headers,
			Time:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.IncKafkaMessagesWritten("herald", topic)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type KafkaConsumer struct {
	cfg         config.KafkaConfig
	wg          sync.WaitGroup
	reader      *kafka.Reader
	logger      logger.Logger
	dlqProducer Producer
	serviceName string
}

func NewKafkaConsumer(cfg config.KafkaConfig, log logger.Logger) *KafkaConsumer {
	consumer := &KafkaConsumer{
		cfg:         cfg,
		logger:      log,
		serviceName: "unknown",
	}

	if cfg.DLQTopic != "" {
		consumer.dlqProducer = NewKafkaProducer(cfg, log)
	}

	return consumer
}

func (c *KafkaConsumer) SetServiceName(name string) {
	c.serviceName = name
}

func (c *KafkaConsumer) Consume(ctx context.Context, topic string, handler HandlerFunc) error {
	c.logger.Infow("Creating Kafka reader",
		"topic", topic,
		"brokers", c.cfg.Brokers,
		"group_id", c.cfg.GroupID,
		"service_name", c.serviceName,
	)

	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.cfg.Brokers,
		GroupID:  c.cfg.GroupID,
		Topic:    topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		consumeCtx := logging.WithServiceName(ctx, c.serviceName)
		c.logger.InfowCtx(consumeCtx, "Started consuming",
			"topic", topic,
		)

		for {
			m, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.InfowCtx(consumeCtx, "Stopped consuming",
						"topic", topic,
						"reason", "context canceled",
					)
					return
				}
				c.logger.ErrorwCtx(consumeCtx, "Error fetching kafka message",
					"error", err,
					"topic", topic,
				)
				time.Sleep(time.Second)
				continue
			}
			metrics.IncKafkaMessagesRead(c.serviceName, topic)

			var msg models.NormalizedMessage
			if err := json.Unmarshal(m.Value, &msg); err != nil {
				c.logger.ErrorwCtx(consumeCtx, "Failed to unmarshal message, sending to DLQ",
					"error", err,
					"topic", topic,
				)
				c.deadLetter(consumeCtx, m.Value, err, topic, "unmarshal_failed")
				_ = c.reader.CommitMessages(ctx, m)
				continue
			}

			// Extract trace context from Kafka headers and start span
			msgCtx, span := tracing.StartSpanFromKafkaMessage(ctx, "kafka.consume", m.Headers)

			if msg.TraceID != "" {
				msgCtx = logging.WithTraceID(msgCtx, msg.TraceID)
			}
			msgCtx = logging.WithMessageID(msgCtx, msg.MessageID)
			msgCtx = logging.WithTenant(msgCtx, msg.TenantID, msg.UserID)
			msgCtx = logging.WithServiceName(msgCtx, c.serviceName)

			if err := c.processMessageWithRetry(msgCtx, &msg, handler, topic); err != nil {
				c.logger.ErrorwCtx(msgCtx, "Failed to process message after retries",
					"error", err,
					"topic", topic,
				)
				reason := "max_retries_exceeded"
				if pkgerrors.IsValidation(err) {
					reason = "contract_violation"
				}
				c.deadLetter(msgCtx, m.Value, err, topic, reason)
			}
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				c.logger.ErrorwCtx(msgCtx, "Failed to commit message",
					"error", err,
					"topic", topic,
				)
			}
			span.End()
		}
	}()

	<-ctx.Done()
	return ctx.Err()
}

func (c *KafkaConsumer) Close() error {
	var err error
	if c.reader != nil {
		err = c.reader.Close()
	}
	if c.dlqProducer != nil {
		if closeErr := c.dlqProducer.Close(); closeErr != nil {
			if err == nil {
				err = closeErr
			}
		}
	}
	c.wg.Wait()
	return err
}

func (c *KafkaConsumer) processMessageWithRetry(ctx context.Context, msg *models.NormalizedMessage, handler HandlerFunc, topic string) error {
	policy := retry.Policy{
		MaxAttempts:     3,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
	}

	if c.cfg.Retry.MaxAttempts > 0 {
		policy.MaxAttempts = c.cfg.Retry.MaxAttempts
	}
	if c.cfg.Retry.InitialInterval > 0 {
		policy.InitialInterval = c.cfg.Retry.InitialInterval
	}
	if c.cfg.Retry.MaxInterval > 0 {
		policy.MaxInterval = c.cfg.Retry.MaxInterval
	}
	if c.cfg.Retry.Multiplier > 0 {
		policy.Multiplier = c.cfg.Retry.Multiplier
	}
	if c.cfg.Retry.MaxElapsedTime > 0 {
		policy.MaxElapsedTime = c.cfg.Retry.MaxElapsedTime
	}

	return retry.RetryWithCallback(ctx, policy, func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = pkgerrors.RecoverPanic(r)
				c.logger.ErrorwCtx(ctx, "Panic recovered during message processing",
					"error", err,
					"topic", topic,
				)
			}
		}()
		err = handler(ctx, msg)
		// Contract violations won't get better on retry.
		if err != nil && pkgerrors.IsValidation(err) {
			return retry.NewFatalError(err)
		}
		return err
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues(c.serviceName, topic).Inc()
		c.logger.WarnwCtx(ctx, "Retrying message processing",
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"next_delay", nextDelay,
			"error", err,
			"topic", topic,
		)
	})
}

// deadLetter ships the original payload to the DLQ with the failure
// wrapped around it, so operators can inspect and replay.
func (c *KafkaConsumer) deadLetter(ctx context.Context, original []byte, cause error, sourceTopic, reason string) {
	if c.dlqProducer == nil || c.cfg.DLQTopic == "" {
		c.logger.WarnwCtx(ctx, "No DLQ configured, dropping failed message",
			"topic", sourceTopic,
			"reason", reason,
		)
		return
	}

	envelope := map[string]interface{}{
		"source_topic": sourceTopic,
		"reason":       reason,
		"error":        cause.Error(),
		"failed_at":    time.Now().UTC(),
		"payload":      json.RawMessage(original),
	}

	if err := c.dlqProducer.Publish(ctx, c.cfg.DLQTopic, sourceTopic, envelope); err != nil {
		c.logger.ErrorwCtx(ctx, "Failed to send message to DLQ",
			"error", err,
			"topic", sourceTopic,
		)
		return
	}

	metrics.DLQMessagesTotal.WithLabelValues(c.serviceName, sourceTopic, reason).Inc()
	c.logger.InfowCtx(ctx, "Message sent to DLQ",
		"source_topic", sourceTopic,
		"dlq_topic", c.cfg.DLQTopic,
		"reason", reason,
	)
}
