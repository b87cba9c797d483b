package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"filevault/infra"
	"filevault/infra/produce"
)

// PurgeConsumer removes objects from storage once their metadata record is
// gone, either through owner deletion or the expiry sweep.
type PurgeConsumer struct {
	channel *amqp.Channel
	infra   *infra.Infra
}

func NewPurgeConsumer(channel *amqp.Channel, infra *infra.Infra) *PurgeConsumer {
	return &PurgeConsumer{
		channel: channel,
		infra:   infra,
	}
}

func (c *PurgeConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.FilePurgeQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register file purge consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Purge Consumer] Started listening on queue: %s", produce.FilePurgeQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Purge Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Purge Consumer] Channel closed")
					return
				}
				c.handlePurge(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *PurgeConsumer) handlePurge(ctx context.Context, msg amqp.Delivery) {
	var payload produce.FilePurgeMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Purge Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	// Removing an object that never existed (an abandoned direct upload)
	// succeeds, so purges are idempotent.
	maxRetries := 3
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = c.infra.Minio.RemoveObject(ctx, payload.ObjectKey)
		if err == nil {
			c.infra.Logger.InfoWithContextf(ctx, "[Purge Consumer] Purged object %q (file %s)", payload.ObjectKey, payload.FileID)
			_ = msg.Ack(false)
			return
		}

		c.infra.Logger.ErrorWithContextf(ctx, err, "[Purge Consumer] Attempt %d/%d failed for %q: %v", attempt, maxRetries, payload.ObjectKey, err)

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	c.infra.Logger.ErrorWithContextf(ctx, err, "[Purge Consumer] Failed after %d attempts, requeueing message", maxRetries)
	_ = msg.Nack(false, true)
}
