// Package consumer reacts to payment-success events published by the
// payment webhook tier and triggers order fulfillment for the paying
// user.
package consumer

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Fulfiller is the slice of the fulfillment service the consumer needs.
type Fulfiller interface {
	FulfillOrder(ctx context.Context, userID string) (string, error)
}

type PaymentConsumer struct {
	reader    *kafka.Reader
	fulfiller Fulfiller
	log       zerolog.Logger
}

func NewPaymentConsumer(fulfiller Fulfiller, log zerolog.Logger, brokers ...string) *PaymentConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "payment-success",
		GroupID:  "shop-fulfillment",
		MaxBytes: 10e6, // 10MB
	})
	return &PaymentConsumer{
		reader:    reader,
		fulfiller: fulfiller,
		log:       log.With().Str("component", "payment-consumer").Logger(),
	}
}

func (c *PaymentConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.consumeOne(ctx)
	}
}

func (c *PaymentConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Warn().Err(err).Msg("error closing kafka reader")
	}
}

type paymentEvent struct {
	UserID string `json:"user_id"`
}

func (c *PaymentConsumer) consumeOne(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.log.Warn().Err(err).Msg("error reading payment event")
		}
		return
	}
	c.handleEvent(ctx, m.Value)
}

func (c *PaymentConsumer) handleEvent(ctx context.Context, value []byte) {
	var event paymentEvent
	if err := json.Unmarshal(value, &event); err != nil {
		c.log.Warn().Err(err).Msg("error parsing payment event")
		return
	}
	if event.UserID == "" {
		c.log.Warn().Msg("payment event missing user_id")
		return
	}

	// Fulfillment is re-invocable, so a redelivered event at worst
	// re-sends the invoice.
	if _, err := c.fulfiller.FulfillOrder(ctx, event.UserID); err != nil {
		c.log.Error().Err(err).Str("user_id", event.UserID).Msg("fulfillment failed for payment event")
	}
}
