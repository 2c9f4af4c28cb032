package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	cartevents "github.com/imrishuroy/go-cart-view/internal/events"
)

// metricsRecorder is implemented by aws.MetricsRecorder.
type metricsRecorder interface {
	RecordCartUpdated(ctx context.Context, evt cartevents.CartUpdated) error
}

// Processor turns CartUpdated messages into CloudWatch datapoints.
type Processor struct {
	metrics metricsRecorder
	logger  *zap.Logger
}

func NewProcessor(metrics metricsRecorder, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.L().Named("cart.worker")
	}
	return &Processor{metrics: metrics, logger: logger}
}

var errSkipMessage = errors.New("not a cart event")

// Handle processes a batch and reports failed messages individually so SQS
// only redelivers those. Messages of other event types are acknowledged.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		err := p.processMessage(ctx, rec)
		switch {
		case err == nil:
		case errors.Is(err, errSkipMessage):
			p.logger.Debug("skipping message", zap.String("message_id", rec.MessageId))
		default:
			p.logger.Warn("cart event failed",
				zap.String("message_id", rec.MessageId),
				zap.Error(err),
			)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	if attr, ok := rec.MessageAttributes["event_type"]; ok && attr.StringValue != nil &&
		*attr.StringValue != cartevents.TypeCartUpdated {
		return errSkipMessage
	}

	var evt cartevents.CartUpdated
	if err := json.Unmarshal([]byte(rec.Body), &evt); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if evt.CartID == "" {
		return fmt.Errorf("message %s: missing cart_id", rec.MessageId)
	}

	if err := p.metrics.RecordCartUpdated(ctx, evt); err != nil {
		return fmt.Errorf("record metrics for cart=%s: %w", evt.CartID, err)
	}

	p.logger.Info("cart metrics recorded",
		zap.String("cart_id", evt.CartID),
		zap.String("event_id", evt.EventID),
		zap.Int("lines", evt.Lines),
		zap.Float64("subtotal", evt.Subtotal),
	)
	return nil
}
