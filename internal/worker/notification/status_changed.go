package notification

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/runner/internal/config"
	"github.com/Additional-Code/runner/internal/messaging"
	notifysvc "github.com/Additional-Code/runner/internal/service/notification"
	"github.com/Additional-Code/runner/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/runner/worker/notification")

// Deliverer sends the push for one status event.
type Deliverer interface {
	Deliver(ctx context.Context, event notifysvc.OrderStatusChangedEvent) error
}

// Module registers the order status push handler.
var Module = fx.Module("worker_notification",
	fx.Provide(
		fx.Annotate(
			func(svc *notifysvc.Service, logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
				return NewStatusChangedHandler(svc, logger, cfg)
			},
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewStatusChangedHandler consumes order status events and pushes them to customers.
// Malformed payloads are logged and acknowledged; delivery errors are retried.
func NewStatusChangedHandler(deliverer Deliverer, logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.notification.status_changed", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.Int64("messaging.offset", msg.Offset),
		))
		defer span.End()

		if t := msg.EventType(); t != "" && t != notifysvc.EventOrderStatusChanged {
			logger.Debug("ignoring event", zap.String("event_type", t))
			return nil
		}

		var event notifysvc.OrderStatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order status event", zap.Error(err), zap.Int64("offset", msg.Offset))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return nil
		}
		span.SetAttributes(
			attribute.Int64("order.id", event.OrderID),
			attribute.String("order.status", string(event.Status)),
		)

		if err := deliverer.Deliver(ctx, event); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "deliver failed")
			return err
		}
		logger.Info("order status event processed",
			zap.String("event_id", event.EventID),
			zap.Int64("order_id", event.OrderID),
			zap.String("status", string(event.Status)),
		)
		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
