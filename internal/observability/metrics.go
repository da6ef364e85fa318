package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/Additional-Code/runner"

// Metrics holds the business counters of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	statusChanges metric.Int64Counter
	pushes        metric.Int64Counter
	menuChanges   metric.Int64Counter
}

// NewMetrics registers the counters on the manager's meter.
func NewMetrics(m *Manager) (*Metrics, error) {
	meter := m.Meter(meterName)

	statusChanges, err := meter.Int64Counter("runner.order.status_changes",
		metric.WithDescription("Order status changes made by partners"))
	if err != nil {
		return nil, err
	}
	pushes, err := meter.Int64Counter("runner.push.deliveries",
		metric.WithDescription("Push notifications handed to FCM, by result"))
	if err != nil {
		return nil, err
	}
	menuChanges, err := meter.Int64Counter("runner.menu.changes",
		metric.WithDescription("Menu writes made by partners, by operation"))
	if err != nil {
		return nil, err
	}

	return &Metrics{statusChanges: statusChanges, pushes: pushes, menuChanges: menuChanges}, nil
}

// OrderStatusChanged counts one status change to status.
func (m *Metrics) OrderStatusChanged(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// PushDelivered counts one push attempt; ok reports whether FCM accepted it.
func (m *Metrics) PushDelivered(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	result := "sent"
	if !ok {
		result = "failed"
	}
	m.pushes.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// MenuChanged counts one menu write such as "create" or "delete".
func (m *Metrics) MenuChanged(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.menuChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}
