package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/runner/internal/config"
	"github.com/Additional-Code/runner/internal/entity"
	"github.com/Additional-Code/runner/internal/fcm"
	"github.com/Additional-Code/runner/internal/messaging"
	"github.com/Additional-Code/runner/internal/observability"
	"github.com/Additional-Code/runner/internal/repository/account"
	"github.com/Additional-Code/runner/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/runner/service/notification")

// EventOrderStatusChanged is the message type header of status events.
const EventOrderStatusChanged = "order.status_changed"

// OrderStatusChangedEvent is emitted after a partner changes an order's status.
type OrderStatusChangedEvent struct {
	EventID    string             `json:"event_id"`
	OrderID    int64              `json:"order_id"`
	ShopID     int64              `json:"shop_id"`
	CustomerID int64              `json:"customer_id"`
	Status     entity.OrderStatus `json:"status"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// NewOrderStatusChangedEvent stamps an event for order with a fresh id.
func NewOrderStatusChangedEvent(order *entity.Order, at time.Time) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		EventID:    uuid.NewString(),
		OrderID:    order.ID,
		ShopID:     order.ShopID,
		CustomerID: order.CustomerID,
		Status:     order.Status,
		OccurredAt: at,
	}
}

// Notifier is told about order status changes.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, event OrderStatusChangedEvent) error
}

// Service sends push notifications to customers.
type Service struct {
	accounts  account.Store
	sender    fcm.Sender
	publisher messaging.Client
	async     bool
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Accounts  account.Store
	Sender    fcm.Sender
	Publisher messaging.Client
	Config    config.Config
	Logger    *zap.Logger
	Metrics   *observability.Metrics `optional:"true"`
}

// NewService wires a notification Service.
func NewService(p Params) *Service {
	return &Service{
		accounts:  p.Accounts,
		sender:    p.Sender,
		publisher: p.Publisher,
		async:     p.Config.Messaging.Enabled,
		logger:    p.Logger,
		metrics:   p.Metrics,
	}
}

// OrderStatusChanged hands the event to the worker when messaging is enabled,
// otherwise delivers the push inline.
func (s *Service) OrderStatusChanged(ctx context.Context, event OrderStatusChangedEvent) error {
	ctx, span := serviceTracer.Start(ctx, "NotificationService.OrderStatusChanged", trace.WithAttributes(
		attribute.Int64("order.id", event.OrderID),
		attribute.String("order.status", string(event.Status)),
		attribute.Bool("notification.async", s.async),
	))
	defer span.End()

	if !s.async || s.publisher == nil {
		return s.Deliver(ctx, event)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal status event: %w", err)
	}
	msg := messaging.OutboundMessage{
		Key:   []byte(fmt.Sprintf("order-%d", event.OrderID)),
		Value: payload,
		Headers: map[string]string{
			messaging.HeaderEventType: EventOrderStatusChanged,
			messaging.HeaderEventID:   event.EventID,
		},
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return fmt.Errorf("publish status event: %w", err)
	}
	return nil
}

// Deliver sends the push for event to the customer's registered device.
// Customers without a device token are skipped.
func (s *Service) Deliver(ctx context.Context, event OrderStatusChangedEvent) error {
	ctx, span := serviceTracer.Start(ctx, "NotificationService.Deliver", trace.WithAttributes(
		attribute.Int64("customer.id", event.CustomerID),
	))
	defer span.End()

	customer, err := s.accounts.FindCustomerByID(ctx, event.CustomerID)
	if errors.Is(err, account.ErrCustomerNotFound) {
		s.logger.Warn("status notification for unknown customer", zap.Int64("customer_id", event.CustomerID), zap.Int64("order_id", event.OrderID))
		return nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "customer lookup failed")
		return err
	}
	if customer.DeviceToken == "" {
		s.logger.Debug("customer has no device token", zap.Int64("customer_id", customer.ID))
		return nil
	}

	title, body := StatusMessage(event.OrderID, event.Status)
	name, err := s.sender.Send(ctx, fcm.Message{Token: customer.DeviceToken, Title: title, Body: body})
	s.metrics.PushDelivered(ctx, err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return err
	}
	s.logger.Info("order status push sent",
		zap.Int64("order_id", event.OrderID),
		zap.String("status", string(event.Status)),
		zap.String("fcm_name", name),
	)
	return nil
}

// RegisterDeviceToken stores the push token of the customer with email.
func (s *Service) RegisterDeviceToken(ctx context.Context, email, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errorbank.BadRequest("token is required")
	}
	ctx, span := serviceTracer.Start(ctx, "NotificationService.RegisterDeviceToken")
	defer span.End()

	customer, err := s.accounts.FindCustomerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrCustomerNotFound) {
			return errorbank.NotFound("customer not found")
		}
		span.RecordError(err)
		return errorbank.Internal("failed to load customer", errorbank.WithCause(err))
	}
	if err := s.accounts.UpdateDeviceToken(ctx, customer.ID, token); err != nil {
		if errors.Is(err, account.ErrCustomerNotFound) {
			return errorbank.NotFound("customer not found")
		}
		span.RecordError(err)
		return errorbank.Internal("failed to save device token", errorbank.WithCause(err))
	}
	return nil
}

// Send pushes one notification to token and returns the FCM message name.
func (s *Service) Send(ctx context.Context, token, title, body string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", errorbank.BadRequest("token is required")
	}
	ctx, span := serviceTracer.Start(ctx, "NotificationService.Send")
	defer span.End()

	name, err := s.sender.Send(ctx, fcm.Message{Token: token, Title: title, Body: body})
	s.metrics.PushDelivered(ctx, err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return "", errorbank.Internal("failed to send push notification", errorbank.WithCause(err))
	}
	return name, nil
}

// StatusMessage returns the push title and body for an order entering status.
func StatusMessage(orderID int64, status entity.OrderStatus) (string, string) {
	switch status {
	case entity.OrderStatusAccepted:
		return "Order accepted", fmt.Sprintf("Order #%d was accepted and is being prepared.", orderID)
	case entity.OrderStatusReady:
		return "Order ready", fmt.Sprintf("Order #%d is ready for pickup.", orderID)
	case entity.OrderStatusCompleted:
		return "Order completed", fmt.Sprintf("Order #%d is complete. Enjoy!", orderID)
	case entity.OrderStatusRejected:
		return "Order rejected", fmt.Sprintf("Sorry, the shop could not take order #%d.", orderID)
	case entity.OrderStatusCanceled:
		return "Order canceled", fmt.Sprintf("Order #%d was canceled.", orderID)
	default:
		return "Order updated", fmt.Sprintf("Order #%d is now %s.", orderID, status)
	}
}
