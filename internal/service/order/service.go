package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/runner/internal/config"
	"github.com/Additional-Code/runner/internal/dto"
	"github.com/Additional-Code/runner/internal/entity"
	"github.com/Additional-Code/runner/internal/observability"
	"github.com/Additional-Code/runner/internal/repository/account"
	repo "github.com/Additional-Code/runner/internal/repository/order"
	"github.com/Additional-Code/runner/internal/service/notification"
	"github.com/Additional-Code/runner/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/runner/service/order")

// Accepted layouts for revenue period bounds, tried in order.
var boundLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// Service implements the partner view of a shop's orders.
type Service struct {
	accounts account.Store
	orders   repo.Store
	notifier notification.Notifier
	loc      *time.Location
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Accounts account.Store
	Orders   repo.Store
	Notifier notification.Notifier
	Config   config.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics `optional:"true"`
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	loc := p.Config.App.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		accounts: p.Accounts,
		orders:   p.Orders,
		notifier: p.Notifier,
		loc:      loc,
		logger:   p.Logger,
		metrics:  p.Metrics,
		now:      time.Now,
	}
}

// FindByShop lists every order of the partner's shop, newest first.
func (s *Service) FindByShop(ctx context.Context, email string) ([]dto.OrderDetailResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.FindByShop")
	defer span.End()

	orders, err := s.list(ctx, span, email, repo.Filter{})
	if err != nil {
		return nil, err
	}
	return details(orders), nil
}

// FindByShopAndDay lists the orders created during the local day containing day.
func (s *Service) FindByShopAndDay(ctx context.Context, email string, day time.Time) ([]dto.OrderResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.FindByShopAndDay")
	defer span.End()

	from, to := s.dayWindow(day)
	orders, err := s.list(ctx, span, email, repo.Filter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out, nil
}

// FindByShopAndDayAndStatus lists the day's orders in one status.
func (s *Service) FindByShopAndDayAndStatus(ctx context.Context, email string, day time.Time, status string) ([]dto.OrderDetailResponse, error) {
	parsed, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.FindByShopAndDayAndStatus", trace.WithAttributes(attribute.String("order.status", string(parsed))))
	defer span.End()

	from, to := s.dayWindow(day)
	orders, err := s.list(ctx, span, email, repo.Filter{From: from, To: to, Status: parsed})
	if err != nil {
		return nil, err
	}
	return details(orders), nil
}

// ModifyStatus moves an order of the partner's shop to status and notifies
// the customer. A failed notification does not undo the change.
func (s *Service) ModifyStatus(ctx context.Context, email string, orderID int64, status string) (*dto.OrderResponse, error) {
	next, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.ModifyStatus", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.status", string(next)),
	))
	defer span.End()

	shopID, err := s.shopOf(ctx, email)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		return nil, internal(span, "failed to load order", err)
	}
	if order.ShopID != shopID {
		return nil, errorbank.NotFound("order not found")
	}

	current := order.Status
	if current == next {
		return nil, errorbank.Conflict("order already has this status", errorbank.WithDetail("status", string(current)))
	}
	if !entity.CanTransition(current, next) {
		return nil, errorbank.Unprocessable("order status cannot change this way", errorbank.WithDetails(map[string]any{
			"from": string(current),
			"to":   string(next),
		}))
	}

	now := s.now().UTC()
	order.Status = next
	order.UpdatedAt = now
	if err := s.orders.UpdateStatus(ctx, order, current); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, errorbank.NotFound("order not found")
		case errors.Is(err, repo.ErrStaleStatus):
			return nil, s.staleStatus(ctx, orderID, current)
		}
		return nil, internal(span, "failed to update order status", err)
	}
	s.metrics.OrderStatusChanged(ctx, string(next))

	if s.notifier != nil {
		event := notification.NewOrderStatusChangedEvent(order, now)
		if err := s.notifier.OrderStatusChanged(ctx, event); err != nil {
			span.AddEvent("notification failed")
			s.logger.Warn("order status notification failed",
				zap.Int64("order_id", order.ID),
				zap.String("status", string(next)),
				zap.Error(err),
			)
		}
	}

	resp := toOrderResponse(order)
	return &resp, nil
}

// DayRevenue totals completed orders of the current local day.
func (s *Service) DayRevenue(ctx context.Context, email string) (*dto.RevenueResponse, error) {
	from, to := s.dayWindow(s.now())
	return s.revenue(ctx, "OrderService.DayRevenue", email, from, to)
}

// PeriodRevenue totals completed orders from the start of rawFrom's day to
// the end of rawTo's day.
func (s *Service) PeriodRevenue(ctx context.Context, email, rawFrom, rawTo string) (*dto.RevenueResponse, error) {
	fromDay, err := s.ParseBound(rawFrom)
	if err != nil {
		return nil, errorbank.BadRequest("invalid from", errorbank.WithCause(err), errorbank.WithDetail("from", rawFrom))
	}
	toDay, err := s.ParseBound(rawTo)
	if err != nil {
		return nil, errorbank.BadRequest("invalid to", errorbank.WithCause(err), errorbank.WithDetail("to", rawTo))
	}
	if fromDay.After(toDay) {
		return nil, errorbank.BadRequest("from must not be after to")
	}

	from, _ := s.dayWindow(fromDay)
	_, to := s.dayWindow(toDay)
	return s.revenue(ctx, "OrderService.PeriodRevenue", email, from, to)
}

// TotalRevenue totals every completed order created up to now.
func (s *Service) TotalRevenue(ctx context.Context, email string) (*dto.RevenueResponse, error) {
	return s.revenue(ctx, "OrderService.TotalRevenue", email, time.Time{}, s.now().In(s.loc))
}

// Today returns the current time in the application time zone.
func (s *Service) Today() time.Time {
	return s.now().In(s.loc)
}

// ParseBound parses a local date-time or date in the application time zone.
func (s *Service) ParseBound(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range boundLayouts {
		t, err := time.ParseInLocation(layout, raw, s.loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (s *Service) revenue(ctx context.Context, name, email string, from, to time.Time) (*dto.RevenueResponse, error) {
	ctx, span := serviceTracer.Start(ctx, name)
	defer span.End()

	shopID, err := s.shopOf(ctx, email)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.SumRevenue(ctx, shopID, from, to)
	if err != nil {
		return nil, internal(span, "failed to calculate revenue", err)
	}

	resp := &dto.RevenueResponse{Revenue: total, To: to}
	if !from.IsZero() {
		resp.From = &from
	}
	return resp, nil
}

// dayWindow returns [start, end) of the local day containing t.
func (s *Service) dayWindow(t time.Time) (time.Time, time.Time) {
	local := t.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

func (s *Service) list(ctx context.Context, span trace.Span, email string, filter repo.Filter) ([]*entity.Order, error) {
	shopID, err := s.shopOf(ctx, email)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("shop.id", shopID))
	orders, err := s.orders.ListByShop(ctx, shopID, filter)
	if err != nil {
		return nil, internal(span, "failed to load orders", err)
	}
	return orders, nil
}

func (s *Service) shopOf(ctx context.Context, email string) (int64, error) {
	partner, err := s.accounts.FindPartnerWithShop(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrPartnerNotFound) {
			return 0, errorbank.NotFound("partner not found")
		}
		return 0, errorbank.Internal("failed to load partner", errorbank.WithCause(err))
	}
	return partner.ShopID, nil
}

func parseStatus(raw string) (entity.OrderStatus, error) {
	status, ok := entity.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !ok {
		return "", errorbank.BadRequest("unknown order status", errorbank.WithDetail("status", raw))
	}
	return status, nil
}

func details(orders []*entity.Order) []dto.OrderDetailResponse {
	out := make([]dto.OrderDetailResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDetailResponse(o))
	}
	return out
}

func internal(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return errorbank.Internal(msg, errorbank.WithCause(err))
}

// staleStatus reports an order that another request moved away from
// expected while this one was deciding.
func (s *Service) staleStatus(ctx context.Context, orderID int64, expected entity.OrderStatus) error {
	info := map[string]any{"expected": string(expected)}
	if latest, err := s.orders.GetByID(ctx, orderID); err == nil {
		info["status"] = string(latest.Status)
	}
	return errorbank.Conflict("order status changed by another request", errorbank.WithDetails(info))
}
