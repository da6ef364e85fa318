package order

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/runner/internal/auth"
	"github.com/Additional-Code/runner/internal/dto"
	"github.com/Additional-Code/runner/internal/presentation/http/request"
	"github.com/Additional-Code/runner/internal/presentation/http/response"
	service "github.com/Additional-Code/runner/internal/service/order"
	"github.com/Additional-Code/runner/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/runner/transport/http/order")

// Handler exposes a partner's shop orders and revenue over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the partner API group.
func Register(partner *echo.Group, h *Handler) {
	g := partner.Group("/shop/orders")
	g.GET("", h.all)
	g.GET("/today", h.today)
	g.GET("/today/status/:status", h.todayByStatus)
	g.PATCH("/:orderId/status", h.modifyStatus)
	g.GET("/revenue/today", h.dayRevenue)
	g.GET("/revenue/period", h.periodRevenue)
	g.GET("/revenue/total", h.totalRevenue)
}

func (h *Handler) all(c echo.Context) error {
	email, err := auth.PartnerEmail(c)
	if err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.all")
	defer span.End()

	orders, err := h.svc.FindByShop(ctx, email)
	if err != nil {
		return response.Error(c, err)
	}
	return response.New(c).WithData(orders).WithMeta("count", len(orders)).Build()
}

func (h *Handler) today(c echo.Context) error {
	email, err := auth.PartnerEmail(c)
	if err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.today")
	defer span.End()

	orders, err := h.svc.FindByShopAndDay(ctx, email, h.svc.Today())
	if err != nil {
		return response.Error(c, err)
	}
	return response.New(c).WithData(orders).WithMeta("count", len(orders)).Build()
}

func (h *Handler) todayByStatus(c echo.Context) error {
	email, err := auth.PartnerEmail(c)
	if err != nil {
		return response.Error(c, err)
	}
	status := c.Param("status")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.todayByStatus", trace.WithAttributes(attribute.String("order.status", status)))
	defer span.End()

	orders, err := h.svc.FindByShopAndDayAndStatus(ctx, email, h.svc.Today(), status)
	if err != nil {
		return response.Error(c, err)
	}
	return response.New(c).WithData(orders).WithMeta("count", len(orders)).Build()
}

func (h *Handler) modifyStatus(c echo.Context) error {
	email, err := auth.PartnerEmail(c)
	if err != nil {
		return response.Error(c, err)
	}
	orderID, err := request.PathID(c, "orderId")
	if err != nil {
		return response.Error(c, err)
	}
	var payload dto.OrderStatusRequest
	if err := request.Bind(c, &payload); err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.modifyStatus", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.status", payload.Status),
	))
	defer span.End()

	order, err := h.svc.ModifyStatus(ctx, email, orderID, payload.Status)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, order)
}

func (h *Handler) dayRevenue(c echo.Context) error {
	email, err := auth.PartnerEmail(c)
	if err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.dayRevenue")
	defer span.End()

	revenue, err := h.svc.DayRevenue(ctx, email)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, revenue)
}

func (h *Handler) periodRevenue(c echo.Context) error {
	email, err := auth.PartnerEmail(c)
	if err != nil {
		return response.Error(c, err)
	}
	from, to := c.QueryParam("from"), c.QueryParam("to")
	if from == "" || to == "" {
		return response.Error(c, errorbank.BadRequest("from and to are required"))
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.periodRevenue", trace.WithAttributes(
		attribute.String("period.from", from),
		attribute.String("period.to", to),
	))
	defer span.End()

	revenue, err := h.svc.PeriodRevenue(ctx, email, from, to)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, revenue)
}

func (h *Handler) totalRevenue(c echo.Context) error {
	email, err := auth.PartnerEmail(c)
	if err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.totalRevenue")
	defer span.End()

	revenue, err := h.svc.TotalRevenue(ctx, email)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, revenue)
}
