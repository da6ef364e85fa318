package customer

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/Additional-Code/runner/internal/auth"
	"github.com/Additional-Code/runner/internal/dto"
	"github.com/Additional-Code/runner/internal/presentation/http/request"
	"github.com/Additional-Code/runner/internal/presentation/http/response"
	"github.com/Additional-Code/runner/internal/service/notification"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/runner/transport/http/customer")

// Handler exposes customer account endpoints.
type Handler struct {
	notifications *notification.Service
}

// NewHandler constructs a customer Handler.
func NewHandler(notifications *notification.Service) *Handler {
	return &Handler{notifications: notifications}
}

// Register routes with the customer API group.
func Register(customer *echo.Group, h *Handler) {
	customer.PUT("/device-token", h.registerDeviceToken)
}

func (h *Handler) registerDeviceToken(c echo.Context) error {
	email, err := auth.CustomerEmail(c)
	if err != nil {
		return response.Error(c, err)
	}
	var payload dto.DeviceTokenRequest
	if err := request.Bind(c, &payload); err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customer.registerDeviceToken")
	defer span.End()

	if err := h.notifications.RegisterDeviceToken(ctx, email, payload.Token); err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, dto.ResultResponse{Result: true})
}
