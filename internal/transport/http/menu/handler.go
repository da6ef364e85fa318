package menu

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/runner/internal/auth"
	"github.com/Additional-Code/runner/internal/dto"
	"github.com/Additional-Code/runner/internal/presentation/http/request"
	"github.com/Additional-Code/runner/internal/presentation/http/response"
	service "github.com/Additional-Code/runner/internal/service/menu"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/runner/transport/http/menu")

// Handler exposes menu endpoints to partners and customers.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a menu Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts partner menu management under partner and the menu view
// and likes under customer.
func Register(partner, customer *echo.Group, h *Handler) {
	g := partner.Group("/menu")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:menuId", h.get)
	g.PUT("/:menuId", h.update)
	g.DELETE("/:menuId", h.delete)
	g.PUT("/:menuId/status", h.updateStatus)
	g.POST("/:menuId/size", h.createSize)
	g.PUT("/:menuId/size", h.updateSize)
	g.DELETE("/:menuId/size/:sizeId", h.deleteSize)
	g.POST("/:menuId/extra", h.createExtra)
	g.DELETE("/:menuId/extra/:extraId", h.deleteExtra)

	customer.GET("/shops/:shopId/menus/:menuId", h.detail)
	customer.POST("/menus/:menuId/like", h.like)
	customer.DELETE("/menus/:menuId/like", h.unlike)
}

func (h *Handler) create(c echo.Context) error {
	email, err := auth.PartnerEmail(c)
	if err != nil {
		return response.Error(c, err)
	}
	var payload dto.MenuRequest
	if err := request.Bind(c, &payload); err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.create", trace.WithAttributes(attribute.Int64("category.id", payload.CategoryID)))
	defer span.End()

	menu, err := h.svc.CreateMenu(ctx, email, payload)
	if err != nil {
		return response.Error(c, err)
	}
	return response.New(c).WithStatus(http.StatusCreated).WithData(menu).Build()
}

func (h *Handler) list(c echo.Context) error {
	email, err := auth.PartnerEmail(c)
	if err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.list")
	defer span.End()

	menus, err := h.svc.ListShopMenus(ctx, email)
	if err != nil {
		return response.Error(c, err)
	}
	return response.New(c).WithData(menus).WithMeta("count", len(menus.MenuList)).Build()
}

func (h *Handler) get(c echo.Context) error {
	email, menuID, err := partnerMenu(c)
	if err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.get", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	menu, err := h.svc.GetShopMenu(ctx, email, menuID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, menu)
}

func (h *Handler) update(c echo.Context) error {
	email, menuID, err := partnerMenu(c)
	if err != nil {
		return response.Error(c, err)
	}
	var payload dto.MenuRequest
	if err := request.Bind(c, &payload); err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.update", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	menu, err := h.svc.UpdateMenu(ctx, email, menuID, payload)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, menu)
}

func (h *Handler) delete(c echo.Context) error {
	email, menuID, err := partnerMenu(c)
	if err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.delete", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	result, err := h.svc.DeleteMenu(ctx, email, menuID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, result)
}

func (h *Handler) updateStatus(c echo.Context) error {
	email, menuID, err := partnerMenu(c)
	if err != nil {
		return response.Error(c, err)
	}
	var payload dto.MenuStatusRequest
	if err := request.Bind(c, &payload); err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.updateStatus", trace.WithAttributes(
		attribute.Int64("menu.id", menuID),
		attribute.String("menu.status", payload.Status),
	))
	defer span.End()

	menu, err := h.svc.UpdateMenuStatus(ctx, email, menuID, payload.Status)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, menu)
}

func (h *Handler) createSize(c echo.Context) error {
	email, menuID, err := partnerMenu(c)
	if err != nil {
		return response.Error(c, err)
	}
	var payload dto.MenuSizeRequest
	if err := request.Bind(c, &payload); err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.createSize", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	size, err := h.svc.CreateMenuSize(ctx, email, menuID, payload)
	if err != nil {
		return response.Error(c, err)
	}
	return response.New(c).WithStatus(http.StatusCreated).WithData(size).Build()
}

func (h *Handler) updateSize(c echo.Context) error {
	email, menuID, err := partnerMenu(c)
	if err != nil {
		return response.Error(c, err)
	}
	var payload dto.MenuSizeRequest
	if err := request.Bind(c, &payload); err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.updateSize", trace.WithAttributes(attribute.Int64("menu_size.id", payload.MenuSizeID)))
	defer span.End()

	size, err := h.svc.UpdateMenuSize(ctx, email, menuID, payload)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, size)
}

func (h *Handler) deleteSize(c echo.Context) error {
	email, menuID, err := partnerMenu(c)
	if err != nil {
		return response.Error(c, err)
	}
	menuSizeID, err := request.PathID(c, "sizeId")
	if err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.deleteSize", trace.WithAttributes(attribute.Int64("menu_size.id", menuSizeID)))
	defer span.End()

	result, err := h.svc.DeleteMenuSize(ctx, email, menuID, menuSizeID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, result)
}

func (h *Handler) createExtra(c echo.Context) error {
	email, menuID, err := partnerMenu(c)
	if err != nil {
		return response.Error(c, err)
	}
	var payload dto.ExtraRequest
	if err := request.Bind(c, &payload); err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.createExtra", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	extra, err := h.svc.CreateExtra(ctx, email, menuID, payload)
	if err != nil {
		return response.Error(c, err)
	}
	return response.New(c).WithStatus(http.StatusCreated).WithData(extra).Build()
}

func (h *Handler) deleteExtra(c echo.Context) error {
	email, menuID, err := partnerMenu(c)
	if err != nil {
		return response.Error(c, err)
	}
	extraID, err := request.PathID(c, "extraId")
	if err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.deleteExtra", trace.WithAttributes(attribute.Int64("extra.id", extraID)))
	defer span.End()

	result, err := h.svc.DeleteExtra(ctx, email, menuID, extraID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, result)
}

func (h *Handler) detail(c echo.Context) error {
	email, err := auth.CustomerEmail(c)
	if err != nil {
		return response.Error(c, err)
	}
	shopID, err := request.PathID(c, "shopId")
	if err != nil {
		return response.Error(c, err)
	}
	menuID, err := request.PathID(c, "menuId")
	if err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.detail", trace.WithAttributes(
		attribute.Int64("shop.id", shopID),
		attribute.Int64("menu.id", menuID),
	))
	defer span.End()

	menu, err := h.svc.GetMenuDetail(ctx, email, shopID, menuID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, menu)
}

func (h *Handler) like(c echo.Context) error {
	email, menuID, err := customerMenu(c)
	if err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.like", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	result, err := h.svc.LikeMenu(ctx, email, menuID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, result)
}

func (h *Handler) unlike(c echo.Context) error {
	email, menuID, err := customerMenu(c)
	if err != nil {
		return response.Error(c, err)
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.unlike", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	result, err := h.svc.UnlikeMenu(ctx, email, menuID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, result)
}

func partnerMenu(c echo.Context) (string, int64, error) {
	email, err := auth.PartnerEmail(c)
	if err != nil {
		return "", 0, err
	}
	menuID, err := request.PathID(c, "menuId")
	if err != nil {
		return "", 0, err
	}
	return email, menuID, nil
}

func customerMenu(c echo.Context) (string, int64, error) {
	email, err := auth.CustomerEmail(c)
	if err != nil {
		return "", 0, err
	}
	menuID, err := request.PathID(c, "menuId")
	if err != nil {
		return "", 0, err
	}
	return email, menuID, nil
}
