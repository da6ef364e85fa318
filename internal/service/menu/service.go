package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/runner/internal/cache"
	"github.com/Additional-Code/runner/internal/config"
	"github.com/Additional-Code/runner/internal/dto"
	"github.com/Additional-Code/runner/internal/entity"
	"github.com/Additional-Code/runner/internal/observability"
	"github.com/Additional-Code/runner/internal/repository/account"
	"github.com/Additional-Code/runner/internal/repository/catalog"
	repo "github.com/Additional-Code/runner/internal/repository/menu"
	"github.com/Additional-Code/runner/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/runner/service/menu")

// menuColumns are the fields UpdateMenu may change.
var menuColumns = []string{"category_id", "name", "img_url", "price", "is_signature", "updated_at"}

// Service implements partner menu management and the customer menu view.
type Service struct {
	accounts account.Store
	catalog  catalog.Store
	menus    repo.Store
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Accounts account.Store
	Catalog  catalog.Store
	Menus    repo.Store
	Cache    cache.Store
	Config   config.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics `optional:"true"`
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		accounts: p.Accounts,
		catalog:  p.Catalog,
		menus:    p.Menus,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,
		metrics:  p.Metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateMenu adds a menu to the partner's shop. New menus are not on sale.
func (s *Service) CreateMenu(ctx context.Context, email string, req dto.MenuRequest) (*dto.MenuResponse, error) {
	if err := validateMenu(req); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "MenuService.CreateMenu")
	defer span.End()

	shopID, err := s.shopOf(ctx, email)
	if err != nil {
		return nil, err
	}
	category, err := s.category(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	menu := &entity.Menu{
		ShopID:      shopID,
		CategoryID:  category.ID,
		Category:    category,
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		ImgURL:      req.ImgURL,
		IsSignature: req.Signature,
		Status:      entity.MenuStatusNotSale,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.menus.Create(ctx, menu); err != nil {
		return nil, internal(span, "failed to create menu", err)
	}
	s.changed(ctx, shopID, "create")

	resp := toMenuResponse(menu)
	return &resp, nil
}

// ListShopMenus returns every menu of the partner's shop.
func (s *Service) ListShopMenus(ctx context.Context, email string) (*dto.MenuListResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.ListShopMenus")
	defer span.End()

	shopID, err := s.shopOf(ctx, email)
	if err != nil {
		return nil, err
	}

	var cached dto.MenuListResponse
	err = cache.GetJSON(ctx, s.cache, cacheKey(shopID), &cached)
	if err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("menu cache read failed", zap.Int64("shop_id", shopID), zap.Error(err))
	}

	menus, err := s.menus.ListByShop(ctx, shopID)
	if err != nil {
		return nil, internal(span, "failed to load menus", err)
	}
	resp := &dto.MenuListResponse{MenuList: make([]dto.MenuResponse, 0, len(menus))}
	for _, m := range menus {
		resp.MenuList = append(resp.MenuList, toMenuResponse(m))
	}

	if err := cache.SetJSON(ctx, s.cache, cacheKey(shopID), resp, s.cacheTTL); err != nil {
		s.logger.Warn("menu cache write failed", zap.Int64("shop_id", shopID), zap.Error(err))
	}
	return resp, nil
}

// GetShopMenu returns one menu of the partner's shop.
func (s *Service) GetShopMenu(ctx context.Context, email string, menuID int64) (*dto.MenuResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.GetShopMenu", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	_, menu, err := s.ownedMenu(ctx, email, menuID)
	if err != nil {
		return nil, err
	}
	resp := toMenuResponse(menu)
	return &resp, nil
}

// UpdateMenu replaces category, name, image, price and signature of a menu.
// Status, sizes and extras are left untouched.
func (s *Service) UpdateMenu(ctx context.Context, email string, menuID int64, req dto.MenuRequest) (*dto.MenuResponse, error) {
	if err := validateMenu(req); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "MenuService.UpdateMenu", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	shopID, menu, err := s.ownedMenu(ctx, email, menuID)
	if err != nil {
		return nil, err
	}
	category, err := s.category(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	menu.CategoryID = category.ID
	menu.Category = category
	menu.Name = strings.TrimSpace(req.Name)
	menu.ImgURL = req.ImgURL
	menu.Price = req.Price
	menu.IsSignature = req.Signature
	menu.UpdatedAt = s.now()

	if err := s.menus.Update(ctx, menu, menuColumns...); err != nil {
		return nil, s.menuErr(span, "failed to update menu", err)
	}
	s.changed(ctx, shopID, "update")

	resp := toMenuResponse(menu)
	return &resp, nil
}

// DeleteMenu removes a menu with its sizes, extras and likes.
func (s *Service) DeleteMenu(ctx context.Context, email string, menuID int64) (*dto.ResultResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.DeleteMenu", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	shopID, _, err := s.ownedMenu(ctx, email, menuID)
	if err != nil {
		return nil, err
	}
	if err := s.menus.Delete(ctx, menuID); err != nil {
		return nil, s.menuErr(span, "failed to delete menu", err)
	}
	s.changed(ctx, shopID, "delete")
	return &dto.ResultResponse{Result: true}, nil
}

// UpdateMenuStatus sets the sale status of a menu.
func (s *Service) UpdateMenuStatus(ctx context.Context, email string, menuID int64, status string) (*dto.MenuResponse, error) {
	next, ok := entity.ParseMenuStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !ok {
		return nil, errorbank.BadRequest("unknown menu status", errorbank.WithDetail("status", status))
	}
	ctx, span := serviceTracer.Start(ctx, "MenuService.UpdateMenuStatus", trace.WithAttributes(
		attribute.Int64("menu.id", menuID),
		attribute.String("menu.status", string(next)),
	))
	defer span.End()

	shopID, menu, err := s.ownedMenu(ctx, email, menuID)
	if err != nil {
		return nil, err
	}
	menu.Status = next
	menu.UpdatedAt = s.now()
	if err := s.menus.Update(ctx, menu, "status", "updated_at"); err != nil {
		return nil, s.menuErr(span, "failed to update menu status", err)
	}
	s.changed(ctx, shopID, "status")

	resp := toMenuResponse(menu)
	return &resp, nil
}

// CreateMenuSize offers a menu in a catalog size at a price.
func (s *Service) CreateMenuSize(ctx context.Context, email string, menuID int64, req dto.MenuSizeRequest) (*dto.MenuSizeResponse, error) {
	if req.Price < 0 {
		return nil, errorbank.BadRequest("price must not be negative")
	}
	ctx, span := serviceTracer.Start(ctx, "MenuService.CreateMenuSize", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	shopID, menu, err := s.ownedMenu(ctx, email, menuID)
	if err != nil {
		return nil, err
	}
	size, err := s.size(ctx, req.SizeID)
	if err != nil {
		return nil, err
	}
	for _, existing := range menu.Sizes {
		if existing.SizeID == size.ID {
			return nil, errorbank.Conflict("menu already offers this size", errorbank.WithDetail("menuSizeId", existing.ID))
		}
	}

	menuSize := &entity.MenuSize{MenuID: menu.ID, SizeID: size.ID, Size: size, Price: req.Price}
	if err := s.menus.CreateSize(ctx, menuSize); err != nil {
		return nil, s.menuErr(span, "failed to create menu size", err)
	}
	s.changed(ctx, shopID, "size.create")

	resp := toMenuSizeResponse(menuSize)
	return &resp, nil
}

// UpdateMenuSize changes the size and price of an existing size option.
func (s *Service) UpdateMenuSize(ctx context.Context, email string, menuID int64, req dto.MenuSizeRequest) (*dto.MenuSizeResponse, error) {
	if req.Price < 0 {
		return nil, errorbank.BadRequest("price must not be negative")
	}
	ctx, span := serviceTracer.Start(ctx, "MenuService.UpdateMenuSize", trace.WithAttributes(
		attribute.Int64("menu.id", menuID),
		attribute.Int64("menu_size.id", req.MenuSizeID),
	))
	defer span.End()

	shopID, menu, err := s.ownedMenu(ctx, email, menuID)
	if err != nil {
		return nil, err
	}
	menuSize, err := s.menus.FindSize(ctx, menuID, req.MenuSizeID)
	if err != nil {
		return nil, s.menuErr(span, "failed to load menu size", err)
	}
	size, err := s.size(ctx, req.SizeID)
	if err != nil {
		return nil, err
	}
	for _, existing := range menu.Sizes {
		if existing.SizeID == size.ID && existing.ID != menuSize.ID {
			return nil, errorbank.Conflict("menu already offers this size", errorbank.WithDetail("menuSizeId", existing.ID))
		}
	}

	menuSize.SizeID = size.ID
	menuSize.Size = size
	menuSize.Price = req.Price
	if err := s.menus.UpdateSize(ctx, menuSize); err != nil {
		return nil, s.menuErr(span, "failed to update menu size", err)
	}
	s.changed(ctx, shopID, "size.update")

	resp := toMenuSizeResponse(menuSize)
	return &resp, nil
}

// DeleteMenuSize removes a size option from a menu.
func (s *Service) DeleteMenuSize(ctx context.Context, email string, menuID, menuSizeID int64) (*dto.ResultResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.DeleteMenuSize", trace.WithAttributes(attribute.Int64("menu_size.id", menuSizeID)))
	defer span.End()

	shopID, _, err := s.ownedMenu(ctx, email, menuID)
	if err != nil {
		return nil, err
	}
	if err := s.menus.DeleteSize(ctx, menuID, menuSizeID); err != nil {
		return nil, s.menuErr(span, "failed to delete menu size", err)
	}
	s.changed(ctx, shopID, "size.delete")
	return &dto.ResultResponse{Result: true}, nil
}

// CreateExtra adds an extra to a menu.
func (s *Service) CreateExtra(ctx context.Context, email string, menuID int64, req dto.ExtraRequest) (*dto.ExtraResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorbank.BadRequest("name is required")
	}
	if req.Price < 0 {
		return nil, errorbank.BadRequest("price must not be negative")
	}
	ctx, span := serviceTracer.Start(ctx, "MenuService.CreateExtra", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	shopID, _, err := s.ownedMenu(ctx, email, menuID)
	if err != nil {
		return nil, err
	}
	extra := &entity.Extra{MenuID: menuID, Name: name, Price: req.Price}
	if err := s.menus.CreateExtra(ctx, extra); err != nil {
		return nil, internal(span, "failed to create extra", err)
	}
	s.changed(ctx, shopID, "extra.create")

	resp := toExtraResponse(extra)
	return &resp, nil
}

// DeleteExtra removes an extra from a menu.
func (s *Service) DeleteExtra(ctx context.Context, email string, menuID, extraID int64) (*dto.ResultResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.DeleteExtra", trace.WithAttributes(attribute.Int64("extra.id", extraID)))
	defer span.End()

	shopID, _, err := s.ownedMenu(ctx, email, menuID)
	if err != nil {
		return nil, err
	}
	if err := s.menus.DeleteExtra(ctx, menuID, extraID); err != nil {
		return nil, s.menuErr(span, "failed to delete extra", err)
	}
	s.changed(ctx, shopID, "extra.delete")
	return &dto.ResultResponse{Result: true}, nil
}

// GetMenuDetail returns a shop's menu as a customer sees it, including
// whether that customer liked it.
func (s *Service) GetMenuDetail(ctx context.Context, email string, shopID, menuID int64) (*dto.MenuDetailResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.GetMenuDetail", trace.WithAttributes(
		attribute.Int64("shop.id", shopID),
		attribute.Int64("menu.id", menuID),
	))
	defer span.End()

	menu, err := s.menus.FindByShop(ctx, shopID, menuID)
	if err != nil {
		return nil, s.menuErr(span, "failed to load menu", err)
	}
	customer, err := s.customer(ctx, email)
	if err != nil {
		return nil, err
	}
	liked, err := s.menus.IsLiked(ctx, menuID, customer.ID)
	if err != nil {
		return nil, internal(span, "failed to load like", err)
	}
	return &dto.MenuDetailResponse{MenuResponse: toMenuResponse(menu), Liked: liked}, nil
}

// LikeMenu marks a menu as liked by the customer. Liking twice is a no-op.
func (s *Service) LikeMenu(ctx context.Context, email string, menuID int64) (*dto.ResultResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.LikeMenu", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	customer, err := s.likable(ctx, span, email, menuID)
	if err != nil {
		return nil, err
	}
	if err := s.menus.Like(ctx, menuID, customer.ID); err != nil {
		return nil, internal(span, "failed to like menu", err)
	}
	return &dto.ResultResponse{Result: true}, nil
}

// UnlikeMenu removes the customer's like. Unliking twice is a no-op.
func (s *Service) UnlikeMenu(ctx context.Context, email string, menuID int64) (*dto.ResultResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.UnlikeMenu", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	customer, err := s.likable(ctx, span, email, menuID)
	if err != nil {
		return nil, err
	}
	if err := s.menus.Unlike(ctx, menuID, customer.ID); err != nil {
		return nil, internal(span, "failed to unlike menu", err)
	}
	return &dto.ResultResponse{Result: true}, nil
}

func (s *Service) likable(ctx context.Context, span trace.Span, email string, menuID int64) (*entity.Customer, error) {
	customer, err := s.customer(ctx, email)
	if err != nil {
		return nil, err
	}
	ok, err := s.menus.Exists(ctx, menuID)
	if err != nil {
		return nil, internal(span, "failed to load menu", err)
	}
	if !ok {
		return nil, errorbank.NotFound("menu not found")
	}
	return customer, nil
}

// shopOf resolves the shop owned by the partner with email.
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

func (s *Service) ownedMenu(ctx context.Context, email string, menuID int64) (int64, *entity.Menu, error) {
	shopID, err := s.shopOf(ctx, email)
	if err != nil {
		return 0, nil, err
	}
	menu, err := s.menus.FindByShop(ctx, shopID, menuID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, nil, errorbank.NotFound("menu not found")
		}
		return 0, nil, errorbank.Internal("failed to load menu", errorbank.WithCause(err))
	}
	return shopID, menu, nil
}

func (s *Service) customer(ctx context.Context, email string) (*entity.Customer, error) {
	customer, err := s.accounts.FindCustomerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrCustomerNotFound) {
			return nil, errorbank.NotFound("customer not found")
		}
		return nil, errorbank.Internal("failed to load customer", errorbank.WithCause(err))
	}
	return customer, nil
}

func (s *Service) category(ctx context.Context, id int64) (*entity.Category, error) {
	category, err := s.catalog.FindCategory(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			return nil, errorbank.NotFound("category not found", errorbank.WithDetail("categoryId", id))
		}
		return nil, errorbank.Internal("failed to load category", errorbank.WithCause(err))
	}
	return category, nil
}

func (s *Service) size(ctx context.Context, id int64) (*entity.Size, error) {
	size, err := s.catalog.FindSize(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrSizeNotFound) {
			return nil, errorbank.NotFound("size not found", errorbank.WithDetail("sizeId", id))
		}
		return nil, errorbank.Internal("failed to load size", errorbank.WithCause(err))
	}
	return size, nil
}

// menuErr maps repository sentinels to not-found and conflict errors and anything else to internal.
func (s *Service) menuErr(span trace.Span, msg string, err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return errorbank.NotFound("menu not found")
	case errors.Is(err, repo.ErrSizeNotFound):
		return errorbank.NotFound("menu size not found")
	case errors.Is(err, repo.ErrExtraNotFound):
		return errorbank.NotFound("extra not found")
	case errors.Is(err, repo.ErrSizeTaken):
		return errorbank.Conflict("menu already offers this size")
	}
	return internal(span, msg, err)
}

// changed records a menu write and drops the shop's cached menu list.
func (s *Service) changed(ctx context.Context, shopID int64, op string) {
	s.metrics.MenuChanged(ctx, op)
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(shopID)); err != nil {
		s.logger.Warn("menu cache invalidation failed", zap.Int64("shop_id", shopID), zap.Error(err))
	}
}

func cacheKey(shopID int64) string {
	return fmt.Sprintf("menus:shop:%d", shopID)
}

func validateMenu(req dto.MenuRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return errorbank.BadRequest("name is required")
	}
	if req.Price < 0 {
		return errorbank.BadRequest("price must not be negative")
	}
	return nil
}

func internal(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return errorbank.Internal(msg, errorbank.WithCause(err))
}
