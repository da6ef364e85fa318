package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/runner/internal/database"
	"github.com/Additional-Code/runner/internal/entity"
	repoorder "github.com/Additional-Code/runner/internal/repository/order"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Demo account emails, usable with `runner token issue`.
const (
	DemoPartnerEmail  = "partner@runner.dev"
	DemoCustomerEmail = "customer@runner.dev"
)

var (
	categoryNames = []string{"Coffee", "Tea", "Dessert", "Bakery"}
	sizeNames     = []string{"S", "M", "L"}
)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	orders repoorder.Store
	logger *zap.Logger
	now    func() time.Time
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, orders repoorder.Store, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, orders: orders, logger: logger, now: time.Now}
}

// Run seeds the catalog and the demo accounts.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.Catalog(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if err := s.Accounts(ctx); err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}
	return nil
}

// Catalog inserts the categories and sizes menus can reference.
func (s *Seeder) Catalog(ctx context.Context) error {
	categories := make([]entity.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		categories = append(categories, entity.Category{Name: name})
	}
	if _, err := s.db.NewInsert().Model(&categories).
		On("CONFLICT (name) DO NOTHING").
		Returning("NULL").
		Exec(ctx); err != nil {
		return err
	}

	sizes := make([]entity.Size, 0, len(sizeNames))
	for _, name := range sizeNames {
		sizes = append(sizes, entity.Size{Name: name})
	}
	if _, err := s.db.NewInsert().Model(&sizes).
		On("CONFLICT (name) DO NOTHING").
		Returning("NULL").
		Exec(ctx); err != nil {
		return err
	}

	s.logger.Info("seeded catalog", zap.Int("categories", len(categories)), zap.Int("sizes", len(sizes)))
	return nil
}

// Accounts creates the demo shop with its partner, a demo customer and a
// few orders. It does nothing once the demo partner exists.
func (s *Seeder) Accounts(ctx context.Context) error {
	exists, err := s.db.NewSelect().
		Model((*entity.Partner)(nil)).
		Where("email = ?", DemoPartnerEmail).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("demo accounts already seeded", zap.String("partner", DemoPartnerEmail))
		return nil
	}

	now := s.now().UTC()
	shop := &entity.Shop{Name: "Runner Coffee", Phone: "02-000-0000", Address: "Seoul", CreatedAt: now}
	customer := &entity.Customer{Email: DemoCustomerEmail, Nickname: "demo", CreatedAt: now}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(shop).Exec(ctx); err != nil {
			return err
		}
		partner := &entity.Partner{Email: DemoPartnerEmail, Name: "Demo Partner", ShopID: shop.ID}
		if _, err := tx.NewInsert().Model(partner).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(customer).
			On("CONFLICT (email) DO UPDATE").
			Set("nickname = EXCLUDED.nickname").
			Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}

	for _, order := range demoOrders(shop.ID, customer.ID, now) {
		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("seed order: %w", err)
		}
	}

	s.logger.Info("seeded demo accounts",
		zap.Int64("shop_id", shop.ID),
		zap.String("partner", DemoPartnerEmail),
		zap.String("customer", DemoCustomerEmail),
	)
	return nil
}

func demoOrders(shopID, customerID int64, now time.Time) []*entity.Order {
	line := func(name string, count int, price int64) *entity.OrderMenu {
		return &entity.OrderMenu{MenuName: name, SizeName: "M", Count: count, Price: price}
	}
	return []*entity.Order{
		{
			ShopID: shopID, CustomerID: customerID, Status: entity.OrderStatusCompleted,
			TotalPrice: 9000, CreatedAt: now.Add(-24 * time.Hour),
			Menus: []*entity.OrderMenu{line("Americano", 2, 4500)},
		},
		{
			ShopID: shopID, CustomerID: customerID, Status: entity.OrderStatusRequested,
			TotalPrice: 5500, Request: "less ice", CreatedAt: now,
			Menus: []*entity.OrderMenu{line("Latte", 1, 5500)},
		},
	}
}
