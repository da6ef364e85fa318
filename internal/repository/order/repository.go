package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/runner/internal/database"
	"github.com/Additional-Code/runner/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/runner/repository/order")

var (
	// ErrNotFound is returned when an order is missing.
	ErrNotFound = errors.New("order not found")
	// ErrStaleStatus is returned when an order left the expected status
	// before the update was written.
	ErrStaleStatus = errors.New("order status changed concurrently")
)

// Filter narrows order listings of a shop. Zero values mean "no bound".
type Filter struct {
	From   time.Time
	To     time.Time
	Status entity.OrderStatus
}

// Store is the order persistence contract used by services.
type Store interface {
	Create(ctx context.Context, order *entity.Order) error
	ListByShop(ctx context.Context, shopID int64, filter Filter) ([]*entity.Order, error)
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	UpdateStatus(ctx context.Context, order *entity.Order, from entity.OrderStatus) error
	SumRevenue(ctx context.Context, shopID int64, from, to time.Time) (int64, error)
}

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists an order and its lines in one transaction.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.Int64("shop.id", order.ShopID)))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		if len(order.Menus) == 0 {
			return nil
		}
		for _, line := range order.Menus {
			line.OrderID = order.ID
		}
		_, err := tx.NewInsert().Model(&order.Menus).Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// ListByShop returns the orders of a shop, newest first, with customer and lines.
func (r *Repository) ListByShop(ctx context.Context, shopID int64, filter Filter) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByShop", trace.WithAttributes(
		attribute.Int64("shop.id", shopID),
		attribute.String("order.status", string(filter.Status)),
	))
	defer span.End()

	var orders []*entity.Order
	q := r.reader.NewSelect().Model(&orders).
		Relation("Customer").
		Relation("Menus", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("om.id ASC")
		}).
		Where("o.shop_id = ?", shopID)
	if !filter.From.IsZero() {
		q = q.Where("o.created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("o.created_at < ?", filter.To)
	}
	if filter.Status != "" {
		q = q.Where("o.status = ?", filter.Status)
	}

	if err := q.Order("o.created_at DESC", "o.id DESC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// GetByID fetches an order with its customer using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Relation("Customer").Where("o.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// UpdateStatus writes the status and updated_at columns of an order that
// is still in status from.
func (r *Repository) UpdateStatus(ctx context.Context, order *entity.Order, from entity.OrderStatus) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.String("order.status", string(order.Status)),
		attribute.String("order.previous_status", string(from)),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(order).
		Column("status", "updated_at").
		WherePK().
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	exists, err := r.writer.NewSelect().Model((*entity.Order)(nil)).Where("o.id = ?", order.ID).Exists(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !exists {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	span.SetStatus(codes.Error, "stale status")
	return ErrStaleStatus
}

// SumRevenue totals completed orders of a shop created in [from, to).
// A zero from means "since the beginning".
func (r *Repository) SumRevenue(ctx context.Context, shopID int64, from, to time.Time) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.SumRevenue", trace.WithAttributes(attribute.Int64("shop.id", shopID)))
	defer span.End()

	q := r.reader.NewSelect().Model((*entity.Order)(nil)).
		ColumnExpr("COALESCE(SUM(o.total_price), 0)").
		Where("o.shop_id = ?", shopID).
		Where("o.status = ?", entity.OrderStatusCompleted).
		Where("o.created_at < ?", to)
	if !from.IsZero() {
		q = q.Where("o.created_at >= ?", from)
	}

	var total int64
	if err := q.Scan(ctx, &total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return 0, err
	}
	return total, nil
}
