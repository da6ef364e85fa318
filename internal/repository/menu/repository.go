package menu

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/runner/internal/database"
	"github.com/Additional-Code/runner/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/runner/repository/menu")

var (
	// ErrNotFound is returned when a menu is missing or belongs to another shop.
	ErrNotFound = errors.New("menu not found")
	// ErrSizeNotFound is returned when a menu size is missing from its menu.
	ErrSizeNotFound = errors.New("menu size not found")
	// ErrExtraNotFound is returned when an extra is missing from its menu.
	ErrExtraNotFound = errors.New("extra not found")
	// ErrSizeTaken is returned when a menu already offers the size.
	ErrSizeTaken = errors.New("menu already offers this size")
)

// Store is the menu persistence contract used by services.
type Store interface {
	Create(ctx context.Context, menu *entity.Menu) error
	ListByShop(ctx context.Context, shopID int64) ([]*entity.Menu, error)
	FindByShop(ctx context.Context, shopID, menuID int64) (*entity.Menu, error)
	Exists(ctx context.Context, menuID int64) (bool, error)
	Update(ctx context.Context, menu *entity.Menu, columns ...string) error
	Delete(ctx context.Context, menuID int64) error

	CreateSize(ctx context.Context, size *entity.MenuSize) error
	FindSize(ctx context.Context, menuID, menuSizeID int64) (*entity.MenuSize, error)
	UpdateSize(ctx context.Context, size *entity.MenuSize) error
	DeleteSize(ctx context.Context, menuID, menuSizeID int64) error

	CreateExtra(ctx context.Context, extra *entity.Extra) error
	DeleteExtra(ctx context.Context, menuID, extraID int64) error

	IsLiked(ctx context.Context, menuID, customerID int64) (bool, error)
	Like(ctx context.Context, menuID, customerID int64) error
	Unlike(ctx context.Context, menuID, customerID int64) error
}

// Repository encapsulates read/write access for menus and their options.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// Create persists a new menu using the write connection.
func (r *Repository) Create(ctx context.Context, menu *entity.Menu) error {
	if menu == nil {
		return errors.New("nil menu")
	}
	ctx, span := repoTracer.Start(ctx, "MenuRepository.Create", trace.WithAttributes(
		attribute.Int64("shop.id", menu.ShopID),
		attribute.String("menu.name", menu.Name),
	))
	defer span.End()

	_, err := r.writer.NewInsert().Model(menu).Exec(ctx)
	return fail(span, err, "insert failed")
}

// ListByShop returns every menu of a shop with category, sizes and extras.
func (r *Repository) ListByShop(ctx context.Context, shopID int64) ([]*entity.Menu, error) {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.ListByShop", trace.WithAttributes(attribute.Int64("shop.id", shopID)))
	defer span.End()

	var menus []*entity.Menu
	err := r.withDetails(r.reader.NewSelect().Model(&menus)).
		Where("m.shop_id = ?", shopID).
		Order("m.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fail(span, err, "select failed")
	}
	return menus, nil
}

// FindByShop loads one menu with its details, scoped to the owning shop.
func (r *Repository) FindByShop(ctx context.Context, shopID, menuID int64) (*entity.Menu, error) {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.FindByShop", trace.WithAttributes(
		attribute.Int64("shop.id", shopID),
		attribute.Int64("menu.id", menuID),
	))
	defer span.End()

	menu := new(entity.Menu)
	err := r.withDetails(r.reader.NewSelect().Model(menu)).
		Where("m.id = ?", menuID).
		Where("m.shop_id = ?", shopID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fail(span, err, "select failed")
	}
	return menu, nil
}

// Exists reports whether a menu with menuID exists in any shop.
func (r *Repository) Exists(ctx context.Context, menuID int64) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.Exists", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	ok, err := r.reader.NewSelect().Model((*entity.Menu)(nil)).Where("m.id = ?", menuID).Exists(ctx)
	if err != nil {
		return false, fail(span, err, "select failed")
	}
	return ok, nil
}

// Update writes the given columns of a menu.
func (r *Repository) Update(ctx context.Context, menu *entity.Menu, columns ...string) error {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.Update", trace.WithAttributes(attribute.Int64("menu.id", menu.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(menu).Column(columns...).WherePK().Exec(ctx)
	if err != nil {
		return fail(span, err, "update failed")
	}
	return affected(res, ErrNotFound)
}

// Delete removes a menu; sizes, extras and likes cascade.
func (r *Repository) Delete(ctx context.Context, menuID int64) error {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.Delete", trace.WithAttributes(attribute.Int64("menu.id", menuID)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.Menu)(nil)).Where("id = ?", menuID).Exec(ctx)
	if err != nil {
		return fail(span, err, "delete failed")
	}
	return affected(res, ErrNotFound)
}

// CreateSize adds a size option to a menu.
func (r *Repository) CreateSize(ctx context.Context, size *entity.MenuSize) error {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.CreateSize", trace.WithAttributes(attribute.Int64("menu.id", size.MenuID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(size).Exec(ctx)
	if database.IsUniqueViolation(err) {
		span.SetStatus(codes.Error, "duplicate size")
		return ErrSizeTaken
	}
	return fail(span, err, "insert failed")
}

// FindSize loads a size option scoped to its menu.
func (r *Repository) FindSize(ctx context.Context, menuID, menuSizeID int64) (*entity.MenuSize, error) {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.FindSize", trace.WithAttributes(attribute.Int64("menu_size.id", menuSizeID)))
	defer span.End()

	size := new(entity.MenuSize)
	err := r.reader.NewSelect().Model(size).Relation("Size").
		Where("ms.id = ?", menuSizeID).
		Where("ms.menu_id = ?", menuID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrSizeNotFound
	}
	if err != nil {
		return nil, fail(span, err, "select failed")
	}
	return size, nil
}

// UpdateSize writes the size and price of a size option.
func (r *Repository) UpdateSize(ctx context.Context, size *entity.MenuSize) error {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.UpdateSize", trace.WithAttributes(attribute.Int64("menu_size.id", size.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(size).Column("size_id", "price").WherePK().Exec(ctx)
	if database.IsUniqueViolation(err) {
		span.SetStatus(codes.Error, "duplicate size")
		return ErrSizeTaken
	}
	if err != nil {
		return fail(span, err, "update failed")
	}
	return affected(res, ErrSizeNotFound)
}

// DeleteSize removes a size option from a menu.
func (r *Repository) DeleteSize(ctx context.Context, menuID, menuSizeID int64) error {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.DeleteSize", trace.WithAttributes(attribute.Int64("menu_size.id", menuSizeID)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.MenuSize)(nil)).
		Where("id = ?", menuSizeID).
		Where("menu_id = ?", menuID).
		Exec(ctx)
	if err != nil {
		return fail(span, err, "delete failed")
	}
	return affected(res, ErrSizeNotFound)
}

// CreateExtra adds an extra to a menu.
func (r *Repository) CreateExtra(ctx context.Context, extra *entity.Extra) error {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.CreateExtra", trace.WithAttributes(attribute.Int64("menu.id", extra.MenuID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(extra).Exec(ctx)
	return fail(span, err, "insert failed")
}

// DeleteExtra removes an extra from a menu.
func (r *Repository) DeleteExtra(ctx context.Context, menuID, extraID int64) error {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.DeleteExtra", trace.WithAttributes(attribute.Int64("extra.id", extraID)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.Extra)(nil)).
		Where("id = ?", extraID).
		Where("menu_id = ?", menuID).
		Exec(ctx)
	if err != nil {
		return fail(span, err, "delete failed")
	}
	return affected(res, ErrExtraNotFound)
}

// IsLiked reports whether the customer liked the menu.
func (r *Repository) IsLiked(ctx context.Context, menuID, customerID int64) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.IsLiked")
	defer span.End()

	ok, err := r.reader.NewSelect().Model((*entity.CustomerMenu)(nil)).
		Where("cm.menu_id = ?", menuID).
		Where("cm.customer_id = ?", customerID).
		Exists(ctx)
	if err != nil {
		return false, fail(span, err, "select failed")
	}
	return ok, nil
}

// Like records a like; liking twice is a no-op.
func (r *Repository) Like(ctx context.Context, menuID, customerID int64) error {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.Like")
	defer span.End()

	like := &entity.CustomerMenu{MenuID: menuID, CustomerID: customerID}
	_, err := r.writer.NewInsert().Model(like).
		On("CONFLICT (customer_id, menu_id) DO NOTHING").
		Exec(ctx)
	return fail(span, err, "insert failed")
}

// Unlike removes a like if present.
func (r *Repository) Unlike(ctx context.Context, menuID, customerID int64) error {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.Unlike")
	defer span.End()

	_, err := r.writer.NewDelete().Model((*entity.CustomerMenu)(nil)).
		Where("menu_id = ?", menuID).
		Where("customer_id = ?", customerID).
		Exec(ctx)
	return fail(span, err, "delete failed")
}

func (r *Repository) withDetails(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Category").
		Relation("Sizes", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("ms.id ASC")
		}).
		Relation("Sizes.Size").
		Relation("Extras", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("e.id ASC")
		})
}

func fail(span trace.Span, err error, msg string) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
	}
	return err
}

func affected(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}
