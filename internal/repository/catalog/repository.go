package catalog

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

var repoTracer = otel.Tracer("github.com/Additional-Code/runner/repository/catalog")

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrSizeNotFound     = errors.New("size not found")
)

// Store is the catalog persistence contract used by services.
type Store interface {
	FindCategory(ctx context.Context, id int64) (*entity.Category, error)
	FindSize(ctx context.Context, id int64) (*entity.Size, error)
}

// Repository reads shared catalog rows (categories and sizes).
type Repository struct {
	reader *bun.DB
}

// NewRepository wires a catalog repository on the read connection.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{reader: conns.Reader}
}

// FindCategory loads a category by id.
func (r *Repository) FindCategory(ctx context.Context, id int64) (*entity.Category, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.FindCategory", trace.WithAttributes(attribute.Int64("category.id", id)))
	defer span.End()

	category := new(entity.Category)
	if err := r.reader.NewSelect().Model(category).Where("cat.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(span, err, ErrCategoryNotFound)
	}
	return category, nil
}

// FindSize loads a size label by id.
func (r *Repository) FindSize(ctx context.Context, id int64) (*entity.Size, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.FindSize", trace.WithAttributes(attribute.Int64("size.id", id)))
	defer span.End()

	size := new(entity.Size)
	if err := r.reader.NewSelect().Model(size).Where("sz.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(span, err, ErrSizeNotFound)
	}
	return size, nil
}

func notFound(span trace.Span, err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return sentinel
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "select failed")
	return err
}
