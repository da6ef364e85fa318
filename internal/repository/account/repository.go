package account

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

var repoTracer = otel.Tracer("github.com/Additional-Code/runner/repository/account")

var (
	// ErrPartnerNotFound is returned when no partner has the given email.
	ErrPartnerNotFound = errors.New("partner not found")
	// ErrCustomerNotFound is returned when a customer lookup misses.
	ErrCustomerNotFound = errors.New("customer not found")
)

// Store is the account persistence contract used by services.
type Store interface {
	FindPartnerWithShop(ctx context.Context, email string) (*entity.Partner, error)
	FindCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error)
	FindCustomerByID(ctx context.Context, id int64) (*entity.Customer, error)
	UpdateDeviceToken(ctx context.Context, customerID int64, token string) error
}

// Repository reads partners and customers.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// FindPartnerWithShop loads a partner and the shop they own.
func (r *Repository) FindPartnerWithShop(ctx context.Context, email string) (*entity.Partner, error) {
	ctx, span := repoTracer.Start(ctx, "AccountRepository.FindPartnerWithShop", trace.WithAttributes(attribute.String("partner.email", email)))
	defer span.End()

	partner := new(entity.Partner)
	err := r.reader.NewSelect().Model(partner).Relation("Shop").Where("p.email = ?", email).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrPartnerNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return partner, nil
}

// FindCustomerByEmail loads a customer by login email.
func (r *Repository) FindCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	ctx, span := repoTracer.Start(ctx, "AccountRepository.FindCustomerByEmail", trace.WithAttributes(attribute.String("customer.email", email)))
	defer span.End()

	return r.findCustomer(ctx, span, "c.email = ?", email)
}

// FindCustomerByID loads a customer by primary key.
func (r *Repository) FindCustomerByID(ctx context.Context, id int64) (*entity.Customer, error) {
	ctx, span := repoTracer.Start(ctx, "AccountRepository.FindCustomerByID", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	return r.findCustomer(ctx, span, "c.id = ?", id)
}

func (r *Repository) findCustomer(ctx context.Context, span trace.Span, where string, arg any) (*entity.Customer, error) {
	customer := new(entity.Customer)
	err := r.reader.NewSelect().Model(customer).Where(where, arg).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return customer, nil
}

// UpdateDeviceToken replaces the push token of a customer.
func (r *Repository) UpdateDeviceToken(ctx context.Context, customerID int64, token string) error {
	ctx, span := repoTracer.Start(ctx, "AccountRepository.UpdateDeviceToken", trace.WithAttributes(attribute.Int64("customer.id", customerID)))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model((*entity.Customer)(nil)).
		Set("device_token = ?", token).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", customerID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
