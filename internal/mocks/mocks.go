// Package mocks holds testify mocks of the repository and integration
// interfaces consumed by services and workers.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Additional-Code/runner/internal/entity"
	"github.com/Additional-Code/runner/internal/fcm"
	"github.com/Additional-Code/runner/internal/messaging"
	orderrepo "github.com/Additional-Code/runner/internal/repository/order"
)

// AccountStore mocks account.Store.
type AccountStore struct {
	mock.Mock
}

func (m *AccountStore) FindPartnerWithShop(ctx context.Context, email string) (*entity.Partner, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Partner), args.Error(1)
}

func (m *AccountStore) FindCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Customer), args.Error(1)
}

func (m *AccountStore) FindCustomerByID(ctx context.Context, id int64) (*entity.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Customer), args.Error(1)
}

func (m *AccountStore) UpdateDeviceToken(ctx context.Context, customerID int64, token string) error {
	return m.Called(ctx, customerID, token).Error(0)
}

// CatalogStore mocks catalog.Store.
type CatalogStore struct {
	mock.Mock
}

func (m *CatalogStore) FindCategory(ctx context.Context, id int64) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *CatalogStore) FindSize(ctx context.Context, id int64) (*entity.Size, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Size), args.Error(1)
}

// MenuStore mocks menu.Store.
type MenuStore struct {
	mock.Mock
}

func (m *MenuStore) Create(ctx context.Context, menu *entity.Menu) error {
	return m.Called(ctx, menu).Error(0)
}

func (m *MenuStore) ListByShop(ctx context.Context, shopID int64) ([]*entity.Menu, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Menu), args.Error(1)
}

func (m *MenuStore) FindByShop(ctx context.Context, shopID, menuID int64) (*entity.Menu, error) {
	args := m.Called(ctx, shopID, menuID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Menu), args.Error(1)
}

func (m *MenuStore) Exists(ctx context.Context, menuID int64) (bool, error) {
	args := m.Called(ctx, menuID)
	return args.Bool(0), args.Error(1)
}

func (m *MenuStore) Update(ctx context.Context, menu *entity.Menu, columns ...string) error {
	return m.Called(ctx, menu, columns).Error(0)
}

func (m *MenuStore) Delete(ctx context.Context, menuID int64) error {
	return m.Called(ctx, menuID).Error(0)
}

func (m *MenuStore) CreateSize(ctx context.Context, size *entity.MenuSize) error {
	return m.Called(ctx, size).Error(0)
}

func (m *MenuStore) FindSize(ctx context.Context, menuID, menuSizeID int64) (*entity.MenuSize, error) {
	args := m.Called(ctx, menuID, menuSizeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MenuSize), args.Error(1)
}

func (m *MenuStore) UpdateSize(ctx context.Context, size *entity.MenuSize) error {
	return m.Called(ctx, size).Error(0)
}

func (m *MenuStore) DeleteSize(ctx context.Context, menuID, menuSizeID int64) error {
	return m.Called(ctx, menuID, menuSizeID).Error(0)
}

func (m *MenuStore) CreateExtra(ctx context.Context, extra *entity.Extra) error {
	return m.Called(ctx, extra).Error(0)
}

func (m *MenuStore) DeleteExtra(ctx context.Context, menuID, extraID int64) error {
	return m.Called(ctx, menuID, extraID).Error(0)
}

func (m *MenuStore) IsLiked(ctx context.Context, menuID, customerID int64) (bool, error) {
	args := m.Called(ctx, menuID, customerID)
	return args.Bool(0), args.Error(1)
}

func (m *MenuStore) Like(ctx context.Context, menuID, customerID int64) error {
	return m.Called(ctx, menuID, customerID).Error(0)
}

func (m *MenuStore) Unlike(ctx context.Context, menuID, customerID int64) error {
	return m.Called(ctx, menuID, customerID).Error(0)
}

// OrderStore mocks order.Store.
type OrderStore struct {
	mock.Mock
}

func (m *OrderStore) Create(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *OrderStore) ListByShop(ctx context.Context, shopID int64, filter orderrepo.Filter) ([]*entity.Order, error) {
	args := m.Called(ctx, shopID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Order), args.Error(1)
}

func (m *OrderStore) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *OrderStore) UpdateStatus(ctx context.Context, order *entity.Order, from entity.OrderStatus) error {
	return m.Called(ctx, order, from).Error(0)
}

func (m *OrderStore) SumRevenue(ctx context.Context, shopID int64, from, to time.Time) (int64, error) {
	args := m.Called(ctx, shopID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// Sender mocks fcm.Sender.
type Sender struct {
	mock.Mock
}

func (m *Sender) Send(ctx context.Context, msg fcm.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

// Publisher mocks messaging.Client.
type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, msg messaging.OutboundMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *Publisher) Consume(ctx context.Context, handler messaging.Handler) error {
	return m.Called(ctx, handler).Error(0)
}

func (m *Publisher) Topic() string {
	return m.Called().String(0)
}
