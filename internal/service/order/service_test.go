package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/runner/internal/config"
	"github.com/Additional-Code/runner/internal/entity"
	"github.com/Additional-Code/runner/internal/mocks"
	"github.com/Additional-Code/runner/internal/repository/account"
	repo "github.com/Additional-Code/runner/internal/repository/order"
	"github.com/Additional-Code/runner/internal/service/notification"
	"github.com/Additional-Code/runner/pkg/errorbank"
)

const partnerEmail = "owner@shop.kr"

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) OrderStatusChanged(ctx context.Context, event notification.OrderStatusChangedEvent) error {
	return m.Called(ctx, event).Error(0)
}

type fixture struct {
	accounts *mocks.AccountStore
	orders   *mocks.OrderStore
	notifier *mockNotifier
	svc      *Service
	seoul    *time.Location
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	f := &fixture{
		accounts: new(mocks.AccountStore),
		orders:   new(mocks.OrderStore),
		notifier: new(mockNotifier),
		seoul:    seoul,
		// 2024-05-01 23:30 UTC is already 2024-05-02 08:30 in Seoul.
		clock: time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC),
	}
	cfg := config.Config{App: config.App{Timezone: "Asia/Seoul", Location: seoul}}
	f.svc = NewService(Params{
		Accounts: f.accounts,
		Orders:   f.orders,
		Notifier: f.notifier,
		Config:   cfg,
		Logger:   zap.NewNop(),
	})
	f.svc.now = func() time.Time { return f.clock }
	f.accounts.On("FindPartnerWithShop", mock.Anything, partnerEmail).
		Return(&entity.Partner{ID: 1, Email: partnerEmail, ShopID: 4}, nil)
	return f
}

func kindOf(t *testing.T, err error) errorbank.Kind {
	t.Helper()
	var appErr *errorbank.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Kind()
}

func TestFindByShop(t *testing.T) {
	f := newFixture(t)
	orders := []*entity.Order{{
		ID: 10, ShopID: 4, CustomerID: 3, Status: entity.OrderStatusRequested, TotalPrice: 9000, Request: "less ice",
		Customer: &entity.Customer{ID: 3, Email: "eater@mail.kr", Nickname: "eater"},
		Menus:    []*entity.OrderMenu{{MenuID: 7, MenuName: "Americano", SizeName: "L", Count: 2, Price: 9000}},
	}}
	f.orders.On("ListByShop", mock.Anything, int64(4), repo.Filter{}).Return(orders, nil)

	resp, err := f.svc.FindByShop(context.Background(), partnerEmail)

	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, "eater@mail.kr", resp[0].Customer.Email)
	assert.Equal(t, "Americano", resp[0].Menus[0].MenuName)
	assert.Equal(t, 2, resp[0].Menus[0].Count)
}

func TestFindByShop_UnknownPartner(t *testing.T) {
	f := newFixture(t)
	f.accounts.On("FindPartnerWithShop", mock.Anything, "ghost@shop.kr").Return(nil, account.ErrPartnerNotFound)

	_, err := f.svc.FindByShop(context.Background(), "ghost@shop.kr")
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
	f.orders.AssertNotCalled(t, "ListByShop", mock.Anything, mock.Anything, mock.Anything)
}

func TestFindByShopAndDay_UsesLocalDay(t *testing.T) {
	f := newFixture(t)
	wantFrom := time.Date(2024, 5, 2, 0, 0, 0, 0, f.seoul)
	f.orders.On("ListByShop", mock.Anything, int64(4), mock.MatchedBy(func(filter repo.Filter) bool {
		return filter.From.Equal(wantFrom) && filter.To.Equal(wantFrom.AddDate(0, 0, 1)) && filter.Status == ""
	})).Return([]*entity.Order{{ID: 1, ShopID: 4, Status: entity.OrderStatusAccepted, TotalPrice: 100}}, nil)

	resp, err := f.svc.FindByShopAndDay(context.Background(), partnerEmail, f.svc.Today())

	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, "ACCEPTED", resp[0].Status)
	f.orders.AssertExpectations(t)
}

func TestFindByShopAndDayAndStatus(t *testing.T) {
	f := newFixture(t)
	f.orders.On("ListByShop", mock.Anything, int64(4), mock.MatchedBy(func(filter repo.Filter) bool {
		return filter.Status == entity.OrderStatusReady
	})).Return([]*entity.Order{}, nil)

	resp, err := f.svc.FindByShopAndDayAndStatus(context.Background(), partnerEmail, f.clock, "ready")
	require.NoError(t, err)
	assert.Empty(t, resp)

	_, err = f.svc.FindByShopAndDayAndStatus(context.Background(), partnerEmail, f.clock, "LOST")
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
}

func TestModifyStatus_NotifiesCustomer(t *testing.T) {
	f := newFixture(t)
	f.orders.On("GetByID", mock.Anything, int64(10)).
		Return(&entity.Order{ID: 10, ShopID: 4, CustomerID: 3, Status: entity.OrderStatusRequested}, nil)
	f.orders.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(o *entity.Order) bool {
		return o.Status == entity.OrderStatusAccepted && o.UpdatedAt.Equal(f.clock)
	}), entity.OrderStatusRequested).Return(nil)
	f.notifier.On("OrderStatusChanged", mock.Anything, mock.MatchedBy(func(e notification.OrderStatusChangedEvent) bool {
		return e.OrderID == 10 && e.CustomerID == 3 && e.Status == entity.OrderStatusAccepted && e.EventID != ""
	})).Return(nil)

	resp, err := f.svc.ModifyStatus(context.Background(), partnerEmail, 10, "ACCEPTED")

	require.NoError(t, err)
	assert.Equal(t, "ACCEPTED", resp.Status)
	f.orders.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestModifyStatus_NotificationFailureKeepsChange(t *testing.T) {
	f := newFixture(t)
	f.orders.On("GetByID", mock.Anything, int64(10)).
		Return(&entity.Order{ID: 10, ShopID: 4, CustomerID: 3, Status: entity.OrderStatusReady}, nil)
	f.orders.On("UpdateStatus", mock.Anything, mock.Anything, entity.OrderStatusReady).Return(nil)
	f.notifier.On("OrderStatusChanged", mock.Anything, mock.Anything).Return(errors.New("fcm down"))

	resp, err := f.svc.ModifyStatus(context.Background(), partnerEmail, 10, "COMPLETED")

	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", resp.Status)
}

func TestModifyStatus_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		order  *entity.Order
		status string
		kind   errorbank.Kind
	}{
		{"other shop", &entity.Order{ID: 10, ShopID: 5, Status: entity.OrderStatusRequested}, "ACCEPTED", errorbank.KindNotFound},
		{"same status", &entity.Order{ID: 10, ShopID: 4, Status: entity.OrderStatusReady}, "READY", errorbank.KindConflict},
		{"skip ahead", &entity.Order{ID: 10, ShopID: 4, Status: entity.OrderStatusRequested}, "COMPLETED", errorbank.KindUnprocessableEntity},
		{"from terminal", &entity.Order{ID: 10, ShopID: 4, Status: entity.OrderStatusCompleted}, "READY", errorbank.KindUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.orders.On("GetByID", mock.Anything, int64(10)).Return(tt.order, nil)

			_, err := f.svc.ModifyStatus(context.Background(), partnerEmail, 10, tt.status)

			assert.Equal(t, tt.kind, kindOf(t, err))
			f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			f.notifier.AssertNotCalled(t, "OrderStatusChanged", mock.Anything, mock.Anything)
		})
	}
}

func TestModifyStatus_ConcurrentChangeIsConflict(t *testing.T) {
	f := newFixture(t)
	f.orders.On("GetByID", mock.Anything, int64(10)).
		Return(&entity.Order{ID: 10, ShopID: 4, CustomerID: 3, Status: entity.OrderStatusRequested}, nil).Once()
	f.orders.On("UpdateStatus", mock.Anything, mock.Anything, entity.OrderStatusRequested).Return(repo.ErrStaleStatus)
	f.orders.On("GetByID", mock.Anything, int64(10)).
		Return(&entity.Order{ID: 10, ShopID: 4, CustomerID: 3, Status: entity.OrderStatusRejected}, nil).Once()

	_, err := f.svc.ModifyStatus(context.Background(), partnerEmail, 10, "ACCEPTED")

	assert.Equal(t, errorbank.KindConflict, kindOf(t, err))
	var appErr *errorbank.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "REJECTED", appErr.Details()["status"])
	assert.Equal(t, "REQUESTED", appErr.Details()["expected"])
	f.notifier.AssertNotCalled(t, "OrderStatusChanged", mock.Anything, mock.Anything)
}

func TestModifyStatus_MissingOrder(t *testing.T) {
	f := newFixture(t)
	f.orders.On("GetByID", mock.Anything, int64(404)).Return(nil, repo.ErrNotFound)

	_, err := f.svc.ModifyStatus(context.Background(), partnerEmail, 404, "ACCEPTED")
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))

	_, err = f.svc.ModifyStatus(context.Background(), partnerEmail, 404, "")
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
}

func TestDayRevenue(t *testing.T) {
	f := newFixture(t)
	from := time.Date(2024, 5, 2, 0, 0, 0, 0, f.seoul)
	f.orders.On("SumRevenue", mock.Anything, int64(4), from, from.AddDate(0, 0, 1)).Return(int64(27000), nil)

	resp, err := f.svc.DayRevenue(context.Background(), partnerEmail)

	require.NoError(t, err)
	assert.Equal(t, int64(27000), resp.Revenue)
	require.NotNil(t, resp.From)
	assert.True(t, resp.From.Equal(from))
}

func TestPeriodRevenue(t *testing.T) {
	f := newFixture(t)
	from := time.Date(2024, 4, 1, 0, 0, 0, 0, f.seoul)
	to := time.Date(2024, 4, 8, 0, 0, 0, 0, f.seoul)
	f.orders.On("SumRevenue", mock.Anything, int64(4), from, to).Return(int64(150000), nil)

	resp, err := f.svc.PeriodRevenue(context.Background(), partnerEmail, "2024-04-01T13:00:00", "2024-04-07")

	require.NoError(t, err)
	assert.Equal(t, int64(150000), resp.Revenue)
	assert.True(t, resp.To.Equal(to))
}

func TestPeriodRevenue_InvalidBounds(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PeriodRevenue(context.Background(), partnerEmail, "yesterday", "2024-04-07")
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))

	_, err = f.svc.PeriodRevenue(context.Background(), partnerEmail, "2024-04-08", "2024-04-07")
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
	f.orders.AssertNotCalled(t, "SumRevenue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTotalRevenue(t *testing.T) {
	f := newFixture(t)
	f.orders.On("SumRevenue", mock.Anything, int64(4), time.Time{}, mock.AnythingOfType("time.Time")).Return(int64(1000000), nil)

	resp, err := f.svc.TotalRevenue(context.Background(), partnerEmail)

	require.NoError(t, err)
	assert.Equal(t, int64(1000000), resp.Revenue)
	assert.Nil(t, resp.From)
	assert.True(t, resp.To.Equal(f.clock))
}

func TestTotalRevenue_RepositoryError(t *testing.T) {
	f := newFixture(t)
	f.orders.On("SumRevenue", mock.Anything, int64(4), mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	_, err := f.svc.TotalRevenue(context.Background(), partnerEmail)
	assert.Equal(t, errorbank.KindInternal, kindOf(t, err))
}
