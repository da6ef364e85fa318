package order

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/runner/internal/auth"
	"github.com/Additional-Code/runner/internal/config"
	"github.com/Additional-Code/runner/internal/entity"
	"github.com/Additional-Code/runner/internal/mocks"
	"github.com/Additional-Code/runner/internal/service/notification"
	service "github.com/Additional-Code/runner/internal/service/order"
)

type testServer struct {
	e        *echo.Echo
	issuer   *auth.Issuer
	accounts *mocks.AccountStore
	orders   *mocks.OrderStore
	sender   *mocks.Sender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	var cfg config.Config
	cfg.Auth = config.Auth{JWTSecret: "handler-secret", TokenTTL: time.Hour, Issuer: "runner-test"}
	cfg.App.Location = time.UTC

	ts := &testServer{
		e:        echo.New(),
		issuer:   auth.NewIssuer(cfg),
		accounts: new(mocks.AccountStore),
		orders:   new(mocks.OrderStore),
		sender:   new(mocks.Sender),
	}
	notifier := notification.NewService(notification.Params{
		Accounts:  ts.accounts,
		Sender:    ts.sender,
		Publisher: new(mocks.Publisher),
		Config:    cfg,
		Logger:    zap.NewNop(),
	})
	svc := service.NewService(service.Params{
		Accounts: ts.accounts,
		Orders:   ts.orders,
		Notifier: notifier,
		Config:   cfg,
		Logger:   zap.NewNop(),
	})
	api := ts.e.Group("/api", auth.Middleware(ts.issuer))
	Register(api.Group("/partner"), NewHandler(svc))
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, role auth.Role, body string) *httptest.ResponseRecorder {
	t.Helper()
	email := "owner@shop.kr"
	if role == auth.RoleCustomer {
		email = "eater@mail.kr"
	}
	token, err := ts.issuer.Issue(email, role)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) partner() {
	ts.accounts.On("FindPartnerWithShop", mock.Anything, "owner@shop.kr").Return(&entity.Partner{ID: 1, ShopID: 4}, nil)
}

func TestOrders_CustomerIsForbidden(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/partner/shop/orders",
		"/api/partner/shop/orders/today",
		"/api/partner/shop/orders/revenue/total",
	} {
		rec := ts.do(t, http.MethodGet, path, auth.RoleCustomer, "")
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
	ts.orders.AssertNotCalled(t, "ListByShop", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrders_All(t *testing.T) {
	ts := newTestServer(t)
	ts.partner()
	ts.orders.On("ListByShop", mock.Anything, int64(4), mock.Anything).Return([]*entity.Order{
		{ID: 2, ShopID: 4, Status: entity.OrderStatusRequested, Customer: &entity.Customer{ID: 3, Email: "eater@mail.kr"}},
		{ID: 1, ShopID: 4, Status: entity.OrderStatusCompleted},
	}, nil)

	rec := ts.do(t, http.MethodGet, "/api/partner/shop/orders", auth.RolePartner, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []map[string]any `json:"data"`
		Meta map[string]any   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, float64(2), body.Data[0]["id"])
	assert.Equal(t, "eater@mail.kr", body.Data[0]["customer"].(map[string]any)["email"])
	assert.Equal(t, float64(2), body.Meta["count"])
}

func TestOrders_TodayByUnknownStatus(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/partner/shop/orders/today/status/SHIPPED", auth.RolePartner, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModifyStatus_PushesToCustomer(t *testing.T) {
	ts := newTestServer(t)
	ts.partner()
	ts.orders.On("GetByID", mock.Anything, int64(10)).
		Return(&entity.Order{ID: 10, ShopID: 4, CustomerID: 3, Status: entity.OrderStatusAccepted}, nil)
	ts.orders.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ts.accounts.On("FindCustomerByID", mock.Anything, int64(3)).Return(&entity.Customer{ID: 3, DeviceToken: "device-3"}, nil)
	ts.sender.On("Send", mock.Anything, mock.Anything).Return("projects/p/messages/1", nil)

	rec := ts.do(t, http.MethodPatch, "/api/partner/shop/orders/10/status", auth.RolePartner, `{"status":"READY"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"READY"`)
	ts.sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestModifyStatus_InvalidTransition(t *testing.T) {
	ts := newTestServer(t)
	ts.partner()
	ts.orders.On("GetByID", mock.Anything, int64(10)).
		Return(&entity.Order{ID: 10, ShopID: 4, Status: entity.OrderStatusRequested}, nil)

	rec := ts.do(t, http.MethodPatch, "/api/partner/shop/orders/10/status", auth.RolePartner, `{"status":"COMPLETED"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPeriodRevenue(t *testing.T) {
	ts := newTestServer(t)
	ts.partner()
	from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 8, 0, 0, 0, 0, time.UTC)
	ts.orders.On("SumRevenue", mock.Anything, int64(4), from, to).Return(int64(52000), nil)

	rec := ts.do(t, http.MethodGet, "/api/partner/shop/orders/revenue/period?from=2024-04-01T00:00:00&to=2024-04-07T23:59:59", auth.RolePartner, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"revenue":52000`)
}

func TestPeriodRevenue_MissingBounds(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/partner/shop/orders/revenue/period?from=2024-04-01", auth.RolePartner, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
