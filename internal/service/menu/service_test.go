package menu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/runner/internal/cache"
	"github.com/Additional-Code/runner/internal/config"
	"github.com/Additional-Code/runner/internal/dto"
	"github.com/Additional-Code/runner/internal/entity"
	"github.com/Additional-Code/runner/internal/mocks"
	"github.com/Additional-Code/runner/internal/repository/account"
	"github.com/Additional-Code/runner/internal/repository/catalog"
	repo "github.com/Additional-Code/runner/internal/repository/menu"
	"github.com/Additional-Code/runner/pkg/errorbank"
)

const partnerEmail = "owner@shop.kr"

type fixture struct {
	accounts *mocks.AccountStore
	catalog  *mocks.CatalogStore
	menus    *mocks.MenuStore
	redis    *miniredis.Miniredis
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		accounts: new(mocks.AccountStore),
		catalog:  new(mocks.CatalogStore),
		menus:    new(mocks.MenuStore),
		redis:    mr,
	}
	cfg := config.Config{}
	cfg.Cache.DefaultTTL = time.Minute
	f.svc = NewService(Params{
		Accounts: f.accounts,
		Catalog:  f.catalog,
		Menus:    f.menus,
		Cache:    cache.NewRedisStore(client, time.Minute),
		Config:   cfg,
		Logger:   zap.NewNop(),
	})
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) partner() {
	f.accounts.On("FindPartnerWithShop", mock.Anything, partnerEmail).
		Return(&entity.Partner{ID: 1, Email: partnerEmail, ShopID: 4}, nil)
}

func sampleMenu() *entity.Menu {
	return &entity.Menu{
		ID:          7,
		ShopID:      4,
		CategoryID:  2,
		Category:    &entity.Category{ID: 2, Name: "Coffee"},
		Name:        "Americano",
		Price:       4000,
		ImgURL:      "https://img/americano.png",
		IsSignature: false,
		Status:      entity.MenuStatusSale,
		Sizes: []*entity.MenuSize{
			{ID: 11, MenuID: 7, SizeID: 1, Size: &entity.Size{ID: 1, Name: "S"}, Price: 0},
		},
		Extras: []*entity.Extra{{ID: 21, MenuID: 7, Name: "Shot", Price: 500}},
	}
}

func kindOf(t *testing.T, err error) errorbank.Kind {
	t.Helper()
	var appErr *errorbank.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Kind()
}

func TestCreateMenu(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.catalog.On("FindCategory", mock.Anything, int64(2)).Return(&entity.Category{ID: 2, Name: "Coffee"}, nil)
	f.menus.On("Create", mock.Anything, mock.MatchedBy(func(m *entity.Menu) bool {
		return m.ShopID == 4 && m.Status == entity.MenuStatusNotSale && m.Name == "Latte"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Menu).ID = 8
	}).Return(nil)
	require.NoError(t, f.redis.Set("menus:shop:4", `{"menuList":[]}`))

	resp, err := f.svc.CreateMenu(context.Background(), partnerEmail, dto.MenuRequest{
		CategoryID: 2, Name: " Latte ", Price: 4500, Signature: true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(8), resp.ID)
	assert.Equal(t, "NOT_SALE", resp.Status)
	assert.Equal(t, "Coffee", resp.CategoryName)
	assert.True(t, resp.Signature)
	assert.NotNil(t, resp.MenuSizeList.MenuSizeList)
	assert.False(t, f.redis.Exists("menus:shop:4"), "menu list cache must be invalidated")
	f.menus.AssertExpectations(t)
}

func TestCreateMenu_UnknownPartner(t *testing.T) {
	f := newFixture(t)
	f.accounts.On("FindPartnerWithShop", mock.Anything, "ghost@shop.kr").Return(nil, account.ErrPartnerNotFound)

	_, err := f.svc.CreateMenu(context.Background(), "ghost@shop.kr", dto.MenuRequest{CategoryID: 2, Name: "Latte"})

	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
	f.menus.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateMenu_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateMenu(context.Background(), partnerEmail, dto.MenuRequest{Name: "Latte", Price: -1})
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))

	_, err = f.svc.CreateMenu(context.Background(), partnerEmail, dto.MenuRequest{Name: "  ", Price: 1})
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
}

func TestCreateMenu_UnknownCategory(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.catalog.On("FindCategory", mock.Anything, int64(99)).Return(nil, catalog.ErrCategoryNotFound)

	_, err := f.svc.CreateMenu(context.Background(), partnerEmail, dto.MenuRequest{CategoryID: 99, Name: "Latte"})
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
}

func TestListShopMenus_UsesCache(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.menus.On("ListByShop", mock.Anything, int64(4)).Return([]*entity.Menu{sampleMenu()}, nil).Once()

	first, err := f.svc.ListShopMenus(context.Background(), partnerEmail)
	require.NoError(t, err)
	second, err := f.svc.ListShopMenus(context.Background(), partnerEmail)
	require.NoError(t, err)

	require.Len(t, first.MenuList, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, "S", second.MenuList[0].MenuSizeList.MenuSizeList[0].MenuSizeName)
	assert.Equal(t, "Shot", second.MenuList[0].ExtraList.ExtraList[0].Name)
	f.menus.AssertNumberOfCalls(t, "ListByShop", 1)
}

func TestGetShopMenu_OtherShopIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.menus.On("FindByShop", mock.Anything, int64(4), int64(70)).Return(nil, repo.ErrNotFound)

	_, err := f.svc.GetShopMenu(context.Background(), partnerEmail, 70)
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
}

func TestUpdateMenu_OnlyEditableFields(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.menus.On("FindByShop", mock.Anything, int64(4), int64(7)).Return(sampleMenu(), nil)
	f.catalog.On("FindCategory", mock.Anything, int64(3)).Return(&entity.Category{ID: 3, Name: "Tea"}, nil)
	f.menus.On("Update", mock.Anything, mock.Anything, menuColumns).Return(nil)

	resp, err := f.svc.UpdateMenu(context.Background(), partnerEmail, 7, dto.MenuRequest{
		CategoryID: 3, Name: "Iced Tea", ImgURL: "https://img/tea.png", Price: 3500, Signature: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "Iced Tea", resp.Name)
	assert.Equal(t, "Tea", resp.CategoryName)
	assert.Equal(t, int64(3500), resp.Price)
	assert.True(t, resp.Signature)
	assert.Equal(t, "SALE", resp.Status, "status is not editable through UpdateMenu")
	assert.Len(t, resp.MenuSizeList.MenuSizeList, 1)
	assert.Len(t, resp.ExtraList.ExtraList, 1)
	f.menus.AssertExpectations(t)
}

func TestDeleteMenu(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.menus.On("FindByShop", mock.Anything, int64(4), int64(7)).Return(sampleMenu(), nil)
	f.menus.On("Delete", mock.Anything, int64(7)).Return(nil)

	resp, err := f.svc.DeleteMenu(context.Background(), partnerEmail, 7)

	require.NoError(t, err)
	assert.True(t, resp.Result)
}

func TestUpdateMenuStatus(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.menus.On("FindByShop", mock.Anything, int64(4), int64(7)).Return(sampleMenu(), nil)
	f.menus.On("Update", mock.Anything, mock.Anything, []string{"status", "updated_at"}).Return(nil)

	resp, err := f.svc.UpdateMenuStatus(context.Background(), partnerEmail, 7, "sold_out")

	require.NoError(t, err)
	assert.Equal(t, "SOLD_OUT", resp.Status)

	_, err = f.svc.UpdateMenuStatus(context.Background(), partnerEmail, 7, "GONE")
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
}

func TestCreateMenuSize(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.menus.On("FindByShop", mock.Anything, int64(4), int64(7)).Return(sampleMenu(), nil)
	f.catalog.On("FindSize", mock.Anything, int64(2)).Return(&entity.Size{ID: 2, Name: "M"}, nil)
	f.catalog.On("FindSize", mock.Anything, int64(1)).Return(&entity.Size{ID: 1, Name: "S"}, nil)
	f.menus.On("CreateSize", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.MenuSize).ID = 12
	}).Return(nil)

	resp, err := f.svc.CreateMenuSize(context.Background(), partnerEmail, 7, dto.MenuSizeRequest{SizeID: 2, Price: 500})
	require.NoError(t, err)
	assert.Equal(t, dto.MenuSizeResponse{MenuSizeID: 12, MenuID: 7, SizeID: 2, MenuSizeName: "M", Price: 500}, *resp)

	_, err = f.svc.CreateMenuSize(context.Background(), partnerEmail, 7, dto.MenuSizeRequest{SizeID: 1, Price: 0})
	assert.Equal(t, errorbank.KindConflict, kindOf(t, err))
}

func TestUpdateMenuSize_NotOnMenu(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.menus.On("FindByShop", mock.Anything, int64(4), int64(7)).Return(sampleMenu(), nil)
	f.menus.On("FindSize", mock.Anything, int64(7), int64(99)).Return(nil, repo.ErrSizeNotFound)

	_, err := f.svc.UpdateMenuSize(context.Background(), partnerEmail, 7, dto.MenuSizeRequest{MenuSizeID: 99, SizeID: 1, Price: 100})
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
}

func TestUpdateMenuSize(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.menus.On("FindByShop", mock.Anything, int64(4), int64(7)).Return(sampleMenu(), nil)
	f.menus.On("FindSize", mock.Anything, int64(7), int64(11)).Return(&entity.MenuSize{ID: 11, MenuID: 7, SizeID: 1}, nil)
	f.catalog.On("FindSize", mock.Anything, int64(3)).Return(&entity.Size{ID: 3, Name: "L"}, nil)
	f.menus.On("UpdateSize", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.UpdateMenuSize(context.Background(), partnerEmail, 7, dto.MenuSizeRequest{MenuSizeID: 11, SizeID: 3, Price: 1000})

	require.NoError(t, err)
	assert.Equal(t, "L", resp.MenuSizeName)
	assert.Equal(t, int64(1000), resp.Price)
}

func TestUpdateMenuSize_SizeAlreadyOffered(t *testing.T) {
	f := newFixture(t)
	f.partner()
	menu := sampleMenu()
	menu.Sizes = append(menu.Sizes, &entity.MenuSize{ID: 12, MenuID: 7, SizeID: 2, Size: &entity.Size{ID: 2, Name: "M"}, Price: 500})
	f.menus.On("FindByShop", mock.Anything, int64(4), int64(7)).Return(menu, nil)
	f.menus.On("FindSize", mock.Anything, int64(7), int64(12)).Return(&entity.MenuSize{ID: 12, MenuID: 7, SizeID: 2}, nil)
	f.menus.On("FindSize", mock.Anything, int64(7), int64(11)).Return(&entity.MenuSize{ID: 11, MenuID: 7, SizeID: 1}, nil)
	f.catalog.On("FindSize", mock.Anything, int64(1)).Return(&entity.Size{ID: 1, Name: "S"}, nil)
	f.menus.On("UpdateSize", mock.Anything, mock.MatchedBy(func(ms *entity.MenuSize) bool { return ms.ID == 11 })).Return(nil)

	_, err := f.svc.UpdateMenuSize(context.Background(), partnerEmail, 7, dto.MenuSizeRequest{MenuSizeID: 12, SizeID: 1, Price: 100})
	assert.Equal(t, errorbank.KindConflict, kindOf(t, err))
	f.menus.AssertNotCalled(t, "UpdateSize", mock.Anything, mock.MatchedBy(func(ms *entity.MenuSize) bool { return ms.ID == 12 }))

	resp, err := f.svc.UpdateMenuSize(context.Background(), partnerEmail, 7, dto.MenuSizeRequest{MenuSizeID: 11, SizeID: 1, Price: 300})
	require.NoError(t, err)
	assert.Equal(t, int64(300), resp.Price)
}

func TestMenuSizeUniqueViolationIsConflict(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.menus.On("FindByShop", mock.Anything, int64(4), int64(7)).Return(sampleMenu(), nil)
	f.menus.On("FindSize", mock.Anything, int64(7), int64(11)).Return(&entity.MenuSize{ID: 11, MenuID: 7, SizeID: 1}, nil)
	f.catalog.On("FindSize", mock.Anything, int64(3)).Return(&entity.Size{ID: 3, Name: "L"}, nil)
	f.menus.On("UpdateSize", mock.Anything, mock.Anything).Return(repo.ErrSizeTaken)
	f.menus.On("CreateSize", mock.Anything, mock.Anything).Return(repo.ErrSizeTaken)

	_, err := f.svc.UpdateMenuSize(context.Background(), partnerEmail, 7, dto.MenuSizeRequest{MenuSizeID: 11, SizeID: 3, Price: 100})
	assert.Equal(t, errorbank.KindConflict, kindOf(t, err))

	_, err = f.svc.CreateMenuSize(context.Background(), partnerEmail, 7, dto.MenuSizeRequest{SizeID: 3, Price: 100})
	assert.Equal(t, errorbank.KindConflict, kindOf(t, err))
}

func TestDeleteMenuSize_NotFound(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.menus.On("FindByShop", mock.Anything, int64(4), int64(7)).Return(sampleMenu(), nil)
	f.menus.On("DeleteSize", mock.Anything, int64(7), int64(99)).Return(repo.ErrSizeNotFound)

	_, err := f.svc.DeleteMenuSize(context.Background(), partnerEmail, 7, 99)
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
}

func TestExtras(t *testing.T) {
	f := newFixture(t)
	f.partner()
	f.menus.On("FindByShop", mock.Anything, int64(4), int64(7)).Return(sampleMenu(), nil)
	f.menus.On("CreateExtra", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Extra).ID = 22
	}).Return(nil)
	f.menus.On("DeleteExtra", mock.Anything, int64(7), int64(40)).Return(repo.ErrExtraNotFound)

	extra, err := f.svc.CreateExtra(context.Background(), partnerEmail, 7, dto.ExtraRequest{Name: "Syrup", Price: 300})
	require.NoError(t, err)
	assert.Equal(t, int64(22), extra.ID)

	_, err = f.svc.CreateExtra(context.Background(), partnerEmail, 7, dto.ExtraRequest{Name: "", Price: 300})
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))

	_, err = f.svc.DeleteExtra(context.Background(), partnerEmail, 7, 40)
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
}

func TestGetMenuDetail(t *testing.T) {
	f := newFixture(t)
	f.menus.On("FindByShop", mock.Anything, int64(4), int64(7)).Return(sampleMenu(), nil)
	f.accounts.On("FindCustomerByEmail", mock.Anything, "eater@mail.kr").Return(&entity.Customer{ID: 3}, nil)
	f.menus.On("IsLiked", mock.Anything, int64(7), int64(3)).Return(true, nil)

	resp, err := f.svc.GetMenuDetail(context.Background(), "eater@mail.kr", 4, 7)

	require.NoError(t, err)
	assert.True(t, resp.Liked)
	assert.Equal(t, "Americano", resp.Name)
}

func TestLikeMenu(t *testing.T) {
	f := newFixture(t)
	f.accounts.On("FindCustomerByEmail", mock.Anything, "eater@mail.kr").Return(&entity.Customer{ID: 3}, nil)
	f.menus.On("Exists", mock.Anything, int64(7)).Return(true, nil)
	f.menus.On("Exists", mock.Anything, int64(8)).Return(false, nil)
	f.menus.On("Like", mock.Anything, int64(7), int64(3)).Return(nil)
	f.menus.On("Unlike", mock.Anything, int64(7), int64(3)).Return(nil)

	resp, err := f.svc.LikeMenu(context.Background(), "eater@mail.kr", 7)
	require.NoError(t, err)
	assert.True(t, resp.Result)

	_, err = f.svc.UnlikeMenu(context.Background(), "eater@mail.kr", 7)
	require.NoError(t, err)

	_, err = f.svc.LikeMenu(context.Background(), "eater@mail.kr", 8)
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
}
