package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"app/internal/cart"
	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/shipping"
	"app/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type CheckoutOrderRepoMock struct{ mock.Mock }

func (m *CheckoutOrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *CheckoutOrderRepoMock) Create(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type CheckoutOrderItemRepoMock struct{ mock.Mock }

func (m *CheckoutOrderItemRepoMock) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *CheckoutOrderItemRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

// 本物のTxは張らず、モックのrepoをそのまま渡すフェイク
type txReposFake struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
}

func (r *txReposFake) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposFake) OrderItems() repo.OrderItemRepository { return r.orderItems }

type TxManagerFake struct {
	repos txReposFake
}

func (m *TxManagerFake) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(&m.repos)
}

func validOrderInput() usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		Email:      "test@example.com",
		Name:       "Test User",
		Phone:      "+27123456789",
		Address:    "123 Test St",
		City:       "Cape Town",
		Province:   "Western Cape",
		PostalCode: "8001",
	}
}

func newCheckoutFixture() (*usecase.CheckoutUsecase, *cart.Registry, *CheckoutOrderRepoMock, *CheckoutOrderItemRepoMock) {
	orders := new(CheckoutOrderRepoMock)
	orderItems := new(CheckoutOrderItemRepoMock)
	tx := &TxManagerFake{repos: txReposFake{orders: orders, orderItems: orderItems}}
	carts := cart.NewRegistry(nil, zerolog.Nop())
	uc := usecase.NewCheckoutUsecase(carts, tx, shipping.DefaultTable())
	return uc, carts, orders, orderItems
}

// Test: 見積もり（小計 + 合計重量から決まる送料）
func TestCheckoutUsecase_Quote(t *testing.T) {
	uc, carts, _, _ := newCheckoutFixture()

	s := carts.GetOrCreate("sess-1")
	//2kg x 3 = 6kg → medium 8000
	assert.NoError(t, s.AddItem(activeProduct("p-1", 1500, 2000), 3))

	out, err := uc.Quote(context.Background(), "sess-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(4500), out.Subtotal)
	assert.Equal(t, int64(6000), out.TotalWeightGrams)
	assert.Equal(t, shipping.SizeMedium, out.ParcelSize)
	assert.Equal(t, int64(8000), out.ShippingPrice)
	assert.Equal(t, int64(12500), out.Total)
}

// Test: 空カートの見積もりは最小区分
func TestCheckoutUsecase_Quote_EmptyCart(t *testing.T) {
	uc, _, _, _ := newCheckoutFixture()

	out, err := uc.Quote(context.Background(), "sess-empty")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), out.Subtotal)
	assert.Equal(t, shipping.SizeSmall, out.ParcelSize)
}

// Test: 注文確定。スナップショットで注文が作られ、成功後にカートが空になる
func TestCheckoutUsecase_PlaceOrder_Success(t *testing.T) {
	uc, carts, orders, orderItems := newCheckoutFixture()
	ctx := context.Background()

	s := carts.GetOrCreate("sess-1")
	assert.NoError(t, s.AddItem(activeProduct("p-1", 1000, 500), 2))  //2000 / 1000g
	assert.NoError(t, s.AddItem(activeProduct("p-2", 3000, 4500), 1)) //3000 / 4500g

	//5500g → medium 8000。合計 = 5000 + 8000
	var created model.Order
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		created = o
		return o.Subtotal == 5000 &&
			o.ShippingPrice == 8000 &&
			o.Total == 13000 &&
			o.ParcelSize == string(shipping.SizeMedium) &&
			o.Status == model.OrderStatusPending &&
			o.ID != ""
	})).Return(nil)

	orderItems.On("CreateBulk", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 &&
			items[0].ProductID == "p-1" && items[0].UnitPriceSnapshot == 1000 && items[0].Quantity == 2 &&
			items[1].ProductID == "p-2" && items[1].UnitPriceSnapshot == 3000 && items[1].Quantity == 1
	})).Return(nil)

	out, err := uc.PlaceOrder(ctx, "sess-1", validOrderInput())
	assert.NoError(t, err)
	assert.Equal(t, created.ID, out.ID)
	assert.Equal(t, int64(13000), out.Total)
	assert.Len(t, out.Items, 2)

	//注文成功後はカートが空
	assert.Equal(t, int64(0), s.TotalItems())

	orders.AssertExpectations(t)
	orderItems.AssertExpectations(t)
}

// Test: 空カートでは注文できない
func TestCheckoutUsecase_PlaceOrder_EmptyCart(t *testing.T) {
	uc, _, _, _ := newCheckoutFixture()

	_, err := uc.PlaceOrder(context.Background(), "sess-empty", validOrderInput())
	assertErrStatus(t, err, http.StatusBadRequest, "cart empty")
}

// Test: 連絡先の検証
func TestCheckoutUsecase_PlaceOrder_InvalidContact(t *testing.T) {
	uc, carts, _, _ := newCheckoutFixture()
	ctx := context.Background()

	s := carts.GetOrCreate("sess-1")
	assert.NoError(t, s.AddItem(activeProduct("p-1", 1000, 500), 1))

	in := validOrderInput()
	in.Email = "not-an-email"
	_, err := uc.PlaceOrder(ctx, "sess-1", in)
	assertErrStatus(t, err, http.StatusBadRequest, "invalid email")

	in = validOrderInput()
	in.Name = "  "
	_, err = uc.PlaceOrder(ctx, "sess-1", in)
	assertErrStatus(t, err, http.StatusBadRequest, "invalid name")

	in = validOrderInput()
	in.Address = ""
	_, err = uc.PlaceOrder(ctx, "sess-1", in)
	assertErrStatus(t, err, http.StatusBadRequest, "invalid address")
}

// Test: 注文の保存に失敗したらカートは残る
func TestCheckoutUsecase_PlaceOrder_DBErrorKeepsCart(t *testing.T) {
	uc, carts, orders, _ := newCheckoutFixture()
	ctx := context.Background()

	s := carts.GetOrCreate("sess-1")
	assert.NoError(t, s.AddItem(activeProduct("p-1", 1000, 500), 1))

	orders.On("Create", mock.Anything, mock.Anything).Return(errors.New("boom"))

	_, err := uc.PlaceOrder(ctx, "sess-1", validOrderInput())
	assertErrStatus(t, err, http.StatusInternalServerError, "db error")

	//カートはそのまま
	assert.Equal(t, int64(1), s.TotalItems())
}
