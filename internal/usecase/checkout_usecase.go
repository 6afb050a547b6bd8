package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/cart"
	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/shipping"

	"github.com/google/uuid"
)

// CheckoutUsecase は送料見積もりと注文確定。
// 送料は合計重量から料金表で決まる（小計 + 送料 = 合計）。
type CheckoutUsecase struct {
	carts *cart.Registry
	tx    repo.TransactionManager
	table shipping.Table
}

func NewCheckoutUsecase(carts *cart.Registry, tx repo.TransactionManager, table shipping.Table) *CheckoutUsecase {
	return &CheckoutUsecase{
		carts: carts,
		tx:    tx,
		table: table,
	}
}

type QuoteOutput struct {
	Subtotal         int64         `json:"subtotal"`
	TotalWeightGrams int64         `json:"total_weight_g"`
	ParcelSize       shipping.Size `json:"parcel_size"`
	ShippingPrice    int64         `json:"shipping_price"`
	Total            int64         `json:"total"`
}

type PlaceOrderInput struct {
	Email      string
	Name       string
	Phone      string
	Address    string
	City       string
	Province   string
	PostalCode string
}

// Quote は現在のカートから送料込みの見積もりを返す。
// 小計と重量は同じ明細スナップショットから計算する。
func (u *CheckoutUsecase) Quote(ctx context.Context, sessionID string) (QuoteOutput, error) {
	if sessionID == "" {
		return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}

	items := u.carts.GetOrCreate(sessionID).Items()
	subtotal, weight := sumItems(items)
	q := u.table.Quote(weight)

	return QuoteOutput{
		Subtotal:         subtotal,
		TotalWeightGrams: weight,
		ParcelSize:       q.Size,
		ShippingPrice:    q.Price,
		Total:            subtotal + q.Price,
	}, nil
}

// PlaceOrder は注文を確定する。
// 明細スナップショット（カート追加時点の価格）で注文を作り、
// 成功したときだけカートを空にする。
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, sessionID string, in PlaceOrderInput) (OrderOutput, error) {
	if sessionID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}

	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") || len(email) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if strings.TrimSpace(in.Name) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if strings.TrimSpace(in.Address) == "" || strings.TrimSpace(in.City) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address")
	}

	s := u.carts.GetOrCreate(sessionID)

	items := s.Items()
	if len(items) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	subtotal, weight := sumItems(items)
	q := u.table.Quote(weight)

	now := time.Now()
	order := model.Order{
		ID:            uuid.NewString(),
		UserEmail:     email,
		UserName:      strings.TrimSpace(in.Name),
		UserPhone:     strings.TrimSpace(in.Phone),
		Status:        model.OrderStatusPending,
		Subtotal:      subtotal,
		ShippingPrice: q.Price,
		Total:         subtotal + q.Price,
		ParcelSize:    string(q.Size),
		ShippingAddress: fmt.Sprintf("%s, %s, %s, %s",
			strings.TrimSpace(in.Address),
			strings.TrimSpace(in.City),
			strings.TrimSpace(in.Province),
			strings.TrimSpace(in.PostalCode),
		),
		CreatedAt: now,
		UpdatedAt: now,
	}

	//スナップショット（価格はカート追加時点のもの）
	orderItems := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, model.OrderItem{
			ProductID:           it.Product.ID,
			ProductNameSnapshot: it.Product.Name,
			UnitPriceSnapshot:   it.Product.Price,
			Quantity:            it.Quantity,
			CreatedAt:           now,
		})
	}

	//注文と明細は同一トランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().Create(ctx, order); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	//注文が確定してからカートを空にする
	s.Clear()

	return toOrderOutput(order, orderItems), nil
}

func sumItems(items []model.CartItem) (subtotal int64, weight int64) {
	for _, it := range items {
		subtotal += it.Product.Price * it.Quantity
		weight += it.Product.WeightGrams * it.Quantity
	}
	return subtotal, weight
}
