package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// OrderUsecase は注文の参照（注文完了ページ用）。
// 注文IDはUUIDで、知っている人だけが見られる。
type OrderUsecase struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
}

func NewOrderUsecase(orders repo.OrderRepository, orderItems repo.OrderItemRepository) *OrderUsecase {
	return &OrderUsecase{
		orders:     orders,
		orderItems: orderItems,
	}
}

type OrderItemOutput struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID              string            `json:"id"`
	UserEmail       string            `json:"user_email"`
	Status          string            `json:"status"`
	Subtotal        int64             `json:"subtotal"`
	ShippingPrice   int64             `json:"shipping_price"`
	Total           int64             `json:"total"`
	ParcelSize      string            `json:"parcel_size"`
	ShippingAddress string            `json:"shipping_address"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

func (u *OrderUsecase) GetOrder(ctx context.Context, orderID string) (OrderOutput, error) {
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toOrderOutput(o, items), nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserEmail:       o.UserEmail,
		Status:          string(o.Status),
		Subtotal:        o.Subtotal,
		ShippingPrice:   o.ShippingPrice,
		Total:           o.Total,
		ParcelSize:      o.ParcelSize,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
