package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	Create(ctx context.Context, order model.Order) error
}
