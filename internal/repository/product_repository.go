package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

// カタログの読み取りだけを約束。商品の管理（作成・更新）はこのサービスの外。
type ProductRepository interface {
	ListActive(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
}
