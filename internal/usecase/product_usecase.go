package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListActiveProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if len(in.Category) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "category too long")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListActive(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string) (model.Product, error) {
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//非公開の商品は存在しない扱い
	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return p, nil
}
