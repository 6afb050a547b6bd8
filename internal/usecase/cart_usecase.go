package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/cart"
	repo "app/internal/repository"
)

// CartUsecase は /cart の業務ロジック。
// カート本体はRegistryが持つセッションごとのStoreで、ここでは
// 商品の存在チェックとDTOへの詰め替えだけをする。
type CartUsecase struct {
	carts       *cart.Registry
	productRepo repo.ProductRepository
}

func NewCartUsecase(carts *cart.Registry, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		carts:       carts,
		productRepo: productRepo,
	}
}

type CartItemResponse struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	WeightGrams int64  `json:"weight_g"`
	Quantity    int64  `json:"quantity"`
}

// 集計はすべて同じ明細スナップショットから計算する（途中の変更が混ざらないように）。
type CartResponse struct {
	Items            []CartItemResponse `json:"items"`
	TotalItems       int64              `json:"total_items"`
	Subtotal         int64              `json:"subtotal"`
	TotalWeightGrams int64              `json:"total_weight_g"`
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

// GetCart はカート取得（無ければ空で作られる）。
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}

	s := u.carts.GetOrCreate(sessionID)
	return buildCartResponse(s), nil
}

// AddToCart はカートに追加（同一商品は数量加算）。
// 数量省略（0）は1として扱い、負数は拒否する。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}
	if in.ProductID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品チェック（公開のみ）。価格と重さはこの時点の値がカートに固定される。
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	s := u.carts.GetOrCreate(sessionID)
	if err := s.AddItem(p, qty); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return buildCartResponse(s), nil
}

// UpdateItem は数量変更。0以下は削除と同じ。無い商品IDはno-op（現状のカートを返す）。
func (u *CartUsecase) UpdateItem(ctx context.Context, sessionID string, productID string, quantity int64) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	s := u.carts.GetOrCreate(sessionID)
	s.UpdateQuantity(productID, quantity)

	return buildCartResponse(s), nil
}

// RemoveItem は明細削除。無い商品IDはno-op。
func (u *CartUsecase) RemoveItem(ctx context.Context, sessionID string, productID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	s := u.carts.GetOrCreate(sessionID)
	s.RemoveItem(productID)

	return buildCartResponse(s), nil
}

// ClearCart はカートを空にする。
func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}

	s := u.carts.GetOrCreate(sessionID)
	s.Clear()

	return buildCartResponse(s), nil
}

func buildCartResponse(s *cart.Store) CartResponse {
	items := s.Items()

	respItems := make([]CartItemResponse, 0, len(items))
	var totalItems, subtotal, weight int64

	for _, it := range items {
		respItems = append(respItems, CartItemResponse{
			ProductID:   it.Product.ID,
			Name:        it.Product.Name,
			Price:       it.Product.Price,
			WeightGrams: it.Product.WeightGrams,
			Quantity:    it.Quantity,
		})

		totalItems += it.Quantity
		subtotal += it.Product.Price * it.Quantity
		weight += it.Product.WeightGrams * it.Quantity
	}

	return CartResponse{
		Items:            respItems,
		TotalItems:       totalItems,
		Subtotal:         subtotal,
		TotalWeightGrams: weight,
	}
}
