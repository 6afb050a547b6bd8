package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type ProdProductRepoMock struct{ mock.Mock }

func (m *ProdProductRepoMock) ListActive(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProdProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func assertErrStatus(t *testing.T, err error, status int, msg string) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		t.Fatalf("want HTTPError, got %v", err)
	}
	assert.Equal(t, status, he.Status)
	assert.Equal(t, msg, he.Message)
}

// =====================
// List / Detail
// =====================

func TestProductUsecase_ListActiveProducts_InvalidPage(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock))

	_, err := uc.ListActiveProducts(context.Background(), usecase.ListProductsInput{Page: 0, Limit: 20})
	assertErrStatus(t, err, http.StatusBadRequest, "invalid page")
}

func TestProductUsecase_ListActiveProducts_InvalidLimit(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock))

	_, err := uc.ListActiveProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 101})
	assertErrStatus(t, err, http.StatusBadRequest, "invalid limit")
}

func TestProductUsecase_ListActiveProducts_InvalidSort(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock))

	_, err := uc.ListActiveProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20, Sort: "bogus"})
	assertErrStatus(t, err, http.StatusBadRequest, "invalid sort")
}

func TestProductUsecase_ListActiveProducts_Success(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	in := usecase.ListProductsInput{Page: 1, Limit: 20, Q: "coffee", Category: "beans", Sort: "new"}
	q := repo.ProductListQuery{Page: 1, Limit: 20, Q: "coffee", Category: "beans", Sort: "new"}

	items := []model.Product{
		{ID: "p-1", Name: "A", IsActive: true},
	}
	pRepo.On("ListActive", mock.Anything, q).Return(items, int64(1), nil)

	out, err := uc.ListActiveProducts(ctx, in)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, 1, out.Page)
	assert.Len(t, out.Items, 1)

	pRepo.AssertExpectations(t)
}

func TestProductUsecase_GetProductDetail_NotFound(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("FindByID", mock.Anything, "p-missing").Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.GetProductDetail(context.Background(), "p-missing")
	assertErrStatus(t, err, http.StatusNotFound, "not found")
}

// 非公開商品は存在しない扱い
func TestProductUsecase_GetProductDetail_InactiveHidden(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("FindByID", mock.Anything, "p-1").Return(model.Product{ID: "p-1", IsActive: false}, nil)

	_, err := uc.GetProductDetail(context.Background(), "p-1")
	assertErrStatus(t, err, http.StatusNotFound, "not found")
}

func TestProductUsecase_GetProductDetail_Success(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	want := model.Product{ID: "p-1", Name: "Beans", Price: 1200, WeightGrams: 500, IsActive: true}
	pRepo.On("FindByID", mock.Anything, "p-1").Return(want, nil)

	got, err := uc.GetProductDetail(context.Background(), "p-1")
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}
