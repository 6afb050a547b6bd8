package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開商品のみを、検索/カテゴリ/ソート/ページング付きで返す。
func (r *ProductGormRepository) ListActive(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	// 公開（is_active=true）のものだけ
	tx = tx.Where("is_active = ?", true)

	// q nameを対象
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ?", like)
	}

	//カテゴリ
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	//sort
	switch q.Sort {
	case "price_asc":
		tx = tx.Order("price asc").Order("id asc")
	case "price_desc":
		tx = tx.Order("price desc").Order("id desc")
	default:
		tx = tx.Order("created_at desc").Order("id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}
