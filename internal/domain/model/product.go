package model

import (
	"time"

	"gorm.io/gorm"
)

// カタログの商品。コアからは読み取り専用（この層では更新しない）。
// 価格は最小通貨単位のint64、重さはグラムのint64で持つ（floatの丸め誤差対策）。
type Product struct {
	ID          string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"`
	WeightGrams int64          `gorm:"not null;column:weight_g" json:"weight_g"`
	Category    string         `gorm:"type:varchar(100);index" json:"category"`
	Images      []string       `gorm:"serializer:json" json:"images"`
	IsActive    bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
