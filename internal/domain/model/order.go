package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCanceled   OrderStatus = "CANCELED"
)

// 注文は確定値のみ保存する（subtotal + shipping_price = total）。
type Order struct {
	ID              string      `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserEmail       string      `gorm:"type:varchar(255);not null;index" json:"user_email"`
	UserName        string      `gorm:"type:varchar(255);not null" json:"user_name"`
	UserPhone       string      `gorm:"type:varchar(50)" json:"user_phone"`
	Status          OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Subtotal        int64       `gorm:"not null" json:"subtotal"`
	ShippingPrice   int64       `gorm:"not null" json:"shipping_price"`
	Total           int64       `gorm:"not null" json:"total"`
	ParcelSize      string      `gorm:"type:varchar(20);not null" json:"parcel_size"`
	ShippingAddress string      `gorm:"type:text;not null" json:"shipping_address"`
	CreatedAt       time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
