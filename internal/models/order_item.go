package models

import (
	"time"
)

// OrderItem 订单项（下单时的不可变快照）
type OrderItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"`                          // 订单ID
	ProductID uint      `gorm:"index;not null" json:"product_id"`                        // 商品ID
	Quantity  int       `gorm:"not null" json:"quantity"`                                // 购买数量
	UnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 下单时单价
	Subtotal  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`   // 小计 = 单价 × 数量
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                 // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品（可能已下架）
	Order   *Order   `gorm:"foreignKey:OrderID" json:"order,omitempty"`     // 关联订单
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
