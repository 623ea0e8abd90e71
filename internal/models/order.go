package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // 主键
	UserID      uint           `gorm:"index;not null" json:"user_id"`                             // 买家用户ID
	Status      string         `gorm:"index;not null" json:"status"`                              // 订单状态
	TotalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 订单总额（下单后不变）
	CancelledAt *time.Time     `gorm:"index" json:"cancelled_at,omitempty"`                       // 取消时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	Buyer *User       `gorm:"foreignKey:UserID" json:"buyer,omitempty"`  // 关联买家
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
