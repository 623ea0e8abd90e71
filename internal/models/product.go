package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                               // 主键
	UserID      uint           `gorm:"index;not null" json:"user_id"`                      // 卖家用户ID
	Name        string         `gorm:"index;not null" json:"name"`                         // 商品名称
	Description string         `gorm:"type:text" json:"description"`                       // 商品描述
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价
	Quantity    int            `gorm:"not null;default:0" json:"quantity"`                 // 库存数量
	Category    string         `gorm:"index;default:''" json:"category"`                   // 分类
	ImageURL    string         `gorm:"default:''" json:"image_url"`                        // 图片地址
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间

	Seller *User `gorm:"foreignKey:UserID" json:"seller,omitempty"` // 关联卖家
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
