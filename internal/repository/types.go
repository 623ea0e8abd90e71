package repository

import "github.com/storefront-api/internal/models"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Limit      int
	Offset     int
	Search     string
	UserID     uint
	WithSeller bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Limit  int
	Offset int
	UserID uint
	Status string
}

// SalesListFilter 查询卖家销售记录的过滤条件
type SalesListFilter struct {
	Limit    int
	Offset   int
	SellerID uint
}

// ProductPopularity 商品热度统计
type ProductPopularity struct {
	InCarts   int64 `json:"in_carts"`   // 含有该商品的购物车数
	InOrders  int64 `json:"in_orders"`  // 含有该商品的订单数
	TotalSold int64 `json:"total_sold"` // 累计售出数量
}

// OrderStats 订单总体统计
type OrderStats struct {
	TotalOrders  int64            `json:"total_orders"`
	TotalRevenue models.Money     `json:"total_revenue"`
	StatusCounts map[string]int64 `json:"status_counts"`
}

// SellerSalesStats 卖家销售统计
type SellerSalesStats struct {
	TotalSold        int64        `json:"total_sold"`         // 售出记录条数
	TotalQuantity    int64        `json:"total_quantity"`     // 售出商品总件数
	TotalRevenue     models.Money `json:"total_revenue"`      // 销售总额
	AverageSaleValue models.Money `json:"average_sale_value"` // 平均单笔销售额
}
