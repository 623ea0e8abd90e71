package repository

import (
	"errors"
	"time"

	"github.com/storefront-api/internal/constants"
	"github.com/storefront-api/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDAndUser(id, userID uint) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	ListItems(orderID uint) ([]models.OrderItem, error)
	UpdateStatus(orderID uint, status string, cancelledAt *time.Time) error
	Stats() (*OrderStats, error)
	SellerSales(filter SalesListFilter) ([]models.OrderItem, int64, error)
	SellerSalesStats(sellerID uint) (*SellerSalesStats, error)
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单及订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

// GetByID 按主键查询订单（含订单项与商品）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Items.Product.Seller").
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndUser 按主键与买家查询订单
func (r *GormOrderRepository) GetByIDAndUser(id, userID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Items.Product.Seller").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 订单列表（买家过滤可选）
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order

	query := r.db.Model(&models.Order{}).Preload("Items")
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyLimitOffset(query, filter.Limit, filter.Offset)

	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// ListItems 获取订单项
func (r *GormOrderRepository) ListItems(orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("order_id = ?", orderID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus 更新订单状态
func (r *GormOrderRepository) UpdateStatus(orderID uint, status string, cancelledAt *time.Time) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if cancelledAt != nil {
		updates["cancelled_at"] = cancelledAt
	}
	return r.db.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error
}

// Stats 订单总体统计（总数、总额、各状态数量）
func (r *GormOrderRepository) Stats() (*OrderStats, error) {
	stats := &OrderStats{
		StatusCounts: make(map[string]int64),
	}

	if err := r.db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	var revenue struct {
		Total models.Money
	}
	if err := r.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("status <> ?", constants.OrderStatusCancelled).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	stats.TotalRevenue = revenue.Total

	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.StatusCounts[row.Status] = row.Count
	}

	return stats, nil
}

// SellerSales 卖家售出的订单项（按下单时间倒序）
func (r *GormOrderRepository) SellerSales(filter SalesListFilter) ([]models.OrderItem, int64, error) {
	var items []models.OrderItem

	query := r.db.Model(&models.OrderItem{}).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.user_id = ?", filter.SellerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyLimitOffset(query, filter.Limit, filter.Offset)

	err := query.
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Order").
		Preload("Order.Buyer").
		Order("order_items.created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// SellerSalesStats 卖家销售统计（取消订单不计入）
func (r *GormOrderRepository) SellerSalesStats(sellerID uint) (*SellerSalesStats, error) {
	var row struct {
		TotalSold     int64
		TotalQuantity int64
		TotalRevenue  models.Money
	}
	err := r.db.Model(&models.OrderItem{}).
		Select("COUNT(*) AS total_sold, COALESCE(SUM(order_items.quantity), 0) AS total_quantity, COALESCE(SUM(order_items.subtotal), 0) AS total_revenue").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("products.user_id = ? AND orders.status <> ?", sellerID, constants.OrderStatusCancelled).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &SellerSalesStats{
		TotalSold:     row.TotalSold,
		TotalQuantity: row.TotalQuantity,
		TotalRevenue:  row.TotalRevenue,
	}
	if row.TotalSold > 0 {
		stats.AverageSaleValue = models.NewMoneyFromDecimal(
			row.TotalRevenue.Decimal.DivRound(decimal.NewFromInt(row.TotalSold), 2),
		)
	}
	return stats, nil
}
