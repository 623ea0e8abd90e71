package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/storefront-api/internal/constants"
	"github.com/storefront-api/internal/logger"
	"github.com/storefront-api/internal/models"
	"github.com/storefront-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// Create 创建订单。整单在一个事务内完成：
// 逐项校验商品与库存、累计金额、写入订单与订单项、
// 条件扣减库存。任一项失败则整单回滚。
func (s *OrderService) Create(userID uint, items []CreateOrderItem) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	merged, err := mergeCreateOrderItems(items)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(merged))
		now := time.Now()

		for _, line := range merged {
			product, err := productRepo.GetByID(line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: product %d", ErrProductNotFound, line.ProductID)
			}
			if product.Quantity < line.Quantity {
				return fmt.Errorf("%w: product %s available %d requested %d",
					ErrInsufficientStock, product.Name, product.Quantity, line.Quantity)
			}
			subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)
			orderItems = append(orderItems, models.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				Subtotal:  models.NewMoneyFromDecimal(subtotal),
				CreatedAt: now,
				UpdatedAt: now,
			})
		}

		order = &models.Order{
			UserID:      userID,
			Status:      constants.OrderStatusPending,
			TotalAmount: models.NewMoneyFromDecimal(total),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := orderRepo.Create(order, orderItems); err != nil {
			return err
		}
		order.Items = orderItems

		for _, line := range merged {
			affected, err := productRepo.DecrementStock(line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				// 并发下单抢走了库存，整单回滚
				return fmt.Errorf("%w: product %d", ErrInsufficientStock, line.ProductID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_created",
		"order_id", order.ID,
		"user_id", userID,
		"total_amount", order.TotalAmount.String(),
		"item_count", len(order.Items),
	)
	return order, nil
}

// ListByUser 买家订单列表
func (s *OrderService) ListByUser(userID uint, limit, offset int) ([]models.Order, int64, error) {
	if userID == 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.orderRepo.List(repository.OrderListFilter{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
}

// ListAll 全量订单列表
func (s *OrderService) ListAll(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// GetByIDAndUser 订单详情（仅买家可见）
func (s *OrderService) GetByIDAndUser(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListItems 订单项列表
func (s *OrderService) ListItems(orderID uint) ([]models.OrderItem, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.orderRepo.ListItems(orderID)
}

// UpdateStatus 订单状态流转。流转到 cancelled 时
// 与状态写入同一事务内回补每个订单项的库存。
func (s *OrderService) UpdateStatus(orderID uint, status string) (*models.Order, error) {
	target := strings.ToLower(strings.TrimSpace(status))
	if !isOrderStatus(target) {
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !canTransition(order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, order.Status, target)
	}

	now := time.Now()
	if target == constants.OrderStatusCancelled {
		err = models.DB.Transaction(func(tx *gorm.DB) error {
			orderRepo := s.orderRepo.WithTx(tx)
			productRepo := s.productRepo.WithTx(tx)
			items, err := orderRepo.ListItems(orderID)
			if err != nil {
				return err
			}
			for _, item := range items {
				if _, err := productRepo.RestoreStock(item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
			return orderRepo.UpdateStatus(orderID, target, &now)
		})
	} else {
		err = s.orderRepo.UpdateStatus(orderID, target, nil)
	}
	if err != nil {
		return nil, err
	}

	logger.Infow("order_status_updated",
		"order_id", orderID,
		"from", order.Status,
		"to", target,
	)
	return s.orderRepo.GetByID(orderID)
}

// Stats 订单总体统计
func (s *OrderService) Stats() (*repository.OrderStats, error) {
	return s.orderRepo.Stats()
}

// SellerSales 卖家售出记录
func (s *OrderService) SellerSales(sellerID uint, limit, offset int) ([]models.OrderItem, int64, error) {
	if sellerID == 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.orderRepo.SellerSales(repository.SalesListFilter{
		SellerID: sellerID,
		Limit:    limit,
		Offset:   offset,
	})
}

// SellerSalesStats 卖家销售统计
func (s *OrderService) SellerSalesStats(sellerID uint) (*repository.SellerSalesStats, error) {
	if sellerID == 0 {
		return nil, ErrInvalidInput
	}
	return s.orderRepo.SellerSalesStats(sellerID)
}

// mergeCreateOrderItems 合并重复商品行并校验输入
func mergeCreateOrderItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	merged := make([]CreateOrderItem, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidOrderItem
		}
		if pos, ok := index[item.ProductID]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}
