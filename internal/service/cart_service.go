package service

import (
	"time"

	"github.com/storefront-api/internal/models"
	"github.com/storefront-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// CartSummary 购物车汇总
type CartSummary struct {
	TotalItems    int          `json:"total_items"`    // 商品种类数
	TotalQuantity int          `json:"total_quantity"` // 商品总件数
	TotalAmount   models.Money `json:"total_amount"`   // 合计金额
}

// GetByUser 获取用户购物车（历史账号缺失时补建）
func (s *CartService) GetByUser(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID}
		if err := s.cartRepo.Create(cart); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// ListItems 获取购物车项（含商品与卖家）
func (s *CartService) ListItems(userID uint) ([]models.CartItem, error) {
	cart, err := s.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.cartRepo.ListItems(cart.ID)
}

// AddItem 加入购物车。重复加入同一商品累加数量，
// 数量非正时等同于移除该商品。
func (s *CartService) AddItem(userID, productID uint, quantity int) error {
	if productID == 0 {
		return ErrInvalidInput
	}
	cart, err := s.GetByUser(userID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		existing, err := s.cartRepo.GetItemByCartAndProduct(cart.ID, productID)
		if err != nil {
			return err
		}
		if existing == nil {
			return nil
		}
		return s.removeAndRecompute(cart.ID, existing.ID)
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}

	existing, err := s.cartRepo.GetItemByCartAndProduct(cart.ID, productID)
	if err != nil {
		return err
	}

	newQuantity := quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}
	if product.Quantity < newQuantity {
		return ErrInsufficientStock
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		now := time.Now()
		if existing != nil {
			existing.Quantity = newQuantity
			existing.UpdatedAt = now
			if err := repo.SaveItem(existing); err != nil {
				return err
			}
		} else {
			item := &models.CartItem{
				CartID:    cart.ID,
				ProductID: productID,
				Quantity:  quantity,
				UnitPrice: product.Price, // 加入时的价格快照
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.CreateItem(item); err != nil {
				return err
			}
		}
		return recomputeCartTotal(repo, cart.ID)
	})
}

// UpdateItem 修改购物车项数量，数量非正时等同于移除。
func (s *CartService) UpdateItem(userID, cartItemID uint, quantity int) error {
	cart, err := s.GetByUser(userID)
	if err != nil {
		return err
	}
	item, err := s.cartRepo.GetItem(cartItemID)
	if err != nil {
		return err
	}
	if item == nil || item.CartID != cart.ID {
		return ErrCartItemNotFound
	}

	if quantity <= 0 {
		return s.removeAndRecompute(cart.ID, item.ID)
	}

	product, err := s.productRepo.GetByID(item.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if product.Quantity < quantity {
		return ErrInsufficientStock
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		item.Quantity = quantity
		item.UpdatedAt = time.Now()
		if err := repo.SaveItem(item); err != nil {
			return err
		}
		return recomputeCartTotal(repo, cart.ID)
	})
}

// RemoveItem 移除购物车项
func (s *CartService) RemoveItem(userID, cartItemID uint) error {
	cart, err := s.GetByUser(userID)
	if err != nil {
		return err
	}
	item, err := s.cartRepo.GetItem(cartItemID)
	if err != nil {
		return err
	}
	if item == nil || item.CartID != cart.ID {
		return ErrCartItemNotFound
	}
	return s.removeAndRecompute(cart.ID, item.ID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	cart, err := s.GetByUser(userID)
	if err != nil {
		return err
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		if err := repo.ClearItems(cart.ID); err != nil {
			return err
		}
		return repo.UpdateTotal(cart.ID, models.Money{})
	})
}

// Summary 购物车汇总（从当前行实时计算）
func (s *CartService) Summary(userID uint) (*CartSummary, error) {
	cart, err := s.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	items, err := s.cartRepo.ListItems(cart.ID)
	if err != nil {
		return nil, err
	}

	summary := &CartSummary{}
	total := decimal.Zero
	for _, item := range items {
		summary.TotalItems++
		summary.TotalQuantity += item.Quantity
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	summary.TotalAmount = models.NewMoneyFromDecimal(total)
	return summary, nil
}

func (s *CartService) removeAndRecompute(cartID, itemID uint) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		if err := repo.DeleteItem(itemID); err != nil {
			return err
		}
		return recomputeCartTotal(repo, cartID)
	})
}

// recomputeCartTotal 按单价快照重算购物车合计
func recomputeCartTotal(repo repository.CartRepository, cartID uint) error {
	items, err := repo.ListItems(cartID)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return repo.UpdateTotal(cartID, models.NewMoneyFromDecimal(total))
}
