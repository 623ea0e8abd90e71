package service

import (
	"strings"
	"time"

	"github.com/storefront-api/internal/models"
	"github.com/storefront-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, cartRepo repository.CartRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		cartRepo:    cartRepo,
	}
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	Name        string
	Description string
	Price       models.Money
	Quantity    int
	Category    string
	ImageURL    string
}

// StockCheckResult 库存检查结果
type StockCheckResult struct {
	ProductID uint `json:"product_id"`
	Requested int  `json:"requested"`
	Available int  `json:"available"`
	InStock   bool `json:"in_stock"`
}

// Create 创建商品（归属当前用户）
func (s *ProductService) Create(userID uint, input ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if userID == 0 || name == "" {
		return nil, ErrInvalidInput
	}
	if input.Price.LessThan(decimal.Zero) || input.Quantity < 0 {
		return nil, ErrInvalidInput
	}

	now := time.Now()
	product := &models.Product{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Quantity:    input.Quantity,
		Category:    strings.TrimSpace(input.Category),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// List 商品列表/搜索
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.WithSeller = true
	return s.productRepo.List(filter)
}

// GetByID 商品详情
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Update 更新商品（仅限归属用户）
func (s *ProductService) Update(userID, productID uint, input ProductInput) (*models.Product, error) {
	product, err := s.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product.UserID != userID {
		return nil, ErrProductNotOwned
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if input.Price.LessThan(decimal.Zero) || input.Quantity < 0 {
		return nil, ErrInvalidInput
	}

	product.Name = name
	product.Description = strings.TrimSpace(input.Description)
	product.Price = input.Price
	product.Quantity = input.Quantity
	product.Category = strings.TrimSpace(input.Category)
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 下架商品并移除所有购物车引用。
// 订单项保留下单时的快照，不受影响。
func (s *ProductService) Delete(userID, productID uint) error {
	product, err := s.GetByID(productID)
	if err != nil {
		return err
	}
	if product.UserID != userID {
		return ErrProductNotOwned
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.cartRepo.WithTx(tx).DeleteItemsByProduct(productID); err != nil {
			return err
		}
		return s.productRepo.WithTx(tx).Delete(productID)
	})
}

// CheckStock 检查商品库存是否满足数量
func (s *ProductService) CheckStock(productID uint, quantity int) (*StockCheckResult, error) {
	if quantity <= 0 {
		return nil, ErrInvalidInput
	}
	product, err := s.GetByID(productID)
	if err != nil {
		return nil, err
	}
	return &StockCheckResult{
		ProductID: product.ID,
		Requested: quantity,
		Available: product.Quantity,
		InStock:   product.Quantity >= quantity,
	}, nil
}

// Popularity 商品热度统计
func (s *ProductService) Popularity(productID uint) (*repository.ProductPopularity, error) {
	if _, err := s.GetByID(productID); err != nil {
		return nil, err
	}
	return s.productRepo.Popularity(productID)
}
