package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/storefront-api/internal/models"
	"github.com/storefront-api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:product_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	return NewProductService(productRepo, cartRepo), db
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	svc, db := setupProductServiceTest(t)
	owner := createOrderTestUser(t, db, "product-owner")
	intruder := createOrderTestUser(t, db, "product-intruder")
	product := createOrderTestProduct(t, db, owner.ID, "Owned", 10, 5)

	input := ProductInput{Name: "Renamed", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(12)), Quantity: 5}
	if _, err := svc.Update(intruder.ID, product.ID, input); !errors.Is(err, ErrProductNotOwned) {
		t.Fatalf("foreign update want ErrProductNotOwned got %v", err)
	}
	if err := svc.Delete(intruder.ID, product.ID); !errors.Is(err, ErrProductNotOwned) {
		t.Fatalf("foreign delete want ErrProductNotOwned got %v", err)
	}

	updated, err := svc.Update(owner.ID, product.ID, input)
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Name != "Renamed" || updated.Price.String() != "12.00" {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestDeleteRemovesCartLinesButKeepsOrderItems(t *testing.T) {
	svc, db := setupProductServiceTest(t)
	owner := createOrderTestUser(t, db, "product-del-owner")
	buyer := createOrderTestUser(t, db, "product-del-buyer")
	product := createOrderTestProduct(t, db, owner.ID, "Retiring", 30, 10)

	cart := &models.Cart{UserID: buyer.ID}
	if err := db.Create(cart).Error; err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	cartItem := &models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1, UnitPrice: product.Price}
	if err := db.Create(cartItem).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
	order := &models.Order{UserID: buyer.ID, Status: "delivered", TotalAmount: product.Price}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	orderItem := &models.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: 1, UnitPrice: product.Price, Subtotal: product.Price}
	if err := db.Create(orderItem).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}

	if err := svc.Delete(owner.ID, product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := svc.GetByID(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("deleted product still visible, err=%v", err)
	}

	var cartCount, orderItemCount int64
	if err := db.Model(&models.CartItem{}).Where("product_id = ?", product.ID).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart items failed: %v", err)
	}
	if err := db.Model(&models.OrderItem{}).Where("product_id = ?", product.ID).Count(&orderItemCount).Error; err != nil {
		t.Fatalf("count order items failed: %v", err)
	}
	if cartCount != 0 {
		t.Fatalf("cart lines not removed: %d", cartCount)
	}
	if orderItemCount != 1 {
		t.Fatalf("order item snapshot lost: %d", orderItemCount)
	}
}

func TestCheckStockReportsAvailability(t *testing.T) {
	svc, db := setupProductServiceTest(t)
	owner := createOrderTestUser(t, db, "product-stock-owner")
	product := createOrderTestProduct(t, db, owner.ID, "Counted", 5, 3)

	result, err := svc.CheckStock(product.ID, 3)
	if err != nil {
		t.Fatalf("check stock failed: %v", err)
	}
	if !result.InStock || result.Available != 3 {
		t.Fatalf("exact stock want in_stock got %+v", result)
	}

	result, err = svc.CheckStock(product.ID, 4)
	if err != nil {
		t.Fatalf("check stock failed: %v", err)
	}
	if result.InStock {
		t.Fatalf("over stock should not be in_stock: %+v", result)
	}

	if _, err := svc.CheckStock(product.ID, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero quantity want ErrInvalidInput got %v", err)
	}
	if _, err := svc.CheckStock(9999, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("missing product want ErrProductNotFound got %v", err)
	}
}
