package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/storefront-api/internal/constants"
	"github.com/storefront-api/internal/models"
	"github.com/storefront-api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	return NewOrderService(orderRepo, productRepo), db
}

func createOrderTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hashed",
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createOrderTestProduct(t *testing.T, db *gorm.DB, sellerID uint, name string, price int64, quantity int) *models.Product {
	t.Helper()
	product := &models.Product{
		UserID:   sellerID,
		Name:     name,
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Quantity: quantity,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestCreateOrderDecrementsStockAndComputesTotal(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seller := createOrderTestUser(t, db, "seller-total")
	buyer := createOrderTestUser(t, db, "buyer-total")
	desk := createOrderTestProduct(t, db, seller.ID, "Desk", 120, 10)
	lamp := createOrderTestProduct(t, db, seller.ID, "Lamp", 35, 4)

	order, err := svc.Create(buyer.ID, []CreateOrderItem{
		{ProductID: desk.ID, Quantity: 2},
		{ProductID: lamp.ID, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending got %s", order.Status)
	}
	if order.TotalAmount.String() != "345.00" {
		t.Fatalf("total want 345.00 got %s", order.TotalAmount.String())
	}
	if len(order.Items) != 2 {
		t.Fatalf("items want 2 got %d", len(order.Items))
	}

	var gotDesk, gotLamp models.Product
	if err := db.First(&gotDesk, desk.ID).Error; err != nil {
		t.Fatalf("reload desk failed: %v", err)
	}
	if err := db.First(&gotLamp, lamp.ID).Error; err != nil {
		t.Fatalf("reload lamp failed: %v", err)
	}
	if gotDesk.Quantity != 8 {
		t.Fatalf("desk quantity want 8 got %d", gotDesk.Quantity)
	}
	if gotLamp.Quantity != 1 {
		t.Fatalf("lamp quantity want 1 got %d", gotLamp.Quantity)
	}
}

func TestCreateOrderRollsBackOnInsufficientStock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seller := createOrderTestUser(t, db, "seller-rollback")
	buyer := createOrderTestUser(t, db, "buyer-rollback")
	plenty := createOrderTestProduct(t, db, seller.ID, "Plenty", 10, 100)
	scarce := createOrderTestProduct(t, db, seller.ID, "Scarce", 10, 1)

	_, err := svc.Create(buyer.ID, []CreateOrderItem{
		{ProductID: plenty.ID, Quantity: 5},
		{ProductID: scarce.ID, Quantity: 2},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", err)
	}

	// 整单回滚：没有订单、没有订单项、库存不变
	var orderCount, itemCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if err := db.Model(&models.OrderItem{}).Count(&itemCount).Error; err != nil {
		t.Fatalf("count order items failed: %v", err)
	}
	if orderCount != 0 || itemCount != 0 {
		t.Fatalf("rollback left rows: orders=%d items=%d", orderCount, itemCount)
	}
	var got models.Product
	if err := db.First(&got, plenty.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Quantity != 100 {
		t.Fatalf("plenty quantity want 100 got %d", got.Quantity)
	}
}

func TestCreateOrderRejectsEmptyAndInvalidItems(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, "buyer-empty")

	if _, err := svc.Create(buyer.ID, nil); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("empty order want ErrEmptyOrder got %v", err)
	}
	if _, err := svc.Create(buyer.ID, []CreateOrderItem{{ProductID: 1, Quantity: 0}}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("zero quantity want ErrInvalidOrderItem got %v", err)
	}
	if _, err := svc.Create(buyer.ID, []CreateOrderItem{{ProductID: 9999, Quantity: 1}}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("missing product want ErrProductNotFound got %v", err)
	}
}

func TestCreateOrderMergesDuplicateLines(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seller := createOrderTestUser(t, db, "seller-merge")
	buyer := createOrderTestUser(t, db, "buyer-merge")
	product := createOrderTestProduct(t, db, seller.ID, "Mergeable", 10, 10)

	order, err := svc.Create(buyer.ID, []CreateOrderItem{
		{ProductID: product.ID, Quantity: 2},
		{ProductID: product.ID, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if len(order.Items) != 1 {
		t.Fatalf("items want 1 got %d", len(order.Items))
	}
	if order.Items[0].Quantity != 5 {
		t.Fatalf("merged quantity want 5 got %d", order.Items[0].Quantity)
	}
}

func TestGuardedDecrementAdmitsSingleWinnerAtBoundary(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seller := createOrderTestUser(t, db, "seller-boundary")
	first := createOrderTestUser(t, db, "buyer-first")
	second := createOrderTestUser(t, db, "buyer-second")
	product := createOrderTestProduct(t, db, seller.ID, "LastUnit", 99, 1)

	if _, err := svc.Create(first.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 1}}); err != nil {
		t.Fatalf("first order failed: %v", err)
	}
	_, err := svc.Create(second.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 1}})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("second order want ErrInsufficientStock got %v", err)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Quantity != 0 {
		t.Fatalf("quantity want 0 got %d", got.Quantity)
	}
}

func TestUpdateStatusGuardsTransitionsAndRestoresStock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seller := createOrderTestUser(t, db, "seller-status")
	buyer := createOrderTestUser(t, db, "buyer-status")
	product := createOrderTestProduct(t, db, seller.ID, "Cancelable", 40, 6)

	order, err := svc.Create(buyer.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 4}})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := svc.UpdateStatus(order.ID, "sideways"); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Fatalf("bogus status want ErrInvalidOrderStatus got %v", err)
	}
	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusDelivered); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("pending->delivered want ErrTransitionNotAllowed got %v", err)
	}

	updated, err := svc.UpdateStatus(order.ID, constants.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if updated.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled got %s", updated.Status)
	}
	if updated.CancelledAt == nil {
		t.Fatalf("cancelled_at not set")
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Quantity != 6 {
		t.Fatalf("stock after cancel want 6 got %d", got.Quantity)
	}

	// 终态：再取消不允许，库存不会二次回补
	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusCancelled); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("double cancel want ErrTransitionNotAllowed got %v", err)
	}
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Quantity != 6 {
		t.Fatalf("stock after double cancel want 6 got %d", got.Quantity)
	}
}

func TestUpdateStatusHappyPathToDelivered(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seller := createOrderTestUser(t, db, "seller-flow")
	buyer := createOrderTestUser(t, db, "buyer-flow")
	product := createOrderTestProduct(t, db, seller.ID, "Flowing", 15, 3)

	order, err := svc.Create(buyer.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	for _, status := range []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
	} {
		updated, err := svc.UpdateStatus(order.ID, status)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("status want %s got %s", status, updated.Status)
		}
	}

	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusCancelled); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("delivered->cancelled want ErrTransitionNotAllowed got %v", err)
	}
}

func TestGetByIDAndUserRejectsForeignBuyer(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seller := createOrderTestUser(t, db, "seller-foreign")
	buyer := createOrderTestUser(t, db, "buyer-foreign")
	stranger := createOrderTestUser(t, db, "stranger-foreign")
	product := createOrderTestProduct(t, db, seller.ID, "Private", 10, 5)

	order, err := svc.Create(buyer.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := svc.GetByIDAndUser(order.ID, stranger.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign buyer want ErrOrderNotFound got %v", err)
	}
	got, err := svc.GetByIDAndUser(order.ID, buyer.ID)
	if err != nil {
		t.Fatalf("own order failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Product == nil {
		t.Fatalf("order items not preloaded: %+v", got.Items)
	}
}
