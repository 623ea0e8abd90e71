package main

import (
	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/logger"
	"github.com/storefront-api/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加演示用户
	users := []struct {
		Username string
		Email    string
		Password string
	}{
		{Username: "alice", Email: "alice@example.com", Password: "alice123"},
		{Username: "bob", Email: "bob@example.com", Password: "bob12345"},
	}

	userIDs := map[string]uint{}
	for _, seed := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", seed.Email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", seed.Email)
			userIDs[seed.Username] = existing.ID
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash password: %v", err)
		}
		user := models.User{
			Username:     seed.Username,
			Email:        seed.Email,
			PasswordHash: string(hash),
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", seed.Email, err)
			continue
		}
		if err := models.DB.Create(&models.Cart{UserID: user.ID}).Error; err != nil {
			stdLog.Printf("Failed to create cart for %s: %v", seed.Email, err)
		}
		stdLog.Printf("Created user: %s", seed.Email)
		userIDs[seed.Username] = user.ID
	}

	// 添加演示商品
	products := []models.Product{
		{
			UserID:      userIDs["alice"],
			Name:        "Wireless Bluetooth Earphones",
			Description: "High quality sound, long battery life, comfortable to wear",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			Quantity:    50,
			Category:    "electronics",
			ImageURL:    "https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800",
		},
		{
			UserID:      userIDs["alice"],
			Name:        "Smart Watch",
			Description: "Heart rate tracking, sleep analysis, 7-day battery",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(199.00)),
			Quantity:    30,
			Category:    "electronics",
			ImageURL:    "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=800",
		},
		{
			UserID:      userIDs["bob"],
			Name:        "Thermos Bottle",
			Description: "Keeps drinks hot for 12 hours, 500ml",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(25.50)),
			Quantity:    100,
			Category:    "lifestyle",
			ImageURL:    "https://images.unsplash.com/photo-1602143407151-7111542de6e8?w=800",
		},
		{
			UserID:      userIDs["bob"],
			Name:        "USB-C Charging Cable",
			Description: "Braided 2m cable, 100W fast charging",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(9.99)),
			Quantity:    200,
			Category:    "accessories",
			ImageURL:    "https://images.unsplash.com/photo-1583863788434-e58a36330cf0?w=800",
		},
	}

	for _, product := range products {
		if product.UserID == 0 {
			continue
		}
		var existing models.Product
		if err := models.DB.Where("user_id = ? AND name = ?", product.UserID, product.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Product already exists: %s", product.Name)
			continue
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", product.Name, err)
			continue
		}
		stdLog.Printf("Created product: %s", product.Name)
	}

	stdLog.Printf("Seed completed")
}
