package router

import (
	"fmt"
	"strings"

	"github.com/storefront-api/internal/cache"
	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/constants"
	publichandlers "github.com/storefront-api/internal/http/handlers/public"
	"github.com/storefront-api/internal/logger"
	"github.com/storefront-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	h := publichandlers.NewHandler(c.UserService, c.ProductService, c.CartService, c.OrderService)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	authRequired := UserJWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo)

	api := r.Group("/api")
	{
		// 认证接口
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), h.Login)
		}

		// 用户资料（需鉴权）
		user := api.Group("/user")
		user.Use(authRequired)
		{
			user.GET("/:userId", h.GetProfile)
			user.PUT("/:userId", h.UpdateProfile)
			user.PUT("/:userId/password", h.ChangePassword)
		}

		// 商品：读公开，写需鉴权
		product := api.Group("/product")
		{
			product.GET("", h.ListProducts)
			product.GET("/search", h.SearchProducts)
			product.GET("/stock/check", h.CheckProductStock)
			product.GET("/user/:userId", h.ListProductsByUser)
			product.GET("/:id", h.GetProduct)
			product.GET("/:id/popularity", h.ProductPopularity)

			product.POST("", authRequired, h.CreateProduct)
			product.PUT("/:id", authRequired, h.UpdateProduct)
			product.DELETE("/:id", authRequired, h.DeleteProduct)
		}

		// 购物车（需鉴权）
		cart := api.Group("/cart")
		cart.Use(authRequired)
		{
			cart.GET("/:userId", h.GetCart)
			cart.GET("/:userId/items", h.ListCartItems)
			cart.GET("/:userId/summary", h.CartSummary)
			cart.POST("/:userId/add", h.AddCartItem)
			cart.PUT("/:userId/update", h.UpdateCartItem)
			cart.DELETE("/:userId/remove", h.RemoveCartItem)
			cart.DELETE("/:userId/clear", h.ClearCart)
		}

		// 订单（需鉴权）。动态段统一命名 :id，
		// 静态段 stats/sales 优先于参数段匹配。
		order := api.Group("/order")
		order.Use(authRequired)
		{
			order.GET("", h.ListAllOrders)
			order.GET("/stats/all", h.OrderStats)
			order.GET("/sales/:userId", h.SellerSales)
			order.GET("/sales/:userId/stats", h.SellerSalesStats)

			order.POST("/:id", h.CreateOrder)
			order.GET("/:id", h.ListOrdersByUser)
			order.GET("/:id/items", h.ListOrderItems)
			order.PUT("/:id/status", h.UpdateOrderStatus)
			order.GET("/:id/:orderId", h.GetOrder)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
