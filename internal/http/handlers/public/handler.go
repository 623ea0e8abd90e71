package public

import (
	"strconv"
	"strings"

	"github.com/storefront-api/internal/http/response"
	"github.com/storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 对外 API 处理器集合
type Handler struct {
	userService    *service.UserService
	productService *service.ProductService
	cartService    *service.CartService
	orderService   *service.OrderService
}

// NewHandler 创建处理器
func NewHandler(userService *service.UserService, productService *service.ProductService, cartService *service.CartService, orderService *service.OrderService) *Handler {
	return &Handler{
		userService:    userService,
		productService: productService,
		cartService:    cartService,
		orderService:   orderService,
	}
}

// currentUserID 读取鉴权中间件写入的用户ID
func currentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "authentication required")
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		response.Unauthorized(c, "authentication required")
		return 0, false
	}
	return id, true
}

// pathUserID 解析 :userId 并校验与当前登录用户一致
func pathUserID(c *gin.Context) (uint, bool) {
	authID, ok := currentUserID(c)
	if !ok {
		return 0, false
	}
	paramID, ok := parseUintParam(c, "userId")
	if !ok {
		return 0, false
	}
	if paramID != authID {
		response.Unauthorized(c, "user mismatch")
		return 0, false
	}
	return authID, true
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(value), true
}

// parseLimitOffset 解析分页查询参数
func parseLimitOffset(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
