package public

import (
	"github.com/storefront-api/internal/http/response"
	"github.com/storefront-api/internal/repository"
	"github.com/storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	Products []service.CreateOrderItem `json:"products" binding:"required"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// matchedUserID 解析路径参数并校验与当前登录用户一致。
// 订单路由首段统一使用 :id，承载用户ID时走此校验。
func (h *Handler) matchedUserID(c *gin.Context) (uint, bool) {
	authID, ok := currentUserID(c)
	if !ok {
		return 0, false
	}
	paramID, ok := parseUintParam(c, "id")
	if !ok {
		return 0, false
	}
	if paramID != authID {
		response.Unauthorized(c, "user mismatch")
		return 0, false
	}
	return authID, true
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := h.matchedUserID(c)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "products is required")
		return
	}

	order, err := h.orderService.Create(userID, req.Products)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Created(c, "order created", gin.H{"order": order})
}

// ListOrdersByUser 买家订单列表
func (h *Handler) ListOrdersByUser(c *gin.Context) {
	userID, ok := h.matchedUserID(c)
	if !ok {
		return
	}
	limit, offset := parseLimitOffset(c)
	orders, total, err := h.orderService.ListByUser(userID, limit, offset)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.SuccessWithPage(c, gin.H{"orders": orders}, response.Pagination{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}

// GetOrder 订单详情，仅买家可见
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := h.matchedUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "orderId")
	if !ok {
		return
	}
	order, err := h.orderService.GetByIDAndUser(orderID, userID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, "", gin.H{"order": order})
}

// ListOrderItems 订单项列表，路径首段承载订单ID
func (h *Handler) ListOrderItems(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	items, err := h.orderService.ListItems(orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, "", gin.H{"items": items})
}

// UpdateOrderStatus 订单状态流转，路径首段承载订单ID
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}

	order, err := h.orderService.UpdateStatus(orderID, req.Status)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, "order status updated", gin.H{"order": order})
}

// ListAllOrders 全量订单列表
func (h *Handler) ListAllOrders(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	limit, offset := parseLimitOffset(c)
	orders, total, err := h.orderService.ListAll(repository.OrderListFilter{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.SuccessWithPage(c, gin.H{"orders": orders}, response.Pagination{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}

// OrderStats 订单总体统计
func (h *Handler) OrderStats(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	stats, err := h.orderService.Stats()
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, "", stats)
}

// SellerSales 卖家售出记录
func (h *Handler) SellerSales(c *gin.Context) {
	authID, ok := currentUserID(c)
	if !ok {
		return
	}
	sellerID, ok := parseUintParam(c, "userId")
	if !ok {
		return
	}
	if sellerID != authID {
		response.Unauthorized(c, "user mismatch")
		return
	}
	limit, offset := parseLimitOffset(c)
	sales, total, err := h.orderService.SellerSales(sellerID, limit, offset)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.SuccessWithPage(c, gin.H{"sales": sales}, response.Pagination{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}

// SellerSalesStats 卖家销售统计
func (h *Handler) SellerSalesStats(c *gin.Context) {
	authID, ok := currentUserID(c)
	if !ok {
		return
	}
	sellerID, ok := parseUintParam(c, "userId")
	if !ok {
		return
	}
	if sellerID != authID {
		response.Unauthorized(c, "user mismatch")
		return
	}
	stats, err := h.orderService.SellerSalesStats(sellerID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, "", stats)
}
