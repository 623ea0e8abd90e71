package public

import (
	"github.com/storefront-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

type cartAddRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type cartUpdateRequest struct {
	CartItemID uint `json:"cartItemId" binding:"required"`
	Quantity   int  `json:"quantity"`
}

type cartRemoveRequest struct {
	CartItemID uint `json:"cartItemId" binding:"required"`
}

// GetCart 获取购物车（含缓存合计）
func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	cart, err := h.cartService.GetByUser(userID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, "", gin.H{"cart": cart})
}

// ListCartItems 购物车明细（含商品与卖家）
func (h *Handler) ListCartItems(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	items, err := h.cartService.ListItems(userID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, "", gin.H{"items": items})
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	var req cartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "productId is required")
		return
	}

	if err := h.cartService.AddItem(userID, req.ProductID, req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, "item added to cart", nil)
}

// UpdateCartItem 修改购物车项数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	var req cartUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "cartItemId is required")
		return
	}

	if err := h.cartService.UpdateItem(userID, req.CartItemID, req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, "cart item updated", nil)
}

// RemoveCartItem 移除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	var req cartRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "cartItemId is required")
		return
	}

	if err := h.cartService.RemoveItem(userID, req.CartItemID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, "cart item removed", nil)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	if err := h.cartService.Clear(userID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, "cart cleared", nil)
}

// CartSummary 购物车汇总
func (h *Handler) CartSummary(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	summary, err := h.cartService.Summary(userID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, "", summary)
}
