package public

import (
	"strconv"
	"strings"

	"github.com/storefront-api/internal/http/response"
	"github.com/storefront-api/internal/models"
	"github.com/storefront-api/internal/repository"
	"github.com/storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

type productRequest struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Price       models.Money `json:"price"`
	Quantity    int          `json:"quantity"`
	Category    string       `json:"category"`
	ImageURL    string       `json:"imageUrl"`
}

func (r productRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
	}
}

// CreateProduct 发布商品，归属当前登录用户
func (h *Handler) CreateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "product name is required")
		return
	}

	product, err := h.productService.Create(userID, req.toInput())
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Created(c, "product created", gin.H{"product": product})
}

// ListProducts 商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	products, total, err := h.productService.List(repository.ProductListFilter{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.SuccessWithPage(c, gin.H{"products": products}, response.Pagination{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}

// SearchProducts 按名称/分类/描述模糊搜索
func (h *Handler) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		response.BadRequest(c, "query is required")
		return
	}
	limit, offset := parseLimitOffset(c)
	products, total, err := h.productService.List(repository.ProductListFilter{
		Search: query,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.SuccessWithPage(c, gin.H{"products": products}, response.Pagination{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}

// CheckProductStock 查询库存是否满足数量
func (h *Handler) CheckProductStock(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Query("productId"), 10, 64)
	if err != nil || productID == 0 {
		response.BadRequest(c, "invalid productId")
		return
	}
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil || quantity <= 0 {
		response.BadRequest(c, "invalid quantity")
		return
	}

	result, err := h.productService.CheckStock(uint(productID), quantity)
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, "", result)
}

// ListProductsByUser 查询某个卖家的在售商品
func (h *Handler) ListProductsByUser(c *gin.Context) {
	userID, ok := parseUintParam(c, "userId")
	if !ok {
		return
	}
	limit, offset := parseLimitOffset(c)
	products, total, err := h.productService.List(repository.ProductListFilter{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.SuccessWithPage(c, gin.H{"products": products}, response.Pagination{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}

// ProductPopularity 商品热度：被多少购物车/订单引用、累计售出件数
func (h *Handler) ProductPopularity(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	popularity, err := h.productService.Popularity(productID)
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, "", popularity)
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetByID(productID)
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, "", gin.H{"product": product})
}

// UpdateProduct 更新商品，仅限归属用户
func (h *Handler) UpdateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "product name is required")
		return
	}

	product, err := h.productService.Update(userID, productID, req.toInput())
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, "product updated", gin.H{"product": product})
}

// DeleteProduct 下架商品，仅限归属用户
func (h *Handler) DeleteProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(userID, productID); err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, "product deleted", nil)
}
