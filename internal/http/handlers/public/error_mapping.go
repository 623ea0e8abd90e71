package public

import (
	"errors"
	"net/http"

	"github.com/storefront-api/internal/http/response"
	"github.com/storefront-api/internal/logger"
	"github.com/storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target  error
	status  int
	message string
}

// respondWithMappedError 按规则表映射业务错误；命中规则但错误
// 带有详情（fmt.Errorf 包装）时透出详情消息。
func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackMessage string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			message := rule.message
			if detail := err.Error(); detail != rule.target.Error() {
				message = detail
			}
			response.Error(c, rule.status, message)
			return
		}
	}
	logger.Errorw("handler_unmapped_error", "error", err, "path", c.FullPath())
	response.Internal(c, fallbackMessage)
}

var authErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, status: http.StatusBadRequest, message: "invalid input"},
	{target: service.ErrInvalidEmail, status: http.StatusBadRequest, message: "invalid email"},
	{target: service.ErrWeakPassword, status: http.StatusBadRequest, message: "password does not meet policy"},
	{target: service.ErrEmailExists, status: http.StatusBadRequest, message: "email already registered"},
	{target: service.ErrUsernameExists, status: http.StatusBadRequest, message: "username already taken"},
	{target: service.ErrInvalidCredentials, status: http.StatusUnauthorized, message: "invalid credentials"},
	{target: service.ErrUserDisabled, status: http.StatusUnauthorized, message: "user disabled"},
	{target: service.ErrUserNotFound, status: http.StatusNotFound, message: "user not found"},
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, status: http.StatusBadRequest, message: "invalid input"},
	{target: service.ErrProductNotFound, status: http.StatusNotFound, message: "product not found"},
	{target: service.ErrProductNotOwned, status: http.StatusBadRequest, message: "product not owned by user"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, status: http.StatusBadRequest, message: "invalid input"},
	{target: service.ErrProductNotFound, status: http.StatusNotFound, message: "product not found"},
	{target: service.ErrCartNotFound, status: http.StatusNotFound, message: "cart not found"},
	{target: service.ErrCartItemNotFound, status: http.StatusNotFound, message: "cart item not found"},
	{target: service.ErrInsufficientStock, status: http.StatusBadRequest, message: "insufficient stock"},
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, status: http.StatusBadRequest, message: "invalid input"},
	{target: service.ErrEmptyOrder, status: http.StatusBadRequest, message: "order must contain at least one product"},
	{target: service.ErrInvalidOrderItem, status: http.StatusBadRequest, message: "invalid order item"},
	{target: service.ErrProductNotFound, status: http.StatusNotFound, message: "product not found"},
	{target: service.ErrInsufficientStock, status: http.StatusBadRequest, message: "insufficient stock"},
	{target: service.ErrOrderNotFound, status: http.StatusNotFound, message: "order not found"},
	{target: service.ErrInvalidOrderStatus, status: http.StatusBadRequest, message: "invalid order status"},
	{target: service.ErrTransitionNotAllowed, status: http.StatusBadRequest, message: "order status transition not allowed"},
}

func respondAuthError(c *gin.Context, err error) {
	respondWithMappedError(c, err, authErrorRules, "request failed")
}

func respondProductError(c *gin.Context, err error) {
	respondWithMappedError(c, err, productErrorRules, "request failed")
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, "request failed")
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderErrorRules, "request failed")
}
