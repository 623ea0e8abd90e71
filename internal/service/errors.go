package service

import "errors"

// 业务错误哨兵，handler 层通过 errors.Is 映射 HTTP 状态码
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrEmailExists        = errors.New("email already registered")
	ErrUsernameExists     = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrUserNotFound       = errors.New("user not found")

	ErrProductNotFound = errors.New("product not found")
	ErrProductNotOwned = errors.New("product not owned by user")

	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")

	ErrEmptyOrder           = errors.New("order has no items")
	ErrInvalidOrderItem     = errors.New("invalid order item")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidOrderStatus   = errors.New("invalid order status")
	ErrTransitionNotAllowed = errors.New("order status transition not allowed")
)
