package service

import (
	"strings"

	"github.com/storefront-api/internal/constants"
)

// allowedTransitions 订单状态流转表。
// delivered 与 cancelled 为终态，取消只允许发生一次，
// 避免重复回补库存。
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
	constants.OrderStatusDelivered: {},
	constants.OrderStatusCancelled: {},
}

// isOrderStatus 判断是否为合法状态值
func isOrderStatus(status string) bool {
	for _, s := range constants.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// canTransition 判断状态流转是否允许
func canTransition(from, to string) bool {
	targets, ok := allowedTransitions[strings.ToLower(strings.TrimSpace(from))]
	if !ok {
		return false
	}
	return targets[strings.ToLower(strings.TrimSpace(to))]
}
