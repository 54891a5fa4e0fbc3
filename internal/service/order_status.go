package service

import (
	"github.com/threadhouse/internal/constants"
)

var orderStatuses = map[string]bool{
	constants.OrderStatusPending:    true,
	constants.OrderStatusConfirmed:  true,
	constants.OrderStatusProcessing: true,
	constants.OrderStatusShipped:    true,
	constants.OrderStatusDelivered:  true,
	constants.OrderStatusCancelled:  true,
	constants.OrderStatusReturned:   true,
}

var orderPaymentStatuses = map[string]bool{
	constants.OrderPaymentStatusPending:  true,
	constants.OrderPaymentStatusPaid:     true,
	constants.OrderPaymentStatusFailed:   true,
	constants.OrderPaymentStatusRefunded: true,
}

// 未列出的状态（delivered 以外的终态）不可再流转；进行中的状态之间允许后台自由调整
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed:  true,
		constants.OrderStatusProcessing: true,
		constants.OrderStatusShipped:    true,
		constants.OrderStatusDelivered:  true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusPending:    true,
		constants.OrderStatusProcessing: true,
		constants.OrderStatusShipped:    true,
		constants.OrderStatusDelivered:  true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusShipped:   true,
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusDelivered:  true,
		constants.OrderStatusCancelled:  true,
		constants.OrderStatusReturned:   true,
	},
	constants.OrderStatusDelivered: {
		constants.OrderStatusReturned: true,
	},
}

var allowedPaymentTransitions = map[string]map[string]bool{
	constants.OrderPaymentStatusPending: {
		constants.OrderPaymentStatusPaid:   true,
		constants.OrderPaymentStatusFailed: true,
	},
	constants.OrderPaymentStatusFailed: {
		constants.OrderPaymentStatusPending: true,
		constants.OrderPaymentStatusPaid:    true,
	},
	constants.OrderPaymentStatusPaid: {
		constants.OrderPaymentStatusRefunded: true,
	},
}

func isTransitionAllowed(current, target string) bool {
	if current == target {
		return true
	}
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func isPaymentTransitionAllowed(current, target string) bool {
	if current == target {
		return true
	}
	nexts, ok := allowedPaymentTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// releasesStock 进入取消或退货时需要回补库存
func releasesStock(current, target string) bool {
	if current == target {
		return false
	}
	return target == constants.OrderStatusCancelled || target == constants.OrderStatusReturned
}
