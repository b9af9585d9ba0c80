package workflow

import (
	"sort"

	"sales-flow/internal/models"
)

// PendingFor lists the orders waiting on role's decision
func PendingFor(role models.Role, orders []models.Order) []models.Order {
	var want models.OrderStatus
	switch role {
	case models.RoleSPV:
		want = models.OrderStatusPendingSPV
	case models.RoleManager:
		want = models.OrderStatusPendingManager
	default:
		return []models.Order{}
	}
	return filter(orders, func(o models.Order) bool { return o.Status == want })
}

// ProcessedFor lists the orders role has already acted on
func ProcessedFor(role models.Role, orders []models.Order) []models.Order {
	switch role {
	case models.RoleSPV:
		return filter(orders, func(o models.Order) bool { return o.Status != models.OrderStatusPendingSPV })
	case models.RoleManager:
		return filter(orders, func(o models.Order) bool {
			return o.Status == models.OrderStatusApproved || o.Status == models.OrderStatusRejectedManager
		})
	}
	return []models.Order{}
}

// HistoryFor lists a salesperson's own orders, newest first
func HistoryFor(salesID string, orders []models.Order) []models.Order {
	own := filter(orders, func(o models.Order) bool { return o.SalesID == salesID })
	sort.SliceStable(own, func(i, j int) bool { return own[i].CreatedAt.After(own[j].CreatedAt) })
	return own
}

// GroupBySales buckets orders by the submitting salesperson's name
func GroupBySales(orders []models.Order) map[string][]models.Order {
	groups := make(map[string][]models.Order)
	for _, o := range orders {
		groups[o.SalesName] = append(groups[o.SalesName], o)
	}
	return groups
}

func filter(orders []models.Order, keep func(models.Order) bool) []models.Order {
	out := make([]models.Order, 0)
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
