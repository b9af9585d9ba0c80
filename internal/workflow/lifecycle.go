// Package workflow holds the order approval state machine and the
// notification routing rules. Functions here are pure: they take the current
// values and return the new ones together with the notifications to store.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"sales-flow/internal/models"
)

// Env supplies time and identifiers to the transition functions
type Env struct {
	Now   func() time.Time
	NewID func(prefix string) string
}

// ItemRequest is one cart line of a submission
type ItemRequest struct {
	SKUID    string `json:"skuId"`
	Quantity int    `json:"quantity"`
}

// Submission is what a salesperson sends when placing an order
type Submission struct {
	Type   models.OrderType `json:"type"`
	Items  []ItemRequest    `json:"items"`
	POFile string           `json:"poFile,omitempty"`
}

type transition struct {
	from models.OrderStatus
	to   models.OrderStatus
}

// graph lists every edge of the status machine. NEW -> PENDING_SPV exists
// but no role may request it: orders are born PENDING_SPV.
var graph = map[transition]bool{
	{models.OrderStatusNew, models.OrderStatusPendingSPV}:                 true,
	{models.OrderStatusPendingSPV, models.OrderStatusPendingManager}:      true,
	{models.OrderStatusPendingSPV, models.OrderStatusRejectedSPV}:         true,
	{models.OrderStatusPendingManager, models.OrderStatusApproved}:        true,
	{models.OrderStatusPendingManager, models.OrderStatusRejectedManager}: true,
}

// allowedTransitions maps an edge to the only role allowed to take it
var allowedTransitions = map[transition]models.Role{
	{models.OrderStatusPendingSPV, models.OrderStatusPendingManager}:      models.RoleSPV,
	{models.OrderStatusPendingSPV, models.OrderStatusRejectedSPV}:         models.RoleSPV,
	{models.OrderStatusPendingManager, models.OrderStatusApproved}:        models.RoleManager,
	{models.OrderStatusPendingManager, models.OrderStatusRejectedManager}: models.RoleManager,
}

// CanTransition reports whether to is reachable from from in one step
func CanTransition(from, to models.OrderStatus) bool {
	return graph[transition{from, to}]
}

// CheckTransition validates that role may move an order from -> to
func CheckTransition(from, to models.OrderStatus, role models.Role) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
	}
	if allowed, ok := allowedTransitions[transition{from, to}]; !ok || allowed != role {
		return fmt.Errorf("%w: role %s cannot move order %s -> %s", models.ErrPermissionDenied, role, from, to)
	}
	return nil
}

// ApproveTarget returns the status an approval by role leads to
func ApproveTarget(role models.Role) (models.OrderStatus, bool) {
	switch role {
	case models.RoleSPV:
		return models.OrderStatusPendingManager, true
	case models.RoleManager:
		return models.OrderStatusApproved, true
	}
	return "", false
}

// RejectTarget returns the status a rejection by role leads to
func RejectTarget(role models.Role) (models.OrderStatus, bool) {
	switch role {
	case models.RoleSPV:
		return models.OrderStatusRejectedSPV, true
	case models.RoleManager:
		return models.OrderStatusRejectedManager, true
	}
	return "", false
}

// Submit builds a new PENDING_SPV order for actor from the catalog and
// returns the supervisor notification that goes with it.
func Submit(env Env, actor models.User, sub Submission, catalog []models.SKU) (models.Order, []models.Notification, error) {
	if actor.Role != models.RoleSales {
		return models.Order{}, nil, fmt.Errorf("%w: only sales can submit orders", models.ErrPermissionDenied)
	}

	orderType := sub.Type
	if orderType == "" {
		orderType = models.OrderTypeRegular
	}
	if orderType != models.OrderTypeRegular && orderType != models.OrderTypeAdditional {
		return models.Order{}, nil, fmt.Errorf("%w: unknown order type %q", models.ErrInvalidInput, sub.Type)
	}

	items, err := buildItems(sub.Items, catalog)
	if err != nil {
		return models.Order{}, nil, err
	}

	now := env.Now()
	order := models.Order{
		ID:        env.NewID("ORD"),
		SalesID:   actor.ID,
		SalesName: actor.Name,
		Type:      orderType,
		Items:     items,
		Status:    models.OrderStatusPendingSPV,
		POFile:    sub.POFile,
		CreatedAt: now,
		UpdatedAt: now,
	}

	notif := newNotification(env, models.ByRole(models.RoleSPV), models.NotificationAlert,
		"New Order Submission",
		fmt.Sprintf("%s has submitted a new order (%s). Pending your review.", order.SalesName, order.ID))

	return order, []models.Notification{notif}, nil
}

// buildItems merges duplicate cart lines and copies names from the catalog
func buildItems(reqs []ItemRequest, catalog []models.SKU) ([]models.OrderItem, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: order has no items", models.ErrInvalidInput)
	}

	names := make(map[string]string, len(catalog))
	for _, sku := range catalog {
		names[sku.ID] = sku.Name
	}

	items := make([]models.OrderItem, 0, len(reqs))
	index := make(map[string]int, len(reqs))
	for _, req := range reqs {
		skuID := strings.ToUpper(strings.TrimSpace(req.SKUID))
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for %s must be positive", models.ErrInvalidInput, skuID)
		}
		name, ok := names[skuID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", models.ErrSKUNotFound, skuID)
		}
		if i, seen := index[skuID]; seen {
			items[i].Quantity += req.Quantity
			continue
		}
		index[skuID] = len(items)
		items = append(items, models.OrderItem{SKUID: skuID, SKUName: name, Quantity: req.Quantity})
	}
	return items, nil
}

// Advance moves order to status to on behalf of actor and returns the
// updated order with the notifications the new status triggers.
func Advance(env Env, order models.Order, actor models.User, to models.OrderStatus, message string) (models.Order, []models.Notification, error) {
	if err := CheckTransition(order.Status, to, actor.Role); err != nil {
		return order, nil, err
	}

	message = strings.TrimSpace(message)
	order.Status = to
	order.UpdatedAt = env.Now()
	// a given message is kept on any edge, not only on rejections
	if message != "" {
		order.RejectionMessage = message
	}

	return order, notificationsFor(env, order, message), nil
}

func notificationsFor(env Env, order models.Order, message string) []models.Notification {
	switch order.Status {
	case models.OrderStatusPendingManager:
		return []models.Notification{
			newNotification(env, models.ByRole(models.RoleManager), models.NotificationInfo,
				"Order Reviewed by SPV",
				fmt.Sprintf("Order %s from %s has been reviewed by Supervisor and is pending Manager approval.", order.ID, order.SalesName)),
		}

	case models.OrderStatusApproved:
		return []models.Notification{
			newNotification(env, models.ByRole(models.RoleAdmin), models.NotificationSuccess,
				"Order Final Approval",
				fmt.Sprintf("Manager has approved order %s from %s. Ready for processing.", order.ID, order.SalesName)),
			newNotification(env, models.ByUser(order.SalesID), models.NotificationSuccess,
				"Order Approved",
				fmt.Sprintf("Your order %s has received final approval from the Manager.", order.ID)),
		}

	case models.OrderStatusRejectedSPV, models.OrderStatusRejectedManager:
		if message == "" {
			message = DefaultRejectionReason
		}
		return []models.Notification{
			newNotification(env, models.ByUser(order.SalesID), models.NotificationAlert,
				"Order Rejected",
				fmt.Sprintf("Your order %s was rejected. Reason: %s", order.ID, message)),
		}
	}
	return nil
}

// DefaultRejectionReason is shown when an approver rejects without a message
const DefaultRejectionReason = "No details provided."
