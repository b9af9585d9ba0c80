package models

import "time"

// Role is the permission group a user belongs to
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleSales   Role = "SALES"
	RoleSPV     Role = "SPV"
	RoleManager Role = "MANAGER"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSales, RoleSPV, RoleManager:
		return true
	}
	return false
}

// User represents an account that can log in
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         Role   `json:"role"`
}

// SKU represents a product in the warehouse catalog
type SKU struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	WarehouseStock int    `json:"warehouseStock"`
}

// ReturnRecord is stock returned by a salesperson. SalesID holds the
// salesperson's username, not the user id.
type ReturnRecord struct {
	ID        string    `json:"id"`
	SalesID   string    `json:"salesId"`
	SalesName string    `json:"salesName"`
	SKUID     string    `json:"skuId"`
	SKUName   string    `json:"skuName"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderType distinguishes the regular monthly order from top-ups
type OrderType string

const (
	OrderTypeRegular    OrderType = "REGULAR"
	OrderTypeAdditional OrderType = "ADDITIONAL"
)

// OrderStatus is a state in the approval workflow
type OrderStatus string

// Order statuses
const (
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusPendingSPV      OrderStatus = "PENDING_SPV"
	OrderStatusPendingManager  OrderStatus = "PENDING_MANAGER"
	OrderStatusApproved        OrderStatus = "APPROVED"
	OrderStatusRejectedSPV     OrderStatus = "REJECTED_SPV"
	OrderStatusRejectedManager OrderStatus = "REJECTED_MANAGER"
)

// Terminal reports whether no further transition can leave s
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusApproved, OrderStatusRejectedSPV, OrderStatusRejectedManager:
		return true
	}
	return false
}

// Rejected reports whether s is one of the reject branches
func (s OrderStatus) Rejected() bool {
	return s == OrderStatusRejectedSPV || s == OrderStatusRejectedManager
}

// OrderItem is a line item, denormalized from the catalog at submission
type OrderItem struct {
	SKUID    string `json:"skuId"`
	SKUName  string `json:"skuName"`
	Quantity int    `json:"quantity"`
}

// Order represents a sales order moving through approval
type Order struct {
	ID               string      `json:"id"`
	SalesID          string      `json:"salesId"`
	SalesName        string      `json:"salesName"`
	Type             OrderType   `json:"type"`
	Items            []OrderItem `json:"items"`
	Status           OrderStatus `json:"status"`
	POFile           string      `json:"poFile,omitempty"`
	RejectionMessage string      `json:"rejectionMessage,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// TotalQuantity sums the quantity over all line items
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// NotificationType is the severity shown next to a notification
type NotificationType string

const (
	NotificationInfo    NotificationType = "INFO"
	NotificationSuccess NotificationType = "SUCCESS"
	NotificationAlert   NotificationType = "ALERT"
)

// Notification is a message addressed to one user or to a whole role. In
// JSON the target is flattened into toUserId or toRole.
type Notification struct {
	ID        string           `json:"id"`
	Target    Target           `json:"-"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

// State is the whole persisted document. Notifications are kept newest first.
type State struct {
	CurrentUser   *User          `json:"currentUser"`
	Users         []User         `json:"users"`
	SKUs          []SKU          `json:"skus"`
	Orders        []Order        `json:"orders"`
	Returns       []ReturnRecord `json:"returns"`
	Notifications []Notification `json:"notifications"`
}

// FindOrder returns the index of the order with the given id, or -1
func (s *State) FindOrder(id string) int {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			return i
		}
	}
	return -1
}

// FindUser returns the index of the user with the given id, or -1
func (s *State) FindUser(id string) int {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return i
		}
	}
	return -1
}

// PrependNotifications adds notifications in emission order, so the last
// emitted one ends up first.
func (s *State) PrependNotifications(notifs ...Notification) {
	for _, n := range notifs {
		s.Notifications = append([]Notification{n}, s.Notifications...)
	}
}
