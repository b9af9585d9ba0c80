package workflow

import (
	"fmt"
	"time"

	"sales-flow/internal/models"
)

var (
	salesUser   = models.User{ID: "U02", Username: "agus_sales", Name: "Agus", Role: models.RoleSales}
	spvUser     = models.User{ID: "U04", Username: "titi_spv", Name: "Titi", Role: models.RoleSPV}
	managerUser = models.User{ID: "U05", Username: "jeffri_mgr", Name: "Jeffri", Role: models.RoleManager}
	adminUser   = models.User{ID: "U01", Username: "admin", Name: "Admin User", Role: models.RoleAdmin}

	catalog = []models.SKU{
		{ID: "A", Name: "Widget A", WarehouseStock: 10},
		{ID: "B", Name: "Widget B", WarehouseStock: 5},
	}
)

func testEnv() Env {
	seq := 0
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return Env{
		Now: func() time.Time { return base },
		NewID: func(prefix string) string {
			seq++
			return fmt.Sprintf("%s-%03d", prefix, seq)
		},
	}
}

func pendingOrder(status models.OrderStatus) models.Order {
	return models.Order{
		ID:        "ORD-1",
		SalesID:   salesUser.ID,
		SalesName: salesUser.Name,
		Type:      models.OrderTypeRegular,
		Items:     []models.OrderItem{{SKUID: "A", SKUName: "Widget A", Quantity: 2}},
		Status:    status,
	}
}
