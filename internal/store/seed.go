package store

import (
	"time"

	"sales-flow/internal/models"
)

// PasswordHasher hashes seed passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// DefaultPassword is given to seeded accounts and to accounts created
// without an explicit password.
const DefaultPassword = "password123"

// Seed returns the dataset used when no state is stored yet
func Seed(hasher PasswordHasher, now time.Time) (models.State, error) {
	hash, err := hasher.Hash(DefaultPassword)
	if err != nil {
		return models.State{}, err
	}

	users := []models.User{
		{ID: "U01", Username: "admin", Name: "Admin User", Email: "admin@Ep.com", Role: models.RoleAdmin},
		{ID: "U02", Username: "Agus_sales", Name: "Agus", Email: "Agus@Ep.com", Role: models.RoleSales},
		{ID: "U03", Username: "tedy_sales", Name: "Tedy", Email: "tedy@EP.com", Role: models.RoleSales},
		{ID: "U04", Username: "titi_spv", Name: "Titi", Email: "Titi@Ep.com", Role: models.RoleSPV},
		{ID: "U05", Username: "Jeffri_mgr", Name: "Jeffri", Email: "Jeff@Ep.com", Role: models.RoleManager},
	}
	for i := range users {
		users[i].PasswordHash = hash
	}

	return models.State{
		Users: users,
		SKUs: []models.SKU{
			{ID: "10228494", Name: "DHM 20 Y25 A", WarehouseStock: 1150},
			{ID: "10235628", Name: "DHM 20 Y25 B", WarehouseStock: 800},
			{ID: "10220528", Name: "DHF 16 Y25", WarehouseStock: 2500},
			{ID: "10229572", Name: "DHF 16 Y25 A", WarehouseStock: 4005},
		},
		Orders: []models.Order{},
		Returns: []models.ReturnRecord{
			{ID: "RET-001", SalesID: "Agus_sales", SalesName: "Agus", SKUID: "10228494", SKUName: "DHM 20 Y25 A", Quantity: 5, CreatedAt: now},
			{ID: "RET-002", SalesID: "Tedy_sales", SalesName: "Tedi", SKUID: "10235628", SKUName: "DHM 20 Y25 B", Quantity: 2, CreatedAt: now},
		},
		Notifications: []models.Notification{},
	}, nil
}
