package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"sales-flow/internal/models"
)

// ExportHeader is the first row of the order export
var ExportHeader = []string{"Username", "Sales Name", "Product", "Quantity", "Status"}

// ExportOrders writes one CSV row per order line item
func ExportOrders(w io.Writer, orders []models.Order, users []models.User) error {
	if len(orders) == 0 {
		return models.ErrNoOrders
	}

	usernames := make(map[string]string, len(users))
	for _, u := range users {
		usernames[u.ID] = u.Username
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, order := range orders {
		username, ok := usernames[order.SalesID]
		if !ok {
			username = "unknown"
		}
		for _, item := range order.Items {
			row := []string{username, order.SalesName, item.SKUName, strconv.Itoa(item.Quantity), string(order.Status)}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write export row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
