package importer

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"sales-flow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqID() func(string) string {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}

func TestParseCatalogSkipsMalformedRows(t *testing.T) {
	skus, res, err := ParseCatalog(strings.NewReader("A1,Widget,10\nbad,row"))
	require.NoError(t, err)

	assert.Equal(t, []models.SKU{{ID: "A1", Name: "Widget", WarehouseStock: 10}}, skus)
	assert.Equal(t, Result{Rows: 1, Skipped: 1}, res)
}

func TestParseCatalogNormalizes(t *testing.T) {
	input := "SKU_ID, SKU_Name, Quantity\n a1 ,  Widget One , 7 \n\nb2,Gadget,x\nc3,,4\nd4,Thing,12,extra\r\n"
	skus, res, err := ParseCatalog(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []models.SKU{
		{ID: "A1", Name: "Widget One", WarehouseStock: 7},
		{ID: "D4", Name: "Thing", WarehouseStock: 12},
	}, skus)
	assert.Equal(t, 3, res.Skipped)
}

func TestParseCatalogNothingValid(t *testing.T) {
	_, _, err := ParseCatalog(strings.NewReader("SKU_ID,SKU_Name,Quantity\nonly,two"))
	assert.ErrorIs(t, err, models.ErrNoValidRows)

	_, _, err = ParseCatalog(strings.NewReader(""))
	assert.ErrorIs(t, err, models.ErrNoValidRows)
}

func TestParseReturns(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	input := "SalesUsername,SalesName,SKU_ID,SKU_Name,Quantity\nAgus_Sales, Agus, 10228494a, DHM 20, 5\ntedy_sales,Tedy,1,X,notanumber"

	records, res, err := ParseReturns(strings.NewReader(input), now, seqID())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "agus_sales", records[0].SalesID)
	assert.Equal(t, "10228494A", records[0].SKUID)
	assert.Equal(t, 5, records[0].Quantity)
	assert.Equal(t, now, records[0].CreatedAt)
	assert.True(t, strings.HasPrefix(records[0].ID, "RET-"))
	assert.Equal(t, 2, res.Skipped)
}

func TestParseReturnsNothingValid(t *testing.T) {
	_, _, err := ParseReturns(strings.NewReader("a,b,c"), time.Now(), seqID())
	assert.ErrorIs(t, err, models.ErrNoValidRows)
}

func TestExportOrders(t *testing.T) {
	users := []models.User{{ID: "U02", Username: "agus_sales"}}
	orders := []models.Order{
		{ID: "O1", SalesID: "U02", SalesName: "Agus", Status: models.OrderStatusApproved, Items: []models.OrderItem{
			{SKUName: "DHM 20 Y25 A", Quantity: 2},
			{SKUName: "DHF 16 Y25", Quantity: 1},
		}},
		{ID: "O2", SalesID: "gone", SalesName: "Ghost", Status: models.OrderStatusPendingSPV, Items: []models.OrderItem{
			{SKUName: "DHF 16 Y25", Quantity: 4},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportOrders(&buf, orders, users))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"Username,Sales Name,Product,Quantity,Status",
		"agus_sales,Agus,DHM 20 Y25 A,2,APPROVED",
		"agus_sales,Agus,DHF 16 Y25,1,APPROVED",
		"unknown,Ghost,DHF 16 Y25,4,PENDING_SPV",
	}, lines)
}

func TestExportOrdersEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, ExportOrders(&buf, nil, nil), models.ErrNoOrders)
}
