package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"sales-flow/internal/importer"
	"sales-flow/internal/models"
	"sales-flow/internal/store"
	"sales-flow/internal/util"
	"sales-flow/internal/workflow"

	"go.uber.org/zap"
)

// CatalogService covers the admin side of stock: catalog and return
// imports, the return log, exports and dashboard aggregates.
type CatalogService struct {
	store     *store.Store
	publisher EventPublisher
	env       workflow.Env
	logger    *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, publisher EventPublisher) *CatalogService {
	return &CatalogService{
		store:     store,
		publisher: publisher,
		env:       defaultEnv(),
		logger:    util.GetLogger(),
	}
}

// ReturnRequest is a single return record entered by hand
type ReturnRequest struct {
	SalesUsername string `json:"salesUsername"`
	SalesName     string `json:"salesName"`
	SKUID         string `json:"skuId"`
	SKUName       string `json:"skuName"`
	Quantity      int    `json:"quantity"`
}

// Stats are the admin dashboard headline numbers
type Stats struct {
	TotalWarehouse int `json:"totalWarehouse"`
	TotalReturn    int `json:"totalReturn"`
	TotalOrders    int `json:"totalOrders"`
	TotalUsers     int `json:"totalUsers"`
}

// SalesSummaryRow aggregates one salesperson's orders in one status
type SalesSummaryRow struct {
	SalesID    string             `json:"salesId"`
	Username   string             `json:"username"`
	SalesName  string             `json:"salesName"`
	Status     models.OrderStatus `json:"status"`
	TotalQty   int                `json:"totalQty"`
	OrderCount int                `json:"orderCount"`
}

// InventoryRow is a catalog entry with the returned stock visible to the caller
type InventoryRow struct {
	SKUID          string `json:"skuId"`
	Name           string `json:"name"`
	WarehouseStock int    `json:"warehouseStock"`
	ReturnStock    int    `json:"returnStock"`
}

// ListSKUs returns the catalog
func (s *CatalogService) ListSKUs() []models.SKU {
	var out []models.SKU
	s.store.View(func(state *models.State) {
		out = append(make([]models.SKU, 0, len(state.SKUs)), state.SKUs...)
	})
	return out
}

// ImportCatalog replaces the whole catalog with the rows read from r. When
// no row is valid the catalog is left as it was.
func (s *CatalogService) ImportCatalog(ctx context.Context, actor models.User, r io.Reader) (importer.Result, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ImportCatalog")
	defer span.End()

	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return importer.Result{}, err
	}

	skus, res, err := importer.ParseCatalog(r)
	util.ImportRowsSkipped.WithLabelValues("catalog").Add(float64(res.Skipped))
	if err != nil {
		util.ImportsTotal.WithLabelValues("catalog", "failed").Inc()
		return res, err
	}

	if err := s.store.Update(ctx, func(state *models.State) error {
		state.SKUs = skus
		return nil
	}); err != nil {
		util.ImportsTotal.WithLabelValues("catalog", "failed").Inc()
		return res, err
	}

	util.ImportsTotal.WithLabelValues("catalog", "ok").Inc()
	s.logger.Info("Catalog imported",
		zap.Int("rows", res.Rows),
		zap.Int("skipped", res.Skipped))
	s.publishImport(ctx, models.EventTypeCatalogImported, res)
	return res, nil
}

// ImportReturns replaces the whole return log with the rows read from r
func (s *CatalogService) ImportReturns(ctx context.Context, actor models.User, r io.Reader) (importer.Result, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ImportReturns")
	defer span.End()

	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return importer.Result{}, err
	}

	records, res, err := importer.ParseReturns(r, s.env.Now(), s.env.NewID)
	util.ImportRowsSkipped.WithLabelValues("returns").Add(float64(res.Skipped))
	if err != nil {
		util.ImportsTotal.WithLabelValues("returns", "failed").Inc()
		return res, err
	}

	if err := s.store.Update(ctx, func(state *models.State) error {
		state.Returns = records
		return nil
	}); err != nil {
		util.ImportsTotal.WithLabelValues("returns", "failed").Inc()
		return res, err
	}

	util.ImportsTotal.WithLabelValues("returns", "ok").Inc()
	s.logger.Info("Returns imported",
		zap.Int("rows", res.Rows),
		zap.Int("skipped", res.Skipped))
	s.publishImport(ctx, models.EventTypeReturnsImported, res)
	return res, nil
}

func (s *CatalogService) publishImport(ctx context.Context, eventType string, res importer.Result) {
	event := &models.ImportCompletedEvent{
		BaseEvent: newBaseEvent(eventType, s.env.Now()),
		Rows:      res.Rows,
		Skipped:   res.Skipped,
	}
	if err := s.publisher.PublishImportCompleted(ctx, event); err != nil {
		publishFailed(s.logger, eventType, err)
	}
}

// ListReturns returns the return log. Sales users only get their own records.
func (s *CatalogService) ListReturns(actor models.User) ([]models.ReturnRecord, error) {
	if err := requireRole(actor, models.RoleAdmin, models.RoleSales); err != nil {
		return nil, err
	}

	out := make([]models.ReturnRecord, 0)
	s.store.View(func(state *models.State) {
		for _, r := range state.Returns {
			if actor.Role == models.RoleAdmin || ownsReturn(actor, r) {
				out = append(out, r)
			}
		}
	})
	return out, nil
}

// AddReturn appends one return record to the log
func (s *CatalogService) AddReturn(ctx context.Context, actor models.User, req ReturnRequest) (*models.ReturnRecord, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.AddReturn")
	defer span.End()

	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	record, ok := importer.BuildReturn(req.SalesUsername, req.SalesName, req.SKUID, req.SKUName, strconv.Itoa(req.Quantity))
	if !ok || record.Quantity <= 0 {
		return nil, fmt.Errorf("%w: return needs sales username, sales name, sku id, sku name and a positive quantity", models.ErrInvalidInput)
	}
	record.ID = s.env.NewID("RET")
	record.CreatedAt = s.env.Now()

	if err := s.store.Update(ctx, func(state *models.State) error {
		state.Returns = append(state.Returns, record)
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Return record added",
		zap.String("return_id", record.ID),
		zap.String("sku_id", record.SKUID),
		zap.Int("quantity", record.Quantity))
	return &record, nil
}

// DeleteReturn removes one return record
func (s *CatalogService) DeleteReturn(ctx context.Context, actor models.User, id string) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteReturn")
	defer span.End()

	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}

	err := s.store.Update(ctx, func(state *models.State) error {
		for i, r := range state.Returns {
			if r.ID == id {
				state.Returns = append(state.Returns[:i], state.Returns[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", models.ErrReturnNotFound, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Return record deleted", zap.String("return_id", id))
	return nil
}

// SyncCatalog tells every salesperson the stock figures were refreshed
func (s *CatalogService) SyncCatalog(ctx context.Context, actor models.User) (*models.Notification, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.SyncCatalog")
	defer span.End()

	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	notif := workflow.SyncNotification(s.env)
	if err := s.store.Update(ctx, func(state *models.State) error {
		state.PrependNotifications(notif)
		return nil
	}); err != nil {
		return nil, err
	}

	publishNotifications(ctx, s.publisher, s.logger, []models.Notification{notif})
	return &notif, nil
}

// Stats returns the admin dashboard totals
func (s *CatalogService) Stats(actor models.User) (*Stats, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	var stats Stats
	s.store.View(func(state *models.State) {
		for _, sku := range state.SKUs {
			stats.TotalWarehouse += sku.WarehouseStock
		}
		for _, r := range state.Returns {
			stats.TotalReturn += r.Quantity
		}
		stats.TotalOrders = len(state.Orders)
		stats.TotalUsers = len(state.Users)
	})
	return &stats, nil
}

// SalesSummary groups orders by salesperson and status, ordered by name
func (s *CatalogService) SalesSummary(actor models.User) ([]SalesSummaryRow, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	rows := make([]SalesSummaryRow, 0)
	s.store.View(func(state *models.State) {
		index := make(map[string]int)
		for i := range state.Orders {
			o := &state.Orders[i]
			key := o.SalesID + "_" + string(o.Status)
			pos, ok := index[key]
			if !ok {
				username := "unknown"
				if u := state.FindUser(o.SalesID); u >= 0 {
					username = state.Users[u].Username
				}
				pos = len(rows)
				index[key] = pos
				rows = append(rows, SalesSummaryRow{
					SalesID:   o.SalesID,
					Username:  username,
					SalesName: o.SalesName,
					Status:    o.Status,
				})
			}
			rows[pos].TotalQty += o.TotalQuantity()
			rows[pos].OrderCount++
		}
	})

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].SalesName < rows[j].SalesName })
	return rows, nil
}

// Inventory lists the catalog with returned stock per SKU. Admins see all
// returns, sales users only the ones booked under their username.
func (s *CatalogService) Inventory(actor models.User) []InventoryRow {
	rows := make([]InventoryRow, 0)
	s.store.View(func(state *models.State) {
		returned := make(map[string]int)
		for _, r := range state.Returns {
			if actor.Role == models.RoleAdmin || ownsReturn(actor, r) {
				returned[r.SKUID] += r.Quantity
			}
		}
		for _, sku := range state.SKUs {
			rows = append(rows, InventoryRow{
				SKUID:          sku.ID,
				Name:           sku.Name,
				WarehouseStock: sku.WarehouseStock,
				ReturnStock:    returned[sku.ID],
			})
		}
	})
	return rows
}

// Export writes every order line as CSV
func (s *CatalogService) Export(ctx context.Context, actor models.User, w io.Writer) error {
	_, span := util.StartSpan(ctx, "CatalogService.Export")
	defer span.End()

	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}

	var (
		orders []models.Order
		users  []models.User
	)
	s.store.View(func(state *models.State) {
		orders = append(make([]models.Order, 0, len(state.Orders)), state.Orders...)
		users = append(make([]models.User, 0, len(state.Users)), state.Users...)
	})
	return importer.ExportOrders(w, orders, users)
}

func ownsReturn(actor models.User, r models.ReturnRecord) bool {
	return actor.Role == models.RoleSales && strings.EqualFold(r.SalesID, actor.Username)
}
