package service

import (
	"context"
	"fmt"

	"sales-flow/internal/models"
	"sales-flow/internal/store"
	"sales-flow/internal/util"
	"sales-flow/internal/workflow"

	"go.uber.org/zap"
)

// OrderService handles order submission and the approval chain
type OrderService struct {
	store     *store.Store
	publisher EventPublisher
	env       workflow.Env
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, publisher EventPublisher) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		env:       defaultEnv(),
		logger:    util.GetLogger(),
	}
}

// SubmitOrder places a new order for a salesperson. The order starts in
// PENDING_SPV and supervisors are notified.
func (s *OrderService) SubmitOrder(ctx context.Context, actor models.User, sub workflow.Submission) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.SubmitOrder")
	defer span.End()

	var (
		order  models.Order
		notifs []models.Notification
	)
	err := s.store.Update(ctx, func(state *models.State) error {
		var err error
		order, notifs, err = workflow.Submit(s.env, actor, sub, state.SKUs)
		if err != nil {
			return err
		}
		state.Orders = append(state.Orders, order)
		state.PrependNotifications(notifs...)
		return nil
	})
	if err != nil {
		util.OrderTransitionsDenied.WithLabelValues(denyReason(err)).Inc()
		s.logger.Warn("Order submission refused",
			zap.String("user_id", actor.ID),
			zap.Error(err))
		return nil, err
	}

	util.OrdersSubmittedTotal.WithLabelValues(string(order.Type)).Inc()
	s.logger.Info("Order submitted",
		zap.String("order_id", order.ID),
		zap.String("sales_id", order.SalesID),
		zap.Int("total_qty", order.TotalQuantity()))

	event := &models.OrderSubmittedEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderSubmitted, order.CreatedAt),
		OrderID:   order.ID,
		SalesID:   order.SalesID,
		OrderType: order.Type,
		Items:     order.Items,
	}
	if err := s.publisher.PublishOrderSubmitted(ctx, event); err != nil {
		publishFailed(s.logger, event.EventType, err)
	}
	publishNotifications(ctx, s.publisher, s.logger, notifs)

	return &order, nil
}

// AdvanceOrder moves an order to status to on behalf of actor. Only the
// edges of the approval chain are accepted and each only for its role.
func (s *OrderService) AdvanceOrder(ctx context.Context, actor models.User, orderID string, to models.OrderStatus, message string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.AdvanceOrder")
	defer span.End()

	var (
		from    models.OrderStatus
		updated models.Order
		notifs  []models.Notification
	)
	err := s.store.Update(ctx, func(state *models.State) error {
		i := state.FindOrder(orderID)
		if i < 0 {
			return fmt.Errorf("%w: %s", models.ErrOrderNotFound, orderID)
		}
		from = state.Orders[i].Status

		var err error
		updated, notifs, err = workflow.Advance(s.env, state.Orders[i], actor, to, message)
		if err != nil {
			return err
		}
		state.Orders[i] = updated
		state.PrependNotifications(notifs...)
		return nil
	})
	if err != nil {
		util.OrderTransitionsDenied.WithLabelValues(denyReason(err)).Inc()
		s.logger.Warn("Order transition refused",
			zap.String("order_id", orderID),
			zap.String("actor_id", actor.ID),
			zap.String("to", string(to)),
			zap.Error(err))
		return nil, err
	}

	util.OrderTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	s.logger.Info("Order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderStatusChanged, updated.UpdatedAt),
		OrderID:   updated.ID,
		ActorID:   actor.ID,
		From:      from,
		To:        to,
		Message:   updated.RejectionMessage,
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		publishFailed(s.logger, event.EventType, err)
	}
	publishNotifications(ctx, s.publisher, s.logger, notifs)

	return &updated, nil
}

// Approve forwards the order one step along the chain for actor's role
func (s *OrderService) Approve(ctx context.Context, actor models.User, orderID string) (*models.Order, error) {
	to, ok := workflow.ApproveTarget(actor.Role)
	if !ok {
		util.OrderTransitionsDenied.WithLabelValues("permission").Inc()
		return nil, fmt.Errorf("%w: role %s cannot approve orders", models.ErrPermissionDenied, actor.Role)
	}
	return s.AdvanceOrder(ctx, actor, orderID, to, "")
}

// Reject ends the order with the rejection status of actor's role
func (s *OrderService) Reject(ctx context.Context, actor models.User, orderID, message string) (*models.Order, error) {
	to, ok := workflow.RejectTarget(actor.Role)
	if !ok {
		util.OrderTransitionsDenied.WithLabelValues("permission").Inc()
		return nil, fmt.Errorf("%w: role %s cannot reject orders", models.ErrPermissionDenied, actor.Role)
	}
	return s.AdvanceOrder(ctx, actor, orderID, to, message)
}

// GetOrder returns one order. Sales users only see their own.
func (s *OrderService) GetOrder(actor models.User, orderID string) (*models.Order, error) {
	var (
		order models.Order
		found bool
	)
	s.store.View(func(state *models.State) {
		if i := state.FindOrder(orderID); i >= 0 {
			order, found = state.Orders[i], true
		}
	})
	if !found || (actor.Role == models.RoleSales && order.SalesID != actor.ID) {
		return nil, fmt.Errorf("%w: %s", models.ErrOrderNotFound, orderID)
	}
	return &order, nil
}

// ListOrders returns the orders actor may see: a salesperson's own history
// newest first, everything for the other roles.
func (s *OrderService) ListOrders(actor models.User) []models.Order {
	var out []models.Order
	s.store.View(func(state *models.State) {
		if actor.Role == models.RoleSales {
			out = workflow.HistoryFor(actor.ID, state.Orders)
			return
		}
		out = append(make([]models.Order, 0, len(state.Orders)), state.Orders...)
	})
	return out
}

// Pending lists the orders waiting on actor's decision
func (s *OrderService) Pending(actor models.User) []models.Order {
	var out []models.Order
	s.store.View(func(state *models.State) {
		out = workflow.PendingFor(actor.Role, state.Orders)
	})
	return out
}

// Processed lists the orders actor's role has already decided
func (s *OrderService) Processed(actor models.User) []models.Order {
	var out []models.Order
	s.store.View(func(state *models.State) {
		out = workflow.ProcessedFor(actor.Role, state.Orders)
	})
	return out
}
