package api

import (
	"net/http"
	"strings"

	"sales-flow/internal/workflow"

	"github.com/gin-gonic/gin"
)

type rejectRequest struct {
	Message string `json:"message"`
}

func (h *Handler) listOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"orders": h.orders.ListOrders(currentUser(c))})
}

func (h *Handler) submitOrder(c *gin.Context) {
	var req workflow.Submission
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	order, err := h.orders.SubmitOrder(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(currentUser(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) approveOrder(c *gin.Context) {
	order, err := h.orders.Approve(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// rejectOrder needs a reason; the order service itself would accept an
// empty one.
func (h *Handler) rejectOrder(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		badRequest(c, "a rejection message is required")
		return
	}

	order, err := h.orders.Reject(c.Request.Context(), currentUser(c), c.Param("id"), req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) pendingOrders(c *gin.Context) {
	groupBySales(c, h.orders.Pending(currentUser(c)))
}

func (h *Handler) processedOrders(c *gin.Context) {
	groupBySales(c, h.orders.Processed(currentUser(c)))
}

func (h *Handler) listNotifications(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"notifications": h.notifications.List(user),
		"unreadCount":   h.notifications.UnreadCount(user),
	})
}

func (h *Handler) markNotificationsRead(c *gin.Context) {
	changed, err := h.notifications.MarkAllRead(c.Request.Context(), currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": changed})
}

func (h *Handler) inventory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"skus": h.catalog.Inventory(currentUser(c))})
}

func (h *Handler) listReturns(c *gin.Context) {
	returns, err := h.catalog.ListReturns(currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"returns": returns})
}
