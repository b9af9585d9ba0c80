package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sales-flow/internal/models"
	"sales-flow/internal/service"
	"sales-flow/internal/util"
	"sales-flow/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const userKey = "user"

// Handler contains HTTP handlers
type Handler struct {
	users         *service.UserService
	orders        *service.OrderService
	notifications *service.NotificationService
	catalog       *service.CatalogService
	loginLimiter  *rate.Limiter
	readyCheck    func(ctx context.Context) error
	logger        *zap.Logger
}

// NewHandler creates a new HTTP handler. loginLimiter throttles login
// attempts across all clients.
func NewHandler(
	users *service.UserService,
	orders *service.OrderService,
	notifications *service.NotificationService,
	catalog *service.CatalogService,
	loginLimiter *rate.Limiter,
) *Handler {
	return &Handler{
		users:         users,
		orders:        orders,
		notifications: notifications,
		catalog:       catalog,
		loginLimiter:  loginLimiter,
		logger:        util.GetLogger(),
	}
}

// SetReadinessCheck installs the probe used by /ready
func (h *Handler) SetReadinessCheck(check func(ctx context.Context) error) {
	h.readyCheck = check
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/session", h.rateLimit(), h.login)
		v1.DELETE("/session", h.logout)
		v1.GET("/session", h.authenticate(), h.currentSession)

		authed := v1.Group("", h.authenticate())
		{
			authed.GET("/orders", h.listOrders)
			authed.POST("/orders", requireRole(models.RoleSales), h.submitOrder)
			authed.GET("/orders/:id", h.getOrder)
			authed.POST("/orders/:id/approve", requireRole(models.RoleSPV, models.RoleManager), h.approveOrder)
			authed.POST("/orders/:id/reject", requireRole(models.RoleSPV, models.RoleManager), h.rejectOrder)

			authed.GET("/approvals/pending", requireRole(models.RoleSPV, models.RoleManager), h.pendingOrders)
			authed.GET("/approvals/processed", requireRole(models.RoleSPV, models.RoleManager), h.processedOrders)

			authed.GET("/notifications", h.listNotifications)
			authed.POST("/notifications/read", h.markNotificationsRead)

			authed.GET("/inventory", h.inventory)
			authed.GET("/returns", requireRole(models.RoleAdmin, models.RoleSales), h.listReturns)
		}

		admin := v1.Group("", h.authenticate(), requireRole(models.RoleAdmin))
		{
			admin.POST("/catalog/import", h.importCatalog)
			admin.POST("/catalog/sync", h.syncCatalog)
			admin.POST("/returns/import", h.importReturns)
			admin.POST("/returns", h.addReturn)
			admin.DELETE("/returns/:id", h.deleteReturn)

			admin.GET("/dashboard/stats", h.stats)
			admin.GET("/dashboard/sales-summary", h.salesSummary)
			admin.GET("/export", h.exportOrders)

			admin.GET("/users", h.listUsers)
			admin.POST("/users", h.addUser)
			admin.DELETE("/users/:id", h.deleteUser)
			admin.PUT("/users/:id/password", h.resetPassword)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports whether the state backend is reachable
func (h *Handler) readinessCheck(c *gin.Context) {
	if h.readyCheck != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.readyCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"details": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// authenticate loads the session user into the request context
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.users.CurrentUser()
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}
		c.Set(userKey, *user)
		c.Next()
	}
}

func requireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"details": "role " + string(user.Role) + " may not access this resource",
		})
	}
}

func (h *Handler) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.loginLimiter != nil && !h.loginLimiter.Allow() {
			util.LoginsTotal.WithLabelValues("throttled").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many login attempts",
			})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) models.User {
	user, _ := c.MustGet(userKey).(models.User)
	return user
}

// writeError maps domain errors to status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrReturnNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, models.ErrPermissionDenied):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrConflict):
		status, message = http.StatusConflict, "Conflict"
	case errors.Is(err, models.ErrInvalidInput):
		status, message = http.StatusBadRequest, "Invalid request"
	case errors.Is(err, models.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, models.ErrNotAuthenticated):
		status, message = http.StatusUnauthorized, "Not logged in"
	case errors.Is(err, models.ErrSKUNotFound),
		errors.Is(err, models.ErrNoValidRows),
		errors.Is(err, models.ErrNoOrders):
		status, message = http.StatusUnprocessableEntity, "Unprocessable request"
	default:
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func badRequest(c *gin.Context, details string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": details,
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

// csvBody returns the uploaded CSV, either a multipart "file" field or the
// raw request body.
func csvBody(c *gin.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		return fh.Open()
	}
	return c.Request.Body, nil
}

func groupBySales(c *gin.Context, orders []models.Order) {
	if c.Query("group") == "sales" {
		c.JSON(http.StatusOK, gin.H{"groups": workflow.GroupBySales(orders)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
