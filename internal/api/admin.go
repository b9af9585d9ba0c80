package api

import (
	"bytes"
	"net/http"

	"sales-flow/internal/service"

	"github.com/gin-gonic/gin"
)

type resetPasswordRequest struct {
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

func (h *Handler) importCatalog(c *gin.Context) {
	body, err := csvBody(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer body.Close()

	res, err := h.catalog.ImportCatalog(c.Request.Context(), currentUser(c), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) importReturns(c *gin.Context) {
	body, err := csvBody(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer body.Close()

	res, err := h.catalog.ImportReturns(c.Request.Context(), currentUser(c), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) syncCatalog(c *gin.Context) {
	notif, err := h.catalog.SyncCatalog(c.Request.Context(), currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, notif)
}

func (h *Handler) addReturn(c *gin.Context) {
	var req service.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	record, err := h.catalog.AddReturn(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) deleteReturn(c *gin.Context) {
	if err := h.catalog.DeleteReturn(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.catalog.Stats(currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) salesSummary(c *gin.Context) {
	rows, err := h.catalog.SalesSummary(currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": rows})
}

// exportOrders renders into a buffer first so a failure still gets a JSON
// error instead of a truncated file.
func (h *Handler) exportOrders(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.catalog.Export(c.Request.Context(), currentUser(c), &buf); err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="orders.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (h *Handler) addUser(c *gin.Context) {
	var req service.NewUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.users.AddUser(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(*user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), currentUser(c), c.Param("id"), req.Password, req.Confirm); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
