package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	"github.com/Gunvolt24/wb_orders/pkg/validate"
	"github.com/gin-gonic/gin"
)

// maxOrderBodyBytes - предел тела POST /order.
const maxOrderBodyBytes = 1 << 20

func (h *Handler) createOrder(c *gin.Context) {
	ctx := c.Request.Context()

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxOrderBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	order, err := validate.DecodeOrder(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.CreateOrder(ctx, order); err != nil {
		h.writeError(c, "CreateOrder", order.OrderUID, err)
		return
	}

	c.Header("Location", "/orders/"+order.OrderUID)
	c.JSON(http.StatusCreated, gin.H{"order_uid": order.OrderUID})
}

func (h *Handler) getOrder(c *gin.Context) {
	uid := c.Param("order_id")
	order, err := h.service.GetOrder(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, "GetOrder", uid, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) getDelivery(c *gin.Context) {
	uid := c.Param("order_id")
	delivery, err := h.service.GetDelivery(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, "GetDelivery", uid, err)
		return
	}
	c.JSON(http.StatusOK, delivery)
}

func (h *Handler) getPayment(c *gin.Context) {
	uid := c.Param("order_id")
	payment, err := h.service.GetPayment(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, "GetPayment", uid, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *Handler) getItems(c *gin.Context) {
	uid := c.Param("order_id")
	items, err := h.service.GetItems(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, "GetItems", uid, err)
		return
	}
	if items == nil {
		items = []domain.Item{}
	}
	c.JSON(http.StatusOK, items)
}
