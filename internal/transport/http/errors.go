package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	"github.com/Gunvolt24/wb_orders/pkg/validate"
	"github.com/gin-gonic/gin"
)

// writeError отображает ошибку сервиса в HTTP-ответ. Подробности внутренних
// ошибок клиенту не отдаются, только в лог.
func (h *Handler) writeError(c *gin.Context, op, uid string, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, validate.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidValue):
		h.log.Warnf(ctx, "%s rejected order_uid=%s err=%v", op, uid, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "order rejected: invalid value"})
	case errors.Is(err, domain.ErrOrderExists):
		c.JSON(http.StatusConflict, gin.H{"error": "order already exists"})
	case errors.Is(err, context.DeadlineExceeded):
		h.log.Warnf(ctx, "%s timed out order_uid=%s err=%v", op, uid, err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timeout"})
	default:
		h.log.Errorf(ctx, "%s failed order_uid=%s err=%v", op, uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
