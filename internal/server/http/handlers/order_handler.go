package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
	"github.com/polkiloo/yemma/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// List handles GET /api/user/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		if errors.Is(err, domainErrors.ErrUnauthenticated) {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:              order.ID,
		YemmaID:         order.CookID,
		Amount:          order.Amount,
		Commission:      order.Commission,
		DeliveryFee:     order.DeliveryFee,
		Total:           order.Total,
		Currency:        order.Currency,
		PaymentIntentID: order.PaymentIntentID,
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt,
		PaidAt:          order.PaidAt,
		FailedAt:        order.FailedAt,
		ErrorMessage:    order.ErrorMessage,
	}
}
