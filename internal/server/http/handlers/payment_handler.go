package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
	"github.com/polkiloo/yemma/internal/server/http/dto"
)

// IdempotencyKeyHeader lets clients make intent creation safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

const paymentSetupFailed = "failed to set up payment"

// PaymentHandler creates payment intents.
type PaymentHandler struct {
	facade PaymentFacade
	logger *slog.Logger
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{facade: facade, logger: logger}
}

// CreateIntent handles POST /api/payments/intent.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req dto.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeInvalidArgument, "malformed request body"))
		return
	}

	result, err := h.facade.CreatePaymentIntent(c.Request.Context(), CurrentUserID(c), model.IntentRequest{
		Amount:         req.Amount,
		Currency:       req.Currency,
		CookID:         req.YemmaID,
		CustomerID:     req.CustomerID,
		Metadata:       req.Metadata,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, dto.NewError(dto.CodeUnauthenticated, err.Error()))
		case domainErrors.IsInvalidArgument(err):
			c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeInvalidArgument, err.Error()))
		default:
			h.logger.ErrorContext(c.Request.Context(), "payment intent creation failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, dto.NewError(dto.CodeInternal, paymentSetupFailed))
		}
		return
	}

	c.JSON(http.StatusOK, dto.PaymentIntentResponse{
		ClientSecret:    result.ClientSecret,
		PaymentIntentID: result.PaymentIntentID,
		Commission:      result.Commission,
		DeliveryFee:     result.DeliveryFee,
		Total:           result.Total,
	})
}
