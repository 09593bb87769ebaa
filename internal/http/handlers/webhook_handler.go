// Order webhook handler.
//
// This file exposes the CRM-facing ingress:
//   - POST /webhooks/orders  (signed order push, fanned out to bound chats)
//
// The CRM signs every delivery with hex HMAC-SHA256 over the raw body.
// Verification happens here, before the payload is parsed, so the order
// service only ever sees authenticated input.
package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-warehouse-backend/internal/domain"
	"github.com/tbourn/go-warehouse-backend/internal/services"
)

// webhookSignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const webhookSignatureHeader = "X-Webhook-Signature"

// OrderWebhookResponse reports the outcome of an accepted order push.
type OrderWebhookResponse struct {
	Status    string `json:"status" example:"dispatched"`
	Delivered int    `json:"delivered" example:"2"`
}

// verifyWebhookSignature checks the hex HMAC-SHA256 of body against the
// signature header value using a constant-time compare.
func verifyWebhookSignature(secret string, body []byte, signature string) bool {
	sig, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(sig, mac.Sum(nil))
}

// OrderWebhook godoc
// @ID          orderWebhook
// @Summary     Receive a new order from the CRM
// @Description Verifies the HMAC signature, then notifies every chat actively bound to the order's warehouse.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
//
// @Param       X-Webhook-Signature  header  string  true  "Hex HMAC-SHA256 of the raw body"
// @Param       body                 body    domain.Order  true  "Order payload"
//
// @Success     200  {object}  handlers.OrderWebhookResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed or invalid payload"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid signature"
// @Failure     404  {object}  handlers.ErrorResponse  "No active binding for the warehouse"
// @Failure     503  {object}  handlers.ErrorResponse  "Binding store unavailable"
// @Router      /webhooks/orders [post]
func (h *Handlers) OrderWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable body")
		return
	}

	sig := c.GetHeader(webhookSignatureHeader)
	if sig == "" || !verifyWebhookSignature(h.webhookSecret, body, sig) {
		fail(c, http.StatusUnauthorized, ErrCodeInvalidSignature, "missing or invalid webhook signature")
		return
	}

	var order domain.Order
	if err := json.Unmarshal(body, &order); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	delivered, err := h.orderSvc.DispatchNewOrder(c.Request.Context(), &order)
	switch {
	case errors.Is(err, services.ErrInvalidOrder):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order payload failed validation")
		return
	case errors.Is(err, services.ErrNoActiveBinding):
		// 404 tells the CRM nobody is listening yet; it may retry after an
		// activation.
		fail(c, http.StatusNotFound, ErrCodeNoActiveBinding, "no active binding for this warehouse")
		return
	case errors.Is(err, services.ErrStorageUnavailable):
		fail(c, http.StatusServiceUnavailable, ErrCodeStorageUnavailable, "binding store is unavailable")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, OrderWebhookResponse{Status: "dispatched", Delivered: delivered})
}
