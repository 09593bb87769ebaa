// Activation HTTP handlers.
//
// This file exposes REST endpoints for the chat↔warehouse activation flow:
//   - POST /activation/begin       (open the manual flow, code pending)
//   - POST /activation/code        (submit the activation code)
//   - POST /activation/link        (single-step deep-link activation)
//   - POST /activation/deactivate  (local deactivation, CRM never consulted)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate sentinel errors into HTTP responses. All binding semantics
// (CRM validation, conflict policy, commit atomicity) live in the service.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-warehouse-backend/internal/domain"
	"github.com/tbourn/go-warehouse-backend/internal/http/middleware"
	"github.com/tbourn/go-warehouse-backend/internal/repo"
	"github.com/tbourn/go-warehouse-backend/internal/services"
	"github.com/tbourn/go-warehouse-backend/internal/sysutil"
)

//
// Service contracts (context-aware)
//

// ActivationService defines the binding lifecycle operations consumed by the
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ActivationService interface {
	// BeginManualActivation opens the manual flow for a claimed warehouse.
	BeginManualActivation(ctx context.Context, chatID, warehouseID string) error
	// SubmitActivationCode resolves a pending manual flow with a code.
	SubmitActivationCode(ctx context.Context, chatID, code string) (*domain.WarehouseBinding, error)
	// ActivateViaDeepLink activates in a single step from a deep-link token.
	ActivateViaDeepLink(ctx context.Context, chatID, warehouseID, token string) (*domain.WarehouseBinding, error)
	// Deactivate flips the chat's binding to inactive without touching the CRM.
	Deactivate(ctx context.Context, chatID string) (*domain.WarehouseBinding, error)
	// BindingStatus reports the chat's current binding, active or inactive.
	BindingStatus(ctx context.Context, chatID string) (*domain.WarehouseBinding, error)
}

// OrderService defines order dispatch operations consumed by the webhook
// endpoint.
type OrderService interface {
	// DispatchNewOrder notifies every chat actively bound to the order's
	// warehouse and returns how many were reached.
	DispatchNewOrder(ctx context.Context, o *domain.Order) (int, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for activation, bindings, and the order
// webhook. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	actSvc   ActivationService
	orderSvc OrderService

	// webhookSecret signs incoming order webhooks (HMAC-SHA256 over the raw
	// body). Empty means the webhook route should not be registered.
	webhookSecret string

	// IdempotencyTTL bounds how long replay records for the mutating
	// activation endpoints stay valid. Router setup overrides it from config.
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(actSvc ActivationService, orderSvc OrderService, webhookSecret string) *Handlers {
	return &Handlers{
		actSvc:         actSvc,
		orderSvc:       orderSvc,
		webhookSecret:  webhookSecret,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// chatID extracts the chat identity from Gin context (set by upstream
// middleware). If absent, it falls back to the "X-Chat-ID" header and then the
// "chat_id" query parameter (bot gateways use both), and finally to
// "demo-chat". It never touches c.Request if it's nil.
func chatID(c *gin.Context) string {
	if v, ok := c.Get("chatID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if id := sysutil.FirstNonEmpty(c.GetHeader("X-Chat-ID"), c.Query("chat_id")); id != "" {
			return strings.TrimSpace(id)
		}
	}
	return "demo-chat"
}

//
// DTOs
//

// BeginActivationRequest is the JSON payload for opening the manual flow.
type BeginActivationRequest struct {
	// WarehouseID is the CRM identifier of the warehouse being claimed.
	WarehouseID string `json:"warehouse_id" binding:"required" example:"wh_42"`
}

// SubmitCodeRequest is the JSON payload for resolving the manual flow.
type SubmitCodeRequest struct {
	// Code is the activation code handed out by the CRM.
	Code string `json:"code" binding:"required" example:"X7K2-QJ"`
}

// DeepLinkRequest is the JSON payload for single-step activation.
type DeepLinkRequest struct {
	// WarehouseID is the warehouse encoded in the deep link.
	WarehouseID string `json:"warehouse_id" binding:"required" example:"wh_42"`
	// Token is the proof-of-authorization carried by the deep link.
	Token string `json:"token" binding:"required" example:"dl_9f31c2"`
}

// PendingActivationResponse confirms that the manual flow is open and a code
// is awaited.
type PendingActivationResponse struct {
	Status      string `json:"status" example:"pending_code"`
	WarehouseID string `json:"warehouse_id" example:"wh_42"`
}

//
// Helpers
//

// bindingError translates service sentinels into the HTTP error envelope.
// Unknown errors become 500 so nothing fails silently.
func bindingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrWarehouseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "warehouse not found")
	case errors.Is(err, services.ErrInvalidCode):
		fail(c, http.StatusUnprocessableEntity, ErrCodeInvalidCode, "activation code rejected")
	case errors.Is(err, services.ErrNoPendingActivation):
		fail(c, http.StatusConflict, ErrCodeNoPendingActivation, "no activation in progress for this chat")
	case errors.Is(err, services.ErrNotActivated):
		fail(c, http.StatusConflict, ErrCodeNotActivated, "chat has no active warehouse binding")
	case errors.Is(err, services.ErrConflictingBinding):
		fail(c, http.StatusConflict, ErrCodeConflict, "chat is already bound to a different warehouse")
	case errors.Is(err, services.ErrGatewayUnavailable):
		fail(c, http.StatusBadGateway, ErrCodeCRMUnavailable, "warehouse registry is unreachable")
	case errors.Is(err, services.ErrStorageUnavailable):
		fail(c, http.StatusServiceUnavailable, ErrCodeStorageUnavailable, "binding store is unavailable")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// idemKey returns the validated idempotency key stashed by the validator
// middleware, falling back to the raw header when the handler is mounted
// without it (unit tests, bare routers).
func idemKey(c *gin.Context) string {
	if k, ok := middleware.GetIdempotencyKey(c); ok {
		return k
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}

// replayedBinding looks up a stored replay record for (chat, route, key).
// A hit means this mutation already completed once; the caller should re-serve
// the current binding state instead of running it again.
func (h *Handlers) replayedBinding(c *gin.Context, cid string) *domain.Idempotency {
	key := idemKey(c)
	if key == "" {
		return nil
	}
	db := h.bindingDB()
	if db == nil {
		return nil
	}
	rec, err := repo.GetIdempotency(c.Request.Context(), db, cid, c.FullPath(), key, time.Now().UTC())
	if err != nil || rec == nil {
		return nil
	}
	return rec
}

// rememberIdempotency persists a replay record after a successful mutation.
// Best effort: losing the insert only costs replay detection for this key.
func (h *Handlers) rememberIdempotency(c *gin.Context, cid string, status int) {
	key := idemKey(c)
	if key == "" {
		return
	}
	db := h.bindingDB()
	if db == nil {
		return
	}
	ttl := h.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	_, _ = repo.CreateIdempotency(c.Request.Context(), db, cid, c.FullPath(), key, status, ttl)
}

//
// Handlers
//

// BeginActivation godoc
// @ID          beginActivation
// @Summary     Begin manual activation
// @Description Verifies the warehouse exists in the CRM and opens a pending flow awaiting the activation code.
// @Tags        Activation
// @Accept      json
// @Produce     json
//
// @Param       X-Chat-ID  header  string  false "Chat ID (messaging identity)"  example(chat123)
// @Param       body       body    handlers.BeginActivationRequest  true  "Warehouse claim"
//
// @Success     202  {object}  handlers.PendingActivationResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Warehouse not found"
// @Failure     502  {object}  handlers.ErrorResponse  "CRM unreachable"
// @Failure     503  {object}  handlers.ErrorResponse  "Binding store unavailable"
// @Router      /activation/begin [post]
func (h *Handlers) BeginActivation(c *gin.Context) {
	var req BeginActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.WarehouseID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "warehouse_id required")
		return
	}

	// No replay bookkeeping here: re-running begin just refreshes the
	// pending flow.
	cid := chatID(c)
	if err := h.actSvc.BeginManualActivation(c.Request.Context(), cid, req.WarehouseID); err != nil {
		bindingError(c, err)
		return
	}
	ok(c, http.StatusAccepted, PendingActivationResponse{
		Status:      "pending_code",
		WarehouseID: strings.TrimSpace(req.WarehouseID),
	})
}

// SubmitActivationCode godoc
// @ID          submitActivationCode
// @Summary     Submit the activation code
// @Description Resolves the pending manual flow; on success the chat is actively bound to the claimed warehouse.
// @Tags        Activation
// @Accept      json
// @Produce     json
//
// @Param       X-Chat-ID        header  string  false "Chat ID (messaging identity)"  example(chat123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       body             body    handlers.SubmitCodeRequest  true  "Activation code"
//
// @Success     200  {object}  domain.WarehouseBinding
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "No pending activation"
// @Failure     422  {object}  handlers.ErrorResponse  "Code rejected"
// @Failure     502  {object}  handlers.ErrorResponse  "CRM unreachable"
// @Failure     503  {object}  handlers.ErrorResponse  "Binding store unavailable"
// @Router      /activation/code [post]
func (h *Handlers) SubmitActivationCode(c *gin.Context) {
	var req SubmitCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "code required")
		return
	}

	cid := chatID(c)

	// Replay path: the code was already consumed by an earlier attempt with
	// this key, so a retry must not surface ErrNoPendingActivation.
	if rec := h.replayedBinding(c, cid); rec != nil {
		if b, err := h.actSvc.BindingStatus(c.Request.Context(), cid); err == nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, rec.Status, b)
			return
		}
	}

	b, err := h.actSvc.SubmitActivationCode(c.Request.Context(), cid, req.Code)
	if err != nil {
		bindingError(c, err)
		return
	}
	h.rememberIdempotency(c, cid, http.StatusOK)
	ok(c, http.StatusOK, b)
}

// ActivateViaDeepLink godoc
// @ID          activateViaDeepLink
// @Summary     Activate via deep link
// @Description Single-step activation: warehouse claim and proof token arrive together, no pending state is created.
// @Tags        Activation
// @Accept      json
// @Produce     json
//
// @Param       X-Chat-ID        header  string  false "Chat ID (messaging identity)"  example(chat123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       body             body    handlers.DeepLinkRequest  true  "Deep-link payload"
//
// @Success     200  {object}  domain.WarehouseBinding
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Warehouse not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Token rejected"
// @Failure     502  {object}  handlers.ErrorResponse  "CRM unreachable"
// @Failure     503  {object}  handlers.ErrorResponse  "Binding store unavailable"
// @Router      /activation/link [post]
func (h *Handlers) ActivateViaDeepLink(c *gin.Context) {
	var req DeepLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.WarehouseID) == "" || strings.TrimSpace(req.Token) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "warehouse_id and token required")
		return
	}

	cid := chatID(c)

	// Deep-link activation commits are repeat-safe, but a keyed retry skips
	// the CRM round trip entirely.
	if rec := h.replayedBinding(c, cid); rec != nil {
		if b, err := h.actSvc.BindingStatus(c.Request.Context(), cid); err == nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, rec.Status, b)
			return
		}
	}

	b, err := h.actSvc.ActivateViaDeepLink(c.Request.Context(), cid, req.WarehouseID, req.Token)
	if err != nil {
		bindingError(c, err)
		return
	}
	h.rememberIdempotency(c, cid, http.StatusOK)
	ok(c, http.StatusOK, b)
}

// Deactivate godoc
// @ID          deactivateBinding
// @Summary     Deactivate the current binding
// @Description Flips the chat's binding to inactive. Purely local: succeeds even with the CRM unreachable.
// @Tags        Activation
// @Produce     json
//
// @Param       X-Chat-ID        header  string  false "Chat ID (messaging identity)"  example(chat123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
//
// @Success     200  {object}  domain.WarehouseBinding
// @Failure     409  {object}  handlers.ErrorResponse  "Not activated"
// @Failure     503  {object}  handlers.ErrorResponse  "Binding store unavailable"
// @Router      /activation/deactivate [post]
func (h *Handlers) Deactivate(c *gin.Context) {
	cid := chatID(c)

	// Replay path: deactivation already happened under this key, so a retry
	// serves the inactive binding instead of ErrNotActivated.
	if rec := h.replayedBinding(c, cid); rec != nil {
		if b, err := h.actSvc.BindingStatus(c.Request.Context(), cid); err == nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, rec.Status, b)
			return
		}
	}

	b, err := h.actSvc.Deactivate(c.Request.Context(), cid)
	if err != nil {
		bindingError(c, err)
		return
	}
	h.rememberIdempotency(c, cid, http.StatusOK)
	ok(c, http.StatusOK, b)
}
