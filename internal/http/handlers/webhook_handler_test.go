package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-warehouse-backend/internal/domain"
	"github.com/tbourn/go-warehouse-backend/internal/services"
)

const testWebhookSecret = "sssh"

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postOrder(h *Handlers, body []byte, signature string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/webhooks/orders", h.OrderWebhook)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(webhookSignatureHeader, signature)
	}
	r.ServeHTTP(w, req)
	return w
}

func orderBody(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(domain.Order{
		OrderNumber: "N-100",
		WarehouseID: "wh_42",
		Items:       []domain.OrderItem{{Name: "Pallet jack", Quantity: 2, Price: 249.9}},
		TotalAmount: 499.8,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

// ---------- signature verification ----------

func Test_verifyWebhookSignature(t *testing.T) {
	body := []byte(`{"order_number":"N-1"}`)
	good := signBody(testWebhookSecret, body)

	if !verifyWebhookSignature(testWebhookSecret, body, good) {
		t.Fatalf("valid signature rejected")
	}
	// header padding is tolerated
	if !verifyWebhookSignature(testWebhookSecret, body, "  "+good+"  ") {
		t.Fatalf("whitespace-padded signature rejected")
	}
	if verifyWebhookSignature(testWebhookSecret, body, signBody("other-secret", body)) {
		t.Fatalf("foreign signature accepted")
	}
	if verifyWebhookSignature(testWebhookSecret, []byte("tampered"), good) {
		t.Fatalf("tampered body accepted")
	}
	if verifyWebhookSignature(testWebhookSecret, body, "not-hex!") {
		t.Fatalf("non-hex signature accepted")
	}
}

// ---------- OrderWebhook ----------

func TestOrderWebhook_AuthFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)

	called := false
	svc := stubOrderSvc{dispatch: func(context.Context, *domain.Order) (int, error) {
		called = true
		return 0, nil
	}}
	h := New(stubActSvc{}, svc, testWebhookSecret)
	body := orderBody(t)

	// Missing signature -> 401
	{
		w := postOrder(h, body, "")
		var er ErrorResponse
		_ = json.Unmarshal(w.Body.Bytes(), &er)
		if w.Code != http.StatusUnauthorized || er.Code != ErrCodeInvalidSignature {
			t.Fatalf("missing sig -> %d code=%q", w.Code, er.Code)
		}
	}

	// Wrong signature -> 401
	{
		w := postOrder(h, body, signBody("other-secret", body))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("wrong sig -> %d", w.Code)
		}
	}

	if called {
		t.Fatalf("unauthenticated payloads must not reach the service")
	}
}

func TestOrderWebhook_BadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(stubActSvc{}, stubOrderSvc{}, testWebhookSecret)

	body := []byte("{not json")
	w := postOrder(h, body, signBody(testWebhookSecret, body))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}
}

func TestOrderWebhook_DispatchOutcomes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := orderBody(t)
	sig := signBody(testWebhookSecret, body)

	// Success -> 200 with delivered count; payload reaches the service parsed
	{
		var got *domain.Order
		svc := stubOrderSvc{dispatch: func(_ context.Context, o *domain.Order) (int, error) {
			got = o
			return 2, nil
		}}
		h := New(stubActSvc{}, svc, testWebhookSecret)
		w := postOrder(h, body, sig)
		if w.Code != http.StatusOK {
			t.Fatalf("dispatch -> %d body=%s", w.Code, w.Body.String())
		}
		var out OrderWebhookResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.Status != "dispatched" || out.Delivered != 2 {
			t.Fatalf("unexpected response: %+v", out)
		}
		if got == nil || got.OrderNumber != "N-100" || got.WarehouseID != "wh_42" {
			t.Fatalf("service got wrong payload: %+v", got)
		}
	}

	// Validation failure -> 400
	{
		svc := stubOrderSvc{dispatch: func(context.Context, *domain.Order) (int, error) {
			return 0, services.ErrInvalidOrder
		}}
		w := postOrder(New(stubActSvc{}, svc, testWebhookSecret), body, sig)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("invalid order -> %d", w.Code)
		}
	}

	// Nobody bound -> 404 no_active_binding
	{
		svc := stubOrderSvc{dispatch: func(context.Context, *domain.Order) (int, error) {
			return 0, services.ErrNoActiveBinding
		}}
		w := postOrder(New(stubActSvc{}, svc, testWebhookSecret), body, sig)
		var er ErrorResponse
		_ = json.Unmarshal(w.Body.Bytes(), &er)
		if w.Code != http.StatusNotFound || er.Code != ErrCodeNoActiveBinding {
			t.Fatalf("no binding -> %d code=%q", w.Code, er.Code)
		}
	}

	// Store down -> 503
	{
		svc := stubOrderSvc{dispatch: func(context.Context, *domain.Order) (int, error) {
			return 0, services.ErrStorageUnavailable
		}}
		w := postOrder(New(stubActSvc{}, svc, testWebhookSecret), body, sig)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("store down -> %d", w.Code)
		}
	}
}
