package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-warehouse-backend/internal/domain"
)

func TestFormatAmount_Grouping(t *testing.T) {
	cases := map[float64]string{
		0:        "0.00",
		12.5:     "12.50",
		1234.5:   "1,234.50",
		987654.3: "987,654.30",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Errorf("FormatAmount(%v) = %q; want %q", in, got, want)
		}
	}
}

func TestFormatNewOrder_FullOrder(t *testing.T) {
	o := &domain.Order{
		OrderNumber:     "ORD-1001",
		WarehouseID:     "W1",
		CustomerName:    "Ada",
		CustomerPhone:   "+100200300",
		DeliveryAddress: "12 Dock Rd",
		Items: []domain.OrderItem{
			{Name: "Crate", Quantity: 2, Price: 10.5},
			{Name: "Pallet", Quantity: 1, Price: 1200},
		},
		TotalAmount: 1221.0,
		Comment:     "leave at gate",
		PaymentType: "cash",
	}

	got := FormatNewOrder(o)

	for _, want := range []string{
		"New order #ORD-1001",
		"Customer: Ada",
		"Phone: +100200300",
		"Address: 12 Dock Rd",
		" - Crate x2 at 10.50",
		" - Pallet x1 at 1,200.00",
		"Total: 1,221.00",
		"Payment: cash",
		"Comment: leave at gate",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted order missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatNewOrder_OmitsEmptyFields(t *testing.T) {
	o := &domain.Order{OrderNumber: "ORD-1", TotalAmount: 5}
	got := FormatNewOrder(o)

	for _, absent := range []string{"Customer:", "Phone:", "Address:", "Items:", "Payment:", "Comment:"} {
		if strings.Contains(got, absent) {
			t.Errorf("minimal order should omit %q, got:\n%s", absent, got)
		}
	}
	if !strings.Contains(got, "Total: 5.00") {
		t.Errorf("total always rendered, got:\n%s", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Errorf("trailing newline should be trimmed")
	}
}

func TestLogNotifier_WritesStructuredEvent(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf))

	if err := n.Notify(context.Background(), "chat42", "New order #1"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"chat_id":"chat42"`) || !strings.Contains(out, "order notification") {
		t.Fatalf("unexpected log output: %s", out)
	}
}
