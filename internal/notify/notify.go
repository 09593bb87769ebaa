// Package notify renders incoming orders into chat-ready text and hands them
// to a delivery seam. The actual messaging transport (Telegram, Slack, …)
// lives outside this service; deployments plug their own Notifier while
// LogNotifier, the default, records every would-be delivery in the
// structured log so the dispatch path stays observable end to end.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tbourn/go-warehouse-backend/internal/domain"
)

// Notifier delivers a rendered notification to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID, text string) error
}

// LogNotifier is the default Notifier: it writes the notification to the
// structured log instead of an external messaging transport.
type LogNotifier struct {
	Log zerolog.Logger
}

// NewLogNotifier constructs a LogNotifier on top of the given logger.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{Log: log}
}

// Notify records the notification at info level.
func (n *LogNotifier) Notify(_ context.Context, chatID, text string) error {
	n.Log.Info().
		Str("chat_id", chatID).
		Str("text", text).
		Msg("order notification")
	return nil
}

// amountPrinter formats monetary amounts with locale-aware digit grouping,
// so "12345.5" renders as "12,345.50" instead of raw float noise.
var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a monetary amount with two decimals and grouping.
func FormatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

// FormatNewOrder renders the chat text for an incoming order. Empty optional
// fields are omitted rather than rendered as blanks.
func FormatNewOrder(o *domain.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "New order #%s\n", o.OrderNumber)
	if o.CustomerName != "" {
		fmt.Fprintf(&b, "Customer: %s\n", o.CustomerName)
	}
	if o.CustomerPhone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", o.CustomerPhone)
	}
	if o.DeliveryAddress != "" {
		fmt.Fprintf(&b, "Address: %s\n", o.DeliveryAddress)
	}
	if len(o.Items) > 0 {
		b.WriteString("Items:\n")
		for _, it := range o.Items {
			fmt.Fprintf(&b, " - %s x%d at %s\n", it.Name, it.Quantity, FormatAmount(it.Price))
		}
	}
	fmt.Fprintf(&b, "Total: %s\n", FormatAmount(o.TotalAmount))
	if o.PaymentType != "" {
		fmt.Fprintf(&b, "Payment: %s\n", o.PaymentType)
	}
	if o.Comment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", o.Comment)
	}

	return strings.TrimRight(b.String(), "\n")
}
