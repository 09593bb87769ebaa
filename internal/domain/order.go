package domain

// Order is the incoming order pushed by the CRM over the webhook. Orders are
// never persisted here; the CRM stays their system of record and this service
// only fans them out to the chats bound to the target warehouse.
type Order struct {
	OrderNumber     string      `json:"order_number"`
	WarehouseID     string      `json:"warehouse_id"`
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	DeliveryAddress string      `json:"delivery_address"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"total_amount"`
	Comment         string      `json:"comment,omitempty"`
	PaymentType     string      `json:"payment_type,omitempty"`
}

// OrderItem is a single line of an incoming order.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}
