package model

// Notification types carried in push payload data.
const (
	NotificationNewOrder       = "new_order"
	NotificationOrderConfirmed = "order_confirmed"
)

// PushMessage is a single device notification.
type PushMessage struct {
	To    string
	Title string
	Body  string
	Data  map[string]string
}
