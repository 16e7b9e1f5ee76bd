package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType classifies the storefront event a notification describes.
type NotificationType string

const (
	TypeNewOrder       NotificationType = "new_order"
	TypeOrderAccepted  NotificationType = "order_accepted"
	TypeOrderRejected  NotificationType = "order_rejected"
	TypeOrderReady     NotificationType = "order_ready"
	TypeOrderDelivered NotificationType = "order_delivered"
	TypeOther          NotificationType = "other"
)

// NotificationTypes lists every known type in display order.
var NotificationTypes = []NotificationType{
	TypeNewOrder,
	TypeOrderAccepted,
	TypeOrderRejected,
	TypeOrderReady,
	TypeOrderDelivered,
	TypeOther,
}

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case TypeNewOrder, TypeOrderAccepted, TypeOrderRejected,
		TypeOrderReady, TypeOrderDelivered, TypeOther:
		return true
	}
	return false
}

// Label returns the human-readable name for the type.
func (t NotificationType) Label() string {
	switch t {
	case TypeNewOrder:
		return "New order"
	case TypeOrderAccepted:
		return "Order accepted"
	case TypeOrderRejected:
		return "Order rejected"
	case TypeOrderReady:
		return "Order ready"
	case TypeOrderDelivered:
		return "Order delivered"
	default:
		return "Notice"
	}
}

// UnmarshalJSON decodes a type, folding unknown values into TypeOther.
func (t *NotificationType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding notification_type: %w", err)
	}
	nt := NotificationType(s)
	if !nt.Valid() {
		nt = TypeOther
	}
	*t = nt
	return nil
}

// Notification is a single viewer-facing event record as served by the
// notification API. Only IsRead ever changes after creation, and only from
// false to true.
type Notification struct {
	// ID is stable for the lifetime of the notification.
	ID int64 `json:"id"`

	Type    NotificationType `json:"notification_type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`

	// CreatedAt drives recency ordering and relative-time display.
	CreatedAt time.Time `json:"created_at"`

	// Order is a weak reference to the related order, used for links only.
	Order *int64 `json:"order"`

	IsRead bool `json:"is_read"`
}

// OrderLink returns the storefront path of the referenced order, or "" when
// the notification is not tied to an order.
func (n Notification) OrderLink() string {
	if n.Order == nil {
		return ""
	}
	return fmt.Sprintf("/orders/%d", *n.Order)
}
