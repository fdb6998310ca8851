package enums

import "fmt"

// OrderTransition names an operator action on an order.
type OrderTransition string

const (
	OrderTransitionStartPicking        OrderTransition = "start_picking"
	OrderTransitionUndoStartPicking    OrderTransition = "undo_start_picking"
	OrderTransitionMarkPacked          OrderTransition = "mark_packed"
	OrderTransitionUndoPacked          OrderTransition = "undo_packed"
	OrderTransitionMarkShipped         OrderTransition = "mark_shipped"
	OrderTransitionUndoShipped         OrderTransition = "undo_shipped"
	OrderTransitionUpdateShippingInfo  OrderTransition = "update_shipping_info"
	OrderTransitionCapturePayment      OrderTransition = "capture_payment"
	OrderTransitionCancelAuthorization OrderTransition = "cancel_authorization"
	OrderTransitionRefundPayment       OrderTransition = "refund_payment"
)

var validOrderTransitions = []OrderTransition{
	OrderTransitionStartPicking,
	OrderTransitionUndoStartPicking,
	OrderTransitionMarkPacked,
	OrderTransitionUndoPacked,
	OrderTransitionMarkShipped,
	OrderTransitionUndoShipped,
	OrderTransitionUpdateShippingInfo,
	OrderTransitionCapturePayment,
	OrderTransitionCancelAuthorization,
	OrderTransitionRefundPayment,
}

// OrderTransitions returns every transition in table order.
func OrderTransitions() []OrderTransition {
	out := make([]OrderTransition, len(validOrderTransitions))
	copy(out, validOrderTransitions)
	return out
}

// String implements fmt.Stringer.
func (t OrderTransition) String() string {
	return string(t)
}

// IsValid reports whether the transition is known.
func (t OrderTransition) IsValid() bool {
	for _, candidate := range validOrderTransitions {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOrderTransition converts raw input into an OrderTransition.
func ParseOrderTransition(value string) (OrderTransition, error) {
	for _, candidate := range validOrderTransitions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order transition %q", value)
}
