package orders

import (
	"github.com/angelmondragon/threadline-backend/internal/payments"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

type (
	fulfillmentSet []enums.FulfillmentStatus
	paymentSet     []enums.PaymentStatus
)

func (s fulfillmentSet) has(v enums.FulfillmentStatus) bool {
	if s == nil {
		return true
	}
	for _, candidate := range s {
		if candidate == v {
			return true
		}
	}
	return false
}

func (s paymentSet) has(v enums.PaymentStatus) bool {
	if s == nil {
		return true
	}
	for _, candidate := range s {
		if candidate == v {
			return true
		}
	}
	return false
}

// Rule is one row of the transition table. A nil status set matches any
// status; PaymentNot lists payment statuses that block the transition.
type Rule struct {
	Transition        enums.OrderTransition
	Fulfillment       fulfillmentSet
	Payment           paymentSet
	PaymentNot        paymentSet
	NeedsShipping     bool
	NeedsReference    bool
	Gateway           payments.Operation
	NextFulfillment   enums.FulfillmentStatus
	RestorePrevious   bool
	NextPayment       enums.PaymentStatus
	CancelsUnshipped  bool
	GuardFailMessage  string
	AlreadyAppliedMsg string
}

var earlyFulfillment = fulfillmentSet{
	enums.FulfillmentStatusNew,
	enums.FulfillmentStatusReadyToPick,
	enums.FulfillmentStatusPicking,
	enums.FulfillmentStatusPacked,
}

var transitionTable = []Rule{
	{
		Transition:       enums.OrderTransitionStartPicking,
		Fulfillment:      fulfillmentSet{enums.FulfillmentStatusNew, enums.FulfillmentStatusReadyToPick},
		NextFulfillment:  enums.FulfillmentStatusPicking,
		GuardFailMessage: "picking can only start from NEW or READY_TO_PICK",
	},
	{
		Transition:       enums.OrderTransitionUndoStartPicking,
		Fulfillment:      fulfillmentSet{enums.FulfillmentStatusPicking},
		RestorePrevious:  true,
		GuardFailMessage: "order is not being picked",
	},
	{
		Transition:       enums.OrderTransitionMarkPacked,
		Fulfillment:      fulfillmentSet{enums.FulfillmentStatusPicking},
		NextFulfillment:  enums.FulfillmentStatusPacked,
		GuardFailMessage: "only a PICKING order can be packed",
	},
	{
		Transition:       enums.OrderTransitionUndoPacked,
		Fulfillment:      fulfillmentSet{enums.FulfillmentStatusPacked},
		NextFulfillment:  enums.FulfillmentStatusPicking,
		GuardFailMessage: "order is not packed",
	},
	{
		Transition:       enums.OrderTransitionMarkShipped,
		Fulfillment:      fulfillmentSet{enums.FulfillmentStatusPacked},
		NeedsShipping:    true,
		NextFulfillment:  enums.FulfillmentStatusShipped,
		GuardFailMessage: "only a PACKED order can be shipped",
	},
	{
		Transition:       enums.OrderTransitionUndoShipped,
		Fulfillment:      fulfillmentSet{enums.FulfillmentStatusShipped},
		PaymentNot:       paymentSet{enums.PaymentStatusCaptured},
		NextFulfillment:  enums.FulfillmentStatusPacked,
		GuardFailMessage: "shipment can only be undone on a SHIPPED order whose payment is not captured",
	},
	{
		Transition:       enums.OrderTransitionUpdateShippingInfo,
		Fulfillment:      fulfillmentSet{enums.FulfillmentStatusPacked, enums.FulfillmentStatusShipped, enums.FulfillmentStatusCompleted},
		NeedsShipping:    true,
		GuardFailMessage: "shipping info can only be set once the order is packed",
	},
	{
		Transition:        enums.OrderTransitionCapturePayment,
		Fulfillment:       fulfillmentSet{enums.FulfillmentStatusShipped},
		Payment:           paymentSet{enums.PaymentStatusAuthorized},
		NeedsReference:    true,
		Gateway:           payments.OperationCapture,
		NextPayment:       enums.PaymentStatusCaptured,
		GuardFailMessage:  "payment can only be captured on a SHIPPED order with an AUTHORIZED payment",
		AlreadyAppliedMsg: "payment already captured",
	},
	{
		Transition:        enums.OrderTransitionCancelAuthorization,
		Payment:           paymentSet{enums.PaymentStatusAuthorized},
		NeedsReference:    true,
		Gateway:           payments.OperationCancel,
		NextPayment:       enums.PaymentStatusCancelled,
		CancelsUnshipped:  true,
		GuardFailMessage:  "only an AUTHORIZED payment can be cancelled",
		AlreadyAppliedMsg: "authorization already cancelled",
	},
	{
		Transition:        enums.OrderTransitionRefundPayment,
		Payment:           paymentSet{enums.PaymentStatusCaptured},
		NeedsReference:    true,
		Gateway:           payments.OperationRefund,
		NextPayment:       enums.PaymentStatusRefunded,
		GuardFailMessage:  "only a CAPTURED payment can be refunded",
		AlreadyAppliedMsg: "payment already refunded",
	},
}

// RuleFor returns the table row for a transition.
func RuleFor(t enums.OrderTransition) (Rule, bool) {
	for _, rule := range transitionTable {
		if rule.Transition == t {
			return rule, true
		}
	}
	return Rule{}, false
}

// Allows reports whether the row's status guard admits the current state.
// Shipping details and gateway reference are checked separately.
func (r Rule) Allows(f enums.FulfillmentStatus, p enums.PaymentStatus) bool {
	if !r.Fulfillment.has(f) || !r.Payment.has(p) {
		return false
	}
	if r.PaymentNot != nil && r.PaymentNot.has(p) {
		return false
	}
	return true
}

// AlreadyApplied reports whether a gateway transition's target payment status
// is already in place, making a repeat a no-op.
func (r Rule) AlreadyApplied(p enums.PaymentStatus) bool {
	return r.Gateway != "" && r.NextPayment == p
}

// Next computes the fulfillment status after the transition.
func (r Rule) Next(current enums.FulfillmentStatus, previous *enums.FulfillmentStatus) enums.FulfillmentStatus {
	switch {
	case r.RestorePrevious:
		if previous != nil && (*previous == enums.FulfillmentStatusNew || *previous == enums.FulfillmentStatusReadyToPick) {
			return *previous
		}
		return enums.FulfillmentStatusNew
	case r.NextFulfillment != "":
		return r.NextFulfillment
	case r.CancelsUnshipped && earlyFulfillment.has(current):
		return enums.FulfillmentStatusCancelled
	default:
		return current
	}
}

// AvailableTransitions lists the transitions whose status guard admits the
// given order state, in table order.
func AvailableTransitions(f enums.FulfillmentStatus, p enums.PaymentStatus, hasReference bool) []enums.OrderTransition {
	out := []enums.OrderTransition{}
	for _, rule := range transitionTable {
		if rule.NeedsReference && !hasReference {
			continue
		}
		if rule.Allows(f, p) {
			out = append(out, rule.Transition)
		}
	}
	return out
}
