package orders

import (
	"testing"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

func TestEveryTransitionHasARule(t *testing.T) {
	for _, transition := range enums.OrderTransitions() {
		if _, ok := RuleFor(transition); !ok {
			t.Fatalf("no rule for %s", transition)
		}
	}
	if _, ok := RuleFor("teleport"); ok {
		t.Fatalf("unexpected rule for unknown transition")
	}
}

func TestRuleGuards(t *testing.T) {
	const (
		fNew     = enums.FulfillmentStatusNew
		fReady   = enums.FulfillmentStatusReadyToPick
		fPicking = enums.FulfillmentStatusPicking
		fPacked  = enums.FulfillmentStatusPacked
		fShipped = enums.FulfillmentStatusShipped
		fDone    = enums.FulfillmentStatusCompleted
		pAuth    = enums.PaymentStatusAuthorized
		pCapt    = enums.PaymentStatusCaptured
		pCanc    = enums.PaymentStatusCancelled
	)
	cases := []struct {
		transition enums.OrderTransition
		f          enums.FulfillmentStatus
		p          enums.PaymentStatus
		allowed    bool
	}{
		{enums.OrderTransitionStartPicking, fNew, pAuth, true},
		{enums.OrderTransitionStartPicking, fReady, pAuth, true},
		{enums.OrderTransitionStartPicking, fPicking, pAuth, false},
		{enums.OrderTransitionUndoStartPicking, fPicking, pAuth, true},
		{enums.OrderTransitionUndoStartPicking, fPacked, pAuth, false},
		{enums.OrderTransitionMarkPacked, fPicking, pAuth, true},
		{enums.OrderTransitionMarkPacked, fNew, pAuth, false},
		{enums.OrderTransitionUndoPacked, fPacked, pAuth, true},
		{enums.OrderTransitionMarkShipped, fPacked, pAuth, true},
		{enums.OrderTransitionMarkShipped, fPicking, pAuth, false},
		{enums.OrderTransitionUndoShipped, fShipped, pAuth, true},
		{enums.OrderTransitionUndoShipped, fShipped, pCanc, true},
		{enums.OrderTransitionUndoShipped, fShipped, pCapt, false},
		{enums.OrderTransitionUpdateShippingInfo, fPacked, pAuth, true},
		{enums.OrderTransitionUpdateShippingInfo, fDone, pCapt, true},
		{enums.OrderTransitionUpdateShippingInfo, fPicking, pAuth, false},
		{enums.OrderTransitionCapturePayment, fShipped, pAuth, true},
		{enums.OrderTransitionCapturePayment, fPacked, pAuth, false},
		{enums.OrderTransitionCapturePayment, fShipped, pCanc, false},
		{enums.OrderTransitionCancelAuthorization, fNew, pAuth, true},
		{enums.OrderTransitionCancelAuthorization, fShipped, pAuth, true},
		{enums.OrderTransitionCancelAuthorization, fShipped, pCapt, false},
		{enums.OrderTransitionRefundPayment, fShipped, pCapt, true},
		{enums.OrderTransitionRefundPayment, fShipped, pAuth, false},
	}
	for _, tc := range cases {
		rule, _ := RuleFor(tc.transition)
		if got := rule.Allows(tc.f, tc.p); got != tc.allowed {
			t.Fatalf("%s from (%s,%s): allowed=%v want %v", tc.transition, tc.f, tc.p, got, tc.allowed)
		}
	}
}

func TestRuleNext(t *testing.T) {
	undo, _ := RuleFor(enums.OrderTransitionUndoStartPicking)
	ready := enums.FulfillmentStatusReadyToPick
	if got := undo.Next(enums.FulfillmentStatusPicking, &ready); got != ready {
		t.Fatalf("undo picking restored %s", got)
	}
	if got := undo.Next(enums.FulfillmentStatusPicking, nil); got != enums.FulfillmentStatusNew {
		t.Fatalf("undo picking without history returned %s", got)
	}

	cancel, _ := RuleFor(enums.OrderTransitionCancelAuthorization)
	if got := cancel.Next(enums.FulfillmentStatusPacked, nil); got != enums.FulfillmentStatusCancelled {
		t.Fatalf("cancel on packed order returned %s", got)
	}
	if got := cancel.Next(enums.FulfillmentStatusShipped, nil); got != enums.FulfillmentStatusShipped {
		t.Fatalf("cancel on shipped order returned %s", got)
	}

	capture, _ := RuleFor(enums.OrderTransitionCapturePayment)
	if got := capture.Next(enums.FulfillmentStatusShipped, nil); got != enums.FulfillmentStatusShipped {
		t.Fatalf("capture changed fulfillment to %s", got)
	}
	if !capture.AlreadyApplied(enums.PaymentStatusCaptured) || capture.AlreadyApplied(enums.PaymentStatusRefunded) {
		t.Fatalf("capture already-applied check is wrong")
	}
}

func TestAvailableTransitions(t *testing.T) {
	got := AvailableTransitions(enums.FulfillmentStatusShipped, enums.PaymentStatusAuthorized, true)
	want := []enums.OrderTransition{
		enums.OrderTransitionUndoShipped,
		enums.OrderTransitionUpdateShippingInfo,
		enums.OrderTransitionCapturePayment,
		enums.OrderTransitionCancelAuthorization,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}

	withoutRef := AvailableTransitions(enums.FulfillmentStatusShipped, enums.PaymentStatusAuthorized, false)
	for _, tr := range withoutRef {
		if tr == enums.OrderTransitionCapturePayment || tr == enums.OrderTransitionCancelAuthorization {
			t.Fatalf("gateway transition %s offered without reference", tr)
		}
	}
}
