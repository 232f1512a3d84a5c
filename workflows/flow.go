package workflows

import (
	"errors"
	"fmt"
	"time"

	"checkout-flow/activities"
	"checkout-flow/models"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	SignalWidgetEvent = "widget-event"
	SignalTeardown    = "teardown"
	QueryState        = "state"

	DefaultPaymentTimeout = 15 * time.Minute
)

// User-facing alerts
const (
	MsgMissingOrder      = "No order information."
	MsgWidgetLoadFailed  = "Failed to load the payment module."
	MsgPaymentCancelled  = "Payment was cancelled or failed."
	MsgPaymentAbandoned  = "Payment was not completed in time."
	MsgDraftNotRecovered = "Order information could not be recovered."
	msgPaymentFailed     = "Payment failed: [%s] %s"
	msgPaymentRejected   = "Payment record creation failed: %s"
	msgPaymentProcessing = "Payment processing error: %s"
)

// CheckoutWorkflowID is the ID of a session's checkout. Starting a new
// checkout for the session replaces the running one.
func CheckoutWorkflowID(sessionID string) string {
	return "checkout-" + sessionID
}

// ReturnWorkflowID names one redirect return; a session may return more than once
func ReturnWorkflowID(sessionID string) string {
	return "checkout-return-" + sessionID + "-" + uuid.NewString()
}

// Every backend call is attempted once. The compensating delete is
// best-effort and is never retried either.
func singleAttempt(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})
}

// flow carries what both entry branches share: the queryable state and
// the terminal transitions.
type flow struct {
	ctx         workflow.Context
	sessionID   string
	accessToken string
	state       *models.CheckoutState
}

func newFlow(ctx workflow.Context, sessionID, accessToken string) (*flow, error) {
	f := &flow{
		ctx:         singleAttempt(ctx),
		sessionID:   sessionID,
		accessToken: accessToken,
		state: &models.CheckoutState{
			SessionID:   sessionID,
			Phase:       models.PhaseInit,
			LastUpdated: workflow.Now(ctx),
		},
	}

	err := workflow.SetQueryHandler(ctx, QueryState, func() (models.CheckoutState, error) {
		return *f.state, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set query handler: %w", err)
	}
	return f, nil
}

func (f *flow) setPhase(p models.CheckoutPhase) {
	f.state.Phase = p
	f.state.LastUpdated = workflow.Now(f.ctx)
}

func (f *flow) finish(p models.CheckoutPhase, nav models.Navigation) (models.Navigation, error) {
	f.state.Navigation = &nav
	f.setPhase(p)
	workflow.GetLogger(f.ctx).Info("Checkout finished",
		"session_id", f.sessionID, "phase", p, "target", nav.Target)
	return nav, nil
}

// fail runs the compensating delete, clears the draft and ends on the
// failure screen.
func (f *flow) fail(draft *models.OrderDraft, nav models.Navigation) (models.Navigation, error) {
	if draft.HasOrderID() {
		f.deleteOrder(draft.OrderID)
	}
	f.clearDraft()
	nav.Target = models.TargetPaymentFailed
	return f.finish(models.PhaseFailed, nav)
}

func (f *flow) succeed(nav models.Navigation) (models.Navigation, error) {
	f.clearDraft()
	nav.Target = models.TargetPaymentComplete
	return f.finish(models.PhaseSucceeded, nav)
}

// deleteOrder is the compensating action. It runs on a disconnected
// context so a cancelled flow still cleans up, and its failure is only logged.
func (f *flow) deleteOrder(orderID models.ID) {
	logger := workflow.GetLogger(f.ctx)
	var backend *activities.BackendActivities

	dctx, _ := workflow.NewDisconnectedContext(f.ctx)
	req := models.DeleteOrderRequest{OrderID: orderID, AccessToken: f.accessToken}
	if err := workflow.ExecuteActivity(dctx, backend.DeleteOrder, req).Get(dctx, nil); err != nil {
		logger.Error("Failed to delete order", "order_id", orderID, "error", err)
		return
	}
	logger.Info("Failed order deleted", "order_id", orderID)
}

func (f *flow) clearDraft() {
	var store *activities.DraftActivities

	dctx, _ := workflow.NewDisconnectedContext(f.ctx)
	if err := workflow.ExecuteActivity(dctx, store.ClearDraft, f.sessionID).Get(dctx, nil); err != nil {
		workflow.GetLogger(f.ctx).Warn("Failed to clear draft", "session_id", f.sessionID, "error", err)
	}
}

func (f *flow) createPayment(payment models.PaymentResult) error {
	var backend *activities.BackendActivities
	return workflow.ExecuteActivity(f.ctx, backend.CreatePayment, payment).Get(f.ctx, nil)
}

// rejection extracts the backend's answer from a PaymentRejected error
func rejection(err error) (activities.PaymentRejection, bool) {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) || appErr.Type() != activities.ErrTypePaymentRejected {
		return activities.PaymentRejection{}, false
	}
	var r activities.PaymentRejection
	if appErr.HasDetails() {
		_ = appErr.Details(&r)
	}
	return r, true
}

// causeMessage is the innermost meaningful message of an activity error
func causeMessage(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return err.Error()
}
