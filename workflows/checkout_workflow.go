package workflows

import (
	"fmt"

	"checkout-flow/activities"
	"checkout-flow/models"
	"checkout-flow/widget"

	"go.temporal.io/sdk/workflow"
)

// CheckoutWorkflow drives a fresh checkout: persist the draft, publish the
// widget launch parameters, then wait for exactly one widget event.
func CheckoutWorkflow(ctx workflow.Context, in models.CheckoutInput) (models.Navigation, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("CheckoutWorkflow started", "session_id", in.SessionID, "device", in.Device)

	f, err := newFlow(ctx, in.SessionID, in.AccessToken)
	if err != nil {
		return models.Navigation{}, err
	}
	f.state.Device = in.Device

	// Guard: without an order there is nothing to pay for and nothing to clean up
	if !in.Draft.HasOrderID() {
		logger.Error("Order data is missing", "session_id", in.SessionID)
		return f.finish(models.PhaseCart, models.Navigation{
			Target: models.TargetCart,
			Alert:  MsgMissingOrder,
		})
	}
	draft := *in.Draft
	f.state.OrderID = draft.OrderID

	var store *activities.DraftActivities
	err = workflow.ExecuteActivity(f.ctx, store.SaveDraft, in.SessionID, draft).Get(f.ctx, nil)
	if err != nil {
		logger.Error("Failed to persist draft", "order_id", draft.OrderID, "error", err)
		return f.fail(&draft, models.Navigation{
			Alert: fmt.Sprintf(msgPaymentProcessing, causeMessage(err)),
		})
	}

	launch := widget.BuildLaunch(in.Widget, draft, in.Device)
	f.state.Widget = &launch
	f.state.ScriptAttached = true
	f.setPhase(models.PhaseAwaitingWidget)
	logger.Info("Awaiting widget", "order_id", draft.OrderID, "popup", launch.Request.Popup)

	event, timedOut := awaitWidget(ctx, f, in)

	if timedOut {
		if in.Device == models.DeviceMobile {
			// the buyer left through the widget redirect; the return path owns the outcome
			logger.Info("No widget event before timeout, handing off to redirect return", "order_id", draft.OrderID)
			return f.finish(models.PhaseRedirected, models.Navigation{Target: models.TargetWidgetRedirect})
		}
		logger.Warn("Payment abandoned", "order_id", draft.OrderID)
		return f.fail(&draft, models.Navigation{Alert: MsgPaymentAbandoned})
	}

	switch event.Kind {
	case models.WidgetEventLoadFailed:
		logger.Error("Failed to load payment widget", "order_id", draft.OrderID, "detail", event.Detail)
		return f.fail(&draft, models.Navigation{Alert: MsgWidgetLoadFailed})

	case models.WidgetEventRedirecting:
		logger.Info("Widget redirecting", "order_id", draft.OrderID)
		return f.finish(models.PhaseRedirected, models.Navigation{Target: models.TargetWidgetRedirect})
	}

	res := *event.Result
	if !res.Success {
		logger.Error("Payment failed", "order_id", draft.OrderID, "error_code", res.ErrorCode, "error_msg", res.ErrorMsg)
		return f.fail(&draft, models.Navigation{
			Alert: fmt.Sprintf(msgPaymentFailed, res.ErrorCode, res.ErrorMsg),
		})
	}

	payment := models.NewPaymentResult(res, &draft)
	if err := f.createPayment(payment); err != nil {
		logger.Error("Payment creation failed", "order_id", draft.OrderID, "error", err)
		alert := fmt.Sprintf(msgPaymentProcessing, causeMessage(err))
		if r, ok := rejection(err); ok {
			alert = fmt.Sprintf(msgPaymentRejected, r.Body)
		}
		return f.fail(&draft, models.Navigation{Alert: alert})
	}

	return f.succeed(models.Navigation{
		OrderInfo:   &draft,
		PaymentInfo: &res,
	})
}

// awaitWidget blocks until one valid widget event arrives or the payment
// timeout fires. Teardown signals only detach the script.
func awaitWidget(ctx workflow.Context, f *flow, in models.CheckoutInput) (*models.WidgetEvent, bool) {
	logger := workflow.GetLogger(ctx)

	timeout := in.PaymentTimeout
	if timeout <= 0 {
		timeout = DefaultPaymentTimeout
	}
	timerCtx, cancelTimer := workflow.WithCancel(ctx)
	defer cancelTimer()

	eventChan := workflow.GetSignalChannel(ctx, SignalWidgetEvent)
	teardownChan := workflow.GetSignalChannel(ctx, SignalTeardown)

	var event *models.WidgetEvent
	timedOut := false

	selector := workflow.NewSelector(ctx)
	selector.AddReceive(eventChan, func(c workflow.ReceiveChannel, more bool) {
		var ev models.WidgetEvent
		c.Receive(ctx, &ev)
		if err := validEvent(ev, in.Device); err != nil {
			logger.Warn("Ignoring widget event", "kind", ev.Kind, "error", err)
			return
		}
		event = &ev
	})
	selector.AddReceive(teardownChan, func(c workflow.ReceiveChannel, more bool) {
		var reason string
		c.Receive(ctx, &reason)
		f.state.ScriptAttached = false
		f.state.LastUpdated = workflow.Now(ctx)
		logger.Info("Widget script detached", "session_id", in.SessionID, "reason", reason)
	})
	selector.AddFuture(workflow.NewTimer(timerCtx, timeout), func(workflow.Future) {
		timedOut = true
	})

	for event == nil && !timedOut {
		selector.Select(ctx)
	}
	return event, timedOut
}

func validEvent(ev models.WidgetEvent, device models.DeviceClass) error {
	switch ev.Kind {
	case models.WidgetEventLoadFailed:
		return nil
	case models.WidgetEventResult:
		if ev.Result == nil {
			return fmt.Errorf("result event without a result")
		}
		return nil
	case models.WidgetEventRedirecting:
		if device != models.DeviceMobile {
			return fmt.Errorf("redirect mode is only used on mobile")
		}
		return nil
	}
	return fmt.Errorf("unknown event kind %q", ev.Kind)
}
