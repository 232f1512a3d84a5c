package workflows

import (
	"fmt"

	"checkout-flow/activities"
	"checkout-flow/models"

	"go.temporal.io/sdk/workflow"
)

// RedirectReturnWorkflow handles the buyer coming back from a full-page
// widget redirect. The draft is recovered from the session store.
func RedirectReturnWorkflow(ctx workflow.Context, in models.RedirectInput) (models.Navigation, error) {
	logger := workflow.GetLogger(ctx)
	p := in.Params
	logger.Info("Mobile payment redirect detected",
		"session_id", in.SessionID, "status", p.ImpSuccess, "merchant_uid", p.MerchantUID, "imp_uid", p.ImpUID)

	f, err := newFlow(ctx, in.SessionID, in.AccessToken)
	if err != nil {
		return models.Navigation{}, err
	}
	f.state.Device = models.DeviceMobile

	succeeded := p.ImpSuccess == "true" && p.ImpUID != ""
	cancelled := p.ImpSuccess == "false"
	if !succeeded && !cancelled {
		// not a usable return; behaves like a checkout opened without order data
		logger.Error("Unusable redirect parameters", "status", p.ImpSuccess, "imp_uid", p.ImpUID)
		return f.finish(models.PhaseCart, models.Navigation{
			Target: models.TargetCart,
			Alert:  MsgMissingOrder,
		})
	}

	var store *activities.DraftActivities
	var draft *models.OrderDraft
	if err := workflow.ExecuteActivity(f.ctx, store.LoadDraft, in.SessionID).Get(f.ctx, &draft); err != nil {
		logger.Error("Error loading stored draft", "session_id", in.SessionID, "error", err)
		draft = nil
	}
	if draft != nil {
		f.state.OrderID = draft.OrderID
	}

	if cancelled {
		logger.Info("Mobile payment cancelled or failed", "session_id", in.SessionID)
		return f.fail(draft, models.Navigation{Error: MsgPaymentCancelled})
	}

	if draft == nil && in.StrictDraftRecovery {
		logger.Error("No draft to attach the payment to", "imp_uid", p.ImpUID)
		return f.fail(nil, models.Navigation{Alert: MsgDraftNotRecovered})
	}

	info := models.WidgetResult{
		Success:     true,
		ImpUID:      p.ImpUID,
		MerchantUID: p.MerchantUID,
	}
	payment := models.NewPaymentResult(info, draft)
	logger.Info("Processing successful payment", "payment_uid", payment.PaymentUID, "order_uid", payment.CreatePaymentRequest().OrderUIDValue())

	if err := f.createPayment(payment); err != nil {
		logger.Error("Payment process error", "error", err)
		msg := causeMessage(err)
		if r, ok := rejection(err); ok {
			msg = r.Body
		}
		return f.fail(draft, models.Navigation{
			Alert: fmt.Sprintf(msgPaymentProcessing, msg),
		})
	}

	return f.succeed(models.Navigation{
		OrderInfo:   draft,
		PaymentInfo: &info,
	})
}
