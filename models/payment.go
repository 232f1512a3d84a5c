package models

import (
	"bytes"
	"encoding/json"
)

// WidgetResult is what the payment widget reports in popup mode. Like
// OrderDraft, a decoded result keeps the widget's full response
// (paid_amount, apply_num, ...) and encodes back to it.
type WidgetResult struct {
	Success     bool   `json:"success"`
	ImpUID      string `json:"imp_uid,omitempty"`
	MerchantUID string `json:"merchant_uid,omitempty"`
	ErrorCode   string `json:"error_code,omitempty"`
	ErrorMsg    string `json:"error_msg,omitempty"`

	raw json.RawMessage
}

type widgetResultView WidgetResult

func (r *WidgetResult) UnmarshalJSON(data []byte) error {
	var v widgetResultView
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = WidgetResult(v)
	r.raw = nil
	if trimmed := bytes.TrimSpace(data); !bytes.Equal(trimmed, []byte("null")) {
		r.raw = append(json.RawMessage(nil), trimmed...)
	}
	return nil
}

func (r WidgetResult) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(widgetResultView(r))
}

// Raw returns the JSON the result was decoded from, if any
func (r *WidgetResult) Raw() json.RawMessage {
	if r == nil {
		return nil
	}
	return r.raw
}

// PaymentResult is built once from a widget result or redirect
// parameters and consumed once to create the backend payment record.
type PaymentResult struct {
	PaymentUID   string `json:"paymentUid"`
	OrderUID     *ID    `json:"orderUid"`
	Success      bool   `json:"success"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// NewPaymentResult pairs a widget result with the draft it pays for.
// A nil draft leaves OrderUID unset, which serializes as null.
func NewPaymentResult(res WidgetResult, draft *OrderDraft) PaymentResult {
	pr := PaymentResult{
		PaymentUID:   res.ImpUID,
		Success:      res.Success,
		ErrorCode:    res.ErrorCode,
		ErrorMessage: res.ErrorMsg,
	}
	if draft != nil {
		id := draft.OrderID
		pr.OrderUID = &id
	}
	return pr
}

// CreatePaymentRequest returns the body for POST /api/payment/create
func (p PaymentResult) CreatePaymentRequest() CreatePaymentRequest {
	return CreatePaymentRequest{
		PaymentUID: p.PaymentUID,
		OrderUID:   p.OrderUID,
	}
}

// OrderUIDValue is the order reference for logging; nil when absent
func (p CreatePaymentRequest) OrderUIDValue() any {
	if p.OrderUID == nil {
		return nil
	}
	return string(*p.OrderUID)
}

// CreatePaymentRequest is the backend payment-creation body
type CreatePaymentRequest struct {
	PaymentUID string `json:"paymentUid"`
	OrderUID   *ID    `json:"orderUid"`
}

// DeleteOrderRequest identifies an order for the compensating delete
type DeleteOrderRequest struct {
	OrderID     ID     `json:"orderId"`
	AccessToken string `json:"accessToken"`
}
