package activities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"checkout-flow/models"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

const (
	// ErrTypePaymentRejected marks a create-payment call the backend did not accept with 201
	ErrTypePaymentRejected = "PaymentRejected"
	// ErrTypeDeleteRejected marks a compensating delete the backend refused
	ErrTypeDeleteRejected = "DeleteRejected"
)

// PaymentRejection is attached as details to a PaymentRejected error
type PaymentRejection struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// BackendActivities calls the order backend's payment API
type BackendActivities struct {
	httpClient *http.Client
	baseURL    string
}

// NewBackendActivities creates a new BackendActivities instance
func NewBackendActivities(baseURL string) *BackendActivities {
	return &BackendActivities{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CreatePayment records a widget payment against its order. Only HTTP 201
// counts as success; any other status becomes a non-retryable
// PaymentRejected error carrying the response body.
func (a *BackendActivities) CreatePayment(ctx context.Context, payment models.PaymentResult) error {
	logger := activity.GetLogger(ctx)
	body := payment.CreatePaymentRequest()
	logger.Info("Creating payment record", "payment_uid", body.PaymentUID, "order_uid", body.OrderUIDValue())

	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal payment request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/payment/create", a.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create payment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call payment service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read payment response: %w", err)
	}
	logger.Info("Payment service responded", "status", resp.StatusCode, "body", string(respBody))

	if resp.StatusCode != http.StatusCreated {
		return temporal.NewNonRetryableApplicationError(
			string(respBody),
			ErrTypePaymentRejected,
			nil,
			PaymentRejection{Status: resp.StatusCode, Body: string(respBody)},
		)
	}

	logger.Info("Payment record created", "payment_uid", body.PaymentUID)
	return nil
}

// DeleteOrder removes a pending order after a failed or abandoned payment
func (a *BackendActivities) DeleteOrder(ctx context.Context, req models.DeleteOrderRequest) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Deleting failed order", "order_id", req.OrderID)

	endpoint := fmt.Sprintf("%s/api/payment/order/delete-order-list/%s", a.baseURL, url.PathEscape(string(req.OrderID)))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.AccessToken)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call delete-order service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("delete-order service returned status %d: %s", resp.StatusCode, string(body)),
			ErrTypeDeleteRejected,
			nil,
		)
	}

	logger.Info("Order deleted", "order_id", req.OrderID)
	return nil
}
