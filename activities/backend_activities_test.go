package activities

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"checkout-flow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

func TestCreatePayment(t *testing.T) {
	orderID := models.ID("42")
	textOrderID := models.ID("O1")

	tests := []struct {
		name          string
		payment       models.PaymentResult
		mockHandler   func(w http.ResponseWriter, r *http.Request)
		wantErr       bool
		wantErrType   string
		errorContains string
		wantNullOrder bool
		wantOrderUID  any
	}{
		{
			name:         "Success - Created",
			payment:      models.PaymentResult{PaymentUID: "imp_1", OrderUID: &orderID, Success: true},
			wantOrderUID: float64(42),
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte("created"))
			},
			wantErr: false,
		},
		{
			name:         "Failure - OK Is Not Created",
			payment:      models.PaymentResult{PaymentUID: "imp_2", OrderUID: &orderID, Success: true},
			wantOrderUID: float64(42),
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			},
			wantErr:       true,
			wantErrType:   ErrTypePaymentRejected,
			errorContains: "ok",
		},
		{
			name:         "Failure - Bad Request",
			payment:      models.PaymentResult{PaymentUID: "imp_3", OrderUID: &orderID, Success: true},
			wantOrderUID: float64(42),
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("amount mismatch"))
			},
			wantErr:       true,
			wantErrType:   ErrTypePaymentRejected,
			errorContains: "amount mismatch",
		},
		{
			name:         "Success - String Order UID",
			payment:      models.PaymentResult{PaymentUID: "imp_5", OrderUID: &textOrderID, Success: true},
			wantOrderUID: "O1",
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			},
		},
		{
			name:    "Success - Null Order UID Still Sent",
			payment: models.PaymentResult{PaymentUID: "imp_4", Success: true},
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			},
			wantErr:       false,
			wantNullOrder: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testSuite := &testsuite.WorkflowTestSuite{}
			env := testSuite.NewTestActivityEnvironment()

			mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/payment/create", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var raw map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
				assert.Equal(t, tt.payment.PaymentUID, raw["paymentUid"])
				if tt.wantNullOrder {
					v, ok := raw["orderUid"]
					assert.True(t, ok, "orderUid must be present")
					assert.Nil(t, v)
				} else {
					assert.Equal(t, tt.wantOrderUID, raw["orderUid"])
				}

				tt.mockHandler(w, r)
			}))
			defer mockServer.Close()

			act := NewBackendActivities(mockServer.URL + "/")
			env.RegisterActivity(act.CreatePayment)

			_, err := env.ExecuteActivity(act.CreatePayment, tt.payment)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				var appErr *temporal.ApplicationError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, tt.wantErrType, appErr.Type())
				assert.True(t, appErr.NonRetryable())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreatePayment_Unreachable(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	mockServer := httptest.NewServer(http.NotFoundHandler())
	url := mockServer.URL
	mockServer.Close()

	act := NewBackendActivities(url)
	env.RegisterActivity(act.CreatePayment)

	_, err := env.ExecuteActivity(act.CreatePayment, models.PaymentResult{PaymentUID: "imp_1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to call payment service")
}

func TestDeleteOrder(t *testing.T) {
	tests := []struct {
		name          string
		req           models.DeleteOrderRequest
		status        int
		wantErr       bool
		errorContains string
	}{
		{
			name:   "Success - Deleted",
			req:    models.DeleteOrderRequest{OrderID: "7", AccessToken: "tok"},
			status: http.StatusOK,
		},
		{
			name:   "Success - No Content",
			req:    models.DeleteOrderRequest{OrderID: "8", AccessToken: "tok"},
			status: http.StatusNoContent,
		},
		{
			name:          "Failure - Unauthorized",
			req:           models.DeleteOrderRequest{OrderID: "9", AccessToken: "expired"},
			status:        http.StatusUnauthorized,
			wantErr:       true,
			errorContains: "status 401",
		},
		{
			name:          "Failure - Server Error",
			req:           models.DeleteOrderRequest{OrderID: "10", AccessToken: "tok"},
			status:        http.StatusInternalServerError,
			wantErr:       true,
			errorContains: "status 500",
		},
		{
			name:   "Success - String Order ID",
			req:    models.DeleteOrderRequest{OrderID: "O-11", AccessToken: "tok"},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testSuite := &testsuite.WorkflowTestSuite{}
			env := testSuite.NewTestActivityEnvironment()

			mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/api/payment/order/delete-order-list/"+string(tt.req.OrderID), r.URL.Path)
				assert.Equal(t, "Bearer "+tt.req.AccessToken, r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
			}))
			defer mockServer.Close()

			act := NewBackendActivities(mockServer.URL)
			env.RegisterActivity(act.DeleteOrder)

			_, err := env.ExecuteActivity(act.DeleteOrder, tt.req)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

