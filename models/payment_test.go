package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidgetResult_KeepsFullResponse(t *testing.T) {
	in := `{"success":true,"imp_uid":"I1","merchant_uid":"M1","paid_amount":1000,"apply_num":"30012345","pay_method":"card","card_name":"BC"}`

	var r WidgetResult
	require.NoError(t, json.Unmarshal([]byte(in), &r))
	assert.True(t, r.Success)
	assert.Equal(t, "I1", r.ImpUID)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestCreatePaymentRequest_OrderUIDValue(t *testing.T) {
	id := ID("42")

	assert.Nil(t, CreatePaymentRequest{PaymentUID: "I1"}.OrderUIDValue())
	assert.Equal(t, "42", CreatePaymentRequest{PaymentUID: "I1", OrderUID: &id}.OrderUIDValue())
}
