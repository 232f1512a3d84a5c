package widget

import (
	"net/http/httptest"
	"testing"

	"checkout-flow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLaunch(t *testing.T) {
	cfg := DefaultConfig("https://shop.example/v1/checkout/return")

	tests := []struct {
		name      string
		draft     models.OrderDraft
		device    models.DeviceClass
		wantPopup bool
		wantName  string
		wantUID   *string
	}{
		{
			name: "Desktop - Full Draft",
			draft: models.OrderDraft{
				OrderID:       "1",
				MerchantUID:   "M1",
				OrderItemList: []models.OrderItem{{ProductID: "1"}, {ProductID: "2"}},
				OrderDTO: models.OrderDTO{
					TotalPrice:  1000,
					Consumer:    "Kim",
					Email:       "kim@example.com",
					PhoneNumber: "010-0000-0000",
				},
			},
			device:    models.DeviceDesktop,
			wantPopup: true,
			wantName:  "Order items (2)",
			wantUID:   strPtr("M1"),
		},
		{
			name:      "Mobile - Empty Draft",
			draft:     models.OrderDraft{OrderID: "2"},
			device:    models.DeviceMobile,
			wantPopup: false,
			wantName:  "Order items (0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			launch := BuildLaunch(cfg, tt.draft, tt.device)

			assert.Equal(t, DefaultScriptURL, launch.ScriptURL)
			assert.Equal(t, DefaultMerchantID, launch.MerchantID)

			req := launch.Request
			assert.Equal(t, DefaultPG, req.PG)
			assert.Equal(t, "card", req.PayMethod)
			assert.Equal(t, "KRW", req.Currency)
			assert.Equal(t, "ko", req.Language)
			assert.Equal(t, tt.wantPopup, req.Popup)
			assert.Equal(t, tt.wantName, req.Name)
			assert.Equal(t, tt.draft.OrderDTO.TotalPrice, req.Amount)
			assert.Equal(t, tt.draft.OrderDTO.Consumer, req.BuyerName)
			assert.Equal(t, cfg.ReturnURL, req.MRedirectURL)
			if tt.wantUID == nil {
				assert.Nil(t, req.MerchantUID)
			} else {
				require.NotNil(t, req.MerchantUID)
				assert.Equal(t, *tt.wantUID, *req.MerchantUID)
			}
		})
	}
}

func TestUserAgentDetector(t *testing.T) {
	tests := []struct {
		ua   string
		want models.DeviceClass
	}{
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", models.DeviceMobile},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8)", models.DeviceMobile},
		{"Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)", models.DeviceMobile},
		{"mozilla/5.0 (linux; android 10)", models.DeviceMobile},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", models.DeviceDesktop},
		{"", models.DeviceDesktop},
	}

	for _, tt := range tests {
		t.Run(tt.ua, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.Header.Set("User-Agent", tt.ua)
			assert.Equal(t, tt.want, UserAgentDetector{}.Detect(r))
		})
	}
}

func TestFixedDetector(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("User-Agent", "iPhone")
	assert.Equal(t, models.DeviceDesktop, FixedDetector(models.DeviceDesktop).Detect(r))
}

func strPtr(s string) *string { return &s }
