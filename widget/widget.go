package widget

import (
	"fmt"

	"checkout-flow/models"
)

const (
	DefaultScriptURL  = "https://cdn.iamport.kr/v1/iamport.js"
	DefaultMerchantID = "imp87540676"
	DefaultPG         = "html5_inicis.INIpayTest"
	DefaultPayMethod  = "card"
	DefaultCurrency   = "KRW"
	DefaultLanguage   = "ko"
)

// Config holds the fixed parameters of the hosted payment widget
type Config = models.WidgetConfig

// DefaultConfig returns the storefront's widget settings with the given return URL
func DefaultConfig(returnURL string) Config {
	return Config{
		ScriptURL:  DefaultScriptURL,
		MerchantID: DefaultMerchantID,
		PG:         DefaultPG,
		PayMethod:  DefaultPayMethod,
		Currency:   DefaultCurrency,
		Language:   DefaultLanguage,
		ReturnURL:  returnURL,
	}
}

// BuildLaunch builds the script/init/request triple for a draft.
// Missing draft fields fall back to zero values; popup mode is used for
// everything but mobile devices.
func BuildLaunch(cfg Config, draft models.OrderDraft, device models.DeviceClass) models.WidgetLaunch {
	var merchantUID *string
	if draft.MerchantUID != "" {
		m := draft.MerchantUID
		merchantUID = &m
	}

	return models.WidgetLaunch{
		ScriptURL:  cfg.ScriptURL,
		MerchantID: cfg.MerchantID,
		Request: models.WidgetRequest{
			PG:           cfg.PG,
			PayMethod:    cfg.PayMethod,
			MerchantUID:  merchantUID,
			Name:         fmt.Sprintf("Order items (%d)", len(draft.OrderItemList)),
			Amount:       draft.OrderDTO.TotalPrice,
			BuyerName:    draft.OrderDTO.Consumer,
			BuyerEmail:   draft.OrderDTO.Email,
			BuyerTel:     draft.OrderDTO.PhoneNumber,
			MRedirectURL: cfg.ReturnURL,
			Currency:     cfg.Currency,
			Language:     cfg.Language,
			Popup:        device != models.DeviceMobile,
		},
	}
}
