package models

import "time"

// CheckoutPhase represents where a checkout flow currently is
type CheckoutPhase string

const (
	PhaseInit           CheckoutPhase = "INIT"
	PhaseAwaitingWidget CheckoutPhase = "AWAITING_WIDGET"
	PhaseRedirected     CheckoutPhase = "REDIRECTED"
	PhaseSucceeded      CheckoutPhase = "SUCCEEDED"
	PhaseFailed         CheckoutPhase = "FAILED"
	PhaseCart           CheckoutPhase = "CART"
)

// Terminal reports whether the phase ends the flow with a navigation
func (p CheckoutPhase) Terminal() bool {
	switch p {
	case PhaseSucceeded, PhaseFailed, PhaseCart, PhaseRedirected:
		return true
	}
	return false
}

// DeviceClass decides between popup and full-page redirect mode
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
)

// NavigationTarget is a storefront page the flow leaves to
type NavigationTarget string

const (
	TargetCart            NavigationTarget = "/cart"
	TargetPaymentComplete NavigationTarget = "/payment-complete"
	TargetPaymentFailed   NavigationTarget = "/payment-failed"
	// TargetWidgetRedirect means the widget took over the page; the
	// outcome arrives later through the redirect return.
	TargetWidgetRedirect NavigationTarget = "widget-redirect"
)

// Navigation is the outcome of a checkout flow. Alert, when set, is
// shown to the user before navigating.
type Navigation struct {
	Target      NavigationTarget `json:"target"`
	OrderInfo   *OrderDraft      `json:"orderInfo,omitempty"`
	PaymentInfo *WidgetResult    `json:"paymentInfo,omitempty"`
	Error       string           `json:"error,omitempty"`
	Alert       string           `json:"alert,omitempty"`
}

// WidgetRequest is the parameter object handed to the widget's
// request-payment call.
type WidgetRequest struct {
	PG           string  `json:"pg"`
	PayMethod    string  `json:"pay_method"`
	MerchantUID  *string `json:"merchant_uid"`
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	BuyerName    string  `json:"buyer_name"`
	BuyerEmail   string  `json:"buyer_email"`
	BuyerTel     string  `json:"buyer_tel"`
	MRedirectURL string  `json:"m_redirect_url"`
	Currency     string  `json:"currency"`
	Language     string  `json:"language"`
	Popup        bool    `json:"popup"`
}

// WidgetConfig holds the fixed parameters of the hosted payment widget
type WidgetConfig struct {
	ScriptURL  string `json:"script_url"`
	MerchantID string `json:"merchant_id"`
	PG         string `json:"pg"`
	PayMethod  string `json:"pay_method"`
	Currency   string `json:"currency"`
	Language   string `json:"language"`
	// ReturnURL is where the widget sends a mobile buyer back to
	ReturnURL string `json:"return_url"`
}

// WidgetLaunch tells the browser what to load and how to invoke it
type WidgetLaunch struct {
	ScriptURL  string        `json:"script_url"`
	MerchantID string        `json:"merchant_id"`
	Request    WidgetRequest `json:"request"`
}

// WidgetEventKind enumerates what the browser can report about the widget
type WidgetEventKind string

const (
	WidgetEventLoadFailed  WidgetEventKind = "load_failed"
	WidgetEventResult      WidgetEventKind = "result"
	WidgetEventRedirecting WidgetEventKind = "redirecting"
)

// WidgetEvent resolves a checkout awaiting the widget
type WidgetEvent struct {
	Kind   WidgetEventKind `json:"kind" validate:"required,oneof=load_failed result redirecting"`
	Result *WidgetResult   `json:"result,omitempty" validate:"required_if=Kind result"`
	Detail string          `json:"detail,omitempty"`
}

// CheckoutInput starts a fresh checkout
type CheckoutInput struct {
	SessionID   string      `json:"session_id"`
	Draft       *OrderDraft `json:"draft"`
	Device      DeviceClass `json:"device"`
	AccessToken string      `json:"access_token"`

	Widget WidgetConfig `json:"widget"`
	// PaymentTimeout bounds the wait for a widget event; zero means the default
	PaymentTimeout time.Duration `json:"payment_timeout"`
}

// RedirectParams is the query string the widget appends to m_redirect_url
type RedirectParams struct {
	ImpSuccess  string `json:"imp_success"`
	MerchantUID string `json:"merchant_uid"`
	ImpUID      string `json:"imp_uid"`
}

// RedirectInput starts the redirect-return branch
type RedirectInput struct {
	SessionID   string         `json:"session_id"`
	Params      RedirectParams `json:"params"`
	AccessToken string         `json:"access_token"`
	// StrictDraftRecovery fails a successful return that has no stored
	// draft instead of creating a payment with a null order reference.
	StrictDraftRecovery bool `json:"strict_draft_recovery"`
}

// CheckoutState is the queryable state of a checkout flow
type CheckoutState struct {
	SessionID      string        `json:"session_id"`
	OrderID        ID            `json:"order_id,omitempty"`
	Phase          CheckoutPhase `json:"phase"`
	Device         DeviceClass   `json:"device,omitempty"`
	Widget         *WidgetLaunch `json:"widget,omitempty"`
	ScriptAttached bool          `json:"script_attached"`
	Navigation     *Navigation   `json:"navigation,omitempty"`
	LastUpdated    time.Time     `json:"last_updated"`
}
